package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_DRIVER", "DB_ENDPOINT", "DB_DATABASE_ID", "DB_COLLECTION_ID", "DEVICE_ID", "COMMAND_MIN_PAUSE", "CORS_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, DriverDocumentDB, cfg.StoreDriver)
	assert.Equal(t, "mongodb://localhost:27017", cfg.DBEndpoint)
	assert.Equal(t, "iotDB", cfg.DatabaseID)
	assert.Equal(t, "iotMessages", cfg.CollectionID)
	assert.Equal(t, "Huvudsta", cfg.DeviceID)
	assert.Equal(t, time.Second, cfg.CommandMinPause)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	assert.Equal(t, ":8000", cfg.ServerAddress())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("COMMAND_MIN_PAUSE", "250ms")
	t.Setenv("CORS_ORIGINS", "http://a.example, http://b.example,")
	t.Setenv("DB_COLLECTION_ID", "measures")
	t.Setenv("DB_DATABASE_ID", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "/tmp/x.db", cfg.SQLitePath)
	assert.Equal(t, 250*time.Millisecond, cfg.CommandMinPause)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "measures", cfg.CollectionID)
	assert.Equal(t, "iotDB", cfg.DatabaseID)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown driver", env: map[string]string{"STORE_DRIVER": "cassandra"}},
		{name: "bad pause", env: map[string]string{"COMMAND_MIN_PAUSE": "soon"}},
		{name: "influx without token", env: map[string]string{"STORE_DRIVER": "influxdb", "INFLUXDB_TOKEN": "", "INFLUXDB_ORG": "org"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

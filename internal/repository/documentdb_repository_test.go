package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"IotMonitor.api/internal/models"
)

func TestHistoryFilter(t *testing.T) {
	assert.Equal(t, bson.M{}, historyFilter(models.HistoryQuery{Limit: 10}))

	from := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 1, 2, 0, 0, 0, 500, time.UTC)
	filter := historyFilter(models.HistoryQuery{From: from, To: to})

	idRange, ok := filter["_id"].(bson.M)
	assert.True(t, ok)
	assert.Equal(t, primitive.NewObjectIDFromTimestamp(from), idRange["$gte"])
	assert.Equal(t, primitive.NewObjectIDFromTimestamp(to.Truncate(time.Second).Add(time.Second)), idRange["$lt"])
}

func TestRecordFromBSON(t *testing.T) {
	created := time.Date(2023, 6, 1, 8, 30, 0, 0, time.UTC)
	oid := primitive.NewObjectIDFromTimestamp(created)

	rec := recordFromBSON(bson.M{
		"_id":       oid,
		"timestamp": "2023-06-01T08:30:00Z",
		"measures":  bson.M{"temp": 19.0},
	})

	assert.Equal(t, oid.Hex(), rec.ID)
	assert.Equal(t, created, rec.Time)
	assert.NotContains(t, rec.Document, "_id")
	assert.Equal(t, "2023-06-01T08:30:00Z", rec.Document["timestamp"])
}

package repository

import (
	"context"
	"fmt"

	"IotMonitor.api/internal/config"
)

// Open connects the store selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg config.Config) (Repository, error) {
	switch cfg.StoreDriver {
	case config.DriverDocumentDB:
		return NewDocumentDBRepository(ctx, DocumentDBOptions{
			URI:        cfg.DBEndpoint,
			Account:    cfg.DBAccount,
			AuthKey:    cfg.DBPrimaryKey,
			Database:   cfg.DatabaseID,
			Collection: cfg.CollectionID,
		})
	case config.DriverInfluxDB:
		repo := NewInfluxDBRepository(cfg.InfluxDBURL, cfg.InfluxDBToken, cfg.InfluxDBOrg, cfg.InfluxDBBucket)
		if err := repo.Ping(ctx); err != nil {
			repo.Close(ctx)
			return nil, err
		}
		if err := repo.EnsureBucket(ctx); err != nil {
			repo.Close(ctx)
			return nil, err
		}
		return repo, nil
	case config.DriverSQLite:
		return NewSQLiteRepository(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

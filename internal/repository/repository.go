package repository

import (
	"context"

	"IotMonitor.api/internal/models"
)

// Repository stores measurement documents.
type Repository interface {
	// InsertMeasurement makes a single attempt to store doc verbatim.
	InsertMeasurement(ctx context.Context, doc models.Document) error
	// FindMeasurements returns stored records newest first.
	FindMeasurements(ctx context.Context, q models.HistoryQuery) ([]models.Record, error)
	Close(ctx context.Context) error
}

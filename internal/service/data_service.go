package service

import (
	"context"
	"fmt"

	"IotMonitor.api/internal/logging"
	"IotMonitor.api/internal/metrics"
	"IotMonitor.api/internal/models"
	"IotMonitor.api/internal/repository"
)

const (
	msgTimestampInvalid = "timestamp must be given and have type string"
	msgMeasuresInvalid  = "measures must be given and have type json"
)

// DataService validates and stores measurement payloads.
type DataService struct {
	repo   repository.Repository
	logger *logging.Logger
}

// NewDataService creates a new DataService.
func NewDataService(repo repository.Repository, logger *logging.Logger) *DataService {
	return &DataService{
		repo:   repo,
		logger: logger,
	}
}

// ValidateMeasurement checks the two required fields and returns every failure.
func ValidateMeasurement(doc models.Document) []string {
	var errs []string
	if ts, ok := doc.Timestamp(); !ok || ts == "" {
		errs = append(errs, msgTimestampInvalid)
	}
	if _, ok := doc.Measures(); !ok {
		errs = append(errs, msgMeasuresInvalid)
	}
	return errs
}

// Upload validates doc and makes a single insert attempt. It returns a
// *ValidationError or a *PersistenceError on failure.
func (s *DataService) Upload(ctx context.Context, doc models.Document) error {
	logger := logging.FromContext(ctx, s.logger)

	if errs := ValidateMeasurement(doc); len(errs) > 0 {
		metrics.MeasurementsRejectedTotal.Inc()
		logger.Info("payload not valid", "errors", errs)
		return &ValidationError{Messages: errs}
	}

	if err := s.repo.InsertMeasurement(ctx, doc); err != nil {
		metrics.PersistenceFailuresTotal.Inc()
		logger.Error("error when inserting document", logging.AttachError(err)...)
		return &PersistenceError{Err: err}
	}

	metrics.MeasurementsIngestedTotal.Inc()
	return nil
}

// History returns stored measurements, newest first.
func (s *DataService) History(ctx context.Context, q models.HistoryQuery) ([]models.Record, error) {
	if q.Limit <= 0 {
		q.Limit = models.DefaultHistoryLimit
	}
	if q.Limit > models.MaxHistoryLimit {
		q.Limit = models.MaxHistoryLimit
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return nil, &ValidationError{Messages: []string{"to must not be before from"}}
	}

	records, err := s.repo.FindMeasurements(ctx, q)
	if err != nil {
		logging.FromContext(ctx, s.logger).Error("error when reading measurements", logging.AttachError(err)...)
		return nil, fmt.Errorf("error querying data: %w", err)
	}
	if records == nil {
		records = []models.Record{}
	}
	return records, nil
}

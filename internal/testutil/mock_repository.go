// Package testutil holds in-memory doubles shared by package tests.
package testutil

import (
	"context"
	"strconv"
	"sync"
	"time"

	"IotMonitor.api/internal/models"
)

// MockRepository implements repository.Repository in memory. Set InsertErr or
// FindErr to simulate store failures.
type MockRepository struct {
	mu      sync.Mutex
	records []models.Record

	InsertErr error
	FindErr   error
	Now       func() time.Time
}

func NewMockRepository() *MockRepository {
	return &MockRepository{Now: time.Now}
}

func (m *MockRepository) InsertMeasurement(_ context.Context, doc models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.InsertErr != nil {
		return m.InsertErr
	}
	m.records = append(m.records, models.Record{
		ID:       strconv.Itoa(len(m.records) + 1),
		Time:     m.Now().UTC(),
		Document: doc.Clone(),
	})
	return nil
}

func (m *MockRepository) FindMeasurements(_ context.Context, q models.HistoryQuery) ([]models.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FindErr != nil {
		return nil, m.FindErr
	}
	var out []models.Record
	for i := len(m.records) - 1; i >= 0; i-- {
		rec := m.records[i]
		if !q.From.IsZero() && rec.Time.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && rec.Time.After(q.To) {
			continue
		}
		out = append(out, rec)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (m *MockRepository) Close(context.Context) error {
	return nil
}

// Records returns a copy of everything stored, oldest first.
func (m *MockRepository) Records() []models.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Record(nil), m.records...)
}

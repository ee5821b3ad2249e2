package repository

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"IotMonitor.api/internal/models"
)

type measurementRow struct {
	ID         uint   `gorm:"primaryKey"`
	Timestamp  string `gorm:"index"`
	DeviceID   string `gorm:"index"`
	ReceivedAt int64  `gorm:"index"` // unix nanoseconds
	Document   datatypes.JSON
}

func (measurementRow) TableName() string {
	return "iot_messages"
}

// SQLiteRepository keeps documents in an embedded database, for single node
// deployments and local development.
type SQLiteRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSQLiteRepository(path string) (*SQLiteRepository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	if err := db.AutoMigrate(&measurementRow{}); err != nil {
		return nil, errors.Wrap(err, "migrate measurements")
	}
	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) InsertMeasurement(ctx context.Context, doc models.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "encode measurement document")
	}

	ts, _ := doc.Timestamp()
	row := measurementRow{
		Timestamp:  ts,
		DeviceID:   doc.DeviceID(),
		ReceivedAt: r.now().UnixNano(),
		Document:   datatypes.JSON(raw),
	}
	if tx := r.db.WithContext(ctx).Create(&row); tx.Error != nil {
		return errors.Wrap(tx.Error, "insert measurement")
	}
	return nil
}

func (r *SQLiteRepository) FindMeasurements(ctx context.Context, q models.HistoryQuery) ([]models.Record, error) {
	tx := r.db.WithContext(ctx).Model(&measurementRow{})
	if !q.From.IsZero() {
		tx = tx.Where("received_at >= ?", q.From.UnixNano())
	}
	if !q.To.IsZero() {
		tx = tx.Where("received_at <= ?", q.To.UnixNano())
	}

	var rows []measurementRow
	if err := tx.Order("received_at desc").Order("id desc").Limit(q.Limit).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "find measurements")
	}

	records := make([]models.Record, 0, len(rows))
	for _, row := range rows {
		var doc models.Document
		if err := json.Unmarshal(row.Document, &doc); err != nil {
			return nil, errors.Wrapf(err, "decode measurement %d", row.ID)
		}
		records = append(records, models.Record{
			ID:       strconv.FormatUint(uint64(row.ID), 10),
			Time:     time.Unix(0, row.ReceivedAt).UTC(),
			Document: doc,
		})
	}
	return records, nil
}

func (r *SQLiteRepository) Close(context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return errors.Wrap(err, "get sql db")
	}
	return sqlDB.Close()
}

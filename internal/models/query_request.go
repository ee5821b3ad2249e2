package models

import "time"

const (
	DefaultHistoryLimit = 100
	MaxHistoryLimit     = 1000
)

// HistoryQuery selects stored measurements, newest first. Zero times are open bounds.
type HistoryQuery struct {
	From  time.Time
	To    time.Time
	Limit int
}

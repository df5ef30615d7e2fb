package models

import (
	"time"

	"gorm.io/gorm"
)

type RequestStatus string

const (
	StatusSuccess RequestStatus = "SUCCESS"
	StatusError   RequestStatus = "ERROR"
)

// ChatLog is the persisted audit record of one relayed chat request.
// It records the event, not quota state - quotas live in memory only.
type ChatLog struct {
	ID           uint   `gorm:"primarykey"`
	Identifier   string `gorm:"index"`
	Endpoint     string `gorm:"index"`
	Model        string
	Status       RequestStatus
	StatusCode   int
	MessageCount int
	DurationMs   int64
	Timestamp    time.Time `gorm:"index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

package repository

import (
	"time"

	"gorm.io/gorm"

	"chat-relay-api/internal/models"
)

type ChatLogRepository interface {
	Create(log *models.ChatLog) error
	GetClientLogs(identifier string, from, to time.Time) ([]models.ChatLog, error)
}

type chatLogRepository struct {
	db *gorm.DB
}

func NewChatLogRepository(db *gorm.DB) ChatLogRepository {
	return &chatLogRepository{db: db}
}

func (r *chatLogRepository) Create(log *models.ChatLog) error {
	return r.db.Create(log).Error
}

func (r *chatLogRepository) GetClientLogs(identifier string, from, to time.Time) ([]models.ChatLog, error) {
	var logs []models.ChatLog
	err := r.db.Where("identifier = ? AND timestamp BETWEEN ? AND ?", identifier, from, to).
		Order("timestamp desc").
		Find(&logs).Error
	return logs, err
}

package services

import (
	"time"

	"chat-relay-api/internal/models"
	"chat-relay-api/internal/repository"
)

type ChatLogService interface {
	LogChat(identifier, endpoint, model string, statusCode int, status models.RequestStatus, messageCount int, duration time.Duration) error
	GetClientLogs(identifier string, from, to time.Time) ([]models.ChatLog, error)
}

type chatLogService struct {
	repo repository.ChatLogRepository
}

func NewChatLogService(repo repository.ChatLogRepository) ChatLogService {
	return &chatLogService{repo: repo}
}

func (s *chatLogService) LogChat(identifier, endpoint, model string, statusCode int, status models.RequestStatus, messageCount int, duration time.Duration) error {
	log := &models.ChatLog{
		Identifier:   identifier,
		Endpoint:     endpoint,
		Model:        model,
		Status:       status,
		StatusCode:   statusCode,
		MessageCount: messageCount,
		DurationMs:   duration.Milliseconds(),
		Timestamp:    time.Now(),
	}
	return s.repo.Create(log)
}

func (s *chatLogService) GetClientLogs(identifier string, from, to time.Time) ([]models.ChatLog, error) {
	return s.repo.GetClientLogs(identifier, from, to)
}

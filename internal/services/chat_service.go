package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"chat-relay-api/internal/config"
	"chat-relay-api/internal/models"
	apperrors "chat-relay-api/internal/pkg/errors"
)

const completionsPath = "/v1/chat/completions"

// CompletionService forwards a validated conversation to the upstream
// chat-completion API and returns its parsed response body. It does not
// touch quota state.
type CompletionService interface {
	CreateCompletion(ctx context.Context, req *models.ChatRequest) (map[string]interface{}, error)
}

type completionService struct {
	cfg    *config.RelayConfig
	client *http.Client
}

func NewCompletionService(cfg *config.RelayConfig) CompletionService {
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}

	return &completionService{
		cfg: cfg,
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
	}
}

// completionPayload is the upstream wire format (OpenAI-compatible).
type completionPayload struct {
	Model       string           `json:"model"`
	Messages    []models.Message `json:"messages"`
	Temperature *float64         `json:"temperature,omitempty"`
	Stream      bool             `json:"stream"`
}

func (s *completionService) CreateCompletion(ctx context.Context, req *models.ChatRequest) (map[string]interface{}, error) {
	if s.cfg.APIKey == "" {
		return nil, apperrors.ErrMissingAPIKey
	}

	payload := completionPayload{
		Model:       s.cfg.Model,
		Messages:    s.buildMessages(req),
		Temperature: req.Temperature,
		Stream:      false,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to encode upstream payload")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+completionsPath, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to build upstream request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		var ne net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
			return nil, apperrors.ErrUpstreamTimeout
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnreachable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &apperrors.UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       string(raw),
		}
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, apperrors.Wrap(err, "invalid JSON from upstream")
	}

	return parsed, nil
}

// buildMessages prepends a system directive when one applies. A
// caller-supplied systemPrompt wins over the configured one; with
// neither, the conversation is forwarded untouched.
func (s *completionService) buildMessages(req *models.ChatRequest) []models.Message {
	prompt := req.SystemPrompt
	if prompt == "" {
		prompt = s.cfg.SystemPrompt
	}
	if prompt == "" {
		return req.Messages
	}

	messages := make([]models.Message, 0, len(req.Messages)+1)
	messages = append(messages, models.Message{Role: "system", Content: prompt})
	return append(messages, req.Messages...)
}

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"chat-relay-api/internal/config"
	"chat-relay-api/internal/logger"
	"chat-relay-api/internal/middleware"
	"chat-relay-api/internal/models"
	apperrors "chat-relay-api/internal/pkg/errors"
	"chat-relay-api/internal/services"
)

const invalidMessagesError = "Invalid request. Messages array is required."

type ChatHandler struct {
	completionService services.CompletionService
	rateLimiter       services.RateLimitService
	cache             services.CacheService
	rateCfg           *config.RateLimitConfig
	relayCfg          *config.RelayConfig
}

// NewChatHandler wires the chat endpoint. cache may be nil, in which
// case every request goes upstream.
func NewChatHandler(
	completionService services.CompletionService,
	rateLimiter services.RateLimitService,
	cache services.CacheService,
	rateCfg *config.RateLimitConfig,
	relayCfg *config.RelayConfig,
) *ChatHandler {
	return &ChatHandler{
		completionService: completionService,
		rateLimiter:       rateLimiter,
		cache:             cache,
		rateCfg:           rateCfg,
		relayCfg:          relayCfg,
	}
}

// Chat relays one conversation to the completion service. Quota is
// checked first and consumed before any downstream work; a consumed
// unit is never refunded on later failure.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	clientIP := middleware.ClientIP(r)

	var limitInfo services.LimitStatus
	if h.rateCfg.Enabled {
		check := h.rateLimiter.Check(clientIP)
		if !check.Allowed {
			logger.Logger.WithFields(logrus.Fields{
				"ip":    clientIP,
				"count": check.Count,
			}).Warn("Daily limit exceeded")
			respondWithJSON(w, http.StatusTooManyRequests, map[string]interface{}{
				"error": "Daily limit exceeded",
				"message": fmt.Sprintf(
					"Daily message limit exceeded. Maximum %d messages per day per IP. Try again tomorrow.",
					h.rateLimiter.Limit()),
				"limit":     h.rateLimiter.Limit(),
				"remaining": 0,
			})
			return
		}

		// Charge the quota only after a passing check
		limitInfo = h.rateLimiter.Consume(clientIP)
	}

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && strings.HasPrefix(typeErr.Field, "messages") {
			respondWithJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error": invalidMessagesError,
			})
			return
		}
		respondWithJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": "Invalid request body",
		})
		return
	}

	if req.Messages == nil {
		respondWithJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": invalidMessagesError,
		})
		return
	}

	cacheKey := ""
	if h.cache != nil {
		cacheKey = services.CompletionCacheKey(
			h.relayCfg.Model, h.effectivePrompt(&req), req.Temperature, req.Messages)
		if cached, err := h.cache.Get(r.Context(), cacheKey); err == nil {
			var response map[string]interface{}
			if json.Unmarshal([]byte(cached), &response) == nil {
				h.respondWithCompletion(w, response, limitInfo)
				return
			}
		}
	}

	response, err := h.completionService.CreateCompletion(r.Context(), &req)
	if err != nil {
		h.respondWithRelayError(w, clientIP, err)
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(r.Context(), cacheKey, response, 0); err != nil {
			logger.Logger.WithFields(logrus.Fields{
				"error": err,
			}).Warn("Failed to cache completion response")
		}
	}

	h.respondWithCompletion(w, response, limitInfo)
}

func (h *ChatHandler) effectivePrompt(req *models.ChatRequest) string {
	if req.SystemPrompt != "" {
		return req.SystemPrompt
	}
	return h.relayCfg.SystemPrompt
}

func (h *ChatHandler) respondWithCompletion(w http.ResponseWriter, response map[string]interface{}, limitInfo services.LimitStatus) {
	if h.rateCfg.Enabled && h.rateCfg.IncludeLimitInfo {
		response["_limit"] = map[string]interface{}{
			"remaining": limitInfo.Remaining,
			"limit":     h.rateLimiter.Limit(),
		}
	}
	respondWithJSON(w, http.StatusOK, response)
}

func (h *ChatHandler) respondWithRelayError(w http.ResponseWriter, clientIP string, err error) {
	logger.Logger.WithFields(logrus.Fields{
		"error": err,
		"ip":    clientIP,
	}).Error("Error processing chat request")

	if ue, ok := apperrors.AsUpstreamError(err); ok {
		respondWithJSON(w, ue.StatusCode, map[string]interface{}{
			"error":   "Failed to get response from AI service",
			"details": ue.Body,
		})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrMissingAPIKey):
		// Operator problem; keep credential details out of the response
		respondWithJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error": "Server configuration error",
		})
	case errors.Is(err, apperrors.ErrUpstreamTimeout):
		respondWithJSON(w, http.StatusGatewayTimeout, map[string]interface{}{
			"error": "AI service request timed out",
		})
	case errors.Is(err, apperrors.ErrUpstreamUnreachable):
		respondWithJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error": "Failed to reach AI service",
		})
	default:
		respondWithJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error":   "Internal server error",
			"message": err.Error(),
		})
	}
}

// respondWithJSON sends a JSON response
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

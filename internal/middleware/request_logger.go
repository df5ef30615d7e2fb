package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"chat-relay-api/internal/logger"
	"chat-relay-api/internal/models"
	"chat-relay-api/internal/services"
)

type ResponseWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (rw *ResponseWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *ResponseWriter) Write(b []byte) (int, error) {
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}

// RequestLogger persists one audit row per relayed chat request.
type RequestLogger struct {
	logService services.ChatLogService
	model      string
}

func NewRequestLogger(logService services.ChatLogService, model string) *RequestLogger {
	return &RequestLogger{
		logService: logService,
		model:      model,
	}
}

func (rl *RequestLogger) LogRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Sniff the payload so the audit row can carry the message
		// count; the body is restored for the handler.
		messageCount := 0
		if r.Body != nil {
			raw, err := io.ReadAll(r.Body)
			if err == nil {
				r.Body = io.NopCloser(bytes.NewReader(raw))
				var req models.ChatRequest
				if json.Unmarshal(raw, &req) == nil {
					messageCount = len(req.Messages)
				}
			}
		}

		// Create custom response writer to capture status code
		rw := &ResponseWriter{
			ResponseWriter: w,
			status:         http.StatusOK,
		}

		// Execute the request
		next.ServeHTTP(rw, r)

		// Determine status
		status := models.StatusSuccess
		if rw.status >= 400 {
			status = models.StatusError
		}

		// Log to database
		err := rl.logService.LogChat(
			ClientIP(r),
			r.URL.Path,
			rl.model,
			rw.status,
			status,
			messageCount,
			time.Since(start),
		)

		if err != nil {
			logger.Logger.WithFields(logrus.Fields{
				"error": err,
				"ip":    ClientIP(r),
				"path":  r.URL.Path,
			}).Error("Failed to log request")
		}
	})
}

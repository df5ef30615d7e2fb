package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"chat-relay-api/internal/api/controllers"
	"chat-relay-api/internal/api/handlers"
	"chat-relay-api/internal/middleware"
)

// SetupRoutes builds the router. requestLogger is nil when no database
// is configured; the chat endpoint is then served without audit logging.
func SetupRoutes(chatHandler *handlers.ChatHandler, requestLogger *middleware.RequestLogger) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware)

	router.HandleFunc("/health", controllers.HealthCheckHandler()).Methods("GET")

	chat := http.Handler(http.HandlerFunc(chatHandler.Chat))
	if requestLogger != nil {
		chat = requestLogger.LogRequest(chat)
	}
	router.Handle("/api/chat", chat).Methods("POST")

	return router
}

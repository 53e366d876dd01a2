package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"medtutor-backend/internal/handlers"
	"medtutor-backend/internal/metrics"
	"medtutor-backend/internal/middleware"
)

func New(chatHandler *handlers.ChatHandler, frontendURL string) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))
	r.Use(metrics.Middleware)

	r.Get("/health", chatHandler.Health)
	r.Post("/chat", chatHandler.Chat)
	r.Post("/ask", chatHandler.Ask)

	r.Handle("/metrics", promhttp.Handler())

	return r
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mtgproxy/proxygen/internal/api/handlers"
	"github.com/mtgproxy/proxygen/internal/api/response"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check endpoint
	s.router.Get("/health", s.healthCheck)

	cardsHandler := handlers.NewCardsHandler(s.resolver, s.logger)
	s.router.Route("/api/cards", func(r chi.Router) {
		r.Post("/parse", cardsHandler.ParseDecklist)
	})
}

// healthCheck reports server liveness.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{"status": "ok"})
}

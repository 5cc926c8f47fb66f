package chat

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers chat and metadata routes. optionalAuth attributes
// chat turns to a logged-in user when a bearer token is sent and identifies
// the caller of a transcript export.
func RegisterRoutes(r chi.Router, h *Handler, optionalAuth func(http.Handler) http.Handler) {
	r.Route("/api/chat", func(r chi.Router) {
		r.With(optionalAuth).Post("/", h.Chat)
		r.Post("/session", h.CreateSession)
		r.With(optionalAuth).Get("/session/{id}/transcript", h.GetTranscript)
	})

	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.With(optionalAuth).Post("/chat", h.CategoryChat)
	})

	r.Get("/api/languages", h.ListLanguages)
}

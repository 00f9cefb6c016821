package matching

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns matching router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// All routes require authentication
	r.Use(authMiddleware)

	r.Get("/find", h.Find)
	r.Get("/count", h.Count)

	return r
}

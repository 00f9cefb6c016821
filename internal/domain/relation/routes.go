package relation

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns relation router
func (h *Handler) Routes(authMiddleware func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	// All routes require authentication
	r.Use(authMiddleware)

	r.Post("/sync", h.Sync)
	r.Put("/", h.Upsert)
	r.Get("/my", h.ListMy)
	r.Delete("/my", h.RemoveAllMy)

	return r
}

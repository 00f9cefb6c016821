package matching

import (
	"context"
	"errors"
	"net/http"

	"github.com/roomster/roomster-api/internal/domain/user"
	"github.com/roomster/roomster-api/internal/middleware"
	"github.com/roomster/roomster-api/internal/pkg/logger"
	"github.com/roomster/roomster-api/internal/pkg/response"
)

// UserDirectory resolves the requesting user's profile, the feed is
// always scoped to their city.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

type Handler struct {
	service *Service
	users   UserDirectory
}

func NewHandler(service *Service, users UserDirectory) *Handler {
	return &Handler{
		service: service,
		users:   users,
	}
}

// Find handles GET /matching/find. Paging state travels only in the
// cursor token, caller-built filters are rejected outright.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, "Authentication required")
		return
	}

	if r.URL.Query().Has("where") || r.URL.Query().Has("filter") {
		response.BadRequest(w, ErrFilterNotAllowed.Error())
		return
	}

	current, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.NotFound(w, "User not found")
			return
		}
		logger.LogError(r.Context(), err, "failed to load requesting user", "user_id", userID)
		response.InternalError(w)
		return
	}

	page, err := h.service.GetFeedPage(r.Context(), userID, current.CityID, r.URL.Query().Get("cursor"))
	if err != nil {
		if errors.Is(err, ErrBadCursor) {
			response.BadRequest(w, "Cursor contains bad value")
			return
		}
		logger.LogError(r.Context(), err, "failed to build matching feed", "user_id", userID)
		response.InternalError(w)
		return
	}

	response.OK(w, page)
}

// Count handles GET /matching/count.
func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, "Authentication required")
		return
	}

	current, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.NotFound(w, "User not found")
			return
		}
		logger.LogError(r.Context(), err, "failed to load requesting user", "user_id", userID)
		response.InternalError(w)
		return
	}

	count, err := h.service.GetMatchCount(r.Context(), userID, current.CityID)
	if err != nil {
		logger.LogError(r.Context(), err, "failed to count matches", "user_id", userID)
		response.InternalError(w)
		return
	}

	response.OK(w, CountResponse{Count: count})
}

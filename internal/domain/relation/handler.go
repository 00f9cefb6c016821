package relation

import (
	"errors"
	"net/http"

	"github.com/roomster/roomster-api/internal/domain/user"
	"github.com/roomster/roomster-api/internal/middleware"
	"github.com/roomster/roomster-api/internal/pkg/facebook"
	"github.com/roomster/roomster-api/internal/pkg/logger"
	"github.com/roomster/roomster-api/internal/pkg/response"
	"github.com/roomster/roomster-api/internal/pkg/validator"
)

// Handler handles relation HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates relation handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Sync handles POST /relations/sync
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	force := r.URL.Query().Get("force") == "true"

	result, err := h.service.Synchronize(r.Context(), userID, force)
	if err != nil {
		h.writeSyncError(w, r, userID, err)
		return
	}

	response.OK(w, SyncResponse{
		Created:        result.Created,
		Modified:       result.Modified,
		LastUpdateDate: result.LastUpdateDate,
	})
}

func (h *Handler) writeSyncError(w http.ResponseWriter, r *http.Request, userID string, err error) {
	logger.LogError(r.Context(), err, "Relation sync failed", "user_id", userID)

	var apiErr *facebook.APIError
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		response.NotFound(w, "User not found")
	case errors.Is(err, ErrNoAccessToken):
		response.BadRequest(w, "No friend source access token for this user")
	case errors.Is(err, ErrSyncInProgress):
		response.Conflict(w, "Synchronization already in progress")
	case errors.As(err, &apiErr):
		response.BadGateway(w, "Friend source request failed")
	default:
		response.InternalError(w)
	}
}

// ListMy handles GET /relations/my
func (h *Handler) ListMy(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	rels, err := h.service.ListMy(r.Context(), userID)
	if err != nil {
		logger.LogError(r.Context(), err, "Failed to list relations", "user_id", userID)
		response.InternalError(w)
		return
	}

	items := make([]*RelationResponse, 0, len(rels))
	for _, rel := range rels {
		items = append(items, RelationFromEntity(rel))
	}
	response.OK(w, items)
}

// RemoveAllMy handles DELETE /relations/my
func (h *Handler) RemoveAllMy(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	count, err := h.service.RemoveAllMy(r.Context(), userID)
	if err != nil {
		logger.LogError(r.Context(), err, "Failed to delete relations", "user_id", userID)
		response.InternalError(w)
		return
	}
	response.OK(w, DeleteAllResponse{Count: count})
}

// Upsert handles PUT /relations
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req UpsertRelationRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if fieldErrors := validator.Validate(req); fieldErrors != nil {
		response.ValidationError(w, fieldErrors)
		return
	}

	rel, err := h.service.Upsert(r.Context(), userID, req.SubjectID, req.Banned, req.Follow)
	if err != nil {
		switch {
		case errors.Is(err, ErrSelfRelation):
			response.BadRequest(w, "Cannot create a relation to yourself")
		case errors.Is(err, ErrFlagsRequired):
			response.BadRequest(w, "One (or more) of fields banned, follow should be defined")
		default:
			logger.LogError(r.Context(), err, "Failed to upsert relation", "user_id", userID)
			response.InternalError(w)
		}
		return
	}

	response.OK(w, RelationFromEntity(rel))
}

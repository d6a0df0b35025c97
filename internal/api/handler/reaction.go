package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/hikaru-dev/clipflow/internal/api/middleware"
	"github.com/hikaru-dev/clipflow/internal/domain/model"
	"github.com/hikaru-dev/clipflow/internal/domain/repository"
	"github.com/hikaru-dev/clipflow/internal/usecase"
)

type ReactionRequest struct {
	Reaction string `json:"reaction" validate:"required,oneof=LIKED DISLIKED"`
}

type ReactionResponse struct {
	VideoID  string `json:"video_id"`
	Reaction string `json:"reaction"`
	Likes    int64  `json:"likes"`
	Dislikes int64  `json:"dislikes"`
}

// ReactionHandler handles like/dislike toggles.
type ReactionHandler struct {
	svc      usecase.ReactionService
	validate *validator.Validate
}

// NewReactionHandler creates a new ReactionHandler.
func NewReactionHandler(svc usecase.ReactionService) *ReactionHandler {
	return &ReactionHandler{
		svc:      svc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// React handles POST /v1/videos/{id}/reactions
//
// Sending the reaction the user already has clears it; sending the
// opposite one replaces it.
func (h *ReactionHandler) React(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		Error(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	videoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_video_id", "Video ID must be a valid UUID")
		return
	}

	var req ReactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_reaction", "Reaction must be LIKED or DISLIKED")
		return
	}

	output, err := h.svc.React(r.Context(), usecase.ReactionInput{
		VideoID:   videoID,
		UserID:    identity.UserID,
		Requested: model.ReactionState(req.Reaction),
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, ReactionResponse{
		VideoID:  videoID.String(),
		Reaction: output.State.String(),
		Likes:    output.Likes,
		Dislikes: output.Dislikes,
	})
}

func (h *ReactionHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrVideoNotFound):
		Error(w, http.StatusNotFound, "video_not_found", "Video not found")
	case errors.Is(err, model.ErrInvalidReaction):
		Error(w, http.StatusBadRequest, "invalid_reaction", "Reaction must be LIKED or DISLIKED")
	default:
		Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

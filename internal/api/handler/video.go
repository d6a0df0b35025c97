package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/hikaru-dev/clipflow/internal/api/middleware"
	"github.com/hikaru-dev/clipflow/internal/domain/model"
	"github.com/hikaru-dev/clipflow/internal/domain/repository"
	"github.com/hikaru-dev/clipflow/internal/usecase"
)

// Request/Response types

type CreateVideoRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=5000"`
	FileName    string `json:"file_name" validate:"required,max=255"`
}

type CreateVideoResponse struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	UploadURL string `json:"upload_url"`
	CreatedAt string `json:"created_at"`
}

type VideoResponse struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Status       string `json:"status"`
	HLSURL       string `json:"hls_url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Views        int64  `json:"views"`
	Likes        int64  `json:"likes"`
	Dislikes     int64  `json:"dislikes"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

type WatchVideoResponse struct {
	ID          string `json:"id"`
	PlaybackURL string `json:"playback_url"`
	Views       int64  `json:"views"`
}

type DownloadURLResponse struct {
	DownloadURL string `json:"download_url"`
}

// VideoHandler handles video-related HTTP requests.
type VideoHandler struct {
	svc      usecase.VideoService
	validate *validator.Validate
}

// NewVideoHandler creates a new VideoHandler.
func NewVideoHandler(svc usecase.VideoService) *VideoHandler {
	return &VideoHandler{
		svc:      svc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Create handles POST /v1/videos
func (h *VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		Error(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	var req CreateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", validationMessage(err))
		return
	}

	output, err := h.svc.CreateVideo(r.Context(), usecase.CreateVideoInput{
		UserID:      identity.UserID,
		Title:       req.Title,
		Description: req.Description,
		FileName:    req.FileName,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusCreated, CreateVideoResponse{
		ID:        output.Video.ID.String(),
		UserID:    output.Video.UserID,
		Title:     output.Video.Title,
		Status:    output.Video.Status.String(),
		UploadURL: output.UploadURL,
		CreatedAt: output.Video.CreatedAt.Format(time.RFC3339),
	})
}

// TriggerProcess handles POST /v1/videos/{id}/process
func (h *VideoHandler) TriggerProcess(w http.ResponseWriter, r *http.Request) {
	videoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_video_id", "Video ID must be a valid UUID")
		return
	}

	if err := h.svc.TriggerProcess(r.Context(), videoID); err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// Get handles GET /v1/videos/{id}
func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	videoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_video_id", "Video ID must be a valid UUID")
		return
	}

	video, err := h.svc.GetVideo(r.Context(), videoID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, toVideoResponse(video))
}

// ListMine handles GET /v1/videos
func (h *VideoHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		Error(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	videos, err := h.svc.GetUserVideos(r.Context(), identity.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	responses := make([]VideoResponse, 0, len(videos))
	for _, v := range videos {
		responses = append(responses, toVideoResponse(v))
	}

	JSON(w, http.StatusOK, map[string]any{"videos": responses})
}

// Watch handles GET /v1/videos/{id}/watch
func (h *VideoHandler) Watch(w http.ResponseWriter, r *http.Request) {
	videoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_video_id", "Video ID must be a valid UUID")
		return
	}

	output, err := h.svc.WatchVideo(r.Context(), videoID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, WatchVideoResponse{
		ID:          output.Video.ID.String(),
		PlaybackURL: output.PlaybackURL,
		Views:       output.Video.Views,
	})
}

// Download handles GET /v1/videos/{id}/download
func (h *VideoHandler) Download(w http.ResponseWriter, r *http.Request) {
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

	url, err := h.svc.GetDownloadURL(r.Context(), videoID, identity.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, DownloadURLResponse{DownloadURL: url})
}

func (h *VideoHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrVideoNotFound):
		Error(w, http.StatusNotFound, "video_not_found", "Video not found")
	case errors.Is(err, model.ErrInvalidUserID):
		Error(w, http.StatusBadRequest, "invalid_user_id", "User ID cannot be empty")
	case errors.Is(err, model.ErrEmptyTitle):
		Error(w, http.StatusBadRequest, "invalid_title", "Title cannot be empty")
	case errors.Is(err, model.ErrTitleTooLong):
		Error(w, http.StatusBadRequest, "invalid_title", "Title exceeds maximum length")
	case errors.Is(err, model.ErrDescriptionTooLong):
		Error(w, http.StatusBadRequest, "invalid_description", "Description exceeds maximum length")
	case errors.Is(err, usecase.ErrVideoAlreadyCompleted):
		Error(w, http.StatusConflict, "video_already_completed", "Video processing has already completed")
	case errors.Is(err, usecase.ErrVideoNotReady):
		Error(w, http.StatusConflict, "video_not_ready", "Video has not finished processing")
	case errors.Is(err, usecase.ErrNotOwner):
		Error(w, http.StatusForbidden, "forbidden", "Only the uploader may perform this operation")
	default:
		Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

func toVideoResponse(v *model.Video) VideoResponse {
	return VideoResponse{
		ID:           v.ID.String(),
		UserID:       v.UserID,
		Title:        v.Title,
		Description:  v.Description,
		Status:       v.Status.String(),
		HLSURL:       v.HLSURL,
		ThumbnailURL: v.ThumbnailURL,
		Views:        v.Views,
		Likes:        v.Likes,
		Dislikes:     v.Dislikes,
		CreatedAt:    v.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    v.UpdatedAt.Format(time.RFC3339),
	}
}

// validationMessage flattens the first validator error into a short
// human-readable message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return fe.Field() + " is required"
		case "max":
			return fe.Field() + " exceeds maximum length"
		default:
			return fe.Field() + " is invalid"
		}
	}
	return "Invalid request"
}

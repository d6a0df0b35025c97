package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/hikaru-dev/clipflow/internal/api/middleware"
	"github.com/hikaru-dev/clipflow/internal/domain/model"
	"github.com/hikaru-dev/clipflow/internal/domain/repository"
	"github.com/hikaru-dev/clipflow/internal/usecase"
)

type AddCommentRequest struct {
	Body     string  `json:"body" validate:"required,max=1000"`
	ParentID *string `json:"parent_id,omitempty"`
}

type CommentResponse struct {
	ID          string            `json:"id"`
	VideoID     string            `json:"video_id"`
	UserID      string            `json:"user_id"`
	DisplayName string            `json:"display_name,omitempty"`
	Body        string            `json:"body"`
	ParentID    *string           `json:"parent_id,omitempty"`
	CreatedAt   string            `json:"created_at"`
	Replies     []CommentResponse `json:"replies,omitempty"`
}

type CommentListResponse struct {
	Comments   []CommentResponse `json:"comments"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// CommentHandler handles threaded comments on videos.
type CommentHandler struct {
	svc      usecase.CommentService
	validate *validator.Validate
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(svc usecase.CommentService) *CommentHandler {
	return &CommentHandler{
		svc:      svc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Add handles POST /v1/videos/{id}/comments
func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
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

	var req AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", validationMessage(err))
		return
	}

	var parentID *uuid.UUID
	if req.ParentID != nil {
		parsed, err := uuid.Parse(*req.ParentID)
		if err != nil {
			Error(w, http.StatusBadRequest, "invalid_parent_id", "Parent ID must be a valid UUID")
			return
		}
		parentID = &parsed
	}

	comment, err := h.svc.AddComment(r.Context(), usecase.AddCommentInput{
		VideoID:     videoID,
		UserID:      identity.UserID,
		DisplayName: identity.DisplayName,
		Body:        req.Body,
		ParentID:    parentID,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusCreated, toCommentResponse(comment, nil))
}

// List handles GET /v1/videos/{id}/comments
//
// Query parameters:
//   - cursor: opaque token from a previous page
//   - limit: top-level comments per page
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	videoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_video_id", "Video ID must be a valid UUID")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	page, err := h.svc.ListComments(r.Context(), videoID, r.URL.Query().Get("cursor"), limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	comments := make([]CommentResponse, 0, len(page.Comments))
	for _, c := range page.Comments {
		comments = append(comments, toCommentResponse(c, page.Replies[c.ID]))
	}

	resp := CommentListResponse{Comments: comments}
	if page.NextCursor != nil {
		resp.NextCursor = page.NextCursor.Encode()
	}

	JSON(w, http.StatusOK, resp)
}

func (h *CommentHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrVideoNotFound):
		Error(w, http.StatusNotFound, "video_not_found", "Video not found")
	case errors.Is(err, repository.ErrCommentNotFound):
		Error(w, http.StatusNotFound, "comment_not_found", "Parent comment not found")
	case errors.Is(err, model.ErrReplyToReply):
		Error(w, http.StatusBadRequest, "invalid_parent_id", "Replies cannot be nested")
	case errors.Is(err, model.ErrEmptyCommentBody):
		Error(w, http.StatusBadRequest, "invalid_body", "Comment body cannot be empty")
	case errors.Is(err, model.ErrCommentBodyTooLong):
		Error(w, http.StatusBadRequest, "invalid_body", "Comment body exceeds maximum length")
	case errors.Is(err, model.ErrInvalidCursor):
		Error(w, http.StatusBadRequest, "invalid_cursor", "Cursor is malformed")
	default:
		Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

func toCommentResponse(c *model.Comment, replies []*model.Comment) CommentResponse {
	resp := CommentResponse{
		ID:          c.ID.String(),
		VideoID:     c.VideoID.String(),
		UserID:      c.UserID,
		DisplayName: c.DisplayName,
		Body:        c.Body,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339Nano),
	}
	if c.ParentID != nil {
		parent := c.ParentID.String()
		resp.ParentID = &parent
	}
	for _, reply := range replies {
		resp.Replies = append(resp.Replies, toCommentResponse(reply, nil))
	}
	return resp
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/hikaru-dev/clipflow/internal/usecase"
)

type FeedResponse struct {
	Videos  []VideoResponse `json:"videos"`
	Seed    string          `json:"seed"`
	Page    int             `json:"page"`
	HasMore bool            `json:"has_more"`
}

// FeedHandler serves the shuffled discoverability feed.
type FeedHandler struct {
	svc usecase.FeedService
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(svc usecase.FeedService) *FeedHandler {
	return &FeedHandler{svc: svc}
}

// Get handles GET /v1/feed
//
// Query parameters:
//   - seed: shuffle seed; omitted means the server generates one
//   - page: 1-based page number
//   - page_size: items per page
//   - exclude_id: video ID to drop from the candidate set
func (h *FeedHandler) Get(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	input := usecase.FeedInput{
		Seed: q.Get("seed"),
	}

	// Unparsable numbers fall through as zero and get normalized downstream.
	if v := q.Get("page"); v != "" {
		input.Page, _ = strconv.Atoi(v)
	}
	if v := q.Get("page_size"); v != "" {
		input.PageSize, _ = strconv.Atoi(v)
	}

	if v := q.Get("exclude_id"); v != "" {
		excludeID, err := uuid.Parse(v)
		if err != nil {
			Error(w, http.StatusBadRequest, "invalid_exclude_id", "exclude_id must be a valid UUID")
			return
		}
		input.ExcludeID = &excludeID
	}

	output, err := h.svc.GetFeed(r.Context(), input)
	if err != nil {
		Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	videos := make([]VideoResponse, 0, len(output.Videos))
	for _, v := range output.Videos {
		videos = append(videos, toVideoResponse(v))
	}

	JSON(w, http.StatusOK, FeedResponse{
		Videos:  videos,
		Seed:    output.Seed,
		Page:    output.Page,
		HasMore: output.HasMore,
	})
}

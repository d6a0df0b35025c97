package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hikaru-dev/clipflow/internal/domain/model"
	"github.com/hikaru-dev/clipflow/internal/domain/repository"
	"github.com/hikaru-dev/clipflow/internal/usecase"
)

func newCommentRouter(h *CommentHandler, identity *model.Identity) http.Handler {
	r := chi.NewRouter()
	r.Method(http.MethodPost, "/v1/videos/{id}/comments", withAuth(h.Add, identity))
	r.Get("/v1/videos/{id}/comments", h.List)
	return r
}

func TestCommentHandler_Add(t *testing.T) {
	videoID := uuid.New()
	parentID := uuid.New()

	tests := []struct {
		name         string
		body         string
		addCommentFn func(ctx context.Context, input usecase.AddCommentInput) (*model.Comment, error)
		wantStatus   int
	}{
		{
			name: "top-level comment",
			body: `{"body": "great video"}`,
			addCommentFn: func(ctx context.Context, input usecase.AddCommentInput) (*model.Comment, error) {
				if input.VideoID != videoID {
					t.Errorf("VideoID = %s, want %s", input.VideoID, videoID)
				}
				if input.UserID != testIdentity.UserID {
					t.Errorf("UserID = %q, want %q", input.UserID, testIdentity.UserID)
				}
				if input.DisplayName != testIdentity.DisplayName {
					t.Errorf("DisplayName = %q, want %q", input.DisplayName, testIdentity.DisplayName)
				}
				if input.ParentID != nil {
					t.Errorf("ParentID = %v, want nil", input.ParentID)
				}
				return &model.Comment{
					ID:          uuid.New(),
					VideoID:     videoID,
					UserID:      input.UserID,
					DisplayName: input.DisplayName,
					Body:        input.Body,
					CreatedAt:   time.Now(),
				}, nil
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "reply",
			body: `{"body": "agreed", "parent_id": "` + parentID.String() + `"}`,
			addCommentFn: func(ctx context.Context, input usecase.AddCommentInput) (*model.Comment, error) {
				if input.ParentID == nil || *input.ParentID != parentID {
					t.Errorf("ParentID = %v, want %s", input.ParentID, parentID)
				}
				return &model.Comment{
					ID:        uuid.New(),
					VideoID:   videoID,
					UserID:    input.UserID,
					Body:      input.Body,
					ParentID:  input.ParentID,
					CreatedAt: time.Now(),
				}, nil
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "empty body",
			body:       `{"body": ""}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "body too long",
			body:       `{"body": "` + strings.Repeat("a", 1001) + `"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed parent ID",
			body:       `{"body": "hi", "parent_id": "not-a-uuid"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid JSON",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "video not found",
			body: `{"body": "hi"}`,
			addCommentFn: func(ctx context.Context, input usecase.AddCommentInput) (*model.Comment, error) {
				return nil, repository.ErrVideoNotFound
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "parent comment not found",
			body: `{"body": "hi", "parent_id": "` + parentID.String() + `"}`,
			addCommentFn: func(ctx context.Context, input usecase.AddCommentInput) (*model.Comment, error) {
				return nil, repository.ErrCommentNotFound
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "nested reply rejected",
			body: `{"body": "hi", "parent_id": "` + parentID.String() + `"}`,
			addCommentFn: func(ctx context.Context, input usecase.AddCommentInput) (*model.Comment, error) {
				return nil, model.ErrReplyToReply
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCommentHandler(&mockCommentService{addCommentFn: tt.addCommentFn})
			router := newCommentRouter(h, testIdentity)

			req := httptest.NewRequest(http.MethodPost, "/v1/videos/"+videoID.String()+"/comments", bytes.NewBufferString(tt.body))
			req.Header.Set("Authorization", "Bearer test-token")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCommentHandler_Add_MissingToken(t *testing.T) {
	h := NewCommentHandler(&mockCommentService{
		addCommentFn: func(ctx context.Context, input usecase.AddCommentInput) (*model.Comment, error) {
			t.Error("AddComment should not be called without authentication")
			return nil, nil
		},
	})
	router := newCommentRouter(h, testIdentity)

	req := httptest.NewRequest(http.MethodPost, "/v1/videos/"+uuid.NewString()+"/comments", bytes.NewBufferString(`{"body": "hi"}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestCommentHandler_List(t *testing.T) {
	videoID := uuid.New()
	topID := uuid.New()
	cursor := model.CommentCursor{CreatedAt: time.Now().UTC(), ID: uuid.New()}

	mock := &mockCommentService{
		listCommentsFn: func(ctx context.Context, gotVideoID uuid.UUID, gotCursor string, limit int) (*repository.CommentPage, error) {
			if gotVideoID != videoID {
				t.Errorf("videoID = %s, want %s", gotVideoID, videoID)
			}
			if gotCursor != "" {
				t.Errorf("cursor = %q, want empty", gotCursor)
			}
			if limit != 10 {
				t.Errorf("limit = %d, want 10", limit)
			}
			top := &model.Comment{
				ID:          topID,
				VideoID:     videoID,
				UserID:      "uid-a",
				DisplayName: "Alice",
				Body:        "first",
				CreatedAt:   time.Now(),
			}
			reply := &model.Comment{
				ID:        uuid.New(),
				VideoID:   videoID,
				UserID:    "uid-b",
				Body:      "reply",
				ParentID:  &topID,
				CreatedAt: time.Now(),
			}
			return &repository.CommentPage{
				Comments:   []*model.Comment{top},
				Replies:    map[uuid.UUID][]*model.Comment{topID: {reply}},
				NextCursor: &cursor,
			}, nil
		},
	}

	h := NewCommentHandler(mock)
	router := newCommentRouter(h, testIdentity)

	req := httptest.NewRequest(http.MethodGet, "/v1/videos/"+videoID.String()+"/comments?limit=10", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp CommentListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(resp.Comments) != 1 {
		t.Fatalf("expected 1 comment, got %d", len(resp.Comments))
	}
	if len(resp.Comments[0].Replies) != 1 {
		t.Errorf("expected 1 reply, got %d", len(resp.Comments[0].Replies))
	}
	if resp.Comments[0].Replies[0].ParentID == nil || *resp.Comments[0].Replies[0].ParentID != topID.String() {
		t.Errorf("reply parent_id = %v, want %s", resp.Comments[0].Replies[0].ParentID, topID)
	}
	if resp.NextCursor != cursor.Encode() {
		t.Errorf("next_cursor = %q, want %q", resp.NextCursor, cursor.Encode())
	}
}

func TestCommentHandler_List_CursorPassedThrough(t *testing.T) {
	videoID := uuid.New()
	cursor := model.CommentCursor{CreatedAt: time.Now().UTC(), ID: uuid.New()}

	mock := &mockCommentService{
		listCommentsFn: func(ctx context.Context, _ uuid.UUID, gotCursor string, _ int) (*repository.CommentPage, error) {
			if gotCursor != cursor.Encode() {
				t.Errorf("cursor = %q, want %q", gotCursor, cursor.Encode())
			}
			return &repository.CommentPage{Comments: []*model.Comment{}}, nil
		},
	}

	h := NewCommentHandler(mock)
	router := newCommentRouter(h, testIdentity)

	req := httptest.NewRequest(http.MethodGet, "/v1/videos/"+videoID.String()+"/comments?cursor="+cursor.Encode(), nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}

func TestCommentHandler_List_InvalidCursor(t *testing.T) {
	mock := &mockCommentService{
		listCommentsFn: func(ctx context.Context, _ uuid.UUID, _ string, _ int) (*repository.CommentPage, error) {
			return nil, model.ErrInvalidCursor
		},
	}

	h := NewCommentHandler(mock)
	router := newCommentRouter(h, testIdentity)

	req := httptest.NewRequest(http.MethodGet, "/v1/videos/"+uuid.NewString()+"/comments?cursor=garbage", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestCommentHandler_List_InvalidVideoID(t *testing.T) {
	h := NewCommentHandler(&mockCommentService{})
	router := newCommentRouter(h, testIdentity)

	req := httptest.NewRequest(http.MethodGet, "/v1/videos/not-a-uuid/comments", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

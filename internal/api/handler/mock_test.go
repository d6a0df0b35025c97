package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/hikaru-dev/clipflow/internal/api/middleware"
	"github.com/hikaru-dev/clipflow/internal/domain/model"
	"github.com/hikaru-dev/clipflow/internal/domain/repository"
	"github.com/hikaru-dev/clipflow/internal/usecase"
)

// Mock VideoService

type mockVideoService struct {
	createVideoFn    func(ctx context.Context, input usecase.CreateVideoInput) (*usecase.CreateVideoOutput, error)
	triggerProcessFn func(ctx context.Context, videoID uuid.UUID) error
	getVideoFn       func(ctx context.Context, videoID uuid.UUID) (*model.Video, error)
	getUserVideosFn  func(ctx context.Context, userID string) ([]*model.Video, error)
	watchVideoFn     func(ctx context.Context, videoID uuid.UUID) (*usecase.WatchVideoOutput, error)
	getDownloadURLFn func(ctx context.Context, videoID uuid.UUID, userID string) (string, error)
}

func (m *mockVideoService) CreateVideo(ctx context.Context, input usecase.CreateVideoInput) (*usecase.CreateVideoOutput, error) {
	if m.createVideoFn != nil {
		return m.createVideoFn(ctx, input)
	}
	return nil, nil
}

func (m *mockVideoService) TriggerProcess(ctx context.Context, videoID uuid.UUID) error {
	if m.triggerProcessFn != nil {
		return m.triggerProcessFn(ctx, videoID)
	}
	return nil
}

func (m *mockVideoService) GetVideo(ctx context.Context, videoID uuid.UUID) (*model.Video, error) {
	if m.getVideoFn != nil {
		return m.getVideoFn(ctx, videoID)
	}
	return nil, nil
}

func (m *mockVideoService) GetUserVideos(ctx context.Context, userID string) ([]*model.Video, error) {
	if m.getUserVideosFn != nil {
		return m.getUserVideosFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockVideoService) WatchVideo(ctx context.Context, videoID uuid.UUID) (*usecase.WatchVideoOutput, error) {
	if m.watchVideoFn != nil {
		return m.watchVideoFn(ctx, videoID)
	}
	return nil, nil
}

func (m *mockVideoService) GetDownloadURL(ctx context.Context, videoID uuid.UUID, userID string) (string, error) {
	if m.getDownloadURLFn != nil {
		return m.getDownloadURLFn(ctx, videoID, userID)
	}
	return "", nil
}

// Mock FeedService

type mockFeedService struct {
	getFeedFn func(ctx context.Context, input usecase.FeedInput) (*usecase.FeedOutput, error)
}

func (m *mockFeedService) GetFeed(ctx context.Context, input usecase.FeedInput) (*usecase.FeedOutput, error) {
	if m.getFeedFn != nil {
		return m.getFeedFn(ctx, input)
	}
	return &usecase.FeedOutput{}, nil
}

// Mock ReactionService

type mockReactionService struct {
	reactFn func(ctx context.Context, input usecase.ReactionInput) (*usecase.ReactionOutput, error)
}

func (m *mockReactionService) React(ctx context.Context, input usecase.ReactionInput) (*usecase.ReactionOutput, error) {
	if m.reactFn != nil {
		return m.reactFn(ctx, input)
	}
	return &usecase.ReactionOutput{}, nil
}

// Mock CommentService

type mockCommentService struct {
	addCommentFn   func(ctx context.Context, input usecase.AddCommentInput) (*model.Comment, error)
	listCommentsFn func(ctx context.Context, videoID uuid.UUID, cursor string, limit int) (*repository.CommentPage, error)
}

func (m *mockCommentService) AddComment(ctx context.Context, input usecase.AddCommentInput) (*model.Comment, error) {
	if m.addCommentFn != nil {
		return m.addCommentFn(ctx, input)
	}
	return nil, nil
}

func (m *mockCommentService) ListComments(ctx context.Context, videoID uuid.UUID, cursor string, limit int) (*repository.CommentPage, error) {
	if m.listCommentsFn != nil {
		return m.listCommentsFn(ctx, videoID, cursor, limit)
	}
	return &repository.CommentPage{}, nil
}

// stubVerifier accepts any token and returns a fixed identity.
type stubVerifier struct {
	identity *model.Identity
}

func (s *stubVerifier) VerifyToken(ctx context.Context, idToken string) (*model.Identity, error) {
	if s.identity == nil {
		return nil, repository.ErrInvalidToken
	}
	return s.identity, nil
}

// testIdentity is the caller used by authenticated handler tests.
var testIdentity = &model.Identity{
	UserID:      "uid-test",
	DisplayName: "Test User",
}

// withAuth wraps a handler in the bearer-token middleware with a stub
// verifier, so tests exercise the same identity plumbing as production.
func withAuth(h http.HandlerFunc, identity *model.Identity) http.Handler {
	verifier := &stubVerifier{identity: identity}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return middleware.NewAuthenticator(verifier, logger).RequireAuth(h)
}

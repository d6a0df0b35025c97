package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hikaru-dev/clipflow/internal/domain/model"
	"github.com/hikaru-dev/clipflow/internal/domain/repository"
	"github.com/hikaru-dev/clipflow/internal/feed"
	"github.com/hikaru-dev/clipflow/internal/infrastructure/metrics"
)

// FeedInput contains the parameters for one feed page request.
type FeedInput struct {
	// Seed fixes the shuffle ordering across pages. Empty means the server
	// generates one and echoes it back in the output.
	Seed     string
	Page     int
	PageSize int
	// ExcludeID removes one video from the candidate set, typically the
	// video the viewer is currently watching.
	ExcludeID *uuid.UUID
}

// FeedOutput is one page of the shuffled feed.
type FeedOutput struct {
	Videos []*model.Video
	// Seed is the seed that produced this ordering. Clients pass it back
	// to keep the ordering stable while paging.
	Seed    string
	Page    int
	HasMore bool
}

// FeedService assembles pages of the discoverability feed.
type FeedService interface {
	// GetFeed returns one page of READY videos in a seed-determined order.
	GetFeed(ctx context.Context, input FeedInput) (*FeedOutput, error)
}

// FeedServiceConfig holds configuration for FeedService.
type FeedServiceConfig struct {
	// CDNBaseURL is the base URL for CDN-served HLS content.
	CDNBaseURL string
}

type feedService struct {
	repo repository.VideoRepository

	cdnBaseURL string
}

// NewFeedService creates a new FeedService instance.
func NewFeedService(repo repository.VideoRepository, cfg FeedServiceConfig) FeedService {
	return &feedService{
		repo:       repo,
		cdnBaseURL: cfg.CDNBaseURL,
	}
}

// GetFeed loads all READY videos, applies the seeded shuffle, and slices
// out the requested page.
//
// The candidate set is re-read on every request. A video published between
// two page requests shifts the permutation, so a paging client may see an
// item twice or miss one; the ordering guarantee only holds over a fixed
// candidate set.
func (s *feedService) GetFeed(ctx context.Context, input FeedInput) (*FeedOutput, error) {
	candidates, err := s.repo.ListFeedCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list feed candidates: %w", err)
	}

	if input.ExcludeID != nil {
		candidates = excludeVideo(candidates, *input.ExcludeID)
	}

	seed := input.Seed
	if seed == "" {
		seed = feed.NewSeed()
		metrics.FeedRequestsTotal.WithLabelValues(metrics.SeedSourceGenerated).Inc()
	} else {
		metrics.FeedRequestsTotal.WithLabelValues(metrics.SeedSourceClient).Inc()
	}

	page := input.Page
	if page < 1 {
		page = 1
	}

	videos, hasMore := feed.Paginate(candidates, seed, page, input.PageSize)

	for i, v := range videos {
		videos[i] = enrichWithCDNURL(v, s.cdnBaseURL)
	}

	return &FeedOutput{
		Videos:  videos,
		Seed:    seed,
		Page:    page,
		HasMore: hasMore,
	}, nil
}

// excludeVideo filters one video out of the candidate slice.
func excludeVideo(videos []*model.Video, id uuid.UUID) []*model.Video {
	out := make([]*model.Video, 0, len(videos))
	for _, v := range videos {
		if v.ID != id {
			out = append(out, v)
		}
	}
	return out
}

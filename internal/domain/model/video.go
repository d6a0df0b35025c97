package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents the processing state of a video.
type Status string

const (
	StatusPendingUpload Status = "PENDING_UPLOAD"
	StatusProcessing    Status = "PROCESSING"
	StatusReady         Status = "READY"
	StatusFailed        Status = "FAILED"
)

// Valid status transitions:
// PENDING_UPLOAD -> PROCESSING -> READY
//                            \-> FAILED
var validTransitions = map[Status][]Status{
	StatusPendingUpload: {StatusProcessing},
	StatusProcessing:    {StatusReady, StatusFailed},
	StatusReady:         {},
	StatusFailed:        {},
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPendingUpload, StatusProcessing, StatusReady, StatusFailed:
		return true
	default:
		return false
	}
}

func (s Status) CanTransitionTo(next Status) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, status := range allowed {
		if status == next {
			return true
		}
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// Video represents a video entity in the domain.
// UserID is the identity-provider UID of the uploader, not a local record.
type Video struct {
	ID           uuid.UUID
	UserID       string
	Title        string
	Description  string
	Status       Status
	OriginalKey  string
	HLSURL       string
	ThumbnailURL string
	Views        int64
	Likes        int64
	Dislikes     int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var (
	ErrEmptyTitle         = errors.New("title cannot be empty")
	ErrInvalidUserID      = errors.New("user ID cannot be empty")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrTitleTooLong       = errors.New("title exceeds maximum length of 255 characters")
	ErrDescriptionTooLong = errors.New("description exceeds maximum length of 5000 characters")
)

const (
	maxTitleLength       = 255
	maxDescriptionLength = 5000
)

// NewVideo creates a new Video with PENDING_UPLOAD status.
func NewVideo(userID, title, description string) (*Video, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if len(title) > maxTitleLength {
		return nil, ErrTitleTooLong
	}
	if len(description) > maxDescriptionLength {
		return nil, ErrDescriptionTooLong
	}

	now := time.Now()
	return &Video{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		Description: description,
		Status:      StatusPendingUpload,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// TransitionTo attempts to change the video status.
// Returns error if the transition is not allowed.
func (v *Video) TransitionTo(next Status) error {
	if !next.IsValid() {
		return ErrInvalidTransition
	}
	if !v.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	v.Status = next
	v.UpdatedAt = time.Now()
	return nil
}

// SetOriginalKey sets the object storage key of the raw upload.
func (v *Video) SetOriginalKey(key string) {
	v.OriginalKey = key
	v.UpdatedAt = time.Now()
}

// SetHLSURL sets the HLS manifest URL after transcoding.
func (v *Video) SetHLSURL(url string) {
	v.HLSURL = url
	v.UpdatedAt = time.Now()
}

// SetThumbnailURL sets the thumbnail URL after transcoding.
func (v *Video) SetThumbnailURL(url string) {
	v.ThumbnailURL = url
	v.UpdatedAt = time.Now()
}

// IsOwnedBy reports whether the video was uploaded by the given user.
func (v *Video) IsOwnedBy(userID string) bool {
	return v.UserID == userID
}

// IsReady returns true if the video is ready for streaming.
func (v *Video) IsReady() bool {
	return v.Status == StatusReady
}

// IsFailed returns true if the video processing failed.
func (v *Video) IsFailed() bool {
	return v.Status == StatusFailed
}

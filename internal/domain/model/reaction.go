package model

import "errors"

// ReactionState is a user's reaction to a single video.
// ReactionNone means no per-user record exists.
type ReactionState string

const (
	ReactionNone     ReactionState = "NONE"
	ReactionLiked    ReactionState = "LIKED"
	ReactionDisliked ReactionState = "DISLIKED"
)

// ErrInvalidReaction is returned when a requested reaction is neither
// LIKED nor DISLIKED.
var ErrInvalidReaction = errors.New("reaction must be liked or disliked")

func (s ReactionState) IsValid() bool {
	switch s {
	case ReactionNone, ReactionLiked, ReactionDisliked:
		return true
	default:
		return false
	}
}

// IsRequestable reports whether the state is a valid toggle request.
// ReactionNone cannot be requested directly; it is reached by toggling
// the currently held reaction off.
func (s ReactionState) IsRequestable() bool {
	return s == ReactionLiked || s == ReactionDisliked
}

func (s ReactionState) String() string {
	return string(s)
}

// CounterDelta is the adjustment to apply to a video's aggregate like and
// dislike counters after a reaction toggle. Each field is -1, 0, or +1.
type CounterDelta struct {
	Likes    int64
	Dislikes int64
}

// IsZero reports whether the delta leaves the counters unchanged.
func (d CounterDelta) IsZero() bool {
	return d.Likes == 0 && d.Dislikes == 0
}

// ApplyReaction computes the result of a reaction toggle.
//
// Requesting the reaction currently held clears it; requesting the opposite
// reaction replaces it:
//
//	current   requested  next      likes  dislikes
//	NONE      LIKED      LIKED      +1      0
//	NONE      DISLIKED   DISLIKED    0     +1
//	LIKED     LIKED      NONE       -1      0
//	LIKED     DISLIKED   DISLIKED   -1     +1
//	DISLIKED  DISLIKED   NONE        0     -1
//	DISLIKED  LIKED      LIKED      +1     -1
//
// ApplyReaction is pure and total over valid inputs. The caller persists
// next (deleting the per-user record when next is NONE) and applies the
// delta to the aggregate counters.
func ApplyReaction(current, requested ReactionState) (ReactionState, CounterDelta) {
	if current == requested {
		return ReactionNone, removalDelta(current)
	}

	delta := removalDelta(current)
	switch requested {
	case ReactionLiked:
		delta.Likes++
	case ReactionDisliked:
		delta.Dislikes++
	}
	return requested, delta
}

// removalDelta returns the counter adjustment for clearing a held reaction.
func removalDelta(state ReactionState) CounterDelta {
	switch state {
	case ReactionLiked:
		return CounterDelta{Likes: -1}
	case ReactionDisliked:
		return CounterDelta{Dislikes: -1}
	default:
		return CounterDelta{}
	}
}

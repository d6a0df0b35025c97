package repository

import (
	"context"

	"github.com/hikaru-dev/clipflow/internal/domain/model"
)

// TokenVerifier defines the interface for identity-provider token
// verification. Implementations should be provided by the infrastructure
// layer (e.g., Firebase Auth).
type TokenVerifier interface {
	// VerifyToken validates a bearer ID token and returns the caller's
	// identity. Returns ErrInvalidToken if the token is malformed,
	// expired, or revoked.
	VerifyToken(ctx context.Context, idToken string) (*model.Identity, error)
}

package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hikaru-dev/clipflow/internal/domain/model"
	"github.com/hikaru-dev/clipflow/internal/domain/repository"
)

const identityKey ctxKey = 1

// Authenticator authenticates requests with a bearer ID token.
type Authenticator struct {
	verifier repository.TokenVerifier
	logger   *slog.Logger
}

// NewAuthenticator creates an Authenticator backed by the given verifier.
func NewAuthenticator(verifier repository.TokenVerifier, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		verifier: verifier,
		logger:   logger,
	}
}

// RequireAuth rejects requests without a valid bearer token and stores the
// verified identity in the request context.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			unauthorized(w, "Missing bearer token")
			return
		}

		identity, err := a.verifier.VerifyToken(r.Context(), token)
		if err != nil {
			a.logger.Info("token verification failed",
				slog.String("request_id", GetRequestID(r.Context())),
				slog.String("error", err.Error()),
			)
			unauthorized(w, "Invalid or expired token")
			return
		}

		if la := logAttrsFrom(r.Context()); la != nil {
			la.userID = identity.UserID
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetIdentity retrieves the verified identity from context.
// The second return is false for requests that did not pass RequireAuth.
func GetIdentity(ctx context.Context) (*model.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*model.Identity)
	return identity, ok
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": message,
	})
}

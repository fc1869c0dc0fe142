// Package auth verifies OIDC bearer tokens and exposes the caller's identity
// to downstream handlers.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/JaimeStill/flatcheck/pkg/handlers"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

// Identity is the verified caller.
type Identity struct {
	Subject string `json:"subject"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

// DisplayName returns the best human-readable name available.
func (i Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	if i.Email != "" {
		return i.Email
	}
	return i.Subject
}

type ctxKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity stored by the middleware, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// Authenticator verifies ID tokens against an issuer's signing keys.
type Authenticator struct {
	enabled  bool
	verifier *oidc.IDTokenVerifier
	logger   *slog.Logger
}

// New creates an Authenticator that fetches signing keys from cfg.JWKSURL on demand.
// When auth is disabled the returned Authenticator passes every request through.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) *Authenticator {
	if !cfg.Enabled {
		return &Authenticator{logger: logger.With("system", "auth")}
	}
	keys := oidc.NewRemoteKeySet(ctx, cfg.JWKSURL)
	return NewWithKeySet(cfg, keys, logger)
}

// NewWithKeySet creates an enabled Authenticator backed by the given key set.
func NewWithKeySet(cfg *Config, keys oidc.KeySet, logger *slog.Logger) *Authenticator {
	verifier := oidc.NewVerifier(cfg.IssuerURL, keys, &oidc.Config{
		ClientID:          cfg.ClientID,
		SkipClientIDCheck: cfg.ClientID == "",
	})

	return &Authenticator{
		enabled:  true,
		verifier: verifier,
		logger:   logger.With("system", "auth"),
	}
}

// Enabled reports whether requests are verified.
func (a *Authenticator) Enabled() bool {
	return a.enabled
}

// Verify checks a raw ID token and extracts the caller identity.
func (a *Authenticator) Verify(ctx context.Context, raw string) (Identity, error) {
	token, err := a.verifier.Verify(ctx, raw)
	if err != nil {
		return Identity{}, errors.Join(ErrInvalidToken, err)
	}

	var claims struct {
		Name              string `json:"name"`
		PreferredUsername string `json:"preferred_username"`
		Email             string `json:"email"`
	}
	if err := token.Claims(&claims); err != nil {
		return Identity{}, errors.Join(ErrInvalidToken, err)
	}

	name := claims.Name
	if name == "" {
		name = claims.PreferredUsername
	}

	return Identity{
		Subject: token.Subject,
		Name:    name,
		Email:   claims.Email,
	}, nil
}

// Middleware rejects requests without a valid bearer token and stores the
// verified identity in the request context.
func (a *Authenticator) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !a.enabled {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := bearerToken(r)
			if !ok {
				handlers.RespondError(w, a.logger, http.StatusUnauthorized, ErrMissingToken)
				return
			}

			id, err := a.Verify(r.Context(), raw)
			if err != nil {
				handlers.RespondError(w, a.logger, http.StatusUnauthorized, ErrInvalidToken)
				a.logger.Debug("token verification failed", "error", err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}

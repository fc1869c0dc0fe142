package auth_test

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-jose/go-jose/v4"

	"github.com/JaimeStill/flatcheck/pkg/auth"
)

const issuer = "https://id.example.test/realms/flatcheck"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims map[string]any) string {
	t.Helper()

	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.RS256, Key: key}, nil)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}

	obj, err := signer.Sign(payload)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	raw, err := obj.CompactSerialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	return raw
}

func validClaims() map[string]any {
	return map[string]any{
		"iss":   issuer,
		"sub":   "inspector-7",
		"aud":   "flatcheck",
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
		"name":  "Anna Schmidt",
		"email": "anna@example.test",
	}
}

func newAuthenticator(t *testing.T) (*auth.Authenticator, *rsa.PrivateKey) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	keys := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&key.PublicKey}}
	cfg := &auth.Config{Enabled: true, IssuerURL: issuer, ClientID: "flatcheck"}

	return auth.NewWithKeySet(cfg, keys, discardLogger()), key
}

func TestMiddleware(t *testing.T) {
	a, key := newAuthenticator(t)

	var seen auth.Identity
	handler := a.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/inspections", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, key, validClaims()))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d, want 204", rec.Code)
		}
		if seen.Subject != "inspector-7" {
			t.Errorf("subject = %q, want inspector-7", seen.Subject)
		}
		if seen.DisplayName() != "Anna Schmidt" {
			t.Errorf("display name = %q, want Anna Schmidt", seen.DisplayName())
		}
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/inspections", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}

	t.Run("expired token", func(t *testing.T) {
		claims := validClaims()
		claims["exp"] = time.Now().Add(-time.Hour).Unix()

		req := httptest.NewRequest("GET", "/inspections", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, key, claims))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("wrong audience", func(t *testing.T) {
		claims := validClaims()
		claims["aud"] = "someone-else"

		req := httptest.NewRequest("GET", "/inspections", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, key, claims))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestDisabledPassesThrough(t *testing.T) {
	a := auth.New(t.Context(), &auth.Config{}, discardLogger())
	if a.Enabled() {
		t.Fatal("Enabled() = true for empty config")
	}

	handler := a.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.FromContext(r.Context()); ok {
			t.Error("identity set while auth disabled")
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestDisplayNameFallback(t *testing.T) {
	tests := []struct {
		id   auth.Identity
		want string
	}{
		{auth.Identity{Subject: "s", Name: "N", Email: "e"}, "N"},
		{auth.Identity{Subject: "s", Email: "e"}, "e"},
		{auth.Identity{Subject: "s"}, "s"},
	}

	for _, tt := range tests {
		if got := tt.id.DisplayName(); got != tt.want {
			t.Errorf("DisplayName() = %q, want %q", got, tt.want)
		}
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Run("disabled needs nothing", func(t *testing.T) {
		cfg := auth.Config{}
		if err := cfg.Finalize(nil); err != nil {
			t.Errorf("finalize: %v", err)
		}
	})

	t.Run("enabled requires issuer", func(t *testing.T) {
		cfg := auth.Config{Enabled: true}
		if err := cfg.Finalize(nil); err == nil {
			t.Error("expected error without issuer_url")
		}
	})

	t.Run("derives jwks url", func(t *testing.T) {
		cfg := auth.Config{Enabled: true, IssuerURL: issuer}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if cfg.JWKSURL != issuer+"/protocol/openid-connect/certs" {
			t.Errorf("jwks_url = %s", cfg.JWKSURL)
		}
	})

	t.Run("env enables", func(t *testing.T) {
		t.Setenv("TEST_AUTH_ENABLED", "true")
		t.Setenv("TEST_AUTH_ISSUER", issuer)
		cfg := auth.Config{}
		err := cfg.Finalize(&auth.Env{Enabled: "TEST_AUTH_ENABLED", IssuerURL: "TEST_AUTH_ISSUER"})
		if err != nil {
			t.Fatalf("finalize: %v", err)
		}
		if !cfg.Enabled || cfg.IssuerURL != issuer {
			t.Errorf("config = %+v", cfg)
		}
	})
}

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/RaffaelSchaefer/gc25-sub000/pkg/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(Config{
		JWTSecret:   "test-secret",
		TokenExpiry: time.Hour,
		APIKeys: []APIKeyConfig{
			{Key: "planner-key-1", UserID: "svc-bot", Name: "Floor Bot"},
			{Key: "planner-key-2"},
		},
	})
}

func TestJWTRoundTrip(t *testing.T) {
	service := newTestService(t)
	user := &models.User{ID: "u1", Name: "Alice", Email: "alice@example.com"}

	token, err := service.GenerateJWT(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	got, err := service.ValidateJWT(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got.ID != "u1" || got.Name != "Alice" || got.Email != "alice@example.com" {
		t.Errorf("validated user = %+v", got)
	}
}

func TestJWTRejections(t *testing.T) {
	service := newTestService(t)
	token, err := service.GenerateJWT(&models.User{ID: "u1"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	t.Run("wrong secret", func(t *testing.T) {
		other := NewService(Config{JWTSecret: "different-secret"})
		if _, err := other.ValidateJWT(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("got %v, want ErrInvalidToken", err)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		if _, err := service.ValidateJWT("not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("got %v, want ErrInvalidToken", err)
		}
	})

	t.Run("tampered payload", func(t *testing.T) {
		parts := strings.Split(token, ".")
		tampered := parts[0] + ".eyJzdWIiOiJ1MiJ9." + parts[2]
		if _, err := service.ValidateJWT(tampered); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("got %v, want ErrInvalidToken", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		jwtSvc := NewJWTService("test-secret", time.Nanosecond)
		expired, err := jwtSvc.Generate(&models.User{ID: "u1"})
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
		if _, err := jwtSvc.Validate(expired); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("got %v, want ErrInvalidToken", err)
		}
	})

	t.Run("missing user id", func(t *testing.T) {
		if _, err := service.GenerateJWT(&models.User{}); err == nil {
			t.Error("generate for empty user id succeeded")
		}
	})
}

func TestValidateAPIKey(t *testing.T) {
	service := newTestService(t)

	user, err := service.ValidateAPIKey("planner-key-1")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if user.ID != "svc-bot" || user.Name != "Floor Bot" {
		t.Errorf("user = %+v", user)
	}

	// A key without a configured user id gets a derived identity.
	derived, err := service.ValidateAPIKey("planner-key-2")
	if err != nil {
		t.Fatalf("validate derived: %v", err)
	}
	if !strings.HasPrefix(derived.ID, "api_") {
		t.Errorf("derived id = %q", derived.ID)
	}

	if _, err := service.ValidateAPIKey("wrong-key"); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("wrong key: %v, want ErrInvalidKey", err)
	}

	disabled := NewService(Config{})
	if _, err := disabled.ValidateAPIKey("planner-key-1"); !errors.Is(err, ErrAuthDisabled) {
		t.Errorf("disabled service: %v, want ErrAuthDisabled", err)
	}
}

func TestResolve(t *testing.T) {
	service := newTestService(t)
	token, err := service.GenerateJWT(&models.User{ID: "u1", Name: "Alice"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	t.Run("bearer token", func(t *testing.T) {
		headers := http.Header{}
		headers.Set("Authorization", "Bearer "+token)
		session := service.Resolve(headers)
		if session == nil || session.User.ID != "u1" {
			t.Errorf("session = %+v", session)
		}
	})

	t.Run("api key header", func(t *testing.T) {
		headers := http.Header{}
		headers.Set("X-API-Key", "planner-key-1")
		session := service.Resolve(headers)
		if session == nil || session.User.ID != "svc-bot" {
			t.Errorf("session = %+v", session)
		}
	})

	t.Run("invalid bearer falls back to api key", func(t *testing.T) {
		headers := http.Header{}
		headers.Set("Authorization", "Bearer bogus")
		headers.Set("X-API-Key", "planner-key-1")
		session := service.Resolve(headers)
		if session == nil || session.User.ID != "svc-bot" {
			t.Errorf("session = %+v", session)
		}
	})

	t.Run("no credentials is anonymous", func(t *testing.T) {
		if session := service.Resolve(http.Header{}); session != nil {
			t.Errorf("session = %+v, want nil", session)
		}
	})

	t.Run("bad credentials are anonymous", func(t *testing.T) {
		headers := http.Header{}
		headers.Set("Authorization", "Bearer bogus")
		headers.Set("X-API-Key", "wrong-key")
		if session := service.Resolve(headers); session != nil {
			t.Errorf("session = %+v, want nil", session)
		}
	})

	t.Run("nil service", func(t *testing.T) {
		var nilService *Service
		headers := http.Header{}
		headers.Set("Authorization", "Bearer "+token)
		if session := nilService.Resolve(headers); session != nil {
			t.Errorf("session = %+v, want nil", session)
		}
	})
}

func TestEnabled(t *testing.T) {
	if !newTestService(t).Enabled() {
		t.Error("configured service reports disabled")
	}
	if NewService(Config{}).Enabled() {
		t.Error("empty service reports enabled")
	}
	if NewService(Config{JWTSecret: "   "}).Enabled() {
		t.Error("blank secret reports enabled")
	}
}

func TestSessionContext(t *testing.T) {
	session := &models.Session{User: models.User{ID: "u1"}}
	ctx := WithSession(context.Background(), session)

	got, ok := SessionFromContext(ctx)
	if !ok || got.User.ID != "u1" {
		t.Errorf("got %+v, %v", got, ok)
	}

	if _, ok := SessionFromContext(context.Background()); ok {
		t.Error("empty context yielded a session")
	}

	// Attaching nil leaves the context untouched.
	if _, ok := SessionFromContext(WithSession(context.Background(), nil)); ok {
		t.Error("nil session was stored")
	}
}

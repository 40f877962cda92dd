// Package auth resolves request sessions from JWTs and static API keys.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/RaffaelSchaefer/gc25-sub000/pkg/models"
)

var (
	ErrAuthDisabled = errors.New("auth disabled")
	ErrInvalidToken = errors.New("invalid token")
	ErrInvalidKey   = errors.New("invalid api key")
)

// Config configures the session service.
type Config struct {
	JWTSecret   string
	TokenExpiry time.Duration
	APIKeys     []APIKeyConfig
}

// APIKeyConfig declares a static API key and associated identity.
type APIKeyConfig struct {
	Key    string
	UserID string
	Name   string
}

// Service validates JWTs and API keys and resolves request sessions.
type Service struct {
	jwt     *JWTService
	apiKeys map[string]*models.User
}

// NewService constructs a session service from static configuration.
func NewService(cfg Config) *Service {
	service := &Service{}
	if strings.TrimSpace(cfg.JWTSecret) != "" {
		service.jwt = NewJWTService(cfg.JWTSecret, cfg.TokenExpiry)
	}
	service.apiKeys = buildAPIKeyMap(cfg.APIKeys)
	return service
}

// Enabled reports whether any credential source is configured.
func (s *Service) Enabled() bool {
	return s != nil && (s.jwt != nil || len(s.apiKeys) > 0)
}

// GenerateJWT issues a signed token for the given user.
func (s *Service) GenerateJWT(user *models.User) (string, error) {
	if s == nil || s.jwt == nil {
		return "", ErrAuthDisabled
	}
	return s.jwt.Generate(user)
}

// ValidateJWT validates a JWT and returns the associated user.
func (s *Service) ValidateJWT(token string) (*models.User, error) {
	if s == nil || s.jwt == nil {
		return nil, ErrAuthDisabled
	}
	return s.jwt.Validate(token)
}

// ValidateAPIKey validates a static API key using constant-time comparison.
func (s *Service) ValidateAPIKey(key string) (*models.User, error) {
	if s == nil || len(s.apiKeys) == 0 {
		return nil, ErrAuthDisabled
	}
	inputKey := strings.TrimSpace(key)
	var matched *models.User
	for storedKey, user := range s.apiKeys {
		if subtle.ConstantTimeCompare([]byte(inputKey), []byte(storedKey)) == 1 {
			matched = user
		}
	}
	if matched == nil {
		return nil, ErrInvalidKey
	}
	return matched, nil
}

// Resolve produces the session for the given request headers. It never
// fails: any missing or invalid credential yields nil, meaning anonymous.
func (s *Service) Resolve(headers http.Header) *models.Session {
	if s == nil || headers == nil {
		return nil
	}

	authHeader := headers.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		token := strings.TrimSpace(authHeader[len("bearer "):])
		if user, err := s.ValidateJWT(token); err == nil {
			return &models.Session{User: *user}
		}
	}

	apiKey := headers.Get("X-API-Key")
	if apiKey == "" {
		apiKey = headers.Get("Api-Key")
	}
	if apiKey != "" {
		if user, err := s.ValidateAPIKey(apiKey); err == nil {
			return &models.Session{User: *user}
		}
	}

	return nil
}

func buildAPIKeyMap(keys []APIKeyConfig) map[string]*models.User {
	out := map[string]*models.User{}
	for _, entry := range keys {
		key := strings.TrimSpace(entry.Key)
		if key == "" {
			continue
		}
		userID := strings.TrimSpace(entry.UserID)
		if userID == "" {
			sum := sha256.Sum256([]byte(key))
			userID = "api_" + hex.EncodeToString(sum[:8])
		}
		out[key] = &models.User{
			ID:   userID,
			Name: strings.TrimSpace(entry.Name),
		}
	}
	return out
}

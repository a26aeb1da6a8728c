package ai

import (
	"context"
	"fmt"
	"strings"

	"productgen/internal/errs"
	"productgen/internal/logger"
	"productgen/internal/models"
)

// KeyStore persists the permanent API key.
type KeyStore interface {
	Set(ctx context.Context, path, value string) error
}

type AuthService struct {
	client *Client
	keys   KeyStore
	logger *logger.Logger
}

func NewAuthService(client *Client, keys KeyStore, logger *logger.Logger) *AuthService {
	return &AuthService{
		client: client,
		keys:   keys,
		logger: logger,
	}
}

// Connect logs in with the admin's credentials, exchanges the temporary token
// for a permanent API key and stores it. Only a masked key is returned.
func (s *AuthService) Connect(ctx context.Context, username, password string) (string, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return "", fmt.Errorf("%w: username and password are required", errs.ErrInvalid)
	}

	token, err := s.client.Login(ctx, username, password)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	key, err := s.client.ExchangeAPIKey(ctx, token)
	if err != nil {
		return "", fmt.Errorf("exchange api key: %w", err)
	}
	if err := s.keys.Set(ctx, models.SettingAIAPIKey, key); err != nil {
		return "", fmt.Errorf("store api key: %w", err)
	}

	s.logger.Info("AI API connected for user %s", username)
	return MaskKey(key), nil
}

// MaskKey keeps the last four characters of a key.
func MaskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

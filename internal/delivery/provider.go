// Package delivery sends one-time login codes through the first configured provider.
package delivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"board/internal/config"
)

// ErrNoProvider is returned when no provider is configured.
var ErrNoProvider = errors.New("no code delivery provider is configured")

// Provider delivers a verification code to an email address.
type Provider interface {
	Name() string
	IsActive(cfg config.DeliveryConfig) bool
	SendCode(ctx context.Context, cfg config.DeliveryConfig, email, code string) error
}

// SetupHooks is implemented by providers that need operator setup endpoints.
type SetupHooks interface {
	RegisterRoutes(g *echo.Group, load config.Loader)
}

// Select returns the first active provider in the given order.
func Select(cfg config.DeliveryConfig, providers ...Provider) (Provider, error) {
	for _, p := range providers {
		if p.IsActive(cfg) {
			return p, nil
		}
	}
	return nil, ErrNoProvider
}

// NewHTTPClient returns the client used for outbound delivery calls.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

package delivery

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"board/internal/config"
	apperrors "board/internal/errors"
)

const (
	codeMin = 100000
	codeMax = 999999
)

// Issuer generates codes and hands them to the active provider.
type Issuer struct {
	load      config.Loader
	providers []Provider
	log       *zap.Logger
}

// NewIssuer creates an issuer. Providers are tried in the order given.
func NewIssuer(load config.Loader, log *zap.Logger, providers ...Provider) *Issuer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Issuer{load: load, providers: providers, log: log}
}

// Providers returns the registered providers in priority order.
func (i *Issuer) Providers() []Provider {
	return i.providers
}

// Issue sends a fresh code to email and returns it. Nothing is sent when no provider is active.
func (i *Issuer) Issue(ctx context.Context, email string) (string, error) {
	cfg := i.load()
	provider, err := Select(cfg, i.providers...)
	if err != nil {
		i.log.Error("code delivery unavailable", zap.Error(err))
		return "", fmt.Errorf("%w: %w", apperrors.ErrDelivery, err)
	}

	code, err := GenerateCode()
	if err != nil {
		return "", err
	}

	if err := provider.SendCode(ctx, cfg, email, code); err != nil {
		i.log.Error("code delivery failed", zap.String("provider", provider.Name()), zap.Error(err))
		return "", fmt.Errorf("%w: %s: %w", apperrors.ErrDelivery, provider.Name(), err)
	}

	i.log.Info("verification code sent", zap.String("provider", provider.Name()))
	return code, nil
}

// GenerateCode returns a uniformly random six digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+codeMin), nil
}

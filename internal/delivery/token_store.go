package delivery

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"board/internal/cache"
)

const (
	accessTokenKey  = "board-outlook-access-token"
	refreshTokenKey = "board-outlook-refresh-token"
	tokenExpiryKey  = "board-outlook-token-expiry"
)

// errTokenMissing is returned when the mailbox has not been authorised yet.
var errTokenMissing = errors.New("code sending not configured")

// TokenStore persists the mailbox OAuth token triple in the key-value store.
type TokenStore struct {
	kv cache.KV
}

// NewTokenStore creates a token store.
func NewTokenStore(kv cache.KV) *TokenStore {
	return &TokenStore{kv: kv}
}

// Load returns the stored token. A missing expiry is reported as already expired.
func (s *TokenStore) Load(ctx context.Context) (*oauth2.Token, error) {
	access, err := s.kv.Get(ctx, accessTokenKey)
	if errors.Is(err, cache.ErrNotFound) || (err == nil && access == "") {
		return nil, errTokenMissing
	}
	if err != nil {
		return nil, fmt.Errorf("load access token: %w", err)
	}

	refresh, err := s.kv.Get(ctx, refreshTokenKey)
	if err != nil && !errors.Is(err, cache.ErrNotFound) {
		return nil, fmt.Errorf("load refresh token: %w", err)
	}

	expiry := time.Unix(1, 0)
	raw, err := s.kv.Get(ctx, tokenExpiryKey)
	switch {
	case err == nil:
		if ms, parseErr := strconv.ParseInt(raw, 10, 64); parseErr == nil {
			expiry = time.UnixMilli(ms)
		}
	case !errors.Is(err, cache.ErrNotFound):
		return nil, fmt.Errorf("load token expiry: %w", err)
	}

	return &oauth2.Token{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		Expiry:       expiry,
	}, nil
}

// Save stores all three parts of tok.
func (s *TokenStore) Save(ctx context.Context, tok *oauth2.Token) error {
	if tok == nil || tok.AccessToken == "" {
		return errors.New("no access token received")
	}
	values := []struct{ key, value string }{
		{accessTokenKey, tok.AccessToken},
		{refreshTokenKey, tok.RefreshToken},
		{tokenExpiryKey, strconv.FormatInt(tok.Expiry.UnixMilli(), 10)},
	}
	for _, v := range values {
		if err := s.kv.Set(ctx, v.key, v.value); err != nil {
			return fmt.Errorf("store %s: %w", v.key, err)
		}
	}
	return nil
}

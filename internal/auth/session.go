package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// SessionTTL is how long a session cookie stays valid. Sessions are never extended.
	SessionTTL = 30 * 24 * time.Hour
	// SessionSchemaVersion is embedded in every token. Bumping it signs everyone out,
	// which is how the token payload can change shape safely.
	SessionSchemaVersion = 2
)

var (
	// ErrInvalidSession is returned for tokens that are malformed, expired or signed with another secret.
	ErrInvalidSession = errors.New("invalid session token")
	// ErrStaleSession is returned for tokens minted under a different schema version.
	ErrStaleSession = errors.New("stale session token")
)

// Claims is the signed session payload.
type Claims struct {
	UserID        uint `json:"uid"`
	SchemaVersion int  `json:"ver"`
	jwt.RegisteredClaims
}

// SessionService signs and verifies session tokens.
type SessionService struct {
	secret  []byte
	version int
	now     func() time.Time
}

// NewSessionService creates a session service with the given secret.
func NewSessionService(secret string) *SessionService {
	return &SessionService{
		secret:  []byte(secret),
		version: SessionSchemaVersion,
		now:     time.Now,
	}
}

// Mint returns a signed token for userID that expires after SessionTTL.
func (s *SessionService) Mint(userID uint) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID:        userID,
		SchemaVersion: s.version,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns its claims.
func (s *SessionService) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}
	if claims.SchemaVersion != s.version {
		return nil, ErrStaleSession
	}
	if claims.UserID == 0 {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

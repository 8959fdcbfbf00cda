package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	apperrors "board/internal/errors"
	"board/internal/model"
)

// CookieName is the session cookie.
const CookieName = "token"

var errUserGone = errors.New("session user no longer exists")

// UserLookup loads the user a session points at.
type UserLookup interface {
	Get(ctx context.Context, id uint) (*model.User, error)
}

// Manager issues, resolves and revokes session cookies.
type Manager struct {
	sessions *SessionService
	users    UserLookup
	secure   bool
	log      *zap.Logger
}

// NewManager creates a session manager.
func NewManager(sessions *SessionService, users UserLookup, secureCookies bool, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{sessions: sessions, users: users, secure: secureCookies, log: log}
}

// SignIn mints a session for user, sets the cookie and marks the request as signed in.
func (m *Manager) SignIn(c echo.Context, user *model.User) error {
	token, err := m.sessions.Mint(user.ID)
	if err != nil {
		return err
	}
	c.SetCookie(m.cookie(token, time.Now().Add(SessionTTL), int(SessionTTL.Seconds())))
	setCurrentUser(c, user)
	return nil
}

// SignOut clears the session cookie. It is a no-op for anonymous requests.
func (m *Manager) SignOut(c echo.Context) {
	if _, err := c.Cookie(CookieName); err == nil {
		m.discard(c)
	}
	setCurrentUser(c, nil)
}

// Resolve attaches the session user, if any, to every request the skipper lets through.
// Invalid sessions never fail the request: the caller is treated as anonymous.
func (m *Manager) Resolve(skipper middleware.Skipper) echo.MiddlewareFunc {
	if skipper == nil {
		skipper = middleware.DefaultSkipper
	}
	return echojwt.WithConfig(echojwt.Config{
		Skipper:                skipper,
		TokenLookup:            "cookie:" + CookieName,
		ContextKey:             userContextKey,
		ContinueOnIgnoredError: true,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return m.resolve(c.Request().Context(), token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if errors.Is(err, ErrStaleSession) || errors.Is(err, errUserGone) {
				m.discard(c)
			}
			setCurrentUser(c, nil)
			return nil
		},
	})
}

func (m *Manager) resolve(ctx context.Context, token string) (*model.User, error) {
	claims, err := m.sessions.Parse(token)
	if err != nil {
		return nil, err
	}
	user, err := m.users.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, errUserGone
		}
		m.log.Warn("session user lookup failed", zap.Uint("user_id", claims.UserID), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (m *Manager) discard(c echo.Context) {
	c.SetCookie(m.cookie("", time.Unix(0, 0), -1))
}

func (m *Manager) cookie(value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// RequireUser rejects anonymous requests before the handler reads the body.
func RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !ScopeFrom(c).SignedIn() {
			return apperrors.ErrAuthenticationRequired
		}
		return next(c)
	}
}

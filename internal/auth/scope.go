package auth

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"

	"board/internal/model"
)

const (
	userContextKey = "board.user"
	// OffsetCookie holds the viewer's UTC offset in hours.
	OffsetCookie = "utcOffset"
	// UsernameCookie caches the signed-in username for display only.
	UsernameCookie = "username"
)

// Scope is everything a handler knows about the caller of one request.
// Handlers build it once and pass the parts they need to services explicitly.
type Scope struct {
	User      *model.User
	UTCOffset float64
}

// SignedIn reports whether the request carries a valid session.
func (s Scope) SignedIn() bool {
	return s.User != nil
}

// ScopeFrom builds the request scope from the resolved session and display cookies.
func ScopeFrom(c echo.Context) Scope {
	return Scope{
		User:      CurrentUser(c),
		UTCOffset: offsetFromCookie(c),
	}
}

// CurrentUser returns the signed-in user or nil.
func CurrentUser(c echo.Context) *model.User {
	user, _ := c.Get(userContextKey).(*model.User)
	return user
}

func setCurrentUser(c echo.Context, user *model.User) {
	c.Set(userContextKey, user)
}

func offsetFromCookie(c echo.Context) float64 {
	cookie, err := c.Cookie(OffsetCookie)
	if err != nil {
		return 0
	}
	offset, err := strconv.ParseFloat(cookie.Value, 64)
	if err != nil || math.IsNaN(offset) || math.Abs(offset) > 14 {
		return 0
	}
	return offset
}

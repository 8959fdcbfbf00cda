package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"board/internal/auth"
	"board/internal/errors"
	"board/internal/model"
	"board/internal/view"
)

// displayCookieTTL is how long the display cookies live.
const displayCookieTTL = 365 * 24 * time.Hour

// MessageResponse is returned by JSON clients in place of a redirect.
type MessageResponse struct {
	Message string `json:"message"`
}

func base(scope auth.Scope, title string) view.Base {
	return view.Base{Title: title, Viewer: scope.User, UTCOffset: scope.UTCOffset}
}

// WantsJSON reports whether the client asked for JSON instead of a page.
func WantsJSON(c echo.Context) bool {
	return strings.Contains(c.Request().Header.Get(echo.HeaderAccept), echo.MIMEApplicationJSON)
}

// done redirects browsers and answers JSON clients with a message.
func done(c echo.Context, location, message string) error {
	if WantsJSON(c) {
		return c.JSON(http.StatusOK, MessageResponse{Message: message})
	}
	return c.Redirect(http.StatusFound, location)
}

func parseID(raw, message string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.Validation(message)
	}
	return uint(id), nil
}

func displayCookie(name, value string, secure bool) *http.Cookie {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(displayCookieTTL.Seconds()),
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		cookie.MaxAge = -1
	}
	return cookie
}

func usernameCookie(user *model.User, secure bool) *http.Cookie {
	return displayCookie(auth.UsernameCookie, user.DisplayName(), secure)
}

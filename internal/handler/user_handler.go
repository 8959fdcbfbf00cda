package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"board/internal/auth"
	"board/internal/errors"
	"board/internal/service"
)

// UserHandler handles member preference endpoints.
type UserHandler struct {
	svc           service.UserService
	secureCookies bool
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService, secureCookies bool) *UserHandler {
	return &UserHandler{svc: svc, secureCookies: secureCookies}
}

// UsernameRequest represents a username change.
type UsernameRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
}

// TimezoneRequest represents the viewer's UTC offset.
type TimezoneRequest struct {
	Hour   *int `json:"hour" form:"hour"`
	Minute *int `json:"minute" form:"minute"`
}

// Offset returns the offset in hours. The minute part takes the sign of the hour.
func (r TimezoneRequest) Offset() (float64, error) {
	if r.Hour == nil || r.Minute == nil {
		return 0, errors.Validation("invalid timezone")
	}
	hour, minute := *r.Hour, *r.Minute
	if hour < -12 || hour > 14 || minute%15 != 0 || minute < 0 || minute > 45 {
		return 0, errors.Validation("invalid timezone")
	}
	fraction := float64(minute) / 60
	if hour < 0 {
		fraction = -fraction
	}
	return float64(hour) + fraction, nil
}

// SetUsername godoc
// @Summary Change your username
// @Tags users
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param request body UsernameRequest true "New username"
// @Success 302 "Redirect to /"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /set-username [post]
func (h *UserHandler) SetUsername(c echo.Context) error {
	scope := auth.ScopeFrom(c)
	var req UsernameRequest
	if err := c.Bind(&req); err != nil {
		return errors.Validation("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return errors.Validation("username must be between 3 and 20 characters long")
	}

	user, err := h.svc.UpdateUsername(c.Request().Context(), scope.User, req.Username)
	if err != nil {
		return err
	}
	c.SetCookie(usernameCookie(user, h.secureCookies))
	return done(c, "/", "username updated")
}

// SetTimezone godoc
// @Summary Set the display timezone
// @Tags users
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param request body TimezoneRequest true "UTC offset"
// @Success 302 "Redirect to /"
// @Failure 400 {object} errors.ErrorResponse
// @Router /set-timezone [post]
func (h *UserHandler) SetTimezone(c echo.Context) error {
	var req TimezoneRequest
	if err := c.Bind(&req); err != nil {
		return errors.Validation("invalid timezone")
	}
	offset, err := req.Offset()
	if err != nil {
		return err
	}
	c.SetCookie(displayCookie(auth.OffsetCookie, strconv.FormatFloat(offset, 'f', -1, 64), h.secureCookies))
	return done(c, "/", "timezone updated")
}

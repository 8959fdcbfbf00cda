package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"board/internal/auth"
	"board/internal/errors"
	"board/internal/service"
	"board/internal/view"
)

// AuthHandler handles the email code login endpoints.
type AuthHandler struct {
	authService   service.AuthService
	sessions      *auth.Manager
	secureCookies bool
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService, sessions *auth.Manager, secureCookies bool) *AuthHandler {
	return &AuthHandler{authService: authService, sessions: sessions, secureCookies: secureCookies}
}

// LoginRequest represents a request for a login code.
type LoginRequest struct {
	Email string `json:"email" form:"email" validate:"required"`
}

// VerifyRequest represents a login code submission.
type VerifyRequest struct {
	ID   uint   `json:"id" form:"id" validate:"required"`
	Code string `json:"code" form:"code" validate:"required"`
}

// LoginPage renders the email form.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, view.LoginPage, base(auth.ScopeFrom(c), "Sign in"))
}

// Login godoc
// @Summary Request a login code
// @Description Finds or creates the member for the address and emails a six digit code.
// @Tags auth
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param request body LoginRequest true "Email address"
// @Success 302 "Redirect to /verify?id={user id}"
// @Failure 400 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return errors.Validation("invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return errors.Validation("email cannot be empty")
	}

	user, err := h.authService.RequestCode(c.Request().Context(), req.Email)
	if err != nil {
		return err
	}

	location := "/verify?id=" + strconv.FormatUint(uint64(user.ID), 10)
	if WantsJSON(c) {
		return c.JSON(http.StatusOK, echo.Map{"id": user.ID, "verify": location})
	}
	return c.Redirect(http.StatusFound, location)
}

// VerifyPage renders the code form for a user id.
func (h *AuthHandler) VerifyPage(c echo.Context) error {
	id, err := parseID(c.QueryParam("id"), "invalid user id")
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, view.VerifyPage, view.VerifyData{
		Base:   base(auth.ScopeFrom(c), "Check your email"),
		UserID: id,
	})
}

// Verify godoc
// @Summary Exchange a login code for a session
// @Tags auth
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param request body VerifyRequest true "User id and code"
// @Success 302 "Session cookie set, redirect to /"
// @Failure 400 {object} errors.ErrorResponse
// @Router /verify [post]
func (h *AuthHandler) Verify(c echo.Context) error {
	var req VerifyRequest
	if err := c.Bind(&req); err != nil {
		return errors.ErrInvalidCode
	}
	if err := c.Validate(&req); err != nil {
		return errors.ErrInvalidCode
	}
	user, err := h.authService.VerifyCode(c.Request().Context(), req.ID, req.Code)
	if err != nil {
		return err
	}
	if err := h.sessions.SignIn(c, user); err != nil {
		return err
	}
	c.SetCookie(usernameCookie(user, h.secureCookies))
	return done(c, "/", "signed in")
}

// Logout clears the session and returns to the front page.
func (h *AuthHandler) Logout(c echo.Context) error {
	h.sessions.SignOut(c)
	c.SetCookie(displayCookie(auth.UsernameCookie, "", h.secureCookies))
	return c.Redirect(http.StatusFound, "/")
}

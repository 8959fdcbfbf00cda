package router

import (
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "board/internal/errors"
	"board/internal/handler"
	"board/internal/view"
)

var statusCodes = map[int]string{
	http.StatusBadRequest:            "VALIDATION_ERROR",
	http.StatusUnauthorized:          "AUTHENTICATION_REQUIRED",
	http.StatusForbidden:             "FORBIDDEN",
	http.StatusNotFound:              "NOT_FOUND",
	http.StatusMethodNotAllowed:      "METHOD_NOT_ALLOWED",
	http.StatusConflict:              "CONFLICT",
	http.StatusRequestEntityTooLarge: "VALIDATION_ERROR",
	http.StatusTooManyRequests:       "RATE_LIMITED",
	http.StatusBadGateway:            "DELIVERY_FAILED",
}

// toHTTPError maps any handler error to a client-safe HTTPError.
func toHTTPError(err error) *apperrors.HTTPError {
	var he *echo.HTTPError
	if stderrors.As(err, &he) {
		code, ok := statusCodes[he.Code]
		if !ok {
			code = "INTERNAL_ERROR"
		}
		message := http.StatusText(he.Code)
		if he.Code < http.StatusInternalServerError {
			if s, ok := he.Message.(string); ok {
				message = s
			}
		}
		return apperrors.NewHTTPError(he.Code, strings.ToLower(message), code)
	}
	return apperrors.MapErrorToHTTP(err)
}

// ErrorHandler renders errors as an HTML page, or JSON for clients that ask for it.
// Internal causes are logged and never sent to the client.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		httpErr := toHTTPError(err)
		fields := []zap.Field{
			zap.Int("status", httpErr.StatusCode),
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI),
			zap.Error(err),
		}
		if httpErr.StatusCode >= http.StatusInternalServerError {
			log.Error("request failed", fields...)
		} else {
			log.Debug("request rejected", fields...)
		}

		var writeErr error
		switch {
		case c.Request().Method == http.MethodHead:
			writeErr = c.NoContent(httpErr.StatusCode)
		case handler.WantsJSON(c) || c.Echo().Renderer == nil:
			writeErr = c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
		default:
			writeErr = c.Render(httpErr.StatusCode, view.ErrorPage, view.ErrorData{
				Base:    view.Base{Title: "Error"},
				Status:  httpErr.StatusCode,
				Message: httpErr.Message,
			})
		}
		if writeErr != nil {
			log.Error("failed to write error response", zap.Error(writeErr))
		}
	}
}

func parseCIDR(s string) (net.IP, *net.IPNet, error) {
	if !strings.Contains(s, "/") {
		ip := net.ParseIP(s)
		if ip == nil {
			return nil, nil, fmt.Errorf("invalid proxy address %q", s)
		}
		bits := 32
		if ip.To4() == nil {
			bits = 128
		}
		s = fmt.Sprintf("%s/%d", s, bits)
	}
	return net.ParseCIDR(s)
}

package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"board/internal/auth"
	"board/internal/config"
	"board/internal/delivery"
	apperrors "board/internal/errors"
	"board/internal/handler"
	"board/internal/logger"
)

// Deps bundles what Register needs to wire the HTTP surface.
type Deps struct {
	Config       *config.Config
	Log          *zap.Logger
	Sessions     *auth.Manager
	LoginLimiter middleware.RateLimiterStore
	Providers    []delivery.Provider
	Renderer     echo.Renderer

	Auth  *handler.AuthHandler
	Posts *handler.PostHandler
	Users *handler.UserHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, d Deps) {
	e.Renderer = d.Renderer
	e.Validator = &CustomValidator{validator: validator.New()}
	e.HTTPErrorHandler = ErrorHandler(d.Log)
	e.IPExtractor = IPExtractor(d.Config.TrustedProxies)

	e.Use(middleware.RequestID())
	e.Use(logger.RequestLogger(d.Log))
	e.Use(middleware.Recover())
	e.Use(d.Sessions.Resolve(skipSessionLookup))

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Pages
	e.GET("/", d.Posts.Index)
	e.GET("/login", d.Auth.LoginPage)
	e.GET("/verify", d.Auth.VerifyPage)
	e.GET("/logout", d.Auth.Logout)
	e.GET("/post/:id", d.Posts.Show)

	api := e.Group("/api")

	// Public routes
	api.POST("/login", d.Auth.Login, LoginRateLimit(d.LoginLimiter, d.Log))
	api.POST("/verify", d.Auth.Verify)
	api.POST("/set-timezone", d.Users.SetTimezone)

	// Secured routes (require a signed-in member)
	secured := api.Group("", auth.RequireUser)
	secured.POST("/post", d.Posts.Create)
	secured.POST("/post/edit", d.Posts.Edit)
	secured.POST("/post/delete", d.Posts.Delete)
	secured.POST("/set-username", d.Users.SetUsername)

	// Operator setup hooks
	admin := api.Group("/admin")
	load := d.Config.Delivery()
	for _, p := range d.Providers {
		if hooks, ok := p.(delivery.SetupHooks); ok {
			hooks.RegisterRoutes(admin, load)
		}
	}
}

// skipSessionLookup keeps code requests away from the user store.
// Login needs no caller identity and may be rejected by the rate limiter.
func skipSessionLookup(c echo.Context) bool {
	return c.Request().Method == http.MethodPost && c.Path() == "/api/login"
}

// LoginRateLimit limits login attempts per client IP.
// A limiter that cannot reach its store rejects the request.
func LoginRateLimit(store middleware.RateLimiterStore, log *zap.Logger) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apperrors.ErrRateLimited
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			if err != nil {
				log.Error("login rate limiter unavailable", zap.String("ip", identifier), zap.Error(err))
			} else {
				log.Info("login rate limited", zap.String("ip", identifier))
			}
			return apperrors.ErrRateLimited
		},
	})
}

// IPExtractor trusts X-Forwarded-For only from the given proxy ranges.
func IPExtractor(trustedProxies []string) echo.IPExtractor {
	if len(trustedProxies) == 0 {
		return echo.ExtractIPDirect()
	}
	options := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range trustedProxies {
		if _, network, err := parseCIDR(cidr); err == nil {
			options = append(options, echo.TrustIPRange(network))
		}
	}
	return echo.ExtractIPFromXFFHeader(options...)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

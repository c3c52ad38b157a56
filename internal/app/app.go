// Package app contains the web front-end and JSON API.
package app

import (
	"embed"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/stolasapp/whisper/internal/board"
	"github.com/stolasapp/whisper/internal/config"
	"github.com/stolasapp/whisper/internal/sec"
	"github.com/stolasapp/whisper/internal/storage"
)

//go:embed static
var staticFiles embed.FS

// Header carrying the token for the next page of a listing.
const nextPageTokenHeader = "X-Next-Page-Token"

// New creates a web front-end server.
func New(
	cfg *config.Config,
	logger *slog.Logger,
	users storage.Users,
	hasher *sec.Hasher,
	svc board.Service,
) *echo.Echo {
	srv := echo.New()

	srv.HideBanner = true
	srv.HidePort = true
	srv.Logger.SetLevel(log.OFF)
	srv.HTTPErrorHandler = errorHandler(logger, connect.NewErrorWriter())

	if cfg.DevMode {
		srv.Debug = true
		srv.Use(logRequests(logger))
	}

	srv.Use(
		middleware.Recover(),
		middleware.RequestID(),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.CORS.AllowOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost},
			AllowHeaders: []string{
				echo.HeaderAuthorization,
				echo.HeaderAccept,
				echo.HeaderContentType,
			},
			ExposeHeaders: []string{nextPageTokenHeader},
			MaxAge:        int(time.Hour / time.Second),
		}),
		middleware.Decompress(),
		middleware.BodyLimit("64K"),
		middleware.Gzip(),
		middleware.Secure(),
	)

	h := handler{svc: svc}
	h.register(
		srv,
		echo.WrapMiddleware(sec.NewUserAuthMiddleware(users, hasher).Wrap),
		echo.WrapMiddleware(sec.NewAdminAuthMiddleware(cfg.Admin.Username, cfg.Admin.Password).Wrap),
	)

	staticFS := echo.MustSubFS(staticFiles, "static")
	srv.FileFS("/", "index.html", staticFS)
	srv.FileFS("/admin", "admin.html", staticFS)
	srv.FileFS("/robots.txt", "robots.txt", staticFS)
	return srv
}

func logRequests(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			latency := time.Since(start)

			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("uri", req.RequestURI),
				slog.String("route", c.Path()),
				slog.Duration("latency", latency),
				slog.Int("status", res.Status),
			}
			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
			}
			logger.LogAttrs(
				req.Context(),
				slog.LevelDebug,
				"request handled",
				attrs...,
			)
			return err
		}
	}
}

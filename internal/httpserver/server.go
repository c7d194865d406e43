// internal/httpserver/server.go
package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	api "github.com/tidegrid/fishtrack-go/internal/api/v2"
	"github.com/tidegrid/fishtrack-go/internal/conf"
	"github.com/tidegrid/fishtrack-go/internal/datastore"
	"github.com/tidegrid/fishtrack-go/internal/logging"
)

// Server encapsulates the Echo server and its wiring.
type Server struct {
	Echo     *echo.Echo
	DS       datastore.Interface
	Settings *conf.Settings
	APIV2    *api.Controller

	webLogger      *slog.Logger
	webLoggerClose func() error
}

// New initializes the HTTP server against the given datastore.
func New(settings *conf.Settings, dataStore datastore.Interface) *Server {
	s := &Server{
		Echo:     echo.New(),
		DS:       dataStore,
		Settings: settings,
	}

	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.IPExtractor = echo.ExtractIPFromXFFHeader()

	if settings.WebServer.Log.Enabled && settings.WebServer.Log.Path != "" {
		logger, closeFunc, err := logging.NewFileLogger(settings.WebServer.Log.Path, "webserver", slog.LevelInfo)
		if err == nil {
			s.webLogger = logger
			s.webLoggerClose = closeFunc
		} else {
			logging.Warn("failed to open web server log file, using default logger", "error", err)
		}
	}
	if s.webLogger == nil {
		s.webLogger = logging.ForService("webserver")
	}
	if s.webLogger == nil {
		s.webLogger = slog.Default().With("service", "webserver")
	}

	s.APIV2 = api.New(s.Echo, s.DS, s.Settings)

	return s
}

// Start begins listening and serving HTTP requests in a background goroutine.
func (s *Server) Start() {
	go func() {
		err := s.Echo.Start(":" + s.Settings.WebServer.Port)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.webLogger.Error("web server failed", "error", err)
		}
	}()
	s.webLogger.Info("web server started", "port", s.Settings.WebServer.Port)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Echo.Shutdown(ctx); err != nil {
		s.webLogger.Error("error shutting down web server", "error", err)
		return err
	}
	s.webLogger.Info("web server stopped")

	if s.webLoggerClose != nil {
		if err := s.webLoggerClose(); err != nil {
			return err
		}
	}
	return nil
}

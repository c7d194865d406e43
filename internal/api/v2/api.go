// internal/api/v2/api.go
package api

import (
	"crypto/rand"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/patrickmn/go-cache"
	"github.com/tidegrid/fishtrack-go/internal/conf"
	"github.com/tidegrid/fishtrack-go/internal/datastore"
	"github.com/tidegrid/fishtrack-go/internal/errors"
	"github.com/tidegrid/fishtrack-go/internal/ingest"
	"github.com/tidegrid/fishtrack-go/internal/logging"
	"github.com/tidegrid/fishtrack-go/internal/trackarchive"
	"gorm.io/gorm"
)

// Controller manages the API routes and handlers
type Controller struct {
	Echo     *echo.Echo
	Group    *echo.Group
	DS       datastore.Interface
	Settings *conf.Settings
	Archive  *trackarchive.Indexer
	Ingestor *ingest.Ingestor

	apiLogger  *slog.Logger
	facetCache *cache.Cache // short-lived cache for facet listings
	startTime  time.Time
}

// facet cache tuning
const (
	facetCacheTTL     = time.Minute
	facetCacheCleanup = 5 * time.Minute
)

// New creates the API controller and registers all routes under /api/v2.
func New(e *echo.Echo, ds datastore.Interface, settings *conf.Settings) *Controller {
	c := &Controller{
		Echo:       e,
		DS:         ds,
		Settings:   settings,
		Archive:    trackarchive.NewIndexer(settings.Archive.Root),
		Ingestor:   ingest.NewIngestor(ds),
		apiLogger:  logging.ForService("api"),
		facetCache: cache.New(facetCacheTTL, facetCacheCleanup),
		startTime:  time.Now(),
	}
	if c.apiLogger == nil {
		c.apiLogger = slog.Default().With("service", "api")
	}

	c.Group = e.Group("/api/v2")
	c.Group.Use(middleware.Recover())
	c.Group.Use(c.LoggingMiddleware())
	c.initRoutes()

	return c
}

// LoggingMiddleware logs every API request with timing information.
func (c *Controller) LoggingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)

			attrs := []any{
				"method", ctx.Request().Method,
				"path", ctx.Request().URL.Path,
				"status", ctx.Response().Status,
				"ip", ctx.RealIP(),
				"latency_ms", time.Since(start).Milliseconds(),
			}
			if err != nil {
				attrs = append(attrs, "error", err)
			}
			c.apiLogger.Info("API Request", attrs...)

			return err
		}
	}
}

// initRoutes registers all API endpoints
func (c *Controller) initRoutes() {
	c.Group.GET("/health", c.HealthCheck)

	routeInitializers := []struct {
		name string
		fn   func()
	}{
		{"registry routes", c.initRegistryRoutes},
		{"voyage routes", c.initVoyageRoutes},
		{"sales routes", c.initSalesRoutes},
		{"attachment routes", c.initAttachmentRoutes},
		{"track archive routes", c.initTrackRoutes},
	}

	for _, initializer := range routeInitializers {
		initializer.fn()
		c.apiLogger.Debug("initialized route group", "group", initializer.name)
	}
}

// HealthCheck handles the API health check endpoint
func (c *Controller) HealthCheck(ctx echo.Context) error {
	response := map[string]any{
		"status":    "healthy",
		"version":   c.Settings.Version,
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(c.startTime).String(),
	}

	dbStatus := "connected"
	if _, err := c.DS.CountVessels(); err != nil {
		dbStatus = "disconnected"
		response["database_error"] = err.Error()
	}
	response["database_status"] = dbStatus

	return ctx.JSON(http.StatusOK, response)
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse struct {
	Data       any   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

// ErrorResponse is the envelope every failed request returns.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"` // Unique identifier for tracking this error
}

// NewErrorResponse creates a new API error response
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	correlationID := generateCorrelationID()

	errorStr := message
	if err != nil {
		errorStr = err.Error()
	}

	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: correlationID,
	}
}

// generateCorrelationID creates a unique identifier for error tracking
func generateCorrelationID() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 8

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "ERR-RAND"
	}
	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b)
}

// HandleError constructs and returns an appropriate error response
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	errorResp := NewErrorResponse(err, message, code)

	var errorStr string
	if err != nil {
		errorStr = err.Error()
	} else {
		errorStr = message
	}

	c.apiLogger.Error("API Error",
		"correlation_id", errorResp.CorrelationID,
		"message", message,
		"error", errorStr,
		"code", code,
		"path", ctx.Request().URL.Path,
		"method", ctx.Request().Method,
		"ip", ctx.RealIP(),
	)

	return ctx.JSON(code, errorResp)
}

// statusForError maps store and domain errors onto HTTP status codes.
func statusForError(err error) int {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return http.StatusNotFound
	}
	switch errors.GetCategory(err) {
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryValidation:
		return http.StatusBadRequest
	case errors.CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

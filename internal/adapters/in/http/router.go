// Package http is the REST adapter: an echo server that authenticates the
// acting user, validates requests against the embedded OpenAPI document and
// dispatches them to the command and query handlers.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// RouterConfig holds what the router needs besides the handlers.
type RouterConfig struct {
	JWTSecret []byte
	JWTIssuer string
	Logger    *slog.Logger
}

// RegisterHandlers binds the API operations to their paths.
func RegisterHandlers(router *echo.Group, s *Server) {
	router.POST("/packages", s.CreatePackage)
	router.DELETE("/packages/:id", s.CancelPackage)

	router.POST("/trips", s.CreateTrip)
	router.GET("/trips/:id/capacity", s.GetTripCapacity)

	router.POST("/assignments", s.RequestMatch)
	router.GET("/assignments/:id", s.GetAssignment)
	router.GET("/assignments/:id/ledger", s.GetAssignmentLedger)
	router.POST("/assignments/:id/proposals", s.ProposePrice)
	router.POST("/assignments/:id/price-confirmation", s.ConfirmPrice)
	router.POST("/assignments/:id/acceptance", s.AcceptAssignment)
	router.POST("/assignments/:id/safety-checks", s.RecordSafetyConfirmation)
	router.POST("/assignments/:id/pickup", s.ConfirmPickup)
	router.POST("/assignments/:id/delivery", s.ConfirmDelivery)
	router.POST("/assignments/:id/cancellation", s.CancelAssignment)
	router.POST("/assignments/:id/disputes", s.RaiseDispute)

	router.POST("/disputes/:id/resolution", s.ResolveDispute)

	router.POST("/gateway/callbacks", s.HandleGatewayCallback)
}

// NewRouter builds the echo instance with logging, recovery, request
// validation, authentication and the swagger UI.
func NewRouter(ctx context.Context, s *Server, cfg RouterConfig) (*echo.Echo, error) {
	doc, err := LoadOpenAPI(ctx)
	if err != nil {
		return nil, err
	}
	if err = registerSwaggerDoc(doc); err != nil {
		return nil, err
	}
	validator, err := requestValidator(doc)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger.With("component", "http")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				if v.Status >= http.StatusInternalServerError {
					level = slog.LevelError
				}
			}
			logger.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api/v1",
		bearerAuth(cfg.JWTSecret, cfg.JWTIssuer, "/api/v1/gateway/callbacks"),
		validator,
	)
	RegisterHandlers(api, s)

	return e, nil
}

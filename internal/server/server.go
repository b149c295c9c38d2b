package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"storefront/internal/config"
	"storefront/internal/logging"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
)

type Deps struct {
	Config   config.Config
	Logger   *log.Logger
	Metrics  *metrics.ServerMetrics
	Gatherer prometheus.Gatherer
	Users    repository.UserRepository
	Handlers Handlers
}

// New はミドルウェアとルートを組んだEchoを返す。
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger = d.Logger

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			j := log.JSON{
				"request_id": v.RequestID,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
			}
			if uid, ok := c.Get(middleware.CtxUserIDKey).(int64); ok {
				j["user_id"] = uid
			}
			if v.Error != nil {
				j["error"] = v.Error.Error()
				d.Logger.Errorj(j)
				return nil
			}
			d.Logger.Infoj(j)
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(d.Metrics.Middleware())

	e.GET("/metrics", echo.WrapHandler(metrics.Handler(d.Gatherer)))
	RegisterRoutes(e, d.Config, d.Users, d.Handlers)
	return e
}

// Start はctxが終わるまで待ってからgraceful shutdownする。
func Start(ctx context.Context, e *echo.Echo, addr string, logger *log.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info(logger, logging.Fields{Step: "server_start", Status: "listening", Message: addr})
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logging.Info(logger, logging.Fields{Step: "server_stop", Status: "stopped"})
	return nil
}

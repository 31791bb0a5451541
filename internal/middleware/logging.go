package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"hotelbooking/internal/metrics"
)

// RequestLogger logs one zerolog event per request and records HTTP metrics.
func RequestLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogRoutePath: true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			metrics.ObserveHTTP(v.RoutePath, v.Method, v.Status, v.Latency)

			event := logger.Info()
			if v.Status >= 500 {
				event = logger.Error().Err(v.Error)
			} else if v.Status >= 400 {
				event = logger.Warn()
			}
			if identity, ok := IdentityFrom(c); ok {
				event = event.Str("user_id", identity.ID)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

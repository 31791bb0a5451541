package middleware

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	apperrors "hotelbooking/internal/errors"
)

// RateLimiter throttles requests per client IP.
type RateLimiter struct {
	limiters sync.Map // map[string]*rate.Limiter
	rps      float64
	burst    int
}

// NewRateLimiter builds a limiter allowing rps requests per second with burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 5
	}
	return &RateLimiter{rps: rps, burst: burst}
}

func (l *RateLimiter) getLimiter(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}
	lim := rate.NewLimiter(rate.Limit(l.rps), l.burst)
	actual, _ := l.limiters.LoadOrStore(key, lim)
	return actual.(*rate.Limiter)
}

// Middleware answers 429 once a client exceeds its budget.
func (l *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if l.rps <= 0 {
				return next(c)
			}
			if !l.getLimiter(c.RealIP()).Allow() {
				return c.JSON(http.StatusTooManyRequests, apperrors.ErrorResponse{
					Success: false,
					Message: "Trop de requêtes, réessayez plus tard",
					Code:    "RATE_LIMITED",
				})
			}
			return next(c)
		}
	}
}

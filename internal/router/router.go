package router

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"hotelbooking/internal/access"
	"hotelbooking/internal/config"
	apperrors "hotelbooking/internal/errors"
	"hotelbooking/internal/handler"
	"hotelbooking/internal/middleware"
	"hotelbooking/internal/model"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	logger zerolog.Logger,
	ac access.Controller,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	hotelHandler *handler.HotelHandler,
	bookingHandler *handler.BookingHandler,
) {
	e.HideBanner = true
	e.HTTPErrorHandler = ErrorHandler(logger)
	e.Validator = NewValidator()

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.Timeout(cfg.WriteTimeout))

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	requireAuth := middleware.JWT(ac)
	adminOnly := middleware.RequireRole(model.RoleAdmin)
	staffOnly := middleware.RequireRole(access.Privileged...)

	// Public routes
	limiter := middleware.NewRateLimiter(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst)
	api.POST("/auth/register", authHandler.Register, limiter.Middleware())
	api.POST("/auth/login", authHandler.Login, limiter.Middleware())
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout, requireAuth)

	api.GET("/hotels", hotelHandler.ListHotels)
	api.GET("/hotels/:id", hotelHandler.GetHotel)

	// Secured routes
	secured := api.Group("", requireAuth)

	secured.GET("/users/me", userHandler.Me)
	secured.PUT("/users/me", userHandler.UpdateMe)
	secured.DELETE("/users/me", userHandler.DeleteMe)
	// Listing decides between admin listing and staff search.
	secured.GET("/users", userHandler.ListUsers)
	secured.POST("/users", userHandler.CreateUser, adminOnly)
	secured.GET("/users/:id", userHandler.GetUser, adminOnly)
	secured.PUT("/users/:id", userHandler.UpdateUser, adminOnly)
	secured.DELETE("/users/:id", userHandler.DeleteUser, adminOnly)

	secured.POST("/hotels", hotelHandler.CreateHotel, adminOnly)
	secured.PUT("/hotels/:id", hotelHandler.UpdateHotel, adminOnly)
	secured.DELETE("/hotels/:id", hotelHandler.DeleteHotel, adminOnly)

	secured.POST("/bookings", bookingHandler.CreateBooking)
	secured.GET("/bookings/me", bookingHandler.MyBookings)
	secured.GET("/bookings", bookingHandler.ListBookings, staffOnly)
	secured.GET("/bookings/export", bookingHandler.ExportBookings, staffOnly)
	secured.GET("/bookings/:id", bookingHandler.GetBooking)
	secured.PUT("/bookings/:id", bookingHandler.UpdateBooking)
	secured.PUT("/bookings/:id/cancel", bookingHandler.CancelBooking)
	secured.DELETE("/bookings/:id", bookingHandler.DeleteBooking)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator reports fields under their JSON names.
func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.Validation(apperrors.FieldError{Field: "body", Reason: "corps de requête invalide"})
	}
	fields := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperrors.FieldError{Field: fe.Field(), Reason: reason(fe)})
	}
	return apperrors.Validation(fields...)
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Ce champ est requis"
	case "email":
		return "Adresse email invalide"
	case "min":
		return "Valeur trop courte (minimum " + fe.Param() + ")"
	case "max":
		return "Valeur trop longue (maximum " + fe.Param() + ")"
	default:
		return "Valeur invalide"
	}
}

// ErrorHandler renders every failed request with the error envelope.
func ErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var (
			appErr  *apperrors.AppError
			echoErr *echo.HTTPError
			httpErr *apperrors.HTTPError
		)
		switch {
		case errors.As(err, &appErr):
			httpErr = apperrors.MapErrorToHTTP(appErr)
		case errors.As(err, &echoErr):
			httpErr = fromEchoError(echoErr)
		default:
			httpErr = apperrors.MapErrorToHTTP(err)
		}

		if httpErr.StatusCode >= http.StatusInternalServerError {
			logger.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Path()).
				Msg("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(httpErr.StatusCode)
		} else {
			err = c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
		if err != nil {
			logger.Error().Err(err).Msg("write error response")
		}
	}
}

var echoMessages = map[int]struct{ message, code string }{
	http.StatusBadRequest:            {"Requête invalide", string(apperrors.KindValidation)},
	http.StatusUnauthorized:          {"Authentification requise", string(apperrors.KindUnauthenticated)},
	http.StatusForbidden:             {"Accès refusé", string(apperrors.KindForbidden)},
	http.StatusNotFound:              {"Ressource introuvable", string(apperrors.KindNotFound)},
	http.StatusMethodNotAllowed:      {"Méthode non autorisée", "METHOD_NOT_ALLOWED"},
	http.StatusRequestEntityTooLarge: {"Requête trop volumineuse", "PAYLOAD_TOO_LARGE"},
	http.StatusUnsupportedMediaType:  {"Type de contenu non supporté", "UNSUPPORTED_MEDIA_TYPE"},
	http.StatusTooManyRequests:       {"Trop de requêtes, réessayez plus tard", "RATE_LIMITED"},
	http.StatusServiceUnavailable:    {"Service indisponible", "UNAVAILABLE"},
}

func fromEchoError(he *echo.HTTPError) *apperrors.HTTPError {
	if m, ok := echoMessages[he.Code]; ok {
		return apperrors.NewHTTPError(he.Code, m.message, m.code)
	}
	return apperrors.MapErrorToHTTP(he)
}

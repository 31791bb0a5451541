package handler

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"hotelbooking/internal/export"
	"hotelbooking/internal/service"
)

const exportFilename = "reservations.xlsx"

// BookingHandler exposes the booking ledger.
type BookingHandler struct {
	svc service.BookingService
}

// NewBookingHandler creates a booking handler.
func NewBookingHandler(svc service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

// BookingRequest carries booking fields. Every rule is checked by the
// ledger so that all violations are reported together.
type BookingRequest struct {
	Hotel           string           `json:"hotel"`
	CheckIn         *string          `json:"checkIn" example:"2030-06-01"`
	CheckOut        *string          `json:"checkOut" example:"2030-06-05"`
	NumberOfGuests  *int             `json:"numberOfGuests"`
	TotalPrice      *decimal.Decimal `json:"totalPrice" swaggertype:"number"`
	SpecialRequests *string          `json:"specialRequests"`
	Status          *string          `json:"status"`
}

func (r BookingRequest) input() service.BookingInput {
	return service.BookingInput{
		HotelID:         r.Hotel,
		CheckIn:         r.CheckIn,
		CheckOut:        r.CheckOut,
		NumberOfGuests:  r.NumberOfGuests,
		TotalPrice:      r.TotalPrice,
		SpecialRequests: r.SpecialRequests,
		Status:          r.Status,
	}
}

// CreateBooking godoc
// @Summary Book a hotel
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BookingRequest true "Booking"
// @Success 201 {object} Response{data=model.Booking}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /bookings [post]
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	me, err := identity(c)
	if err != nil {
		return err
	}
	var req BookingRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	booking, err := h.svc.Create(c.Request().Context(), me, req.input())
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, booking)
}

// MyBookings godoc
// @Summary List the caller's bookings
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]model.Booking}
// @Router /bookings/me [get]
func (h *BookingHandler) MyBookings(c echo.Context) error {
	me, err := identity(c)
	if err != nil {
		return err
	}
	bookings, err := h.svc.ListMine(c.Request().Context(), me)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, bookings)
}

// ListBookings godoc
// @Summary List all bookings
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, confirmed or cancelled"
// @Param search query string false "Owner email or pseudo fragment"
// @Param sort query string false "createdAt, checkIn, checkOut, totalPrice or status"
// @Param order query string false "asc or desc"
// @Param limit query int false "Page size (max 100)"
// @Param page query int false "Page number"
// @Success 200 {object} Response{data=[]model.Booking}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /bookings [get]
func (h *BookingHandler) ListBookings(c echo.Context) error {
	me, err := identity(c)
	if err != nil {
		return err
	}
	q, err := bookingQuery(c)
	if err != nil {
		return err
	}

	page, err := h.svc.List(c.Request().Context(), me, q)
	if err != nil {
		return err
	}
	return paged(c, page)
}

// ExportBookings godoc
// @Summary Export bookings as a spreadsheet
// @Tags bookings
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param status query string false "pending, confirmed or cancelled"
// @Param search query string false "Owner email or pseudo fragment"
// @Param sort query string false "createdAt, checkIn, checkOut, totalPrice or status"
// @Param order query string false "asc or desc"
// @Success 200 {file} file
// @Failure 403 {object} errors.ErrorResponse
// @Router /bookings/export [get]
func (h *BookingHandler) ExportBookings(c echo.Context) error {
	me, err := identity(c)
	if err != nil {
		return err
	}
	q, err := bookingQuery(c)
	if err != nil {
		return err
	}

	bookings, err := h.svc.Export(c.Request().Context(), me, q)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := export.WriteBookings(&buf, bookings); err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+exportFilename+`"`)
	return c.Blob(http.StatusOK, export.ContentType, buf.Bytes())
}

// GetBooking godoc
// @Summary Get booking by id
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} Response{data=model.Booking}
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetBooking(c echo.Context) error {
	me, err := identity(c)
	if err != nil {
		return err
	}
	booking, err := h.svc.Get(c.Request().Context(), me, c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, booking)
}

// UpdateBooking godoc
// @Summary Update booking
// @Tags bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body BookingRequest true "Fields to change"
// @Success 200 {object} Response{data=model.Booking}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /bookings/{id} [put]
func (h *BookingHandler) UpdateBooking(c echo.Context) error {
	me, err := identity(c)
	if err != nil {
		return err
	}
	var req BookingRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	booking, err := h.svc.Update(c.Request().Context(), me, c.Param("id"), req.input())
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, booking)
}

// CancelBooking godoc
// @Summary Cancel booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} Response{data=model.Booking}
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /bookings/{id}/cancel [put]
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	me, err := identity(c)
	if err != nil {
		return err
	}
	booking, err := h.svc.Cancel(c.Request().Context(), me, c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, booking)
}

// DeleteBooking godoc
// @Summary Delete booking
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} Response
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /bookings/{id} [delete]
func (h *BookingHandler) DeleteBooking(c echo.Context) error {
	me, err := identity(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), me, c.Param("id")); err != nil {
		return err
	}
	return message(c, "Réservation supprimée")
}

func bookingQuery(c echo.Context) (service.BookingQuery, error) {
	var q service.BookingQuery
	err := echo.QueryParamsBinder(c).
		Int("page", &q.Page).
		Int("limit", &q.Limit).
		String("status", &q.Status).
		String("search", &q.Search).
		String("sort", &q.Sort).
		String("order", &q.Order).
		BindError()
	if err != nil {
		return q, bindError(err)
	}
	return q, nil
}

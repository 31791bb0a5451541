package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hotelbooking/internal/model"
	"hotelbooking/internal/service"
)

// HotelHandler exposes the hotel catalog.
type HotelHandler struct {
	svc service.HotelService
}

// NewHotelHandler creates a hotel handler.
func NewHotelHandler(svc service.HotelService) *HotelHandler {
	return &HotelHandler{svc: svc}
}

// HotelRequest creates a hotel. On update every field is optional.
type HotelRequest struct {
	Name        *string   `json:"name"`
	Location    *string   `json:"location"`
	Description *string   `json:"description"`
	PictureList *[]string `json:"picture_list"`
}

// ListHotels godoc
// @Summary List hotels
// @Tags hotels
// @Produce json
// @Param sort query string false "name, location or createdAt"
// @Param order query string false "asc or desc"
// @Param limit query int false "Page size (max 100)"
// @Param page query int false "Page number"
// @Success 200 {object} Response{data=[]model.Hotel}
// @Failure 400 {object} errors.ErrorResponse
// @Router /hotels [get]
func (h *HotelHandler) ListHotels(c echo.Context) error {
	var q service.HotelQuery
	err := echo.QueryParamsBinder(c).
		Int("page", &q.Page).
		Int("limit", &q.Limit).
		String("sort", &q.Sort).
		String("order", &q.Order).
		BindError()
	if err != nil {
		return bindError(err)
	}

	page, err := h.svc.List(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return paged(c, page)
}

// GetHotel godoc
// @Summary Get hotel by id
// @Tags hotels
// @Produce json
// @Param id path string true "Hotel ID"
// @Success 200 {object} Response{data=model.Hotel}
// @Failure 404 {object} errors.ErrorResponse
// @Router /hotels/{id} [get]
func (h *HotelHandler) GetHotel(c echo.Context) error {
	hotel, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, hotel)
}

// CreateHotel godoc
// @Summary Create hotel
// @Tags hotels
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body HotelRequest true "Hotel"
// @Success 201 {object} Response{data=model.Hotel}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /hotels [post]
func (h *HotelHandler) CreateHotel(c echo.Context) error {
	var req HotelRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	in := service.HotelInput{
		Name:        deref(req.Name),
		Location:    deref(req.Location),
		Description: deref(req.Description),
	}
	if req.PictureList != nil {
		in.PictureList = *req.PictureList
	}

	hotel, err := h.svc.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, hotel)
}

// UpdateHotel godoc
// @Summary Update hotel
// @Tags hotels
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Hotel ID"
// @Param request body HotelRequest true "Fields to change"
// @Success 200 {object} Response{data=model.Hotel}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /hotels/{id} [put]
func (h *HotelHandler) UpdateHotel(c echo.Context) error {
	var req HotelRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	hotel, err := h.svc.Update(c.Request().Context(), c.Param("id"), model.HotelPatch{
		Name:        req.Name,
		Location:    req.Location,
		Description: req.Description,
		PictureList: req.PictureList,
	})
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, hotel)
}

// DeleteHotel godoc
// @Summary Delete hotel
// @Tags hotels
// @Produce json
// @Security BearerAuth
// @Param id path string true "Hotel ID"
// @Success 200 {object} Response
// @Failure 404 {object} errors.ErrorResponse
// @Router /hotels/{id} [delete]
func (h *HotelHandler) DeleteHotel(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return message(c, "Hôtel supprimé")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

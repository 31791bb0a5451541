package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"hotelbooking/internal/cache"
	apperrors "hotelbooking/internal/errors"
	"hotelbooking/internal/model"
	"hotelbooking/internal/repository"
)

const hotelCacheTTL = 5 * time.Minute

// HotelInput carries a new hotel.
type HotelInput struct {
	Name        string
	Location    string
	Description string
	PictureList []string
}

// HotelQuery carries raw listing parameters.
type HotelQuery struct {
	Page  int
	Limit int
	Sort  string
	Order string
}

// HotelService exposes the catalog.
type HotelService interface {
	List(ctx context.Context, q HotelQuery) (*model.Page[model.Hotel], error)
	Get(ctx context.Context, id string) (*model.Hotel, error)
	Create(ctx context.Context, in HotelInput) (*model.Hotel, error)
	Update(ctx context.Context, id string, patch model.HotelPatch) (*model.Hotel, error)
	Delete(ctx context.Context, id string) error
}

type hotelService struct {
	repo   repository.HotelRepository
	cache  *cache.Client
	logger zerolog.Logger
}

// NewHotelService builds a HotelService with repository and read-through cache.
func NewHotelService(repo repository.HotelRepository, cache *cache.Client, logger zerolog.Logger) HotelService {
	return &hotelService{
		repo:   repo,
		cache:  cache,
		logger: logger.With().Str("component", "hotels").Logger(),
	}
}

func (s *hotelService) cacheKey(id string) string {
	return "hotel:" + id
}

func (s *hotelService) List(ctx context.Context, q HotelQuery) (*model.Page[model.Hotel], error) {
	var errs fieldErrors
	page, limit := checkPage(&errs, q.Page, q.Limit)
	order := checkOrder(&errs, q.Order)
	sort := q.Sort
	switch sort {
	case "":
		sort = repository.HotelSortCreatedAt
	case repository.HotelSortName, repository.HotelSortLocation, repository.HotelSortCreatedAt:
	default:
		errs.add("sort", "Le tri doit porter sur name, location ou createdAt")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	hotels, total, err := s.repo.List(ctx, model.ListOptions{Page: page, Limit: limit, Sort: sort, Order: order})
	if err != nil {
		return nil, apperrors.Unexpected(fmt.Errorf("list hotels: %w", err))
	}
	return &model.Page[model.Hotel]{Items: hotels, Pagination: model.NewPagination(page, limit, total)}, nil
}

func (s *hotelService) Get(ctx context.Context, id string) (*model.Hotel, error) {
	var cached model.Hotel
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	hotel, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.ErrHotelNotFound
	}
	if err != nil {
		return nil, apperrors.Unexpected(fmt.Errorf("find hotel: %w", err))
	}

	_ = s.cache.SetJSON(ctx, s.cacheKey(id), hotel, hotelCacheTTL)
	return hotel, nil
}

func (s *hotelService) Create(ctx context.Context, in HotelInput) (*model.Hotel, error) {
	hotel := &model.Hotel{
		Name:        strings.TrimSpace(in.Name),
		Location:    strings.TrimSpace(in.Location),
		Description: strings.TrimSpace(in.Description),
	}

	var errs fieldErrors
	checkRequired(&errs, "name", hotel.Name)
	checkRequired(&errs, "location", hotel.Location)
	checkRequired(&errs, "description", hotel.Description)
	hotel.PictureList = checkPictures(&errs, in.PictureList)
	if err := errs.err(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, hotel); err != nil {
		return nil, apperrors.Unexpected(fmt.Errorf("create hotel: %w", err))
	}
	return hotel, nil
}

func (s *hotelService) Update(ctx context.Context, id string, patch model.HotelPatch) (*model.Hotel, error) {
	hotel, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.ErrHotelNotFound
	}
	if err != nil {
		return nil, apperrors.Unexpected(fmt.Errorf("find hotel: %w", err))
	}

	var errs fieldErrors
	if patch.Name != nil {
		hotel.Name = strings.TrimSpace(*patch.Name)
		checkRequired(&errs, "name", hotel.Name)
	}
	if patch.Location != nil {
		hotel.Location = strings.TrimSpace(*patch.Location)
		checkRequired(&errs, "location", hotel.Location)
	}
	if patch.Description != nil {
		hotel.Description = strings.TrimSpace(*patch.Description)
		checkRequired(&errs, "description", hotel.Description)
	}
	if patch.PictureList != nil {
		hotel.PictureList = checkPictures(&errs, *patch.PictureList)
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	if hotel.PictureList == nil {
		hotel.PictureList = []string{}
	}

	if err := s.repo.Update(ctx, hotel); err != nil {
		return nil, apperrors.Unexpected(fmt.Errorf("update hotel: %w", err))
	}
	s.evict(ctx, id)
	return hotel, nil
}

func (s *hotelService) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.ErrHotelNotFound
	}
	if err != nil {
		return apperrors.Unexpected(fmt.Errorf("delete hotel: %w", err))
	}
	s.evict(ctx, id)
	return nil
}

// evict drops the cached copy. A failure leaves it readable until hotelCacheTTL.
func (s *hotelService) evict(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, s.cacheKey(id)); err != nil {
		s.logger.Error().Err(err).
			Str("hotel_id", id).
			Dur("stale_for", hotelCacheTTL).
			Msg("hotel cache eviction failed")
	}
}

func checkRequired(errs *fieldErrors, field, value string) {
	if value == "" {
		errs.add(field, "Ce champ est obligatoire")
	}
}

// checkPictures trims references and rejects blank ones.
func checkPictures(errs *fieldErrors, pictures []string) []string {
	out := make([]string, 0, len(pictures))
	blank := false
	for _, p := range pictures {
		if p = strings.TrimSpace(p); p == "" {
			blank = true
			continue
		}
		out = append(out, p)
	}
	if blank {
		errs.add("picture_list", "Les références d'image ne peuvent pas être vides")
	}
	return out
}

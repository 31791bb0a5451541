package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"hotelbooking/internal/access"
	apperrors "hotelbooking/internal/errors"
	"hotelbooking/internal/events"
	"hotelbooking/internal/metrics"
	"hotelbooking/internal/model"
	"hotelbooking/internal/repository"
)

// BookingQuery carries raw ledger listing parameters.
type BookingQuery struct {
	Status string
	Search string
	Sort   string
	Order  string
	Page   int
	Limit  int
}

// BookingService is the booking ledger.
type BookingService interface {
	Create(ctx context.Context, requester access.Identity, in BookingInput) (*model.Booking, error)
	Get(ctx context.Context, requester access.Identity, id string) (*model.Booking, error)
	Update(ctx context.Context, requester access.Identity, id string, in BookingInput) (*model.Booking, error)
	Cancel(ctx context.Context, requester access.Identity, id string) (*model.Booking, error)
	Delete(ctx context.Context, requester access.Identity, id string) error
	List(ctx context.Context, requester access.Identity, q BookingQuery) (*model.Page[model.Booking], error)
	ListMine(ctx context.Context, requester access.Identity) ([]model.Booking, error)
	// Export returns every booking matching q, ignoring paging.
	Export(ctx context.Context, requester access.Identity, q BookingQuery) ([]model.Booking, error)
}

type bookingService struct {
	bookings  repository.BookingRepository
	hotels    repository.HotelRepository
	users     repository.UserRepository
	access    access.Controller
	validator *BookingValidator
	publisher events.Publisher
	logger    zerolog.Logger
	now       func() time.Time
}

// BookingDeps groups the collaborators of the ledger.
type BookingDeps struct {
	Bookings  repository.BookingRepository
	Hotels    repository.HotelRepository
	Users     repository.UserRepository
	Access    access.Controller
	Publisher events.Publisher
	Logger    zerolog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewBookingService creates the booking ledger.
func NewBookingService(deps BookingDeps) BookingService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &bookingService{
		bookings:  deps.Bookings,
		hotels:    deps.Hotels,
		users:     deps.Users,
		access:    deps.Access,
		validator: NewBookingValidator(now),
		publisher: publisher,
		logger:    deps.Logger.With().Str("component", "bookings").Logger(),
		now:       now,
	}
}

// Create books a hotel for the requester. The owner is always the requester.
func (s *bookingService) Create(ctx context.Context, requester access.Identity, in BookingInput) (booking *model.Booking, err error) {
	defer s.observe("create", &err)

	booking, err = s.validator.ValidateCreate(in)
	if err != nil {
		return nil, err
	}

	if _, err := s.hotels.FindByID(ctx, booking.HotelID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrHotelNotFound
		}
		return nil, apperrors.Unexpected(fmt.Errorf("find hotel: %w", err))
	}

	booking.UserID = requester.ID
	booking.Status = model.BookingStatusPending
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, apperrors.Unexpected(fmt.Errorf("create booking: %w", err))
	}

	s.publish(ctx, events.BookingCreated, booking, requester)
	return booking, nil
}

func (s *bookingService) Get(ctx context.Context, requester access.Identity, id string) (*model.Booking, error) {
	return s.load(ctx, requester, id)
}

// load fetches a booking and authorizes the requester on it. A missing
// booking is reported before any ownership decision.
func (s *bookingService) load(ctx context.Context, requester access.Identity, id string) (*model.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.ErrBookingNotFound
	}
	if err != nil {
		return nil, apperrors.Unexpected(fmt.Errorf("find booking: %w", err))
	}
	if err := s.access.RequireOwnerOrRole(requester, booking.UserID, access.Privileged...); err != nil {
		return nil, err
	}
	return booking, nil
}

// Update applies the mutable fields of in. Owner and hotel never change.
func (s *bookingService) Update(ctx context.Context, requester access.Identity, id string, in BookingInput) (booking *model.Booking, err error) {
	defer s.observe("update", &err)

	booking, err = s.load(ctx, requester, id)
	if err != nil {
		return nil, err
	}

	patch, err := s.validator.ValidateUpdate(booking, in)
	if err != nil {
		return nil, err
	}
	applyBookingPatch(booking, patch)

	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, apperrors.Unexpected(fmt.Errorf("update booking: %w", err))
	}

	s.publish(ctx, events.BookingUpdated, booking, requester)
	return booking, nil
}

func applyBookingPatch(b *model.Booking, p model.BookingPatch) {
	if p.CheckIn != nil {
		b.CheckIn = *p.CheckIn
	}
	if p.CheckOut != nil {
		b.CheckOut = *p.CheckOut
	}
	if p.NumberOfGuests != nil {
		b.NumberOfGuests = *p.NumberOfGuests
	}
	if p.TotalPrice != nil {
		b.TotalPrice = *p.TotalPrice
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.SpecialRequests != nil {
		b.SpecialRequests = *p.SpecialRequests
	}
}

// Cancel sets the status to cancelled. Cancelling twice is not an error.
func (s *bookingService) Cancel(ctx context.Context, requester access.Identity, id string) (booking *model.Booking, err error) {
	defer s.observe("cancel", &err)

	booking, err = s.load(ctx, requester, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == model.BookingStatusCancelled {
		return booking, nil
	}

	booking.Status = model.BookingStatusCancelled
	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, apperrors.Unexpected(fmt.Errorf("cancel booking: %w", err))
	}

	s.publish(ctx, events.BookingCancelled, booking, requester)
	return booking, nil
}

// Delete is reserved to admins. The role is checked before the lookup.
func (s *bookingService) Delete(ctx context.Context, requester access.Identity, id string) (err error) {
	defer s.observe("delete", &err)

	if err := s.access.RequireRole(requester, model.RoleAdmin); err != nil {
		return err
	}

	booking, err := s.bookings.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.ErrBookingNotFound
	}
	if err != nil {
		return apperrors.Unexpected(fmt.Errorf("find booking: %w", err))
	}

	if err := s.bookings.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.ErrBookingNotFound
		}
		return apperrors.Unexpected(fmt.Errorf("delete booking: %w", err))
	}

	s.publish(ctx, events.BookingDeleted, booking, requester)
	return nil
}

func (s *bookingService) List(ctx context.Context, requester access.Identity, q BookingQuery) (*model.Page[model.Booking], error) {
	if err := s.access.RequireRole(requester, access.Privileged...); err != nil {
		return nil, err
	}

	var errs fieldErrors
	page, limit := checkPage(&errs, q.Page, q.Limit)
	filter, opts := s.parseQuery(&errs, q)
	if err := errs.err(); err != nil {
		return nil, err
	}
	opts.Page, opts.Limit = page, limit

	if err := s.resolveSearch(ctx, q.Search, &filter); err != nil {
		return nil, err
	}

	bookings, total, err := s.bookings.List(ctx, filter, opts)
	if err != nil {
		return nil, apperrors.Unexpected(fmt.Errorf("list bookings: %w", err))
	}
	return &model.Page[model.Booking]{Items: bookings, Pagination: model.NewPagination(page, limit, total)}, nil
}

func (s *bookingService) Export(ctx context.Context, requester access.Identity, q BookingQuery) ([]model.Booking, error) {
	if err := s.access.RequireRole(requester, access.Privileged...); err != nil {
		return nil, err
	}

	var errs fieldErrors
	filter, opts := s.parseQuery(&errs, q)
	if err := errs.err(); err != nil {
		return nil, err
	}
	if err := s.resolveSearch(ctx, q.Search, &filter); err != nil {
		return nil, err
	}

	bookings, _, err := s.bookings.List(ctx, filter, opts)
	if err != nil {
		return nil, apperrors.Unexpected(fmt.Errorf("export bookings: %w", err))
	}
	return bookings, nil
}

func (s *bookingService) parseQuery(errs *fieldErrors, q BookingQuery) (model.BookingFilter, model.ListOptions) {
	var filter model.BookingFilter
	if status := strings.TrimSpace(q.Status); status != "" {
		filter.Status = model.BookingStatus(strings.ToLower(status))
		if !filter.Status.Valid() {
			errs.add("status", "Le statut doit être pending, confirmed ou cancelled")
		}
	}

	opts := model.ListOptions{Sort: q.Sort, Order: checkOrder(errs, q.Order)}
	switch q.Sort {
	case "":
		opts.Sort = repository.BookingSortCreatedAt
	case repository.BookingSortCreatedAt, repository.BookingSortCheckIn, repository.BookingSortCheckOut,
		repository.BookingSortTotalPrice, repository.BookingSortStatus:
	default:
		errs.add("sort", "Tri invalide")
	}
	return filter, opts
}

// resolveSearch turns a free-text user search into an owner id set. No match
// yields an empty, non-nil set.
func (s *bookingService) resolveSearch(ctx context.Context, term string, filter *model.BookingFilter) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}
	users, err := s.users.Search(ctx, term)
	if err != nil {
		return apperrors.Unexpected(fmt.Errorf("search users: %w", err))
	}
	filter.UserIDs = make([]string, 0, len(users))
	for _, u := range users {
		filter.UserIDs = append(filter.UserIDs, u.ID)
	}
	return nil
}

func (s *bookingService) ListMine(ctx context.Context, requester access.Identity) ([]model.Booking, error) {
	bookings, err := s.bookings.ListByUser(ctx, requester.ID)
	if err != nil {
		return nil, apperrors.Unexpected(fmt.Errorf("list bookings: %w", err))
	}
	return bookings, nil
}

// publish emits a ledger event. Failures are logged and never surface.
func (s *bookingService) publish(ctx context.Context, subject string, b *model.Booking, actor access.Identity) {
	if err := s.publisher.Publish(ctx, subject, events.NewBookingEvent(b, actor.ID, s.now().UTC())); err != nil {
		s.logger.Error().Err(err).
			Str("subject", subject).
			Str("booking_id", b.ID).
			Msg("publish booking event failed")
	}
}

func (s *bookingService) observe(operation string, err *error) {
	outcome := "ok"
	if *err != nil {
		outcome = strings.ToLower(string(apperrors.KindOf(*err)))
	}
	metrics.IncBooking(operation, outcome)
}

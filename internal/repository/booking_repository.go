package repository

import (
	"context"

	"gorm.io/gorm"

	"hotelbooking/internal/model"
)

// Booking sort keys accepted by List.
const (
	BookingSortCreatedAt  = "createdAt"
	BookingSortCheckIn    = "checkIn"
	BookingSortCheckOut   = "checkOut"
	BookingSortTotalPrice = "totalPrice"
	BookingSortStatus     = "status"
)

var bookingSortColumns = map[string]string{
	BookingSortCreatedAt:  "created_at",
	BookingSortCheckIn:    "check_in",
	BookingSortCheckOut:   "check_out",
	BookingSortTotalPrice: "total_price",
	BookingSortStatus:     "status",
}

// BookingRepository defines ledger persistence operations.
type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	Update(ctx context.Context, booking *model.Booking) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]model.Booking, error)
	// List applies filter and returns one page plus the total match count.
	// A zero Limit returns every match.
	List(ctx context.Context, filter model.BookingFilter, opts model.ListOptions) ([]model.Booking, int64, error)
}

type bookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a new booking repository.
func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) Update(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Save(booking).Error
}

func (r *bookingRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Booking{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	var booking model.Booking
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &booking, nil
}

func (r *bookingRepository) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	bookings := []model.Booking{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) List(ctx context.Context, filter model.BookingFilter, opts model.ListOptions) ([]model.Booking, int64, error) {
	if filter.UserIDs != nil && len(filter.UserIDs) == 0 {
		return []model.Booking{}, 0, nil
	}

	scope := func(db *gorm.DB) *gorm.DB {
		if filter.Status != "" {
			db = db.Where("status = ?", filter.Status)
		}
		if filter.UserIDs != nil {
			db = db.Where("user_id IN ?", filter.UserIDs)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Booking{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := bookingSortColumns[opts.Sort]
	if !ok {
		column = "created_at"
	}
	desc := opts.Order != model.SortAsc

	q := r.db.WithContext(ctx).Scopes(scope).Order(orderClause(column, desc)).Order(orderClause("id", desc))
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit).Offset(opts.Offset())
	}

	bookings := []model.Booking{}
	if err := q.Find(&bookings).Error; err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

package repository

import (
	"context"

	"gorm.io/gorm"

	"hotelbooking/internal/model"
)

// Hotel sort keys accepted by List.
const (
	HotelSortName      = "name"
	HotelSortLocation  = "location"
	HotelSortCreatedAt = "createdAt"
)

var hotelSortColumns = map[string]string{
	HotelSortName:      "name",
	HotelSortLocation:  "location",
	HotelSortCreatedAt: "created_at",
}

// HotelRepository defines catalog persistence operations.
type HotelRepository interface {
	Create(ctx context.Context, hotel *model.Hotel) error
	Update(ctx context.Context, hotel *model.Hotel) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Hotel, error)
	List(ctx context.Context, opts model.ListOptions) ([]model.Hotel, int64, error)
}

type hotelRepository struct {
	db *gorm.DB
}

// NewHotelRepository creates a new hotel repository.
func NewHotelRepository(db *gorm.DB) HotelRepository {
	return &hotelRepository{db: db}
}

func (r *hotelRepository) Create(ctx context.Context, hotel *model.Hotel) error {
	return r.db.WithContext(ctx).Create(hotel).Error
}

func (r *hotelRepository) Update(ctx context.Context, hotel *model.Hotel) error {
	return r.db.WithContext(ctx).Save(hotel).Error
}

func (r *hotelRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Hotel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *hotelRepository) FindByID(ctx context.Context, id string) (*model.Hotel, error) {
	var hotel model.Hotel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&hotel).Error; err != nil {
		return nil, translateGormError(err)
	}
	return &hotel, nil
}

// List returns one page of hotels plus the total count.
func (r *hotelRepository) List(ctx context.Context, opts model.ListOptions) ([]model.Hotel, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Hotel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := hotelSortColumns[opts.Sort]
	if !ok {
		column = "created_at"
	}
	desc := opts.Order != model.SortAsc

	q := r.db.WithContext(ctx).Order(orderClause(column, desc)).Order(orderClause("id", desc))
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit).Offset(opts.Offset())
	}

	hotels := []model.Hotel{}
	if err := q.Find(&hotels).Error; err != nil {
		return nil, 0, err
	}
	return hotels, total, nil
}

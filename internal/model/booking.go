package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// Prices travel as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// BookingStatus represents the lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}

// MaxSpecialRequestsLength bounds Booking.SpecialRequests, in characters.
const MaxSpecialRequestsLength = 500

// TotalPriceScale is the number of decimals Booking.TotalPrice keeps.
const TotalPriceScale = 2

// MaxTotalPrice is the first value decimal(12,2) cannot hold.
var MaxTotalPrice = decimal.New(1, 10)

// Booking is a reservation of a hotel by a user for a date range.
type Booking struct {
	ID              string          `json:"id" gorm:"type:char(36);primaryKey"`
	UserID          string          `json:"user" gorm:"type:char(36);not null;index"`
	HotelID         string          `json:"hotel" gorm:"type:char(36);not null;index"`
	CheckIn         time.Time       `json:"checkIn" gorm:"not null;index"`
	CheckOut        time.Time       `json:"checkOut" gorm:"not null"`
	NumberOfGuests  int             `json:"numberOfGuests" gorm:"not null"`
	TotalPrice      decimal.Decimal `json:"totalPrice" gorm:"type:decimal(12,2);not null"`
	Status          BookingStatus   `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	SpecialRequests string          `json:"specialRequests,omitempty" gorm:"size:500"`
	CreatedAt       time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.Status == "" {
		b.Status = BookingStatusPending
	}
	return nil
}

// BookingPatch lists the fields an update may touch. Owner and hotel are
// deliberately absent: they are fixed at creation.
type BookingPatch struct {
	CheckIn         *time.Time
	CheckOut        *time.Time
	NumberOfGuests  *int
	TotalPrice      *decimal.Decimal
	Status          *BookingStatus
	SpecialRequests *string
}

// BookingFilter narrows a ledger listing. A non-nil UserIDs restricts owners
// to that set, even when empty.
type BookingFilter struct {
	Status  BookingStatus
	UserIDs []string
}

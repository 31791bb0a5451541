package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hotelbooking/internal/model"
)

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	Pseudo    string             `bson:"pseudo"`
	Password  string             `bson:"password"`
	Role      string             `bson:"role"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func newUserDocument(u *model.User) userDocument {
	id, _ := primitive.ObjectIDFromHex(u.ID)
	return userDocument{
		ID:        id,
		Email:     u.Email,
		Pseudo:    u.Pseudo,
		Password:  u.PasswordHash,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (d userDocument) toModel() model.User {
	return model.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		Pseudo:       d.Pseudo,
		PasswordHash: d.Password,
		Role:         model.Role(d.Role),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type hotelDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Location    string             `bson:"location"`
	Description string             `bson:"description"`
	PictureList []string           `bson:"picture_list"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func newHotelDocument(h *model.Hotel) hotelDocument {
	id, _ := primitive.ObjectIDFromHex(h.ID)
	pictures := h.PictureList
	if pictures == nil {
		pictures = []string{}
	}
	return hotelDocument{
		ID:          id,
		Name:        h.Name,
		Location:    h.Location,
		Description: h.Description,
		PictureList: pictures,
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
}

func (d hotelDocument) toModel() model.Hotel {
	pictures := d.PictureList
	if pictures == nil {
		pictures = []string{}
	}
	return model.Hotel{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Location:    d.Location,
		Description: d.Description,
		PictureList: pictures,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type bookingDocument struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty"`
	User            primitive.ObjectID   `bson:"user"`
	Hotel           primitive.ObjectID   `bson:"hotel"`
	CheckIn         time.Time            `bson:"checkIn"`
	CheckOut        time.Time            `bson:"checkOut"`
	NumberOfGuests  int                  `bson:"numberOfGuests"`
	TotalPrice      primitive.Decimal128 `bson:"totalPrice"`
	Status          string               `bson:"status"`
	SpecialRequests string               `bson:"specialRequests,omitempty"`
	CreatedAt       time.Time            `bson:"createdAt"`
	UpdatedAt       time.Time            `bson:"updatedAt"`
}

func newBookingDocument(b *model.Booking) (bookingDocument, error) {
	id, _ := primitive.ObjectIDFromHex(b.ID)
	user, err := primitive.ObjectIDFromHex(b.UserID)
	if err != nil {
		return bookingDocument{}, ErrNotFound
	}
	hotel, err := primitive.ObjectIDFromHex(b.HotelID)
	if err != nil {
		return bookingDocument{}, ErrNotFound
	}
	price, err := primitive.ParseDecimal128(b.TotalPrice.String())
	if err != nil {
		return bookingDocument{}, err
	}
	return bookingDocument{
		ID:              id,
		User:            user,
		Hotel:           hotel,
		CheckIn:         b.CheckIn,
		CheckOut:        b.CheckOut,
		NumberOfGuests:  b.NumberOfGuests,
		TotalPrice:      price,
		Status:          string(b.Status),
		SpecialRequests: b.SpecialRequests,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}, nil
}

func (d bookingDocument) toModel() model.Booking {
	price, err := decimal.NewFromString(d.TotalPrice.String())
	if err != nil {
		price = decimal.Zero
	}
	return model.Booking{
		ID:              d.ID.Hex(),
		UserID:          d.User.Hex(),
		HotelID:         d.Hotel.Hex(),
		CheckIn:         d.CheckIn.UTC(),
		CheckOut:        d.CheckOut.UTC(),
		NumberOfGuests:  d.NumberOfGuests,
		TotalPrice:      price,
		Status:          model.BookingStatus(d.Status),
		SpecialRequests: d.SpecialRequests,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// objectIDs converts hex ids, dropping the ones that cannot name a document.
func objectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}

func sortDirection(order model.SortOrder) int {
	if order == model.SortAsc {
		return 1
	}
	return -1
}

func stampNew(created, updated *time.Time) {
	now := time.Now().UTC()
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

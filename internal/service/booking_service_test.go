package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hotelbooking/internal/access"
	apperrors "hotelbooking/internal/errors"
	"hotelbooking/internal/events"
	"hotelbooking/internal/model"
	"hotelbooking/internal/repository"
)

var fixedNow = time.Date(2030, 5, 10, 15, 30, 0, 0, time.UTC)

var (
	owner    = access.Identity{ID: "user-a", Role: model.RoleUser}
	stranger = access.Identity{ID: "user-c", Role: model.RoleUser}
	employee = access.Identity{ID: "emp-1", Role: model.RoleEmployee}
	admin    = access.Identity{ID: "admin-1", Role: model.RoleAdmin}
)

type bookingFixture struct {
	bookings *MockBookingRepository
	hotels   *MockHotelRepository
	users    *MockUserRepository
	events   *events.Recorder
	service  BookingService
}

func newBookingFixture() *bookingFixture {
	f := &bookingFixture{
		bookings: new(MockBookingRepository),
		hotels:   new(MockHotelRepository),
		users:    new(MockUserRepository),
		events:   &events.Recorder{},
	}
	f.service = NewBookingService(BookingDeps{
		Bookings:  f.bookings,
		Hotels:    f.hotels,
		Users:     f.users,
		Access:    access.NewController(nil, nil, nil),
		Publisher: f.events,
		Logger:    zerolog.Nop(),
		Now:       func() time.Time { return fixedNow },
	})
	return f
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func pricePtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func validInput() BookingInput {
	return BookingInput{
		HotelID:        "hotel-1",
		CheckIn:        strPtr("2030-05-10"),
		CheckOut:       strPtr("2030-05-12"),
		NumberOfGuests: intPtr(2),
		TotalPrice:     pricePtr("240.00"),
	}
}

func storedBooking() *model.Booking {
	return &model.Booking{
		ID:             "b1",
		UserID:         owner.ID,
		HotelID:        "hotel-1",
		CheckIn:        time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:       time.Date(2030, 6, 4, 0, 0, 0, 0, time.UTC),
		NumberOfGuests: 2,
		TotalPrice:     decimal.RequireFromString("300"),
		Status:         model.BookingStatusPending,
	}
}

func fieldsOf(t *testing.T, err error) []string {
	t.Helper()
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	require.Equal(t, apperrors.KindValidation, appErr.Kind)
	out := make([]string, 0, len(appErr.Fields))
	for _, f := range appErr.Fields {
		out = append(out, f.Field)
	}
	return out
}

func TestBookingService_Create(t *testing.T) {
	t.Run("owner is the requester and status is pending", func(t *testing.T) {
		f := newBookingFixture()
		f.hotels.On("FindByID", mock.Anything, "hotel-1").Return(&model.Hotel{ID: "hotel-1"}, nil)
		f.bookings.On("Create", mock.Anything, mock.MatchedBy(func(b *model.Booking) bool {
			return b.UserID == owner.ID && b.Status == model.BookingStatusPending
		})).Return(nil)

		in := validInput()
		in.Status = strPtr("confirmed")
		booking, err := f.service.Create(context.Background(), owner, in)
		require.NoError(t, err)
		assert.True(t, booking.CheckIn.Before(booking.CheckOut))
		assert.Equal(t, []string{events.BookingCreated}, f.events.Subjects())
		f.bookings.AssertExpectations(t)
	})

	t.Run("checkIn yesterday is rejected naming checkIn", func(t *testing.T) {
		f := newBookingFixture()
		in := validInput()
		in.CheckIn = strPtr("2030-05-09")

		_, err := f.service.Create(context.Background(), owner, in)
		assert.Equal(t, []string{"checkIn"}, fieldsOf(t, err))
		f.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("checkIn earlier today is accepted", func(t *testing.T) {
		f := newBookingFixture()
		f.hotels.On("FindByID", mock.Anything, "hotel-1").Return(&model.Hotel{ID: "hotel-1"}, nil)
		f.bookings.On("Create", mock.Anything, mock.Anything).Return(nil)

		in := validInput()
		in.CheckIn = strPtr("2030-05-10T01:00:00Z")
		_, err := f.service.Create(context.Background(), owner, in)
		assert.NoError(t, err)
	})

	t.Run("every violated field is reported", func(t *testing.T) {
		f := newBookingFixture()
		in := BookingInput{
			CheckIn:         strPtr("2030-05-20"),
			CheckOut:        strPtr("2030-05-20"),
			NumberOfGuests:  intPtr(0),
			TotalPrice:      pricePtr("-1"),
			SpecialRequests: strPtr(repeat("é", 501)),
		}

		_, err := f.service.Create(context.Background(), owner, in)
		assert.ElementsMatch(t,
			[]string{"hotel", "checkOut", "numberOfGuests", "totalPrice", "specialRequests"},
			fieldsOf(t, err))
	})

	t.Run("500 characters of special requests are allowed", func(t *testing.T) {
		f := newBookingFixture()
		f.hotels.On("FindByID", mock.Anything, "hotel-1").Return(&model.Hotel{ID: "hotel-1"}, nil)
		f.bookings.On("Create", mock.Anything, mock.Anything).Return(nil)

		in := validInput()
		in.SpecialRequests = strPtr(repeat("é", 500))
		_, err := f.service.Create(context.Background(), owner, in)
		assert.NoError(t, err)
	})

	t.Run("missing fields", func(t *testing.T) {
		f := newBookingFixture()
		_, err := f.service.Create(context.Background(), owner, BookingInput{})
		assert.ElementsMatch(t,
			[]string{"hotel", "checkIn", "checkOut", "numberOfGuests", "totalPrice"},
			fieldsOf(t, err))
	})

	t.Run("unknown hotel", func(t *testing.T) {
		f := newBookingFixture()
		f.hotels.On("FindByID", mock.Anything, "hotel-1").Return(nil, repository.ErrNotFound)

		_, err := f.service.Create(context.Background(), owner, validInput())
		assert.ErrorIs(t, err, apperrors.ErrHotelNotFound)
	})
}

func repeat(s string, n int) string {
	out := make([]byte, 0, len(s)*n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}

func TestBookingService_GetAuthorization(t *testing.T) {
	tests := []struct {
		name      string
		requester access.Identity
		wantErr   error
	}{
		{"owner", owner, nil},
		{"employee", employee, nil},
		{"admin", admin, nil},
		{"other user", stranger, apperrors.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture()
			f.bookings.On("FindByID", mock.Anything, "b1").Return(storedBooking(), nil)

			booking, err := f.service.Get(context.Background(), tt.requester, "b1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, booking)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "b1", booking.ID)
		})
	}

	t.Run("missing booking is not found before forbidden", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("FindByID", mock.Anything, "nope").Return(nil, repository.ErrNotFound)

		_, err := f.service.Get(context.Background(), stranger, "nope")
		assert.ErrorIs(t, err, apperrors.ErrBookingNotFound)
	})
}

func TestBookingService_Update(t *testing.T) {
	t.Run("other user is forbidden", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("FindByID", mock.Anything, "b1").Return(storedBooking(), nil)

		_, err := f.service.Update(context.Background(), stranger, "b1", BookingInput{NumberOfGuests: intPtr(3)})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		f.bookings.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("non-date update keeps a started stay valid", func(t *testing.T) {
		f := newBookingFixture()
		started := storedBooking()
		started.CheckIn = fixedNow.AddDate(0, 0, -2)
		f.bookings.On("FindByID", mock.Anything, "b1").Return(started, nil)
		f.bookings.On("Update", mock.Anything, mock.Anything).Return(nil)

		booking, err := f.service.Update(context.Background(), owner, "b1", BookingInput{
			NumberOfGuests:  intPtr(3),
			SpecialRequests: strPtr("  late arrival "),
		})
		require.NoError(t, err)
		assert.Equal(t, 3, booking.NumberOfGuests)
		assert.Equal(t, "late arrival", booking.SpecialRequests)
		assert.Equal(t, []string{events.BookingUpdated}, f.events.Subjects())
	})

	t.Run("checkOut before stored checkIn is rejected", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("FindByID", mock.Anything, "b1").Return(storedBooking(), nil)

		_, err := f.service.Update(context.Background(), owner, "b1", BookingInput{CheckOut: strPtr("2030-06-01")})
		assert.Equal(t, []string{"checkOut"}, fieldsOf(t, err))
	})

	t.Run("date change on a started stay is rejected", func(t *testing.T) {
		f := newBookingFixture()
		started := storedBooking()
		started.CheckIn = time.Date(2030, 5, 8, 0, 0, 0, 0, time.UTC)
		f.bookings.On("FindByID", mock.Anything, "b1").Return(started, nil)

		_, err := f.service.Update(context.Background(), owner, "b1", BookingInput{CheckOut: strPtr("2030-06-10")})
		assert.Equal(t, []string{"checkIn"}, fieldsOf(t, err))
	})

	t.Run("moving dates keeps the pair ordered", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("FindByID", mock.Anything, "b1").Return(storedBooking(), nil)
		f.bookings.On("Update", mock.Anything, mock.Anything).Return(nil)

		booking, err := f.service.Update(context.Background(), employee, "b1", BookingInput{CheckIn: strPtr("2030-06-02")})
		require.NoError(t, err)
		assert.True(t, booking.CheckIn.Before(booking.CheckOut))
		assert.Equal(t, owner.ID, booking.UserID)
		assert.Equal(t, "hotel-1", booking.HotelID)
	})

	t.Run("status must be a known value", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("FindByID", mock.Anything, "b1").Return(storedBooking(), nil)

		_, err := f.service.Update(context.Background(), admin, "b1", BookingInput{Status: strPtr("archived")})
		assert.Equal(t, []string{"status"}, fieldsOf(t, err))
	})

	t.Run("status may be set through update", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("FindByID", mock.Anything, "b1").Return(storedBooking(), nil)
		f.bookings.On("Update", mock.Anything, mock.Anything).Return(nil)

		booking, err := f.service.Update(context.Background(), admin, "b1", BookingInput{Status: strPtr("Confirmed")})
		require.NoError(t, err)
		assert.Equal(t, model.BookingStatusConfirmed, booking.Status)
	})
}

func TestBookingService_Cancel(t *testing.T) {
	t.Run("other user cannot cancel", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("FindByID", mock.Anything, "b1").Return(storedBooking(), nil)

		_, err := f.service.Cancel(context.Background(), stranger, "b1")
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	for _, requester := range []access.Identity{owner, admin} {
		t.Run("cancel by "+string(requester.Role), func(t *testing.T) {
			f := newBookingFixture()
			f.bookings.On("FindByID", mock.Anything, "b1").Return(storedBooking(), nil)
			f.bookings.On("Update", mock.Anything, mock.MatchedBy(func(b *model.Booking) bool {
				return b.Status == model.BookingStatusCancelled
			})).Return(nil).Once()

			booking, err := f.service.Cancel(context.Background(), requester, "b1")
			require.NoError(t, err)
			assert.Equal(t, model.BookingStatusCancelled, booking.Status)
			assert.Equal(t, []string{events.BookingCancelled}, f.events.Subjects())
		})
	}

	t.Run("cancelling twice is idempotent", func(t *testing.T) {
		f := newBookingFixture()
		cancelled := storedBooking()
		cancelled.Status = model.BookingStatusCancelled
		f.bookings.On("FindByID", mock.Anything, "b1").Return(cancelled, nil)

		booking, err := f.service.Cancel(context.Background(), owner, "b1")
		require.NoError(t, err)
		assert.Equal(t, model.BookingStatusCancelled, booking.Status)
		assert.Empty(t, f.events.Events)
	})
}

func TestBookingService_Delete(t *testing.T) {
	t.Run("non admin is forbidden before lookup", func(t *testing.T) {
		f := newBookingFixture()
		err := f.service.Delete(context.Background(), employee, "missing")
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		f.bookings.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("admin on missing booking", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("FindByID", mock.Anything, "missing").Return(nil, repository.ErrNotFound)

		err := f.service.Delete(context.Background(), admin, "missing")
		assert.ErrorIs(t, err, apperrors.ErrBookingNotFound)
	})

	t.Run("admin deletes", func(t *testing.T) {
		f := newBookingFixture()
		f.bookings.On("FindByID", mock.Anything, "b1").Return(storedBooking(), nil)
		f.bookings.On("Delete", mock.Anything, "b1").Return(nil)

		require.NoError(t, f.service.Delete(context.Background(), admin, "b1"))
		assert.Equal(t, []string{events.BookingDeleted}, f.events.Subjects())
	})
}

func TestBookingService_List(t *testing.T) {
	t.Run("users cannot list the ledger", func(t *testing.T) {
		f := newBookingFixture()
		_, err := f.service.List(context.Background(), owner, BookingQuery{})
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("pagination echoes the page", func(t *testing.T) {
		f := newBookingFixture()
		opts := model.ListOptions{Page: 3, Limit: 2, Sort: "createdAt", Order: model.SortDesc}
		f.bookings.On("List", mock.Anything, model.BookingFilter{Status: model.BookingStatusPending}, opts).
			Return([]model.Booking{}, int64(5), nil)

		page, err := f.service.List(context.Background(), employee, BookingQuery{Status: "pending", Page: 3, Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, model.Pagination{Current: 3, Limit: 2, Total: 5, Pages: 3}, page.Pagination)
	})

	t.Run("search without match yields an empty page", func(t *testing.T) {
		f := newBookingFixture()
		f.users.On("Search", mock.Anything, "ghost").Return([]model.User{}, nil)
		f.bookings.On("List", mock.Anything, mock.MatchedBy(func(filter model.BookingFilter) bool {
			return filter.UserIDs != nil && len(filter.UserIDs) == 0
		}), mock.Anything).Return([]model.Booking{}, int64(0), nil)

		page, err := f.service.List(context.Background(), admin, BookingQuery{Search: " ghost "})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Equal(t, model.Pagination{Current: 1, Limit: 10, Total: 0, Pages: 0}, page.Pagination)
	})

	t.Run("search resolves owners", func(t *testing.T) {
		f := newBookingFixture()
		f.users.On("Search", mock.Anything, "ann").Return([]model.User{{ID: "u1"}, {ID: "u2"}}, nil)
		f.bookings.On("List", mock.Anything, model.BookingFilter{UserIDs: []string{"u1", "u2"}}, mock.Anything).
			Return([]model.Booking{{ID: "b1"}}, int64(1), nil)

		page, err := f.service.List(context.Background(), admin, BookingQuery{Search: "ann"})
		require.NoError(t, err)
		assert.Len(t, page.Items, 1)
	})

	t.Run("bad parameters", func(t *testing.T) {
		f := newBookingFixture()
		_, err := f.service.List(context.Background(), admin, BookingQuery{Status: "done", Sort: "hotel", Order: "up", Page: -1, Limit: 1000})
		assert.ElementsMatch(t, []string{"status", "sort", "order", "page", "limit"}, fieldsOf(t, err))
	})
}

func TestBookingService_ListMineAndExport(t *testing.T) {
	f := newBookingFixture()
	f.bookings.On("ListByUser", mock.Anything, owner.ID).Return([]model.Booking{*storedBooking()}, nil)

	mine, err := f.service.ListMine(context.Background(), owner)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = f.service.Export(context.Background(), owner, BookingQuery{})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	f.bookings.On("List", mock.Anything, model.BookingFilter{}, model.ListOptions{Sort: "createdAt", Order: model.SortDesc}).
		Return([]model.Booking{*storedBooking()}, int64(1), nil)
	rows, err := f.service.Export(context.Background(), employee, BookingQuery{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

type failingPublisher struct{ events.Noop }

func (failingPublisher) Publish(context.Context, string, interface{}) error {
	return errors.New("nats down")
}

func TestBookingService_PublishFailureDoesNotFailRequest(t *testing.T) {
	bookings := new(MockBookingRepository)
	hotels := new(MockHotelRepository)
	hotels.On("FindByID", mock.Anything, "hotel-1").Return(&model.Hotel{ID: "hotel-1"}, nil)
	bookings.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := NewBookingService(BookingDeps{
		Bookings:  bookings,
		Hotels:    hotels,
		Users:     new(MockUserRepository),
		Access:    access.NewController(nil, nil, nil),
		Publisher: failingPublisher{},
		Logger:    zerolog.Nop(),
		Now:       func() time.Time { return fixedNow },
	})

	_, err := svc.Create(context.Background(), owner, validInput())
	assert.NoError(t, err)
}

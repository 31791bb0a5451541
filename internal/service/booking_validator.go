package service

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"hotelbooking/internal/model"
)

const dateLayout = "2006-01-02"

// BookingInput carries raw booking fields. Nil means absent.
type BookingInput struct {
	HotelID         string
	CheckIn         *string
	CheckOut        *string
	NumberOfGuests  *int
	TotalPrice      *decimal.Decimal
	SpecialRequests *string
	Status          *string
}

// BookingValidator enforces the ledger write-time invariants.
type BookingValidator struct {
	now func() time.Time
}

// NewBookingValidator creates a validator reading today from now.
func NewBookingValidator(now func() time.Time) *BookingValidator {
	if now == nil {
		now = time.Now
	}
	return &BookingValidator{now: now}
}

// today is the start of the current UTC day.
func (v *BookingValidator) today() time.Time {
	return startOfDay(v.now().UTC())
}

// ValidateCreate checks every field of a new booking and reports all
// violations at once. Owner and status are left to the caller.
func (v *BookingValidator) ValidateCreate(in BookingInput) (*model.Booking, error) {
	var errs fieldErrors
	b := &model.Booking{HotelID: strings.TrimSpace(in.HotelID)}

	if b.HotelID == "" {
		errs.add("hotel", "L'hôtel est obligatoire")
	}

	checkIn, okIn := v.requiredDate(&errs, "checkIn", in.CheckIn)
	checkOut, okOut := v.requiredDate(&errs, "checkOut", in.CheckOut)
	if okIn && okOut {
		v.checkRange(&errs, checkIn, checkOut)
	}
	b.CheckIn, b.CheckOut = checkIn, checkOut

	if in.NumberOfGuests == nil {
		errs.add("numberOfGuests", "Le nombre de voyageurs est obligatoire")
	} else {
		checkGuests(&errs, *in.NumberOfGuests)
		b.NumberOfGuests = *in.NumberOfGuests
	}

	if in.TotalPrice == nil {
		errs.add("totalPrice", "Le prix total est obligatoire")
	} else {
		checkPrice(&errs, *in.TotalPrice)
		b.TotalPrice = *in.TotalPrice
	}

	if in.SpecialRequests != nil {
		b.SpecialRequests = strings.TrimSpace(*in.SpecialRequests)
		checkSpecialRequests(&errs, b.SpecialRequests)
	}

	if err := errs.err(); err != nil {
		return nil, err
	}
	return b, nil
}

// ValidateUpdate checks the fields present in in against existing. Dates are
// re-validated as a pair only when one of them changes, so a stay that has
// started can still have its other fields edited.
func (v *BookingValidator) ValidateUpdate(existing *model.Booking, in BookingInput) (model.BookingPatch, error) {
	var errs fieldErrors
	var patch model.BookingPatch

	if in.CheckIn != nil || in.CheckOut != nil {
		checkIn, checkOut := existing.CheckIn, existing.CheckOut
		ok := true
		if in.CheckIn != nil {
			var parsed bool
			checkIn, parsed = v.requiredDate(&errs, "checkIn", in.CheckIn)
			ok = ok && parsed
			patch.CheckIn = &checkIn
		}
		if in.CheckOut != nil {
			var parsed bool
			checkOut, parsed = v.requiredDate(&errs, "checkOut", in.CheckOut)
			ok = ok && parsed
			patch.CheckOut = &checkOut
		}
		if ok {
			if in.CheckIn == nil && startOfDay(checkIn).Before(v.today()) {
				errs.add("checkIn", "La date d'arrivée ne peut pas être dans le passé")
			}
			v.checkRange(&errs, checkIn, checkOut)
		}
	}

	if in.NumberOfGuests != nil {
		checkGuests(&errs, *in.NumberOfGuests)
		patch.NumberOfGuests = in.NumberOfGuests
	}
	if in.TotalPrice != nil {
		checkPrice(&errs, *in.TotalPrice)
		patch.TotalPrice = in.TotalPrice
	}
	if in.SpecialRequests != nil {
		trimmed := strings.TrimSpace(*in.SpecialRequests)
		checkSpecialRequests(&errs, trimmed)
		patch.SpecialRequests = &trimmed
	}
	if in.Status != nil {
		status := model.BookingStatus(strings.ToLower(strings.TrimSpace(*in.Status)))
		if !status.Valid() {
			errs.add("status", "Le statut doit être pending, confirmed ou cancelled")
		}
		patch.Status = &status
	}

	if err := errs.err(); err != nil {
		return model.BookingPatch{}, err
	}
	return patch, nil
}

// requiredDate parses a present date and rejects a check-in before today.
func (v *BookingValidator) requiredDate(errs *fieldErrors, field string, raw *string) (time.Time, bool) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		errs.add(field, "La date est obligatoire")
		return time.Time{}, false
	}
	t, err := ParseDate(*raw)
	if err != nil {
		errs.add(field, "Date invalide, format attendu AAAA-MM-JJ")
		return time.Time{}, false
	}
	if field == "checkIn" && t.Before(v.today()) {
		errs.add(field, "La date d'arrivée ne peut pas être dans le passé")
	}
	return t, true
}

func (v *BookingValidator) checkRange(errs *fieldErrors, checkIn, checkOut time.Time) {
	if !startOfDay(checkIn).Before(startOfDay(checkOut)) {
		errs.add("checkOut", "La date de départ doit être postérieure à la date d'arrivée")
	}
}

func checkGuests(errs *fieldErrors, n int) {
	if n < 1 {
		errs.add("numberOfGuests", "Il faut au moins 1 voyageur")
	}
}

func checkPrice(errs *fieldErrors, price decimal.Decimal) {
	switch {
	case price.IsNegative():
		errs.add("totalPrice", "Le prix total ne peut pas être négatif")
	case !price.Equal(price.Round(model.TotalPriceScale)):
		errs.add("totalPrice", "Le prix total ne peut pas avoir plus de 2 décimales")
	case price.GreaterThanOrEqual(model.MaxTotalPrice):
		errs.add("totalPrice", "Le prix total est trop élevé")
	}
}

func checkSpecialRequests(errs *fieldErrors, s string) {
	if utf8.RuneCountInString(s) > model.MaxSpecialRequestsLength {
		errs.add("specialRequests", "Les demandes spéciales sont limitées à 500 caractères")
	}
}

// ParseDate accepts YYYY-MM-DD or RFC 3339 and returns the calendar day as
// UTC midnight. For RFC 3339 the day is read in the value's own offset.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return startOfDay(t), nil
}

// startOfDay returns midnight UTC of t's calendar day in t's location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

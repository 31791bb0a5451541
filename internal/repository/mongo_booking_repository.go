package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	dbpkg "hotelbooking/internal/db"
	"hotelbooking/internal/model"
)

type mongoBookingRepository struct {
	coll *mongo.Collection
}

// NewMongoBookingRepository builds a MongoDB-backed booking repository.
func NewMongoBookingRepository(db *mongo.Database) BookingRepository {
	return &mongoBookingRepository{coll: db.Collection(dbpkg.BookingsCollection)}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if booking.Status == "" {
		booking.Status = model.BookingStatusPending
	}
	stampNew(&booking.CreatedAt, &booking.UpdatedAt)
	doc, err := newBookingDocument(booking)
	if err != nil {
		return err
	}
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return translateMongoError(err)
	}
	booking.ID = doc.ID.Hex()
	return nil
}

// Update rewrites the mutable fields of one booking. Owner and hotel stay as stored.
func (r *mongoBookingRepository) Update(ctx context.Context, booking *model.Booking) error {
	oid, err := primitive.ObjectIDFromHex(booking.ID)
	if err != nil {
		return ErrNotFound
	}
	booking.UpdatedAt = time.Now().UTC()
	price, err := primitive.ParseDecimal128(booking.TotalPrice.String())
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"checkIn":         booking.CheckIn,
		"checkOut":        booking.CheckOut,
		"numberOfGuests":  booking.NumberOfGuests,
		"totalPrice":      price,
		"status":          string(booking.Status),
		"specialRequests": booking.SpecialRequests,
		"updatedAt":       booking.UpdatedAt,
	}})
	if err != nil {
		return translateMongoError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoBookingRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var doc bookingDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translateMongoError(err)
	}
	booking := doc.toModel()
	return &booking, nil
}

func (r *mongoBookingRepository) ListByUser(ctx context.Context, userID string) ([]model.Booking, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []model.Booking{}, nil
	}
	return r.find(ctx, bson.M{"user": oid}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

// bookingQuery translates filter. It reports false when no document can
// match, which happens when an owner set holds no usable id.
func bookingQuery(filter model.BookingFilter) (bson.M, bool) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	if filter.UserIDs != nil {
		ids := objectIDs(filter.UserIDs)
		if len(ids) == 0 {
			return nil, false
		}
		query["user"] = bson.M{"$in": ids}
	}
	return query, true
}

func (r *mongoBookingRepository) List(ctx context.Context, filter model.BookingFilter, opts model.ListOptions) ([]model.Booking, int64, error) {
	query, ok := bookingQuery(filter)
	if !ok {
		return []model.Booking{}, 0, nil
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	field := opts.Sort
	if _, ok := bookingSortColumns[field]; !ok {
		field = BookingSortCreatedAt
	}
	dir := sortDirection(opts.Order)
	findOpts := options.Find().SetSort(bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}})
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit)).SetSkip(int64(opts.Offset()))
	}

	bookings, err := r.find(ctx, query, findOpts)
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func (r *mongoBookingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]model.Booking, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []bookingDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	bookings := make([]model.Booking, 0, len(docs))
	for _, d := range docs {
		bookings = append(bookings, d.toModel())
	}
	return bookings, nil
}

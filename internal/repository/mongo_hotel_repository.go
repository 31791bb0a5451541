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

type mongoHotelRepository struct {
	coll *mongo.Collection
}

// NewMongoHotelRepository builds a MongoDB-backed hotel repository.
func NewMongoHotelRepository(db *mongo.Database) HotelRepository {
	return &mongoHotelRepository{coll: db.Collection(dbpkg.HotelsCollection)}
}

func (r *mongoHotelRepository) Create(ctx context.Context, hotel *model.Hotel) error {
	stampNew(&hotel.CreatedAt, &hotel.UpdatedAt)
	doc := newHotelDocument(hotel)
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return translateMongoError(err)
	}
	hotel.ID = doc.ID.Hex()
	hotel.PictureList = doc.PictureList
	return nil
}

func (r *mongoHotelRepository) Update(ctx context.Context, hotel *model.Hotel) error {
	oid, err := primitive.ObjectIDFromHex(hotel.ID)
	if err != nil {
		return ErrNotFound
	}
	hotel.UpdatedAt = time.Now().UTC()
	doc := newHotelDocument(hotel)
	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"name":         doc.Name,
		"location":     doc.Location,
		"description":  doc.Description,
		"picture_list": doc.PictureList,
		"updatedAt":    doc.UpdatedAt,
	}})
	if err != nil {
		return translateMongoError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoHotelRepository) Delete(ctx context.Context, id string) error {
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

func (r *mongoHotelRepository) FindByID(ctx context.Context, id string) (*model.Hotel, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var doc hotelDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translateMongoError(err)
	}
	hotel := doc.toModel()
	return &hotel, nil
}

func (r *mongoHotelRepository) List(ctx context.Context, opts model.ListOptions) ([]model.Hotel, int64, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	field := opts.Sort
	if _, ok := hotelSortColumns[field]; !ok {
		field = HotelSortCreatedAt
	}
	dir := sortDirection(opts.Order)
	findOpts := options.Find().SetSort(bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}})
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit)).SetSkip(int64(opts.Offset()))
	}

	cur, err := r.coll.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, 0, err
	}
	var docs []hotelDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, err
	}
	hotels := make([]model.Hotel, 0, len(docs))
	for _, d := range docs {
		hotels = append(hotels, d.toModel())
	}
	return hotels, total, nil
}

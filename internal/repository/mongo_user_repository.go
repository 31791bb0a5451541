package repository

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	dbpkg "hotelbooking/internal/db"
	"hotelbooking/internal/model"
)

type mongoUserRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository builds a MongoDB-backed user repository.
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{coll: db.Collection(dbpkg.UsersCollection)}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *model.User) error {
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	stampNew(&user.CreatedAt, &user.UpdatedAt)
	doc := newUserDocument(user)
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return translateMongoError(err)
	}
	user.ID = doc.ID.Hex()
	return nil
}

func (r *mongoUserRepository) Update(ctx context.Context, user *model.User) error {
	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return ErrNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"email":     user.Email,
		"pseudo":    user.Pseudo,
		"password":  user.PasswordHash,
		"role":      string(user.Role),
		"updatedAt": user.UpdatedAt,
	}})
	if err != nil {
		return translateMongoError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) Delete(ctx context.Context, id string) error {
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

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, translateMongoError(err)
	}
	user := doc.toModel()
	return &user, nil
}

func (r *mongoUserRepository) Search(ctx context.Context, term string) ([]model.User, error) {
	return r.find(ctx, userSearchQuery(term))
}

// userSearchQuery matches term literally, ignoring case, in email or pseudo.
func userSearchQuery(term string) bson.M {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	return bson.M{"$or": bson.A{
		bson.M{"email": pattern},
		bson.M{"pseudo": pattern},
	}}
}

func (r *mongoUserRepository) List(ctx context.Context) ([]model.User, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoUserRepository) find(ctx context.Context, filter bson.M) ([]model.User, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toModel())
	}
	return users, nil
}

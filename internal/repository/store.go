package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"hotelbooking/internal/config"
	dbpkg "hotelbooking/internal/db"
)

// Store bundles the repositories of one backend.
type Store struct {
	Users    UserRepository
	Hotels   HotelRepository
	Bookings BookingRepository

	close func(ctx context.Context) error
}

// NewGormStore builds a Store over an open GORM connection.
func NewGormStore(db *gorm.DB) *Store {
	return &Store{
		Users:    NewUserRepository(db),
		Hotels:   NewHotelRepository(db),
		Bookings: NewBookingRepository(db),
		close: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}
}

// NewMongoStore builds a Store over a Mongo database.
func NewMongoStore(client *mongo.Client, database *mongo.Database) *Store {
	return &Store{
		Users:    NewMongoUserRepository(database),
		Hotels:   NewMongoHotelRepository(database),
		Bookings: NewMongoBookingRepository(database),
		close:    client.Disconnect,
	}
}

// Open connects to the backend selected by cfg.StoreDriver and prepares its
// schema. With reset the existing data is dropped first.
func Open(ctx context.Context, cfg *config.Config, reset bool) (*Store, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, database, err := dbpkg.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		if reset {
			if err := database.Drop(ctx); err != nil {
				_ = client.Disconnect(ctx)
				return nil, fmt.Errorf("drop database: %w", err)
			}
		}
		if err := dbpkg.EnsureIndexes(ctx, database); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return NewMongoStore(client, database), nil

	case config.StoreMySQL, config.StoreSQLite:
		var (
			db  *gorm.DB
			err error
		)
		if cfg.StoreDriver == config.StoreSQLite {
			db, err = dbpkg.NewSQLite(cfg.SQLitePath)
		} else {
			db, err = dbpkg.NewMySQL(cfg.MySQLDSN)
		}
		if err != nil {
			return nil, err
		}
		store := NewGormStore(db)
		if reset {
			if err := dbpkg.Reset(db); err != nil {
				_ = store.Close(ctx)
				return nil, err
			}
		}
		if err := dbpkg.Migrate(db); err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}
}

// Close releases the backend connection.
func (s *Store) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

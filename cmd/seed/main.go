package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"hotelbooking/internal/access"
	"hotelbooking/internal/config"
	apperrors "hotelbooking/internal/errors"
	"hotelbooking/internal/logging"
	"hotelbooking/internal/model"
	"hotelbooking/internal/repository"
	"hotelbooking/internal/service"
)

// Fixtures is the layout of the seed file.
type Fixtures struct {
	Users  []UserFixture  `yaml:"users"`
	Hotels []HotelFixture `yaml:"hotels"`
}

// UserFixture describes an account to provision.
type UserFixture struct {
	Email    string     `yaml:"email"`
	Pseudo   string     `yaml:"pseudo"`
	Password string     `yaml:"password"`
	Role     model.Role `yaml:"role"`
}

// HotelFixture describes a catalog entry.
type HotelFixture struct {
	Name        string   `yaml:"name"`
	Location    string   `yaml:"location"`
	Description string   `yaml:"description"`
	PictureList []string `yaml:"picture_list"`
}

func main() {
	path := flag.String("file", "cmd/seed/fixtures.yaml", "YAML fixtures to load")
	flag.Parse()

	cfg := config.Load()
	logger := logging.New(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	fixtures, err := loadFixtures(*path)
	if err != nil {
		logger.Fatal().Err(err).Str("file", *path).Msg("load fixtures")
	}

	ctx := context.Background()
	store, err := repository.Open(ctx, cfg, os.Getenv("RESET_DB") == "true")
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("store init")
	}
	defer store.Close(ctx)

	users, hotels, err := seed(ctx, store, fixtures, *logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("seed failed")
	}
	logger.Info().Int("users", users).Int("hotels", hotels).Msg("seed completed")
}

func loadFixtures(path string) (*Fixtures, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	var f Fixtures
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return &f, nil
}

// seed provisions missing users and fills an empty catalog. Existing
// accounts are left untouched so the command can be re-run.
func seed(ctx context.Context, store *repository.Store, f *Fixtures, logger zerolog.Logger) (users, hotels int, err error) {
	// Seeding acts with admin rights; the controller only evaluates roles here.
	operator := access.Identity{ID: "seed", Role: model.RoleAdmin}
	userService := service.NewUserService(store.Users, access.NewController(nil, nil, store.Users))

	for _, u := range f.Users {
		_, err := userService.Provision(ctx, operator, service.ProvisionInput{
			Email:    u.Email,
			Pseudo:   u.Pseudo,
			Password: u.Password,
			Role:     u.Role,
		})
		if errors.Is(err, apperrors.ErrEmailTaken) {
			logger.Info().Str("email", u.Email).Msg("user exists, skipped")
			continue
		}
		if err != nil {
			return users, hotels, fmt.Errorf("provision %s: %w", u.Email, err)
		}
		users++
	}

	_, total, err := store.Hotels.List(ctx, model.ListOptions{Page: 1, Limit: 1, Sort: repository.HotelSortCreatedAt, Order: model.SortDesc})
	if err != nil {
		return users, hotels, fmt.Errorf("count hotels: %w", err)
	}
	if total > 0 {
		logger.Info().Int64("existing", total).Msg("catalog not empty, hotels skipped")
		return users, hotels, nil
	}

	hotelService := service.NewHotelService(store.Hotels, nil, logger)
	for _, h := range f.Hotels {
		if _, err := hotelService.Create(ctx, service.HotelInput{
			Name:        h.Name,
			Location:    h.Location,
			Description: h.Description,
			PictureList: h.PictureList,
		}); err != nil {
			return users, hotels, fmt.Errorf("create hotel %s: %w", h.Name, err)
		}
		hotels++
	}
	return users, hotels, nil
}

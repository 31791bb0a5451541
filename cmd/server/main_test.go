package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelbooking/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	mr := miniredis.RunT(t)
	return &config.Config{
		ServerPort:      "0",
		ShutdownTimeout: 5 * time.Second,
		StoreDriver:     config.StoreSQLite,
		SQLitePath:      filepath.Join(t.TempDir(), "hotels.db"),
		RedisAddr:       mr.Addr(),
		JWTSecret:       "test-secret",
	}
}

func TestRunReturnsStartupErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:    "unknown store driver",
			mutate:  func(c *config.Config) { c.StoreDriver = "cassandra" },
			wantErr: "open cassandra store",
		},
		{
			name:    "unreachable nats after the store is open",
			mutate:  func(c *config.Config) { c.NATSURL = "nats://127.0.0.1:1" },
			wantErr: "nats init",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(cfg)

			err := run(context.Background(), cfg, zerolog.Nop())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRunStopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	assert.NoError(t, run(ctx, testConfig(t), zerolog.Nop()))
}

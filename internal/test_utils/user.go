package test_utils

import (
	"context"
	"testing"

	"github.com/freelanceos/freelanceos/pkg/user"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// TestUser is the user placed in the context of service and handler tests.
var TestUser = user.User{
	Id:          123,
	Uid:         "7d1f6c1e-1b0c-4c59-9d59-2f0f4b1c0a11",
	Username:    "test_user",
	DisplayName: "Test User",
	Settings: user.Settings{
		Timezone: "Europe/Paris",
		Currency: "EUR",
	},
}

// UserContext returns a background context carrying TestUser.
func UserContext() context.Context {
	return user.WithUser(context.Background(), TestUser)
}

// SeedUser inserts a fresh user so every repository test works on its own rows.
func SeedUser(t *testing.T, db *pgxpool.Pool) int {
	t.Helper()
	uid := uuid.NewString()
	id, err := user.NewRepository(db).CreateUser(context.Background(), user.User{
		Uid:         uid,
		Username:    "user-" + uid[:8],
		DisplayName: "Seeded User",
		Settings:    user.Settings{Timezone: "UTC", Currency: "EUR"},
	})
	require.NoError(t, err)
	return id
}

package activity

import (
	"context"
	"flag"
	"os"
	"testing"

	"github.com/freelanceos/freelanceos/internal/test_utils"
	"github.com/freelanceos/freelanceos/pkg/rate"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var db *pgxpool.Pool

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}
	var cleanup func()
	db, cleanup = test_utils.TestWithDB()
	code := m.Run()
	cleanup()
	os.Exit(code)
}

func setupTestRepository(t *testing.T) (context.Context, *RepositoryImpl, int, int) {
	test_utils.RequireDB(t, db)
	ctx := context.Background()
	userId := test_utils.SeedUser(t, db)
	var clientId int
	err := db.QueryRow(ctx, `INSERT INTO client (user_id, name) VALUES ($1, 'ACME') RETURNING id`, userId).Scan(&clientId)
	require.NoError(t, err)
	return ctx, NewRepository(db), userId, clientId
}

func TestRepositoryImpl_CreateAndGet(t *testing.T) {
	// given
	ctx, repo, userId, clientId := setupTestRepository(t)
	hourlyRate := decimal.RequireFromString("85.50")
	activity, err := New("API", rate.Development, clientId, nil, nil, &hourlyRate)
	require.NoError(t, err)

	// when
	created, err := repo.Create(ctx, userId, activity)
	require.NoError(t, err)
	stored, err := repo.Get(ctx, userId, created.Id)
	require.NoError(t, err)

	// then
	assert.Equal(t, StatusPendingValidation, stored.Status)
	assert.Nil(t, stored.EstimatedQuantity)
	require.NotNil(t, stored.HourlyRate)
	assert.True(t, hourlyRate.Equal(*stored.HourlyRate))
}

func TestRepositoryImpl_ListAndGetMany(t *testing.T) {
	// given
	ctx, repo, userId, clientId := setupTestRepository(t)
	first, err := repo.Create(ctx, userId, Activity{Title: "First", Category: rate.Design, ClientId: clientId, Status: StatusDone})
	require.NoError(t, err)
	second, err := repo.Create(ctx, userId, Activity{Title: "Second", Category: rate.Design, ClientId: clientId, Status: StatusInProgress})
	require.NoError(t, err)

	// when
	done, err := repo.List(ctx, userId, Filter{Status: StatusDone})
	require.NoError(t, err)
	many, err := repo.GetMany(ctx, userId, []int{second.Id, first.Id})
	require.NoError(t, err)

	// then
	require.Len(t, done, 1)
	assert.Equal(t, first.Id, done[0].Id)
	require.Len(t, many, 2)
	assert.Equal(t, first.Id, many[0].Id)
}

func TestRepositoryImpl_UpdateStatus(t *testing.T) {
	ctx, repo, userId, clientId := setupTestRepository(t)
	created, err := repo.Create(ctx, userId, Activity{Title: "API", Category: rate.Support, ClientId: clientId, Status: StatusDone})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateStatus(ctx, userId, created.Id, StatusReadyToBill))

	stored, err := repo.Get(ctx, userId, created.Id)
	require.NoError(t, err)
	assert.Equal(t, StatusReadyToBill, stored.Status)
	assert.ErrorIs(t, repo.UpdateStatus(ctx, userId, 999999, StatusDone), ErrActivityNotFound)
}

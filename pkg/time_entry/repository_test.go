package time_entry

import (
	"context"
	"flag"
	"os"
	"testing"
	"time"

	"github.com/freelanceos/freelanceos/internal/test_utils"
	"github.com/jackc/pgx/v5/pgxpool"
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
	var clientId, activityId int
	err := db.QueryRow(ctx, `INSERT INTO client (user_id, name) VALUES ($1, 'ACME') RETURNING id`, userId).Scan(&clientId)
	require.NoError(t, err)
	err = db.QueryRow(ctx, `INSERT INTO activity (user_id, title, category, client_id)
		VALUES ($1, 'API', 'development', $2) RETURNING id`, userId, clientId).Scan(&activityId)
	require.NoError(t, err)
	return ctx, NewRepository(db), userId, activityId
}

func TestRepositoryImpl_StoreAndList(t *testing.T) {
	// given
	ctx, repo, userId, activityId := setupTestRepository(t)
	closed, err := NewSpan(activityId, monday, at(90*time.Minute), nil)
	require.NoError(t, err)
	open, err := NewSpan(activityId, monday.Add(3*time.Hour), nil, nil)
	require.NoError(t, err)

	// when
	_, err = repo.Store(ctx, userId, closed)
	require.NoError(t, err)
	_, err = repo.Store(ctx, userId, open)
	require.NoError(t, err)
	spans, err := repo.ListForActivity(ctx, userId, activityId)
	require.NoError(t, err)

	// then
	require.Len(t, spans, 2)
	assert.Equal(t, 90, TotalMinutes(spans))
	assert.Equal(t, closed.Id, spans[0].Id)
	assert.True(t, spans[1].IsOpen())
}

func TestRepositoryImpl_UpdateAndDelete(t *testing.T) {
	ctx, repo, userId, activityId := setupTestRepository(t)
	span, err := NewSpan(activityId, monday, nil, nil)
	require.NoError(t, err)
	_, err = repo.Store(ctx, userId, span)
	require.NoError(t, err)

	require.NoError(t, span.setEnd(at(45*time.Minute)))
	_, err = repo.Update(ctx, userId, span)
	require.NoError(t, err)
	stored, err := repo.Get(ctx, userId, span.Id)
	require.NoError(t, err)
	require.NotNil(t, stored.DurationMinutes)
	assert.Equal(t, 45, *stored.DurationMinutes)

	deleted, err := repo.Delete(ctx, userId, span.Id)
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = repo.Get(ctx, userId, span.Id)
	assert.ErrorIs(t, err, ErrSpanNotFound)
}

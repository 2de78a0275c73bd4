package rate

import (
	"context"
	"errors"
	"testing"

	"github.com/freelanceos/freelanceos/pkg/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupService() (*ServiceImpl, *StubRepository, context.Context) {
	repo := NewStubRepository()
	ctx := user.WithUser(context.Background(), user.User{Id: 1})
	return NewService(repo), repo, ctx
}

func TestServiceImpl_ResolveRate(t *testing.T) {

	t.Run("should resolve override for client and default otherwise", func(t *testing.T) {
		// given
		service, _, ctx := setupService()
		clientX := intPtr(10)
		_, err := service.Create(ctx, Rate{Category: Consulting, HourlyAmount: decimal.NewFromInt(50), Active: true})
		require.NoError(t, err)
		_, err = service.Create(ctx, Rate{Category: Consulting, ClientId: clientX, HourlyAmount: decimal.NewFromInt(80), Active: true})
		require.NoError(t, err)

		// when
		forClient, foundForClient, err := service.ResolveRate(ctx, Consulting, clientX)
		require.NoError(t, err)
		general, foundGeneral, err := service.ResolveRate(ctx, Consulting, nil)
		require.NoError(t, err)

		// then
		assert.True(t, foundForClient)
		assert.Equal(t, "80", forClient.HourlyAmount.String())
		assert.True(t, foundGeneral)
		assert.Equal(t, "50", general.HourlyAmount.String())
	})

	t.Run("should report no rate without error", func(t *testing.T) {
		service, _, ctx := setupService()

		_, found, err := service.ResolveRate(ctx, Meeting, nil)

		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("should not see rates of another user", func(t *testing.T) {
		service, _, ctx := setupService()
		_, _ = service.Create(ctx, Rate{Category: Meeting, HourlyAmount: decimal.NewFromInt(40), Active: true})
		otherCtx := user.WithUser(context.Background(), user.User{Id: 2})

		_, found, err := service.ResolveRate(otherCtx, Meeting, nil)

		assert.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("should surface store failure", func(t *testing.T) {
		service, repo, ctx := setupService()
		repo.FindErr = errors.New("connection reset")

		_, _, err := service.ResolveRate(ctx, Meeting, nil)

		assert.ErrorContains(t, err, "connection reset")
	})
}

func TestServiceImpl_Create(t *testing.T) {

	t.Run("should reject second active default of the same category", func(t *testing.T) {
		service, _, ctx := setupService()
		_, err := service.Create(ctx, Rate{Category: Design, HourlyAmount: decimal.NewFromInt(60), Active: true})
		require.NoError(t, err)

		_, err = service.Create(ctx, Rate{Category: Design, HourlyAmount: decimal.NewFromInt(65), Active: true})

		assert.ErrorIs(t, err, ErrRateConflict)
	})

	t.Run("should allow inactive duplicate", func(t *testing.T) {
		service, _, ctx := setupService()
		_, _ = service.Create(ctx, Rate{Category: Design, HourlyAmount: decimal.NewFromInt(60), Active: true})

		_, err := service.Create(ctx, Rate{Category: Design, HourlyAmount: decimal.NewFromInt(65), Active: false})

		assert.NoError(t, err)
	})

	t.Run("should reject negative amount on update", func(t *testing.T) {
		service, _, ctx := setupService()
		created, _ := service.Create(ctx, Rate{Category: Design, HourlyAmount: decimal.NewFromInt(60), Active: true})

		_, err := service.Update(ctx, Rate{Id: created.Id, HourlyAmount: decimal.NewFromInt(-5), Active: true})

		assert.ErrorIs(t, err, ErrValidation)
	})
}

package activity

import (
	"context"
	"testing"

	"github.com/freelanceos/freelanceos/internal/event_bus"
	"github.com/freelanceos/freelanceos/pkg/client"
	"github.com/freelanceos/freelanceos/pkg/rate"
	"github.com/freelanceos/freelanceos/pkg/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	ctx      context.Context
	service  *ServiceImpl
	repo     *StubRepository
	clients  *client.ServiceImpl
	rates    *rate.ServiceImpl
	eventBus *event_bus.EventBus
	clientId int
}

func setupService(t *testing.T) serviceFixture {
	ctx := user.WithUser(context.Background(), user.User{Id: 1})
	repo := NewStubRepository()
	clients := client.NewService(client.NewStubRepository())
	rates := rate.NewService(rate.NewStubRepository())
	eventBus := event_bus.NewEventBus()
	acme, err := clients.CreateClient(ctx, client.Client{Name: "ACME"})
	require.NoError(t, err)
	return serviceFixture{
		ctx:      ctx,
		service:  NewService(repo, clients, rates, eventBus),
		repo:     repo,
		clients:  clients,
		rates:    rates,
		eventBus: eventBus,
		clientId: acme.Id,
	}
}

func (f serviceFixture) createDone(t *testing.T, title string) Activity {
	created, err := f.service.Create(f.ctx, Activity{Title: title, Category: rate.Development, ClientId: f.clientId})
	require.NoError(t, err)
	for _, event := range []string{EventValidate, EventComplete} {
		created, err = f.service.Transition(f.ctx, created.Id, event)
		require.NoError(t, err)
	}
	return created
}

func TestServiceImpl_Create(t *testing.T) {

	t.Run("should auto-fill rate from client override", func(t *testing.T) {
		// given
		f := setupService(t)
		_, err := f.rates.Create(f.ctx, rate.Rate{Category: rate.Development, HourlyAmount: decimal.NewFromInt(50), Active: true})
		require.NoError(t, err)
		_, err = f.rates.Create(f.ctx, rate.Rate{Category: rate.Development, ClientId: &f.clientId, HourlyAmount: decimal.NewFromInt(80), Active: true})
		require.NoError(t, err)

		// when
		created, err := f.service.Create(f.ctx, Activity{Title: "API", Category: rate.Development, ClientId: f.clientId})

		// then
		require.NoError(t, err)
		require.NotNil(t, created.HourlyRate)
		assert.Equal(t, "80", created.HourlyRate.String())
	})

	t.Run("should keep explicit rate", func(t *testing.T) {
		f := setupService(t)
		_, _ = f.rates.Create(f.ctx, rate.Rate{Category: rate.Design, HourlyAmount: decimal.NewFromInt(50), Active: true})

		created, err := f.service.Create(f.ctx, Activity{Title: "Logo", Category: rate.Design, ClientId: f.clientId, HourlyRate: decimalOf("65")})

		require.NoError(t, err)
		assert.Equal(t, "65", created.HourlyRate.String())
	})

	t.Run("should leave rate empty when none is configured", func(t *testing.T) {
		f := setupService(t)

		created, err := f.service.Create(f.ctx, Activity{Title: "Call", Category: rate.Meeting, ClientId: f.clientId})

		require.NoError(t, err)
		assert.Nil(t, created.HourlyRate)
	})

	t.Run("should reject project of another client", func(t *testing.T) {
		f := setupService(t)
		other, _ := f.clients.CreateClient(f.ctx, client.Client{Name: "Globex"})
		project, _ := f.clients.CreateProject(f.ctx, client.Project{ClientId: other.Id, Name: "Intranet"})

		_, err := f.service.Create(f.ctx, Activity{Title: "API", Category: rate.Development, ClientId: f.clientId, ProjectId: &project.Id})

		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("should reject unknown client", func(t *testing.T) {
		f := setupService(t)

		_, err := f.service.Create(f.ctx, Activity{Title: "API", Category: rate.Development, ClientId: 999})

		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestServiceImpl_Transition(t *testing.T) {

	t.Run("should refuse invoice driven events", func(t *testing.T) {
		f := setupService(t)
		done := f.createDone(t, "API")

		_, err := f.service.Transition(f.ctx, done.Id, EventInvoice)

		assert.ErrorIs(t, err, ErrInvalidTransition)
	})

	t.Run("should refuse skipping validation", func(t *testing.T) {
		f := setupService(t)
		created, _ := f.service.Create(f.ctx, Activity{Title: "API", Category: rate.Development, ClientId: f.clientId})

		_, err := f.service.Transition(f.ctx, created.Id, EventComplete)

		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestServiceImpl_InvoiceEvents(t *testing.T) {

	t.Run("should follow invoice creation payment and deletion", func(t *testing.T) {
		// given
		f := setupService(t)
		first := f.createDone(t, "API")
		second := f.createDone(t, "Docs")
		payload := event_bus.InvoiceActivities{InvoiceId: 1, Number: "2025-0001", ActivityIds: []int{first.Id, second.Id}}

		// when
		err := f.eventBus.Publish(event_bus.NewEvent(f.ctx, event_bus.InvoiceCreated, payload))
		require.NoError(t, err)

		// then
		activities, _ := f.service.GetMany(f.ctx, payload.ActivityIds)
		for _, activity := range activities {
			assert.Equal(t, StatusReadyToBill, activity.Status)
		}

		// when released by deleting the draft
		err = f.eventBus.Publish(event_bus.NewEvent(f.ctx, event_bus.InvoiceDeleted, payload))
		require.NoError(t, err)
		released, _ := f.service.Get(f.ctx, first.Id)
		assert.Equal(t, StatusDone, released.Status)

		// when invoiced again and paid
		require.NoError(t, f.eventBus.Publish(event_bus.NewEvent(f.ctx, event_bus.InvoiceCreated, payload)))
		require.NoError(t, f.eventBus.Publish(event_bus.NewEvent(f.ctx, event_bus.InvoicePaid, payload)))
		billed, _ := f.service.GetMany(f.ctx, payload.ActivityIds)
		for _, activity := range billed {
			assert.Equal(t, StatusBilled, activity.Status)
		}
	})

	t.Run("should not edit or delete invoiced activity", func(t *testing.T) {
		f := setupService(t)
		done := f.createDone(t, "API")
		require.NoError(t, f.eventBus.Publish(event_bus.NewEvent(f.ctx, event_bus.InvoiceCreated,
			event_bus.InvoiceActivities{ActivityIds: []int{done.Id}})))

		_, updateErr := f.service.Update(f.ctx, Activity{Id: done.Id, Title: "Renamed"})
		_, deleteErr := f.service.Delete(f.ctx, done.Id)

		assert.ErrorIs(t, updateErr, ErrActivityLocked)
		assert.ErrorIs(t, deleteErr, ErrActivityLocked)
	})
}

func TestServiceImpl_TimeSpanRecorded(t *testing.T) {

	t.Run("should start pending activity when time is logged", func(t *testing.T) {
		f := setupService(t)
		created, _ := f.service.Create(f.ctx, Activity{Title: "API", Category: rate.Development, ClientId: f.clientId})

		err := f.eventBus.Publish(event_bus.NewEvent(f.ctx, event_bus.TimeSpanRecorded,
			event_bus.TimeSpanClosed{ActivityId: created.Id, DurationMinutes: 30}))

		require.NoError(t, err)
		started, _ := f.service.Get(f.ctx, created.Id)
		assert.Equal(t, StatusInProgress, started.Status)
	})

	t.Run("should leave done activity untouched", func(t *testing.T) {
		f := setupService(t)
		done := f.createDone(t, "API")

		err := f.eventBus.Publish(event_bus.NewEvent(f.ctx, event_bus.TimeSpanRecorded,
			event_bus.TimeSpanClosed{ActivityId: done.Id, DurationMinutes: 30}))

		require.NoError(t, err)
		stored, _ := f.service.Get(f.ctx, done.Id)
		assert.Equal(t, StatusDone, stored.Status)
	})
}

package app

import (
	"github.com/freelanceos/freelanceos/internal/config"
	"github.com/freelanceos/freelanceos/internal/event_bus"
	"github.com/freelanceos/freelanceos/internal/utils"
	"github.com/freelanceos/freelanceos/pkg/activity"
	"github.com/freelanceos/freelanceos/pkg/client"
	"github.com/freelanceos/freelanceos/pkg/invoice"
	"github.com/freelanceos/freelanceos/pkg/rate"
	"github.com/freelanceos/freelanceos/pkg/threshold"
	"github.com/freelanceos/freelanceos/pkg/time_entry"
	"github.com/freelanceos/freelanceos/pkg/timer"
	"github.com/freelanceos/freelanceos/pkg/user"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus

	UserService user.Service
	UserHandler *user.Handler

	ClientService *client.ServiceImpl
	ClientHandler *client.Handler

	RateService *rate.ServiceImpl
	RateHandler *rate.Handler

	ActivityService *activity.ServiceImpl
	ActivityHandler *activity.Handler

	TimeEntryService *time_entry.ServiceImpl
	TimeEntryHandler *time_entry.Handler

	TimerSessions *timer.Sessions
	TimerTicker   *timer.Ticker
	TimerService  *timer.ServiceImpl
	TimerHandler  *timer.Handler

	InvoiceService     *invoice.ServiceImpl
	CsvInvoiceRenderer *invoice.CsvInvoiceRendererImpl
	InvoiceHandler     *invoice.Handler

	ThresholdService *threshold.ServiceImpl
	ThresholdHandler *threshold.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}
	deps.EventBus = event_bus.NewEventBus()

	deps.UserService = user.NewService(user.NewRepository(db), cfg.Billing.Currency)
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.ClientService = client.NewService(client.NewRepository(db))
	deps.ClientHandler = client.NewHandler(deps.ClientService)

	deps.RateService = rate.NewService(rate.NewRepository(db))
	deps.RateHandler = rate.NewHandler(deps.RateService)

	deps.ActivityService = activity.NewService(activity.NewRepository(db), deps.ClientService, deps.RateService, deps.EventBus)
	deps.ActivityHandler = activity.NewHandler(deps.ActivityService)

	deps.TimeEntryService = time_entry.NewService(time_entry.NewRepository(db), deps.ActivityService, deps.EventBus)
	deps.TimeEntryHandler = time_entry.NewHandler(deps.TimeEntryService)

	policies, err := timer.PoliciesFromConfig(cfg.Timer)
	if err != nil {
		return nil, err
	}
	deps.TimerSessions = timer.NewSessions(deps.Clock, deps.TimeEntryService, policies)
	deps.TimerTicker = timer.NewTicker(deps.TimerSessions, cfg.Timer.TickInterval)
	deps.TimerService = timer.NewService(deps.TimerSessions, deps.ActivityService)
	deps.TimerHandler = timer.NewHandler(deps.TimerService)

	deps.InvoiceService = invoice.NewService(
		invoice.NewRepository(db),
		deps.ClientService,
		deps.ActivityService,
		deps.TimeEntryService,
		deps.RateService,
		deps.Clock,
		deps.EventBus,
		cfg.Billing.PaymentTermDays,
	)
	deps.CsvInvoiceRenderer = invoice.NewCsvInvoiceRenderer()
	deps.InvoiceHandler = invoice.NewHandler(deps.InvoiceService, deps.CsvInvoiceRenderer)

	caps, err := threshold.CapsFromConfig(cfg.Billing)
	if err != nil {
		return nil, err
	}
	deps.ThresholdService = threshold.NewService(deps.InvoiceService, caps, deps.Clock)
	deps.ThresholdHandler = threshold.NewHandler(deps.ThresholdService)

	return deps, nil
}

package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/freelanceos/freelanceos/internal/event_bus"
	"github.com/freelanceos/freelanceos/internal/utils"
	"github.com/freelanceos/freelanceos/pkg/activity"
	"github.com/freelanceos/freelanceos/pkg/client"
	"github.com/freelanceos/freelanceos/pkg/rate"
	"github.com/freelanceos/freelanceos/pkg/time_entry"
	"github.com/freelanceos/freelanceos/pkg/user"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// ErrMissingRate is returned when an activity has no rate of its own and none can be resolved.
var ErrMissingRate = errors.New("no hourly rate for activity")

type CreateRequest struct {
	ClientId    int
	ActivityIds []int
	Discount    *Discount
	Notes       string
}

type Service interface {
	Create(ctx context.Context, request CreateRequest) (Invoice, error)
	Get(ctx context.Context, invoiceId int) (Invoice, error)
	List(ctx context.Context) ([]Invoice, error)
	Issue(ctx context.Context, invoiceId int) (Invoice, error)
	MarkPaid(ctx context.Context, invoiceId int) (Invoice, error)
	Void(ctx context.Context, invoiceId int) (Invoice, error)
	UpdateDiscount(ctx context.Context, invoiceId int, discount *Discount) (Invoice, error)
	Delete(ctx context.Context, invoiceId int) (bool, error)
	// PaidRevenue is the sum of totals of invoices paid in the calendar year.
	PaidRevenue(ctx context.Context, year int) (decimal.Decimal, error)
}

type ClientReader interface {
	GetClient(ctx context.Context, clientId int) (client.Client, error)
}

type ActivityReader interface {
	GetMany(ctx context.Context, activityIds []int) ([]activity.Activity, error)
}

type TimeLedger interface {
	TotalMinutes(ctx context.Context, activityId int) (int, error)
}

type RateResolver interface {
	ResolveRate(ctx context.Context, category rate.Category, clientId *int) (rate.Rate, bool, error)
}

type ServiceImpl struct {
	repo            Repository
	clients         ClientReader
	activities      ActivityReader
	ledger          TimeLedger
	rates           RateResolver
	clock           utils.Clock
	eventBus        *event_bus.EventBus
	paymentTermDays int
}

func NewService(
	repo Repository,
	clients ClientReader,
	activities ActivityReader,
	ledger TimeLedger,
	rates RateResolver,
	clock utils.Clock,
	eventBus *event_bus.EventBus,
	paymentTermDays int,
) *ServiceImpl {
	return &ServiceImpl{
		repo:            repo,
		clients:         clients,
		activities:      activities,
		ledger:          ledger,
		rates:           rates,
		clock:           clock,
		eventBus:        eventBus,
		paymentTermDays: paymentTermDays,
	}
}

func (s *ServiceImpl) Create(ctx context.Context, request CreateRequest) (Invoice, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return Invoice{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if request.ClientId <= 0 {
		return Invoice{}, fmt.Errorf("%w: client is required", ErrValidation)
	}
	activityIds := uniqueIds(request.ActivityIds)
	if len(activityIds) == 0 {
		return Invoice{}, fmt.Errorf("%w: at least one activity is required", ErrValidation)
	}
	if request.Discount != nil {
		if _, err := NewDiscount(request.Discount.Kind, request.Discount.Amount); err != nil {
			return Invoice{}, err
		}
	}

	if _, err := s.clients.GetClient(ctx, request.ClientId); err != nil {
		if errors.Is(err, client.ErrClientNotFound) {
			return Invoice{}, fmt.Errorf("%w: client %d does not exist", ErrValidation, request.ClientId)
		}
		return Invoice{}, err
	}

	activities, err := s.activities.GetMany(ctx, activityIds)
	if err != nil {
		return Invoice{}, err
	}
	if len(activities) != len(activityIds) {
		return Invoice{}, fmt.Errorf("%w: some activities do not exist", ErrValidation)
	}

	invoiced, err := s.repo.InvoicedActivityIds(ctx, currentUser.Id, activityIds)
	if err != nil {
		return Invoice{}, err
	}
	if len(invoiced) > 0 {
		return Invoice{}, fmt.Errorf("%w: activities %v", ErrActivityInvoiced, invoiced)
	}

	lines := make([]Line, 0, len(activities))
	for _, a := range activities {
		line, err := s.buildLine(ctx, request.ClientId, a)
		if err != nil {
			return Invoice{}, err
		}
		lines = append(lines, line)
	}

	issueDate := today(s.clock.Now(), currentUser.Settings.Timezone)
	numbers, err := s.repo.NumbersForYear(ctx, currentUser.Id, issueDate.Year())
	if err != nil {
		return Invoice{}, err
	}

	invoice := Invoice{
		Number:    NextNumber(issueDate.Year(), numbers),
		ClientId:  request.ClientId,
		IssueDate: issueDate,
		DueDate:   issueDate.AddDate(0, 0, s.paymentTermDays),
		Lines:     lines,
		Discount:  request.Discount,
		Status:    StatusDraft,
		Notes:     request.Notes,
	}
	invoice.Totals = invoice.computeTotals()

	created, err := s.repo.Create(ctx, currentUser.Id, invoice)
	if err != nil {
		return Invoice{}, err
	}
	log.Debugf("invoice %s created for client %d with %d lines", created.Number, created.ClientId, len(created.Lines))

	// The invoice is committed at this point. Its lines already keep the
	// activities off any other invoice, so a failed status update is logged
	// rather than reported as a failed create that a client would retry.
	if err := s.publish(ctx, event_bus.InvoiceCreated, created); err != nil {
		log.Warnf("invoice %s created, activities left in their previous status: %v", created.Number, err)
	}
	return created, nil
}

// buildLine bills logged hours, falling back to the estimate when nothing was logged.
func (s *ServiceImpl) buildLine(ctx context.Context, clientId int, a activity.Activity) (Line, error) {
	if a.ClientId != clientId {
		return Line{}, fmt.Errorf("%w: activity %d belongs to another client", ErrValidation, a.Id)
	}
	if !a.IsBillable() {
		return Line{}, fmt.Errorf("%w: activity %d is %s", ErrValidation, a.Id, a.Status)
	}

	minutes, err := s.ledger.TotalMinutes(ctx, a.Id)
	if err != nil {
		return Line{}, err
	}
	var quantity decimal.Decimal
	switch {
	case minutes > 0:
		quantity = time_entry.MinutesToHours(minutes)
	case a.EstimatedQuantity != nil:
		quantity = *a.EstimatedQuantity
	default:
		return Line{}, fmt.Errorf("%w: activity %d has no logged time and no estimate", ErrValidation, a.Id)
	}

	var unitRate decimal.Decimal
	if a.HourlyRate != nil {
		unitRate = *a.HourlyRate
	} else {
		resolved, found, err := s.rates.ResolveRate(ctx, a.Category, &clientId)
		if err != nil {
			return Line{}, err
		}
		if !found {
			return Line{}, fmt.Errorf("%w: activity %d (%s)", ErrMissingRate, a.Id, a.Category)
		}
		unitRate = resolved.HourlyAmount
	}

	amount := LineAmount(LineInput{Quantity: quantity, Rate: unitRate})
	if minutes > 0 {
		// logged time is billed from exact minutes, the quantity is only displayed rounded
		amount = MinutesAmount(minutes, unitRate)
	}
	return Line{
		ActivityId:  a.Id,
		Description: a.Title,
		Quantity:    quantity,
		UnitRate:    unitRate,
		Amount:      amount,
	}, nil
}

func (s *ServiceImpl) Get(ctx context.Context, invoiceId int) (Invoice, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Invoice{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Get(ctx, userId, invoiceId)
}

func (s *ServiceImpl) List(ctx context.Context) ([]Invoice, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.List(ctx, userId)
}

func (s *ServiceImpl) Issue(ctx context.Context, invoiceId int) (Invoice, error) {
	return s.changeStatus(ctx, invoiceId, StatusAwaitingPayment, "")
}

func (s *ServiceImpl) MarkPaid(ctx context.Context, invoiceId int) (Invoice, error) {
	return s.changeStatus(ctx, invoiceId, StatusPaid, event_bus.InvoicePaid)
}

func (s *ServiceImpl) Void(ctx context.Context, invoiceId int) (Invoice, error) {
	return s.changeStatus(ctx, invoiceId, StatusVoid, event_bus.InvoiceVoided)
}

func (s *ServiceImpl) changeStatus(ctx context.Context, invoiceId int, to Status, eventType event_bus.EventType) (Invoice, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Invoice{}, fmt.Errorf("failed to get current user: %w", err)
	}
	stored, err := s.repo.Get(ctx, userId, invoiceId)
	if err != nil {
		return Invoice{}, err
	}
	if err := checkStatusChange(stored.Status, to); err != nil {
		return Invoice{}, err
	}

	var paidAt *time.Time
	if to == StatusPaid {
		now := s.clock.Now()
		paidAt = &now
	}
	if err := s.repo.UpdateStatus(ctx, userId, invoiceId, to, paidAt); err != nil {
		return Invoice{}, err
	}
	log.Debugf("invoice %s moved from %s to %s", stored.Number, stored.Status, to)
	stored.Status = to
	stored.PaidAt = paidAt

	if eventType != "" {
		if err := s.publish(ctx, eventType, stored); err != nil {
			return stored, err
		}
	}
	return stored, nil
}

func (s *ServiceImpl) UpdateDiscount(ctx context.Context, invoiceId int, discount *Discount) (Invoice, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Invoice{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if discount != nil {
		if _, err := NewDiscount(discount.Kind, discount.Amount); err != nil {
			return Invoice{}, err
		}
	}
	stored, err := s.repo.Get(ctx, userId, invoiceId)
	if err != nil {
		return Invoice{}, err
	}
	if err := requireDraft(stored, "changed"); err != nil {
		return Invoice{}, err
	}

	stored.Discount = discount
	stored.Totals = stored.computeTotals()
	if err := s.repo.UpdateTotals(ctx, userId, stored); err != nil {
		return Invoice{}, err
	}
	return stored, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, invoiceId int) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}
	stored, err := s.repo.Get(ctx, userId, invoiceId)
	if errors.Is(err, ErrInvoiceNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := requireDraft(stored, "deleted"); err != nil {
		return false, err
	}

	deleted, err := s.repo.Delete(ctx, userId, invoiceId)
	if err != nil || !deleted {
		return deleted, err
	}
	log.Debugf("invoice %s deleted", stored.Number)
	return true, s.publish(ctx, event_bus.InvoiceDeleted, stored)
}

func (s *ServiceImpl) PaidRevenue(ctx context.Context, year int) (decimal.Decimal, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.PaidTotalForYear(ctx, userId, year)
}

func (s *ServiceImpl) publish(ctx context.Context, eventType event_bus.EventType, invoice Invoice) error {
	err := s.eventBus.Publish(event_bus.NewEvent(ctx, eventType, event_bus.InvoiceActivities{
		InvoiceId:   invoice.Id,
		Number:      invoice.Number,
		ClientId:    invoice.ClientId,
		Total:       invoice.Total,
		ActivityIds: invoice.ActivityIds(),
	}))
	if err != nil {
		log.Errorf("activities of invoice %s were not updated: %v", invoice.Number, err)
		return fmt.Errorf("invoice %s saved but its activities were not updated: %w", invoice.Number, err)
	}
	return nil
}

func requireDraft(invoice Invoice, action string) error {
	switch invoice.Status {
	case StatusDraft:
		return nil
	case StatusPaid:
		return ErrInvoiceImmutable
	default:
		return fmt.Errorf("%w: only drafts can be %s, invoice %s is %s", ErrInvalidStatusChange, action, invoice.Number, invoice.Status)
	}
}

func uniqueIds(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	result := make([]int, 0, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}

// today is the calendar date of now in the user's timezone, at midnight UTC.
func today(now time.Time, timezone string) time.Time {
	location, err := time.LoadLocation(timezone)
	if err != nil || timezone == "" {
		location = time.UTC
	}
	year, month, day := now.In(location).Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

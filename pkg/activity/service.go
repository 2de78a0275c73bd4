package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/freelanceos/freelanceos/internal/event_bus"
	"github.com/freelanceos/freelanceos/pkg/client"
	"github.com/freelanceos/freelanceos/pkg/rate"
	"github.com/freelanceos/freelanceos/pkg/user"
	log "github.com/sirupsen/logrus"
)

// ErrActivityLocked is returned when editing or deleting an activity that is on an invoice.
var ErrActivityLocked = errors.New("activity is invoiced and can no longer be changed")

type Service interface {
	Create(ctx context.Context, activity Activity) (Activity, error)
	Get(ctx context.Context, activityId int) (Activity, error)
	GetMany(ctx context.Context, activityIds []int) ([]Activity, error)
	List(ctx context.Context, filter Filter) ([]Activity, error)
	Update(ctx context.Context, activity Activity) (Activity, error)
	// Transition applies a user driven status event. Invoice driven events are refused.
	Transition(ctx context.Context, activityId int, event string) (Activity, error)
	Delete(ctx context.Context, activityId int) (bool, error)
}

type ClientReader interface {
	GetClient(ctx context.Context, clientId int) (client.Client, error)
	GetProject(ctx context.Context, projectId int) (client.Project, error)
}

type RateResolver interface {
	ResolveRate(ctx context.Context, category rate.Category, clientId *int) (rate.Rate, bool, error)
}

type ServiceImpl struct {
	repo         Repository
	clients      ClientReader
	rateResolver RateResolver
}

func NewService(repo Repository, clients ClientReader, rateResolver RateResolver, eventBus *event_bus.EventBus) *ServiceImpl {
	service := &ServiceImpl{repo: repo, clients: clients, rateResolver: rateResolver}

	subscribe := func(eventType event_bus.EventType, statusEvent string, from Status) {
		event_bus.SubscribeTyped[event_bus.InvoiceActivities](
			eventBus,
			eventType,
			func(e event_bus.EventT[event_bus.InvoiceActivities]) error {
				log.Debugf("received %s for invoice %s", eventType, e.Data.Number)
				err := service.applyEvent(e.Context(), e.Data.ActivityIds, statusEvent, from)
				if err != nil {
					log.Errorf("failed to apply %s to activities of invoice %s: %v", statusEvent, e.Data.Number, err)
				}
				return err
			},
		)
	}
	subscribe(event_bus.InvoiceCreated, EventInvoice, StatusDone)
	subscribe(event_bus.InvoicePaid, EventBill, StatusReadyToBill)
	subscribe(event_bus.InvoiceDeleted, EventRelease, StatusReadyToBill)
	subscribe(event_bus.InvoiceVoided, EventRelease, StatusReadyToBill)

	// logging time on a pending activity starts it
	event_bus.SubscribeTyped[event_bus.TimeSpanClosed](
		eventBus,
		event_bus.TimeSpanRecorded,
		func(e event_bus.EventT[event_bus.TimeSpanClosed]) error {
			return service.applyEvent(e.Context(), []int{e.Data.ActivityId}, EventValidate, StatusPendingValidation)
		},
	)

	return service
}

func (s *ServiceImpl) Create(ctx context.Context, activity Activity) (Activity, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Activity{}, fmt.Errorf("failed to get current user: %w", err)
	}
	validated, err := New(activity.Title, activity.Category, activity.ClientId, activity.ProjectId,
		activity.EstimatedQuantity, activity.HourlyRate)
	if err != nil {
		return Activity{}, err
	}
	if err := s.checkClientAndProject(ctx, validated.ClientId, validated.ProjectId); err != nil {
		return Activity{}, err
	}

	if validated.HourlyRate == nil {
		clientId := validated.ClientId
		resolved, found, err := s.rateResolver.ResolveRate(ctx, validated.Category, &clientId)
		if err != nil {
			return Activity{}, err
		}
		if found {
			amount := resolved.HourlyAmount
			validated.HourlyRate = &amount
		} else {
			log.Debugf("rate not auto-filled for %s activity of client %d", validated.Category, clientId)
		}
	}

	return s.repo.Create(ctx, userId, validated)
}

func (s *ServiceImpl) Get(ctx context.Context, activityId int) (Activity, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Activity{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Get(ctx, userId, activityId)
}

func (s *ServiceImpl) GetMany(ctx context.Context, activityIds []int) ([]Activity, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetMany(ctx, userId, activityIds)
}

func (s *ServiceImpl) List(ctx context.Context, filter Filter) ([]Activity, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.List(ctx, userId, filter)
}

func (s *ServiceImpl) Update(ctx context.Context, activity Activity) (Activity, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Activity{}, fmt.Errorf("failed to get current user: %w", err)
	}
	stored, err := s.repo.Get(ctx, userId, activity.Id)
	if err != nil {
		return Activity{}, err
	}
	if stored.IsLocked() {
		return Activity{}, ErrActivityLocked
	}

	activity.Title = strings.TrimSpace(activity.Title)
	if activity.Title == "" {
		return Activity{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if err := validateAmounts(activity.EstimatedQuantity, activity.HourlyRate); err != nil {
		return Activity{}, err
	}
	if err := s.checkClientAndProject(ctx, stored.ClientId, activity.ProjectId); err != nil {
		return Activity{}, err
	}

	stored.Title = activity.Title
	stored.ProjectId = activity.ProjectId
	stored.EstimatedQuantity = activity.EstimatedQuantity
	stored.HourlyRate = activity.HourlyRate
	return s.repo.Update(ctx, userId, stored)
}

func (s *ServiceImpl) Transition(ctx context.Context, activityId int, event string) (Activity, error) {
	switch event {
	case EventInvoice, EventBill, EventRelease:
		return Activity{}, fmt.Errorf("%w: %q is driven by invoices", ErrInvalidTransition, event)
	}
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Activity{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.transition(ctx, userId, activityId, event)
}

func (s *ServiceImpl) Delete(ctx context.Context, activityId int) (bool, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get current user: %w", err)
	}
	stored, err := s.repo.Get(ctx, userId, activityId)
	if errors.Is(err, ErrActivityNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if stored.IsLocked() {
		return false, ErrActivityLocked
	}
	return s.repo.Delete(ctx, userId, activityId)
}

func (s *ServiceImpl) transition(ctx context.Context, userId int, activityId int, event string) (Activity, error) {
	stored, err := s.repo.Get(ctx, userId, activityId)
	if err != nil {
		return Activity{}, err
	}
	next, err := nextStatus(stored.Id, stored.Status, event)
	if err != nil {
		return Activity{}, err
	}
	if err := s.repo.UpdateStatus(ctx, userId, activityId, next); err != nil {
		return Activity{}, err
	}
	log.Debugf("activity %d moved from %s to %s", activityId, stored.Status, next)
	stored.Status = next
	return stored, nil
}

// applyEvent moves every activity that is still in status from.
// Activities already past that status are left alone.
func (s *ServiceImpl) applyEvent(ctx context.Context, activityIds []int, event string, from Status) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	activities, err := s.repo.GetMany(ctx, userId, activityIds)
	if err != nil {
		return err
	}
	for _, activity := range activities {
		if activity.Status != from {
			continue
		}
		if _, err := s.transition(ctx, userId, activity.Id, event); err != nil {
			return err
		}
	}
	return nil
}

func (s *ServiceImpl) checkClientAndProject(ctx context.Context, clientId int, projectId *int) error {
	if _, err := s.clients.GetClient(ctx, clientId); err != nil {
		if errors.Is(err, client.ErrClientNotFound) {
			return fmt.Errorf("%w: client %d does not exist", ErrValidation, clientId)
		}
		return err
	}
	if projectId == nil {
		return nil
	}
	project, err := s.clients.GetProject(ctx, *projectId)
	if err != nil {
		if errors.Is(err, client.ErrProjectNotFound) {
			return fmt.Errorf("%w: project %d does not exist", ErrValidation, *projectId)
		}
		return err
	}
	if project.ClientId != clientId {
		return fmt.Errorf("%w: project %d belongs to another client", ErrValidation, *projectId)
	}
	return nil
}

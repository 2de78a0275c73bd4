package activity

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

var ErrInvalidTransition = errors.New("status transition not allowed")

// State ids of the status machine, shared with the Status constants.
const (
	statePendingValidation = "pending_validation"
	stateInProgress        = "in_progress"
	stateInReview          = "in_review"
	stateDone              = "done"
	stateReadyToBill       = "ready_to_bill"
	stateBilled            = "billed"
)

const (
	EventValidate     = "validate"
	EventSubmitReview = "submit_review"
	EventComplete     = "complete"
	EventRework       = "rework"
	EventInvoice      = "invoice"
	EventRelease      = "release"
	EventBill         = "bill"
)

type statusContext struct {
	ActivityId int
}

// nextStatus runs event against a machine positioned at current and returns
// the resulting status.
func nextStatus(activityId int, current Status, event string) (Status, error) {
	builder := statekit.NewMachine[statusContext]("activity-status").
		WithInitial(statekit.StateID(current)).
		WithContext(statusContext{ActivityId: activityId})

	builder.State(statePendingValidation).
		On(EventValidate).Target(stateInProgress).
		Done()

	builder.State(stateInProgress).
		On(EventSubmitReview).Target(stateInReview).
		On(EventComplete).Target(stateDone).
		Done()

	builder.State(stateInReview).
		On(EventComplete).Target(stateDone).
		On(EventRework).Target(stateInProgress).
		Done()

	builder.State(stateDone).
		On(EventRework).Target(stateInProgress).
		On(EventInvoice).Target(stateReadyToBill).
		Done()

	builder.State(stateReadyToBill).
		On(EventRelease).Target(stateDone).
		On(EventBill).Target(stateBilled).
		Done()

	builder.State(stateBilled).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("failed to build activity status machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()
	interpreter.Send(statekit.Event{Type: statekit.EventType(event)})

	after := Status(interpreter.State().Value)
	if after == current {
		return "", fmt.Errorf("%w: %q while activity %d is %s", ErrInvalidTransition, event, activityId, current)
	}
	return after, nil
}

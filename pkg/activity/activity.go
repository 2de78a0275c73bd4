package activity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/freelanceos/freelanceos/pkg/rate"
	"github.com/shopspring/decimal"
)

var ErrValidation = errors.New("invalid activity")

type Status string

const (
	StatusPendingValidation Status = statePendingValidation
	StatusInProgress        Status = stateInProgress
	StatusInReview          Status = stateInReview
	StatusDone              Status = stateDone
	StatusReadyToBill       Status = stateReadyToBill
	StatusBilled            Status = stateBilled
)

// Activity is a billable unit of work for a client. It owns its time spans.
type Activity struct {
	Id       int
	Title    string
	Category rate.Category
	ClientId int
	// ProjectId must reference a project of the same client when set.
	ProjectId *int
	// EstimatedQuantity is in hours.
	EstimatedQuantity *decimal.Decimal
	HourlyRate        *decimal.Decimal
	Status            Status
}

// New validates the fields of a fresh activity. The status always starts at
// pending validation.
func New(title string, category rate.Category, clientId int, projectId *int, estimatedQuantity, hourlyRate *decimal.Decimal) (Activity, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Activity{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if _, err := rate.ParseCategory(string(category)); err != nil {
		return Activity{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if clientId <= 0 {
		return Activity{}, fmt.Errorf("%w: client is required", ErrValidation)
	}
	if err := validateAmounts(estimatedQuantity, hourlyRate); err != nil {
		return Activity{}, err
	}
	return Activity{
		Title:             title,
		Category:          category,
		ClientId:          clientId,
		ProjectId:         projectId,
		EstimatedQuantity: estimatedQuantity,
		HourlyRate:        hourlyRate,
		Status:            StatusPendingValidation,
	}, nil
}

func validateAmounts(estimatedQuantity, hourlyRate *decimal.Decimal) error {
	if estimatedQuantity != nil && estimatedQuantity.IsNegative() {
		return fmt.Errorf("%w: estimated quantity must not be negative", ErrValidation)
	}
	if hourlyRate != nil && hourlyRate.IsNegative() {
		return fmt.Errorf("%w: hourly rate must not be negative", ErrValidation)
	}
	return nil
}

// IsBillable reports whether the activity may be put on an invoice. A
// ready_to_bill activity already sits on a live invoice.
func (a Activity) IsBillable() bool {
	return a.Status == StatusDone
}

// IsLocked reports whether the activity is tied to an invoice and may no longer be edited or removed.
func (a Activity) IsLocked() bool {
	return a.Status == StatusReadyToBill || a.Status == StatusBilled
}

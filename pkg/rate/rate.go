package rate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrValidation = errors.New("invalid rate")

// Category classifies work. It cannot change once assigned to a rate or an activity.
type Category string

const (
	Development Category = "development"
	Consulting  Category = "consulting"
	Design      Category = "design"
	Meeting     Category = "meeting"
	Support     Category = "support"
	Other       Category = "other"
)

var Categories = []Category{Development, Consulting, Design, Meeting, Support, Other}

func ParseCategory(value string) (Category, error) {
	candidate := Category(strings.ToLower(strings.TrimSpace(value)))
	for _, category := range Categories {
		if category == candidate {
			return category, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrValidation, value)
}

// Rate is an hourly price. A nil ClientId makes it the default rate of its
// category, otherwise it overrides the default for that client.
type Rate struct {
	Id           int
	Category     Category
	ClientId     *int
	HourlyAmount decimal.Decimal
	Active       bool
}

func New(category Category, clientId *int, hourlyAmount decimal.Decimal, active bool) (Rate, error) {
	if _, err := ParseCategory(string(category)); err != nil {
		return Rate{}, err
	}
	if hourlyAmount.IsNegative() {
		return Rate{}, fmt.Errorf("%w: hourly amount must not be negative", ErrValidation)
	}
	return Rate{
		Category:     category,
		ClientId:     clientId,
		HourlyAmount: hourlyAmount,
		Active:       active,
	}, nil
}

func (r Rate) IsOverride() bool {
	return r.ClientId != nil
}

// Resolve picks the rate applying to work of the given category for the given
// client. An active client override wins over the active default of the
// category. Inactive rates are ignored entirely. The boolean is false when no
// rate applies, which callers treat as "enter the rate manually".
func Resolve(rates []Rate, category Category, clientId *int) (Rate, bool) {
	if clientId != nil {
		for _, r := range rates {
			if r.Active && r.Category == category && r.ClientId != nil && *r.ClientId == *clientId {
				return r, true
			}
		}
	}
	for _, r := range rates {
		if r.Active && r.Category == category && r.ClientId == nil {
			return r, true
		}
	}
	return Rate{}, false
}

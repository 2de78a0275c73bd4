package invoice

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrValidation = errors.New("invalid invoice")

type DiscountKind string

const (
	Percentage DiscountKind = "percentage"
	Fixed      DiscountKind = "fixed"
)

type Discount struct {
	Kind DiscountKind
	// Amount is a percent for Percentage and a currency amount for Fixed.
	Amount decimal.Decimal
}

func NewDiscount(kind DiscountKind, amount decimal.Decimal) (Discount, error) {
	if kind != Percentage && kind != Fixed {
		return Discount{}, fmt.Errorf("%w: unknown discount kind %q", ErrValidation, kind)
	}
	if amount.IsNegative() {
		return Discount{}, fmt.Errorf("%w: discount must not be negative", ErrValidation)
	}
	return Discount{Kind: kind, Amount: amount}, nil
}

type LineInput struct {
	Quantity decimal.Decimal
	Rate     decimal.Decimal
}

type Totals struct {
	Subtotal      decimal.Decimal
	DiscountValue decimal.Decimal
	Total         decimal.Decimal
}

var (
	hundred = decimal.NewFromInt(100)
	sixty   = decimal.NewFromInt(60)
)

// LineAmount is quantity times rate rounded to cents.
func LineAmount(line LineInput) decimal.Decimal {
	return line.Quantity.Mul(line.Rate).Round(2)
}

// MinutesAmount bills logged minutes at an hourly rate, rounding only the amount.
func MinutesAmount(minutes int, hourlyRate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Mul(hourlyRate).DivRound(sixty, 2)
}

// ComputeTotals sums the lines and applies the discount. The total never goes
// below zero, however large the discount.
func ComputeTotals(lines []LineInput, discount *Discount) Totals {
	amounts := make([]decimal.Decimal, 0, len(lines))
	for _, line := range lines {
		amounts = append(amounts, LineAmount(line))
	}
	return totalsOf(amounts, discount)
}

func totalsOf(amounts []decimal.Decimal, discount *Discount) Totals {
	subtotal := decimal.Sum(decimal.Zero, amounts...)

	discountValue := decimal.Zero
	if discount != nil {
		switch discount.Kind {
		case Percentage:
			discountValue = subtotal.Mul(discount.Amount).Div(hundred).Round(2)
		case Fixed:
			discountValue = discount.Amount.Round(2)
		}
	}

	total := subtotal.Sub(discountValue)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return Totals{Subtotal: subtotal, DiscountValue: discountValue, Total: total}
}

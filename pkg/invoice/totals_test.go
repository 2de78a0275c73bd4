package invoice

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, d(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

func TestComputeTotals(t *testing.T) {

	t.Run("should floor total at zero for oversized fixed discount", func(t *testing.T) {
		discount := Discount{Kind: Fixed, Amount: d("1000")}

		totals := ComputeTotals([]LineInput{{Quantity: d("1"), Rate: d("100")}}, &discount)

		assertDecimal(t, "100", totals.Subtotal)
		assertDecimal(t, "1000", totals.DiscountValue)
		assertDecimal(t, "0", totals.Total)
	})

	t.Run("should apply percentage discount exactly", func(t *testing.T) {
		discount := Discount{Kind: Percentage, Amount: d("10")}

		totals := ComputeTotals([]LineInput{{Quantity: d("2"), Rate: d("100")}}, &discount)

		assertDecimal(t, "200", totals.Subtotal)
		assertDecimal(t, "20", totals.DiscountValue)
		assertDecimal(t, "180", totals.Total)
	})

	t.Run("should never be negative whatever the discount", func(t *testing.T) {
		lines := []LineInput{{Quantity: d("1.5"), Rate: d("80")}, {Quantity: d("0.25"), Rate: d("60")}}
		for _, discount := range []Discount{
			{Kind: Fixed, Amount: d("0")},
			{Kind: Fixed, Amount: d("135")},
			{Kind: Fixed, Amount: d("99999")},
			{Kind: Percentage, Amount: d("100")},
			{Kind: Percentage, Amount: d("250")},
		} {
			totals := ComputeTotals(lines, &discount)

			assert.False(t, totals.Total.IsNegative(), "discount %v", discount)
			expected := decimal.Max(decimal.Zero, totals.Subtotal.Sub(totals.DiscountValue))
			assert.True(t, expected.Equal(totals.Total))
		}
	})

	t.Run("should sum fractional hours without discount", func(t *testing.T) {
		totals := ComputeTotals([]LineInput{{Quantity: d("1.5"), Rate: d("80")}, {Quantity: d("0.33"), Rate: d("60")}}, nil)

		assertDecimal(t, "139.8", totals.Subtotal)
		assertDecimal(t, "0", totals.DiscountValue)
		assertDecimal(t, "139.8", totals.Total)
	})

	t.Run("should be zero without lines", func(t *testing.T) {
		totals := ComputeTotals(nil, nil)

		assertDecimal(t, "0", totals.Total)
	})
}

func TestNewDiscount(t *testing.T) {

	t.Run("should reject negative amount", func(t *testing.T) {
		_, err := NewDiscount(Fixed, d("-5"))

		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("should reject unknown kind", func(t *testing.T) {
		_, err := NewDiscount(DiscountKind("coupon"), d("5"))

		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("should accept percentage", func(t *testing.T) {
		discount, err := NewDiscount(Percentage, d("15"))

		require.NoError(t, err)
		assert.Equal(t, Percentage, discount.Kind)
	})
}

func TestNextNumber(t *testing.T) {

	t.Run("should start the year at one", func(t *testing.T) {
		assert.Equal(t, "2025-0001", NextNumber(2025, nil))
	})

	t.Run("should follow the highest sequence of the year", func(t *testing.T) {
		existing := []string{"2025-0002", "2025-0010", "2025-0003", "2024-0042"}

		assert.Equal(t, "2025-0011", NextNumber(2025, existing))
	})

	t.Run("should restart in a new year", func(t *testing.T) {
		assert.Equal(t, "2026-0001", NextNumber(2026, []string{"2025-0099"}))
	})

	t.Run("should ignore malformed numbers", func(t *testing.T) {
		assert.Equal(t, "2025-0002", NextNumber(2025, []string{"2025-0001", "2025-draft", "INV-7"}))
	})

	t.Run("should grow past four digits", func(t *testing.T) {
		assert.Equal(t, "2025-10000", NextNumber(2025, []string{"2025-9999"}))
	})
}

func TestCheckStatusChange(t *testing.T) {
	assert.NoError(t, checkStatusChange(StatusDraft, StatusAwaitingPayment))
	assert.NoError(t, checkStatusChange(StatusAwaitingPayment, StatusPaid))
	assert.ErrorIs(t, checkStatusChange(StatusPaid, StatusVoid), ErrInvoiceImmutable)
	assert.ErrorIs(t, checkStatusChange(StatusVoid, StatusDraft), ErrInvalidStatusChange)
	assert.ErrorIs(t, checkStatusChange(StatusAwaitingPayment, StatusDraft), ErrInvalidStatusChange)
}

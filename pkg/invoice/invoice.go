package invoice

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvoiceImmutable = errors.New("paid invoices cannot be changed")
var ErrInvalidStatusChange = errors.New("invoice status change not allowed")

type Status string

const (
	StatusDraft           Status = "draft"
	StatusAwaitingPayment Status = "awaiting_payment"
	StatusPaid            Status = "paid"
	StatusVoid            Status = "void"
)

var allowedStatusChanges = map[Status][]Status{
	StatusDraft:           {StatusAwaitingPayment, StatusPaid, StatusVoid},
	StatusAwaitingPayment: {StatusPaid, StatusVoid},
}

// checkStatusChange reports whether an invoice may move from one status to another.
func checkStatusChange(from, to Status) error {
	if from == StatusPaid {
		return ErrInvoiceImmutable
	}
	for _, allowed := range allowedStatusChanges[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s to %s", ErrInvalidStatusChange, from, to)
}

type Line struct {
	ActivityId  int
	Description string
	// Quantity is in hours.
	Quantity decimal.Decimal
	UnitRate decimal.Decimal
	Amount   decimal.Decimal
}

type Invoice struct {
	Id        int
	Number    string
	ClientId  int
	IssueDate time.Time
	DueDate   time.Time
	Lines     []Line
	Discount  *Discount
	Totals
	Status Status
	PaidAt *time.Time
	Notes  string
}

func (i Invoice) ActivityIds() []int {
	ids := make([]int, 0, len(i.Lines))
	for _, line := range i.Lines {
		ids = append(ids, line.ActivityId)
	}
	return ids
}

// computeTotals derives the totals from the stored line amounts.
func (i Invoice) computeTotals() Totals {
	amounts := make([]decimal.Decimal, 0, len(i.Lines))
	for _, line := range i.Lines {
		amounts = append(amounts, line.Amount)
	}
	return totalsOf(amounts, i.Discount)
}

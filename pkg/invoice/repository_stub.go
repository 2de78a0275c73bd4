package invoice

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type StubRepository struct {
	nextId   int
	invoices map[int]map[int]Invoice
	// CreateErr, when set, is returned by Create without storing anything.
	CreateErr error
}

func NewStubRepository() *StubRepository {
	return &StubRepository{invoices: make(map[int]map[int]Invoice)}
}

func (s *StubRepository) Create(ctx context.Context, userId int, invoice Invoice) (Invoice, error) {
	if s.CreateErr != nil {
		return Invoice{}, s.CreateErr
	}
	for _, existing := range s.invoices[userId] {
		if existing.Number == invoice.Number {
			return Invoice{}, ErrNumberConflict
		}
	}
	s.nextId++
	invoice.Id = s.nextId
	if s.invoices[userId] == nil {
		s.invoices[userId] = make(map[int]Invoice)
	}
	s.invoices[userId][invoice.Id] = invoice
	return invoice, nil
}

func (s *StubRepository) Get(ctx context.Context, userId int, invoiceId int) (Invoice, error) {
	invoice, ok := s.invoices[userId][invoiceId]
	if !ok {
		return Invoice{}, ErrInvoiceNotFound
	}
	return invoice, nil
}

func (s *StubRepository) List(ctx context.Context, userId int) ([]Invoice, error) {
	result := make([]Invoice, 0)
	for _, invoice := range s.invoices[userId] {
		invoice.Lines = nil
		result = append(result, invoice)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Id > result[j].Id })
	return result, nil
}

func (s *StubRepository) NumbersForYear(ctx context.Context, userId int, year int) ([]string, error) {
	prefix := strconv.Itoa(year) + "-"
	numbers := make([]string, 0)
	for _, invoice := range s.invoices[userId] {
		if strings.HasPrefix(invoice.Number, prefix) {
			numbers = append(numbers, invoice.Number)
		}
	}
	return numbers, nil
}

func (s *StubRepository) UpdateStatus(ctx context.Context, userId int, invoiceId int, status Status, paidAt *time.Time) error {
	invoice, ok := s.invoices[userId][invoiceId]
	if !ok {
		return ErrInvoiceNotFound
	}
	invoice.Status = status
	invoice.PaidAt = paidAt
	s.invoices[userId][invoiceId] = invoice
	return nil
}

func (s *StubRepository) UpdateTotals(ctx context.Context, userId int, invoice Invoice) error {
	stored, ok := s.invoices[userId][invoice.Id]
	if !ok {
		return ErrInvoiceNotFound
	}
	stored.Discount = invoice.Discount
	stored.Totals = invoice.Totals
	s.invoices[userId][invoice.Id] = stored
	return nil
}

func (s *StubRepository) Delete(ctx context.Context, userId int, invoiceId int) (bool, error) {
	if _, ok := s.invoices[userId][invoiceId]; !ok {
		return false, nil
	}
	delete(s.invoices[userId], invoiceId)
	return true, nil
}

func (s *StubRepository) InvoicedActivityIds(ctx context.Context, userId int, activityIds []int) ([]int, error) {
	wanted := make(map[int]bool, len(activityIds))
	for _, id := range activityIds {
		wanted[id] = true
	}
	found := make(map[int]bool)
	for _, invoice := range s.invoices[userId] {
		if invoice.Status == StatusVoid {
			continue
		}
		for _, line := range invoice.Lines {
			if wanted[line.ActivityId] {
				found[line.ActivityId] = true
			}
		}
	}
	result := make([]int, 0, len(found))
	for id := range found {
		result = append(result, id)
	}
	sort.Ints(result)
	return result, nil
}

func (s *StubRepository) PaidTotalForYear(ctx context.Context, userId int, year int) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, invoice := range s.invoices[userId] {
		if invoice.Status == StatusPaid && invoice.PaidAt != nil && invoice.PaidAt.Year() == year {
			total = total.Add(invoice.Total)
		}
	}
	return total, nil
}

package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var ErrInvoiceNotFound = errors.New("invoice not found")

// ErrNumberConflict is returned when the invoice number is already taken, e.g. by a concurrent create.
var ErrNumberConflict = errors.New("invoice number already in use")

// ErrActivityInvoiced is returned when an activity already has a line on an invoice that is not void.
var ErrActivityInvoiced = errors.New("activity already invoiced")

const uniqueViolation = "23505"

type Repository interface {
	// Create stores the invoice and its lines atomically.
	Create(ctx context.Context, userId int, invoice Invoice) (Invoice, error)
	Get(ctx context.Context, userId int, invoiceId int) (Invoice, error)
	List(ctx context.Context, userId int) ([]Invoice, error)
	NumbersForYear(ctx context.Context, userId int, year int) ([]string, error)
	UpdateStatus(ctx context.Context, userId int, invoiceId int, status Status, paidAt *time.Time) error
	UpdateTotals(ctx context.Context, userId int, invoice Invoice) error
	// Delete removes the lines before the invoice row.
	Delete(ctx context.Context, userId int, invoiceId int) (bool, error)
	// InvoicedActivityIds returns those of activityIds that have a line on a non-void invoice.
	InvoicedActivityIds(ctx context.Context, userId int, activityIds []int) ([]int, error)
	// PaidTotalForYear sums the totals of invoices paid within the calendar year.
	PaidTotalForYear(ctx context.Context, userId int, year int) (decimal.Decimal, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const selectInvoice = `SELECT id, number, client_id, issue_date, due_date, subtotal, discount_kind, discount_amount,
	discount_value, total, status, paid_at, notes FROM invoice`

func (r *RepositoryImpl) Create(ctx context.Context, userId int, invoice Invoice) (Invoice, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		log.Errorf("failed to begin transaction: %v", err)
		return Invoice{}, err
	}
	defer tx.Rollback(ctx)

	kind, amount := discountColumns(invoice.Discount)
	query := `INSERT INTO invoice (user_id, number, client_id, issue_date, due_date, subtotal, discount_kind, discount_amount,
		discount_value, total, status, notes) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	err = tx.QueryRow(ctx, query,
		userId,
		invoice.Number,
		invoice.ClientId,
		invoice.IssueDate,
		invoice.DueDate,
		invoice.Subtotal,
		kind,
		amount,
		invoice.DiscountValue,
		invoice.Total,
		string(invoice.Status),
		invoice.Notes,
	).Scan(&invoice.Id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Invoice{}, fmt.Errorf("%w: %s", ErrNumberConflict, invoice.Number)
		}
		err := fmt.Errorf("could not create invoice: %w", err)
		log.Error(err)
		return Invoice{}, err
	}

	batch := &pgx.Batch{}
	for position, line := range invoice.Lines {
		batch.Queue(`INSERT INTO invoice_line (invoice_id, activity_id, position, description, quantity, unit_rate, amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			invoice.Id, line.ActivityId, position, line.Description, line.Quantity, line.UnitRate, line.Amount)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		err := fmt.Errorf("could not create invoice lines: %w", err)
		log.Error(err)
		return Invoice{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		log.Errorf("failed to commit invoice: %v", err)
		return Invoice{}, err
	}
	return invoice, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, userId int, invoiceId int) (Invoice, error) {
	rows, err := r.db.Query(ctx, selectInvoice+` WHERE id = $1 AND user_id = $2`, invoiceId, userId)
	if err != nil {
		log.Errorf("failed to get invoice: %v", err)
		return Invoice{}, err
	}
	invoices, err := scanInvoices(rows)
	if err != nil {
		return Invoice{}, err
	}
	if len(invoices) == 0 {
		return Invoice{}, ErrInvoiceNotFound
	}
	invoice := invoices[0]

	lineRows, err := r.db.Query(ctx, `SELECT activity_id, description, quantity, unit_rate, amount
		FROM invoice_line WHERE invoice_id = $1 ORDER BY position`, invoice.Id)
	if err != nil {
		log.Errorf("failed to get invoice lines: %v", err)
		return Invoice{}, err
	}
	invoice.Lines, err = pgx.CollectRows(lineRows, func(row pgx.CollectableRow) (Line, error) {
		var line Line
		err := row.Scan(&line.ActivityId, &line.Description, &line.Quantity, &line.UnitRate, &line.Amount)
		return line, err
	})
	if err != nil {
		log.Errorf("failed to scan invoice lines: %v", err)
		return Invoice{}, err
	}
	return invoice, nil
}

// List returns the invoices without their lines, newest first.
func (r *RepositoryImpl) List(ctx context.Context, userId int) ([]Invoice, error) {
	rows, err := r.db.Query(ctx, selectInvoice+` WHERE user_id = $1 ORDER BY issue_date DESC, id DESC`, userId)
	if err != nil {
		log.Errorf("failed to list invoices: %v", err)
		return nil, err
	}
	return scanInvoices(rows)
}

func (r *RepositoryImpl) NumbersForYear(ctx context.Context, userId int, year int) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT number FROM invoice WHERE user_id = $1 AND number LIKE $2`, userId, fmt.Sprintf("%d-%%", year))
	if err != nil {
		log.Errorf("failed to read invoice numbers: %v", err)
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (r *RepositoryImpl) UpdateStatus(ctx context.Context, userId int, invoiceId int, status Status, paidAt *time.Time) error {
	result, err := r.db.Exec(ctx, `UPDATE invoice SET status = $1, paid_at = $2 WHERE id = $3 AND user_id = $4`,
		string(status), paidAt, invoiceId, userId)
	if err != nil {
		log.Errorf("failed to update invoice status: %v", err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

func (r *RepositoryImpl) UpdateTotals(ctx context.Context, userId int, invoice Invoice) error {
	kind, amount := discountColumns(invoice.Discount)
	result, err := r.db.Exec(ctx, `UPDATE invoice SET discount_kind = $1, discount_amount = $2, discount_value = $3,
		subtotal = $4, total = $5 WHERE id = $6 AND user_id = $7`,
		kind, amount, invoice.DiscountValue, invoice.Subtotal, invoice.Total, invoice.Id, userId)
	if err != nil {
		log.Errorf("failed to update invoice totals: %v", err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, userId int, invoiceId int) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		log.Errorf("failed to begin transaction: %v", err)
		return false, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `DELETE FROM invoice_line WHERE invoice_id = (SELECT id FROM invoice WHERE id = $1 AND user_id = $2)`,
		invoiceId, userId)
	if err != nil {
		log.Errorf("failed to delete invoice lines: %v", err)
		return false, err
	}
	result, err := tx.Exec(ctx, `DELETE FROM invoice WHERE id = $1 AND user_id = $2`, invoiceId, userId)
	if err != nil {
		log.Errorf("failed to delete invoice: %v", err)
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		log.Errorf("failed to commit invoice deletion: %v", err)
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

func (r *RepositoryImpl) InvoicedActivityIds(ctx context.Context, userId int, activityIds []int) ([]int, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT l.activity_id FROM invoice_line l
		JOIN invoice i ON i.id = l.invoice_id
		WHERE i.user_id = $1 AND i.status <> $2 AND l.activity_id = ANY($3)
		ORDER BY l.activity_id`,
		userId, string(StatusVoid), activityIds)
	if err != nil {
		log.Errorf("failed to query invoiced activities: %v", err)
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int])
}

func (r *RepositoryImpl) PaidTotalForYear(ctx context.Context, userId int, year int) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(total), 0) FROM invoice
		WHERE user_id = $1 AND status = $2 AND EXTRACT(YEAR FROM paid_at) = $3`,
		userId, string(StatusPaid), year).Scan(&total)
	if err != nil {
		log.Errorf("failed to sum paid invoices: %v", err)
		return decimal.Zero, err
	}
	return total, nil
}

func scanInvoices(rows pgx.Rows) ([]Invoice, error) {
	defer rows.Close()
	invoices := make([]Invoice, 0)
	for rows.Next() {
		var invoice Invoice
		var status string
		var discountKind, notes *string
		var discountAmount decimal.NullDecimal
		err := rows.Scan(
			&invoice.Id,
			&invoice.Number,
			&invoice.ClientId,
			&invoice.IssueDate,
			&invoice.DueDate,
			&invoice.Subtotal,
			&discountKind,
			&discountAmount,
			&invoice.DiscountValue,
			&invoice.Total,
			&status,
			&invoice.PaidAt,
			&notes,
		)
		if err != nil {
			log.Errorf("failed to scan invoice: %v", err)
			return nil, err
		}
		invoice.Status = Status(status)
		if discountKind != nil && discountAmount.Valid {
			invoice.Discount = &Discount{Kind: DiscountKind(*discountKind), Amount: discountAmount.Decimal}
		}
		if notes != nil {
			invoice.Notes = *notes
		}
		invoices = append(invoices, invoice)
	}
	return invoices, rows.Err()
}

func discountColumns(discount *Discount) (*string, decimal.NullDecimal) {
	if discount == nil {
		return nil, decimal.NullDecimal{}
	}
	kind := string(discount.Kind)
	return &kind, decimal.NewNullDecimal(discount.Amount)
}

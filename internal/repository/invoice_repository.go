package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rangerisrael/pet-portal-sub000/internal/db"
	"github.com/rangerisrael/pet-portal-sub000/internal/domain"
)

type InvoiceRepository struct {
	DB *db.Postgres
}

type CreateInvoiceInput struct {
	OwnerUserID int64
	BranchID    *int64
	Items       []CreateInvoiceItem
}

type CreateInvoiceItem struct {
	Description string
	Quantity    int
	UnitPrice   int64
}

func (r InvoiceRepository) Create(ctx context.Context, in CreateInvoiceInput) (*domain.Invoice, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var total int64
	for _, item := range in.Items {
		total += item.UnitPrice * int64(item.Quantity)
	}

	number := fmt.Sprintf("INV-%d", time.Now().UnixNano()/1e6)
	now := time.Now()
	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO invoices (number, owner_user_id, branch_id, total, balance_due, status, issued_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$4,'pending',$5, now(), now())
		RETURNING id
	`, number, in.OwnerUserID, in.BranchID, total, now).Scan(&id)
	if err != nil {
		return nil, err
	}

	for _, item := range in.Items {
		_, err := tx.Exec(ctx, `
			INSERT INTO invoice_items (invoice_id, description, quantity, unit_price, created_at)
			VALUES ($1,$2,$3,$4, now())
		`, id, item.Description, item.Quantity, item.UnitPrice)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r InvoiceRepository) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	row := r.DB.Pool.QueryRow(ctx, `
		SELECT id, number, owner_user_id, branch_id, total, balance_due, status, issued_at, created_at, updated_at
		FROM invoices
		WHERE id=$1 AND deleted_at IS NULL
	`, id)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, invoice_id, description, quantity, unit_price, created_at
		FROM invoice_items
		WHERE invoice_id=$1
		ORDER BY id ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var item domain.InvoiceItem
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.Description, &item.Quantity, &item.UnitPrice.Amount, &item.CreatedAt); err != nil {
			return nil, err
		}
		inv.Items = append(inv.Items, item)
	}
	return inv, rows.Err()
}

func (r InvoiceRepository) ListByOwner(ctx context.Context, ownerUserID int64) ([]domain.Invoice, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, number, owner_user_id, branch_id, total, balance_due, status, issued_at, created_at, updated_at
		FROM invoices
		WHERE deleted_at IS NULL AND owner_user_id=$1
		ORDER BY issued_at DESC
	`, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInvoices(rows)
}

func (r InvoiceRepository) List(ctx context.Context, limit int) ([]domain.Invoice, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, number, owner_user_id, branch_id, total, balance_due, status, issued_at, created_at, updated_at
		FROM invoices
		WHERE deleted_at IS NULL
		ORDER BY issued_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInvoices(rows)
}

// ApplyPayment records a payment and updates the invoice balance and status
// atomically. The invoice row is locked for the duration.
func (r InvoiceRepository) ApplyPayment(ctx context.Context, invoiceID int64, amount int64, method, reference string) (*domain.Invoice, *domain.Payment, error) {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		SELECT id, number, owner_user_id, branch_id, total, balance_due, status, issued_at, created_at, updated_at
		FROM invoices
		WHERE id=$1 AND deleted_at IS NULL
		FOR UPDATE
	`, invoiceID)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	newBalance, newStatus, err := domain.ApplyPaymentToInvoice(*inv, amount)
	if err != nil {
		return nil, nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE invoices SET balance_due=$1, status=$2, updated_at=now() WHERE id=$3
	`, newBalance, string(newStatus), invoiceID); err != nil {
		return nil, nil, err
	}

	var payment domain.Payment
	err = tx.QueryRow(ctx, `
		INSERT INTO payments (invoice_id, amount, method, reference, paid_at, created_at)
		VALUES ($1,$2,$3,$4, now(), now())
		RETURNING id, invoice_id, amount, method, reference, paid_at, created_at
	`, invoiceID, amount, method, reference).Scan(
		&payment.ID, &payment.InvoiceID, &payment.Amount.Amount, &payment.Method, &payment.Reference, &payment.PaidAt, &payment.CreatedAt,
	)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}

	inv.BalanceDue.Amount = newBalance
	inv.Status = newStatus
	return inv, &payment, nil
}

func (r InvoiceRepository) ListPayments(ctx context.Context, invoiceID int64) ([]domain.Payment, error) {
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, invoice_id, amount, method, reference, paid_at, created_at
		FROM payments
		WHERE invoice_id=$1
		ORDER BY paid_at DESC
	`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Amount.Amount, &p.Method, &p.Reference, &p.PaidAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func collectInvoices(rows pgx.Rows) ([]domain.Invoice, error) {
	var items []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *inv)
	}
	return items, rows.Err()
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var inv domain.Invoice
	var branchID pgtype.Int8
	if err := row.Scan(&inv.ID, &inv.Number, &inv.OwnerUserID, &branchID, &inv.Total.Amount, &inv.BalanceDue.Amount, (*string)(&inv.Status), &inv.IssuedAt, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return nil, err
	}
	if branchID.Valid {
		inv.BranchID = &branchID.Int64
	}
	return &inv, nil
}

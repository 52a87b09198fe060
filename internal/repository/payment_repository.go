package repository

import (
	"context"
	"database/sql"
)

// PublishingPayment is one append-mostly ledger entry recording the fee a
// landlord paid to publish a listing. Property and landlord rows cannot be
// deleted while payments reference them.
type PublishingPayment struct {
	ID         uint64 `json:"id"`
	PropertyID uint64 `json:"property_id"`
	LandlordID uint64 `json:"landlord_id"`
	Amount     string `json:"amount"`
	Method     string `json:"method"`
	CreatedAt  string `json:"created_at"`
}

// Accepted payment methods.
var PaymentMethods = map[string]bool{
	"credit_card":   true,
	"paypal":        true,
	"bank_transfer": true,
	"cash":          true,
}

// PaymentRepo persists publishing payments.
type PaymentRepo struct {
	db *sql.DB
}

func NewPaymentRepo(db *sql.DB) *PaymentRepo {
	return &PaymentRepo{db: db}
}

// Create appends a ledger entry and reads back the DB timestamp.
func (r *PaymentRepo) Create(ctx context.Context, p *PublishingPayment) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO publishing_payments (property_id, landlord_id, amount, method) VALUES (?,?,?,?)`,
		p.PropertyID, p.LandlordID, p.Amount, p.Method)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		`SELECT created_at FROM publishing_payments WHERE id = ?`, p.ID).Scan(&p.CreatedAt)
}

// ListByLandlord returns the landlord's payment history ordered by id.
func (r *PaymentRepo) ListByLandlord(ctx context.Context, landlordID uint64) ([]*PublishingPayment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, property_id, landlord_id, amount, method, created_at
		 FROM publishing_payments WHERE landlord_id = ? ORDER BY id`, landlordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*PublishingPayment
	for rows.Next() {
		p := new(PublishingPayment)
		if err := rows.Scan(&p.ID, &p.PropertyID, &p.LandlordID, &p.Amount, &p.Method, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

package repository

import (
	"context"
	"database/sql"
	"errors"
)

// ContactMessage is a "get in touch" submission from an unauthenticated
// visitor. Only moderators may read or delete it; is_read tracks moderation.
type ContactMessage struct {
	ID        uint64 `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

// Testimonial is a public review submitted anonymously; it only shows up on
// the public list once a moderator confirms it.
type Testimonial struct {
	ID          uint64 `json:"id"`
	FullName    string `json:"full_name"`
	Rating      int    `json:"rating"`
	Message     string `json:"message"`
	IsConfirmed bool   `json:"is_confirmed"`
	CreatedAt   string `json:"created_at"`
}

// ErrMessageNotFound is returned when a contact message or testimonial
// cannot be found.
var ErrMessageNotFound = errors.New("message not found")

// MessageRepo persists contact messages and testimonials.
type MessageRepo struct {
	db *sql.DB
}

func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateContact stores a visitor submission.
func (r *MessageRepo) CreateContact(ctx context.Context, m *ContactMessage) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO contact_messages (first_name, last_name, email, subject, message)
		 VALUES (?,?,?,?,?)`,
		m.FirstName, m.LastName, m.Email, m.Subject, m.Message)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		`SELECT created_at FROM contact_messages WHERE id = ?`, m.ID).Scan(&m.CreatedAt)
}

// ListContacts returns all contact messages, newest first. Moderator only.
func (r *MessageRepo) ListContacts(ctx context.Context) ([]*ContactMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, first_name, last_name, email, subject, message, is_read, created_at
		 FROM contact_messages ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*ContactMessage
	for rows.Next() {
		m := new(ContactMessage)
		if err := rows.Scan(&m.ID, &m.FirstName, &m.LastName, &m.Email, &m.Subject, &m.Message, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MarkContactRead flips the moderation flag.
func (r *MessageRepo) MarkContactRead(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE contact_messages SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// DeleteContact removes a contact message.
func (r *MessageRepo) DeleteContact(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM contact_messages WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// CreateTestimonial stores a visitor review, unconfirmed.
func (r *MessageRepo) CreateTestimonial(ctx context.Context, t *Testimonial) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO testimonials (full_name, rating, message) VALUES (?,?,?)`,
		t.FullName, t.Rating, t.Message)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return r.db.QueryRowContext(ctx,
		`SELECT created_at FROM testimonials WHERE id = ?`, t.ID).Scan(&t.CreatedAt)
}

// ListTestimonials returns testimonials; confirmedOnly hides unmoderated
// entries for the public endpoint.
func (r *MessageRepo) ListTestimonials(ctx context.Context, confirmedOnly bool) ([]*Testimonial, error) {
	q := `SELECT id, full_name, rating, message, is_confirmed, created_at FROM testimonials ORDER BY id DESC`
	if confirmedOnly {
		q = `SELECT id, full_name, rating, message, is_confirmed, created_at
		     FROM testimonials WHERE is_confirmed = 1 ORDER BY id DESC`
	}
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Testimonial
	for rows.Next() {
		t := new(Testimonial)
		if err := rows.Scan(&t.ID, &t.FullName, &t.Rating, &t.Message, &t.IsConfirmed, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ConfirmTestimonial flips the moderation flag.
func (r *MessageRepo) ConfirmTestimonial(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE testimonials SET is_confirmed = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// DeleteTestimonial removes a testimonial.
func (r *MessageRepo) DeleteTestimonial(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM testimonials WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMessageNotFound
	}
	return nil
}

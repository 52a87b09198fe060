package repository

import (
	"context"
	"database/sql"
	"errors"
)

// PropertyType is an independent classification axis for listings.
type PropertyType struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// ErrPropertyTypeNotFound is returned when a property type lookup fails.
var ErrPropertyTypeNotFound = errors.New("property type not found")

// PropertyTypeRepo provides CRUD over property types.
type PropertyTypeRepo struct {
	db *sql.DB
}

func NewPropertyTypeRepo(db *sql.DB) *PropertyTypeRepo {
	return &PropertyTypeRepo{db: db}
}

// List returns all property types ordered by id.
func (r *PropertyTypeRepo) List(ctx context.Context) ([]*PropertyType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM property_types ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*PropertyType
	for rows.Next() {
		t := new(PropertyType)
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetByID fetches one property type.
func (r *PropertyTypeRepo) GetByID(ctx context.Context, id uint64) (*PropertyType, error) {
	var t PropertyType
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM property_types WHERE id = ?`, id).
		Scan(&t.ID, &t.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPropertyTypeNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Create inserts a property type. Duplicate names map to ErrNameExists.
func (r *PropertyTypeRepo) Create(ctx context.Context, name string) (*PropertyType, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO property_types (name) VALUES (?)`, name)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrNameExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &PropertyType{ID: uint64(id), Name: name}, nil
}

// UpdateName renames a property type.
func (r *PropertyTypeRepo) UpdateName(ctx context.Context, id uint64, name string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE property_types SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrNameExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPropertyTypeNotFound
	}
	return nil
}

// Delete removes a property type unless listings still reference it.
func (r *PropertyTypeRepo) Delete(ctx context.Context, id uint64) error {
	var refs int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM properties WHERE property_type_id = ?`, id).Scan(&refs); err != nil {
		return err
	}
	if refs > 0 {
		return ErrReferencedByResource
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM property_types WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPropertyTypeNotFound
	}
	return nil
}

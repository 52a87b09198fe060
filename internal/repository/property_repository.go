package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Property represents a rental listing owned by one landlord. The four
// geography references are denormalized onto the row and always form a
// consistent chain; ValidateChain runs before create and update.
type Property struct {
	ID             uint64        `json:"id"`
	LandlordID     uint64        `json:"landlord_id"`
	PropertyTypeID uint64        `json:"property_type_id"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	Bedrooms       uint32        `json:"bedrooms"`
	Bathrooms      uint32        `json:"bathrooms"`
	IsFurnished    bool          `json:"is_furnished"`
	Floors         sql.NullInt32 `json:"floors"`
	PlotSize       string        `json:"plot_size"`
	RentingPrice   string        `json:"renting_price"`
	Status         bool          `json:"status"`
	ProvinceID     uint64        `json:"province_id"`
	DistrictID     uint64        `json:"district_id"`
	SectorID       uint64        `json:"sector_id"`
	CellID         uint64        `json:"cell_id"`
	Street         string        `json:"street"`
	PubDate        string        `json:"pub_date"`
	CreatedAt      string        `json:"created_at"`
}

// PropertyImage is one stored image belonging to a property. Images are
// replaced wholesale, never diffed.
type PropertyImage struct {
	ID         uint64 `json:"id"`
	PropertyID uint64 `json:"property_id"`
	ImagePath  string `json:"image_path"`
}

// ErrPropertyNotFound is returned when a property cannot be found.
var ErrPropertyNotFound = errors.New("property not found")

// PropertyRepo encapsulates all database queries related to properties and
// their images.
type PropertyRepo struct {
	db *sql.DB
}

// NewPropertyRepo constructs a PropertyRepo with the provided DB handle.
func NewPropertyRepo(db *sql.DB) *PropertyRepo {
	return &PropertyRepo{db: db}
}

const propertyColumns = `id, landlord_id, property_type_id, title, description,
	bedrooms, bathrooms, is_furnished, floors, plot_size, renting_price, status,
	province_id, district_id, sector_id, cell_id, street, pub_date, created_at`

func scanProperty(scan func(...any) error) (*Property, error) {
	var p Property
	err := scan(&p.ID, &p.LandlordID, &p.PropertyTypeID, &p.Title, &p.Description,
		&p.Bedrooms, &p.Bathrooms, &p.IsFurnished, &p.Floors, &p.PlotSize, &p.RentingPrice, &p.Status,
		&p.ProvinceID, &p.DistrictID, &p.SectorID, &p.CellID, &p.Street, &p.PubDate, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a property together with its image rows in one transaction
// so a failure partway leaves no partial listing. On success the ID, PubDate
// and CreatedAt fields are populated.
func (r *PropertyRepo) Create(ctx context.Context, p *Property, imagePaths []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()

	const qInsert = `INSERT INTO properties
		(landlord_id, property_type_id, title, description, bedrooms, bathrooms,
		 is_furnished, floors, plot_size, renting_price, status,
		 province_id, district_id, sector_id, cell_id, street)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`
	var res sql.Result
	res, err = tx.ExecContext(ctx, qInsert,
		p.LandlordID, p.PropertyTypeID, p.Title, p.Description, p.Bedrooms, p.Bathrooms,
		p.IsFurnished, p.Floors, p.PlotSize, p.RentingPrice, p.Status,
		p.ProvinceID, p.DistrictID, p.SectorID, p.CellID, p.Street)
	if err != nil {
		return err
	}
	var id int64
	id, err = res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)

	for _, path := range imagePaths {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO property_images (property_id, image_path) VALUES (?,?)`,
			p.ID, path); err != nil {
			return err
		}
	}

	// Read back DB-generated timestamps so callers get a complete record.
	err = tx.QueryRowContext(ctx,
		`SELECT pub_date, created_at FROM properties WHERE id = ?`, p.ID).
		Scan(&p.PubDate, &p.CreatedAt)
	return err
}

// GetByID fetches a property regardless of owner. Returns
// ErrPropertyNotFound if no row is found.
func (r *PropertyRepo) GetByID(ctx context.Context, id uint64) (*Property, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE id = ?`, id)
	p, err := scanProperty(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return p, nil
}

// OwnerUserID returns the landlord profile id and the user id behind a
// property in one query, for ownership checks.
func (r *PropertyRepo) OwnerUserID(ctx context.Context, propertyID uint64) (landlordID, userID uint64, err error) {
	const q = `SELECT p.landlord_id, lp.user_id
	           FROM properties p JOIN landlord_profiles lp ON lp.id = p.landlord_id
	           WHERE p.id = ?`
	err = r.db.QueryRowContext(ctx, q, propertyID).Scan(&landlordID, &userID)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrPropertyNotFound
	}
	return
}

// ListByLandlord returns all properties for one landlord ordered by id.
func (r *PropertyRepo) ListByLandlord(ctx context.Context, landlordID uint64) ([]*Property, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE landlord_id = ? ORDER BY id`, landlordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Property
	for rows.Next() {
		p, err := scanProperty(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update applies field-level updates to a property owned by the given
// landlord. Returns ErrPropertyNotFound when no row matches id+landlord; the
// ownership predicate in the WHERE clause backs up the handler-level guard.
func (r *PropertyRepo) Update(ctx context.Context, p *Property) error {
	const q = `UPDATE properties SET
		property_type_id = ?, title = ?, description = ?, bedrooms = ?, bathrooms = ?,
		is_furnished = ?, floors = ?, plot_size = ?, renting_price = ?, status = ?,
		province_id = ?, district_id = ?, sector_id = ?, cell_id = ?, street = ?,
		pub_date = CURRENT_TIMESTAMP
		WHERE id = ? AND landlord_id = ?`
	res, err := r.db.ExecContext(ctx, q,
		p.PropertyTypeID, p.Title, p.Description, p.Bedrooms, p.Bathrooms,
		p.IsFurnished, p.Floors, p.PlotSize, p.RentingPrice, p.Status,
		p.ProvinceID, p.DistrictID, p.SectorID, p.CellID, p.Street,
		p.ID, p.LandlordID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPropertyNotFound
	}
	return nil
}

// SetStatus flips the published flag of a landlord's property. A recorded
// publishing payment is what makes a listing visible in the public catalog.
func (r *PropertyRepo) SetStatus(ctx context.Context, id, landlordID uint64, status bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE properties SET status = ? WHERE id = ? AND landlord_id = ?`,
		status, id, landlordID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPropertyNotFound
	}
	return nil
}

// ListImages returns all image rows of a property ordered by id.
func (r *PropertyRepo) ListImages(ctx context.Context, propertyID uint64) ([]*PropertyImage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, property_id, image_path FROM property_images WHERE property_id = ? ORDER BY id`,
		propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*PropertyImage
	for rows.Next() {
		img := new(PropertyImage)
		if err := rows.Scan(&img.ID, &img.PropertyID, &img.ImagePath); err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

// ReplaceImages deletes every existing image row of the property and inserts
// the new set inside one transaction. Partial replacement is never
// observable: either the full new set lands or the old set stays.
func (r *PropertyRepo) ReplaceImages(ctx context.Context, propertyID uint64, paths []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM property_images WHERE property_id = ?`, propertyID); err != nil {
		return err
	}
	for _, path := range paths {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO property_images (property_id, image_path) VALUES (?,?)`,
			propertyID, path); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a property and its images. Deletion is blocked with
// ErrConflict while publishing payments reference the listing
// (protect-on-delete); images cascade inside the transaction.
func (r *PropertyRepo) Delete(ctx context.Context, id, landlordID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()

	var dbLandlord uint64
	if err = tx.QueryRowContext(ctx,
		`SELECT landlord_id FROM properties WHERE id = ?`, id).Scan(&dbLandlord); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrPropertyNotFound
		}
		return err
	}
	if dbLandlord != landlordID {
		err = ErrForbidden
		return err
	}

	var payments int
	if err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM publishing_payments WHERE property_id = ?`, id).Scan(&payments); err != nil {
		return err
	}
	if payments > 0 {
		err = ErrConflict
		return err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM property_images WHERE property_id = ?`, id); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM properties WHERE id = ?`, id)
	return err
}

package repository // repository holds data access logic for domain entities

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Profile is the shared shape of landlord and manager profiles. Each user may
// hold at most one of each; the user_id column carries a UNIQUE constraint
// but the 1:1 rule is also enforced up front to produce a descriptive error.
type Profile struct {
	ID           uint64 `json:"id"`
	UserID       uint64 `json:"user_id"`
	Gender       string `json:"gender"`
	PhoneNumber  string `json:"phone_number"`
	ProfileImage string `json:"profile_image"`
}

// UserLocation is a denormalized pointer into the geography tree for a user's
// residence. All four references are optional but must form a consistent
// chain; ValidateChain runs before every upsert.
type UserLocation struct {
	ID         uint64        `json:"id"`
	UserID     uint64        `json:"user_id"`
	ProvinceID sql.NullInt64 `json:"province_id"`
	DistrictID sql.NullInt64 `json:"district_id"`
	SectorID   sql.NullInt64 `json:"sector_id"`
	CellID     sql.NullInt64 `json:"cell_id"`
}

// ErrProfileNotFound is returned when a profile or location lookup fails.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepo provides persistence for landlord profiles, manager profiles
// and user locations.
type ProfileRepo struct {
	db *sql.DB
}

// NewProfileRepo constructs a ProfileRepo with the given DB handle.
func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// profileTable guards against anything but the two known profile tables
// reaching fmt-built SQL.
func profileTable(kind string) (string, error) {
	switch kind {
	case "landlord":
		return "landlord_profiles", nil
	case "manager":
		return "manager_profiles", nil
	}
	return "", fmt.Errorf("unknown profile kind %q", kind)
}

// CreateProfile inserts a landlord or manager profile for the user. A second
// profile of the same kind maps to ErrProfileExists.
func (r *ProfileRepo) CreateProfile(ctx context.Context, kind string, p *Profile) error {
	table, err := profileTable(kind)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`INSERT INTO %s (user_id, gender, phone_number, profile_image) VALUES (?,?,?,?)`, table)
	res, err := r.db.ExecContext(ctx, q, p.UserID, p.Gender, p.PhoneNumber, p.ProfileImage)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrProfileExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetProfileByUser fetches the user's profile of the given kind.
func (r *ProfileRepo) GetProfileByUser(ctx context.Context, kind string, userID uint64) (*Profile, error) {
	table, err := profileTable(kind)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`SELECT id, user_id, gender, phone_number, profile_image FROM %s WHERE user_id = ?`, table)
	var p Profile
	if err := r.db.QueryRowContext(ctx, q, userID).Scan(&p.ID, &p.UserID, &p.Gender, &p.PhoneNumber, &p.ProfileImage); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

// UpdateProfile updates gender, phone and (when non-empty) the image path of
// the user's own profile. Returns ErrProfileNotFound when no row matches.
func (r *ProfileRepo) UpdateProfile(ctx context.Context, kind string, p *Profile) error {
	table, err := profileTable(kind)
	if err != nil {
		return err
	}
	q := fmt.Sprintf(`UPDATE %s SET gender = ?, phone_number = ?,
		profile_image = IF(? = '', profile_image, ?)
		WHERE user_id = ?`, table)
	res, err := r.db.ExecContext(ctx, q, p.Gender, p.PhoneNumber, p.ProfileImage, p.ProfileImage, p.UserID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// GetLandlordByID fetches a landlord profile by its own id. Ownership checks
// need the user_id behind a property's landlord reference.
func (r *ProfileRepo) GetLandlordByID(ctx context.Context, id uint64) (*Profile, error) {
	const q = `SELECT id, user_id, gender, phone_number, profile_image FROM landlord_profiles WHERE id = ?`
	var p Profile
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.UserID, &p.Gender, &p.PhoneNumber, &p.ProfileImage); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetLocation fetches the user's location row.
func (r *ProfileRepo) GetLocation(ctx context.Context, userID uint64) (*UserLocation, error) {
	const q = `SELECT id, user_id, province_id, district_id, sector_id, cell_id
	           FROM user_locations WHERE user_id = ?`
	var l UserLocation
	if err := r.db.QueryRowContext(ctx, q, userID).Scan(&l.ID, &l.UserID, &l.ProvinceID, &l.DistrictID, &l.SectorID, &l.CellID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &l, nil
}

// UpsertLocation creates or replaces the user's location row. The caller has
// already validated the geography chain.
func (r *ProfileRepo) UpsertLocation(ctx context.Context, l *UserLocation) error {
	const q = `INSERT INTO user_locations (user_id, province_id, district_id, sector_id, cell_id)
	           VALUES (?,?,?,?,?)
	           ON DUPLICATE KEY UPDATE
	             province_id = VALUES(province_id), district_id = VALUES(district_id),
	             sector_id = VALUES(sector_id), cell_id = VALUES(cell_id)`
	_, err := r.db.ExecContext(ctx, q, l.UserID, l.ProvinceID, l.DistrictID, l.SectorID, l.CellID)
	return err
}

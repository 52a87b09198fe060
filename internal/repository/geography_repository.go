// Package repository contains data access logic separated from HTTP handlers.
// This file owns the four-level administrative hierarchy
// (Province -> District -> Sector -> Cell). Node names are unique across the
// whole store, not per parent; the schema carries a UNIQUE constraint on the
// name column of every level.
package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Province is the root of the geography tree.
type Province struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// District belongs to one province.
type District struct {
	ID         uint64 `json:"id"`
	ProvinceID uint64 `json:"province_id"`
	Name       string `json:"name"`
}

// Sector belongs to one district.
type Sector struct {
	ID         uint64 `json:"id"`
	DistrictID uint64 `json:"district_id"`
	Name       string `json:"name"`
}

// Cell belongs to one sector and is the leaf of the tree.
type Cell struct {
	ID       uint64 `json:"id"`
	SectorID uint64 `json:"sector_id"`
	Name     string `json:"name"`
}

// ErrNodeNotFound is returned when a geography node cannot be found.
var ErrNodeNotFound = errors.New("geography node not found")

// GeographyRepo encapsulates all database queries against the geography
// tables. It also implements resolver.ChainStore so nested route segments can
// be verified against the stored parent references.
type GeographyRepo struct {
	db *sql.DB
}

// NewGeographyRepo constructs a GeographyRepo with the provided DB handle.
func NewGeographyRepo(db *sql.DB) *GeographyRepo {
	return &GeographyRepo{db: db}
}

// ListProvinces returns every province ordered by id.
func (r *GeographyRepo) ListProvinces(ctx context.Context) ([]*Province, error) {
	const q = `SELECT id, name FROM provinces ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Province
	for rows.Next() {
		p := new(Province)
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListDistricts returns districts, optionally scoped to one province when
// provinceID is non-zero. Nested routes and the flat ?province= query filter
// both funnel through this method.
func (r *GeographyRepo) ListDistricts(ctx context.Context, provinceID uint64) ([]*District, error) {
	q := `SELECT id, province_id, name FROM districts ORDER BY id`
	args := []any{}
	if provinceID != 0 {
		q = `SELECT id, province_id, name FROM districts WHERE province_id = ? ORDER BY id`
		args = append(args, provinceID)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*District
	for rows.Next() {
		d := new(District)
		if err := rows.Scan(&d.ID, &d.ProvinceID, &d.Name); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListSectors returns sectors, optionally scoped to one district.
func (r *GeographyRepo) ListSectors(ctx context.Context, districtID uint64) ([]*Sector, error) {
	q := `SELECT id, district_id, name FROM sectors ORDER BY id`
	args := []any{}
	if districtID != 0 {
		q = `SELECT id, district_id, name FROM sectors WHERE district_id = ? ORDER BY id`
		args = append(args, districtID)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Sector
	for rows.Next() {
		s := new(Sector)
		if err := rows.Scan(&s.ID, &s.DistrictID, &s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListCells returns cells, optionally scoped to one sector.
func (r *GeographyRepo) ListCells(ctx context.Context, sectorID uint64) ([]*Cell, error) {
	q := `SELECT id, sector_id, name FROM cells ORDER BY id`
	args := []any{}
	if sectorID != 0 {
		q = `SELECT id, sector_id, name FROM cells WHERE sector_id = ? ORDER BY id`
		args = append(args, sectorID)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Cell
	for rows.Next() {
		c := new(Cell)
		if err := rows.Scan(&c.ID, &c.SectorID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetDistrict fetches a district by id. Returns ErrNodeNotFound if absent.
func (r *GeographyRepo) GetDistrict(ctx context.Context, id uint64) (*District, error) {
	const q = `SELECT id, province_id, name FROM districts WHERE id = ?`
	var d District
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&d.ID, &d.ProvinceID, &d.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNodeNotFound
		}
		return nil, err
	}
	return &d, nil
}

// GetSector fetches a sector by id. Returns ErrNodeNotFound if absent.
func (r *GeographyRepo) GetSector(ctx context.Context, id uint64) (*Sector, error) {
	const q = `SELECT id, district_id, name FROM sectors WHERE id = ?`
	var s Sector
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.DistrictID, &s.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNodeNotFound
		}
		return nil, err
	}
	return &s, nil
}

// GetCell fetches a cell by id. Returns ErrNodeNotFound if absent.
func (r *GeographyRepo) GetCell(ctx context.Context, id uint64) (*Cell, error) {
	const q = `SELECT id, sector_id, name FROM cells WHERE id = ?`
	var c Cell
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.SectorID, &c.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNodeNotFound
		}
		return nil, err
	}
	return &c, nil
}

// provinceExists reports whether a province row exists.
func (r *GeographyRepo) provinceExists(ctx context.Context, id uint64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM provinces WHERE id = ?`, id).Scan(&n)
	return n > 0, err
}

// ValidateChain checks that the supplied geography references form a
// consistent ancestry. Zero values mean "absent"; only the links that are
// present are verified, walking upward from the deepest node so indirect
// pairs (e.g. cell vs district with no sector given) are covered too.
// Unknown ids yield ErrNodeNotFound, broken links ErrInconsistentHierarchy.
func (r *GeographyRepo) ValidateChain(ctx context.Context, provinceID, districtID, sectorID, cellID uint64) error {
	sectorEff := sectorID
	if cellID != 0 {
		cell, err := r.GetCell(ctx, cellID)
		if err != nil {
			return err
		}
		if sectorID != 0 && cell.SectorID != sectorID {
			return ErrInconsistentHierarchy
		}
		sectorEff = cell.SectorID
	}

	districtEff := districtID
	if sectorEff != 0 {
		sector, err := r.GetSector(ctx, sectorEff)
		if err != nil {
			if errors.Is(err, ErrNodeNotFound) && sectorID == 0 {
				// cell pointed at a missing sector: broken link, not bad input
				return ErrInconsistentHierarchy
			}
			return err
		}
		if districtID != 0 && sector.DistrictID != districtID {
			return ErrInconsistentHierarchy
		}
		districtEff = sector.DistrictID
	}

	if districtEff != 0 {
		district, err := r.GetDistrict(ctx, districtEff)
		if err != nil {
			if errors.Is(err, ErrNodeNotFound) && districtID == 0 {
				return ErrInconsistentHierarchy
			}
			return err
		}
		if provinceID != 0 && district.ProvinceID != provinceID {
			return ErrInconsistentHierarchy
		}
	} else if provinceID != 0 {
		ok, err := r.provinceExists(ctx, provinceID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNodeNotFound
		}
	}
	return nil
}

// CreateProvince inserts a new root node. Duplicate names map to ErrNameExists.
func (r *GeographyRepo) CreateProvince(ctx context.Context, name string) (*Province, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO provinces (name) VALUES (?)`, name)
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
	return &Province{ID: uint64(id), Name: name}, nil
}

// CreateDistrict inserts a district under an existing province.
func (r *GeographyRepo) CreateDistrict(ctx context.Context, provinceID uint64, name string) (*District, error) {
	ok, err := r.provinceExists(ctx, provinceID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNodeNotFound
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO districts (province_id, name) VALUES (?, ?)`, provinceID, name)
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
	return &District{ID: uint64(id), ProvinceID: provinceID, Name: name}, nil
}

// CreateSector inserts a sector under an existing district.
func (r *GeographyRepo) CreateSector(ctx context.Context, districtID uint64, name string) (*Sector, error) {
	if _, err := r.GetDistrict(ctx, districtID); err != nil {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO sectors (district_id, name) VALUES (?, ?)`, districtID, name)
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
	return &Sector{ID: uint64(id), DistrictID: districtID, Name: name}, nil
}

// CreateCell inserts a leaf cell under an existing sector.
func (r *GeographyRepo) CreateCell(ctx context.Context, sectorID uint64, name string) (*Cell, error) {
	if _, err := r.GetSector(ctx, sectorID); err != nil {
		return nil, err
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO cells (sector_id, name) VALUES (?, ?)`, sectorID, name)
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
	return &Cell{ID: uint64(id), SectorID: sectorID, Name: name}, nil
}

// count runs a single-value COUNT query.
func (r *GeographyRepo) count(ctx context.Context, q string, args ...any) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&n)
	return n, err
}

// DeleteProvince removes a province. Deletion is rejected with
// ErrHasDependents while districts exist under it and with
// ErrReferencedByResource while a property or user location points at it.
func (r *GeographyRepo) DeleteProvince(ctx context.Context, id uint64) error {
	children, err := r.count(ctx, `SELECT COUNT(*) FROM districts WHERE province_id = ?`, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return ErrHasDependents
	}
	refs, err := r.count(ctx,
		`SELECT (SELECT COUNT(*) FROM properties WHERE province_id = ?) +
		        (SELECT COUNT(*) FROM user_locations WHERE province_id = ?)`, id, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return ErrReferencedByResource
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM provinces WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNodeNotFound
	}
	return nil
}

// DeleteDistrict removes a district under the same protection rules.
func (r *GeographyRepo) DeleteDistrict(ctx context.Context, id uint64) error {
	children, err := r.count(ctx, `SELECT COUNT(*) FROM sectors WHERE district_id = ?`, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return ErrHasDependents
	}
	refs, err := r.count(ctx,
		`SELECT (SELECT COUNT(*) FROM properties WHERE district_id = ?) +
		        (SELECT COUNT(*) FROM user_locations WHERE district_id = ?)`, id, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return ErrReferencedByResource
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM districts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNodeNotFound
	}
	return nil
}

// DeleteSector removes a sector under the same protection rules.
func (r *GeographyRepo) DeleteSector(ctx context.Context, id uint64) error {
	children, err := r.count(ctx, `SELECT COUNT(*) FROM cells WHERE sector_id = ?`, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return ErrHasDependents
	}
	refs, err := r.count(ctx,
		`SELECT (SELECT COUNT(*) FROM properties WHERE sector_id = ?) +
		        (SELECT COUNT(*) FROM user_locations WHERE sector_id = ?)`, id, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return ErrReferencedByResource
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM sectors WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNodeNotFound
	}
	return nil
}

// DeleteCell removes a leaf cell; only reference protection applies.
func (r *GeographyRepo) DeleteCell(ctx context.Context, id uint64) error {
	refs, err := r.count(ctx,
		`SELECT (SELECT COUNT(*) FROM properties WHERE cell_id = ?) +
		        (SELECT COUNT(*) FROM user_locations WHERE cell_id = ?)`, id, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return ErrReferencedByResource
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM cells WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNodeNotFound
	}
	return nil
}

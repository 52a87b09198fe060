package repository

import (
	"context"
	"strings"

	"github.com/murenzi/renting-api/internal/resolver"
)

// PropertySearchQuery carries the sparse criteria of POST /v1/search.
// Pointer fields distinguish "absent" from zero values; every present field
// narrows the result with exact-match equality. Price is a literal equality
// match, inherited contract, not a range.
type PropertySearchQuery struct {
	PropertyTypeID *uint64 `json:"property_type"`
	Bedrooms       *uint32 `json:"bedrooms"`
	Bathrooms      *uint32 `json:"bathrooms"`
	IsFurnished    *bool   `json:"is_furnished"`
	Floors         *uint32 `json:"floors"`
	PlotSize       *string `json:"plot_size"`
	RentingPrice   *string `json:"renting_price"`
	DistrictID     *uint64 `json:"district"`
	SectorID       *uint64 `json:"sector"`
	CellID         *uint64 `json:"cell"`
	Page           int     `json:"page"`
	PageSize       int     `json:"page_size"`
}

// PropertyListQuery drives the public GET /v1/properties listing: one
// geography filter (nested path or flat query parameter, already resolved),
// an optional type filter, free-text search over title/description and price
// ordering.
type PropertyListQuery struct {
	Geo            resolver.Filter
	PropertyTypeID uint64
	Text           string
	Order          string // "price" | "-price" | "" (id order)
	Page           int
	PageSize       int
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return page, size
}

// Search returns the published properties matching every present criterion,
// plus the total count for pagination. Empty criteria return the whole
// published catalog.
func (r *PropertyRepo) Search(ctx context.Context, q PropertySearchQuery) ([]*Property, int64, error) {
	// Search is a public surface. Unpublished listings never match.
	where := []string{"status = 1"}
	args := []any{}

	if q.PropertyTypeID != nil {
		where = append(where, "property_type_id = ?")
		args = append(args, *q.PropertyTypeID)
	}
	if q.Bedrooms != nil {
		where = append(where, "bedrooms = ?")
		args = append(args, *q.Bedrooms)
	}
	if q.Bathrooms != nil {
		where = append(where, "bathrooms = ?")
		args = append(args, *q.Bathrooms)
	}
	if q.IsFurnished != nil {
		where = append(where, "is_furnished = ?")
		args = append(args, *q.IsFurnished)
	}
	if q.Floors != nil {
		where = append(where, "floors = ?")
		args = append(args, *q.Floors)
	}
	if q.PlotSize != nil {
		where = append(where, "plot_size = ?")
		args = append(args, *q.PlotSize)
	}
	if q.RentingPrice != nil {
		where = append(where, "renting_price = ?")
		args = append(args, *q.RentingPrice)
	}
	if q.DistrictID != nil {
		where = append(where, "district_id = ?")
		args = append(args, *q.DistrictID)
	}
	if q.SectorID != nil {
		where = append(where, "sector_id = ?")
		args = append(args, *q.SectorID)
	}
	if q.CellID != nil {
		where = append(where, "cell_id = ?")
		args = append(args, *q.CellID)
	}

	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM properties WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, size := normalizePage(q.Page, q.PageSize)
	dataSQL := `SELECT ` + propertyColumns + ` FROM properties WHERE ` + cond +
		` ORDER BY id LIMIT ? OFFSET ?`
	argsData := append(append([]any{}, args...), size, (page-1)*size)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]*Property, 0, size)
	for rows.Next() {
		p, err := scanProperty(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// List returns the public catalog view for browse endpoints.
func (r *PropertyRepo) List(ctx context.Context, q PropertyListQuery) ([]*Property, int64, error) {
	where := []string{"status = 1"}
	args := []any{}

	if !q.Geo.IsZero() {
		where = append(where, q.Geo.Level.Column()+" = ?")
		args = append(args, q.Geo.ID)
	}
	if q.PropertyTypeID != 0 {
		where = append(where, "property_type_id = ?")
		args = append(args, q.PropertyTypeID)
	}
	if q.Text != "" {
		where = append(where, "(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)")
		needle := "%" + strings.ToLower(q.Text) + "%"
		args = append(args, needle, needle)
	}

	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM properties WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := "id"
	switch q.Order {
	case "price":
		order = "renting_price ASC"
	case "-price":
		order = "renting_price DESC"
	}

	page, size := normalizePage(q.Page, q.PageSize)
	dataSQL := `SELECT ` + propertyColumns + ` FROM properties WHERE ` + cond +
		` ORDER BY ` + order + ` LIMIT ? OFFSET ?`
	argsData := append(append([]any{}, args...), size, (page-1)*size)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]*Property, 0, size)
	for rows.Next() {
		p, err := scanProperty(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

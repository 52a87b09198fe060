package repository

// chain_store.go makes GeographyRepo satisfy resolver.ChainStore so nested
// route segments can be verified against stored parent references.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/murenzi/renting-api/internal/resolver"
)

// levelTable maps a resolver level to its table and parent column.
func levelTable(level resolver.Level) (table, parentCol string, err error) {
	switch level {
	case resolver.LevelProvince:
		return "provinces", "", nil
	case resolver.LevelDistrict:
		return "districts", "province_id", nil
	case resolver.LevelSector:
		return "sectors", "district_id", nil
	case resolver.LevelCell:
		return "cells", "sector_id", nil
	}
	return "", "", fmt.Errorf("unknown geography level %d", level)
}

// NodeExists reports whether an id exists at the given level.
func (r *GeographyRepo) NodeExists(ctx context.Context, level resolver.Level, id uint64) (bool, error) {
	table, _, err := levelTable(level)
	if err != nil {
		return false, err
	}
	var n int
	q := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE id = ?`, table)
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// NodeParent returns the parent id of the node one level up. Asking for the
// parent of a province is a programming error and returns ErrNodeNotFound.
func (r *GeographyRepo) NodeParent(ctx context.Context, level resolver.Level, id uint64) (uint64, error) {
	table, parentCol, err := levelTable(level)
	if err != nil {
		return 0, err
	}
	if parentCol == "" {
		return 0, ErrNodeNotFound
	}
	var parent uint64
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, parentCol, table)
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&parent); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNodeNotFound
		}
		return 0, err
	}
	return parent, nil
}

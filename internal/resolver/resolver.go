// Package resolver translates hierarchical route segments
// (/provinces/:p/districts/:d/...) into a validated filter over the geography
// tree. Every segment must exist at its expected level and must descend from
// the segment before it; the two failure modes are kept distinct so handlers
// and logs can tell a dangling id apart from a wrong-parent id.
package resolver

import (
	"context"
	"errors"
)

// Level identifies a depth in the administrative hierarchy.
type Level int

const (
	LevelProvince Level = iota + 1
	LevelDistrict
	LevelSector
	LevelCell
)

// String returns the lowercase level name used in filter columns and errors.
func (l Level) String() string {
	switch l {
	case LevelProvince:
		return "province"
	case LevelDistrict:
		return "district"
	case LevelSector:
		return "sector"
	case LevelCell:
		return "cell"
	}
	return "unknown"
}

// Column returns the property table column the level filters on.
func (l Level) Column() string {
	return l.String() + "_id"
}

// ErrSegmentNotFound is returned when a path segment's id does not exist at
// its level.
var ErrSegmentNotFound = errors.New("path segment not found")

// ErrPathMismatch is returned when a segment exists but is not a descendant
// of the previous segment.
var ErrPathMismatch = errors.New("path segment does not belong to its parent")

// Segment is one (level, id) pair parsed from a nested route.
type Segment struct {
	Level Level
	ID    uint64
}

// Filter is the flat predicate a resolved path reduces to: match rows whose
// level column equals ID. The zero Filter matches everything.
type Filter struct {
	Level Level
	ID    uint64
}

// IsZero reports whether the filter constrains anything.
func (f Filter) IsZero() bool { return f.ID == 0 }

// ChainStore answers existence and parentage questions for geography nodes.
// GeographyRepo satisfies this interface.
type ChainStore interface {
	// NodeExists reports whether an id exists at the given level.
	NodeExists(ctx context.Context, level Level, id uint64) (bool, error)
	// NodeParent returns the parent id of a node one level up. Provinces
	// have no parent and must not be asked for one.
	NodeParent(ctx context.Context, level Level, id uint64) (uint64, error)
}

// Resolver walks nested path segments against a ChainStore.
type Resolver struct {
	store ChainStore
}

// New constructs a Resolver over the given store.
func New(store ChainStore) *Resolver {
	if store == nil {
		panic("nil ChainStore passed to resolver.New")
	}
	return &Resolver{store: store}
}

// Resolve walks segments root-to-leaf. Each segment's id must exist at its
// level; each segment after the first must descend from the previous one.
// Levels may skip (province straight to sector): the ancestor chain is
// climbed link by link. On success the returned filter carries the deepest
// segment, which is the only predicate needed on flat reference columns.
func (r *Resolver) Resolve(ctx context.Context, segments ...Segment) (Filter, error) {
	if len(segments) == 0 {
		return Filter{}, nil
	}
	for i, seg := range segments {
		if seg.Level < LevelProvince || seg.Level > LevelCell || seg.ID == 0 {
			return Filter{}, ErrSegmentNotFound
		}
		ok, err := r.store.NodeExists(ctx, seg.Level, seg.ID)
		if err != nil {
			return Filter{}, err
		}
		if !ok {
			return Filter{}, ErrSegmentNotFound
		}
		if i == 0 {
			continue
		}
		prev := segments[i-1]
		if seg.Level <= prev.Level {
			return Filter{}, ErrPathMismatch
		}
		ancestor, err := r.ancestorAt(ctx, seg, prev.Level)
		if err != nil {
			return Filter{}, err
		}
		if ancestor != prev.ID {
			return Filter{}, ErrPathMismatch
		}
	}
	leaf := segments[len(segments)-1]
	return Filter{Level: leaf.Level, ID: leaf.ID}, nil
}

// ancestorAt climbs parent links from seg until reaching the target level.
func (r *Resolver) ancestorAt(ctx context.Context, seg Segment, target Level) (uint64, error) {
	level, id := seg.Level, seg.ID
	for level > target {
		parent, err := r.store.NodeParent(ctx, level, id)
		if err != nil {
			return 0, err
		}
		level--
		id = parent
	}
	return id, nil
}

// ResolveFlat resolves flat query parameters with the same walk as nested
// paths: every supplied id must exist at its level and the supplied ids must
// lie on one ancestor chain, so ?province=1&district=20 fails exactly where
// /provinces/1/districts/20 would. Zero ids are skipped; all-zero input
// yields the zero filter.
func (r *Resolver) ResolveFlat(ctx context.Context, provinceID, districtID, sectorID, cellID uint64) (Filter, error) {
	all := []Segment{
		{Level: LevelProvince, ID: provinceID},
		{Level: LevelDistrict, ID: districtID},
		{Level: LevelSector, ID: sectorID},
		{Level: LevelCell, ID: cellID},
	}
	segs := all[:0]
	for _, s := range all {
		if s.ID != 0 {
			segs = append(segs, s)
		}
	}
	return r.Resolve(ctx, segs...)
}

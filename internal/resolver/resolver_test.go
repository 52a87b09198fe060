package resolver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// treeStore is an in-memory ChainStore over a small fixed tree:
//
//	province 1 -> district 10 -> sector 100 -> cell 1000
//	province 2 -> district 20
type treeStore struct {
	parents map[Level]map[uint64]uint64
}

func newTreeStore() treeStore {
	return treeStore{parents: map[Level]map[uint64]uint64{
		LevelProvince: {1: 0, 2: 0},
		LevelDistrict: {10: 1, 20: 2},
		LevelSector:   {100: 10},
		LevelCell:     {1000: 100},
	}}
}

func (s treeStore) NodeExists(_ context.Context, level Level, id uint64) (bool, error) {
	_, ok := s.parents[level][id]
	return ok, nil
}

func (s treeStore) NodeParent(_ context.Context, level Level, id uint64) (uint64, error) {
	return s.parents[level][id], nil
}

func TestResolveFullChain(t *testing.T) {
	r := New(newTreeStore())
	f, err := r.Resolve(context.Background(),
		Segment{LevelProvince, 1},
		Segment{LevelDistrict, 10},
		Segment{LevelSector, 100},
		Segment{LevelCell, 1000},
	)
	require.NoError(t, err)
	require.Equal(t, Filter{Level: LevelCell, ID: 1000}, f)
	require.Equal(t, "cell_id", f.Level.Column())
}

func TestResolveSkipsLevels(t *testing.T) {
	r := New(newTreeStore())
	// Province straight to cell: the ancestor chain is climbed link by link.
	f, err := r.Resolve(context.Background(),
		Segment{LevelProvince, 1},
		Segment{LevelCell, 1000},
	)
	require.NoError(t, err)
	require.Equal(t, Filter{Level: LevelCell, ID: 1000}, f)
}

func TestResolveWrongParent(t *testing.T) {
	r := New(newTreeStore())
	// District 20 belongs to province 2, not 1.
	_, err := r.Resolve(context.Background(),
		Segment{LevelProvince, 1},
		Segment{LevelDistrict, 20},
	)
	require.ErrorIs(t, err, ErrPathMismatch)
}

func TestResolveUnknownSegment(t *testing.T) {
	r := New(newTreeStore())
	_, err := r.Resolve(context.Background(),
		Segment{LevelProvince, 1},
		Segment{LevelDistrict, 99},
	)
	require.ErrorIs(t, err, ErrSegmentNotFound)
}

func TestResolveRejectsInvertedLevels(t *testing.T) {
	r := New(newTreeStore())
	_, err := r.Resolve(context.Background(),
		Segment{LevelDistrict, 10},
		Segment{LevelProvince, 1},
	)
	require.ErrorIs(t, err, ErrPathMismatch)
}

func TestResolveEmptyAndZeroID(t *testing.T) {
	r := New(newTreeStore())

	f, err := r.Resolve(context.Background())
	require.NoError(t, err)
	require.True(t, f.IsZero())

	_, err = r.Resolve(context.Background(), Segment{LevelProvince, 0})
	require.ErrorIs(t, err, ErrSegmentNotFound)
}

func TestResolveFlatPicksDeepest(t *testing.T) {
	r := New(newTreeStore())
	ctx := context.Background()

	f, err := r.ResolveFlat(ctx, 1, 10, 100, 1000)
	require.NoError(t, err)
	require.Equal(t, Filter{Level: LevelCell, ID: 1000}, f)

	f, err = r.ResolveFlat(ctx, 1, 10, 100, 0)
	require.NoError(t, err)
	require.Equal(t, Filter{Level: LevelSector, ID: 100}, f)

	f, err = r.ResolveFlat(ctx, 1, 0, 0, 0)
	require.NoError(t, err)
	require.Equal(t, Filter{Level: LevelProvince, ID: 1}, f)

	f, err = r.ResolveFlat(ctx, 0, 0, 0, 0)
	require.NoError(t, err)
	require.True(t, f.IsZero())
}

// Flat parameters must behave like the equivalent nested path: a district
// under a different province cannot slip through by being the deeper id.
func TestResolveFlatRejectsInconsistentChain(t *testing.T) {
	r := New(newTreeStore())
	ctx := context.Background()

	_, err := r.ResolveFlat(ctx, 1, 20, 0, 0)
	require.ErrorIs(t, err, ErrPathMismatch)

	_, err = r.ResolveFlat(ctx, 2, 0, 100, 0)
	require.ErrorIs(t, err, ErrPathMismatch)

	_, err = r.ResolveFlat(ctx, 0, 99, 0, 0)
	require.ErrorIs(t, err, ErrSegmentNotFound)
}

package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func newGeoMock(t *testing.T) (*GeographyRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewGeographyRepo(db), mock
}

func TestValidateChainFullChain(t *testing.T) {
	repo, mock := newGeoMock(t)

	mock.ExpectQuery(`SELECT id, sector_id, name FROM cells`).
		WithArgs(uint64(1000)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "sector_id", "name"}).AddRow(1000, 100, "Kamatamu"))
	mock.ExpectQuery(`SELECT id, district_id, name FROM sectors`).
		WithArgs(uint64(100)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "district_id", "name"}).AddRow(100, 10, "Gisozi"))
	mock.ExpectQuery(`SELECT id, province_id, name FROM districts`).
		WithArgs(uint64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "province_id", "name"}).AddRow(10, 1, "Gasabo"))

	err := repo.ValidateChain(context.Background(), 1, 10, 100, 1000)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateChainBrokenLink(t *testing.T) {
	repo, mock := newGeoMock(t)

	// Cell 1000 claims sector 100 but the caller supplied sector 200.
	mock.ExpectQuery(`SELECT id, sector_id, name FROM cells`).
		WithArgs(uint64(1000)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "sector_id", "name"}).AddRow(1000, 100, "Kamatamu"))

	err := repo.ValidateChain(context.Background(), 0, 0, 200, 1000)
	require.ErrorIs(t, err, ErrInconsistentHierarchy)
}

func TestValidateChainSkippedLevel(t *testing.T) {
	repo, mock := newGeoMock(t)

	// Sector given with province only; the district link is climbed
	// implicitly through the sector's district.
	mock.ExpectQuery(`SELECT id, district_id, name FROM sectors`).
		WithArgs(uint64(100)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "district_id", "name"}).AddRow(100, 10, "Gisozi"))
	mock.ExpectQuery(`SELECT id, province_id, name FROM districts`).
		WithArgs(uint64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "province_id", "name"}).AddRow(10, 2, "Nyarugenge"))

	err := repo.ValidateChain(context.Background(), 1, 0, 100, 0)
	require.ErrorIs(t, err, ErrInconsistentHierarchy)
}

func TestValidateChainUnknownNode(t *testing.T) {
	repo, mock := newGeoMock(t)

	mock.ExpectQuery(`SELECT id, sector_id, name FROM cells`).
		WithArgs(uint64(9999)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "sector_id", "name"}))

	err := repo.ValidateChain(context.Background(), 0, 0, 0, 9999)
	require.ErrorIs(t, err, ErrNodeNotFound)
}

func TestValidateChainProvinceOnly(t *testing.T) {
	repo, mock := newGeoMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM provinces`).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	require.NoError(t, repo.ValidateChain(context.Background(), 1, 0, 0, 0))
}

func TestValidateChainEmptyIsValid(t *testing.T) {
	repo, _ := newGeoMock(t)
	require.NoError(t, repo.ValidateChain(context.Background(), 0, 0, 0, 0))
}

func TestDeleteProvinceBlockedByChildren(t *testing.T) {
	repo, mock := newGeoMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM districts WHERE province_id`).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(3))

	err := repo.DeleteProvince(context.Background(), 1)
	require.ErrorIs(t, err, ErrHasDependents)
}

func TestDeleteProvinceBlockedByReferences(t *testing.T) {
	repo, mock := newGeoMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM districts WHERE province_id`).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery(`SELECT \(SELECT COUNT\(\*\) FROM properties`).
		WithArgs(uint64(1), uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(2))

	err := repo.DeleteProvince(context.Background(), 1)
	require.ErrorIs(t, err, ErrReferencedByResource)
}

func TestDeleteProvinceSuccess(t *testing.T) {
	repo, mock := newGeoMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM districts WHERE province_id`).
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery(`SELECT \(SELECT COUNT\(\*\) FROM properties`).
		WithArgs(uint64(1), uint64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec(`DELETE FROM provinces WHERE id`).
		WithArgs(uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteProvince(context.Background(), 1))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProvinceNotFound(t *testing.T) {
	repo, mock := newGeoMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM districts WHERE province_id`).
		WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery(`SELECT \(SELECT COUNT\(\*\) FROM properties`).
		WithArgs(uint64(404), uint64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec(`DELETE FROM provinces WHERE id`).
		WithArgs(uint64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteProvince(context.Background(), 404)
	require.ErrorIs(t, err, ErrNodeNotFound)
}

func TestCreateDistrictUnknownProvince(t *testing.T) {
	repo, mock := newGeoMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM provinces`).
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))

	_, err := repo.CreateDistrict(context.Background(), 99, "Gasabo")
	require.ErrorIs(t, err, ErrNodeNotFound)
}

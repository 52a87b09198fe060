package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var errMockBoom = errors.New("boom")

func newPropertyMock(t *testing.T) (*PropertyRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPropertyRepo(db), mock
}

func TestCreatePropertyWithImages(t *testing.T) {
	repo, mock := newPropertyMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO properties`).
		WillReturnResult(sqlmock.NewResult(31, 1))
	mock.ExpectExec(`INSERT INTO property_images`).
		WithArgs(uint64(31), "properties/a.jpg").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO property_images`).
		WithArgs(uint64(31), "properties/b.png").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectQuery(`SELECT pub_date, created_at FROM properties`).
		WithArgs(uint64(31)).
		WillReturnRows(sqlmock.NewRows([]string{"pub_date", "created_at"}).
			AddRow("2026-08-30 10:00:00", "2026-08-30 10:00:00"))
	mock.ExpectCommit()

	p := &Property{
		LandlordID:     5,
		PropertyTypeID: 2,
		Title:          "Two bedroom in Gisozi",
		Bedrooms:       2,
		Bathrooms:      1,
		RentingPrice:   "250000.00",
		ProvinceID:     1,
		DistrictID:     10,
		SectorID:       100,
		CellID:         1000,
	}
	err := repo.Create(context.Background(), p, []string{"properties/a.jpg", "properties/b.png"})
	require.NoError(t, err)
	require.Equal(t, uint64(31), p.ID)
	require.NotEmpty(t, p.PubDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePropertyRollsBackOnImageFailure(t *testing.T) {
	repo, mock := newPropertyMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO properties`).
		WillReturnResult(sqlmock.NewResult(31, 1))
	mock.ExpectExec(`INSERT INTO property_images`).
		WillReturnError(errMockBoom)
	mock.ExpectRollback()

	p := &Property{LandlordID: 5, PropertyTypeID: 2, Title: "x", RentingPrice: "1"}
	err := repo.Create(context.Background(), p, []string{"properties/a.jpg"})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceImagesAtomic(t *testing.T) {
	repo, mock := newPropertyMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM property_images WHERE property_id`).
		WithArgs(uint64(31)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`INSERT INTO property_images`).
		WithArgs(uint64(31), "properties/new.jpg").
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectCommit()

	err := repo.ReplaceImages(context.Background(), 31, []string{"properties/new.jpg"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceImagesRollsBackOnInsertFailure(t *testing.T) {
	repo, mock := newPropertyMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM property_images WHERE property_id`).
		WithArgs(uint64(31)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`INSERT INTO property_images`).
		WillReturnError(errMockBoom)
	mock.ExpectRollback()

	err := repo.ReplaceImages(context.Background(), 31, []string{"properties/new.jpg"})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePropertyNotOwner(t *testing.T) {
	repo, mock := newPropertyMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT landlord_id FROM properties`).
		WithArgs(uint64(31)).
		WillReturnRows(sqlmock.NewRows([]string{"landlord_id"}).AddRow(7))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 31, 5)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestDeletePropertyBlockedByPayments(t *testing.T) {
	repo, mock := newPropertyMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT landlord_id FROM properties`).
		WithArgs(uint64(31)).
		WillReturnRows(sqlmock.NewRows([]string{"landlord_id"}).AddRow(5))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM publishing_payments`).
		WithArgs(uint64(31)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 31, 5)
	require.ErrorIs(t, err, ErrConflict)
}

func TestDeletePropertyCascadesImages(t *testing.T) {
	repo, mock := newPropertyMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT landlord_id FROM properties`).
		WithArgs(uint64(31)).
		WillReturnRows(sqlmock.NewRows([]string{"landlord_id"}).AddRow(5))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM publishing_payments`).
		WithArgs(uint64(31)).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectExec(`DELETE FROM property_images WHERE property_id`).
		WithArgs(uint64(31)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM properties WHERE id`).
		WithArgs(uint64(31)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 31, 5))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStatusOwnerScoped(t *testing.T) {
	repo, mock := newPropertyMock(t)

	mock.ExpectExec(`UPDATE properties SET status`).
		WithArgs(true, uint64(31), uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetStatus(context.Background(), 31, 5, true))

	mock.ExpectExec(`UPDATE properties SET status`).
		WithArgs(true, uint64(31), uint64(6)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.SetStatus(context.Background(), 31, 6, true)
	require.ErrorIs(t, err, ErrPropertyNotFound)
}

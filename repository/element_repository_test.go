package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visual-product-builder/db"
	"visual-product-builder/models"
)

func setupMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	prev := db.DB
	db.DB = mockDB
	t.Cleanup(func() {
		mockDB.Close()
		db.DB = prev
	})
	return mock
}

func elementRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "category", "color_label", "color_hex", "image_ref",
		"price", "sort_order", "is_svg", "is_active", "collection_id", "created_at",
	})
}

func TestElementGetByID(t *testing.T) {
	mock := setupMockDB(t)
	repo := NewElementRepository()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + elementColumns + ` FROM elements WHERE id = $1`)).
		WithArgs(1).
		WillReturnRows(elementRows().AddRow(1, "A", "letter", "blue", "#0000ff", "ref-1", 200, 1, false, true, nil, "2026-08-01"))

	e, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "A", e.Name)
	assert.Equal(t, int64(200), e.Price)
	assert.True(t, e.IsActive)
	assert.Nil(t, e.CollectionID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestElementGetByIDNotFound(t *testing.T) {
	mock := setupMockDB(t)
	repo := NewElementRepository()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + elementColumns + ` FROM elements WHERE id = $1`)).
		WithArgs(99).
		WillReturnRows(elementRows())

	e, err := repo.GetByID(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, e)
}

func TestElementListFilters(t *testing.T) {
	mock := setupMockDB(t)
	repo := NewElementRepository()

	category := "Letter"
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + elementColumns + ` FROM elements WHERE category = $1 AND is_active = true ORDER BY sort_order ASC, id ASC`)).
		WithArgs("letter").
		WillReturnRows(elementRows().
			AddRow(1, "A", "letter", "blue", "#0000ff", "ref-1", 200, 1, false, true, nil, "2026-08-01").
			AddRow(2, "B", "letter", "beige", "#eeddcc", "ref-2", 300, 2, false, true, 5, "2026-08-01"))

	elements, err := repo.List(context.Background(), ElementFilterParams{Category: &category, ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, elements, 2)
	require.NotNil(t, elements[1].CollectionID)
	assert.Equal(t, 5, *elements[1].CollectionID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestElementInsert(t *testing.T) {
	mock := setupMockDB(t)
	repo := NewElementRepository()

	mock.ExpectQuery("INSERT INTO elements").
		WithArgs("A", "letter", "blue", "#0000ff", "ref-1", int64(200), 1, false, true, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	id, err := repo.Insert(context.Background(), &models.SaveElementRequest{
		Name: "A", Category: "LETTER", ColorLabel: "blue", ColorHex: "#0000ff",
		ImageRef: "ref-1", Price: 200, SortOrder: 1, IsActive: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, id)
}

func TestElementUpdateMissing(t *testing.T) {
	mock := setupMockDB(t)
	repo := NewElementRepository()

	mock.ExpectExec("UPDATE elements").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), 99, &models.SaveElementRequest{Name: "A", Category: "letter"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestElementDelete(t *testing.T) {
	mock := setupMockDB(t)
	repo := NewElementRepository()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM elements WHERE id = $1`)).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestElementBulkPriceAmount(t *testing.T) {
	mock := setupMockDB(t)
	repo := NewElementRepository()

	amount := int64(50)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE elements SET price = GREATEST(price + $1, 0) WHERE category = $2`)).
		WithArgs(amount, "letter").
		WillReturnResult(sqlmock.NewResult(0, 12))

	n, err := repo.BulkPrice(context.Background(), &models.BulkPriceRequest{Category: "letter", Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}

func TestElementBulkPricePercent(t *testing.T) {
	mock := setupMockDB(t)
	repo := NewElementRepository()

	percent := 10.0
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE elements SET price = GREATEST(ROUND(price * $1), 0)`)).
		WithArgs(1.1).
		WillReturnResult(sqlmock.NewResult(0, 30))

	n, err := repo.BulkPrice(context.Background(), &models.BulkPriceRequest{Percent: &percent})
	require.NoError(t, err)
	assert.Equal(t, 30, n)
}

func TestElementBulkPriceValidation(t *testing.T) {
	setupMockDB(t)
	repo := NewElementRepository()

	_, err := repo.BulkPrice(context.Background(), &models.BulkPriceRequest{Category: "letter"})
	require.Error(t, err)

	amount := int64(50)
	percent := 10.0
	_, err = repo.BulkPrice(context.Background(), &models.BulkPriceRequest{Amount: &amount, Percent: &percent})
	require.Error(t, err)
}

func TestElementInsertImportIsInactiveAndUnpriced(t *testing.T) {
	mock := setupMockDB(t)
	repo := NewElementRepository()

	mock.ExpectQuery("INSERT INTO elements").
		WithArgs("A", "letter", "blue", "", "drive-file-1", int64(0), 0, false, false, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	id, err := repo.InsertImport(context.Background(), &models.ElementImport{
		DriveFileID: "drive-file-1", Name: "A", Category: "letter", ColorLabel: "blue",
	})
	require.NoError(t, err)
	assert.Equal(t, 11, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smallbooks/backend/internal/domain/books"
	"github.com/smallbooks/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestGormDocumentRepository_FindByID(t *testing.T) {
	t.Run("finds existing document", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormDocumentRepository(db)

		companyID := uuid.New()
		documentID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "company_id", "kind", "document_number", "amount", "paid_amount", "remaining_amount", "status"}).
			AddRow(documentID, companyID, "SALE", "INV-001", decimal.NewFromInt(100), decimal.Zero, decimal.NewFromInt(100), "PENDING")

		mock.ExpectQuery(`SELECT \* FROM "documents" WHERE \(?company_id = \$1 AND kind = \$2 AND id = \$3\)? AND "documents"\."deleted_at" IS NULL ORDER BY .* LIMIT .*`).
			WithArgs(companyID, books.KindSale, documentID, 1).
			WillReturnRows(rows)

		doc, err := repo.FindByID(context.Background(), companyID, books.KindSale, documentID)

		require.NoError(t, err)
		assert.Equal(t, documentID, doc.ID)
		assert.Equal(t, "INV-001", doc.DocumentNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing row to not found", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormDocumentRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "documents" WHERE .*`).
			WillReturnError(gorm.ErrRecordNotFound)

		doc, err := repo.FindByID(context.Background(), uuid.New(), books.KindExpense, uuid.New())

		assert.Nil(t, doc)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormDocumentRepository_FindByIDForUpdate(t *testing.T) {
	t.Run("takes a row lock", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormDocumentRepository(db)

		companyID := uuid.New()
		documentID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "company_id", "kind", "document_number", "amount", "paid_amount", "remaining_amount", "status"}).
			AddRow(documentID, companyID, "PURCHASE", "BILL-7", decimal.NewFromInt(250), decimal.Zero, decimal.NewFromInt(250), "PENDING")

		mock.ExpectQuery(`SELECT \* FROM "documents" WHERE .* FOR UPDATE`).
			WithArgs(companyID, books.KindPurchase, documentID, 1).
			WillReturnRows(rows)

		doc, err := repo.FindByIDForUpdate(context.Background(), companyID, books.KindPurchase, documentID)

		require.NoError(t, err)
		assert.Equal(t, documentID, doc.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormDocumentRepository_SoftDelete(t *testing.T) {
	t.Run("records who deleted", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormDocumentRepository(db)

		doc := &books.Document{}
		doc.ID = uuid.New()
		deletedBy := uuid.New()

		mock.ExpectExec(`UPDATE "documents" SET .*"deleted_at".*"deleted_by".*`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.SoftDelete(context.Background(), doc, deletedBy))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports missing row", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormDocumentRepository(db)

		doc := &books.Document{}
		doc.ID = uuid.New()

		mock.ExpectExec(`UPDATE "documents" SET .*`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SoftDelete(context.Background(), doc, uuid.New())
		assert.Equal(t, shared.ErrNotFound, err)
	})
}

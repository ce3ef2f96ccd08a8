package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/smallbooks/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGormBankAccountRepository_FindByIDForUpdate(t *testing.T) {
	t.Run("takes a row lock", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormBankAccountRepository(db)

		companyID := uuid.New()
		accountID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "company_id", "name", "current_balance"}).
			AddRow(accountID, companyID, "Operating Account", decimal.NewFromInt(1000))

		mock.ExpectQuery(`SELECT \* FROM "bank_accounts" WHERE company_id = \$1 AND id = \$2 ORDER BY .* FOR UPDATE`).
			WithArgs(companyID, accountID, 1).
			WillReturnRows(rows)

		account, err := repo.FindByIDForUpdate(context.Background(), companyID, accountID)

		require.NoError(t, err)
		assert.Equal(t, accountID, account.ID)
		assert.True(t, account.CurrentBalance.Equal(decimal.NewFromInt(1000)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing row to not found", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormBankAccountRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "bank_accounts" WHERE .* FOR UPDATE`).
			WillReturnError(gorm.ErrRecordNotFound)

		account, err := repo.FindByIDForUpdate(context.Background(), uuid.New(), uuid.New())

		assert.Nil(t, account)
		assert.Equal(t, shared.ErrNotFound, err)
	})
}

func TestGormBankAccountRepository_ExistsForCompany(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewGormBankAccountRepository(db)

	companyID := uuid.New()
	accountID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "bank_accounts" WHERE company_id = \$1 AND id = \$2`).
		WithArgs(companyID, accountID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.ExistsForCompany(context.Background(), companyID, accountID)

	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

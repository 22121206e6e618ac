package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/accountsvc/account-service/internal/database"
	"github.com/accountsvc/account-service/internal/models"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var accountColumns = []string{"id", "name", "email", "address", "phone_number", "date_joined"}

var fixedNow = time.Date(2024, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestRepo(t *testing.T) (*AccountWriteRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = sqldb.Close()
	})

	repo := NewAccountWriteRepository(database.New(sqldb, time.Second))
	repo.now = func() time.Time { return fixedNow }
	return repo, mock
}

func strPtr(s string) *string { return &s }

func TestEnsureSchema(t *testing.T) {
	repo, mock := newTestRepo(t)
	mock.ExpectExec(sqlCreateTable).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
}

func TestCreate(t *testing.T) {
	repo, mock := newTestRepo(t)
	today := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(sqlInsertAccount).
		WithArgs("Ann", "ann@example.com", "1 Main St", "555-0100", today).
		WillReturnRows(sqlmock.NewRows([]string{"id", "date_joined"}).AddRow(int64(42), today))
	mock.ExpectCommit()

	account := &models.Account{
		ID:          999,
		Name:        "Ann",
		Email:       "ann@example.com",
		Address:     "1 Main St",
		PhoneNumber: strPtr("555-0100"),
	}
	require.NoError(t, repo.Create(context.Background(), account))

	assert.Equal(t, int64(42), account.ID)
	assert.Equal(t, today, account.DateJoined)
}

func TestCreate_DateJoinedIsUTCDate(t *testing.T) {
	repo, mock := newTestRepo(t)
	// 23:30 on the 14th in New York is already the 15th in UTC.
	repo.now = func() time.Time {
		return time.Date(2024, 3, 14, 23, 30, 0, 0, time.FixedZone("EDT", -4*60*60))
	}
	utcToday := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(sqlInsertAccount).
		WithArgs("Ann", "ann@example.com", "1 Main St", nil, utcToday).
		WillReturnRows(sqlmock.NewRows([]string{"id", "date_joined"}).AddRow(int64(1), utcToday))
	mock.ExpectCommit()

	account := &models.Account{Name: "Ann", Email: "ann@example.com", Address: "1 Main St"}
	require.NoError(t, repo.Create(context.Background(), account))
	assert.Equal(t, utcToday, account.DateJoined)
}

func TestCreate_NullPhoneNumber(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(sqlInsertAccount).
		WithArgs("Ann", "ann@example.com", "1 Main St", nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "date_joined"}).AddRow(int64(1), fixedNow))
	mock.ExpectCommit()

	account := &models.Account{Name: "Ann", Email: "ann@example.com", Address: "1 Main St"}
	require.NoError(t, repo.Create(context.Background(), account))
	assert.Equal(t, int64(1), account.ID)
}

func TestCreate_StoreRejectsWrite(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(sqlInsertAccount).
		WillReturnError(&pq.Error{Code: "23502", Message: "null value in column \"name\""})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Account{Name: "Ann"})
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, database.ErrNotNullViolation)
}

func TestFindByID(t *testing.T) {
	repo, mock := newTestRepo(t)
	joined := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(sqlSelectAccount).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(accountColumns).
			AddRow(int64(7), "Ann", "ann@example.com", "1 Main St", nil, joined))

	account, err := repo.FindByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, &models.Account{
		ID: 7, Name: "Ann", Email: "ann@example.com", Address: "1 Main St", DateJoined: joined,
	}, account)
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)
	mock.ExpectQuery(sqlSelectAccount).
		WithArgs(int64(101)).
		WillReturnRows(sqlmock.NewRows(accountColumns))

	_, err := repo.FindByID(context.Background(), 101)
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.NotErrorIs(t, err, ErrPersistence)
}

func TestFindByID_StoreFailure(t *testing.T) {
	repo, mock := newTestRepo(t)
	mock.ExpectQuery(sqlSelectAccount).
		WithArgs(int64(1)).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.FindByID(context.Background(), 1)
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestList(t *testing.T) {
	repo, mock := newTestRepo(t)
	joined := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(sqlListAccounts).
		WillReturnRows(sqlmock.NewRows(accountColumns).
			AddRow(int64(1), "Ann", "ann@example.com", "1 Main St", "555-0100", joined).
			AddRow(int64(2), "Bob", "bob@example.com", "2 Main St", nil, joined))

	accounts, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, int64(1), accounts[0].ID)
	assert.Equal(t, "555-0100", *accounts[0].PhoneNumber)
	assert.Equal(t, int64(2), accounts[1].ID)
	assert.Nil(t, accounts[1].PhoneNumber)
}

func TestList_Empty(t *testing.T) {
	repo, mock := newTestRepo(t)
	mock.ExpectQuery(sqlListAccounts).WillReturnRows(sqlmock.NewRows(accountColumns))

	accounts, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, accounts)
	assert.Empty(t, accounts)
}

func TestUpdate(t *testing.T) {
	repo, mock := newTestRepo(t)
	joined := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(sqlUpdateAccount).
		WithArgs(int64(5), "Ann B", "annb@example.com", "9 High St", nil).
		WillReturnRows(sqlmock.NewRows(accountColumns).
			AddRow(int64(5), "Ann B", "annb@example.com", "9 High St", nil, joined))
	mock.ExpectCommit()

	account := &models.Account{ID: 5, Name: "Ann B", Email: "annb@example.com", Address: "9 High St"}
	require.NoError(t, repo.Update(context.Background(), account))
	assert.Equal(t, joined, account.DateJoined)
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(sqlUpdateAccount).
		WithArgs(int64(101), "Ann", "ann@example.com", "1 Main St", nil).
		WillReturnRows(sqlmock.NewRows(accountColumns))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), &models.Account{
		ID: 101, Name: "Ann", Email: "ann@example.com", Address: "1 Main St",
	})
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestUpdate_StoreFailureRollsBack(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(sqlUpdateAccount).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	account := &models.Account{ID: 5, Name: "Ann"}
	err := repo.Update(context.Background(), account)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Equal(t, "Ann", account.Name)
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
	}{
		{name: "existing row", affected: 1},
		{name: "missing row is a no-op", affected: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newTestRepo(t)
			mock.ExpectBegin()
			mock.ExpectExec(sqlDeleteAccount).
				WithArgs(int64(3)).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))
			mock.ExpectCommit()

			assert.NoError(t, repo.Delete(context.Background(), 3))
		})
	}
}

func TestDelete_StoreFailureRollsBack(t *testing.T) {
	repo, mock := newTestRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec(sqlDeleteAccount).WithArgs(int64(3)).WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.Delete(context.Background(), 3), ErrPersistence)
}

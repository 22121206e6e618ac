package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/accountsvc/account-service/internal/database"
	"github.com/accountsvc/account-service/internal/models"
)

var (
	// ErrAccountNotFound is returned when no row has the requested id.
	ErrAccountNotFound = errors.New("account not found")
	// ErrPersistence wraps any failure of the underlying store. The
	// surrounding transaction has been rolled back when it is returned.
	ErrPersistence = errors.New("account persistence failed")
)

const (
	sqlCreateTable = `
		CREATE TABLE IF NOT EXISTS accounts (
			id           BIGSERIAL PRIMARY KEY,
			name         VARCHAR(64)  NOT NULL,
			email        VARCHAR(64)  NOT NULL,
			address      VARCHAR(256) NOT NULL,
			phone_number VARCHAR(32),
			date_joined  DATE NOT NULL DEFAULT CURRENT_DATE
		)`

	sqlInsertAccount = `
		INSERT INTO accounts (name, email, address, phone_number, date_joined)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, date_joined`

	sqlSelectAccount = `
		SELECT id, name, email, address, phone_number, date_joined
		FROM accounts
		WHERE id = $1`

	sqlListAccounts = `
		SELECT id, name, email, address, phone_number, date_joined
		FROM accounts
		ORDER BY id ASC`

	sqlUpdateAccount = `
		UPDATE accounts
		SET name = $2, email = $3, address = $4, phone_number = $5
		WHERE id = $1
		RETURNING id, name, email, address, phone_number, date_joined`

	sqlDeleteAccount = `DELETE FROM accounts WHERE id = $1`
)

// AccountWriteRepository is the only component that reads and writes the
// accounts table. Every write runs in its own scoped transaction.
type AccountWriteRepository struct {
	db  *database.DB
	now func() time.Time
}

func NewAccountWriteRepository(db *database.DB) *AccountWriteRepository {
	return &AccountWriteRepository{db: db, now: time.Now}
}

// EnsureSchema creates the accounts table when it does not exist yet.
func (r *AccountWriteRepository) EnsureSchema(ctx context.Context) error {
	const op = "repository.EnsureSchema"

	if _, err := r.db.Exec(ctx, sqlCreateTable); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
	}
	return nil
}

// Create inserts account and fills in the generated ID. DateJoined defaults to
// today when zero.
func (r *AccountWriteRepository) Create(ctx context.Context, account *models.Account) error {
	const op = "repository.Create"

	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	if account.DateJoined.IsZero() {
		account.DateJoined = truncateToDate(r.now())
	}

	err := r.db.ExecTx(ctx, func(tx *database.Tx) error {
		return tx.QueryRow(ctx, sqlInsertAccount,
			account.Name, account.Email, account.Address,
			nullString(account.PhoneNumber), account.DateJoined,
		).Scan(&account.ID, &account.DateJoined)
	})
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
	}
	return nil
}

// FindByID returns the account with the given id or ErrAccountNotFound.
func (r *AccountWriteRepository) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	const op = "repository.FindByID"

	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	account, err := scanAccount(r.db.QueryRow(ctx, sqlSelectAccount, id))
	if database.IsNotFound(err) {
		return nil, fmt.Errorf("%s: %w", op, ErrAccountNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
	}
	return account, nil
}

// List returns every account ordered by id. The slice is empty, never nil,
// when the table has no rows.
func (r *AccountWriteRepository) List(ctx context.Context) ([]models.Account, error) {
	const op = "repository.List"

	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	rows, err := r.db.Query(ctx, sqlListAccounts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
	}
	defer rows.Close()

	accounts := make([]models.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
	}
	return accounts, nil
}

// Update replaces the mutable fields of an existing row and reloads account
// from the stored values, so ID and DateJoined reflect the database.
func (r *AccountWriteRepository) Update(ctx context.Context, account *models.Account) error {
	const op = "repository.Update"

	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	var updated *models.Account
	err := r.db.ExecTx(ctx, func(tx *database.Tx) error {
		var err error
		updated, err = scanAccount(tx.QueryRow(ctx, sqlUpdateAccount,
			account.ID, account.Name, account.Email, account.Address,
			nullString(account.PhoneNumber),
		))
		return err
	})
	if database.IsNotFound(err) {
		return fmt.Errorf("%s: %w", op, ErrAccountNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
	}
	*account = *updated
	return nil
}

// Delete removes the row with the given id. Deleting a missing row is not an
// error.
func (r *AccountWriteRepository) Delete(ctx context.Context, id int64) error {
	const op = "repository.Delete"

	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	err := r.db.ExecTx(ctx, func(tx *database.Tx) error {
		_, err := tx.Exec(ctx, sqlDeleteAccount, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (*models.Account, error) {
	var (
		account models.Account
		phone   sql.NullString
	)
	err := row.Scan(
		&account.ID, &account.Name, &account.Email, &account.Address,
		&phone, &account.DateJoined,
	)
	if err != nil {
		return nil, err
	}
	if phone.Valid {
		account.PhoneNumber = &phone.String
	}
	return &account, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// truncateToDate returns midnight UTC of t's UTC calendar date.
func truncateToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

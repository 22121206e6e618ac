package query

import (
	"context"
	"fmt"
	"testing"

	"github.com/accountsvc/account-service/internal/cqrs"
	"github.com/accountsvc/account-service/internal/models"
	"github.com/accountsvc/account-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReader struct {
	getFn  func(int64) (*models.Account, error)
	listFn func() ([]models.Account, error)
}

func (m *mockReader) GetByID(_ context.Context, id int64) (*models.Account, error) {
	if m.getFn != nil {
		return m.getFn(id)
	}
	return nil, fmt.Errorf("not configured")
}

func (m *mockReader) List(_ context.Context) ([]models.Account, error) {
	if m.listFn != nil {
		return m.listFn()
	}
	return nil, fmt.Errorf("not configured")
}

func TestGetAccount(t *testing.T) {
	reader := &mockReader{getFn: func(id int64) (*models.Account, error) {
		if id == 1 {
			return &models.Account{ID: 1, Name: "Ann"}, nil
		}
		return nil, fmt.Errorf("reader: %w", repository.ErrAccountNotFound)
	}}
	svc := NewAccountQueryService(reader)

	account, err := svc.GetAccount(context.Background(), cqrs.GetAccountQuery{ID: 1})
	require.NoError(t, err)
	assert.Equal(t, "Ann", account.Name)

	_, err = svc.GetAccount(context.Background(), cqrs.GetAccountQuery{ID: 101})
	assert.ErrorIs(t, err, repository.ErrAccountNotFound)
}

func TestListAccounts(t *testing.T) {
	reader := &mockReader{listFn: func() ([]models.Account, error) {
		return []models.Account{{ID: 1}, {ID: 2}}, nil
	}}
	svc := NewAccountQueryService(reader)

	accounts, err := svc.ListAccounts(context.Background(), cqrs.ListAccountsQuery{})
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, int64(1), accounts[0].ID)
	assert.Equal(t, int64(2), accounts[1].ID)
}

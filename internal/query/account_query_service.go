package query

import (
	"context"

	"github.com/accountsvc/account-service/internal/cqrs"
	"github.com/accountsvc/account-service/internal/models"
)

// AccountReader is the read side consumed by AccountQueryService.
type AccountReader interface {
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	List(ctx context.Context) ([]models.Account, error)
}

type AccountQueryService struct {
	readRepo AccountReader
}

func NewAccountQueryService(readRepo AccountReader) *AccountQueryService {
	return &AccountQueryService{readRepo: readRepo}
}

// GetAccount returns repository.ErrAccountNotFound for an unknown id.
func (s *AccountQueryService) GetAccount(ctx context.Context, q cqrs.GetAccountQuery) (*models.Account, error) {
	return s.readRepo.GetByID(ctx, q.ID)
}

func (s *AccountQueryService) ListAccounts(ctx context.Context, _ cqrs.ListAccountsQuery) ([]models.Account, error) {
	return s.readRepo.List(ctx)
}

package command

import (
	"context"
	"log/slog"

	"github.com/accountsvc/account-service/internal/cqrs"
	"github.com/accountsvc/account-service/internal/events"
	"github.com/accountsvc/account-service/internal/models"
)

// AccountWriter is the persistence gateway as seen by the write side.
type AccountWriter interface {
	FindByID(ctx context.Context, id int64) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id int64) error
}

// AccountViewCache keeps the read model in step with committed writes.
type AccountViewCache interface {
	CacheAccount(ctx context.Context, account *models.Account)
	InvalidateAccount(ctx context.Context, id int64)
}

// EventPublisher appends domain events to the account event stream.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data any) error
}

// AccountCommandService writes account state and keeps the read model in sync.
// The publisher may be nil, in which case no events are emitted.
type AccountCommandService struct {
	writeRepo AccountWriter
	readRepo  AccountViewCache
	publisher EventPublisher
	log       *slog.Logger
}

func NewAccountCommandService(
	writeRepo AccountWriter,
	readRepo AccountViewCache,
	publisher EventPublisher,
	log *slog.Logger,
) *AccountCommandService {
	if log == nil {
		log = slog.Default()
	}
	return &AccountCommandService{
		writeRepo: writeRepo,
		readRepo:  readRepo,
		publisher: publisher,
		log:       log,
	}
}

// AccountExists returns repository.ErrAccountNotFound when id is not in the
// store. The read model is not consulted.
func (s *AccountCommandService) AccountExists(ctx context.Context, id int64) error {
	_, err := s.writeRepo.FindByID(ctx, id)
	return err
}

func (s *AccountCommandService) CreateAccount(ctx context.Context, cmd cqrs.CreateAccountCommand) (*models.Account, error) {
	account := &models.Account{
		Name:        cmd.Name,
		Email:       cmd.Email,
		Address:     cmd.Address,
		PhoneNumber: cmd.PhoneNumber,
	}
	if err := s.writeRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "account created", slog.Int64("account_id", account.ID))
	s.readRepo.CacheAccount(ctx, account)
	s.publish(ctx, events.AccountCreated, events.AccountCreatedEvent{
		ID:    account.ID,
		Name:  account.Name,
		Email: account.Email,
	})
	return account, nil
}

// UpdateAccount returns repository.ErrAccountNotFound when cmd.ID does not
// exist.
func (s *AccountCommandService) UpdateAccount(ctx context.Context, cmd cqrs.UpdateAccountCommand) (*models.Account, error) {
	account := &models.Account{
		ID:          cmd.ID,
		Name:        cmd.Name,
		Email:       cmd.Email,
		Address:     cmd.Address,
		PhoneNumber: cmd.PhoneNumber,
	}
	if err := s.writeRepo.Update(ctx, account); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "account updated", slog.Int64("account_id", account.ID))
	s.readRepo.CacheAccount(ctx, account)
	s.publish(ctx, events.AccountUpdated, events.AccountUpdatedEvent{
		ID:    account.ID,
		Name:  account.Name,
		Email: account.Email,
	})
	return account, nil
}

func (s *AccountCommandService) DeleteAccount(ctx context.Context, cmd cqrs.DeleteAccountCommand) error {
	if err := s.writeRepo.Delete(ctx, cmd.ID); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "account deleted", slog.Int64("account_id", cmd.ID))
	s.readRepo.InvalidateAccount(ctx, cmd.ID)
	s.publish(ctx, events.AccountDeleted, events.AccountDeletedEvent{ID: cmd.ID})
	return nil
}

// publish logs failures instead of returning them.
func (s *AccountCommandService) publish(ctx context.Context, eventType string, data any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, eventType, data); err != nil {
		s.log.WarnContext(ctx, "failed to publish event", slog.String("type", eventType), slog.Any("error", err))
	}
}

package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/accountsvc/account-service/internal/models"
	sharedredis "github.com/accountsvc/account-service/internal/redis"
	goredis "github.com/redis/go-redis/v9"
)

const accountViewKeyPrefix = "account:view:"

// accountCacheEntry is the Redis representation of an account.
type accountCacheEntry struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Address     string  `json:"address"`
	PhoneNumber *string `json:"phone_number"`
	DateJoined  string  `json:"date_joined"`
}

// AccountFinder is the read half of the persistence gateway.
type AccountFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Account, error)
	List(ctx context.Context) ([]models.Account, error)
}

// AccountReadRepository serves reads. Single-account lookups go through the
// Redis read model when one is configured and fall back to PostgreSQL,
// warming the cache on every cold read. Listing always hits PostgreSQL so its
// ordering and completeness come from the table.
type AccountReadRepository struct {
	finder AccountFinder
	cache  *sharedredis.ViewCache[accountCacheEntry]
}

// NewAccountReadRepository builds a read repository. A nil redisClient
// disables caching.
func NewAccountReadRepository(finder AccountFinder, redisClient *goredis.Client, ttl time.Duration) *AccountReadRepository {
	r := &AccountReadRepository{finder: finder}
	if redisClient != nil {
		r.cache = sharedredis.NewViewCache[accountCacheEntry](redisClient, accountViewKeyPrefix, ttl, nil)
	}
	return r
}

func (r *AccountReadRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	if r.cache == nil {
		return r.finder.FindByID(ctx, id)
	}

	entry, err := r.cache.Load(ctx, viewID(id), func(ctx context.Context) (*accountCacheEntry, error) {
		account, err := r.finder.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return toCacheEntry(account), nil
	})
	if err != nil {
		return nil, err
	}

	account, err := entry.toAccount()
	if err != nil {
		return r.finder.FindByID(ctx, id)
	}
	return account, nil
}

func (r *AccountReadRepository) List(ctx context.Context) ([]models.Account, error) {
	return r.finder.List(ctx)
}

// CacheAccount stores or refreshes the read model entry for account.
func (r *AccountReadRepository) CacheAccount(ctx context.Context, account *models.Account) {
	if r.cache == nil {
		return
	}
	r.cache.Set(ctx, viewID(account.ID), toCacheEntry(account))
}

// InvalidateAccount tombstones the read model entry of a deleted account so
// that no later cache write can restore it.
func (r *AccountReadRepository) InvalidateAccount(ctx context.Context, id int64) {
	if r.cache == nil {
		return
	}
	r.cache.Tombstone(ctx, viewID(id))
}

func viewID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func toCacheEntry(a *models.Account) *accountCacheEntry {
	return &accountCacheEntry{
		ID:          a.ID,
		Name:        a.Name,
		Email:       a.Email,
		Address:     a.Address,
		PhoneNumber: a.PhoneNumber,
		DateJoined:  a.DateJoined.Format(models.DateLayout),
	}
}

func (e *accountCacheEntry) toAccount() (*models.Account, error) {
	joined, err := time.Parse(models.DateLayout, e.DateJoined)
	if err != nil {
		return nil, err
	}
	return &models.Account{
		ID:          e.ID,
		Name:        e.Name,
		Email:       e.Email,
		Address:     e.Address,
		PhoneNumber: e.PhoneNumber,
		DateJoined:  joined,
	}, nil
}

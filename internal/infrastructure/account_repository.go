package infrastructure

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"adsight/internal/domain"
	"adsight/pkg/logger"
)

// AccountRepository is an in-memory implementation of
// domain.AccountRepository. The relational store behind it is an external
// collaborator; this keeps the read path the pipeline needs.
type AccountRepository struct {
	accounts map[string]domain.AdAccount
	mutex    sync.RWMutex
	logger   *logger.Logger
}

func NewAccountRepository(logger *logger.Logger) *AccountRepository {
	return &AccountRepository{
		accounts: make(map[string]domain.AdAccount),
		logger:   logger,
	}
}

func (r *AccountRepository) Upsert(ctx context.Context, account domain.AdAccount) error {
	if account.ID == "" {
		return fmt.Errorf("account id is required")
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.accounts[account.ID] = account
	r.logger.WithContext(ctx).WithField("account_id", account.ID).Debug("Stored ad account")
	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*domain.AdAccount, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	account, ok := r.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account %s: %w", id, domain.ErrNoActiveAccount)
	}
	return &account, nil
}

// GetActive returns the first active account in stable ID order.
func (r *AccountRepository) GetActive(ctx context.Context) (*domain.AdAccount, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	ids := make([]string, 0, len(r.accounts))
	for id := range r.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if account := r.accounts[id]; account.Active {
			return &account, nil
		}
	}
	return nil, domain.ErrNoActiveAccount
}

func (r *AccountRepository) List(ctx context.Context) ([]domain.AdAccount, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	accounts := make([]domain.AdAccount, 0, len(r.accounts))
	for _, account := range r.accounts {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

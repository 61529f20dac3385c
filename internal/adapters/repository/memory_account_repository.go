package repository

import (
	"context"
	"sync"

	"github.com/clearhaze/streak-engine/internal/core/domain"
)

type InMemoryAccountRepository struct {
	store map[string]*domain.Account

	mu sync.RWMutex
}

func NewInMemoryAccountRepository() *InMemoryAccountRepository {
	return &InMemoryAccountRepository{
		store: make(map[string]*domain.Account),
	}
}

func (r *InMemoryAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.store {
		if existing.Email == account.Email {
			return domain.ErrEmailAlreadyExists
		}
	}

	r.store[account.ID] = account
	return nil
}

func (r *InMemoryAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.store[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return account, nil
}

func (r *InMemoryAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, account := range r.store {
		if account.Email == email {
			return account, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

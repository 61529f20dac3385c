package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/clearhaze/streak-engine/internal/core/domain"
)

type AuthService struct {
	repo domain.AccountRepository
}

func NewAuthService(repo domain.AccountRepository) *AuthService {
	return &AuthService{
		repo: repo,
	}
}

type RegisterInput struct {
	Email    string
	Password string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.Account, error) {
	id := uuid.NewString()
	account, err := domain.NewAccount(id, input.Email)
	if err != nil {
		return nil, err
	}

	if err := account.SetPassword(input.Password); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, account); err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("auth service: failed to create account: %w", err)
	}

	return account, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Account, error) {
	account, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth service: failed to fetch account: %w", err)
	}

	if err := account.CheckPassword(password); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return account, nil
}

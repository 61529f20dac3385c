package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/clearhaze/streak-engine/internal/core/domain"
)

type MockAccountRepoForToken struct {
	mock.Mock
}

func (m *MockAccountRepoForToken) Create(ctx context.Context, account *domain.Account) error {
	return m.Called(ctx, account).Error(0)
}
func (m *MockAccountRepoForToken) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountRepoForToken) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func TestTokenService_GenerateAndValidate(t *testing.T) {
	secret := "super-secret-key-for-testing"
	issuer := "streak-engine-test"
	accountID := "account-123-uuid"

	setup := func() (*TokenService, *MockAccountRepoForToken) {
		mockRepo := new(MockAccountRepoForToken)
		return NewTokenService(secret, issuer, 1*time.Hour, mockRepo), mockRepo
	}

	t.Run("Success: Should generate and validate a token", func(t *testing.T) {
		service, mockRepo := setup()

		mockRepo.On("GetByID", mock.Anything, accountID).Return(&domain.Account{ID: accountID}, nil)

		tokenString, err := service.GenerateToken(accountID)
		assert.NoError(t, err)
		assert.NotEmpty(t, tokenString)

		extractedID, err := service.ValidateToken(tokenString)
		assert.NoError(t, err)
		assert.Equal(t, accountID, extractedID)

		mockRepo.AssertExpectations(t)
	})

	t.Run("Fail: Should reject valid token if account is deleted (store check)", func(t *testing.T) {
		service, mockRepo := setup()

		mockRepo.On("GetByID", mock.Anything, accountID).Return(nil, errors.New("account not found"))

		tokenString, err := service.GenerateToken(accountID)
		assert.NoError(t, err)

		extractedID, err := service.ValidateToken(tokenString)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "account no longer exists")
		assert.Empty(t, extractedID)

		mockRepo.AssertExpectations(t)
	})

	t.Run("Fail: Should reject expired token", func(t *testing.T) {
		mockRepo := new(MockAccountRepoForToken)
		service := NewTokenService(secret, issuer, -1*time.Second, mockRepo)

		tokenString, err := service.GenerateToken(accountID)
		assert.NoError(t, err)

		extractedID, err := service.ValidateToken(tokenString)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "token is expired")
		assert.Empty(t, extractedID)
	})

	t.Run("Fail: Should reject token with wrong secret (Tampered)", func(t *testing.T) {
		service, _ := setup()
		tokenString, _ := service.GenerateToken(accountID)

		mockRepoAttacker := new(MockAccountRepoForToken)
		attackerService := NewTokenService("wrong-key", issuer, 1*time.Hour, mockRepoAttacker)

		extractedID, err := attackerService.ValidateToken(tokenString)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid token")
		assert.Empty(t, extractedID)
	})

	t.Run("Fail: Should reject token with wrong issuer", func(t *testing.T) {
		mockRepo := new(MockAccountRepoForToken)
		serviceA := NewTokenService(secret, "correct-issuer", 1*time.Hour, mockRepo)
		tokenString, _ := serviceA.GenerateToken(accountID)

		serviceB := NewTokenService(secret, "wrong-issuer", 1*time.Hour, mockRepo)

		extractedID, err := serviceB.ValidateToken(tokenString)
		assert.Error(t, err)
		assert.Equal(t, "invalid token issuer", err.Error())
		assert.Empty(t, extractedID)
	})

	t.Run("Fail: Should reject 'None' algorithm attack", func(t *testing.T) {
		token := jwt.New(jwt.SigningMethodNone)
		claims := token.Claims.(jwt.MapClaims)
		claims["sub"] = accountID
		claims["iss"] = issuer

		fakeTokenString, _ := token.SignedString(jwt.UnsafeAllowNoneSignatureType)

		service, _ := setup()
		_, err := service.ValidateToken(fakeTokenString)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected signing method")
	})

	t.Run("Fail: Should reject malformed token string", func(t *testing.T) {
		service, _ := setup()

		extractedID, err := service.ValidateToken("this-is-not-a-jwt")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "invalid token")
		assert.Empty(t, extractedID)
	})
}

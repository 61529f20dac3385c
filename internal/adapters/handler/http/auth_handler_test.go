package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clearhaze/streak-engine/internal/core/domain"
	"github.com/clearhaze/streak-engine/internal/core/services"
)

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func setupAuthHandler() (*gin.Engine, *MockAccountRepository) {
	gin.SetMode(gin.TestMode)

	mockRepo := new(MockAccountRepository)
	authService := services.NewAuthService(mockRepo)
	tokenService := services.NewTokenService("handler-test-secret", "streak-engine-test", time.Hour, mockRepo)
	authHandler := NewAuthHandler(authService, tokenService)

	router := gin.New()
	authHandler.RegisterRoutes(router.Group(""))

	return router, mockRepo
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("Success: Should return 201 and created account (No Password)", func(t *testing.T) {
		router, mockRepo := setupAuthHandler()

		payload := map[string]string{
			"email":    "api_test@clearhaze.app",
			"password": "VeryStrongPassword1!",
		}
		body, _ := json.Marshal(payload)

		mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Account")).Return(nil)

		req, _ := http.NewRequest(http.MethodPost, "/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response accountResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, payload["email"], response.Email)
		assert.NotEmpty(t, response.ID)

		assert.NotContains(t, w.Body.String(), "password")

		mockRepo.AssertExpectations(t)
	})

	t.Run("Fail: Should return 400 for Bad JSON (Invalid Email)", func(t *testing.T) {
		router, mockRepo := setupAuthHandler()

		payload := map[string]string{
			"email":    "not-an-email",
			"password": "Password123!",
		}
		body, _ := json.Marshal(payload)

		req, _ := http.NewRequest(http.MethodPost, "/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockRepo.AssertNotCalled(t, "Create")
	})

	t.Run("Fail: Should return 400 for Bad JSON (Password too short)", func(t *testing.T) {
		router, mockRepo := setupAuthHandler()

		payload := map[string]string{
			"email":    "valid@email.com",
			"password": "short",
		}
		body, _ := json.Marshal(payload)

		req, _ := http.NewRequest(http.MethodPost, "/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockRepo.AssertNotCalled(t, "Create")
	})

	t.Run("Fail: Should return 409 Conflict if email exists", func(t *testing.T) {
		router, mockRepo := setupAuthHandler()

		payload := map[string]string{
			"email":    "duplicate@clearhaze.app",
			"password": "AnotherValidPassword!",
		}
		body, _ := json.Marshal(payload)

		mockRepo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrEmailAlreadyExists)

		req, _ := http.NewRequest(http.MethodPost, "/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "email already exists")
	})

	t.Run("Fail: Should return 500 Internal Server Error on store failure", func(t *testing.T) {
		router, mockRepo := setupAuthHandler()

		payload := map[string]string{
			"email":    "crash@clearhaze.app",
			"password": "AnotherValidPassword!",
		}
		body, _ := json.Marshal(payload)

		mockRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("db connection lost"))

		req, _ := http.NewRequest(http.MethodPost, "/auth/register", bytes.NewBuffer(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "internal server error")
	})
}

func TestAuthHandler_Login(t *testing.T) {
	newStoredAccount := func(t *testing.T, email, password string) *domain.Account {
		t.Helper()
		account, err := domain.NewAccount("acct-login", email)
		require.NoError(t, err)
		require.NoError(t, account.SetPassword(password))
		return account
	}

	t.Run("Success: Should return 200 with a token", func(t *testing.T) {
		router, mockRepo := setupAuthHandler()

		stored := newStoredAccount(t, "login@clearhaze.app", "VeryStrongPassword1!")
		mockRepo.On("GetByEmail", mock.Anything, "login@clearhaze.app").Return(stored, nil)

		body, _ := json.Marshal(map[string]string{
			"email":    "login@clearhaze.app",
			"password": "VeryStrongPassword1!",
		})

		req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.NotEmpty(t, response["token"])
	})

	t.Run("Fail: Should return 401 on wrong password", func(t *testing.T) {
		router, mockRepo := setupAuthHandler()

		stored := newStoredAccount(t, "login@clearhaze.app", "VeryStrongPassword1!")
		mockRepo.On("GetByEmail", mock.Anything, "login@clearhaze.app").Return(stored, nil)

		body, _ := json.Marshal(map[string]string{
			"email":    "login@clearhaze.app",
			"password": "WrongPassword!",
		})

		req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid credentials")
	})

	t.Run("Fail: Should return 401 on unknown email", func(t *testing.T) {
		router, mockRepo := setupAuthHandler()

		mockRepo.On("GetByEmail", mock.Anything, "ghost@clearhaze.app").Return(nil, domain.ErrAccountNotFound)

		body, _ := json.Marshal(map[string]string{
			"email":    "ghost@clearhaze.app",
			"password": "DoesNotMatter1!",
		})

		req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewBuffer(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid credentials")
	})
}

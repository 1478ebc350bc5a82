package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/cashier-backend/internal/domain"
	"github.com/DRSN-tech/cashier-backend/pkg/e"
	"github.com/DRSN-tech/cashier-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockHasher struct{ mock.Mock }

func (m *mockHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *mockHasher) Compare(hash, password string) (bool, error) {
	args := m.Called(hash, password)
	return args.Bool(0), args.Error(1)
}

type mockTokens struct{ mock.Mock }

func (m *mockTokens) Generate(account *domain.Account) (string, time.Time, error) {
	args := m.Called(account)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *mockTokens) Verify(token string) (*AuthClaims, error) {
	args := m.Called(token)
	claims, _ := args.Get(0).(*AuthClaims)
	return claims, args.Error(1)
}

func newAuthUC(store *memStore) (*AuthUseCase, *mockHasher, *mockTokens) {
	hasher := &mockHasher{}
	tokens := &mockTokens{}
	return NewAuthUC(&memAccountRepo{store}, hasher, tokens, logger.NewNopLogger()), hasher, tokens
}

func TestLogin_Success(t *testing.T) {
	store := newMemStore()
	store.addAccount(1, "cashier", "$hash")
	uc, hasher, tokens := newAuthUC(store)

	expires := time.Now().Add(6 * time.Hour)
	hasher.On("Compare", "$hash", "secret").Return(true, nil)
	tokens.On("Generate", mock.MatchedBy(func(a *domain.Account) bool { return a.ID == 1 })).
		Return("signed.jwt", expires, nil)

	res, err := uc.Login(context.Background(), &LoginReq{Username: "cashier", Password: "secret"})
	require.NoError(t, err)

	assert.Equal(t, "signed.jwt", res.Token)
	assert.Equal(t, expires, res.ExpiresAt)
	assert.Equal(t, "cashier", res.Account.Username)
	hasher.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestLogin_RejectsSameWay(t *testing.T) {
	store := newMemStore()
	store.addAccount(1, "cashier", "$hash")
	uc, hasher, tokens := newAuthUC(store)
	hasher.On("Compare", "$hash", "wrong").Return(false, nil)

	_, errWrongPassword := uc.Login(context.Background(), &LoginReq{Username: "cashier", Password: "wrong"})
	_, errUnknownUser := uc.Login(context.Background(), &LoginReq{Username: "ghost", Password: "wrong"})

	for _, err := range []error{errWrongPassword, errUnknownUser} {
		require.Error(t, err)
		assert.True(t, errors.Is(err, e.ErrInvalidCredentials))
		assert.Equal(t, map[string]string{"credentials": "Invalid Credentials!"}, fields(t, err))
	}
	tokens.AssertNotCalled(t, "Generate", mock.Anything)
}

func TestLogin_EmptyFields(t *testing.T) {
	uc, _, _ := newAuthUC(newMemStore())

	_, err := uc.Login(context.Background(), &LoginReq{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, e.ErrValidation))
	assert.Equal(t, map[string]string{
		"username": "Username cannot be empty!",
		"password": "Password cannot be empty!",
	}, fields(t, err))
}

func TestVerify(t *testing.T) {
	uc, _, tokens := newAuthUC(newMemStore())
	claims := &AuthClaims{AccountID: 1, Username: "cashier"}
	tokens.On("Verify", "good").Return(claims, nil)
	tokens.On("Verify", "expired").Return(nil, errors.New("token is expired"))

	got, err := uc.Verify(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, claims, got)

	_, err = uc.Verify(context.Background(), "expired")
	assert.True(t, errors.Is(err, e.ErrUnauthorized))

	_, err = uc.Verify(context.Background(), "")
	assert.True(t, errors.Is(err, e.ErrUnauthorized))
}

func TestCreateAccount(t *testing.T) {
	store := newMemStore()
	uc, hasher, _ := newAuthUC(store)
	hasher.On("Hash", "secret1").Return("$bcrypt", nil)

	a, err := uc.CreateAccount(context.Background(), &CreateAccountReq{Username: "cashier", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "$bcrypt", a.PasswordHash)

	_, err = uc.CreateAccount(context.Background(), &CreateAccountReq{Username: "cashier", Password: "secret1"})
	assert.Equal(t, map[string]string{"username": "Username already exists!"}, fields(t, err))

	_, err = uc.CreateAccount(context.Background(), &CreateAccountReq{Username: "other", Password: "123"})
	assert.Equal(t, map[string]string{"password": "Password must be at least 6 characters!"}, fields(t, err))
}

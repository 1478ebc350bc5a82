package usecase

import (
	"context"
	"errors"

	"github.com/DRSN-tech/cashier-backend/internal/domain"
	"github.com/DRSN-tech/cashier-backend/pkg/e"
	"github.com/DRSN-tech/cashier-backend/pkg/logger"
)

// AuthUseCase выдаёт и проверяет токены кассиров.
type AuthUseCase struct {
	accountRepo AccountRepository
	hasher      PasswordHasher
	tokens      TokenManager
	logger      logger.Logger
}

func NewAuthUC(accountRepo AccountRepository, hasher PasswordHasher, tokens TokenManager, logger logger.Logger) *AuthUseCase {
	return &AuthUseCase{
		accountRepo: accountRepo,
		hasher:      hasher,
		tokens:      tokens,
		logger:      logger,
	}
}

// Login проверяет пароль и выдаёт токен.
// Неизвестный пользователь и неверный пароль неразличимы для клиента.
func (a *AuthUseCase) Login(ctx context.Context, req *LoginReq) (*LoginRes, error) {
	const op = "AuthUseCase.Login"

	if err := validateReq(ctx, req); err != nil {
		return nil, e.Wrap(op, err)
	}

	account, err := a.accountRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, e.Wrap(op, invalidCredentials())
		}
		return nil, e.Wrap(op, err)
	}

	ok, err := a.hasher.Compare(account.PasswordHash, req.Password)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if !ok {
		a.logger.Debugf("login rejected: account_id=%d", account.ID)
		return nil, e.Wrap(op, invalidCredentials())
	}

	token, expiresAt, err := a.tokens.Generate(account)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return NewLoginRes(account, token, expiresAt), nil
}

// Verify проверяет подпись и срок действия токена.
func (a *AuthUseCase) Verify(_ context.Context, token string) (*AuthClaims, error) {
	const op = "AuthUseCase.Verify"

	if token == "" {
		return nil, e.Wrap(op, e.ErrUnauthorized)
	}

	claims, err := a.tokens.Verify(token)
	if err != nil {
		return nil, e.Wrap(op, errors.Join(e.ErrUnauthorized, err))
	}

	return claims, nil
}

// CreateAccount заводит учётную запись кассира с bcrypt-хэшем пароля.
func (a *AuthUseCase) CreateAccount(ctx context.Context, req *CreateAccountReq) (*domain.Account, error) {
	const op = "AuthUseCase.CreateAccount"

	err := validateReq(ctx, req, rule{field: "username", check: func(ctx context.Context) (string, error) {
		_, err := a.accountRepo.GetByUsername(ctx, req.Username)
		switch {
		case err == nil:
			return msgUsernameExists, nil
		case errors.Is(err, e.ErrNotFound):
			return "", nil
		default:
			return "", err
		}
	}})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	hash, err := a.hasher.Hash(req.Password)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	account, err := a.accountRepo.Create(ctx, domain.NewAccount(req.Username, hash))
	if err != nil {
		return nil, e.Wrap(op, nameConflict(err, "username", msgUsernameExists))
	}

	return account, nil
}

func invalidCredentials() error {
	return e.NewFieldError(e.ErrInvalidCredentials, "credentials", msgInvalidCredentials)
}

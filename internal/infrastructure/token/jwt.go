package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/DRSN-tech/cashier-backend/internal/cfg"
	"github.com/DRSN-tech/cashier-backend/internal/domain"
	"github.com/DRSN-tech/cashier-backend/internal/usecase"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Manager выпускает и проверяет HS256-токены, подписанные APP_KEY.
type Manager struct {
	key    []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewManager(cfg *cfg.AuthCfg) *Manager {
	return &Manager{
		key:    []byte(cfg.AppKey),
		ttl:    cfg.TokenTTL,
		issuer: cfg.Issuer,
		now:    time.Now,
	}
}

func (m *Manager) Generate(account *domain.Account) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: account.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   strconv.FormatInt(account.ID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	})

	signed, err := token.SignedString(m.key)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// Verify проверяет подпись, алгоритм, издателя и срок действия.
func (m *Manager) Verify(tokenString string) (*usecase.AuthClaims, error) {
	parsed := &claims{}
	_, err := jwt.ParseWithClaims(tokenString, parsed, func(*jwt.Token) (any, error) {
		return m.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	accountID, err := strconv.ParseInt(parsed.Subject, 10, 64)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	return &usecase.AuthClaims{
		AccountID: accountID,
		Username:  parsed.Username,
		ExpiresAt: parsed.ExpiresAt.Time,
	}, nil
}

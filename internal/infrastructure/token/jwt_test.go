package token

import (
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/cashier-backend/internal/cfg"
	"github.com/DRSN-tech/cashier-backend/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(key string) *Manager {
	return NewManager(&cfg.AuthCfg{AppKey: key, TokenTTL: 6 * time.Hour, Issuer: "cashier-backend"})
}

func TestManager_RoundTrip(t *testing.T) {
	m := newManager("secret")
	account := &domain.Account{ID: 7, Username: "cashier"}

	token, expiresAt, err := m.Generate(account)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(6*time.Hour), expiresAt, time.Minute)

	claims, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.AccountID)
	assert.Equal(t, "cashier", claims.Username)
	assert.Equal(t, expiresAt.Unix(), claims.ExpiresAt.Unix())
}

func TestManager_Rejects(t *testing.T) {
	m := newManager("secret")
	token, _, err := m.Generate(&domain.Account{ID: 1, Username: "cashier"})
	require.NoError(t, err)

	expired := newManager("secret")
	expired.now = func() time.Time { return time.Now().Add(-7 * time.Hour) }
	expiredToken, _, err := expired.Generate(&domain.Account{ID: 1})
	require.NoError(t, err)

	otherIssuer := NewManager(&cfg.AuthCfg{AppKey: "secret", TokenTTL: time.Hour, Issuer: "someone-else"})
	foreignToken, _, err := otherIssuer.Generate(&domain.Account{ID: 1})
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Issuer:    "cashier-backend",
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"wrong key":      token,
		"expired":        expiredToken,
		"foreign issuer": foreignToken,
		"alg none":       none,
		"garbage":        "not.a.jwt",
	}

	verifier := newManager("other-secret")
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			v := m
			if name == "wrong key" {
				v = verifier
			}
			_, err := v.Verify(tok)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidToken))
		})
	}
}

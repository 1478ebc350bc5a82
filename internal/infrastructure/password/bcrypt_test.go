package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	ok, err := h.Compare(hash, "secret1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Compare(hash, "secret2")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = h.Compare("not-a-hash", "secret1")
	assert.Error(t, err)
}

func TestNewHasher_DefaultCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).cost)
}

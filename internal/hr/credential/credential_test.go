package credential

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher_Enabled(t *testing.T) {
	h := NewHasher(true)
	h.cost = bcrypt.MinCost

	stored, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.True(t, IsHashed(stored))
	assert.True(t, h.Verify(stored, "s3cret"))
	assert.False(t, h.Verify(stored, "wrong"))

	again, err := h.Hash(stored)
	require.NoError(t, err)
	assert.Equal(t, stored, again, "already hashed values are kept")
}

func TestHasher_Disabled(t *testing.T) {
	h := NewHasher(false)

	stored, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", stored)
	assert.True(t, h.Verify(stored, "s3cret"))
}

func TestHasher_VerifyLegacy(t *testing.T) {
	h := NewHasher(true)
	assert.True(t, h.Verify("plain@123", "plain@123"))
	assert.False(t, h.Verify("plain@123", "Plain@123"))
	assert.False(t, h.Verify("", ""))
}

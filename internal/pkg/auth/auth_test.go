package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateMagic(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		magic, err := GenerateMagic()
		require.NoError(t, err)
		assert.Len(t, magic, MagicDigits)
		assert.NoError(t, ValidateMagicFormat(magic))
		assert.False(t, seen[magic], "duplicate token %s", magic)
		seen[magic] = true
	}
}

func TestValidateMagicFormat(t *testing.T) {
	for _, bad := range []string{"", "123", "0123456789012345678 9", "01234567890123456789", "1234567890123456789x", "123456789012345678901"} {
		assert.ErrorIs(t, ValidateMagicFormat(bad), ErrInvalidFormat, bad)
	}
	assert.NoError(t, ValidateMagicFormat("12345678901234567890"))
}

func TestPassword(t *testing.T) {
	BcryptCost = 4
	t.Cleanup(func() { BcryptCost = 12 })

	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))

	BurnPasswordCheck("anything")
}

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-passphrase")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "s3cret-passphrase", hash)

	assert.True(t, CheckPasswordHash("s3cret-passphrase", hash))
	assert.False(t, CheckPasswordHash("wrong-passphrase", hash))
}

func TestCheckPasswordHashRejectsMalformedHash(t *testing.T) {
	assert.False(t, CheckPasswordHash("anything", "not-a-bcrypt-hash"))
}

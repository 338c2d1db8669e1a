// AngelaMos | 2026
// security_test.go

package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	ok, err := VerifyPassword("correct horse battery", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordIsSalted(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestVerifyPasswordRejectsOAuthSentinel(t *testing.T) {
	ok, err := VerifyPassword(OAuthPasswordSentinel, OAuthPasswordSentinel)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.False(t, VerifyPasswordTimingSafe(OAuthPasswordSentinel, OAuthPasswordSentinel))
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	_, err := VerifyPassword("x", "$bcrypt$nope")
	assert.ErrorIs(t, err, errMalformedHash)
}

func TestVerifyPasswordTimingSafe(t *testing.T) {
	hash, err := HashPassword("secret-pass")
	require.NoError(t, err)

	assert.True(t, VerifyPasswordTimingSafe("secret-pass", hash))
	assert.False(t, VerifyPasswordTimingSafe("other", hash))
	assert.False(t, VerifyPasswordTimingSafe("secret-pass", ""))
}

func TestNeedsRehash(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)
	assert.False(t, NeedsRehash(hash))

	weaker := strings.Replace(hash, "m=65536", "m=32768", 1)
	assert.True(t, NeedsRehash(weaker))
	assert.False(t, NeedsRehash(OAuthPasswordSentinel))
}

func TestGenerateResetToken(t *testing.T) {
	raw, digest, err := GenerateResetToken()
	require.NoError(t, err)

	assert.Len(t, raw, 43)
	assert.Equal(t, HashToken(raw), digest)
	assert.NotEqual(t, HashToken(raw+"x"), digest)
}

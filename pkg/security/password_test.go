package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mohdashiqtp/procurement-app/pkg/config"
)

// small params keep the suite fast
var testPasswordConfig = config.PasswordConfig{
	ArgonMemoryKB:    64,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", testPasswordConfig)
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$v=19$m=64,t=1,p=1$")
	assert.False(t, NeedsRehash(hash))

	ok, err := VerifyPassword("s3cret-pass", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordUsesRandomSalt(t *testing.T) {
	a, err := HashPassword("same", testPasswordConfig)
	require.NoError(t, err)
	b, err := HashPassword("same", testPasswordConfig)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := HashPassword("", testPasswordConfig)
	assert.Error(t, err)
}

func TestVerifyPasswordBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("legacy-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, NeedsRehash(string(legacy)))

	ok, err := VerifyPassword("legacy-pass", string(legacy))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("nope", string(legacy))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plain",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=64,t=1,p=1$!!$a2V5",
		"$argon2i$v=19$m=64,t=1,p=1$c2FsdA$a2V5",
	} {
		_, err := VerifyPassword("pw", encoded)
		assert.ErrorIs(t, err, ErrInvalidHash, encoded)
	}
}

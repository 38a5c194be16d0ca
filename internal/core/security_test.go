// AngelaMos | 2026
// security_test.go

package core

import (
	"crypto/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	ok, upgraded, err := CheckPassword("hunter22", &hash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, upgraded, "current cost needs no upgrade")

	ok, _, err = CheckPassword("hunter23", &hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckPasswordWithoutHashAlwaysFails(t *testing.T) {
	empty := ""
	for _, stored := range []*string{nil, &empty} {
		ok, upgraded, err := CheckPassword("no-password-on-this-account", stored)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, upgraded)
	}
}

func TestCheckPasswordUpgradesOldCost(t *testing.T) {
	old := kdf{memory: 32 * 1024, passes: 1, threads: 2, keyLen: 32}
	salt := make([]byte, passwordSaltBytes)
	_, err := rand.Read(salt)
	require.NoError(t, err)
	stored := old.encode(salt, old.derive("pa55word", salt))

	ok, upgraded, err := CheckPassword("pa55word", &stored)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NotEmpty(t, upgraded)

	k, _, _, err := parsePHC(upgraded)
	require.NoError(t, err)
	assert.Equal(t, currentKDF, k)
}

func TestParsePHCRejectsGarbage(t *testing.T) {
	for _, bad := range []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=1,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x$c2FsdA$a2V5",
		"$argon2id$v=19$m=1,t=1,p=1$!!$a2V5",
	} {
		_, _, _, err := parsePHC(bad)
		assert.ErrorIs(t, err, errMalformedHash, bad)
	}
}

func TestHashTokenIsStable(t *testing.T) {
	tok, err := NewOpaqueToken()
	require.NoError(t, err)
	assert.Len(t, HashToken(tok), 64)
	assert.Equal(t, HashToken(tok), HashToken(tok))

	other, err := NewOpaqueToken()
	require.NoError(t, err)
	assert.NotEqual(t, tok, other)
}

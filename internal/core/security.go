// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

var errMalformedHash = errors.New("malformed password hash")

// kdf is the argon2id cost stored alongside every password hash. Hashes
// written under older costs still verify and are upgraded on next login.
type kdf struct {
	memory  uint32
	passes  uint32
	threads uint8
	keyLen  uint32
}

var currentKDF = kdf{memory: 64 * 1024, passes: 1, threads: 4, keyLen: 32}

const passwordSaltBytes = 16

func (k kdf) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, k.passes, k.memory, k.threads, k.keyLen)
}

// encode produces the PHC string form: $argon2id$v=19$m=..,t=..,p=..$salt$key
func (k kdf) encode(salt, key []byte) string {
	b64 := base64.RawStdEncoding
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, k.memory, k.passes, k.threads,
		b64.EncodeToString(salt), b64.EncodeToString(key))
}

func parsePHC(encoded string) (kdf, []byte, []byte, error) {
	var k kdf
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != "argon2id" {
		return k, nil, nil, errMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil || version != argon2.Version {
		return k, nil, nil, fmt.Errorf("%w: version %q", errMalformedHash, fields[2])
	}
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &k.memory, &k.passes, &k.threads); err != nil {
		return k, nil, nil, fmt.Errorf("%w: cost %q", errMalformedHash, fields[3])
	}

	salt, err := base64.RawStdEncoding.DecodeString(fields[4])
	if err != nil {
		return k, nil, nil, fmt.Errorf("%w: salt", errMalformedHash)
	}
	key, err := base64.RawStdEncoding.DecodeString(fields[5])
	if err != nil || len(key) == 0 {
		return k, nil, nil, fmt.Errorf("%w: key", errMalformedHash)
	}
	k.keyLen = uint32(len(key)) //nolint:gosec // argon2 keys are tens of bytes

	return k, salt, key, nil
}

func HashPassword(password string) (string, error) {
	salt := make([]byte, passwordSaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}
	return currentKDF.encode(salt, currentKDF.derive(password, salt)), nil
}

// placeholderHash stands in for accounts that have no password so a
// failed lookup costs one derivation like any other attempt.
var placeholderHash = sync.OnceValue(func() string {
	h, err := HashPassword("no-password-on-this-account")
	if err != nil {
		panic(fmt.Sprintf("derive placeholder hash: %v", err))
	}
	return h
})

// CheckPassword compares password against stored. A nil or empty stored
// hash (unknown email, Google-only account) always fails after doing the
// same work as a real comparison. When the match succeeds under an
// outdated cost, upgraded carries a fresh hash for the caller to persist.
func CheckPassword(password string, stored *string) (ok bool, upgraded string, err error) {
	hasHash := stored != nil && *stored != ""
	encoded := placeholderHash()
	if hasHash {
		encoded = *stored
	}

	k, salt, want, err := parsePHC(encoded)
	if err != nil {
		return false, "", err
	}
	got := k.derive(password, salt)
	if !hasHash || subtle.ConstantTimeCompare(got, want) != 1 {
		return false, "", nil
	}

	if k != currentKDF {
		if fresh, hashErr := HashPassword(password); hashErr == nil {
			upgraded = fresh
		}
	}
	return true, upgraded, nil
}

// NewOpaqueToken returns 32 random bytes, URL-safe encoded. Used for
// refresh tokens whose only server-side trace is HashToken's digest.
func NewOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

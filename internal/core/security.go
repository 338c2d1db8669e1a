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

	"golang.org/x/crypto/argon2"
)

// OAuthPasswordSentinel is stored in place of a password hash for accounts
// created through Google sign-in. It never verifies against any input.
const OAuthPasswordSentinel = "oauth:google"

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	saltLength   = 16

	resetTokenBytes = 32
)

var errMalformedHash = errors.New("malformed password hash")

type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

var defaultArgonParams = argonParams{
	memory:  argonMemory,
	time:    argonTime,
	threads: argonThreads,
	keyLen:  argonKeyLen,
}

func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	p := defaultArgonParams
	key := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.memory,
		p.time,
		p.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword reports whether password matches encodedHash. OAuth-only
// accounts and empty hashes never match.
func VerifyPassword(password, encodedHash string) (bool, error) {
	if encodedHash == "" || IsOAuthPassword(encodedHash) {
		return false, nil
	}

	p, salt, want, err := parseArgonHash(encodedHash)
	if err != nil {
		return false, err
	}

	got := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, p.keyLen)
	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

var timingHash string

func init() {
	hash, err := HashPassword("avocado-timing-equalizer")
	if err != nil {
		panic(fmt.Sprintf("security: failed to generate timing hash: %v", err))
	}
	timingHash = hash
}

// VerifyPasswordTimingSafe performs a full argon2 comparison even when the
// account does not exist or has no local password, so login latency does
// not reveal which emails are registered.
func VerifyPasswordTimingSafe(password, encodedHash string) bool {
	candidate := encodedHash
	usable := encodedHash != "" && !IsOAuthPassword(encodedHash)
	if !usable {
		candidate = timingHash
	}

	ok, err := VerifyPassword(password, candidate)
	if err != nil || !usable {
		return false
	}
	return ok
}

// NeedsRehash reports whether a stored hash was produced with parameters
// other than the current ones.
func NeedsRehash(encodedHash string) bool {
	if IsOAuthPassword(encodedHash) {
		return false
	}
	p, _, _, err := parseArgonHash(encodedHash)
	if err != nil {
		return true
	}
	return p != defaultArgonParams
}

func IsOAuthPassword(encodedHash string) bool {
	return encodedHash == OAuthPasswordSentinel
}

func parseArgonHash(encoded string) (argonParams, []byte, []byte, error) {
	var p argonParams

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, errMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, fmt.Errorf("%w: version: %w", errMalformedHash, err)
	}
	if version != argon2.Version {
		return p, nil, nil, fmt.Errorf("%w: unsupported version %d", errMalformedHash, version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, nil, nil, fmt.Errorf("%w: params: %w", errMalformedHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: salt: %w", errMalformedHash, err)
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: key: %w", errMalformedHash, err)
	}

	//nolint:gosec // G115: argon2 key length is 32 bytes
	p.keyLen = uint32(len(key))

	return p, salt, key, nil
}

func GenerateSecureToken(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GenerateResetToken returns the raw token to mail to the user and the
// digest to persist.
func GenerateResetToken() (raw, digest string, err error) {
	raw, err = GenerateSecureToken(resetTokenBytes)
	if err != nil {
		return "", "", err
	}
	return raw, HashToken(raw), nil
}

func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

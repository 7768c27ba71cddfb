package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for admin credential hashing.
const (
	hashTime    = 1
	hashMemory  = 64 * 1024 // 64MB
	hashThreads = 4
	hashKeyLen  = 32
	hashSaltLen = 16
)

// CredentialHasher implements ports.HashService using Argon2id. The
// admin credential is stored only in hashed form.
type CredentialHasher struct{}

// NewCredentialHasher creates a new Argon2id hash service.
func NewCredentialHasher() *CredentialHasher {
	return &CredentialHasher{}
}

// Hash generates an Argon2id hash of the secret.
// Returns format: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
func (s *CredentialHasher) Hash(secret string) (string, error) {
	salt := make([]byte, hashSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	sum := argon2.IDKey([]byte(secret), salt, hashTime, hashMemory, hashThreads, hashKeyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		hashMemory, hashTime, hashThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

// Verify checks if a secret matches the given Argon2id hash.
func (s *CredentialHasher) Verify(secret string, encodedHash string) (bool, error) {
	salt, sum, params, err := decodeCredentialHash(encodedHash)
	if err != nil {
		return false, err
	}

	otherSum := argon2.IDKey([]byte(secret), salt, params.time, params.memory, params.threads, params.keyLen)

	return subtle.ConstantTimeCompare(sum, otherSum) == 1, nil
}

type credentialHashParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

func decodeCredentialHash(encodedHash string) (salt, sum []byte, params credentialHashParams, err error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return nil, nil, params, fmt.Errorf("invalid hash format: expected 6 parts, got %d", len(parts))
	}

	if parts[1] != "argon2id" {
		return nil, nil, params, fmt.Errorf("unsupported algorithm: %s", parts[1])
	}

	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, params, fmt.Errorf("parsing version: %w", err)
	}

	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.memory, &params.time, &params.threads); err != nil {
		return nil, nil, params, fmt.Errorf("parsing params: %w", err)
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, params, fmt.Errorf("decoding salt: %w", err)
	}

	sum, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, params, fmt.Errorf("decoding hash: %w", err)
	}

	params.keyLen = uint32(len(sum))

	return salt, sum, params, nil
}

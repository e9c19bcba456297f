package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/nimbushost/NimbusPanel/internal/pkg/env"
)

// SealCredential encrypts an instance secret for storage using AES-GCM with
// a key derived from CREDENTIAL_SECRET. Output is base64 with a "v1:" prefix
// so stored values are self-describing.
func SealCredential(plaintext string) (string, error) {
	key, err := credentialKey()
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return "v1:" + base64.RawStdEncoding.EncodeToString(sealed), nil
}

// OpenCredential reverses SealCredential.
func OpenCredential(stored string) (string, error) {
	if !strings.HasPrefix(stored, "v1:") {
		return "", errors.New("unrecognized credential format")
	}

	key, err := credentialKey()
	if err != nil {
		return "", err
	}

	raw, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(stored, "v1:"))
	if err != nil {
		return "", errors.New("invalid credential encoding")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	if len(raw) < gcm.NonceSize() {
		return "", errors.New("credential too short")
	}

	plain, err := gcm.Open(nil, raw[:gcm.NonceSize()], raw[gcm.NonceSize():], nil)
	if err != nil {
		return "", errors.New("credential decryption failed")
	}
	return string(plain), nil
}

func credentialKey() ([]byte, error) {
	secret := strings.TrimSpace(env.GetEnv("CREDENTIAL_SECRET", ""))
	if secret == "" {
		return nil, errors.New("CREDENTIAL_SECRET is not configured")
	}
	sum := sha256.Sum256([]byte(secret))
	return sum[:], nil
}

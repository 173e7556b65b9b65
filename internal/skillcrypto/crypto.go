// Package skillcrypto derives per-user, per-skill encryption keys and
// seals/unseals the individual files of a skill package. See spec.md §4.A.
package skillcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/pbkdf2"

	"skillmint/internal/core"
)

const (
	pbkdf2Iterations = 100_000
	keyLength        = 32 // AES-256
	nonceLength      = 12
	gcmTagLength     = 16

	// VerifyPlaintext is the literal byte sequence the manifest's
	// encrypted_verify token must decrypt to when the derived key is
	// correct.
	VerifyPlaintext = "SKILLMINT_OK"
)

// DeriveKey computes K = PBKDF2-HMAC-SHA256(password=username,
// salt=SHA256(skillID‖skillName), iterations=100000, dkLen=32).
// Deterministic given the same inputs.
func DeriveKey(username, skillID, skillName string) []byte {
	salt := sha256.Sum256([]byte(skillID + skillName))
	return pbkdf2.Key([]byte(username), salt[:], pbkdf2Iterations, keyLength, sha256.New)
}

// Seal encrypts plaintext under key with a fresh 12-byte nonce using
// AES-256-GCM, returning nonce‖ciphertext‖tag.
func Seal(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, core.Wrap(core.KindCryptoFailure, err, "create AES cipher")
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, nonceLength)
	if err != nil {
		return nil, core.Wrap(core.KindCryptoFailure, err, "create GCM")
	}
	nonce := make([]byte, nonceLength)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, core.Wrap(core.KindCryptoFailure, err, "generate nonce")
	}
	sealed := gcm.Seal(nil, nonce, plaintext, nil)
	return append(nonce, sealed...), nil
}

// Unseal decrypts a nonce‖ciphertext‖tag blob produced by Seal. A
// mismatched tag or corrupt input surfaces as KindCryptoFailure.
func Unseal(blob []byte, key []byte) ([]byte, error) {
	if len(blob) < nonceLength+gcmTagLength {
		return nil, core.NewError(core.KindCryptoFailure, "sealed blob too short")
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, core.Wrap(core.KindCryptoFailure, err, "create AES cipher")
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, nonceLength)
	if err != nil {
		return nil, core.Wrap(core.KindCryptoFailure, err, "create GCM")
	}
	nonce, ciphertext := blob[:nonceLength], blob[nonceLength:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, core.Wrap(core.KindCryptoFailure, err, "GCM tag mismatch")
	}
	return plaintext, nil
}

// SealVerifyToken produces the manifest's encrypted_verify payload: a
// seal of the literal VerifyPlaintext under key.
func SealVerifyToken(key []byte) ([]byte, error) {
	return Seal([]byte(VerifyPlaintext), key)
}

// VerifyToken reports whether token decrypts to VerifyPlaintext under
// key, distinguishing a wrong-username failure from other decrypt
// failures.
func VerifyToken(token []byte, key []byte) error {
	plaintext, err := Unseal(token, key)
	if err != nil {
		return core.Wrap(core.KindWrongUsername, err, "verify token decryption failed")
	}
	if string(plaintext) != VerifyPlaintext {
		return core.NewError(core.KindWrongUsername, "verify token mismatch")
	}
	return nil
}

// Package cryptox protects page access tokens at rest. Tokens are sealed
// into a self-contained envelope string "hex(iv):hex(ciphertext)" using
// AES-256-CBC with PKCS#7 padding and a fresh random IV per call, so the
// stored form needs nothing but the server-side key to reverse.
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrMalformedEnvelope is returned when an envelope is not two
	// colon-delimited hex parts with a block-sized IV.
	ErrMalformedEnvelope = errors.New("cryptox: malformed token envelope")

	// ErrCryptoFailure is returned when decryption fails its padding check,
	// which indicates a wrong key, corrupted data, or tampering.
	ErrCryptoFailure = errors.New("cryptox: decryption failed")
)

// EncryptToken seals a plaintext secret into an envelope safe to store.
// A new random IV is generated for every call, so encrypting the same
// plaintext twice yields different envelopes.
func EncryptToken(plaintext string) (string, error) {
	key, err := getEncryptionKey()
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("cryptox: create cipher: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("cryptox: generate iv: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext), nil
}

// DecryptToken reverses EncryptToken. It returns ErrMalformedEnvelope for
// structurally invalid input and ErrCryptoFailure when the padding check
// fails after decryption.
func DecryptToken(envelope string) (string, error) {
	key, err := getEncryptionKey()
	if err != nil {
		return "", err
	}

	parts := strings.Split(envelope, ":")
	if len(parts) != 2 {
		return "", ErrMalformedEnvelope
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != aes.BlockSize {
		return "", ErrMalformedEnvelope
	}

	ciphertext, err := hex.DecodeString(parts[1])
	if err != nil || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", ErrMalformedEnvelope
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("cryptox: create cipher: %w", err)
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	plaintext, err := pkcs7Unpad(padded, aes.BlockSize)
	if err != nil {
		return "", ErrCryptoFailure
	}
	return string(plaintext), nil
}

// pkcs7Pad always appends between 1 and blockSize bytes, so the empty
// string is padded to a full block and round-trips.
func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

// pkcs7Unpad validates every padding byte, not just the last one, so a
// corrupted final block is rejected rather than silently truncated.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.New("invalid padded length")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, errors.New("invalid padding byte")
	}
	pad := data[len(data)-n:]
	ok := 1
	for _, b := range pad {
		ok &= subtle.ConstantTimeByteEq(b, byte(n))
	}
	if ok != 1 {
		return nil, errors.New("inconsistent padding")
	}
	return data[:len(data)-n], nil
}

// TokenPreview returns a short prefix of a secret for log correlation.
// The full value must never be logged.
func TokenPreview(token string) string {
	const n = 6
	if len(token) <= n {
		return token
	}
	return token[:n] + "..."
}

// FingerprintToken returns a deterministic SHA-256 fingerprint of a token,
// safe to log or index without revealing the value.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

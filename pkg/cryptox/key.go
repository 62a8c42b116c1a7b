package cryptox

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters used to stretch non-full-length key material into a
// 32-byte AES-256 key. The salt is fixed so the derived key is stable across
// restarts for the same configured secret.
const (
	scryptN = 16384
	scryptR = 8
	scryptP = 1
)

var scryptSalt = []byte("pagelink-token-key")

// ErrKeyNotConfigured is returned when encryption is attempted before
// SetEncryptionKey has been called with non-empty key material.
var ErrKeyNotConfigured = errors.New("cryptox: encryption key not configured")

var (
	keyOnce     sync.Once
	derivedKey  []byte
	deriveErr   error
	keyMaterial string
	keyMu       sync.Mutex
)

// SetEncryptionKey configures the process-wide key material used to protect
// page access tokens at rest. It must be called once at startup, before any
// Encrypt/Decrypt call. The material is interpreted as follows:
//
//   - 64 hex characters: decoded into the 32 raw key bytes (recommended).
//   - anything else: stretched into 32 bytes via scrypt.
//
// Stretching keeps a misconfigured deployment running instead of failing
// every request, but the effective entropy is bounded by the configured
// secret. KeyIsStretched reports which path was taken so the caller can warn.
func SetEncryptionKey(material string) {
	keyMu.Lock()
	defer keyMu.Unlock()
	keyMaterial = material
}

// KeyIsStretched reports whether the configured material will be (or was)
// run through scrypt rather than used directly as a 32-byte key.
func KeyIsStretched() bool {
	keyMu.Lock()
	defer keyMu.Unlock()
	if len(keyMaterial) != 64 {
		return keyMaterial != ""
	}
	_, err := hex.DecodeString(keyMaterial)
	return err != nil
}

// getEncryptionKey derives the AES-256 key on first use and caches it.
func getEncryptionKey() ([]byte, error) {
	keyOnce.Do(func() {
		keyMu.Lock()
		material := keyMaterial
		keyMu.Unlock()

		if material == "" {
			deriveErr = ErrKeyNotConfigured
			return
		}

		if len(material) == 64 {
			if raw, err := hex.DecodeString(material); err == nil {
				derivedKey = raw
				return
			}
		}

		key, err := scrypt.Key([]byte(material), scryptSalt, scryptN, scryptR, scryptP, 32)
		if err != nil {
			deriveErr = fmt.Errorf("cryptox: key derivation failed: %w", err)
			return
		}
		derivedKey = key
	})
	return derivedKey, deriveErr
}

// ResetKeyForTesting clears the cached key so tests can reconfigure it.
// This should ONLY be used in tests.
func ResetKeyForTesting() {
	keyMu.Lock()
	defer keyMu.Unlock()
	keyOnce = sync.Once{}
	derivedKey = nil
	deriveErr = nil
	keyMaterial = ""
}

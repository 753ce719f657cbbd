// Package clientcrypto seals client-side secrets (stored tokens) with a per-device key.
package clientcrypto

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// Params
const (
	DeviceKeyLen = 32
	keyLen       = chacha20poly1305.KeySize
)

// ErrShortBlob is returned when a sealed blob cannot even hold a nonce.
var ErrShortBlob = errors.New("sealed blob too short")

// Rand returns n cryptographically secure random bytes.
func Rand(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// DeriveKey derives a purpose-bound key from the device key via HKDF-SHA256.
func DeriveKey(deviceKey, purpose []byte) ([]byte, error) {
	if len(deviceKey) != DeviceKeyLen {
		return nil, errors.New("bad device key length")
	}
	r := hkdf.New(sha256.New, deviceKey, nil, purpose)
	key := make([]byte, keyLen)
	_, err := r.Read(key)
	return key, err
}

// Seal encrypts plaintext with XChaCha20-Poly1305; the random nonce is prepended.
func Seal(key, aad, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce, err := Rand(chacha20poly1305.NonceSizeX)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, aad), nil
}

// Open reverses Seal; aad must match.
func Open(key, aad, blob []byte) ([]byte, error) {
	if len(blob) < chacha20poly1305.NonceSizeX {
		return nil, ErrShortBlob
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce := blob[:chacha20poly1305.NonceSizeX]
	ct := blob[chacha20poly1305.NonceSizeX:]
	return aead.Open(nil, nonce, ct, aad)
}

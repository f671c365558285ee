package envelope

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

var errInvalidKeySize = errors.New("envelope: invalid key size for ChaCha20-Poly1305")

// deriveKey derives the payload key from the content key using HKDF-SHA256.
// info binds the result to the envelope header.
func deriveKey(secret, info []byte) ([]byte, error) {
	hk := hkdf.New(sha256.New, secret, nil, info)
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hk, key); err != nil {
		return nil, err
	}
	return key, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, errInvalidKeySize
	}
	return chacha20poly1305.New(key)
}

// seal encrypts plaintext under key with a random nonce.
// Returns: nonce (12 bytes) || ciphertext || tag (16 bytes)
func seal(key, plaintext, additionalData []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, out); err != nil {
		return nil, err
	}
	return aead.Seal(out, out[:aead.NonceSize()], plaintext, additionalData), nil
}

// open reverses seal. Any authentication failure is reported as ok=false.
func open(key, sealed, additionalData []byte) ([]byte, bool, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, false, err
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, false, nil
	}
	nonce := sealed[:aead.NonceSize()]
	pt, err := aead.Open(nil, nonce, sealed[aead.NonceSize():], additionalData)
	if err != nil {
		return nil, false, nil
	}
	return pt, true, nil
}

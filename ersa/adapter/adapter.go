// Package adapter performs RSA operations on behalf of the ersa facade.
//
// Two variants exist:
//   - Native: the full operation set, including the PKCS#1 v1.5
//     private-encrypt / public-decrypt pair.
//   - Platform: OAEP/SHA-1 only, strict SPKI/PKCS#8 key import with
//     usage-restricted keys, every call computed as a deferred result.
//
// Both use RSA-OAEP with SHA-1 for public-key encryption so that
// ciphertexts are interchangeable between them.
package adapter

import (
	"context"
	"errors"

	"github.com/TheusHen/ersa/ersa/keycodec"
)

const (
	// DefaultModulusLength is used when a caller asks for modulus length 0.
	DefaultModulusLength = 2048
	// MinModulusLength is the smallest modulus accepted for key generation.
	MinModulusLength = 512
)

var (
	ErrPayloadTooLarge      = errors.New("adapter: payload too large for key")
	ErrDecryptionFailed     = errors.New("adapter: decryption failed")
	ErrUnsupportedOperation = errors.New("adapter: unsupported operation")
	ErrInvalidModulusLength = errors.New("adapter: invalid modulus length")
)

// KeyPair holds a freshly generated key pair as SPKI and PKCS#8 PEM text.
type KeyPair struct {
	PublicKey  string
	PrivateKey string
}

// Adapter is the capability surface shared by the native and platform
// variants. Keys arrive normalized (see keycodec.Normalize); ciphertexts
// travel as base64 text.
type Adapter interface {
	Name() string
	EncryptPublic(ctx context.Context, plaintext []byte, publicKey keycodec.NormalizedKey) (string, error)
	DecryptPrivate(ctx context.Context, ciphertext string, privateKey keycodec.NormalizedKey) ([]byte, error)
	EncryptPrivate(ctx context.Context, plaintext []byte, privateKey keycodec.NormalizedKey) (string, error)
	DecryptPublic(ctx context.Context, ciphertext string, publicKey keycodec.NormalizedKey) ([]byte, error)
	GenerateKeyPair(ctx context.Context, modulusLength int) (KeyPair, error)
}

func checkModulus(modulusLength int) (int, error) {
	if modulusLength == 0 {
		return DefaultModulusLength, nil
	}
	if modulusLength < MinModulusLength {
		return 0, ErrInvalidModulusLength
	}
	return modulusLength, nil
}

var (
	_ Adapter = (*Native)(nil)
	_ Adapter = (*Platform)(nil)
)

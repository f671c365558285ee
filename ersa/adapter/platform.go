package adapter

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"fmt"

	"github.com/TheusHen/ersa/ersa/keycodec"
)

// Usage restricts what an imported key may be used for.
type Usage int

const (
	UsageEncrypt Usage = iota + 1
	UsageDecrypt
)

func (u Usage) String() string {
	switch u {
	case UsageEncrypt:
		return "encrypt"
	case UsageDecrypt:
		return "decrypt"
	default:
		return "none"
	}
}

// importedKey is a parsed key bound to a single usage.
type importedKey struct {
	usage Usage
	pub   *rsa.PublicKey
	priv  *rsa.PrivateKey
}

func (k importedKey) allow(u Usage) error {
	if k.usage != u {
		return fmt.Errorf("%w: key imported for %s, not %s", ErrUnsupportedOperation, k.usage, u)
	}
	return nil
}

// Platform restricts itself to RSA-OAEP/SHA-1. Public keys must be SPKI,
// private keys PKCS#8, and each call is computed as a deferred result that
// honours context cancellation.
type Platform struct{}

func NewPlatform() *Platform { return &Platform{} }

func (p *Platform) Name() string { return "platform" }

func (p *Platform) EncryptPublic(ctx context.Context, plaintext []byte, publicKey keycodec.NormalizedKey) (string, error) {
	return await(ctx, func() (string, error) {
		key, err := importKey(publicKey)
		if err != nil {
			return "", err
		}
		if err := key.allow(UsageEncrypt); err != nil {
			return "", err
		}
		return oaepEncrypt(key.pub, plaintext)
	})
}

func (p *Platform) DecryptPrivate(ctx context.Context, ciphertext string, privateKey keycodec.NormalizedKey) ([]byte, error) {
	return await(ctx, func() ([]byte, error) {
		key, err := importKey(privateKey)
		if err != nil {
			return nil, err
		}
		if err := key.allow(UsageDecrypt); err != nil {
			return nil, err
		}
		return oaepDecrypt(key.priv, ciphertext)
	})
}

func (p *Platform) EncryptPrivate(context.Context, []byte, keycodec.NormalizedKey) (string, error) {
	return "", fmt.Errorf("%w: encrypt with private key is not available on the platform adapter", ErrUnsupportedOperation)
}

func (p *Platform) DecryptPublic(context.Context, string, keycodec.NormalizedKey) ([]byte, error) {
	return nil, fmt.Errorf("%w: decrypt with public key is not available on the platform adapter", ErrUnsupportedOperation)
}

// GenerateKeyPair exports the new key as DER and re-armors it with
// keycodec.BinaryToPEM.
func (p *Platform) GenerateKeyPair(ctx context.Context, modulusLength int) (KeyPair, error) {
	bits, err := checkModulus(modulusLength)
	if err != nil {
		return KeyPair{}, err
	}
	return await(ctx, func() (KeyPair, error) {
		priv, err := rsa.GenerateKey(rand.Reader, bits)
		if err != nil {
			return KeyPair{}, err
		}
		pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
		if err != nil {
			return KeyPair{}, err
		}
		privDER, err := x509.MarshalPKCS8PrivateKey(priv)
		if err != nil {
			return KeyPair{}, err
		}
		return KeyPair{
			PublicKey:  keycodec.BinaryToPEM(pubDER, keycodec.Public),
			PrivateKey: keycodec.BinaryToPEM(privDER, keycodec.Private),
		}, nil
	})
}

// importKey picks the parser from the armor. Public keys come back bound to
// UsageEncrypt and private keys to UsageDecrypt; callers check the usage.
func importKey(nk keycodec.NormalizedKey) (importedKey, error) {
	text, err := nk.PEM()
	if err != nil {
		return importedKey{}, err
	}
	switch {
	case keycodec.IsValidPublicKey(text):
		return importSPKI(text)
	case keycodec.IsValidPrivateKey(text):
		return importPKCS8(text)
	}
	return importedKey{}, fmt.Errorf("%w: expected %s or %s armor",
		keycodec.ErrInvalidKeyFormat, keycodec.PublicHeader, keycodec.PrivateHeader)
}

func importSPKI(text string) (importedKey, error) {
	der, err := keycodec.PEMToBinary(text)
	if err != nil {
		return importedKey{}, fmt.Errorf("%w: %w", keycodec.ErrInvalidKeyFormat, err)
	}
	pub, err := keycodec.ParseSPKI(der)
	if err != nil {
		return importedKey{}, err
	}
	return importedKey{usage: UsageEncrypt, pub: pub}, nil
}

func importPKCS8(text string) (importedKey, error) {
	der, err := keycodec.PEMToBinary(text)
	if err != nil {
		return importedKey{}, fmt.Errorf("%w: %w", keycodec.ErrInvalidKeyFormat, err)
	}
	priv, err := keycodec.ParsePKCS8(der)
	if err != nil {
		return importedKey{}, err
	}
	return importedKey{usage: UsageDecrypt, priv: priv}, nil
}

type outcome[T any] struct {
	val T
	err error
}

// await runs fn on its own goroutine and waits for it or for ctx.
// The result channel is buffered so an abandoned computation never blocks.
func await[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	done := make(chan outcome[T], 1)
	go func() {
		v, err := fn()
		done <- outcome[T]{val: v, err: err}
	}()
	select {
	case o := <-done:
		return o.val, o.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

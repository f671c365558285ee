package ersa

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/TheusHen/ersa/ersa/adapter"
	"github.com/TheusHen/ersa/ersa/envelope"
	"github.com/TheusHen/ersa/ersa/keycodec"
	"github.com/TheusHen/ersa/ersa/transcode"
)

// KeyPair is a generated key pair as SPKI and PKCS#8 PEM text.
type KeyPair = adapter.KeyPair

// RSA is the public facade. It holds optional default keys and never
// changes after New, so one value may be shared between goroutines.
type RSA struct {
	cfg    Config
	sealer *envelope.Sealer
}

// New validates cfg and returns a facade bound to it.
func New(cfg Config) (*RSA, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	return &RSA{
		cfg:    cfg,
		sealer: envelope.NewSealer(cfg.Adapter),
	}, nil
}

// ModulusLength returns the key size used when CreateKeyPair gets 0.
func (r *RSA) ModulusLength() int { return r.cfg.ModulusLength }

// AdapterName names the adapter variant in use.
func (r *RSA) AdapterName() string { return r.cfg.Adapter.Name() }

func (r *RSA) entry(op string) *logrus.Entry {
	return r.cfg.Logger.WithFields(logrus.Fields{
		"op":      op,
		"adapter": r.cfg.Adapter.Name(),
	})
}

func resolve(supplied, fallback, kind string) (keycodec.NormalizedKey, error) {
	key := supplied
	if key == "" {
		key = fallback
	}
	if key == "" {
		return "", fmt.Errorf("%w: no %s key supplied and no default configured", keycodec.ErrInvalidKeyFormat, kind)
	}
	return keycodec.Normalize(key), nil
}

// CreateKeyPair generates a new key pair. A modulus length of 0 selects the
// configured default.
func (r *RSA) CreateKeyPair(ctx context.Context, modulusLength int) (KeyPair, error) {
	if modulusLength == 0 {
		modulusLength = r.cfg.ModulusLength
	}
	log := r.entry("create_key_pair").WithField("bits", modulusLength)
	kp, err := r.cfg.Adapter.GenerateKeyPair(ctx, modulusLength)
	if err != nil {
		log.WithError(err).Debug("key generation failed")
		return KeyPair{}, err
	}
	log.Debug("key pair generated")
	return kp, nil
}

// EncryptWithPublicKey encrypts text with RSA-OAEP/SHA-1 and returns base64
// ciphertext. An empty publicKey selects the default.
func (r *RSA) EncryptWithPublicKey(ctx context.Context, text, publicKey string) (string, error) {
	log := r.entry("encrypt_public").WithField("bytes", len(text))
	key, err := resolve(publicKey, r.cfg.PublicKey, "public")
	if err != nil {
		return "", err
	}
	ct, err := r.cfg.Adapter.EncryptPublic(ctx, []byte(text), key)
	if err != nil {
		log.WithError(err).Debug("encryption failed")
		return "", err
	}
	log.Debug("encrypted")
	return ct, nil
}

// DecryptWithPrivateKey reverses EncryptWithPublicKey. The plaintext must be
// valid UTF-8.
func (r *RSA) DecryptWithPrivateKey(ctx context.Context, ciphertext, privateKey string) (string, error) {
	log := r.entry("decrypt_private")
	key, err := resolve(privateKey, r.cfg.PrivateKey, "private")
	if err != nil {
		return "", err
	}
	pt, err := r.cfg.Adapter.DecryptPrivate(ctx, ciphertext, key)
	if err != nil {
		log.WithError(err).Debug("decryption failed")
		return "", err
	}
	if !utf8.Valid(pt) {
		return "", fmt.Errorf("%w: plaintext is not UTF-8", transcode.ErrEncoding)
	}
	log.WithField("bytes", len(pt)).Debug("decrypted")
	return string(pt), nil
}

// EncryptWithPrivateKey applies the PKCS#1 v1.5 private-key transform to
// text. Only adapters with that capability support it; others return
// ErrUnsupportedOperation. The key is resolved first, so a call with no key
// and no default fails with ErrInvalidKeyFormat on every adapter.
func (r *RSA) EncryptWithPrivateKey(ctx context.Context, text, privateKey string) (string, error) {
	log := r.entry("encrypt_private").WithField("bytes", len(text))
	key, err := resolve(privateKey, r.cfg.PrivateKey, "private")
	if err != nil {
		return "", err
	}
	ct, err := r.cfg.Adapter.EncryptPrivate(ctx, []byte(text), key)
	if err != nil {
		log.WithError(err).Debug("encryption failed")
		return "", err
	}
	log.Debug("encrypted")
	return ct, nil
}

// DecryptWithPublicKey reverses EncryptWithPrivateKey. As there, a missing
// key is reported as ErrInvalidKeyFormat before the adapter is consulted.
func (r *RSA) DecryptWithPublicKey(ctx context.Context, ciphertext, publicKey string) (string, error) {
	log := r.entry("decrypt_public")
	key, err := resolve(publicKey, r.cfg.PublicKey, "public")
	if err != nil {
		return "", err
	}
	pt, err := r.cfg.Adapter.DecryptPublic(ctx, ciphertext, key)
	if err != nil {
		log.WithError(err).Debug("decryption failed")
		return "", err
	}
	if !utf8.Valid(pt) {
		return "", fmt.Errorf("%w: plaintext is not UTF-8", transcode.ErrEncoding)
	}
	log.WithField("bytes", len(pt)).Debug("decrypted")
	return string(pt), nil
}

// EncryptBuffer encrypts the base64 text of buf through EncryptWithPublicKey.
// Base64 inflates the input by a third, so the usable buffer is smaller
// than the raw plaintext limit.
func (r *RSA) EncryptBuffer(ctx context.Context, buf []byte, publicKey string) (string, error) {
	return r.EncryptWithPublicKey(ctx, transcode.EncodeBytes(buf), publicKey)
}

// DecryptBuffer reverses EncryptBuffer.
func (r *RSA) DecryptBuffer(ctx context.Context, ciphertext, privateKey string) ([]byte, error) {
	text, err := r.DecryptWithPrivateKey(ctx, ciphertext, privateKey)
	if err != nil {
		return nil, err
	}
	return transcode.DecodeBytes(text)
}

// Seal encrypts a payload of any size into an envelope: a random content
// key wrapped with RSA-OAEP/SHA-1 plus a ChaCha20-Poly1305 sealed body.
func (r *RSA) Seal(ctx context.Context, payload []byte, publicKey string) (string, error) {
	log := r.entry("seal").WithField("bytes", len(payload))
	key, err := resolve(publicKey, r.cfg.PublicKey, "public")
	if err != nil {
		return "", err
	}
	env, err := r.sealer.Seal(ctx, payload, key)
	if err != nil {
		log.WithError(err).Debug("seal failed")
		return "", err
	}
	log.Debug("sealed")
	return env, nil
}

// Open reverses Seal.
func (r *RSA) Open(ctx context.Context, env, privateKey string) ([]byte, error) {
	log := r.entry("open")
	key, err := resolve(privateKey, r.cfg.PrivateKey, "private")
	if err != nil {
		return nil, err
	}
	payload, err := r.sealer.Open(ctx, env, key)
	if err != nil {
		log.WithError(err).Debug("open failed")
		return nil, err
	}
	log.WithField("bytes", len(payload)).Debug("opened")
	return payload, nil
}

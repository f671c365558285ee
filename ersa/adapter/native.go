package adapter

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"

	"github.com/TheusHen/ersa/ersa/keycodec"
)

// Native runs every operation synchronously on crypto/rsa. It accepts SPKI
// and PKCS#1 public keys, PKCS#8 and PKCS#1 private keys.
type Native struct{}

func NewNative() *Native { return &Native{} }

func (n *Native) Name() string { return "native" }

func (n *Native) EncryptPublic(ctx context.Context, plaintext []byte, publicKey keycodec.NormalizedKey) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	pub, err := nativePublic(publicKey)
	if err != nil {
		return "", err
	}
	return oaepEncrypt(pub, plaintext)
}

func (n *Native) DecryptPrivate(ctx context.Context, ciphertext string, privateKey keycodec.NormalizedKey) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	priv, err := nativePrivate(privateKey)
	if err != nil {
		return nil, err
	}
	return oaepDecrypt(priv, ciphertext)
}

// EncryptPrivate uses PKCS#1 v1.5 padding; OAEP is not defined for the
// private-key direction.
func (n *Native) EncryptPrivate(ctx context.Context, plaintext []byte, privateKey keycodec.NormalizedKey) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	priv, err := nativePrivate(privateKey)
	if err != nil {
		return "", err
	}
	return privateEncrypt(priv, plaintext)
}

func (n *Native) DecryptPublic(ctx context.Context, ciphertext string, publicKey keycodec.NormalizedKey) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pub, err := nativePublic(publicKey)
	if err != nil {
		return nil, err
	}
	return publicDecrypt(pub, ciphertext)
}

// GenerateKeyPair blocks until the key is generated. A modulus length of 0
// selects DefaultModulusLength.
func (n *Native) GenerateKeyPair(ctx context.Context, modulusLength int) (KeyPair, error) {
	if err := ctx.Err(); err != nil {
		return KeyPair{}, err
	}
	bits, err := checkModulus(modulusLength)
	if err != nil {
		return KeyPair{}, err
	}
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
		PublicKey:  string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})),
		PrivateKey: string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privDER})),
	}, nil
}

func nativePublic(nk keycodec.NormalizedKey) (*rsa.PublicKey, error) {
	text, err := nk.PEM()
	if err != nil {
		return nil, err
	}
	return keycodec.ParsePublicKey(text)
}

func nativePrivate(nk keycodec.NormalizedKey) (*rsa.PrivateKey, error) {
	text, err := nk.PEM()
	if err != nil {
		return nil, err
	}
	return keycodec.ParsePrivateKey(text)
}

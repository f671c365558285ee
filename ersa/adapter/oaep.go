package adapter

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"errors"
	"fmt"

	"github.com/TheusHen/ersa/ersa/keycodec"
	"github.com/TheusHen/ersa/ersa/transcode"
)

// MaxOAEPPlaintext returns the largest plaintext, in bytes, that a single
// OAEP/SHA-1 operation accepts under pub. For 2048-bit keys this is 214.
func MaxOAEPPlaintext(pub *rsa.PublicKey) int {
	return pub.Size() - 2*sha1.Size - 2
}

// MaxPKCS1Plaintext returns the largest plaintext accepted by a single
// PKCS#1 v1.5 operation under pub. For 2048-bit keys this is 245.
func MaxPKCS1Plaintext(pub *rsa.PublicKey) int {
	return pub.Size() - 11
}

func oaepEncrypt(pub *rsa.PublicKey, plaintext []byte) (string, error) {
	if len(plaintext) > MaxOAEPPlaintext(pub) {
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrPayloadTooLarge, len(plaintext), MaxOAEPPlaintext(pub))
	}
	ct, err := rsa.EncryptOAEP(sha1.New(), rand.Reader, pub, plaintext, nil)
	if err != nil {
		if errors.Is(err, rsa.ErrMessageTooLong) {
			return "", ErrPayloadTooLarge
		}
		return "", err
	}
	return transcode.EncodeBytes(ct), nil
}

func oaepDecrypt(priv *rsa.PrivateKey, ciphertext string) ([]byte, error) {
	ct, err := decodeCiphertext(ciphertext)
	if err != nil {
		return nil, err
	}
	pt, err := rsa.DecryptOAEP(sha1.New(), rand.Reader, priv, ct, nil)
	if err != nil {
		// Never surface which check failed.
		return nil, ErrDecryptionFailed
	}
	return pt, nil
}

func decodeCiphertext(ciphertext string) ([]byte, error) {
	ct, err := transcode.DecodeBytes(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: ciphertext", keycodec.ErrInvalidEncoding)
	}
	return ct, nil
}

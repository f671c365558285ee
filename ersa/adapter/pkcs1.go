package adapter

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/TheusHen/ersa/ersa/transcode"
)

// privateEncrypt applies PKCS#1 v1.5 type 1 padding and the RSA private
// operation to plaintext. With a zero hash the standard library signs the
// input verbatim, which is exactly the private-key encrypt transform.
func privateEncrypt(priv *rsa.PrivateKey, plaintext []byte) (string, error) {
	if len(plaintext) > MaxPKCS1Plaintext(&priv.PublicKey) {
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrPayloadTooLarge, len(plaintext), MaxPKCS1Plaintext(&priv.PublicKey))
	}
	ct, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.Hash(0), plaintext)
	if err != nil {
		if errors.Is(err, rsa.ErrMessageTooLong) {
			return "", ErrPayloadTooLarge
		}
		return "", err
	}
	return transcode.EncodeBytes(ct), nil
}

// publicDecrypt recovers the payload of a privateEncrypt block. It only
// involves public values, so the early returns leak nothing secret, but the
// error is still the single opaque ErrDecryptionFailed.
func publicDecrypt(pub *rsa.PublicKey, ciphertext string) ([]byte, error) {
	ct, err := decodeCiphertext(ciphertext)
	if err != nil {
		return nil, err
	}

	k := pub.Size()
	if len(ct) != k {
		return nil, ErrDecryptionFailed
	}
	c := new(big.Int).SetBytes(ct)
	if c.Cmp(pub.N) >= 0 {
		return nil, ErrDecryptionFailed
	}
	m := new(big.Int).Exp(c, big.NewInt(int64(pub.E)), pub.N)
	em := m.FillBytes(make([]byte, k))

	// EM = 0x00 || 0x01 || PS (>= 8 bytes of 0xff) || 0x00 || M
	if em[0] != 0x00 || em[1] != 0x01 {
		return nil, ErrDecryptionFailed
	}
	i := 2
	for i < k && em[i] == 0xff {
		i++
	}
	if i == k || em[i] != 0x00 || i-2 < 8 {
		return nil, ErrDecryptionFailed
	}
	return em[i+1:], nil
}

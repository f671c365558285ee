package keycodec

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"strings"
)

// Fingerprint identifies an RSA key pair.
// It is defined as: Fingerprint = SHA-256(SPKI DER of the public key).
type Fingerprint [32]byte

func FingerprintFromPublicKey(pub *rsa.PublicKey) (Fingerprint, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return Fingerprint{}, err
	}
	return Fingerprint(sha256.Sum256(der)), nil
}

// FingerprintPEM fingerprints a public or private key given as PEM text.
// Both halves of a pair yield the same value.
func FingerprintPEM(text string) (Fingerprint, error) {
	if strings.Contains(text, "PRIVATE KEY-----") {
		priv, err := ParsePrivateKey(text)
		if err != nil {
			return Fingerprint{}, err
		}
		return FingerprintFromPublicKey(&priv.PublicKey)
	}
	pub, err := ParsePublicKey(text)
	if err != nil {
		return Fingerprint{}, err
	}
	return FingerprintFromPublicKey(pub)
}

func ParseFingerprintHex(s string) (Fingerprint, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Fingerprint{}, err
	}
	if len(b) != 32 {
		return Fingerprint{}, errors.New("keycodec: invalid fingerprint length")
	}
	var fp Fingerprint
	copy(fp[:], b)
	return fp, nil
}

func (fp Fingerprint) String() string {
	return hex.EncodeToString(fp[:])
}

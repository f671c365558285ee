package keycodec

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"regexp"
)

var indent = regexp.MustCompile(`(?m)^[ \t]+`)

func decodeBlock(text string) (*pem.Block, error) {
	block, _ := pem.Decode([]byte(indent.ReplaceAllString(text, "")))
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block found", ErrInvalidKeyFormat)
	}
	return block, nil
}

// ParsePublicKey parses an SPKI ("PUBLIC KEY") or PKCS#1 ("RSA PUBLIC KEY")
// PEM block.
func ParsePublicKey(text string) (*rsa.PublicKey, error) {
	block, err := decodeBlock(text)
	if err != nil {
		return nil, err
	}
	switch block.Type {
	case "PUBLIC KEY":
		return ParseSPKI(block.Bytes)
	case "RSA PUBLIC KEY":
		pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKeyFormat, err)
		}
		return pub, nil
	default:
		return nil, fmt.Errorf("%w: unexpected PEM type %q for a public key", ErrInvalidKeyFormat, block.Type)
	}
}

// ParsePrivateKey parses a PKCS#8 ("PRIVATE KEY") or PKCS#1
// ("RSA PRIVATE KEY") PEM block. Indented bodies are accepted.
func ParsePrivateKey(text string) (*rsa.PrivateKey, error) {
	block, err := decodeBlock(text)
	if err != nil {
		return nil, err
	}
	switch block.Type {
	case "PRIVATE KEY":
		return ParsePKCS8(block.Bytes)
	case "RSA PRIVATE KEY":
		priv, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKeyFormat, err)
		}
		return priv, nil
	default:
		return nil, fmt.Errorf("%w: unexpected PEM type %q for a private key", ErrInvalidKeyFormat, block.Type)
	}
}

// ParseSPKI parses DER-encoded SubjectPublicKeyInfo holding an RSA key.
func ParseSPKI(der []byte) (*rsa.PublicKey, error) {
	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyFormat, err)
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA public key", ErrInvalidKeyFormat)
	}
	return pub, nil
}

// ParsePKCS8 parses a DER-encoded PKCS#8 RSA private key.
func ParsePKCS8(der []byte) (*rsa.PrivateKey, error) {
	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKeyFormat, err)
	}
	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA private key", ErrInvalidKeyFormat)
	}
	return priv, nil
}

// MarshalKeyPair returns priv as SPKI and PKCS#8 PEM texts.
func MarshalKeyPair(priv *rsa.PrivateKey) (publicPEM, privatePEM string, err error) {
	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return "", "", err
	}
	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return "", "", err
	}
	return BinaryToPEM(pubDER, Public), BinaryToPEM(privDER, Private), nil
}

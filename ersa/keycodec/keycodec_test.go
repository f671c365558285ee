package keycodec

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"strings"
	"testing"
)

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 1024)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return priv
}

func TestNormalizeRoundTrip(t *testing.T) {
	indented := "-----BEGIN PUBLIC KEY-----\n    QUJD\n    -----END PUBLIC KEY-----"
	nk := Normalize(indented)
	got, err := nk.PEM()
	if err != nil {
		t.Fatalf("PEM: %v", err)
	}
	want := "-----BEGIN PUBLIC KEY-----\nQUJD\n-----END PUBLIC KEY-----"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestNormalizedKeyErrors(t *testing.T) {
	if _, err := NormalizedKey("").PEM(); !errors.Is(err, ErrInvalidKeyFormat) {
		t.Fatalf("expected ErrInvalidKeyFormat for empty key, got %v", err)
	}
	if _, err := NormalizedKey("%%%").PEM(); !errors.Is(err, ErrInvalidEncoding) {
		t.Fatalf("expected ErrInvalidEncoding, got %v", err)
	}
}

func TestBinaryToPEMWrapsAt64(t *testing.T) {
	der := bytes.Repeat([]byte{0xAB}, 200)
	out := BinaryToPEM(der, Private)

	lines := strings.Split(out, "\n")
	if lines[0] != PrivateHeader {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[len(lines)-1] != PrivateFooter {
		t.Fatalf("unexpected footer %q", lines[len(lines)-1])
	}
	for _, l := range lines[1 : len(lines)-1] {
		if len(l) > LineWidth {
			t.Fatalf("line longer than %d: %d", LineWidth, len(l))
		}
	}

	back, err := PEMToBinary(out)
	if err != nil {
		t.Fatalf("PEMToBinary: %v", err)
	}
	if !bytes.Equal(back, der) {
		t.Fatalf("DER mismatch after round trip")
	}
}

func TestPEMToBinaryMalformed(t *testing.T) {
	_, err := PEMToBinary("-----BEGIN PUBLIC KEY-----\n!!not base64!!\n-----END PUBLIC KEY-----")
	if !errors.Is(err, ErrInvalidEncoding) {
		t.Fatalf("expected ErrInvalidEncoding, got %v", err)
	}
}

func TestValidityChecks(t *testing.T) {
	pubPEM, privPEM, err := MarshalKeyPair(testKey(t))
	if err != nil {
		t.Fatalf("MarshalKeyPair: %v", err)
	}

	if !IsValidPublicKey(pubPEM) || IsValidPrivateKey(pubPEM) {
		t.Fatalf("public key misclassified")
	}
	if !IsValidPrivateKey(privPEM) || IsValidPublicKey(privPEM) {
		t.Fatalf("private key misclassified")
	}
	if !IsValidKey(pubPEM) || !IsValidKey(privPEM) {
		t.Fatalf("IsValidKey rejected a marshaled key")
	}
	if IsValidKey("hello") {
		t.Fatalf("IsValidKey accepted plain text")
	}
	// Markers only: a garbage body still passes.
	if !IsValidPublicKey(PublicHeader + "\nxx\n" + PublicFooter) {
		t.Fatalf("expected marker-only check")
	}
	if IsValidPublicKey(PublicHeader + "\nxx\n") {
		t.Fatalf("missing footer should fail")
	}
}

func TestParseFormats(t *testing.T) {
	priv := testKey(t)
	pubPEM, privPEM, err := MarshalKeyPair(priv)
	if err != nil {
		t.Fatalf("MarshalKeyPair: %v", err)
	}

	pub, err := ParsePublicKey(pubPEM)
	if err != nil {
		t.Fatalf("ParsePublicKey(spki): %v", err)
	}
	if pub.N.Cmp(priv.N) != 0 {
		t.Fatalf("modulus mismatch")
	}
	if _, err := ParsePrivateKey(privPEM); err != nil {
		t.Fatalf("ParsePrivateKey(pkcs8): %v", err)
	}

	pkcs1Pub := string(pem.EncodeToMemory(&pem.Block{Type: "RSA PUBLIC KEY", Bytes: x509.MarshalPKCS1PublicKey(&priv.PublicKey)}))
	if _, err := ParsePublicKey(pkcs1Pub); err != nil {
		t.Fatalf("ParsePublicKey(pkcs1): %v", err)
	}

	pkcs1Priv := string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)}))
	indented := strings.ReplaceAll(pkcs1Priv, "\n", "\n    ")
	if _, err := ParsePrivateKey(indented); err != nil {
		t.Fatalf("ParsePrivateKey(indented pkcs1): %v", err)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"MIIBIjANBgkqhkiG9w0BAQEFAAOCAQ8AMIIBCgKCAQEA",
		PublicHeader + "\nQUJD\n" + PublicFooter,
		"-----BEGIN CERTIFICATE-----\nQUJD\n-----END CERTIFICATE-----",
	}
	for _, c := range cases {
		if _, err := ParsePublicKey(c); !errors.Is(err, ErrInvalidKeyFormat) {
			t.Fatalf("ParsePublicKey(%q): expected ErrInvalidKeyFormat, got %v", c, err)
		}
		if _, err := ParsePrivateKey(c); !errors.Is(err, ErrInvalidKeyFormat) {
			t.Fatalf("ParsePrivateKey(%q): expected ErrInvalidKeyFormat, got %v", c, err)
		}
	}
}

func TestFingerprintStable(t *testing.T) {
	pubPEM, privPEM, err := MarshalKeyPair(testKey(t))
	if err != nil {
		t.Fatalf("MarshalKeyPair: %v", err)
	}

	fpPub, err := FingerprintPEM(pubPEM)
	if err != nil {
		t.Fatalf("FingerprintPEM(public): %v", err)
	}
	fpPriv, err := FingerprintPEM(privPEM)
	if err != nil {
		t.Fatalf("FingerprintPEM(private): %v", err)
	}
	if fpPub != fpPriv {
		t.Fatalf("fingerprint differs between halves of a pair")
	}

	parsed, err := ParseFingerprintHex(fpPub.String())
	if err != nil {
		t.Fatalf("ParseFingerprintHex: %v", err)
	}
	if parsed != fpPub {
		t.Fatalf("ParseFingerprintHex mismatch")
	}
	if _, err := ParseFingerprintHex("abcd"); err == nil {
		t.Fatalf("expected length error")
	}
}

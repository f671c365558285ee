package envelope

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/TheusHen/ersa/ersa/adapter"
	"github.com/TheusHen/ersa/ersa/keycodec"
	"github.com/TheusHen/ersa/ersa/transcode"
)

func testKeys(t testing.TB) (keycodec.NormalizedKey, keycodec.NormalizedKey) {
	t.Helper()
	kp, err := adapter.NewNative().GenerateKeyPair(context.Background(), 1024)
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	return keycodec.Normalize(kp.PublicKey), keycodec.Normalize(kp.PrivateKey)
}

func TestSealOpenRoundTrip(t *testing.T) {
	ctx := context.Background()
	pub, priv := testKeys(t)

	random := make([]byte, 64*1024)
	if _, err := rand.Read(random); err != nil {
		t.Fatalf("rand: %v", err)
	}
	payloads := [][]byte{
		{},
		[]byte("short"),
		bytes.Repeat([]byte("compressible "), 4096),
		random,
	}

	for _, a := range []adapter.Adapter{adapter.NewNative(), adapter.NewPlatform()} {
		s := NewSealer(a)
		for _, p := range payloads {
			env, err := s.Seal(ctx, p, pub)
			if err != nil {
				t.Fatalf("%s: Seal: %v", a.Name(), err)
			}
			out, err := s.Open(ctx, env, priv)
			if err != nil {
				t.Fatalf("%s: Open: %v", a.Name(), err)
			}
			if !bytes.Equal(out, p) {
				t.Fatalf("%s: payload mismatch (len %d)", a.Name(), len(p))
			}
		}
	}
}

func TestCompressionFlag(t *testing.T) {
	ctx := context.Background()
	pub, _ := testKeys(t)
	text := bytes.Repeat([]byte("aaaaaaaa"), 8192)

	env, err := NewSealer(adapter.NewNative()).Seal(ctx, text, pub)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	raw, _ := transcode.DecodeBytes(env)
	if raw[1]&flagCompressed == 0 {
		t.Fatalf("expected compressed flag for repetitive payload")
	}
	if len(raw) >= len(text) {
		t.Fatalf("expected envelope smaller than payload, got %d >= %d", len(raw), len(text))
	}

	env, err = NewSealer(adapter.NewNative(), WithCompression(CompressionOff)).Seal(ctx, text, pub)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	raw, _ = transcode.DecodeBytes(env)
	if raw[1]&flagCompressed != 0 {
		t.Fatalf("compression should be off")
	}
}

func TestOpenCapsDecompressedSize(t *testing.T) {
	ctx := context.Background()
	pub, priv := testKeys(t)
	text := bytes.Repeat([]byte{0}, 1<<20)

	env, err := NewSealer(adapter.NewNative()).Seal(ctx, text, pub)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if raw, _ := transcode.DecodeBytes(env); len(raw) > 64*1024 {
		t.Fatalf("expected a small envelope, got %d bytes", len(raw))
	}

	capped := NewSealer(adapter.NewNative(), WithMaxPayloadSize(64*1024))
	if _, err := capped.Open(ctx, env, priv); !errors.Is(err, ErrDecompressionFailed) {
		t.Fatalf("expected ErrDecompressionFailed, got %v", err)
	}

	exact := NewSealer(adapter.NewNative(), WithMaxPayloadSize(int64(len(text))))
	out, err := exact.Open(ctx, env, priv)
	if err != nil {
		t.Fatalf("Open at the limit: %v", err)
	}
	if !bytes.Equal(out, text) {
		t.Fatalf("payload mismatch")
	}
}

func TestTamperedEnvelope(t *testing.T) {
	ctx := context.Background()
	pub, priv := testKeys(t)
	s := NewSealer(adapter.NewNative())

	env, err := s.Seal(ctx, []byte("integrity matters"), pub)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	raw, _ := transcode.DecodeBytes(env)

	body := append([]byte(nil), raw...)
	body[len(body)-1] ^= 0xff
	if _, err := s.Open(ctx, transcode.EncodeBytes(body), priv); err != adapter.ErrDecryptionFailed {
		t.Fatalf("expected ErrDecryptionFailed for tampered body, got %v", err)
	}

	flags := append([]byte(nil), raw...)
	flags[1] ^= flagCompressed
	if _, err := s.Open(ctx, transcode.EncodeBytes(flags), priv); err != adapter.ErrDecryptionFailed {
		t.Fatalf("expected ErrDecryptionFailed for tampered header, got %v", err)
	}

	version := append([]byte(nil), raw...)
	version[0] = 9
	if _, err := s.Open(ctx, transcode.EncodeBytes(version), priv); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}

	if _, err := s.Open(ctx, transcode.EncodeBytes(raw[:10]), priv); !errors.Is(err, ErrMalformedEnvelope) {
		t.Fatalf("expected ErrMalformedEnvelope, got %v", err)
	}
	if _, err := s.Open(ctx, "%%%", priv); !errors.Is(err, keycodec.ErrInvalidEncoding) {
		t.Fatalf("expected ErrInvalidEncoding, got %v", err)
	}
}

func TestOpenWithWrongKey(t *testing.T) {
	ctx := context.Background()
	pub, _ := testKeys(t)
	_, otherPriv := testKeys(t)
	s := NewSealer(adapter.NewNative())

	env, err := s.Seal(ctx, []byte("for someone else"), pub)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if _, err := s.Open(ctx, env, otherPriv); err != adapter.ErrDecryptionFailed {
		t.Fatalf("expected ErrDecryptionFailed, got %v", err)
	}
}

func BenchmarkSeal(b *testing.B) {
	pub, _ := testKeys(b)
	s := NewSealer(adapter.NewNative())
	payload := make([]byte, 64*1024)
	ctx := context.Background()
	b.SetBytes(int64(len(payload)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = s.Seal(ctx, payload, pub)
	}
}

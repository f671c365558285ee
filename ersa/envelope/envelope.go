package envelope

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/TheusHen/ersa/ersa/adapter"
	"github.com/TheusHen/ersa/ersa/keycodec"
	"github.com/TheusHen/ersa/ersa/transcode"
)

const (
	// Version is the current envelope format version.
	Version = 1

	flagCompressed = 1 << 0

	contentKeySize = 32
	headerSize     = 4
	infoLabel      = "ersa-envelope-v1"

	// DefaultMaxPayloadSize caps the decompressed size Open will produce.
	DefaultMaxPayloadSize = 64 << 20
)

var (
	ErrMalformedEnvelope  = errors.New("envelope: malformed envelope")
	ErrUnsupportedVersion = errors.New("envelope: unsupported version")
)

// Sealer seals and opens envelopes through an RSA adapter.
type Sealer struct {
	adapter    adapter.Adapter
	level      CompressionLevel
	maxPayload int64
}

// Option configures a Sealer.
type Option func(*Sealer)

// WithCompression sets the LZ4 level used before sealing.
func WithCompression(level CompressionLevel) Option {
	return func(s *Sealer) { s.level = level }
}

// WithMaxPayloadSize sets the largest decompressed payload Open accepts.
// Values <= 0 keep DefaultMaxPayloadSize.
func WithMaxPayloadSize(n int64) Option {
	return func(s *Sealer) {
		if n > 0 {
			s.maxPayload = n
		}
	}
}

// NewSealer returns a Sealer using a for the key-wrapping step.
// Compression defaults to CompressionDefault.
func NewSealer(a adapter.Adapter, opts ...Option) *Sealer {
	s := &Sealer{adapter: a, level: CompressionDefault, maxPayload: DefaultMaxPayloadSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seal encrypts plaintext of any length to publicKey and returns the
// base64 envelope.
func (s *Sealer) Seal(ctx context.Context, plaintext []byte, publicKey keycodec.NormalizedKey) (string, error) {
	contentKey := make([]byte, contentKeySize)
	if _, err := io.ReadFull(rand.Reader, contentKey); err != nil {
		return "", err
	}
	wrappedB64, err := s.adapter.EncryptPublic(ctx, contentKey, publicKey)
	if err != nil {
		return "", err
	}
	wrapped, err := transcode.DecodeBytes(wrappedB64)
	if err != nil {
		return "", err
	}
	if len(wrapped) > 0xffff {
		return "", fmt.Errorf("%w: wrapped key of %d bytes", ErrMalformedEnvelope, len(wrapped))
	}

	payload, compressed := maybeCompress(plaintext, s.level)
	var flags byte
	if compressed {
		flags |= flagCompressed
	}

	header := make([]byte, headerSize, headerSize+len(wrapped))
	header[0] = Version
	header[1] = flags
	binary.BigEndian.PutUint16(header[2:4], uint16(len(wrapped)))
	header = append(header, wrapped...)

	key, err := deriveKey(contentKey, append([]byte(infoLabel), wrapped...))
	if err != nil {
		return "", err
	}
	sealed, err := seal(key, payload, header)
	if err != nil {
		return "", err
	}
	return transcode.EncodeBytes(append(header, sealed...)), nil
}

// Open decrypts an envelope produced by Seal.
func (s *Sealer) Open(ctx context.Context, envelope string, privateKey keycodec.NormalizedKey) ([]byte, error) {
	raw, err := transcode.DecodeBytes(envelope)
	if err != nil {
		return nil, fmt.Errorf("%w: envelope", keycodec.ErrInvalidEncoding)
	}
	if len(raw) < headerSize {
		return nil, ErrMalformedEnvelope
	}
	if raw[0] != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, raw[0])
	}
	flags := raw[1]
	wrappedLen := int(binary.BigEndian.Uint16(raw[2:4]))
	if len(raw) < headerSize+wrappedLen {
		return nil, ErrMalformedEnvelope
	}
	header := raw[:headerSize+wrappedLen]
	wrapped := raw[headerSize : headerSize+wrappedLen]
	sealed := raw[headerSize+wrappedLen:]

	contentKey, err := s.adapter.DecryptPrivate(ctx, transcode.EncodeBytes(wrapped), privateKey)
	if err != nil {
		return nil, err
	}
	if len(contentKey) != contentKeySize {
		return nil, adapter.ErrDecryptionFailed
	}

	key, err := deriveKey(contentKey, append([]byte(infoLabel), wrapped...))
	if err != nil {
		return nil, err
	}
	payload, ok, err := open(key, sealed, header)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, adapter.ErrDecryptionFailed
	}

	if flags&flagCompressed != 0 {
		return decompress(payload, s.maxPayload)
	}
	return payload, nil
}

package ersa

import (
	"github.com/TheusHen/ersa/ersa/adapter"
	"github.com/TheusHen/ersa/ersa/envelope"
	"github.com/TheusHen/ersa/ersa/keycodec"
	"github.com/TheusHen/ersa/ersa/transcode"
)

// Errors returned by the facade. Match them with errors.Is; most are
// wrapped with context.
var (
	ErrInvalidEncoding      = keycodec.ErrInvalidEncoding
	ErrInvalidKeyFormat     = keycodec.ErrInvalidKeyFormat
	ErrEncoding             = transcode.ErrEncoding
	ErrPayloadTooLarge      = adapter.ErrPayloadTooLarge
	ErrDecryptionFailed     = adapter.ErrDecryptionFailed
	ErrUnsupportedOperation = adapter.ErrUnsupportedOperation
	ErrInvalidModulusLength = adapter.ErrInvalidModulusLength
	ErrMalformedEnvelope    = envelope.ErrMalformedEnvelope
	ErrDecompressionFailed  = envelope.ErrDecompressionFailed
)

package ersa

import (
	"github.com/TheusHen/ersa/ersa/keycodec"
	"github.com/TheusHen/ersa/ersa/transcode"
)

// DefaultChunkSize is the byte ceiling SplitIntoChunks uses for size 0.
const DefaultChunkSize = transcode.DefaultChunkSize

// SplitIntoChunks splits text into pieces of at most chunkSize bytes so each
// can be encrypted on its own. See transcode.SplitIntoChunks.
func SplitIntoChunks(text string, chunkSize int) []string {
	return transcode.SplitIntoChunks(text, chunkSize)
}

// JoinChunks concatenates decrypted chunks in order. It cannot tell whether
// a chunk was lost or reordered.
func JoinChunks(chunks []string) string {
	return transcode.JoinChunks(chunks)
}

func IsValidPEMPublicKey(key string) bool  { return keycodec.IsValidPublicKey(key) }
func IsValidPEMPrivateKey(key string) bool { return keycodec.IsValidPrivateKey(key) }
func IsValidPEMKey(key string) bool        { return keycodec.IsValidKey(key) }

// Package transcode moves payloads between UTF-8 text, raw bytes and base64,
// and splits text into pieces small enough for a single RSA operation.
package transcode

import (
	"encoding/base64"
	"errors"
	"strings"
	"unicode/utf8"
)

// DefaultChunkSize is the byte ceiling used when splitting text. It matches
// the PKCS#1 v1.5 plaintext limit of a 2048-bit key.
const DefaultChunkSize = 245

var ErrEncoding = errors.New("transcode: malformed encoding")

// Encode returns the base64 form of the UTF-8 bytes of s.
func Encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// Decode reverses Encode. The decoded bytes must be valid UTF-8.
func Decode(s string) (string, error) {
	b, err := DecodeBytes(s)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrEncoding
	}
	return string(b), nil
}

func EncodeBytes(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func DecodeBytes(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrEncoding
	}
	return b, nil
}

// SplitIntoChunks splits text into pieces of at most chunkSize bytes.
// Runes are never split; a rune wider than chunkSize gets a chunk of its own.
// Empty text yields a single empty chunk.
func SplitIntoChunks(text string, chunkSize int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if text == "" {
		return []string{""}
	}

	var chunks []string
	for len(text) > 0 {
		end := chunkSize
		if end >= len(text) {
			chunks = append(chunks, text)
			break
		}
		for end > 0 && !utf8.RuneStart(text[end]) {
			end--
		}
		if end == 0 {
			_, end = utf8.DecodeRuneInString(text)
		}
		chunks = append(chunks, text[:end])
		text = text[end:]
	}
	return chunks
}

// JoinChunks concatenates chunks in the given order. Nothing detects a
// missing, duplicated or reordered chunk.
func JoinChunks(chunks []string) string {
	return strings.Join(chunks, "")
}

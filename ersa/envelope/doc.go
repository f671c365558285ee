// Package envelope seals payloads of any size to an RSA public key.
//
// A single RSA-OAEP operation carries at most a few hundred bytes. An
// envelope wraps a random content key with the adapter's public-key
// encryption and protects the payload with that key:
//   - Content key wrapped by RSA-OAEP/SHA-1 (either adapter variant)
//   - Payload key derived via HKDF-SHA256, bound to the wrapped key
//   - Payload sealed with ChaCha20-Poly1305 (RFC 8439)
//   - Optional LZ4 compression, kept only when it shrinks the payload
//
// Wire format, base64 encoded:
//
//	1 byte:  version
//	1 byte:  flags
//	2 bytes: wrapped key length (big endian)
//	N bytes: wrapped key
//	12 bytes: nonce
//	M bytes: ciphertext || tag (16 bytes)
package envelope

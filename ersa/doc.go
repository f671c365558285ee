// Package ersa provides RSA key generation, encryption and decryption behind
// one small facade.
//
// Keys travel as PEM text (SPKI public keys, PKCS#8 private keys) and
// ciphertexts as base64 strings. The RSA work itself is delegated to an
// adapter.Adapter chosen at construction: the native adapter supports the
// full operation set, the platform adapter mirrors a browser-style crypto
// API restricted to RSA-OAEP/SHA-1.
//
// Ciphertexts carry no metadata. Callers track which key pair produced
// them, for example with keycodec.FingerprintPEM.
package ersa

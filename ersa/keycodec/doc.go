// Package keycodec converts RSA keys between their PEM text form and the
// DER bytes handed to crypto/x509.
//
// Validity helpers only look for armor markers; they are a convenience for
// callers picking a code path, not a structural check. Use the Parse
// functions when the key must actually be usable.
package keycodec

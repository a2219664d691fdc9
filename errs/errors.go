// Package errs collects the sentinel errors shared by the vault, ledger
// and codec packages, so callers can branch with errors.Is regardless of
// which layer produced the failure.
package errs

import "errors"

var (
	// ErrCborFailed indicates (de)serialization of a CBOR payload failed.
	ErrCborFailed = errors.New("iml: cbor serialization/deserialization failed")

	// ErrEcdsaFailed indicates a signing key was missing or the signing
	// primitive refused its input.
	ErrEcdsaFailed = errors.New("iml: ecdsa signing failed")

	// ErrCryptoFailure indicates an authenticated-cipher or ECDH primitive
	// rejected its inputs (wrong key size, tag mismatch, malformed peer key).
	ErrCryptoFailure = errors.New("iml: cryptographic primitive failure")

	// ErrKeyExistsForID indicates a vault key already exists at the
	// requested id.
	ErrKeyExistsForID = errors.New("iml: key already exists for id")

	// ErrKeyNotFound indicates no vault key exists at the requested id.
	ErrKeyNotFound = errors.New("iml: key not found")

	// ErrUnsupportedKeyType indicates a request for a key kind the vault
	// does not implement.
	ErrUnsupportedKeyType = errors.New("iml: unsupported key type")

	// ErrNotADid indicates a string failed DID syntax validation.
	ErrNotADid = errors.New("iml: not a did:iml string")

	// ErrNotAnIml indicates a DID's identifier segment failed
	// IML-specific validation (e.g. not a valid P-256 point).
	ErrNotAnIml = errors.New("iml: did identifier does not validate as an iml")

	// ErrCompressionFailed indicates DEFLATE encode/decode failed or
	// consumed malformed input.
	ErrCompressionFailed = errors.New("iml: deflate compression failed")
)

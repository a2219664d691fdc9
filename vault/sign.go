package vault

import (
	stdecdsa "crypto/ecdsa"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/datatrails/go-iml/errs"
	"github.com/zeebo/blake3"
)

// SignatureSize is the fixed wire size of a Signature: 32 bytes of r
// followed by 32 bytes of s, per spec.md §6.
const SignatureSize = 64

// Signature is a secp256k1 ECDSA signature in fixed-size r‖s form, never
// DER. This is deliberately not the decred ecdsa.Signature wire format
// (which is DER): the spec commits to a fixed 64-byte encoding, and getting
// there from a signature type that only exposes the DER form is the reason
// SignWith/VerifyWith go through the stdlib crypto/ecdsa bridge instead
// (see vault/keys.go's publicFromSecret and the DOMAIN STACK note in
// SPEC_FULL.md).
type Signature [SignatureSize]byte

// Bytes returns the raw 64-byte r‖s encoding.
func (s Signature) Bytes() []byte {
	out := make([]byte, SignatureSize)
	copy(out, s[:])
	return out
}

// SignatureFromBytes parses a 64-byte r‖s encoding.
func SignatureFromBytes(b []byte) (Signature, error) {
	var sig Signature
	if len(b) != SignatureSize {
		return sig, fmt.Errorf("%w: signature must be %d bytes, got %d", errs.ErrEcdsaFailed, SignatureSize, len(b))
	}
	copy(sig[:], b)
	return sig, nil
}

// digest is the fixed message-hash step every signature covers: Blake3-256
// of the verifiable view, per spec.md §6 ("Hashes: Blake3-256 for
// identifiers and content fingerprints").
func digest(msg []byte) [32]byte {
	return blake3.Sum256(msg)
}

// SignWith produces a secp256k1 ECDSA signature over msg using the signing
// key at id. The nonce is drawn through crypto/ecdsa from crypto/rand, so
// signing is not deterministic: two calls over the same msg return
// different signatures, each of which verifies.
func (v *Vault) SignWith(msg []byte, id KeyID) (Signature, error) {
	e, ok := v.entries[id]
	if !ok {
		return Signature{}, fmt.Errorf("%s: %w", id, errs.ErrKeyNotFound)
	}
	if e.kind != KeySigning {
		return Signature{}, fmt.Errorf("%s: %w", id, errs.ErrUnsupportedKeyType)
	}

	priv, _ := btcec.PrivKeyFromBytes(e.secret[:])
	h := digest(msg)

	r, s, err := stdecdsa.Sign(rand.Reader, priv.ToECDSA(), h[:])
	if err != nil {
		return Signature{}, fmt.Errorf("%w: %v", errs.ErrEcdsaFailed, err)
	}

	var sig Signature
	r.FillBytes(sig[0:32])
	s.FillBytes(sig[32:64])
	return sig, nil
}

// VerifyWith checks sig against msg under the public key at id. A mismatch
// or lookup failure both return false rather than an error: per spec.md
// §7, verification failure is a valid outcome, not an exception.
func (v *Vault) VerifyWith(msg []byte, id KeyID, sig Signature) bool {
	e, ok := v.entries[id]
	if !ok || e.kind != KeySigning {
		return false
	}
	pub, err := publicFromSecret(KeySigning, e.secret)
	if err != nil {
		return false
	}
	return VerifySignature(pub, msg, sig)
}

// VerifySignature checks sig against msg under an externally supplied SEC1
// compressed secp256k1 public key, used by the ledger to verify the
// signing key named in a state rather than one the local vault owns.
func VerifySignature(pubCompressed []byte, msg []byte, sig Signature) bool {
	pub, err := btcec.ParsePubKey(pubCompressed)
	if err != nil {
		return false
	}
	h := digest(msg)
	r := new(big.Int).SetBytes(sig[0:32])
	s := new(big.Int).SetBytes(sig[32:64])
	return stdecdsa.Verify(pub.ToECDSA(), h[:], r, s)
}

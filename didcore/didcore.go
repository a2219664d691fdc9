// Package didcore is an optional helper for attachments whose PayloadType
// is ledger.DIDCoreURI: it wraps the payload in a COSE_Sign1 envelope
// instead of relying on the vault's closed-variant Attachment.Proof field.
// It is grounded on the teacher's massifs/cose package (CoseSign1Message
// wrapping *cose.Sign1Message, a protected-header DID field) and on
// massifs.RootSigner's direct use of cose.Sign1Message.Sign/Verify. It
// deliberately does not touch vault.Vault: go-cose only ships ES256/384/512
// algorithm identifiers, not ES256K, so a DID-core envelope is signed with
// its own ephemeral P-256 ECDSA key rather than forcing a third KeyKind
// into the vault's closed signing/agreement tag (spec.md §9,
// "Polymorphism... route on the tag").
package didcore

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"

	"github.com/datatrails/go-iml/errs"
	"github.com/datatrails/go-iml/ledger"
	"github.com/veraison/go-cose"
)

// HeaderLabelIMLParent carries Attachment.Parent (the proof bytes of the
// authoring state's predecessor) in the COSE protected header, the same "bind provenance
// into a private protected-header label" idiom as the teacher's
// HeaderLabelDID (massifs/cose/cose.go).
const HeaderLabelIMLParent int64 = -65900

// GenerateKey produces a fresh P-256 ECDSA key pair for signing DID-core
// envelopes.
func GenerateKey() (*ecdsa.PrivateKey, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrEcdsaFailed, err)
	}
	return priv, nil
}

// Sign wraps an Attachment's payload (expected to carry PayloadType ==
// ledger.DIDCoreURI) in a COSE_Sign1 envelope signed by priv, binding
// Attachment.Parent into the protected header.
func Sign(priv *ecdsa.PrivateKey, a ledger.Attachment) ([]byte, error) {
	signer, err := cose.NewSigner(cose.AlgorithmES256, priv)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrEcdsaFailed, err)
	}

	msg := cose.Sign1Message{
		Headers: cose.Headers{
			Protected: cose.ProtectedHeader{
				cose.HeaderLabelContentType: a.PayloadType,
				HeaderLabelIMLParent:        a.Parent,
			},
		},
		Payload: a.Payload,
	}
	if err := msg.Sign(rand.Reader, nil, signer); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrEcdsaFailed, err)
	}
	return msg.MarshalCBOR()
}

// Verify checks a COSE_Sign1 envelope produced by Sign against pub and
// returns the envelope's payload bytes.
func Verify(pub *ecdsa.PublicKey, envelope []byte) ([]byte, error) {
	verifier, err := cose.NewVerifier(cose.AlgorithmES256, pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrEcdsaFailed, err)
	}

	var msg cose.Sign1Message
	if err := msg.UnmarshalCBOR(envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCborFailed, err)
	}
	if err := msg.Verify(nil, verifier); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrEcdsaFailed, err)
	}
	return msg.Payload, nil
}

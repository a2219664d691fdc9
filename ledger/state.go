// Package ledger implements the inverted microledger state machine:
// inception, evolution, iterative chain verification, and restoration from
// a vault alone (1-to-1 interaction is codec.Interact, in package codec).
// It is pure given a *vault.Vault —
// the same "component is a pure transform over an injected collaborator"
// shape the teacher uses for MassifCommitter/MassifContext.
package ledger

import (
	"bytes"

	"github.com/fxamacker/cbor/v2"
)

// DIDCoreURI is the reserved attachment payload_type indicating a DID-core
// resolution payload (spec.md §6).
const DIDCoreURI = "https://www.w3.org/TR/did-core/"

// Attachment is an authenticated, opaque payload anchored to the IML state
// that authored it. Attachments are not covered by the owning state's
// proof; they carry their own proof and are anchored via the owning
// state's ProofOfAttachments digest instead (spec.md §3, §9).
type Attachment struct {
	// Parent is the proof bytes of the state that the authoring state
	// evolved from (Evolve copies the predecessor's Proof here), not the
	// proof of the state that carries this attachment. It ties the
	// attachment to the chain even if it later travels detached.
	Parent []byte `cbor:"parent"`
	// Payload is the opaque content; applications may store a digest of
	// their real payload here instead of the payload itself.
	Payload []byte `cbor:"payload"`
	// PayloadType is an IANA media type, or DIDCoreURI for a DID-core
	// resolution payload.
	PayloadType string `cbor:"payload_type"`
	// Proof is the ECDSA signature, by the owning state's current
	// signing key, over the attachment's verifiable view (this field
	// cleared).
	Proof []byte `cbor:"proof,omitempty"`
}

// verifiableView returns the CBOR encoding of the attachment with Proof
// cleared, the projection its own Proof is computed and checked over.
func (a Attachment) verifiableView() ([]byte, error) {
	view := a
	view.Proof = nil
	return cbor.Marshal(view)
}

// State is one event in an inverted microledger: the current state embeds
// its compressed predecessor (Inversion) rather than the other way around,
// so the full history is reconstructed by walking backwards from the head.
// Field layout follows spec.md §3 verbatim.
type State struct {
	// ID is the stable identifier: hex of the inception ECDH public key.
	// Set at civilization 0 and carried unchanged on every evolution.
	ID string `cbor:"id,omitempty"`
	// Civilization is the monotonic generation counter.
	Civilization uint64 `cbor:"civilization"`
	// CurrentSK is the current ECDSA public signing key.
	CurrentSK []byte `cbor:"current_sk"`
	// NextSK is the pre-committed next ECDSA public signing key.
	NextSK []byte `cbor:"next_sk"`
	// InteractionKey is the ECDH public key, present only at
	// civilization 0 (spec.md §9 Open Question, resolved: later states
	// do not carry it; interaction always resolves to civilization 0).
	InteractionKey []byte `cbor:"interaction_key,omitempty"`
	// Attachments are not covered by Proof; see ProofOfAttachments.
	Attachments []Attachment `cbor:"attachments,omitempty"`
	// ProofOfAttachments anchors Attachments to this event. Present iff
	// Attachments were present at signing time, and persists even if
	// Attachments are later detached.
	ProofOfAttachments []byte `cbor:"proof_of_attachments,omitempty"`
	// Inversion is hex(DEFLATE(CBOR(previous state))). The field itself
	// is never encrypted; when codec.AsDID is given a shared secret it
	// encrypts the whole encoded state, this field included.
	// Empty iff Civilization == 0. This field is itself excluded from
	// the verifiable view: the proof never signs over the predecessor
	// bytes directly, only over the invariants (Civilization, CurrentSK,
	// NextSK, ...) that must hold between them.
	Inversion string `cbor:"inversion,omitempty"`
	// Proof is the ECDSA signature over VerifiableView().
	Proof []byte `cbor:"proof,omitempty"`
}

// VerifiableView returns the CBOR encoding of the state with Attachments,
// Proof and Inversion cleared — the exact bytes Proof is computed and
// checked over (spec.md §3).
func (s *State) VerifiableView() ([]byte, error) {
	view := *s
	view.Attachments = nil
	view.Proof = nil
	view.Inversion = ""
	return cbor.Marshal(view)
}

// Equal reports whether two states are byte-for-byte identical once
// encoded, used by the round-trip property tests (spec.md §8 property 1).
func (s *State) Equal(other *State) bool {
	a, errA := cbor.Marshal(s)
	b, errB := cbor.Marshal(other)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(a, b)
}

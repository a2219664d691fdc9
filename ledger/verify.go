package ledger

import (
	"bytes"
	"encoding/hex"

	"github.com/datatrails/go-iml/internal/wire"
	"github.com/datatrails/go-iml/vault"
	"github.com/fxamacker/cbor/v2"
)

// Verify walks the embedded predecessor chain and reports whether every
// link holds. A single broken link fails the whole chain; there is no
// partial acceptance (spec.md §4.B). Implemented iteratively rather than
// by recursing into Verify(prev) so chain length never grows the call
// stack (spec.md §9, "Verification recursion should be implemented
// iteratively").
func (s *State) Verify() bool {
	cur := s
	for {
		sig, err := vault.SignatureFromBytes(cur.Proof)
		if err != nil {
			return false
		}
		view, err := cur.VerifiableView()
		if err != nil {
			return false
		}
		if !vault.VerifySignature(cur.CurrentSK, view, sig) {
			return false
		}

		if cur.Civilization == 0 {
			return hex.EncodeToString(cur.InteractionKey) == cur.ID
		}

		if cur.Inversion == "" {
			return false
		}
		raw, err := wire.Inflate(cur.Inversion)
		if err != nil {
			return false
		}
		var prev State
		if err := cbor.Unmarshal(raw, &prev); err != nil {
			return false
		}
		if prev.Civilization+1 != cur.Civilization {
			return false
		}
		if !bytes.Equal(prev.NextSK, cur.CurrentSK) {
			return false
		}
		cur = &prev
	}
}

package ledger

import (
	"fmt"

	"github.com/datatrails/go-iml/errs"
	"github.com/datatrails/go-iml/internal/wire"
	"github.com/datatrails/go-iml/vault"
	"github.com/fxamacker/cbor/v2"
)

// ReEvolve reconstructs a state from a Vault that holds every sk_i but no
// ledger bytes at all (spec.md §4.B "Restore"). It walks civilization
// 0, 1, 2, ... for as long as the *next* civilization's pre-committed key
// also exists, signing each reconstructed state with the appropriate
// controller. It additionally recovers civilization 0's InteractionKey
// from the deterministic "dh_0" vault entry, which the original restore
// algorithm this is grounded on does not attempt (see DESIGN.md).
func ReEvolve(v *vault.Vault, id string) (*State, error) {
	var cur *State
	civ := uint64(0)
	for {
		currentController := vault.ControllerID(civ)
		nextController := vault.ControllerID(civ + 1)

		currentPub, ok := v.PublicFor(currentController, vault.KeySigning)
		if !ok {
			break
		}
		nextPub, ok := v.PublicFor(nextController, vault.KeySigning)
		if !ok {
			break
		}

		next := &State{
			ID:           id,
			Civilization: civ,
			CurrentSK:    currentPub,
			NextSK:       nextPub,
		}

		if civ == 0 {
			if interactionPub, ok := v.PublicFor(vault.InteractionControllerID(), vault.KeyAgreement); ok {
				next.InteractionKey = interactionPub
			}
		} else {
			selfBytes, err := cbor.Marshal(cur)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", errs.ErrCborFailed, err)
			}
			inversionHex, err := wire.Deflate(selfBytes)
			if err != nil {
				return nil, err
			}
			next.Inversion = inversionHex
		}

		view, err := next.VerifiableView()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrCborFailed, err)
		}
		sig, err := v.SignWith(view, currentController)
		if err != nil {
			return nil, err
		}
		next.Proof = sig.Bytes()
		cur = next

		if _, ok := v.PublicFor(vault.ControllerID(civ+2), vault.KeySigning); !ok {
			break
		}
		civ++
	}

	if cur == nil {
		return nil, fmt.Errorf("re-evolve: no controller key at civilization 0: %w", errs.ErrKeyNotFound)
	}
	return cur, nil
}

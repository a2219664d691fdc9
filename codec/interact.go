package codec

import (
	"fmt"

	"github.com/datatrails/go-iml/errs"
	"github.com/datatrails/go-iml/ledger"
	"github.com/datatrails/go-iml/vault"
)

// Interact performs the 1-to-1 exchange described in spec.md §4.B: parse
// peerDID for its inception interaction key, derive the ECDH shared
// secret with our own interaction key, and emit self re-encoded under
// that secret. The counterparty recovers the same secret from its own
// side and calls FromDID to decode and Verify to check it.
func Interact(v *vault.Vault, ourInteractionID vault.KeyID, self *ledger.State, peerDID string) (string, error) {
	peer, err := FromDID(peerDID, v, ourInteractionID)
	if err != nil {
		return "", err
	}
	if peer.InteractionKey == nil {
		return "", fmt.Errorf("%w: peer did carries no interaction key", errs.ErrNotAnIml)
	}

	dx, err := v.DiffieHellman(ourInteractionID, peer.InteractionKey)
	if err != nil {
		return "", err
	}
	return AsDID(self, dx)
}

package ledger

import (
	"encoding/hex"
	"fmt"

	"github.com/datatrails/go-iml/errs"
	"github.com/datatrails/go-iml/vault"
)

// New performs inception (spec.md §4.B): it mints the civilization-0
// signing key and its pre-committed successor, mints the inception ECDH
// key whose public bytes become the identifier, and signs the result.
func New(v *vault.Vault) (*State, error) {
	sk0, err := v.NewKeyFor(vault.ControllerID(0))
	if err != nil {
		return nil, fmt.Errorf("inception sk_0: %w", err)
	}
	sk1, err := v.NewKeyFor(vault.ControllerID(1))
	if err != nil {
		return nil, fmt.Errorf("inception sk_1: %w", err)
	}

	dhID, err := v.NewKey(vault.KeyAgreement, refKeyID(vault.InteractionControllerID()))
	if err != nil {
		return nil, fmt.Errorf("inception dh_0: %w", err)
	}

	currentPub, ok := v.PublicFor(sk0, vault.KeySigning)
	if !ok {
		return nil, fmt.Errorf("inception: %w", errs.ErrKeyNotFound)
	}
	nextPub, ok := v.PublicFor(sk1, vault.KeySigning)
	if !ok {
		return nil, fmt.Errorf("inception: %w", errs.ErrKeyNotFound)
	}
	interactionPub, ok := v.PublicFor(dhID, vault.KeyAgreement)
	if !ok {
		return nil, fmt.Errorf("inception: %w", errs.ErrKeyNotFound)
	}

	s := &State{
		ID:             hex.EncodeToString(interactionPub),
		Civilization:   0,
		CurrentSK:      currentPub,
		NextSK:         nextPub,
		InteractionKey: interactionPub,
	}

	view, err := s.VerifiableView()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCborFailed, err)
	}
	sig, err := v.SignWith(view, sk0)
	if err != nil {
		return nil, err
	}
	s.Proof = sig.Bytes()
	return s, nil
}

// refKeyID is a tiny helper so call sites can pass a deterministic KeyID
// by value where NewKey wants a pointer.
func refKeyID(id vault.KeyID) *vault.KeyID {
	return &id
}

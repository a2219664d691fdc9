package codec

import (
	"fmt"

	"github.com/datatrails/go-iml/errs"
	"github.com/datatrails/go-iml/internal/wire"
	"github.com/datatrails/go-iml/ledger"
	"github.com/fxamacker/cbor/v2"
)

// Deflate CBOR-encodes and DEFLATE-compresses state with no DID framing
// and no encryption — the same pipeline ledger.Evolve uses internally to
// build an inversion blob, exposed here for external callers per
// spec.md §4.C ("deflate(iml)/inflate(bytes) used by the Ledger for
// inversion: same pipeline minus the DID framing").
func Deflate(state *ledger.State) (string, error) {
	full, err := cbor.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrCborFailed, err)
	}
	return wire.Deflate(full)
}

// Inflate reverses Deflate.
func Inflate(hexStr string) (*ledger.State, error) {
	raw, err := wire.Inflate(hexStr)
	if err != nil {
		return nil, err
	}
	var state ledger.State
	if err := cbor.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCborFailed, err)
	}
	return &state, nil
}

package vault

import (
	"crypto/ecdh"
	"fmt"

	"github.com/datatrails/go-iml/errs"
)

// DiffieHellman computes the P-256 ECDH shared secret between our key at
// ourID and theirPub (an uncompressed X9.62 point). Both parties computing
// this from their respective private scalars and the other's public key
// arrive at the same 32 bytes (spec.md §8 property 2).
func (v *Vault) DiffieHellman(ourID KeyID, theirPub []byte) ([]byte, error) {
	e, ok := v.entries[ourID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ourID, errs.ErrKeyNotFound)
	}
	if e.kind != KeyAgreement {
		return nil, fmt.Errorf("%s: %w", ourID, errs.ErrUnsupportedKeyType)
	}

	priv, err := ecdh.P256().NewPrivateKey(e.secret[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCryptoFailure, err)
	}
	pub, err := ecdh.P256().NewPublicKey(theirPub)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed peer key: %v", errs.ErrCryptoFailure, err)
	}

	shared, err := priv.ECDH(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCryptoFailure, err)
	}
	return shared, nil
}

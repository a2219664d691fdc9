package vault

import (
	"crypto/ecdh"
	"crypto/rand"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/datatrails/go-iml/errs"
)

// NewKey generates a fresh key of the requested kind from a CSPRNG. If id is
// nil, the vault derives one by hashing the resulting public encoding;
// otherwise it fails KeyExistsForId if the id is already occupied.
func (v *Vault) NewKey(kind KeyKind, id *KeyID) (KeyID, error) {
	secret, public, err := generate(kind)
	if err != nil {
		return KeyID{}, err
	}

	var assigned KeyID
	if id != nil {
		assigned = *id
		if _, exists := v.entries[assigned]; exists {
			return KeyID{}, fmt.Errorf("%s: %w", assigned, errs.ErrKeyExistsForID)
		}
	} else {
		assigned = DeriveKeyID(public)
		if _, exists := v.entries[assigned]; exists {
			return KeyID{}, fmt.Errorf("%s: %w", assigned, errs.ErrKeyExistsForID)
		}
	}

	v.entries[assigned] = entry{kind: kind, secret: secret}
	v.Log.Debugf("vault: generated %s key at id %s", kind, assigned)
	return assigned, nil
}

// NewKeyFor generates a signing key deterministically addressed by id,
// failing KeyExistsForId if already taken. Used for the per-civilization
// "sk_N" controllers.
func (v *Vault) NewKeyFor(id KeyID) (KeyID, error) {
	return v.NewKey(KeySigning, &id)
}

// MoveKeyFor atomically renames a key entry from one id to another.
func (v *Vault) MoveKeyFor(from, to KeyID) error {
	e, ok := v.entries[from]
	if !ok {
		return fmt.Errorf("%s: %w", from, errs.ErrKeyNotFound)
	}
	// Overwriting v.entries[to] with e below already replaces any secret
	// previously stored there; zeroing a copy of the old value first
	// wouldn't touch the map's own backing storage (entry is a value
	// type, map iteration/lookup yields copies) and would just be
	// discarded, so there is nothing useful to zero here.
	v.entries[to] = e
	delete(v.entries, from)
	return nil
}

// PublicFor returns the public encoding of the key at id: SEC1 compressed
// (33 bytes) for a signing key, the uncompressed X9.62 P-256 point (65
// bytes) for an agreement key. The bool is false if absent or of a
// different kind than requested.
func (v *Vault) PublicFor(id KeyID, kind KeyKind) ([]byte, bool) {
	e, ok := v.entries[id]
	if !ok || e.kind != kind {
		return nil, false
	}
	pub, err := publicFromSecret(kind, e.secret)
	if err != nil {
		return nil, false
	}
	return pub, true
}

// generate produces a fresh 32-byte secret scalar of the requested kind
// along with its public encoding.
func generate(kind KeyKind) (secret [32]byte, public []byte, err error) {
	switch kind {
	case KeySigning:
		priv, genErr := btcec.NewPrivateKey()
		if genErr != nil {
			return secret, nil, fmt.Errorf("%w: %v", errs.ErrEcdsaFailed, genErr)
		}
		copy(secret[:], priv.Serialize())
		return secret, priv.PubKey().SerializeCompressed(), nil
	case KeyAgreement:
		priv, genErr := ecdh.P256().GenerateKey(rand.Reader)
		if genErr != nil {
			return secret, nil, fmt.Errorf("%w: %v", errs.ErrCryptoFailure, genErr)
		}
		copy(secret[:], priv.Bytes())
		return secret, priv.PublicKey().Bytes(), nil
	default:
		return secret, nil, errs.ErrUnsupportedKeyType
	}
}

// publicFromSecret re-derives the public encoding from a stored secret
// scalar.
func publicFromSecret(kind KeyKind, secret [32]byte) ([]byte, error) {
	switch kind {
	case KeySigning:
		priv, pub := btcec.PrivKeyFromBytes(secret[:])
		_ = priv
		return pub.SerializeCompressed(), nil
	case KeyAgreement:
		priv, err := ecdh.P256().NewPrivateKey(secret[:])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrCryptoFailure, err)
		}
		return priv.PublicKey().Bytes(), nil
	default:
		return nil, errs.ErrUnsupportedKeyType
	}
}

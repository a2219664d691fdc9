// Package codec implements the did:iml transport encoding (spec.md §4.C):
// CBOR-encode a whole ledger state, optionally authenticated-encrypt it
// under a shared secret, DEFLATE-compress, hex-encode, and frame as
// did:iml:<id>:<body>:<nonce?>. FromDID reverses the pipeline. Grounded on
// the teacher's cose package, which layers CBOR envelope construction
// (cose.go) underneath a thin verify/sign surface the same way this
// package layers framing over internal/wire.
package codec

import (
	"crypto/ecdh"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/datatrails/go-iml/errs"
	"github.com/datatrails/go-iml/internal/wire"
	"github.com/datatrails/go-iml/ledger"
	"github.com/datatrails/go-iml/vault"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	didPrefix  = "did"
	methodName = "iml"
	nonceSize  = 24
	keySize    = 32
)

// AsDID serializes state as a did:iml string (spec.md §4.C, §6). When
// sharedSecret is non-nil the whole CBOR body is XSalsa20-Poly1305
// encrypted under it before compression, and the nonce is carried as the
// DID's fifth segment; sharedSecret == nil yields an empty nonce segment.
func AsDID(state *ledger.State, sharedSecret []byte) (string, error) {
	full, err := cbor.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrCborFailed, err)
	}

	body := full
	nonceHex := ""
	if sharedSecret != nil {
		if len(sharedSecret) != keySize {
			return "", fmt.Errorf("%w: shared secret must be %d bytes, got %d", errs.ErrCryptoFailure, keySize, len(sharedSecret))
		}
		var nonce [nonceSize]byte
		if _, err := rand.Read(nonce[:]); err != nil {
			return "", fmt.Errorf("%w: %v", errs.ErrCryptoFailure, err)
		}
		var key [keySize]byte
		copy(key[:], sharedSecret)
		body = secretbox.Seal(nil, full, &nonce, &key)
		nonceHex = hex.EncodeToString(nonce[:])
	}

	bodyHex, err := wire.Deflate(body)
	if err != nil {
		return "", err
	}

	return strings.Join([]string{didPrefix, methodName, state.ID, bodyHex, nonceHex}, ":"), nil
}

// FromDID parses a did:iml string back into a state (spec.md §4.C). When
// the string carries a non-empty nonce segment, v and ourInteractionID are
// used to recompute the ECDH shared secret against the DID's own id
// segment (the peer's inception interaction key) before decrypting.
func FromDID(didStr string, v *vault.Vault, ourInteractionID vault.KeyID) (*ledger.State, error) {
	segments := strings.Split(didStr, ":")
	if len(segments) != 5 {
		return nil, fmt.Errorf("%w: expected 5 colon-separated segments, got %d", errs.ErrNotADid, len(segments))
	}
	if segments[0] != didPrefix || segments[1] != methodName {
		return nil, fmt.Errorf("%w: not a did:iml string", errs.ErrNotADid)
	}

	idHex, bodyHex, nonceHex := segments[2], segments[3], segments[4]
	peerPub, err := hex.DecodeString(idHex)
	if err != nil {
		return nil, fmt.Errorf("%w: identifier is not hex: %v", errs.ErrNotAnIml, err)
	}
	if _, err := ecdh.P256().NewPublicKey(peerPub); err != nil {
		return nil, fmt.Errorf("%w: identifier does not validate as a P-256 point: %v", errs.ErrNotAnIml, err)
	}

	raw, err := wire.Inflate(bodyHex)
	if err != nil {
		return nil, err
	}

	plaintext := raw
	if nonceHex != "" {
		nonce, err := hex.DecodeString(nonceHex)
		if err != nil || len(nonce) != nonceSize {
			return nil, fmt.Errorf("%w: malformed nonce segment", errs.ErrCryptoFailure)
		}
		dx, err := v.DiffieHellman(ourInteractionID, peerPub)
		if err != nil {
			return nil, err
		}
		var nonceArr [nonceSize]byte
		copy(nonceArr[:], nonce)
		var key [keySize]byte
		copy(key[:], dx)
		opened, ok := secretbox.Open(nil, raw, &nonceArr, &key)
		if !ok {
			return nil, fmt.Errorf("%w: authentication failed", errs.ErrCryptoFailure)
		}
		plaintext = opened
	}

	var state ledger.State
	if err := cbor.Unmarshal(plaintext, &state); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCborFailed, err)
	}
	return &state, nil
}

package vault

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// KeyID is the 4-byte tag the vault uses to address a secret. It is always
// derived by truncating a Blake3-256 digest to its first 4 bytes, whether
// the caller supplies the seed explicitly (the deterministic per-civilization
// controller ids, "sk_0", "sk_1", ...) or the vault derives it by hashing the
// freshly generated public key.
type KeyID [4]byte

// String renders the KeyID as lower-case hex, used in error messages and
// log lines.
func (id KeyID) String() string {
	return hex.EncodeToString(id[:])
}

// DeriveKeyID is the only function that may construct a KeyID from a seed.
// It underlies both the deterministic per-civilization controller ids and
// the public-key-derived ids new_key falls back to when the caller omits one.
func DeriveKeyID(seed []byte) KeyID {
	digest := blake3.Sum256(seed)
	var id KeyID
	copy(id[:], digest[:len(id)])
	return id
}

// ControllerID derives the deterministic signing-key id for a civilization,
// e.g. ControllerID(0) == DeriveKeyID([]byte("sk_0")).
func ControllerID(civilization uint64) KeyID {
	return DeriveKeyID([]byte(controllerSeed(civilization)))
}

func controllerSeed(civilization uint64) string {
	return "sk_" + uitoa(civilization)
}

// InteractionControllerID is the deterministic id used for the inception
// Diffie-Hellman key, analogous to ControllerID for signing keys. Keeping it
// deterministic (rather than deriving it from the key's own public bytes, as
// a bare new_key call would) is what lets ReEvolve recover interaction_key
// for civilization 0 from the vault alone; see DESIGN.md.
func InteractionControllerID() KeyID {
	return DeriveKeyID([]byte("dh_0"))
}

func uitoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}

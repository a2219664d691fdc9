package vault

import (
	"crypto/rand"
	"fmt"

	"github.com/datatrails/go-iml/errs"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	saltSize  = 16
	nonceSize = 24
)

// lockedRecord is one vault entry as it appears in a locked blob. Entries
// are serialized as a sequence of records rather than a CBOR map keyed by
// id, so that ordering carries no information and map iteration order never
// leaks through (spec.md §4.A, "Serialization for locking").
type lockedRecord struct {
	ID     []byte `cbor:"id"`
	Kind   KeyKind
	Secret []byte `cbor:"sk"`
}

// Lock CBOR-encodes the key map as a sequence of records, encrypts it with
// XSalsa20-Poly1305 under a key derived from passphrase via Argon2id, and
// zeroizes the in-memory map. The returned blob is
// salt(16) || ciphertext || nonce(24); the nonce is appended to the
// ciphertext as spec.md §4.A requires, and the salt is prefixed so Unlock
// can re-derive the same key.
func (v *Vault) Lock(passphrase []byte) ([]byte, error) {
	records := make([]lockedRecord, 0, len(v.entries))
	for id, e := range v.entries {
		records = append(records, lockedRecord{ID: append([]byte(nil), id[:]...), Kind: e.kind, Secret: append([]byte(nil), e.secret[:]...)})
	}

	plaintext, err := cbor.Marshal(records)
	zeroRecords(records)
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("%w: %v", errs.ErrCborFailed, err)
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		v.Close()
		return nil, fmt.Errorf("%w: %v", errs.ErrCryptoFailure, err)
	}
	key := deriveLockKey(passphrase, salt, v.Cfg)

	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		v.Close()
		return nil, fmt.Errorf("%w: %v", errs.ErrCryptoFailure, err)
	}

	var keyArr [32]byte
	copy(keyArr[:], key)
	sealed := secretbox.Seal(nil, plaintext, &nonce, &keyArr)
	zero(plaintext)
	zero(key)
	zero(keyArr[:])

	v.Close() // zeroize the live map now that its encrypted form is safely held

	out := make([]byte, 0, saltSize+len(sealed)+nonceSize)
	out = append(out, salt...)
	out = append(out, sealed...)
	out = append(out, nonce[:]...)
	return out, nil
}

// Unlock reverses Lock: it never leaves decrypted key material in a buffer
// that outlives this call except inside the returned Vault's entry map.
func Unlock(blob []byte, passphrase []byte, opts ...Option) (*Vault, error) {
	if len(blob) < saltSize+nonceSize+secretbox.Overhead {
		return nil, fmt.Errorf("%w: locked blob truncated", errs.ErrCryptoFailure)
	}

	salt := blob[:saltSize]
	nonce := blob[len(blob)-nonceSize:]
	sealed := blob[saltSize : len(blob)-nonceSize]

	v := New(opts...)
	key := deriveLockKey(passphrase, salt, v.Cfg)
	defer zero(key)

	var keyArr [32]byte
	copy(keyArr[:], key)
	defer zero(keyArr[:])

	var nonceArr [nonceSize]byte
	copy(nonceArr[:], nonce)

	plaintext, ok := secretbox.Open(nil, sealed, &nonceArr, &keyArr)
	if !ok {
		return nil, fmt.Errorf("%w: authentication failed", errs.ErrCryptoFailure)
	}
	defer zero(plaintext)

	var records []lockedRecord
	if err := cbor.Unmarshal(plaintext, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCborFailed, err)
	}
	defer zeroRecords(records)

	for _, r := range records {
		if len(r.ID) != len(KeyID{}) || len(r.Secret) != 32 {
			v.Close()
			return nil, fmt.Errorf("%w: malformed key record", errs.ErrCryptoFailure)
		}
		var id KeyID
		copy(id[:], r.ID)
		var e entry
		e.kind = r.Kind
		copy(e.secret[:], r.Secret)
		v.entries[id] = e
	}
	return v, nil
}

func deriveLockKey(passphrase, salt []byte, cfg Config) []byte {
	cfg = cfg.withDefaults()
	return argon2.IDKey(passphrase, salt, cfg.Argon2Time, cfg.Argon2MemoryKiB, cfg.Argon2Threads, 32)
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func zeroRecords(records []lockedRecord) {
	for i := range records {
		zero(records[i].Secret)
		zero(records[i].ID)
	}
}

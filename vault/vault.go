// Package vault owns secret key material for an inverted microledger: it
// generates secp256k1 signing keys and P-256 key-agreement keys, signs and
// verifies on behalf of callers who never see the scalars, derives ECDH
// shared secrets, and can be locked to an authenticated-encrypted blob under
// a passphrase. Modeled on the teacher's dependency-injected component shape
// (massifs.MassifCommitter takes a Config + Logger + Store in its
// constructor); the vault takes a Config and a Logger the same way.
package vault

import (
	"runtime"

	"github.com/datatrails/go-iml/internal/obslog"
)

// KeyKind is the vault's closed tagged variant distinguishing a signing key
// from a key-agreement key; routing on it (rather than an open interface
// hierarchy) is a deliberate simplification, per spec.md's design notes.
type KeyKind uint8

const (
	// KeySigning identifies an ECDSA secp256k1 signing key.
	KeySigning KeyKind = iota
	// KeyAgreement identifies a P-256 ECDH private scalar.
	KeyAgreement
)

func (k KeyKind) String() string {
	switch k {
	case KeySigning:
		return "signing"
	case KeyAgreement:
		return "agreement"
	default:
		return "unknown"
	}
}

// entry is the vault's internal record for one secret scalar. secret is
// always exactly 32 bytes regardless of kind (a secp256k1 private scalar or
// a P-256 private scalar are both 32 bytes), which is what makes the
// locked-vault record format (lock.go) uniform across kinds.
type entry struct {
	kind   KeyKind
	secret [32]byte
}

func (e *entry) zero() {
	for i := range e.secret {
		e.secret[i] = 0
	}
}

// Config holds the vault's cipher/KDF parameters. Zero value is the
// production default; tests may tighten/loosen the Argon2 cost to trade
// test runtime for realism.
type Config struct {
	// Argon2Time, Argon2MemoryKiB and Argon2Threads parametrize the
	// passphrase KDF used by Lock/Unlock. Zero values resolve to
	// DefaultArgon2Params.
	Argon2Time      uint32
	Argon2MemoryKiB uint32
	Argon2Threads   uint8
}

// DefaultArgon2Params are conservative interactive-use parameters (same
// order of magnitude as the Argon2 RFC's recommended minimums).
var DefaultArgon2Params = Config{Argon2Time: 1, Argon2MemoryKiB: 64 * 1024, Argon2Threads: 4}

func (c Config) withDefaults() Config {
	if c.Argon2Time == 0 {
		c.Argon2Time = DefaultArgon2Params.Argon2Time
	}
	if c.Argon2MemoryKiB == 0 {
		c.Argon2MemoryKiB = DefaultArgon2Params.Argon2MemoryKiB
	}
	if c.Argon2Threads == 0 {
		c.Argon2Threads = DefaultArgon2Params.Argon2Threads
	}
	return c
}

// Vault is the single-owner, single-threaded container of secret key
// material described by spec.md §4.A / §5. Callers sharing a Vault across
// goroutines are responsible for external synchronization; the vault does
// not lock itself.
type Vault struct {
	Cfg     Config
	Log     obslog.Logger
	entries map[KeyID]entry
}

// Option configures a Vault constructed with New.
type Option func(*Vault)

// WithLogger injects a Logger, matching the teacher's constructor-injected
// logging convention. Omitting it defaults to a no-op logger.
func WithLogger(l obslog.Logger) Option {
	return func(v *Vault) { v.Log = l }
}

// WithConfig overrides the vault's cipher/KDF parameters.
func WithConfig(cfg Config) Option {
	return func(v *Vault) { v.Cfg = cfg.withDefaults() }
}

// New constructs an empty, unlocked Vault.
func New(opts ...Option) *Vault {
	v := &Vault{
		Cfg:     DefaultArgon2Params,
		Log:     obslog.Noop(),
		entries: make(map[KeyID]entry),
	}
	for _, o := range opts {
		o(v)
	}
	runtime.SetFinalizer(v, (*Vault).Close)
	return v
}

// Close zeroizes every secret scalar the vault holds. It is safe to call
// multiple times. Every exit path that removes a vault from scope (drop,
// lock) must reach this; a failed MoveKeyFor removes no entry and leaves
// the vault as it was. This mirrors the explicit Close()
// lifecycle hsiuhsiu-cb-mpc-go-exp uses for its C++-backed key handles
// (ECDSA2PKey.Close releases the foreign resource; ours zeroizes Go memory
// instead, but the "always call Close, a finalizer is only the backstop"
// discipline is the same idiom).
func (v *Vault) Close() {
	for id, e := range v.entries {
		// entry is a value type, so e here is a copy; zero it and write
		// it back into the map before deleting, otherwise zero() would
		// only ever touch the loop-local copy and the secret bytes in
		// the map's own backing storage would never be overwritten.
		e.zero()
		v.entries[id] = e
		delete(v.entries, id)
	}
}

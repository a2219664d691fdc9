package vault_test

import (
	"testing"

	"github.com/datatrails/go-iml/errs"
	"github.com/datatrails/go-iml/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastCfg keeps Argon2 cheap so the test suite doesn't pay production KDF
// cost for every lock/unlock round-trip.
var fastCfg = vault.Config{Argon2Time: 1, Argon2MemoryKiB: 8 * 1024, Argon2Threads: 1}

func TestLockUnlockRoundTrip(t *testing.T) {
	v := vault.New(vault.WithConfig(fastCfg))
	id, err := v.NewKey(vault.KeySigning, nil)
	require.NoError(t, err)
	wantPub, ok := v.PublicFor(id, vault.KeySigning)
	require.True(t, ok)

	blob, err := v.Lock([]byte("correct horse battery staple"))
	require.NoError(t, err)

	// Lock must zeroize the live map.
	_, ok = v.PublicFor(id, vault.KeySigning)
	assert.False(t, ok)

	restored, err := vault.Unlock(blob, []byte("correct horse battery staple"), vault.WithConfig(fastCfg))
	require.NoError(t, err)

	gotPub, ok := restored.PublicFor(id, vault.KeySigning)
	require.True(t, ok)
	assert.Equal(t, wantPub, gotPub)
}

func TestUnlockWrongPassphrase(t *testing.T) {
	v := vault.New(vault.WithConfig(fastCfg))
	_, err := v.NewKey(vault.KeySigning, nil)
	require.NoError(t, err)

	blob, err := v.Lock([]byte("p1"))
	require.NoError(t, err)

	_, err = vault.Unlock(blob, []byte("p2"), vault.WithConfig(fastCfg))
	assert.ErrorIs(t, err, errs.ErrCryptoFailure)
}

func TestUnlockTruncatedBlob(t *testing.T) {
	_, err := vault.Unlock([]byte("too short"), []byte("p"), vault.WithConfig(fastCfg))
	assert.ErrorIs(t, err, errs.ErrCryptoFailure)
}

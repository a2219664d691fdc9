package vault_test

import (
	"testing"

	"github.com/datatrails/go-iml/errs"
	"github.com/datatrails/go-iml/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeyDerivesIDWhenOmitted(t *testing.T) {
	v := vault.New()
	id, err := v.NewKey(vault.KeySigning, nil)
	require.NoError(t, err)

	pub, ok := v.PublicFor(id, vault.KeySigning)
	require.True(t, ok)
	assert.Len(t, pub, 33) // SEC1 compressed
}

func TestNewKeyExplicitIDConflict(t *testing.T) {
	v := vault.New()
	id := vault.DeriveKeyID([]byte("sk_0"))
	_, err := v.NewKey(vault.KeySigning, &id)
	require.NoError(t, err)

	_, err = v.NewKey(vault.KeySigning, &id)
	assert.ErrorIs(t, err, errs.ErrKeyExistsForID)
}

func TestMoveKeyFor(t *testing.T) {
	v := vault.New()
	from := vault.DeriveKeyID([]byte("from"))
	to := vault.DeriveKeyID([]byte("to"))

	_, err := v.NewKey(vault.KeySigning, &from)
	require.NoError(t, err)

	require.NoError(t, v.MoveKeyFor(from, to))
	_, ok := v.PublicFor(from, vault.KeySigning)
	assert.False(t, ok)
	_, ok = v.PublicFor(to, vault.KeySigning)
	assert.True(t, ok)

	err = v.MoveKeyFor(from, to)
	assert.ErrorIs(t, err, errs.ErrKeyNotFound)
}

func TestSignAndVerifyWith(t *testing.T) {
	v := vault.New()
	id, err := v.NewKey(vault.KeySigning, nil)
	require.NoError(t, err)

	msg := []byte("inverted microledger")
	sig, err := v.SignWith(msg, id)
	require.NoError(t, err)
	assert.True(t, v.VerifyWith(msg, id, sig))
	assert.False(t, v.VerifyWith([]byte("tampered"), id, sig))
}

func TestSignWithMissingKey(t *testing.T) {
	v := vault.New()
	_, err := v.SignWith([]byte("x"), vault.DeriveKeyID([]byte("nope")))
	assert.ErrorIs(t, err, errs.ErrKeyNotFound)
}

func TestDiffieHellmanSymmetry(t *testing.T) {
	a := vault.New()
	b := vault.New()

	aID, err := a.NewKey(vault.KeyAgreement, nil)
	require.NoError(t, err)
	bID, err := b.NewKey(vault.KeyAgreement, nil)
	require.NoError(t, err)

	aPub, ok := a.PublicFor(aID, vault.KeyAgreement)
	require.True(t, ok)
	bPub, ok := b.PublicFor(bID, vault.KeyAgreement)
	require.True(t, ok)

	dxAB, err := a.DiffieHellman(aID, bPub)
	require.NoError(t, err)
	dxBA, err := b.DiffieHellman(bID, aPub)
	require.NoError(t, err)

	assert.Equal(t, dxAB, dxBA)
}

func TestDiffieHellmanMalformedPeerKey(t *testing.T) {
	v := vault.New()
	id, err := v.NewKey(vault.KeyAgreement, nil)
	require.NoError(t, err)

	_, err = v.DiffieHellman(id, []byte("not a point"))
	assert.ErrorIs(t, err, errs.ErrCryptoFailure)
}

package codec_test

import (
	"testing"

	"github.com/datatrails/go-iml/codec"
	"github.com/datatrails/go-iml/ledger"
	"github.com/datatrails/go-iml/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Property 1: inflate(deflate(iml)) == iml; from_did(as_did(iml, None)) == iml.
func TestRoundTripPlain(t *testing.T) {
	v := vault.New()
	s, err := ledger.New(v)
	require.NoError(t, err)
	s, err = ledger.Evolve(v, s, true, nil)
	require.NoError(t, err)

	hexBody, err := codec.Deflate(s)
	require.NoError(t, err)
	back, err := codec.Inflate(hexBody)
	require.NoError(t, err)
	assert.True(t, s.Equal(back))

	did, err := codec.AsDID(s, nil)
	require.NoError(t, err)
	fromDID, err := codec.FromDID(did, v, vault.InteractionControllerID())
	require.NoError(t, err)
	assert.True(t, s.Equal(fromDID))
	assert.True(t, fromDID.Verify())
}

func TestAsDIDHasFiveSegmentsAndEmptyNonceWhenUnencrypted(t *testing.T) {
	v := vault.New()
	s, err := ledger.New(v)
	require.NoError(t, err)

	did, err := codec.AsDID(s, nil)
	require.NoError(t, err)

	parts := splitColon(did)
	require.Len(t, parts, 5)
	assert.Equal(t, "did", parts[0])
	assert.Equal(t, "iml", parts[1])
	assert.Equal(t, s.ID, parts[2])
	assert.Empty(t, parts[4])
}

// S5 Interaction.
func TestInteraction(t *testing.T) {
	a := vault.New()
	b := vault.New()

	sa, err := ledger.New(a)
	require.NoError(t, err)
	sb, err := ledger.New(b)
	require.NoError(t, err)

	aInteractionID := vault.InteractionControllerID()
	bInteractionID := vault.InteractionControllerID()

	selfDIDForB, err := codec.AsDID(sb, nil)
	require.NoError(t, err)

	encodedForB, err := codec.Interact(a, aInteractionID, sa, selfDIDForB)
	require.NoError(t, err)

	decoded, err := codec.FromDID(encodedForB, b, bInteractionID)
	require.NoError(t, err)
	assert.True(t, decoded.Verify())
	assert.Equal(t, sa.ID, decoded.ID)
}

func TestFromDIDRejectsMalformedDID(t *testing.T) {
	v := vault.New()
	_, err := codec.FromDID("not-a-did-at-all", v, vault.InteractionControllerID())
	assert.Error(t, err)
}

func splitColon(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

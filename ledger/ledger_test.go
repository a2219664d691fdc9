package ledger_test

import (
	"testing"

	"github.com/datatrails/go-iml/ledger"
	"github.com/datatrails/go-iml/vault"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S1 Inception.
func TestInception(t *testing.T) {
	v := vault.New()
	s, err := ledger.New(v)
	require.NoError(t, err)

	assert.Equal(t, uint64(0), s.Civilization)
	assert.True(t, s.Verify())
}

// S2 Rotate once.
func TestEvolveRotatesOnce(t *testing.T) {
	v := vault.New()
	s0, err := ledger.New(v)
	require.NoError(t, err)

	s1, err := ledger.Evolve(v, s0, true, nil)
	require.NoError(t, err)

	assert.Equal(t, uint64(1), s1.Civilization)
	assert.Equal(t, s0.NextSK, s1.CurrentSK)
	assert.True(t, s1.Verify())
}

// S3 16 rotations.
func TestSixteenRotations(t *testing.T) {
	v := vault.New()
	s, err := ledger.New(v)
	require.NoError(t, err)

	for i := 0; i < 16; i++ {
		s, err = ledger.Evolve(v, s, true, nil)
		require.NoError(t, err)
	}

	assert.Equal(t, uint64(16), s.Civilization)
	assert.True(t, s.Verify())
}

// S4 Broken chain.
func TestTamperedProofFailsVerify(t *testing.T) {
	v := vault.New()
	s0, err := ledger.New(v)
	require.NoError(t, err)
	s1, err := ledger.Evolve(v, s0, true, nil)
	require.NoError(t, err)

	other := vault.ControllerID(99)
	_, err = v.NewKeyFor(other)
	require.NoError(t, err)
	sig, err := v.SignWith([]byte("a different message entirely"), other)
	require.NoError(t, err)
	s1.Proof = sig.Bytes()

	assert.False(t, s1.Verify())
}

func TestEvolveWithoutRotateOrAttachmentsIsNoop(t *testing.T) {
	v := vault.New()
	s0, err := ledger.New(v)
	require.NoError(t, err)

	s1, err := ledger.Evolve(v, s0, false, nil)
	require.NoError(t, err)
	assert.True(t, s0.Equal(s1))
}

func TestEvolveWithAttachmentsOnly(t *testing.T) {
	v := vault.New()
	s0, err := ledger.New(v)
	require.NoError(t, err)

	s1, err := ledger.Evolve(v, s0, false, []ledger.AttachmentRequest{
		{Payload: []byte("hello"), PayloadType: "text/plain"},
	})
	require.NoError(t, err)

	require.Len(t, s1.Attachments, 1)
	assert.NotEmpty(t, s1.ProofOfAttachments)
	assert.Equal(t, s0.CurrentSK, s1.CurrentSK)
	assert.True(t, s1.Verify())
}

func TestReEvolveReconstructsChain(t *testing.T) {
	v := vault.New()
	s, err := ledger.New(v)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		s, err = ledger.Evolve(v, s, true, nil)
		require.NoError(t, err)
	}

	restored, err := ledger.ReEvolve(v, s.ID)
	require.NoError(t, err)

	assert.Equal(t, s.Civilization, restored.Civilization)
	assert.Equal(t, s.CurrentSK, restored.CurrentSK)
	assert.Equal(t, s.NextSK, restored.NextSK)
	assert.True(t, restored.Verify())
}

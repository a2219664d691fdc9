package didcore_test

import (
	"testing"

	"github.com/datatrails/go-iml/didcore"
	"github.com/datatrails/go-iml/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	priv, err := didcore.GenerateKey()
	require.NoError(t, err)

	a := ledger.Attachment{
		Parent:      []byte("parent-proof"),
		Payload:     []byte("resolution document"),
		PayloadType: ledger.DIDCoreURI,
	}

	envelope, err := didcore.Sign(priv, a)
	require.NoError(t, err)

	payload, err := didcore.Verify(&priv.PublicKey, envelope)
	require.NoError(t, err)
	assert.Equal(t, a.Payload, payload)
}

func TestVerifyRejectsTamperedEnvelope(t *testing.T) {
	priv, err := didcore.GenerateKey()
	require.NoError(t, err)
	other, err := didcore.GenerateKey()
	require.NoError(t, err)

	a := ledger.Attachment{Payload: []byte("x"), PayloadType: ledger.DIDCoreURI}
	envelope, err := didcore.Sign(priv, a)
	require.NoError(t, err)

	_, err = didcore.Verify(&other.PublicKey, envelope)
	assert.Error(t, err)
}

package ledger

import (
	"bytes"
	"fmt"

	"github.com/datatrails/go-iml/errs"
	"github.com/datatrails/go-iml/internal/wire"
	"github.com/datatrails/go-iml/vault"
	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"
)

// AttachmentRequest is the caller-supplied half of an Attachment: Evolve
// fills in Parent and Proof once the new state's signer is known.
type AttachmentRequest struct {
	Payload     []byte
	PayloadType string
}

// Evolve advances self by one civilization (spec.md §4.B). If neither
// rotateSK nor attachments is requested, it returns self unchanged — no
// new civilization, no new proof, no new inversion.
func Evolve(v *vault.Vault, self *State, rotateSK bool, attachments []AttachmentRequest) (*State, error) {
	if !rotateSK && len(attachments) == 0 {
		return self, nil
	}

	selfBytes, err := cbor.Marshal(self)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCborFailed, err)
	}
	inversionHex, err := wire.Deflate(selfBytes)
	if err != nil {
		return nil, err
	}

	next := &State{
		ID:           self.ID,
		Civilization: self.Civilization + 1,
		Inversion:    inversionHex,
	}

	// Civilization bumps on every Evolve call, rotating or not, but a
	// controller index ("sk_N") only comes into existence on a rotating
	// call. So the controller that owns self.CurrentSK can trail
	// self.Civilization by however many attachment-only evolves happened
	// since the last rotation; it is not simply ControllerID(self.Civilization).
	// currentIdx finds it by searching the contiguous run of controller
	// indices every rotation mints in order (0, 1, 2, ...), which is the
	// only thing NewKeyFor ever allocates signing keys under.
	currentIdx, ok := currentControllerIndex(v, self.CurrentSK, self.Civilization)
	if !ok {
		return nil, fmt.Errorf("evolve: no controller owns current signing key: %w", errs.ErrKeyNotFound)
	}

	var signer vault.KeyID

	if rotateSK {
		// self.NextSK was committed as ControllerID(currentIdx + 1); it
		// now fulfills the pre-commitment and becomes this event's signer.
		signer = vault.ControllerID(currentIdx + 1)
		currentPub, ok := v.PublicFor(signer, vault.KeySigning)
		if !ok {
			return nil, fmt.Errorf("evolve: pre-committed key missing: %w", errs.ErrKeyNotFound)
		}
		nextController := vault.ControllerID(currentIdx + 2)
		if _, err := v.NewKeyFor(nextController); err != nil {
			return nil, fmt.Errorf("evolve: %w", err)
		}
		nextPub, ok := v.PublicFor(nextController, vault.KeySigning)
		if !ok {
			return nil, fmt.Errorf("evolve: %w", errs.ErrKeyNotFound)
		}
		next.CurrentSK = currentPub
		next.NextSK = nextPub
	} else {
		signer = vault.ControllerID(currentIdx)
		next.CurrentSK = append([]byte(nil), self.CurrentSK...)
		next.NextSK = append([]byte(nil), self.NextSK...)
	}

	if len(attachments) > 0 {
		built := make([]Attachment, 0, len(attachments))
		for _, req := range attachments {
			a := Attachment{
				Parent:      append([]byte(nil), self.Proof...),
				Payload:     req.Payload,
				PayloadType: req.PayloadType,
			}
			view, err := a.verifiableView()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", errs.ErrCborFailed, err)
			}
			sig, err := v.SignWith(view, signer)
			if err != nil {
				return nil, err
			}
			a.Proof = sig.Bytes()
			built = append(built, a)
		}
		digestSrc, err := cbor.Marshal(built)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrCborFailed, err)
		}
		sum := blake3.Sum256(digestSrc)
		next.Attachments = built
		next.ProofOfAttachments = sum[:]
	}

	view, err := next.VerifiableView()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCborFailed, err)
	}
	sig, err := v.SignWith(view, signer)
	if err != nil {
		return nil, err
	}
	next.Proof = sig.Bytes()
	return next, nil
}

// currentControllerIndex finds the controller index i such that
// vault.ControllerID(i)'s public signing key equals pub. Controller
// indices are minted strictly in order (0, 1, 2, ...) by inception and
// each rotating Evolve, so a linear scan bounded by maxCiv (an evolved
// chain can never have rotated more times than it has civilizations) is
// enough to recover the index from nothing but the public key bytes
// carried in the state itself.
func currentControllerIndex(v *vault.Vault, pub []byte, maxCiv uint64) (uint64, bool) {
	for i := uint64(0); i <= maxCiv; i++ {
		got, ok := v.PublicFor(vault.ControllerID(i), vault.KeySigning)
		if ok && bytes.Equal(got, pub) {
			return i, true
		}
	}
	return 0, false
}

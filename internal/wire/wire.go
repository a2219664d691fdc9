// Package wire holds the byte-level compress/hex pipeline shared by the
// ledger (embedding a predecessor as inversion bytes) and the codec
// (framing a whole state as a DID body), so neither package needs to
// import the other just to reach DEFLATE. Grounded on the teacher's own
// layering: massifs keeps its MMR/bloom storage codecs in leaf packages
// with no upward imports, and the higher massifs/verify logic calls down
// into them.
package wire

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/datatrails/go-iml/errs"
	"github.com/klauspost/compress/flate"
)

// Deflate DEFLATE-compresses plain and returns its lower-case hex
// encoding.
func Deflate(plain []byte) (string, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrCompressionFailed, err)
	}
	if _, err := w.Write(plain); err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrCompressionFailed, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrCompressionFailed, err)
	}
	return hex.EncodeToString(buf.Bytes()), nil
}

// Inflate reverses Deflate: hex-decode then DEFLATE-inflate.
func Inflate(hexStr string) ([]byte, error) {
	compressed, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCompressionFailed, err)
	}
	r := flate.NewReader(bytes.NewReader(compressed))
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrCompressionFailed, err)
	}
	return out, nil
}

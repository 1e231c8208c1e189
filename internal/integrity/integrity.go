// Package integrity provides the content-hashing primitives for the evidence
// chain. Every stored artifact gets a SHA-256 digest computed while the bytes
// stream through ingestion; digests are later re-checked against storage and
// collected into pack manifests.
package integrity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
)

// Digest is a lowercase hex-encoded SHA-256 digest.
type Digest string

// Sum256 returns the digest of a byte slice.
func Sum256(b []byte) Digest {
	s := sha256.Sum256(b)
	return Digest(hex.EncodeToString(s[:]))
}

// HashAll drains r, returning its digest and byte count.
func HashAll(r io.Reader) (Digest, int64, error) {
	h := sha256.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return "", n, fmt.Errorf("hash stream: %w", err)
	}
	return Digest(hex.EncodeToString(h.Sum(nil))), n, nil
}

// HashingReader wraps a reader and accumulates a SHA-256 digest of everything
// read through it. It lets ingestion hash an upload while streaming it to
// object storage without buffering the payload.
type HashingReader struct {
	r io.Reader
	h hash.Hash
	n int64
}

// NewHashingReader wraps r.
func NewHashingReader(r io.Reader) *HashingReader {
	return &HashingReader{r: r, h: sha256.New()}
}

func (hr *HashingReader) Read(p []byte) (int, error) {
	n, err := hr.r.Read(p)
	if n > 0 {
		// hash.Hash.Write never returns an error
		hr.h.Write(p[:n])
		hr.n += int64(n)
	}
	return n, err
}

// Sum returns the digest of all bytes read so far.
func (hr *HashingReader) Sum() Digest {
	return Digest(hex.EncodeToString(hr.h.Sum(nil)))
}

// BytesRead returns the number of bytes read so far.
func (hr *HashingReader) BytesRead() int64 {
	return hr.n
}

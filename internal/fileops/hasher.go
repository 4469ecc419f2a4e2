// Package fileops provides digesting readers, verification and atomic
// writes for save and backup files.
package fileops

import (
	_ "crypto/sha256" // registers the canonical digest algorithm
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/opencontainers/go-digest"

	"github.com/meigma/horizon/internal/savetype"
)

// DigestingReader wraps an io.Reader and computes the digest and size of
// all data read.
type DigestingReader struct {
	r io.Reader
	d digest.Digester
	n uint64
}

// NewDigestingReader creates a reader that digests with the canonical
// algorithm while reading.
func NewDigestingReader(r io.Reader) *DigestingReader {
	return &DigestingReader{r: r, d: digest.Canonical.Digester()}
}

// Read implements io.Reader.
func (dr *DigestingReader) Read(p []byte) (int, error) {
	n, err := dr.r.Read(p)
	if n > 0 {
		_, _ = dr.d.Hash().Write(p[:n]) //nolint:errcheck // hash writes never fail
		dr.n += uint64(n)
	}
	return n, err
}

// Digest returns the digest of the data read so far.
func (dr *DigestingReader) Digest() digest.Digest {
	return dr.d.Digest()
}

// Size returns the number of bytes read so far.
func (dr *DigestingReader) Size() uint64 {
	return dr.n
}

// Verify reads r to EOF and checks that its content matches want and size.
// When compressed is true, r is zstd-decoded first; a stream that does not
// decode fails with ErrDigestMismatch like any other altered content, while
// read errors from r itself are returned as is.
func Verify(r io.Reader, want digest.Digest, size uint64, compressed bool) error {
	if err := want.Validate(); err != nil {
		return fmt.Errorf("%w: %v", savetype.ErrInvalidManifest, err)
	}
	src := &errReader{r: r}
	r = src
	if compressed {
		dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return src.classify(err, true)
		}
		defer dec.Close()
		r = dec
	}

	v := want.Verifier()
	n, err := io.Copy(v, r)
	if err != nil {
		return src.classify(err, compressed)
	}
	if uint64(n) != size { //nolint:gosec // io.Copy never returns a negative count
		return fmt.Errorf("%w: %d bytes, want %d", savetype.ErrDigestMismatch, n, size)
	}
	if !v.Verified() {
		return savetype.ErrDigestMismatch
	}
	return nil
}

// errReader records the first non-EOF error returned by r.
// errReader records the first failure of the underlying reader so decode
// errors can be told apart from read errors.
type errReader struct {
	r   io.Reader
	err error
}

func (e *errReader) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if err != nil && err != io.EOF && e.err == nil {
		e.err = err
	}
	return n, err
}

// classify returns the source's own read error if there was one. Otherwise
// a failed decode means the stored bytes were altered.
func (e *errReader) classify(err error, decoding bool) error {
	if e.err != nil {
		return e.err
	}
	if decoding {
		return fmt.Errorf("%w: %v", savetype.ErrDigestMismatch, err)
	}
	return err
}

package fileops

import (
	"context"
	"io"

	"github.com/meigma/horizon/internal/savetype"
)

// CopyContext copies src to dst through buf until EOF, checking ctx between
// reads. It returns the number of bytes written.
func CopyContext(ctx context.Context, dst io.Writer, src io.Reader, buf []byte) (uint64, error) {
	var written uint64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		nr, rerr := src.Read(buf)
		if nr > 0 {
			nw, werr := dst.Write(buf[:nr])
			if nw > 0 {
				if written > ^uint64(0)-uint64(nw) { //nolint:gosec // nw is non-negative per io.Writer
					return written, savetype.ErrSizeOverflow
				}
				written += uint64(nw) //nolint:gosec // checked above
			}
			if werr != nil {
				return written, werr
			}
			if nw != nr {
				return written, io.ErrShortWrite
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}

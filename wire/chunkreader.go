package wire

import (
	"io"
)

// chunkReader is an io.Reader wrapper that minimizes IO reads and memory allocations. It reads as much as will fit in
// the current buffer in a single call regardless of how large a read is actually requested. The memory returned via
// Next is only valid until the next call to Next.
//
// If an underlying read fails partway through filling a request the received bytes are retained, so Next may be called
// again with the same n after a temporary error such as a read deadline expiring.
type chunkReader struct {
	r io.Reader

	buf    []byte
	rp, wp int // buf read position and write position
}

// newChunkReader creates a chunkReader for r with an internal buffer of bufSize bytes. If bufSize is <= 0 a default is
// used.
func newChunkReader(r io.Reader, bufSize int) *chunkReader {
	if bufSize <= 0 {
		// PostgreSQL has an 8KB send buffer, so there is nothing to gain from a
		// smaller starting size.
		bufSize = 8192
	}

	return &chunkReader{
		r:   r,
		buf: make([]byte, bufSize),
	}
}

// buffered returns the number of bytes received but not yet consumed by Next.
func (r *chunkReader) buffered() int {
	return r.wp - r.rp
}

// Next returns buf filled with the next n bytes. buf is only valid until next call of Next. If an error occurs, buf
// will be nil.
func (r *chunkReader) Next(n int) (buf []byte, err error) {
	// n bytes already in buf
	if (r.wp - r.rp) >= n {
		buf = r.buf[r.rp : r.rp+n : r.rp+n]
		r.rp += n
		return buf, nil
	}

	// buf is smaller than requested number of bytes
	if len(r.buf) < n {
		bigBuf := make([]byte, n)
		r.wp = copy(bigBuf, r.buf[r.rp:r.wp])
		r.rp = 0
		r.buf = bigBuf
	}

	// buf is large enough, but need to shift filled area to start to make enough contiguous space
	minReadCount := n - (r.wp - r.rp)
	if (len(r.buf) - r.wp) < minReadCount {
		r.wp = copy(r.buf, r.buf[r.rp:r.wp])
		r.rp = 0
	}

	// Read at least the required number of bytes from the underlying io.Reader
	readBytesCount, err := io.ReadAtLeast(r.r, r.buf[r.wp:], minReadCount)
	r.wp += readBytesCount
	// fail if the read was not successful
	if err != nil {
		return nil, err
	}

	buf = r.buf[r.rp : r.rp+n : r.rp+n]
	r.rp += n
	return buf, nil
}

package wire

import (
	"bytes"
	"testing"
)

func TestChunkReaderNextDoesNotReadIfAlreadyBuffered(t *testing.T) {
	server := &bytes.Buffer{}
	server.Write([]byte{1, 2, 3, 4})

	r := newChunkReader(server, 4)

	buf, err := r.Next(2)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, []byte{1, 2}) {
		t.Fatalf("Expected read bytes to be %v, but they were %v", []byte{1, 2}, buf)
	}

	buf, err = r.Next(2)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, []byte{3, 4}) {
		t.Fatalf("Expected read bytes to be %v, but they were %v", []byte{3, 4}, buf)
	}

	if r.buffered() != 0 {
		t.Fatalf("Expected chunkReader to have no buffered bytes, but it had %d", r.buffered())
	}
}

func TestChunkReaderNextGrowsBufferForLargeRequests(t *testing.T) {
	server := &bytes.Buffer{}
	data := make([]byte, 64)
	for i := range data {
		data[i] = byte(i)
	}
	server.Write(data)

	r := newChunkReader(server, 8)

	buf, err := r.Next(64)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, data) {
		t.Fatalf("Expected read bytes to be %v, but they were %v", data, buf)
	}
}

func TestChunkReaderRetainsPartialReadOnError(t *testing.T) {
	server := &interruptSource{chunks: [][]byte{{1, 2, 3}}}

	r := newChunkReader(server, 8)

	if _, err := r.Next(5); err == nil {
		t.Fatal("expected error from interrupted read")
	}
	if r.buffered() != 3 {
		t.Fatalf("Expected 3 buffered bytes after interrupted read, but had %d", r.buffered())
	}

	server.chunks = append(server.chunks, []byte{4, 5})

	buf, err := r.Next(5)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, []byte{1, 2, 3, 4, 5}) {
		t.Fatalf("Expected read bytes to be %v, but they were %v", []byte{1, 2, 3, 4, 5}, buf)
	}
}

type interruptSource struct {
	chunks [][]byte
}

func (s *interruptSource) Read(p []byte) (int, error) {
	if len(s.chunks) == 0 {
		return 0, errTimeout
	}
	n := copy(p, s.chunks[0])
	if n == len(s.chunks[0]) {
		s.chunks = s.chunks[1:]
	} else {
		s.chunks[0] = s.chunks[0][n:]
	}
	return n, nil
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

var errTimeout = timeoutError{}

package flume

import (
	"io"
)

// SizeUnknown is returned by Size() when a stream's total length is
// not knowable ahead of reading, e.g. a live network body without a
// length header.
const SizeUnknown int64 = -1

// Stream is an ordered set of bytes of arbitrary (but not infinite)
// length.  Read(n) returns up to n bytes; a negative n reads the
// entire remaining content in one call -- don't do that on unbounded
// sources.  A Read asking for data (nonzero n) that returns zero
// bytes is a definitive end-of-stream signal; after that AtEOF()
// stays true and all subsequent reads return empty.  Read(0) is a
// no-op: it returns no bytes, advances nothing, and says nothing
// about end of stream.
//
// Streams are single-flow: each wrapper exclusively owns the
// stream(s) it wraps, composition forms a tree, and no locking is
// done anywhere.
type Stream interface {
	Size() int64
	Read(n int) ([]byte, error)
	AtEOF() bool
}

// Named is implemented by streams that carry a display name, such as
// a download stream whose name came from the metadata service.
type Named interface {
	Name() string
}

// Reader bridges a Stream to io.Reader so streams can feed consumers
// like io.Copy or a chunker.
func Reader(stream Stream) io.Reader {
	return &streamReader{stream: stream}
}

type streamReader struct {
	stream Stream
	rest   []byte
}

func (r *streamReader) Read(p []byte) (n int, err error) {
	if len(r.rest) == 0 {
		if r.stream.AtEOF() {
			return 0, io.EOF
		}
		r.rest, err = r.stream.Read(len(p))
		if err != nil {
			return 0, err
		}
		if len(r.rest) == 0 {
			return 0, io.EOF
		}
	}
	n = copy(p, r.rest)
	r.rest = r.rest[n:]
	return
}

// ReadAll drains stream by repeated reads and returns the whole
// remaining content.  Wrappers use it to implement Read(-1) over
// sources that only support bounded reads.
func ReadAll(stream Stream) (buf []byte, err error) {
	for !stream.AtEOF() {
		chunk, err := stream.Read(32 * 1024)
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 {
			break
		}
		buf = append(buf, chunk...)
	}
	return
}

// Close releases stream's underlying resource if it holds one.  Safe
// to call on any stream; non-adapters are a no-op.  Callers that stop
// reading before EOF must call this so network connections don't leak.
func Close(stream Stream) error {
	if c, ok := stream.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

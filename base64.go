package flume

import (
	"encoding/base64"
)

// Base64Stream re-encodes the wrapped stream's bytes through standard
// base64.  To keep output aligned to base64's 4-byte groups it
// requests a multiple-of-3 input count from the wrapped stream and
// carries any encoded-but-unconsumed bytes into the next call, so the
// concatenation of all reads equals the single-pass encoding of the
// whole content regardless of chunking.
type Base64Stream struct {
	inner Stream
	extra []byte
	size  int64
}

// EncodedSize returns the base64-encoded length of size input bytes:
// ceil(4/3 * size) rounded up to the next multiple of 4.
func EncodedSize(size int64) int64 {
	out := 4 * size / 3
	if out%4 != 0 {
		out += 4 - out%4
	}
	return out
}

func NewBase64Stream(inner Stream) *Base64Stream {
	s := &Base64Stream{inner: inner, size: SizeUnknown}
	if inner.Size() != SizeUnknown {
		s.size = EncodedSize(inner.Size())
	}
	return s
}

func (s *Base64Stream) Size() int64 {
	return s.size
}

// AtEOF only once the wrapped stream is exhausted and the carry
// buffer is drained.
func (s *Base64Stream) AtEOF() bool {
	return len(s.extra) == 0 && s.inner.AtEOF()
}

func (s *Base64Stream) Read(n int) (chunk []byte, err error) {
	if n < 0 {
		raw, err := s.inner.Read(-1)
		if err != nil {
			return nil, err
		}
		chunk = append(s.extra, []byte(base64.StdEncoding.EncodeToString(raw))...)
		s.extra = nil
		return chunk, nil
	}

	want := n
	if pad := want % 3; pad != 0 {
		want += 3 - pad
	}

	// fill the whole multiple-of-3 request so no padding appears
	// mid-stream on a short read
	var raw []byte
	for len(raw) < want && !s.inner.AtEOF() {
		sub, err := s.inner.Read(want - len(raw))
		if err != nil {
			return nil, err
		}
		if len(sub) == 0 {
			break
		}
		raw = append(raw, sub...)
	}
	chunk = append(s.extra, []byte(base64.StdEncoding.EncodeToString(raw))...)

	if len(chunk) <= n {
		s.extra = nil
		return chunk, nil
	}
	chunk, s.extra = chunk[:n], chunk[n:]
	return chunk, nil
}

package flume

// CutoffStream terminates the wrapped stream after pulling off the
// specified number of bytes.  Useful for segmenting an existing
// stream into parts suitable for chunked upload interfaces.  Once the
// cumulative bytes delivered reaches the cutoff it behaves as
// end-of-stream regardless of what the wrapped stream has left.
type CutoffStream struct {
	inner   Stream
	cutoff  int64
	thusFar int64
	size    int64
}

func NewCutoffStream(inner Stream, cutoff int64) *CutoffStream {
	size := cutoff
	switch {
	case inner.Size() == SizeUnknown:
		// the wrapped stream may end before the cutoff
		size = SizeUnknown
	case inner.Size() < cutoff:
		size = inner.Size()
	}
	return &CutoffStream{inner: inner, cutoff: cutoff, size: size}
}

// Size is the lesser of the wrapped stream's size or the cutoff.
func (s *CutoffStream) Size() int64 {
	return s.size
}

func (s *CutoffStream) AtEOF() bool {
	return s.thusFar >= s.cutoff || s.inner.AtEOF()
}

// Read returns up to n bytes, never passing the cumulative cutoff.
// A negative n reads everything up to the cutoff.
func (s *CutoffStream) Read(n int) (chunk []byte, err error) {
	remaining := s.cutoff - s.thusFar
	if remaining <= 0 {
		return nil, nil
	}
	if n < 0 || int64(n) > remaining {
		n = int(remaining)
	}
	for len(chunk) < n && !s.inner.AtEOF() {
		sub, err := s.inner.Read(n - len(chunk))
		if err != nil {
			return chunk, err
		}
		if len(sub) == 0 {
			break
		}
		chunk = append(chunk, sub...)
		s.thusFar += int64(len(sub))
	}
	return
}

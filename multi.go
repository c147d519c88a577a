package flume

// MultiStream concatenates an ordered series of streams into a single
// stream.  Reads pull from the current member until exhausted, then
// continue into the next, so a single Read(n) call may span several
// member boundaries.  Aggregate size is the sum of member sizes;
// if any member's size is unknown the aggregate is unknown too.
//
// An empty member list is exhausted immediately, with size 0.
type MultiStream struct {
	size    int64
	pending []Stream
	current Stream
}

func NewMultiStream(streams ...Stream) *MultiStream {
	m := &MultiStream{}
	m.size = 0
	for _, s := range streams {
		if s.Size() == SizeUnknown {
			m.size = SizeUnknown
			break
		}
		m.size += s.Size()
	}
	m.pending = append(m.pending, streams...)
	m.cycle()
	return m
}

// cycle advances to the next member; current goes nil when the list
// is exhausted.
func (m *MultiStream) cycle() {
	if len(m.pending) == 0 {
		m.current = nil
		return
	}
	m.current = m.pending[0]
	m.pending = m.pending[1:]
}

func (m *MultiStream) Size() int64 {
	return m.size
}

func (m *MultiStream) AtEOF() bool {
	if m.current == nil {
		return true
	}
	if !m.current.AtEOF() {
		return false
	}
	for _, s := range m.pending {
		if !s.AtEOF() {
			return false
		}
	}
	return true
}

func (m *MultiStream) Read(n int) (chunk []byte, err error) {
	for m.current != nil && (n < 0 || len(chunk) < n) {
		var sub []byte
		if n < 0 {
			sub, err = m.current.Read(-1)
		} else {
			sub, err = m.current.Read(n - len(chunk))
		}
		if err != nil {
			return chunk, err
		}
		chunk = append(chunk, sub...)
		if m.current.AtEOF() {
			m.cycle()
		}
	}
	return
}

// Close releases every member that still holds a resource.
func (m *MultiStream) Close() (err error) {
	if m.current != nil {
		err = Close(m.current)
	}
	for _, s := range m.pending {
		if cerr := Close(s); err == nil {
			err = cerr
		}
	}
	return
}

package flume

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"fmt"
	"hash"
	"sort"
)

// HashWriter accumulates one named digest over the chunks fed to it.
// It is not a Stream; it is a sink attached by DigestStream.  The
// running state is mutated once per chunk, in strict read order.
type HashWriter struct {
	algo string
	h    hash.Hash
}

func NewHashWriter(algo string) (w *HashWriter, err error) {
	w = &HashWriter{algo: algo}
	switch algo {
	case "md5":
		w.h = md5.New()
	case "sha1":
		w.h = sha1.New()
	case "sha256":
		w.h = sha256.New()
	default:
		return nil, fmt.Errorf("unknown digest algorithm: %s", algo)
	}
	return
}

func (w *HashWriter) Algo() string {
	return w.algo
}

func (w *HashWriter) Write(data []byte) (n int, err error) {
	return w.h.Write(data)
}

// HexDigest returns the lower-case hexadecimal digest of everything
// written so far.  Sum does not disturb the running state, so this
// can be called mid-stream and again at the end.
func (w *HashWriter) HexDigest() string {
	return fmt.Sprintf("%x", w.h.Sum(nil))
}

// DigestStream tees a stream through a set of HashWriters.  Every
// chunk read from the wrapped stream is fed to each writer before
// being returned unchanged, so chunk boundaries never affect the
// final digests.  Writers are fed in lexicographic algorithm order,
// fixed at construction.
type DigestStream struct {
	inner   Stream
	writers map[string]*HashWriter
	order   []string
}

func NewDigestStream(inner Stream, writers map[string]*HashWriter) *DigestStream {
	order := make([]string, 0, len(writers))
	for algo := range writers {
		order = append(order, algo)
	}
	sort.Strings(order)
	return &DigestStream{inner: inner, writers: writers, order: order}
}

// Writer returns the accumulator registered for algo, or nil.
func (s *DigestStream) Writer(algo string) *HashWriter {
	return s.writers[algo]
}

// HexDigests snapshots every accumulator as algo -> hex digest.
func (s *DigestStream) HexDigests() map[string]string {
	digests := make(map[string]string, len(s.order))
	for _, algo := range s.order {
		digests[algo] = s.writers[algo].HexDigest()
	}
	return digests
}

func (s *DigestStream) Size() int64 {
	return s.inner.Size()
}

func (s *DigestStream) AtEOF() bool {
	return s.inner.AtEOF()
}

func (s *DigestStream) Read(n int) (chunk []byte, err error) {
	chunk, err = s.inner.Read(n)
	if err != nil {
		return
	}
	if len(chunk) > 0 {
		for _, algo := range s.order {
			// hash.Hash.Write never returns an error
			s.writers[algo].Write(chunk)
		}
	}
	return
}

// Close releases the wrapped stream's resource, if any.
func (s *DigestStream) Close() error {
	return Close(s.inner)
}

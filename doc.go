/*

Flume is a storage gateway: it normalizes heterogeneous storage
backends behind one streaming interface and adds a content-addressable
commit protocol, so uploaded bytes are deduplicated by digest rather
than by caller-supplied name.

This package is the stream algebra.  Everything that moves bytes
through the gateway is a Stream: a finite ordered byte sequence with a
declared size, consumed by repeated Read calls, restartable only by
re-construction.  Streams compose into trees -- tee a stream through
digest writers, concatenate several streams, cut one off at a byte
count, base64-encode one -- without ever buffering a whole payload.

Vocabulary:

- stream: finite ordered byte sequence; Size(), Read(n), AtEOF()
- leaf: terminal producer with fixed precomputed size (BufferStream,
  EmptyStream, FileStream)
- adapter: terminal producer bridging an external body abstraction
  (ReaderStream, ResponseStream, RequestStream); releases the
  underlying resource exactly once, at EOF or on Close
- writer: a digest accumulator fed by DigestStream, never a stream
  itself
- boundary: unique delimiter token separating multipart form parts

The commit protocol lives in the gate package; storage backends under
fs and chunkstore; the metadata service under meta.

*/

package flume

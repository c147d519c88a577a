package flume

import (
	"bytes"
	"encoding/base64"
	"testing"
)

func TestMultiStream(t *testing.T) {
	stream := NewMultiStream(
		NewStringStream("sle"),
		NewEmptyStream(),
		NewStringStream("epy"),
	)
	tassert(t, stream.Size() == 6, "size: expected 6 got %d", stream.Size())

	// a single read spans member boundaries
	chunk, err := stream.Read(4)
	tassert(t, err == nil, "Read err %v", err)
	tassert(t, string(chunk) == "slee", "chunk: expected slee got %q", chunk)
	tassert(t, !stream.AtEOF(), "mid-stream at EOF")

	chunk, err = stream.Read(-1)
	tassert(t, err == nil, "Read err %v", err)
	tassert(t, string(chunk) == "py", "chunk: expected py got %q", chunk)
	tassert(t, stream.AtEOF(), "drained stream not at EOF")
}

func TestMultiStreamEmpty(t *testing.T) {
	stream := NewMultiStream()
	tassert(t, stream.Size() == 0, "size: expected 0 got %d", stream.Size())
	tassert(t, stream.AtEOF(), "empty list not at EOF")
	chunk, err := stream.Read(10)
	tassert(t, err == nil, "Read err %v", err)
	tassert(t, len(chunk) == 0, "empty list returned %q", chunk)
}

func TestMultiStreamUnknownSize(t *testing.T) {
	stream := NewMultiStream(
		NewStringStream("sle"),
		NewReaderStream(bytes.NewBufferString("epy"), SizeUnknown),
	)
	tassert(t, stream.Size() == SizeUnknown, "size: expected unknown got %d", stream.Size())
	chunk, err := stream.Read(-1)
	tassert(t, err == nil, "Read err %v", err)
	tassert(t, string(chunk) == "sleepy", "chunk: expected sleepy got %q", chunk)
}

func TestCutoffStream(t *testing.T) {
	stream := NewCutoffStream(NewStringStream("sleepy"), 5)
	tassert(t, stream.Size() == 5, "size: expected 5 got %d", stream.Size())

	chunk, err := stream.Read(3)
	tassert(t, err == nil, "Read err %v", err)
	tassert(t, string(chunk) == "sle", "chunk: expected sle got %q", chunk)

	// never passes the cumulative cutoff
	chunk, err = stream.Read(100)
	tassert(t, err == nil, "Read err %v", err)
	tassert(t, string(chunk) == "ep", "chunk: expected ep got %q", chunk)
	tassert(t, stream.AtEOF(), "cutoff reached but not at EOF")

	chunk, err = stream.Read(1)
	tassert(t, err == nil, "Read err %v", err)
	tassert(t, len(chunk) == 0, "read past cutoff returned %q", chunk)
}

func TestCutoffStreamShortInner(t *testing.T) {
	stream := NewCutoffStream(NewStringStream("sleepy"), 100)
	tassert(t, stream.Size() == 6, "size: expected 6 got %d", stream.Size())
	chunk, err := stream.Read(-1)
	tassert(t, err == nil, "Read err %v", err)
	tassert(t, string(chunk) == "sleepy", "chunk: expected sleepy got %q", chunk)
	tassert(t, stream.AtEOF(), "drained stream not at EOF")
}

func TestCutoffStreamUnknownSize(t *testing.T) {
	inner := NewReaderStream(bytes.NewBufferString("sleepy"), SizeUnknown)
	stream := NewCutoffStream(inner, 4)
	tassert(t, stream.Size() == SizeUnknown, "size: expected unknown got %d", stream.Size())
	chunk, err := stream.Read(-1)
	tassert(t, err == nil, "Read err %v", err)
	tassert(t, string(chunk) == "slee", "chunk: expected slee got %q", chunk)
}

func TestSegmentation(t *testing.T) {
	// cutting a stream into parts and concatenating the parts
	// reproduces the original content
	data := randBuf(10 * 1024)
	source := NewBufferStream(data)
	var got []byte
	for !source.AtEOF() {
		part := NewCutoffStream(source, 999)
		chunk, err := ReadAll(part)
		tassert(t, err == nil, "ReadAll err %v", err)
		got = append(got, chunk...)
	}
	tassert(t, bytes.Compare(data, got) == 0, "reassembled content mismatch")
}

func TestEncodedSize(t *testing.T) {
	for size, expect := range map[int64]int64{0: 0, 1: 4, 2: 4, 3: 4, 4: 8, 6: 8} {
		got := EncodedSize(size)
		tassert(t, got == expect, "EncodedSize(%d): expected %d got %d", size, expect, got)
	}
}

func TestBase64Stream(t *testing.T) {
	stream := NewBase64Stream(NewStringStream("sleepy"))
	tassert(t, stream.Size() == 8, "size: expected 8 got %d", stream.Size())
	chunk, err := stream.Read(-1)
	tassert(t, err == nil, "Read err %v", err)
	tassert(t, string(chunk) == "c2xlZXB5", "chunk: expected c2xlZXB5 got %q", chunk)
	tassert(t, stream.AtEOF(), "drained stream not at EOF")
}

// chunked reads must not introduce padding mid-stream
func TestBase64StreamChunked(t *testing.T) {
	data := randBuf(10*1024 + 1)
	expect := base64.StdEncoding.EncodeToString(data)

	for _, n := range []int{1, 2, 3, 5, 4096} {
		stream := NewBase64Stream(NewBufferStream(data))
		var got []byte
		for !stream.AtEOF() {
			chunk, err := stream.Read(n)
			tassert(t, err == nil, "Read(%d) err %v", n, err)
			tassert(t, len(chunk) <= n, "Read(%d) returned %d bytes", n, len(chunk))
			got = append(got, chunk...)
		}
		tassert(t, string(got) == expect, "Read(%d): encoding mismatch", n)
	}
}

func TestBase64StreamUnknownSize(t *testing.T) {
	inner := NewReaderStream(bytes.NewBufferString("sleepy!"), SizeUnknown)
	stream := NewBase64Stream(inner)
	tassert(t, stream.Size() == SizeUnknown, "size: expected unknown got %d", stream.Size())
	got, err := ReadAll(stream)
	tassert(t, err == nil, "ReadAll err %v", err)
	tassert(t, string(got) == "c2xlZXB5IQ==", "chunk: expected c2xlZXB5IQ== got %q", got)
}

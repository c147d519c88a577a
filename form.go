package flume

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// FormBuilder assembles a MultiStream representing a
// multipart/form-data payload from literal fields and stream-valued
// file fields.  Field order is preserved and semantically significant.
// The boundary token is a fresh random identifier per builder.
//
// Headers() finalizes the builder: after that, adding fields is a
// usage error.  The headers include Content-Type with the boundary
// parameter and, when every part's size is known, Content-Length.
type FormBuilder struct {
	boundary  string
	streams   []Stream
	finalized bool
}

func NewFormBuilder() *FormBuilder {
	return &FormBuilder{boundary: strings.ReplaceAll(uuid.New().String(), "-", "")}
}

func (b *FormBuilder) Boundary() string {
	return b.boundary
}

// AddField appends a literal field.
func (b *FormBuilder) AddField(name, value string) error {
	if b.finalized {
		return &UsageError{Msg: fmt.Sprintf("field %q added after form finalized", name)}
	}
	part := b.startBoundary() + makeDispositionHeader(name, nil) + value + "\r\n"
	b.streams = append(b.streams, NewStringStream(part))
	return nil
}

// FilePart describes a stream-valued field.
type FilePart struct {
	Stream      Stream
	Filename    string
	ContentType string
	Transcoding string
}

// AddFilePart appends a stream-valued field with file headers.  Empty
// ContentType defaults to application/octet-stream and empty
// Transcoding to binary.
func (b *FormBuilder) AddFilePart(name string, part FilePart) error {
	if b.finalized {
		return &UsageError{Msg: fmt.Sprintf("file part %q added after form finalized", name)}
	}
	if part.ContentType == "" {
		part.ContentType = "application/octet-stream"
	}
	if part.Transcoding == "" {
		part.Transcoding = "binary"
	}
	header := makeDispositionHeader(name, map[string]string{
		"Content-Type":              part.ContentType,
		"Content-Transfer-Encoding": part.Transcoding,
	}, "filename", part.Filename)
	b.streams = append(b.streams,
		NewStringStream(b.startBoundary()+header),
		part.Stream,
		NewStringStream("\r\n"),
	)
	return nil
}

// Stream finalizes the builder and returns the assembled payload.
func (b *FormBuilder) Stream() *MultiStream {
	b.finalized = true
	all := append([]Stream{}, b.streams...)
	all = append(all, NewStringStream(b.endBoundary()))
	return NewMultiStream(all...)
}

// Headers finalizes the builder and returns the request headers for
// the assembled payload.
func (b *FormBuilder) Headers() map[string]string {
	stream := b.Stream()
	headers := map[string]string{
		"Content-Type": fmt.Sprintf("multipart/form-data; boundary=%s", b.boundary),
	}
	if stream.Size() != SizeUnknown {
		headers["Content-Length"] = fmt.Sprintf("%d", stream.Size())
	}
	return headers
}

func (b *FormBuilder) startBoundary() string {
	return fmt.Sprintf("--%s\r\n", b.boundary)
}

func (b *FormBuilder) endBoundary() string {
	return fmt.Sprintf("--%s--\r\n", b.boundary)
}

// makeDispositionHeader emits the Content-Disposition block for one
// part, with optional extra disposition parameters given as key,
// value pairs and optional additional header lines.
func makeDispositionHeader(name string, additional map[string]string, extra ...string) string {
	header := fmt.Sprintf("Content-Disposition: form-data; name=%q", name)
	for i := 0; i+1 < len(extra); i += 2 {
		if extra[i+1] != "" {
			header += fmt.Sprintf("; %s=%q", extra[i], extra[i+1])
		}
	}
	header += "\r\n"

	for _, key := range []string{"Content-Type", "Content-Transfer-Encoding"} {
		if value, ok := additional[key]; ok && value != "" {
			header += fmt.Sprintf("%s: %s\r\n", key, value)
		}
	}

	return header + "\r\n"
}

// NewJSONStream builds a naive JSON object literal where
// stream-valued fields are embedded as raw byte spans inside the
// quoted value position.  Valid only when the embedded content is
// already a size-known text fragment, e.g. pre-base64-encoded data.
// Values are NOT escaped; callers must pre-sanitize.
func NewJSONStream(fields []JSONField) *MultiStream {
	streams := []Stream{NewStringStream("{")}
	for i, field := range fields {
		if i > 0 {
			streams = append(streams, NewStringStream(","))
		}
		streams = append(streams, NewStringStream(fmt.Sprintf("%q:\"", field.Name)))
		if field.Stream != nil {
			streams = append(streams, field.Stream)
		} else {
			streams = append(streams, NewStringStream(field.Value))
		}
		streams = append(streams, NewStringStream("\""))
	}
	streams = append(streams, NewStringStream("}"))
	return NewMultiStream(streams...)
}

// JSONField is a name bound to either a literal value or a Stream.
type JSONField struct {
	Name   string
	Value  string
	Stream Stream
}

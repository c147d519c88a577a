package gate

import (
	"time"

	"github.com/t7a/flume"
)

// ObjectMeta describes a backend-resident object.
type ObjectMeta struct {
	Name        string // object name within the backend, usually a digest
	Size        int64
	ContentType string
	Modified    time.Time
	Extra       map[string]string
}

// Backend is the pluggable object store consumed by the commit
// protocol.  Objects are addressed by opaque name: either a pending
// name (a generated unique token) or a final content address (the
// sha256 hex digest of the content).
//
// Metadata returns a *NotFoundError when the object is absent; the
// commit protocol branches on that, and surfaces every other failure
// as fatal.
type Backend interface {
	// Upload stores the stream's content under name.
	Upload(stream flume.Stream, name string) (*ObjectMeta, error)
	// Download returns a stream over the object's content.
	Download(name string) (flume.Stream, error)
	// Delete removes the object.
	Delete(name string) error
	// Move renames src to dst within the backend.
	Move(src, dst string) (*ObjectMeta, error)
	// Copy duplicates src to dst within the backend.
	Copy(src, dst string) (*ObjectMeta, error)
	// Metadata stats the object without reading its content.
	Metadata(name string) (*ObjectMeta, error)
	// Region is the backend's logical storage region.  Two gateways
	// whose backends report the same region can relocate entries
	// without moving bytes.
	Region() string
}

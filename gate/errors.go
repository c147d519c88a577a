package gate

import (
	"errors"
	"fmt"
)

// NotFoundError reports an absent path or object.  The commit
// protocol treats it specially (it drives the dedup branch); any
// other failure from a backend is fatal.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %s", e.Path)
}

// IsNotFound reports whether err is a NotFoundError anywhere in its
// chain.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// MetadataError reports a rejected metadata-service request, carrying
// the service's status code.
type MetadataError struct {
	Msg  string
	Code int
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("metadata error (%d): %s", e.Code, e.Msg)
}

// OverwriteSelfError reports a move or copy whose source and
// destination resolve to the identical logical path.  Always an
// error, never a no-op.
type OverwriteSelfError struct {
	Path string
}

func (e *OverwriteSelfError) Error() string {
	return fmt.Sprintf("unable to move or copy %q onto itself", e.Path)
}

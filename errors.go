package flume

import "fmt"

// UsageError reports a caller mistake, such as adding a field to a
// form builder after its headers have been finalized.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("usage error: %s", e.Msg)
}

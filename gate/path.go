package gate

import (
	"fmt"
	"strings"

	. "github.com/stevegt/goadapt"

	"github.com/t7a/flume"
)

// Segment is one component of a logical path, optionally bound to the
// identifier the metadata service assigned to it.
type Segment struct {
	Name string
	ID   string
}

// Path is the gateway's addressing unit: an ordered sequence of
// segments plus a folder flag.  An identifier-less segment is only
// legal in the final position (an entry pending creation).
type Path struct {
	Segments []Segment
	Folder   bool
}

// NewPath parses a materialized path string ("/a/b/c" or "/a/b/" for
// a folder).  Identifiers can be attached afterwards or via NewPathWithIDs.
func NewPath(raw string) (path *Path, err error) {
	folder := strings.HasSuffix(raw, "/")
	trimmed := strings.Trim(raw, "/")
	path = &Path{Folder: folder || trimmed == ""}
	if trimmed == "" {
		return
	}
	for _, name := range strings.Split(trimmed, "/") {
		if name == "" {
			return nil, &flume.UsageError{Msg: fmt.Sprintf("malformed path: %q", raw)}
		}
		path.Segments = append(path.Segments, Segment{Name: name})
	}
	return
}

// NewPathWithIDs builds a path whose segments are already bound.  ids
// must be the same length as the segment list; an empty string leaves
// that segment unbound, which is only allowed in the last position.
func NewPathWithIDs(raw string, ids []string) (path *Path, err error) {
	path, err = NewPath(raw)
	if err != nil {
		return
	}
	if len(ids) != len(path.Segments) {
		return nil, &flume.UsageError{Msg: fmt.Sprintf("path %q has %d segments, got %d ids", raw, len(path.Segments), len(ids))}
	}
	for i, id := range ids {
		if id == "" && i != len(ids)-1 {
			return nil, &flume.UsageError{Msg: fmt.Sprintf("unbound segment %q must be last in %q", path.Segments[i].Name, raw)}
		}
		path.Segments[i].ID = id
	}
	return
}

// IsRoot reports whether the path has no segments.
func (path *Path) IsRoot() bool {
	return len(path.Segments) == 0
}

// Name is the final segment's name, or "" for the root.
func (path *Path) Name() string {
	if path.IsRoot() {
		return ""
	}
	return path.Segments[len(path.Segments)-1].Name
}

// Identifier is the final segment's bound id, or "" when the entry is
// pending creation.
func (path *Path) Identifier() string {
	if path.IsRoot() {
		return ""
	}
	return path.Segments[len(path.Segments)-1].ID
}

// Bind attaches the metadata service's identifier to the final
// segment once the entry exists.
func (path *Path) Bind(id string) {
	Assert(!path.IsRoot(), "cannot bind root path")
	path.Segments[len(path.Segments)-1].ID = id
}

// ParentID is the id of the segment above the final one, or "" when
// the parent is the root.
func (path *Path) ParentID() string {
	if len(path.Segments) < 2 {
		return ""
	}
	return path.Segments[len(path.Segments)-2].ID
}

// Child derives the path of a named entry below this folder.
func (path *Path) Child(name string, id string, folder bool) *Path {
	segments := append(append([]Segment{}, path.Segments...), Segment{Name: name, ID: id})
	return &Path{Segments: segments, Folder: folder}
}

// Rename replaces the final segment's name, clearing its binding.
func (path *Path) Rename(name string) {
	Assert(!path.IsRoot(), "cannot rename root path")
	path.Segments[len(path.Segments)-1] = Segment{Name: name}
}

// Materialized is the derived string form: "/a/b/c", with a trailing
// slash for folders.
func (path *Path) Materialized() string {
	if path.IsRoot() {
		return "/"
	}
	names := make([]string, len(path.Segments))
	for i, seg := range path.Segments {
		names[i] = seg.Name
	}
	out := "/" + strings.Join(names, "/")
	if path.Folder {
		out += "/"
	}
	return out
}

func (path *Path) String() string {
	return path.Materialized()
}

package gate

import (
	. "github.com/stevegt/goadapt"
)

// ValidatePath parses a materialized path string and binds each
// segment to its metadata-service identifier by walking the naming
// tree from the root.  Every segment but the last must already
// exist; a missing final segment stays unbound (pending creation).
// A missing intermediate segment is a NotFoundError.
func (gw *Gateway) ValidatePath(raw string) (path *Path, err error) {
	defer Return(&err)

	path, err = NewPath(raw)
	Ck(err)

	parentID := gw.RootID
	for i := range path.Segments {
		seg := &path.Segments[i]
		children, err := gw.Meta.Children(parentID)
		Ck(err)

		found := false
		for _, child := range children {
			if child.Name == seg.Name {
				seg.ID = child.ID
				parentID = child.ID
				found = true
				if i == len(path.Segments)-1 {
					path.Folder = child.Kind == "folder"
				}
				break
			}
		}
		if !found {
			if i != len(path.Segments)-1 {
				return nil, &NotFoundError{Path: raw}
			}
			// final segment pending creation; Folder keeps whatever
			// the trailing slash said
		}
	}
	return
}

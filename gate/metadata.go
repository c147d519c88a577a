package gate

import "time"

// Digests is the full digest set computed over an uploaded stream:
// algorithm name to lower-case hex digest.
type Digests map[string]string

// Entry is a confirmed path entry in the naming tree, as returned by
// the metadata service.
type Entry struct {
	ID       string
	ParentID string
	Name     string
	Kind     string // "file" or "folder"
	Size     int64
	Modified time.Time
	Digests  Digests
	Version  int
}

// Version is one recorded upload of a file entry.
type Version struct {
	Number  int
	Object  string // backend object name (content address)
	Size    int64
	Digests Digests
	Created time.Time
	Region  string
}

// MetadataService is the authoritative naming-tree collaborator.  It
// assigns identifiers, keeps per-file version history, and performs
// metadata-only relocations.
type MetadataService interface {
	// Record reports a finished upload commit: backend metadata plus
	// the digest set, filed under name in the parent entry.  Returns
	// the confirmed entry and whether it was newly created.
	Record(parentID, name string, meta *ObjectMeta, digests Digests, region string) (*Entry, bool, error)

	// Relocate performs an intra move or copy: a single request that
	// renames or re-parents src without moving bytes.  For "copy" the
	// full version history is duplicated.  An existing entry at the
	// destination is deleted first, and created reports false.
	Relocate(action, srcID, destParentID, destName string) (*Entry, bool, error)

	// CreateFolder makes a folder entry under parentID.
	CreateFolder(parentID, name string) (*Entry, error)

	// Lineage returns the chain of entries from the root down to id,
	// root first.
	Lineage(id string) ([]Entry, error)

	// Children lists the entries directly under a folder entry.
	Children(id string) ([]Entry, error)

	// Revisions lists a file entry's versions, newest first.
	Revisions(id string) ([]Version, error)

	// Delete removes the entry (and, for folders, its subtree).
	Delete(id string) error
}

package gate

import (
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"

	"github.com/t7a/flume"
)

// digest algorithms computed over every upload, in writer iteration
// order
var digestAlgos = []string{"md5", "sha1", "sha256"}

// Gateway pairs a storage backend with the metadata service and
// implements the content-addressable commit protocol on top of them.
// Bytes live in the backend under digest-derived names; the naming
// tree, identifiers, and version history live in the metadata
// service.
type Gateway struct {
	// Family identifies the gateway protocol.  Moves and copies to a
	// gateway of a different family fall back to the generic
	// download-upload-delete path.
	Family  string
	Backend Backend
	Meta    MetadataService
	// RootID is the metadata service's identifier for this gateway's
	// root folder.
	RootID string
}

func (gw Gateway) New(backend Backend, meta MetadataService, rootID string) *Gateway {
	if gw.Family == "" {
		gw.Family = "flume"
	}
	gw.Backend = backend
	gw.Meta = meta
	gw.RootID = rootID
	return &gw
}

// SameRegion reports whether both gateways' backends answer to the
// same logical storage region, in which case entries can be relocated
// without moving bytes.
func (gw *Gateway) SameRegion(other *Gateway) bool {
	return gw.Backend.Region() == other.Backend.Region()
}

// SharesRoot reports whether both gateways resolve names against the
// same naming tree.
func (gw *Gateway) SharesRoot(other *Gateway) bool {
	return gw.Meta == other.Meta && gw.RootID == other.RootID
}

// parentOf resolves the id the final segment's entry hangs under.
// Only a single-segment path may fall back to the root; a longer path
// whose parent segment is unbound has skipped ValidatePath, and
// filing it under the root would silently misplace the entry.
func (gw *Gateway) parentOf(path *Path) (string, error) {
	if id := path.ParentID(); id != "" {
		return id, nil
	}
	if len(path.Segments) > 1 {
		return "", &flume.UsageError{Msg: fmt.Sprintf("unbound parent segment in %q", path.Materialized())}
	}
	return gw.RootID, nil
}

// Upload runs the commit protocol over the caller's inbound stream
// and records the result with the metadata service.  Identical
// content uploaded twice is stored once; both uploads report the same
// digest set.  Returns the confirmed entry and whether the logical
// path was newly created.
func (gw *Gateway) Upload(stream flume.Stream, path *Path) (entry *Entry, created bool, err error) {
	defer Return(&err)

	parentID, err := gw.parentOf(path)
	Ck(err)

	meta, digests, err := gw.commit(stream)
	Ck(err)

	entry, created, err = gw.Meta.Record(parentID, path.Name(), meta, digests, gw.Backend.Region())
	Ck(err)
	path.Bind(entry.ID)
	return
}

// commit is the content-addressable upload state machine:
//
//	RECEIVING -> PENDING_STORED -> {DEDUPED | FINALIZED}
//
// The stream is teed through md5/sha1/sha256 accumulators while being
// relayed to the backend under a fresh random pending name.  Once the
// upload completes the sha256 digest names the final object: if that
// object already exists the pending copy is deleted (dedup),
// otherwise the pending object is renamed into place.  A failure
// leaves at worst an orphaned pending object, which is accepted
// garbage.
func (gw *Gateway) commit(stream flume.Stream) (meta *ObjectMeta, digests Digests, err error) {
	defer Return(&err)

	writers := make(map[string]*flume.HashWriter, len(digestAlgos))
	for _, algo := range digestAlgos {
		writers[algo], err = flume.NewHashWriter(algo)
		Ck(err)
	}
	tee := flume.NewDigestStream(stream, writers)

	pending := uuid.New().String()
	log.Debugf("commit: pending upload as %s", pending)
	_, err = gw.Backend.Upload(tee, pending)
	Ck(err)

	address := tee.Writer("sha256").HexDigest()
	log.Debugf("commit: content address %s", address)

	meta, err = gw.Backend.Metadata(address)
	switch {
	case err == nil:
		// the content is already stored; drop the pending copy
		log.Debugf("commit: deduped %s", address)
		err = gw.Backend.Delete(pending)
		Ck(err)
	case IsNotFound(err):
		log.Debugf("commit: finalizing %s", address)
		meta, err = gw.Backend.Move(pending, address)
		Ck(err)
	default:
		return nil, nil, err
	}

	digests = tee.HexDigests()
	return
}

// Download returns a stream over the object backing path's entry.  A
// positive version selects that revision; 0 selects the newest.
func (gw *Gateway) Download(path *Path, version int) (stream flume.Stream, err error) {
	defer Return(&err)

	if path.Identifier() == "" {
		return nil, &NotFoundError{Path: path.Materialized()}
	}
	revisions, err := gw.Meta.Revisions(path.Identifier())
	Ck(err)
	if len(revisions) == 0 {
		return nil, &NotFoundError{Path: path.Materialized()}
	}
	selected := revisions[0]
	if version > 0 {
		found := false
		for _, rev := range revisions {
			if rev.Number == version {
				selected, found = rev, true
				break
			}
		}
		if !found {
			return nil, &NotFoundError{Path: path.Materialized()}
		}
	}

	inner, err := gw.Backend.Download(selected.Object)
	Ck(err)
	return &namedStream{Stream: inner, name: path.Name()}, nil
}

// Delete removes path's entry from the naming tree.  Backend objects
// are content-shared across entries and versions, so no bytes are
// reclaimed here.
func (gw *Gateway) Delete(path *Path) (err error) {
	if path.Identifier() == "" {
		return &NotFoundError{Path: path.Materialized()}
	}
	return gw.Meta.Delete(path.Identifier())
}

// CreateFolder makes a folder entry under path's parent.
func (gw *Gateway) CreateFolder(path *Path) (entry *Entry, err error) {
	defer Return(&err)
	parentID, err := gw.parentOf(path)
	Ck(err)
	entry, err = gw.Meta.CreateFolder(parentID, path.Name())
	Ck(err)
	path.Bind(entry.ID)
	return
}

// Metadata resolves path's entry, or its children listing for a
// folder.
func (gw *Gateway) Metadata(path *Path) (entries []Entry, err error) {
	defer Return(&err)
	if path.Identifier() == "" {
		return nil, &NotFoundError{Path: path.Materialized()}
	}
	if path.Folder {
		return gw.Meta.Children(path.Identifier())
	}
	lineage, err := gw.Meta.Lineage(path.Identifier())
	Ck(err)
	return lineage[len(lineage)-1:], nil
}

// ResolvePath materializes a bound Path for an entry id by walking
// its lineage, root first.  The root itself resolves to "/".
func (gw *Gateway) ResolvePath(id string) (path *Path, err error) {
	defer Return(&err)

	if id == gw.RootID {
		return NewPath("/")
	}
	lineage, err := gw.Meta.Lineage(id)
	Ck(err)
	path = &Path{}
	for _, entry := range lineage {
		if entry.ID == gw.RootID {
			continue
		}
		path.Segments = append(path.Segments, Segment{Name: entry.Name, ID: entry.ID})
	}
	if len(lineage) > 0 {
		path.Folder = lineage[len(lineage)-1].Kind == "folder"
	}
	return
}

// namedStream attaches a display name to a download stream.
type namedStream struct {
	flume.Stream
	name string
}

func (s *namedStream) Name() string {
	return s.name
}

func (s *namedStream) Close() error {
	return flume.Close(s.Stream)
}

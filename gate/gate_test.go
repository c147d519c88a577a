package gate

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/t7a/flume"
)

// test boolean condition
func tassert(t *testing.T, cond bool, txt string, args ...interface{}) {
	t.Helper() // cause file:line info to show caller
	if !cond {
		t.Fatalf(txt, args...)
	}
}

// memBackend is an in-memory Backend that logs every call so tests
// can assert on the exact operation sequence of the commit protocol.
type memBackend struct {
	region  string
	objects map[string][]byte
	ops     []string
}

func newMemBackend(region string) *memBackend {
	return &memBackend{region: region, objects: make(map[string][]byte)}
}

func (b *memBackend) Upload(stream flume.Stream, name string) (*ObjectMeta, error) {
	buf, err := flume.ReadAll(stream)
	if err != nil {
		return nil, err
	}
	b.objects[name] = buf
	b.ops = append(b.ops, "upload "+name)
	return b.meta(name), nil
}

func (b *memBackend) Download(name string) (flume.Stream, error) {
	buf, ok := b.objects[name]
	if !ok {
		return nil, &NotFoundError{Path: name}
	}
	b.ops = append(b.ops, "download "+name)
	return flume.NewBufferStream(buf), nil
}

func (b *memBackend) Delete(name string) error {
	if _, ok := b.objects[name]; !ok {
		return &NotFoundError{Path: name}
	}
	delete(b.objects, name)
	b.ops = append(b.ops, "delete "+name)
	return nil
}

func (b *memBackend) Move(src, dst string) (*ObjectMeta, error) {
	buf, ok := b.objects[src]
	if !ok {
		return nil, &NotFoundError{Path: src}
	}
	delete(b.objects, src)
	b.objects[dst] = buf
	b.ops = append(b.ops, "move "+dst)
	return b.meta(dst), nil
}

func (b *memBackend) Copy(src, dst string) (*ObjectMeta, error) {
	buf, ok := b.objects[src]
	if !ok {
		return nil, &NotFoundError{Path: src}
	}
	b.objects[dst] = buf
	b.ops = append(b.ops, "copy "+dst)
	return b.meta(dst), nil
}

func (b *memBackend) Metadata(name string) (*ObjectMeta, error) {
	b.ops = append(b.ops, "stat "+name)
	if _, ok := b.objects[name]; !ok {
		return nil, &NotFoundError{Path: name}
	}
	return b.meta(name), nil
}

func (b *memBackend) Region() string {
	return b.region
}

func (b *memBackend) meta(name string) *ObjectMeta {
	return &ObjectMeta{Name: name, Size: int64(len(b.objects[name])), Modified: time.Now()}
}

// opsSince returns the operations logged after mark, with pending
// uuids replaced by PENDING so sequences are comparable.
func (b *memBackend) opsSince(mark int) string {
	var out []string
	for _, op := range b.ops[mark:] {
		fields := strings.Fields(op)
		for i, f := range fields[1:] {
			if strings.Count(f, "-") == 4 {
				fields[i+1] = "PENDING"
			}
		}
		out = append(out, strings.Join(fields, " "))
	}
	return strings.Join(out, "; ")
}

// memMeta is a minimal in-memory MetadataService.
type memRecord struct {
	id       string
	parentID string
	name     string
	kind     string
	versions []Version
}

type memMeta struct {
	rootID string
	recs   map[string]*memRecord
}

// shared across instances so ids never collide between naming trees
var memSeq int

func newMemMeta() *memMeta {
	m := &memMeta{rootID: newID(), recs: make(map[string]*memRecord)}
	m.recs[m.rootID] = &memRecord{id: m.rootID, kind: "folder"}
	return m
}

func newID() string {
	memSeq++
	return fmt.Sprintf("id%d", memSeq)
}

func (m *memMeta) child(parentID, name string) *memRecord {
	for _, rec := range m.recs {
		if rec.parentID == parentID && rec.name == name {
			return rec
		}
	}
	return nil
}

func (m *memMeta) entry(rec *memRecord) *Entry {
	entry := &Entry{ID: rec.id, ParentID: rec.parentID, Name: rec.name, Kind: rec.kind}
	if n := len(rec.versions); n > 0 {
		latest := rec.versions[n-1]
		entry.Size = latest.Size
		entry.Digests = latest.Digests
		entry.Version = latest.Number
		entry.Modified = latest.Created
	}
	return entry
}

func (m *memMeta) Record(parentID, name string, meta *ObjectMeta, digests Digests, region string) (*Entry, bool, error) {
	rec := m.child(parentID, name)
	created := rec == nil
	if created {
		rec = &memRecord{id: newID(), parentID: parentID, name: name, kind: "file"}
		m.recs[rec.id] = rec
	}
	rec.versions = append(rec.versions, Version{
		Number:  len(rec.versions) + 1,
		Object:  meta.Name,
		Size:    meta.Size,
		Digests: digests,
		Created: time.Now(),
		Region:  region,
	})
	return m.entry(rec), created, nil
}

func (m *memMeta) CreateFolder(parentID, name string) (*Entry, error) {
	if rec := m.child(parentID, name); rec != nil {
		return m.entry(rec), nil
	}
	rec := &memRecord{id: newID(), parentID: parentID, name: name, kind: "folder"}
	m.recs[rec.id] = rec
	return m.entry(rec), nil
}

func (m *memMeta) Relocate(action, srcID, destParentID, destName string) (*Entry, bool, error) {
	src, ok := m.recs[srcID]
	if !ok {
		return nil, false, &MetadataError{Msg: "no such record", Code: 404}
	}
	created := true
	if existing := m.child(destParentID, destName); existing != nil && existing.id != srcID {
		m.remove(existing.id)
		created = false
	}
	if action == "move" {
		src.parentID, src.name = destParentID, destName
		return m.entry(src), created, nil
	}
	dup := m.duplicate(src, destParentID, destName)
	return m.entry(dup), created, nil
}

func (m *memMeta) duplicate(src *memRecord, parentID, name string) *memRecord {
	dup := &memRecord{id: newID(), parentID: parentID, name: name, kind: src.kind}
	dup.versions = append(dup.versions, src.versions...)
	m.recs[dup.id] = dup
	for _, rec := range m.recs {
		if rec.parentID == src.id {
			m.duplicate(rec, dup.id, rec.name)
		}
	}
	return dup
}

func (m *memMeta) Lineage(id string) (entries []Entry, err error) {
	for id != "" {
		rec, ok := m.recs[id]
		if !ok {
			return nil, &MetadataError{Msg: "no such record", Code: 404}
		}
		entries = append([]Entry{*m.entry(rec)}, entries...)
		id = rec.parentID
	}
	return
}

func (m *memMeta) Children(id string) (entries []Entry, err error) {
	for _, rec := range m.recs {
		if rec.parentID == id && rec.id != m.rootID {
			entries = append(entries, *m.entry(rec))
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return
}

func (m *memMeta) Revisions(id string) (versions []Version, err error) {
	rec, ok := m.recs[id]
	if !ok {
		return nil, &MetadataError{Msg: "no such record", Code: 404}
	}
	for i := len(rec.versions) - 1; i >= 0; i-- {
		versions = append(versions, rec.versions[i])
	}
	return
}

func (m *memMeta) Delete(id string) error {
	if _, ok := m.recs[id]; !ok {
		return &MetadataError{Msg: "no such record", Code: 404}
	}
	m.remove(id)
	return nil
}

func (m *memMeta) remove(id string) {
	for _, rec := range m.recs {
		if rec.parentID == id {
			m.remove(rec.id)
		}
	}
	delete(m.recs, id)
}

func newgw(region string) (*Gateway, *memBackend, *memMeta) {
	backend := newMemBackend(region)
	svc := newMemMeta()
	return Gateway{}.New(backend, svc, svc.rootID), backend, svc
}

func mkpath(t *testing.T, raw string) *Path {
	t.Helper()
	path, err := NewPath(raw)
	tassert(t, err == nil, "NewPath(%q) err %v", raw, err)
	return path
}

func isUsage(err error) bool {
	var uerr *flume.UsageError
	return errors.As(err, &uerr)
}

const sleepyHash = "e74ca13b4c0a61dcf7746ff71c1238e2cd1b5026838c8b3c5e147595aa627025"

func TestUploadCommit(t *testing.T) {
	gw, backend, _ := newgw("us")

	path := mkpath(t, "/nap")
	entry, created, err := gw.Upload(flume.NewStringStream("sleepy"), path)
	tassert(t, err == nil, "Upload err %v", err)
	tassert(t, created, "existing entry reported for fresh path")
	tassert(t, entry.Version == 1, "version: expected 1 got %d", entry.Version)
	tassert(t, entry.Digests["sha256"] == sleepyHash, "sha256: got %v", entry.Digests["sha256"])
	tassert(t, path.Identifier() == entry.ID, "path not bound: %q", path.Identifier())

	// pending upload, stat at the content address, finalize by rename
	expect := "upload PENDING; stat " + sleepyHash + "; move " + sleepyHash
	tassert(t, backend.opsSince(0) == expect, "ops: expected %q got %q", expect, backend.opsSince(0))
	tassert(t, len(backend.objects) == 1, "objects: expected 1 got %d", len(backend.objects))
	tassert(t, string(backend.objects[sleepyHash]) == "sleepy", "stored content %q", backend.objects[sleepyHash])
}

func TestUploadDedup(t *testing.T) {
	gw, backend, _ := newgw("us")

	_, _, err := gw.Upload(flume.NewStringStream("sleepy"), mkpath(t, "/nap"))
	tassert(t, err == nil, "Upload err %v", err)
	mark := len(backend.ops)

	entry, created, err := gw.Upload(flume.NewStringStream("sleepy"), mkpath(t, "/rest"))
	tassert(t, err == nil, "Upload err %v", err)
	tassert(t, created, "second path not created")
	tassert(t, entry.Digests["sha256"] == sleepyHash, "sha256: got %v", entry.Digests["sha256"])

	// the pending copy is dropped, not renamed over the stored object
	expect := "upload PENDING; stat " + sleepyHash + "; delete PENDING"
	tassert(t, backend.opsSince(mark) == expect, "ops: expected %q got %q", expect, backend.opsSince(mark))
	tassert(t, len(backend.objects) == 1, "objects: expected 1 got %d", len(backend.objects))
}

func TestUploadVersions(t *testing.T) {
	gw, backend, svc := newgw("us")

	path := mkpath(t, "/nap")
	_, created, err := gw.Upload(flume.NewStringStream("sleepy"), path)
	tassert(t, err == nil, "Upload err %v", err)
	tassert(t, created, "v1 not created")

	entry, created, err := gw.Upload(flume.NewStringStream("wide awake"), mkpath(t, "/nap"))
	tassert(t, err == nil, "Upload err %v", err)
	tassert(t, !created, "v2 reported as created")
	tassert(t, entry.Version == 2, "version: expected 2 got %d", entry.Version)
	tassert(t, len(backend.objects) == 2, "objects: expected 2 got %d", len(backend.objects))

	revisions, err := svc.Revisions(entry.ID)
	tassert(t, err == nil, "Revisions err %v", err)
	tassert(t, len(revisions) == 2, "revisions: expected 2 got %d", len(revisions))
	tassert(t, revisions[0].Number == 2, "newest first: got v%d", revisions[0].Number)
}

func TestUploadUnboundParent(t *testing.T) {
	gw, backend, _ := newgw("us")

	_, err := gw.CreateFolder(mkpath(t, "/docs/"))
	tassert(t, err == nil, "CreateFolder err %v", err)
	mark := len(backend.ops)

	// a multi-segment path must have its parent bound first
	_, _, err = gw.Upload(flume.NewStringStream("sleepy"), mkpath(t, "/docs/nap"))
	tassert(t, isUsage(err), "unbound parent accepted: %v", err)
	_, err = gw.CreateFolder(mkpath(t, "/docs/sub/"))
	tassert(t, isUsage(err), "unbound parent accepted: %v", err)

	// rejected before any backend traffic
	tassert(t, len(backend.ops) == mark, "backend touched: %q", backend.opsSince(mark))

	// nothing was misfiled under the root
	children, err := gw.Meta.Children(gw.RootID)
	tassert(t, err == nil, "Children err %v", err)
	tassert(t, len(children) == 1, "root children: expected 1 got %d", len(children))
}

func TestDownload(t *testing.T) {
	gw, _, _ := newgw("us")

	path := mkpath(t, "/nap")
	_, _, err := gw.Upload(flume.NewStringStream("sleepy"), path)
	tassert(t, err == nil, "Upload err %v", err)
	_, _, err = gw.Upload(flume.NewStringStream("wide awake"), path)
	tassert(t, err == nil, "Upload err %v", err)

	stream, err := gw.Download(path, 0)
	tassert(t, err == nil, "Download err %v", err)
	got, err := flume.ReadAll(stream)
	tassert(t, err == nil, "ReadAll err %v", err)
	tassert(t, string(got) == "wide awake", "newest: got %q", got)
	named, ok := stream.(flume.Named)
	tassert(t, ok && named.Name() == "nap", "stream name: %v", stream)

	stream, err = gw.Download(path, 1)
	tassert(t, err == nil, "Download err %v", err)
	got, err = flume.ReadAll(stream)
	tassert(t, err == nil, "ReadAll err %v", err)
	tassert(t, string(got) == "sleepy", "v1: got %q", got)

	_, err = gw.Download(path, 9)
	tassert(t, IsNotFound(err), "missing version: got %v", err)
	_, err = gw.Download(mkpath(t, "/absent"), 0)
	tassert(t, IsNotFound(err), "unbound path: got %v", err)
}

func TestDeleteKeepsBytes(t *testing.T) {
	gw, backend, _ := newgw("us")

	path := mkpath(t, "/nap")
	_, _, err := gw.Upload(flume.NewStringStream("sleepy"), path)
	tassert(t, err == nil, "Upload err %v", err)

	err = gw.Delete(path)
	tassert(t, err == nil, "Delete err %v", err)
	tassert(t, len(backend.objects) == 1, "backend object reclaimed on entry delete")
	_, err = gw.Download(mkpath(t, "/nap"), 0)
	tassert(t, IsNotFound(err), "deleted entry still downloadable: %v", err)
}

func TestOverwriteSelf(t *testing.T) {
	gw, backend, _ := newgw("us")

	path := mkpath(t, "/nap")
	_, _, err := gw.Upload(flume.NewStringStream("sleepy"), path)
	tassert(t, err == nil, "Upload err %v", err)
	mark := len(backend.ops)

	src, err := gw.ValidatePath("/nap")
	tassert(t, err == nil, "ValidatePath err %v", err)
	dst, err := gw.ValidatePath("/nap")
	tassert(t, err == nil, "ValidatePath err %v", err)

	_, _, err = gw.Move(gw, src, dst, "")
	_, ok := err.(*OverwriteSelfError)
	tassert(t, ok, "expected OverwriteSelfError, got %v", err)

	// rejected before any backend call
	tassert(t, len(backend.ops) == mark, "backend touched: %q", backend.opsSince(mark))

	// a rename out of the collision is allowed
	dst, err = gw.ValidatePath("/nap")
	tassert(t, err == nil, "ValidatePath err %v", err)
	_, _, err = gw.Move(gw, src, dst, "siesta")
	tassert(t, err == nil, "Move with rename err %v", err)
}

func TestMoveSameRegion(t *testing.T) {
	gw, backend, _ := newgw("us")

	src := mkpath(t, "/nap")
	_, _, err := gw.Upload(flume.NewStringStream("sleepy"), src)
	tassert(t, err == nil, "Upload err %v", err)
	_, err = gw.CreateFolder(mkpath(t, "/docs/"))
	tassert(t, err == nil, "CreateFolder err %v", err)
	mark := len(backend.ops)

	dst, err := gw.ValidatePath("/docs/nap")
	tassert(t, err == nil, "ValidatePath err %v", err)
	entry, _, err := gw.Move(gw, src, dst, "")
	tassert(t, err == nil, "Move err %v", err)
	tassert(t, entry.ID == src.Identifier(), "identity not preserved: %v vs %v", entry.ID, src.Identifier())

	// metadata-only: no bytes moved
	tassert(t, len(backend.ops) == mark, "backend touched: %q", backend.opsSince(mark))

	got, err := gw.Download(dst, 0)
	tassert(t, err == nil, "Download err %v", err)
	buf, err := flume.ReadAll(got)
	tassert(t, err == nil, "ReadAll err %v", err)
	tassert(t, string(buf) == "sleepy", "content after move %q", buf)
}

func TestCopyDuplicatesHistory(t *testing.T) {
	gw, _, svc := newgw("us")

	src := mkpath(t, "/nap")
	_, _, err := gw.Upload(flume.NewStringStream("sleepy"), src)
	tassert(t, err == nil, "Upload err %v", err)
	_, _, err = gw.Upload(flume.NewStringStream("wide awake"), src)
	tassert(t, err == nil, "Upload err %v", err)

	dst, err := gw.ValidatePath("/rest")
	tassert(t, err == nil, "ValidatePath err %v", err)
	entry, _, err := gw.Copy(gw, src, dst, "")
	tassert(t, err == nil, "Copy err %v", err)
	tassert(t, entry.ID != src.Identifier(), "copy shares identity with source")

	revisions, err := svc.Revisions(entry.ID)
	tassert(t, err == nil, "Revisions err %v", err)
	tassert(t, len(revisions) == 2, "history not duplicated: %d revisions", len(revisions))

	// the source is untouched
	revisions, err = svc.Revisions(src.Identifier())
	tassert(t, err == nil, "Revisions err %v", err)
	tassert(t, len(revisions) == 2, "source history damaged: %d revisions", len(revisions))
}

func TestMoveCrossRegion(t *testing.T) {
	backendUS := newMemBackend("us")
	backendEU := newMemBackend("eu")
	svc := newMemMeta()
	gwUS := Gateway{}.New(backendUS, svc, svc.rootID)
	gwEU := Gateway{}.New(backendEU, svc, svc.rootID)

	src := mkpath(t, "/nap")
	_, _, err := gwUS.Upload(flume.NewStringStream("sleepy"), src)
	tassert(t, err == nil, "Upload err %v", err)

	dst, err := gwEU.ValidatePath("/rest")
	tassert(t, err == nil, "ValidatePath err %v", err)
	entry, _, err := gwUS.Move(gwEU, src, dst, "")
	tassert(t, err == nil, "Move err %v", err)
	tassert(t, entry.ID == src.Identifier(), "identity not preserved")

	// bytes were committed in the destination region; the source copy
	// stays behind as shared content
	tassert(t, string(backendEU.objects[sleepyHash]) == "sleepy", "destination region missing content")
	tassert(t, len(backendUS.objects) == 1, "source region objects: got %d", len(backendUS.objects))
}

func TestMoveForeignFamily(t *testing.T) {
	gwSrc, _, svcSrc := newgw("us")
	backendDst := newMemBackend("us")
	svcDst := newMemMeta()
	gwDst := Gateway{Family: "attic"}.New(backendDst, svcDst, svcDst.rootID)

	src := mkpath(t, "/nap")
	_, _, err := gwSrc.Upload(flume.NewStringStream("sleepy"), src)
	tassert(t, err == nil, "Upload err %v", err)
	srcID := src.Identifier()

	dst := mkpath(t, "/nap")
	entry, created, err := gwSrc.Move(gwDst, src, dst, "")
	tassert(t, err == nil, "Move err %v", err)
	tassert(t, created, "destination entry not created")
	tassert(t, entry.ID != srcID, "foreign-family move kept identity")

	// the source entry is gone, the destination holds the bytes
	_, err = svcSrc.Revisions(srcID)
	tassert(t, err != nil, "source entry survived the move")
	tassert(t, string(backendDst.objects[sleepyHash]) == "sleepy", "destination missing content")
}

func TestCopyFolderCrossRegion(t *testing.T) {
	backendUS := newMemBackend("us")
	backendEU := newMemBackend("eu")
	svc := newMemMeta()
	gwUS := Gateway{}.New(backendUS, svc, svc.rootID)
	gwEU := Gateway{}.New(backendEU, svc, svc.rootID)

	_, err := gwUS.CreateFolder(mkpath(t, "/docs/"))
	tassert(t, err == nil, "CreateFolder err %v", err)
	inner, err := gwUS.ValidatePath("/docs/nap")
	tassert(t, err == nil, "ValidatePath err %v", err)
	_, _, err = gwUS.Upload(flume.NewStringStream("sleepy"), inner)
	tassert(t, err == nil, "Upload err %v", err)

	src, err := gwUS.ValidatePath("/docs/")
	tassert(t, err == nil, "ValidatePath err %v", err)
	dst, err := gwEU.ValidatePath("/archive/")
	tassert(t, err == nil, "ValidatePath err %v", err)
	_, _, err = gwUS.Copy(gwEU, src, dst, "")
	tassert(t, err == nil, "Copy err %v", err)

	copied, err := gwEU.ValidatePath("/archive/nap")
	tassert(t, err == nil, "ValidatePath err %v", err)
	stream, err := gwEU.Download(copied, 0)
	tassert(t, err == nil, "Download err %v", err)
	got, err := flume.ReadAll(stream)
	tassert(t, err == nil, "ReadAll err %v", err)
	tassert(t, string(got) == "sleepy", "copied content %q", got)
}

func TestMoveFolderCrossRegion(t *testing.T) {
	backendUS := newMemBackend("us")
	backendEU := newMemBackend("eu")
	svc := newMemMeta()
	gwUS := Gateway{}.New(backendUS, svc, svc.rootID)
	gwEU := Gateway{}.New(backendEU, svc, svc.rootID)

	_, err := gwUS.CreateFolder(mkpath(t, "/docs/"))
	tassert(t, err == nil, "CreateFolder err %v", err)
	child, err := gwUS.ValidatePath("/docs/nap")
	tassert(t, err == nil, "ValidatePath err %v", err)
	_, _, err = gwUS.Upload(flume.NewStringStream("sleepy"), child)
	tassert(t, err == nil, "Upload err %v", err)
	childID := child.Identifier()

	src, err := gwUS.ValidatePath("/docs/")
	tassert(t, err == nil, "ValidatePath err %v", err)
	dst, err := gwEU.ValidatePath("/archive/")
	tassert(t, err == nil, "ValidatePath err %v", err)
	_, _, err = gwUS.Move(gwEU, src, dst, "")
	tassert(t, err == nil, "Move err %v", err)

	// the child kept its identity across the move
	moved, err := gwEU.ValidatePath("/archive/nap")
	tassert(t, err == nil, "ValidatePath err %v", err)
	tassert(t, moved.Identifier() == childID, "child identity lost: %q vs %q", moved.Identifier(), childID)

	// the source folder is gone; the bytes live in the destination
	// region
	_, err = gwUS.ValidatePath("/docs/nap")
	tassert(t, IsNotFound(err), "source folder survived the move: %v", err)
	tassert(t, string(backendEU.objects[sleepyHash]) == "sleepy", "destination region missing content")
}

func TestPathErrors(t *testing.T) {
	_, err := NewPath("/a//b")
	tassert(t, isUsage(err), "doubled separator accepted: %v", err)
	_, err = NewPathWithIDs("/a/b", []string{"only"})
	tassert(t, isUsage(err), "id count mismatch accepted: %v", err)
	_, err = NewPathWithIDs("/a/b", []string{"", "id"})
	tassert(t, isUsage(err), "unbound intermediate accepted: %v", err)
}

func TestValidatePath(t *testing.T) {
	gw, _, _ := newgw("us")

	_, err := gw.CreateFolder(mkpath(t, "/docs/"))
	tassert(t, err == nil, "CreateFolder err %v", err)
	bound, err := gw.ValidatePath("/docs/nap")
	tassert(t, err == nil, "ValidatePath err %v", err)
	_, _, err = gw.Upload(flume.NewStringStream("sleepy"), bound)
	tassert(t, err == nil, "Upload err %v", err)

	path, err := gw.ValidatePath("/docs/nap")
	tassert(t, err == nil, "ValidatePath err %v", err)
	tassert(t, path.Identifier() != "", "existing entry left unbound")
	tassert(t, !path.Folder, "file validated as folder")

	// a missing final segment stays unbound: the entry is pending
	path, err = gw.ValidatePath("/docs/new")
	tassert(t, err == nil, "ValidatePath err %v", err)
	tassert(t, path.Identifier() == "", "pending entry bound to %q", path.Identifier())
	tassert(t, path.ParentID() != "", "parent left unbound")

	// a missing intermediate segment is an error
	_, err = gw.ValidatePath("/nowhere/nap")
	tassert(t, IsNotFound(err), "missing intermediate: got %v", err)
}

func TestResolvePath(t *testing.T) {
	gw, _, _ := newgw("us")

	_, err := gw.CreateFolder(mkpath(t, "/docs/"))
	tassert(t, err == nil, "CreateFolder err %v", err)
	bound, err := gw.ValidatePath("/docs/nap")
	tassert(t, err == nil, "ValidatePath err %v", err)
	entry, _, err := gw.Upload(flume.NewStringStream("sleepy"), bound)
	tassert(t, err == nil, "Upload err %v", err)

	resolved, err := gw.ResolvePath(entry.ID)
	tassert(t, err == nil, "ResolvePath err %v", err)
	tassert(t, resolved.Materialized() == "/docs/nap", "materialized: got %q", resolved.Materialized())

	root, err := gw.ResolvePath(gw.RootID)
	tassert(t, err == nil, "ResolvePath err %v", err)
	tassert(t, root.IsRoot(), "root did not resolve to root")
}

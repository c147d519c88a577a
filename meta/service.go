package meta

import (
	"sort"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"

	"github.com/t7a/flume/gate"
)

// Record files a finished upload commit under name in the parent
// folder.  An existing file entry gains a new version; a new name
// creates an entry with version 1.  Digests recorded always describe
// exactly the bytes of the inbound stream, whether or not the backend
// deduped the object.
func (svc *Service) Record(parentID, name string, meta *gate.ObjectMeta, digests gate.Digests, region string) (entry *gate.Entry, created bool, err error) {
	defer Return(&err)

	parent, err := svc.get(parentID)
	Ck(err)
	if parent.Kind != "folder" {
		return nil, false, &gate.MetadataError{Msg: "parent is not a folder: " + parentID, Code: 400}
	}
	if name == "" {
		return nil, false, &gate.MetadataError{Msg: "empty entry name", Code: 400}
	}

	now := time.Now().UTC()
	rec := svc.child(parentID, name)
	if rec == nil {
		created = true
		rec = &record{
			ID:       uuid.New().String(),
			ParentID: parentID,
			Name:     name,
			Kind:     "file",
			Created:  now,
		}
		svc.records[rec.ID] = rec
	} else if rec.Kind != "file" {
		return nil, false, &gate.MetadataError{Msg: "cannot record upload over folder: " + name, Code: 409}
	}

	rec.Versions = append(rec.Versions, gate.Version{
		Number:  len(rec.Versions) + 1,
		Object:  meta.Name,
		Size:    meta.Size,
		Digests: digests,
		Created: now,
		Region:  region,
	})
	rec.Modified = now

	err = svc.save()
	Ck(err)
	log.Debugf("meta: recorded %s v%d (created=%v)", name, len(rec.Versions), created)
	return svc.entry(rec), created, nil
}

// CreateFolder makes a folder entry under parentID.  Creating a
// folder that already exists returns the existing entry.
func (svc *Service) CreateFolder(parentID, name string) (entry *gate.Entry, err error) {
	defer Return(&err)

	parent, err := svc.get(parentID)
	Ck(err)
	if parent.Kind != "folder" {
		return nil, &gate.MetadataError{Msg: "parent is not a folder: " + parentID, Code: 400}
	}

	if existing := svc.child(parentID, name); existing != nil {
		if existing.Kind != "folder" {
			return nil, &gate.MetadataError{Msg: "file exists: " + name, Code: 409}
		}
		return svc.entry(existing), nil
	}

	now := time.Now().UTC()
	rec := &record{
		ID:       uuid.New().String(),
		ParentID: parentID,
		Name:     name,
		Kind:     "folder",
		Created:  now,
		Modified: now,
	}
	svc.records[rec.ID] = rec
	err = svc.save()
	Ck(err)
	return svc.entry(rec), nil
}

// Relocate is the metadata-only move/copy: one request, no bytes.
// An existing entry at the destination is deleted first and created
// reports false.  A copy duplicates the entry subtree with fresh
// identifiers and the full version history of every file.
func (svc *Service) Relocate(action, srcID, destParentID, destName string) (entry *gate.Entry, created bool, err error) {
	defer Return(&err)

	src, err := svc.get(srcID)
	Ck(err)
	destParent, err := svc.get(destParentID)
	Ck(err)
	if destParent.Kind != "folder" {
		return nil, false, &gate.MetadataError{Msg: "destination parent is not a folder: " + destParentID, Code: 400}
	}

	created = true
	if existing := svc.child(destParentID, destName); existing != nil && existing.ID != srcID {
		created = false
		svc.remove(existing.ID)
	}

	var rec *record
	switch action {
	case "move":
		src.ParentID = destParentID
		src.Name = destName
		src.Modified = time.Now().UTC()
		rec = src
	case "copy":
		rec = svc.duplicate(src, destParentID, destName)
	default:
		return nil, false, &gate.MetadataError{Msg: "unknown relocate action: " + action, Code: 400}
	}

	err = svc.save()
	Ck(err)
	log.Debugf("meta: %s %s -> %s/%s (created=%v)", action, srcID, destParentID, destName, created)
	return svc.entry(rec), created, nil
}

// duplicate deep-copies a subtree under a new parent, preserving
// version history.
func (svc *Service) duplicate(src *record, parentID, name string) *record {
	now := time.Now().UTC()
	dup := &record{
		ID:       uuid.New().String(),
		ParentID: parentID,
		Name:     name,
		Kind:     src.Kind,
		Versions: append([]gate.Version{}, src.Versions...),
		Created:  now,
		Modified: now,
	}
	svc.records[dup.ID] = dup
	for _, child := range svc.childrenOf(src.ID) {
		svc.duplicate(child, dup.ID, child.Name)
	}
	return dup
}

// Lineage returns the chain of entries from the root down to id.
func (svc *Service) Lineage(id string) (entries []gate.Entry, err error) {
	defer Return(&err)

	rec, err := svc.get(id)
	Ck(err)
	for {
		entries = append([]gate.Entry{*svc.entry(rec)}, entries...)
		if rec.ParentID == "" {
			break
		}
		rec, err = svc.get(rec.ParentID)
		Ck(err)
	}
	return
}

// Children lists the entries directly under a folder, sorted by name.
func (svc *Service) Children(id string) (entries []gate.Entry, err error) {
	defer Return(&err)

	rec, err := svc.get(id)
	Ck(err)
	if rec.Kind != "folder" {
		return nil, &gate.MetadataError{Msg: "not a folder: " + id, Code: 400}
	}
	for _, child := range svc.childrenOf(id) {
		entries = append(entries, *svc.entry(child))
	}
	return
}

func (svc *Service) childrenOf(id string) (children []*record) {
	for _, rec := range svc.records {
		if rec.ParentID == id {
			children = append(children, rec)
		}
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
	return
}

// Revisions lists a file entry's versions, newest first.
func (svc *Service) Revisions(id string) (versions []gate.Version, err error) {
	defer Return(&err)

	rec, err := svc.get(id)
	Ck(err)
	if rec.Kind != "file" {
		return nil, &gate.MetadataError{Msg: "not a file: " + id, Code: 400}
	}
	for i := len(rec.Versions) - 1; i >= 0; i-- {
		versions = append(versions, rec.Versions[i])
	}
	return
}

// Delete removes the entry and, for folders, its whole subtree.
func (svc *Service) Delete(id string) (err error) {
	defer Return(&err)

	if id == svc.rootID {
		return &gate.MetadataError{Msg: "cannot delete root", Code: 400}
	}
	_, err = svc.get(id)
	Ck(err)
	svc.remove(id)
	err = svc.save()
	Ck(err)
	return
}

func (svc *Service) remove(id string) {
	for _, child := range svc.childrenOf(id) {
		svc.remove(child.ID)
	}
	delete(svc.records, id)
}

// Package meta is a local implementation of the gateway's metadata
// service: the authoritative naming tree.  Entries carry opaque
// identifiers, parent links, and per-file version history.  State is
// a msgpack snapshot written atomically next to the store; an
// fsnotify watcher picks up external writes so several processes can
// share one tree, last writer wins.
package meta

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/renameio"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"

	"github.com/t7a/flume/gate"
)

// record is one entry in the naming tree.
type record struct {
	ID       string
	ParentID string
	Name     string
	Kind     string // "file" or "folder"
	Versions []gate.Version
	Created  time.Time
	Modified time.Time
}

// snapshot is the on-disk form of the whole tree.
type snapshot struct {
	RootID  string
	Records []record
}

// Service implements gate.MetadataService.  It is single-flow like
// the rest of the gateway: calls are sequential, so no locking is
// done; the watcher goroutine only flips a reload flag.
type Service struct {
	path    string
	rootID  string
	records map[string]*record
	stale   int32
	watcher *fsnotify.Watcher
}

// Create initializes a new naming tree snapshot at path, with a fresh
// root folder entry.
func Create(path string) (svc *Service, err error) {
	defer Return(&err)

	if canstat(path) {
		return nil, errors.Errorf("already exists: %s", path)
	}
	root := record{
		ID:      uuid.New().String(),
		Kind:    "folder",
		Created: time.Now().UTC(),
	}
	svc = &Service{
		path:    path,
		rootID:  root.ID,
		records: map[string]*record{root.ID: &root},
	}
	err = svc.save()
	Ck(err)
	return Open(path)
}

// Open loads an existing snapshot and starts watching it for
// external changes.
func Open(path string) (svc *Service, err error) {
	defer Return(&err)

	svc = &Service{path: path}
	err = svc.load()
	Ck(err)

	svc.watcher, err = fsnotify.NewWatcher()
	Ck(err)
	// watch the directory, not the file: atomic replacement swaps the
	// inode out from under a file watch
	err = svc.watcher.Add(filepath.Dir(path))
	Ck(err)
	go svc.watch()

	return
}

// RootID is the identifier of the naming tree's root folder.
func (svc *Service) RootID() string {
	return svc.rootID
}

// Close stops the snapshot watcher.
func (svc *Service) Close() error {
	if svc.watcher == nil {
		return nil
	}
	return svc.watcher.Close()
}

func (svc *Service) watch() {
	for {
		select {
		case event, ok := <-svc.watcher.Events:
			if !ok {
				return
			}
			if event.Name == svc.path {
				atomic.StoreInt32(&svc.stale, 1)
			}
		case err, ok := <-svc.watcher.Errors:
			if !ok {
				return
			}
			log.Warnf("meta: watcher: %v", err)
		}
	}
}

func (svc *Service) load() (err error) {
	defer Return(&err)

	buf, err := ioutil.ReadFile(svc.path)
	if err != nil {
		return errors.Wrapf(err, "not a metadata snapshot: %s", svc.path)
	}
	var snap snapshot
	err = unmarshalSnapshot(buf, &snap)
	Ck(err)

	svc.rootID = snap.RootID
	svc.records = make(map[string]*record, len(snap.Records))
	for i := range snap.Records {
		rec := snap.Records[i]
		svc.records[rec.ID] = &rec
	}
	atomic.StoreInt32(&svc.stale, 0)
	return
}

func (svc *Service) save() (err error) {
	defer Return(&err)

	snap := snapshot{RootID: svc.rootID}
	ids := make([]string, 0, len(svc.records))
	for id := range svc.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		snap.Records = append(snap.Records, *svc.records[id])
	}

	buf, err := marshalSnapshot(&snap)
	Ck(err)
	err = renameio.WriteFile(svc.path, buf, 0644)
	Ck(err)
	return
}

// refresh reloads the snapshot if the watcher saw an external write.
func (svc *Service) refresh() (err error) {
	if atomic.LoadInt32(&svc.stale) == 0 {
		return
	}
	log.Debugf("meta: snapshot changed externally, reloading")
	return svc.load()
}

func (svc *Service) get(id string) (rec *record, err error) {
	if err = svc.refresh(); err != nil {
		return
	}
	rec, ok := svc.records[id]
	if !ok {
		return nil, &gate.MetadataError{Msg: "no such entry: " + id, Code: 404}
	}
	return
}

// child finds the entry named name directly under parentID, or nil.
func (svc *Service) child(parentID, name string) *record {
	for _, rec := range svc.records {
		if rec.ParentID == parentID && rec.Name == name {
			return rec
		}
	}
	return nil
}

func (svc *Service) entry(rec *record) *gate.Entry {
	entry := &gate.Entry{
		ID:       rec.ID,
		ParentID: rec.ParentID,
		Name:     rec.Name,
		Kind:     rec.Kind,
		Modified: rec.Modified,
	}
	if len(rec.Versions) > 0 {
		latest := rec.Versions[len(rec.Versions)-1]
		entry.Size = latest.Size
		entry.Digests = latest.Digests
		entry.Version = latest.Number
	}
	return entry
}

func canstat(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Package fs is the filesystem storage backend: whole objects stored
// as files under a root directory, addressed by opaque name.  Uploads
// land in a temporary file and are renamed into place, so a reader
// never observes a partial object.
package fs

import (
	"encoding/json"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/google/renameio"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"

	"github.com/t7a/flume"
	"github.com/t7a/flume/gate"
)

// Store implements gate.Backend over a local directory.  RegionName
// is the logical storage region this directory stands in for; two
// stores with equal region names are treated as byte-identical
// locations by the gateway.
type Store struct {
	Dir        string
	RegionName string
}

// Create initializes a store directory and writes its config.
func (store Store) Create() (out *Store, err error) {
	defer Return(&err)

	if store.RegionName == "" {
		store.RegionName = "local"
	}
	err = os.MkdirAll(filepath.Join(store.Dir, "objects"), 0755)
	Ck(err)

	buf, err := json.Marshal(store)
	Ck(err)
	err = renameio.WriteFile(filepath.Join(store.Dir, "config.json"), buf, 0644)
	Ck(err)

	return &store, nil
}

// Open loads an existing store from dir.
func Open(dir string) (store *Store, err error) {
	buf, err := ioutil.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		return nil, errors.Wrapf(err, "not a store: %s", dir)
	}
	store = &Store{}
	err = json.Unmarshal(buf, store)
	if err != nil {
		return
	}
	store.Dir = dir
	return
}

func (store *Store) Region() string {
	return store.RegionName
}

func (store *Store) objectPath(name string) string {
	return filepath.Join(store.Dir, "objects", name)
}

// Upload relays the stream into a temporary file and atomically
// renames it to name once complete.
func (store *Store) Upload(stream flume.Stream, name string) (meta *gate.ObjectMeta, err error) {
	defer Return(&err)

	tmp, err := renameio.TempFile(store.Dir, store.objectPath(name))
	Ck(err)
	defer tmp.Cleanup()

	n, err := io.Copy(tmp, flume.Reader(stream))
	if err != nil {
		return nil, errors.Wrapf(err, "upload %s", name)
	}
	err = tmp.CloseAtomicallyReplace()
	Ck(err)
	log.Debugf("fs: stored %s (%d bytes)", name, n)

	return store.Metadata(name)
}

func (store *Store) Download(name string) (stream flume.Stream, err error) {
	fh, err := os.Open(store.objectPath(name))
	if os.IsNotExist(err) {
		return nil, &gate.NotFoundError{Path: name}
	}
	if err != nil {
		return
	}
	return flume.NewFileStream(fh)
}

// DownloadRange returns a stream over the byte range
// [offset, offset+length) of the object.
func (store *Store) DownloadRange(name string, offset, length int64) (stream flume.Stream, err error) {
	fh, err := os.Open(store.objectPath(name))
	if os.IsNotExist(err) {
		return nil, &gate.NotFoundError{Path: name}
	}
	if err != nil {
		return
	}
	return flume.NewPartialFileStream(fh, offset, length)
}

func (store *Store) Delete(name string) (err error) {
	err = os.Remove(store.objectPath(name))
	if os.IsNotExist(err) {
		return &gate.NotFoundError{Path: name}
	}
	return
}

func (store *Store) Metadata(name string) (meta *gate.ObjectMeta, err error) {
	info, err := os.Stat(store.objectPath(name))
	if os.IsNotExist(err) {
		return nil, &gate.NotFoundError{Path: name}
	}
	if err != nil {
		return
	}
	return &gate.ObjectMeta{
		Name:        name,
		Size:        info.Size(),
		ContentType: "application/octet-stream",
		Modified:    info.ModTime(),
	}, nil
}

func (store *Store) Move(src, dst string) (meta *gate.ObjectMeta, err error) {
	defer Return(&err)
	if _, err := os.Stat(store.objectPath(src)); os.IsNotExist(err) {
		return nil, &gate.NotFoundError{Path: src}
	}
	err = os.Rename(store.objectPath(src), store.objectPath(dst))
	Ck(err)
	return store.Metadata(dst)
}

func (store *Store) Copy(src, dst string) (meta *gate.ObjectMeta, err error) {
	defer Return(&err)

	stream, err := store.Download(src)
	Ck(err)
	defer flume.Close(stream)
	return store.Upload(stream, dst)
}

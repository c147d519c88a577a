// Package chunkstore is a storage backend that stores objects as
// content-defined chunks.  Incoming bytes are segmented with a Rabin
// fingerprint, each chunk lands in a content-addressed write-once
// block file, and the object itself is a small manifest listing its
// blocks.  Identical chunks across objects are stored once.
//
// We use three-character hexadecimal names for the block
// subdirectories, giving us a maximum of 4096 subdirs in a parent dir
// -- that's a sweet spot.  Two-character names (such as what git uses
// under .git/objects) only allow for 256 subdirs, which is
// unnecessarily small.  Four-character names would give us 65,536
// subdirs, which would cause performance issues on e.g. ext4.
package chunkstore

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/google/renameio"
	"github.com/pkg/errors"
	resticRabin "github.com/restic/chunker"
	. "github.com/stevegt/goadapt"
)

// Store implements gate.Backend over a chunked local directory tree.
// Depth is the number of subdirectory levels in the block dir.  Poly,
// MinSize, and MaxSize parameterize the Rabin chunker; Poly is fixed
// at store creation so chunk boundaries stay stable across uploads.
type Store struct {
	Dir        string
	Depth      int
	Poly       resticRabin.Pol
	MinSize    uint
	MaxSize    uint
	RegionName string
}

// Create initializes a store directory and its contents.
func (store Store) Create() (out *Store, err error) {
	defer Return(&err)

	dir := store.Dir

	// if the directory exists, make sure it's empty
	if canstat(dir) {
		var files []os.FileInfo
		files, err = ioutil.ReadDir(dir)
		Ck(err)
		if len(files) > 0 {
			return nil, errors.Errorf("directory not empty: %s", dir)
		}
	}

	if store.Depth < 1 {
		store.Depth = 2
	}
	if store.RegionName == "" {
		store.RegionName = "local"
	}

	err = os.MkdirAll(dir, 0755)
	Ck(err)

	// hashed chunk files
	err = os.MkdirAll(filepath.Join(dir, "block"), 0755)
	Ck(err)

	// object manifests, by opaque name
	err = os.MkdirAll(filepath.Join(dir, "objects"), 0755)
	Ck(err)

	if store.Poly == 0 {
		store.Poly, err = resticRabin.RandomPolynomial()
		Ck(err)
	}

	buf, err := json.Marshal(store)
	Ck(err)
	err = renameio.WriteFile(filepath.Join(dir, "config.json"), buf, 0644)
	Ck(err)

	return &store, nil
}

// Open loads an existing store from dir.
func Open(dir string) (store *Store, err error) {
	dir = filepath.Clean(dir)

	buf, err := ioutil.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		return nil, errors.Wrapf(err, "not a chunkstore: %s", dir)
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

// blockPath is the on-disk path for a block hash, with Depth levels
// of three-character fanout subdirs.  The full hash stays in the last
// component to make troubleshooting with UNIX tools slightly easier.
func (store *Store) blockPath(algo, hexhash string) string {
	sub := ""
	for i := 0; i < store.Depth; i++ {
		sub = filepath.Join(sub, hexhash[3*i:3*i+3])
	}
	return filepath.Join(store.Dir, "block", algo, sub, hexhash)
}

func (store *Store) manifestPath(name string) string {
	return filepath.Join(store.Dir, "objects", name)
}

func (store *Store) tmpFile() (fh *os.File, err error) {
	return ioutil.TempFile(store.Dir, "*")
}

func canstat(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

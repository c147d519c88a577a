package chunkstore

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"os"
	"path/filepath"

	. "github.com/stevegt/goadapt"
)

// blockHeader is written at the front of every block file and fed
// into the hash along with the data, to keep us from accidentally
// writing a cryptographic hash reverser.
const blockHeader = "block\n"

// blockWriter writes one content-addressed write-once block file.
// Data goes to a temporary file while the hash accumulates; Close
// learns the final hash and renames the file into place.  A block
// that already exists is left untouched -- identical content never
// has more than one stored copy.
type blockWriter struct {
	store *Store
	algo  string
	fh    *os.File
	hash  hash.Hash
	size  int64
}

func (store *Store) createBlock(algo string) (w *blockWriter, err error) {
	defer Return(&err)

	w = &blockWriter{store: store, algo: algo}
	switch algo {
	case "sha256":
		w.hash = sha256.New()
	case "sha512":
		w.hash = sha512.New()
	default:
		return nil, fmt.Errorf("unknown block hash algorithm: %s", algo)
	}

	w.fh, err = store.tmpFile()
	Ck(err)

	header := []byte(blockHeader)
	n, err := w.fh.Write(header)
	Ck(err)
	Assert(n == len(header), "short header write")
	n, err = w.hash.Write(header)
	Ck(err)
	Assert(n == len(header), "short header hash")
	return
}

func (w *blockWriter) Write(data []byte) (n int, err error) {
	n, err = w.hash.Write(data)
	if err != nil {
		return
	}
	n, err = w.fh.Write(data)
	w.size += int64(n)
	return
}

// Close finalizes the block, returning its entry for the manifest.
func (w *blockWriter) Close() (entry blockEntry, err error) {
	defer Return(&err)

	err = w.fh.Close()
	Ck(err)

	hexhash := hex.EncodeToString(w.hash.Sum(nil))
	entry = blockEntry{Algo: w.algo, Hash: hexhash, Size: w.size}

	abs := w.store.blockPath(w.algo, hexhash)
	if canstat(abs) {
		// block-level dedup: the content is already stored
		err = os.Remove(w.fh.Name())
		Ck(err)
		return
	}

	dir, _ := filepath.Split(abs)
	err = os.MkdirAll(dir, 0755)
	Ck(err)
	err = os.Rename(w.fh.Name(), abs)
	Ck(err)
	err = os.Chmod(abs, 0444)
	Ck(err)
	return
}

// blockEntry is one line of an object manifest.
type blockEntry struct {
	Algo string
	Hash string
	Size int64
}

func (e blockEntry) String() string {
	return fmt.Sprintf("%s/%s %d", e.Algo, e.Hash, e.Size)
}

package chunkstore

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/renameio"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"

	"github.com/t7a/flume"
	"github.com/t7a/flume/gate"
)

const blockAlgo = "sha256"

// Upload segments the stream into content-defined chunks, stores each
// as a block, and writes the object manifest under name.  Chunks
// shared with previously stored objects are not written again.
func (store *Store) Upload(stream flume.Stream, name string) (meta *gate.ObjectMeta, err error) {
	defer Return(&err)

	chunker, err := rabin{Poly: store.Poly, MinSize: store.MinSize, MaxSize: store.MaxSize}.Init()
	Ck(err)
	chunker.Start(flume.Reader(stream))

	var entries []blockEntry
	buf := make([]byte, chunker.MaxSize+1)
	for {
		chunk, err := chunker.Next(buf)
		if errors.Cause(err) == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		entry, err := store.putBlock(blockAlgo, chunk.Data)
		if err != nil {
			return nil, err
		}
		log.Debugf("chunkstore: block %s", entry)
		entries = append(entries, entry)
	}

	err = store.writeManifest(name, entries)
	Ck(err)
	return store.Metadata(name)
}

// putBlock hashes the chunk, stores it in a file named after the
// hash, and returns its manifest entry.
func (store *Store) putBlock(algo string, data []byte) (entry blockEntry, err error) {
	defer Return(&err)

	w, err := store.createBlock(algo)
	Ck(err)
	n, err := w.Write(data)
	Ck(err)
	Assert(n == len(data), "short block write")
	return w.Close()
}

func (store *Store) writeManifest(name string, entries []blockEntry) (err error) {
	defer Return(&err)

	var out strings.Builder
	for _, entry := range entries {
		fmt.Fprintf(&out, "%s\n", entry)
	}
	err = renameio.WriteFile(store.manifestPath(name), []byte(out.String()), 0644)
	Ck(err)
	return
}

// readManifest parses an object manifest into block entries.  Returns
// NotFoundError when the object is absent.
func (store *Store) readManifest(name string) (entries []blockEntry, info os.FileInfo, err error) {
	fh, err := os.Open(store.manifestPath(name))
	if os.IsNotExist(err) {
		return nil, nil, &gate.NotFoundError{Path: name}
	}
	if err != nil {
		return
	}
	defer fh.Close()

	info, err = fh.Stat()
	if err != nil {
		return
	}

	scanner := bufio.NewScanner(fh)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry blockEntry
		var addr string
		_, err = fmt.Sscanf(line, "%s %d", &addr, &entry.Size)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "malformed manifest line in %s: %q", name, line)
		}
		parts := strings.SplitN(addr, "/", 2)
		if len(parts) != 2 {
			return nil, nil, errors.Errorf("malformed block address in %s: %q", name, addr)
		}
		entry.Algo, entry.Hash = parts[0], parts[1]
		entries = append(entries, entry)
	}
	err = scanner.Err()
	return
}

// Download reassembles the object as a concatenation of its block
// streams; bytes come straight off the block files, no full-object
// buffer.
func (store *Store) Download(name string) (stream flume.Stream, err error) {
	defer Return(&err)

	entries, _, err := store.readManifest(name)
	if err != nil {
		return nil, err
	}

	streams := make([]flume.Stream, 0, len(entries))
	for _, entry := range entries {
		fh, err := os.Open(store.blockPath(entry.Algo, entry.Hash))
		if err != nil {
			return nil, errors.Wrapf(err, "object %s block %s", name, entry.Hash)
		}
		// skip the block header; only the body belongs to the object
		sub, err := flume.NewPartialFileStream(fh, int64(len(blockHeader)), entry.Size)
		if err != nil {
			return nil, err
		}
		streams = append(streams, sub)
	}
	return flume.NewMultiStream(streams...), nil
}

func (store *Store) Metadata(name string) (meta *gate.ObjectMeta, err error) {
	entries, info, err := store.readManifest(name)
	if err != nil {
		return
	}
	var size int64
	for _, entry := range entries {
		size += entry.Size
	}
	return &gate.ObjectMeta{
		Name:        name,
		Size:        size,
		ContentType: "application/octet-stream",
		Modified:    info.ModTime(),
		Extra:       map[string]string{"blocks": fmt.Sprintf("%d", len(entries))},
	}, nil
}

// Delete removes the object's manifest.  Blocks are content-shared
// across objects, so they stay behind as accepted garbage; a
// reconciliation job can sweep unreferenced blocks offline.
func (store *Store) Delete(name string) (err error) {
	err = os.Remove(store.manifestPath(name))
	if os.IsNotExist(err) {
		return &gate.NotFoundError{Path: name}
	}
	return
}

func (store *Store) Move(src, dst string) (meta *gate.ObjectMeta, err error) {
	defer Return(&err)
	if !canstat(store.manifestPath(src)) {
		return nil, &gate.NotFoundError{Path: src}
	}
	err = os.Rename(store.manifestPath(src), store.manifestPath(dst))
	Ck(err)
	return store.Metadata(dst)
}

// Copy duplicates the manifest; the blocks themselves are already
// shared.
func (store *Store) Copy(src, dst string) (meta *gate.ObjectMeta, err error) {
	defer Return(&err)
	entries, _, err := store.readManifest(src)
	if err != nil {
		return nil, err
	}
	err = store.writeManifest(dst, entries)
	Ck(err)
	return store.Metadata(dst)
}

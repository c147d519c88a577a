package gate

import (
	log "github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"

	"github.com/t7a/flume"
)

// Move relocates src to dst on the destination gateway, preserving
// identity and version history whenever both gateways answer to the
// same naming tree.  rename, when non-empty, renames the entry at the
// destination before any other resolution.
//
// Decision order: a destination of a different gateway family gets
// the generic byte-copying move; same region gets a metadata-only
// relocation; otherwise the source is streamed into the destination
// region's commit protocol and the entry is relocated afterwards.
func (gw *Gateway) Move(dest *Gateway, src, dst *Path, rename string) (entry *Entry, created bool, err error) {
	return gw.moveOrCopy("move", dest, src, dst, rename)
}

// Copy duplicates src at dst.  A same-region copy duplicates the full
// version history, which is why the metadata-only path is preferred
// whenever available.
func (gw *Gateway) Copy(dest *Gateway, src, dst *Path, rename string) (entry *Entry, created bool, err error) {
	return gw.moveOrCopy("copy", dest, src, dst, rename)
}

func (gw *Gateway) moveOrCopy(action string, dest *Gateway, src, dst *Path, rename string) (entry *Entry, created bool, err error) {
	defer Return(&err)

	if dest.Family != gw.Family {
		return gw.generic(action, dest, src, dst, rename)
	}

	if rename != "" {
		dst.Rename(rename)
	}

	// files and folders shouldn't overwrite themselves
	if gw.SharesRoot(dest) && src.Materialized() == dst.Materialized() {
		return nil, false, &OverwriteSelfError{Path: src.Materialized()}
	}

	if gw.SameRegion(dest) {
		log.Debugf("%s: intra relocation %s -> %s", action, src, dst)
		return gw.intra(action, dest, src, dst)
	}

	log.Debugf("%s: cross-region %s -> %s", action, src, dst)
	if src.Folder {
		entry, created, err = gw.folderOp(action, dest, src, dst)
		Ck(err)
		if action == "move" {
			// the children have been relocated; only the emptied
			// source folder remains
			err = gw.Delete(src)
			Ck(err)
		}
		return
	}

	// stream the bytes into the destination region's commit protocol,
	// then relocate the entry in place to preserve its identity and
	// history
	stream, err := gw.Download(src, 0)
	Ck(err)
	if named, ok := stream.(flume.Named); ok && named.Name() != "" {
		dst.Rename(named.Name())
	}
	_, _, err = dest.commit(stream)
	Ck(err)

	return gw.intra(action, dest, src, dst)
}

// intra performs the metadata-only relocation: one request to the
// metadata service renaming or re-parenting the entry, never moving
// bytes.
func (gw *Gateway) intra(action string, dest *Gateway, src, dst *Path) (entry *Entry, created bool, err error) {
	defer Return(&err)
	parentID, err := dest.parentOf(dst)
	Ck(err)
	entry, created, err = gw.Meta.Relocate(action, src.Identifier(), parentID, dst.Name())
	Ck(err)
	dst.Bind(entry.ID)
	return
}

// generic is the non-content-addressed fallback for foreign-family
// destinations: download, upload at the destination, and for a move
// delete the source.  Only the newest version travels.
func (gw *Gateway) generic(action string, dest *Gateway, src, dst *Path, rename string) (entry *Entry, created bool, err error) {
	defer Return(&err)

	if rename != "" {
		dst.Rename(rename)
	}
	if src.Folder {
		entry, created, err = gw.folderOp(action, dest, src, dst)
		Ck(err)
	} else {
		stream, err := gw.Download(src, 0)
		Ck(err)
		entry, created, err = dest.Upload(stream, dst)
		Ck(err)
	}
	if action == "move" {
		err = gw.Delete(src)
		Ck(err)
	}
	return
}

// folderOp recreates a folder at the destination and recurses over
// the source's children.
func (gw *Gateway) folderOp(action string, dest *Gateway, src, dst *Path) (entry *Entry, created bool, err error) {
	defer Return(&err)

	entry, err = dest.CreateFolder(dst)
	Ck(err)
	created = true

	children, err := gw.Meta.Children(src.Identifier())
	Ck(err)
	for _, child := range children {
		childSrc := src.Child(child.Name, child.ID, child.Kind == "folder")
		childDst := dst.Child(child.Name, "", child.Kind == "folder")
		// the action carries down so a moved child keeps its identity
		// and history
		_, _, err = gw.moveOrCopy(action, dest, childSrc, childDst, "")
		Ck(err)
	}
	return
}

package meta

import (
	"github.com/vmihailenco/msgpack"
)

// msgpack keeps the snapshot compact and fast to reload; the tree is
// rewritten whole on every mutation.

func marshalSnapshot(snap *snapshot) ([]byte, error) {
	return msgpack.Marshal(snap)
}

func unmarshalSnapshot(buf []byte, snap *snapshot) error {
	return msgpack.Unmarshal(buf, snap)
}

// Package dir encodes directory entries.
//
// A directory's contents are a packed array of fixed-size entries at the start
// of its single cluster: a 32-bit inode number followed by a NUL-padded
// 12-byte name.
package dir

import (
	"bytes"
	"strings"

	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-vfs/common"
)

type DirEnt struct {
	Inum common.Inum
	Name string
}

func MkDirEnt(inum common.Inum, name string) DirEnt {
	return DirEnt{Inum: inum, Name: name}
}

// ValidName reports whether name can be stored in an entry.
func ValidName(name string) bool {
	return len(name) > 0 && uint64(len(name)) <= common.MAXNAME &&
		!strings.ContainsAny(name, common.PathDelim+"\x00")
}

func (de DirEnt) Encode() []byte {
	name := make([]byte, common.NAMELEN)
	copy(name[:common.MAXNAME], de.Name)
	enc := marshal.NewEnc(common.DIRENTSZ)
	enc.PutInt32(uint32(de.Inum))
	enc.PutBytes(name)
	return enc.Finish()
}

func Decode(b []byte) DirEnt {
	dec := marshal.NewDec(b)
	inum := common.Inum(dec.GetInt32())
	name := dec.GetBytes(common.NAMELEN)
	if i := bytes.IndexByte(name, 0); i >= 0 {
		name = name[:i]
	}
	return DirEnt{Inum: inum, Name: string(name)}
}

// DecodeAll reads the first n entries of a directory cluster.
func DecodeAll(blk []byte, n uint64) []DirEnt {
	ents := make([]DirEnt, 0, n)
	for i := uint64(0); i < n; i++ {
		off := i * common.DIRENTSZ
		ents = append(ents, Decode(blk[off:off+common.DIRENTSZ]))
	}
	return ents
}

// EncodeAll packs ents into a zero-padded cluster of clusterSize bytes.
func EncodeAll(ents []DirEnt, clusterSize uint64) []byte {
	blk := make([]byte, clusterSize)
	for i, de := range ents {
		copy(blk[uint64(i)*common.DIRENTSZ:], de.Encode())
	}
	return blk
}

// Lookup returns the position of the first entry called name.
func Lookup(ents []DirEnt, name string) (int, bool) {
	for i, de := range ents {
		if de.Name == name {
			return i, true
		}
	}
	return 0, false
}

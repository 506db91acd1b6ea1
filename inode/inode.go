// Package inode defines the on-disk inode record and the mapping from a
// file's logical chunk numbers to the references that locate them.
//
// Chunks [0, NDIRECT) are referenced from Direct. The next P chunks are
// referenced from the cluster Indirect1 (P = clusterSize/4 references per
// cluster). The next P*P are reached through Indirect2, whose slot n/P names
// a second cluster holding the reference at slot n%P.
package inode

import (
	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-vfs/common"
	"github.com/mit-pdos/go-vfs/util"
)

type Inode struct {
	IsDir     bool
	Refs      uint32 // hard links to this inode
	Size      uint64 // in bytes
	Direct    [common.NDIRECT]common.Cnum
	Indirect1 common.Cnum
	Indirect2 common.Cnum
}

func MkInode(isDir bool, refs uint32) *Inode {
	return &Inode{IsDir: isDir, Refs: refs}
}

func (ip *Inode) Encode() []byte {
	enc := marshal.NewEnc(common.INODESZ)
	if ip.IsDir {
		enc.PutInt32(1)
	} else {
		enc.PutInt32(0)
	}
	enc.PutInt32(ip.Refs)
	enc.PutInt32(uint32(ip.Size))
	for _, c := range ip.Direct {
		enc.PutInt32(uint32(c))
	}
	enc.PutInt32(uint32(ip.Indirect1))
	enc.PutInt32(uint32(ip.Indirect2))
	return enc.Finish()
}

func Decode(b []byte) *Inode {
	dec := marshal.NewDec(b)
	ip := &Inode{}
	// the flag is a single byte followed by padding
	ip.IsDir = dec.GetInt32()&0xff != 0
	ip.Refs = dec.GetInt32()
	ip.Size = uint64(dec.GetInt32())
	for i := range ip.Direct {
		ip.Direct[i] = common.Cnum(dec.GetInt32())
	}
	ip.Indirect1 = common.Cnum(dec.GetInt32())
	ip.Indirect2 = common.Cnum(dec.GetInt32())
	return ip
}

// NChunks is the number of clusters backing ip.
func (ip *Inode) NChunks(clusterSize uint64) uint64 {
	return util.RoundUp(ip.Size, clusterSize)
}

type Level int

const (
	DIRECT Level = iota
	INDIRECT1
	INDIRECT2
)

// A Loc says where the reference to a chunk is kept. For DIRECT, Inner is
// the index into Direct; for INDIRECT1, the slot in Indirect1; for INDIRECT2,
// Outer is the slot in Indirect2 and Inner the slot in the cluster it names.
type Loc struct {
	Level Level
	Outer uint64
	Inner uint64
}

// MaxChunks is the largest chunk count addressable with p refs per cluster.
func MaxChunks(p uint64) uint64 {
	return common.NDIRECT + p + p*p
}

// Locate maps chunk n to its Loc; ok is false past MaxChunks(p).
func Locate(n uint64, p uint64) (Loc, bool) {
	if n < common.NDIRECT {
		return Loc{Level: DIRECT, Inner: n}, true
	}
	n -= common.NDIRECT
	if n < p {
		return Loc{Level: INDIRECT1, Inner: n}, true
	}
	n -= p
	if n < p*p {
		return Loc{Level: INDIRECT2, Outer: n / p, Inner: n % p}, true
	}
	return Loc{}, false
}

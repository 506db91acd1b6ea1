// Package super computes and encodes the container geometry.
//
// A container is laid out as
//
//	[ superblock | inode bitmap | cluster bitmap | inode table | data | pad ]
//
// where each region starts exactly where the previous one ends. Bitmaps use
// one byte per slot. All superblock fields are little-endian 32-bit words.
package super

import (
	"errors"
	"fmt"
	"math"

	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-vfs/common"
	"github.com/mit-pdos/go-vfs/util"
)

var (
	ErrTooSmall = errors.New("container too small")
	ErrTooBig   = errors.New("container too big")
	ErrCorrupt  = errors.New("bad superblock")
)

// MaxSize is the largest container the 32-bit superblock fields can describe.
const MaxSize uint64 = math.MaxInt32

type Super struct {
	DiskSize     uint64
	ClusterSize  uint64
	ClusterCount uint64
	InodeCount   uint64

	InodeBitmapStart uint64
	DataBitmapStart  uint64
	InodeStart       uint64
	DataStart        uint64
}

// MkSuper lays out a container of total bytes with clusters of clusterSize
// bytes.
func MkSuper(total uint64, clusterSize uint64) (*Super, error) {
	if total > MaxSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooBig, total)
	}
	if clusterSize < common.REFSZ || clusterSize%common.DIRENTSZ != 0 {
		return nil, fmt.Errorf("bad cluster size %d", clusterSize)
	}
	ninode := uint64(float64(total) * common.InodeRatio)
	meta := common.SUPERSZ + ninode + ninode*common.INODESZ
	if ninode == 0 || total <= meta {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooSmall, total)
	}
	ncluster := (total - meta) / (clusterSize + 1)
	if ncluster == 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooSmall, total)
	}
	sb := &Super{
		DiskSize:     total,
		ClusterSize:  clusterSize,
		ClusterCount: ncluster,
		InodeCount:   ninode,
	}
	sb.InodeBitmapStart = common.SUPERSZ
	sb.DataBitmapStart = sb.InodeBitmapStart + ninode
	sb.InodeStart = sb.DataBitmapStart + ncluster
	sb.DataStart = sb.InodeStart + ninode*common.INODESZ
	util.DPrintf(1, "MkSuper: %+v\n", sb)
	return sb, nil
}

// RefsPerCluster is P, the number of references in an indirect cluster.
func (sb *Super) RefsPerCluster() uint64 {
	return sb.ClusterSize / common.REFSZ
}

// DirentsPerCluster bounds the entry count of a directory.
func (sb *Super) DirentsPerCluster() uint64 {
	return sb.ClusterSize / common.DIRENTSZ
}

// DataEnd is the first byte after the data region; the rest is padding.
func (sb *Super) DataEnd() uint64 {
	return sb.DataStart + sb.ClusterCount*sb.ClusterSize
}

func (sb *Super) InodeAddr(inum common.Inum) uint64 {
	return sb.InodeStart + uint64(inum)*common.INODESZ
}

// Validate checks that the regions are chained and fit in the container.
func (sb *Super) Validate(diskSize uint64) error {
	if sb.ClusterSize < common.DIRENTSZ || sb.InodeCount == 0 || sb.ClusterCount == 0 {
		return ErrCorrupt
	}
	if sb.InodeBitmapStart != common.SUPERSZ ||
		sb.DataBitmapStart != sb.InodeBitmapStart+sb.InodeCount ||
		sb.InodeStart != sb.DataBitmapStart+sb.ClusterCount ||
		sb.DataStart != sb.InodeStart+sb.InodeCount*common.INODESZ {
		return ErrCorrupt
	}
	if sb.DataEnd() > sb.DiskSize || sb.DiskSize > diskSize {
		return ErrCorrupt
	}
	return nil
}

func (sb *Super) Encode() []byte {
	enc := marshal.NewEnc(common.SUPERSZ)
	enc.PutInt32(uint32(sb.DiskSize))
	enc.PutInt32(uint32(sb.ClusterSize))
	enc.PutInt32(uint32(sb.ClusterCount))
	enc.PutInt32(uint32(sb.InodeCount))
	enc.PutInt32(uint32(sb.InodeBitmapStart))
	enc.PutInt32(uint32(sb.DataBitmapStart))
	enc.PutInt32(uint32(sb.InodeStart))
	enc.PutInt32(uint32(sb.DataStart))
	return enc.Finish()
}

func Decode(b []byte) *Super {
	dec := marshal.NewDec(b)
	sb := &Super{}
	sb.DiskSize = uint64(dec.GetInt32())
	sb.ClusterSize = uint64(dec.GetInt32())
	sb.ClusterCount = uint64(dec.GetInt32())
	sb.InodeCount = uint64(dec.GetInt32())
	sb.InodeBitmapStart = uint64(dec.GetInt32())
	sb.DataBitmapStart = uint64(dec.GetInt32())
	sb.InodeStart = uint64(dec.GetInt32())
	sb.DataStart = uint64(dec.GetInt32())
	return sb
}

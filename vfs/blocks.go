package vfs

import (
	"github.com/mit-pdos/go-vfs/addr"
	"github.com/mit-pdos/go-vfs/buf"
	"github.com/mit-pdos/go-vfs/common"
	"github.com/mit-pdos/go-vfs/inode"
	"github.com/mit-pdos/go-vfs/util"
)

func (fs *FileSys) readBlock(c common.Cnum) (*buf.Buf, error) {
	return fs.data.ReadBuf(c)
}

// writeBlock stores data at the start of cluster c, zero-filling the rest.
func (fs *FileSys) writeBlock(c common.Cnum, data []byte) error {
	blk := make([]byte, fs.sb.ClusterSize)
	copy(blk, data)
	return buf.MkBuf(addr.MkAddr(c, 0), blk).WriteDirect(fs.data)
}

func (fs *FileSys) allocInode() (common.Inum, error) {
	n, err := fs.ibits.AllocNum()
	if err != nil {
		return 0, ErrNoFreeInodes
	}
	return common.Inum(n), nil
}

func (fs *FileSys) freeInode(inum common.Inum) {
	fs.ibits.FreeNum(uint64(inum))
	fs.inodes[inum] = &inode.Inode{}
}

func (fs *FileSys) allocCluster() (common.Cnum, error) {
	n, err := fs.cbits.AllocNum()
	if err != nil {
		return 0, ErrNoFreeClusters
	}
	util.DPrintf(3, "allocCluster: %d\n", n)
	return common.Cnum(n), nil
}

func (fs *FileSys) freeCluster(c common.Cnum) {
	fs.cbits.FreeNum(uint64(c))
}

// Package vfs implements a file system stored in a single container file.
//
// A FileSys owns in-memory copies of both bitmaps and the inode table for as
// long as the container is open. Every mutating operation writes them back
// before returning; there is no journal, so a crash in the middle of an
// operation can leak clusters.
package vfs

import (
	"errors"
	"fmt"
	"os"

	"github.com/mit-pdos/go-vfs/alloc"
	"github.com/mit-pdos/go-vfs/buf"
	"github.com/mit-pdos/go-vfs/common"
	"github.com/mit-pdos/go-vfs/disk"
	"github.com/mit-pdos/go-vfs/inode"
	"github.com/mit-pdos/go-vfs/super"
	"github.com/mit-pdos/go-vfs/util"
)

type FileSys struct {
	mkdisk      func(size uint64) (disk.Disk, error)
	clusterSize uint64 // used by Format

	d      disk.Disk
	sb     *super.Super // nil until formatted
	data   *buf.Region
	ibits  *alloc.Alloc
	cbits  *alloc.Alloc
	inodes []*inode.Inode

	cwd  common.Inum
	path string
}

func mkFileSys(mkdisk func(uint64) (disk.Disk, error), clusterSize uint64) *FileSys {
	return &FileSys{
		mkdisk:      mkdisk,
		clusterSize: clusterSize,
		cwd:         common.ROOTINUM,
		path:        common.PathDelim,
	}
}

// Open loads the container at name. A missing or unrecognizable container
// yields an unformatted FileSys; Format creates the file.
func Open(name string) (*FileSys, error) {
	fs := mkFileSys(func(sz uint64) (disk.Disk, error) {
		return disk.CreateFileDisk(name, sz)
	}, common.ClusterSize)
	d, err := disk.OpenFileDisk(name)
	if errors.Is(err, os.ErrNotExist) {
		util.DPrintf(1, "Open: %s does not exist\n", name)
		return fs, nil
	}
	if err != nil {
		return nil, err
	}
	err = fs.mount(d)
	if err != nil {
		d.Close()
		return nil, err
	}
	return fs, nil
}

// MkMemFs returns an unformatted FileSys whose containers live in memory.
func MkMemFs(clusterSize uint64) *FileSys {
	return mkFileSys(func(sz uint64) (disk.Disk, error) {
		return disk.NewMemDisk(sz), nil
	}, clusterSize)
}

// Mount loads an existing container from d, for instance one written by a
// FileSys from MkMemFs.
func Mount(d disk.Disk) (*FileSys, error) {
	fs := MkMemFs(common.ClusterSize)
	err := fs.mount(d)
	if err != nil {
		return nil, err
	}
	return fs, nil
}

// Disk returns the current container, or nil when unformatted.
func (fs *FileSys) Disk() disk.Disk {
	return fs.d
}

func (fs *FileSys) mount(d disk.Disk) error {
	sz, err := d.Size()
	if err != nil {
		return err
	}
	if sz < common.SUPERSZ {
		util.DPrintf(1, "mount: container of %d bytes is not formatted\n", sz)
		d.Close()
		return nil
	}
	b := make([]byte, common.SUPERSZ)
	err = d.ReadAt(b, 0)
	if err != nil {
		return err
	}
	sb := super.Decode(b)
	if err := sb.Validate(sz); err != nil {
		util.DPrintf(1, "mount: %v\n", err)
		d.Close()
		return nil
	}

	ibits := make([]byte, sb.InodeCount)
	if err := d.ReadAt(ibits, sb.InodeBitmapStart); err != nil {
		return err
	}
	cbits := make([]byte, sb.ClusterCount)
	if err := d.ReadAt(cbits, sb.DataBitmapStart); err != nil {
		return err
	}
	table := make([]byte, sb.InodeCount*common.INODESZ)
	if err := d.ReadAt(table, sb.InodeStart); err != nil {
		return err
	}
	inodes := make([]*inode.Inode, sb.InodeCount)
	for i := range inodes {
		off := uint64(i) * common.INODESZ
		inodes[i] = inode.Decode(table[off : off+common.INODESZ])
	}
	fs.attach(d, sb, alloc.MkAlloc(ibits), alloc.MkAlloc(cbits), inodes)
	util.DPrintf(1, "mount: %d inodes (%d free), %d clusters (%d free)\n",
		sb.InodeCount, fs.ibits.NumFree(), sb.ClusterCount, fs.cbits.NumFree())
	return nil
}

func (fs *FileSys) attach(d disk.Disk, sb *super.Super, ibits *alloc.Alloc,
	cbits *alloc.Alloc, inodes []*inode.Inode) {
	fs.d = d
	fs.sb = sb
	fs.data = buf.MkRegion(d, sb.DataStart, sb.ClusterSize, sb.ClusterCount)
	fs.ibits = ibits
	fs.cbits = cbits
	fs.inodes = inodes
	fs.cwd = common.ROOTINUM
	fs.path = common.PathDelim
}

func (fs *FileSys) detach() {
	if fs.d != nil {
		fs.d.Close()
	}
	fs.d = nil
	fs.sb = nil
	fs.data = nil
	fs.ibits = nil
	fs.cbits = nil
	fs.inodes = nil
	fs.cwd = common.ROOTINUM
	fs.path = common.PathDelim
}

func (fs *FileSys) Formatted() bool {
	return fs.sb != nil
}

// Super returns the geometry of the current container.
func (fs *FileSys) Super() *super.Super {
	return fs.sb
}

func (fs *FileSys) Close() error {
	if fs.d == nil {
		return nil
	}
	err := fs.d.Close()
	fs.d = nil
	fs.sb = nil
	return err
}

// Format replaces the container with an empty file system of the given
// human-readable size (see super.ParseSize).
func (fs *FileSys) Format(size string) error {
	total, err := super.ParseSize(size)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCannotCreate, err)
	}
	sb, err := super.MkSuper(total, fs.clusterSize)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCannotCreate, err)
	}
	fs.detach()
	d, err := fs.mkdisk(total)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCannotCreate, err)
	}
	if err := d.WriteAt(sb.Encode(), 0); err != nil {
		d.Close()
		return err
	}
	inodes := make([]*inode.Inode, sb.InodeCount)
	for i := range inodes {
		inodes[i] = &inode.Inode{}
	}
	fs.attach(d, sb, alloc.MkMaxAlloc(sb.InodeCount), alloc.MkMaxAlloc(sb.ClusterCount), inodes)

	fs.ibits.MarkUsed(uint64(common.ROOTINUM))
	fs.inodes[common.ROOTINUM] = inode.MkInode(true, 1)
	if err := fs.addTraversalRefs(common.ROOTINUM, common.ROOTINUM); err != nil {
		return err
	}
	util.DPrintf(1, "Format: %d bytes, %d inodes, %d clusters\n",
		total, sb.InodeCount, sb.ClusterCount)
	return fs.flush()
}

// flush writes both bitmaps and the inode table to the container.
func (fs *FileSys) flush() error {
	if err := fs.d.WriteAt(fs.ibits.Bytes(), fs.sb.InodeBitmapStart); err != nil {
		return err
	}
	if err := fs.d.WriteAt(fs.cbits.Bytes(), fs.sb.DataBitmapStart); err != nil {
		return err
	}
	table := make([]byte, 0, uint64(len(fs.inodes))*common.INODESZ)
	for _, ip := range fs.inodes {
		table = append(table, ip.Encode()...)
	}
	if err := fs.d.WriteAt(table, fs.sb.InodeStart); err != nil {
		return err
	}
	return fs.d.Barrier()
}

func (fs *FileSys) Pwd() string {
	return fs.path
}

// Cwd is the inode of the current directory.
func (fs *FileSys) Cwd() common.Inum {
	return fs.cwd
}

// Inode returns a copy of inode inum.
func (fs *FileSys) Inode(inum common.Inum) inode.Inode {
	return *fs.inodes[inum]
}

type Stats struct {
	FreeInodes   uint64
	FreeClusters uint64
}

func (fs *FileSys) Stats() Stats {
	return Stats{
		FreeInodes:   fs.ibits.NumFree(),
		FreeClusters: fs.cbits.NumFree(),
	}
}

// ClusterUsed reports whether cluster c is marked in the bitmap.
func (fs *FileSys) ClusterUsed(c common.Cnum) bool {
	return fs.cbits.IsUsed(uint64(c))
}

// InodeUsed reports whether inode inum is marked in the bitmap.
func (fs *FileSys) InodeUsed(inum common.Inum) bool {
	return fs.ibits.IsUsed(uint64(inum))
}

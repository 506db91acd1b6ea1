package vfs

import (
	"github.com/mit-pdos/go-vfs/addr"
	"github.com/mit-pdos/go-vfs/buf"
	"github.com/mit-pdos/go-vfs/common"
	"github.com/mit-pdos/go-vfs/dir"
	"github.com/mit-pdos/go-vfs/util"
)

// A directory keeps all of its entries in the cluster Direct[0]; it never
// uses indirect references.

func (fs *FileSys) nEntries(dinum common.Inum) uint64 {
	return fs.inodes[dinum].Size / common.DIRENTSZ
}

func (fs *FileSys) dirFull(dinum common.Inum) bool {
	return fs.nEntries(dinum) >= fs.sb.DirentsPerCluster()
}

func (fs *FileSys) listEntries(dinum common.Inum) ([]dir.DirEnt, error) {
	n := fs.nEntries(dinum)
	if n == 0 {
		return nil, nil
	}
	b, err := fs.readBlock(fs.inodes[dinum].Direct[0])
	if err != nil {
		return nil, err
	}
	return dir.DecodeAll(b.Data, n), nil
}

// addEntry appends (target, name) to directory dinum, allocating the
// directory's cluster with its first entry.
func (fs *FileSys) addEntry(dinum common.Inum, target common.Inum, name string) error {
	ip := fs.inodes[dinum]
	n := fs.nEntries(dinum)
	if n >= fs.sb.DirentsPerCluster() {
		return ErrDirFull
	}
	if n == 0 {
		c, err := fs.allocCluster()
		if err != nil {
			return err
		}
		ip.Direct[0] = c
	}
	de := dir.MkDirEnt(target, name)
	b := buf.MkBuf(addr.MkDirentAddr(ip.Direct[0], n), de.Encode())
	if err := b.WriteDirect(fs.data); err != nil {
		return err
	}
	ip.Size += common.DIRENTSZ
	util.DPrintf(3, "addEntry: %d/%s -> %d\n", dinum, name, target)
	return nil
}

func (fs *FileSys) writeEntries(dinum common.Inum, ents []dir.DirEnt) error {
	ip := fs.inodes[dinum]
	blk := dir.EncodeAll(ents, fs.sb.ClusterSize)
	if err := fs.writeBlock(ip.Direct[0], blk); err != nil {
		return err
	}
	ip.Size = uint64(len(ents)) * common.DIRENTSZ
	return nil
}

// removeEntry drops the first entry called name and compacts the rest.
func (fs *FileSys) removeEntry(dinum common.Inum, name string) error {
	ents, err := fs.listEntries(dinum)
	if err != nil {
		return err
	}
	i, ok := dir.Lookup(ents, name)
	if !ok {
		return ErrPathNotFound
	}
	util.DPrintf(3, "removeEntry: %d/%s\n", dinum, name)
	return fs.writeEntries(dinum, append(ents[:i], ents[i+1:]...))
}

// setEntry points the existing entry name at target.
func (fs *FileSys) setEntry(dinum common.Inum, name string, target common.Inum) error {
	ents, err := fs.listEntries(dinum)
	if err != nil {
		return err
	}
	i, ok := dir.Lookup(ents, name)
	if !ok {
		return ErrPathNotFound
	}
	ents[i].Inum = target
	b := buf.MkBuf(addr.MkDirentAddr(fs.inodes[dinum].Direct[0], uint64(i)), ents[i].Encode())
	return b.WriteDirect(fs.data)
}

func (fs *FileSys) lookup(dinum common.Inum, name string) (common.Inum, bool, error) {
	ents, err := fs.listEntries(dinum)
	if err != nil {
		return 0, false, err
	}
	i, ok := dir.Lookup(ents, name)
	if !ok {
		return 0, false, nil
	}
	return ents[i].Inum, true, nil
}

func (fs *FileSys) isUnique(dinum common.Inum, name string) (bool, error) {
	_, found, err := fs.lookup(dinum, name)
	return !found, err
}

// addTraversalRefs gives a new directory its "." and ".." entries.
func (fs *FileSys) addTraversalRefs(dinum common.Inum, parent common.Inum) error {
	if err := fs.addEntry(dinum, dinum, common.SelfName); err != nil {
		return err
	}
	return fs.addEntry(dinum, parent, common.ParentName)
}

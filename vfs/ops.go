package vfs

import (
	"fmt"
	"io"
	"os"

	"github.com/mit-pdos/go-vfs/common"
	"github.com/mit-pdos/go-vfs/dir"
	"github.com/mit-pdos/go-vfs/inode"
	"github.com/mit-pdos/go-vfs/util"
)

// A DirItem is one line of a directory listing.
type DirItem struct {
	Name  string
	Inum  common.Inum
	IsDir bool
}

// An ItemInfo describes one file or directory.
type ItemInfo struct {
	Name     string
	Inum     common.Inum
	IsDir    bool
	Size     uint64
	Refs     uint32
	Clusters []common.Cnum // data clusters in order; a directory's single cluster

	// Structural clusters, valid when the file is long enough to use them
	Indirect1, Indirect2       common.Cnum
	HasIndirect1, HasIndirect2 bool
}

func (fs *FileSys) mounted() error {
	if fs.sb == nil {
		return ErrNotFormatted
	}
	return nil
}

// resolveFile finds an existing regular file.
func (fs *FileSys) resolveFile(p string) (common.Inum, error) {
	inum, ok, err := fs.resolve(p)
	if err != nil {
		return 0, err
	}
	if !ok || fs.inodes[inum].IsDir {
		return 0, fmt.Errorf("%w: %s", ErrFileNotFound, p)
	}
	return inum, nil
}

func (fs *FileSys) resolveDir(p string) (common.Inum, error) {
	inum, ok, err := fs.resolve(p)
	if err != nil {
		return 0, err
	}
	if !ok || !fs.inodes[inum].IsDir {
		return 0, fmt.Errorf("%w: %s", ErrPathNotFound, p)
	}
	return inum, nil
}

// newEntry resolves where a new item named by p goes, checking that the name
// is storable and unused and that the directory has room.
func (fs *FileSys) newEntry(p string) (common.Inum, string, error) {
	parent, name, ok, err := fs.resolveParent(p)
	if err != nil {
		return 0, "", err
	}
	if !ok || !dir.ValidName(name) {
		return 0, "", fmt.Errorf("%w: %s", ErrPathNotFound, p)
	}
	unique, err := fs.isUnique(parent, name)
	if err != nil {
		return 0, "", err
	}
	if !unique {
		return 0, "", fmt.Errorf("%w: %s", ErrExist, p)
	}
	if fs.dirFull(parent) {
		return 0, "", fmt.Errorf("%w: %s", ErrDirFull, p)
	}
	return parent, name, nil
}

func (fs *FileSys) Mkdir(p string) error {
	if err := fs.mounted(); err != nil {
		return err
	}
	parent, name, err := fs.newEntry(p)
	if err != nil {
		return err
	}
	inum, err := fs.allocInode()
	if err != nil {
		return err
	}
	fs.inodes[inum] = inode.MkInode(true, 0)
	if err := fs.addEntry(parent, inum, name); err != nil {
		return err
	}
	if err := fs.addTraversalRefs(inum, parent); err != nil {
		return err
	}
	util.DPrintf(1, "Mkdir: %s inode %d\n", p, inum)
	return fs.flush()
}

func (fs *FileSys) Rmdir(p string) error {
	if err := fs.mounted(); err != nil {
		return err
	}
	parent, name, ok, err := fs.resolveParent(p)
	if err != nil {
		return err
	}
	if !ok || name == common.SelfName || name == common.ParentName {
		return fmt.Errorf("%w: %s", ErrPathNotFound, p)
	}
	inum, ok, err := fs.lookup(parent, name)
	if err != nil {
		return err
	}
	if !ok || !fs.inodes[inum].IsDir {
		return fmt.Errorf("%w: %s", ErrPathNotFound, p)
	}
	if fs.nEntries(inum) != 2 {
		return fmt.Errorf("%w: %s", ErrNotEmpty, p)
	}

	if err := fs.removeEntry(parent, name); err != nil {
		return err
	}
	fs.freeCluster(fs.inodes[inum].Direct[0])
	fs.freeInode(inum)
	if fs.cwd == inum {
		fs.cwd = parent
		fs.path, err = fs.pathOf(parent)
		if err != nil {
			return err
		}
	}
	util.DPrintf(1, "Rmdir: %s inode %d\n", p, inum)
	return fs.flush()
}

// Ls lists directory p, or the current directory when p is empty.
func (fs *FileSys) Ls(p string) ([]DirItem, error) {
	if err := fs.mounted(); err != nil {
		return nil, err
	}
	dinum, err := fs.resolveDir(p)
	if err != nil {
		return nil, err
	}
	ents, err := fs.listEntries(dinum)
	if err != nil {
		return nil, err
	}
	items := make([]DirItem, 0, len(ents))
	for _, de := range ents {
		items = append(items, DirItem{
			Name:  de.Name,
			Inum:  de.Inum,
			IsDir: fs.inodes[de.Inum].IsDir,
		})
	}
	return items, nil
}

// Cat writes the contents of file p to w.
func (fs *FileSys) Cat(p string, w io.Writer) error {
	if err := fs.mounted(); err != nil {
		return err
	}
	inum, err := fs.resolveFile(p)
	if err != nil {
		return err
	}
	return fs.writeData(fs.inodes[inum], w)
}

// Cd changes the current directory; the empty path means the root.
func (fs *FileSys) Cd(p string) error {
	if err := fs.mounted(); err != nil {
		return err
	}
	if p == "" {
		fs.cwd = common.ROOTINUM
		fs.path = common.PathDelim
		return nil
	}
	dinum, err := fs.resolveDir(p)
	if err != nil {
		return err
	}
	fs.cwd = dinum
	fs.path = joinPath(fs.path, p)
	return nil
}

func (fs *FileSys) Info(p string) (*ItemInfo, error) {
	if err := fs.mounted(); err != nil {
		return nil, err
	}
	inum, ok, err := fs.resolve(p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, p)
	}
	ip := fs.inodes[inum]
	info := &ItemInfo{
		Name:  displayName(p),
		Inum:  inum,
		IsDir: ip.IsDir,
		Size:  ip.Size,
		Refs:  ip.Refs,
	}
	if ip.IsDir {
		info.Clusters = []common.Cnum{ip.Direct[0]}
		return info, nil
	}
	info.Clusters, err = fs.dataClusters(ip)
	if err != nil {
		return nil, err
	}
	n := ip.NChunks(fs.sb.ClusterSize)
	if n > common.NDIRECT {
		info.Indirect1, info.HasIndirect1 = ip.Indirect1, true
	}
	if n > common.NDIRECT+fs.sb.RefsPerCluster() {
		info.Indirect2, info.HasIndirect2 = ip.Indirect2, true
	}
	return info, nil
}

func displayName(p string) string {
	if p == "" {
		return common.SelfName
	}
	segs, _ := splitPath(p)
	if len(segs) == 0 {
		return common.PathDelim
	}
	return segs[len(segs)-1]
}

// Incp copies the host file src into a new file p.
func (fs *FileSys) Incp(src string, p string) error {
	if err := fs.mounted(); err != nil {
		return err
	}
	parent, name, err := fs.newEntry(p)
	if err != nil {
		return err
	}
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFileNotFound, err)
	}
	defer f.Close()

	inum, err := fs.allocInode()
	if err != nil {
		return err
	}
	ip := inode.MkInode(false, 1)
	fs.inodes[inum] = ip
	if err := fs.readData(ip, f); err != nil {
		if IsFatal(err) {
			return err
		}
		// the host file went bad part way; drop what was written
		if err := fs.freeData(ip); err != nil {
			return err
		}
		fs.freeInode(inum)
		return fmt.Errorf("%w: %v", ErrFileNotFound, err)
	}
	if err := fs.addEntry(parent, inum, name); err != nil {
		return err
	}
	util.DPrintf(1, "Incp: %s -> %s inode %d, %d bytes\n", src, p, inum, ip.Size)
	return fs.flush()
}

// Outcp copies file p out to the host file dst.
func (fs *FileSys) Outcp(p string, dst string) error {
	if err := fs.mounted(); err != nil {
		return err
	}
	inum, err := fs.resolveFile(p)
	if err != nil {
		return err
	}
	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFileNotFound, err)
	}
	err = fs.writeData(fs.inodes[inum], f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFileNotFound, err)
	}
	return nil
}

// Ln adds p as another name for the file src.
func (fs *FileSys) Ln(src string, p string) error {
	if err := fs.mounted(); err != nil {
		return err
	}
	inum, err := fs.resolveFile(src)
	if err != nil {
		return err
	}
	parent, name, err := fs.newEntry(p)
	if err != nil {
		return err
	}
	if err := fs.addEntry(parent, inum, name); err != nil {
		return err
	}
	fs.inodes[inum].Refs++
	return fs.flush()
}

// removeFile drops the entry name from parent and releases the file once
// its last link is gone.
func (fs *FileSys) removeFile(parent common.Inum, name string, inum common.Inum) error {
	if err := fs.removeEntry(parent, name); err != nil {
		return err
	}
	ip := fs.inodes[inum]
	if ip.Refs > 1 {
		ip.Refs--
		return nil
	}
	if err := fs.freeData(ip); err != nil {
		return err
	}
	fs.freeInode(inum)
	util.DPrintf(3, "removeFile: freed inode %d\n", inum)
	return nil
}

func (fs *FileSys) Rm(p string) error {
	if err := fs.mounted(); err != nil {
		return err
	}
	parent, name, ok, err := fs.resolveParent(p)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrFileNotFound, p)
	}
	inum, ok, err := fs.lookup(parent, name)
	if err != nil {
		return err
	}
	if !ok || fs.inodes[inum].IsDir {
		return fmt.Errorf("%w: %s", ErrFileNotFound, p)
	}
	if err := fs.removeFile(parent, name, inum); err != nil {
		return err
	}
	return fs.flush()
}

// source is the item a cp or mv starts from.
type source struct {
	parent common.Inum
	name   string
	inum   common.Inum
}

func (fs *FileSys) resolveSource(p string) (*source, error) {
	parent, name, ok, err := fs.resolveParent(p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, p)
	}
	inum, ok, err := fs.lookup(parent, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, p)
	}
	return &source{parent: parent, name: name, inum: inum}, nil
}

// destination decides where src lands for dst: inside dst when it is a
// directory, otherwise at dst itself. An existing file there is removed
// first. same is true when dst names src's own entry, in which case nothing
// should change. A relink within src's own directory frees the slot it
// takes, so it fits even when the directory is full.
func (fs *FileSys) destination(src *source, dst string, relink bool) (common.Inum, string, bool, error) {
	var parent common.Inum
	var name string
	dinum, ok, err := fs.resolve(dst)
	if err != nil {
		return 0, "", false, err
	}
	if ok && fs.inodes[dinum].IsDir {
		parent, name = dinum, src.name
	} else {
		parent, name, ok, err = fs.resolveParent(dst)
		if err != nil {
			return 0, "", false, err
		}
		if !ok {
			return 0, "", false, fmt.Errorf("%w: %s", ErrPathNotFound, dst)
		}
	}
	if !dir.ValidName(name) {
		return 0, "", false, fmt.Errorf("%w: %s", ErrPathNotFound, dst)
	}
	if parent == src.parent && name == src.name {
		return parent, name, true, nil
	}

	existing, found, err := fs.lookup(parent, name)
	if err != nil {
		return 0, "", false, err
	}
	if found {
		if fs.inodes[existing].IsDir || fs.inodes[src.inum].IsDir {
			return 0, "", false, fmt.Errorf("%w: %s", ErrExist, dst)
		}
		if err := fs.removeFile(parent, name, existing); err != nil {
			return 0, "", false, err
		}
	} else if !(relink && parent == src.parent) && fs.dirFull(parent) {
		return 0, "", false, fmt.Errorf("%w: %s", ErrDirFull, dst)
	}
	return parent, name, false, nil
}

// Cp copies file src to dst, giving the copy a new inode.
func (fs *FileSys) Cp(src string, dst string) error {
	if err := fs.mounted(); err != nil {
		return err
	}
	s, err := fs.resolveSource(src)
	if err != nil {
		return err
	}
	if fs.inodes[s.inum].IsDir {
		return fmt.Errorf("%w: %s", ErrFileNotFound, src)
	}
	parent, name, same, err := fs.destination(s, dst, false)
	if err != nil {
		return err
	}
	if same {
		return nil
	}

	inum, err := fs.allocInode()
	if err != nil {
		return err
	}
	ip := inode.MkInode(false, 1)
	fs.inodes[inum] = ip
	if err := fs.copyData(fs.inodes[s.inum], ip); err != nil {
		return err
	}
	if err := fs.addEntry(parent, inum, name); err != nil {
		return err
	}
	util.DPrintf(1, "Cp: %s -> %s inode %d\n", src, dst, inum)
	return fs.flush()
}

// Mv relinks src under dst, keeping its inode.
func (fs *FileSys) Mv(src string, dst string) error {
	if err := fs.mounted(); err != nil {
		return err
	}
	s, err := fs.resolveSource(src)
	if err != nil {
		return err
	}
	isDir := fs.inodes[s.inum].IsDir
	if isDir && (s.name == common.SelfName || s.name == common.ParentName) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, src)
	}
	if isDir {
		// check before destination() can delete anything
		if err := fs.checkMoveDir(s, dst); err != nil {
			return err
		}
	}
	parent, name, same, err := fs.destination(s, dst, true)
	if err != nil {
		return err
	}
	if same {
		return nil
	}

	if err := fs.removeEntry(s.parent, s.name); err != nil {
		return err
	}
	if err := fs.addEntry(parent, s.inum, name); err != nil {
		return err
	}
	if isDir {
		if parent != s.parent {
			if err := fs.setEntry(s.inum, common.ParentName, parent); err != nil {
				return err
			}
		}
		// the current directory may lie below the one that moved
		fs.path, err = fs.pathOf(fs.cwd)
		if err != nil {
			return err
		}
	}
	util.DPrintf(1, "Mv: %s -> %s inode %d\n", src, dst, s.inum)
	return fs.flush()
}

// checkMoveDir refuses to move directory s below itself.
func (fs *FileSys) checkMoveDir(s *source, dst string) error {
	target, ok, err := fs.resolve(dst)
	if err != nil {
		return err
	}
	if !ok || !fs.inodes[target].IsDir {
		var found bool
		target, _, found, err = fs.resolveParent(dst)
		if err != nil {
			return err
		}
		if !found {
			return nil
		}
	}
	inside, err := fs.isAncestor(s.inum, target)
	if err != nil {
		return err
	}
	if inside {
		return fmt.Errorf("%w: %s", ErrMoveIntoSelf, dst)
	}
	return nil
}

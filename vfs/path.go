package vfs

import (
	"strings"

	"github.com/mit-pdos/go-vfs/common"
)

// splitPath breaks p into its non-empty segments and reports whether it is
// absolute.
func splitPath(p string) ([]string, bool) {
	abs := strings.HasPrefix(p, common.PathDelim)
	var segs []string
	for _, s := range strings.Split(strings.TrimPrefix(p, common.PathDelim), common.PathDelim) {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs, abs
}

func (fs *FileSys) start(abs bool) common.Inum {
	if abs {
		return common.ROOTINUM
	}
	return fs.cwd
}

// walk follows segs from directory start. "." and ".." need no special
// treatment since every directory stores them as entries.
func (fs *FileSys) walk(start common.Inum, segs []string) (common.Inum, bool, error) {
	cur := start
	for _, name := range segs {
		if !fs.inodes[cur].IsDir {
			return 0, false, nil
		}
		next, ok, err := fs.lookup(cur, name)
		if err != nil || !ok {
			return 0, false, err
		}
		cur = next
	}
	return cur, true, nil
}

// resolve finds the inode named by p. The empty path is the current
// directory.
func (fs *FileSys) resolve(p string) (common.Inum, bool, error) {
	if p == "" {
		return fs.cwd, true, nil
	}
	segs, abs := splitPath(p)
	return fs.walk(fs.start(abs), segs)
}

// resolveParent finds the directory that holds (or would hold) the last
// segment of p, and returns it with that segment.
func (fs *FileSys) resolveParent(p string) (common.Inum, string, bool, error) {
	segs, abs := splitPath(p)
	if len(segs) == 0 {
		return 0, "", false, nil
	}
	last := len(segs) - 1
	parent, ok, err := fs.walk(fs.start(abs), segs[:last])
	if err != nil || !ok {
		return 0, "", false, err
	}
	if !fs.inodes[parent].IsDir {
		return 0, "", false, nil
	}
	return parent, segs[last], true, nil
}

// joinPath applies p to the absolute path base, collapsing "." and "..".
func joinPath(base string, p string) string {
	segs, abs := splitPath(p)
	var out []string
	if !abs {
		out, _ = splitPath(base)
	}
	for _, s := range segs {
		switch s {
		case common.SelfName:
		case common.ParentName:
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, s)
		}
	}
	return common.PathDelim + strings.Join(out, common.PathDelim)
}

// pathOf rebuilds the absolute path of directory dinum by following ".."
// entries up to the root.
func (fs *FileSys) pathOf(dinum common.Inum) (string, error) {
	var names []string
	cur := dinum
	for cur != common.ROOTINUM {
		parent, ok, err := fs.lookup(cur, common.ParentName)
		if err != nil {
			return "", err
		}
		if !ok {
			return common.PathDelim, nil
		}
		ents, err := fs.listEntries(parent)
		if err != nil {
			return "", err
		}
		for _, de := range ents {
			if de.Inum == cur && de.Name != common.SelfName && de.Name != common.ParentName {
				names = append([]string{de.Name}, names...)
				break
			}
		}
		cur = parent
	}
	return common.PathDelim + strings.Join(names, common.PathDelim), nil
}

// isAncestor reports whether directory a is d or one of d's ancestors.
func (fs *FileSys) isAncestor(a common.Inum, d common.Inum) (bool, error) {
	cur := d
	for {
		if cur == a {
			return true, nil
		}
		if cur == common.ROOTINUM {
			return false, nil
		}
		parent, ok, err := fs.lookup(cur, common.ParentName)
		if err != nil || !ok {
			return false, err
		}
		cur = parent
	}
}

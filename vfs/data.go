package vfs

import (
	"fmt"
	"io"

	"github.com/mit-pdos/go-vfs/addr"
	"github.com/mit-pdos/go-vfs/buf"
	"github.com/mit-pdos/go-vfs/common"
	"github.com/mit-pdos/go-vfs/inode"
	"github.com/mit-pdos/go-vfs/util"
)

// addDataChunk appends data, at most one cluster, to ip. Only the last chunk
// of a file may be short, so ip.Size must be a multiple of the cluster size.
//
// Indirect clusters are allocated lazily, when the first reference they hold
// is needed. Reference updates stay in rc until rc.flush.
func (fs *FileSys) addDataChunk(ip *inode.Inode, data []byte, rc *refCache) error {
	cs := fs.sb.ClusterSize
	if uint64(len(data)) > cs || ip.Size%cs != 0 {
		panic(fmt.Errorf("addDataChunk: %d bytes onto size %d", len(data), ip.Size))
	}
	n := ip.NChunks(cs)
	loc, ok := inode.Locate(n, fs.sb.RefsPerCluster())
	if !ok {
		return ErrFileTooBig
	}

	var c common.Cnum
	var err error
	switch loc.Level {
	case inode.DIRECT:
		c, err = fs.allocCluster()
		if err != nil {
			return err
		}
		ip.Direct[loc.Inner] = c
	case inode.INDIRECT1:
		if loc.Inner == 0 {
			ip.Indirect1, err = fs.allocCluster()
			if err != nil {
				return err
			}
			rc.fresh(ip.Indirect1)
		}
		c, err = fs.allocCluster()
		if err != nil {
			return err
		}
		err = rc.put(ip.Indirect1, loc.Inner, c)
	case inode.INDIRECT2:
		if loc.Outer == 0 && loc.Inner == 0 {
			ip.Indirect2, err = fs.allocCluster()
			if err != nil {
				return err
			}
			rc.fresh(ip.Indirect2)
		}
		var mid common.Cnum
		if loc.Inner == 0 {
			mid, err = fs.allocCluster()
			if err != nil {
				return err
			}
			rc.fresh(mid)
			err = rc.put(ip.Indirect2, loc.Outer, mid)
		} else {
			mid, err = rc.get(ip.Indirect2, loc.Outer)
		}
		if err != nil {
			return err
		}
		c, err = fs.allocCluster()
		if err != nil {
			return err
		}
		err = rc.put(mid, loc.Inner, c)
	}
	if err != nil {
		return err
	}
	util.DPrintf(5, "addDataChunk: chunk %d at %v in cluster %d\n", n, loc, c)

	err = fs.writeBlock(c, data)
	if err != nil {
		return err
	}
	ip.Size += uint64(len(data))
	return nil
}

// refCache holds the indirect clusters touched while walking or growing
// files, so each is read at most once and written back at most once.
type refCache struct {
	fs   *FileSys
	bufs map[common.Cnum]*buf.Buf
}

func (fs *FileSys) mkRefCache() *refCache {
	return &refCache{fs: fs, bufs: make(map[common.Cnum]*buf.Buf)}
}

func (rc *refCache) load(c common.Cnum) (*buf.Buf, error) {
	b, ok := rc.bufs[c]
	if ok {
		return b, nil
	}
	b, err := rc.fs.readBlock(c)
	if err != nil {
		return nil, err
	}
	rc.bufs[c] = b
	return b, nil
}

// fresh starts c, a newly allocated indirect cluster, with no references.
func (rc *refCache) fresh(c common.Cnum) {
	b := buf.MkBuf(addr.MkAddr(c, 0), make([]byte, rc.fs.sb.ClusterSize))
	b.SetDirty()
	rc.bufs[c] = b
}

func (rc *refCache) get(c common.Cnum, slot uint64) (common.Cnum, error) {
	b, err := rc.load(c)
	if err != nil {
		return 0, err
	}
	return b.RefGet(slot), nil
}

func (rc *refCache) put(c common.Cnum, slot uint64, v common.Cnum) error {
	b, err := rc.load(c)
	if err != nil {
		return err
	}
	b.RefPut(slot, v)
	return nil
}

// flush writes back the clusters changed by put or fresh.
func (rc *refCache) flush() error {
	for c, b := range rc.bufs {
		if !b.IsDirty() {
			continue
		}
		util.DPrintf(5, "flush: indirect cluster %d\n", c)
		if err := b.WriteDirect(rc.fs.data); err != nil {
			return err
		}
	}
	return nil
}

func (rc *refCache) chunk(ip *inode.Inode, n uint64) (common.Cnum, error) {
	loc, ok := inode.Locate(n, rc.fs.sb.RefsPerCluster())
	if !ok {
		panic("chunk")
	}
	switch loc.Level {
	case inode.DIRECT:
		return ip.Direct[loc.Inner], nil
	case inode.INDIRECT1:
		return rc.get(ip.Indirect1, loc.Inner)
	default:
		mid, err := rc.get(ip.Indirect2, loc.Outer)
		if err != nil {
			return 0, err
		}
		return rc.get(mid, loc.Inner)
	}
}

// dataClusters lists the clusters holding ip's data, in file order.
func (fs *FileSys) dataClusters(ip *inode.Inode) ([]common.Cnum, error) {
	n := ip.NChunks(fs.sb.ClusterSize)
	rc := fs.mkRefCache()
	cs := make([]common.Cnum, 0, n)
	for i := uint64(0); i < n; i++ {
		c, err := rc.chunk(ip, i)
		if err != nil {
			return nil, err
		}
		cs = append(cs, c)
	}
	return cs, nil
}

// structClusters lists the indirect clusters of ip: Indirect1, then
// Indirect2 followed by the second-level clusters it references.
func (fs *FileSys) structClusters(ip *inode.Inode) ([]common.Cnum, error) {
	n := ip.NChunks(fs.sb.ClusterSize)
	p := fs.sb.RefsPerCluster()
	var cs []common.Cnum
	if n <= common.NDIRECT {
		return cs, nil
	}
	cs = append(cs, ip.Indirect1)
	if n <= common.NDIRECT+p {
		return cs, nil
	}
	cs = append(cs, ip.Indirect2)
	ind2, err := fs.readBlock(ip.Indirect2)
	if err != nil {
		return nil, err
	}
	nmid := util.RoundUp(n-common.NDIRECT-p, p)
	for i := uint64(0); i < nmid; i++ {
		cs = append(cs, ind2.RefGet(i))
	}
	return cs, nil
}

// freeData releases every cluster of ip and truncates it to zero.
func (fs *FileSys) freeData(ip *inode.Inode) error {
	data, err := fs.dataClusters(ip)
	if err != nil {
		return err
	}
	meta, err := fs.structClusters(ip)
	if err != nil {
		return err
	}
	for _, c := range append(data, meta...) {
		fs.freeCluster(c)
	}
	*ip = inode.Inode{IsDir: ip.IsDir, Refs: ip.Refs}
	return nil
}

// writeData streams the contents of ip to w.
func (fs *FileSys) writeData(ip *inode.Inode, w io.Writer) error {
	cs, err := fs.dataClusters(ip)
	if err != nil {
		return err
	}
	left := ip.Size
	for _, c := range cs {
		b, err := fs.readBlock(c)
		if err != nil {
			return err
		}
		n := util.Min(left, fs.sb.ClusterSize)
		if _, err := w.Write(b.Data[:n]); err != nil {
			return err
		}
		left -= n
	}
	return nil
}

// readData appends the contents of r to ip, one cluster at a time.
func (fs *FileSys) readData(ip *inode.Inode, r io.Reader) error {
	rc := fs.mkRefCache()
	err := fs.appendFrom(ip, r, rc)
	if ferr := rc.flush(); err == nil {
		err = ferr
	}
	return err
}

func (fs *FileSys) appendFrom(ip *inode.Inode, r io.Reader, rc *refCache) error {
	chunk := make([]byte, fs.sb.ClusterSize)
	for {
		n, err := io.ReadFull(r, chunk)
		if n > 0 {
			if err := fs.addDataChunk(ip, chunk[:n], rc); err != nil {
				return err
			}
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// copyData appends the contents of src to dst.
func (fs *FileSys) copyData(src *inode.Inode, dst *inode.Inode) error {
	rc := fs.mkRefCache()
	err := fs.appendCopy(src, dst, rc)
	if ferr := rc.flush(); err == nil {
		err = ferr
	}
	return err
}

func (fs *FileSys) appendCopy(src *inode.Inode, dst *inode.Inode, rc *refCache) error {
	left := src.Size
	for i := uint64(0); i < src.NChunks(fs.sb.ClusterSize); i++ {
		c, err := rc.chunk(src, i)
		if err != nil {
			return err
		}
		b, err := fs.readBlock(c)
		if err != nil {
			return err
		}
		n := util.Min(left, fs.sb.ClusterSize)
		if err := fs.addDataChunk(dst, b.Data[:n], rc); err != nil {
			return err
		}
		left -= n
	}
	return nil
}

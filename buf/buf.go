// buf manages clusters of the data region and the sub-cluster objects packed
// into them (cluster references, directory entries).
package buf

import (
	"github.com/tchajed/goose/machine"

	"github.com/mit-pdos/go-vfs/addr"
	"github.com/mit-pdos/go-vfs/common"
	"github.com/mit-pdos/go-vfs/util"
)

// A Buf is an in-memory copy of (part of) a cluster
type Buf struct {
	Addr  addr.Addr
	Data  []byte
	dirty bool // has this buf been written to?
}

func MkBuf(addr addr.Addr, data []byte) *Buf {
	b := &Buf{
		Addr:  addr,
		Data:  data,
		dirty: false,
	}
	return b
}

// Install the bytes of buf into blk, a whole cluster.
func (buf *Buf) Install(blk []byte) {
	util.DPrintf(20, "%v: install\n", buf.Addr)
	copy(blk[buf.Addr.Off:], buf.Data)
}

func (buf *Buf) IsDirty() bool {
	return buf.dirty
}

func (buf *Buf) SetDirty() {
	buf.dirty = true
}

// WriteDirect stores buf in r immediately. A buf smaller than a cluster is
// installed into the cluster's current contents.
func (buf *Buf) WriteDirect(r *Region) error {
	buf.SetDirty()
	if buf.Addr.Off == 0 && uint64(len(buf.Data)) == r.ClusterSize {
		if err := r.Write(buf.Addr, buf.Data); err != nil {
			return err
		}
	} else {
		a := addr.MkAddr(buf.Addr.Cnum, 0)
		blk, err := r.Read(a, r.ClusterSize)
		if err != nil {
			return err
		}
		buf.Install(blk)
		if err := r.Write(a, blk); err != nil {
			return err
		}
	}
	buf.dirty = false
	return nil
}

// RefGet returns reference slot n of an indirect cluster.
func (buf *Buf) RefGet(n uint64) common.Cnum {
	off := n * common.REFSZ
	return common.Cnum(machine.UInt32Get(buf.Data[off : off+common.REFSZ]))
}

// RefPut sets reference slot n of an indirect cluster.
func (buf *Buf) RefPut(n uint64, v common.Cnum) {
	off := n * common.REFSZ
	machine.UInt32Put(buf.Data[off:off+common.REFSZ], uint32(v))
	buf.SetDirty()
}

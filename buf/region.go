package buf

import (
	"fmt"

	"github.com/mit-pdos/go-vfs/addr"
	"github.com/mit-pdos/go-vfs/common"
	"github.com/mit-pdos/go-vfs/disk"
)

// Region is the data region of a container: ClusterCount clusters of
// ClusterSize bytes, starting at byte Start of the disk.
type Region struct {
	d            disk.Disk
	Start        uint64
	ClusterSize  uint64
	ClusterCount uint64
}

func MkRegion(d disk.Disk, start uint64, clusterSize uint64, clusterCount uint64) *Region {
	return &Region{
		d:            d,
		Start:        start,
		ClusterSize:  clusterSize,
		ClusterCount: clusterCount,
	}
}

func (r *Region) off(a addr.Addr, n uint64) uint64 {
	if uint64(a.Cnum) >= r.ClusterCount || a.Off+n > r.ClusterSize {
		panic(fmt.Errorf("region: %v+%d outside of %d clusters", a, n, r.ClusterCount))
	}
	return r.Start + a.Flatid(r.ClusterSize)
}

// Read returns n bytes at a.
func (r *Region) Read(a addr.Addr, n uint64) ([]byte, error) {
	b := make([]byte, n)
	err := r.d.ReadAt(b, r.off(a, n))
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *Region) Write(a addr.Addr, v []byte) error {
	return r.d.WriteAt(v, r.off(a, uint64(len(v))))
}

// ReadBuf loads a whole cluster.
func (r *Region) ReadBuf(cnum common.Cnum) (*Buf, error) {
	a := addr.MkAddr(cnum, 0)
	data, err := r.Read(a, r.ClusterSize)
	if err != nil {
		return nil, err
	}
	return MkBuf(a, data), nil
}

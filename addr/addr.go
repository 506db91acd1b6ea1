package addr

import (
	"github.com/mit-pdos/go-vfs/common"
)

// Addr identifies a location in the data region.
//
// Cnum is the cluster containing the object, and Off is the location of the
// object within the cluster (expressed as a byte offset). The size of the
// object is determined by the context in which Addr is used.
type Addr struct {
	Cnum common.Cnum
	Off  uint64 // offset in bytes
}

// Flatid is the byte offset of a relative to the start of the data region.
func (a Addr) Flatid(clusterSize uint64) uint64 {
	return uint64(a.Cnum)*clusterSize + a.Off
}

func MkAddr(cnum common.Cnum, off uint64) Addr {
	return Addr{Cnum: cnum, Off: off}
}

// MkDirentAddr addresses directory entry n in a directory's cluster.
func MkDirentAddr(cnum common.Cnum, n uint64) Addr {
	return MkAddr(cnum, n*common.DIRENTSZ)
}

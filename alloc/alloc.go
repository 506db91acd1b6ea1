package alloc

import (
	"errors"

	"github.com/mit-pdos/go-vfs/common"
	"github.com/mit-pdos/go-vfs/util"
)

var ErrFull = errors.New("no free slot")

// Alloc uses a byte map to allocate and free numbers. Byte n is FULL when
// number n is in use and EMPTY otherwise.
type Alloc struct {
	bitmap []byte
}

// MkAlloc takes ownership of bitmap, as loaded from disk.
func MkAlloc(bitmap []byte) *Alloc {
	return &Alloc{bitmap: bitmap}
}

// MkMaxAlloc returns an allocator for [0, max) with everything free.
func MkMaxAlloc(max uint64) *Alloc {
	return MkAlloc(make([]byte, max))
}

func (a *Alloc) Len() uint64 {
	return uint64(len(a.bitmap))
}

// AllocNum marks the lowest free number used and returns it.
func (a *Alloc) AllocNum() (uint64, error) {
	for num, b := range a.bitmap {
		if b == common.EMPTY {
			a.bitmap[num] = common.FULL
			util.DPrintf(3, "AllocNum: %d\n", num)
			return uint64(num), nil
		}
	}
	return 0, ErrFull
}

func (a *Alloc) FreeNum(num uint64) {
	if num >= a.Len() {
		panic("FreeNum")
	}
	util.DPrintf(3, "FreeNum: %d\n", num)
	a.bitmap[num] = common.EMPTY
}

func (a *Alloc) MarkUsed(num uint64) {
	if num >= a.Len() {
		panic("MarkUsed")
	}
	a.bitmap[num] = common.FULL
}

func (a *Alloc) IsUsed(num uint64) bool {
	return num < a.Len() && a.bitmap[num] != common.EMPTY
}

func (a *Alloc) NumFree() uint64 {
	var n uint64
	for _, b := range a.bitmap {
		if b == common.EMPTY {
			n++
		}
	}
	return n
}

// Bytes is a snapshot of the map in its on-disk form.
func (a *Alloc) Bytes() []byte {
	return util.CloneByteSlice(a.bitmap)
}

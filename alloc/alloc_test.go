package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mit-pdos/go-vfs/common"
)

func TestAlloc(t *testing.T) {
	assert := assert.New(t)
	max := uint64(32)
	a := MkMaxAlloc(max)

	assert.Equal(max, a.NumFree(), "everything should be initially free")

	n, err := a.AllocNum()
	assert.NoError(err)
	assert.Equal(uint64(0), n, "should allocate the lowest number")

	a.MarkUsed(n + 1)
	n2, err := a.AllocNum()
	assert.NoError(err)
	assert.Equal(uint64(2), n2, "should not allocate something marked used")

	assert.Equal(max-3, a.NumFree(), "should have used 3 items")

	a.FreeNum(n)
	assert.False(a.IsUsed(n))
	n3, _ := a.AllocNum()
	assert.Equal(n, n3, "freed number is reused first")

	a.FreeNum(n2)
	a.FreeNum(n3)
	assert.Equal(max-1, a.NumFree(), "should have freed")
}

func TestAllocFull(t *testing.T) {
	a := MkMaxAlloc(2)
	_, err := a.AllocNum()
	assert.NoError(t, err)
	_, err = a.AllocNum()
	assert.NoError(t, err)
	_, err = a.AllocNum()
	assert.Equal(t, ErrFull, err)
	assert.Equal(t, uint64(0), a.NumFree())
}

func TestBytes(t *testing.T) {
	bm := []byte{common.FULL, common.EMPTY, common.EMPTY}
	a := MkAlloc(bm)
	n, err := a.AllocNum()
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), n)
	snap := a.Bytes()
	assert.Equal(t, []byte{common.FULL, common.FULL, common.EMPTY}, snap)
	a.FreeNum(0)
	assert.Equal(t, common.FULL, snap[0], "snapshot does not follow later frees")
	assert.Panics(t, func() { a.FreeNum(3) })
}

package inode

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mit-pdos/go-vfs/common"
)

func TestEncode(t *testing.T) {
	assert := assert.New(t)
	ip := &Inode{
		IsDir:     true,
		Refs:      2,
		Size:      70000,
		Direct:    [common.NDIRECT]common.Cnum{1, 2, 3, 4, 5},
		Indirect1: 6,
		Indirect2: 7,
	}
	b := ip.Encode()
	assert.Equal(int(common.INODESZ), len(b))
	assert.Equal([]byte{1, 0, 0, 0}, b[0:4], "flag byte then padding")
	assert.Equal([]byte{2, 0, 0, 0}, b[4:8])
	assert.Equal([]byte{7, 0, 0, 0}, b[36:40], "indirect2 is the last word")
	assert.Equal(ip, Decode(b))

	b[1] = 0xcc
	assert.True(Decode(b).IsDir, "padding after the flag is ignored")
}

func TestNChunks(t *testing.T) {
	assert := assert.New(t)
	ip := MkInode(false, 1)
	assert.Equal(uint64(0), ip.NChunks(128))
	ip.Size = 1
	assert.Equal(uint64(1), ip.NChunks(128))
	ip.Size = 128
	assert.Equal(uint64(1), ip.NChunks(128))
	ip.Size = 129
	assert.Equal(uint64(2), ip.NChunks(128))
}

func TestLocate(t *testing.T) {
	assert := assert.New(t)
	const p = 32

	for n := uint64(0); n < 5; n++ {
		loc, ok := Locate(n, p)
		assert.True(ok)
		assert.Equal(Loc{Level: DIRECT, Inner: n}, loc)
	}

	loc, _ := Locate(5, p)
	assert.Equal(Loc{Level: INDIRECT1, Inner: 0}, loc, "first indirect chunk")
	loc, _ = Locate(5+p-1, p)
	assert.Equal(Loc{Level: INDIRECT1, Inner: p - 1}, loc, "last indirect1 chunk")

	loc, _ = Locate(5+p, p)
	assert.Equal(Loc{Level: INDIRECT2, Outer: 0, Inner: 0}, loc, "first indirect2 chunk")
	loc, _ = Locate(5+p+1, p)
	assert.Equal(Loc{Level: INDIRECT2, Outer: 0, Inner: 1}, loc)
	loc, _ = Locate(5+2*p, p)
	assert.Equal(Loc{Level: INDIRECT2, Outer: 1, Inner: 0}, loc, "second level rolls over")

	loc, ok := Locate(MaxChunks(p)-1, p)
	assert.True(ok)
	assert.Equal(Loc{Level: INDIRECT2, Outer: p - 1, Inner: p - 1}, loc)
	_, ok = Locate(MaxChunks(p), p)
	assert.False(ok, "beyond the addressing scheme")
}

package buf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/go-vfs/addr"
	"github.com/mit-pdos/go-vfs/common"
	"github.com/mit-pdos/go-vfs/disk"
)

func mkRegion() *Region {
	d := disk.NewMemDisk(100 + 4*64)
	return MkRegion(d, 100, 64, 4)
}

func TestRefs(t *testing.T) {
	assert := assert.New(t)
	b := MkBuf(addr.MkAddr(1, 0), make([]byte, 64))
	assert.False(b.IsDirty())

	b.RefPut(0, 7)
	b.RefPut(15, 0x01020304)
	assert.True(b.IsDirty())
	assert.Equal(common.Cnum(7), b.RefGet(0))
	assert.Equal(common.Cnum(0x01020304), b.RefGet(15))
	assert.Equal([]byte{4, 3, 2, 1}, b.Data[60:64], "refs are little-endian")
}

func TestInstall(t *testing.T) {
	blk := make([]byte, 8)
	b := MkBuf(addr.MkAddr(0, 4), []byte{1, 2})
	b.Install(blk)
	assert.Equal(t, []byte{0, 0, 0, 0, 1, 2, 0, 0}, blk)
}

func TestRegion(t *testing.T) {
	assert := assert.New(t)
	r := mkRegion()

	b, err := r.ReadBuf(2)
	require.NoError(t, err)
	assert.Equal(uint64(64), uint64(len(b.Data)))
	assert.False(b.IsDirty(), "a loaded buf starts clean")

	b.RefPut(3, 42)
	require.NoError(t, b.WriteDirect(r))
	assert.False(b.IsDirty())

	b2, err := r.ReadBuf(2)
	require.NoError(t, err)
	assert.Equal(common.Cnum(42), b2.RefGet(3))

	assert.Panics(func() { r.ReadBuf(4) }, "cluster out of range")
	assert.Panics(func() { r.Read(addr.MkAddr(0, 60), 8) }, "read crosses cluster")
}

func TestWriteDirectPartial(t *testing.T) {
	assert := assert.New(t)
	r := mkRegion()
	full := MkBuf(addr.MkAddr(1, 0), make([]byte, 64))
	for i := range full.Data {
		full.Data[i] = 0xee
	}
	require.NoError(t, full.WriteDirect(r))

	part := MkBuf(addr.MkAddr(1, 16), []byte{1, 2, 3})
	require.NoError(t, part.WriteDirect(r))
	assert.False(part.IsDirty())

	b, err := r.ReadBuf(1)
	require.NoError(t, err)
	assert.Equal([]byte{0xee, 1, 2, 3, 0xee}, b.Data[15:20], "rest of the cluster is kept")
	assert.Equal(byte(0xee), b.Data[0])
	assert.Equal(byte(0xee), b.Data[63])
}

func TestRegionOffset(t *testing.T) {
	r := mkRegion()
	require.NoError(t, r.Write(addr.MkAddr(1, 2), []byte{0xab}))
	raw := make([]byte, 1)
	require.NoError(t, r.d.ReadAt(raw, 100+64+2))
	assert.Equal(t, byte(0xab), raw[0])
}

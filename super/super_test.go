package super

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/go-vfs/common"
)

func TestParseSize(t *testing.T) {
	assert := assert.New(t)
	for _, tc := range []struct {
		in  string
		out uint64
	}{
		{"600", 600},
		{"600B", 600},
		{"10K", 10000},
		{"10KB", 10000},
		{"10kB", 10000},
		{"20M", 20000000},
		{"20MB", 20000000},
		{"1G", 1000000000},
		{"2GB", 2000000000},
	} {
		n, err := ParseSize(tc.in)
		assert.NoError(err, tc.in)
		assert.Equal(tc.out, n, tc.in)
	}

	for _, bad := range []string{"", "MB", "ten", "-5", "10TB", "99999999999999999999G"} {
		_, err := ParseSize(bad)
		assert.Error(err, bad)
	}
}

func TestLayout(t *testing.T) {
	assert := assert.New(t)
	sb, err := MkSuper(20000000, common.ClusterSize)
	require.NoError(t, err)

	assert.Equal(uint64(20000), sb.InodeCount)
	assert.Equal(uint64((20000000-32-20000*41)/(8192+1)), sb.ClusterCount)
	assert.Equal(uint64(32), sb.InodeBitmapStart)
	assert.Equal(sb.InodeBitmapStart+sb.InodeCount, sb.DataBitmapStart)
	assert.Equal(sb.DataBitmapStart+sb.ClusterCount, sb.InodeStart)
	assert.Equal(sb.InodeStart+40*sb.InodeCount, sb.DataStart)
	assert.True(sb.DataEnd() <= sb.DiskSize)
	assert.Equal(uint64(2048), sb.RefsPerCluster())
	assert.Equal(uint64(512), sb.DirentsPerCluster())
	assert.Equal(sb.InodeStart+3*40, sb.InodeAddr(3))
	assert.NoError(sb.Validate(20000000))
}

func TestLayoutLimits(t *testing.T) {
	_, err := MkSuper(100, common.ClusterSize)
	assert.ErrorIs(t, err, ErrTooSmall)

	_, err = MkSuper(5000, common.ClusterSize)
	assert.ErrorIs(t, err, ErrTooSmall, "room for metadata but not one cluster")

	_, err = MkSuper(3000000000, common.ClusterSize)
	assert.ErrorIs(t, err, ErrTooBig)
}

func TestEncodeDecode(t *testing.T) {
	sb, err := MkSuper(1000000, 128)
	require.NoError(t, err)
	b := sb.Encode()
	assert.Equal(t, int(common.SUPERSZ), len(b))
	assert.Equal(t, []byte{0x40, 0x42, 0x0f, 0x00}, b[0:4], "little-endian disk size")
	assert.Equal(t, sb, Decode(b))
}

func TestValidate(t *testing.T) {
	sb, err := MkSuper(1000000, 128)
	require.NoError(t, err)
	assert.ErrorIs(t, sb.Validate(999999), ErrCorrupt, "container shorter than recorded")

	bad := *sb
	bad.DataStart++
	assert.ErrorIs(t, bad.Validate(1000000), ErrCorrupt)

	assert.ErrorIs(t, Decode(make([]byte, common.SUPERSZ)).Validate(1000000), ErrCorrupt)
}

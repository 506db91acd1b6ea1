package disk

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReadWrite(t *testing.T, d Disk) {
	assert := assert.New(t)

	sz, err := d.Size()
	require.NoError(t, err)
	assert.Equal(uint64(1024), sz)

	b := make([]byte, 4)
	assert.NoError(d.ReadAt(b, 100))
	assert.Equal([]byte{0, 0, 0, 0}, b, "new disk should be zeroed")

	assert.NoError(d.WriteAt([]byte("test"), 100))
	assert.NoError(d.WriteAt([]byte("end"), 1021))
	assert.NoError(d.Barrier())

	assert.NoError(d.ReadAt(b, 100))
	assert.Equal([]byte("test"), b)

	b3 := make([]byte, 3)
	assert.NoError(d.ReadAt(b3, 1021))
	assert.Equal([]byte("end"), b3)

	assert.Panics(func() { d.ReadAt(b, 1022) }, "read past the end")
	assert.Panics(func() { d.WriteAt(b, 1021) }, "write past the end")
	assert.Panics(func() { d.ReadAt(b, 1<<64-2) }, "offset wraps around")
}

func TestMemDisk(t *testing.T) {
	d := NewMemDisk(1024)
	testReadWrite(t, d)
	assert.NoError(t, d.Close())
}

func TestFileDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	d, err := CreateFileDisk(path, 1024)
	require.NoError(t, err)
	testReadWrite(t, d)
	require.NoError(t, d.Close())

	d, err = OpenFileDisk(path)
	require.NoError(t, err)
	defer d.Close()
	sz, err := d.Size()
	require.NoError(t, err)
	assert.Equal(t, uint64(1024), sz)

	b := make([]byte, 4)
	require.NoError(t, d.ReadAt(b, 100))
	assert.Equal(t, []byte("test"), b, "data should survive reopen")
}

func TestCreateTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disk.img")
	d, err := CreateFileDisk(path, 64)
	require.NoError(t, err)
	require.NoError(t, d.WriteAt([]byte{0xff}, 10))
	require.NoError(t, d.Close())

	d, err = CreateFileDisk(path, 32)
	require.NoError(t, err)
	defer d.Close()
	b := make([]byte, 1)
	require.NoError(t, d.ReadAt(b, 10))
	assert.Equal(t, byte(0), b[0], "create should zero the old contents")
}

func TestOpenMissing(t *testing.T) {
	_, err := OpenFileDisk(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

package disk

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/mit-pdos/go-vfs/util"
)

var _ Disk = (*fileDisk)(nil)

type fileDisk struct {
	fd   int
	size uint64
}

// OpenFileDisk opens an existing container file without changing its size.
func OpenFileDisk(path string) (*fileDisk, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0666)
	if err != nil {
		return nil, err
	}
	var stat unix.Stat_t
	err = unix.Fstat(fd, &stat)
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	return &fileDisk{fd, uint64(stat.Size)}, nil
}

// CreateFileDisk creates (or truncates) the container at path and fills it
// with size zero bytes.
func CreateFileDisk(path string, size uint64) (*fileDisk, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT|unix.O_TRUNC, 0666)
	if err != nil {
		return nil, err
	}
	err = unix.Ftruncate(fd, int64(size))
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	util.DPrintf(1, "CreateFileDisk: %s %d bytes\n", path, size)
	return &fileDisk{fd, size}, nil
}

func (d *fileDisk) ReadAt(b []byte, off uint64) error {
	if util.SumOverflows(off, uint64(len(b))) || off+uint64(len(b)) > d.size {
		panic(fmt.Errorf("out-of-bounds read at %v", off))
	}
	n, err := unix.Pread(d.fd, b, int64(off))
	if err != nil {
		return err
	}
	if n != len(b) {
		return fmt.Errorf("short read at %v: %d of %d bytes", off, n, len(b))
	}
	util.DPrintf(5, "read: %v+%v\n", off, len(b))
	return nil
}

func (d *fileDisk) WriteAt(v []byte, off uint64) error {
	if util.SumOverflows(off, uint64(len(v))) || off+uint64(len(v)) > d.size {
		panic(fmt.Errorf("out-of-bounds write at %v", off))
	}
	n, err := unix.Pwrite(d.fd, v, int64(off))
	if err != nil {
		return err
	}
	if n != len(v) {
		return fmt.Errorf("short write at %v: %d of %d bytes", off, n, len(v))
	}
	util.DPrintf(5, "write: %v+%v\n", off, len(v))
	return nil
}

func (d *fileDisk) Size() (uint64, error) {
	return d.size, nil
}

func (d *fileDisk) Barrier() error {
	// NOTE: on macOS, this flushes to the drive but doesn't actually issue a
	// disk barrier; see https://golang.org/src/internal/poll/fd_fsync_darwin.go
	// for more details. The correct replacement is to issue a fcntl syscall with
	// cmd F_FULLFSYNC.
	return unix.Fsync(d.fd)
}

func (d *fileDisk) Close() error {
	return unix.Close(d.fd)
}

/////////////////////////
/////////////////////////

var _ Disk = (*memDisk)(nil)

// memDisk is not safe for concurrent use.
type memDisk struct {
	data []byte
}

func NewMemDisk(size uint64) *memDisk {
	return &memDisk{data: make([]byte, size)}
}

func (d *memDisk) ReadAt(b []byte, off uint64) error {
	if util.SumOverflows(off, uint64(len(b))) || off+uint64(len(b)) > uint64(len(d.data)) {
		panic(fmt.Errorf("out-of-bounds read at %v", off))
	}
	copy(b, d.data[off:])
	return nil
}

func (d *memDisk) WriteAt(v []byte, off uint64) error {
	if util.SumOverflows(off, uint64(len(v))) || off+uint64(len(v)) > uint64(len(d.data)) {
		panic(fmt.Errorf("out-of-bounds write at %v", off))
	}
	copy(d.data[off:], v)
	return nil
}

func (d *memDisk) Size() (uint64, error) {
	return uint64(len(d.data)), nil
}

func (d *memDisk) Barrier() error { return nil }

func (d *memDisk) Close() error { return nil }

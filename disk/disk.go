package disk

// Disk provides byte-addressed access to a container.
type Disk interface {
	// ReadAt fills b with the bytes starting at off.
	//
	// Expects off+len(b) <= Size().
	ReadAt(b []byte, off uint64) error

	// WriteAt stores v starting at off.
	//
	// Expects off+len(v) <= Size().
	WriteAt(v []byte, off uint64) error

	// Size reports how big the container is, in bytes
	Size() (uint64, error)

	// Barrier ensures data is persisted.
	//
	// When it returns, all outstanding writes are guaranteed to be durably on
	// disk
	Barrier() error

	// Close releases any resources used by the disk and makes it unusable.
	Close() error
}

package common

// Inum is an index into the inode table.
type Inum uint32

// Cnum is the index of a cluster in the data region.
type Cnum uint32

const (
	ROOTINUM Inum = 0

	// default cluster size [B]
	ClusterSize uint64 = 8192

	// inode count is the container size times InodeRatio
	InodeRatio float64 = 0.001

	NDIRECT uint64 = 5  // direct references per inode
	NAMELEN uint64 = 12 // name buffer, terminator included
	MAXNAME uint64 = NAMELEN - 1

	REFSZ    uint64 = 4 // on-disk cluster reference
	SUPERSZ  uint64 = 8 * REFSZ
	INODESZ  uint64 = 10 * REFSZ
	DIRENTSZ uint64 = REFSZ + NAMELEN
)

// Bitmap slot values; one byte per inode or cluster.
const (
	EMPTY byte = 0
	FULL  byte = 1
)

const (
	SelfName   = "."
	ParentName = ".."
	PathDelim  = "/"
)

package vfs

import "errors"

// Recoverable outcomes; the text of each is the token reported to the user.
var (
	ErrPathNotFound = errors.New("PATH NOT FOUND")
	ErrFileNotFound = errors.New("FILE NOT FOUND")
	ErrExist        = errors.New("EXIST")
	ErrNotEmpty     = errors.New("NOT EMPTY")
	ErrCannotCreate = errors.New("CANNOT CREATE FILE")
	ErrNotFormatted = errors.New("The file system is not formatted")
	ErrDirFull      = errors.New("DIRECTORY FULL")
	ErrMoveIntoSelf = errors.New("CANNOT MOVE DIRECTORY INTO ITSELF")
)

// Resource exhaustion. These leave the container in whatever state the
// failed command reached and the caller is expected to stop.
var (
	ErrNoFreeInodes   = errors.New("No more free inodes!")
	ErrNoFreeClusters = errors.New("No more free data clusters!")
	ErrFileTooBig     = errors.New("File is too big!")
)

// IsFatal reports whether err is a resource-exhaustion error.
func IsFatal(err error) bool {
	return errors.Is(err, ErrNoFreeInodes) ||
		errors.Is(err, ErrNoFreeClusters) ||
		errors.Is(err, ErrFileTooBig)
}

//go:build unix

package platform

import (
	"errors"
	"os"
	"syscall"
)

// OpenNoFollow opens name under root for reading without following a final
// symlink. It returns ErrSymlink when name is a symbolic link.
func OpenNoFollow(root *os.Root, name string) (*os.File, error) {
	f, err := root.OpenFile(name, os.O_RDONLY|syscall.O_NOFOLLOW, 0)
	if errors.Is(err, syscall.ELOOP) {
		return nil, ErrSymlink
	}
	return f, err
}

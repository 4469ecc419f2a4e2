//go:build !unix

package platform

import (
	"io/fs"
	"os"
)

// OpenNoFollow opens name under root for reading, refusing symbolic links.
// The Lstat check races with concurrent renames; callers only read save
// folders they do not expect to change underneath them.
func OpenNoFollow(root *os.Root, name string) (*os.File, error) {
	info, err := root.Lstat(name)
	if err != nil {
		return nil, err
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		return nil, ErrSymlink
	}
	return root.Open(name)
}

// Package platform wraps the OS-specific parts of reading a save folder.
package platform

import "errors"

// ErrSymlink is returned when a path names a symbolic link.
var ErrSymlink = errors.New("symbolic link")

package domain

import (
	"path"
	"time"
)

// RemoteFile describes one file on the device as reported by a single listing.
type RemoteFile struct {
	AbsolutePath string
	RelativePath string
	Root         string
	Size         uint64
	ModifiedAt   time.Time
	IsDir        bool
}

func NewRemoteFile(root, absolutePath string, size uint64, modifiedAt time.Time) RemoteFile {
	return RemoteFile{
		AbsolutePath: absolutePath,
		RelativePath: RelativeTo(root, absolutePath),
		Root:         root,
		Size:         size,
		ModifiedAt:   modifiedAt,
	}
}

// RelativeTo returns the device path of p below root, always '/'-separated.
// A root that is itself the file yields the file's base name.
func RelativeTo(root, p string) string {
	root = path.Clean(root)
	p = path.Clean(p)
	if p == root {
		return path.Base(p)
	}
	prefix := root
	if prefix != "/" {
		prefix += "/"
	}
	if len(p) > len(prefix) && p[:len(prefix)] == prefix {
		return p[len(prefix):]
	}
	return path.Base(p)
}

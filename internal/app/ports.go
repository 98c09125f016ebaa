package app

import (
	"context"
	"io/fs"
	"time"

	"adbpull/internal/domain"
)

// Transport is the single channel to the device.
type Transport interface {
	List(ctx context.Context, root string) ([]domain.RemoteFile, error)
	Pull(ctx context.Context, remotePath, localPath string, preserve bool) error
}

type FileSystem interface {
	WalkDir(root string, fn fs.WalkDirFunc) error
	Stat(path string) (fs.FileInfo, error)
	Exists(path string) (bool, error)
	MkdirAll(path string, perm fs.FileMode) error
	Chtimes(path string, atime, mtime time.Time) error
}

// Observer receives engine events as they happen. Implementations must not block for long.
type Observer interface {
	RootPlanned(plan domain.RootPlan)
	RootFailed(failure domain.RootFailure)
	Transferred(current, total int, result domain.TransferResult)
}

type nopObserver struct{}

func (nopObserver) RootPlanned(domain.RootPlan)                 {}
func (nopObserver) RootFailed(domain.RootFailure)               {}
func (nopObserver) Transferred(int, int, domain.TransferResult) {}

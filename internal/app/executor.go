package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"adbpull/internal/domain"
	appErrors "adbpull/internal/errors"
	"adbpull/internal/logging"
)

type Executor struct {
	Transport        Transport
	FS               FileSystem
	Logger           logging.Logger
	Observer         Observer
	PreserveMetadata bool
}

// Execute pulls every Copy decision one at a time. A failing file is recorded
// and the loop moves on; only context cancellation stops it, and only between files.
func (e *Executor) Execute(ctx context.Context, decisions []domain.CopyDecision) ([]domain.TransferResult, error) {
	if e.Transport == nil || e.FS == nil {
		return nil, errors.New("executor requires Transport and FS")
	}
	observer := e.Observer
	if observer == nil {
		observer = nopObserver{}
	}

	var toCopy []domain.CopyDecision
	for _, d := range decisions {
		if d.Action == domain.ActionCopy {
			toCopy = append(toCopy, d)
		}
	}

	stop := e.Logger.Measure(fmt.Sprintf("Copying %d files", len(toCopy)))
	defer stop()

	results := make([]domain.TransferResult, 0, len(toCopy))
	for i, item := range toCopy {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		result := e.transfer(ctx, item)
		results = append(results, result)
		observer.Transferred(i+1, len(toCopy), result)
	}
	return results, nil
}

func (e *Executor) transfer(ctx context.Context, item domain.CopyDecision) domain.TransferResult {
	result := domain.TransferResult{
		File:       item.File,
		TargetPath: item.TargetPath,
		Status:     domain.StatusSuccess,
	}
	fail := func(op string, err error) domain.TransferResult {
		result.Status = domain.StatusFailed
		result.Reason = appErrors.Wrap(appErrors.TransferFailed, op, item.File.AbsolutePath, err)
		e.Logger.Warnw("transfer failed", "path", item.File.AbsolutePath, "op", op, "error", err)
		return result
	}

	if err := e.FS.MkdirAll(filepath.Dir(item.TargetPath), 0o755); err != nil {
		return fail("mkdir", err)
	}
	if err := e.Transport.Pull(ctx, item.File.AbsolutePath, item.TargetPath, e.PreserveMetadata); err != nil {
		return fail("pull", err)
	}
	exists, err := e.FS.Exists(item.TargetPath)
	if err != nil {
		return fail("verify", err)
	}
	if !exists {
		return fail("verify", fmt.Errorf("%s missing after pull", item.TargetPath))
	}

	if e.PreserveMetadata {
		mtime := item.File.ModifiedAt
		if err := e.FS.Chtimes(item.TargetPath, mtime, mtime); err != nil {
			result.MetadataWarning = appErrors.Wrap(appErrors.MetadataWriteFailed, "chtimes", item.TargetPath, err)
			e.Logger.Warnw("could not set modification time", "path", item.TargetPath, "error", err)
		}
	}

	e.Logger.Verbosef("Copied %s to %s", item.File.AbsolutePath, item.TargetPath)
	return result
}

package app

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"adbpull/internal/domain"
	appErrors "adbpull/internal/errors"
	"adbpull/internal/logging"
)

var errMissingMetadata = errors.New("listing returned a path without size or modification time")

type Enumerator struct {
	Transport Transport
	Logger    logging.Logger
}

// Enumerate lists every file below root. Each call queries the device again.
// Any error, including a listing entry without metadata, fails the whole root.
func (e Enumerator) Enumerate(ctx context.Context, root string) ([]domain.RemoteFile, error) {
	if e.Transport == nil {
		return nil, errors.New("enumerator requires Transport")
	}

	stop := e.Logger.Measure("Listing " + root)
	defer stop()

	files, err := e.Transport.List(ctx, root)
	if err != nil {
		if appErrors.Is(err, appErrors.EnumerationFailed) {
			return nil, err
		}
		return nil, appErrors.Wrap(appErrors.EnumerationFailed, "list", root, err)
	}

	out := make([]domain.RemoteFile, 0, len(files))
	for _, f := range files {
		if f.IsDir {
			continue
		}
		if f.AbsolutePath == "" || f.ModifiedAt.IsZero() {
			return nil, appErrors.Wrap(appErrors.EnumerationFailed, "list", root,
				fmt.Errorf("%w: %q", errMissingMetadata, f.AbsolutePath))
		}
		if f.Root == "" {
			f.Root = root
		}
		if f.RelativePath == "" {
			f.RelativePath = domain.RelativeTo(root, f.AbsolutePath)
		}
		out = append(out, f)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].RelativePath < out[j].RelativePath
	})
	e.Logger.Verbosef("Listed %d files in %s", len(out), root)
	return out, nil
}

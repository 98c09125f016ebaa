package app

import (
	"context"
	"errors"
	"path"
	"path/filepath"

	"adbpull/internal/domain"
	"adbpull/internal/logging"
	"adbpull/internal/skip"
)

// Decide returns the action for a single remote file. Exclusion always wins,
// force only overrides the existing-file check.
func Decide(remote domain.RemoteFile, inventory Inventory, skipSet skip.Set, force bool) domain.Action {
	if skipSet.Matches(remote.RelativePath, remote.AbsolutePath) {
		return domain.ActionSkipExcluded
	}
	if !force && inventory.Has(remote.RelativePath) {
		return domain.ActionSkipExisting
	}
	return domain.ActionCopy
}

type Planner struct {
	Transport Transport
	FS        FileSystem
	Logger    logging.Logger
	Observer  Observer
	Skip      skip.Set
	Force     bool
	// NestRoots places each root's files under <dest>/<basename(root)>.
	NestRoots bool
}

// DestFor returns the local directory that receives the files of a directory
// root. A root naming a single file always lands directly in destRoot.
func DestFor(root, destRoot string, nest bool) string {
	if !nest {
		return destRoot
	}
	base := path.Base(path.Clean(root))
	if base == "/" || base == "." {
		return destRoot
	}
	return filepath.Join(destRoot, base)
}

// isFileRoot reports whether root names a single file rather than a directory.
func isFileRoot(root string, files []domain.RemoteFile) bool {
	return len(files) == 1 && path.Clean(files[0].AbsolutePath) == path.Clean(root)
}

// Plan enumerates every root and decides what to do with each file. Root
// enumeration failures and unusable per-root destinations are recorded in the
// plan; only an unreadable top-level destination aborts planning.
func (p *Planner) Plan(ctx context.Context, roots []string, destRoot string) (domain.SyncPlan, error) {
	if p.Transport == nil || p.FS == nil {
		return domain.SyncPlan{}, errors.New("planner requires Transport and FS")
	}
	observer := p.Observer
	if observer == nil {
		observer = nopObserver{}
	}

	stop := p.Logger.Measure("Planning copy")
	defer stop()

	enumerator := Enumerator{Transport: p.Transport, Logger: p.Logger}
	inventories := map[string]Inventory{}
	var plan domain.SyncPlan

	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return domain.SyncPlan{}, err
		}

		files, err := enumerator.Enumerate(ctx, root)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return domain.SyncPlan{}, err
			}
			failure := domain.RootFailure{Root: root, Err: err}
			plan.Failures = append(plan.Failures, failure)
			p.Logger.Warnw("skipping source root", "root", root, "error", err)
			observer.RootFailed(failure)
			continue
		}

		rootDest := destRoot
		if !isFileRoot(root, files) {
			rootDest = DestFor(root, destRoot, p.NestRoots)
		}
		inventory, ok := inventories[rootDest]
		if !ok {
			inventory, err = TakeInventory(p.FS, rootDest)
			if err != nil {
				if rootDest == destRoot {
					return domain.SyncPlan{}, err
				}
				failure := domain.RootFailure{Root: root, Err: err}
				plan.Failures = append(plan.Failures, failure)
				p.Logger.Warnw("skipping source root", "root", root, "dest", rootDest, "error", err)
				observer.RootFailed(failure)
				continue
			}
			inventories[rootDest] = inventory
			p.Logger.Verbosef("Found %d files already in %s", len(inventory), rootDest)
		}

		rootPlan := domain.RootPlan{
			Root:      root,
			DestRoot:  rootDest,
			Found:     len(files),
			Decisions: make([]domain.CopyDecision, 0, len(files)),
		}
		for _, file := range files {
			rootPlan.Decisions = append(rootPlan.Decisions, domain.CopyDecision{
				File:       file,
				Action:     Decide(file, inventory, p.Skip, p.Force),
				TargetPath: filepath.Join(rootDest, filepath.FromSlash(file.RelativePath)),
			})
		}

		plan.Roots = append(plan.Roots, rootPlan)
		p.Logger.Verbosef("Planned %d of %d files from %s", len(rootPlan.ToCopy()), rootPlan.Found, root)
		observer.RootPlanned(rootPlan)
	}

	return plan, nil
}

package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"adbpull/internal/domain"
	"adbpull/internal/logging"
	"adbpull/internal/skip"
)

type Options struct {
	Roots            []string
	DestRoot         string
	Skip             skip.Set
	DryRun           bool
	Force            bool
	PreserveMetadata bool
	NestRoots        bool
}

type Engine struct {
	Transport Transport
	FS        FileSystem
	Logger    logging.Logger
	Observer  Observer
	Options   Options
}

type Report struct {
	Plan    domain.SyncPlan
	Results []domain.TransferResult
	Summary domain.Summary
}

// Err combines every unreachable root and failed transfer, or nil when the run was clean.
func (r Report) Err() error {
	var err error
	for _, f := range r.Plan.Failures {
		err = multierr.Append(err, f.Err)
	}
	for _, res := range r.Results {
		if res.Status == domain.StatusFailed {
			err = multierr.Append(err, res.Reason)
		}
	}
	return err
}

func (r Report) Failed() []domain.TransferResult {
	var out []domain.TransferResult
	for _, res := range r.Results {
		if res.Status == domain.StatusFailed {
			out = append(out, res)
		}
	}
	return out
}

// Run plans the whole sync and, unless DryRun is set, executes it. In dry-run
// mode nothing is written to the destination.
func (e *Engine) Run(ctx context.Context) (Report, error) {
	if len(e.Options.Roots) == 0 {
		return Report{}, errors.New("no source roots given")
	}
	destRoot := e.Options.DestRoot
	if destRoot == "" {
		destRoot = "."
	}

	e.Logger.Infow("planning",
		"roots", len(e.Options.Roots),
		"dest", destRoot,
		"dry_run", e.Options.DryRun,
		"force", e.Options.Force)

	planner := Planner{
		Transport: e.Transport,
		FS:        e.FS,
		Logger:    e.Logger,
		Observer:  e.Observer,
		Skip:      e.Options.Skip,
		Force:     e.Options.Force,
		NestRoots: e.Options.NestRoots,
	}
	plan, err := planner.Plan(ctx, e.Options.Roots, destRoot)
	if err != nil {
		return Report{}, fmt.Errorf("plan: %w", err)
	}

	report := Report{Plan: plan}
	if e.Options.DryRun {
		report.Summary = Summarize(plan, nil, true)
		return report, nil
	}

	executor := Executor{
		Transport:        e.Transport,
		FS:               e.FS,
		Logger:           e.Logger,
		Observer:         e.Observer,
		PreserveMetadata: e.Options.PreserveMetadata,
	}
	results, err := executor.Execute(ctx, plan.ToCopy())
	report.Results = results
	report.Summary = Summarize(plan, results, false)
	if err != nil {
		return report, err
	}
	return report, nil
}

// Summarize counts outcomes. In dry-run mode Copied is the number of planned copies.
func Summarize(plan domain.SyncPlan, results []domain.TransferResult, dryRun bool) domain.Summary {
	summary := domain.Summary{
		SkippedExisting: plan.Count(domain.ActionSkipExisting),
		SkippedExcluded: plan.Count(domain.ActionSkipExcluded),
		RootsFailed:     len(plan.Failures),
		DryRun:          dryRun,
	}
	if dryRun {
		for _, d := range plan.ToCopy() {
			summary.Copied++
			summary.BytesCopied += d.File.Size
		}
		return summary
	}
	for _, res := range results {
		if res.Status == domain.StatusFailed {
			summary.Failed++
			continue
		}
		summary.Copied++
		summary.BytesCopied += res.File.Size
	}
	return summary
}

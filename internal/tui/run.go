package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"adbpull/internal/app"
	"adbpull/internal/domain"
)

// Observer forwards engine events to a running program.
type Observer struct {
	program *tea.Program
}

func (o Observer) RootPlanned(plan domain.RootPlan) {
	o.program.Send(RootPlannedMsg{Plan: plan})
}

func (o Observer) RootFailed(failure domain.RootFailure) {
	o.program.Send(RootFailedMsg{Failure: failure})
}

func (o Observer) Transferred(current, total int, result domain.TransferResult) {
	o.program.Send(CopyProgressMsg{Current: current, Total: total, Result: result})
}

// RunFunc runs the engine, reporting through observer.
type RunFunc func(ctx context.Context, observer app.Observer) (app.Report, error)

// Run shows the progress view while run executes in the background. Quitting
// the view cancels ctx, so the engine stops before its next file.
func Run(ctx context.Context, cfg Config, run RunFunc, opts ...tea.ProgramOption) (app.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(NewModel(cfg), opts...)

	type outcome struct {
		report app.Report
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		report, err := run(ctx, Observer{program: program})
		done <- outcome{report: report, err: err}
		if err != nil {
			program.Send(ErrorMsg{Err: err})
			return
		}
		program.Send(DoneMsg{Report: report})
	}()

	_, runErr := program.Run()
	cancel()
	out := <-done

	if out.err == nil && runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return out.report, runErr
	}
	return out.report, out.err
}

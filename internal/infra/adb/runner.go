package adb

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Result holds the captured output of one adb invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes a program and captures its output.
type Runner interface {
	Run(ctx context.Context, program string, args ...string) (Result, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, program string, args ...string) (Result, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}
	if err != nil {
		return result, fmt.Errorf("%s %v: %w", program, args, err)
	}
	return result, nil
}

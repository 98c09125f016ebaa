package adb

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	appErrors "adbpull/internal/errors"
	"adbpull/internal/logging"
)

type call struct {
	program string
	args    []string
}

type fakeRunner struct {
	calls   []call
	results []Result
	errs    []error
}

func (f *fakeRunner) Run(ctx context.Context, program string, args ...string) (Result, error) {
	i := len(f.calls)
	f.calls = append(f.calls, call{program: program, args: args})
	var res Result
	var err error
	if i < len(f.results) {
		res = f.results[i]
	}
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return res, err
}

func newTestClient(serial string, runner *fakeRunner) *Client {
	c := New("/opt/adb", serial, logging.Nop()).WithRunner(runner)
	c.RetryDelay = time.Millisecond
	return c
}

func TestParseListing(t *testing.T) {
	out := "10|1609459200|/sdcard/DCIM/a.jpg\r\n" +
		"\n" +
		"2048|1646395200|/sdcard/DCIM/Camera/b|c.jpg\n"

	files, err := ParseListing("/sdcard/DCIM", out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if files[0].RelativePath != "a.jpg" || files[0].Size != 10 {
		t.Fatalf("unexpected first file: %+v", files[0])
	}
	if !files[0].ModifiedAt.Equal(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected mtime %v", files[0].ModifiedAt)
	}
	if files[1].AbsolutePath != "/sdcard/DCIM/Camera/b|c.jpg" || files[1].RelativePath != "Camera/b|c.jpg" {
		t.Fatalf("unexpected second file: %+v", files[1])
	}
}

func TestParseListingRejectsPartialLines(t *testing.T) {
	for _, line := range []string{
		"/sdcard/DCIM/a.jpg",
		"find: '/sdcard/Nope': No such file or directory",
		"x|1609459200|/sdcard/DCIM/a.jpg",
		"10||/sdcard/DCIM/a.jpg",
		"10|1609459200|relative.jpg",
	} {
		if _, err := ParseListing("/sdcard/DCIM", line); err == nil {
			t.Fatalf("expected error for %q", line)
		}
	}
}

func TestShellQuote(t *testing.T) {
	got := shellQuote("/sdcard/WhatsApp Audio/it's")
	want := `'/sdcard/WhatsApp Audio/it'\''s'`
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestListRunsFindWithSerial(t *testing.T) {
	runner := &fakeRunner{results: []Result{{Stdout: "1|1609459200|/sdcard/DCIM/a.jpg\n"}}}
	client := newTestClient("emulator-5554", runner)

	files, err := client.List(context.Background(), "/sdcard/DCIM")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected 1 file, got %d", len(files))
	}
	args := runner.calls[0].args
	if args[0] != "-s" || args[1] != "emulator-5554" || args[2] != "shell" {
		t.Fatalf("unexpected args %v", args)
	}
	if !strings.HasPrefix(args[3], "find -H '/sdcard/DCIM' -type f") {
		t.Fatalf("unexpected command %q", args[3])
	}
}

func TestListFailureIsEnumerationFailed(t *testing.T) {
	runner := &fakeRunner{
		results: []Result{{Stderr: "find: /sdcard/Nope: No such file or directory\n", ExitCode: 1}},
		errs:    []error{errors.New("exit status 1")},
	}
	_, err := newTestClient("", runner).List(context.Background(), "/sdcard/Nope")
	if !appErrors.Is(err, appErrors.EnumerationFailed) {
		t.Fatalf("expected enumeration_failed, got %v", err)
	}
	if !strings.Contains(err.Error(), "No such file or directory") {
		t.Fatalf("expected device output in error, got %v", err)
	}
}

func TestListKeepsFilesFromPartialListing(t *testing.T) {
	runner := &fakeRunner{
		results: []Result{{
			Stdout:   "1|1609459200|/sdcard/a.jpg\n2|1609459200|/sdcard/DCIM/b.jpg\n",
			Stderr:   "find: /sdcard/Android/data: Permission denied\n",
			ExitCode: 1,
		}},
		errs: []error{errors.New("exit status 1")},
	}
	files, err := newTestClient("", runner).List(context.Background(), "/sdcard")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 || files[1].RelativePath != "DCIM/b.jpg" {
		t.Fatalf("unexpected files: %+v", files)
	}
	if cmd := runner.calls[0].args[1]; !strings.HasPrefix(cmd, "find -H '/sdcard' ") {
		t.Fatalf("expected the root symlink to be followed, got %q", cmd)
	}
}

func TestListFailsWhenAdbFailsWithoutExitCode(t *testing.T) {
	runner := &fakeRunner{
		results: []Result{{Stdout: "1|1609459200|/sdcard/a.jpg\n"}},
		errs:    []error{errors.New("adb: device offline")},
	}
	_, err := newTestClient("", runner).List(context.Background(), "/sdcard")
	if !appErrors.Is(err, appErrors.EnumerationFailed) {
		t.Fatalf("expected enumeration_failed, got %v", err)
	}
}

func TestPullArguments(t *testing.T) {
	runner := &fakeRunner{}
	client := newTestClient("", runner)

	if err := client.Pull(context.Background(), "/sdcard/DCIM/a.jpg", "out/a.jpg", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := client.Pull(context.Background(), "/sdcard/DCIM/b.jpg", "out/b.jpg", false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Join(runner.calls[0].args, " "); got != "pull -a /sdcard/DCIM/a.jpg out/a.jpg" {
		t.Fatalf("unexpected args %q", got)
	}
	if got := strings.Join(runner.calls[1].args, " "); got != "pull /sdcard/DCIM/b.jpg out/b.jpg" {
		t.Fatalf("unexpected args %q", got)
	}
}

func TestPullReportsAdbOutput(t *testing.T) {
	runner := &fakeRunner{
		results: []Result{{Stdout: "adb: error: failed to stat remote object '/sdcard/x': No such file or directory\n"}},
		errs:    []error{errors.New("exit status 1")},
	}
	err := newTestClient("", runner).Pull(context.Background(), "/sdcard/x", "x", true)
	if err == nil || !strings.Contains(err.Error(), "failed to stat remote object") {
		t.Fatalf("expected adb output in error, got %v", err)
	}
}

func TestWaitForDeviceRetriesOnce(t *testing.T) {
	empty := Result{Stdout: "List of devices attached\n\n"}
	runner := &fakeRunner{results: []Result{empty, empty}}

	err := newTestClient("", runner).WaitForDevice(context.Background(), 1)
	if !appErrors.Is(err, appErrors.DeviceUnavailable) {
		t.Fatalf("expected device_unavailable, got %v", err)
	}
	if len(runner.calls) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(runner.calls))
	}
}

func TestWaitForDeviceMatchesSerial(t *testing.T) {
	out := Result{Stdout: "* daemon started successfully\nList of devices attached\nR58M123 device\nemulator-5554 offline\n"}

	if err := newTestClient("R58M123", &fakeRunner{results: []Result{out}}).WaitForDevice(context.Background(), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := newTestClient("emulator-5554", &fakeRunner{results: []Result{out}}).WaitForDevice(context.Background(), 0)
	if !appErrors.Is(err, appErrors.DeviceUnavailable) {
		t.Fatalf("offline device must not count, got %v", err)
	}
}

func TestLocatePrefersExplicitThenSiblingThenPath(t *testing.T) {
	dir := t.TempDir()
	explicit := filepath.Join(dir, "custom-adb")
	if err := os.WriteFile(explicit, []byte{}, 0o755); err != nil {
		t.Fatal(err)
	}
	noExe := func() (string, error) { return "", errors.New("unknown") }
	noPath := func(string) (string, error) { return "", errors.New("not found") }

	got, err := locate(explicit, noExe, noPath)
	if err != nil || got != explicit {
		t.Fatalf("expected explicit path, got %q %v", got, err)
	}

	sibling := filepath.Join(dir, binaryName())
	if err := os.WriteFile(sibling, []byte{}, 0o755); err != nil {
		t.Fatal(err)
	}
	exe := func() (string, error) { return filepath.Join(dir, "adbpull"), nil }
	got, err = locate("", exe, noPath)
	if err != nil || got != sibling {
		t.Fatalf("expected sibling adb, got %q %v", got, err)
	}

	onPath := func(string) (string, error) { return "/usr/bin/adb", nil }
	got, err = locate("", noExe, onPath)
	if err != nil || got != "/usr/bin/adb" {
		t.Fatalf("expected adb from PATH, got %q %v", got, err)
	}

	if _, err := locate("", noExe, noPath); !appErrors.Is(err, appErrors.NotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

package adb

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	appErrors "adbpull/internal/errors"
)

func binaryName() string {
	if runtime.GOOS == "windows" {
		return "adb.exe"
	}
	return "adb"
}

// Locate resolves the adb binary: an explicit path wins, then an adb next to
// the running executable, then $PATH.
func Locate(explicit string) (string, error) {
	return locate(explicit, os.Executable, exec.LookPath)
}

func locate(explicit string, executable func() (string, error), lookPath func(string) (string, error)) (string, error) {
	if explicit != "" {
		info, err := os.Stat(explicit)
		if err != nil {
			return "", appErrors.Wrap(appErrors.NotFound, "adb", explicit, err)
		}
		if info.IsDir() {
			return "", appErrors.Wrap(appErrors.NotFound, "adb", explicit, errors.New("is a directory"))
		}
		return explicit, nil
	}

	if exe, err := executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), binaryName())
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	path, err := lookPath(binaryName())
	if err != nil {
		return "", appErrors.Wrap(appErrors.NotFound, "adb", binaryName(),
			fmt.Errorf("unable to find adb, download the platform tools and add them to $PATH: %w", err))
	}
	return path, nil
}

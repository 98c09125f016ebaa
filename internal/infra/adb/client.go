// Package adb talks to a single Android device through the adb binary.
package adb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"adbpull/internal/domain"
	appErrors "adbpull/internal/errors"
	"adbpull/internal/logging"
)

// Client is the handle to the resolved adb binary and the selected device.
// Build it once and pass it to whoever needs the device.
type Client struct {
	Path       string
	Serial     string
	Logger     logging.Logger
	RetryDelay time.Duration
	runner     Runner
}

func New(path, serial string, logger logging.Logger) *Client {
	return &Client{
		Path:       path,
		Serial:     serial,
		Logger:     logger,
		RetryDelay: 500 * time.Millisecond,
		runner:     execRunner{},
	}
}

// WithRunner replaces the process runner, for tests.
func (c *Client) WithRunner(r Runner) *Client {
	c.runner = r
	return c
}

func (c *Client) args(args ...string) []string {
	if c.Serial == "" {
		return args
	}
	return append([]string{"-s", c.Serial}, args...)
}

func (c *Client) run(ctx context.Context, args ...string) (Result, error) {
	full := c.args(args...)
	c.Logger.Verbosef("Running %s %s", c.Path, strings.Join(full, " "))
	return c.runner.Run(ctx, c.Path, full...)
}

// Devices returns the serials of attached devices in the "device" state.
func (c *Client) Devices(ctx context.Context) ([]string, error) {
	res, err := c.runner.Run(ctx, c.Path, "devices")
	if err != nil {
		return nil, appErrors.Wrap(appErrors.DeviceUnavailable, "devices", c.Path, withOutput(err, res))
	}
	return parseDevices(res.Stdout), nil
}

// WaitForDevice checks that a device is attached, asking again up to retries times.
func (c *Client) WaitForDevice(ctx context.Context, retries int) error {
	for attempt := 0; ; attempt++ {
		devices, err := c.Devices(ctx)
		if err != nil {
			return err
		}
		if c.hasDevice(devices) {
			return nil
		}
		if attempt >= retries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.RetryDelay):
		}
	}

	if c.Serial != "" {
		return appErrors.Wrap(appErrors.DeviceUnavailable, "devices", c.Serial,
			fmt.Errorf("device %s is not attached, try \"%s devices\"", c.Serial, c.Path))
	}
	return appErrors.Wrap(appErrors.DeviceUnavailable, "devices", "",
		fmt.Errorf("try executing \"%s devices\"", c.Path))
}

func (c *Client) hasDevice(devices []string) bool {
	if c.Serial == "" {
		return len(devices) > 0
	}
	for _, d := range devices {
		if d == c.Serial {
			return true
		}
	}
	return false
}

func parseDevices(output string) []string {
	var devices []string
	listing := false
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "List of devices attached") {
			listing = true
			continue
		}
		if !listing || line == "" || strings.HasPrefix(line, "*") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == "device" {
			devices = append(devices, fields[0])
		}
	}
	return devices
}

// List returns every regular file below root with its size and modification time.
// When find fails on part of the tree, typically an unreadable subdirectory,
// the files it did list are kept and the failure is logged. A listing that
// fails without producing any file fails the root.
func (c *Client) List(ctx context.Context, root string) ([]domain.RemoteFile, error) {
	res, runErr := c.run(ctx, "shell", listCommand(root))
	if runErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
	}
	files, err := ParseListing(root, res.Stdout)
	if err != nil {
		return nil, appErrors.Wrap(appErrors.EnumerationFailed, "list", root, err)
	}
	if runErr != nil {
		if len(files) == 0 || res.ExitCode == 0 {
			return nil, appErrors.Wrap(appErrors.EnumerationFailed, "list", root, withOutput(runErr, res))
		}
		c.Logger.Warnw("incomplete listing",
			"root", root,
			"files", len(files),
			"error", strings.TrimSpace(res.Stderr))
	}
	return files, nil
}

// Pull copies one remote file to localPath. With preserve set adb keeps the
// remote timestamp as well.
func (c *Client) Pull(ctx context.Context, remotePath, localPath string, preserve bool) error {
	args := []string{"pull"}
	if preserve {
		args = append(args, "-a")
	}
	args = append(args, remotePath, localPath)

	res, err := c.run(ctx, args...)
	if err != nil {
		return withOutput(err, res)
	}
	return nil
}

// withOutput attaches whatever adb printed to err, since adb reports most
// failures on stdout.
func withOutput(err error, res Result) error {
	msg := strings.TrimSpace(res.Stderr)
	if msg == "" {
		msg = strings.TrimSpace(res.Stdout)
	}
	if msg == "" {
		return err
	}
	if idx := strings.LastIndex(msg, "\n"); idx >= 0 {
		msg = strings.TrimSpace(msg[idx+1:])
	}
	return fmt.Errorf("%s: %w", msg, err)
}


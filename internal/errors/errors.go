package errors

import (
	stderrors "errors"
	"fmt"
)

type Kind string

const (
	InvalidConfig       Kind = "invalid_config"
	NotFound            Kind = "not_found"
	EnumerationFailed   Kind = "enumeration_failed"
	SkipFileUnreadable  Kind = "skip_file_unreadable"
	TransferFailed      Kind = "transfer_failed"
	MetadataWriteFailed Kind = "metadata_write_failed"
	DeviceUnavailable   Kind = "device_unavailable"
	IOFailure           Kind = "io_failure"
	Internal            Kind = "internal"
)

type AppError struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *AppError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Wrap(kind Kind, op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &AppError{
		Kind: kind,
		Op:   op,
		Path: path,
		Err:  err,
	}
}

// KindOf returns the kind of the first AppError in err's chain, or Internal.
func KindOf(err error) Kind {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

func Is(err error, kind Kind) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Kind == kind
}

func UserMessage(err error) string {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return err.Error()
	}
	switch appErr.Kind {
	case InvalidConfig:
		return fmt.Sprintf("Invalid configuration: %v", appErr.Err)
	case NotFound:
		return fmt.Sprintf("Path not found: %s", appErr.Path)
	case EnumerationFailed:
		return fmt.Sprintf("Unable to list %s on the device: %v", appErr.Path, appErr.Err)
	case SkipFileUnreadable:
		return fmt.Sprintf("Unable to read skip file: %s", appErr.Path)
	case TransferFailed:
		return fmt.Sprintf("Failed to copy %s: %v", appErr.Path, appErr.Err)
	case MetadataWriteFailed:
		return fmt.Sprintf("Copied %s but could not set its modification time: %v", appErr.Path, appErr.Err)
	case DeviceUnavailable:
		return fmt.Sprintf("No device found: %v", appErr.Err)
	case IOFailure:
		return fmt.Sprintf("I/O error: %s", appErr.Path)
	default:
		return fmt.Sprintf("Unexpected error: %v", appErr.Err)
	}
}

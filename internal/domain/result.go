package domain

type Status int

const (
	StatusSuccess Status = iota
	StatusFailed
)

func (s Status) String() string {
	if s == StatusFailed {
		return "failed"
	}
	return "success"
}

type TransferResult struct {
	File       RemoteFile
	TargetPath string
	Status     Status
	Reason     error
	// MetadataWarning is set when the copy succeeded but the mtime could not be written.
	MetadataWarning error
}

type Summary struct {
	Copied          int
	SkippedExisting int
	SkippedExcluded int
	Failed          int
	BytesCopied     uint64
	RootsFailed     int
	DryRun          bool
}

func (s Summary) OK() bool {
	return s.Failed == 0 && s.RootsFailed == 0
}

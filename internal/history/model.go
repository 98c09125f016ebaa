package history

import (
	"time"

	"gorm.io/gorm"
)

type TransferStatus string

const (
	StatusSuccess TransferStatus = "SUCCESS"
	StatusFailed  TransferStatus = "FAILED"
)

// Run is one live sync. Dry runs are never recorded.
type Run struct {
	gorm.Model
	StartedAt       time.Time `gorm:"not null"`
	FinishedAt      time.Time `gorm:"not null"`
	Serial          string
	Dest            string `gorm:"not null"`
	Copied          int
	SkippedExisting int
	SkippedExcluded int
	Failed          int
	RootsFailed     int
	BytesCopied     uint64
	Transfers       []Transfer
}

type Transfer struct {
	gorm.Model
	RunID      uint           `gorm:"index;not null"`
	Status     TransferStatus `gorm:"not null"`
	Root       string         `gorm:"not null"`
	RemotePath string         `gorm:"not null"`
	LocalPath  string         `gorm:"not null"`
	Size       uint64
	ErrMsg     string
	CopiedAt   time.Time `gorm:"not null"`
}

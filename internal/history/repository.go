// Package history keeps an audit log of pulled files. It is never consulted
// when deciding what to copy; the destination tree is the only sync state.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"adbpull/internal/app"
	"adbpull/internal/domain"
)

type Repository struct {
	db *gorm.DB
}

func Open(path string) (*Repository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}
	if err := db.AutoMigrate(&Run{}, &Transfer{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history db: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type RunInfo struct {
	StartedAt time.Time
	Serial    string
	Dest      string
}

// Save records a finished run together with every attempted transfer.
func (r *Repository) Save(ctx context.Context, info RunInfo, report app.Report) (uint, error) {
	now := time.Now()
	run := Run{
		StartedAt:       info.StartedAt,
		FinishedAt:      now,
		Serial:          info.Serial,
		Dest:            info.Dest,
		Copied:          report.Summary.Copied,
		SkippedExisting: report.Summary.SkippedExisting,
		SkippedExcluded: report.Summary.SkippedExcluded,
		Failed:          report.Summary.Failed,
		RootsFailed:     report.Summary.RootsFailed,
		BytesCopied:     report.Summary.BytesCopied,
	}
	for _, res := range report.Results {
		run.Transfers = append(run.Transfers, newTransfer(res, now))
	}

	if err := r.db.WithContext(ctx).Create(&run).Error; err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}
	return run.ID, nil
}

func newTransfer(res domain.TransferResult, at time.Time) Transfer {
	t := Transfer{
		Status:     StatusSuccess,
		Root:       res.File.Root,
		RemotePath: res.File.AbsolutePath,
		LocalPath:  res.TargetPath,
		Size:       res.File.Size,
		CopiedAt:   at,
	}
	if res.Status == domain.StatusFailed {
		t.Status = StatusFailed
		if res.Reason != nil {
			t.ErrMsg = res.Reason.Error()
		}
	}
	return t
}

func (r *Repository) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	var runs []Run
	result := r.db.WithContext(ctx).
		Order("started_at desc").
		Limit(limit).
		Find(&runs)
	return runs, result.Error
}

func (r *Repository) RecentTransfers(ctx context.Context, limit int) ([]Transfer, error) {
	var transfers []Transfer
	result := r.db.WithContext(ctx).
		Order("copied_at desc, id desc").
		Limit(limit).
		Find(&transfers)
	return transfers, result.Error
}

func (r *Repository) FailedTransfers(ctx context.Context, limit int) ([]Transfer, error) {
	var transfers []Transfer
	result := r.db.WithContext(ctx).
		Where("status = ?", StatusFailed).
		Order("copied_at desc, id desc").
		Limit(limit).
		Find(&transfers)
	return transfers, result.Error
}

type Stats struct {
	Total   int64
	Success int64
	Failed  int64
}

func (r *Repository) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	db := r.db.WithContext(ctx)
	if err := db.Model(&Transfer{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&Transfer{}).
		Where("status = ?", StatusSuccess).
		Count(&stats.Success).Error; err != nil {
		return stats, err
	}
	stats.Failed = stats.Total - stats.Success
	return stats, nil
}

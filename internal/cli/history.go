package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	appErrors "adbpull/internal/errors"
	"adbpull/internal/history"
)

func newHistoryCommand(configPath *string) *cobra.Command {
	var (
		failedOnly bool
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show previous runs and transferred files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, *configPath)
			if err != nil {
				return err
			}
			dbPath, err := cfg.HistoryFile()
			if err != nil {
				return appErrors.Wrap(appErrors.IOFailure, "history", "", err)
			}

			out := cmd.OutOrStdout()
			if _, err := os.Stat(dbPath); errors.Is(err, fs.ErrNotExist) {
				fmt.Fprintln(out, "No history recorded yet")
				return nil
			}

			repo, err := history.Open(dbPath)
			if err != nil {
				return appErrors.Wrap(appErrors.IOFailure, "history", dbPath, err)
			}
			defer repo.Close()

			ctx := cmd.Context()
			if failedOnly {
				transfers, err := repo.FailedTransfers(ctx, limit)
				if err != nil {
					return appErrors.Wrap(appErrors.IOFailure, "history", dbPath, err)
				}
				printTransfers(out, transfers)
				return nil
			}

			runs, err := repo.RecentRuns(ctx, limit)
			if err != nil {
				return appErrors.Wrap(appErrors.IOFailure, "history", dbPath, err)
			}
			stats, err := repo.Stats(ctx)
			if err != nil {
				return appErrors.Wrap(appErrors.IOFailure, "history", dbPath, err)
			}
			printRuns(out, runs, stats)
			return nil
		},
	}

	cmd.Flags().BoolVar(&failedOnly, "failed", false, "list failed transfers instead of runs")
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "number of entries to show")
	return cmd
}

func printRuns(w io.Writer, runs []history.Run, stats history.Stats) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No history recorded yet")
		return
	}
	for _, r := range runs {
		status := "✓"
		if r.Failed > 0 || r.RootsFailed > 0 {
			status = "✗"
		}
		fmt.Fprintf(w, "%s [%s] copied %d (%s), skipped %d, failed %d  %s\n",
			status,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Copied,
			humanize.Bytes(r.BytesCopied),
			r.SkippedExisting+r.SkippedExcluded,
			r.Failed,
			r.Dest,
		)
	}
	fmt.Fprintf(w, "\n%d transfers recorded, %d failed\n", stats.Total, stats.Failed)
}

func printTransfers(w io.Writer, transfers []history.Transfer) {
	if len(transfers) == 0 {
		fmt.Fprintln(w, "No failed transfers")
		return
	}
	for _, t := range transfers {
		fmt.Fprintf(w, "✗ [%s] %s: %s\n",
			t.CopiedAt.Format("2006-01-02 15:04:05"),
			t.RemotePath,
			t.ErrMsg,
		)
	}
}

// Package cli wires configuration, the adb transport and the sync engine into
// the adbpull command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"adbpull/internal/app"
	"adbpull/internal/config"
	appErrors "adbpull/internal/errors"
	"adbpull/internal/history"
	"adbpull/internal/infra/adb"
	"adbpull/internal/infra/fs"
	"adbpull/internal/logging"
	"adbpull/internal/presentation"
	"adbpull/internal/report"
	"adbpull/internal/skip"
	"adbpull/internal/tui"
)

// Connector opens the transport the engine pulls through.
type Connector func(ctx context.Context, cfg config.Config, logger logging.Logger) (app.Transport, error)

type Option func(*options)

type options struct {
	connect Connector
}

// WithConnector replaces the adb connection, for instance with an in-memory transport.
func WithConnector(c Connector) Option {
	return func(o *options) {
		o.connect = c
	}
}

// connectADB resolves adb and waits for the device.
func connectADB(ctx context.Context, cfg config.Config, logger logging.Logger) (app.Transport, error) {
	adbPath, err := adb.Locate(cfg.ADBPath)
	if err != nil {
		return nil, err
	}
	logger.Infof("Using adb from: %s", adbPath)

	client := adb.New(adbPath, cfg.Serial, logger)
	if err := client.WaitForDevice(ctx, 1); err != nil {
		return nil, err
	}
	return client, nil
}

func NewRootCommand(version string, opts ...Option) *cobra.Command {
	o := options{connect: connectADB}
	for _, opt := range opts {
		opt(&o)
	}
	var configPath string

	cmd := &cobra.Command{
		Use:   "adbpull",
		Short: "Incrementally pull files from an Android device over adb",
		Long: `adbpull copies files from one or more directories on an Android device
to a local destination. Files already present locally are skipped, so
repeated runs only transfer what is new.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, configPath)
			if err != nil {
				return err
			}
			return runPull(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, o.connect)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/adbpull/config.yaml)")
	pf.String("history-db", "", "history database path (default $XDG_DATA_HOME/adbpull/history.db)")

	f := cmd.Flags()
	f.StringSliceP("sources", "s", nil, "device directories to copy from")
	f.BoolP("copy-media", "m", false, "copy photos and videos")
	f.BoolP("copy-whatsapp", "w", false, "copy WhatsApp media")
	f.BoolP("copy-whatsapp-backups", "b", false, "copy WhatsApp database backups")
	f.StringSliceP("preset", "p", nil, "named source presets ("+strings.Join(config.PresetNames(nil), ", ")+")")
	f.StringP("dest", "d", config.Default.Dest, "local destination directory")
	f.StringSlice("skip", nil, "files listing device paths to exclude")
	f.BoolP("dry-run", "n", false, "show what would be copied without copying")
	f.BoolP("force", "f", false, "copy files even when they already exist locally")
	f.Bool("no-metadata", false, "do not preserve modification times")
	f.Bool("flat", false, "copy every source directly into the destination")
	f.String("serial", "", "serial of the device to use")
	f.String("adb", "", "path to the adb binary")
	f.BoolP("verbose", "v", false, "print every file as it is processed")
	f.Bool("plain", false, "disable the interactive progress view")
	f.String("report", "", "write a YAML report of the run to this file")
	f.Bool("no-history", false, "do not record the run in the history database")

	cmd.AddCommand(newHistoryCommand(&configPath), newVersionCommand(version))
	return cmd
}

// loadConfig merges flags, ADBPULL_* environment variables and the config file.
func loadConfig(cmd *cobra.Command, configPath string) (config.Config, error) {
	v := config.NewViper()
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return config.Config{}, appErrors.Wrap(appErrors.Internal, "flags", "", err)
	}
	cfg, err := config.Load(v, configPath)
	if err != nil {
		return config.Config{}, appErrors.Wrap(appErrors.InvalidConfig, "config", configPath, err)
	}
	return cfg, nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		switch f.Name {
		case "help", "version", "config":
			return
		}
		if bindErr := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f); bindErr != nil && err == nil {
			err = bindErr
		}
	})
	return err
}

func runPull(ctx context.Context, stdout, stderr io.Writer, cfg config.Config, connect Connector) error {
	if err := cfg.Validate(); err != nil {
		return appErrors.Wrap(appErrors.InvalidConfig, "config", "", err)
	}
	roots, err := cfg.SourceRoots()
	if err != nil {
		return appErrors.Wrap(appErrors.InvalidConfig, "config", "", err)
	}

	useTUI := !cfg.Plain && !cfg.DryRun && isTerminal(stdout)

	logger := logging.New(stderr, cfg.Verbose)
	if useTUI {
		logger = logging.Nop()
	}
	defer logger.Sync()

	skipSet, err := skip.Load(cfg.Skip...)
	if err != nil {
		return err
	}
	if skipSet.Len() > 0 {
		logger.Verbosef("Loaded %d skip entries: %s", skipSet.Len(), strings.Join(skipSet.Entries(), ", "))
	}

	transport, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}

	printer := presentation.Printer{Writer: stdout, Verbose: cfg.Verbose}
	engine := &app.Engine{
		Transport: transport,
		FS:        fs.OSFS{},
		Logger:    logger,
		Options: app.Options{
			Roots:            roots,
			DestRoot:         cfg.Dest,
			Skip:             skipSet,
			DryRun:           cfg.DryRun,
			Force:            cfg.Force,
			PreserveMetadata: cfg.PreserveMetadata(),
			NestRoots:        cfg.NestRoots(),
		},
	}

	started := time.Now()
	var rep app.Report
	var runErr error
	if useTUI {
		tuiCfg := tui.Config{Roots: roots, Dest: cfg.Dest, Serial: cfg.Serial, Verbose: cfg.Verbose}
		rep, runErr = tui.Run(ctx, tuiCfg, func(ctx context.Context, observer app.Observer) (app.Report, error) {
			engine.Observer = observer
			return engine.Run(ctx)
		})
	} else {
		engine.Observer = printer
		rep, runErr = engine.Run(ctx)
	}
	if runErr != nil && len(rep.Plan.Roots) == 0 {
		return runErr
	}

	if cfg.DryRun {
		printer.PrintDryRun(rep)
		if cfg.Report != "" {
			logger.Warnf("Ignoring --report in dry-run mode")
		}
		return outcome(rep, runErr)
	}

	if useTUI {
		printer.PrintFailures(rep)
	}
	printer.PrintSummary(rep.Summary)

	if !cfg.NoHistory {
		if err := saveHistory(ctx, cfg, started, rep); err != nil {
			logger.Warnf("Unable to record history: %v", err)
		}
	}
	if cfg.Report != "" {
		doc := report.Build(rep, cfg.Serial, cfg.Dest, time.Now())
		if err := report.Write(cfg.Report, doc); err != nil {
			return appErrors.Wrap(appErrors.IOFailure, "report", cfg.Report, err)
		}
		logger.Verbosef("Report written to %s", cfg.Report)
	}

	return outcome(rep, runErr)
}

func saveHistory(ctx context.Context, cfg config.Config, started time.Time, rep app.Report) error {
	dbPath, err := cfg.HistoryFile()
	if err != nil {
		return err
	}
	repo, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer repo.Close()
	_, err = repo.Save(ctx, history.RunInfo{StartedAt: started, Serial: cfg.Serial, Dest: cfg.Dest}, rep)
	return err
}

// outcome turns an unclean run into a non-zero exit.
func outcome(rep app.Report, runErr error) error {
	if runErr != nil {
		return runErr
	}
	if rep.Summary.OK() {
		return nil
	}
	return fmt.Errorf("%d %s failed, %d source %s unreachable",
		rep.Summary.Failed, pluralize(rep.Summary.Failed, "file", "files"),
		rep.Summary.RootsFailed, pluralize(rep.Summary.RootsFailed, "root", "roots"))
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

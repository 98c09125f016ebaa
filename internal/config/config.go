package config

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

const (
	AppName    = "adbpull"
	EnvPrefix  = "ADBPULL"
	configFile = AppName + "/config.yaml"
	historyDB  = AppName + "/history.db"
)

type Config struct {
	Sources         []string            `mapstructure:"sources"`
	Presets         []string            `mapstructure:"preset"`
	Media           bool                `mapstructure:"copy_media"`
	WhatsApp        bool                `mapstructure:"copy_whatsapp"`
	WhatsAppBackups bool                `mapstructure:"copy_whatsapp_backups"`
	CustomPresets   map[string][]string `mapstructure:"presets"`
	Dest            string              `mapstructure:"dest"`
	Skip            []string            `mapstructure:"skip"`
	DryRun          bool                `mapstructure:"dry_run"`
	Force           bool                `mapstructure:"force"`
	NoMetadata      bool                `mapstructure:"no_metadata"`
	Flat            bool                `mapstructure:"flat"`
	Serial          string              `mapstructure:"serial"`
	ADBPath         string              `mapstructure:"adb"`
	Verbose         bool                `mapstructure:"verbose"`
	Plain           bool                `mapstructure:"plain"`
	Report          string              `mapstructure:"report"`
	NoHistory       bool                `mapstructure:"no_history"`
	HistoryPath     string              `mapstructure:"history_db"`
}

var Default = Config{
	Dest: ".",
}

// NewViper returns a viper instance with defaults, env binding and the config
// file search set up. Flags are bound by the caller.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("dest", Default.Dest)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file and unmarshals the merged settings.
// An explicit configPath must exist; otherwise the XDG config dir is searched.
func Load(v *viper.Viper, configPath string) (Config, error) {
	if configPath == "" {
		if found, err := xdg.SearchConfigFile(configFile); err == nil {
			configPath = found
		}
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Dest == "" {
		cfg.Dest = Default.Dest
	}
	return cfg, nil
}

// SourceRoots returns the explicit sources followed by every selected preset,
// without duplicates and in first-seen order.
func (c Config) SourceRoots() ([]string, error) {
	var roots []string
	seen := map[string]bool{}
	add := func(p string) {
		p = strings.TrimSpace(p)
		if p == "" {
			return
		}
		p = path.Clean(p)
		if seen[p] {
			return
		}
		seen[p] = true
		roots = append(roots, p)
	}

	for _, s := range c.Sources {
		add(s)
	}

	presets := append([]string(nil), c.Presets...)
	if c.Media {
		presets = append(presets, PresetMedia)
	}
	if c.WhatsApp {
		presets = append(presets, PresetWhatsApp)
	}
	if c.WhatsAppBackups {
		presets = append(presets, PresetWhatsAppBackups)
	}
	for _, name := range presets {
		paths, err := PresetPaths(name, c.CustomPresets)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			add(p)
		}
	}
	return roots, nil
}

func (c Config) Validate() error {
	roots, err := c.SourceRoots()
	if err != nil {
		return err
	}
	if len(roots) == 0 {
		return errors.New("at least one source or preset is required")
	}
	for _, r := range roots {
		if !strings.HasPrefix(r, "/") {
			return fmt.Errorf("source %q must be an absolute device path", r)
		}
	}
	return nil
}

func (c Config) PreserveMetadata() bool {
	return !c.NoMetadata
}

func (c Config) NestRoots() bool {
	return !c.Flat
}

// HistoryFile returns the history database path, creating its directory under
// the XDG data home when no explicit path is configured.
func (c Config) HistoryFile() (string, error) {
	if c.HistoryPath != "" {
		return c.HistoryPath, nil
	}
	return xdg.DataFile(historyDB)
}

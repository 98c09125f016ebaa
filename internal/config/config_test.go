package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
)

func TestSourceRootsOrderAndDedup(t *testing.T) {
	cfg := Config{
		Sources: []string{"/sdcard/Download", "/sdcard/DCIM/"},
		Media:   true,
	}
	roots, err := cfg.SourceRoots()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"/sdcard/Download", "/sdcard/DCIM", "/sdcard/Pictures"}
	if strings.Join(roots, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, roots)
	}
}

func TestWhatsAppPresets(t *testing.T) {
	roots, err := Config{WhatsApp: true, WhatsAppBackups: true}.SourceRoots()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(roots) != 8 {
		t.Fatalf("expected 8 roots, got %d", len(roots))
	}
	if roots[0] != "/sdcard/Android/media/com.whatsapp/WhatsApp/Media/WhatsApp Audio" {
		t.Fatalf("unexpected first root %q", roots[0])
	}
	if roots[7] != "/sdcard/Android/media/com.whatsapp/WhatsApp/Databases" {
		t.Fatalf("unexpected last root %q", roots[7])
	}
}

func TestCustomPresetOverridesBuiltin(t *testing.T) {
	cfg := Config{
		Presets:       []string{"media", "music"},
		CustomPresets: map[string][]string{"media": {"/sdcard/DCIM/Camera"}, "music": {"/sdcard/Music"}},
	}
	roots, err := cfg.SourceRoots()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(roots, ",") != "/sdcard/DCIM/Camera,/sdcard/Music" {
		t.Fatalf("unexpected roots %v", roots)
	}
}

func TestValidate(t *testing.T) {
	if err := (Config{}).Validate(); err == nil {
		t.Fatalf("expected error without sources")
	}
	if err := (Config{Presets: []string{"nope"}}).Validate(); err == nil {
		t.Fatalf("expected error for unknown preset")
	}
	if err := (Config{Sources: []string{"sdcard/DCIM"}}).Validate(); err == nil {
		t.Fatalf("expected error for relative device path")
	}
	if err := (Config{Sources: []string{"/sdcard/DCIM"}}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadReadsConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	content := "dest: /backup/phone\nskip:\n  - /home/me/skip.txt\npresets:\n  music:\n    - /sdcard/Music\n"
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ADBPULL_SERIAL", "R58M123")

	v := NewViper()
	v.SetDefault("serial", "")
	cfg, err := Load(v, file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Dest != "/backup/phone" {
		t.Fatalf("unexpected dest %q", cfg.Dest)
	}
	if len(cfg.Skip) != 1 || cfg.Skip[0] != "/home/me/skip.txt" {
		t.Fatalf("unexpected skip %v", cfg.Skip)
	}
	if cfg.Serial != "R58M123" {
		t.Fatalf("expected serial from env, got %q", cfg.Serial)
	}
	if got := cfg.CustomPresets["music"]; len(got) != 1 || got[0] != "/sdcard/Music" {
		t.Fatalf("unexpected custom presets %v", cfg.CustomPresets)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(NewViper(), filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_DIRS", t.TempDir())
	xdg.Reload()
	defer xdg.Reload()
	cfg, err := Load(NewViper(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Dest != "." || !cfg.PreserveMetadata() || !cfg.NestRoots() {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

package skip

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	appErrors "adbpull/internal/errors"
)

func TestParseIgnoresBlankLines(t *testing.T) {
	set, err := Parse(strings.NewReader("b.jpg\n\n   \r\n./Camera/\n/sdcard/Pictures/Screenshots\r\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"/sdcard/Pictures/Screenshots", "Camera", "b.jpg"}
	got := set.Entries()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestMatchesExactAndDirectoryPrefix(t *testing.T) {
	set := NewSet("b.jpg", "Camera", "/sdcard/Pictures/Screenshots")

	cases := []struct {
		rel, abs string
		want     bool
	}{
		{"b.jpg", "/sdcard/DCIM/b.jpg", true},
		{"a.jpg", "/sdcard/DCIM/a.jpg", false},
		{"Camera/IMG_1.jpg", "/sdcard/DCIM/Camera/IMG_1.jpg", true},
		{"CameraRoll/IMG_1.jpg", "/sdcard/DCIM/CameraRoll/IMG_1.jpg", false},
		{"Screenshots/s.png", "/sdcard/Pictures/Screenshots/s.png", true},
		{"b.jpg.bak", "/sdcard/DCIM/b.jpg.bak", false},
	}
	for _, c := range cases {
		if got := set.Matches(c.rel, c.abs); got != c.want {
			t.Fatalf("Matches(%q, %q) = %v, want %v", c.rel, c.abs, got, c.want)
		}
	}
}

func TestEmptySetMatchesNothing(t *testing.T) {
	var set Set
	if set.Matches("a", "/a") {
		t.Fatalf("empty set should not match")
	}
}

func TestLoadWithoutPathsIsEmpty(t *testing.T) {
	set, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.Len() != 0 {
		t.Fatalf("expected empty set")
	}
}

func TestLoadUnionsFiles(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "one.txt")
	second := filepath.Join(dir, "two.txt")
	if err := os.WriteFile(first, []byte("a.jpg\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte("b.jpg\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	set, err := Load(first, second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", set.Len())
	}
}

func TestLoadMissingFileIsFatal(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Fatalf("expected error")
	}
	if !appErrors.Is(err, appErrors.SkipFileUnreadable) {
		t.Fatalf("expected skip_file_unreadable, got %v", err)
	}
}

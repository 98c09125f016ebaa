package app

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"adbpull/internal/domain"
	fsinfra "adbpull/internal/infra/fs"
)

type fakeTransport struct {
	files   map[string][]domain.RemoteFile
	listErr map[string]error
	pullErr map[string]error
	pulled  []string
	lists   int
}

func (f *fakeTransport) List(ctx context.Context, root string) ([]domain.RemoteFile, error) {
	f.lists++
	if err := f.listErr[root]; err != nil {
		return nil, err
	}
	files, ok := f.files[root]
	if !ok {
		return nil, errors.New("find: " + root + ": No such file or directory")
	}
	return append([]domain.RemoteFile(nil), files...), nil
}

func (f *fakeTransport) Pull(ctx context.Context, remotePath, localPath string, preserve bool) error {
	f.pulled = append(f.pulled, remotePath)
	if err := f.pullErr[remotePath]; err != nil {
		return err
	}
	return os.WriteFile(localPath, []byte("data:"+remotePath), 0o644)
}

type chtimesFailFS struct {
	fsinfra.OSFS
}

func (chtimesFailFS) Chtimes(string, time.Time, time.Time) error {
	return errors.New("read-only filesystem")
}

var (
	jan2021 = time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	mar2022 = time.Date(2022, 3, 4, 12, 0, 0, 0, time.UTC)
)

func remoteFile(root, rel string, size uint64, modTime time.Time) domain.RemoteFile {
	return domain.NewRemoteFile(root, path.Join(root, rel), size, modTime)
}

func dcimTransport() *fakeTransport {
	return &fakeTransport{
		files: map[string][]domain.RemoteFile{
			"/sdcard/DCIM": {
				remoteFile("/sdcard/DCIM", "a.jpg", 10, jan2021),
				remoteFile("/sdcard/DCIM", "b.jpg", 20, mar2022),
			},
		},
	}
}

// notesTransport serves a single-file root next to the DCIM directory root.
func notesTransport() *fakeTransport {
	transport := dcimTransport()
	transport.files["/sdcard/Download/notes.txt"] = []domain.RemoteFile{
		domain.NewRemoteFile("/sdcard/Download/notes.txt", "/sdcard/Download/notes.txt", 5, jan2021),
	}
	return transport
}

func writeFile(t *testing.T, p string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}
}

// snapshot returns every entry below root with its contents, for tree comparisons.
func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, p)
		if d.IsDir() {
			out[rel+"/"] = ""
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		out[rel] = string(data)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func actionsByName(decisions []domain.CopyDecision) map[string]domain.Action {
	out := map[string]domain.Action{}
	for _, d := range decisions {
		out[d.File.RelativePath] = d.Action
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Package skip loads user supplied skip lists and matches device paths against them.
package skip

import (
	"bufio"
	"io"
	"os"
	"path"
	"sort"
	"strings"

	appErrors "adbpull/internal/errors"
)

// Set holds normalized path fragments. Listing a folder excludes everything under it.
type Set struct {
	entries map[string]struct{}
}

func NewSet(entries ...string) Set {
	s := Set{entries: map[string]struct{}{}}
	for _, e := range entries {
		s.Add(e)
	}
	return s
}

// Load reads every skip file and unions their entries. No paths yields an empty set.
func Load(paths ...string) (Set, error) {
	set := NewSet()
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return Set{}, appErrors.Wrap(appErrors.SkipFileUnreadable, "skip", p, err)
		}
		err = set.readFrom(f)
		f.Close()
		if err != nil {
			return Set{}, appErrors.Wrap(appErrors.SkipFileUnreadable, "skip", p, err)
		}
	}
	return set, nil
}

func Parse(r io.Reader) (Set, error) {
	set := NewSet()
	if err := set.readFrom(r); err != nil {
		return Set{}, err
	}
	return set, nil
}

func (s *Set) readFrom(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		s.Add(scanner.Text())
	}
	return scanner.Err()
}

func (s *Set) Add(entry string) {
	entry = normalize(entry)
	if entry == "" {
		return
	}
	if s.entries == nil {
		s.entries = map[string]struct{}{}
	}
	s.entries[entry] = struct{}{}
}

func (s Set) Len() int {
	return len(s.entries)
}

func (s Set) Entries() []string {
	out := make([]string, 0, len(s.entries))
	for e := range s.entries {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// Matches reports whether the relative or absolute device path equals an entry
// or lies below one.
func (s Set) Matches(relativePath, absolutePath string) bool {
	if len(s.entries) == 0 {
		return false
	}
	return s.matchPath(relativePath) || s.matchPath(absolutePath)
}

func (s Set) matchPath(p string) bool {
	if p == "" {
		return false
	}
	p = path.Clean(p)
	for {
		if _, ok := s.entries[p]; ok {
			return true
		}
		parent := path.Dir(p)
		if parent == p {
			return false
		}
		p = parent
	}
}

func normalize(entry string) string {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return ""
	}
	entry = path.Clean(entry)
	if entry == "." {
		return ""
	}
	return entry
}

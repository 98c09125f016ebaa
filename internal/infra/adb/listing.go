package adb

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"adbpull/internal/domain"
)

// statFormat prints size, mtime in epoch seconds and the path, so metadata
// always arrives on the same line as the path it belongs to.
const statFormat = "%s|%Y|%n"

// listCommand lists every regular file below root. -H follows a root that is
// itself a symlink, as /sdcard is on most devices, without following links
// found inside the tree.
func listCommand(root string) string {
	return fmt.Sprintf("find -H %s -type f -exec stat -c %s {} +", shellQuote(root), shellQuote(statFormat))
}

// ParseListing turns the output of listCommand into remote files. Any line
// that does not carry a size, a timestamp and an absolute path fails the listing.
func ParseListing(root, output string) ([]domain.RemoteFile, error) {
	var files []domain.RemoteFile
	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		file, err := parseLine(root, line)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return files, nil
}

func parseLine(root, line string) (domain.RemoteFile, error) {
	parts := strings.SplitN(line, "|", 3)
	if len(parts) != 3 {
		return domain.RemoteFile{}, fmt.Errorf("unexpected listing line %q", line)
	}
	size, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return domain.RemoteFile{}, fmt.Errorf("invalid size in listing line %q: %w", line, err)
	}
	epoch, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return domain.RemoteFile{}, fmt.Errorf("invalid modification time in listing line %q: %w", line, err)
	}
	path := parts[2]
	if !strings.HasPrefix(path, "/") {
		return domain.RemoteFile{}, fmt.Errorf("expected absolute path in listing line %q", line)
	}
	return domain.NewRemoteFile(root, path, size, time.Unix(epoch, 0)), nil
}

// shellQuote quotes s for the device shell.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

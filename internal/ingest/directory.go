package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/freightbite/freight-extract/constants"
)

// ErrPathNotFound is returned by ListFiles for a path that is neither a file nor a directory.
var ErrPathNotFound = errors.New("path not found")

// ListFiles resolves the batch input: a file is returned as-is (whatever its extension,
// so the pipeline can report it as unsupported); a directory yields its allowed,
// non-hidden regular files, non-recursively and sorted by name. A nil exts means
// constants.AllowedExtensions.
func ListFiles(path string, exts map[string]struct{}) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: empty path", ErrPathNotFound)
	}
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if !e.Type().IsRegular() || IsHidden(e.Name()) {
			continue
		}
		if !allowed(e.Name(), exts) {
			continue
		}
		out = append(out, filepath.Join(path, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}

// ParseExts turns "pdf,.PNG, txt" into an extension set; empty input yields nil.
func ParseExts(list []string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, e := range list {
		for _, part := range strings.Split(e, ",") {
			if n := constants.NormalizeExt(strings.TrimSpace(part)); n != "" {
				out[n] = struct{}{}
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func allowed(path string, exts map[string]struct{}) bool {
	if exts == nil {
		return constants.IsAllowedExt(filepath.Ext(path))
	}
	_, ok := exts[constants.NormalizeExt(filepath.Ext(path))]
	return ok
}

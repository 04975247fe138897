package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestListFiles_Directory(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "b.pdf"), "b")
	write(t, filepath.Join(dir, "a.PNG"), "a")
	write(t, filepath.Join(dir, "notes.txt"), "n")
	write(t, filepath.Join(dir, "sheet.xlsx"), "x")
	write(t, filepath.Join(dir, ".hidden.pdf"), "h")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	write(t, filepath.Join(dir, "nested", "c.pdf"), "c")

	files, err := ListFiles(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.PNG"),
		filepath.Join(dir, "b.pdf"),
		filepath.Join(dir, "notes.txt"),
	}, files)

	onlyPDF, err := ListFiles(dir, ParseExts([]string{".pdf"}))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "b.pdf")}, onlyPDF)
}

func TestListFiles_SingleFileKeepsAnyExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memo.docx")
	write(t, path, "m")

	files, err := ListFiles(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestListFiles_Missing(t *testing.T) {
	_, err := ListFiles(filepath.Join(t.TempDir(), "nope"), nil)
	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestParseExts(t *testing.T) {
	assert.Nil(t, ParseExts(nil))
	assert.Equal(t, map[string]struct{}{"pdf": {}, "png": {}, "txt": {}}, ParseExts([]string{"pdf,.PNG", " txt "}))
}

func TestDeduper(t *testing.T) {
	dir := t.TempDir()
	a, b, c := filepath.Join(dir, "a.pdf"), filepath.Join(dir, "b.pdf"), filepath.Join(dir, "c.pdf")
	write(t, a, "same bytes")
	write(t, b, "same bytes")
	write(t, c, "other")

	d := NewDeduper()
	h1, dup, err := d.Check(a)
	require.NoError(t, err)
	assert.False(t, dup)
	_, dup, err = d.Check(b)
	require.NoError(t, err)
	assert.True(t, dup)
	_, dup, err = d.Check(c)
	require.NoError(t, err)
	assert.False(t, dup)

	d.Forget(h1)
	_, dup, err = d.Check(b)
	require.NoError(t, err)
	assert.False(t, dup)

	_, _, err = d.Check(filepath.Join(dir, "missing.pdf"))
	assert.Error(t, err)
}

func TestStartWatcher_InitialScanAndNewFiles(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "existing.pdf")
	write(t, existing, "x")
	write(t, filepath.Join(dir, "ignored.xlsx"), "x")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{dir}, InitialScan: true, Debounce: 20 * time.Millisecond}, nil)
	require.NoError(t, err)

	select {
	case p := <-events:
		assert.Equal(t, existing, p)
	case <-time.After(2 * time.Second):
		t.Fatal("no initial scan event")
	}

	fresh := filepath.Join(dir, "fresh.txt")
	write(t, fresh, "Amount Due: $10.00")
	select {
	case p := <-events:
		assert.Equal(t, fresh, p)
	case <-time.After(3 * time.Second):
		t.Fatal("no event for new file")
	}

	cancel()
	for range events {
	}
}

func TestStartWatcher_NoRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{}, nil)
	assert.Error(t, err)
}

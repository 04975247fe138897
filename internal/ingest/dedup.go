package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"sync"
)

// HashFile returns the hex sha256 of the file's content.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Deduper remembers file contents already handed to the pipeline so repeated write
// events for the same bytes are processed once.
type Deduper struct {
	mu   sync.Mutex
	seen map[string]string // hash -> first path
}

func NewDeduper() *Deduper {
	return &Deduper{seen: map[string]string{}}
}

// Check hashes path and reports whether the same content was seen before. The first
// call for a given content records it.
func (d *Deduper) Check(path string) (hash string, dup bool, err error) {
	hash, err = HashFile(path)
	if err != nil {
		return "", false, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[hash]; ok {
		return hash, true, nil
	}
	d.seen[hash] = path
	return hash, false, nil
}

// Forget drops a hash so the content can be processed again (e.g. after a failure).
func (d *Deduper) Forget(hash string) {
	d.mu.Lock()
	delete(d.seen, hash)
	d.mu.Unlock()
}

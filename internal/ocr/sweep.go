package ocr

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SweepTemp removes ocr_*.png files older than maxAge from dir. The
// extractor cleans up after itself; this catches files orphaned by a crash
// mid-extraction. Returns how many files were removed.
func SweepTemp(dir string, maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, tempFilePrefix) || !strings.HasSuffix(name, ".png") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err == nil {
			removed++
		}
	}
	return removed, nil
}

package sys

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"hoopla/pkg/utils/binary"
)

const MB = 1000.0 * 1000.0

// EnsureDir creates dirname and its parents when missing. Existing content is kept.
func EnsureDir(dirname string) error {
	return os.MkdirAll(dirname, 0o755)
}

// WriteFileAtomic streams write into a temp file next to filename, syncs it and
// renames it over filename. Readers see either the old file or the new one.
// It returns the number of bytes written.
func WriteFileAtomic(filename string, write func(w io.Writer) error) (n int, err error) {
	dir := filepath.Dir(filename)
	f, err := os.CreateTemp(dir, "."+filepath.Base(filename)+".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmpName)
		}
	}()

	bw := binary.NewBufferedWriteCloser(f)
	if err = write(bw); err != nil {
		return 0, err
	}
	if err = bw.Flush(); err != nil {
		return 0, fmt.Errorf("flush %s: %w", tmpName, err)
	}
	if err = f.Sync(); err != nil {
		return 0, fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err = f.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err = os.Rename(tmpName, filename); err != nil {
		return 0, fmt.Errorf("rename %s: %w", filename, err)
	}
	return bw.Total(), nil
}

func LogMemoryUsage(logger *slog.Logger) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	logger.Debug("memory usage",
		"alloc_mb", float64(memStats.Alloc)/MB,
		"heap_inuse_mb", float64(memStats.HeapInuse)/MB,
	)
}

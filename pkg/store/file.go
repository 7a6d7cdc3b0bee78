package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"hoopla/pkg/indexer"
	"hoopla/pkg/logger"
	"hoopla/pkg/utils/sys"
)

const fileExt = ".bin"

// FileStore keeps one artifact file per table under dir.
type FileStore struct {
	dir string
	log *slog.Logger
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{
		dir: dir,
		log: logger.WithComponent("store").With("backend", "file", "dir", dir),
	}
}

func (s *FileStore) Path(artifact string) string {
	return filepath.Join(s.dir, artifact+fileExt)
}

// Save drops the current manifest, replaces each table file atomically and
// writes the new manifest last. An interrupted save leaves no manifest, which
// loads report as an absent snapshot.
func (s *FileStore) Save(snap *indexer.Snapshot) error {
	if err := sys.EnsureDir(s.dir); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	artifacts, err := EncodeSnapshot(snap)
	if err != nil {
		return err
	}

	if err := os.Remove(s.Path(ArtifactManifest)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove old manifest: %w", err)
	}

	size := 0
	for _, a := range artifacts {
		n, err := sys.WriteFileAtomic(s.Path(a.Name), func(w io.Writer) error {
			_, err := w.Write(a.Data)
			return err
		})
		if err != nil {
			return fmt.Errorf("write %s: %w", a.Name, err)
		}
		size += n
	}

	s.log.Info("snapshot saved", "build_id", snap.BuildID, "bytes", size)
	return nil
}

func (s *FileStore) Load() (*indexer.Snapshot, error) {
	snap, manifest, err := DecodeSnapshot(func(name string) ([]byte, error) {
		b, err := os.ReadFile(s.Path(name))
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, s.Path(name))
		}
		return b, err
	})
	if err != nil {
		s.log.Debug("snapshot load failed", "err", err, "cause", errors.Unwrap(err))
		return nil, err
	}

	s.log.Debug("snapshot loaded", "build_id", manifest.BuildID, "created_at", manifest.CreatedAt, "docs", manifest.Docs)
	return snap, nil
}

package wardrobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// FileBackend keeps the wardrobe in a single JSON document.
type FileBackend struct {
	Path string
	// LegacyPath is read once when Path does not exist yet and its content is
	// copied over to Path. The legacy file itself is left in place.
	LegacyPath string

	logger *zap.Logger
}

// NewFileBackend creates a backend writing to path.
func NewFileBackend(path, legacyPath string, logger *zap.Logger) *FileBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileBackend{
		Path:       strings.TrimSpace(path),
		LegacyPath: strings.TrimSpace(legacyPath),
		logger:     logger,
	}
}

var _ Backend = (*FileBackend)(nil)

func (b *FileBackend) Load(_ context.Context) (*Snapshot, error) {
	if b.Path == "" {
		return nil, errors.New("wardrobe file path is not configured")
	}

	data, err := os.ReadFile(b.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return b.migrate()
	}
	if err != nil {
		return nil, fmt.Errorf("reading wardrobe file %q: %w", b.Path, err)
	}

	return decodeSnapshot(data, b.Path)
}

func (b *FileBackend) Save(_ context.Context, s *Snapshot) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding wardrobe: %w", err)
	}
	return writeFileAtomic(b.Path, data)
}

// migrate copies the legacy document to the primary location.
func (b *FileBackend) migrate() (*Snapshot, error) {
	if b.LegacyPath == "" || b.LegacyPath == b.Path {
		return nil, nil
	}

	data, err := os.ReadFile(b.LegacyPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading legacy wardrobe file %q: %w", b.LegacyPath, err)
	}

	snap, err := decodeSnapshot(data, b.LegacyPath)
	if err != nil || snap == nil {
		return nil, err
	}

	if err := writeFileAtomic(b.Path, data); err != nil {
		return nil, fmt.Errorf("migrating legacy wardrobe: %w", err)
	}

	b.logger.Info("migrated legacy wardrobe file",
		zap.String("from", b.LegacyPath),
		zap.String("to", b.Path),
		zap.Int("items", snap.Len()),
	)

	return snap, nil
}

func decodeSnapshot(data []byte, source string) (*Snapshot, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding wardrobe %q: %w", source, err)
	}
	return &snap, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

package datastore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/danthegoodman1/pqbridge/parquet_metadata"
)

type (
	DiskDataStore struct {
		rootPath string
	}
)

func NewDiskDataStore(rootPath string) (*DiskDataStore, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("error in os.MkdirAll: %w", err)
	}
	dds := &DiskDataStore{
		rootPath: rootPath,
	}

	return dds, nil
}

func (dds *DiskDataStore) filePath(key string) (string, error) {
	k, err := CleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(dds.rootPath, filepath.FromSlash(k)), nil
}

// Put writes through a temp file so readers never see a partial file.
func (dds *DiskDataStore) Put(_ context.Context, key string, b []byte) error {
	p, err := dds.filePath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("error in os.MkdirAll: %w", err)
	}
	f, err := os.CreateTemp(filepath.Dir(p), ".tmp-*")
	if err != nil {
		return fmt.Errorf("error in os.CreateTemp: %w", err)
	}
	defer os.Remove(f.Name())
	if _, err := f.Write(b); err != nil {
		f.Close()
		return fmt.Errorf("error in f.Write: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("error in f.Close: %w", err)
	}
	if err := os.Rename(f.Name(), p); err != nil {
		return fmt.Errorf("error in os.Rename: %w", err)
	}
	logger.Debug().Str("key", key).Int("bytes", len(b)).Msg("wrote file to disk")
	return nil
}

func (dds *DiskDataStore) Get(_ context.Context, key string) ([]byte, error) {
	p, err := dds.filePath(key)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("error in os.ReadFile: %w", err)
	}
	return b, nil
}

func (dds *DiskDataStore) Inspect(_ context.Context, key string) (*parquet_metadata.Summary, error) {
	p, err := dds.filePath(key)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return parquet_metadata.InspectPath(p)
}

func (dds *DiskDataStore) Shutdown(context.Context) error {
	return nil
}

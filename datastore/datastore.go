package datastore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/danthegoodman1/pqbridge/gologger"
	"github.com/danthegoodman1/pqbridge/parquet_metadata"
	"github.com/danthegoodman1/pqbridge/utils"
)

var (
	logger = gologger.NewComponentLogger("datastore")

	ErrNotFound    = errors.New("file not found")
	ErrInvalidKey  = utils.PermError("invalid file key")
	ErrUnknownKind = errors.New("unknown datastore kind")
)

type (
	// DataStore holds whole Parquet files under slash separated keys like
	// ns=events/year=2023/2Fo0H7yG5M9xWmNn3XnP2kqBGZ3.parquet
	DataStore interface {
		Put(ctx context.Context, key string, b []byte) error
		// Get returns ErrNotFound when nothing is stored under key.
		Get(ctx context.Context, key string) ([]byte, error)
		// Inspect reads only the footer of the stored file.
		Inspect(ctx context.Context, key string) (*parquet_metadata.Summary, error)

		Shutdown(ctx context.Context) error
	}
)

// New builds the datastore named by kind, "disk" or "s3".
func New(kind string) (DataStore, error) {
	switch strings.ToLower(kind) {
	case "", "disk":
		return NewDiskDataStore(utils.DISK_ROOT)
	case "s3":
		return NewS3DataStore(S3Config{
			Bucket:   utils.S3_BUCKET_NAME,
			Region:   utils.AWS_DEFAULT_REGION,
			Endpoint: utils.S3_ENDPOINT,
		})
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
}

// CleanKey normalizes key and refuses anything that would escape the store root.
func CleanKey(key string) (string, error) {
	if strings.Contains(key, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	k := path.Clean("/" + key)[1:]
	if k == "" || k != strings.TrimPrefix(key, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return k, nil
}

// FileKey is where a written partition file lives.
func FileKey(namespace, partition, name string) string {
	if partition == "" {
		return fmt.Sprintf("ns=%s/%s", namespace, name)
	}
	return fmt.Sprintf("ns=%s/%s/%s", namespace, partition, name)
}

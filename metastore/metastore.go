package metastore

import (
	"context"
	"time"

	"github.com/danthegoodman1/pqbridge/gologger"
	"github.com/danthegoodman1/pqbridge/utils"
)

var (
	logger = gologger.NewComponentLogger("metastore")

	ErrColumnTypeConflict = utils.PermError("column already registered with another type")
	ErrFileExists         = utils.PermError("file already catalogued")
)

type (
	// MetaStore catalogs the files written through the service.
	MetaStore interface {
		// InsertFile records a file and registers its columns for the namespace.
		InsertFile(ctx context.Context, f File) error
		// ListFiles lists the enabled files of a namespace, newest first.
		ListFiles(ctx context.Context, namespace string) ([]File, error)
		ListColumns(ctx context.Context, namespace string) ([]Column, error)
		// ReplaceFiles atomically records merged and disables the replaced files.
		ReplaceFiles(ctx context.Context, merged File, replaced []File) error

		Shutdown(ctx context.Context) error
	}

	File struct {
		Namespace string
		Partition string
		Name      string
		Enabled   bool
		Bytes     int64
		Rows      int64
		Columns   []Column
		// WriteID is the pqbridge.write_id stored in the file's key/value metadata.
		WriteID   string
		CreatedAt time.Time
	}

	Column struct {
		Name string
		Type string
	}
)

func (f File) ColumnNames() []string {
	names := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		names[i] = c.Name
	}
	return names
}

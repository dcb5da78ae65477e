package metastore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"github.com/danthegoodman1/pqbridge/utils"
)

const (
	uniqueViolation = "23505"

	insertFileSQL = `INSERT INTO files (namespace, part, name, enabled, num_bytes, num_rows, columns, write_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	insertColumnSQL = `INSERT INTO namespace_columns (namespace, col, col_type)
VALUES ($1, $2, $3)
ON CONFLICT (namespace, col) DO NOTHING`

	disableFilesSQL = `UPDATE files SET enabled = false WHERE namespace = $1 AND part = $2 AND name = ANY($3)`

	selectColumnTypeSQL = `SELECT col_type FROM namespace_columns WHERE namespace = $1 AND col = $2`

	listFilesSQL = `SELECT namespace, part, name, enabled, num_bytes, num_rows, columns, write_id, created_at
FROM files
WHERE namespace = $1 AND enabled
ORDER BY created_at DESC, name`

	listColumnsSQL = `SELECT col, col_type FROM namespace_columns WHERE namespace = $1 ORDER BY col`
)

type (
	CRDBMetaStore struct {
		pool       *pgxpool.Pool
		tryTimeout time.Duration
	}
)

func NewCRDBMetaStore(pool *pgxpool.Pool) *CRDBMetaStore {
	return &CRDBMetaStore{
		pool:       pool,
		tryTimeout: time.Second * 10,
	}
}

func (cms *CRDBMetaStore) InsertFile(ctx context.Context, f File) error {
	logger := zerolog.Ctx(ctx)
	err := utils.ReliableExecInTx(ctx, cms.pool, cms.tryTimeout, func(ctx context.Context, tx pgx.Tx) error {
		return insertFile(ctx, tx, f)
	})
	if err != nil {
		return fmt.Errorf("error in ReliableExecInTx: %w", err)
	}
	logger.Debug().Str("namespace", f.Namespace).Str("file", f.Name).Msg("catalogued file")
	return nil
}

func (cms *CRDBMetaStore) ReplaceFiles(ctx context.Context, merged File, replaced []File) error {
	logger := zerolog.Ctx(ctx)
	names := make([]string, len(replaced))
	for i, f := range replaced {
		if f.Namespace != merged.Namespace || f.Partition != merged.Partition {
			return utils.PermError(fmt.Sprintf("file %s is not in partition %s of %s", f.Name, merged.Partition, merged.Namespace))
		}
		names[i] = f.Name
	}
	err := utils.ReliableExecInTx(ctx, cms.pool, cms.tryTimeout, func(ctx context.Context, tx pgx.Tx) error {
		if err := insertFile(ctx, tx, merged); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, disableFilesSQL, merged.Namespace, merged.Partition, names); err != nil {
			return fmt.Errorf("error disabling files: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error in ReliableExecInTx: %w", err)
	}
	logger.Debug().Str("namespace", merged.Namespace).Str("file", merged.Name).Strs("replaced", names).Msg("replaced files")
	return nil
}

func insertFile(ctx context.Context, tx pgx.Tx, f File) error {
	_, err := tx.Exec(ctx, insertFileSQL, f.Namespace, f.Partition, f.Name, f.Enabled, f.Bytes, f.Rows, f.ColumnNames(), f.WriteID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrFileExists, f.Name)
	}
	if err != nil {
		return fmt.Errorf("error inserting file: %w", err)
	}

	for _, col := range f.Columns {
		if _, err := tx.Exec(ctx, insertColumnSQL, f.Namespace, col.Name, col.Type); err != nil {
			return fmt.Errorf("error inserting column %s: %w", col.Name, err)
		}
		var existing string
		if err := tx.QueryRow(ctx, selectColumnTypeSQL, f.Namespace, col.Name).Scan(&existing); err != nil {
			return fmt.Errorf("error selecting column %s: %w", col.Name, err)
		}
		if existing != col.Type {
			return fmt.Errorf("%w: %s is %s, not %s", ErrColumnTypeConflict, col.Name, existing, col.Type)
		}
	}
	return nil
}

func (cms *CRDBMetaStore) ListFiles(ctx context.Context, namespace string) (files []File, err error) {
	err = utils.ReliableExec(ctx, cms.pool, cms.tryTimeout, func(ctx context.Context, conn *pgxpool.Conn) error {
		files = nil
		rows, err := conn.Query(ctx, listFilesSQL, namespace)
		if err != nil {
			return fmt.Errorf("error in Query: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var (
				f       File
				colsArr pgtype.TextArray
				cols    []string
			)
			if err := rows.Scan(&f.Namespace, &f.Partition, &f.Name, &f.Enabled, &f.Bytes, &f.Rows, &colsArr, &f.WriteID, &f.CreatedAt); err != nil {
				return fmt.Errorf("error in Scan: %w", err)
			}
			if err := colsArr.AssignTo(&cols); err != nil {
				return fmt.Errorf("error in AssignTo: %w", err)
			}
			for _, c := range cols {
				f.Columns = append(f.Columns, Column{Name: c})
			}
			files = append(files, f)
		}
		return rows.Err()
	})
	return
}

func (cms *CRDBMetaStore) ListColumns(ctx context.Context, namespace string) (cols []Column, err error) {
	err = utils.ReliableExec(ctx, cms.pool, cms.tryTimeout, func(ctx context.Context, conn *pgxpool.Conn) error {
		cols = nil
		rows, err := conn.Query(ctx, listColumnsSQL, namespace)
		if err != nil {
			return fmt.Errorf("error in Query: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var c Column
			if err := rows.Scan(&c.Name, &c.Type); err != nil {
				return fmt.Errorf("error in Scan: %w", err)
			}
			cols = append(cols, c)
		}
		return rows.Err()
	})
	return
}

func (cms *CRDBMetaStore) Shutdown(context.Context) error {
	logger.Debug().Msg("closing catalog pool")
	cms.pool.Close()
	return nil
}

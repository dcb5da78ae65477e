package http_server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/danthegoodman1/pqbridge/datastore"
	"github.com/danthegoodman1/pqbridge/dynamic"
	"github.com/danthegoodman1/pqbridge/metastore"
	"github.com/danthegoodman1/pqbridge/parquet_accumulator"
	"github.com/danthegoodman1/pqbridge/partitioner"
	"github.com/danthegoodman1/pqbridge/to_parquet"
	"github.com/danthegoodman1/pqbridge/utils"
)

const NamespaceKey = "pqbridge.namespace"

type (
	InsertReqBody struct {
		RowsReqBody
		Namespace   string                      `validate:"required,excludesall=/\\"`
		Partitioner []partitioner.PartitionPlan `validate:"dive"`
	}

	InsertStats struct {
		NumRows      int64
		NumFiles     int64
		BytesWritten int64
		TimeMS       int64
		Files        []string
	}

	FileResponse struct {
		Key       string
		Partition string
		Name      string
		Bytes     int64
		Rows      int64
		Columns   []string
		WriteID   string
		CreatedAt time.Time
	}
)

var ErrCatalogDisabled = errors.New("file catalog is disabled, set CRDB_DSN to enable it")

// InsertHandler writes one Parquet file per partition of the rows and
// catalogs each of them when the catalog is enabled.
func (s *HTTPServer) InsertHandler(c *CustomContext) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second*60)
	defer cancel()

	logger := zerolog.Ctx(ctx)

	start := time.Now()

	var reqBody InsertReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return err
	}

	rows, err := reqBody.parseRows()
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}
	opts, err := reqBody.writeOptions()
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}
	opts = append(opts, to_parquet.WithKeyValue(NamespaceKey, reqBody.Namespace))

	parts, err := partitioner.Split(rows, reqBody.Partitioner)
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}

	stats := InsertStats{Files: []string{}}
	for _, part := range parts {
		writeID := utils.GenRandomID("")
		b, err := to_parquet.ToParquetBytes(part.Rows, append(opts, to_parquet.WithWriteID(writeID))...)
		if err != nil {
			return c.ConversionError(err, "error in ToParquetBytes")
		}

		fileName := fmt.Sprintf("%s.parquet", utils.GenKSortedID(""))
		key := datastore.FileKey(reqBody.Namespace, part.Path, fileName)
		if err := s.Store.Put(ctx, key, b); err != nil {
			return c.InternalError(err, "error writing file to datastore")
		}

		if s.Meta != nil {
			cols, err := catalogColumns(part.Rows)
			if err != nil {
				return c.InternalError(err, "error in catalogColumns")
			}
			err = s.Meta.InsertFile(ctx, metastore.File{
				Namespace: reqBody.Namespace,
				Partition: part.Path,
				Name:      fileName,
				Enabled:   true,
				Bytes:     int64(len(b)),
				Rows:      int64(len(part.Rows)),
				Columns:   cols,
				WriteID:   writeID,
			})
			if err != nil {
				return c.InternalError(err, "error inserting file")
			}
		}

		s.Metrics.RowsEncoded.Add(float64(len(part.Rows)))
		s.Metrics.BytesWritten.WithLabelValues(reqBody.Namespace).Add(float64(len(b)))
		logger.Debug().Str("key", key).Int("rows", len(part.Rows)).Msg("wrote partition file")
		stats.NumRows += int64(len(part.Rows))
		stats.NumFiles++
		stats.BytesWritten += int64(len(b))
		stats.Files = append(stats.Files, key)
	}

	stats.TimeMS = time.Since(start).Milliseconds()
	return c.JSON(http.StatusAccepted, stats)
}

// GetFileHandler decodes a stored file, or only its footer with ?metadata=true.
func (s *HTTPServer) GetFileHandler(c *CustomContext) error {
	ctx := c.Request().Context()
	key := c.Param("*")
	metadata, err := metadataParam(c)
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}

	if metadata {
		summary, err := s.Store.Inspect(ctx, key)
		if err != nil {
			return s.storeError(c, err, "error in Inspect")
		}
		return c.JSON(http.StatusOK, summary.ToRecord())
	}

	b, err := s.Store.Get(ctx, key)
	if err != nil {
		return s.storeError(c, err, "error in Get")
	}
	return s.renderParquet(c, b, false)
}

func (s *HTTPServer) ListFilesHandler(c *CustomContext) error {
	if s.Meta == nil {
		return c.String(http.StatusNotFound, ErrCatalogDisabled.Error())
	}
	ns := c.Param("ns")

	files, err := s.Meta.ListFiles(c.Request().Context(), ns)
	if err != nil {
		return c.InternalError(err, "error listing files")
	}

	res := make([]FileResponse, 0, len(files))
	for _, f := range files {
		res = append(res, FileResponse{
			Key:       datastore.FileKey(f.Namespace, f.Partition, f.Name),
			Partition: f.Partition,
			Name:      f.Name,
			Bytes:     f.Bytes,
			Rows:      f.Rows,
			Columns:   f.ColumnNames(),
			WriteID:   f.WriteID,
			CreatedAt: f.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, res)
}

func (s *HTTPServer) ListColumnsHandler(c *CustomContext) error {
	if s.Meta == nil {
		return c.String(http.StatusNotFound, ErrCatalogDisabled.Error())
	}
	ns := c.Param("ns")

	cols, err := s.Meta.ListColumns(c.Request().Context(), ns)
	if err != nil {
		return c.InternalError(err, "error getting columns")
	}
	return c.JSON(http.StatusOK, utils.ArrayOrEmpty(cols))
}

func (s *HTTPServer) storeError(c *CustomContext, err error, msg string) error {
	switch {
	case errors.Is(err, datastore.ErrNotFound):
		return c.String(http.StatusNotFound, err.Error())
	case errors.Is(err, datastore.ErrInvalidKey):
		return c.String(http.StatusBadRequest, err.Error())
	}
	return c.ConversionError(err, msg)
}

// catalogColumns names every column of the rows with its on-disk type.
func catalogColumns(rows dynamic.List) ([]metastore.Column, error) {
	records, err := parquet_accumulator.Records(rows)
	if err != nil {
		return nil, err
	}
	acc := parquet_accumulator.NewParquetAccumulator()
	for _, rec := range records {
		if err := acc.WriteRow(rec); err != nil {
			return nil, fmt.Errorf("error in WriteRow: %w", err)
		}
	}
	names, types := acc.GetColumnNames(), acc.GetColumnTypes()
	cols := make([]metastore.Column, len(names))
	for i := range names {
		cols[i] = metastore.Column{Name: names[i], Type: types[i]}
	}
	return cols, nil
}

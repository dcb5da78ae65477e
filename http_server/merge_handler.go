package http_server

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/danthegoodman1/pqbridge/datastore"
	"github.com/danthegoodman1/pqbridge/dynamic"
	"github.com/danthegoodman1/pqbridge/from_parquet"
	"github.com/danthegoodman1/pqbridge/metastore"
	"github.com/danthegoodman1/pqbridge/to_parquet"
	"github.com/danthegoodman1/pqbridge/utils"
)

const MergedFromKey = "pqbridge.merged_from"

type (
	MergeReqBody struct {
		Namespace string `validate:"required"`
		// The partition path, minus the leading `ns={Namespace}/`.
		//
		// Ex: `year=2022/month=12/day=30`
		Partition string
		// The max file size in bytes that will be considered for merging.
		//
		// Default 1GB.
		MaxPreMergeFileBytes *int64 `validate:"omitempty,min=1"`
		// Max number of files to merge at once.
		//
		// Default 4.
		MaxMergeFiles *int32 `validate:"omitempty,min=2"`
		// How many seconds before the merge will time out.
		//
		// Default `60`.
		MaxRuntimeSec *int64 `validate:"omitempty,min=1"`
		Compression   string
	}

	MergeStats struct {
		FilesMerged int64
		RowsMerged  int64
		// The size of the file after merging
		PostMergeBytes int64
		TimeMS         int64
		File           string
		Replaced       []string
	}
)

// MergeHandler compacts small catalogued files of one partition that share a
// column set into a single file. The replaced files are disabled in the
// catalog and left in the datastore.
func (s *HTTPServer) MergeHandler(c *CustomContext) error {
	if s.Meta == nil {
		return c.String(http.StatusNotFound, ErrCatalogDisabled.Error())
	}

	var reqBody MergeReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return err
	}
	codec, err := to_parquet.ParseCompression(reqBody.Compression)
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second*time.Duration(utils.Deref(reqBody.MaxRuntimeSec, 60)))
	defer cancel()

	logger := zerolog.Ctx(ctx)

	logger.Debug().Msg("running merge handler")

	start := time.Now()

	files, err := s.Meta.ListFiles(ctx, reqBody.Namespace)
	if err != nil {
		return c.InternalError(err, "error getting files for merging")
	}
	toMerge := selectMergeFiles(files, reqBody.Partition, utils.Deref(reqBody.MaxPreMergeFileBytes, 1_000_000_000), int(utils.Deref(reqBody.MaxMergeFiles, 4)))
	if len(toMerge) < 2 {
		logger.Debug().Msg("not enough files to merge")
		return c.NoContent(http.StatusNoContent)
	}

	res := MergeStats{}
	var rows dynamic.List
	for _, f := range toMerge {
		st := time.Now()
		key := datastore.FileKey(f.Namespace, f.Partition, f.Name)
		b, err := s.Store.Get(ctx, key)
		if err != nil {
			return c.InternalError(err, "error reading file "+key)
		}
		fileRows, err := from_parquet.FromParquetBytes(b)
		if err != nil {
			return c.ConversionError(err, "error decoding file "+key)
		}
		rows = append(rows, fileRows...)
		res.FilesMerged++
		res.Replaced = append(res.Replaced, key)
		logger.Debug().Str("fileName", f.Name).Msgf("read file to merge in %s", time.Since(st))
	}
	res.RowsMerged = int64(len(rows))

	writeID := utils.GenRandomID("")
	b, err := to_parquet.ToParquetBytes(rows,
		to_parquet.WithCompression(codec),
		to_parquet.WithKeyValue(NamespaceKey, reqBody.Namespace),
		to_parquet.WithKeyValue(MergedFromKey, strings.Join(res.Replaced, ",")),
		to_parquet.WithWriteID(writeID),
	)
	if err != nil {
		return c.ConversionError(err, "error in ToParquetBytes")
	}
	res.PostMergeBytes = int64(len(b))

	fileName := fmt.Sprintf("%s.parquet", utils.GenKSortedID(""))
	res.File = datastore.FileKey(reqBody.Namespace, reqBody.Partition, fileName)
	if err := s.Store.Put(ctx, res.File, b); err != nil {
		return c.InternalError(err, "error writing merged file")
	}
	s.Metrics.RowsDecoded.Add(float64(res.RowsMerged))
	s.Metrics.RowsEncoded.Add(float64(res.RowsMerged))
	s.Metrics.BytesWritten.WithLabelValues(reqBody.Namespace).Add(float64(res.PostMergeBytes))

	cols, err := catalogColumns(rows)
	if err != nil {
		return c.InternalError(err, "error in catalogColumns")
	}
	err = s.Meta.ReplaceFiles(ctx, metastore.File{
		Namespace: reqBody.Namespace,
		Partition: reqBody.Partition,
		Name:      fileName,
		Enabled:   true,
		Bytes:     res.PostMergeBytes,
		Rows:      res.RowsMerged,
		Columns:   cols,
		WriteID:   writeID,
	}, toMerge)
	if err != nil {
		return c.InternalError(err, "error updating meta store")
	}

	res.TimeMS = time.Since(start).Milliseconds()
	logger.Debug().Interface("response", res).Msg("merged files")

	return c.JSON(http.StatusOK, res)
}

// selectMergeFiles picks up to maxFiles small files of the partition that have
// the same columns as the first eligible file.
func selectMergeFiles(files []metastore.File, partition string, maxBytes int64, maxFiles int) []metastore.File {
	var (
		selected []metastore.File
		colSet   string
	)
	for _, f := range files {
		if f.Partition != partition || f.Bytes > maxBytes {
			continue
		}
		names := f.ColumnNames()
		sort.Strings(names)
		set := strings.Join(names, "\x00")
		if len(selected) == 0 {
			colSet = set
		} else if set != colSet {
			continue
		}
		selected = append(selected, f)
		if len(selected) == maxFiles {
			break
		}
	}
	return selected
}

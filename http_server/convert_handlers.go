package http_server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/danthegoodman1/pqbridge/dynamic"
	"github.com/danthegoodman1/pqbridge/from_parquet"
	"github.com/danthegoodman1/pqbridge/parquet_accumulator"
	"github.com/danthegoodman1/pqbridge/parquet_metadata"
	"github.com/danthegoodman1/pqbridge/to_parquet"
)

const ParquetContentType = "application/vnd.apache.parquet"

type (
	RowsReqBody struct {
		// Array of JSON objects
		Rows json.RawMessage `validate:"required_without=RowsNDJSON"`
		// Line-delimited JSON (NDJSON)
		RowsNDJSON *string
		// Turn nested objects into dotted columns
		Flatten         bool
		DateColumns     []string
		FilesizeColumns []string
		// snappy (default), none, gzip, zstd or brotli
		Compression string
		// first_row (default) or union
		Strategy  string `validate:"omitempty,oneof=first_row union"`
		KeyValues map[string]string
	}
)

var ErrEmptyBody = errors.New("empty request body")

func (b *RowsReqBody) parseRows() (dynamic.List, error) {
	opts := dynamic.ParseOptions{
		Flatten:         b.Flatten,
		DateColumns:     b.DateColumns,
		FilesizeColumns: b.FilesizeColumns,
	}
	if len(b.Rows) > 0 {
		return dynamic.ParseRows(b.Rows, opts)
	}
	return dynamic.ParseNDJSON([]byte(*b.RowsNDJSON), opts)
}

func (b *RowsReqBody) writeOptions() ([]to_parquet.Option, error) {
	codec, err := to_parquet.ParseCompression(b.Compression)
	if err != nil {
		return nil, err
	}
	opts := []to_parquet.Option{to_parquet.WithCompression(codec)}
	if b.Strategy == "union" {
		opts = append(opts, to_parquet.WithStrategy(parquet_accumulator.UnionStrategy{}))
	}

	keys := make([]string, 0, len(b.KeyValues))
	for k := range b.KeyValues {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		opts = append(opts, to_parquet.WithKeyValue(k, b.KeyValues[k]))
	}
	return opts, nil
}

// FromParquetHandler decodes a Parquet body into JSON rows, or into the file's
// metadata record with ?metadata=true.
func (s *HTTPServer) FromParquetHandler(c *CustomContext) error {
	defer c.Request().Body.Close()
	metadata, err := metadataParam(c)
	if err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}

	b, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.InternalError(err, "error reading body")
	}
	if len(b) == 0 {
		return c.String(http.StatusBadRequest, ErrEmptyBody.Error())
	}

	return s.renderParquet(c, b, metadata)
}

// ToParquetHandler encodes JSON rows into a Parquet file.
func (s *HTTPServer) ToParquetHandler(c *CustomContext) error {
	var reqBody RowsReqBody
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

	b, err := to_parquet.ToParquetBytes(rows, opts...)
	if err != nil {
		return c.ConversionError(err, "error in ToParquetBytes")
	}
	s.Metrics.RowsEncoded.Add(float64(len(rows)))
	return c.Blob(http.StatusOK, ParquetContentType, b)
}

func metadataParam(c *CustomContext) (bool, error) {
	m := c.QueryParam("metadata")
	if m == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(m)
	if err != nil {
		return false, fmt.Errorf("invalid metadata param %q", m)
	}
	return v, nil
}

func (s *HTTPServer) renderParquet(c *CustomContext, b []byte, metadata bool) error {
	if metadata {
		summary, err := parquet_metadata.Inspect(b)
		if err != nil {
			return c.ConversionError(err, "error in Inspect")
		}
		return c.JSON(http.StatusOK, summary.ToRecord())
	}

	rows, err := from_parquet.FromParquetBytes(b)
	if err != nil {
		return c.ConversionError(err, "error in FromParquetBytes")
	}
	if rows == nil {
		rows = dynamic.List{}
	}
	s.Metrics.RowsDecoded.Add(float64(len(rows)))
	return c.JSON(http.StatusOK, rows)
}

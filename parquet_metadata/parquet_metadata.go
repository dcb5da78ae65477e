package parquet_metadata

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/source"

	"github.com/danthegoodman1/pqbridge/gologger"
	"github.com/danthegoodman1/pqbridge/labeled"
	"github.com/danthegoodman1/pqbridge/parquet_schema"
)

var logger = gologger.NewComponentLogger("parquet_metadata")

const openLabel = "Could not read Parquet file"

var (
	magic = []byte("PAR1")

	ErrBadMagic      = errors.New("file does not start and end with PAR1")
	ErrFooterSize    = errors.New("footer length exceeds file size")
	ErrMalformedTree = errors.New("schema element list does not form a tree")
	ErrReadOnly      = errors.New("in-memory parquet file is read only")
)

type (
	// Summary is the descriptive view of a file footer.
	Summary struct {
		Version   int32
		Creator   string
		NumRows   int64
		KeyValues []KeyValue
		Schema    *parquet_schema.Group
		RowGroups []RowGroup
	}

	KeyValue struct {
		Key   string
		Value string
	}

	RowGroup struct {
		NumRows       int64
		TotalByteSize int64
	}
)

// Inspect reads the footer of an in-memory file.
func Inspect(b []byte) (*Summary, error) {
	return InspectFile(newByteFile(b))
}

// InspectPath reads the footer of a local file without loading the rest of it.
func InspectPath(path string) (*Summary, error) {
	pf, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, labeled.Wrap(labeled.ReaderOpenFailure, openLabel, err)
	}
	defer pf.Close()
	return InspectFile(pf)
}

// InspectFile reads the footer of any seekable parquet source, such as an S3
// object reader.
func InspectFile(pf source.ParquetFile) (*Summary, error) {
	if err := checkFooter(pf); err != nil {
		return nil, labeled.Wrap(labeled.ReaderOpenFailure, openLabel, err)
	}

	pr := &reader.ParquetReader{PFile: pf}
	if err := pr.ReadFooter(); err != nil {
		return nil, labeled.Wrap(labeled.ReaderOpenFailure, openLabel, fmt.Errorf("error in ReadFooter: %w", err))
	}

	s, err := summarize(pr.Footer)
	if err != nil {
		return nil, labeled.Wrap(labeled.ReaderOpenFailure, openLabel, err)
	}
	return s, nil
}

// checkFooter verifies both magic markers and that the footer length fits in
// the file, before any footer sized buffer gets allocated.
func checkFooter(pf source.ParquetFile) error {
	size, err := pf.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("error seeking to end: %w", err)
	}
	if size < 12 {
		return ErrBadMagic
	}

	head := make([]byte, 4)
	if _, err := pf.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("error seeking to start: %w", err)
	}
	if _, err := io.ReadFull(pf, head); err != nil {
		return fmt.Errorf("error reading header: %w", err)
	}

	tail := make([]byte, 8)
	if _, err := pf.Seek(-8, io.SeekEnd); err != nil {
		return fmt.Errorf("error seeking to footer: %w", err)
	}
	if _, err := io.ReadFull(pf, tail); err != nil {
		return fmt.Errorf("error reading footer length: %w", err)
	}

	if !bytes.Equal(head, magic) || !bytes.Equal(tail[4:], magic) {
		return ErrBadMagic
	}
	footerLen := int64(binary.LittleEndian.Uint32(tail[:4]))
	if footerLen > size-12 {
		return ErrFooterSize
	}
	logger.Debug().Str("fileSize", humanize.Bytes(uint64(size))).Int64("footerBytes", footerLen).Msg("inspecting parquet footer")
	return nil
}

func summarize(fm *parquet.FileMetaData) (*Summary, error) {
	root, err := buildTree(fm.GetSchema())
	if err != nil {
		return nil, err
	}

	s := &Summary{
		Version:   fm.GetVersion(),
		Creator:   fm.GetCreatedBy(),
		NumRows:   fm.GetNumRows(),
		KeyValues: make([]KeyValue, 0, len(fm.GetKeyValueMetadata())),
		Schema:    root,
		RowGroups: make([]RowGroup, 0, len(fm.GetRowGroups())),
	}
	for _, kv := range fm.GetKeyValueMetadata() {
		s.KeyValues = append(s.KeyValues, KeyValue{Key: kv.GetKey(), Value: kv.GetValue()})
	}
	for _, rg := range fm.GetRowGroups() {
		s.RowGroups = append(s.RowGroups, RowGroup{NumRows: rg.GetNumRows(), TotalByteSize: rg.GetTotalByteSize()})
	}
	return s, nil
}

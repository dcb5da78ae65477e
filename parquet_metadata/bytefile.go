package parquet_metadata

import (
	"bytes"

	"github.com/xitongsys/parquet-go/source"
)

// byteFile serves an in-memory file through the source.ParquetFile interface
// the footer reader expects.
type byteFile struct {
	*bytes.Reader
	b []byte
}

func newByteFile(b []byte) *byteFile {
	return &byteFile{Reader: bytes.NewReader(b), b: b}
}

func (f *byteFile) Open(string) (source.ParquetFile, error) {
	return newByteFile(f.b), nil
}

func (f *byteFile) Create(string) (source.ParquetFile, error) {
	return nil, ErrReadOnly
}

func (f *byteFile) Write([]byte) (int, error) {
	return 0, ErrReadOnly
}

func (f *byteFile) Close() error {
	return nil
}

package to_parquet

import (
	"fmt"
	"strings"

	"github.com/apache/arrow/go/v17/parquet/compress"

	"github.com/danthegoodman1/pqbridge/parquet_accumulator"
)

const (
	// WriteIDKey is the key/value metadata entry carrying a unique id per written file.
	WriteIDKey = "pqbridge.write_id"

	DefaultCreatedBy = "pqbridge"
)

type (
	Option func(*config)

	keyValue struct {
		key   string
		value string
	}

	config struct {
		strategy  parquet_accumulator.SchemaStrategy
		codec     compress.Compression
		createdBy string
		keyValues []keyValue
		writeID   string
	}
)

func defaultConfig() *config {
	return &config{
		strategy:  parquet_accumulator.FirstRowStrategy{},
		codec:     compress.Codecs.Snappy,
		createdBy: DefaultCreatedBy,
	}
}

// WithStrategy replaces the default first row schema inference.
func WithStrategy(s parquet_accumulator.SchemaStrategy) Option {
	return func(c *config) {
		c.strategy = s
	}
}

func WithCompression(codec compress.Compression) Option {
	return func(c *config) {
		c.codec = codec
	}
}

func WithCreatedBy(createdBy string) Option {
	return func(c *config) {
		c.createdBy = createdBy
	}
}

// WithKeyValue adds a key/value pair to the file footer. Pairs keep the order
// they were added in.
func WithKeyValue(key, value string) Option {
	return func(c *config) {
		c.keyValues = append(c.keyValues, keyValue{key: key, value: value})
	}
}

// WithWriteID sets the pqbridge.write_id value instead of generating one.
func WithWriteID(id string) Option {
	return func(c *config) {
		c.writeID = id
	}
}

// ParseCompression maps a codec name like "zstd" to a codec. An empty name is
// the default codec.
func ParseCompression(name string) (compress.Compression, error) {
	switch strings.ToLower(name) {
	case "", "snappy":
		return compress.Codecs.Snappy, nil
	case "none", "uncompressed":
		return compress.Codecs.Uncompressed, nil
	case "gzip":
		return compress.Codecs.Gzip, nil
	case "zstd":
		return compress.Codecs.Zstd, nil
	case "brotli":
		return compress.Codecs.Brotli, nil
	}
	return compress.Codecs.Uncompressed, fmt.Errorf("unknown compression %q", name)
}

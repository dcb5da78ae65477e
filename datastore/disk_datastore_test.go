package datastore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danthegoodman1/pqbridge/dynamic"
	"github.com/danthegoodman1/pqbridge/to_parquet"
)

func TestDiskDataStore(t *testing.T) {
	ctx := context.Background()
	dds, err := NewDiskDataStore(t.TempDir())
	require.NoError(t, err)

	b, err := to_parquet.ToParquetBytes(dynamic.List{
		dynamic.RecordOf("n", dynamic.Int(1)),
		dynamic.RecordOf("n", dynamic.Int(2)),
	})
	require.NoError(t, err)

	key := FileKey("events", "year=2023", "a.parquet")
	require.NoError(t, dds.Put(ctx, key, b))

	got, err := dds.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, b, got)

	s, err := dds.Inspect(ctx, key)
	require.NoError(t, err)
	assert.EqualValues(t, 2, s.NumRows)

	_, err = dds.Get(ctx, "ns=events/missing.parquet")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = dds.Inspect(ctx, "ns=events/missing.parquet")
	assert.True(t, errors.Is(err, ErrNotFound))

	assert.NoError(t, dds.Shutdown(ctx))
}

func TestDiskDataStoreRejectsEscapes(t *testing.T) {
	dds, err := NewDiskDataStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"../x", "a/../../x", "", `a\b`} {
		err := dds.Put(context.Background(), key, []byte("x"))
		assert.True(t, errors.Is(err, ErrInvalidKey), key)
	}
}

func TestFileKey(t *testing.T) {
	assert.Equal(t, "ns=logs/day=1/f.parquet", FileKey("logs", "day=1", "f.parquet"))
	assert.Equal(t, "ns=logs/f.parquet", FileKey("logs", "", "f.parquet"))

	k, err := CleanKey("/ns=logs/f.parquet")
	require.NoError(t, err)
	assert.Equal(t, "ns=logs/f.parquet", k)
}

func TestNewUnknownKind(t *testing.T) {
	_, err := New("tape")
	assert.True(t, errors.Is(err, ErrUnknownKind))
}

package to_parquet

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v17/parquet/file"
	"github.com/apache/arrow/go/v17/parquet/schema"

	"github.com/danthegoodman1/pqbridge/labeled"
)

const lifecycleLabel = "Could not write Parquet file"

// resourceStack tracks the open writers of one file, innermost last. Closing
// anything but the innermost open writer is refused.
type resourceStack struct {
	open []string
}

func (s *resourceStack) push(name string) {
	s.open = append(s.open, name)
}

func (s *resourceStack) pop(name string) error {
	if len(s.open) == 0 || s.open[len(s.open)-1] != name {
		return labeled.Newf(labeled.WriterLifecycleFailure, lifecycleLabel,
			"cannot close %s while %v is open", name, s.open)
	}
	s.open = s.open[:len(s.open)-1]
	return nil
}

func lifecycleError(op string, err error) *labeled.Error {
	return labeled.Wrap(labeled.WriterLifecycleFailure, lifecycleLabel, fmt.Errorf("error in %s: %w", op, err))
}

// closeInto runs close and keeps the first error seen.
func closeInto(err *error, stack *resourceStack, name string, close func() error) {
	if perr := stack.pop(name); perr != nil {
		if *err == nil {
			*err = perr
		}
		return
	}
	if cerr := close(); cerr != nil && *err == nil {
		*err = lifecycleError(name+" close", cerr)
	}
}

// withFile opens a file writer over w for the duration of fn. The writer is
// closed on every path, after fn has closed everything it opened.
func withFile(w io.Writer, sc *schema.GroupNode, opts []file.WriteOption, fn func(*resourceStack, *file.Writer) error) (err error) {
	stack := &resourceStack{}
	fw := file.NewParquetWriter(w, sc, opts...)
	stack.push("file writer")
	defer closeInto(&err, stack, "file writer", fw.Close)
	return fn(stack, fw)
}

// withRowGroup appends one serial row group for the duration of fn.
func withRowGroup(stack *resourceStack, fw *file.Writer, fn func(file.SerialRowGroupWriter) error) (err error) {
	rgw := fw.AppendRowGroup()
	stack.push("row group")
	defer closeInto(&err, stack, "row group", rgw.Close)
	return fn(rgw)
}

// withColumn opens the next column of the row group for the duration of fn.
func withColumn(stack *resourceStack, rgw file.SerialRowGroupWriter, fn func(file.ColumnChunkWriter) error) (err error) {
	cw, err := rgw.NextColumn()
	if err != nil {
		return lifecycleError("NextColumn", err)
	}
	stack.push("column writer")
	defer closeInto(&err, stack, "column writer", cw.Close)
	return fn(cw)
}

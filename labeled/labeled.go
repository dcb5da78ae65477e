package labeled

import (
	"errors"
	"fmt"
)

type (
	// Kind classifies a bridge failure. Every failure of a conversion is returned
	// as exactly one *Error carrying one Kind.
	Kind string

	Error struct {
		Kind  Kind
		Label string
		Msg   string
		Err   error
	}
)

const (
	ReaderOpenFailure      Kind = "ReaderOpenFailure"
	RowDecodeFailure       Kind = "RowDecodeFailure"
	UnsignedOverflow       Kind = "UnsignedOverflow"
	UnsupportedFieldKind   Kind = "UnsupportedFieldKind"
	EmptyOrNonUniformTable Kind = "EmptyOrNonUniformTable"
	UnsupportedColumnType  Kind = "UnsupportedColumnType"
	WriterLifecycleFailure Kind = "WriterLifecycleFailure"
)

// Sentinels for errors.Is, they match any *Error of the same Kind.
var (
	ErrReaderOpen             = &Error{Kind: ReaderOpenFailure}
	ErrRowDecode              = &Error{Kind: RowDecodeFailure}
	ErrUnsignedOverflow       = &Error{Kind: UnsignedOverflow}
	ErrUnsupportedFieldKind   = &Error{Kind: UnsupportedFieldKind}
	ErrEmptyOrNonUniformTable = &Error{Kind: EmptyOrNonUniformTable}
	ErrUnsupportedColumnType  = &Error{Kind: UnsupportedColumnType}
	ErrWriterLifecycle        = &Error{Kind: WriterLifecycleFailure}
)

func New(kind Kind, label, msg string) *Error {
	return &Error{Kind: kind, Label: label, Msg: msg}
}

func Newf(kind Kind, label, format string, args ...any) *Error {
	return &Error{Kind: kind, Label: label, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches cause to a new labeled error. The cause's message becomes the
// Msg when msg is empty.
func Wrap(kind Kind, label string, cause error) *Error {
	e := &Error{Kind: kind, Label: label, Err: cause}
	if cause != nil {
		e.Msg = cause.Error()
	}
	return e
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Label
	}
	return e.Label + ": " + e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// As returns the outermost labeled error in err's chain.
func As(err error) (*Error, bool) {
	var le *Error
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}

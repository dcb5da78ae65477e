package dynamic

import (
	"time"
)

type (
	// Kind names the variant of a Value, used in error messages and schema
	// inference.
	Kind string

	// Value is a closed sum type. The unexported marker keeps other packages from
	// adding variants, so a type switch over the types below is exhaustive.
	Value interface {
		Kind() Kind
		isValue()
	}

	Null     struct{}
	Bool     bool
	Int      int64
	Float    float64
	String   string
	Binary   []byte
	Filesize int64

	Date struct {
		Time time.Time
	}

	// Error is a value that failed to materialize. It is never produced by the
	// bridge itself, where failures abort the whole call.
	Error struct {
		Err error
	}

	List []Value
)

const (
	KindNull     Kind = "nothing"
	KindBool     Kind = "bool"
	KindInt      Kind = "int"
	KindFloat    Kind = "float"
	KindString   Kind = "string"
	KindBinary   Kind = "binary"
	KindDate     Kind = "date"
	KindFilesize Kind = "filesize"
	KindError    Kind = "error"
	KindRecord   Kind = "record"
	KindList     Kind = "list"
)

func (Null) Kind() Kind     { return KindNull }
func (Bool) Kind() Kind     { return KindBool }
func (Int) Kind() Kind      { return KindInt }
func (Float) Kind() Kind    { return KindFloat }
func (String) Kind() Kind   { return KindString }
func (Binary) Kind() Kind   { return KindBinary }
func (Filesize) Kind() Kind { return KindFilesize }
func (Date) Kind() Kind     { return KindDate }
func (Error) Kind() Kind    { return KindError }
func (List) Kind() Kind     { return KindList }

func (Null) isValue()     {}
func (Bool) isValue()     {}
func (Int) isValue()      {}
func (Float) isValue()    {}
func (String) isValue()   {}
func (Binary) isValue()   {}
func (Filesize) isValue() {}
func (Date) isValue()     {}
func (Error) isValue()    {}
func (List) isValue()     {}

// NewDate normalizes t to UTC so equal instants compare equal.
func NewDate(t time.Time) Date {
	return Date{Time: t.UTC()}
}

// Epoch is 1970-01-01T00:00:00Z, the origin of every on-disk date and timestamp.
func Epoch() time.Time {
	return time.Unix(0, 0).UTC()
}

func (e Error) Error() string {
	if e.Err == nil {
		return "unknown error"
	}
	return e.Err.Error()
}

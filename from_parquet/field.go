package from_parquet

import (
	"github.com/danthegoodman1/pqbridge/decimal"
)

type (
	// Field is one on-disk value tagged by how the file declares it: the physical
	// type refined by its logical or converted annotation.
	Field interface {
		isField()
	}

	FieldNull            struct{}
	FieldBool            bool
	FieldByte            int8
	FieldUByte           uint8
	FieldShort           int16
	FieldUShort          uint16
	FieldInt             int32
	FieldUInt            uint32
	FieldLong            int64
	FieldULong           uint64
	FieldFloat           float32
	FieldDouble          float64
	FieldStr             string
	FieldBytes           []byte
	FieldDate            int32
	FieldTimestampMillis int64
	FieldTimestampMicros int64
	FieldTimestampNanos  int64
	FieldDecimal         decimal.Decimal

	// FieldGroup, FieldList and FieldMap mark nested values, which the bridge
	// does not decode.
	FieldGroup struct{ Name string }
	FieldList  struct{ Name string }
	FieldMap   struct{ Name string }
)

func (FieldNull) isField()            {}
func (FieldBool) isField()            {}
func (FieldByte) isField()            {}
func (FieldUByte) isField()           {}
func (FieldShort) isField()           {}
func (FieldUShort) isField()          {}
func (FieldInt) isField()             {}
func (FieldUInt) isField()            {}
func (FieldLong) isField()            {}
func (FieldULong) isField()           {}
func (FieldFloat) isField()           {}
func (FieldDouble) isField()          {}
func (FieldStr) isField()             {}
func (FieldBytes) isField()           {}
func (FieldDate) isField()            {}
func (FieldTimestampMillis) isField() {}
func (FieldTimestampMicros) isField() {}
func (FieldTimestampNanos) isField()  {}
func (FieldDecimal) isField()         {}
func (FieldGroup) isField()           {}
func (FieldList) isField()            {}
func (FieldMap) isField()             {}

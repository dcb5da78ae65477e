package parquet_schema

type (
	PhysicalType  int8
	Repetition    int8
	ConvertedType int8
	TimeUnit      int8
	LogicalKind   int8

	// Node is either a *Primitive leaf or a *Group.
	Node interface {
		NodeName() string
		isNode()
	}

	Primitive struct {
		Name       string
		Repetition Repetition
		Physical   PhysicalType
		// TypeLength is -1 when not set in the file.
		TypeLength int32
		// Logical is nil when the file carries no logical type annotation.
		Logical   *LogicalType
		Converted ConvertedType
		// Precision and Scale are -1 when not set.
		Precision int32
		Scale     int32
	}

	// Group only keeps its name and children.
	Group struct {
		Name     string
		Children []Node
	}

	LogicalType struct {
		Kind            LogicalKind
		Precision       int32
		Scale           int32
		BitWidth        int8
		IsSigned        bool
		Unit            TimeUnit
		IsAdjustedToUTC bool
	}
)

const (
	Boolean PhysicalType = iota
	Int32
	Int64
	Int96
	Float
	Double
	ByteArray
	FixedLenByteArray
)

const (
	Required Repetition = iota
	Optional
	Repeated
)

const (
	ConvertedNone ConvertedType = iota
	ConvertedUTF8
	ConvertedMap
	ConvertedMapKeyValue
	ConvertedList
	ConvertedEnum
	ConvertedDecimal
	ConvertedDate
	ConvertedTimeMillis
	ConvertedTimeMicros
	ConvertedTimestampMillis
	ConvertedTimestampMicros
	ConvertedUint8
	ConvertedUint16
	ConvertedUint32
	ConvertedUint64
	ConvertedInt8
	ConvertedInt16
	ConvertedInt32
	ConvertedInt64
	ConvertedJSON
	ConvertedBSON
	ConvertedInterval
)

const (
	Millis TimeUnit = iota
	Micros
	Nanos
)

const (
	LogicalString LogicalKind = iota
	LogicalMap
	LogicalList
	LogicalEnum
	LogicalDecimal
	LogicalDate
	LogicalTime
	LogicalTimestamp
	LogicalInteger
	LogicalUnknown
	LogicalJSON
	LogicalBSON
	LogicalUUID
)

func (p *Primitive) NodeName() string { return p.Name }
func (g *Group) NodeName() string     { return g.Name }
func (*Primitive) isNode()            {}
func (*Group) isNode()                {}

// NewPrimitive returns a leaf with no annotations.
func NewPrimitive(name string, rep Repetition, physical PhysicalType) *Primitive {
	return &Primitive{
		Name:       name,
		Repetition: rep,
		Physical:   physical,
		TypeLength: -1,
		Converted:  ConvertedNone,
		Precision:  -1,
		Scale:      -1,
	}
}

func (p *Primitive) WithLogical(lt LogicalType) *Primitive {
	p.Logical = &lt
	return p
}

// Leaves returns the primitive nodes of the tree in depth-first order.
func Leaves(n Node) []*Primitive {
	switch n := n.(type) {
	case *Primitive:
		return []*Primitive{n}
	case *Group:
		var out []*Primitive
		for _, c := range n.Children {
			out = append(out, Leaves(c)...)
		}
		return out
	}
	return nil
}

func (t PhysicalType) String() string {
	switch t {
	case Boolean:
		return "BOOLEAN"
	case Int32:
		return "INT32"
	case Int64:
		return "INT64"
	case Int96:
		return "INT96"
	case Float:
		return "FLOAT"
	case Double:
		return "DOUBLE"
	case ByteArray:
		return "BYTE_ARRAY"
	case FixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	}
	return "UNKNOWN"
}

func (r Repetition) String() string {
	switch r {
	case Required:
		return "REQUIRED"
	case Optional:
		return "OPTIONAL"
	case Repeated:
		return "REPEATED"
	}
	return "UNKNOWN"
}

func (u TimeUnit) String() string {
	switch u {
	case Millis:
		return "MILLISECONDS"
	case Micros:
		return "MICROSECONDS"
	case Nanos:
		return "NANOSECONDS"
	}
	return "UNKNOWN"
}

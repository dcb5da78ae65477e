package dynamic

// Record is an ordered mapping from column name to Value. Column order is
// insertion order; setting an existing column replaces its value in place.
type Record struct {
	cols []string
	vals []Value
}

func NewRecord() *Record {
	return &Record{}
}

// RecordOf builds a record from alternating column/value pairs, in order.
func RecordOf(pairs ...any) *Record {
	r := &Record{}
	for i := 0; i+1 < len(pairs); i += 2 {
		r.Set(pairs[i].(string), pairs[i+1].(Value))
	}
	return r
}

func (*Record) Kind() Kind { return KindRecord }
func (*Record) isValue()   {}

func (r *Record) Set(col string, v Value) {
	for i, c := range r.cols {
		if c == col {
			r.vals[i] = v
			return
		}
	}
	r.cols = append(r.cols, col)
	r.vals = append(r.vals, v)
}

func (r *Record) Get(col string) (Value, bool) {
	for i, c := range r.cols {
		if c == col {
			return r.vals[i], true
		}
	}
	return nil, false
}

func (r *Record) Len() int {
	return len(r.cols)
}

// Columns returns a copy of the column names in order.
func (r *Record) Columns() []string {
	out := make([]string, len(r.cols))
	copy(out, r.cols)
	return out
}

// Values returns a copy of the values in column order.
func (r *Record) Values() []Value {
	out := make([]Value, len(r.vals))
	copy(out, r.vals)
	return out
}

// Each visits columns in order until fn returns false.
func (r *Record) Each(fn func(col string, v Value) bool) {
	for i, c := range r.cols {
		if !fn(c, r.vals[i]) {
			return
		}
	}
}

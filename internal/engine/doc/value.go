package doc

import "github.com/dshills/edithistory/internal/engine/schema"

// Value is a node of a document.
type Value interface {
	// Kind returns the schema kind this value represents.
	Kind() schema.Kind

	// Clone returns a deep copy of the data. List state (selection and
	// attached payload) is not copied.
	Clone() Value
}

// Scalar values.
type (
	Bool   bool
	Int    int64
	Uint   uint64
	Float  float64
	String string
)

func (Bool) Kind() schema.Kind   { return schema.KindScalar }
func (Int) Kind() schema.Kind    { return schema.KindScalar }
func (Uint) Kind() schema.Kind   { return schema.KindScalar }
func (Float) Kind() schema.Kind  { return schema.KindScalar }
func (String) Kind() schema.Kind { return schema.KindScalar }

func (v Bool) Clone() Value   { return v }
func (v Int) Clone() Value    { return v }
func (v Uint) Clone() Value   { return v }
func (v Float) Clone() Value  { return v }
func (v String) Clone() Value { return v }

// Record is an ordered set of field values.
type Record struct {
	Fields []Value
}

// NewRecord creates a record from field values in schema order.
func NewRecord(fields ...Value) *Record {
	return &Record{Fields: fields}
}

// Kind returns schema.KindRecord.
func (*Record) Kind() schema.Kind { return schema.KindRecord }

// Clone returns a deep copy.
func (r *Record) Clone() Value {
	out := &Record{Fields: make([]Value, len(r.Fields))}
	for i, f := range r.Fields {
		out.Fields[i] = f.Clone()
	}
	return out
}

// Slot returns a mutable reference to field i.
func (r *Record) Slot(i int) *Value {
	return &r.Fields[i]
}

// Optional holds a value that may be absent.
type Optional struct {
	Value Value // nil when absent
}

// Some returns a present optional.
func Some(v Value) *Optional { return &Optional{Value: v} }

// None returns an absent optional.
func None() *Optional { return &Optional{} }

// Kind returns schema.KindOptional.
func (*Optional) Kind() schema.Kind { return schema.KindOptional }

// Present reports whether a value is held.
func (o *Optional) Present() bool { return o.Value != nil }

// Clone returns a deep copy.
func (o *Optional) Clone() Value {
	if o.Value == nil {
		return &Optional{}
	}
	return &Optional{Value: o.Value.Clone()}
}

package schema

import (
	"fmt"
	"strconv"
)

// Kind identifies the shape of a node.
type Kind uint8

const (
	KindScalar Kind = iota
	KindRecord
	KindSequence
	KindArray
	KindOptional
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindRecord:
		return "record"
	case KindSequence:
		return "sequence"
	case KindArray:
		return "array"
	case KindOptional:
		return "optional"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ScalarKind identifies a primitive representation.
type ScalarKind uint8

const (
	ScalarBool ScalarKind = iota
	ScalarInt8
	ScalarInt16
	ScalarInt32
	ScalarInt64
	ScalarUint8
	ScalarUint16
	ScalarUint32
	ScalarUint64
	ScalarFloat32
	ScalarFloat64
	ScalarString
)

var scalarNames = [...]string{
	ScalarBool:    "bool",
	ScalarInt8:    "int8",
	ScalarInt16:   "int16",
	ScalarInt32:   "int32",
	ScalarInt64:   "int64",
	ScalarUint8:   "uint8",
	ScalarUint16:  "uint16",
	ScalarUint32:  "uint32",
	ScalarUint64:  "uint64",
	ScalarFloat32: "float32",
	ScalarFloat64: "float64",
	ScalarString:  "string",
}

// String returns the Go-style name of the scalar kind.
func (s ScalarKind) String() string {
	if int(s) < len(scalarNames) {
		return scalarNames[s]
	}
	return fmt.Sprintf("ScalarKind(%d)", uint8(s))
}

// Size returns the fixed encoded size in bytes, or 0 for strings.
func (s ScalarKind) Size() int {
	switch s {
	case ScalarBool, ScalarInt8, ScalarUint8:
		return 1
	case ScalarInt16, ScalarUint16:
		return 2
	case ScalarInt32, ScalarUint32, ScalarFloat32:
		return 4
	case ScalarInt64, ScalarUint64, ScalarFloat64:
		return 8
	default:
		return 0
	}
}

// IsSigned reports whether s is a signed integer kind.
func (s ScalarKind) IsSigned() bool { return s >= ScalarInt8 && s <= ScalarInt64 }

// IsUnsigned reports whether s is an unsigned integer kind.
func (s ScalarKind) IsUnsigned() bool { return s >= ScalarUint8 && s <= ScalarUint64 }

// IsFloat reports whether s is a floating point kind.
func (s ScalarKind) IsFloat() bool { return s == ScalarFloat32 || s == ScalarFloat64 }

// Field is one member of a record type.
type Field struct {
	Index int
	Name  string
	Type  *Type
}

// F declares a record field. The index is assigned by Record.
func F(name string, t *Type) Field {
	return Field{Name: name, Type: t}
}

// Width returns a copy of the field whose type carries an index width
// override. Applies to sequences, arrays and strings.
func (f Field) Width(w Width) Field {
	f.Type = f.Type.WithIndexWidth(w)
	return f
}

// Type describes a node of a document. Types are immutable.
type Type struct {
	name       string
	kind       Kind
	scalar     ScalarKind
	fields     []Field
	index      map[string]int
	elem       *Type
	length     int
	selectable bool
	width      Width
}

func scalar(k ScalarKind) *Type {
	return &Type{kind: KindScalar, scalar: k}
}

// Scalar types.
var (
	Bool    = scalar(ScalarBool)
	Int8    = scalar(ScalarInt8)
	Int16   = scalar(ScalarInt16)
	Int32   = scalar(ScalarInt32)
	Int64   = scalar(ScalarInt64)
	Uint8   = scalar(ScalarUint8)
	Uint16  = scalar(ScalarUint16)
	Uint32  = scalar(ScalarUint32)
	Uint64  = scalar(ScalarUint64)
	Float32 = scalar(ScalarFloat32)
	Float64 = scalar(ScalarFloat64)
	String  = scalar(ScalarString)
)

// Scalar returns the shared scalar type for k.
func Scalar(k ScalarKind) *Type {
	switch k {
	case ScalarBool:
		return Bool
	case ScalarInt8:
		return Int8
	case ScalarInt16:
		return Int16
	case ScalarInt32:
		return Int32
	case ScalarInt64:
		return Int64
	case ScalarUint8:
		return Uint8
	case ScalarUint16:
		return Uint16
	case ScalarUint32:
		return Uint32
	case ScalarUint64:
		return Uint64
	case ScalarFloat32:
		return Float32
	case ScalarFloat64:
		return Float64
	case ScalarString:
		return String
	}
	panic(fmt.Sprintf("schema: unknown scalar kind %d", k))
}

// Record builds a record type. Field indices follow declaration order.
// Duplicate field names panic.
func Record(name string, fields ...Field) *Type {
	t := &Type{
		name:   name,
		kind:   KindRecord,
		fields: make([]Field, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range fields {
		if f.Type == nil {
			panic(fmt.Sprintf("schema: field %s.%s has no type", name, f.Name))
		}
		if _, dup := t.index[f.Name]; dup {
			panic(fmt.Errorf("%w: %s.%s", ErrDuplicateField, name, f.Name))
		}
		f.Index = i
		t.fields[i] = f
		t.index[f.Name] = i
	}
	return t
}

// SequenceOf builds a growable sequence type.
func SequenceOf(elem *Type) *Type {
	return &Type{kind: KindSequence, elem: elem}
}

// ArrayOf builds a fixed-size array type of n elements.
func ArrayOf(elem *Type, n int) *Type {
	if n < 0 {
		panic("schema: negative array length")
	}
	return &Type{kind: KindArray, elem: elem, length: n}
}

// OptionalOf builds an optional type.
func OptionalOf(elem *Type) *Type {
	return &Type{kind: KindOptional, elem: elem}
}

func (t *Type) clone() *Type {
	c := *t
	return &c
}

// Selectable returns a copy of a sequence or array type that carries a
// selection set.
func (t *Type) Selectable() *Type {
	if !t.IsSequence() {
		panic(fmt.Sprintf("schema: %s cannot be selectable", t))
	}
	c := t.clone()
	c.selectable = true
	return c
}

// WithIndexWidth returns a copy of t whose indices (or string lengths) use w.
func (t *Type) WithIndexWidth(w Width) *Type {
	c := t.clone()
	c.width = w
	return c
}

// Kind returns the node kind.
func (t *Type) Kind() Kind { return t.kind }

// ScalarKind returns the scalar representation. Only meaningful for scalars.
func (t *Type) ScalarKind() ScalarKind { return t.scalar }

// Name returns the record name, or the type expression for other kinds.
func (t *Type) Name() string {
	if t.kind == KindRecord {
		return t.name
	}
	return t.String()
}

// IsRecord reports whether t is a record.
func (t *Type) IsRecord() bool { return t.kind == KindRecord }

// IsSequence reports whether t is a list (growable or fixed).
func (t *Type) IsSequence() bool { return t.kind == KindSequence || t.kind == KindArray }

// IsGrowable reports whether t is a growable sequence.
func (t *Type) IsGrowable() bool { return t.kind == KindSequence }

// IsSelectable reports whether t carries a selection set.
func (t *Type) IsSelectable() bool { return t.selectable }

// ElemType returns the element type of lists and optionals.
func (t *Type) ElemType() *Type { return t.elem }

// Len returns the fixed length of an array.
func (t *Type) Len() int { return t.length }

// FieldCount returns the number of fields of a record.
func (t *Type) FieldCount() int { return len(t.fields) }

// FieldAt returns the i-th field of a record.
func (t *Type) FieldAt(i int) Field { return t.fields[i] }

// Fields returns the fields of a record in declaration order.
func (t *Type) Fields() []Field {
	out := make([]Field, len(t.fields))
	copy(out, t.fields)
	return out
}

// FieldIndex returns the index of the named field.
func (t *Type) FieldIndex(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// IndexWidthOr returns the width used to encode indices into (and counts of)
// this node. def is the ledger-wide default for growable sequences and
// strings. Encoder and decoder must both call this with the same def.
func (t *Type) IndexWidthOr(def Width) Width {
	if t.width != WidthDefault {
		return t.width
	}
	if t.kind == KindArray {
		return WidthFor(uint64(t.length))
	}
	if def == WidthDefault {
		return DefaultSequenceWidth
	}
	return def
}

// FieldWidth returns the width used to encode a field index of a record.
func (t *Type) FieldWidth() Width {
	return WidthFor(uint64(len(t.fields)))
}

// String renders t as a type expression.
func (t *Type) String() string {
	switch t.kind {
	case KindScalar:
		return t.scalar.String()
	case KindRecord:
		return t.name
	case KindSequence:
		return "[]" + t.elem.String()
	case KindArray:
		return "[" + strconv.Itoa(t.length) + "]" + t.elem.String()
	case KindOptional:
		return "?" + t.elem.String()
	}
	return "invalid"
}

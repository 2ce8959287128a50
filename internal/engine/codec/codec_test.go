package codec

import (
	"errors"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dshills/edithistory/internal/engine/doc"
	"github.com/dshills/edithistory/internal/engine/schema"
)

var (
	itemType = schema.Record("Item",
		schema.F("id", schema.Int32),
		schema.F("name", schema.String),
		schema.F("tags", schema.SequenceOf(schema.String)),
		schema.F("score", schema.OptionalOf(schema.Float64)),
		schema.F("flags", schema.ArrayOf(schema.Bool, 3)),
	)
	rootType = schema.Record("Root",
		schema.F("items", schema.SequenceOf(itemType).Selectable()),
	)
)

func newItem(id int32, name string, score *float64, tags ...string) *doc.Record {
	tv := make([]doc.Value, len(tags))
	for i, s := range tags {
		tv[i] = doc.String(s)
	}
	opt := doc.None()
	if score != nil {
		opt = doc.Some(doc.Float(*score))
	}
	return doc.NewRecord(
		doc.Int(id),
		doc.String(name),
		doc.NewList(tv...),
		opt,
		doc.NewList(doc.Bool(false), doc.Bool(true), doc.Bool(false)),
	)
}

func TestBufferIndexWidths(t *testing.T) {
	tests := []struct {
		name  string
		width schema.Width
		value int
		size  int
	}{
		{"width6", schema.Width6, 63, 1},
		{"width8", schema.Width8, 255, 1},
		{"width16", schema.Width16, 65535, 2},
		{"width32", schema.Width32, 70000, 4},
		{"width64", schema.Width64, 1 << 40, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewBuffer(nil)
			w.Index(tt.width, tt.value)
			if w.Len() != tt.size {
				t.Errorf("Len() = %d, want %d", w.Len(), tt.size)
			}
			r := NewReader(w.Bytes())
			if got := r.Index(tt.width); got != tt.value {
				t.Errorf("Index() = %d, want %d", got, tt.value)
			}
			if !r.Done() {
				t.Error("reader should be exhausted")
			}
		})
	}
}

func TestBufferIndexOverflow(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrIndexOverflow) {
			t.Errorf("recover() = %v, want ErrIndexOverflow", r)
		}
	}()
	NewBuffer(nil).Index(schema.Width8, 256)
}

func TestReaderTruncated(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrTruncated) {
			t.Errorf("recover() = %v, want ErrTruncated", r)
		}
	}()
	NewReader([]byte{1, 2}).Uint(4)
}

func TestReaderIntSignExtends(t *testing.T) {
	tests := []struct {
		size int
		v    int64
	}{
		{1, -1},
		{1, math.MinInt8},
		{2, -300},
		{4, math.MinInt32},
		{8, math.MinInt64},
		{8, math.MaxInt64},
	}

	for _, tt := range tests {
		w := NewBuffer(nil)
		w.Uint(tt.size, uint64(tt.v))
		if got := NewReader(w.Bytes()).Int(tt.size); got != tt.v {
			t.Errorf("Int(%d) = %d, want %d", tt.size, got, tt.v)
		}
	}
}

func TestScalarRoundTrip(t *testing.T) {
	c := New(schema.WidthDefault)
	tests := []struct {
		name string
		t    *schema.Type
		v    doc.Value
		size int
	}{
		{"bool", schema.Bool, doc.Bool(true), 1},
		{"int8", schema.Int8, doc.Int(-7), 1},
		{"int16", schema.Int16, doc.Int(-30000), 2},
		{"int64", schema.Int64, doc.Int(math.MinInt64), 8},
		{"uint16", schema.Uint16, doc.Uint(65535), 2},
		{"uint64", schema.Uint64, doc.Uint(math.MaxUint64), 8},
		{"float32", schema.Float32, doc.Float(float32(1.25)), 4},
		{"float64", schema.Float64, doc.Float(math.Pi), 8},
		{"string", schema.String, doc.String("héllo"), 4 + len("héllo")},
		{"empty string", schema.String, doc.String(""), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewBuffer(nil)
			c.WriteValue(w, tt.t, tt.v)
			if w.Len() != tt.size {
				t.Errorf("encoded size = %d, want %d", w.Len(), tt.size)
			}
			got := c.ReadValue(NewReader(w.Bytes()), tt.t)
			if !doc.Equal(got, tt.v) {
				t.Errorf("ReadValue() = %v, want %v", got, tt.v)
			}
		})
	}
}

func TestDefaultWidthAppliesToStrings(t *testing.T) {
	w := NewBuffer(nil)
	New(schema.Width8).WriteValue(w, schema.String, doc.String("abc"))
	if w.Len() != 4 {
		t.Errorf("encoded size = %d, want 4", w.Len())
	}

	w = NewBuffer(nil)
	New(schema.Width8).WriteValue(w, schema.String.WithIndexWidth(schema.Width16), doc.String("abc"))
	if w.Len() != 5 {
		t.Errorf("override encoded size = %d, want 5", w.Len())
	}
}

func TestRecordRoundTrip(t *testing.T) {
	c := New(schema.Width16)
	score := 2.5
	root := doc.NewRecord(doc.NewList(
		newItem(1, "one", &score, "a", "b"),
		newItem(-2, "two", nil),
	))

	w := NewBuffer(nil)
	c.WriteValue(w, rootType, root)
	r := NewReader(w.Bytes())
	got := c.ReadValue(r, rootType)
	if !r.Done() {
		t.Errorf("Remaining() = %d after read, want 0", r.Remaining())
	}
	if !doc.Equal(got, root) {
		t.Errorf("ReadValue() = %s, want %s", doc.Format(rootType, got), doc.Format(rootType, root))
	}
}

func TestStateCarriesSelection(t *testing.T) {
	c := New(schema.WidthDefault)
	items := doc.NewList(newItem(1, "a", nil), newItem(2, "b", nil), newItem(3, "c", nil))
	items.Select(2, 0)
	root := doc.NewRecord(items)

	plain := NewBuffer(nil)
	c.WriteValue(plain, rootType, root)
	state := NewBuffer(nil)
	c.WriteState(state, rootType, root)
	if want := plain.Len() + 4*3; state.Len() != want {
		t.Errorf("state size = %d, want %d", state.Len(), want)
	}

	got := c.ReadState(NewReader(state.Bytes()), rootType).(*doc.Record)
	sel := got.Fields[0].(*doc.List).Selection()
	if len(sel) != 2 || sel[0] != 2 || sel[1] != 0 {
		t.Errorf("Selection() = %v, want [2 0]", sel)
	}

	got = c.ReadValue(NewReader(plain.Bytes()), rootType).(*doc.Record)
	if n := got.Fields[0].(*doc.List).SelectionLen(); n != 0 {
		t.Errorf("plain SelectionLen() = %d, want 0", n)
	}
}

func TestValueRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("ReadState inverts WriteState", prop.ForAll(
		func(ids []int32, names []string, score float64, picks []uint8) bool {
			elems := make([]doc.Value, len(ids))
			for i, id := range ids {
				name := ""
				if i < len(names) {
					name = names[i]
				}
				var sp *float64
				if id%2 == 0 {
					sp = &score
				}
				elems[i] = newItem(id, name, sp, names...)
			}
			items := doc.NewList(elems...)
			if len(elems) > 0 {
				seen := map[int]bool{}
				for _, p := range picks {
					i := int(p) % len(elems)
					if !seen[i] {
						seen[i] = true
						items.Select(i)
					}
				}
			}
			root := doc.NewRecord(items)

			for _, width := range []schema.Width{schema.Width8, schema.Width32, schema.Width64} {
				c := New(width)
				w := NewBuffer([]byte{0})
				c.WriteState(w, rootType, root)
				r := NewReader(w.Bytes())
				r.Byte()
				got := c.ReadState(r, rootType)
				if !r.Done() || !doc.EqualState(got, root) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Int32()),
		gen.SliceOf(gen.AlphaString()),
		gen.Float64(),
		gen.SliceOf(gen.UInt8()),
	))

	properties.TestingRun(t)
}

package doc

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/tidwall/pretty"

	"github.com/dshills/edithistory/internal/engine/schema"
)

// Format renders v as single-line JSON with record fields in schema order.
// It is meant for diagnostics only.
func Format(t *schema.Type, v Value) string {
	return string(pretty.Ugly(AppendJSON(nil, t, v)))
}

// FormatIndent renders v as indented JSON.
func FormatIndent(t *schema.Type, v Value) string {
	return string(pretty.PrettyOptions(AppendJSON(nil, t, v), &pretty.Options{
		Width:    80,
		Prefix:   "",
		Indent:   "  ",
		SortKeys: false,
	}))
}

// AppendJSON appends the JSON encoding of v to dst. Non-finite floats are
// written as strings since JSON has no literal for them.
func AppendJSON(dst []byte, t *schema.Type, v Value) []byte {
	switch x := v.(type) {
	case Bool:
		return strconv.AppendBool(dst, bool(x))
	case Int:
		return strconv.AppendInt(dst, int64(x), 10)
	case Uint:
		return strconv.AppendUint(dst, uint64(x), 10)
	case Float:
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return strconv.AppendQuote(dst, strconv.FormatFloat(f, 'g', -1, 64))
		}
		bits := 64
		if t != nil && t.ScalarKind() == schema.ScalarFloat32 {
			bits = 32
		}
		return strconv.AppendFloat(dst, f, 'g', -1, bits)
	case String:
		b, _ := json.Marshal(string(x))
		return append(dst, b...)
	case *Record:
		dst = append(dst, '{')
		for i, f := range x.Fields {
			if i > 0 {
				dst = append(dst, ',')
			}
			var ft *schema.Type
			name := strconv.Itoa(i)
			if t != nil && i < t.FieldCount() {
				ft = t.FieldAt(i).Type
				name = t.FieldAt(i).Name
			}
			b, _ := json.Marshal(name)
			dst = append(dst, b...)
			dst = append(dst, ':')
			dst = AppendJSON(dst, ft, f)
		}
		return append(dst, '}')
	case *List:
		var et *schema.Type
		if t != nil {
			et = t.ElemType()
		}
		dst = append(dst, '[')
		for i, e := range x.elems {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = AppendJSON(dst, et, e)
		}
		return append(dst, ']')
	case *Optional:
		if !x.Present() {
			return append(dst, "null"...)
		}
		var et *schema.Type
		if t != nil {
			et = t.ElemType()
		}
		return AppendJSON(dst, et, x.Value)
	}
	return append(dst, "null"...)
}

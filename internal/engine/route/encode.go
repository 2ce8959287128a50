package route

import (
	"github.com/dshills/edithistory/internal/engine/codec"
	"github.com/dshills/edithistory/internal/engine/schema"
)

// Hop byte kinds, stored in the top two bits.
const (
	hopBranch         = 0
	hopSelBranch      = 1
	hopLeaf           = 2
	hopLeafSel        = 3
	rootByte     byte = 0xFF
	lowMask      byte = 0x3F
)

// hopWidth returns the index width of a field or index hop taken from t.
func hopWidth(c codec.Codec, t *schema.Type, k SegmentKind) schema.Width {
	t = unwrap(t)
	if k == SegField {
		return t.FieldWidth()
	}
	return c.IndexWidth(t)
}

// Encode appends the binary form of r, which must be valid for t.
func Encode(c codec.Codec, w *codec.Buffer, t *schema.Type, r Route) {
	if r.IsRoot() {
		w.Byte(rootByte)
		return
	}
	for n, s := range r.segs {
		next := step(t, s)
		leaf := n == len(r.segs)-1

		var kind byte
		switch {
		case s.Kind == SegSelected && leaf:
			kind = hopLeafSel
		case s.Kind == SegSelected:
			kind = hopSelBranch
		case leaf:
			kind = hopLeaf
		default:
			kind = hopBranch
		}

		if s.Kind == SegSelected {
			w.Byte(kind << 6)
		} else if width := hopWidth(c, t, s.Kind); width == schema.Width6 {
			if s.Index > int(lowMask) {
				panic(mismatch("index %d does not fit a packed hop", s.Index))
			}
			w.Byte(kind<<6 | byte(s.Index))
		} else {
			w.Byte(kind << 6)
			w.Index(width, s.Index)
		}
		t = next
	}
}

// Decode reads a route written by Encode with the same codec and schema.
func Decode(c codec.Codec, rd *codec.Reader, t *schema.Type) Route {
	if rd.Peek() == rootByte {
		rd.Byte()
		return Root()
	}
	var r Route
	for {
		b := rd.Byte()
		kind := b >> 6
		if kind == hopSelBranch || kind == hopLeafSel {
			r = r.Selected()
		} else {
			segKind := SegIndex
			if unwrap(t).IsRecord() {
				segKind = SegField
			}
			idx := int(b & lowMask)
			if width := hopWidth(c, t, segKind); width != schema.Width6 {
				idx = rd.Index(width)
			}
			r = r.push(Segment{Kind: segKind, Index: idx})
		}
		t = step(t, r.segs[len(r.segs)-1])
		if kind == hopLeaf || kind == hopLeafSel {
			return r
		}
	}
}

// Size returns the encoded length of r in bytes.
func Size(c codec.Codec, t *schema.Type, r Route) int {
	w := codec.NewBuffer(nil)
	Encode(c, w, t, r)
	return w.Len()
}

package schema

import (
	"fmt"
	"math"
	"strings"
)

// Width is the encoded size of an index quantity.
type Width uint8

const (
	// WidthDefault means "not set"; resolved by IndexWidthOr.
	WidthDefault Width = iota
	// Width6 packs the index into the low six bits of a route byte.
	// Outside a route byte it occupies one byte.
	Width6
	Width8
	Width16
	Width32
	Width64
)

// DefaultSequenceWidth is used for growable sequences when neither the
// schema nor the ledger names a width.
const DefaultSequenceWidth = Width32

// Max returns the largest index representable at this width.
func (w Width) Max() uint64 {
	switch w {
	case Width6:
		return 1<<6 - 1
	case Width8:
		return math.MaxUint8
	case Width16:
		return math.MaxUint16
	case Width32:
		return math.MaxUint32
	default:
		return math.MaxUint64
	}
}

// Bytes returns the number of bytes an index of this width occupies when it
// is written on its own.
func (w Width) Bytes() int {
	switch w {
	case Width6, Width8:
		return 1
	case Width16:
		return 2
	case Width32:
		return 4
	default:
		return 8
	}
}

// String returns the width in bits.
func (w Width) String() string {
	switch w {
	case WidthDefault:
		return "default"
	case Width6:
		return "6"
	case Width8:
		return "8"
	case Width16:
		return "16"
	case Width32:
		return "32"
	case Width64:
		return "64"
	default:
		return fmt.Sprintf("Width(%d)", uint8(w))
	}
}

// WidthFor returns the narrowest width able to represent max.
func WidthFor(max uint64) Width {
	for _, w := range []Width{Width6, Width8, Width16, Width32} {
		if max <= w.Max() {
			return w
		}
	}
	return Width64
}

// ParseWidth parses a width given in bits ("8", "16", "32", "64").
// An empty string yields WidthDefault.
func ParseWidth(s string) (Width, error) {
	switch strings.TrimSpace(s) {
	case "", "default":
		return WidthDefault, nil
	case "6":
		return Width6, nil
	case "8":
		return Width8, nil
	case "16":
		return Width16, nil
	case "32":
		return Width32, nil
	case "64":
		return Width64, nil
	}
	return WidthDefault, fmt.Errorf("%w: %q", ErrInvalidWidth, s)
}

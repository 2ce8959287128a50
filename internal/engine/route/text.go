package route

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/edithistory/internal/engine/schema"
)

// Parse reads a textual route such as "rows[*].cells[2]" against t. Field
// hops are names or decimal field indices; "[*]" is the Selected hop. The
// empty string and "." are the root.
func Parse(t *schema.Type, s string) (r Route, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			e, ok := rec.(error)
			if !ok {
				panic(rec)
			}
			err = fmt.Errorf("parse %q: %w", s, e)
		}
	}()

	s = strings.TrimSpace(s)
	if s == "" || s == "." {
		return Root(), nil
	}

	cur := t
	pos := 0
	for pos < len(s) {
		switch {
		case s[pos] == '[':
			end := strings.IndexByte(s[pos:], ']')
			if end < 0 {
				return Route{}, fmt.Errorf("%w: unclosed '[' in %q", ErrSyntax, s)
			}
			tok := s[pos+1 : pos+end]
			pos += end + 1
			if tok == "*" {
				r = r.Selected()
			} else {
				i, err := strconv.Atoi(tok)
				if err != nil || i < 0 {
					return Route{}, fmt.Errorf("%w: bad index %q in %q", ErrSyntax, tok, s)
				}
				r = r.Index(i)
			}

		default:
			if s[pos] == '.' {
				pos++
			} else if pos != 0 {
				return Route{}, fmt.Errorf("%w: unexpected %q at %d in %q", ErrSyntax, s[pos], pos, s)
			}
			end := pos
			for end < len(s) && s[end] != '.' && s[end] != '[' {
				end++
			}
			name := s[pos:end]
			pos = end
			if name == "" {
				return Route{}, fmt.Errorf("%w: empty field name in %q", ErrSyntax, s)
			}
			rec := unwrap(cur)
			if !rec.IsRecord() {
				return Route{}, mismatch("field %q on %s", name, rec)
			}
			i, ok := rec.FieldIndex(name)
			if !ok {
				n, err := strconv.Atoi(name)
				if err != nil {
					return Route{}, mismatch("%s has no field %q", rec.Name(), name)
				}
				i = n
			}
			r = r.Field(i)
		}
		cur = step(cur, r.segs[len(r.segs)-1])
	}
	return r, nil
}

// MustParse is Parse for routes known to be valid.
func MustParse(t *schema.Type, s string) Route {
	r, err := Parse(t, s)
	if err != nil {
		panic(err)
	}
	return r
}

// Format renders r with field names taken from t. Invalid routes fall back
// to String.
func Format(t *schema.Type, r Route) (out string) {
	defer func() {
		if recover() != nil {
			out = r.String()
		}
	}()
	var sb strings.Builder
	for _, s := range r.segs {
		switch s.Kind {
		case SegField:
			if sb.Len() > 0 {
				sb.WriteByte('.')
			}
			sb.WriteString(unwrap(t).FieldAt(s.Index).Name)
		case SegIndex:
			fmt.Fprintf(&sb, "[%d]", s.Index)
		case SegSelected:
			sb.WriteString("[*]")
		}
		t = step(t, s)
	}
	if sb.Len() == 0 {
		return "."
	}
	return sb.String()
}

// String renders r with numeric field hops, e.g. "0[*].1".
func (r Route) String() string {
	var sb strings.Builder
	for _, s := range r.segs {
		switch s.Kind {
		case SegField:
			if sb.Len() > 0 {
				sb.WriteByte('.')
			}
			sb.WriteString(strconv.Itoa(s.Index))
		case SegIndex:
			fmt.Fprintf(&sb, "[%d]", s.Index)
		case SegSelected:
			sb.WriteString("[*]")
		}
	}
	if sb.Len() == 0 {
		return "."
	}
	return sb.String()
}

// Package schema describes the static shape of a document.
//
// A Type is a closed sum over five node kinds:
//
//   - Scalar: booleans, fixed-width integers, floats and strings
//   - Record: an ordered list of named fields, addressed by index
//   - Sequence: a growable list of elements of one type
//   - Array: a fixed-size list of elements of one type
//   - Optional: a value that may be absent
//
// Types are immutable once built. Builders such as SequenceOf, Selectable and
// Field.Width return fresh copies, so the package-level scalar types can be
// shared freely:
//
//	doc := schema.Record("Doc",
//	    schema.F("title", schema.String),
//	    schema.F("items", schema.SequenceOf(schema.Int32).Selectable()),
//	    schema.F("grid", schema.ArrayOf(schema.Float64, 16)),
//	)
//
// # Index widths
//
// Every list node is addressed by indices whose on-the-wire width is fixed by
// the schema alone. IndexWidthOr is the only function that computes it, which
// keeps encoding and decoding in agreement. Arrays size their indices from
// their length; sequences use an explicit override or the ledger default.
//
// # Schema files
//
// ParseYAML builds a Type from a YAML document listing record types and their
// fields using compact type expressions ("[]T", "[N]T", "?T", scalar names and
// record names).
package schema

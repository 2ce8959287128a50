// Package codec reads and writes the binary representation used by the
// history event log.
//
// All fixed-width quantities are little-endian. Values are encoded by walking
// their schema type:
//
//   - scalars: their raw fixed-width representation; strings are an
//     index-width length followed by the raw bytes
//   - optionals: a presence byte followed by the value
//   - sequences and arrays: an index-width count followed by the elements
//   - records: their fields in schema order
//
// A "state" encoding additionally appends the selection set of every
// selectable list, which is what undo needs to restore a node exactly.
//
// Index widths come from schema.Type.IndexWidthOr with the Codec's default
// width, so a Codec must be built with the same default for writing and
// reading a given buffer.
package codec

// Package doc holds the live document model: dynamic values shaped by a
// schema.Type, plus the per-list state the history engine keeps alongside
// the data.
//
// # Values
//
// Scalars are small named types (Bool, Int, Uint, Float, String). Records,
// lists and optionals are pointers so the history engine can resolve a route
// to a mutable slot:
//
//	v := doc.NewRecord(
//	    doc.String("inventory"),
//	    doc.NewList(doc.Int(10), doc.Int(20), doc.Int(30)),
//	)
//
// Integers of every width share Int or Uint; the schema decides the encoded
// width. Floats declared float32 are rounded on Conform.
//
// # Selection and attached data
//
// A List owns its Selection Set (the ordered, duplicate-free indices the user
// has chosen) and an optional parallel slice of attached caller payload. The
// structural primitives on List (InsertAt, EraseAt, Permute, Resize,
// ReplaceElems) remap both, so every stored index is always below Len().
//
// Documents must be mutated through history.Ledger; the primitives here do
// not record anything.
package doc

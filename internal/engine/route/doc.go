// Package route addresses nodes inside a document.
//
// A Route is an ordered list of hops from the document root:
//
//   - Field(i) descends into field i of a record
//   - Index(i) descends into element i of a sequence or array
//   - Selected() fans out over the selection set of a selectable list,
//     continuing once per selected index
//
// Routes are plain values; builder methods return copies:
//
//	cells := route.Root().Field(0).Selected().Field(1)
//
// A route with a Selected hop names every element of the selection at once.
// Concrete substitutes an index for that hop. At most one Selected hop may
// appear in a route.
//
// Optionals are transparent: a hop applied to a present optional applies to
// the value it holds.
//
// # Encoding
//
// Encode writes one byte per hop. The top two bits select the hop kind:
//
//	00 branch                 field or index hop with more hops to follow
//	01 selection-branch       selected hop with more hops to follow
//	10 leaf-branch            final field or index hop
//	11 leaf-selection-branch  final selected hop
//
// When the hop's index width is schema.Width6 the index sits in the low six
// bits. Otherwise the low bits are zero and the index follows at its width.
// The empty route is the single byte 0xFF. Widths depend only on the schema,
// so Decode needs the same schema and codec as Encode.
//
// # Text form
//
// Parse and Format convert to and from paths such as "rows[*].cells[2]".
// Field hops may be written by name or by index.
package route

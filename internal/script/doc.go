// Package script runs Lua scripts against an edit-history engine.
//
// A Runtime owns one sandboxed gopher-lua state bound to a single
// engine.Engine. Only the base, table, string and math libraries are
// opened; file and OS access is not available. Two modules are installed
// as globals:
//
//	doc   reads and edits the document by route
//	hist  drives the history: undo, redo, actions and trimming
//
// Indices are zero-based so they match route syntax ("items[0]").
//
// # Actions
//
// Outside hist.action every doc edit is an action of its own. Inside
//
//	hist.action("rename", function()
//	    doc.set("title", "draft")
//	    doc.append("items", 3)
//	end)
//
// all edits are grouped into one action labelled "rename". Nested
// hist.action calls join the enclosing action. hist functions other than
// action fail while an action is open.
//
// # Errors
//
// Engine failures are raised as Lua errors, so scripts may catch them
// with pcall. An uncaught failure ends the run with an *Error that unwraps
// to the engine error that caused it.
package script

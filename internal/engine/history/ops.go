package history

import "fmt"

// OpKind identifies a recorded operation. It is the first byte of every
// event.
type OpKind uint8

const (
	OpReset OpKind = iota + 1
	OpSet
	OpSetN
	OpSetL
	OpAssign
	OpAssignDefault
	OpReserve
	OpTrim

	OpAppend
	OpAppendN
	OpInsert
	OpInsertN
	OpRemove
	OpRemoveN
	OpRemoveL

	OpSort
	OpSortDesc
	OpSwap
	OpMoveUp
	OpMoveUpN
	OpMoveUpL
	OpMoveTop
	OpMoveTopN
	OpMoveTopL
	OpMoveDown
	OpMoveDownN
	OpMoveDownL
	OpMoveBottom
	OpMoveBottomN
	OpMoveBottomL
	OpMoveTo
	OpMoveToN
	OpMoveToL

	OpSelectAll
	OpClearSelections
	OpSelect
	OpSelectN
	OpDeselect
	OpDeselectN
	OpToggle
	OpToggleN
	OpSortSelections
	OpSortSelectionsDesc

	opCount
)

var opNames = [...]string{
	OpReset:              "reset",
	OpSet:                "set",
	OpSetN:               "set_n",
	OpSetL:               "set_l",
	OpAssign:             "assign",
	OpAssignDefault:      "assign_default",
	OpReserve:            "reserve",
	OpTrim:               "trim",
	OpAppend:             "append",
	OpAppendN:            "append_n",
	OpInsert:             "insert",
	OpInsertN:            "insert_n",
	OpRemove:             "remove",
	OpRemoveN:            "remove_n",
	OpRemoveL:            "remove_l",
	OpSort:               "sort",
	OpSortDesc:           "sort_desc",
	OpSwap:               "swap",
	OpMoveUp:             "move_up",
	OpMoveUpN:            "move_up_n",
	OpMoveUpL:            "move_up_l",
	OpMoveTop:            "move_top",
	OpMoveTopN:           "move_top_n",
	OpMoveTopL:           "move_top_l",
	OpMoveDown:           "move_down",
	OpMoveDownN:          "move_down_n",
	OpMoveDownL:          "move_down_l",
	OpMoveBottom:         "move_bottom",
	OpMoveBottomN:        "move_bottom_n",
	OpMoveBottomL:        "move_bottom_l",
	OpMoveTo:             "move_to",
	OpMoveToN:            "move_to_n",
	OpMoveToL:            "move_to_l",
	OpSelectAll:          "select_all",
	OpClearSelections:    "clear_selections",
	OpSelect:             "select",
	OpSelectN:            "select_n",
	OpDeselect:           "deselect",
	OpDeselectN:          "deselect_n",
	OpToggle:             "toggle",
	OpToggleN:            "toggle_n",
	OpSortSelections:     "sort_selections",
	OpSortSelectionsDesc: "sort_selections_desc",
}

// String returns the operation name.
func (k OpKind) String() string {
	if k > 0 && k < opCount {
		return opNames[k]
	}
	return fmt.Sprintf("OpKind(%d)", uint8(k))
}

// Valid reports whether k is a known operation.
func (k OpKind) Valid() bool { return k > 0 && k < opCount }

// moveShape classifies the reorder operations that derive their
// permutation from operands.
type moveShape uint8

const (
	moveUp moveShape = iota
	moveTop
	moveDown
	moveBottom
	moveTo
)

// moveVariant reports the shape of a move operation and whether it takes an
// index list (the N and L forms).
func (k OpKind) moveVariant() (shape moveShape, multi, ok bool) {
	if k < OpMoveUp || k > OpMoveToL {
		return 0, false, false
	}
	off := k - OpMoveUp
	return moveShape(off / 3), off%3 != 0, true
}

package script

import (
	"fmt"
	"math"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/edithistory/internal/engine/doc"
	"github.com/dshills/edithistory/internal/engine/schema"
)

// toLua converts native document data, as returned by engine.Native, to a
// Lua value. Lists become 1-based array tables and records keyed tables.
func toLua(L *lua.LState, x any) lua.LValue {
	switch v := x.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(v)
	case int:
		return lua.LNumber(v)
	case int64:
		return lua.LNumber(v)
	case uint64:
		return lua.LNumber(v)
	case float64:
		return lua.LNumber(v)
	case string:
		return lua.LString(v)
	case []int:
		t := L.CreateTable(len(v), 0)
		for i, n := range v {
			t.RawSetInt(i+1, lua.LNumber(n))
		}
		return t
	case []any:
		t := L.CreateTable(len(v), 0)
		for i, item := range v {
			t.RawSetInt(i+1, toLua(L, item))
		}
		return t
	case map[string]any:
		t := L.CreateTable(0, len(v))
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			t.RawSetString(k, toLua(L, v[k]))
		}
		return t
	}
	return lua.LString(fmt.Sprint(x))
}

// fromLua converts lv to native data shaped for t, ready for
// doc.FromNative. The schema resolves what Lua cannot express on its own:
// an empty table is an empty list or an all-zero record, and numbers
// become integers only where t wants them.
func fromLua(t *schema.Type, lv lua.LValue) (any, error) {
	if lv == lua.LNil {
		return nil, nil
	}
	switch t.Kind() {
	case schema.KindScalar:
		return scalarFromLua(t.ScalarKind(), lv)

	case schema.KindRecord:
		tbl, ok := lv.(*lua.LTable)
		if !ok {
			return nil, mismatch(t, lv)
		}
		m := make(map[string]any, t.FieldCount())
		var ferr error
		tbl.ForEach(func(k, v lua.LValue) {
			if ferr != nil {
				return
			}
			name, ok := k.(lua.LString)
			if !ok {
				ferr = fmt.Errorf("%w: %s key %s is not a field name", doc.ErrTypeMismatch, t.Name(), k)
				return
			}
			i, ok := t.FieldIndex(string(name))
			if !ok {
				ferr = fmt.Errorf("%w: %s has no field %q", doc.ErrTypeMismatch, t.Name(), string(name))
				return
			}
			fx, err := fromLua(t.FieldAt(i).Type, v)
			if err != nil {
				ferr = fmt.Errorf("%s.%s: %w", t.Name(), name, err)
				return
			}
			m[string(name)] = fx
		})
		if ferr != nil {
			return nil, ferr
		}
		return m, nil

	case schema.KindSequence, schema.KindArray:
		tbl, ok := lv.(*lua.LTable)
		if !ok {
			return nil, mismatch(t, lv)
		}
		n := tbl.Len()
		items := make([]any, n)
		for i := range n {
			x, err := fromLua(t.ElemType(), tbl.RawGetInt(i+1))
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			items[i] = x
		}
		return items, nil

	case schema.KindOptional:
		return fromLua(t.ElemType(), lv)
	}
	return nil, mismatch(t, lv)
}

func scalarFromLua(k schema.ScalarKind, lv lua.LValue) (any, error) {
	switch v := lv.(type) {
	case lua.LBool:
		if k == schema.ScalarBool {
			return bool(v), nil
		}
	case lua.LString:
		if k == schema.ScalarString {
			return string(v), nil
		}
	case lua.LNumber:
		f := float64(v)
		switch {
		case k.IsFloat():
			return f, nil
		case k.IsSigned() && f == math.Trunc(f):
			return int64(f), nil
		case k.IsUnsigned() && f == math.Trunc(f) && f >= 0:
			return uint64(f), nil
		}
	}
	return nil, fmt.Errorf("%w: %s %s is not %s", doc.ErrTypeMismatch, lv.Type(), lv, k)
}

func mismatch(t *schema.Type, lv lua.LValue) error {
	return fmt.Errorf("%w: %s is not %s", doc.ErrTypeMismatch, lv.Type(), t)
}

package replay

import (
	"context"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/lineindex/internal/engine"
	"github.com/dshills/lineindex/internal/engine/lines"
)

// LuaScript is a Lua program driving an engine through the global table
// doc. Positions are UTF-16 code units and lines are zero-based:
//
//	for i = 1, 10 do
//	  doc.append("line " .. i .. "\n")
//	end
//	doc.mark(3, 1)
//	doc.expect(doc.line_count() == 11, "line count")
type LuaScript struct {
	name   string
	source string
}

// NewLua returns a script running source.
func NewLua(name, source string) *LuaScript {
	return &LuaScript{name: name, source: source}
}

// Name returns the script name.
func (s *LuaScript) Name() string {
	return s.name
}

// Run executes the program in a fresh state with only the base, table,
// string and math libraries. Cancelling ctx stops the program.
func (s *LuaScript) Run(ctx context.Context, e *engine.Engine) error {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibraries(L)
	L.SetContext(ctx)

	L.SetGlobal("doc", docModule(L, e))
	return doWithRecovery(func() error {
		return L.DoString(s.source)
	})
}

// openSafeLibraries opens the libraries that cannot reach the host.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// doWithRecovery executes a function with panic recovery.
func doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// docModule builds the doc table bound to e.
func docModule(L *lua.LState, e *engine.Engine) *lua.LTable {
	check := func(L *lua.LState, err error) {
		if err != nil {
			L.RaiseError("%v", err)
		}
	}
	ret := func(L *lua.LState, n int) int {
		L.Push(lua.LNumber(n))
		return 1
	}

	fns := map[string]lua.LGFunction{
		"insert": func(L *lua.LState) int {
			check(L, e.InsertText(L.CheckInt(1), L.CheckString(2)))
			return 0
		},
		"delete": func(L *lua.LState) int {
			check(L, e.DeleteRange(L.CheckInt(1), L.CheckInt(2)))
			return 0
		},
		"replace": func(L *lua.LState) int {
			check(L, e.ReplaceRange(L.CheckInt(1), L.CheckInt(2), L.CheckString(3)))
			return 0
		},
		"append": func(L *lua.LState) int {
			check(L, e.AppendText(L.CheckString(1)))
			return 0
		},
		"set_text": func(L *lua.LState) int {
			check(L, e.SetText(L.CheckString(1)))
			return 0
		},
		"text": func(L *lua.LState) int {
			L.Push(lua.LString(e.Text()))
			return 1
		},
		"line_text": func(L *lua.LState) int {
			L.Push(lua.LString(e.LineText(L.CheckInt(1))))
			return 1
		},
		"length":      func(L *lua.LState) int { return ret(L, e.Length()) },
		"byte_length": func(L *lua.LState) int { return ret(L, e.ByteLength()) },
		"line_count":  func(L *lua.LState) int { return ret(L, e.LineCount()) },
		"line_start":  func(L *lua.LState) int { return ret(L, e.LineStart(L.CheckInt(1))) },
		"line_from_position": func(L *lua.LState) int {
			return ret(L, e.LineFromPosition(L.CheckInt(1)))
		},
		"char_to_byte": func(L *lua.LState) int { return ret(L, e.CharToBytePosition(L.CheckInt(1))) },
		"byte_to_char": func(L *lua.LState) int { return ret(L, e.ByteToCharPosition(L.CheckInt(1))) },
		"mark": func(L *lua.LState) int {
			line, marker := L.CheckInt(1), L.CheckInt(2)
			e.Update(func(c *lines.Collection) { c.MarkerAdd(line, marker) })
			return 0
		},
		"unmark": func(L *lua.LState) int {
			line, marker := L.CheckInt(1), L.OptInt(2, -1)
			e.Update(func(c *lines.Collection) { c.MarkerDelete(line, marker) })
			return 0
		},
		"markers": func(L *lua.LState) int {
			line := L.CheckInt(1)
			var mask uint32
			e.View(func(c *lines.Collection) { mask = c.MarkerGet(line) })
			return ret(L, int(mask))
		},
		"fold": func(L *lua.LState) int {
			level := foldLevel(L.CheckInt(2), L.OptBool(3, false), L.OptBool(4, false))
			check(L, e.SetFoldLevel(L.CheckInt(1), level))
			return 0
		},
		"toggle": func(L *lua.LState) int {
			line := L.CheckInt(1)
			e.Update(func(c *lines.Collection) { c.ToggleFold(line) })
			return 0
		},
		"visible": func(L *lua.LState) int {
			line := L.CheckInt(1)
			var v bool
			e.View(func(c *lines.Collection) { v = c.Visible(line) })
			L.Push(lua.LBool(v))
			return 1
		},
		"annotate": func(L *lua.LState) int {
			line, text := L.CheckInt(1), L.CheckString(2)
			e.Update(func(c *lines.Collection) { c.SetAnnotation(line, lines.StyledText{Text: text}) })
			return 0
		},
		"verify": func(L *lua.LState) int {
			check(L, e.Verify())
			return 0
		},
		"expect": func(L *lua.LState) int {
			if !L.ToBool(1) {
				check(L, fmt.Errorf("%w: %s", ErrExpectation, L.OptString(2, "assertion")))
			}
			return 0
		},
	}
	return L.SetFuncs(L.NewTable(), fns)
}

package macro

import (
	"fmt"

	"github.com/input-remapper/inputremapperd/internal/event"
)

// Program is a compiled, ready-to-run macro: its root task, run
// against a runtime built fresh for each Engine.
type Program struct {
	root runner
}

// Compile parses and compiles macro source into a Program. Symbol
// resolution is deferred to run time (via the runtime's SymbolLookup)
// rather than baked in here, so a reloaded symbol table (the user's
// keyboard layout can change between injections) is honored without
// recompiling every mapping's macro.
func Compile(source string) (*Program, error) {
	ast, err := Parse(source)
	if err != nil {
		return nil, err
	}
	root, err := compileNode(ast)
	if err != nil {
		return nil, err
	}
	return &Program{root: root}, nil
}

func compileNode(n Node) (runner, error) {
	switch v := n.(type) {
	case *SequenceNode:
		steps := make([]runner, 0, len(v.Steps))
		for _, s := range v.Steps {
			r, err := compileNode(s)
			if err != nil {
				return nil, err
			}
			steps = append(steps, r)
		}
		return &sequenceRunner{steps: steps}, nil
	case *ParallelNode:
		l, err := compileNode(v.Left)
		if err != nil {
			return nil, err
		}
		r, err := compileNode(v.Right)
		if err != nil {
			return nil, err
		}
		return &parallelRunner{left: l, right: r}, nil
	case *CallNode:
		return compileCall(v)
	case *SymbolLit:
		// A bare symbol outside of any call is shorthand for key(symbol).
		return compileKey(v.Name), nil
	case *NumberLit, *StringLit:
		return nil, &ParseError{Message: "a literal cannot appear as a top-level task"}
	default:
		return nil, fmt.Errorf("macro: unhandled node type %T", n)
	}
}

func compileCall(c *CallNode) (runner, error) {
	switch c.Name {
	case "key":
		sym, err := argSymbol(c, 0, "symbol")
		if err != nil {
			return nil, err
		}
		return compileKey(sym), nil
	case "wait":
		ms, err := argNumber(c, 0, "time")
		if err != nil {
			return nil, err
		}
		return compileWait(ms), nil
	case "repeat":
		n, err := argNumber(c, 0, "n")
		if err != nil {
			return nil, err
		}
		body, err := argTask(c, 1, "macro")
		if err != nil {
			return nil, err
		}
		return compileRepeat(int(n), body), nil
	case "hold":
		body, err := argTask(c, 0, "macro")
		if err != nil {
			return nil, err
		}
		return compileHold(body), nil
	case "modify":
		sym, err := argSymbol(c, 0, "symbol")
		if err != nil {
			return nil, err
		}
		body, err := argTask(c, 1, "macro")
		if err != nil {
			return nil, err
		}
		return compileModify(sym, body), nil
	case "mouse":
		x, err := argNumber(c, 0, "x")
		if err != nil {
			return nil, err
		}
		y, err := argNumber(c, 1, "y")
		if err != nil {
			return nil, err
		}
		return compileRelPair(0x00, 0x01, int32(x), int32(y)), nil
	case "wheel":
		x, err := argNumber(c, 0, "x")
		if err != nil {
			return nil, err
		}
		y, err := argNumber(c, 1, "y")
		if err != nil {
			return nil, err
		}
		return compileRelPair(0x06, 0x08, int32(x), int32(y)), nil
	case "set":
		name, err := argSymbol(c, 0, "variable")
		if err != nil {
			return nil, err
		}
		val, err := argNumber(c, 1, "value")
		if err != nil {
			return nil, err
		}
		return compileSet(name, val), nil
	case "add":
		name, err := argSymbol(c, 0, "variable")
		if err != nil {
			return nil, err
		}
		val, err := argNumber(c, 1, "value")
		if err != nil {
			return nil, err
		}
		return compileAdd(name, val), nil
	case "parallel":
		if len(c.Args) < 2 {
			return nil, &ParseError{Pos: c.Pos, Message: "parallel requires at least 2 arguments"}
		}
		runners := make([]runner, 0, len(c.Args))
		for i := range c.Args {
			r, err := argTask(c, i, fmt.Sprintf("arg%d", i))
			if err != nil {
				return nil, err
			}
			runners = append(runners, r)
		}
		return compileParallelAll(runners), nil
	case "if_tap":
		then, els, timeoutMs, err := ifArgs(c)
		if err != nil {
			return nil, err
		}
		return compileIfTap(then, els, timeoutMs), nil
	case "if_single":
		then, els, timeoutMs, err := ifArgs(c)
		if err != nil {
			return nil, err
		}
		// "single" differs from "tap" only in what the author typically
		// guards against (whether exactly one key is held); from the
		// scheduler's point of view both are "branch on an early release
		// within a timeout", so they share an implementation.
		return compileIfTap(then, els, timeoutMs), nil
	case "mod_tap":
		tapSym, err := argSymbol(c, 0, "tap_symbol")
		if err != nil {
			return nil, err
		}
		holdSym, err := argSymbol(c, 1, "hold_symbol")
		if err != nil {
			return nil, err
		}
		timeoutMs, terr := argNumber(c, 2, "timeout")
		if terr != nil {
			timeoutMs = 300
		}
		return compileModTap(tapSym, holdSym, timeoutMs), nil
	default:
		return nil, &ParseError{Pos: c.Pos, Message: "unknown macro task " + c.Name}
	}
}

func ifArgs(c *CallNode) (then, els runner, timeoutMs float64, err error) {
	then, err = argTask(c, 0, "then")
	if err != nil {
		return nil, nil, 0, err
	}
	els, err = argTask(c, 1, "else")
	if err != nil {
		els = &funcRunner{fn: func(rt *runtime, done func()) { done() }}
		err = nil
	}
	timeoutMs, terr := argNumber(c, 2, "timeout")
	if terr != nil {
		timeoutMs = 300
	}
	return then, els, timeoutMs, nil
}

func compileKey(symbolName string) runner {
	return &funcRunner{fn: func(rt *runtime, done func()) {
		code, ok := rt.symbols(symbolName)
		if !ok {
			done()
			return
		}
		rt.emit(event.EvKey, code, 1)
		rt.emit(event.EvKey, code, 0)
		done()
	}}
}

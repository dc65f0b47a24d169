package macro

import "fmt"

// findArg locates the argument at position i, honoring named
// arguments (name=value) that were supplied out of order.
func findArg(c *CallNode, i int, name string) (Arg, bool) {
	for _, a := range c.Args {
		if a.Name == name {
			return a, true
		}
	}
	if i < len(c.Args) && c.Args[i].Name == "" {
		return c.Args[i], true
	}
	return Arg{}, false
}

func argNumber(c *CallNode, i int, name string) (float64, error) {
	a, ok := findArg(c, i, name)
	if !ok {
		return 0, &ParseError{Pos: c.Pos, Message: fmt.Sprintf("%s: missing required argument %q", c.Name, name)}
	}
	switch v := a.Value.(type) {
	case *NumberLit:
		return v.Value, nil
	default:
		return 0, &ParseError{Pos: c.Pos, Message: fmt.Sprintf("%s: argument %q must be a number", c.Name, name)}
	}
}

func argSymbol(c *CallNode, i int, name string) (string, error) {
	a, ok := findArg(c, i, name)
	if !ok {
		return "", &ParseError{Pos: c.Pos, Message: fmt.Sprintf("%s: missing required argument %q", c.Name, name)}
	}
	switch v := a.Value.(type) {
	case *SymbolLit:
		return v.Name, nil
	case *StringLit:
		return v.Value, nil
	default:
		return "", &ParseError{Pos: c.Pos, Message: fmt.Sprintf("%s: argument %q must be a symbol", c.Name, name)}
	}
}

func argTask(c *CallNode, i int, name string) (runner, error) {
	a, ok := findArg(c, i, name)
	if !ok {
		return nil, &ParseError{Pos: c.Pos, Message: fmt.Sprintf("%s: missing required argument %q", c.Name, name)}
	}
	return compileNode(a.Value)
}

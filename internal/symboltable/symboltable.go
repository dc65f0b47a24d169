// Package symboltable holds the process-global symbol-name -> keycode
// mapping the caller populates once from the user's active keyboard
// layout, generalizing the fixed keyNameMap lookup of palaver's
// hotkey_linux.go into a loadable, read-only-after-start table.
package symboltable

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	evdev "github.com/holoplot/go-evdev"
)

// Table is a read-only-after-load symbol name -> keycode table. It is
// safe for concurrent reads from multiple handler builds; Load swaps
// the whole table under the lock, so it may run concurrently with
// lookups.
type Table struct {
	mu   sync.RWMutex
	syms map[string]evdev.EvCode
}

// New returns a Table pre-populated with a minimal built-in set of
// common key names, generalized from palaver's keyNameMap so presets
// using only ordinary keys resolve even before a layout snapshot is
// loaded.
func New() *Table {
	t := &Table{syms: make(map[string]evdev.EvCode, len(builtin))}
	for name, code := range builtin {
		t.syms[name] = code
	}
	return t
}

// Load replaces the table's contents with the JSON object r provides
// (symbolic name -> integer keycode), per the "Symbol table (consumed)"
// contract in SPEC_FULL.md §external interfaces. Unknown fields are
// not applicable here; every key is taken as a symbol name.
func (t *Table) Load(r io.Reader) error {
	var raw map[string]int
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return fmt.Errorf("symboltable: decode: %w", err)
	}

	next := make(map[string]evdev.EvCode, len(raw))
	for name, code := range raw {
		next[strings.ToUpper(strings.TrimSpace(name))] = evdev.EvCode(code)
	}

	t.mu.Lock()
	t.syms = next
	t.mu.Unlock()
	return nil
}

// LoadFile opens path and calls Load.
func (t *Table) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("symboltable: open %s: %w", path, err)
	}
	defer f.Close()
	return t.Load(f)
}

// Lookup resolves a symbolic key name to its numeric keycode.
func (t *Table) Lookup(name string) (evdev.EvCode, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	t.mu.RLock()
	code, ok := t.syms[key]
	t.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("symboltable: unknown symbol %q", name)
	}
	return code, nil
}

// builtin is the fallback table, generalized from palaver's
// hotkey_linux.go keyNameMap (the full alphanumeric row plus modifiers
// and function keys) to a common subset of the keys a keyboard output
// uinput exposes; names outside it resolve only after Load.
var builtin = map[string]evdev.EvCode{
	"KEY_ESC": 1, "KEY_1": 2, "KEY_2": 3, "KEY_3": 4, "KEY_4": 5,
	"KEY_5": 6, "KEY_6": 7, "KEY_7": 8, "KEY_8": 9, "KEY_9": 10,
	"KEY_0": 11, "KEY_MINUS": 12, "KEY_EQUAL": 13, "KEY_BACKSPACE": 14,
	"KEY_TAB": 15, "KEY_Q": 16, "KEY_W": 17, "KEY_E": 18, "KEY_R": 19,
	"KEY_T": 20, "KEY_Y": 21, "KEY_U": 22, "KEY_I": 23, "KEY_O": 24,
	"KEY_P": 25, "KEY_LEFTBRACE": 26, "KEY_RIGHTBRACE": 27, "KEY_ENTER": 28,
	"KEY_LEFTCTRL": 29, "KEY_A": 30, "KEY_S": 31, "KEY_D": 32, "KEY_F": 33,
	"KEY_G": 34, "KEY_H": 35, "KEY_J": 36, "KEY_K": 37, "KEY_L": 38,
	"KEY_SEMICOLON": 39, "KEY_APOSTROPHE": 40, "KEY_GRAVE": 41,
	"KEY_LEFTSHIFT": 42, "KEY_BACKSLASH": 43, "KEY_Z": 44, "KEY_X": 45,
	"KEY_C": 46, "KEY_V": 47, "KEY_B": 48, "KEY_N": 49, "KEY_M": 50,
	"KEY_COMMA": 51, "KEY_DOT": 52, "KEY_SLASH": 53, "KEY_RIGHTSHIFT": 54,
	"KEY_KPASTERISK": 55, "KEY_LEFTALT": 56, "KEY_SPACE": 57,
	"KEY_CAPSLOCK": 58, "KEY_F1": 59, "KEY_F2": 60, "KEY_F3": 61,
	"KEY_F4": 62, "KEY_F5": 63, "KEY_F6": 64, "KEY_F7": 65, "KEY_F8": 66,
	"KEY_F9": 67, "KEY_F10": 68, "KEY_NUMLOCK": 69, "KEY_SCROLLLOCK": 70,
	"KEY_F11": 87, "KEY_F12": 88, "KEY_RIGHTCTRL": 97, "KEY_RIGHTALT": 100,
	"KEY_HOME": 102, "KEY_UP": 103, "KEY_PAGEUP": 104, "KEY_LEFT": 105,
	"KEY_RIGHT": 106, "KEY_END": 107, "KEY_DOWN": 108, "KEY_PAGEDOWN": 109,
	"KEY_INSERT": 110, "KEY_DELETE": 111, "KEY_PAUSE": 119,
	"KEY_LEFTMETA": 125, "KEY_RIGHTMETA": 126,
}

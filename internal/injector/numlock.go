package injector

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// numlockLEDs returns every LED sysfs node that looks like a numlock
// indicator; kernel drivers name these input::numlock, platform::numlock,
// and similar variants, so a substring match is more portable than any
// single exact name.
func numlockLEDs() []string {
	matches, _ := filepath.Glob("/sys/class/leds/*")
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if strings.Contains(strings.ToLower(filepath.Base(m)), "numlock") {
			out = append(out, m)
		}
	}
	return out
}

// numlockState reads the first numlock LED node's brightness. ok is
// false on a system with no numlock indicator, in which case the
// injector skips save/restore entirely rather than failing start.
func numlockState() (value int, ok bool) {
	for _, path := range numlockLEDs() {
		data, err := os.ReadFile(filepath.Join(path, "brightness"))
		if err != nil {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(string(data)))
		if err != nil {
			continue
		}
		return n, true
	}
	return 0, false
}

// restoreNumlockState writes value back to every numlock LED node,
// undoing whatever toggle grabbing the keyboard caused -- per
// spec.md §4.I, "the numlock state observed at start is restored at
// stop" (testable property 10).
func restoreNumlockState(value int) error {
	var firstErr error
	for _, path := range numlockLEDs() {
		if err := os.WriteFile(filepath.Join(path, "brightness"), []byte(strconv.Itoa(value)), 0o644); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("injector: restore numlock %s: %w", path, err)
		}
	}
	return firstErr
}

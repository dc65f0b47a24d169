package symboltable

import "strings"

import "testing"

func TestLookupBuiltin(t *testing.T) {
	tbl := New()
	code, err := tbl.Lookup("key_a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != 30 {
		t.Fatalf("got %d, want 30", code)
	}
}

func TestLookupUnknown(t *testing.T) {
	tbl := New()
	if _, err := tbl.Lookup("KEY_DOES_NOT_EXIST"); err == nil {
		t.Fatal("expected error for unknown symbol")
	}
}

func TestLoadReplacesTable(t *testing.T) {
	tbl := New()
	if err := tbl.Load(strings.NewReader(`{"KEY_CUSTOM": 200}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	code, err := tbl.Lookup("KEY_CUSTOM")
	if err != nil || code != 200 {
		t.Fatalf("got (%d, %v), want (200, nil)", code, err)
	}
	if _, err := tbl.Lookup("KEY_A"); err == nil {
		t.Fatal("expected Load to replace rather than merge the built-in table")
	}
}

package output

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
)

func newTestContext(quiet, jsonMode bool) (*Context, *bytes.Buffer, *bytes.Buffer) {
	c := New(quiet, jsonMode, false)
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	c.Out, c.Err = out, errOut
	return c, out, errOut
}

func TestPrintlnSuppressedByQuietAndJSON(t *testing.T) {
	c, out, _ := newTestContext(true, false)
	c.Println("hello")
	if out.Len() != 0 {
		t.Errorf("Println wrote output while Quiet was set: %q", out.String())
	}

	c, out, _ = newTestContext(false, true)
	c.Println("hello")
	if out.Len() != 0 {
		t.Errorf("Println wrote output while JSON was set: %q", out.String())
	}

	c, out, _ = newTestContext(false, false)
	c.Println("hello")
	if out.String() != "hello\n" {
		t.Errorf("Println output = %q, want %q", out.String(), "hello\n")
	}
}

func TestEprintlnAlwaysWrites(t *testing.T) {
	c, _, errOut := newTestContext(true, true)
	c.Eprintln("warning")
	if errOut.String() != "warning\n" {
		t.Errorf("Eprintln output = %q, want %q", errOut.String(), "warning\n")
	}
}

func TestJSONOutMarshalsAndWrites(t *testing.T) {
	c, out, _ := newTestContext(false, true)
	if err := c.JSONOut(map[string]int{"a": 1}); err != nil {
		t.Fatalf("JSONOut: %v", err)
	}
	want := "{\n  \"a\": 1\n}\n"
	if out.String() != want {
		t.Errorf("JSONOut output = %q, want %q", out.String(), want)
	}
}

func TestNewForcesNoColorInJSONMode(t *testing.T) {
	color.NoColor = false
	New(false, true, false)
	if !color.NoColor {
		t.Error("New(jsonMode=true) should force color.NoColor = true")
	}
}

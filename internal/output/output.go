// Package output implements the C9 multiplexer contract from spec
// section 6.4: a single handle every core-consuming command writes
// through, so quiet/json/dry-run behavior lives in one place
// instead of being duplicated per subcommand.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Context is the handle passed into every command. The core never talks
// to os.Stdout directly.
type Context struct {
	Quiet   bool
	JSON    bool
	DryRun  bool
	Out     io.Writer
	Err     io.Writer
	success *color.Color
	warn    *color.Color
	fail    *color.Color
}

// New builds a Context writing to stdout/stderr with color enabled
// unless JSON output was requested (JSON payloads must stay unfiltered).
func New(quiet, jsonMode, dryRun bool) *Context {
	c := &Context{
		Quiet:  quiet,
		JSON:   jsonMode,
		DryRun: dryRun,
		Out:    os.Stdout,
		Err:    os.Stderr,
	}
	c.success = color.New(color.FgGreen)
	c.warn = color.New(color.FgYellow)
	c.fail = color.New(color.FgRed)
	if jsonMode {
		color.NoColor = true
	}
	return c
}

// Println writes a human-readable line, suppressed entirely when Quiet
// or JSON is set.
func (c *Context) Println(line string) {
	if c.Quiet || c.JSON {
		return
	}
	fmt.Fprintln(c.Out, line)
}

// Eprintln always writes to stderr, regardless of Quiet.
func (c *Context) Eprintln(line string) {
	fmt.Fprintln(c.Err, line)
}

// Raw writes unfiltered bytes to stdout: used for `cat` payloads and
// `--json` structured output.
func (c *Context) Raw(b []byte) {
	_, _ = c.Out.Write(b)
}

// JSONOut marshals v and writes it via Raw, used by every subcommand
// when --json is set.
func (c *Context) JSONOut(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	c.Raw(append(b, '\n'))
	return nil
}

// Dry logs a simulated action instead of performing it; callers check
// DryRun before doing the real write and call Dry instead.
func (c *Context) Dry(action string) {
	if c.JSON {
		return
	}
	c.warn.Fprintf(c.Out, "[dry-run] %s\n", action)
}

// Success prints a green-highlighted line when not quiet/json.
func (c *Context) Success(line string) {
	if c.Quiet || c.JSON {
		return
	}
	c.success.Fprintln(c.Out, line)
}

// Fail prints a red-highlighted line to stderr regardless of Quiet.
func (c *Context) Fail(line string) {
	c.fail.Fprintln(c.Err, line)
}

// Package maincmd implements the newj command line interface: flag
// handling, sequencing of the compilation passes and presentation of the
// diagnostics.
package maincmd

import (
	"errors"
	"fmt"

	"github.com/mna/mainer"
)

const binName = "newj"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <input.nj>
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <input.nj>
       %[1]s -h|--help
       %[1]s -v|--version

Compiler for the NewJ programming language. Translates a source file
into an executable binary image for the NewJ virtual instruction set
architecture, written next to the input as <input-stem>.bin.

Diagnostics are printed to standard error; the compiler always runs to
completion and exits with status 0 for any run that reaches the end,
including runs with diagnostics.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       -fsyntax-tree             Dump the parsed AST to stdout.
       -fir-dump                 Dump the IR after building.
       -fbytecode                Dump the assembled program to stdout
                                 in human-readable form.
`, binName)
)

// Cmd is the newj command, with its flags parsed by mainer.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	SyntaxTree bool `flag:"fsyntax-tree"`
	IRDump     bool `flag:"fir-dump"`
	Bytecode   bool `flag:"fbytecode"`

	args  []string
	flags map[string]bool
}

// SetArgs implements the mainer.ArgsSetter interface, receiving the
// positional arguments.
func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

// SetFlags implements the mainer.FlagsSetter interface, receiving the set
// of flags present on the command line.
func (c *Cmd) SetFlags(flags map[string]bool) {
	c.flags = flags
}

// Validate implements the mainer.Validator interface.
func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) == 0 {
		return errors.New("no input file specified")
	}
	return nil
}

// Main runs the command and returns its exit code.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   true,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success

	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	// diagnostics never fail the run: any run that reaches the end exits
	// with success, it is the caller's duty to treat a non-empty diagnostic
	// stream as failure
	for _, file := range c.args {
		c.compile(stdio, file)
	}
	return mainer.Success
}

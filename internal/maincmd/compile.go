package maincmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mna/mainer"
	"github.com/newj-lang/newj/lang/ast"
	"github.com/newj-lang/newj/lang/bytecode"
	"github.com/newj-lang/newj/lang/ir"
	"github.com/newj-lang/newj/lang/irgen"
	"github.com/newj-lang/newj/lang/parser"
	"github.com/newj-lang/newj/lang/scanner"
	"github.com/newj-lang/newj/lang/token"
)

// OutputFile returns the path of the image written for the provided input
// file: the input with its extension replaced by ".bin".
func OutputFile(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".bin"
}

// compile runs the full pipeline on a single source file: parse, build IR,
// generate the VISA image and write it to disk, honoring the phase-dump
// flags along the way. Diagnostics are collected across all passes and
// printed to stderr at the end; they never abort the pipeline.
func (c *Cmd) compile(stdio mainer.Stdio, file string) {
	var el scanner.ErrorList

	b, err := os.ReadFile(file)
	if err != nil {
		el.Add(token.Position{Filename: file}, err.Error())
		scanner.PrintError(stdio.Stderr, el.Err())
		return
	}

	prog, handle, perr := parser.ParseProgram(file, b)
	if perr != nil {
		el = append(el, perr.(scanner.ErrorList)...)
	}

	if c.SyntaxTree {
		printer := ast.Printer{Output: stdio.Stdout, Pos: token.PosLineCol}
		if err := printer.Print(prog, handle); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
		}
	}

	irProg := irgen.Build(handle, prog, el.Add)
	if c.IRDump {
		if err := ir.Fprint(stdio.Stdout, irProg); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
		}
	}

	img := bytecode.FromIR(irProg, el.Add)
	if img == nil {
		// no main function: still produce a valid, empty image
		img = bytecode.Empty()
	}
	if c.Bytecode {
		if err := bytecode.Fdump(stdio.Stdout, img); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
		}
	}

	if err := c.writeImage(img, OutputFile(file)); err != nil {
		el.Add(token.Position{Filename: file}, err.Error())
	}

	if len(el) > 0 {
		el.Sort()
		scanner.PrintError(stdio.Stderr, el.Err())
	}
}

func (c *Cmd) writeImage(img *bytecode.Program, out string) error {
	return img.WriteFile(out)
}

// CompileFiles runs the pipeline on the provided files with the provided
// flags, writing phase dumps to stdio.Stdout and diagnostics to
// stdio.Stderr. It is the programmatic equivalent of the command line and
// is used by the phase tests.
func CompileFiles(stdio mainer.Stdio, syntaxTree, irDump, bytecodeDump bool, files ...string) {
	c := Cmd{SyntaxTree: syntaxTree, IRDump: irDump, Bytecode: bytecodeDump}
	for _, file := range files {
		c.compile(stdio, file)
	}
}

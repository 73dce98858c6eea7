package bytecode

import (
	"fmt"
	"io"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Fdump writes a human-readable listing of the image to w: the data segment
// bytes, then the decoded text segment with labels interleaved at their
// addresses.
func Fdump(w io.Writer, p *Program) error {
	// labels grouped by address, names sorted for deterministic output
	byAddr := make(map[uint64][]string, len(p.Labels))
	for name, addr := range p.Labels {
		byAddr[addr] = append(byAddr[addr], name)
	}
	for _, names := range byAddr {
		slices.Sort(names)
	}

	if len(p.Data) > 0 {
		if _, err := fmt.Fprintf(w, "data (%d bytes):\n", len(p.Data)); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "\t%#x: %q\n", DataStart, p.Data); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, "text:"); err != nil {
		return err
	}
	addr := PCStart
	for _, op := range p.Text {
		for _, name := range byAddr[addr] {
			if _, err := fmt.Fprintf(w, "%s:\n", name); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "\t%#x: %s\n", addr, op); err != nil {
			return err
		}
		addr += 8
	}

	if len(p.Fixups) > 0 {
		if _, err := fmt.Fprintf(w, "pending fixups (%d):\n", len(p.Fixups)); err != nil {
			return err
		}
		addrs := maps.Keys(p.Fixups)
		slices.Sort(addrs)
		for _, a := range addrs {
			fx := p.Fixups[a]
			mode := "relative"
			if fx.Absolute {
				mode = "absolute"
			}
			if _, err := fmt.Fprintf(w, "\t%#x: %s (%s)\n", a, fx.Label, mode); err != nil {
				return err
			}
		}
	}
	return nil
}

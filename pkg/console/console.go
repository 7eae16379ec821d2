// This file is part of unreal-ng.
//
// unreal-ng is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// unreal-ng is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with unreal-ng.  If not, see <https://www.gnu.org/licenses/>.

// Package console is the scriptable command-line front-end for a running
// emulator.Context: it parses and dispatches single-line debugger commands
// (step, breakpoints, memory peek/poke, labels, media loading) the way the
// teacher's own debugger/terminal package separates command input from a
// Context's command surface, adapted here to one synchronous Dispatch call
// instead of a goroutine-driven Terminal/ReadEvents loop, since this engine
// has no GUI front-end competing for the same input.
package console

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/alfishe/unreal-ng-sub004/pkg/breakpoints"
	"github.com/alfishe/unreal-ng-sub004/pkg/disasm"
	"github.com/alfishe/unreal-ng-sub004/pkg/emulator"
	"github.com/alfishe/unreal-ng-sub004/pkg/peripherals"
	"github.com/alfishe/unreal-ng-sub004/pkg/symbols"
	"github.com/alfishe/unreal-ng-sub004/pkg/zxerror"
)

// ErrQuit is returned by Dispatch for the QUIT/EXIT command; a Run loop
// should stop without treating it as a failure.
var ErrQuit = fmt.Errorf("console: quit requested")

// Console dispatches commands against ctx and writes their output to Out.
type Console struct {
	ctx *emulator.Context
	Out io.Writer

	history []string
}

// New wraps ctx for command dispatch, writing command output to out.
func New(ctx *emulator.Context, out io.Writer) *Console {
	return &Console{ctx: ctx, Out: out}
}

// History returns the commands dispatched so far, oldest first.
func (c *Console) History() []string {
	return append([]string(nil), c.history...)
}

// Dispatch parses and executes one command line. A blank line is a no-op.
// Command names are case-insensitive.
func (c *Console) Dispatch(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	c.history = append(c.history, line)

	fields := strings.Fields(line)
	cmd := strings.ToUpper(fields[0])
	args := fields[1:]

	switch cmd {
	case "QUIT", "EXIT", "Q":
		return ErrQuit
	case "STEP", "S":
		c.ctx.Step()
		return c.printRegisters()
	case "OVER":
		c.ctx.StepOver()
		return c.printRegisters()
	case "FINISH":
		c.ctx.StepOut()
		return c.printRegisters()
	case "PAUSE":
		c.ctx.Pause()
		return nil
	case "RESUME", "GO":
		c.ctx.Resume()
		return nil
	case "RESET":
		c.ctx.Reset()
		return nil
	case "REGS", "R":
		return c.printRegisters()
	case "LOADTAPE":
		return c.cmdLoadTape(args)
	case "LOADDISK":
		return c.cmdLoadDisk(args)
	case "LOADSNAPSHOT", "LOADSNA":
		return c.cmdLoadSnapshot(args)
	case "BREAK", "BP":
		return c.cmdBreak(args)
	case "CLEARBREAK", "BC":
		return c.cmdClearBreak(args)
	case "BREAKS":
		return c.printBreakpoints()
	case "PEEK", "M":
		return c.cmdPeek(args)
	case "POKE":
		return c.cmdPoke(args)
	case "LABEL", "LN":
		return c.cmdLabel(args)
	case "UNLABEL":
		return c.cmdUnlabel(args)
	case "LABELS":
		return c.printLabels()
	case "DISASM", "U":
		return c.cmdDisasm(args)
	case "HELP", "?":
		return c.printHelp()
	default:
		return zxerror.Errorf(zxerror.CommandUnknown, fields[0])
	}
}

func (c *Console) printRegisters() error {
	r := &c.ctx.CPU.Reg
	_, err := fmt.Fprintf(c.Out,
		"AF=%04X BC=%04X DE=%04X HL=%04X IX=%04X IY=%04X SP=%04X PC=%04X I=%02X R=%02X\n",
		r.AF.Get(), r.BC.Get(), r.DE.Get(), r.HL.Get(),
		r.IX.Get(), r.IY.Get(), r.SP.Get(), r.PC, r.I, r.R)
	return err
}

func (c *Console) cmdLoadTape(args []string) error {
	if len(args) != 1 {
		return zxerror.Errorf(zxerror.CommandBadArgument, "LOADTAPE <path>")
	}
	raw, err := readFile(args[0])
	if err != nil {
		return err
	}
	return c.ctx.LoadTape(raw)
}

func (c *Console) cmdLoadSnapshot(args []string) error {
	if len(args) != 1 {
		return zxerror.Errorf(zxerror.CommandBadArgument, "LOADSNAPSHOT <path>")
	}
	return c.ctx.LoadSnapshot(args[0])
}

func (c *Console) cmdLoadDisk(args []string) error {
	if len(args) != 1 {
		return zxerror.Errorf(zxerror.CommandBadArgument, "LOADDISK <path>")
	}
	if _, err := readFile(args[0]); err != nil {
		return err
	}
	c.ctx.LoadDisk(peripherals.NewFDCShim())
	return nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zxerror.Errorf(zxerror.CommandBadArgument, path)
	}
	return data, nil
}

func (c *Console) cmdBreak(args []string) error {
	if len(args) != 2 {
		return zxerror.Errorf(zxerror.CommandBadArgument, "BREAK <r|w|x|in|out> <addr>")
	}
	kind, ok := parseBreakpointKind(args[0])
	if !ok {
		return zxerror.Errorf(zxerror.CommandBadArgument, args[0])
	}
	addr, err := parseU16Hex(args[1])
	if err != nil {
		return err
	}
	id := c.ctx.GetBreakpointManager().Add(kind, addr)
	_, err = fmt.Fprintf(c.Out, "breakpoint %d set\n", id)
	return err
}

func (c *Console) cmdClearBreak(args []string) error {
	if len(args) != 1 {
		return zxerror.Errorf(zxerror.CommandBadArgument, "CLEARBREAK <id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return zxerror.Errorf(zxerror.CommandBadArgument, args[0])
	}
	if !c.ctx.GetBreakpointManager().Remove(id) {
		return zxerror.Errorf(zxerror.BreakpointUnknownId, id)
	}
	return nil
}

func (c *Console) printBreakpoints() error {
	for _, bp := range c.ctx.GetBreakpointManager().All() {
		active := "on"
		if !bp.Active {
			active = "off"
		}
		if _, err := fmt.Fprintf(c.Out, "%d: %s %04X [%s]\n", bp.ID, breakpointKindName(bp.Kind), bp.Address, active); err != nil {
			return err
		}
	}
	return nil
}

func (c *Console) cmdPeek(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return zxerror.Errorf(zxerror.CommandBadArgument, "PEEK <addr> [count]")
	}
	addr, err := parseU16Hex(args[0])
	if err != nil {
		return err
	}
	count := 1
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return zxerror.Errorf(zxerror.CommandBadArgument, args[1])
		}
		count = n
	}
	for i := 0; i < count; i++ {
		b, err := c.ctx.Memory.Peek(addr + uint16(i))
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(c.Out, "%04X: %02X\n", addr+uint16(i), b); err != nil {
			return err
		}
	}
	return nil
}

func (c *Console) cmdPoke(args []string) error {
	if len(args) != 2 {
		return zxerror.Errorf(zxerror.CommandBadArgument, "POKE <addr> <value>")
	}
	addr, err := parseU16Hex(args[0])
	if err != nil {
		return err
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(args[1], "0x"), 16, 8)
	if err != nil {
		return zxerror.Errorf(zxerror.CommandBadArgument, args[1])
	}
	return c.ctx.Memory.Poke(addr, uint8(v))
}

func (c *Console) cmdLabel(args []string) error {
	if len(args) < 2 {
		return zxerror.Errorf(zxerror.CommandBadArgument, "LABEL <name> <addr> [CODE|DATA] [comment...]")
	}
	addr, err := parseU16Hex(args[1])
	if err != nil {
		return err
	}
	kind := symbols.KindUnknown
	rest := args[2:]
	if len(rest) > 0 {
		switch strings.ToUpper(rest[0]) {
		case "CODE":
			kind = symbols.KindCode
			rest = rest[1:]
		case "DATA":
			kind = symbols.KindData
			rest = rest[1:]
		}
	}
	label := symbols.Label{
		Name:       args[0],
		Z80Address: addr,
		Physical:   symbols.PhysicalUnresolved,
		Kind:       kind,
		Comment:    strings.Join(rest, " "),
	}
	if !c.ctx.Symbols.Add(label) {
		return zxerror.Errorf(zxerror.LabelDuplicate, args[0])
	}
	return nil
}

func (c *Console) cmdUnlabel(args []string) error {
	if len(args) != 1 {
		return zxerror.Errorf(zxerror.CommandBadArgument, "UNLABEL <name>")
	}
	if !c.ctx.Symbols.Remove(args[0]) {
		return zxerror.Errorf(zxerror.CommandBadArgument, args[0])
	}
	return nil
}

func (c *Console) printLabels() error {
	labels := c.ctx.Symbols.All()
	sort.Slice(labels, func(i, j int) bool { return labels[i].Name < labels[j].Name })
	for _, l := range labels {
		if _, err := fmt.Fprintf(c.Out, "%-24s %04X %s\n", l.Name, l.Z80Address, l.Kind); err != nil {
			return err
		}
	}
	return nil
}

func (c *Console) cmdDisasm(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return zxerror.Errorf(zxerror.CommandBadArgument, "DISASM <addr> [count]")
	}
	addr, err := parseU16Hex(args[0])
	if err != nil {
		return err
	}
	count := 10
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return zxerror.Errorf(zxerror.CommandBadArgument, args[1])
		}
		count = n
	}

	for i := 0; i < count; i++ {
		buf := make([]byte, 0, 4)
		for j := 0; j < 4; j++ {
			b, err := c.ctx.Memory.Peek(addr + uint16(j))
			if err != nil {
				break
			}
			buf = append(buf, b)
		}
		dec, ok := disasm.DisassembleSingleCommand(buf, addr)
		if !ok {
			if _, err := fmt.Fprintf(c.Out, "%04X: ??\n", addr); err != nil {
				return err
			}
			addr++
			continue
		}
		text := disasm.FormatOperandString(dec.Template, dec.Operands)
		if _, err := fmt.Fprintf(c.Out, "%04X: %s\n", addr, text); err != nil {
			return err
		}
		addr += uint16(dec.Length)
	}
	return nil
}

func (c *Console) printHelp() error {
	const help = `commands:
  step, over, finish       single-step / step-over / run-to-return
  pause, resume            suspend or resume the scheduler
  reset                    reset the machine
  regs                     print CPU registers
  loadtape <path>          load a .tap/.tzx file
  loaddisk <path>          attach a .trd/.scl image
  loadsnapshot <path>      load a .sna/.z80 snapshot
  break <r|w|x|in|out> <addr>   set a breakpoint
  clearbreak <id>          remove a breakpoint
  breaks                   list breakpoints
  peek <addr> [count]      read memory
  poke <addr> <value>      write memory
  label <name> <addr> [CODE|DATA] [comment]   add a label
  unlabel <name>           remove a label
  labels                   list labels
  disasm <addr> [count]    disassemble instructions
  quit                     exit
`
	_, err := io.WriteString(c.Out, help)
	return err
}

func parseBreakpointKind(s string) (breakpoints.Kind, bool) {
	switch strings.ToUpper(s) {
	case "R", "READ":
		return breakpoints.KindMemoryRead, true
	case "W", "WRITE":
		return breakpoints.KindMemoryWrite, true
	case "X", "EXEC":
		return breakpoints.KindMemoryExec, true
	case "IN":
		return breakpoints.KindPortIn, true
	case "OUT":
		return breakpoints.KindPortOut, true
	default:
		return 0, false
	}
}

func breakpointKindName(k breakpoints.Kind) string {
	switch k {
	case breakpoints.KindMemoryRead:
		return "r"
	case breakpoints.KindMemoryWrite:
		return "w"
	case breakpoints.KindMemoryExec:
		return "x"
	case breakpoints.KindPortIn:
		return "in"
	case breakpoints.KindPortOut:
		return "out"
	default:
		return "?"
	}
}

// parseU16Hex parses an address in any of the conventional hex spellings
// (0x8000, $8000, #8000) or plain decimal.
func parseU16Hex(s string) (uint16, error) {
	trimmed := s
	base := 10
	switch {
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		trimmed, base = s[2:], 16
	case strings.HasPrefix(s, "$"), strings.HasPrefix(s, "#"):
		trimmed, base = s[1:], 16
	}
	v, err := strconv.ParseUint(trimmed, base, 16)
	if err != nil {
		return 0, zxerror.Errorf(zxerror.HexParseError, s)
	}
	return uint16(v), nil
}

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

package z80

// Bus is the memory interface the CPU steps through. Fast and debug
// variants are both always present; CPU branches on DebugMode at the top of
// every access rather than swapping function pointers per instruction (spec
// §9's redesign note for the "hot-loop memory interface swap").
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, v uint8)
	ReadDebug(addr uint16, isM1 bool) uint8
	WriteDebug(addr uint16, v uint8)
}

// Ports is the I/O port interface the CPU calls for IN/OUT and the block
// I/O instruction group.
type Ports interface {
	In(port uint16, pc uint16) uint8
	Out(port uint16, value uint8, pc uint16)
}

// noEIPos is the sentinel EIPos value meaning "no EI is currently deferring
// interrupt acceptance".
const noEIPos = -1

// CPU is the Z80 single-step interpreter.
type CPU struct {
	Reg Registers

	IFF1, IFF2 bool
	IM         int
	Halted     bool

	// T is the t-state counter within the current frame; the scheduler
	// wraps it against the model's frame budget every frame (spec §4.9).
	T int

	// EIPos is the t-state at which the most recent EI executed; it defers
	// IRQ acceptance by one instruction (spec §3, §4.3).
	EIPos int

	// DebugMode selects the slow (breakpoint+tracker) or fast memory path.
	DebugMode bool

	bus   Bus
	ports Ports

	// lastExecutedPC and havePC are not read by the interpreter; Reset
	// clears havePC. HALT-loop suppression is done by pkg/tracker.
	lastExecutedPC uint16
	havePC         bool

	// dispCache holds the displacement byte fetched for the current
	// DD/FD-prefixed instruction, when it references (IX+d)/(IY+d).
	dispCache int8
}

// NewCPU constructs a CPU wired to bus and ports. Registers start zeroed;
// callers should Reset() or load a snapshot before stepping.
func NewCPU(bus Bus, ports Ports) *CPU {
	return &CPU{
		bus:   bus,
		ports: ports,
		EIPos: noEIPos,
		IM:    1,
	}
}

// Plumb rewires the CPU onto a new Bus/Ports pair, used when the memory
// manager or port decoder is replaced wholesale (e.g. on model switch).
func (c *CPU) Plumb(bus Bus, ports Ports) {
	c.bus = bus
	c.ports = ports
}

// Reset puts the CPU into its post-RESET state: PC=0, IFF1=IFF2=false,
// IM=0, SP=0xFFFF, I=R=0, not halted.
func (c *CPU) Reset() {
	c.Reg = Registers{}
	c.Reg.SP.Set(0xFFFF)
	c.IFF1, c.IFF2 = false, false
	c.IM = 0
	c.Halted = false
	c.EIPos = noEIPos
	c.havePC = false
}

func (c *CPU) fetch() byte {
	pc := c.Reg.PC
	var v byte
	if c.DebugMode {
		v = c.bus.ReadDebug(pc, true)
	} else {
		v = c.bus.Read(pc)
	}
	c.Reg.PC++
	c.Reg.bumpR()
	return v
}

func (c *CPU) fetchOperand() byte {
	pc := c.Reg.PC
	var v byte
	if c.DebugMode {
		v = c.bus.ReadDebug(pc, false)
	} else {
		v = c.bus.Read(pc)
	}
	c.Reg.PC++
	return v
}

func (c *CPU) fetchOperandWord() uint16 {
	lo := c.fetchOperand()
	hi := c.fetchOperand()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) readMem(addr uint16) byte {
	if c.DebugMode {
		return c.bus.ReadDebug(addr, false)
	}
	return c.bus.Read(addr)
}

func (c *CPU) writeMem(addr uint16, v byte) {
	if c.DebugMode {
		c.bus.WriteDebug(addr, v)
	} else {
		c.bus.Write(addr, v)
	}
}

func (c *CPU) push(v uint16) {
	sp := c.Reg.SP.Get() - 1
	c.writeMem(sp, byte(v>>8))
	sp--
	c.writeMem(sp, byte(v))
	c.Reg.SP.Set(sp)
}

func (c *CPU) pop() uint16 {
	sp := c.Reg.SP.Get()
	lo := c.readMem(sp)
	hi := c.readMem(sp + 1)
	c.Reg.SP.Set(sp + 2)
	return uint16(hi)<<8 | uint16(lo)
}

// Step executes exactly one Z80 instruction, advancing T by its cycle
// count, and returns the number of t-states it consumed (spec §4.3).
func (c *CPU) Step() int {
	startT := c.T

	if c.Halted {
		// HALT re-fetches 0x76 at the same PC until an IRQ is accepted or
		// the debugger forces a resume (spec §4.3).
		c.fetch()
		c.Reg.PC--
		c.T += 4
		return c.T - startT
	}

	opcode := c.fetch()
	c.T += c.execute(opcode)

	return c.T - startT
}

// HasPendingEI reports whether the most recently executed instruction was
// EI, meaning interrupt acceptance must be deferred for one more
// instruction (spec §4.3's eipos rule).
func (c *CPU) HasPendingEI() bool {
	return c.EIPos != noEIPos && c.EIPos == c.T
}

// WrapFrame subtracts tStatesPerFrame from T and EIPos at the end of a
// frame, preserving any overshoot past the frame boundary (spec §4.9).
func (c *CPU) WrapFrame(tStatesPerFrame int) {
	c.T -= tStatesPerFrame
	if c.EIPos != noEIPos {
		c.EIPos -= tStatesPerFrame
	}
}

// AcceptInterrupt raises a maskable interrupt if IFF1 is set and no EI is
// currently deferring acceptance. It returns the number of t-states the
// interrupt-acknowledge cycle consumed, or 0 if the interrupt was not
// accepted.
func (c *CPU) AcceptInterrupt() int {
	if !c.IFF1 || c.HasPendingEI() {
		return 0
	}
	if c.Halted {
		c.Halted = false
		c.Reg.PC++
	}

	c.IFF1, c.IFF2 = false, false
	c.Reg.bumpR()

	switch c.IM {
	case 0:
		// IM0: the ZX convention is that the peripheral places 0xFF (RST
		// 0x38) on the data bus (spec §4.3, §9).
		c.push(c.Reg.PC)
		c.Reg.PC = 0x0038
		c.T += 13
		return 13
	case 1:
		c.push(c.Reg.PC)
		c.Reg.PC = 0x0038
		c.T += 13
		return 13
	default: // IM2
		vecHi := c.Reg.I
		vecLo := byte(0xFF)
		addr := uint16(vecHi)<<8 | uint16(vecLo)
		lo := c.readMem(addr)
		hi := c.readMem(addr + 1)
		c.push(c.Reg.PC)
		c.Reg.PC = uint16(hi)<<8 | uint16(lo)
		c.T += 19
		return 19
	}
}

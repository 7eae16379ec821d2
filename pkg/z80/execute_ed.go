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

// imTable maps the ED IM y-field to the interrupt mode it selects; y values
// 0/1/4/5 all select IM0, 2/6 select IM1, 3/7 select IM2 (the documented
// table has duplicate entries, which real hardware honours exactly).
var imTable = [8]int{0, 0, 1, 2, 0, 0, 1, 2}

// executeED executes one ED-prefixed opcode. The caller (execute/
// executePrefixed) has already charged 4 t-states for the ED fetch itself;
// any DD/FD index mode in effect before the ED byte is discarded, matching
// real Z80 behaviour (ED always operates on BC/DE/HL/SP, never IX/IY).
func (c *CPU) executeED() int {
	op := c.fetch()
	x, y, z, p, q := decodeOpcode(op)

	switch x {
	case 1:
		return c.executeEDx1(y, z, p, q)
	case 2:
		if y >= 4 && z <= 3 {
			return c.executeEDBlock(y, z)
		}
		return 4 // undocumented ED NOP
	default:
		return 4 // undocumented ED NOP (x==0 or x==3)
	}
}

func (c *CPU) executeEDx1(y, z, p, q byte) int {
	switch z {
	case 0: // IN r[y],(C)
		port := c.Reg.BC.Get()
		v := c.ports.In(port, c.Reg.PC)
		if y != 6 {
			c.reg8Set(idxNone, y, v)
		}
		f := sz53pTable[v] | c.Reg.AF.Lo()&FlagC
		c.Reg.AF.SetLo(f)
		return 12
	case 1: // OUT (C),r[y]
		port := c.Reg.BC.Get()
		var v byte
		if y != 6 {
			v = c.reg8Get(idxNone, y)
		}
		c.ports.Out(port, v, c.Reg.PC)
		return 12
	case 2:
		hl := c.Reg.HL.Get()
		rp := c.rpGet(idxNone, p)
		var res uint16
		var f byte
		if q == 0 {
			res, f = sbc16(hl, rp, c.Reg.AF.Lo()&FlagC != 0)
		} else {
			res, f = adc16(hl, rp, c.Reg.AF.Lo()&FlagC != 0)
		}
		c.Reg.HL.Set(res)
		c.Reg.AF.SetLo(f)
		return 15
	case 3:
		nn := c.fetchOperandWord()
		if q == 0 {
			v := c.rpGet(idxNone, p)
			c.writeMem(nn, byte(v))
			c.writeMem(nn+1, byte(v>>8))
		} else {
			lo := c.readMem(nn)
			hi := c.readMem(nn + 1)
			c.rpSet(idxNone, p, uint16(hi)<<8|uint16(lo))
		}
		return 20
	case 4: // NEG
		a := c.Reg.AF.Hi()
		res, f := sub8(0, a, false)
		c.Reg.AF.SetHi(res)
		c.Reg.AF.SetLo(f)
		return 8
	case 5: // RETN / RETI
		c.IFF1 = c.IFF2
		c.Reg.PC = c.pop()
		return 14
	case 6: // IM
		c.IM = imTable[y&7]
		return 8
	default:
		return c.executeEDRegisterOps(y)
	}
}

func (c *CPU) executeEDRegisterOps(y byte) int {
	switch y {
	case 0: // LD I,A
		c.Reg.I = c.Reg.AF.Hi()
		return 9
	case 1: // LD R,A
		c.Reg.R = c.Reg.AF.Hi()
		return 9
	case 2: // LD A,I
		c.Reg.AF.SetHi(c.Reg.I)
		c.setIRFlags(c.Reg.I)
		return 9
	case 3: // LD A,R
		c.Reg.AF.SetHi(c.Reg.R)
		c.setIRFlags(c.Reg.R)
		return 9
	case 4: // RRD
		return c.rrd()
	case 5: // RLD
		return c.rld()
	default:
		return 4 // undocumented ED NOP
	}
}

// setIRFlags sets S/Z/Y/X from v and P/V from IFF2, per LD A,I / LD A,R.
func (c *CPU) setIRFlags(v byte) {
	f := sz53pTable[v] &^ FlagPV
	if c.IFF2 {
		f |= FlagPV
	}
	f |= c.Reg.AF.Lo() & FlagC
	c.Reg.AF.SetLo(f)
}

func (c *CPU) rrd() int {
	a := c.Reg.AF.Hi()
	hl := c.Reg.HL.Get()
	m := c.readMem(hl)
	newA := a&0xF0 | m&0x0F
	newM := a<<4 | m>>4
	c.Reg.AF.SetHi(newA)
	c.writeMem(hl, newM)
	f := sz53pTable[newA] | c.Reg.AF.Lo()&FlagC
	c.Reg.AF.SetLo(f)
	return 18
}

func (c *CPU) rld() int {
	a := c.Reg.AF.Hi()
	hl := c.Reg.HL.Get()
	m := c.readMem(hl)
	newA := a&0xF0 | m>>4
	newM := m<<4 | a&0x0F
	c.Reg.AF.SetHi(newA)
	c.writeMem(hl, newM)
	f := sz53pTable[newA] | c.Reg.AF.Lo()&FlagC
	c.Reg.AF.SetLo(f)
	return 18
}

// executeEDBlock executes one of the sixteen block transfer/search/IO
// instructions (LDI/LDD/LDIR/LDDR, CPI/CPD/CPIR/CPDR, INI/IND/INIR/INDR,
// OUTI/OUTD/OTIR/OTDR). y selects increment-vs-decrement and
// once-vs-repeated; z selects the operation family. A repeated form runs all
// of its iterations within this one call, adding 21 t-states for each
// iteration that repeats and 16 for the last one.
func (c *CPU) executeEDBlock(y, z byte) int {
	decrement := y == 5 || y == 7
	repeat := y == 6 || y == 7

	total := 0
	for {
		var t int
		switch z {
		case 0:
			t = c.blockLD(decrement, repeat)
		case 1:
			t = c.blockCP(decrement, repeat)
		case 2:
			t = c.blockIN(decrement, repeat)
		default:
			t = c.blockOUT(decrement, repeat)
		}
		total += t
		if t != 21 {
			return total
		}
		// The helper rewound PC onto the instruction to repeat it; step
		// past it again and run the next iteration here.
		c.Reg.PC += 2
	}
}

func step16(p *Pair, decrement bool) {
	if decrement {
		p.Set(p.Get() - 1)
	} else {
		p.Set(p.Get() + 1)
	}
}

func (c *CPU) blockLD(decrement, repeat bool) int {
	hl := c.Reg.HL.Get()
	de := c.Reg.DE.Get()
	v := c.readMem(hl)
	c.writeMem(de, v)
	step16(&c.Reg.HL, decrement)
	step16(&c.Reg.DE, decrement)
	bc := c.Reg.BC.Get() - 1
	c.Reg.BC.Set(bc)

	a := c.Reg.AF.Hi()
	f := c.Reg.AF.Lo() & (FlagS | FlagZ | FlagC)
	n := v + a
	if n&0x02 != 0 {
		f |= FlagY
	}
	if n&0x08 != 0 {
		f |= FlagX
	}
	if bc != 0 {
		f |= FlagPV
	}
	c.Reg.AF.SetLo(f)

	if repeat && bc != 0 {
		c.Reg.PC -= 2
		return 21
	}
	return 16
}

func (c *CPU) blockCP(decrement, repeat bool) int {
	a := c.Reg.AF.Hi()
	hl := c.Reg.HL.Get()
	v := c.readMem(hl)
	res := a - v
	step16(&c.Reg.HL, decrement)
	bc := c.Reg.BC.Get() - 1
	c.Reg.BC.Set(bc)

	f := c.Reg.AF.Lo()&FlagC | FlagN
	if res == 0 {
		f |= FlagZ
	}
	if res&0x80 != 0 {
		f |= FlagS
	}
	halfCarry := (a^v^res)&0x10 != 0
	if halfCarry {
		f |= FlagH
	}
	n := res
	if halfCarry {
		n--
	}
	if n&0x02 != 0 {
		f |= FlagY
	}
	if n&0x08 != 0 {
		f |= FlagX
	}
	if bc != 0 {
		f |= FlagPV
	}
	c.Reg.AF.SetLo(f)

	if repeat && bc != 0 && res != 0 {
		c.Reg.PC -= 2
		return 21
	}
	return 16
}

func (c *CPU) blockIN(decrement, repeat bool) int {
	port := c.Reg.BC.Get()
	v := c.ports.In(port, c.Reg.PC)
	hl := c.Reg.HL.Get()
	c.writeMem(hl, v)
	step16(&c.Reg.HL, decrement)
	b := c.Reg.BC.Hi() - 1
	c.Reg.BC.SetHi(b)

	f := byte(0)
	if b == 0 {
		f |= FlagZ
	}
	f |= b & FlagS
	f |= FlagN
	c.Reg.AF.SetLo(f)

	if repeat && b != 0 {
		c.Reg.PC -= 2
		return 21
	}
	return 16
}

func (c *CPU) blockOUT(decrement, repeat bool) int {
	hl := c.Reg.HL.Get()
	v := c.readMem(hl)
	step16(&c.Reg.HL, decrement)
	b := c.Reg.BC.Hi() - 1
	c.Reg.BC.SetHi(b)
	port := c.Reg.BC.Get()
	c.ports.Out(port, v, c.Reg.PC)

	f := byte(0)
	if b == 0 {
		f |= FlagZ
	}
	f |= b & FlagS
	f |= FlagN
	c.Reg.AF.SetLo(f)

	if repeat && b != 0 {
		c.Reg.PC -= 2
		return 21
	}
	return 16
}

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

// executeOpcode executes one unprefixed-table opcode (x/y/z/p/q geometry,
// see decode.go), with HL substituted by IX/IY when mode is active. When
// called from the DD/FD path the caller has already charged the prefix (and,
// for (HL)-referencing opcodes, the displacement-fetch) t-states; the only
// adjustment this function makes for mode is the extra 4 t-states real
// hardware spends on instructions that go on to read/write (IX+d)/(IY+d)
// memory, over and above the plain (HL) form.
func (c *CPU) executeOpcode(op byte, mode idxMode) int {
	x, y, z, p, q := decodeOpcode(op)

	memExtra := func(plain int) int {
		if mode != idxNone {
			return plain + 4
		}
		return plain
	}

	switch x {
	case 0:
		return c.executeX0(op, y, z, p, q, mode, memExtra)
	case 1:
		if op == 0x76 {
			c.Halted = true
			c.Reg.PC-- // stay on the HALT opcode; Step re-fetches it while halted
			return 4
		}
		v := c.reg8Get(mode, z)
		c.reg8Set(mode, y, v)
		if y == 6 || z == 6 {
			return memExtra(7)
		}
		return 4
	case 2:
		v := c.reg8Get(mode, z)
		c.aluOp(y, v)
		if z == 6 {
			return memExtra(7)
		}
		return 4
	default:
		return c.executeX3(op, y, z, p, q, mode, memExtra)
	}
}

func (c *CPU) aluOp(y byte, v byte) {
	a := c.Reg.AF.Hi()
	var res, f byte
	switch y {
	case 0:
		res, f = add8(a, v, false)
	case 1:
		res, f = add8(a, v, c.Reg.AF.Lo()&FlagC != 0)
	case 2:
		res, f = sub8(a, v, false)
	case 3:
		res, f = sub8(a, v, c.Reg.AF.Lo()&FlagC != 0)
	case 4:
		res, f = and8(a, v)
	case 5:
		res, f = xor8(a, v)
	case 6:
		res, f = or8(a, v)
	default:
		f = cp8(a, v)
		c.Reg.AF.SetLo(f)
		return
	}
	c.Reg.AF.SetHi(res)
	c.Reg.AF.SetLo(f)
}

func (c *CPU) executeX0(op, y, z, p, q byte, mode idxMode, memExtra func(int) int) int {
	switch z {
	case 0:
		switch y {
		case 0:
			return 4 // NOP
		case 1:
			c.Reg.ExchangeAFAF()
			return 4
		case 2: // DJNZ d
			e := int8(c.fetchOperand())
			b := c.Reg.BC.Hi() - 1
			c.Reg.BC.SetHi(b)
			if b != 0 {
				c.Reg.PC = uint16(int32(c.Reg.PC) + int32(e))
				return 13
			}
			return 8
		case 3: // JR d
			e := int8(c.fetchOperand())
			c.Reg.PC = uint16(int32(c.Reg.PC) + int32(e))
			return 12
		default: // JR cc,d  y=4..7 -> cc index 0..3
			e := int8(c.fetchOperand())
			if c.condTest(y - 4) {
				c.Reg.PC = uint16(int32(c.Reg.PC) + int32(e))
				return 12
			}
			return 7
		}
	case 1:
		if q == 0 {
			nn := c.fetchOperandWord()
			c.rpSet(mode, p, nn)
			return 10
		}
		res, f := add16(c.pairFor(mode).Get(), c.rpGet(mode, p), c.Reg.AF.Lo())
		c.pairFor(mode).Set(res)
		c.Reg.AF.SetLo(f)
		return 11
	case 2:
		return c.executeIndirectLD(p, q, mode)
	case 3:
		v := c.rpGet(mode, p)
		if q == 0 {
			c.rpSet(mode, p, v+1)
		} else {
			c.rpSet(mode, p, v-1)
		}
		return 6
	case 4:
		if y == 6 {
			addr := c.hlAddr(mode)
			v, f := inc8(c.readMem(addr))
			c.writeMem(addr, v)
			c.Reg.AF.SetLo(f | c.Reg.AF.Lo()&FlagC)
			return memExtra(11)
		}
		v, f := inc8(c.reg8Get(mode, y))
		c.reg8Set(mode, y, v)
		c.Reg.AF.SetLo(f | c.Reg.AF.Lo()&FlagC)
		return 4
	case 5:
		if y == 6 {
			addr := c.hlAddr(mode)
			v, f := dec8(c.readMem(addr))
			c.writeMem(addr, v)
			c.Reg.AF.SetLo(f | c.Reg.AF.Lo()&FlagC)
			return memExtra(11)
		}
		v, f := dec8(c.reg8Get(mode, y))
		c.reg8Set(mode, y, v)
		c.Reg.AF.SetLo(f | c.Reg.AF.Lo()&FlagC)
		return 4
	case 6:
		n := c.fetchOperand()
		c.reg8Set(mode, y, n)
		if y == 6 {
			return memExtra(10)
		}
		return 7
	default: // z==7, y selects the accumulator/flag group
		return c.executeAccumGroup(y)
	}
}

func (c *CPU) executeIndirectLD(p, q byte, mode idxMode) int {
	if q == 0 {
		switch p {
		case 0:
			c.writeMem(c.Reg.BC.Get(), c.Reg.AF.Hi())
			return 7
		case 1:
			c.writeMem(c.Reg.DE.Get(), c.Reg.AF.Hi())
			return 7
		case 2:
			nn := c.fetchOperandWord()
			v := c.pairFor(mode).Get()
			c.writeMem(nn, byte(v))
			c.writeMem(nn+1, byte(v>>8))
			return 16
		default:
			nn := c.fetchOperandWord()
			c.writeMem(nn, c.Reg.AF.Hi())
			return 13
		}
	}
	switch p {
	case 0:
		c.Reg.AF.SetHi(c.readMem(c.Reg.BC.Get()))
		return 7
	case 1:
		c.Reg.AF.SetHi(c.readMem(c.Reg.DE.Get()))
		return 7
	case 2:
		nn := c.fetchOperandWord()
		lo := c.readMem(nn)
		hi := c.readMem(nn + 1)
		c.pairFor(mode).Set(uint16(hi)<<8 | uint16(lo))
		return 16
	default:
		nn := c.fetchOperandWord()
		c.Reg.AF.SetHi(c.readMem(nn))
		return 13
	}
}

func (c *CPU) executeAccumGroup(y byte) int {
	a := c.Reg.AF.Hi()
	f := c.Reg.AF.Lo()
	switch y {
	case 0: // RLCA
		carry := a&0x80 != 0
		res := a<<1 | a>>7
		nf := f&(FlagS|FlagZ|FlagPV) | res&(FlagY|FlagX)
		if carry {
			nf |= FlagC
		}
		c.Reg.AF.SetHi(res)
		c.Reg.AF.SetLo(nf)
	case 1: // RRCA
		carry := a&0x01 != 0
		res := a>>1 | a<<7
		nf := f&(FlagS|FlagZ|FlagPV) | res&(FlagY|FlagX)
		if carry {
			nf |= FlagC
		}
		c.Reg.AF.SetHi(res)
		c.Reg.AF.SetLo(nf)
	case 2: // RLA
		carry := a&0x80 != 0
		var res byte = a << 1
		if f&FlagC != 0 {
			res |= 0x01
		}
		nf := f&(FlagS|FlagZ|FlagPV) | res&(FlagY|FlagX)
		if carry {
			nf |= FlagC
		}
		c.Reg.AF.SetHi(res)
		c.Reg.AF.SetLo(nf)
	case 3: // RRA
		carry := a&0x01 != 0
		res := a >> 1
		if f&FlagC != 0 {
			res |= 0x80
		}
		nf := f&(FlagS|FlagZ|FlagPV) | res&(FlagY|FlagX)
		if carry {
			nf |= FlagC
		}
		c.Reg.AF.SetHi(res)
		c.Reg.AF.SetLo(nf)
	case 4:
		c.daa()
	case 5: // CPL
		res := ^a
		nf := f&(FlagS|FlagZ|FlagPV|FlagC) | res&(FlagY|FlagX) | FlagH | FlagN
		c.Reg.AF.SetHi(res)
		c.Reg.AF.SetLo(nf)
	case 6: // SCF
		nf := f&(FlagS|FlagZ|FlagPV) | a&(FlagY|FlagX) | FlagC
		c.Reg.AF.SetLo(nf)
	default: // CCF
		nf := f&(FlagS|FlagZ|FlagPV) | a&(FlagY|FlagX)
		if f&FlagC == 0 {
			nf |= FlagC
		} else {
			nf |= FlagH
		}
		c.Reg.AF.SetLo(nf)
	}
	return 4
}

// daa implements DAA, the BCD adjustment following an 8-bit add/subtract.
func (c *CPU) daa() {
	a := c.Reg.AF.Hi()
	f := c.Reg.AF.Lo()

	var adjust byte
	carry := f&FlagC != 0
	halfOut := false

	if f&FlagH != 0 || a&0x0F > 9 {
		adjust |= 0x06
	}
	if carry || a > 0x99 {
		adjust |= 0x60
		carry = true
	}

	var res byte
	if f&FlagN != 0 {
		res = a - adjust
		halfOut = f&FlagH != 0 && a&0x0F < 6
	} else {
		res = a + adjust
		halfOut = a&0x0F > 9
	}

	nf := sz53pTable[res] &^ FlagC
	if carry {
		nf |= FlagC
	}
	if halfOut {
		nf |= FlagH
	}
	nf |= f & FlagN

	c.Reg.AF.SetHi(res)
	c.Reg.AF.SetLo(nf)
}

func (c *CPU) executeX3(op, y, z, p, q byte, mode idxMode, memExtra func(int) int) int {
	switch z {
	case 0:
		if c.condTest(y) {
			c.Reg.PC = c.pop()
			return 11
		}
		return 5
	case 1:
		if q == 0 {
			c.rp2Set(mode, p, c.pop())
			return 10
		}
		switch p {
		case 0:
			c.Reg.PC = c.pop()
			return 10
		case 1:
			c.Reg.Exx()
			return 4
		case 2:
			c.Reg.PC = c.pairFor(mode).Get()
			return 4
		default:
			c.Reg.SP.Set(c.pairFor(mode).Get())
			return 6
		}
	case 2:
		nn := c.fetchOperandWord()
		if c.condTest(y) {
			c.Reg.PC = nn
		}
		return 10
	case 3:
		switch y {
		case 0:
			c.Reg.PC = c.fetchOperandWord()
			return 10
		case 1:
			// CB prefix; unreachable here, consumed in execute().
			return 0
		case 2:
			n := c.fetchOperand()
			port := uint16(c.Reg.AF.Hi())<<8 | uint16(n)
			c.ports.Out(port, c.Reg.AF.Hi(), c.Reg.PC)
			return 11
		case 3:
			n := c.fetchOperand()
			port := uint16(c.Reg.AF.Hi())<<8 | uint16(n)
			c.Reg.AF.SetHi(c.ports.In(port, c.Reg.PC))
			return 11
		case 4:
			addr := c.Reg.SP.Get()
			lo := c.readMem(addr)
			hi := c.readMem(addr + 1)
			v := c.pairFor(mode).Get()
			c.writeMem(addr, byte(v))
			c.writeMem(addr+1, byte(v>>8))
			c.pairFor(mode).Set(uint16(hi)<<8 | uint16(lo))
			return 19
		case 5:
			c.Reg.HL, c.Reg.DE = c.Reg.DE, c.Reg.HL
			return 4
		case 6:
			c.IFF1, c.IFF2 = false, false
			return 4
		default:
			c.IFF1, c.IFF2 = true, true
			// EIPos is the t-state at which EI's own execution finishes;
			// HasPendingEI compares against this so interrupt acceptance is
			// deferred until the instruction following EI has also run.
			c.EIPos = c.T + 4
			return 4
		}
	case 4:
		nn := c.fetchOperandWord()
		if c.condTest(y) {
			c.push(c.Reg.PC)
			c.Reg.PC = nn
			return 17
		}
		return 10
	case 5:
		if q == 0 {
			c.push(c.rp2Get(mode, p))
			return 11
		}
		switch p {
		case 0:
			nn := c.fetchOperandWord()
			c.push(c.Reg.PC)
			c.Reg.PC = nn
			return 17
		default:
			// DD/ED/FD prefixes; unreachable here, consumed in execute().
			return 0
		}
	case 6:
		n := c.fetchOperand()
		c.aluOp(y, n)
		return 7
	default:
		c.push(c.Reg.PC)
		c.Reg.PC = uint16(y) * 8
		return 11
	}
}

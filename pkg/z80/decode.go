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

// decodeOpcode splits an opcode byte into the fields the standard Z80
// decoding scheme names x/y/z/p/q (see z80.info/decoding.htm): x = op>>6,
// y = (op>>3)&7, z = op&7, p = y>>1, q = y&1. Every opcode table in this
// package (unprefixed, CB, ED, and the DD/FD reuse of the unprefixed and CB
// tables) is built from these five fields so the geometry stays regular and
// complete instead of an ad hoc partial switch.
func decodeOpcode(op byte) (x, y, z, p, q byte) {
	x = op >> 6
	y = (op >> 3) & 7
	z = op & 7
	p = y >> 1
	q = y & 1
	return
}

// idxMode selects which 16-bit pair substitutes for HL in an instruction:
// none (literal HL), IX or IY. DD/FD-prefixed instructions set this for the
// duration of one instruction.
type idxMode int

const (
	idxNone idxMode = iota
	idxIX
	idxIY
)

func (c *CPU) pairFor(mode idxMode) *Pair {
	switch mode {
	case idxIX:
		return &c.Reg.IX
	case idxIY:
		return &c.Reg.IY
	default:
		return &c.Reg.HL
	}
}

// hlAddr returns the effective address r[6]/(HL) resolves to: literal HL,
// or IX/IY plus the cached displacement fetched earlier in the current
// instruction.
func (c *CPU) hlAddr(mode idxMode) uint16 {
	if mode == idxNone {
		return c.Reg.HL.Get()
	}
	return uint16(int32(c.pairFor(mode).Get()) + int32(c.dispCache))
}

// reg8Get/reg8Set implement the r[z] 8-bit register table: B C D E H L (HL) A.
// Under an active idxMode, H and L are the undocumented IXH/IXL/IYH/IYL
// halves and (HL) becomes (IX+d)/(IY+d).
func (c *CPU) reg8Get(mode idxMode, idx byte) byte {
	switch idx {
	case 0:
		return c.Reg.BC.Hi()
	case 1:
		return c.Reg.BC.Lo()
	case 2:
		return c.Reg.DE.Hi()
	case 3:
		return c.Reg.DE.Lo()
	case 4:
		return c.pairFor(mode).Hi()
	case 5:
		return c.pairFor(mode).Lo()
	case 6:
		return c.readMem(c.hlAddr(mode))
	default:
		return c.Reg.AF.Hi()
	}
}

func (c *CPU) reg8Set(mode idxMode, idx byte, v byte) {
	switch idx {
	case 0:
		c.Reg.BC.SetHi(v)
	case 1:
		c.Reg.BC.SetLo(v)
	case 2:
		c.Reg.DE.SetHi(v)
	case 3:
		c.Reg.DE.SetLo(v)
	case 4:
		c.pairFor(mode).SetHi(v)
	case 5:
		c.pairFor(mode).SetLo(v)
	case 6:
		c.writeMem(c.hlAddr(mode), v)
	default:
		c.Reg.AF.SetHi(v)
	}
}

// rpGet/rpSet implement the rp[p] table used by 16-bit LD/INC/DEC/ADD: BC DE
// HL(or IX/IY) SP.
func (c *CPU) rpGet(mode idxMode, p byte) uint16 {
	switch p {
	case 0:
		return c.Reg.BC.Get()
	case 1:
		return c.Reg.DE.Get()
	case 2:
		return c.pairFor(mode).Get()
	default:
		return c.Reg.SP.Get()
	}
}

func (c *CPU) rpSet(mode idxMode, p byte, v uint16) {
	switch p {
	case 0:
		c.Reg.BC.Set(v)
	case 1:
		c.Reg.DE.Set(v)
	case 2:
		c.pairFor(mode).Set(v)
	default:
		c.Reg.SP.Set(v)
	}
}

// rp2Get/rp2Set implement the rp2[p] table used by PUSH/POP/EX: BC DE
// HL(or IX/IY) AF.
func (c *CPU) rp2Get(mode idxMode, p byte) uint16 {
	if p == 3 {
		return c.Reg.AF.Get()
	}
	return c.rpGet(mode, p)
}

func (c *CPU) rp2Set(mode idxMode, p byte, v uint16) {
	if p == 3 {
		c.Reg.AF.Set(v)
		return
	}
	c.rpSet(mode, p, v)
}

// condTest implements the cc[y] condition table: NZ Z NC C PO PE P M.
func (c *CPU) condTest(y byte) bool {
	f := c.Reg.AF.Lo()
	switch y {
	case 0:
		return f&FlagZ == 0
	case 1:
		return f&FlagZ != 0
	case 2:
		return f&FlagC == 0
	case 3:
		return f&FlagC != 0
	case 4:
		return f&FlagPV == 0
	case 5:
		return f&FlagPV != 0
	case 6:
		return f&FlagS == 0
	default:
		return f&FlagS != 0
	}
}

// usesIndirectHL reports whether the unprefixed opcode op references (HL)
// as one of its operands, which under an active idxMode means a
// displacement byte must be fetched before the instruction's other operand
// bytes (spec §4.3's DD/FD handling).
func usesIndirectHL(op byte) bool {
	x, y, z, _, _ := decodeOpcode(op)
	switch {
	case x == 0 && z == 6 && y == 6:
		return true // LD (HL),n -- LD IXH,n/LD IXL,n (y=4,5) are plain register loads
	case x == 0 && (z == 4 || z == 5) && y == 6:
		return true // INC (HL) / DEC (HL)
	case x == 1 && op != 0x76 && (z == 6 || y == 6):
		return true // LD r,(HL) / LD (HL),r
	case x == 2 && z == 6:
		return true // ALU A,(HL)
	}
	return false
}

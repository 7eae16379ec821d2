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

// executeCB executes one CB-table opcode: rotate/shift group (x=0), BIT
// (x=1), RES (x=2), SET (x=3). In indexed mode (DDCB/FDCB) the operand is
// always (IX+d)/(IY+d) regardless of the z field, per documented Z80
// behaviour; in plain mode the operand is r[z] (register or (HL)).
func (c *CPU) executeCB(mode idxMode, op byte) int {
	x, y, z, _, _ := decodeOpcode(op)

	var addr uint16
	var get func() byte
	var set func(byte)

	if mode != idxNone {
		addr = c.hlAddr(mode)
		get = func() byte { return c.readMem(addr) }
		set = func(v byte) { c.writeMem(addr, v) }
	} else if z == 6 {
		addr = c.Reg.HL.Get()
		get = func() byte { return c.readMem(addr) }
		set = func(v byte) { c.writeMem(addr, v) }
	} else {
		get = func() byte { return c.reg8Get(idxNone, z) }
		set = func(v byte) { c.reg8Set(idxNone, z, v) }
	}

	isMem := mode != idxNone || z == 6

	switch x {
	case 0:
		v := get()
		var res, f byte
		switch y {
		case 0:
			res, f = rlc8(v)
		case 1:
			res, f = rrc8(v)
		case 2:
			res, f = rl8(v, c.Reg.AF.Lo()&FlagC != 0)
		case 3:
			res, f = rr8(v, c.Reg.AF.Lo()&FlagC != 0)
		case 4:
			res, f = sla8(v)
		case 5:
			res, f = sra8(v)
		case 6:
			res, f = sll8(v)
		default:
			res, f = srl8(v)
		}
		set(res)
		c.Reg.AF.SetLo(f)
		if isMem {
			if mode != idxNone {
				return 15
			}
			return 11
		}
		return 4
	case 1: // BIT y,operand
		v := get()
		hi := byte(addr >> 8)
		f := bit8(v, uint(y), c.Reg.AF.Lo(), hi, isMem)
		c.Reg.AF.SetLo(f)
		if isMem {
			if mode != idxNone {
				return 12
			}
			return 8
		}
		return 4
	case 2: // RES y,operand
		set(resBit(get(), uint(y)))
		if isMem {
			if mode != idxNone {
				return 15
			}
			return 11
		}
		return 4
	default: // SET y,operand
		set(setBit(get(), uint(y)))
		if isMem {
			if mode != idxNone {
				return 15
			}
			return 11
		}
		return 4
	}
}

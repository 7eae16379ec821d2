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

// execute dispatches the byte just fetched at M1 through the full prefix
// geometry: plain, CB, ED, DD, FD, DDCB, FDCB (spec §4.3). It returns the
// number of t-states consumed.
func (c *CPU) execute(opcode byte) int {
	switch opcode {
	case 0xCB:
		cbOp := c.fetchOperand()
		return 4 + c.executeCB(idxNone, cbOp)
	case 0xED:
		return 4 + c.executeED()
	case 0xDD:
		return c.executePrefixed(idxIX)
	case 0xFD:
		return c.executePrefixed(idxIY)
	default:
		return c.executeOpcode(opcode, idxNone)
	}
}

// executePrefixed handles one DD or FD prefix byte's worth of work: repeat
// prefixes collapse (the last one wins, each costs 4 t-states, matching
// real Z80 behaviour), a CB following the prefix means DDCB/FDCB, an
// ED following means the prefix had no effect on that ED instruction, and
// anything else is a normal opcode executed with HL substituted by IX/IY.
func (c *CPU) executePrefixed(mode idxMode) int {
	t := 4
	for {
		next := c.fetch()
		switch next {
		case 0xDD:
			mode = idxIX
			t += 4
			continue
		case 0xFD:
			mode = idxIY
			t += 4
			continue
		case 0xCB:
			return t + c.executeDDCB(mode)
		case 0xED:
			// A prefix immediately followed by ED is equivalent to the
			// unprefixed ED instruction; the index prefix is discarded.
			return t + c.executeED()
		default:
			if usesIndirectHL(next) {
				c.dispCache = int8(c.fetchOperand())
				t += 4
			}
			return t + c.executeOpcode(next, mode)
		}
	}
}

// executeDDCB handles the DDCB/FDCB two-byte form: displacement, then an
// opcode byte from the CB table, operating solely on (IX+d)/(IY+d) (the
// documented subset; the undocumented "also copy into a register" variants
// are not modelled).
func (c *CPU) executeDDCB(mode idxMode) int {
	c.dispCache = int8(c.fetchOperand())
	cbOp := c.fetchOperand()
	return 4 + c.executeCB(mode, cbOp)
}

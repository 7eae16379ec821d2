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

// Package disasm implements the Z80 disassembler: it walks the exact same
// prefix geometry (plain/CB/ED/DD/FD/DDCB/FDCB, x/y/z/p/q decoding) that
// pkg/z80 uses to execute instructions, but emits mnemonic templates instead
// of running them.
package disasm

import "fmt"

// idxMode mirrors pkg/z80's idxMode without importing it, since the two
// packages decode the same opcode geometry independently for different
// purposes (execution vs text rendering).
type idxMode int

const (
	idxNone idxMode = iota
	idxIX
	idxIY
)

func (m idxMode) pairName() string {
	switch m {
	case idxIX:
		return "ix"
	case idxIY:
		return "iy"
	default:
		return "hl"
	}
}

// regName returns the textual r[idx] operand. Under an active idxMode, H/L
// become the undocumented ixh/ixl/iyh/iyl halves and (hl) becomes
// (ix+:1)/(iy+:1) with a displacement placeholder.
func regName(mode idxMode, idx byte) string {
	switch idx {
	case 0:
		return "b"
	case 1:
		return "c"
	case 2:
		return "d"
	case 3:
		return "e"
	case 4:
		switch mode {
		case idxIX:
			return "ixh"
		case idxIY:
			return "iyh"
		default:
			return "h"
		}
	case 5:
		switch mode {
		case idxIX:
			return "ixl"
		case idxIY:
			return "iyl"
		default:
			return "l"
		}
	case 6:
		switch mode {
		case idxIX:
			return "(ix+:1)"
		case idxIY:
			return "(iy+:1)"
		default:
			return "(hl)"
		}
	default:
		return "a"
	}
}

func rpName(mode idxMode, p byte) string {
	switch p {
	case 0:
		return "bc"
	case 1:
		return "de"
	case 2:
		return mode.pairName()
	default:
		return "sp"
	}
}

func rp2Name(mode idxMode, p byte) string {
	if p == 3 {
		return "af"
	}
	return rpName(mode, p)
}

var ccNames = [8]string{"nz", "z", "nc", "c", "po", "pe", "p", "m"}

var aluMnemonics = [8]string{"add a,", "adc a,", "sub ", "sbc a,", "and ", "xor ", "or ", "cp "}

var rotMnemonics = [8]string{"rlc ", "rrc ", "rl ", "rr ", "sla ", "sra ", "sll ", "srl "}

// decodeOpcode splits an opcode byte into x/y/z/p/q, matching pkg/z80's
// decode.go exactly so the two packages stay in lockstep.
func decodeOpcode(op byte) (x, y, z, p, q byte) {
	x = op >> 6
	y = (op >> 3) & 7
	z = op & 7
	p = y >> 1
	q = y & 1
	return
}

func fmtRST(y byte) string {
	return fmt.Sprintf("rst #%02X", y*8)
}

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

package disasm

import (
	"fmt"
	"strconv"
	"strings"
)

// OperandValues carries the decoded bytes/word a template's placeholders
// substitute for. Byte1 is the first byte-sized operand encountered in the
// template (often a displacement or immediate), Byte2 a second one (the
// immediate byte of LD (ix+d),n), Word the 16-bit immediate/address.
type OperandValues struct {
	Byte1 byte
	Byte2 byte
	Word  uint16
}

// Decoded is the result of disassembling one instruction at a given address.
type Decoded struct {
	Template string // mnemonic with :1/:3 (byte) and :2 (word) placeholders
	Length   int    // total instruction length in bytes, prefixes included
	Operands OperandValues
}

// usesIndirectHL mirrors pkg/z80's predicate of the same name: whether the
// unprefixed opcode addresses (HL), meaning a DD/FD form fetches a
// displacement byte immediately after the opcode.
func usesIndirectHL(op byte) bool {
	x, y, z, _, _ := decodeOpcode(op)
	switch {
	case x == 0 && z == 6 && y == 6:
		return true
	case x == 0 && (z == 4 || z == 5) && y == 6:
		return true
	case x == 1 && op != 0x76 && (z == 6 || y == 6):
		return true
	case x == 2 && z == 6:
		return true
	}
	return false
}

// DisassembleSingleCommand decodes the instruction at buf[0:], which is
// assumed to start at z80 address addr. It returns the mnemonic template,
// the instruction's total length in bytes, and false if buf is too short to
// hold a complete instruction.
func DisassembleSingleCommand(buf []byte, addr uint16) (Decoded, bool) {
	if len(buf) == 0 {
		return Decoded{}, false
	}

	pos := 0
	mode := idxNone
	prefixLen := 0

	for {
		if pos >= len(buf) {
			return Decoded{}, false
		}
		b := buf[pos]
		switch b {
		case 0xDD:
			mode = idxIX
			pos++
			prefixLen++
			continue
		case 0xFD:
			mode = idxIY
			pos++
			prefixLen++
			continue
		case 0xCB:
			return decodeCBForm(buf, pos, mode, prefixLen)
		case 0xED:
			return decodeEDForm(buf, pos)
		}
		return decodeMainForm(buf, pos, mode, prefixLen)
	}
}

func decodeMainForm(buf []byte, pos int, mode idxMode, prefixLen int) (Decoded, bool) {
	op := buf[pos]
	pos++

	var disp byte
	hasDisp := false
	if mode != idxNone && usesIndirectHL(op) {
		if pos >= len(buf) {
			return Decoded{}, false
		}
		disp = buf[pos]
		pos++
		hasDisp = true
	}

	tmpl, operandBytes, err := mainTemplate(op, mode)
	if err {
		return Decoded{}, false
	}

	d := Decoded{Template: tmpl}
	if hasDisp {
		d.Operands.Byte1 = disp
	}

	switch operandBytes {
	case 0:
	case 1:
		if pos >= len(buf) {
			return Decoded{}, false
		}
		if hasDisp {
			d.Operands.Byte2 = buf[pos]
		} else {
			d.Operands.Byte1 = buf[pos]
		}
		pos++
	case 2:
		if pos+1 >= len(buf) {
			return Decoded{}, false
		}
		d.Operands.Word = uint16(buf[pos]) | uint16(buf[pos+1])<<8
		pos += 2
	}

	d.Length = pos
	return d, true
}

// mainTemplate returns the mnemonic template and the number of operand bytes
// following the opcode (and any displacement) for the unprefixed table, with
// HL substituted by IX/IY when mode is active.
func mainTemplate(op byte, mode idxMode) (string, int, bool) {
	x, y, z, p, q := decodeOpcode(op)

	switch x {
	case 0:
		return mainX0Template(op, y, z, p, q, mode)
	case 1:
		if op == 0x76 {
			return "halt", 0, false
		}
		return fmt.Sprintf("ld %s,%s", regName(mode, y), regName(mode, z)), 0, false
	case 2:
		return aluMnemonics[y] + regName(mode, z), 0, false
	default:
		return mainX3Template(op, y, z, p, q, mode)
	}
}

func mainX0Template(op, y, z, p, q byte, mode idxMode) (string, int, bool) {
	switch z {
	case 0:
		switch y {
		case 0:
			return "nop", 0, false
		case 1:
			return "ex af,af'", 0, false
		case 2:
			return "djnz :1", 1, false
		case 3:
			return "jr :1", 1, false
		default:
			return fmt.Sprintf("jr %s,:1", ccNames[y-4]), 1, false
		}
	case 1:
		if q == 0 {
			return fmt.Sprintf("ld %s,:2", rpName(mode, p)), 2, false
		}
		return fmt.Sprintf("add %s,%s", mode.pairName(), rpName(mode, p)), 0, false
	case 2:
		switch {
		case q == 0 && p == 0:
			return "ld (bc),a", 0, false
		case q == 0 && p == 1:
			return "ld (de),a", 0, false
		case q == 0 && p == 2:
			return "ld (:2)," + mode.pairName(), 2, false
		case q == 0 && p == 3:
			return "ld (:2),a", 2, false
		case q == 1 && p == 0:
			return "ld a,(bc)", 0, false
		case q == 1 && p == 1:
			return "ld a,(de)", 0, false
		case q == 1 && p == 2:
			return fmt.Sprintf("ld %s,(:2)", mode.pairName()), 2, false
		default:
			return "ld a,(:2)", 2, false
		}
	case 3:
		if q == 0 {
			return fmt.Sprintf("inc %s", rpName(mode, p)), 0, false
		}
		return fmt.Sprintf("dec %s", rpName(mode, p)), 0, false
	case 4:
		return fmt.Sprintf("inc %s", regName(mode, y)), 0, false
	case 5:
		return fmt.Sprintf("dec %s", regName(mode, y)), 0, false
	case 6:
		if y == 6 {
			return fmt.Sprintf("ld %s,:3", regName(mode, y)), 1, false
		}
		return fmt.Sprintf("ld %s,:1", regName(mode, y)), 1, false
	default:
		names := [8]string{"rlca", "rrca", "rla", "rra", "daa", "cpl", "scf", "ccf"}
		return names[y], 0, false
	}
}

func mainX3Template(op, y, z, p, q byte, mode idxMode) (string, int, bool) {
	switch z {
	case 0:
		return fmt.Sprintf("ret %s", ccNames[y]), 0, false
	case 1:
		if q == 0 {
			return fmt.Sprintf("pop %s", rp2Name(mode, p)), 0, false
		}
		switch p {
		case 0:
			return "ret", 0, false
		case 1:
			return "exx", 0, false
		case 2:
			return fmt.Sprintf("jp (%s)", mode.pairName()), 0, false
		default:
			return fmt.Sprintf("ld sp,%s", mode.pairName()), 0, false
		}
	case 2:
		return fmt.Sprintf("jp %s,:2", ccNames[y]), 2, false
	case 3:
		switch y {
		case 0:
			return "jp :2", 2, false
		case 2:
			return "out (:1),a", 1, false
		case 3:
			return "in a,(:1)", 1, false
		case 4:
			return fmt.Sprintf("ex (sp),%s", mode.pairName()), 0, false
		case 5:
			return "ex de,hl", 0, false
		case 6:
			return "di", 0, false
		default:
			return "ei", 0, false
		}
	case 4:
		return fmt.Sprintf("call %s,:2", ccNames[y]), 2, false
	case 5:
		if q == 0 {
			return fmt.Sprintf("push %s", rp2Name(mode, p)), 0, false
		}
		return "call :2", 2, false
	case 6:
		return aluMnemonics[y] + ":1", 1, false
	default:
		return fmtRST(y), 0, false
	}
}

func decodeCBForm(buf []byte, pos int, mode idxMode, prefixLen int) (Decoded, bool) {
	var disp byte
	hasDisp := mode != idxNone
	pos++ // CB byte
	if hasDisp {
		if pos >= len(buf) {
			return Decoded{}, false
		}
		disp = buf[pos]
		pos++
	}
	if pos >= len(buf) {
		return Decoded{}, false
	}
	op := buf[pos]
	pos++

	x, y, z, _, _ := decodeOpcode(op)

	var operandName string
	if mode != idxNone {
		if mode == idxIX {
			operandName = "(ix+:1)"
		} else {
			operandName = "(iy+:1)"
		}
	} else if z == 6 {
		operandName = "(hl)"
	} else {
		operandName = regName(idxNone, z)
	}

	var tmpl string
	switch x {
	case 0:
		tmpl = rotMnemonics[y] + operandName
	case 1:
		tmpl = fmt.Sprintf("bit %d,%s", y, operandName)
	case 2:
		tmpl = fmt.Sprintf("res %d,%s", y, operandName)
	default:
		tmpl = fmt.Sprintf("set %d,%s", y, operandName)
	}

	d := Decoded{Template: tmpl, Length: pos}
	if hasDisp {
		d.Operands.Byte1 = disp
	}
	return d, true
}

func decodeEDForm(buf []byte, pos int) (Decoded, bool) {
	pos++ // ED byte
	if pos >= len(buf) {
		return Decoded{}, false
	}
	op := buf[pos]
	pos++

	x, y, z, p, q := decodeOpcode(op)

	var tmpl string
	operandBytes := 0

	switch x {
	case 1:
		tmpl, operandBytes = edX1Template(y, z, p, q)
	case 2:
		if y >= 4 && z <= 3 {
			tmpl = edBlockMnemonic(y, z)
		} else {
			tmpl = "nop"
		}
	default:
		tmpl = "nop"
	}

	d := Decoded{Template: tmpl}
	switch operandBytes {
	case 1:
		if pos >= len(buf) {
			return Decoded{}, false
		}
		d.Operands.Byte1 = buf[pos]
		pos++
	case 2:
		if pos+1 >= len(buf) {
			return Decoded{}, false
		}
		d.Operands.Word = uint16(buf[pos]) | uint16(buf[pos+1])<<8
		pos += 2
	}
	d.Length = pos
	return d, true
}

func edX1Template(y, z, p, q byte) (string, int) {
	switch z {
	case 0:
		if y == 6 {
			return "in (c)", 0
		}
		return fmt.Sprintf("in %s,(c)", regName(idxNone, y)), 0
	case 1:
		if y == 6 {
			return "out (c),0", 0
		}
		return fmt.Sprintf("out (c),%s", regName(idxNone, y)), 0
	case 2:
		if q == 0 {
			return fmt.Sprintf("sbc hl,%s", rpName(idxNone, p)), 0
		}
		return fmt.Sprintf("adc hl,%s", rpName(idxNone, p)), 0
	case 3:
		if q == 0 {
			return fmt.Sprintf("ld (:2),%s", rpName(idxNone, p)), 2
		}
		return fmt.Sprintf("ld %s,(:2)", rpName(idxNone, p)), 2
	case 4:
		return "neg", 0
	case 5:
		if y == 1 {
			return "reti", 0
		}
		return "retn", 0
	case 6:
		return fmt.Sprintf("im %d", imTable[y&7]), 0
	default:
		names := [8]string{"ld i,a", "ld r,a", "ld a,i", "ld a,r", "rrd", "rld", "nop", "nop"}
		return names[y], 0
	}
}

var imTable = [8]int{0, 0, 1, 2, 0, 0, 1, 2}

func edBlockMnemonic(y, z byte) string {
	names := [4][4]string{
		{"ldi", "cpi", "ini", "outi"},
		{"ldd", "cpd", "ind", "outd"},
		{"ldir", "cpir", "inir", "otir"},
		{"lddr", "cpdr", "indr", "otdr"},
	}
	return names[y-4][z]
}

// FormatOperandString substitutes a template's :1/:2/:3 placeholders with
// hex-formatted operand values, using a '#' prefix (the ZX assembler
// convention) and zero-padding to the field width.
func FormatOperandString(template string, v OperandValues) string {
	s := template
	s = strings.ReplaceAll(s, ":2", fmt.Sprintf("#%04X", v.Word))
	s = strings.ReplaceAll(s, ":3", fmt.Sprintf("#%02X", v.Byte2))
	s = strings.ReplaceAll(s, ":1", fmt.Sprintf("#%02X", v.Byte1))
	return s
}

// ParseOperands reverses FormatOperandString: given the template that
// produced formatted and the formatted text itself, it recovers the operand
// values, walking the two strings in lockstep. It is the other half of the
// lossless round-trip the disassembler guarantees (spec testable property 1).
func ParseOperands(template, formatted string) (OperandValues, bool) {
	var v OperandValues
	ti, fi := 0, 0
	for ti < len(template) {
		if ti+1 < len(template) && template[ti] == ':' && (template[ti+1] == '1' || template[ti+1] == '2' || template[ti+1] == '3') {
			placeholder := template[ti : ti+2]
			ti += 2

			rest := template[ti:]
			nextLiteral := firstLiteralRun(rest)

			var end int
			if nextLiteral == "" {
				end = len(formatted)
			} else {
				idx := strings.Index(formatted[fi:], nextLiteral)
				if idx < 0 {
					return v, false
				}
				end = fi + idx
			}

			token := strings.TrimPrefix(formatted[fi:end], "#")
			fi = end

			switch placeholder {
			case ":1":
				n, err := strconv.ParseUint(token, 16, 8)
				if err != nil {
					return v, false
				}
				v.Byte1 = byte(n)
			case ":3":
				n, err := strconv.ParseUint(token, 16, 8)
				if err != nil {
					return v, false
				}
				v.Byte2 = byte(n)
			default:
				n, err := strconv.ParseUint(token, 16, 16)
				if err != nil {
					return v, false
				}
				v.Word = uint16(n)
			}
			continue
		}

		if fi >= len(formatted) || formatted[fi] != template[ti] {
			return v, false
		}
		ti++
		fi++
	}
	return v, true
}

// firstLiteralRun returns the characters of s up to (but not including) the
// next :1/:2/:3 placeholder, or all of s if there is none.
func firstLiteralRun(s string) string {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == ':' && (s[i+1] == '1' || s[i+1] == '2' || s[i+1] == '3') {
			return s[:i]
		}
	}
	return s
}

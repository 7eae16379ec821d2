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

package disasm_test

import (
	"testing"

	"github.com/alfishe/unreal-ng-sub004/pkg/disasm"
)

func TestDisassembleKnownExamples(t *testing.T) {
	cases := []struct {
		name string
		buf  []byte
		want string
	}{
		{"cb-bit-reg", []byte{0xCB, 0x47}, "bit 0,a"},
		{"ddcb-bit-mem", []byte{0xDD, 0xCB, 0x10, 0x46}, "bit 0,(ix+#10)"},
		{"ed-ldir", []byte{0xED, 0xB0}, "ldir"},
		{"ld-a,n", []byte{0x3E, 0x05}, "ld a,#05"},
		{"jp-nn", []byte{0xC3, 0x2C, 0x16}, "jp #162C"},
		{"djnz", []byte{0x10, 0xFE}, "djnz #FE"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d, ok := disasm.DisassembleSingleCommand(c.buf, 0)
			if !ok {
				t.Fatalf("decode failed")
			}
			if d.Length != len(c.buf) {
				t.Fatalf("length = %d, want %d", d.Length, len(c.buf))
			}
			got := disasm.FormatOperandString(d.Template, d.Operands)
			if got != c.want {
				t.Fatalf("formatted = %q, want %q", got, c.want)
			}
		})
	}
}

func TestOperandRoundTrip(t *testing.T) {
	buffers := [][]byte{
		{0xCB, 0x47},
		{0xDD, 0xCB, 0x10, 0x46},
		{0xED, 0xB0},
		{0x3E, 0x05},
		{0xC3, 0x2C, 0x16},
		{0x10, 0xFE},
		{0xDD, 0x36, 0x02, 0x77},
		{0x21, 0x00, 0x80},
		{0xED, 0x43, 0x00, 0x50},
		{0xFD, 0x7E, 0x05},
	}

	for _, buf := range buffers {
		d, ok := disasm.DisassembleSingleCommand(buf, 0)
		if !ok {
			t.Fatalf("decode failed for %v", buf)
		}
		formatted := disasm.FormatOperandString(d.Template, d.Operands)
		parsed, ok := disasm.ParseOperands(d.Template, formatted)
		if !ok {
			t.Fatalf("parse failed for template %q formatted %q", d.Template, formatted)
		}
		roundTripped := disasm.FormatOperandString(d.Template, parsed)
		if roundTripped != formatted {
			t.Fatalf("round trip mismatch: %q != %q", roundTripped, formatted)
		}
	}
}

func TestLdIndexedWithImmediateUsesTwoDistinctBytes(t *testing.T) {
	// LD (IX+2),0x77 -- displacement and immediate must not collide.
	buf := []byte{0xDD, 0x36, 0x02, 0x77}
	d, ok := disasm.DisassembleSingleCommand(buf, 0)
	if !ok {
		t.Fatalf("decode failed")
	}
	if d.Operands.Byte1 != 0x02 || d.Operands.Byte2 != 0x77 {
		t.Fatalf("operands = %+v, want displacement 0x02 and immediate 0x77", d.Operands)
	}
}

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

package z80_test

import (
	"testing"

	"github.com/alfishe/unreal-ng-sub004/pkg/z80"
)

type mockBus struct {
	mem [0x10000]byte
}

func (m *mockBus) Read(addr uint16) uint8            { return m.mem[addr] }
func (m *mockBus) Write(addr uint16, v uint8)        { m.mem[addr] = v }
func (m *mockBus) ReadDebug(addr uint16, _ bool) uint8 { return m.mem[addr] }
func (m *mockBus) WriteDebug(addr uint16, v uint8)     { m.mem[addr] = v }

func (m *mockBus) load(origin uint16, bytes ...byte) {
	copy(m.mem[origin:], bytes)
}

type mockPorts struct {
	out      map[uint16]byte
	inValues map[uint16]byte
}

func newMockPorts() *mockPorts {
	return &mockPorts{out: map[uint16]byte{}, inValues: map[uint16]byte{}}
}

func (p *mockPorts) In(port uint16, _ uint16) uint8 { return p.inValues[port] }
func (p *mockPorts) Out(port uint16, v uint8, _ uint16) { p.out[port] = v }

func newTestCPU() (*z80.CPU, *mockBus, *mockPorts) {
	bus := &mockBus{}
	ports := newMockPorts()
	cpu := z80.NewCPU(bus, ports)
	cpu.Reset()
	return cpu, bus, ports
}

func TestLoadImmediateAndAdd(t *testing.T) {
	cpu, bus, _ := newTestCPU()
	// LD A,5 ; LD B,3 ; ADD A,B
	bus.load(0, 0x3E, 0x05, 0x06, 0x03, 0x80)

	cpu.Step()
	cpu.Step()
	cpu.Step()

	if got := cpu.Reg.AF.Hi(); got != 8 {
		t.Fatalf("A = %d, want 8", got)
	}
	if cpu.Reg.AF.Lo()&z80.FlagZ != 0 {
		t.Fatalf("Z flag should be clear")
	}
}

func TestDJNZLoop(t *testing.T) {
	cpu, bus, _ := newTestCPU()
	// LD B,3 ; loop: DEC A ; DJNZ loop ; HALT
	bus.load(0, 0x06, 0x03, 0x3D, 0x10, 0xFD, 0x76)

	for i := 0; i < 8; i++ { // LD B,n ; 3x(DEC A ; DJNZ) ; HALT
		cpu.Step()
	}

	if cpu.Reg.BC.Hi() != 0 {
		t.Fatalf("B = %d, want 0", cpu.Reg.BC.Hi())
	}
	if cpu.Reg.AF.Hi() != 0xFD {
		t.Fatalf("A = %#x, want 0xFD", cpu.Reg.AF.Hi())
	}
	if !cpu.Halted {
		t.Fatalf("CPU should be halted")
	}
}

func TestCBBitTestsHLMemory(t *testing.T) {
	cpu, bus, _ := newTestCPU()
	// LD HL,0x8000 ; LD (HL),0x40 ; BIT 6,(HL)
	bus.load(0, 0x21, 0x00, 0x80, 0x36, 0x40, 0xCB, 0x76)

	cpu.Step()
	cpu.Step()
	cpu.Step()

	if cpu.Reg.AF.Lo()&z80.FlagZ != 0 {
		t.Fatalf("Z flag should be clear, bit 6 is set")
	}
}

func TestIndexedLoadWithDisplacement(t *testing.T) {
	cpu, bus, _ := newTestCPU()
	// LD IX,0x9000 ; LD (IX+2),0x77 ; LD A,(IX+2)
	bus.load(0, 0xDD, 0x21, 0x00, 0x90, 0xDD, 0x36, 0x02, 0x77, 0xDD, 0x7E, 0x02)

	cpu.Step()
	cpu.Step()
	cpu.Step()

	if got := bus.mem[0x9002]; got != 0x77 {
		t.Fatalf("mem[0x9002] = %#x, want 0x77", got)
	}
	if got := cpu.Reg.AF.Hi(); got != 0x77 {
		t.Fatalf("A = %#x, want 0x77", got)
	}
}

func TestLDIRCopiesBlockAndStopsOnZeroCounter(t *testing.T) {
	cpu, bus, _ := newTestCPU()
	bus.mem[0x1000] = 0xAA
	bus.mem[0x1001] = 0xBB
	// LD HL,0x1000 ; LD DE,0x2000 ; LD BC,2 ; ED B0 (LDIR)
	bus.load(0, 0x21, 0x00, 0x10, 0x11, 0x00, 0x20, 0x01, 0x02, 0x00, 0xED, 0xB0)

	cpu.Step()
	cpu.Step()
	cpu.Step()
	cpu.Step() // first LDIR iteration, repeats internally until BC==0

	if bus.mem[0x2000] != 0xAA || bus.mem[0x2001] != 0xBB {
		t.Fatalf("block not copied: %#x %#x", bus.mem[0x2000], bus.mem[0x2001])
	}
	if cpu.Reg.BC.Get() != 0 {
		t.Fatalf("BC = %d, want 0", cpu.Reg.BC.Get())
	}
}

func TestInterruptModeAndAcceptance(t *testing.T) {
	cpu, bus, _ := newTestCPU()
	// EI ; NOP
	bus.load(0, 0xFB, 0x00)
	cpu.IFF1 = true

	cpu.Step() // EI: interrupt acceptance deferred for the next instruction
	if n := cpu.AcceptInterrupt(); n != 0 {
		t.Fatalf("interrupt accepted immediately after EI, got %d t-states", n)
	}

	cpu.Step() // NOP: EI's deferral has expired
	if n := cpu.AcceptInterrupt(); n == 0 {
		t.Fatalf("interrupt should now be accepted")
	}
	if cpu.Reg.PC != 0x0038 {
		t.Fatalf("PC = %#x, want 0x0038", cpu.Reg.PC)
	}
}

func TestOutAndInPorts(t *testing.T) {
	cpu, bus, ports := newTestCPU()
	ports.inValues[0xFEFE] = 0x1F
	// LD A,0xFE ; OUT (0xFE),A ; IN A,(0xFE)
	bus.load(0, 0x3E, 0xFE, 0xD3, 0xFE, 0xDB, 0xFE)

	cpu.Step()
	cpu.Step()
	cpu.Step()

	if ports.out[0xFEFE] != 0xFE {
		t.Fatalf("OUT wrote %#x to port 0xFEFE, want 0xFE", ports.out[0xFEFE])
	}
	if cpu.Reg.AF.Hi() != 0x1F {
		t.Fatalf("A = %#x after IN, want 0x1F", cpu.Reg.AF.Hi())
	}
}

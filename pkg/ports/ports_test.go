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

package ports_test

import (
	"testing"

	"github.com/alfishe/unreal-ng-sub004/pkg/memory"
	"github.com/alfishe/unreal-ng-sub004/pkg/model"
	"github.com/alfishe/unreal-ng-sub004/pkg/ports"
)

func TestPortMaskPredicatesMatchReferenceFormulas(t *testing.T) {
	cases := []struct {
		name string
		pred func(uint16) bool
		mask, match uint32
	}{
		{"ULA", ports.IsULAPort, 0x0001, 0x0000},
		{"7FFD128", ports.Is7FFDPort128, 0x8002, 0x0000},
		{"7FFDScorpion", ports.Is7FFDPortScorpion, 0xD027, 0x5025},
		{"1FFDPlus3", ports.Is1FFDPortPlus3, 0xF002, 0x1000},
		{"1FFDScorpion", ports.Is1FFDPortScorpion, 0xD027, 0x1025},
		{"DFFDProfi", ports.IsDFFDPortProfi, 0x2002, 0x0000},
		{"BFFD", ports.IsBFFDPort, 0xC002, 0x8000},
		{"FFFD", ports.IsFFFDPort, 0xC002, 0xC000},
	}

	for _, c := range cases {
		for port := 0; port <= 0xFFFF; port += 37 { // sample across the space
			want := uint32(port)&c.mask == c.match
			if got := c.pred(uint16(port)); got != want {
				t.Fatalf("%s: port %#04x predicate = %v, want %v", c.name, port, got, want)
			}
		}
	}
}

type fakeULA struct {
	out  byte
	last uint16
}

func (f *fakeULA) In(port uint16, pc uint16) uint8 { return 0x1F }
func (f *fakeULA) Out(port uint16, value uint8, pc uint16) {
	f.out = value
	f.last = port
}

func newManager(t *testing.T) *memory.Manager {
	t.Helper()
	pool := memory.NewPool(8, 4)
	return memory.NewManager(pool)
}

func TestSpectrum48DecoderRoutesULAOnly(t *testing.T) {
	d := ports.NewSpectrum48Decoder(newManager(t))
	ula := &fakeULA{}
	d.RegisterPeripheral(ports.ULAPort, ula)

	d.DecodeOut(0xFE, 0x07, 0x8000)
	if ula.out != 0x07 {
		t.Fatalf("ULA Out not called, got %+v", ula)
	}
	if v := d.DecodeIn(0xFE, 0x8000); v != 0x1F {
		t.Fatalf("DecodeIn = %#x, want 0x1F", v)
	}
	if v := d.DecodeIn(0x1F, 0x8000); v != 0xFF {
		t.Fatalf("non-ULA port should read floating bus 0xFF, got %#x", v)
	}
}

func TestSpectrum128PagingAndLock(t *testing.T) {
	mgr := newManager(t)
	d := ports.NewSpectrum128Decoder(mgr)
	d.Reset()

	d.DecodeOut(0x7FFD, 0x07, 0) // RAM page 7 -> bank 3
	mgr.SetDebugMode(false)
	mgr.Write(0xC000, 0xAB)
	if got := mgr.Read(0xC000); got != 0xAB {
		t.Fatalf("bank3 write/read through page 7 failed, got %#x", got)
	}

	d.DecodeOut(0x7FFD, 0x23, 0) // page 3, lock bit set
	mgr.Write(0xC000, 0xCD)      // lands in page 3
	d.DecodeOut(0x7FFD, 0x00, 0) // should be ignored: lock is set

	if got := mgr.Read(0xC000); got != 0xCD {
		t.Fatalf("expected bank 3 still mapped to the locked page (3), read %#x", got)
	}

	d.Reset() // clears the lock
	d.DecodeOut(0x7FFD, 0x01, 0)
	mgr.Write(0xC000, 0xEE)
	if got := mgr.Read(0xC000); got != 0xEE {
		t.Fatalf("paging should work again after Reset, read %#x", got)
	}
}

func TestScreenChangeHookDebouncesRepeatedBit(t *testing.T) {
	mgr := newManager(t)
	d := ports.NewSpectrum128Decoder(mgr)
	d.Reset()

	calls := 0
	d.SetScreenChangeHook(func(shadow bool) { calls++ })

	d.DecodeOut(0x7FFD, 0x08, 0) // shadow on
	d.DecodeOut(0x7FFD, 0x08, 0) // unchanged, should not re-fire
	d.DecodeOut(0x7FFD, 0x09, 0) // still shadow (bit3 set), should not re-fire
	d.DecodeOut(0x7FFD, 0x00, 0) // shadow off

	if calls != 2 {
		t.Fatalf("screen change hook fired %d times, want 2", calls)
	}
	if d.ScreenIsShadow() {
		t.Fatalf("expected normal screen after the last OUT")
	}
}

func TestPentagon512ExtendsRAMPageTo5Bits(t *testing.T) {
	pool := memory.NewPool(32, 4)
	mgr := memory.NewManager(pool)
	d := ports.NewPentagon512Decoder(mgr)
	d.Reset()

	// bits[0..2]=0b101=5, bits[6..7]=0b11 -> page = 5 | (3<<3) = 29
	d.DecodeOut(0x7FFD, 0b11000101, 0)
	mgr.Write(0xC000, 0x42)
	if got := mgr.Read(0xC000); got != 0x42 {
		t.Fatalf("Pentagon-512 paging to extended page failed, read %#x", got)
	}
}

func TestProfiDFFDReadsBackWrittenValue(t *testing.T) {
	mgr := newManager(t)
	d := ports.NewProfiDecoder(mgr)
	d.Reset()
	d.DecodeOut(0xDFFD, 0x03, 0)
	if v := d.DecodeIn(0xDFFD, 0); v != 0x03 {
		t.Fatalf("DFFD readback = %#x, want 0x03", v)
	}
}

func TestPlus3UnimplementedExtendedModeReadsFloatingBus(t *testing.T) {
	mgr := newManager(t)
	d := ports.NewPlus3Decoder(mgr)
	d.Reset()
	if v := d.DecodeIn(0x1FFD, 0); v != 0xFF {
		t.Fatalf("Plus3 extended paging IN = %#x, want 0xFF", v)
	}
}

func TestFactoryProducesADecoderForEveryModel(t *testing.T) {
	mgr := newManager(t)
	for _, id := range []model.ID{
		model.Spectrum48, model.Spectrum128, model.SpectrumPlus2A, model.SpectrumPlus3,
		model.Pentagon128, model.Pentagon512, model.Pentagon1024, model.Scorpion256,
		model.Profi, model.TSConf,
	} {
		d, err := ports.New(id, mgr)
		if err != nil {
			t.Fatalf("New(%v) = %v", id, err)
		}
		if d == nil {
			t.Fatalf("New(%v) returned a nil decoder", id)
		}
	}
}

func TestSpectrum48ResetMapsFixedBanks(t *testing.T) {
	mgr := newManager(t)
	d := ports.NewSpectrum48Decoder(mgr)
	d.Reset()

	mgr.SetDebugMode(false)
	mgr.Write(0x0000, 0x11) // ROM bank: write dropped
	if got := mgr.Read(0x0000); got == 0x11 {
		t.Fatalf("bank 0 should be ROM (writes dropped), read back %#x", got)
	}

	mgr.Write(0x4000, 0xAA)
	mgr.Write(0x8000, 0xBB)
	mgr.Write(0xC000, 0xCC)
	if got := mgr.Read(0x4000); got != 0xAA {
		t.Fatalf("bank 1 (0x4000) = %#x, want 0xAA", got)
	}
	if got := mgr.Read(0x8000); got != 0xBB {
		t.Fatalf("bank 2 (0x8000) = %#x, want 0xBB", got)
	}
	if got := mgr.Read(0xC000); got != 0xCC {
		t.Fatalf("bank 3 (0xC000) = %#x, want 0xCC", got)
	}
}

func TestSpectrum128ResetFixesBanksOneAndTwo(t *testing.T) {
	mgr := newManager(t)
	d := ports.NewSpectrum128Decoder(mgr)
	d.Reset()

	mgr.SetDebugMode(false)
	mgr.Write(0x4000, 0x01)
	mgr.Write(0x8000, 0x02)
	if got := mgr.Read(0x4000); got != 0x01 {
		t.Fatalf("bank 1 (fixed RAM page 5) = %#x, want 0x01", got)
	}
	if got := mgr.Read(0x8000); got != 0x02 {
		t.Fatalf("bank 2 (fixed RAM page 2) = %#x, want 0x02", got)
	}

	// Paging bank 3 to another RAM page must not disturb bank 1.
	d.DecodeOut(0x7FFD, 0x04, 0)
	if got := mgr.Read(0x4000); got != 0x01 {
		t.Fatalf("bank 1 disturbed by 0x7FFD paging, read %#x", got)
	}
}

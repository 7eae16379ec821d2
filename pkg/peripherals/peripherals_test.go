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

package peripherals_test

import (
	"testing"

	"github.com/alfishe/unreal-ng-sub004/pkg/peripherals"
)

func TestKeyMatrixIdleReadsAllOnes(t *testing.T) {
	k := peripherals.NewKeyMatrix()
	ula := peripherals.NewULA(k, peripherals.NewBeeper(100))
	if v := ula.In(0xFEFE, 0); v&0x1F != 0x1F {
		t.Fatalf("idle row = %#02x, want low 5 bits set", v)
	}
}

func TestKeyMatrixPressedKeyClearsBit(t *testing.T) {
	k := peripherals.NewKeyMatrix()
	k.SetKey(0, 0, true) // row 0 (0xFEFE selects it), bit 0
	ula := peripherals.NewULA(k, peripherals.NewBeeper(100))
	v := ula.In(0xFEFE, 0)
	if v&0x01 != 0 {
		t.Fatalf("pressed key bit still set: %#02x", v)
	}
	if v&0x1E != 0x1E {
		t.Fatalf("other bits in the row should remain set: %#02x", v)
	}
}

func TestULAOutSetsBorderAndBeeper(t *testing.T) {
	k := peripherals.NewKeyMatrix()
	beeper := peripherals.NewBeeper(100)
	ula := peripherals.NewULA(k, beeper)

	ula.Out(0xFE, 0x15, 0) // border=5, beeper bit set, tape-out clear
	if ula.BorderColor() != 5 {
		t.Fatalf("border = %d, want 5", ula.BorderColor())
	}
	beeper.Advance(100)
	samples := beeper.DrainSamples()
	if len(samples) != 1 || samples[0] <= 0 {
		t.Fatalf("expected one high-level sample, got %v", samples)
	}
}

func TestBeeperLowLevelProducesSilentSample(t *testing.T) {
	b := peripherals.NewBeeper(50)
	b.SetLevel(false)
	b.Advance(50)
	samples := b.DrainSamples()
	if len(samples) != 1 || samples[0] != 0 {
		t.Fatalf("expected one silent sample, got %v", samples)
	}
}

func TestAY8912ToneGeneratesNonZeroSamples(t *testing.T) {
	ay := peripherals.NewAY8912(1)
	sel, data := ay.Ports()
	sel.Out(0xFFFD, 0, 0) // select tone A period lo
	data.Out(0xBFFD, 16, 0)
	sel.Out(0xFFFD, 1, 0) // tone A period hi
	data.Out(0xBFFD, 0, 0)
	sel.Out(0xFFFD, 7, 0) // mixer: enable tone A, disable the rest
	data.Out(0xBFFD, 0b111110, 0)
	sel.Out(0xFFFD, 8, 0) // volume A
	data.Out(0xBFFD, 15, 0)

	ay.Advance(1000)
	samples := ay.DrainSamples()
	if len(samples) == 0 {
		t.Fatalf("expected samples from AY advance")
	}
	nonZero := false
	for _, s := range samples {
		if s != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Fatalf("expected at least one non-zero sample with tone A enabled")
	}
}

func TestAYSelectPortWrapsRegisterIndex(t *testing.T) {
	ay := peripherals.NewAY8912(1)
	sel, _ := ay.Ports()
	sel.Out(0xFFFD, 200, 0) // must wrap modulo register count, not overflow
	if v := sel.In(0xFFFD, 0); v >= 16 {
		t.Fatalf("selected register = %d, want < 16", v)
	}
}

func TestTapeLoadTAPAndPlaybackTogglesEAR(t *testing.T) {
	tap := buildMinimalTAP()
	player := peripherals.NewTapePlayer()
	if err := player.LoadTAP(tap); err != nil {
		t.Fatalf("LoadTAP: %v", err)
	}
	player.Play()

	seenHigh, seenLow := false, false
	last := player.EARBit()
	for i := 0; i < 200000 && !player.AtEnd(); i++ {
		player.Advance(10)
		cur := player.EARBit()
		if cur != last {
			if cur {
				seenHigh = true
			} else {
				seenLow = true
			}
		}
		last = cur
	}
	if !seenHigh || !seenLow {
		t.Fatalf("expected EAR to toggle both ways during pilot tone, high=%v low=%v", seenHigh, seenLow)
	}
}

func TestTapeLoadTAPRejectsTruncatedBlock(t *testing.T) {
	player := peripherals.NewTapePlayer()
	bad := []byte{0x10, 0x00, 0x01} // declares 16 bytes, only 1 present
	if err := player.LoadTAP(bad); err == nil {
		t.Fatalf("expected an error for a truncated .tap block")
	}
}

func TestTapeLoadTZXRejectsBadSignature(t *testing.T) {
	player := peripherals.NewTapePlayer()
	if err := player.LoadTZX([]byte("not a tzx file")); err == nil {
		t.Fatalf("expected an error for a missing ZXTape! signature")
	}
}

func TestFDCShimNoDiskReadsNotReady(t *testing.T) {
	f := peripherals.NewFDCShim()
	if v := f.In(0xFC, 0); v != 0xFF {
		t.Fatalf("status with no disk = %#02x, want 0xFF", v)
	}
	f.InsertDisk()
	f.Out(0xFC, 0x80, 0) // status register (port&0x03 == 0)
	if v := f.In(0xFC, 0); v != 0x80 {
		t.Fatalf("status after insert+write = %#02x, want 0x80", v)
	}
}

func TestHDDShimNoDriveReadsFloatingBus(t *testing.T) {
	h := peripherals.NewHDDShim()
	if v := h.In(0, 0); v != 0xFF {
		t.Fatalf("no-drive read = %#02x, want 0xFF", v)
	}
	h.AttachDrive()
	h.Out(3, 0x42, 0)
	if v := h.In(3, 0); v != 0x42 {
		t.Fatalf("register readback = %#02x, want 0x42", v)
	}
}

// buildMinimalTAP constructs a one-block .tap image: a 2-byte length prefix
// followed by a 3-byte block of flag 0x00 (selects the long pilot tone),
// one data byte and a checksum.
func buildMinimalTAP() []byte {
	payload := []byte{0x00, 0xAA, 0xAA} // flag, one data byte, checksum
	length := len(payload)
	return append([]byte{byte(length), byte(length >> 8)}, payload...)
}

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

package peripherals

import "github.com/alfishe/unreal-ng-sub004/pkg/ports"

// TapeSource supplies the EAR-in bit the ULA reads back on port 0xFE, and
// is told about the tape-out bit the ULA writes (for tape-save capture).
// TapePlayer implements it directly.
type TapeSource interface {
	EARBit() bool
	SetMicBit(high bool)
}

// ULA models port 0xFE exactly as spec §4.4 describes it: IN reads the
// keyboard half-row selected by the high byte, XORed against the tape
// EAR-in bit; OUT sets border (bits 0..2), beeper (bit 4) and tape-out
// (bit 3).
type ULA struct {
	Keyboard *KeyMatrix
	Beeper   *Beeper
	Tape     TapeSource

	// OnBorderChange, if set, is called with the new 3-bit border colour
	// every time Out writes one, so a renderer can show border changes
	// mid-frame instead of only at next-frame setup.
	OnBorderChange func(byte)

	border byte
}

// NewULA wires a keyboard matrix and beeper into a single port-0xFE
// peripheral. Tape may be nil (EAR reads as released, tape-out is
// discarded) until a tape is loaded.
func NewULA(keyboard *KeyMatrix, beeper *Beeper) *ULA {
	return &ULA{Keyboard: keyboard, Beeper: beeper}
}

// BorderColor returns the last 3-bit border colour value written.
func (u *ULA) BorderColor() byte { return u.border }

// In implements ports.Peripheral.
func (u *ULA) In(port uint16, pc uint16) uint8 {
	row := u.Keyboard.halfRow(byte(port >> 8))
	ear := false
	if u.Tape != nil {
		ear = u.Tape.EARBit()
	}
	value := row | 0xA0 // bits 5 and 7 float high, bit 6 carries EAR-in
	if ear {
		value ^= 0x40
	}
	return value
}

// Out implements ports.Peripheral.
func (u *ULA) Out(port uint16, value uint8, pc uint16) {
	u.border = value & 0x07
	if u.OnBorderChange != nil {
		u.OnBorderChange(u.border)
	}
	if u.Beeper != nil {
		u.Beeper.SetLevel(value&0x10 != 0)
	}
	if u.Tape != nil {
		u.Tape.SetMicBit(value&0x08 != 0)
	}
}

var _ ports.Peripheral = (*ULA)(nil)

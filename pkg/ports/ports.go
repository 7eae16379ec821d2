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

// Package ports is the I/O port decoder hierarchy: one concrete decoder per
// ZX Spectrum family member, dispatched through the Decoder interface with
// no runtime type inspection by callers (spec §4.4, §9 "tagged sum over
// concrete decoders"). Each decoder reproduces its model's bit-mask match
// rules against the 16-bit port value and wires RAM/ROM bank paging through
// pkg/memory.
package ports

// Peripheral is a device attached to one or more ports: the ULA (keyboard +
// border + beeper + tape edge), the AY-3-8912, or a disk/tape controller
// port shim. The base decoder never touches a peripheral's internal state
// itself — it only routes IN/OUT to the registered device exactly once per
// access, per spec §4.4's "hardware read exactly once" contract.
type Peripheral interface {
	In(port uint16, pc uint16) uint8
	Out(port uint16, value uint8, pc uint16)
}

// CompletionHook is called after a hardware IN or OUT has already taken
// effect, wiring breakpoint/tracking side effects without the decoder
// depending on pkg/breakpoints or pkg/tracker directly.
type CompletionHook func(port uint16, value uint8, pc uint16)

// Decoder is the common port-decoder trait every model implements.
type Decoder interface {
	Reset()
	DecodeIn(port uint16, pc uint16) uint8
	DecodeOut(port uint16, value uint8, pc uint16)
	RegisterPeripheral(port uint16, p Peripheral)
	MuteLoggingFor(port uint16)
	SetCompletionHooks(onIn, onOut CompletionHook)
}

// base is embedded by every concrete decoder; it owns peripheral routing,
// logging mutes and the breakpoint/tracker completion hooks so each model
// only needs to implement its own mask/match matching and paging.
type base struct {
	peripherals map[uint16]Peripheral
	muted       map[uint16]bool
	onIn        CompletionHook
	onOut       CompletionHook
}

func newBase() base {
	return base{
		peripherals: make(map[uint16]Peripheral),
		muted:       make(map[uint16]bool),
	}
}

func (b *base) RegisterPeripheral(port uint16, p Peripheral) { b.peripherals[port] = p }
func (b *base) MuteLoggingFor(port uint16)                   { b.muted[port] = true }
func (b *base) IsMuted(port uint16) bool                     { return b.muted[port] }

func (b *base) SetCompletionHooks(onIn, onOut CompletionHook) {
	b.onIn = onIn
	b.onOut = onOut
}

// readPeripheral performs the hardware IN exactly once and fires the
// completion hook. Returns the floating-bus value 0xFF when no peripheral
// is registered at the port.
func (b *base) readPeripheral(registeredPort, port, pc uint16) uint8 {
	v := uint8(0xFF)
	if p, ok := b.peripherals[registeredPort]; ok {
		v = p.In(port, pc)
	}
	if b.onIn != nil {
		b.onIn(port, v, pc)
	}
	return v
}

// writePeripheral performs the hardware OUT exactly once and fires the
// completion hook.
func (b *base) writePeripheral(registeredPort, port uint16, value uint8, pc uint16) {
	if p, ok := b.peripherals[registeredPort]; ok {
		p.Out(port, value, pc)
	}
	if b.onOut != nil {
		b.onOut(port, value, pc)
	}
}

// Canonical port registration keys: peripherals are registered under the
// port the spec's table names even though a real decode_in/out call can
// carry any 16-bit value that also matches the mask.
const (
	ULAPort  uint16 = 0xFE
	AYData   uint16 = 0xBFFD
	AYSelect uint16 = 0xFFFD
)

// The bit-mask rules of spec §4.4's table, reproduced verbatim.
const (
	ulaMask, ulaMatch = 0x0001, 0x0000

	sevenFFFDMask128, sevenFFFDMatch128 = 0x8002, 0x0000
	sevenFFFDMaskScorpion, sevenFFFDMatchScorpion = 0xD027, 0x5025

	oneFFFDMaskPlus3, oneFFFDMatchPlus3 = 0xF002, 0x1000
	oneFFFDMaskScorpion, oneFFFDMatchScorpion = 0xD027, 0x1025

	dFFFDMaskProfi, dFFFDMatchProfi = 0x2002, 0x0000

	bFFFDMask, bFFFDMatch = 0xC002, 0x8000
	fFFFDMask, fFFFDMatch = 0xC002, 0xC000
)

// IsULAPort reports whether port decodes as the even-port ULA, for every
// model.
func IsULAPort(port uint16) bool { return port&ulaMask == ulaMatch }

// Is7FFDPort128 reports the 128K/Pentagon/Profi 0x7FFD paging-port match.
func Is7FFDPort128(port uint16) bool { return port&sevenFFFDMask128 == sevenFFFDMatch128 }

// Is7FFDPortScorpion reports the Scorpion 0x7FFD paging-port match (gated by
// address lines not otherwise routed to decode; approximated here, per
// spec §9, purely by numeric port value).
func Is7FFDPortScorpion(port uint16) bool {
	return port&sevenFFFDMaskScorpion == sevenFFFDMatchScorpion
}

// Is1FFDPortPlus3 reports the +2A/+3 extended-paging port match.
func Is1FFDPortPlus3(port uint16) bool { return port&oneFFFDMaskPlus3 == oneFFFDMatchPlus3 }

// Is1FFDPortScorpion reports the Scorpion 0x1FFD extended-paging port match.
func Is1FFDPortScorpion(port uint16) bool {
	return port&oneFFFDMaskScorpion == oneFFFDMatchScorpion
}

// IsDFFDPortProfi reports the Profi extended RAM-paging port match.
func IsDFFDPortProfi(port uint16) bool { return port&dFFFDMaskProfi == dFFFDMatchProfi }

// IsBFFDPort reports the 128K-family AY data-port match.
func IsBFFDPort(port uint16) bool { return port&bFFFDMask == bFFFDMatch }

// IsFFFDPort reports the 128K-family AY register-select port match.
func IsFFFDPort(port uint16) bool { return port&fFFFDMask == fFFFDMatch }

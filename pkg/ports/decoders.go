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

package ports

import "github.com/alfishe/unreal-ng-sub004/pkg/memory"

// Spectrum48Decoder is the unbanked 48K machine: only the ULA port exists.
// It still owns mgr so Reset can fix the Z80 map, since the 48K has no
// paging port of its own to do it via an OUT.
type Spectrum48Decoder struct {
	base
	mgr *memory.Manager
}

// NewSpectrum48Decoder returns a decoder with no paging ports at all.
func NewSpectrum48Decoder(mgr *memory.Manager) *Spectrum48Decoder {
	return &Spectrum48Decoder{base: newBase(), mgr: mgr}
}

// Reset binds the fixed, never-paged 48K map: ROM page 0 at bank 0, RAM
// pages 0/1/2 at banks 1/2/3 (0x4000/0x8000/0xC000).
func (d *Spectrum48Decoder) Reset() {
	if d.mgr == nil {
		return
	}
	romBase := 0
	if pool := d.mgr.Pool(); pool != nil {
		romBase = pool.RAMCount
	}
	_ = d.mgr.MapROMPage(0, uint16(romBase))
	_ = d.mgr.MapRAMPage(1, 0)
	_ = d.mgr.MapRAMPage(2, 1)
	_ = d.mgr.MapRAMPage(3, 2)
}

func (d *Spectrum48Decoder) DecodeIn(port uint16, pc uint16) uint8 {
	if IsULAPort(port) {
		return d.readPeripheral(ULAPort, port, pc)
	}
	return 0xFF
}

func (d *Spectrum48Decoder) DecodeOut(port uint16, value uint8, pc uint16) {
	if IsULAPort(port) {
		d.writePeripheral(ULAPort, port, value, pc)
	}
}

// Spectrum128Decoder covers the 128K, Pentagon-128 and Profi baseline: ULA +
// 0x7FFD paging + AY sound ports.
type Spectrum128Decoder struct {
	base
	paging pagingState
}

// NewSpectrum128Decoder returns a decoder bound to mgr for bank paging.
func NewSpectrum128Decoder(mgr *memory.Manager) *Spectrum128Decoder {
	return &Spectrum128Decoder{base: newBase(), paging: newPagingState(mgr)}
}

// SetScreenChangeHook installs a callback fired when the normal/shadow
// screen select bit actually changes (already debounced against the
// previous value).
func (d *Spectrum128Decoder) SetScreenChangeHook(fn func(shadow bool)) {
	d.paging.onScreenChange = fn
}

// ScreenIsShadow reports the currently selected screen buffer.
func (d *Spectrum128Decoder) ScreenIsShadow() bool { return d.paging.ScreenIsShadow() }

func (d *Spectrum128Decoder) Reset() { d.paging.reset() }

func (d *Spectrum128Decoder) DecodeIn(port uint16, pc uint16) uint8 {
	switch {
	case IsULAPort(port):
		return d.readPeripheral(ULAPort, port, pc)
	case IsFFFDPort(port):
		return d.readPeripheral(AYSelect, port, pc)
	case IsBFFDPort(port):
		return d.readPeripheral(AYData, port, pc)
	default:
		return 0xFF
	}
}

func (d *Spectrum128Decoder) DecodeOut(port uint16, value uint8, pc uint16) {
	switch {
	case IsULAPort(port):
		d.writePeripheral(ULAPort, port, value, pc)
	case d.is7FFD(port):
		d.paging.write7FFDBits(value, int(value&0x07))
		if d.onOut != nil {
			d.onOut(port, value, pc)
		}
	case IsFFFDPort(port):
		d.writePeripheral(AYSelect, port, value, pc)
	case IsBFFDPort(port):
		d.writePeripheral(AYData, port, value, pc)
	}
}

// is7FFD lets Pentagon512Decoder and ScorpionDecoder override the mask
// without re-declaring DecodeIn/DecodeOut.
func (d *Spectrum128Decoder) is7FFD(port uint16) bool { return Is7FFDPort128(port) }

// Pentagon512Decoder extends 0x7FFD's RAM-page field to 5 bits (bits [6..7]
// of the value select the top two bits of a 32-page RAM), per spec §4.4.
type Pentagon512Decoder struct {
	Spectrum128Decoder
}

// NewPentagon512Decoder returns a decoder bound to mgr for bank paging.
func NewPentagon512Decoder(mgr *memory.Manager) *Pentagon512Decoder {
	return &Pentagon512Decoder{Spectrum128Decoder: *NewSpectrum128Decoder(mgr)}
}

func (d *Pentagon512Decoder) DecodeOut(port uint16, value uint8, pc uint16) {
	switch {
	case IsULAPort(port):
		d.writePeripheral(ULAPort, port, value, pc)
	case d.is7FFD(port):
		ramPage := int(value&0x07) | (int(value>>6&0x03) << 3)
		d.paging.write7FFDBits(value, ramPage)
		if d.onOut != nil {
			d.onOut(port, value, pc)
		}
	case IsFFFDPort(port):
		d.writePeripheral(AYSelect, port, value, pc)
	case IsBFFDPort(port):
		d.writePeripheral(AYData, port, value, pc)
	}
}

// Plus3Decoder covers the +2A/+3: 128K-style 0x7FFD plus the extended 0x1FFD
// paging port. Unimplemented extended paging modes return 0xFF on IN, per
// spec §4.4.
type Plus3Decoder struct {
	Spectrum128Decoder
	extendedPaging uint8
}

// NewPlus3Decoder returns a decoder bound to mgr for bank paging.
func NewPlus3Decoder(mgr *memory.Manager) *Plus3Decoder {
	return &Plus3Decoder{Spectrum128Decoder: *NewSpectrum128Decoder(mgr)}
}

func (d *Plus3Decoder) Reset() {
	d.Spectrum128Decoder.Reset()
	d.extendedPaging = 0
}

func (d *Plus3Decoder) DecodeIn(port uint16, pc uint16) uint8 {
	if Is1FFDPortPlus3(port) {
		// Extended RAM/ROM arrangement modes are not modelled; spec §4.4
		// requires the floating-bus value here rather than a guess.
		return 0xFF
	}
	return d.Spectrum128Decoder.DecodeIn(port, pc)
}

func (d *Plus3Decoder) DecodeOut(port uint16, value uint8, pc uint16) {
	if Is1FFDPortPlus3(port) {
		d.extendedPaging = value
		if d.onOut != nil {
			d.onOut(port, value, pc)
		}
		return
	}
	d.Spectrum128Decoder.DecodeOut(port, value, pc)
}

// ProfiDecoder covers the Profi clone: 128K-style 0x7FFD plus the Profi's
// own 0xDFFD extended RAM paging port.
type ProfiDecoder struct {
	Spectrum128Decoder
	extendedRAMPage uint8
}

// NewProfiDecoder returns a decoder bound to mgr for bank paging.
func NewProfiDecoder(mgr *memory.Manager) *ProfiDecoder {
	return &ProfiDecoder{Spectrum128Decoder: *NewSpectrum128Decoder(mgr)}
}

func (d *ProfiDecoder) Reset() {
	d.Spectrum128Decoder.Reset()
	d.extendedRAMPage = 0
}

func (d *ProfiDecoder) DecodeIn(port uint16, pc uint16) uint8 {
	if IsDFFDPortProfi(port) {
		return d.extendedRAMPage
	}
	return d.Spectrum128Decoder.DecodeIn(port, pc)
}

func (d *ProfiDecoder) DecodeOut(port uint16, value uint8, pc uint16) {
	if IsDFFDPortProfi(port) {
		d.extendedRAMPage = value
		if d.onOut != nil {
			d.onOut(port, value, pc)
		}
		return
	}
	d.Spectrum128Decoder.DecodeOut(port, value, pc)
}

// ScorpionDecoder covers the Scorpion ZS-256: its own 0x7FFD/0x1FFD masks,
// gated (in the original hardware) by M1/address lines that this port-value
// -only model approximates, per spec §9's explicit "preserve, don't fix"
// note.
type ScorpionDecoder struct {
	Spectrum128Decoder
	extendedPaging uint8
}

// NewScorpionDecoder returns a decoder bound to mgr for bank paging.
func NewScorpionDecoder(mgr *memory.Manager) *ScorpionDecoder {
	return &ScorpionDecoder{Spectrum128Decoder: *NewSpectrum128Decoder(mgr)}
}

func (d *ScorpionDecoder) is7FFD(port uint16) bool { return Is7FFDPortScorpion(port) }

func (d *ScorpionDecoder) Reset() {
	d.Spectrum128Decoder.Reset()
	d.extendedPaging = 0
}

func (d *ScorpionDecoder) DecodeIn(port uint16, pc uint16) uint8 {
	switch {
	case Is1FFDPortScorpion(port):
		return d.extendedPaging
	case d.is7FFD(port):
		return 0xFF
	default:
		return d.Spectrum128Decoder.DecodeIn(port, pc)
	}
}

func (d *ScorpionDecoder) DecodeOut(port uint16, value uint8, pc uint16) {
	switch {
	case Is1FFDPortScorpion(port):
		d.extendedPaging = value
		if d.onOut != nil {
			d.onOut(port, value, pc)
		}
	case d.is7FFD(port):
		d.paging.write7FFDBits(value, int(value&0x07))
		if d.onOut != nil {
			d.onOut(port, value, pc)
		}
	default:
		d.Spectrum128Decoder.DecodeOut(port, value, pc)
	}
}

// TSConfDecoder is a conservative baseline for the TSConf clone: ULA,
// 128K-style 0x7FFD paging and AY ports, with no TSConf-specific extended
// registers modelled. The canonical table (spec §4.4) does not name
// TSConf-specific ports, so this decoder is documented in DESIGN.md as an
// open-question approximation rather than invented hardware.
type TSConfDecoder struct {
	Spectrum128Decoder
}

// NewTSConfDecoder returns a decoder bound to mgr for bank paging.
func NewTSConfDecoder(mgr *memory.Manager) *TSConfDecoder {
	return &TSConfDecoder{Spectrum128Decoder: *NewSpectrum128Decoder(mgr)}
}

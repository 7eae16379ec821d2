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

// AY register indices, matching the General Instrument AY-3-8912 layout.
const (
	regTonePeriodALo = iota
	regTonePeriodAHi
	regTonePeriodBLo
	regTonePeriodBHi
	regTonePeriodCLo
	regTonePeriodCHi
	regNoisePeriod
	regMixer
	regVolumeA
	regVolumeB
	regVolumeC
	regEnvelopeLo
	regEnvelopeHi
	regEnvelopeShape
	regPortA
	regPortB

	regCount
)

type ayChannel struct {
	period uint16
	pos    uint16
	output bool
	volume uint8
}

// AY8912 implements the register file behind ports 0xFFFD (register
// select) and 0xBFFD (data), and its three-channel tone/noise/envelope
// mixer. The tape and FDC/HDD-style peripherals register as two separate
// ports.Peripheral instances under one registered port each; the AY
// likewise exposes a SelectPort and DataPort view over the same register
// file so pkg/ports can register each at its own address.
type AY8912 struct {
	regs     [regCount]uint8
	selected uint8

	channels [3]ayChannel
	noise    struct {
		period uint16
		pos    uint16
		seed   uint32
		output bool
	}
	envelope struct {
		period  uint16
		pos     uint16
		step    int
		holding bool
		volume  uint8
	}

	clockTStatesPerTick int // Z80 t-states per AY internal clock tick (clock/16)
	accum               int
	samples             []int16
}

// NewAY8912 returns a chip whose generators advance one tick every
// tStatesPerAYTick Z80 t-states (Advance treats values below 1 as 1).
func NewAY8912(tStatesPerAYTick int) *AY8912 {
	a := &AY8912{clockTStatesPerTick: tStatesPerAYTick}
	a.noise.seed = 1
	return a
}

// SelectPort is registered at ports.AYSelect (0xFFFD): OUT picks the active
// register, IN reads back which one is selected.
type SelectPort struct{ ay *AY8912 }

// DataPort is registered at ports.AYData (0xBFFD): OUT writes the selected
// register, IN reads it back.
type DataPort struct{ ay *AY8912 }

// Ports returns the two Peripheral views pkg/ports registers separately.
func (a *AY8912) Ports() (select_ *SelectPort, data *DataPort) {
	return &SelectPort{ay: a}, &DataPort{ay: a}
}

func (p *SelectPort) In(port, pc uint16) uint8 { return p.ay.selected }
func (p *SelectPort) Out(port uint16, value uint8, pc uint16) {
	p.ay.selected = value % regCount
}

func (p *DataPort) In(port, pc uint16) uint8 { return p.ay.regs[p.ay.selected] }
func (p *DataPort) Out(port uint16, value uint8, pc uint16) {
	p.ay.regs[p.ay.selected] = value
	p.ay.applyRegister(p.ay.selected, value)
}

var (
	_ ports.Peripheral = (*SelectPort)(nil)
	_ ports.Peripheral = (*DataPort)(nil)
)

func (a *AY8912) applyRegister(reg uint8, value uint8) {
	switch reg {
	case regTonePeriodALo, regTonePeriodAHi:
		a.channels[0].period = a.tonePeriod(0)
	case regTonePeriodBLo, regTonePeriodBHi:
		a.channels[1].period = a.tonePeriod(1)
	case regTonePeriodCLo, regTonePeriodCHi:
		a.channels[2].period = a.tonePeriod(2)
	case regNoisePeriod:
		a.noise.period = uint16(value & 0x1F)
	case regVolumeA:
		a.channels[0].volume = value & 0x1F
	case regVolumeB:
		a.channels[1].volume = value & 0x1F
	case regVolumeC:
		a.channels[2].volume = value & 0x1F
	case regEnvelopeLo, regEnvelopeHi:
		a.envelope.period = uint16(a.regs[regEnvelopeLo]) | uint16(a.regs[regEnvelopeHi])<<8
	case regEnvelopeShape:
		a.envelope.step = 0
		a.envelope.holding = false
		a.envelope.volume = 0
	}
}

func (a *AY8912) tonePeriod(ch int) uint16 {
	lo := regTonePeriodALo + ch*2
	hi := lo + 1
	p := uint16(a.regs[lo]) | uint16(a.regs[hi]&0x0F)<<8
	if p == 0 {
		p = 1
	}
	return p
}

func (a *AY8912) mixerBit(toneBit, noiseBit uint) (toneOff, noiseOff bool) {
	m := a.regs[regMixer]
	return m&(1<<toneBit) != 0, m&(1<<noiseBit) != 0
}

// Advance runs the chip forward by tStates Z80 clocks, appending one
// 16-bit sample to its internal buffer per AY clock tick divided down to
// the host sample rate by the caller's mixer.
func (a *AY8912) Advance(tStates int) {
	if a.clockTStatesPerTick <= 0 {
		a.clockTStatesPerTick = 1
	}
	a.accum += tStates
	for a.accum >= a.clockTStatesPerTick {
		a.accum -= a.clockTStatesPerTick
		a.tick()
	}
}

func (a *AY8912) tick() {
	for i := range a.channels {
		c := &a.channels[i]
		c.pos++
		if c.pos >= c.period {
			c.pos = 0
			c.output = !c.output
		}
	}
	a.noise.pos++
	period := a.noise.period
	if period == 0 {
		period = 1
	}
	if a.noise.pos >= period {
		a.noise.pos = 0
		// 17-bit LFSR, the standard AY noise generator polynomial.
		bit := (a.noise.seed ^ (a.noise.seed >> 3)) & 1
		a.noise.seed = (a.noise.seed >> 1) | (bit << 16)
		a.noise.output = a.noise.seed&1 != 0
	}
	a.tickEnvelope()

	sample := int16(0)
	for i := range a.channels {
		toneOff, noiseOff := a.mixerBit(uint(i), uint(i+3))
		tone := toneOff || a.channels[i].output
		nz := noiseOff || a.noise.output
		if tone && nz {
			vol := a.channelVolume(i)
			sample += int16(vol) * (32767 / 15)
		}
	}
	a.samples = append(a.samples, sample)
}

func (a *AY8912) channelVolume(ch int) uint8 {
	v := a.channels[ch].volume
	if v&0x10 != 0 {
		return a.envelope.volume
	}
	return v & 0x0F
}

func (a *AY8912) tickEnvelope() {
	if a.envelope.holding {
		return
	}
	a.envelope.pos++
	period := a.envelope.period
	if period == 0 {
		period = 1
	}
	if a.envelope.pos < period {
		return
	}
	a.envelope.pos = 0
	shape := a.regs[regEnvelopeShape]
	attack := shape&0x04 != 0
	continue_ := shape&0x08 != 0
	hold := shape&0x01 != 0
	alternate := shape&0x02 != 0

	a.envelope.step++
	level := a.envelope.step % 16
	rising := attack
	if alternate && (a.envelope.step/16)%2 == 1 {
		rising = !rising
	}
	if rising {
		a.envelope.volume = uint8(level)
	} else {
		a.envelope.volume = uint8(15 - level)
	}
	if !continue_ && a.envelope.step >= 15 {
		a.envelope.holding = true
		if hold {
			a.envelope.volume = uint8(level)
		} else {
			a.envelope.volume = 0
		}
	}
}

// DrainSamples returns every sample produced since the last call.
func (a *AY8912) DrainSamples() []int16 {
	out := a.samples
	a.samples = nil
	return out
}

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

// Beeper is the ULA's single-bit sound output (port 0xFE bit 4). It
// accumulates the fraction of each sample period the bit was held high so a
// frame's worth of OUTs turns into a smoothed PCM level rather than a single
// stair-step per write.
type Beeper struct {
	level        bool
	tStatesPerHz float64 // t-states per output sample
	accum        float64 // t-states accumulated at the current level since the last sample
	carry        float64 // leftover t-states from the last sample boundary

	samples []int16
}

// NewBeeper returns a beeper that emits one sample every tStatesPerSample
// t-states.
func NewBeeper(tStatesPerSample float64) *Beeper {
	return &Beeper{tStatesPerHz: tStatesPerSample}
}

// SetLevel is called on every OUT that touches bit 4 of port 0xFE.
func (b *Beeper) SetLevel(high bool) {
	b.level = high
}

// Advance runs the beeper forward by tStates clocks, emitting whole samples
// as they come due.
func (b *Beeper) Advance(tStates int) {
	remaining := float64(tStates)
	for remaining > 0 {
		toBoundary := b.tStatesPerHz - b.carry
		step := remaining
		if step > toBoundary {
			step = toBoundary
		}
		if b.level {
			b.accum += step
		}
		b.carry += step
		remaining -= step
		if b.carry >= b.tStatesPerHz-1e-9 {
			frac := b.accum / b.tStatesPerHz
			b.samples = append(b.samples, int16(frac*32767))
			b.accum = 0
			b.carry = 0
		}
	}
}

// DrainSamples returns every sample produced since the last call and
// resets the internal buffer.
func (b *Beeper) DrainSamples() []int16 {
	out := b.samples
	b.samples = nil
	return out
}

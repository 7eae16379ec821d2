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

import (
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Mixer folds one frame's worth of beeper and AY samples into a single
// mono audio.IntBuffer, the same per-frame PCM carrier shape the host side
// of this engine would feed to a real-time output device.
type Mixer struct {
	SampleRate int
	beeper     *Beeper
	ay         *AY8912
}

// NewMixer ties a beeper and an (optional, may be nil on models without an
// AY chip) AY chip to a single mixed output stream.
func NewMixer(sampleRate int, beeper *Beeper, ay *AY8912) *Mixer {
	return &Mixer{SampleRate: sampleRate, beeper: beeper, ay: ay}
}

// MixFrame drains both sources and returns their sum, clamped to int16
// range, as a mono IntBuffer ready for a host audio callback.
func (m *Mixer) MixFrame() *audio.IntBuffer {
	beeperSamples := m.beeper.DrainSamples()
	var aySamples []int16
	if m.ay != nil {
		aySamples = m.ay.DrainSamples()
	}
	n := len(beeperSamples)
	if len(aySamples) > n {
		n = len(aySamples)
	}
	data := make([]int, n)
	for i := 0; i < n; i++ {
		var b, a int32
		if i < len(beeperSamples) {
			b = int32(beeperSamples[i])
		}
		if i < len(aySamples) {
			a = int32(aySamples[i])
		}
		sum := b + a
		if sum > 32767 {
			sum = 32767
		} else if sum < -32768 {
			sum = -32768
		}
		data[i] = int(sum)
	}
	return &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: m.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
}

// CaptureWAV writes a single mixed frame buffer to path as a debug aid;
// it is never invoked from the frame loop itself, only from tooling.
func CaptureWAV(path string, buf *audio.IntBuffer) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := wav.NewEncoder(f, buf.Format.SampleRate, buf.SourceBitDepth, buf.Format.NumChannels, 1)
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}

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

package video

// Palette is the 16-colour ZX Spectrum palette (8 base colours, normal and
// bright intensity), stored as ARGB8888 with full alpha.
var Palette = [16]uint32{
	0xFF000000, // black
	0xFF0000D7, // blue
	0xFFD70000, // red
	0xFFD700D7, // magenta
	0xFF00D700, // green
	0xFF00D7D7, // cyan
	0xFFD7D700, // yellow
	0xFFD7D7D7, // white
	0xFF000000, // bright black
	0xFF0000FF, // bright blue
	0xFFFF0000, // bright red
	0xFFFF00FF, // bright magenta
	0xFF00FF00, // bright green
	0xFF00FFFF, // bright cyan
	0xFFFFFF00, // bright yellow
	0xFFFFFFFF, // bright white
}

// ColorFromAttr decodes one ZX attribute byte into ink and paper ARGB8888
// colours, applying the FLASH-phase ink/paper swap when both attr's FLASH
// bit and the renderer's current flash phase are set.
func ColorFromAttr(attr byte, flashPhase bool) (ink, paper uint32) {
	bright := attr&0x40 != 0
	inkIdx := attr & 0x07
	paperIdx := (attr >> 3) & 0x07
	if bright {
		inkIdx += 8
		paperIdx += 8
	}
	ink = Palette[inkIdx]
	paper = Palette[paperIdx]
	if attr&0x80 != 0 && flashPhase {
		ink, paper = paper, ink
	}
	return ink, paper
}

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

// Package video is the per-t-state ULA rasteriser: screen-address helpers,
// the render-type table, flash handling and the ARGB8888 framebuffer. It
// never touches the Z80 or ports packages directly — the scheduler feeds it
// a t-state cursor and a screen-bank resolver.
package video

// ScreenAddr reproduces the ZX Spectrum's interleaved pixel-row bit layout:
// bits of y are scattered across the address as y6y5|y2y1y0|y5y4y3|x4..x0,
// all added to base (conventionally 0x4000).
func ScreenAddr(x, y int, base uint16) uint16 {
	y6y5 := uint16(y>>6) & 0x03
	y2y1y0 := uint16(y) & 0x07
	y5y4y3 := uint16(y>>3) & 0x07
	x4x0 := uint16(x>>3) & 0x1F
	offset := (y6y5 << 11) | (y2y1y0 << 8) | (y5y4y3 << 5) | x4x0
	return base + offset
}

// ScreenAddrOptimized computes the same address via direct bit packing
// rather than composing intermediate named fields; testable property 2
// requires the two to agree on every (x, y) in range.
func ScreenAddrOptimized(x, y int, base uint16) uint16 {
	return base | (uint16(y&0xC0) << 5) | (uint16(y&0x07) << 8) | (uint16(y&0x38) << 2) | uint16((x>>3)&0x1F)
}

// AttrAddr returns the colour-attribute byte address for pixel (x, y).
func AttrAddr(x, y int, base uint16) uint16 {
	return base + 0x1800 + uint16(y/8)*32 + uint16(x/8)
}

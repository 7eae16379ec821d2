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

import (
	"github.com/alfishe/unreal-ng-sub004/pkg/memory"
	"github.com/alfishe/unreal-ng-sub004/pkg/model"
)

// visible column window: the render-type table marks everything outside
// [blankLeftEnd, borderRightEnd) as BLANK, so the framebuffer only needs to
// carry the columns that are ever actually painted.
const (
	visibleColStart = blankLeftEnd
	visibleColEnd   = borderRightEnd
	screenColStart  = borderLeftEnd
	screenColEnd    = screenEnd
)

// Renderer owns the framebuffer and the render-type table, and converts
// per-t-state (or whole-frame-batch) screen reads into ARGB8888 pixels.
// Grounded on spec §4.5 directly: `Draw` is the per-t-state path used when
// ScreenHQ is on, `RenderFrameBatch` the whole-frame path used when it's
// off; both must agree pixel-for-pixel on static content. The batch path
// paints through the same per-column routine as Draw, one t-state at a time,
// so it is not faster than a full sequence of Draw calls.
type Renderer struct {
	timing model.FrameTiming
	table  [tableLength]RenderType

	pool         *memory.Pool
	screenPageFn func() int // returns the RAM page number backing the screen (5 normal / 7 shadow)

	width, height int
	pixels        []uint32

	borderColor byte
	flashFrames uint64
	flashPhase  bool
}

// NewRenderer builds a renderer sized for timing's geometry, reading pixel
// and attribute bytes from pool via screenPageFn's currently selected RAM
// page.
func NewRenderer(timing model.FrameTiming, pool *memory.Pool, screenPageFn func() int) *Renderer {
	width := (visibleColEnd - visibleColStart) * 2
	height := timing.TopBorderLines + timing.ScreenLines + timing.BottomBorderLines
	r := &Renderer{
		timing:       timing,
		table:        BuildRenderTypeTable(),
		pool:         pool,
		screenPageFn: screenPageFn,
		width:        width,
		height:       height,
		pixels:       make([]uint32, width*height),
		borderColor:  7,
	}
	return r
}

// Width and Height report the framebuffer's pixel dimensions.
func (r *Renderer) Width() int  { return r.width }
func (r *Renderer) Height() int { return r.height }

// Pixels returns the ARGB8888 framebuffer, row-major, owned by the
// renderer; callers must not retain it past the next frame boundary.
func (r *Renderer) Pixels() []uint32 { return r.pixels }

// SetBorderColor is called (indirectly, via the ULA peripheral's Out) on
// every write to port 0xFE's border bits.
func (r *Renderer) SetBorderColor(c byte) { r.borderColor = c & 0x07 }

// AdvanceFrame bumps the internal frame counter and toggles the flash
// phase every 16 frames, per spec §4.5.
func (r *Renderer) AdvanceFrame() {
	r.flashFrames++
	if r.flashFrames%16 == 0 {
		r.flashPhase = !r.flashPhase
	}
}

// Draw paints every column of every line whose t-state cursor lies in
// [0, t), the per-t-state path used when ScreenHQ is on. It keeps no record
// of earlier calls, so each call repaints from the start of the frame.
func (r *Renderer) Draw(t int) {
	r.paintRange(0, t)
}

// RenderFrameBatch paints the whole frame in one pass, the path used when
// ScreenHQ is off; it must produce identical pixels to a full sequence of
// Draw calls covering the same frame for any static (non-raster-splitting)
// border/attribute content.
func (r *Renderer) RenderFrameBatch() {
	r.paintRange(0, r.timing.TStatesPerFrame)
}

func (r *Renderer) paintRange(from, to int) {
	lineLen := r.timing.TStatesPerLine
	if lineLen <= 0 {
		return
	}
	for t := from; t < to; t++ {
		line := t / lineLen
		col := t % lineLen
		r.paintColumn(line, col)
	}
}

func (r *Renderer) paintColumn(line, col int) {
	if col < 0 || col >= tableLength {
		return
	}
	viewLine := line - r.timing.TopBlankLines
	if viewLine < 0 || viewLine >= r.height {
		return
	}
	rtype := r.table[col]
	if rtype == Blank {
		return
	}
	if col < visibleColStart || col >= visibleColEnd {
		return
	}

	inPaperLines := viewLine >= r.timing.TopBorderLines && viewLine < r.timing.TopBorderLines+r.timing.ScreenLines
	isPaperColumn := rtype == Screen && inPaperLines

	viewCol := (col - visibleColStart) * 2
	if isPaperColumn {
		py := viewLine - r.timing.TopBorderLines
		pxBase := (col - screenColStart) * 2
		r.paintPaperPixel(viewLine, viewCol, pxBase, py)
		r.paintPaperPixel(viewLine, viewCol+1, pxBase+1, py)
		return
	}
	borderColor := Palette[r.borderColor]
	r.setPixel(viewLine, viewCol, borderColor)
	r.setPixel(viewLine, viewCol+1, borderColor)
}

func (r *Renderer) paintPaperPixel(viewLine, fbCol, px, py int) {
	if r.pool == nil || r.screenPageFn == nil {
		r.setPixel(viewLine, fbCol, Palette[r.borderColor])
		return
	}
	page := r.screenPageFn()
	if page < 0 || page >= len(r.pool.Pages) {
		r.setPixel(viewLine, fbCol, Palette[r.borderColor])
		return
	}
	data := &r.pool.Pages[page].Data
	pixByte := data[ScreenAddr(px, py, 0)]
	attrByte := data[AttrAddr(px, py, 0)]
	bit := 7 - uint(px%8)
	set := pixByte&(1<<bit) != 0
	ink, paper := ColorFromAttr(attrByte, r.flashPhase)
	color := paper
	if set {
		color = ink
	}
	r.setPixel(viewLine, fbCol, color)
}

func (r *Renderer) setPixel(y, x int, color uint32) {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return
	}
	r.pixels[y*r.width+x] = color
}

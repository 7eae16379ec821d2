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

// pagingState is the shared 0x7FFD latch logic every paged model (128K,
// +2A/+3, Pentagon, Pentagon-512, Scorpion, Profi) builds on (the 0x1FFD
// and 0xDFFD values are held by the Plus3, Scorpion and Profi decoders):
// RAM page -> bank 3, ROM page -> bank 0, normal/shadow screen select, and
// the lock latch that freezes further paging OUTs until Reset().
type pagingState struct {
	mgr *memory.Manager

	ramPage    int
	romPage    int
	shadow     bool
	locked     bool
	lastShadow bool // for debouncing spurious screen-switch flushes

	onScreenChange func(shadow bool)
}

func newPagingState(mgr *memory.Manager) pagingState {
	return pagingState{mgr: mgr}
}

func (p *pagingState) reset() {
	p.ramPage = 0
	p.romPage = 0
	p.shadow = false
	p.lastShadow = false
	p.locked = false
	if p.mgr != nil {
		// Banks 1 and 2 (0x4000, 0x8000) are fixed on every 128K-family
		// model: RAM page 5 and RAM page 2, never touched by 0x7FFD. Only
		// bank 3 (the paged page) and bank 0 (ROM) move.
		_ = p.mgr.MapRAMPage(1, 5)
		_ = p.mgr.MapRAMPage(2, 2)
	}
	p.applyMapping()
}

// applyMapping re-binds bank 3 (RAM page) and bank 0 (ROM page) in the
// memory manager to match the latch's current bits.
func (p *pagingState) applyMapping() {
	if p.mgr == nil {
		return
	}
	_ = p.mgr.MapRAMPage(3, uint16(p.ramPage))
	romBase := 0
	if pool := p.mgr.Pool(); pool != nil {
		romBase = pool.RAMCount
	}
	_ = p.mgr.MapROMPage(0, uint16(romBase+p.romPage))
}

// write7FFDBits applies the standard 128K bit layout: bits[0..2]=RAM page,
// bit3=screen select, bit4=ROM page, bit5=paging lock (spec §4.4's table).
// ramPageBits lets Pentagon-512 pass a wider page number (bits[6..7]
// extend it to 5 bits / 32 pages) while every other model passes the plain
// 3-bit field.
func (p *pagingState) write7FFDBits(value uint8, ramPageBits int) {
	if p.locked {
		return
	}
	p.ramPage = ramPageBits
	p.romPage = int((value >> 4) & 1)
	newShadow := value&0x08 != 0
	if newShadow != p.lastShadow {
		p.lastShadow = newShadow
		p.shadow = newShadow
		if p.onScreenChange != nil {
			p.onScreenChange(newShadow)
		}
	}
	if value&0x20 != 0 {
		p.locked = true
	}
	p.applyMapping()
}

// ScreenIsShadow reports whether the currently selected screen buffer is
// RAM page 7 (shadow) rather than RAM page 5 (normal).
func (p *pagingState) ScreenIsShadow() bool { return p.shadow }

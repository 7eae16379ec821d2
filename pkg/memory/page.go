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

package memory

// PageSize is the width of a Z80 bank and of a single page in the page pool:
// 16 KiB, per spec §3.
const PageSize = 0x4000

// PageKind tags whether a page is writable RAM or read-only ROM.
type PageKind int

// The two kinds of page the pool holds.
const (
	PageRAM PageKind = iota
	PageROM
)

// UnmappablePage is the sentinel page number marking a Z80 bank that has not
// been bound to any page in the pool (spec §3).
const UnmappablePage = ^uint16(0)

// Page is one 16 KiB block of the page pool.
type Page struct {
	Kind PageKind
	Data [PageSize]byte

	// Signature is the SHA-256 of Data as last computed by the ROM service;
	// zero for RAM pages and for ROM pages that have not been through
	// LoadRomSet.
	Signature [32]byte
}

// Pool is the complete set of pages a model's memory manager can bind banks
// to: RAM pages 0..N-1, then cache/misc pages, then ROM pages, per spec §3.
type Pool struct {
	Pages []Page

	// RAMCount and ROMCount record the boundaries inside Pages so callers
	// (the ROM service, the port decoders) can validate page numbers.
	RAMCount int
	ROMCount int
}

// NewPool allocates a page pool with ramCount RAM pages followed by romCount
// ROM pages.
func NewPool(ramCount, romCount int) *Pool {
	p := &Pool{
		Pages:    make([]Page, ramCount+romCount),
		RAMCount: ramCount,
		ROMCount: romCount,
	}
	for i := 0; i < ramCount; i++ {
		p.Pages[i].Kind = PageRAM
	}
	for i := ramCount; i < ramCount+romCount; i++ {
		p.Pages[i].Kind = PageROM
	}
	return p
}

// RAMPage returns the page number of the n-th RAM page.
func (p *Pool) RAMPage(n int) uint16 { return uint16(n) }

// ROMPage returns the page number of the n-th ROM page.
func (p *Pool) ROMPage(n int) uint16 { return uint16(p.RAMCount + n) }

// TotalPages is the size of the pool, used to size the access tracker's
// per-page counter arrays.
func (p *Pool) TotalPages() int { return len(p.Pages) }

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

import "github.com/alfishe/unreal-ng-sub004/pkg/zxerror"

// bankSlot is one of the four Z80 banks (0x0000, 0x4000, 0x8000, 0xC000).
type bankSlot struct {
	page           uint16
	isROM          bool
	writeProtected bool
}

// Manager owns the page pool, the 4-slot Z80 bank map and the fast/debug
// accessor pair the Z80 core swaps between (spec §4.1). It never returns an
// error from the fast path: an invalid bank write is simply dropped, per
// spec §7's propagation policy.
type Manager struct {
	pool  *Pool
	banks [4]bankSlot

	debugMode bool
	bp        BreakpointChecker
	tracker   AccessTracker

	// onChange is invoked after every MapROMPage/MapRAMPage, standing in for
	// the MEMORY_CHANGED message-bus topic (spec §4.10) without this
	// package depending on pkg/msgbus.
	onChange func(bank int)
}

// NewManager constructs a Manager over pool with every bank unmapped.
func NewManager(pool *Pool) *Manager {
	m := &Manager{pool: pool}
	for i := range m.banks {
		m.banks[i] = bankSlot{page: UnmappablePage}
	}
	return m
}

// SetChangeHandler registers a callback invoked after every bank remap.
func (m *Manager) SetChangeHandler(f func(bank int)) { m.onChange = f }

// SetBreakpointChecker wires the breakpoint manager into the debug path.
func (m *Manager) SetBreakpointChecker(bp BreakpointChecker) { m.bp = bp }

// SetAccessTracker wires the access tracker into the debug path.
func (m *Manager) SetAccessTracker(t AccessTracker) { m.tracker = t }

// SetDebugMode toggles between the fast and debug accessor paths. This is
// the only place the Z80 core's memory interface selection changes (spec
// §4.1, §9 "hot-loop memory interface swap" — modelled here as a branch on
// a mode flag rather than a function-pointer rebind per instruction).
func (m *Manager) SetDebugMode(on bool) { m.debugMode = on }

// DebugMode reports the current accessor mode.
func (m *Manager) DebugMode() bool { return m.debugMode }

// MapROMPage binds bank to ROM page number page in the pool.
func (m *Manager) MapROMPage(bank int, page uint16) error {
	return m.mapPage(bank, page, true)
}

// MapRAMPage binds bank to RAM page number page in the pool.
func (m *Manager) MapRAMPage(bank int, page uint16) error {
	return m.mapPage(bank, page, false)
}

func (m *Manager) mapPage(bank int, page uint16, isROM bool) error {
	if bank < 0 || bank > 3 {
		return zxerror.Errorf("memory: invalid bank (%d)", bank)
	}
	if isROM {
		if int(page) < m.pool.RAMCount || int(page) >= m.pool.RAMCount+m.pool.ROMCount {
			return zxerror.Errorf(zxerror.InvalidRomPage, page)
		}
	} else {
		if int(page) >= m.pool.RAMCount {
			return zxerror.Errorf(zxerror.InvalidRamPage, page)
		}
	}

	m.banks[bank] = bankSlot{page: page, isROM: isROM}
	if m.onChange != nil {
		m.onChange(bank)
	}
	return nil
}

// Unmap marks bank as bound to no page; reads return 0, writes are dropped.
func (m *Manager) Unmap(bank int) {
	if bank < 0 || bank > 3 {
		return
	}
	m.banks[bank] = bankSlot{page: UnmappablePage}
	if m.onChange != nil {
		m.onChange(bank)
	}
}

// bankOf returns the Z80 bank number (0..3) an address falls into.
func bankOf(addr uint16) int { return int(addr >> 14) }

// Read is the fast-path CPUBus accessor.
func (m *Manager) Read(addr uint16) uint8 {
	b := &m.banks[bankOf(addr)]
	if b.page == UnmappablePage {
		return 0
	}
	return m.pool.Pages[b.page].Data[addr&(PageSize-1)]
}

// Write is the fast-path CPUBus accessor. Writes to a ROM-backed bank are
// silently discarded, per spec §3's memory-map invariant.
func (m *Manager) Write(addr uint16, data uint8) {
	b := &m.banks[bankOf(addr)]
	if b.page == UnmappablePage || b.isROM || b.writeProtected {
		return
	}
	m.pool.Pages[b.page].Data[addr&(PageSize-1)] = data
}

// ReadDebug is the slow-path DebuggerBus accessor: breakpoint check, then
// the fast-path read. An M1 fetch reaches the access tracker before the
// read; any other read reaches it after, together with the value read.
func (m *Manager) ReadDebug(addr uint16, isM1 bool) uint8 {
	if isM1 {
		if m.bp != nil {
			m.bp.CheckExecute(addr)
		}
		if m.tracker != nil {
			m.tracker.TrackExecute(addr, addr)
		}
	} else {
		if m.bp != nil {
			m.bp.CheckRead(addr)
		}
	}

	v := m.Read(addr)

	if !isM1 && m.tracker != nil {
		m.tracker.TrackRead(addr, v, addr)
	}

	return v
}

// WriteDebug is the slow-path DebuggerBus accessor.
func (m *Manager) WriteDebug(addr uint16, data uint8) {
	if m.bp != nil {
		m.bp.CheckWrite(addr)
	}

	m.Write(addr, data)

	if m.tracker != nil {
		m.tracker.TrackWrite(addr, data, addr)
	}
}

// Peek reads a byte without participating in breakpoint/tracker side
// effects at all; used by the disassembler and snapshot writer.
func (m *Manager) Peek(addr uint16) (uint8, error) {
	b := &m.banks[bankOf(addr)]
	if b.page == UnmappablePage {
		return 0, zxerror.Errorf("memory: bank %d is unmapped", bankOf(addr))
	}
	return m.pool.Pages[b.page].Data[addr&(PageSize-1)], nil
}

// Poke writes a byte bypassing the ROM write-protect rule; used by the
// snapshot loader to seed RAM contents and by the debugger console's "set
// memory" command.
func (m *Manager) Poke(addr uint16, value uint8) error {
	b := &m.banks[bankOf(addr)]
	if b.page == UnmappablePage {
		return zxerror.Errorf("memory: bank %d is unmapped", bankOf(addr))
	}
	m.pool.Pages[b.page].Data[addr&(PageSize-1)] = value
	return nil
}

// MapZ80ToHost returns a raw pointer to the host-memory byte currently
// backing addr, or nil if the bank is unmapped. Used by the disassembler
// and by snapshotting.
func (m *Manager) MapZ80ToHost(addr uint16) *byte {
	b := &m.banks[bankOf(addr)]
	if b.page == UnmappablePage {
		return nil
	}
	return &m.pool.Pages[b.page].Data[addr&(PageSize-1)]
}

// PhysicalOffsetFor computes the page pool's linear byte offset for addr,
// per spec §4.1: page_of(bank(addr)) * 0x4000 + (addr & 0x3FFF).
func (m *Manager) PhysicalOffsetFor(addr uint16) (offset int, ok bool) {
	b := &m.banks[bankOf(addr)]
	if b.page == UnmappablePage {
		return 0, false
	}
	return int(b.page)*PageSize + int(addr&(PageSize-1)), true
}

// BankPage returns the page currently bound to bank and whether it is ROM.
func (m *Manager) BankPage(bank int) (page uint16, isROM bool) {
	if bank < 0 || bank > 3 {
		return UnmappablePage, false
	}
	return m.banks[bank].page, m.banks[bank].isROM
}

// Pool exposes the underlying page pool, e.g. for the ROM service to write
// loaded images into and for the snapshot writer to serialize.
func (m *Manager) Pool() *Pool { return m.pool }

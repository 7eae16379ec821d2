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

// Package tracker is the memory-access tracker: per-address read/write/
// execute counters over both the Z80 address space and physical page-pool
// offsets, monitored regions and ports, HALT-loop suppression, and segmented
// snapshots for before/after comparisons. See spec §4.6.
package tracker

import (
	"math"
	"sync"

	"github.com/alfishe/unreal-ng-sub004/pkg/memory"
)

// Mode selects which counter space(s) an access updates.
type Mode int

const (
	Z80AddressSpace Mode = 1 << iota
	PhysicalMemory
)

// SessionState is the tracker's lifecycle state.
type SessionState int

const (
	Stopped SessionState = iota
	Capturing
	Paused
)

// MaxHaltExecutions bounds how many times a HALT instruction re-fetching the
// same opcode at the same address is counted before being suppressed.
const MaxHaltExecutions = 1

// Counters holds the three access-kind tallies for one address/region/port.
type Counters struct {
	Reads, Writes, Executes uint32
}

func (c *Counters) incRead()    { c.Reads = satInc(c.Reads) }
func (c *Counters) incWrite()   { c.Writes = satInc(c.Writes) }
func (c *Counters) incExecute() { c.Executes = satInc(c.Executes) }

func satInc(v uint32) uint32 {
	if v == math.MaxUint32 {
		return v
	}
	return v + 1
}

// Region is a named, monitored address range in the Z80 address space.
type Region struct {
	Name       string
	Start, End uint16 // inclusive
	Stats      Counters
}

func (r *Region) contains(addr uint16) bool { return addr >= r.Start && addr <= r.End }

// PortWatch is a named, monitored I/O port.
type PortWatch struct {
	Name  string
	Port  uint16
	Stats Counters
}

// Segment snapshots region/port stats between Begin/EndSegment calls, for
// before/after comparisons (e.g. "what did this one subroutine call touch").
type Segment struct {
	Name        string
	RegionStats map[string]Counters
	PortStats   map[uint16]Counters
}

// histEntry is one caller-PC histogram slot for a tracked address.
type histEntry struct {
	count    uint32
	lastSeen uint64
}

// Tracker implements memory.AccessTracker.
type Tracker struct {
	mu sync.Mutex

	mode  Mode
	state SessionState

	peeker memory.Peeker

	z80Reads, z80Writes, z80Executes []uint32 // lazily sized to 65536
	bankTouched                      [4]bool

	physReads, physWrites, physExecutes []uint32 // lazily sized to the pool's total byte count
	pageSize                             int
	physOffsetOf                         func(addr uint16) (int, bool)

	regions []*Region
	ports   []*PortWatch

	segments      []*Segment
	activeSegment *Segment

	trackCallers  bool
	trackDataFlow bool
	maxHistEntries int
	histogram     map[uint16]map[uint16]*histEntry // addr -> callerPC -> entry

	lastExecPC    uint16
	haveLastExec  bool
	haltCount     int

	tick uint64 // monotonic counter, used only to order LRU eviction
}

// New returns a tracker over a page pool of physPages pages (16 KiB each),
// initially Stopped and tracking both address spaces.
func New(physPages int) *Tracker {
	return &Tracker{
		mode:           Z80AddressSpace | PhysicalMemory,
		state:          Stopped,
		pageSize:       memory.PageSize,
		maxHistEntries: 4096,
		histogram:      make(map[uint16]map[uint16]*histEntry),
		physReads:      make([]uint32, physPages*memory.PageSize),
		physWrites:     make([]uint32, physPages*memory.PageSize),
		physExecutes:   make([]uint32, physPages*memory.PageSize),
	}
}

// SetPeeker wires a side-effect-free memory reader used solely to identify
// the HALT opcode (0x76) for execute-tracking's loop suppression.
func (t *Tracker) SetPeeker(p memory.Peeker) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.peeker = p
}

// SetMode selects which counter space(s) accesses update.
func (t *Tracker) SetMode(m Mode) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.mode = m
}

// Start/Pause/Stop drive the session state machine.
func (t *Tracker) Start() { t.setState(Capturing) }
func (t *Tracker) Pause() { t.setState(Paused) }
func (t *Tracker) Stop()  { t.setState(Stopped) }

func (t *Tracker) setState(s SessionState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = s
}

// SetDataFlowTracking enables the caller-PC histogram maintained alongside
// the plain counters (expensive; off by default).
func (t *Tracker) SetDataFlowTracking(trackCallers, trackDataFlow bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.trackCallers = trackCallers
	t.trackDataFlow = trackDataFlow
}

// AddRegion starts monitoring [start,end] (inclusive) under name.
func (t *Tracker) AddRegion(name string, start, end uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.regions = append(t.regions, &Region{Name: name, Start: start, End: end})
}

// AddPort starts monitoring a single I/O port under name.
func (t *Tracker) AddPort(name string, port uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ports = append(t.ports, &PortWatch{Name: name, Port: port})
}

// BeginSegment opens a new segment; subsequent updates to monitored
// region/port stats are mirrored into it until EndSegment.
func (t *Tracker) BeginSegment(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	seg := &Segment{Name: name, RegionStats: make(map[string]Counters), PortStats: make(map[uint16]Counters)}
	t.segments = append(t.segments, seg)
	t.activeSegment = seg
}

// EndSegment closes the currently open segment, if any.
func (t *Tracker) EndSegment() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.activeSegment = nil
}

func (t *Tracker) ensureZ80Slices() {
	if t.z80Reads == nil {
		t.z80Reads = make([]uint32, 65536)
		t.z80Writes = make([]uint32, 65536)
		t.z80Executes = make([]uint32, 65536)
	}
}

// resetHaltDetection clears the HALT-loop suppression counter; called
// whenever the executed PC changes.
func (t *Tracker) resetHaltDetection() {
	t.haltCount = 0
}

func (t *Tracker) isHaltAt(addr uint16) bool {
	if t.peeker == nil {
		return false
	}
	v, err := t.peeker.Peek(addr)
	return err == nil && v == 0x76
}

// TrackExecute implements memory.AccessTracker. HALT re-fetches of the same
// opcode at the same address are counted at most MaxHaltExecutions times,
// per spec §4.6, so a spinning HALT loop doesn't saturate its counter.
func (t *Tracker) TrackExecute(address uint16, callerPC uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != Capturing {
		return
	}

	if t.haveLastExec && address == t.lastExecPC && t.isHaltAt(address) {
		t.haltCount++
		if t.haltCount > MaxHaltExecutions {
			return
		}
	} else {
		t.resetHaltDetection()
	}
	t.lastExecPC = address
	t.haveLastExec = true

	if t.mode&Z80AddressSpace != 0 {
		t.ensureZ80Slices()
		t.z80Executes[address] = satInc(t.z80Executes[address])
		t.bankTouched[address>>14] = true
	}

	t.trackPhysicalAndRegions(address, accessExecute, callerPC, func(c *Counters) { c.incExecute() })
}

// TrackRead implements memory.AccessTracker.
func (t *Tracker) TrackRead(address uint16, value uint8, callerPC uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Capturing {
		return
	}
	if t.mode&Z80AddressSpace != 0 {
		t.ensureZ80Slices()
		t.z80Reads[address] = satInc(t.z80Reads[address])
		t.bankTouched[address>>14] = true
	}
	t.trackPhysicalAndRegions(address, accessRead, callerPC, func(c *Counters) { c.incRead() })
}

// TrackWrite implements memory.AccessTracker.
func (t *Tracker) TrackWrite(address uint16, value uint8, callerPC uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Capturing {
		return
	}
	if t.mode&Z80AddressSpace != 0 {
		t.ensureZ80Slices()
		t.z80Writes[address] = satInc(t.z80Writes[address])
		t.bankTouched[address>>14] = true
	}
	t.trackPhysicalAndRegions(address, accessWrite, callerPC, func(c *Counters) { c.incWrite() })
}

// accessKind distinguishes the three physical counter arrays; unlike Mode
// (which selects an address space) this selects read/write/execute.
type accessKind int

const (
	accessRead accessKind = iota
	accessWrite
	accessExecute
)

// trackPhysicalAndRegions updates the physical counters (when a resolver is
// wired and the bank is mapped), the monitored region/port stats, and the
// caller-PC histogram.
func (t *Tracker) trackPhysicalAndRegions(address uint16, kind accessKind, callerPC uint16, apply func(*Counters)) {
	if t.mode&PhysicalMemory != 0 && t.physOffsetOf != nil {
		if off, ok := t.physOffsetOf(address); ok && off >= 0 && off < len(t.physReads) {
			switch kind {
			case accessRead:
				t.physReads[off] = satInc(t.physReads[off])
			case accessWrite:
				t.physWrites[off] = satInc(t.physWrites[off])
			case accessExecute:
				t.physExecutes[off] = satInc(t.physExecutes[off])
			}
		}
	}

	for _, r := range t.regions {
		if !r.contains(address) {
			continue
		}
		apply(&r.Stats)
		if t.activeSegment != nil {
			s := t.activeSegment.RegionStats[r.Name]
			apply(&s)
			t.activeSegment.RegionStats[r.Name] = s
		}
	}

	if t.trackCallers || t.trackDataFlow {
		t.recordHistogram(address, callerPC)
	}
}

// SetPhysicalResolver wires the function used to translate a Z80 address
// into a page-pool byte offset (memory.Manager.PhysicalOffsetFor), enabling
// the physical-space counters.
func (t *Tracker) SetPhysicalResolver(fn func(addr uint16) (int, bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.physOffsetOf = fn
}

// recordHistogram maintains the addr->callerPC->count map with LRU eviction:
// when the per-address map reaches maxHistEntries, the least recently seen
// entry with count<=1 is evicted to make room. When every entry has a higher
// count, nothing is evicted and the map grows past maxHistEntries.
func (t *Tracker) recordHistogram(address uint16, callerPC uint16) {
	t.tick++
	m := t.histogram[address]
	if m == nil {
		m = make(map[uint16]*histEntry)
		t.histogram[address] = m
	}
	if e, ok := m[callerPC]; ok {
		e.count = satInc(e.count)
		e.lastSeen = t.tick
		return
	}
	if len(m) >= t.maxHistEntries {
		var evictKey uint16
		var evict *histEntry
		for k, e := range m {
			if e.count <= 1 && (evict == nil || e.lastSeen < evict.lastSeen) {
				evictKey = k
				evict = e
			}
		}
		if evict != nil {
			delete(m, evictKey)
		}
	}
	m[callerPC] = &histEntry{count: 1, lastSeen: t.tick}
}

// ReadCount, WriteCount, ExecuteCount return the Z80-address-space counters
// for addr (0 if tracking of that space is disabled or nothing has happened
// yet).
func (t *Tracker) ReadCount(addr uint16) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.z80Reads == nil {
		return 0
	}
	return t.z80Reads[addr]
}

func (t *Tracker) WriteCount(addr uint16) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.z80Writes == nil {
		return 0
	}
	return t.z80Writes[addr]
}

func (t *Tracker) ExecuteCount(addr uint16) uint32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.z80Executes == nil {
		return 0
	}
	return t.z80Executes[addr]
}

// TrackPortIn and TrackPortOut update monitored-port stats; pkg/ports calls
// these from OnPortInComplete/OnPortOutComplete alongside the breakpoint
// manager's CheckPortIn/CheckPortOut.
func (t *Tracker) TrackPortIn(port uint16, callerPC uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Capturing {
		return
	}
	t.applyPort(port, func(c *Counters) { c.incRead() })
}

func (t *Tracker) TrackPortOut(port uint16, callerPC uint16) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != Capturing {
		return
	}
	t.applyPort(port, func(c *Counters) { c.incWrite() })
}

func (t *Tracker) applyPort(port uint16, apply func(*Counters)) {
	for _, p := range t.ports {
		if p.Port != port {
			continue
		}
		apply(&p.Stats)
		if t.activeSegment != nil {
			s := t.activeSegment.PortStats[port]
			apply(&s)
			t.activeSegment.PortStats[port] = s
		}
	}
}

// Regions and Ports expose copies of the monitored lists for reporting.
func (t *Tracker) Regions() []Region {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Region, len(t.regions))
	for i, r := range t.regions {
		out[i] = *r
	}
	return out
}

func (t *Tracker) Ports() []PortWatch {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]PortWatch, len(t.ports))
	for i, p := range t.ports {
		out[i] = *p
	}
	return out
}

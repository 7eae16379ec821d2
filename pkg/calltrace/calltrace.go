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

// Package calltrace is the call-trace ring buffer: a cold ring of
// control-flow events with loop-count compression and an LRU duplicate
// index, plus a small hot list for events that repeat often enough to
// qualify as active loops. See spec §4.7.
package calltrace

import (
	"container/list"
	"fmt"
	"os"
	"strings"
)

// EventType identifies the control-flow instruction that produced an event.
// Only taken branches/calls/returns are logged.
type EventType int

const (
	JP EventType = iota
	JR
	CALL
	RST
	RET
	RETI
	DJNZ
)

func (t EventType) String() string {
	switch t {
	case JP:
		return "JP"
	case JR:
		return "JR"
	case CALL:
		return "CALL"
	case RST:
		return "RST"
	case RET:
		return "RET"
	case RETI:
		return "RETI"
	case DJNZ:
		return "DJNZ"
	default:
		return "?"
	}
}

// BankMap records which page was mapped into each of the four 16 KiB banks
// at the moment the event was logged.
type BankMap [4]struct {
	IsROM bool
	Page  uint16
}

// Event is one control-flow transfer.
type Event struct {
	M1PC        uint16
	TargetAddr  uint16
	OpcodeBytes [4]byte
	OpcodeLen   int
	Flags       byte
	Type        EventType
	Banks       BankMap
	SPAfter     uint16
	StackTop    [3]uint16 // valid for RET/RETI only
	LoopCount   uint32
}

// EventKey is the equality key spec.md defines: two events are equal iff
// (m1_pc, target_addr, type, sp, opcode_bytes, bank_map) match.
type EventKey struct {
	M1PC       uint16
	TargetAddr uint16
	Type       EventType
	SP         uint16
	Opcode     [4]byte
	Banks      BankMap
}

func keyOf(e Event) EventKey {
	return EventKey{
		M1PC:       e.M1PC,
		TargetAddr: e.TargetAddr,
		Type:       e.Type,
		SP:         e.SPAfter,
		Opcode:     e.OpcodeBytes,
		Banks:      e.Banks,
	}
}

// DefaultHotThreshold is the repeat count at which a cold entry is promoted
// to the hot list.
const DefaultHotThreshold = 100

// DefaultHotTimeoutFrames is how many frames a hot entry may go unseen
// before it expires back out of the hot list.
const DefaultHotTimeoutFrames = 300

// DefaultColdCapacity is the cold ring's initial capacity.
const DefaultColdCapacity = 1 << 20 // ~1M events

// maxColdCapacity bounds ring growth at roughly 1 GiB of Event storage.
var maxColdCapacity = (1 << 30) / eventSizeEstimate

const eventSizeEstimate = 64 // bytes, a conservative estimate of sizeof(Event)

const hotListCapacity = 1024
const lruIndexCapacity = 100

type hotEntry struct {
	event         Event
	key           EventKey
	lastSeenFrame uint64
}

// Buffer is the cold ring + hot list + LRU index.
type Buffer struct {
	cold     []Event
	coldHead int  // oldest entry's index, once the ring has wrapped
	coldLen  int  // number of valid entries, <= coldCap
	coldCap  int  // current capacity, grows up to maxColdCapacity
	wrapped  bool // true once the ring has filled and started overwriting

	hot     map[EventKey]*list.Element
	hotList *list.List // elements hold *hotEntry, front = most recently touched

	lru      map[EventKey]int // key -> cold ring index, for O(1) duplicate lookup
	lruElems map[EventKey]*list.Element
	lruList  *list.List // elements hold EventKey, front = most recently used

	hotThreshold     int
	hotTimeoutFrames uint64
}

// New returns an empty call-trace buffer with default capacities and
// thresholds.
func New() *Buffer {
	return &Buffer{
		cold:             make([]Event, 0, DefaultColdCapacity),
		coldCap:          DefaultColdCapacity,
		hot:              make(map[EventKey]*list.Element),
		hotList:          list.New(),
		lru:              make(map[EventKey]int),
		lruElems:         make(map[EventKey]*list.Element),
		lruList:          list.New(),
		hotThreshold:     DefaultHotThreshold,
		hotTimeoutFrames: DefaultHotTimeoutFrames,
	}
}

// SetThresholds overrides the hot-promotion repeat count and hot-entry
// expiry window (frames since last seen).
func (b *Buffer) SetThresholds(hotThreshold int, hotTimeoutFrames uint64) {
	b.hotThreshold = hotThreshold
	b.hotTimeoutFrames = hotTimeoutFrames
}

// LogEvent records one taken control-flow transfer at the given frame
// number, applying duplicate compression against any cold entry whose key
// is still in the LRU index (not only the most recent entry) and hot-list
// promotion/expiry.
func (b *Buffer) LogEvent(e Event, currentFrame uint64) {
	b.expireHotEntries(currentFrame)

	key := keyOf(e)

	if he := b.hotEntry(key); he != nil {
		he.event.LoopCount++
		he.lastSeenFrame = currentFrame
		b.hotList.MoveToFront(b.hot[key])
		return
	}

	if idx, ok := b.lru[key]; ok && idx < b.coldLen {
		existing := &b.cold[idx]
		if keyOf(*existing) == key {
			existing.LoopCount++
			b.touchLRU(key)
			if existing.LoopCount >= uint32(b.hotThreshold) {
				b.promoteToHot(*existing, key, currentFrame)
				b.removeColdEntry(idx)
				b.forgetLRU(key)
			}
			return
		}
	}

	e.LoopCount = 1
	b.appendCold(e, key)
}

func (b *Buffer) hotEntry(key EventKey) *hotEntry {
	el, ok := b.hot[key]
	if !ok {
		return nil
	}
	return el.Value.(*hotEntry)
}

func (b *Buffer) promoteToHot(e Event, key EventKey, currentFrame uint64) {
	if len(b.hot) >= hotListCapacity {
		b.evictOldestHot()
	}
	el := b.hotList.PushFront(&hotEntry{event: e, key: key, lastSeenFrame: currentFrame})
	b.hot[key] = el
}

func (b *Buffer) evictOldestHot() {
	back := b.hotList.Back()
	if back == nil {
		return
	}
	he := back.Value.(*hotEntry)
	delete(b.hot, he.key)
	b.hotList.Remove(back)
}

// expireHotEntries drops hot entries that haven't been seen recently enough;
// they are simply forgotten, never written back to cold (spec: "the
// currently-active loops", not archived history).
func (b *Buffer) expireHotEntries(currentFrame uint64) {
	for el := b.hotList.Back(); el != nil; {
		he := el.Value.(*hotEntry)
		prev := el.Prev()
		if currentFrame > he.lastSeenFrame && currentFrame-he.lastSeenFrame > b.hotTimeoutFrames {
			delete(b.hot, he.key)
			b.hotList.Remove(el)
		}
		el = prev
	}
}

// appendCold writes a new cold entry, reusing the oldest slot once the ring
// is full (growing first, up to maxColdCapacity).
func (b *Buffer) appendCold(e Event, key EventKey) {
	if b.coldLen < b.coldCap {
		b.cold = append(b.cold, e)
		b.coldLen++
		b.indexLRU(key, b.coldLen-1)
		return
	}
	if b.coldCap < maxColdCapacity {
		grown := b.coldCap * 2
		if grown > maxColdCapacity {
			grown = maxColdCapacity
		}
		b.coldCap = grown
		b.cold = append(b.cold, e)
		b.coldLen++
		b.indexLRU(key, b.coldLen-1)
		return
	}
	// ring is at its cap: overwrite the oldest slot.
	idx := b.coldHead
	b.cold[idx] = e
	b.coldHead = (b.coldHead + 1) % len(b.cold)
	b.wrapped = true
	b.indexLRU(key, idx)
}

// removeColdEntry clears a cold slot after its key has been promoted to hot;
// the slot's content is left zeroed so save/iteration skip it.
func (b *Buffer) removeColdEntry(idx int) {
	b.cold[idx] = Event{}
}

func (b *Buffer) indexLRU(key EventKey, idx int) {
	if _, ok := b.lru[key]; ok {
		b.lru[key] = idx
		b.touchLRU(key)
		return
	}
	if len(b.lru) >= lruIndexCapacity {
		b.evictOldestLRU()
	}
	el := b.lruList.PushFront(key)
	b.lruElems[key] = el
	b.lru[key] = idx
}

func (b *Buffer) touchLRU(key EventKey) {
	if el, ok := b.lruElems[key]; ok {
		b.lruList.MoveToFront(el)
	}
}

func (b *Buffer) evictOldestLRU() {
	back := b.lruList.Back()
	if back == nil {
		return
	}
	b.forgetLRU(back.Value.(EventKey))
}

// forgetLRU removes key from all three LRU-tracking structures.
func (b *Buffer) forgetLRU(key EventKey) {
	if el, ok := b.lruElems[key]; ok {
		b.lruList.Remove(el)
		delete(b.lruElems, key)
	}
	delete(b.lru, key)
}

// ColdEntries returns a snapshot of every non-empty cold entry, oldest
// first.
func (b *Buffer) ColdEntries() []Event {
	out := make([]Event, 0, b.coldLen)
	for i := 0; i < b.coldLen; i++ {
		idx := i
		if b.wrapped {
			idx = (b.coldHead + i) % len(b.cold)
		}
		e := b.cold[idx]
		if e.LoopCount == 0 {
			continue // cleared after hot promotion
		}
		out = append(out, e)
	}
	return out
}

// HotEntries returns a snapshot of every currently active hot entry.
func (b *Buffer) HotEntries() []Event {
	out := make([]Event, 0, len(b.hot))
	for el := b.hotList.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*hotEntry).event)
	}
	return out
}

// SaveToFile persists only the cold entries (hot entries are the currently
// active loops and are never archived) as a CSV-like text log.
func (b *Buffer) SaveToFile(path string) error {
	var sb strings.Builder
	sb.WriteString("type,m1_pc,target_addr,sp_after,loop_count,opcode_bytes\n")
	for _, e := range b.ColdEntries() {
		opBytes := e.OpcodeBytes[:e.OpcodeLen]
		hexBytes := make([]string, len(opBytes))
		for i, v := range opBytes {
			hexBytes[i] = fmt.Sprintf("%02X", v)
		}
		fmt.Fprintf(&sb, "%s,%04X,%04X,%04X,%d,%s\n",
			e.Type, e.M1PC, e.TargetAddr, e.SPAfter, e.LoopCount, strings.Join(hexBytes, " "))
	}
	return os.WriteFile(path, []byte(sb.String()), 0o644)
}

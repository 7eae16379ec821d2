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

// Package memory implements the banked Z80 address-space manager: the
// 16 KiB page pool, the 4-slot bank map and the fast/debug accessor pair the
// Z80 core switches between. See spec §3 and §4.1.
package memory

// CPUBus is the fast-path interface the Z80 core talks to during normal
// execution: no breakpoint checks, no access tracking, just bytes.
type CPUBus interface {
	Read(address uint16) uint8
	Write(address uint16, data uint8)
}

// DebuggerBus is the slow-path interface the Z80 core switches to when
// debug mode is enabled: every access also runs through the breakpoint
// manager and the access tracker before touching memory.
type DebuggerBus interface {
	ReadDebug(address uint16, isM1 bool) uint8
	WriteDebug(address uint16, data uint8)
}

// Peeker lets non-CPU callers (the disassembler, snapshot writer) read
// memory without participating in breakpoint/tracker side effects at all.
type Peeker interface {
	Peek(address uint16) (uint8, error)
	Poke(address uint16, value uint8) error
}

// BreakpointChecker is the hook the memory manager calls from the debug
// path before every access. Implemented by pkg/breakpoints; wired in by
// pkg/emulator so this package never imports breakpoints directly.
type BreakpointChecker interface {
	CheckExecute(address uint16) bool
	CheckRead(address uint16) bool
	CheckWrite(address uint16) bool
}

// AccessTracker is the hook the memory manager calls from the debug path
// after a BreakpointChecker check. Implemented by pkg/tracker.
type AccessTracker interface {
	TrackExecute(address uint16, callerPC uint16)
	TrackRead(address uint16, value uint8, callerPC uint16)
	TrackWrite(address uint16, value uint8, callerPC uint16)
}

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

// Package scheduler is the single-threaded cooperative main loop: one
// iteration per video frame, breakpoint checks between instructions,
// StepInstruction/StepOver/StepOut (which run to a target address by direct
// PC comparison and install no temporary breakpoint), and a small
// command queue the host drains the engine through (spec §4.9/§5). Nothing
// in this package ever re-enters the CPU, memory or ports from a goroutine
// other than the one running Run/RunFrame — the "engine thread" of spec §5
// is simply whichever goroutine calls into the scheduler. Wiring the CPU to
// its memory bus and port decoder is pkg/emulator's job; the scheduler only
// ever calls Step/AcceptInterrupt/WrapFrame on an already-plumbed CPU.
package scheduler

import (
	"sync"
	"sync/atomic"

	"github.com/alfishe/unreal-ng-sub004/pkg/breakpoints"
	"github.com/alfishe/unreal-ng-sub004/pkg/disasm"
	"github.com/alfishe/unreal-ng-sub004/pkg/msgbus"
	"github.com/alfishe/unreal-ng-sub004/pkg/z80"
)

// Video is the subset of pkg/video's Renderer the scheduler drives every
// frame; named here so the scheduler doesn't need to import pkg/video for
// anything but this.
type Video interface {
	Draw(t int)
	RenderFrameBatch()
	AdvanceFrame()
}

// CommandKind enumerates the host-to-engine command queue drained at the
// top of every scheduler iteration (spec §5's "small command queue").
type CommandKind int

const (
	CmdPause CommandKind = iota
	CmdResume
	CmdReset
	CmdLoadSnapshot
	CmdLoadTape
	CmdLoadDisk
)

// Command is one host-issued instruction, with an optional payload (a
// snapshot/tape/disk image path or byte slice) for the Load* kinds.
type Command struct {
	Kind    CommandKind
	Payload interface{}
}

// Scheduler drives the Z80 one frame at a time, publishing BreakpointHit,
// VideoFrameRefresh (FRAME_READY) and ExecutionCPUStep notifications on its
// message bus as it goes.
type Scheduler struct {
	cpu   *z80.CPU
	video Video
	bus   *msgbus.Bus
	bp    *breakpoints.Manager

	tStatesPerFrame int

	// screenHQ selects the per-t-state Draw path (true) over the
	// whole-frame RenderFrameBatch path (false); spec §4.9 runs Draw
	// unconditionally but treats it as a cheap no-op when HQ is off, which
	// this scheduler models directly by skipping the call instead.
	screenHQ bool

	paused int32 // atomic: 0 = running, 1 = paused
	stop   int32 // atomic: Stop() cooperative flag

	frameCounter uint64

	commandsMu sync.Mutex
	commands   []Command

	// readMem backs StepOver/StepOut's instruction-length decoding and
	// stack-top read; it is the memory manager's Read, passed in rather
	// than imported so this package stays independent of pkg/memory.
	readMem func(addr uint16) uint8
}

// New constructs a Scheduler around an already-wired CPU (its Bus and
// Ports must already be set via z80.NewCPU/Plumb by the caller). readMem is
// used only by StepOver/StepOut to decode instruction lengths and read the
// return address off the stack.
func New(cpu *z80.CPU, video Video, bp *breakpoints.Manager, bus *msgbus.Bus, tStatesPerFrame int, readMem func(addr uint16) uint8) *Scheduler {
	s := &Scheduler{
		cpu:             cpu,
		video:           video,
		bus:             bus,
		bp:              bp,
		tStatesPerFrame: tStatesPerFrame,
		readMem:         readMem,
	}
	if bp != nil {
		bp.SetHitHandler(func(b breakpoints.Breakpoint) {
			s.Pause()
			bus.Publish(msgbus.BreakpointHit, msgbus.BreakpointHitEvent{ID: b.ID, Address: b.Address})
		})
	}
	return s
}

// SetScreenHQ toggles between the per-t-state and whole-frame-batch render
// paths.
func (s *Scheduler) SetScreenHQ(on bool) { s.screenHQ = on }

// IsPaused reports whether the loop is currently paused between
// instructions.
func (s *Scheduler) IsPaused() bool { return atomic.LoadInt32(&s.paused) == 1 }

// Pause requests the loop suspend at its next wait_if_paused check.
func (s *Scheduler) Pause() {
	atomic.StoreInt32(&s.paused, 1)
	s.bus.Publish(msgbus.EmulatorStateChange, msgbus.StatePaused)
}

// Resume lifts a Pause.
func (s *Scheduler) Resume() {
	atomic.StoreInt32(&s.paused, 0)
	s.bus.Publish(msgbus.EmulatorStateChange, msgbus.StateRunning)
}

// Stop cooperatively ends Run: the flag is observed after the current
// instruction completes, per spec §5's cancellation rule.
func (s *Scheduler) Stop() { atomic.StoreInt32(&s.stop, 1) }

// Enqueue appends a host command to be drained at the top of the next
// scheduler iteration.
func (s *Scheduler) Enqueue(cmd Command) {
	s.commandsMu.Lock()
	s.commands = append(s.commands, cmd)
	s.commandsMu.Unlock()
}

// drainCommands empties the command queue, invoking handle for each in
// order; handle is supplied by pkg/emulator, which owns the snapshot/tape/
// disk loaders the Load* commands need. Pause/Resume are handled here
// directly since they require no collaborator beyond the scheduler itself.
func (s *Scheduler) drainCommands(handle func(Command)) {
	s.commandsMu.Lock()
	cmds := s.commands
	s.commands = nil
	s.commandsMu.Unlock()
	for _, cmd := range cmds {
		switch cmd.Kind {
		case CmdPause:
			s.Pause()
		case CmdResume:
			s.Resume()
		default:
			if handle != nil {
				handle(cmd)
			}
		}
	}
}

// Run drives frames forever until Stop is called, draining the command
// queue at the top of each iteration and calling handle for any command
// this package doesn't resolve itself (Reset/LoadSnapshot/LoadTape/
// LoadDisk).
func (s *Scheduler) Run(handle func(Command)) {
	for atomic.LoadInt32(&s.stop) == 0 {
		s.drainCommands(handle)
		if s.IsPaused() {
			continue
		}
		s.RunFrame()
	}
}

// RunFrame executes exactly one frame's worth of t-states, per spec §4.9's
// pseudocode: step until the frame budget is exhausted or a breakpoint
// fires, batch-render if ScreenHQ is off, accept a pending interrupt, wrap
// the t-state counters, advance the flash phase and publish FRAME_READY.
func (s *Scheduler) RunFrame() {
	for s.cpu.T < s.tStatesPerFrame {
		if s.bp != nil && s.bp.CheckExecute(s.cpu.Reg.PC) {
			s.Pause()
			return
		}
		s.cpu.Step()
		if s.screenHQ {
			s.video.Draw(s.cpu.T)
		}
	}
	if !s.screenHQ {
		s.video.RenderFrameBatch()
	}
	s.cpu.AcceptInterrupt()
	s.cpu.WrapFrame(s.tStatesPerFrame)
	s.video.AdvanceFrame()
	s.frameCounter++
	s.bus.Publish(msgbus.VideoFrameRefresh, s.frameCounter)
}

// StepInstruction executes exactly one instruction and publishes
// ExecutionCPUStep with the PC it stopped at.
func (s *Scheduler) StepInstruction() {
	s.cpu.Step()
	s.bus.Publish(msgbus.ExecutionCPUStep, s.cpu.Reg.PC)
}

// StepOver runs to the instruction following the one at the current PC
// (decoding its length so a CALL is stepped over rather than into). No
// breakpoint is installed: runUntil compares PC with that address and also
// stops when the frame's t-state budget runs out or a user breakpoint fires.
func (s *Scheduler) StepOver() {
	pc := s.cpu.Reg.PC
	length := s.instructionLength(pc)
	target := pc + uint16(length)
	s.runUntil(target)
}

// StepOut runs until the instruction at the return address currently on
// top of the stack is reached.
func (s *Scheduler) StepOut() {
	if s.readMem == nil {
		s.StepInstruction()
		return
	}
	sp := s.cpu.Reg.SP.Get()
	lo := s.readMem(sp)
	hi := s.readMem(sp + 1)
	target := uint16(hi)<<8 | uint16(lo)
	s.runUntil(target)
}

// instructionLength decodes the instruction at addr using the same
// prefix/template tables the disassembler uses, falling back to 1 byte if
// decoding fails (e.g. memory is not readable at addr).
func (s *Scheduler) instructionLength(addr uint16) int {
	if s.readMem == nil {
		return 1
	}
	buf := make([]byte, 4)
	for i := range buf {
		buf[i] = s.readMem(addr + uint16(i))
	}
	decoded, ok := disasm.DisassembleSingleCommand(buf, addr)
	if !ok || decoded.Length <= 0 {
		return 1
	}
	return decoded.Length
}

// runUntil steps until PC reaches target or the frame's t-state budget is
// exhausted. It checks target by direct PC comparison rather than arming it
// through the breakpoint manager, so reaching it does not fire the
// manager's global hit handler (and therefore does not publish a spurious
// BREAKPOINT_HIT) the way a real user breakpoint would. A real breakpoint
// encountered along the way is still honored exactly as RunFrame would.
func (s *Scheduler) runUntil(target uint16) {
	s.cpu.Step()
	for s.cpu.T < s.tStatesPerFrame && s.cpu.Reg.PC != target {
		if s.bp != nil && s.bp.CheckExecute(s.cpu.Reg.PC) {
			s.Pause()
			return
		}
		s.cpu.Step()
	}
}

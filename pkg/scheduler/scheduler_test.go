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

package scheduler_test

import (
	"testing"

	"github.com/alfishe/unreal-ng-sub004/pkg/breakpoints"
	"github.com/alfishe/unreal-ng-sub004/pkg/msgbus"
	"github.com/alfishe/unreal-ng-sub004/pkg/scheduler"
	"github.com/alfishe/unreal-ng-sub004/pkg/z80"
)

type mockBus struct {
	mem [0x10000]byte
}

func (m *mockBus) Read(addr uint16) uint8              { return m.mem[addr] }
func (m *mockBus) Write(addr uint16, v uint8)          { m.mem[addr] = v }
func (m *mockBus) ReadDebug(addr uint16, _ bool) uint8 { return m.mem[addr] }
func (m *mockBus) WriteDebug(addr uint16, v uint8)     { m.mem[addr] = v }

type mockPorts struct{}

func (mockPorts) In(port uint16, pc uint16) uint8          { return 0xFF }
func (mockPorts) Out(port uint16, value uint8, pc uint16) {}

type fakeVideo struct {
	drawCalls  int
	batchCalls int
	advanced   int
}

func (f *fakeVideo) Draw(t int)          { f.drawCalls++ }
func (f *fakeVideo) RenderFrameBatch()   { f.batchCalls++ }
func (f *fakeVideo) AdvanceFrame()       { f.advanced++ }

// NOPs (0x00) everywhere, four t-states each; a 44-t-state frame budget
// takes exactly 11 steps.
func newFilledNOPBus() *mockBus {
	return &mockBus{}
}

func TestRunFrameStepsUntilBudgetThenRendersAndPublishes(t *testing.T) {
	bus := newFilledNOPBus()
	cpu := z80.NewCPU(bus, mockPorts{})
	video := &fakeVideo{}
	mbus := msgbus.New()

	var frameEvents []uint64
	mbus.Subscribe(msgbus.VideoFrameRefresh, func(payload interface{}) {
		frameEvents = append(frameEvents, payload.(uint64))
	})

	sched := scheduler.New(cpu, video, nil, mbus, 44, bus.Read)
	sched.RunFrame()

	if video.batchCalls != 1 {
		t.Fatalf("batchCalls = %d, want 1 (ScreenHQ off by default)", video.batchCalls)
	}
	if video.advanced != 1 {
		t.Fatalf("advanced = %d, want 1", video.advanced)
	}
	if len(frameEvents) != 1 || frameEvents[0] != 1 {
		t.Fatalf("frameEvents = %v, want [1]", frameEvents)
	}
	if cpu.T < 0 {
		t.Fatalf("T should have wrapped non-negative, got %d", cpu.T)
	}
}

func TestRunFrameUsesDrawPathWhenScreenHQOn(t *testing.T) {
	bus := newFilledNOPBus()
	cpu := z80.NewCPU(bus, mockPorts{})
	video := &fakeVideo{}
	mbus := msgbus.New()

	sched := scheduler.New(cpu, video, nil, mbus, 44, bus.Read)
	sched.SetScreenHQ(true)
	sched.RunFrame()

	if video.drawCalls == 0 {
		t.Fatalf("expected Draw to be called at least once with ScreenHQ on")
	}
	if video.batchCalls != 0 {
		t.Fatalf("batchCalls = %d, want 0 with ScreenHQ on", video.batchCalls)
	}
}

func TestBreakpointHitPausesAndPublishes(t *testing.T) {
	bus := newFilledNOPBus()
	cpu := z80.NewCPU(bus, mockPorts{})
	video := &fakeVideo{}
	mbus := msgbus.New()
	bp := breakpoints.NewManager()
	bp.Add(breakpoints.KindMemoryExec, 0x0008)

	var hit msgbus.BreakpointHitEvent
	mbus.Subscribe(msgbus.BreakpointHit, func(payload interface{}) {
		hit = payload.(msgbus.BreakpointHitEvent)
	})

	sched := scheduler.New(cpu, video, bp, mbus, 44, bus.Read)
	sched.RunFrame()

	if !sched.IsPaused() {
		t.Fatalf("expected scheduler to be paused after hitting the breakpoint")
	}
	if hit.Address != 0x0008 {
		t.Fatalf("hit.Address = %#04x, want 0x0008", hit.Address)
	}
	if video.batchCalls != 0 {
		t.Fatalf("batchCalls = %d, want 0 (frame abandoned on breakpoint hit)", video.batchCalls)
	}
}

func TestStepInstructionPublishesExecutionCPUStep(t *testing.T) {
	bus := newFilledNOPBus()
	cpu := z80.NewCPU(bus, mockPorts{})
	video := &fakeVideo{}
	mbus := msgbus.New()

	calls := 0
	mbus.Subscribe(msgbus.ExecutionCPUStep, func(payload interface{}) { calls++ })

	sched := scheduler.New(cpu, video, nil, mbus, 1000, bus.Read)
	sched.StepInstruction()

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if cpu.Reg.PC != 1 {
		t.Fatalf("PC = %d, want 1 after one NOP", cpu.Reg.PC)
	}
}

func TestStepOverSkipsPastACallInstruction(t *testing.T) {
	bus := newFilledNOPBus()
	// CALL 0x0010 at address 0, then a NOP at 3 (the instruction after the
	// 3-byte CALL), then more NOPs at the call target that must NOT be
	// reached by StepOver.
	bus.mem[0] = 0xCD // CALL nn
	bus.mem[1] = 0x10
	bus.mem[2] = 0x00
	bus.mem[0x10] = 0xC9 // RET, so the call actually returns to PC=3

	cpu := z80.NewCPU(bus, mockPorts{})
	video := &fakeVideo{}
	mbus := msgbus.New()

	sched := scheduler.New(cpu, video, nil, mbus, 10000, bus.Read)
	sched.StepOver()

	if cpu.Reg.PC != 3 {
		t.Fatalf("PC = %d, want 3 (stepped over the CALL, not into it)", cpu.Reg.PC)
	}
}

func TestPauseAndResumeToggleIsPaused(t *testing.T) {
	bus := newFilledNOPBus()
	cpu := z80.NewCPU(bus, mockPorts{})
	video := &fakeVideo{}
	mbus := msgbus.New()

	sched := scheduler.New(cpu, video, nil, mbus, 44, bus.Read)
	sched.Pause()
	if !sched.IsPaused() {
		t.Fatalf("expected IsPaused() true after Pause")
	}
	sched.Resume()
	if sched.IsPaused() {
		t.Fatalf("expected IsPaused() false after Resume")
	}
}

func TestRunDrainsUnhandledCommandsThroughCallback(t *testing.T) {
	bus := newFilledNOPBus()
	cpu := z80.NewCPU(bus, mockPorts{})
	video := &fakeVideo{}
	mbus := msgbus.New()

	sched := scheduler.New(cpu, video, nil, mbus, 44, bus.Read)
	var handled []scheduler.CommandKind
	sched.Enqueue(scheduler.Command{Kind: scheduler.CmdReset})

	sched.Run(func(cmd scheduler.Command) {
		handled = append(handled, cmd.Kind)
		sched.Stop()
	})

	if len(handled) != 1 || handled[0] != scheduler.CmdReset {
		t.Fatalf("handled = %v, want [CmdReset]", handled)
	}
}

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

// Package emulator is the top-level aggregate: it owns every subsystem
// (memory, ROM service, Z80, ports, peripherals, video, tracker, call
// trace, breakpoints, symbols, scheduler, message bus) and exposes the
// narrow command surface a host (a CLI, a test harness, eventually a GUI
// shell) drives the engine through. Grounded on the teacher's own top-level
// aggregate, which wires CPU+Mem+TIA+RIOT behind a single handle the rest
// of the program holds instead of each subsystem directly.
package emulator

import (
	"os"

	"github.com/go-audio/audio"

	"github.com/alfishe/unreal-ng-sub004/pkg/breakpoints"
	"github.com/alfishe/unreal-ng-sub004/pkg/calltrace"
	"github.com/alfishe/unreal-ng-sub004/pkg/logger"
	"github.com/alfishe/unreal-ng-sub004/pkg/memory"
	"github.com/alfishe/unreal-ng-sub004/pkg/model"
	"github.com/alfishe/unreal-ng-sub004/pkg/msgbus"
	"github.com/alfishe/unreal-ng-sub004/pkg/peripherals"
	"github.com/alfishe/unreal-ng-sub004/pkg/ports"
	"github.com/alfishe/unreal-ng-sub004/pkg/rom"
	"github.com/alfishe/unreal-ng-sub004/pkg/scheduler"
	"github.com/alfishe/unreal-ng-sub004/pkg/snapshot"
	"github.com/alfishe/unreal-ng-sub004/pkg/symbols"
	"github.com/alfishe/unreal-ng-sub004/pkg/tracker"
	"github.com/alfishe/unreal-ng-sub004/pkg/video"
	"github.com/alfishe/unreal-ng-sub004/pkg/z80"
	"github.com/alfishe/unreal-ng-sub004/pkg/zxerror"
)

// sampleRate is the PCM rate the beeper/AY mixer renders at; a fixed
// constant rather than a config knob, matching the spec's silence on audio
// configurability (the ring buffer/host output device are out of scope).
const sampleRate = 44100

// portsAdapter makes a ports.Decoder satisfy z80.Ports: the decoder's
// methods are named Decode{In,Out} (mirroring "decode the port, then
// dispatch to a peripheral"), one level removed from the CPU's plain
// In/Out call shape.
type portsAdapter struct{ d ports.Decoder }

func (a portsAdapter) In(port uint16, pc uint16) uint8 { return a.d.DecodeIn(port, pc) }
func (a portsAdapter) Out(port uint16, value uint8, pc uint16) {
	a.d.DecodeOut(port, value, pc)
}

// Context is the engine aggregate. The zero value is not usable; construct
// with New.
type Context struct {
	ModelID model.ID

	Pool    *memory.Pool
	Memory  *memory.Manager
	ROM     *rom.Service
	CPU     *z80.CPU
	Ports   ports.Decoder
	Symbols *symbols.Table

	Keyboard *peripherals.KeyMatrix
	Beeper   *peripherals.Beeper
	Tape     *peripherals.TapePlayer
	ULA      *peripherals.ULA
	AY       *peripherals.AY8912 // nil for Spectrum48
	Mixer    *peripherals.Mixer

	Video *video.Renderer

	Tracker     *tracker.Tracker
	Breakpoints *breakpoints.Manager
	CallTrace   *calltrace.Buffer

	Bus       *msgbus.Bus
	Scheduler *scheduler.Scheduler
	Logger    *logger.Logger

	audioCallback func(*audio.IntBuffer)
}

// New allocates and wires every subsystem for model id, but does not load
// ROM images; call Init for that.
func New(id model.ID) *Context {
	ramPages := id.RAMPages()
	romPages := 4 // largest ROM set in the family (+3's 4x16K); unused slots
	// for smaller models are simply never mapped.
	pool := memory.NewPool(ramPages, romPages)

	mgr := memory.NewManager(pool)
	romSvc := rom.NewService(pool)

	bp := breakpoints.NewManager()
	trk := tracker.New(pool.TotalPages())
	trk.SetPeeker(mgr)
	trk.SetPhysicalResolver(mgr.PhysicalOffsetFor)

	mgr.SetBreakpointChecker(bp)
	mgr.SetAccessTracker(trk)

	decoder, err := ports.New(id, mgr)
	if err != nil {
		// New only fails for an unknown model.ID, which would itself be a
		// programmer error (an ID outside the const block); panicking here
		// matches pkg/ports.New's own "this should never happen" contract
		// rather than threading an error return through every caller for a
		// case that never triggers from the fixed model.ID enum.
		panic(err)
	}
	decoder.SetCompletionHooks(
		func(port uint16, value uint8, pc uint16) { trk.TrackPortIn(port, pc) },
		func(port uint16, value uint8, pc uint16) { trk.TrackPortOut(port, pc) },
	)

	keyboard := peripherals.NewKeyMatrix()
	beeper := peripherals.NewBeeper(float64(model.Timings[id].TStatesPerFrame) * model.Timings[id].FrameRate / sampleRate)
	ula := peripherals.NewULA(keyboard, beeper)
	tape := peripherals.NewTapePlayer()
	ula.Tape = tape
	decoder.RegisterPeripheral(ports.ULAPort, ula)

	// The AY-3-8912's own clock runs at half the Z80's, and its internal
	// tone/noise generators tick once every 16 AY clocks, so 32 Z80
	// t-states elapse per AY generator tick.
	const ayTStatesPerTick = 32

	var ay *peripherals.AY8912
	var mixer *peripherals.Mixer
	if id.HasAYChip() {
		ay = peripherals.NewAY8912(ayTStatesPerTick)
		sel, data := ay.Ports()
		decoder.RegisterPeripheral(ports.AYSelect, sel)
		decoder.RegisterPeripheral(ports.AYData, data)
		mixer = peripherals.NewMixer(sampleRate, beeper, ay)
	} else {
		mixer = peripherals.NewMixer(sampleRate, beeper, peripherals.NewAY8912(ayTStatesPerTick))
	}

	cpu := z80.NewCPU(mgr, portsAdapter{d: decoder})

	screenPageFn := func() int { return 5 } // 48K's fixed screen bank
	if sh, ok := decoder.(interface{ ScreenIsShadow() bool }); ok {
		screenPageFn = func() int {
			if sh.ScreenIsShadow() {
				return 7
			}
			return 5
		}
	}
	renderer := video.NewRenderer(model.Timings[id], pool, screenPageFn)
	ula.OnBorderChange = renderer.SetBorderColor

	bus := msgbus.New()
	mgr.SetChangeHandler(func(bank int) {
		page, _ := mgr.BankPage(bank)
		bus.Publish(msgbus.MemoryChanged, msgbus.MemoryChangedEvent{Page: page})
	})

	calltraceBuf := calltrace.New()
	symTable := symbols.NewTable()

	sched := scheduler.New(cpu, renderer, bp, bus, model.Timings[id].TStatesPerFrame, mgr.Read)

	return &Context{
		ModelID:     id,
		Pool:        pool,
		Memory:      mgr,
		ROM:         romSvc,
		CPU:         cpu,
		Ports:       decoder,
		Symbols:     symTable,
		Keyboard:    keyboard,
		Beeper:      beeper,
		Tape:        tape,
		ULA:         ula,
		AY:          ay,
		Mixer:       mixer,
		Video:       renderer,
		Tracker:     trk,
		Breakpoints: bp,
		CallTrace:   calltraceBuf,
		Bus:         bus,
		Scheduler:   sched,
		Logger:      logger.New(4096),
	}
}

// Init loads the model's ROM set from romPath (a single ROM image file
// whose size is a multiple of 16 KiB, split into pages by pkg/rom) and
// resets the engine to its post-power-on state.
func (c *Context) Init(romPath string) error {
	if err := c.ROM.LoadRomSet(romPath, 0); err != nil {
		return zxerror.Errorf(zxerror.RomLoadFailed, err)
	}
	c.Reset()
	return nil
}

// Release stops the scheduler loop and flushes the logger. The Go garbage
// collector reclaims every other owned resource once the Context itself is
// dropped; there is no separate native handle to free.
func (c *Context) Release() {
	c.Scheduler.Stop()
	c.Logger.Clear()
}

// Reset puts the CPU and port decoder back into their post-RESET state and
// publishes SYSTEM_RESET.
func (c *Context) Reset() {
	c.CPU.Reset()
	c.Ports.Reset()
	c.Bus.Publish(msgbus.SystemReset, nil)
}

// Pause suspends the scheduler loop between instructions.
func (c *Context) Pause() { c.Scheduler.Pause() }

// Resume lifts a Pause.
func (c *Context) Resume() { c.Scheduler.Resume() }

// StartAsync runs the scheduler loop on its own goroutine until Stop is
// called.
func (c *Context) StartAsync() {
	go c.Scheduler.Run(c.handleCommand)
}

// Stop cooperatively ends a StartAsync'd loop.
func (c *Context) Stop() { c.Scheduler.Stop() }

// Step executes exactly one instruction.
func (c *Context) Step() { c.Scheduler.StepInstruction() }

// StepOver executes the current instruction, stepping over rather than
// into a CALL.
func (c *Context) StepOver() { c.Scheduler.StepOver() }

// StepOut runs until the current subroutine returns.
func (c *Context) StepOut() { c.Scheduler.StepOut() }

// LoadTape loads a .tap or .tzx image into the tape player, selecting the
// parser by the raw TZX signature rather than by file extension (the
// caller is expected to have already read the file into memory).
func (c *Context) LoadTape(raw []byte) error {
	if len(raw) >= 8 && string(raw[:7]) == "ZXTape!" {
		return c.Tape.LoadTZX(raw)
	}
	return c.Tape.LoadTAP(raw)
}

// LoadDisk attaches a disk image to the FDC/HDD port shim. Since
// pkg/peripherals' FDC/HDD shims model only the port-facing presence state
// (spec §1's FDC/HDD protocol non-goal), this only records "a disk is
// present" — it does not parse .trd/.scl track layouts.
func (c *Context) LoadDisk(fdc *peripherals.FDCShim) {
	fdc.InsertDisk()
}

// LoadSnapshot loads a .sna or .z80 memory-image snapshot (spec §6),
// restoring CPU registers, RAM page contents and, for a 128K-family model,
// the 0x7FFD paging latch.
func (c *Context) LoadSnapshot(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return zxerror.Errorf(zxerror.SnapshotFormatInvalid, path, 0)
	}
	st, err := snapshot.Load(path, data)
	if err != nil {
		return err
	}
	c.applySnapshot(st)
	return nil
}

// applySnapshot writes a decoded snapshot.State into the CPU and memory
// pool. RAM page numbers in st.RAMPages already match this engine's pool
// numbering (see pkg/snapshot's doc comment), so each page is copied
// straight into the pool rather than through the banked Z80 address space.
func (c *Context) applySnapshot(st *snapshot.State) {
	r := &c.CPU.Reg
	r.AF.SetHi(st.A)
	r.AF.SetLo(st.F)
	r.BC.SetHi(st.B)
	r.BC.SetLo(st.C)
	r.DE.SetHi(st.D)
	r.DE.SetLo(st.E)
	r.HL.SetHi(st.H)
	r.HL.SetLo(st.L)
	r.AFshadow.SetHi(st.A2)
	r.AFshadow.SetLo(st.F2)
	r.BCshadow.SetHi(st.B2)
	r.BCshadow.SetLo(st.C2)
	r.DEshadow.SetHi(st.D2)
	r.DEshadow.SetLo(st.E2)
	r.HLshadow.SetHi(st.H2)
	r.HLshadow.SetLo(st.L2)
	r.IX.Set(st.IX)
	r.IY.Set(st.IY)
	r.SP.Set(st.SP)
	r.PC = st.PC
	r.I = st.I
	r.R = st.R

	c.CPU.IFF1 = st.IFF1
	c.CPU.IFF2 = st.IFF2
	c.CPU.IM = st.IM
	c.CPU.Halted = false

	for page, bytes := range st.RAMPages {
		if page < 0 || page >= len(c.Pool.Pages) || len(bytes) != memory.PageSize {
			continue
		}
		copy(c.Pool.Pages[page].Data[:], bytes)
	}

	const snapshotLoadPC = 0 // pc argument for the synthetic OUTs below; not a real fetch
	c.Ports.DecodeOut(0x00FE, st.Border, snapshotLoadPC)
	if st.Is128 && c.ModelID.Is128Family() {
		c.Ports.DecodeOut(0x7FFD, st.PagingReg, snapshotLoadPC)
	}
	c.Bus.Publish(msgbus.MemoryChanged, msgbus.MemoryChangedEvent{})
}

// SetAudioCallback registers a callback invoked once per frame with the
// mixed beeper+AY PCM for that frame. The engine does not own an audio
// output device (spec §1's audio ring buffer is an external collaborator);
// this merely hands the host the buffer it would feed one.
func (c *Context) SetAudioCallback(cb func(*audio.IntBuffer)) { c.audioCallback = cb }

// GetFramebuffer returns the current ARGB8888 framebuffer, row-major.
func (c *Context) GetFramebuffer() []uint32 { return c.Video.Pixels() }

// GetLogger returns the engine's ring-buffer logger.
func (c *Context) GetLogger() *logger.Logger { return c.Logger }

// GetBreakpointManager returns the breakpoint manager.
func (c *Context) GetBreakpointManager() *breakpoints.Manager { return c.Breakpoints }

// GetContext returns the aggregate itself, mirroring the C-API convention
// of returning an opaque context handle from an accessor of the same name.
func (c *Context) GetContext() *Context { return c }

// IsPaused reports whether the scheduler loop is currently paused.
func (c *Context) IsPaused() bool { return c.Scheduler.IsPaused() }

// handleCommand resolves the scheduler command kinds the scheduler package
// itself doesn't know how to (Reset, LoadTape and LoadSnapshot, each of
// which needs a collaborator only this package holds). A LoadDisk command
// is not handled here and has no effect.
func (c *Context) handleCommand(cmd scheduler.Command) {
	switch cmd.Kind {
	case scheduler.CmdReset:
		c.Reset()
	case scheduler.CmdLoadTape:
		if raw, ok := cmd.Payload.([]byte); ok {
			_ = c.LoadTape(raw)
		}
	case scheduler.CmdLoadSnapshot:
		if path, ok := cmd.Payload.(string); ok {
			_ = c.LoadSnapshot(path)
		}
	}
	if c.audioCallback != nil {
		c.audioCallback(c.Mixer.MixFrame())
	}
}

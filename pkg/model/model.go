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

// Package model defines the platform constants shared across the emulation
// core: the set of supported ZX Spectrum clones, their per-frame timing and
// the tag vocabulary the rest of the engine uses to talk about itself (video
// modes, logger modules).
package model

import (
	"fmt"
	"strings"
)

// ID identifies a member of the ZX Spectrum family this engine can emulate.
type ID int

// The complete set of supported models. Order matters only for display; the
// numeric value is not part of any wire format.
const (
	Spectrum48 ID = iota
	Spectrum128
	SpectrumPlus2A
	SpectrumPlus3
	Pentagon128
	Pentagon512
	Pentagon1024
	Scorpion256
	Profi
	TSConf
)

// String implements fmt.Stringer.
func (m ID) String() string {
	switch m {
	case Spectrum48:
		return "Spectrum48"
	case Spectrum128:
		return "Spectrum128"
	case SpectrumPlus2A:
		return "SpectrumPlus2A"
	case SpectrumPlus3:
		return "SpectrumPlus3"
	case Pentagon128:
		return "Pentagon128"
	case Pentagon512:
		return "Pentagon512"
	case Pentagon1024:
		return "Pentagon1024"
	case Scorpion256:
		return "Scorpion256"
	case Profi:
		return "Profi"
	case TSConf:
		return "TSConf"
	default:
		return fmt.Sprintf("ID(%d)", int(m))
	}
}

// ParseID resolves a model's command-line/config name to its ID, matching
// case-insensitively against String() and a handful of common aliases. ok is
// false for anything unrecognized.
func ParseID(s string) (ID, bool) {
	switch strings.ToLower(s) {
	case "spectrum48", "48", "48k":
		return Spectrum48, true
	case "spectrum128", "128", "128k":
		return Spectrum128, true
	case "spectrumplus2a", "+2a", "plus2a":
		return SpectrumPlus2A, true
	case "spectrumplus3", "+3", "plus3":
		return SpectrumPlus3, true
	case "pentagon128":
		return Pentagon128, true
	case "pentagon512":
		return Pentagon512, true
	case "pentagon1024":
		return Pentagon1024, true
	case "scorpion256", "scorpion", "zs-256", "zs256":
		return Scorpion256, true
	case "profi":
		return Profi, true
	case "tsconf":
		return TSConf, true
	default:
		return 0, false
	}
}

// RAMPages is the number of 16 KiB RAM pages the page pool must reserve for
// this model (spec §3 names the family of sizes as N ∈ {2, 8, 32, 64, 256};
// the unbanked 48K machine is the one outlier, with 3 pages of plain RAM).
func (m ID) RAMPages() int {
	switch m {
	case Spectrum48:
		return 3
	case Spectrum128, SpectrumPlus2A, SpectrumPlus3, Pentagon128, Profi:
		return 8
	case Pentagon512:
		return 32
	case Pentagon1024, Scorpion256:
		return 64
	case TSConf:
		return 256
	default:
		return 8
	}
}

// HasAYChip reports whether the 0xBFFD/0xFFFD AY ports are wired for this
// model (all 128K-family clones, per spec §4.4's table).
func (m ID) HasAYChip() bool {
	switch m {
	case Spectrum48:
		return false
	default:
		return true
	}
}

// Is128Family reports whether the model routes paging through 0x7FFD the way
// the spec's table describes for "128K, Pentagon, Profi".
func (m ID) Is128Family() bool {
	switch m {
	case Spectrum128, SpectrumPlus2A, SpectrumPlus3, Pentagon128, Pentagon512, Pentagon1024, Profi:
		return true
	default:
		return false
	}
}

// VideoMode identifies which raster geometry a model's renderer must build
// its render-type table from (spec §8.3).
type VideoMode int

const (
	VideoMode48K VideoMode = iota
	VideoMode128K
	VideoModePentagon
)

// String implements fmt.Stringer.
func (v VideoMode) String() string {
	switch v {
	case VideoMode48K:
		return "48K"
	case VideoMode128K:
		return "128K"
	case VideoModePentagon:
		return "Pentagon"
	default:
		return fmt.Sprintf("VideoMode(%d)", int(v))
	}
}

// VideoModeFor maps a model ID to the raster geometry its ULA/clone uses.
func VideoModeFor(m ID) VideoMode {
	switch m {
	case Spectrum48:
		return VideoMode48K
	case Pentagon128, Pentagon512, Pentagon1024, Scorpion256:
		return VideoModePentagon
	default:
		return VideoMode128K
	}
}

// Module tags the logger uses to group messages by engine component.
type Module string

// The fixed set of logger module tags.
const (
	ModuleMemory      Module = "memory"
	ModuleROM         Module = "rom"
	ModuleZ80         Module = "z80"
	ModuleVideo       Module = "video"
	ModulePorts       Module = "ports"
	ModulePeripherals Module = "peripherals"
	ModuleTracker     Module = "tracker"
	ModuleCallTrace   Module = "calltrace"
	ModuleDisasm      Module = "disasm"
	ModuleLabels      Module = "labels"
	ModuleBreakpoints Module = "breakpoints"
	ModuleScheduler   Module = "scheduler"
	ModuleMsgBus      Module = "msgbus"
	ModuleEmulator    Module = "emulator"
)

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

package peripherals

import "github.com/alfishe/unreal-ng-sub004/pkg/ports"

// FDCShim is the Beta-128/TR-DOS floppy controller's port-facing surface
// only: status/track/sector/data register reads and writes, disk
// insert/eject bookkeeping. The WD1793 protocol state machine (seek
// timing, CRC, index pulses) is deliberately not modelled — only the
// behaviour other code can observe through the ports is.
type FDCShim struct {
	diskInserted bool
	track        uint8
	sector       uint8
	data         uint8
	status       uint8
}

// NewFDCShim returns a controller with no disk inserted.
func NewFDCShim() *FDCShim { return &FDCShim{status: 0x00} }

// InsertDisk marks a disk image as present; track/sector state is left
// where it was, mirroring how a real drive doesn't re-home on insert.
func (f *FDCShim) InsertDisk() { f.diskInserted = true }

// EjectDisk clears the present flag; register contents are preserved.
func (f *FDCShim) EjectDisk() { f.diskInserted = false }

// DiskInserted reports whether a disk is currently present.
func (f *FDCShim) DiskInserted() bool { return f.diskInserted }

// FDC register offsets, relative to the controller's base port.
const (
	FDCStatus = 0
	FDCTrack  = 1
	FDCSector = 2
	FDCData   = 3
)

// In implements ports.Peripheral. port's low two bits select the register;
// everything else reads back the controller's idle status.
func (f *FDCShim) In(port uint16, pc uint16) uint8 {
	switch port & 0x03 {
	case FDCTrack:
		return f.track
	case FDCSector:
		return f.sector
	case FDCData:
		return f.data
	default:
		if !f.diskInserted {
			return 0xFF // no disk: status reads as not-ready
		}
		return f.status
	}
}

// Out implements ports.Peripheral.
func (f *FDCShim) Out(port uint16, value uint8, pc uint16) {
	switch port & 0x03 {
	case FDCTrack:
		f.track = value
	case FDCSector:
		f.sector = value
	case FDCData:
		f.data = value
	default:
		f.status = value
	}
}

var _ ports.Peripheral = (*FDCShim)(nil)

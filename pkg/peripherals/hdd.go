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

// HDDShim is the IDE/HDD register window some clones (notably Scorpion and
// TSConf expansions) expose: the standard eight task-file registers, with
// no actual ATA command state machine behind them. As with FDCShim, only
// the port-facing surface is modelled.
type HDDShim struct {
	present bool
	regs    [8]uint8
}

// NewHDDShim returns a controller with no drive attached.
func NewHDDShim() *HDDShim { return &HDDShim{} }

// AttachDrive marks a drive as present on the task-file bus.
func (h *HDDShim) AttachDrive() { h.present = true }

// DetachDrive clears the present flag.
func (h *HDDShim) DetachDrive() { h.present = false }

// Present reports whether a drive is attached.
func (h *HDDShim) Present() bool { return h.present }

// In implements ports.Peripheral: the low three bits of port select one of
// the eight IDE task-file registers.
func (h *HDDShim) In(port uint16, pc uint16) uint8 {
	if !h.present {
		return 0xFF
	}
	return h.regs[port&0x07]
}

// Out implements ports.Peripheral.
func (h *HDDShim) Out(port uint16, value uint8, pc uint16) {
	if !h.present {
		return
	}
	h.regs[port&0x07] = value
}

var _ ports.Peripheral = (*HDDShim)(nil)

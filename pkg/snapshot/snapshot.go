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

// Package snapshot decodes the memory-image snapshot formats spec §6 lists
// as consumed external interfaces: .sna and .z80 (v1/v2/v3). Parsing is kept
// separate from applying a snapshot to a running engine (that is
// pkg/emulator's job, since it alone holds the CPU, memory manager and port
// decoder together) so this package has no dependency beyond zxerror.
package snapshot

import (
	"path/filepath"
	"strings"

	"github.com/alfishe/unreal-ng-sub004/pkg/zxerror"
)

// State is the decoded content of a snapshot file: CPU register file, paging
// latch and the RAM page contents it specifies.
type State struct {
	A, F   byte
	B, C   byte
	D, E   byte
	H, L   byte
	A2, F2 byte
	B2, C2 byte
	D2, E2 byte
	H2, L2 byte
	IX, IY uint16
	SP, PC uint16
	I, R   byte
	IFF1   bool
	IFF2   bool
	IM     int
	Border byte

	// Is128 reports whether PagingReg is meaningful; 48K snapshots have no
	// paging latch.
	Is128     bool
	PagingReg byte

	// RAMPages maps a hardware RAM page number to its 16 KiB content. For a
	// 48K snapshot the keys are 0, 1, 2 (the pool's own fixed numbering, see
	// pkg/ports' Spectrum48Decoder.Reset); for a 128K snapshot the keys are
	// the real 0..7 hardware page numbers.
	RAMPages map[int][]byte
}

// Load decodes data, choosing the format by path's file extension; it does
// not read the file itself.
func Load(path string, data []byte) (*State, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sna":
		return LoadSNA(data)
	case ".z80":
		return LoadZ80(data)
	default:
		return nil, zxerror.Errorf(zxerror.SnapshotFormatInvalid, path, 0)
	}
}

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

package snapshot

import "github.com/alfishe/unreal-ng-sub004/pkg/zxerror"

const (
	snaHeaderSize = 27
	snaPageSize   = 16384
	sna48Size     = snaHeaderSize + 3*snaPageSize
)

// LoadSNA decodes a 48K or 128K .sna image. The 48K layout is a 27-byte
// register header followed by a flat 48 KiB RAM dump (pages 5, 2 and
// whichever page was banked into 0xC000 at save time, in that address
// order); PC is not stored in the header, it is popped off the saved stack
// instead. The 128K extension appends PC, the 0x7FFD value and a TR-DOS-ROM
// flag, then the five RAM pages not already covered by the 48 KiB dump.
func LoadSNA(data []byte) (*State, error) {
	if len(data) < sna48Size {
		return nil, zxerror.Errorf(zxerror.SnapshotFormatInvalid, "sna", len(data))
	}

	s := &State{RAMPages: make(map[int][]byte)}
	s.I = data[0]
	s.H2, s.L2 = data[2], data[1]
	s.D2, s.E2 = data[4], data[3]
	s.B2, s.C2 = data[6], data[5]
	s.A2, s.F2 = data[8], data[7]
	s.H, s.L = data[10], data[9]
	s.D, s.E = data[12], data[11]
	s.B, s.C = data[14], data[13]
	s.IY = uint16(data[16])<<8 | uint16(data[15])
	s.IX = uint16(data[18])<<8 | uint16(data[17])
	s.IFF2 = data[19]&0x04 != 0
	s.IFF1 = s.IFF2
	s.R = data[20]
	s.A, s.F = data[22], data[21]
	s.SP = uint16(data[24])<<8 | uint16(data[23])
	s.IM = int(data[25])
	s.Border = data[26] & 0x07

	pageData := data[snaHeaderSize : snaHeaderSize+3*snaPageSize]
	block4000 := pageData[0:snaPageSize]
	block8000 := pageData[snaPageSize : 2*snaPageSize]
	blockC000 := pageData[2*snaPageSize : 3*snaPageSize]

	if len(data) == sna48Size {
		// 48K: the dump is exactly the three fixed banks in address order;
		// pkg/ports' Spectrum48Decoder.Reset calls them RAM pages 0/1/2.
		s.RAMPages[0] = append([]byte(nil), block4000...)
		s.RAMPages[1] = append([]byte(nil), block8000...)
		s.RAMPages[2] = append([]byte(nil), blockC000...)
		s.Is128 = false
		s.PC = read48KWord(block4000, block8000, blockC000, s.SP)
		s.SP += 2 // the stored SP points at the PC this pops
		return s, nil
	}

	// 128K: the same three blocks are banks 1/2/3 at save time (RAM pages 5,
	// 2 and whichever page 0x7FFD had banked into 0xC000).
	s.RAMPages[5] = append([]byte(nil), block4000...)
	s.RAMPages[2] = append([]byte(nil), block8000...)
	bankedPage := blockC000

	const sna128ExtraHeader = 4
	if len(data) < sna48Size+sna128ExtraHeader {
		return nil, zxerror.Errorf(zxerror.SnapshotFormatInvalid, "sna", len(data))
	}
	extra := data[sna48Size : sna48Size+sna128ExtraHeader]
	s.PC = uint16(extra[1])<<8 | uint16(extra[0])
	s.PagingReg = extra[2]
	s.Is128 = true

	bankedPageNum := int(s.PagingReg & 0x07)
	s.RAMPages[bankedPageNum] = append([]byte(nil), bankedPage...)

	off := sna48Size + sna128ExtraHeader
	for _, page := range []int{0, 1, 3, 4, 6, 7} {
		if page == bankedPageNum {
			continue
		}
		if off+snaPageSize > len(data) {
			return nil, zxerror.Errorf(zxerror.SnapshotFormatInvalid, "sna", off)
		}
		s.RAMPages[page] = append([]byte(nil), data[off:off+snaPageSize]...)
		off += snaPageSize
	}
	return s, nil
}

// read48KWord reads the little-endian word at addr across the three fixed
// 48K banks, used to pop the PC a 48K .sna stores on top of the saved
// stack rather than in its header.
func read48KWord(block4000, block8000, blockC000 []byte, addr uint16) uint16 {
	read := func(a uint16) byte {
		switch {
		case a < 0x4000:
			return 0
		case a < 0x8000:
			return block4000[a-0x4000]
		case a < 0xC000:
			return block8000[a-0x8000]
		default:
			return blockC000[a-0xC000]
		}
	}
	lo := read(addr)
	hi := read(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

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

const z80V1HeaderSize = 30

// LoadZ80 decodes a .z80 snapshot (v1, v2 or v3). PC==0 in the 30-byte v1
// header signals an extended header follows (a 2-byte length, then the v2/
// v3 fields); otherwise the file is a v1 image whose single memory block
// covers all 48 KiB, optionally RLE-compressed per bit 5 of header byte 12.
func LoadZ80(data []byte) (*State, error) {
	if len(data) < z80V1HeaderSize {
		return nil, zxerror.Errorf(zxerror.SnapshotFormatInvalid, "z80", len(data))
	}

	s := &State{RAMPages: make(map[int][]byte)}
	s.A, s.F = data[0], data[1]
	s.C, s.B = data[2], data[3]
	s.L, s.H = data[4], data[5]
	pc := uint16(data[7])<<8 | uint16(data[6])
	s.SP = uint16(data[9])<<8 | uint16(data[8])
	s.I = data[10]
	r7 := data[11]
	flags12 := data[12]
	if flags12 == 0xFF {
		flags12 = 1 // the historical "all 0xFF = uncompressed 48K" escape
	}
	s.R = r7&0x7F | (flags12&0x01)<<7
	s.Border = (flags12 >> 1) & 0x07
	compressedV1 := flags12&0x20 != 0

	s.E, s.D = data[13], data[14]
	s.C2, s.B2 = data[15], data[16]
	s.E2, s.D2 = data[17], data[18]
	s.L2, s.H2 = data[19], data[20]
	s.A2, s.F2 = data[21], data[22]
	s.IY = uint16(data[24])<<8 | uint16(data[23])
	s.IX = uint16(data[26])<<8 | uint16(data[25])
	s.IFF1 = data[27] != 0
	s.IFF2 = data[28] != 0
	s.IM = int(data[29] & 0x03)

	if pc != 0 {
		s.PC = pc
		s.Is128 = false
		return decodeZ80V1Memory(data[z80V1HeaderSize:], compressedV1, s)
	}

	if len(data) < z80V1HeaderSize+2 {
		return nil, zxerror.Errorf(zxerror.SnapshotFormatInvalid, "z80", len(data))
	}
	extLen := int(data[30]) | int(data[31])<<8
	extOff := z80V1HeaderSize + 2
	if extOff+extLen > len(data) {
		return nil, zxerror.Errorf(zxerror.SnapshotFormatInvalid, "z80", extOff)
	}
	ext := data[extOff : extOff+extLen]
	if len(ext) < 4 {
		return nil, zxerror.Errorf(zxerror.SnapshotFormatInvalid, "z80", extOff)
	}
	s.PC = uint16(ext[1])<<8 | uint16(ext[0])
	hardwareMode := ext[2]
	s.PagingReg = ext[3]
	s.Is128 = isZ80HardwareMode128(hardwareMode)

	return decodeZ80BlockedMemory(data[extOff+extLen:], s)
}

// isZ80HardwareMode128 classifies the .z80 hardware-mode byte; values 3 and
// above are some 128K-or-later variant (128K, +2, +2A, +3, Pentagon,
// Scorpion aliases all reuse the same page-block numbering as plain 128K
// for this loader's purposes, per spec §9's "approximate by value, preserve
// behaviour" stance already applied to the port decoders).
func isZ80HardwareMode128(mode byte) bool {
	return mode >= 3
}

// decodeZ80V1Memory unpacks the single v1 block covering 0x4000-0xFFFF (the
// full 48 KiB, in address order) into the three fixed RAM pages.
func decodeZ80V1Memory(payload []byte, compressed bool, s *State) (*State, error) {
	var flat []byte
	if compressed {
		flat = unRLE(payload, 3*snaPageSize)
	} else {
		flat = payload
	}
	if len(flat) < 3*snaPageSize {
		return nil, zxerror.Errorf(zxerror.SnapshotFormatInvalid, "z80", len(flat))
	}
	s.RAMPages[0] = append([]byte(nil), flat[0:snaPageSize]...)
	s.RAMPages[1] = append([]byte(nil), flat[snaPageSize:2*snaPageSize]...)
	s.RAMPages[2] = append([]byte(nil), flat[2*snaPageSize:3*snaPageSize]...)
	return s, nil
}

// decodeZ80BlockedMemory unpacks the v2/v3 page-tagged block list: each
// block is a 2-byte length (0xFFFF meaning "16 KiB uncompressed"), a 1-byte
// page number, then that many bytes of RLE-compressed (or raw) data.
func decodeZ80BlockedMemory(payload []byte, s *State) (*State, error) {
	off := 0
	for off+3 <= len(payload) {
		length := int(payload[off]) | int(payload[off+1])<<8
		page := payload[off+2]
		off += 3
		var raw []byte
		if length == 0xFFFF {
			if off+snaPageSize > len(payload) {
				return nil, zxerror.Errorf(zxerror.SnapshotFormatInvalid, "z80", off)
			}
			raw = payload[off : off+snaPageSize]
			off += snaPageSize
		} else {
			if off+length > len(payload) {
				return nil, zxerror.Errorf(zxerror.SnapshotFormatInvalid, "z80", off)
			}
			raw = unRLE(payload[off:off+length], snaPageSize)
			off += length
		}
		ramPage, ok := z80PageToRAMPage(page, s.Is128)
		if !ok {
			continue // ROM or interface-card page this loader doesn't model
		}
		s.RAMPages[ramPage] = append([]byte(nil), raw...)
	}
	return s, nil
}

// z80PageToRAMPage maps a .z80 page-block number to this engine's RAM page
// numbering, per the format's well-known table.
func z80PageToRAMPage(page byte, is128 bool) (int, bool) {
	if is128 {
		if page < 3 || page > 10 {
			return 0, false
		}
		return int(page) - 3, true
	}
	switch page {
	case 4:
		return 1, true // 0x8000-0xBFFF
	case 5:
		return 2, true // 0xC000-0xFFFF
	case 8:
		return 0, true // 0x4000-0x7FFF
	default:
		return 0, false
	}
}

// unRLE expands the .z80 RLE scheme: 0xED 0xED <count> <byte> repeats byte
// count times; any other byte is copied verbatim. Decoding stops once want
// bytes have been produced (a compressed block's trailing 0x00 0xED 0xED
// 0x00 end marker, present in older files, is simply never reached).
func unRLE(in []byte, want int) []byte {
	out := make([]byte, 0, want)
	for i := 0; i < len(in) && len(out) < want; {
		if i+3 < len(in) && in[i] == 0xED && in[i+1] == 0xED {
			count := int(in[i+2])
			b := in[i+3]
			for j := 0; j < count && len(out) < want; j++ {
				out = append(out, b)
			}
			i += 4
			continue
		}
		out = append(out, in[i])
		i++
	}
	return out
}

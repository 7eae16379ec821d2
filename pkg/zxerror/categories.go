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

package zxerror

// The error-kind message templates from spec §7. Loaders and services build
// curated errors from these heads so callers can Is()/Has() match on kind
// without string-matching a fully formatted message.
const (
	RomLoadFailed         = "rom: load failed (%s)"
	RomSizeInvalid        = "rom: size is not a multiple of 16 KiB"
	UnknownModel          = "model: unknown model id (%v)"
	SnapshotFormatInvalid = "snapshot: invalid format (%s, offset %d)"
	DiskImageInvalid      = "disk: invalid image"
	LabelNameEmpty        = "label: name is empty"
	LabelDuplicate        = "label: duplicate name (%s)"
	BreakpointUnknownId   = "breakpoint: unknown id (%d)"
	HexParseError         = "parse: invalid hex value (%s)"
	InvalidRamPage        = "memory: invalid RAM page (%d)"
	InvalidRomPage        = "memory: invalid ROM page (%d)"
	TapeFormatInvalid     = "tape: invalid format (%s, offset %d)"
	FeatureNotImplemented = "engine: %s is not implemented yet"
	CommandUnknown        = "command: unknown (%s)"
	CommandBadArgument    = "command: bad argument (%s)"
)

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

package rom

// titles maps a ROM page's SHA-256 signature to a friendly display name.
// The table ships empty, since the actual Spectrum/Pentagon/Scorpion ROM
// images are copyrighted binaries this module does not redistribute;
// entries are added only through RegisterTitle. No checksum-manifest loader
// is provided.
var titles = map[[32]byte]string{}

// RegisterTitle adds (or overwrites) the friendly name for a signature.
func RegisterTitle(signature [32]byte, name string) {
	titles[signature] = name
}

// RomTitleByHostPtr returns the title for the signature signatureOf
// supplies, or "" when signatureOf is nil. It takes a lookup function
// rather than a *Service, so a caller holding only a *memory.Manager can
// supply the signature; RomTitle(service.SignatureOf(n)) is the direct form.
func RomTitleByHostPtr(signatureOf func() [32]byte) string {
	if signatureOf == nil {
		return ""
	}
	return RomTitle(signatureOf())
}

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

package ports

import (
	"github.com/alfishe/unreal-ng-sub004/pkg/memory"
	"github.com/alfishe/unreal-ng-sub004/pkg/model"
	"github.com/alfishe/unreal-ng-sub004/pkg/zxerror"
)

// New constructs the concrete Decoder for id, bound to mgr for bank paging.
// This is the one place a model.ID selects a decoder type; every other
// caller holds only the Decoder interface (spec §9's "no RTTI").
func New(id model.ID, mgr *memory.Manager) (Decoder, error) {
	switch id {
	case model.Spectrum48:
		return NewSpectrum48Decoder(mgr), nil
	case model.Spectrum128, model.Pentagon128:
		return NewSpectrum128Decoder(mgr), nil
	case model.Pentagon512, model.Pentagon1024:
		return NewPentagon512Decoder(mgr), nil
	case model.SpectrumPlus2A, model.SpectrumPlus3:
		return NewPlus3Decoder(mgr), nil
	case model.Scorpion256:
		return NewScorpionDecoder(mgr), nil
	case model.Profi:
		return NewProfiDecoder(mgr), nil
	case model.TSConf:
		return NewTSConfDecoder(mgr), nil
	default:
		return nil, zxerror.Errorf(zxerror.UnknownModel, int(id))
	}
}

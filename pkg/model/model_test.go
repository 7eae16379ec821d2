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

package model_test

import (
	"testing"

	"github.com/alfishe/unreal-ng-sub004/pkg/model"
)

func TestParseIDAcceptsCanonicalAndAliasNames(t *testing.T) {
	cases := map[string]model.ID{
		"Spectrum128": model.Spectrum128,
		"128k":        model.Spectrum128,
		"48":          model.Spectrum48,
		"+3":          model.SpectrumPlus3,
		"scorpion":    model.Scorpion256,
		"TSConf":      model.TSConf,
	}
	for name, want := range cases {
		got, ok := model.ParseID(name)
		if !ok {
			t.Fatalf("ParseID(%q) reported not found", name)
		}
		if got != want {
			t.Fatalf("ParseID(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestParseIDRejectsUnknownName(t *testing.T) {
	if _, ok := model.ParseID("commodore64"); ok {
		t.Fatalf("expected ParseID to reject an unknown model name")
	}
}

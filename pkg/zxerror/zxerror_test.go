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

package zxerror_test

import (
	"testing"

	"github.com/alfishe/unreal-ng-sub004/pkg/zxerror"
)

func TestErrorf(t *testing.T) {
	err := zxerror.Errorf(zxerror.RomLoadFailed, "48.rom")
	want := "rom: load failed (48.rom)"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestIsAndHas(t *testing.T) {
	inner := zxerror.Errorf(zxerror.RomSizeInvalid)
	outer := zxerror.Errorf("%v", inner)

	if !zxerror.IsAny(outer) {
		t.Fatal("expected outer to be curated")
	}
	if !zxerror.Has(outer, zxerror.RomSizeInvalid) {
		t.Fatal("expected Has to find nested head")
	}
	if zxerror.Is(outer, zxerror.RomSizeInvalid) {
		t.Fatal("Is should not match a nested head, only the immediate one")
	}
}

func TestHeadOnPlainError(t *testing.T) {
	plain := errPlain("boom")
	if zxerror.Head(plain) != "boom" {
		t.Errorf("got %q, want %q", zxerror.Head(plain), "boom")
	}
	if zxerror.IsAny(plain) {
		t.Error("plain error should not be IsAny")
	}
}

type errPlain string

func (e errPlain) Error() string { return string(e) }

func TestDeduplicatesNestedHead(t *testing.T) {
	inner := zxerror.Errorf(zxerror.LabelDuplicate, "RD_SEC")
	outer := zxerror.Errorf("label: %v", inner)
	// outer formats as "label: label: duplicate name (RD_SEC)"; the two
	// leading "label" segments collapse into one.
	if got, want := outer.Error(), "label: duplicate name (RD_SEC)"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

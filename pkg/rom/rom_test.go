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

package rom_test

import (
	"bytes"
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"

	"github.com/alfishe/unreal-ng-sub004/pkg/memory"
	"github.com/alfishe/unreal-ng-sub004/pkg/rom"
)

func writeFixture(t *testing.T, dir string, size int, fill byte) string {
	t.Helper()
	data := bytes.Repeat([]byte{fill}, size)
	path := filepath.Join(dir, "fixture.rom")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRomSetSplitsPages(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, memory.PageSize*2, 0xAA)

	pool := memory.NewPool(8, 4)
	svc := rom.NewService(pool)
	if err := svc.LoadRomSet(path, 0); err != nil {
		t.Fatal(err)
	}

	sig := svc.SignatureOf(0)
	want := sha256.Sum256(bytes.Repeat([]byte{0xAA}, memory.PageSize))
	if sig != want {
		t.Error("signature mismatch for first ROM page")
	}
	if svc.SignatureOf(1) != want {
		t.Error("signature mismatch for second ROM page")
	}
}

func TestLoadRomSetRejectsBadSize(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, memory.PageSize+1, 0x00)

	pool := memory.NewPool(8, 2)
	svc := rom.NewService(pool)
	if err := svc.LoadRomSet(path, 0); err == nil {
		t.Fatal("expected RomSizeInvalid error")
	}
}

func TestLoadRomSetMissingFile(t *testing.T) {
	pool := memory.NewPool(8, 2)
	svc := rom.NewService(pool)
	if err := svc.LoadRomSet(filepath.Join(t.TempDir(), "missing.rom"), 0); err == nil {
		t.Fatal("expected RomLoadFailed error")
	}
}

func TestRomTitleLookup(t *testing.T) {
	var sig [32]byte
	sig[0] = 0x42
	rom.RegisterTitle(sig, "Spectrum 48K ROM")
	if got := rom.RomTitle(sig); got != "Spectrum 48K ROM" {
		t.Errorf("got %q", got)
	}

	var unknown [32]byte
	unknown[0] = 0x99
	if got := rom.RomTitle(unknown); got != "" {
		t.Errorf("expected empty title for unknown signature, got %q", got)
	}
}

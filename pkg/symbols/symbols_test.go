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

package symbols_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alfishe/unreal-ng-sub004/pkg/symbols"
)

func TestAddGetRemoveCRUD(t *testing.T) {
	tbl := symbols.NewTable()

	ok := tbl.Add(symbols.Label{Name: "RD_SEC", Z80Address: 0xA250, Physical: 0x1A250, Kind: symbols.KindCode})
	if !ok {
		t.Fatalf("Add returned false")
	}

	byName, ok := tbl.ByName("RD_SEC")
	if !ok || byName.Z80Address != 0xA250 {
		t.Fatalf("ByName mismatch: %+v", byName)
	}
	byZ80, ok := tbl.ByZ80Address(0xA250)
	if !ok || byZ80.Name != "RD_SEC" {
		t.Fatalf("ByZ80Address mismatch: %+v", byZ80)
	}
	byPhys, ok := tbl.ByPhysicalAddress(0x1A250)
	if !ok || byPhys.Name != "RD_SEC" {
		t.Fatalf("ByPhysicalAddress mismatch: %+v", byPhys)
	}

	if !tbl.Remove("RD_SEC") {
		t.Fatalf("Remove returned false")
	}
	if _, ok := tbl.ByName("RD_SEC"); ok {
		t.Fatalf("ByName should fail after remove")
	}
	if _, ok := tbl.ByZ80Address(0xA250); ok {
		t.Fatalf("ByZ80Address should fail after remove")
	}
	if _, ok := tbl.ByPhysicalAddress(0x1A250); ok {
		t.Fatalf("ByPhysicalAddress should fail after remove")
	}
}

func TestAddRejectsEmptyNameAndDuplicates(t *testing.T) {
	tbl := symbols.NewTable()
	if tbl.Add(symbols.Label{Name: "", Z80Address: 1}) {
		t.Fatalf("Add should reject an empty name")
	}
	if !tbl.Add(symbols.Label{Name: "X", Z80Address: 1}) {
		t.Fatalf("first Add of X should succeed")
	}
	if tbl.Add(symbols.Label{Name: "X", Z80Address: 2}) {
		t.Fatalf("duplicate Add of X should fail")
	}
}

func TestLoadMAPSaveSYMReload(t *testing.T) {
	dir := t.TempDir()
	mapPath := filepath.Join(dir, "game.map")
	if err := os.WriteFile(mapPath, []byte("A250 RD_SEC\nA260 WR_SEC (CODE)\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	tbl := symbols.NewTable()
	if err := tbl.Load(mapPath); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Len = %d, want 2", tbl.Len())
	}

	symPath := filepath.Join(dir, "game.sym")
	if err := tbl.Save(symPath, symbols.FormatSYM, time.Unix(0, 0)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded := symbols.NewTable()
	if err := reloaded.Load(symPath); err != nil {
		t.Fatalf("reload: %v", err)
	}

	l, ok := reloaded.ByName("RD_SEC")
	if !ok {
		t.Fatalf("RD_SEC not found after reload")
	}
	if l.Z80Address != 0xA250 {
		t.Fatalf("RD_SEC address = %#x, want 0xA250", l.Z80Address)
	}
}

func TestLoadSkipsMalformedLinesAndAllowsEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mixed.map")
	content := "; a header comment\nNOTANADDR BOGUS\nC000 START\n\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	tbl := symbols.NewTable()
	if err := tbl.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Len() != 1 {
		t.Fatalf("Len = %d, want 1 (malformed line should be skipped)", tbl.Len())
	}

	empty := filepath.Join(dir, "empty.map")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatalf("write empty fixture: %v", err)
	}
	emptyTbl := symbols.NewTable()
	if err := emptyTbl.Load(empty); err != nil {
		t.Fatalf("Load empty file should succeed, got %v", err)
	}
	if emptyTbl.Len() != 0 {
		t.Fatalf("empty file should yield zero labels, got %d", emptyTbl.Len())
	}
}

func TestVICEAndSJASMAndZ88DKFormats(t *testing.T) {
	dir := t.TempDir()

	vicePath := filepath.Join(dir, "game.vice")
	if err := os.WriteFile(vicePath, []byte("al C:C000 START (CODE)\n"), 0o644); err != nil {
		t.Fatalf("write vice fixture: %v", err)
	}
	viceTbl := symbols.NewTable()
	if err := viceTbl.Load(vicePath); err != nil {
		t.Fatalf("Load VICE: %v", err)
	}
	if l, ok := viceTbl.ByName("START"); !ok || l.Z80Address != 0xC000 {
		t.Fatalf("VICE label mismatch: %+v, ok=%v", l, ok)
	}

	sjasmPath := filepath.Join(dir, "game.sjasm")
	if err := os.WriteFile(sjasmPath, []byte("START EQU $C000\n"), 0o644); err != nil {
		t.Fatalf("write sjasm fixture: %v", err)
	}
	sjasmTbl := symbols.NewTable()
	if err := sjasmTbl.Load(sjasmPath); err != nil {
		t.Fatalf("Load SJASM: %v", err)
	}
	if l, ok := sjasmTbl.ByName("START"); !ok || l.Z80Address != 0xC000 {
		t.Fatalf("SJASM label mismatch: %+v, ok=%v", l, ok)
	}

	z88Path := filepath.Join(dir, "game.z88dk")
	if err := os.WriteFile(z88Path, []byte("DEFC START = $C000\n"), 0o644); err != nil {
		t.Fatalf("write z88dk fixture: %v", err)
	}
	z88Tbl := symbols.NewTable()
	if err := z88Tbl.Load(z88Path); err != nil {
		t.Fatalf("Load Z88DK: %v", err)
	}
	if l, ok := z88Tbl.ByName("START"); !ok || l.Z80Address != 0xC000 {
		t.Fatalf("Z88DK label mismatch: %+v, ok=%v", l, ok)
	}
}

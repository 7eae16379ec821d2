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

package breakpoints_test

import (
	"testing"

	"github.com/alfishe/unreal-ng-sub004/pkg/breakpoints"
)

func TestAddCheckRemove(t *testing.T) {
	m := breakpoints.NewManager()
	id := m.Add(breakpoints.KindMemoryExec, 0x05ED)

	if !m.CheckExecute(0x05ED) {
		t.Fatalf("expected hit at 0x05ED")
	}
	if m.CheckExecute(0x0600) {
		t.Fatalf("unexpected hit at an unarmed address")
	}

	bp, ok := m.Get(id)
	if !ok || bp.HitCount != 1 {
		t.Fatalf("HitCount = %+v, want 1", bp)
	}

	if !m.Remove(id) {
		t.Fatalf("Remove returned false")
	}
	if m.CheckExecute(0x05ED) {
		t.Fatalf("should not hit after removal")
	}
	if m.Remove(id) {
		t.Fatalf("second Remove of same id should fail")
	}
}

func TestInactiveBreakpointDoesNotHit(t *testing.T) {
	m := breakpoints.NewManager()
	id := m.Add(breakpoints.KindMemoryWrite, 0x4000)
	m.SetActive(id, false)

	if m.CheckWrite(0x4000) {
		t.Fatalf("inactive breakpoint should not hit")
	}
}

func TestHitHandlerInvoked(t *testing.T) {
	m := breakpoints.NewManager()
	var seen breakpoints.Breakpoint
	m.SetHitHandler(func(bp breakpoints.Breakpoint) { seen = bp })

	m.Add(breakpoints.KindPortIn, 0xFEFE)
	m.CheckPortIn(0xFEFE)

	if seen.Address != 0xFEFE || seen.Kind != breakpoints.KindPortIn {
		t.Fatalf("hit handler did not receive the expected breakpoint: %+v", seen)
	}
}

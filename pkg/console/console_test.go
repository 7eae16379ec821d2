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

package console_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alfishe/unreal-ng-sub004/pkg/console"
	"github.com/alfishe/unreal-ng-sub004/pkg/emulator"
	"github.com/alfishe/unreal-ng-sub004/pkg/model"
)

func newConsole(t *testing.T) (*console.Console, *bytes.Buffer) {
	t.Helper()
	ctx := emulator.New(model.Spectrum48)
	var buf bytes.Buffer
	return console.New(ctx, &buf), &buf
}

func TestDispatchUnknownCommandErrors(t *testing.T) {
	c, _ := newConsole(t)
	if err := c.Dispatch("frobnicate"); err == nil {
		t.Fatalf("expected an error for an unknown command")
	}
}

func TestDispatchBlankLineIsNoOp(t *testing.T) {
	c, _ := newConsole(t)
	if err := c.Dispatch("   "); err != nil {
		t.Fatalf("Dispatch(blank) = %v, want nil", err)
	}
	if len(c.History()) != 0 {
		t.Fatalf("expected blank lines to not be recorded in history")
	}
}

func TestDispatchQuitReturnsSentinel(t *testing.T) {
	c, _ := newConsole(t)
	if err := c.Dispatch("quit"); err != console.ErrQuit {
		t.Fatalf("Dispatch(quit) = %v, want console.ErrQuit", err)
	}
}

func TestPokeThenPeekRoundTrips(t *testing.T) {
	c, buf := newConsole(t)
	if err := c.Dispatch("reset"); err != nil {
		t.Fatalf("reset = %v", err)
	}
	if err := c.Dispatch("poke 0x8000 0x42"); err != nil {
		t.Fatalf("poke = %v", err)
	}
	buf.Reset()
	if err := c.Dispatch("peek 0x8000"); err != nil {
		t.Fatalf("peek = %v", err)
	}
	if !strings.Contains(buf.String(), "42") {
		t.Fatalf("peek output = %q, want it to contain 42", buf.String())
	}
}

func TestBreakAndClearBreak(t *testing.T) {
	c, buf := newConsole(t)
	if err := c.Dispatch("break x 0x8000"); err != nil {
		t.Fatalf("break = %v", err)
	}
	buf.Reset()
	if err := c.Dispatch("breaks"); err != nil {
		t.Fatalf("breaks = %v", err)
	}
	if !strings.Contains(buf.String(), "1: x 8000") {
		t.Fatalf("breaks output = %q", buf.String())
	}

	if err := c.Dispatch("clearbreak 1"); err != nil {
		t.Fatalf("clearbreak = %v", err)
	}
	if err := c.Dispatch("clearbreak 1"); err == nil {
		t.Fatalf("expected an error clearing an already-removed breakpoint")
	}
}

func TestLabelAddListAndDuplicateRejected(t *testing.T) {
	c, buf := newConsole(t)
	if err := c.Dispatch("label MAIN 0x8000 CODE entry point"); err != nil {
		t.Fatalf("label = %v", err)
	}
	if err := c.Dispatch("label MAIN 0x9000"); err == nil {
		t.Fatalf("expected a duplicate-name error")
	}

	buf.Reset()
	if err := c.Dispatch("labels"); err != nil {
		t.Fatalf("labels = %v", err)
	}
	if !strings.Contains(buf.String(), "MAIN") {
		t.Fatalf("labels output = %q, want it to contain MAIN", buf.String())
	}
}

func TestStepAdvancesAndPrintsRegisters(t *testing.T) {
	c, buf := newConsole(t)
	if err := c.Dispatch("reset"); err != nil {
		t.Fatalf("reset = %v", err)
	}
	if err := c.Dispatch("step"); err != nil {
		t.Fatalf("step = %v", err)
	}
	if !strings.Contains(buf.String(), "PC=") {
		t.Fatalf("step output = %q, want register dump", buf.String())
	}
}

func TestDisasmUnmappedMemoryReportsUnknown(t *testing.T) {
	c, buf := newConsole(t)
	// Bank 1 (0x4000) has nothing mapped on a fresh, un-Init'd Context.
	if err := c.Dispatch("disasm 0x4000 1"); err != nil {
		t.Fatalf("disasm = %v", err)
	}
	if !strings.Contains(buf.String(), "??") {
		t.Fatalf("disasm output = %q, want an unmapped marker", buf.String())
	}
}

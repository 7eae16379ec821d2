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

package calltrace_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alfishe/unreal-ng-sub004/pkg/calltrace"
)

func sampleEvent(target uint16) calltrace.Event {
	return calltrace.Event{
		M1PC:        0x8000,
		TargetAddr:  target,
		OpcodeBytes: [4]byte{0xCD, byte(target), byte(target >> 8), 0},
		OpcodeLen:   3,
		Type:        calltrace.CALL,
		SPAfter:     0xFFF0,
	}
}

func TestRepeatedEventCompressesToOneColdEntryWithLoopCount(t *testing.T) {
	b := calltrace.New()
	const k = 17
	for i := 0; i < k; i++ {
		b.LogEvent(sampleEvent(0x9000), uint64(i))
	}

	entries := b.ColdEntries()
	if len(entries) != 1 {
		t.Fatalf("ColdEntries = %d entries, want 1", len(entries))
	}
	if entries[0].LoopCount != k {
		t.Fatalf("LoopCount = %d, want %d", entries[0].LoopCount, k)
	}
}

func TestDistinctEventsProduceDistinctColdEntries(t *testing.T) {
	b := calltrace.New()
	b.LogEvent(sampleEvent(0x9000), 0)
	b.LogEvent(sampleEvent(0xA000), 1)

	entries := b.ColdEntries()
	if len(entries) != 2 {
		t.Fatalf("ColdEntries = %d, want 2 distinct events", len(entries))
	}
}

func TestRecurringKeyCompressesViaLRUIndexEvenWithInterleavedEvents(t *testing.T) {
	b := calltrace.New()
	b.LogEvent(sampleEvent(0x9000), 0)
	b.LogEvent(sampleEvent(0xA000), 1)
	b.LogEvent(sampleEvent(0x9000), 2) // same key as the first entry, located via the LRU index

	entries := b.ColdEntries()
	if len(entries) != 2 {
		t.Fatalf("ColdEntries = %d, want 2 (the repeat of 0x9000 compresses via the LRU index)", len(entries))
	}
	var found bool
	for _, e := range entries {
		if e.TargetAddr == 0x9000 {
			found = true
			if e.LoopCount != 2 {
				t.Fatalf("LoopCount for recurring key = %d, want 2", e.LoopCount)
			}
		}
	}
	if !found {
		t.Fatalf("expected a cold entry for target 0x9000")
	}
}

func TestPromotionToHotOnThresholdReached(t *testing.T) {
	b := calltrace.New()
	b.SetThresholds(5, 300)

	for i := 0; i < 5; i++ {
		b.LogEvent(sampleEvent(0xB000), uint64(i))
	}

	if len(b.ColdEntries()) != 0 {
		t.Fatalf("expected the cold entry to be cleared after promotion, got %d", len(b.ColdEntries()))
	}
	hot := b.HotEntries()
	if len(hot) != 1 || hot[0].LoopCount != 5 {
		t.Fatalf("HotEntries = %+v, want one entry with LoopCount=5", hot)
	}

	// further repeats accumulate on the hot entry, not a new cold one.
	b.LogEvent(sampleEvent(0xB000), 5)
	hot = b.HotEntries()
	if hot[0].LoopCount != 6 {
		t.Fatalf("LoopCount after further repeat = %d, want 6", hot[0].LoopCount)
	}
}

func TestHotEntryExpiresAfterTimeout(t *testing.T) {
	b := calltrace.New()
	b.SetThresholds(3, 10)

	for i := 0; i < 3; i++ {
		b.LogEvent(sampleEvent(0xC000), uint64(i))
	}
	if len(b.HotEntries()) != 1 {
		t.Fatalf("expected promotion to hot")
	}

	// advance far enough past the timeout with an unrelated event.
	b.LogEvent(sampleEvent(0xD000), 1000)

	if len(b.HotEntries()) != 0 {
		t.Fatalf("expected the old hot entry to have expired, got %+v", b.HotEntries())
	}
}

func TestSaveToFilePersistsOnlyColdEntries(t *testing.T) {
	b := calltrace.New()
	b.SetThresholds(1000, 300) // keep everything cold for this test

	b.LogEvent(sampleEvent(0x9000), 0)
	b.LogEvent(sampleEvent(0x9000), 1)
	b.LogEvent(sampleEvent(0xA000), 2)

	dir := t.TempDir()
	path := filepath.Join(dir, "calltrace.csv")
	if err := b.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "CALL") || !strings.Contains(content, "9000") || !strings.Contains(content, "A000") {
		t.Fatalf("unexpected CSV content:\n%s", content)
	}
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) != 3 { // header + 2 cold entries
		t.Fatalf("expected 1 header + 2 entry lines, got %d lines:\n%s", len(lines), content)
	}
}

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

package memory

// Snapshot is an immutable copy of a Manager's bank map and of the pages
// bound to it, for tests that need a known memory image without re-running
// a reset sequence.
type Snapshot struct {
	pages [4]Page
	banks [4]bankSlot
}

// Snapshot copies the current bank map and the pages it references. Only
// the four currently-bound pages are captured, matching the teacher's own
// "snapshot what's visible" cartridge state convention rather than copying
// the entire pool.
func (m *Manager) Snapshot() Snapshot {
	var s Snapshot
	for i := 0; i < 4; i++ {
		s.banks[i] = m.banks[i]
		if m.banks[i].page != UnmappablePage {
			s.pages[i] = m.pool.Pages[m.banks[i].page]
		}
	}
	return s
}

// Restore writes a previously captured Snapshot back into the pool and bank
// map.
func (m *Manager) Restore(s Snapshot) {
	for i := 0; i < 4; i++ {
		m.banks[i] = s.banks[i]
		if s.banks[i].page != UnmappablePage {
			m.pool.Pages[s.banks[i].page] = s.pages[i]
		}
	}
	if m.onChange != nil {
		for i := 0; i < 4; i++ {
			m.onChange(i)
		}
	}
}

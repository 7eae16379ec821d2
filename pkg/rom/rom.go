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

// Package rom loads ROM images into the memory page pool, computes a
// SHA-256 signature for each 16 KiB page and resolves the friendly model
// name behind a signature. See spec §4.2.
package rom

import (
	"crypto/sha256"
	"os"

	"github.com/alfishe/unreal-ng-sub004/pkg/memory"
	"github.com/alfishe/unreal-ng-sub004/pkg/zxerror"
)

// Service loads ROM images for a model and answers title lookups.
type Service struct {
	pool *memory.Pool
}

// NewService constructs a Service writing into pool's ROM region.
func NewService(pool *memory.Pool) *Service {
	return &Service{pool: pool}
}

// LoadRomSet reads the ROM image at path, splits it into 16 KiB pages
// starting at ROM page romPageOffset of the pool, and stores a SHA-256
// signature for each page. The file size must be a multiple of 16 KiB.
func (s *Service) LoadRomSet(path string, romPageOffset int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return zxerror.Errorf(zxerror.RomLoadFailed, err)
	}
	return s.loadBytes(data, romPageOffset)
}

func (s *Service) loadBytes(data []byte, romPageOffset int) error {
	if len(data) == 0 || len(data)%memory.PageSize != 0 {
		return zxerror.Errorf(zxerror.RomSizeInvalid)
	}

	pageCount := len(data) / memory.PageSize
	base := s.pool.RAMCount + romPageOffset
	if base+pageCount > len(s.pool.Pages) {
		return zxerror.Errorf(zxerror.RomSizeInvalid)
	}

	for i := 0; i < pageCount; i++ {
		pg := &s.pool.Pages[base+i]
		pg.Kind = memory.PageROM
		copy(pg.Data[:], data[i*memory.PageSize:(i+1)*memory.PageSize])
		pg.Signature = sha256.Sum256(pg.Data[:])
	}
	return nil
}

// LoadRomPages reads a set of individually-filed ROM pages (one file per
// 16 KiB page), in order, starting at ROM page romPageOffset.
func (s *Service) LoadRomPages(paths []string, romPageOffset int) error {
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return zxerror.Errorf(zxerror.RomLoadFailed, err)
		}
		if len(data) != memory.PageSize {
			return zxerror.Errorf(zxerror.RomSizeInvalid)
		}
		pg := &s.pool.Pages[s.pool.RAMCount+romPageOffset+i]
		pg.Kind = memory.PageROM
		copy(pg.Data[:], data)
		pg.Signature = sha256.Sum256(pg.Data[:])
	}
	return nil
}

// SignatureOf returns the stored signature of ROM page n of the pool (n is
// relative to the first ROM page, not an absolute pool index).
func (s *Service) SignatureOf(n int) [32]byte {
	idx := s.pool.RAMCount + n
	if idx < 0 || idx >= len(s.pool.Pages) {
		return [32]byte{}
	}
	return s.pool.Pages[idx].Signature
}

// RomTitle returns the friendly name for a ROM page signature, or "" if the
// signature is not in the static table.
func RomTitle(signature [32]byte) string {
	if title, ok := titles[signature]; ok {
		return title
	}
	return ""
}

// This file is part of GopherCell.
//
// GopherCell is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GopherCell is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GopherCell.  If not, see <https://www.gnu.org/licenses/>.

package loader

import (
	"bytes"
	"debug/elf"
	"fmt"
	"io"

	"github.com/jetsetilly/gophercell/curated"
	"github.com/jetsetilly/gophercell/hardware/spu"
	"github.com/jetsetilly/gophercell/hardware/spu/localstore"
)

// ELFError is returned when an ELF file can not be used as an SPU program.
const ELFError = "loader: elf: %v"

func decodeELF(data []byte) (*spu.Image, error) {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return nil, curated.Errorf(ELFError, err)
	}
	defer f.Close()

	if f.Class != elf.ELFCLASS32 || f.Data != elf.ELFDATA2MSB {
		return nil, curated.Errorf(ELFError, "not a 32-bit big-endian object")
	}
	if f.Machine != elf.EM_SPU {
		return nil, curated.Errorf(ELFError, fmt.Sprintf("unsupported machine (%s)", f.Machine))
	}
	if f.Entry >= localstore.Size || f.Entry&3 != 0 {
		return nil, curated.Errorf(ELFError, fmt.Sprintf("entry point out of range (%#x)", f.Entry))
	}

	img := &spu.Image{
		Entry: uint32(f.Entry),
	}

	for _, p := range f.Progs {
		if p.Type != elf.PT_LOAD || p.Memsz == 0 {
			continue
		}
		if p.Filesz > p.Memsz {
			return nil, curated.Errorf(ELFError, fmt.Sprintf("segment at %#x: file size larger than memory size", p.Vaddr))
		}
		if p.Vaddr+p.Memsz > localstore.Size {
			return nil, curated.Errorf(ELFError, fmt.Sprintf("segment at %#x: does not fit in the local store", p.Vaddr))
		}

		// the part of the segment not in the file is zero
		seg := make([]byte, p.Memsz)
		if _, err := p.ReadAt(seg[:p.Filesz], 0); err != nil && err != io.EOF {
			return nil, curated.Errorf(ELFError, err)
		}

		img.Segments = append(img.Segments, spu.Segment{
			Addr: uint32(p.Vaddr),
			Data: seg,
		})
	}

	if len(img.Segments) == 0 {
		return nil, curated.Errorf(ELFError, "no loadable segments")
	}

	return img, nil
}

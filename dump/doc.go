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

// Package dump persists snapshots of SPU cores.
//
// A dump file starts with a short header: the magic string "GCDUMP", a
// version byte and a byte naming the compression of the payload. The payload
// is the gob encoding of an spu.Snapshot, compressed with zstd, lz4 or xz, or
// not compressed at all.
//
// Dump files are written and read through an afero.Fs so that the host can
// choose where they live. The Save() and Load() functions are the most
// convenient way of using the package. Write() and Read() work on any
// io.Writer or io.Reader.
//
// WriteGraph() renders the structure of a snapshot as a graphviz document and
// Summary() writes a human readable report, including a disassembly of the
// instructions around the PC.
package dump

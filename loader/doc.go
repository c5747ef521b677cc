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

// Package loader is used to specify and load the program images that are
// placed in the local store of an SPU.
//
// A program file can be a raw binary, which is loaded at address zero and
// entered at address zero, or an SPU ELF executable. ELF executables must be
// 32-bit big-endian objects for the SPU machine type. Every PT_LOAD segment
// is placed in the local store at its virtual address and the uninitialised
// part of the segment is zeroed.
//
// Program files can be wrapped in an archive. ZIP, 7z, RAR and gzip (and
// gzipped tar) archives are recognised by the magic bytes at the start of the
// file. The first file in the archive with a recognised extension is used.
//
// Files are read through an afero.Fs. Use afero.NewOsFs() for the host
// filesystem.
package loader

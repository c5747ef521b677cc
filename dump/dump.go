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

package dump

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/jetsetilly/gophercell/curated"
	"github.com/jetsetilly/gophercell/hardware/spu"
)

// Sentinel error patterns.
const (
	UnknownCompression = "dump: unknown compression %q"
	CompressionError   = "dump: %s: %v"
	NotADump           = "dump: not a dump file"
	UnsupportedVersion = "dump: unsupported version (%d)"
	EncodingError      = "dump: encoding: %v"
	DecodingError      = "dump: decoding: %v"
)

const magic = "GCDUMP"

// Version of the dump file format.
const Version = 1

const headerLen = len(magic) + 2

// Write the snapshot to io.Writer using the specified compression.
func Write(w io.Writer, snap *spu.Snapshot, compression Compression) error {
	id, ok := compressionID[compression]
	if !ok {
		return curated.Errorf(UnknownCompression, string(compression))
	}

	hdr := make([]byte, 0, headerLen)
	hdr = append(hdr, magic...)
	hdr = append(hdr, Version, id)
	if _, err := w.Write(hdr); err != nil {
		return curated.Errorf(EncodingError, err)
	}

	cw, err := compressor(w, compression)
	if err != nil {
		return err
	}

	if err := gob.NewEncoder(cw).Encode(snap); err != nil {
		_ = cw.Close()
		return curated.Errorf(EncodingError, err)
	}

	if err := cw.Close(); err != nil {
		return curated.Errorf(CompressionError, compression, err)
	}

	return nil
}

// Read a snapshot from io.Reader. The compression is taken from the header.
func Read(r io.Reader) (*spu.Snapshot, Compression, error) {
	hdr := make([]byte, headerLen)
	if _, err := io.ReadFull(r, hdr); err != nil {
		return nil, "", curated.Errorf(NotADump)
	}
	if !bytes.Equal(hdr[:len(magic)], []byte(magic)) {
		return nil, "", curated.Errorf(NotADump)
	}
	if hdr[len(magic)] != Version {
		return nil, "", curated.Errorf(UnsupportedVersion, hdr[len(magic)])
	}

	compression, ok := compressionFromID(hdr[len(magic)+1])
	if !ok {
		return nil, "", curated.Errorf(UnknownCompression, fmt.Sprint(hdr[len(magic)+1]))
	}

	dr, done, err := decompressor(r, compression)
	if err != nil {
		return nil, "", err
	}
	defer done()

	snap := &spu.Snapshot{}
	if err := gob.NewDecoder(dr).Decode(snap); err != nil {
		return nil, "", curated.Errorf(DecodingError, err)
	}

	return snap, compression, nil
}

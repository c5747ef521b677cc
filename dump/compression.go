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
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"

	"github.com/jetsetilly/gophercell/curated"
)

// Compression names the compression applied to the payload of a dump file.
// The names are the same as those accepted by the dump.compression
// preference.
type Compression string

// List of valid Compression values.
const (
	Zstd Compression = "zstd"
	LZ4  Compression = "lz4"
	XZ   Compression = "xz"
	None Compression = "none"
)

// the byte stored in the header for each compression type
var compressionID = map[Compression]byte{
	None: 0,
	Zstd: 1,
	LZ4:  2,
	XZ:   3,
}

func compressionFromID(id byte) (Compression, bool) {
	for c, i := range compressionID {
		if i == id {
			return c, true
		}
	}
	return "", false
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}

// compressor wraps the writer. the returned writer must be closed before the
// underlying writer is closed
func compressor(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case None:
		return nopWriteCloser{w}, nil
	case Zstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, curated.Errorf(CompressionError, c, err)
		}
		return zw, nil
	case LZ4:
		return lz4.NewWriter(w), nil
	case XZ:
		xw, err := xz.NewWriter(w)
		if err != nil {
			return nil, curated.Errorf(CompressionError, c, err)
		}
		return xw, nil
	}
	return nil, curated.Errorf(UnknownCompression, string(c))
}

// decompressor wraps the reader. the returned function releases any resources
// held by the decompressor
func decompressor(r io.Reader, c Compression) (io.Reader, func(), error) {
	switch c {
	case None:
		return r, func() {}, nil
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, curated.Errorf(CompressionError, c, err)
		}
		return zr, zr.Close, nil
	case LZ4:
		return lz4.NewReader(r), func() {}, nil
	case XZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, curated.Errorf(CompressionError, c, err)
		}
		return xr, func() {}, nil
	}
	return nil, nil, curated.Errorf(UnknownCompression, string(c))
}

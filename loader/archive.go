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
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"io"
	"path"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/nwaples/rardecode/v2"

	"github.com/jetsetilly/gophercell/curated"
)

// magic bytes for format detection
var (
	magicZIP    = []byte{0x50, 0x4b, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4b, 0x05, 0x06}
	magic7z     = []byte{0x37, 0x7a, 0xbc, 0xaf, 0x27, 0x1c}
	magicGzip   = []byte{0x1f, 0x8b}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21}
	magicELF    = []byte{0x7f, 0x45, 0x4c, 0x46}
	magicTar    = []byte("ustar")
)

// offset of the magic string in a tar header
const tarMagicOffset = 257

type format int

const (
	formatRaw format = iota
	formatZIP
	format7z
	formatGzip
	formatRAR
)

func detectFormat(data []byte) format {
	switch {
	case bytes.HasPrefix(data, magicZIP) || bytes.HasPrefix(data, magicZIPEnd):
		return formatZIP
	case bytes.HasPrefix(data, magicRAR):
		return formatRAR
	case bytes.HasPrefix(data, magic7z):
		return format7z
	case bytes.HasPrefix(data, magicGzip):
		return formatGzip
	}
	return formatRaw
}

// extract the program file from the data if the data is an archive. returns
// the data unchanged if the data is not an archive
func extract(data []byte, filename string) ([]byte, string, error) {
	switch detectFormat(data) {
	case formatZIP:
		return extractFromZIP(data, filename)
	case format7z:
		return extractFrom7z(data, filename)
	case formatGzip:
		return extractFromGzip(data, filename)
	case formatRAR:
		return extractFromRAR(data, filename)
	}
	return data, path.Base(filename), nil
}

func extractFromZIP(data []byte, filename string) ([]byte, string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, "", curated.Errorf(LoaderError, err)
	}

	for _, f := range r.File {
		if f.FileInfo().IsDir() || !isProgramFile(f.Name) {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, "", curated.Errorf(LoaderError, err)
		}
		defer rc.Close()

		d, err := limitedRead(rc, f.Name)
		if err != nil {
			return nil, "", err
		}
		return d, path.Base(f.Name), nil
	}

	return nil, "", curated.Errorf(NoProgramFile, filename)
}

func extractFrom7z(data []byte, filename string) ([]byte, string, error) {
	r, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, "", curated.Errorf(LoaderError, err)
	}

	for _, f := range r.File {
		if f.FileInfo().IsDir() || !isProgramFile(f.Name) {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, "", curated.Errorf(LoaderError, err)
		}
		defer rc.Close()

		d, err := limitedRead(rc, f.Name)
		if err != nil {
			return nil, "", err
		}
		return d, path.Base(f.Name), nil
	}

	return nil, "", curated.Errorf(NoProgramFile, filename)
}

func extractFromRAR(data []byte, filename string) ([]byte, string, error) {
	r, err := rardecode.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, "", curated.Errorf(LoaderError, err)
	}

	for {
		hdr, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", curated.Errorf(LoaderError, err)
		}

		if hdr.IsDir || !isProgramFile(hdr.Name) {
			continue
		}

		d, err := limitedRead(r, hdr.Name)
		if err != nil {
			return nil, "", err
		}
		return d, path.Base(hdr.Name), nil
	}

	return nil, "", curated.Errorf(NoProgramFile, filename)
}

// a gzip file can contain a tar archive or the program itself
func extractFromGzip(data []byte, filename string) ([]byte, string, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, "", curated.Errorf(LoaderError, err)
	}
	defer gr.Close()

	d, err := limitedRead(gr, filename)
	if err != nil {
		return nil, "", err
	}

	if len(d) > tarMagicOffset+len(magicTar) && bytes.Equal(d[tarMagicOffset:tarMagicOffset+len(magicTar)], magicTar) {
		return extractFromTar(d, filename)
	}

	name := path.Base(filename)
	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		name = name[:len(name)-3]
	}
	return d, name, nil
}

func extractFromTar(data []byte, filename string) ([]byte, string, error) {
	tr := tar.NewReader(bytes.NewReader(data))

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", curated.Errorf(LoaderError, err)
		}

		if hdr.Typeflag != tar.TypeReg || !isProgramFile(hdr.Name) {
			continue
		}

		d, err := limitedRead(tr, hdr.Name)
		if err != nil {
			return nil, "", err
		}
		return d, path.Base(hdr.Name), nil
	}

	return nil, "", curated.Errorf(NoProgramFile, filename)
}

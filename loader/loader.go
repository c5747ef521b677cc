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
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/spf13/afero"

	"github.com/jetsetilly/gophercell/curated"
	"github.com/jetsetilly/gophercell/hardware/spu"
	"github.com/jetsetilly/gophercell/hardware/spu/localstore"
	"github.com/jetsetilly/gophercell/logger"
)

// Sentinel error patterns.
const (
	LoaderError       = "loader: %v"
	UnsupportedFormat = "loader: %s: unsupported format"
	NoProgramFile     = "loader: %s: no program file in archive"
	FileTooLarge      = "loader: %s: file exceeds maximum size"
	ProgramTooLarge   = "loader: %s: program does not fit in the local store"
	HashMismatch      = "loader: %s: unexpected hash value"
)

// maximum size of a file or of a file extracted from an archive
const maxFileSize = 16 * 1024 * 1024

// Loader is used to specify the program to load into a core.
type Loader struct {
	// filename of the program or of the archive containing the program
	Filename string

	// name of the program file inside the archive. the same as Filename if
	// the file was not an archive
	Name string

	// expected hash of the loaded image. empty string indicates that the hash
	// is unknown and need not be validated. after a load operation the value
	// will be the hash of the loaded image
	Hash string

	// the loaded image. subsequent calls to Load() do nothing
	Image *spu.Image

	// true if the image was decoded from an ELF file
	IsELF bool
}

// NewLoader is the preferred method of initialisation for the Loader type.
func NewLoader(filename string) Loader {
	return Loader{
		Filename: filename,
	}
}

// ShortName returns a shortened version of the program filename.
func (ld Loader) ShortName() string {
	n := ld.Name
	if n == "" {
		n = ld.Filename
	}
	n = path.Base(n)
	return strings.TrimSuffix(n, path.Ext(n))
}

// HasLoaded returns true if Load() has been successfully called.
func (ld Loader) HasLoaded() bool {
	return ld.Image != nil
}

// Load the program from the filesystem.
func (ld *Loader) Load(fs afero.Fs) error {
	if ld.Image != nil {
		return nil
	}

	f, err := fs.Open(ld.Filename)
	if err != nil {
		return curated.Errorf(LoaderError, err)
	}
	defer f.Close()

	data, err := limitedRead(f, ld.Filename)
	if err != nil {
		return err
	}

	data, name, err := extract(data, ld.Filename)
	if err != nil {
		return err
	}

	img, isELF, err := Decode(data, name)
	if err != nil {
		return err
	}

	hash := Hash(img)
	if ld.Hash != "" && ld.Hash != hash {
		return curated.Errorf(HashMismatch, ld.Filename)
	}

	ld.Hash = hash
	ld.Name = name
	ld.Image = img
	ld.IsELF = isELF

	logger.Logf(logger.Allow, "loader", "%s: %d segments, %d bytes, entry %05x (%s)",
		name, len(img.Segments), img.Size(), img.Entry, hash)

	return nil
}

// Decode the program data. ELF files are recognised by their magic bytes,
// anything else is treated as a raw binary. The name is used in error
// messages.
func Decode(data []byte, name string) (*spu.Image, bool, error) {
	if bytes.HasPrefix(data, magicELF) {
		img, err := decodeELF(data)
		if err != nil {
			return nil, false, err
		}
		return img, true, nil
	}

	if len(data) > localstore.Size {
		return nil, false, curated.Errorf(ProgramTooLarge, name)
	}

	img := &spu.Image{
		Segments: []spu.Segment{{Addr: 0, Data: data}},
	}
	return img, false, nil
}

// Hash returns a string identifying the image. Only the placement and content
// of the segments contribute to the hash, so the same program loaded from an
// ELF file and from a raw binary containing the same bytes at the same
// addresses will hash identically.
func Hash(img *spu.Image) string {
	h := sha1.New()
	var b [8]byte
	for _, s := range img.Segments {
		binary.BigEndian.PutUint32(b[0:], s.Addr)
		binary.BigEndian.PutUint32(b[4:], uint32(len(s.Data)))
		h.Write(b[:])
		h.Write(s.Data)
	}
	return fmt.Sprintf("SPU-%x", h.Sum(nil))
}

// limitedRead reads from r up to maxFileSize bytes, returning an error if
// exceeded
func limitedRead(r io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxFileSize+1))
	if err != nil {
		return nil, curated.Errorf(LoaderError, err)
	}
	if len(data) > maxFileSize {
		return nil, curated.Errorf(FileTooLarge, name)
	}
	return data, nil
}

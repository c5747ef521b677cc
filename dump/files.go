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
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/jetsetilly/gophercell/curated"
	"github.com/jetsetilly/gophercell/hardware/spu"
	"github.com/jetsetilly/gophercell/logger"
	"github.com/jetsetilly/gophercell/resources"
)

// FileError is returned when a dump file can not be created or opened.
const FileError = "dump: file: %v"

// Extension of dump files created by Save().
const Extension = ".gcd"

// Save the snapshot to a new file in the directory. The directory is created
// if necessary. Returns the path of the new file.
func Save(fs afero.Fs, dir string, snap *spu.Snapshot, compression Compression) (string, error) {
	if err := fs.MkdirAll(dir, 0700); err != nil {
		return "", curated.Errorf(FileError, err)
	}

	pth := filepath.Join(dir, resources.UniqueFilename("dump", snap.Label, Extension))

	f, err := fs.Create(pth)
	if err != nil {
		return "", curated.Errorf(FileError, err)
	}

	err = Write(f, snap, compression)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = curated.Errorf(FileError, cerr)
	}
	if err != nil {
		_ = fs.Remove(pth)
		return "", err
	}

	logger.Logf(logger.Allow, "dump", "%s saved to %s (%s)", snap.Label, pth, compression)

	return pth, nil
}

// Load a snapshot from the file.
func Load(fs afero.Fs, pth string) (*spu.Snapshot, error) {
	f, err := fs.Open(pth)
	if err != nil {
		return nil, curated.Errorf(FileError, err)
	}
	defer f.Close()

	snap, _, err := Read(f)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

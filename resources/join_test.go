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

package resources_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/jetsetilly/gophercell/resources"
	"github.com/jetsetilly/gophercell/test"
)

func TestPortableJoin(t *testing.T) {
	resources.Fs = afero.NewMemMapFs()
	defer func() { resources.Fs = afero.NewOsFs() }()

	test.DemandSuccess(t, resources.Fs.Mkdir(".gophercell", 0700))

	p, err := resources.JoinPath("dumps", "spu0.dump")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p, filepath.Join(".gophercell", "dumps", "spu0.dump"))

	fi, err := resources.Fs.Stat(filepath.Join(".gophercell", "dumps"))
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, fi.IsDir())

	// base path is not prepended twice
	q, err := resources.JoinPath(p)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, q, p)
}

func TestUniqueFilename(t *testing.T) {
	fn := resources.UniqueFilename("dump", "spu0", ".gcd")
	test.ExpectSuccess(t, strings.HasPrefix(fn, "dump_spu0_"))
	test.ExpectSuccess(t, strings.HasSuffix(fn, ".gcd"))

	fn = resources.UniqueFilename("asm", " ", "")
	test.ExpectSuccess(t, strings.HasPrefix(fn, "asm_"))
	test.ExpectFailure(t, strings.Contains(fn, "."))
}

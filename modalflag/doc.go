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

// Package modalflag is a wrapper for the flag package in the Go standard
// library. It handles program modes (and sub-modes) and allows a different set
// of flags for each mode.
//
// Arguments are given once with NewArgs() and then Parse() is called, with no
// arguments, for each layer of the command line.
//
//	md := modalflag.Modes{Output: os.Stdout}
//	md.NewArgs(os.Args[1:])
//	echo := md.AddBool("log", false, "echo log to stderr")
//	md.AddSubModes("run", "script", "disasm", "asm")
//
//	switch r, err := md.Parse(); r {
//	case modalflag.ParseHelp:
//		return nil
//	case modalflag.ParseError:
//		return err
//	}
//
// The first sub-mode is the default and is selected if the first argument
// after the flags is not a sub-mode. Comparisons are case insensitive and
// Mode() always returns the upper case name.
//
//	switch md.Mode() {
//	case "RUN":
//		md.NewMode()
//		args := md.AddList("arg", "value placed in $3 of each thread")
//		threads := md.AddInt("threads", 1, "number of threads in the group")
//		_, _ = md.Parse()
//		run(md.RemainingArgs(), *threads, *args)
//	case "DISASM":
//		md.NewMode()
//		origin := md.AddAddress("origin", 0, "address of the first instruction")
//		_, _ = md.Parse()
//		disasm(md.GetArg(0), uint32(*origin))
//	}
//
// Modes can be nested as deep as required by calling AddSubModes() after
// NewMode(). The Path() function returns every mode encountered, separated
// by a slash.
package modalflag

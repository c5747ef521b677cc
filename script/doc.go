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

// Package script runs Lua scripts that drive the machine through the host
// control surface. Scripts are run with yuin/gopher-lua.
//
// The global table "spu" is the entry point for scripts:
//
//	spu.assemble(src)        assemble source and return an image
//	spu.load(path)           load an image from a program file or archive
//	spu.raw()                create a raw core
//	spu.group(name, n)       create a thread group of n threads
//	spu.core(id)             return the core with the id or nil
//	spu.queue(name, size)    create an event queue
//	spu.bind(num, queue)     bind a queue to a queue number
//	spu.connect(core, port, queue)
//	spu.flag(id)             create an event flag
//	spu.map(addr, size)      map main memory
//	spu.read(addr, n)        read main memory as a string
//	spu.write(addr, str)     write a string to main memory
//	spu.read32(addr)         read a word of main memory
//	spu.write32(addr, v)     write a word of main memory
//	spu.sleep(ms)
//	spu.log(msg)
//
// Cores, groups, images, queues and flags are userdata values with methods.
// For example:
//
//	local c = spu.raw()
//	c:load(spu.assemble([[
//		rdch	$3,$ch29
//		ai	$3,$3,1
//		wrch	$ch28,$3
//		stop	0x1
//	]]))
//	c:start()
//	c:write_mbox(41)
//	print(c:read_mbox())
//
// Raw cores raise interrupts when they write to the outbound interrupt mailbox
// and when they halt. The status of class 2 is read with c:int_stat(2) and
// cleared with c:clear_int_stat(2, bits). A tag created by
// c:interrupt_tag(class) waits for the unmasked bits set by c:int_mask().
//
// The print() function writes to the io.Writer given to NewScript(). Blocking
// methods are bounded by the context given to Run().
//
// Lua numbers are double precision floating point values. Values wider than 53
// bits, such as the 64-bit arguments of a thread, lose precision.
package script

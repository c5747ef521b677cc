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

package isa

// definitions of every implemented instruction. the dispatch table is built
// from this list by init()
var definitions = []Definition{
	// control
	{Mnemonic: "stop", Opcode: 0x000, Format: Stop, Effect: Control, Terminal: true, Execute: opSTOP},
	{Mnemonic: "lnop", Opcode: 0x001, Format: RR, Effect: Control, Execute: opNone},
	{Mnemonic: "sync", Opcode: 0x002, Format: RR, Effect: Control, Terminal: true, Execute: opNone},
	{Mnemonic: "dsync", Opcode: 0x003, Format: RR, Effect: Control, Execute: opNone},
	{Mnemonic: "mfspr", Opcode: 0x00c, Format: RR, Effect: Compute, Execute: opZero},
	{Mnemonic: "mtspr", Opcode: 0x10c, Format: RR, Effect: Control, Execute: opNone},
	{Mnemonic: "stopd", Opcode: 0x140, Format: RR, Effect: Control, Terminal: true, Execute: opSTOPD},
	{Mnemonic: "nop", Opcode: 0x201, Format: RR, Effect: Control, Execute: opNone},
	{Mnemonic: "hbr", Opcode: 0x1ac, Format: RR, Effect: Control, Execute: opNone},
	{Mnemonic: "hbra", Opcode: 0x08, Format: RI18, Effect: Control, Execute: opNone},
	{Mnemonic: "hbrr", Opcode: 0x09, Format: RI18, Effect: Control, Execute: opNone},
	{Mnemonic: "fscrrd", Opcode: 0x398, Format: RR, Effect: Compute, Execute: opZero},
	{Mnemonic: "fscrwr", Opcode: 0x3ba, Format: RR, Effect: Control, Execute: opNone},

	// channels
	{Mnemonic: "rdch", Opcode: 0x00d, Format: Channel, Effect: ChannelAccess, Execute: opRDCH},
	{Mnemonic: "rchcnt", Opcode: 0x00f, Format: Channel, Effect: ChannelAccess, Execute: opRCHCNT},
	{Mnemonic: "wrch", Opcode: 0x10d, Format: Channel, Effect: ChannelAccess, Execute: opWRCH},

	// branches
	{Mnemonic: "br", Opcode: 0x064, Format: RI16, Effect: Flow, Terminal: true, Execute: opBR},
	{Mnemonic: "bra", Opcode: 0x060, Format: RI16, Effect: Flow, Terminal: true, Execute: opBRA},
	{Mnemonic: "brsl", Opcode: 0x066, Format: RI16, Effect: Flow, Terminal: true, Execute: opBRSL},
	{Mnemonic: "brasl", Opcode: 0x062, Format: RI16, Effect: Flow, Terminal: true, Execute: opBRASL},
	{Mnemonic: "brz", Opcode: 0x040, Format: RI16, Effect: Flow, Execute: opBRZ},
	{Mnemonic: "brnz", Opcode: 0x042, Format: RI16, Effect: Flow, Execute: opBRNZ},
	{Mnemonic: "brhz", Opcode: 0x044, Format: RI16, Effect: Flow, Execute: opBRHZ},
	{Mnemonic: "brhnz", Opcode: 0x046, Format: RI16, Effect: Flow, Execute: opBRHNZ},
	{Mnemonic: "bi", Opcode: 0x1a8, Format: Branch, Effect: Flow, Terminal: true, Execute: opBI},
	{Mnemonic: "bisl", Opcode: 0x1a9, Format: Branch, Effect: Flow, Terminal: true, Execute: opBISL},
	{Mnemonic: "iret", Opcode: 0x1aa, Format: Branch, Effect: Flow, Terminal: true, Execute: opIRET},
	{Mnemonic: "bisled", Opcode: 0x1ab, Format: Branch, Effect: Flow, Execute: opBISLED},
	{Mnemonic: "biz", Opcode: 0x128, Format: Branch, Effect: Flow, Execute: opBIZ},
	{Mnemonic: "binz", Opcode: 0x129, Format: Branch, Effect: Flow, Execute: opBINZ},
	{Mnemonic: "bihz", Opcode: 0x12a, Format: Branch, Effect: Flow, Execute: opBIHZ},
	{Mnemonic: "bihnz", Opcode: 0x12b, Format: Branch, Effect: Flow, Execute: opBIHNZ},

	// loads and stores
	{Mnemonic: "lqd", Opcode: 0x34, Format: RI10, Effect: Load, Execute: opLQD},
	{Mnemonic: "lqx", Opcode: 0x1c4, Format: RR, Effect: Load, Execute: opLQX},
	{Mnemonic: "lqa", Opcode: 0x061, Format: RI16, Effect: Load, Execute: opLQA},
	{Mnemonic: "lqr", Opcode: 0x067, Format: RI16, Effect: Load, Execute: opLQR},
	{Mnemonic: "stqd", Opcode: 0x24, Format: RI10, Effect: Store, Execute: opSTQD},
	{Mnemonic: "stqx", Opcode: 0x144, Format: RR, Effect: Store, Execute: opSTQX},
	{Mnemonic: "stqa", Opcode: 0x041, Format: RI16, Effect: Store, Execute: opSTQA},
	{Mnemonic: "stqr", Opcode: 0x047, Format: RI16, Effect: Store, Execute: opSTQR},

	// constant formation
	{Mnemonic: "il", Opcode: 0x081, Format: RI16, Effect: Compute, Execute: opIL},
	{Mnemonic: "ilh", Opcode: 0x083, Format: RI16, Effect: Compute, Execute: opILH},
	{Mnemonic: "ilhu", Opcode: 0x082, Format: RI16, Effect: Compute, Execute: opILHU},
	{Mnemonic: "ila", Opcode: 0x21, Format: RI18, Effect: Compute, Execute: opILA},
	{Mnemonic: "iohl", Opcode: 0x0c1, Format: RI16, Effect: Compute, Execute: opIOHL},
	{Mnemonic: "fsmbi", Opcode: 0x065, Format: RI16, Effect: Compute, Execute: opFSMBI},

	// generate controls for insertion
	{Mnemonic: "cbd", Opcode: 0x1f4, Format: RI7, Effect: Compute, Execute: opCBD},
	{Mnemonic: "chd", Opcode: 0x1f5, Format: RI7, Effect: Compute, Execute: opCHD},
	{Mnemonic: "cwd", Opcode: 0x1f6, Format: RI7, Effect: Compute, Execute: opCWD},
	{Mnemonic: "cdd", Opcode: 0x1f7, Format: RI7, Effect: Compute, Execute: opCDD},
	{Mnemonic: "cbx", Opcode: 0x1d4, Format: RR, Effect: Compute, Execute: opCBX},
	{Mnemonic: "chx", Opcode: 0x1d5, Format: RR, Effect: Compute, Execute: opCHX},
	{Mnemonic: "cwx", Opcode: 0x1d6, Format: RR, Effect: Compute, Execute: opCWX},
	{Mnemonic: "cdx", Opcode: 0x1d7, Format: RR, Effect: Compute, Execute: opCDX},

	// integer arithmetic
	{Mnemonic: "a", Opcode: 0x0c0, Format: RR, Effect: Compute, Execute: opA},
	{Mnemonic: "ah", Opcode: 0x0c8, Format: RR, Effect: Compute, Execute: opAH},
	{Mnemonic: "ai", Opcode: 0x1c, Format: RI10, Effect: Compute, Execute: opAI},
	{Mnemonic: "ahi", Opcode: 0x1d, Format: RI10, Effect: Compute, Execute: opAHI},
	{Mnemonic: "sf", Opcode: 0x040, Format: RR, Effect: Compute, Execute: opSF},
	{Mnemonic: "sfh", Opcode: 0x048, Format: RR, Effect: Compute, Execute: opSFH},
	{Mnemonic: "sfi", Opcode: 0x0c, Format: RI10, Effect: Compute, Execute: opSFI},
	{Mnemonic: "sfhi", Opcode: 0x0d, Format: RI10, Effect: Compute, Execute: opSFHI},
	{Mnemonic: "addx", Opcode: 0x340, Format: RR, Effect: Compute, Execute: opADDX},
	{Mnemonic: "cg", Opcode: 0x0c2, Format: RR, Effect: Compute, Execute: opCG},
	{Mnemonic: "cgx", Opcode: 0x342, Format: RR, Effect: Compute, Execute: opCGX},
	{Mnemonic: "sfx", Opcode: 0x341, Format: RR, Effect: Compute, Execute: opSFX},
	{Mnemonic: "bg", Opcode: 0x042, Format: RR, Effect: Compute, Execute: opBG},
	{Mnemonic: "bgx", Opcode: 0x343, Format: RR, Effect: Compute, Execute: opBGX},
	{Mnemonic: "mpy", Opcode: 0x3c4, Format: RR, Effect: Compute, Execute: opMPY},
	{Mnemonic: "mpyu", Opcode: 0x3cc, Format: RR, Effect: Compute, Execute: opMPYU},
	{Mnemonic: "mpyi", Opcode: 0x74, Format: RI10, Effect: Compute, Execute: opMPYI},
	{Mnemonic: "mpyui", Opcode: 0x75, Format: RI10, Effect: Compute, Execute: opMPYUI},
	{Mnemonic: "mpya", Opcode: 0xc, Format: RRR, Effect: Compute, Execute: opMPYA},
	{Mnemonic: "mpyh", Opcode: 0x3c5, Format: RR, Effect: Compute, Execute: opMPYH},
	{Mnemonic: "mpys", Opcode: 0x3c7, Format: RR, Effect: Compute, Execute: opMPYS},
	{Mnemonic: "mpyhh", Opcode: 0x3c6, Format: RR, Effect: Compute, Execute: opMPYHH},
	{Mnemonic: "mpyhha", Opcode: 0x346, Format: RR, Effect: Compute, Execute: opMPYHHA},
	{Mnemonic: "mpyhhu", Opcode: 0x3ce, Format: RR, Effect: Compute, Execute: opMPYHHU},
	{Mnemonic: "mpyhhau", Opcode: 0x34e, Format: RR, Effect: Compute, Execute: opMPYHHAU},
	{Mnemonic: "clz", Opcode: 0x2a5, Format: RR, Effect: Compute, Execute: opCLZ},
	{Mnemonic: "cntb", Opcode: 0x2b4, Format: RR, Effect: Compute, Execute: opCNTB},
	{Mnemonic: "fsmb", Opcode: 0x1b6, Format: RR, Effect: Compute, Execute: opFSMB},
	{Mnemonic: "fsmh", Opcode: 0x1b5, Format: RR, Effect: Compute, Execute: opFSMH},
	{Mnemonic: "fsm", Opcode: 0x1b4, Format: RR, Effect: Compute, Execute: opFSM},
	{Mnemonic: "gbb", Opcode: 0x1b2, Format: RR, Effect: Compute, Execute: opGBB},
	{Mnemonic: "gbh", Opcode: 0x1b1, Format: RR, Effect: Compute, Execute: opGBH},
	{Mnemonic: "gb", Opcode: 0x1b0, Format: RR, Effect: Compute, Execute: opGB},
	{Mnemonic: "avgb", Opcode: 0x0d3, Format: RR, Effect: Compute, Execute: opAVGB},
	{Mnemonic: "absdb", Opcode: 0x053, Format: RR, Effect: Compute, Execute: opABSDB},
	{Mnemonic: "sumb", Opcode: 0x253, Format: RR, Effect: Compute, Execute: opSUMB},
	{Mnemonic: "xsbh", Opcode: 0x2b6, Format: RR, Effect: Compute, Execute: opXSBH},
	{Mnemonic: "xshw", Opcode: 0x2ae, Format: RR, Effect: Compute, Execute: opXSHW},
	{Mnemonic: "xswd", Opcode: 0x2a6, Format: RR, Effect: Compute, Execute: opXSWD},

	// logical
	{Mnemonic: "and", Opcode: 0x0c1, Format: RR, Effect: Compute, Execute: opAND},
	{Mnemonic: "andc", Opcode: 0x2c1, Format: RR, Effect: Compute, Execute: opANDC},
	{Mnemonic: "andbi", Opcode: 0x16, Format: RI10, Effect: Compute, Execute: opANDBI},
	{Mnemonic: "andhi", Opcode: 0x15, Format: RI10, Effect: Compute, Execute: opANDHI},
	{Mnemonic: "andi", Opcode: 0x14, Format: RI10, Effect: Compute, Execute: opANDI},
	{Mnemonic: "or", Opcode: 0x041, Format: RR, Effect: Compute, Execute: opOR},
	{Mnemonic: "orc", Opcode: 0x2c9, Format: RR, Effect: Compute, Execute: opORC},
	{Mnemonic: "orbi", Opcode: 0x06, Format: RI10, Effect: Compute, Execute: opORBI},
	{Mnemonic: "orhi", Opcode: 0x05, Format: RI10, Effect: Compute, Execute: opORHI},
	{Mnemonic: "ori", Opcode: 0x04, Format: RI10, Effect: Compute, Execute: opORI},
	{Mnemonic: "orx", Opcode: 0x1f0, Format: RR, Effect: Compute, Execute: opORX},
	{Mnemonic: "xor", Opcode: 0x241, Format: RR, Effect: Compute, Execute: opXOR},
	{Mnemonic: "xorbi", Opcode: 0x46, Format: RI10, Effect: Compute, Execute: opXORBI},
	{Mnemonic: "xorhi", Opcode: 0x45, Format: RI10, Effect: Compute, Execute: opXORHI},
	{Mnemonic: "xori", Opcode: 0x44, Format: RI10, Effect: Compute, Execute: opXORI},
	{Mnemonic: "nand", Opcode: 0x0c9, Format: RR, Effect: Compute, Execute: opNAND},
	{Mnemonic: "nor", Opcode: 0x049, Format: RR, Effect: Compute, Execute: opNOR},
	{Mnemonic: "eqv", Opcode: 0x249, Format: RR, Effect: Compute, Execute: opEQV},
	{Mnemonic: "selb", Opcode: 0x8, Format: RRR, Effect: Compute, Execute: opSELB},
	{Mnemonic: "shufb", Opcode: 0xb, Format: RRR, Effect: Compute, Execute: opSHUFB},

	// shifts and rotates
	{Mnemonic: "shlh", Opcode: 0x05f, Format: RR, Effect: Compute, Execute: opSHLH},
	{Mnemonic: "shlhi", Opcode: 0x07f, Format: RI7, Effect: Compute, Execute: opSHLHI},
	{Mnemonic: "shl", Opcode: 0x05b, Format: RR, Effect: Compute, Execute: opSHL},
	{Mnemonic: "shli", Opcode: 0x07b, Format: RI7, Effect: Compute, Execute: opSHLI},
	{Mnemonic: "shlqbi", Opcode: 0x1db, Format: RR, Effect: Compute, Execute: opSHLQBI},
	{Mnemonic: "shlqbii", Opcode: 0x1fb, Format: RI7, Effect: Compute, Execute: opSHLQBII},
	{Mnemonic: "shlqby", Opcode: 0x1df, Format: RR, Effect: Compute, Execute: opSHLQBY},
	{Mnemonic: "shlqbyi", Opcode: 0x1ff, Format: RI7, Effect: Compute, Execute: opSHLQBYI},
	{Mnemonic: "shlqbybi", Opcode: 0x1cf, Format: RR, Effect: Compute, Execute: opSHLQBYBI},
	{Mnemonic: "roth", Opcode: 0x05c, Format: RR, Effect: Compute, Execute: opROTH},
	{Mnemonic: "rothi", Opcode: 0x07c, Format: RI7, Effect: Compute, Execute: opROTHI},
	{Mnemonic: "rot", Opcode: 0x058, Format: RR, Effect: Compute, Execute: opROT},
	{Mnemonic: "roti", Opcode: 0x078, Format: RI7, Effect: Compute, Execute: opROTI},
	{Mnemonic: "rotqby", Opcode: 0x1dc, Format: RR, Effect: Compute, Execute: opROTQBY},
	{Mnemonic: "rotqbyi", Opcode: 0x1fc, Format: RI7, Effect: Compute, Execute: opROTQBYI},
	{Mnemonic: "rotqbybi", Opcode: 0x1cc, Format: RR, Effect: Compute, Execute: opROTQBYBI},
	{Mnemonic: "rotqbi", Opcode: 0x1d8, Format: RR, Effect: Compute, Execute: opROTQBI},
	{Mnemonic: "rotqbii", Opcode: 0x1f8, Format: RI7, Effect: Compute, Execute: opROTQBII},
	{Mnemonic: "rothm", Opcode: 0x05d, Format: RR, Effect: Compute, Execute: opROTHM},
	{Mnemonic: "rothmi", Opcode: 0x07d, Format: RI7, Effect: Compute, Execute: opROTHMI},
	{Mnemonic: "rotm", Opcode: 0x059, Format: RR, Effect: Compute, Execute: opROTM},
	{Mnemonic: "rotmi", Opcode: 0x079, Format: RI7, Effect: Compute, Execute: opROTMI},
	{Mnemonic: "rotqmby", Opcode: 0x1dd, Format: RR, Effect: Compute, Execute: opROTQMBY},
	{Mnemonic: "rotqmbyi", Opcode: 0x1fd, Format: RI7, Effect: Compute, Execute: opROTQMBYI},
	{Mnemonic: "rotqmbybi", Opcode: 0x1cd, Format: RR, Effect: Compute, Execute: opROTQMBYBI},
	{Mnemonic: "rotqmbi", Opcode: 0x1d9, Format: RR, Effect: Compute, Execute: opROTQMBI},
	{Mnemonic: "rotqmbii", Opcode: 0x1f9, Format: RI7, Effect: Compute, Execute: opROTQMBII},
	{Mnemonic: "rotmah", Opcode: 0x05e, Format: RR, Effect: Compute, Execute: opROTMAH},
	{Mnemonic: "rotmahi", Opcode: 0x07e, Format: RI7, Effect: Compute, Execute: opROTMAHI},
	{Mnemonic: "rotma", Opcode: 0x05a, Format: RR, Effect: Compute, Execute: opROTMA},
	{Mnemonic: "rotmai", Opcode: 0x07a, Format: RI7, Effect: Compute, Execute: opROTMAI},

	// compare and halt
	{Mnemonic: "heq", Opcode: 0x3d8, Format: RR, Effect: Control, Execute: opHEQ},
	{Mnemonic: "heqi", Opcode: 0x7f, Format: RI10, Effect: Control, Execute: opHEQI},
	{Mnemonic: "hgt", Opcode: 0x258, Format: RR, Effect: Control, Execute: opHGT},
	{Mnemonic: "hgti", Opcode: 0x4f, Format: RI10, Effect: Control, Execute: opHGTI},
	{Mnemonic: "hlgt", Opcode: 0x2d8, Format: RR, Effect: Control, Execute: opHLGT},
	{Mnemonic: "hlgti", Opcode: 0x5f, Format: RI10, Effect: Control, Execute: opHLGTI},
	{Mnemonic: "ceqb", Opcode: 0x3d0, Format: RR, Effect: Compute, Execute: opCEQB},
	{Mnemonic: "ceqbi", Opcode: 0x7e, Format: RI10, Effect: Compute, Execute: opCEQBI},
	{Mnemonic: "ceqh", Opcode: 0x3c8, Format: RR, Effect: Compute, Execute: opCEQH},
	{Mnemonic: "ceqhi", Opcode: 0x7d, Format: RI10, Effect: Compute, Execute: opCEQHI},
	{Mnemonic: "ceq", Opcode: 0x3c0, Format: RR, Effect: Compute, Execute: opCEQ},
	{Mnemonic: "ceqi", Opcode: 0x7c, Format: RI10, Effect: Compute, Execute: opCEQI},
	{Mnemonic: "cgtb", Opcode: 0x250, Format: RR, Effect: Compute, Execute: opCGTB},
	{Mnemonic: "cgtbi", Opcode: 0x4e, Format: RI10, Effect: Compute, Execute: opCGTBI},
	{Mnemonic: "cgth", Opcode: 0x248, Format: RR, Effect: Compute, Execute: opCGTH},
	{Mnemonic: "cgthi", Opcode: 0x4d, Format: RI10, Effect: Compute, Execute: opCGTHI},
	{Mnemonic: "cgt", Opcode: 0x240, Format: RR, Effect: Compute, Execute: opCGT},
	{Mnemonic: "cgti", Opcode: 0x4c, Format: RI10, Effect: Compute, Execute: opCGTI},
	{Mnemonic: "clgtb", Opcode: 0x2d0, Format: RR, Effect: Compute, Execute: opCLGTB},
	{Mnemonic: "clgtbi", Opcode: 0x5e, Format: RI10, Effect: Compute, Execute: opCLGTBI},
	{Mnemonic: "clgth", Opcode: 0x2c8, Format: RR, Effect: Compute, Execute: opCLGTH},
	{Mnemonic: "clgthi", Opcode: 0x5d, Format: RI10, Effect: Compute, Execute: opCLGTHI},
	{Mnemonic: "clgt", Opcode: 0x2c0, Format: RR, Effect: Compute, Execute: opCLGT},
	{Mnemonic: "clgti", Opcode: 0x5c, Format: RI10, Effect: Compute, Execute: opCLGTI},

	// floating point
	{Mnemonic: "fa", Opcode: 0x2c4, Format: RR, Effect: Compute, Execute: opFA},
	{Mnemonic: "fs", Opcode: 0x2c5, Format: RR, Effect: Compute, Execute: opFS},
	{Mnemonic: "fm", Opcode: 0x2c6, Format: RR, Effect: Compute, Execute: opFM},
	{Mnemonic: "fma", Opcode: 0xe, Format: RRR, Effect: Compute, Execute: opFMA},
	{Mnemonic: "fms", Opcode: 0xf, Format: RRR, Effect: Compute, Execute: opFMS},
	{Mnemonic: "fnms", Opcode: 0xd, Format: RRR, Effect: Compute, Execute: opFNMS},
	{Mnemonic: "fceq", Opcode: 0x3c2, Format: RR, Effect: Compute, Execute: opFCEQ},
	{Mnemonic: "fcgt", Opcode: 0x2c2, Format: RR, Effect: Compute, Execute: opFCGT},
	{Mnemonic: "fcmeq", Opcode: 0x3ca, Format: RR, Effect: Compute, Execute: opFCMEQ},
	{Mnemonic: "fcmgt", Opcode: 0x2ca, Format: RR, Effect: Compute, Execute: opFCMGT},
	{Mnemonic: "frest", Opcode: 0x1b8, Format: RR, Effect: Compute, Execute: opFREST},
	{Mnemonic: "frsqest", Opcode: 0x1b9, Format: RR, Effect: Compute, Execute: opFRSQEST},
	{Mnemonic: "fi", Opcode: 0x3d4, Format: RR, Effect: Compute, Execute: opFI},
	{Mnemonic: "csflt", Opcode: 0x1da, Format: RI8, Effect: Compute, Execute: opCSFLT},
	{Mnemonic: "cflts", Opcode: 0x1d8, Format: RI8, Effect: Compute, Execute: opCFLTS},
	{Mnemonic: "cuflt", Opcode: 0x1db, Format: RI8, Effect: Compute, Execute: opCUFLT},
	{Mnemonic: "cfltu", Opcode: 0x1d9, Format: RI8, Effect: Compute, Execute: opCFLTU},
	{Mnemonic: "fesd", Opcode: 0x3b8, Format: RR, Effect: Compute, Execute: opFESD},
	{Mnemonic: "frds", Opcode: 0x3b9, Format: RR, Effect: Compute, Execute: opFRDS},
	{Mnemonic: "dfa", Opcode: 0x2cc, Format: RR, Effect: Compute, Execute: opDFA},
	{Mnemonic: "dfs", Opcode: 0x2cd, Format: RR, Effect: Compute, Execute: opDFS},
	{Mnemonic: "dfm", Opcode: 0x2ce, Format: RR, Effect: Compute, Execute: opDFM},
	{Mnemonic: "dfma", Opcode: 0x35c, Format: RR, Effect: Compute, Execute: opDFMA},
	{Mnemonic: "dfms", Opcode: 0x35d, Format: RR, Effect: Compute, Execute: opDFMS},
	{Mnemonic: "dfnms", Opcode: 0x35e, Format: RR, Effect: Compute, Execute: opDFNMS},
	{Mnemonic: "dfnma", Opcode: 0x35f, Format: RR, Effect: Compute, Execute: opDFNMA},
}

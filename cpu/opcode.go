package cpu

import (
	"iter"
	"slices"
)

// Mnemonic is an instruction operation.
type Mnemonic int

//go:generate go tool stringer -linecomment -type=Mnemonic,Cond,Arg
const (
	MN_INVALID = Mnemonic(0)  // invalid
	MN_NOP     = Mnemonic(1)  // nop
	MN_LD      = Mnemonic(2)  // ld
	MN_INC     = Mnemonic(3)  // inc
	MN_DEC     = Mnemonic(4)  // dec
	MN_ADD     = Mnemonic(5)  // add
	MN_ADC     = Mnemonic(6)  // adc
	MN_SUB     = Mnemonic(7)  // sub
	MN_SBC     = Mnemonic(8)  // sbc
	MN_AND     = Mnemonic(9)  // and
	MN_XOR     = Mnemonic(10) // xor
	MN_OR      = Mnemonic(11) // or
	MN_CP      = Mnemonic(12) // cp
	MN_JP      = Mnemonic(13) // jp
	MN_JR      = Mnemonic(14) // jr
	MN_DJNZ    = Mnemonic(15) // djnz
	MN_EX      = Mnemonic(16) // ex
	MN_EXX     = Mnemonic(17) // exx
)

// Cond is a control transfer condition.
type Cond int

const (
	COND_ALWAYS = Cond(0) // always
	COND_NZ     = Cond(1) // nz
	COND_Z      = Cond(2) // z
	COND_NC     = Cond(3) // nc
	COND_C      = Cond(4) // c
	COND_PO     = Cond(5) // po
	COND_PE     = Cond(6) // pe
	COND_P      = Cond(7) // p
	COND_M      = Cond(8) // m
)

// Arg is an operand slot, naming both the register or addressing mode and
// the bytes it consumes from the instruction stream.
type Arg int

const (
	ARG_NONE   = Arg(0)  // none
	ARG_A      = Arg(1)  // a
	ARG_F      = Arg(2)  // f
	ARG_B      = Arg(3)  // b
	ARG_C      = Arg(4)  // c
	ARG_D      = Arg(5)  // d
	ARG_E      = Arg(6)  // e
	ARG_H      = Arg(7)  // h
	ARG_L      = Arg(8)  // l
	ARG_I      = Arg(9)  // i
	ARG_R      = Arg(10) // r
	ARG_AF     = Arg(11) // af
	ARG_AF_ALT = Arg(12) // af'
	ARG_HL     = Arg(13) // hl
	ARG_IX     = Arg(14) // ix
	ARG_IY     = Arg(15) // iy
	ARG_IND_BC = Arg(16) // (bc)
	ARG_IND_DE = Arg(17) // (de)
	ARG_IND_HL = Arg(18) // (hl)
	ARG_IDX_IX = Arg(19) // (ix+d)
	ARG_IDX_IY = Arg(20) // (iy+d)
	ARG_IMM8   = Arg(21) // n
	ARG_IMM16  = Arg(22) // nn
	ARG_EXT    = Arg(23) // (nn)
	ARG_REL    = Arg(24) // e
)

// Size is the number of instruction stream bytes the operand consumes.
func (arg Arg) Size() int {
	switch arg {
	case ARG_IDX_IX, ARG_IDX_IY, ARG_IMM8, ARG_REL:
		return 1
	case ARG_IMM16, ARG_EXT:
		return 2
	}
	return 0
}

// Memory returns true if the operand is a memory reference.
func (arg Arg) Memory() bool {
	switch arg {
	case ARG_IND_BC, ARG_IND_DE, ARG_IND_HL, ARG_IDX_IX, ARG_IDX_IY, ARG_EXT:
		return true
	}
	return false
}

// Prefix bytes selecting the secondary tables.
const (
	PREFIX_IX = byte(0xdd)
	PREFIX_ED = byte(0xed)
	PREFIX_IY = byte(0xfd)
)

// Op describes one opcode. Operand bytes are fetched in Dst, Src order.
type Op struct {
	Mnemonic Mnemonic
	Cond     Cond
	Dst      Arg
	Src      Arg
}

// Valid returns true if the opcode is defined.
func (op Op) Valid() bool {
	return op.Mnemonic != MN_INVALID
}

// Size returns the full encoded length of the opcode, including the
// prefix byte when prefixed.
func (op Op) Size(prefixed bool) (size int) {
	size = 1 + op.Dst.Size() + op.Src.Size()
	if prefixed {
		size++
	}
	return
}

// Table is an opcode family, indexed by the opcode byte.
type Table [256]Op

// Entry is a defined opcode of a table.
type Entry struct {
	Prefix byte // Zero for the primary table.
	Code   byte
	Op     Op
}

// Entries iterates the defined opcodes of the table.
func (table *Table) Entries(prefix byte) iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for code, op := range table {
			if !op.Valid() {
				continue
			}
			if !yield(Entry{Prefix: prefix, Code: byte(code), Op: op}) {
				return
			}
		}
	}
}

var (
	// Register encoding used by the 0x40-0xBF blocks and inc/dec.
	regCodes = [8]Arg{ARG_B, ARG_C, ARG_D, ARG_E, ARG_H, ARG_L, ARG_IND_HL, ARG_A}

	// Accumulator operation encoding used by the 0x80-0xBF block.
	aluCodes = [8]Mnemonic{MN_ADD, MN_ADC, MN_SUB, MN_SBC, MN_AND, MN_XOR, MN_OR, MN_CP}
)

var (
	primaryTable Table
	ixTable      Table
	edTable      Table
	iyTable      Table

	prefixTable = map[byte]*Table{
		PREFIX_IX: &ixTable,
		PREFIX_ED: &edTable,
		PREFIX_IY: &iyTable,
	}
)

// aluOp creates an accumulator operation. Only add, adc and sbc name the
// accumulator as a destination.
func aluOp(mn Mnemonic, src Arg) Op {
	switch mn {
	case MN_ADD, MN_ADC, MN_SBC:
		return Op{Mnemonic: mn, Dst: ARG_A, Src: src}
	}
	return Op{Mnemonic: mn, Src: src}
}

func init() {
	t := &primaryTable

	t[0x00] = Op{Mnemonic: MN_NOP}
	t[0x02] = Op{Mnemonic: MN_LD, Dst: ARG_IND_BC, Src: ARG_A}
	t[0x0a] = Op{Mnemonic: MN_LD, Dst: ARG_A, Src: ARG_IND_BC}
	t[0x12] = Op{Mnemonic: MN_LD, Dst: ARG_IND_DE, Src: ARG_A}
	t[0x1a] = Op{Mnemonic: MN_LD, Dst: ARG_A, Src: ARG_IND_DE}
	t[0x32] = Op{Mnemonic: MN_LD, Dst: ARG_EXT, Src: ARG_A}
	t[0x08] = Op{Mnemonic: MN_EX, Dst: ARG_AF, Src: ARG_AF_ALT}
	t[0xd9] = Op{Mnemonic: MN_EXX}

	for n, reg := range regCodes {
		t[0x04|n<<3] = Op{Mnemonic: MN_INC, Dst: reg}
		t[0x05|n<<3] = Op{Mnemonic: MN_DEC, Dst: reg}
	}

	t[0x10] = Op{Mnemonic: MN_DJNZ, Dst: ARG_REL}
	t[0x18] = Op{Mnemonic: MN_JR, Dst: ARG_REL}
	t[0x20] = Op{Mnemonic: MN_JR, Cond: COND_NZ, Dst: ARG_REL}
	t[0x28] = Op{Mnemonic: MN_JR, Cond: COND_Z, Dst: ARG_REL}
	t[0x30] = Op{Mnemonic: MN_JR, Cond: COND_NC, Dst: ARG_REL}
	t[0x38] = Op{Mnemonic: MN_JR, Cond: COND_C, Dst: ARG_REL}

	for code := 0x40; code < 0x80; code++ {
		if code == 0x76 {
			continue
		}
		t[code] = Op{Mnemonic: MN_LD, Dst: regCodes[(code>>3)&7], Src: regCodes[code&7]}
	}

	for code := 0x80; code < 0xc0; code++ {
		t[code] = aluOp(aluCodes[(code>>3)&7], regCodes[code&7])
	}

	for n, mn := range aluCodes {
		t[0xc6|n<<3] = aluOp(mn, ARG_IMM8)
	}

	t[0xc3] = Op{Mnemonic: MN_JP, Dst: ARG_IMM16}
	t[0xc2] = Op{Mnemonic: MN_JP, Cond: COND_NZ, Dst: ARG_IMM16}
	t[0xca] = Op{Mnemonic: MN_JP, Cond: COND_Z, Dst: ARG_IMM16}
	t[0xd2] = Op{Mnemonic: MN_JP, Cond: COND_NC, Dst: ARG_IMM16}
	t[0xd8] = Op{Mnemonic: MN_JP, Cond: COND_C, Dst: ARG_IMM16}
	t[0xe2] = Op{Mnemonic: MN_JP, Cond: COND_PO, Dst: ARG_IMM16}
	t[0xea] = Op{Mnemonic: MN_JP, Cond: COND_PE, Dst: ARG_IMM16}
	t[0xf2] = Op{Mnemonic: MN_JP, Cond: COND_P, Dst: ARG_IMM16}
	t[0xfa] = Op{Mnemonic: MN_JP, Cond: COND_M, Dst: ARG_IMM16}
	t[0xeb] = Op{Mnemonic: MN_JP, Dst: ARG_HL}

	indexedTable(&ixTable, ARG_IDX_IX, ARG_IX)
	indexedTable(&iyTable, ARG_IDX_IY, ARG_IY)

	t = &ixTable
	t[0xd5] = Op{Mnemonic: MN_LD, Dst: ARG_B, Src: ARG_IMM8}
	t[0xde] = Op{Mnemonic: MN_LD, Dst: ARG_C, Src: ARG_IMM8}
	t[0x1b] = Op{Mnemonic: MN_LD, Dst: ARG_D, Src: ARG_IMM8}
	t[0x1e] = Op{Mnemonic: MN_LD, Dst: ARG_E, Src: ARG_IMM8}
	t[0x2b] = Op{Mnemonic: MN_LD, Dst: ARG_H, Src: ARG_IMM8}
	t[0x78] = Op{Mnemonic: MN_LD, Dst: ARG_IND_HL, Src: ARG_IMM8}

	t = &iyTable
	t[0x2e] = Op{Mnemonic: MN_LD, Dst: ARG_A, Src: ARG_IMM8}
	t[0x3a] = Op{Mnemonic: MN_LD, Dst: ARG_A, Src: ARG_EXT}

	t = &edTable
	t[0x47] = Op{Mnemonic: MN_LD, Dst: ARG_I, Src: ARG_A}
	t[0x4f] = Op{Mnemonic: MN_LD, Dst: ARG_R, Src: ARG_A}
}

// indexedTable fills the opcodes shared by the 0xDD and 0xFD families.
func indexedTable(t *Table, idx Arg, reg Arg) {
	t[0x34] = Op{Mnemonic: MN_INC, Dst: idx}
	t[0x35] = Op{Mnemonic: MN_DEC, Dst: idx}
	t[0x36] = Op{Mnemonic: MN_LD, Dst: idx, Src: ARG_IMM8}

	for n, r := range regCodes {
		if r == ARG_IND_HL {
			continue
		}
		t[0x46|n<<3] = Op{Mnemonic: MN_LD, Dst: r, Src: idx}
		t[0x70|n] = Op{Mnemonic: MN_LD, Dst: idx, Src: r}
	}

	for n, mn := range aluCodes {
		t[0x86|n<<3] = aluOp(mn, idx)
	}

	t[0xe9] = Op{Mnemonic: MN_JP, Dst: reg}
}

// Lookup returns the opcode for a prefix (zero for the primary table) and
// code byte.
func Lookup(prefix byte, code byte) (op Op, ok bool) {
	table := &primaryTable
	if prefix != 0 {
		table, ok = prefixTable[prefix]
		if !ok {
			return
		}
	}

	op = table[code]
	ok = op.Valid()
	return
}

// Prefixes returns the prefix bytes, in ascending order.
func Prefixes() []byte {
	prefixes := make([]byte, 0, len(prefixTable))
	for prefix := range prefixTable {
		prefixes = append(prefixes, prefix)
	}
	slices.Sort(prefixes)
	return prefixes
}

package cpu

import (
	"errors"
)

// Instruction is a decoded instruction.
type Instruction struct {
	Addr   uint16 // Address of the first byte.
	Prefix byte   // Prefix byte, or zero for the primary table.
	Code   byte   // Opcode byte following any prefix.
	Op     Op     // Decoded opcode; invalid if the decode failed.
	Disp   int8   // Displacement for (ix+d), (iy+d) and relative jumps.
	Imm    byte   // 8-bit immediate.
	Word   uint16 // 16-bit immediate or extended address.
	Length uint16 // Bytes consumed from the instruction stream.
}

// Decode the instruction at addr. Memory is not modified. On failure the
// returned instruction still reports the bytes consumed so far.
func Decode(mem Reader, addr uint16) (inst Instruction, err error) {
	pc := addr
	fetch := func() (value byte) {
		value = mem.Read(pc)
		pc++
		return
	}

	inst.Addr = addr
	defer func() {
		inst.Length = pc - addr
	}()

	code := fetch()
	table := &primaryTable
	if prefixed, ok := prefixTable[code]; ok {
		inst.Prefix = code
		table = prefixed
		code = fetch()
	}
	inst.Code = code

	op := table[code]
	if !op.Valid() {
		err = errors.Join(ErrOpcodeUnknown, ErrOpcode{Prefix: inst.Prefix, Code: code})
		return
	}
	inst.Op = op

	for _, arg := range [2]Arg{op.Dst, op.Src} {
		switch arg {
		case ARG_IDX_IX, ARG_IDX_IY, ARG_REL:
			inst.Disp = int8(fetch())
		case ARG_IMM8:
			inst.Imm = fetch()
		case ARG_IMM16, ARG_EXT:
			hi := fetch()
			lo := fetch()
			inst.Word = Wide(hi, lo)
		}
	}

	return
}

// Next returns the address following the instruction.
func (inst Instruction) Next() uint16 {
	return inst.Addr + inst.Length
}

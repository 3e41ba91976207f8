package cpu

import (
	"iter"
	"slices"
)

// Opcode represents a line of assembled code with its source location and
// generated bytes.
type Opcode struct {
	LineNo int
	Addr   int
	Words  []string
	Bytes  []byte
}

// Program is an assembled listing.
type Program struct {
	Opcodes []Opcode
}

// NewProgramBinary wraps a raw memory image as a single data opcode.
func NewProgramBinary(image []byte) (prog *Program) {
	prog = &Program{}
	if len(image) != 0 {
		prog.Opcodes = []Opcode{
			{Words: []string{".db"}, Bytes: slices.Clone(image)},
		}
	}
	return
}

type Debug struct {
	*Opcode
	Index int
}

// Debug locates the opcode covering addr, and the offset of addr in it.
func (prog *Program) Debug(addr uint16) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if int(addr) >= op.Addr && int(addr) < op.Addr+len(op.Bytes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(addr) - op.Addr,
			}
			break
		}
	}

	return
}

// Bytes iterates every assembled byte with its address.
func (prog *Program) Bytes() iter.Seq2[uint16, byte] {
	return func(yield func(addr uint16, value byte) bool) {
		for _, op := range prog.Opcodes {
			for n, value := range op.Bytes {
				if !yield(uint16(op.Addr+n), value) {
					return
				}
			}
		}
	}
}

// Binary returns the memory image of the program, starting at address 0.
// Gaps between opcodes are zero filled.
func (prog *Program) Binary() (image []byte) {
	size := 0
	for _, op := range prog.Opcodes {
		size = max(size, op.Addr+len(op.Bytes))
	}

	image = make([]byte, size)
	for addr, value := range prog.Bytes() {
		image[addr] = value
	}

	return
}

// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"os"
)

var _cpu_defines = map[string]string{
	"MEM_SIZE":      fmt.Sprintf("0x%x", MEM_SIZE),
	"HALT_SENTINEL": fmt.Sprintf("0x%x", HALT_SENTINEL),
	"PREFIX_IX":     fmt.Sprintf("0x%x", PREFIX_IX),
	"PREFIX_ED":     fmt.Sprintf("0x%x", PREFIX_ED),
	"PREFIX_IY":     fmt.Sprintf("0x%x", PREFIX_IY),
}

// Cpu is the simulation context for the processor and its memory.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Registers        // Architectural registers.
	Memory    Memory // Flat 64KiB address space.

	// Diagnostic receives recoverable decode failures. If nil, they are
	// logged.
	Diagnostic func(err error)

	// Output receives the trace of RunUntilHalt. If nil, os.Stdout is used.
	Output io.Writer

	Ticks int // Instructions executed since reset.
}

// NewCpu creates a new CPU with zeroed registers and memory.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Reset the CPU state.
// - Clears the registers and memory.
// - Zeros the tick counter.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Registers = Registers{}
	clear(cpu.Memory[:])
	cpu.Ticks = 0
}

// Load an image into memory at address 0.
func (cpu *Cpu) Load(image []byte) (err error) {
	err = cpu.Memory.Load(image)
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: loaded %d bytes", len(image))
	}

	return
}

// report sends a recoverable failure to the diagnostic sink.
func (cpu *Cpu) report(err error) {
	if cpu.Diagnostic != nil {
		cpu.Diagnostic(err)
		return
	}

	log.Printf("cpu: %v", err)
}

// Disassemble returns the trace text of the instruction at addr.
func (cpu *Cpu) Disassemble(addr uint16) string {
	inst, _ := Decode(&cpu.Memory, addr)
	return inst.String()
}

// Step executes exactly one instruction. Decode failures are reported to
// the diagnostic sink; the program counter is left after the bytes that
// were consumed.
func (cpu *Cpu) Step() {
	inst, err := Decode(&cpu.Memory, cpu.PC)
	cpu.PC = inst.Next()
	if err != nil {
		cpu.report(errors.Join(ErrOpcodeDecode, err))
		return
	}

	err = cpu.Execute(inst)
	if err != nil {
		cpu.report(err)
		return
	}

	cpu.Ticks += 1
}

// Halted returns true if the halt sentinel is at the program counter.
func (cpu *Cpu) Halted() bool {
	return cpu.Memory.Read(cpu.PC) == HALT_SENTINEL
}

// Writer returns the trace output.
func (cpu *Cpu) Writer() io.Writer {
	if cpu.Output == nil {
		return os.Stdout
	}
	return cpu.Output
}

// StepTrace writes the instruction at the program counter to out, steps,
// then writes the register dump.
func (cpu *Cpu) StepTrace(out io.Writer) {
	fmt.Fprintf(out, "> %v\n\n", cpu.Disassemble(cpu.PC))
	cpu.Step()
	fmt.Fprintf(out, "%v\n", &cpu.Registers)
}

// RunUntilHalt steps until the halt sentinel is at the program counter.
// The sentinel is not consumed. With trace set, each instruction is
// written to Output before it executes, followed by the register dump.
func (cpu *Cpu) RunUntilHalt(trace bool) {
	out := cpu.Writer()

	if !trace {
		for !cpu.Halted() {
			cpu.Step()
		}
		return
	}

	fmt.Fprintf(out, "%v\n", &cpu.Registers)
	for !cpu.Halted() {
		cpu.StepTrace(out)
	}
	fmt.Fprintf(out, "> %v\n", cpu.Disassemble(cpu.PC))
}

// Execute executes a single decoded instruction. The program counter must
// already point past it.
func (cpu *Cpu) Execute(inst Instruction) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode{Prefix: inst.Prefix, Code: inst.Code}, err)
		}
	}()

	if cpu.Verbose {
		log.Printf("%04x: %v", inst.Addr, inst)
	}

	op := inst.Op

	switch op.Mnemonic {
	case MN_NOP:
		// pass
	case MN_LD:
		var value byte
		value, err = cpu.getValue(op.Src, inst)
		if err != nil {
			return
		}
		err = cpu.setValue(op.Dst, inst, value)
	case MN_INC, MN_DEC:
		var value byte
		value, err = cpu.getValue(op.Dst, inst)
		if err != nil {
			return
		}
		result, flags := Alu(op.Mnemonic, value, 1, cpu.F.C())
		err = cpu.setValue(op.Dst, inst, result)
		cpu.F = flags
	case MN_ADD, MN_ADC, MN_SUB, MN_SBC, MN_AND, MN_XOR, MN_OR, MN_CP:
		var value byte
		value, err = cpu.getValue(op.Src, inst)
		if err != nil {
			return
		}
		result, flags := Alu(op.Mnemonic, cpu.A, value, cpu.F.C())
		if op.Mnemonic != MN_CP {
			cpu.A = result
		}
		cpu.F = flags
	case MN_JP:
		var target uint16
		switch op.Dst {
		case ARG_IMM16:
			target = inst.Word
		case ARG_HL:
			target = cpu.HL()
		case ARG_IX:
			target = cpu.IX
		case ARG_IY:
			target = cpu.IY
		default:
			err = ErrOpcodeArg
			return
		}
		if cpu.F.Holds(op.Cond) {
			cpu.PC = target
		}
	case MN_JR:
		if cpu.F.Holds(op.Cond) {
			cpu.PC += uint16(int16(inst.Disp))
		}
	case MN_DJNZ:
		cpu.B--
		if cpu.B != 0 {
			cpu.PC += uint16(int16(inst.Disp))
		}
	case MN_EX:
		cpu.ExchangeAF()
	case MN_EXX:
		cpu.Exchange()
	default:
		err = ErrOpcodeDecode
	}

	return
}

// address resolves a memory operand to its address.
func (cpu *Cpu) address(arg Arg, inst Instruction) (addr uint16, err error) {
	switch arg {
	case ARG_IND_BC:
		addr = cpu.BC()
	case ARG_IND_DE:
		addr = cpu.DE()
	case ARG_IND_HL:
		addr = cpu.HL()
	case ARG_IDX_IX:
		addr = cpu.IX + uint16(int16(inst.Disp))
	case ARG_IDX_IY:
		addr = cpu.IY + uint16(int16(inst.Disp))
	case ARG_EXT:
		addr = inst.Word
	default:
		err = ErrOpcodeArg
	}

	return
}

// getValue gets the 8-bit value specified by the operand, based on CPU
// state, memory, or the immediate that followed the opcode.
func (cpu *Cpu) getValue(arg Arg, inst Instruction) (value byte, err error) {
	switch arg {
	case ARG_A:
		value = cpu.A
	case ARG_F:
		value = byte(cpu.F)
	case ARG_B:
		value = cpu.B
	case ARG_C:
		value = cpu.C
	case ARG_D:
		value = cpu.D
	case ARG_E:
		value = cpu.E
	case ARG_H:
		value = cpu.H
	case ARG_L:
		value = cpu.L
	case ARG_I:
		value = cpu.I
	case ARG_R:
		value = cpu.R
	case ARG_IMM8:
		value = inst.Imm
	default:
		var addr uint16
		addr, err = cpu.address(arg, inst)
		if err != nil {
			return
		}
		value = cpu.Memory.Read(addr)
	}

	return
}

// setValue writes an 8-bit value to a register or memory operand.
func (cpu *Cpu) setValue(arg Arg, inst Instruction, value byte) (err error) {
	switch arg {
	case ARG_A:
		cpu.A = value
	case ARG_F:
		cpu.F = Flags(value)
	case ARG_B:
		cpu.B = value
	case ARG_C:
		cpu.C = value
	case ARG_D:
		cpu.D = value
	case ARG_E:
		cpu.E = value
	case ARG_H:
		cpu.H = value
	case ARG_L:
		cpu.L = value
	case ARG_I:
		cpu.I = value
	case ARG_R:
		cpu.R = value
	default:
		var addr uint16
		addr, err = cpu.address(arg, inst)
		if err != nil {
			return
		}
		cpu.Memory.Write(addr, value)
	}

	return
}

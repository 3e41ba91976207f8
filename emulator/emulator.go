// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/z80lite/cpu"
	"github.com/ezrec/z80lite/internal"
)

const (
	LOAD_ADDRESS = 0x0000 // Programs are loaded at the bottom of memory.
)

var _emulator_defines = map[string]string{
	"LOAD_ADDRESS": fmt.Sprintf("0x%x", LOAD_ADDRESS),
}

// Emulator state. CPU + program listing.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.

	Trace bool // If set, each tick writes the instruction trace.
	Limit int  // If non-zero, the most ticks Run will perform.

	Stop func() error // If set, polled before each tick; an error ends Run.

	fault error // Diagnostics of the current tick.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(),
		Program: &cpu.Program{},
	}

	emu.Cpu.Diagnostic = func(err error) {
		emu.fault = errors.Join(emu.fault, err)
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Reset the CPU, and load the program image.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
	emu.fault = nil

	err = emu.Cpu.Load(emu.Program.Binary())

	return
}

// Load a raw memory image as the program, and reset.
func (emu *Emulator) Load(image []byte) (err error) {
	if len(image) > cpu.MEM_SIZE {
		err = cpu.ErrImageSize
		return
	}

	emu.Program = cpu.NewProgramBinary(image)

	return emu.Reset()
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.PC)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single instruction. done is set, without executing
// anything, once the halt sentinel is reached. A recoverable fault is
// returned as an ErrRuntime; the emulator may keep ticking.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	addr := emu.Cpu.PC
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Addr: addr, Err: err}
		}
	}()

	if emu.Cpu.Halted() {
		done = true
		return
	}

	emu.fault = nil
	if emu.Trace {
		emu.Cpu.StepTrace(emu.Cpu.Writer())
	} else {
		emu.Cpu.Step()
	}
	err = emu.fault

	return
}

// Run ticks until the halt sentinel. Faults do not stop the run; they are
// joined into the returned error. The run ends early once Limit ticks
// have executed without reaching the sentinel, or when Stop reports an
// error.
func (emu *Emulator) Run() (err error) {
	out := emu.Cpu.Writer()

	if emu.Trace {
		fmt.Fprintf(out, "%v\n", &emu.Cpu.Registers)
	}

	for ticks := 0; ; {
		if emu.Stop != nil {
			stop_err := emu.Stop()
			if stop_err != nil {
				err = errors.Join(err, stop_err)
				return
			}
		}

		done, tick_err := emu.Tick()
		if tick_err != nil {
			if emu.Verbose {
				log.Printf("emulator: %v", tick_err)
			}
			err = errors.Join(err, tick_err)
		}
		if done {
			break
		}

		ticks++
		if emu.Limit > 0 && ticks >= emu.Limit && !emu.Cpu.Halted() {
			err = errors.Join(err, ErrTickLimit)
			return
		}
	}

	if emu.Trace {
		fmt.Fprintf(out, "> %v\n", emu.Cpu.Disassemble(emu.Cpu.PC))
	}

	return
}

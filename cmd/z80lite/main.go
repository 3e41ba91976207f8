// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"errors"
	"flag"
	"io"
	"log"
	"os"
	"strings"

	"github.com/k0kubun/pp/v3"
	"github.com/mattn/go-isatty"

	"github.com/ezrec/z80lite/cpu"
	"github.com/ezrec/z80lite/emulator"
	"github.com/ezrec/z80lite/monitor"
)

// demoSource jumps over a message, multiplies 3 by 4, and complements
// the result.
const demoSource = `; z80lite demonstration
        jr start
        .db "Hello World!"
start:  ld a, 0
        ld b, 4
        ld c, 3
loop:   add a, c
        djnz loop
        xor 0xff
        nop
`

type options struct {
	compile string
	binary  string
	save    string
	trace   bool
	verbose bool
	listen  string
	pretty  bool
}

// assemble parses source, with the emulator defines available as equates.
func assemble(name string, input io.Reader, verbose bool) (prog *cpu.Program, err error) {
	asm := &cpu.Assembler{Verbose: verbose}
	for key, value := range emulator.NewEmulator().Defines() {
		asm.Predefine(key, value)
	}

	prog, err = asm.Parse(input)
	if err != nil {
		err = errors.Join(errors.New(name), err)
	}

	return
}

// program loads the program named by the options.
func program(opts options) (prog *cpu.Program, err error) {
	switch {
	case len(opts.compile) != 0:
		var inf *os.File
		inf, err = os.Open(opts.compile)
		if err != nil {
			return
		}
		defer inf.Close()

		prog, err = assemble(opts.compile, inf, opts.verbose)
	case len(opts.binary) != 0:
		var image []byte
		image, err = os.ReadFile(opts.binary)
		if err != nil {
			return
		}
		if len(image) > cpu.MEM_SIZE {
			err = errors.Join(errors.New(opts.binary), cpu.ErrImageSize)
			return
		}
		prog = cpu.NewProgramBinary(image)
	default:
		prog, err = assemble("demo", strings.NewReader(demoSource), opts.verbose)
	}

	return
}

// run executes the options, writing the trace and register print to out.
func run(opts options, out io.Writer) (err error) {
	prog, err := program(opts)
	if err != nil {
		return
	}

	if len(opts.save) != 0 {
		err = os.WriteFile(opts.save, prog.Binary(), 0o644)
		return
	}

	setup := func() (emu *emulator.Emulator, err error) {
		emu = emulator.NewEmulator()
		emu.Verbose = opts.verbose
		emu.Program = prog
		err = emu.Reset()
		return
	}

	if len(opts.listen) != 0 {
		return monitor.ListenAndServe(opts.listen, setup)
	}

	emu, err := setup()
	if err != nil {
		return
	}
	emu.Cpu.Output = out
	emu.Trace = opts.trace

	// Faults are reported, and the run continues.
	fault := emu.Run()
	if fault != nil {
		log.Print(fault)
	}

	if opts.pretty {
		printer := pp.New()
		file, ok := out.(*os.File)
		printer.SetColoringEnabled(ok && isatty.IsTerminal(file.Fd()))
		printer.Fprintln(out, emu.Cpu.Registers)
	}

	return
}

func main() {
	var opts options

	flag.StringVar(&opts.compile, "c", "", "assembly file to compile")
	flag.StringVar(&opts.binary, "b", "", "binary image to load")
	flag.StringVar(&opts.save, "s", "", "save the binary image to a file, do not execute")
	flag.BoolVar(&opts.trace, "t", false, "trace each instruction")
	flag.BoolVar(&opts.verbose, "v", false, "Verbose mode")
	flag.StringVar(&opts.listen, "w", "", "serve the trace over websocket at this address")
	flag.BoolVar(&opts.pretty, "p", false, "pretty print the final registers")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if len(opts.compile) != 0 && len(opts.binary) != 0 {
		log.Fatalf("%v: -c and -b are exclusive", os.Args[0])
	}

	err := run(opts, os.Stdout)
	if err != nil {
		log.Fatal(err)
	}
}

// Package cpu implements the processor core and assembler for z80lite.
//
// The CPU is a subset of the Zilog Z80: eight 8-bit primary registers
// (A, F, B, C, D, E, H, L) with a shadow bank, the I and R special
// registers, the IX and IY index registers, a stack pointer and a program
// counter, all backed by a flat 64KiB memory. Instructions are decoded
// through data tables (one per opcode family: primary, 0xDD, 0xED, 0xFD)
// that are shared by the executor, the trace formatter and the assembler.
//
// Execution stops when the byte at the program counter is the halt
// sentinel (0x00). Unknown opcodes are reported to a diagnostic sink and
// execution continues with the next fetch.
package cpu

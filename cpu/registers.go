package cpu

import (
	"fmt"
	"strings"
)

// Wide composes a 16-bit value from its high and low halves.
func Wide(hi, lo byte) uint16 {
	return uint16(hi)<<8 | uint16(lo)
}

// Split a 16-bit value into its high and low halves.
func Split(value uint16) (hi, lo byte) {
	return byte(value >> 8), byte(value)
}

// Bank is one set of the eight primary registers.
type Bank struct {
	A    byte
	F    Flags
	B, C byte
	D, E byte
	H, L byte
}

// BC returns the composed BC register.
func (bank *Bank) BC() uint16 { return Wide(bank.B, bank.C) }

// DE returns the composed DE register.
func (bank *Bank) DE() uint16 { return Wide(bank.D, bank.E) }

// HL returns the composed HL register.
func (bank *Bank) HL() uint16 { return Wide(bank.H, bank.L) }

// SetBC splits value into B and C.
func (bank *Bank) SetBC(value uint16) { bank.B, bank.C = Split(value) }

// SetDE splits value into D and E.
func (bank *Bank) SetDE(value uint16) { bank.D, bank.E = Split(value) }

// SetHL splits value into H and L.
func (bank *Bank) SetHL(value uint16) { bank.H, bank.L = Split(value) }

// Registers is the architectural register file.
type Registers struct {
	Bank        // Primary bank.
	Shadow Bank // Alternate bank, swapped in by ex af,af' and exx.

	I, R byte // Interrupt vector and refresh registers.

	IX, IY uint16 // Index registers.
	SP     uint16 // Stack pointer.
	PC     uint16 // Program counter.
}

// ExchangeAF swaps A and F with their shadows.
func (regs *Registers) ExchangeAF() {
	regs.A, regs.Shadow.A = regs.Shadow.A, regs.A
	regs.F, regs.Shadow.F = regs.Shadow.F, regs.F
}

// Exchange swaps BC, DE and HL with their shadows.
func (regs *Registers) Exchange() {
	a, f := regs.A, regs.F
	regs.Bank, regs.Shadow = regs.Shadow, regs.Bank
	regs.Shadow.A, regs.Shadow.F = regs.A, regs.F
	regs.A, regs.F = a, f
}

// String returns the register dump used by the trace.
func (regs *Registers) String() string {
	var text strings.Builder

	pair := func(n1 string, v1 byte, n2 string, v2 byte, a1 byte, a2 byte) {
		fmt.Fprintf(&text, "%s: 0x%02x  %s: 0x%02x  %s': 0x%02x  %s': 0x%02x\n",
			n1, v1, n2, v2, n1, a1, n2, a2)
	}

	pair("A", regs.A, "F", byte(regs.F), regs.Shadow.A, byte(regs.Shadow.F))
	pair("B", regs.B, "C", regs.C, regs.Shadow.B, regs.Shadow.C)
	pair("D", regs.D, "E", regs.E, regs.Shadow.D, regs.Shadow.E)
	pair("H", regs.H, "L", regs.L, regs.Shadow.H, regs.Shadow.L)
	fmt.Fprintf(&text, "I: 0x%02x  R: 0x%02x\n", regs.I, regs.R)
	fmt.Fprintf(&text, "IX: 0x%04x\n", regs.IX)
	fmt.Fprintf(&text, "IY: 0x%04x\n", regs.IY)
	fmt.Fprintf(&text, "SP: 0x%04x\n", regs.SP)
	fmt.Fprintf(&text, "PC: 0x%04x\n", regs.PC)

	flags := regs.F
	fmt.Fprintf(&text, "S: %v  Z: %v  H: %v  PV: %v  N: %v  C: %v\n",
		flags.S(), flags.Z(), flags.H(), flags.PV(), flags.N(), flags.C())

	return text.String()
}

package cpu

import (
	"math/bits"
)

// Flags is the F register.
type Flags byte

// Flag bits. Bits 3 and 5 are unused and always clear.
const (
	FLAG_C  = Flags(0x01) // Carry
	FLAG_N  = Flags(0x02) // Add/Subtract
	FLAG_PV = Flags(0x04) // Parity/Overflow
	FLAG_H  = Flags(0x10) // Half-carry
	FLAG_Z  = Flags(0x40) // Zero
	FLAG_S  = Flags(0x80) // Sign
)

func (fl Flags) C() bool  { return fl&FLAG_C != 0 }
func (fl Flags) N() bool  { return fl&FLAG_N != 0 }
func (fl Flags) PV() bool { return fl&FLAG_PV != 0 }
func (fl Flags) H() bool  { return fl&FLAG_H != 0 }
func (fl Flags) Z() bool  { return fl&FLAG_Z != 0 }
func (fl Flags) S() bool  { return fl&FLAG_S != 0 }

// Holds reports whether the condition is true for these flags.
func (fl Flags) Holds(cond Cond) bool {
	switch cond {
	case COND_NZ:
		return !fl.Z()
	case COND_Z:
		return fl.Z()
	case COND_NC:
		return !fl.C()
	case COND_C:
		return fl.C()
	case COND_PO:
		return !fl.PV()
	case COND_PE:
		return fl.PV()
	case COND_P:
		return !fl.S()
	case COND_M:
		return fl.S()
	}

	return true
}

// zeroSign derives Z and S from a truncated result.
func zeroSign(result byte) (flags Flags) {
	if result == 0 {
		flags |= FLAG_Z
	}
	if result&0x80 != 0 {
		flags |= FLAG_S
	}
	return
}

// ArithmeticFlags derives the flags for a += b or a -= b, given the
// untruncated result raw. PV is signed overflow here, not parity.
func ArithmeticFlags(a, b byte, raw int, sub bool) (result byte, flags Flags) {
	result = byte(raw)
	flags = zeroSign(result)

	if sub {
		flags |= FLAG_N
		if raw < 0 {
			flags |= FLAG_C
		}
		if (a^b)&(a^result)&0x80 != 0 {
			flags |= FLAG_PV
		}
	} else {
		if raw > 0xff {
			flags |= FLAG_C
		}
		if (a^result)&(b^result)&0x80 != 0 {
			flags |= FLAG_PV
		}
	}

	// Carry or borrow out of bit 3.
	if (int(a)^int(b)^raw)&0x10 != 0 {
		flags |= FLAG_H
	}

	return
}

// LogicalFlags derives the flags for a logical result. PV is even parity.
func LogicalFlags(result byte) (byte, Flags) {
	flags := zeroSign(result)
	if bits.OnesCount8(result)&1 == 0 {
		flags |= FLAG_PV
	}
	return result, flags
}

// Alu performs an 8-bit accumulator operation. carry is the incoming C
// flag, used by adc and sbc. For cp the result is a - b; callers discard it.
func Alu(mn Mnemonic, a, b byte, carry bool) (result byte, flags Flags) {
	ci := 0
	if carry {
		ci = 1
	}

	switch mn {
	case MN_ADD:
		result, flags = ArithmeticFlags(a, b, int(a)+int(b), false)
	case MN_ADC:
		result, flags = ArithmeticFlags(a, b, int(a)+int(b)+ci, false)
	case MN_SUB, MN_CP:
		result, flags = ArithmeticFlags(a, b, int(a)-int(b), true)
	case MN_SBC:
		result, flags = ArithmeticFlags(a, b, int(a)-int(b)-ci, true)
	case MN_AND:
		result, flags = LogicalFlags(a & b)
	case MN_XOR:
		result, flags = LogicalFlags(a ^ b)
	case MN_OR:
		result, flags = LogicalFlags(a | b)
	case MN_INC:
		result, flags = ArithmeticFlags(a, 1, int(a)+1, false)
	case MN_DEC:
		result, flags = ArithmeticFlags(a, 1, int(a)-1, true)
	default:
		panic("alu: unknown mnemonic")
	}

	return
}

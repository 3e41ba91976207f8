package cpu

import (
	"fmt"
	"strings"
)

// index renders an indexed operand with a signed displacement.
func index(reg string, disp int8) string {
	if disp < 0 {
		return fmt.Sprintf("(%s - 0x%02x)", reg, -int(disp))
	}
	return fmt.Sprintf("(%s + 0x%02x)", reg, int(disp))
}

// argString renders one operand.
func (inst Instruction) argString(arg Arg) string {
	switch arg {
	case ARG_IMM8:
		return fmt.Sprintf("0x%02x", inst.Imm)
	case ARG_IMM16:
		return fmt.Sprintf("0x%04x", inst.Word)
	case ARG_EXT:
		return fmt.Sprintf("(0x%04x)", inst.Word)
	case ARG_REL:
		return fmt.Sprintf("0x%02x", byte(inst.Disp))
	case ARG_IDX_IX:
		return index("ix", inst.Disp)
	case ARG_IDX_IY:
		return index("iy", inst.Disp)
	case ARG_HL, ARG_IX, ARG_IY:
		// Register jumps are written as jp (hl).
		if inst.Op.Mnemonic == MN_JP {
			return "(" + arg.String() + ")"
		}
	}

	return arg.String()
}

// String returns the assembly text of the instruction, as used by the trace.
func (inst Instruction) String() string {
	op := inst.Op
	if !op.Valid() {
		if inst.Prefix != 0 {
			return fmt.Sprintf("0x%02x 0x%02x", inst.Prefix, inst.Code)
		}
		return fmt.Sprintf("0x%02x", inst.Code)
	}

	var args []string
	if op.Cond != COND_ALWAYS {
		args = append(args, op.Cond.String())
	}
	for _, arg := range [2]Arg{op.Dst, op.Src} {
		if arg != ARG_NONE {
			args = append(args, inst.argString(arg))
		}
	}

	if len(args) == 0 {
		return op.Mnemonic.String()
	}

	return op.Mnemonic.String() + " " + strings.Join(args, ", ")
}

package cpu

import (
	"errors"

	"github.com/ezrec/z80lite/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrImageSize = errors.New(f("image larger than memory"))

	// Instruction decode errors
	ErrOpcodeDecode  = errors.New(f("decode"))
	ErrOpcodeUnknown = errors.New(f("opcode unknown"))
	ErrOpcodeArg     = errors.New(f("operand"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrEquateRecursive    = errors.New(f(".equ recursive"))
	ErrOrgSyntax          = errors.New(f(".org syntax"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrLabelInvalid       = errors.New(f("label invalid"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrMacroRecursive     = errors.New(f(".macro expansion too deep"))
	ErrOpcodeInvalid      = errors.New(f("opcode invalid"))
	ErrOperandInvalid     = errors.New(f("operand invalid"))
	ErrOperandRange       = errors.New(f("operand out of range"))
	ErrRelativeRange      = errors.New(f("relative jump out of range"))
	ErrDataMissing        = errors.New(f(".db without data"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
)

// ErrOpcode identifies the opcode that failed to decode or execute.
// Prefix is zero for the primary table.
type ErrOpcode struct {
	Prefix byte
	Code   byte
}

func (eo ErrOpcode) Error() string {
	if eo.Prefix == 0 {
		return f("unknown opcode: 0x%02x", eo.Code)
	}
	return f("unknown 0x%02X opcode: 0x%02x", eo.Prefix, eo.Code)
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}

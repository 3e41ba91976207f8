package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assemble(t *testing.T, lines ...string) (prog *Program, err error) {
	asm := &Assembler{}
	return asm.Parse(strings.NewReader(strings.Join(lines, "\n")))
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Opcodes))

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal("0x10000", asm.Equate["MEM_SIZE"])
	assert.Equal("0x0", asm.Equate["HALT_SENTINEL"])
	assert.Equal("0xfd", asm.Equate["PREFIX_IY"])
}

func TestAssemblerDemo(t *testing.T) {
	assert := assert.New(t)

	prog, err := assemble(t,
		"; multiply 3 by 4",
		"        jr start",
		`        .db "Hello World!"`,
		"start:  ld a, 0",
		"        ld b, 4",
		"        ld c, 3",
		"loop:   add a, c",
		"        djnz loop",
		"        xor 0xff",
		"        nop",
	)
	assert.NoError(err)
	assert.Equal(demoImage, prog.Binary())
}

func TestAssemblerOperands(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		line string
		code []byte
	}){
		{"nop", []byte{0x00}},
		{"NOP", []byte{0x00}},
		{"ld a, 'H'", []byte{0xfd, 0x2e, 'H'}},
		{`ld a, '\n'`, []byte{0xfd, 0x2e, '\n'}},
		{"ld a, -1", []byte{0xfd, 0x2e, 0xff}},
		{"ld a, ~0x0f", []byte{0xfd, 0x2e, 0xf0}},
		{"ld a, (0x1234)", []byte{0xfd, 0x3a, 0x12, 0x34}},
		{"ld (0x1234), a", []byte{0x32, 0x12, 0x34}},
		{"ld (ix), a", []byte{0xdd, 0x77, 0x00}},
		{"ld (ix+3), a", []byte{0xdd, 0x77, 0x03}},
		{"ld b, (IY - 2)", []byte{0xfd, 0x46, 0xfe}},
		{"ld (iy + 0x10), 0x20", []byte{0xfd, 0x36, 0x10, 0x20}},
		{"ld (hl), 0x42", []byte{0xdd, 0x78, 0x42}},
		{"ld (hl), b", []byte{0x70}},
		{"ld h, l", []byte{0x65}},
		{"ld i, a", []byte{0xed, 0x47}},
		{"ld r, a", []byte{0xed, 0x4f}},
		{"ld a, (bc)", []byte{0x0a}},
		{"ld (de), a", []byte{0x12}},
		{"add a, (hl)", []byte{0x86}},
		{"adc a, 1", []byte{0xce, 0x01}},
		{"sub b", []byte{0x90}},
		{"sub a, b", []byte{0x90}},
		{"and 0x0f", []byte{0xe6, 0x0f}},
		{"or (ix-1)", []byte{0xdd, 0xb6, 0xff}},
		{"cp 'a'", []byte{0xfe, 'a'}},
		{"inc (hl)", []byte{0x34}},
		{"dec (iy+1)", []byte{0xfd, 0x35, 0x01}},
		{"jp 0x1234", []byte{0xc3, 0x12, 0x34}},
		{"jp pe, 0x1234", []byte{0xea, 0x12, 0x34}},
		{"jp (hl)", []byte{0xeb}},
		{"jp (ix)", []byte{0xdd, 0xe9}},
		{"jp iy", []byte{0xfd, 0xe9}},
		{"jr $", []byte{0x18, 0xfe}},
		{"jr nc, $", []byte{0x30, 0xfe}},
		{"ex af, af'", []byte{0x08}},
		{"exx", []byte{0xd9}},
		{"ld a, $(3 * 4 + 1)", []byte{0xfd, 0x2e, 0x0d}},
		{"ld a, MEM_SIZE >> 8", nil},
		{"ld a, $(MEM_SIZE >> 12)", []byte{0xfd, 0x2e, 0x10}},
		{".db 1, 'x', \"ab;c\" ; comment", []byte{0x01, 'x', 'a', 'b', ';', 'c'}},
	}

	for _, entry := range table {
		prog, err := assemble(t, entry.line)
		if entry.code == nil {
			assert.Error(err, entry.line)
			continue
		}
		if !assert.NoError(err, entry.line) {
			continue
		}
		assert.Equal(entry.code, prog.Binary(), entry.line)
	}
}

func TestAssemblerLabels(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join([]string{
		"        jp forward",
		"back:   jr back",
		"forward: nested: jr back",
		"        ld a, $(forward - back)",
		"        .org 0x100",
		"far:    .db $(far & 0xff), $(far >> 8)",
	}, "\n")))
	assert.NoError(err)

	assert.Equal(map[string]int{"back": 3, "forward": 5, "nested": 5, "far": 0x100}, asm.Label)

	image := prog.Binary()
	assert.Equal([]byte{0xc3, 0x00, 0x05}, image[0:3])
	assert.Equal([]byte{0x18, 0xfe}, image[3:5])
	assert.Equal([]byte{0x18, 0xfc}, image[5:7])
	assert.Equal([]byte{0xfd, 0x2e, 0x02}, image[7:10])
	assert.Equal([]byte{0x00, 0x01}, image[0x100:])
}

func TestAssemblerEquate(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("BASE", "0x4000")
	prog, err := asm.Parse(strings.NewReader(strings.Join([]string{
		".equ COUNT 4",
		".equ COUNTER b",
		".equ TOP $(BASE + COUNT)",
		"ld COUNTER, COUNT",
		"ld (TOP), a",
		"ld a, LINENO",
		".db $(LINENO * 2)",
	}, "\n")))
	assert.NoError(err)

	assert.Equal([]byte{
		0xdd, 0xd5, 0x04,
		0x32, 0x40, 0x04,
		0xfd, 0x2e, 0x06,
		0x0e,
	}, prog.Binary())
	assert.Equal("b", asm.Equate["COUNTER"])
}

func TestAssemblerMacro(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join([]string{
		".macro MUL dst, count",
		"        ld dst, 0",
		"        ld b, count",
		"@loop:  add a, c",
		"        djnz @loop",
		".endm",
		"        ld c, 3",
		"        MUL a, 4",
		"        MUL a, 5",
	}, "\n")))
	assert.NoError(err)

	assert.Equal([]byte{
		0xdd, 0xde, 0x03,
		0xfd, 0x2e, 0x00, 0xdd, 0xd5, 0x04, 0x81, 0x10, 0xfd,
		0xfd, 0x2e, 0x00, 0xdd, 0xd5, 0x05, 0x81, 0x10, 0xfd,
	}, prog.Binary())

	assert.Equal(2, prog.Opcodes[1].LineNo)
	assert.Equal([]string{"ld", "a", "0"}, prog.Opcodes[1].Words)
	assert.Equal(9, asm.Label["MUL_1_loop"])
	assert.Equal(18, asm.Label["MUL_2_loop"])
	assert.Equal([]string{"dst", "count"}, asm.Macro["MUL"].Args)
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		lines  []string
		lineNo int
		err    error
	}){
		{[]string{"halt"}, 1, ErrOpcodeInvalid},
		{[]string{"nop", "ld a, b, c"}, 2, ErrInstructionInvalid},
		{[]string{"ld l, 5"}, 1, ErrInstructionInvalid},
		{[]string{"jp xx, 0"}, 1, ErrOperandInvalid},
		{[]string{"x:", "x: nop"}, 2, ErrLabelDuplicate},
		{[]string{"1x: nop"}, 1, ErrLabelInvalid},
		{[]string{"a: nop"}, 1, ErrLabelInvalid},
		{[]string{"jp nowhere"}, 1, ErrLabelMissing("nowhere")},
		{[]string{"jr far", ".org 0x200", "far: nop"}, 1, ErrRelativeRange},
		{[]string{"ld a, 0x100"}, 1, ErrOperandRange},
		{[]string{"ld a, (ix+128)"}, 1, ErrOperandRange},
		{[]string{"jp 0x10000"}, 1, ErrOperandRange},
		{[]string{".db"}, 1, ErrDataMissing},
		{[]string{".db 256"}, 1, ErrOperandRange},
		{[]string{".equ X"}, 1, ErrEquateSyntax},
		{[]string{".equ X 1", ".equ X 2"}, 2, ErrEquateDuplicate},
		{[]string{".equ X Y", ".equ Y X", "ld a, X"}, 3, ErrEquateRecursive},
		{[]string{".org"}, 1, ErrOrgSyntax},
		{[]string{".org 0x10000"}, 1, ErrOrgSyntax},
		{[]string{"ld a, 0q"}, 1, ErrParseNumber("0q")},
		{[]string{"ld a, $(1 +)"}, 1, ErrParseExpression("1 +")},
		{[]string{".macro M", "nop"}, 2, ErrMacroLonely},
		{[]string{"nop", ".endm"}, 2, ErrMacroLonelyEndm},
		{[]string{".macro M", ".macro N", ".endm"}, 2, ErrMacroNesting},
		{[]string{".macro M", ".endm", ".macro M", ".endm"}, 3, ErrMacroDuplicate},
		{[]string{".macro M x", "ld a, x", ".endm", "M"}, 4, ErrMacroSyntax},
		{[]string{".macro M x", "ld a, x", ".endm", "M 0x100"}, 2, ErrOperandRange},
		{[]string{".macro M x", "ld q, x", ".endm", "M 1"}, 4, ErrInstructionInvalid},
		{[]string{".macro L", "L", ".endm", "L"}, 4, ErrMacroRecursive},
		{[]string{".macro L", "nop", "L", ".endm", "L"}, 5, ErrMacroRecursive},
		{[]string{".org 0xffff", "jp 0"}, 2, ErrImageSize},
	}

	for _, entry := range table {
		_, err := assemble(t, entry.lines...)
		assert.ErrorIs(err, entry.err, "%v", entry.lines)

		var syntax *ErrSyntax
		if assert.True(errors.As(err, &syntax), "%v", entry.lines) {
			assert.Equal(entry.lineNo, syntax.LineNo, "%v", entry.lines)
		}
	}
}

func TestAssemblerMacroError(t *testing.T) {
	assert := assert.New(t)

	_, err := assemble(t, ".macro M x", "ld q, x", ".endm", "M 1")
	assert.Equal("line 4 'M 1' macro M line 2 instruction invalid", err.Error())

	asm := &Assembler{}
	_, err = asm.Parse(strings.NewReader(".macro L\nL\n.endm\nL\n"))
	assert.ErrorIs(err, ErrMacroRecursive)
	assert.Equal(MACRO_DEPTH, asm.expansions)
	assert.Equal(0, asm.depth)

	// Nesting below the limit still expands.
	prog, err := assemble(t,
		".macro INNER",
		"        inc a",
		".endm",
		".macro OUTER",
		"        INNER",
		"        INNER",
		".endm",
		"        OUTER",
	)
	assert.NoError(err)
	assert.Equal([]byte{0x3c, 0x3c}, prog.Binary())
}

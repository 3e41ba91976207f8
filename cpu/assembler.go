// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/z80lite/internal"
)

// MACRO_DEPTH is the deepest macro invocation nesting.
const MACRO_DEPTH = 16

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// pending is the part of an opcode that is resolved once all labels are
// known.
type pending struct {
	line  string    // Source text, after macro expansion.
	entry Entry     // Matched opcode, unless data is set.
	exprs [2]string // Operand expressions, in Dst, Src order.
	data  []string  // .db items.
}

// Assembler is a two pass macro assembler. The first pass sizes every
// line and assigns labels, the second pass encodes operands.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	origin     int       // Address of the next opcode.
	expansions int       // Macro expansions so far.
	depth      int       // Macro expansions in progress.
	here       int       // Address of the opcode being encoded.
	pending    []pending // Parallel to Opcode.
}

// Define defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

var (
	reIdentifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	reWord       = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)
)

// mnemonicMap maps mnemonic names, and condMap condition names.
var (
	mnemonicMap = map[string]Mnemonic{}
	condMap     = map[string]Cond{}
)

// reserved names can never be values.
var reserved = map[string]bool{
	"bc": true,
	"de": true,
	"sp": true,
}

func init() {
	for mn := MN_NOP; mn <= MN_EXX; mn++ {
		mnemonicMap[mn.String()] = mn
	}
	for cond := COND_NZ; cond <= COND_M; cond++ {
		condMap[cond.String()] = cond
	}
	for arg := ARG_A; arg <= ARG_IY; arg++ {
		reserved[arg.String()] = true
	}
}

// opIndex lists every table entry by mnemonic, in primary, 0xDD, 0xED,
// 0xFD order.
var opIndex = sync.OnceValue(func() (index map[Mnemonic][]Entry) {
	index = map[Mnemonic][]Entry{}
	for entry := range internal.IterSeqConcat(
		primaryTable.Entries(0),
		ixTable.Entries(PREFIX_IX),
		edTable.Entries(PREFIX_ED),
		iyTable.Entries(PREFIX_IY),
	) {
		mn := entry.Op.Mnemonic
		index[mn] = append(index[mn], entry)
	}
	return
})

// quoted returns the length of a string or character literal at the start
// of text, or zero if there is none.
func quoted(text string) int {
	switch {
	case strings.HasPrefix(text, `"`):
		for n := 1; n < len(text); n++ {
			switch text[n] {
			case '\\':
				n++
			case '"':
				return n + 1
			}
		}
		return len(text)
	case len(text) >= 3 && text[0] == '\'' && text[1] != '\\' && text[2] == '\'':
		return 3
	case len(text) >= 4 && text[0] == '\'' && text[1] == '\\' && text[3] == '\'':
		return 4
	}

	return 0
}

// stripComment removes a ';' comment that is not inside a literal.
func stripComment(line string) string {
	for n := 0; n < len(line); n++ {
		if size := quoted(line[n:]); size > 0 {
			n += size - 1
			continue
		}
		if line[n] == ';' {
			return line[:n]
		}
	}
	return line
}

// splitOperands splits comma separated operands, ignoring commas in
// literals and parentheses.
func splitOperands(text string) (operands []string) {
	text = strings.TrimSpace(text)
	if len(text) == 0 {
		return
	}

	depth := 0
	start := 0
	for n := 0; n < len(text); n++ {
		if size := quoted(text[n:]); size > 0 {
			n += size - 1
			continue
		}
		switch text[n] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				operands = append(operands, strings.TrimSpace(text[start:n]))
				start = n + 1
			}
		}
	}
	operands = append(operands, strings.TrimSpace(text[start:]))

	return
}

// charValue evaluates a 'x' character literal.
func charValue(word string) (value int, ok bool) {
	if quoted(word) != len(word) || word[0] != '\'' {
		return
	}

	str := word[1 : len(word)-1]
	if str[0] == '\\' {
		switch str[1] {
		case '\\':
			value = '\\'
		case '\'':
			value = '\''
		case 'n':
			value = '\n'
		case 'r':
			value = '\r'
		case 't':
			value = '\t'
		case '0':
			value = 0
		case 'e':
			value = 0x1b
		default:
			return
		}
	} else {
		value = int(str[0])
	}

	ok = true
	return
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value int, err error) {
	return asm.valueOfDepth(word, 0)
}

func (asm *Assembler) valueOfDepth(word string, depth int) (value int, err error) {
	if depth > 16 {
		err = ErrEquateRecursive
		return
	}

	word = strings.TrimSpace(word)
	if len(word) == 0 {
		err = ErrOperandInvalid
		return
	}

	if strings.HasPrefix(word, "$(") && strings.HasSuffix(word, ")") {
		return asm.parenEval(word[2:len(word)-1], depth+1)
	}

	if word == "$" {
		value = asm.here
		return
	}

	if word[0] == '~' {
		value, err = asm.valueOfDepth(word[1:], depth+1)
		value = ^value
		return
	}

	if v, ok := charValue(word); ok {
		value = v
		return
	}

	if equate, ok := asm.Equate[word]; ok {
		return asm.valueOfDepth(equate, depth+1)
	}

	if addr, ok := asm.Label[word]; ok {
		value = addr
		return
	}

	v64, perr := strconv.ParseInt(word, 0, 32)
	if perr == nil {
		value = int(v64)
		return
	}

	if word[0] == '-' {
		value, err = asm.valueOfDepth(word[1:], depth+1)
		value = -value
		return
	}

	if reIdentifier.MatchString(word) {
		err = ErrLabelMissing(word)
		return
	}

	err = ErrParseNumber(word)
	return
}

// parenEval does compile-time $(...) evaluations. Only the labels and
// equates the expression names are visible to it.
func (asm *Assembler) parenEval(expr string, depth int) (value int, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for _, key := range reWord.FindAllString(expr, -1) {
		if _, ok := pred[key]; ok {
			continue
		}
		if str, ok := asm.Equate[key]; ok {
			var v int
			v, err = asm.valueOfDepth(str, depth+1)
			if errors.Is(err, ErrEquateRecursive) {
				return
			}
			if err != nil {
				// Ignore non-integer equates. They may be registers
				// or something else.
				err = nil
				continue
			}
			pred[key] = starlark.MakeInt(v)
			continue
		}
		if addr, ok := asm.Label[key]; ok {
			pred[key] = starlark.MakeInt(addr)
		}
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = errors.Join(ErrParseExpression(expr), err)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = int(st_int64)
	return
}

// compact lower-cases an operand and removes its spaces.
func compact(text string) string {
	return strings.ToLower(strings.ReplaceAll(text, " ", ""))
}

// indexExpr matches (ix+d) style operands, returning the displacement
// expression.
func indexExpr(reg string, text string) (expr string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "(") || !strings.HasSuffix(text, ")") {
		return
	}

	inner := strings.TrimSpace(text[1 : len(text)-1])
	if len(inner) < 2 || strings.ToLower(inner[:2]) != reg {
		return
	}

	rest := strings.TrimSpace(inner[2:])
	switch {
	case len(rest) == 0:
		expr = "0"
	case rest[0] == '+':
		expr = strings.TrimSpace(rest[1:])
	case rest[0] == '-':
		expr = "-" + strings.TrimSpace(rest[1:])
	default:
		return
	}

	ok = len(expr) > 0 && expr != "-"
	return
}

// isValue returns true if the operand text can be an expression.
func isValue(text string) bool {
	return len(text) > 0 && text[0] != '(' && !reserved[compact(text)]
}

// matchArg checks an operand against an opcode argument slot, returning
// the expression to encode, if any.
func matchArg(arg Arg, text string) (expr string, ok bool) {
	lower := compact(text)

	switch arg {
	case ARG_IDX_IX:
		return indexExpr("ix", text)
	case ARG_IDX_IY:
		return indexExpr("iy", text)
	case ARG_IMM8, ARG_IMM16, ARG_REL:
		if isValue(text) {
			expr, ok = text, true
		}
	case ARG_EXT:
		if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") {
			inner := strings.TrimSpace(text[1 : len(text)-1])
			_, ix := indexExpr("ix", text)
			_, iy := indexExpr("iy", text)
			if isValue(inner) && !ix && !iy {
				expr, ok = inner, true
			}
		}
	case ARG_HL, ARG_IX, ARG_IY:
		ok = lower == arg.String() || lower == "("+arg.String()+")"
	default:
		ok = lower == arg.String()
	}

	return
}

// matchOp finds the table entry for a mnemonic and its operands.
func matchOp(name string, operands []string) (entry Entry, exprs [2]string, err error) {
	mn, ok := mnemonicMap[strings.ToLower(name)]
	if !ok {
		err = ErrOpcodeInvalid
		return
	}

	cond := COND_ALWAYS
	if (mn == MN_JP || mn == MN_JR) && len(operands) == 2 {
		cond, ok = condMap[compact(operands[0])]
		if !ok {
			err = ErrOperandInvalid
			return
		}
		operands = operands[1:]
	}

	// sub, and, xor, or and cp may name the accumulator.
	switch mn {
	case MN_SUB, MN_AND, MN_XOR, MN_OR, MN_CP:
		if len(operands) == 2 && compact(operands[0]) == "a" {
			operands = operands[1:]
		}
	}

	for _, candidate := range opIndex()[mn] {
		op := candidate.Op
		if op.Cond != cond {
			continue
		}

		slots := []int{}
		for n, arg := range [2]Arg{op.Dst, op.Src} {
			if arg != ARG_NONE {
				slots = append(slots, n)
			}
		}
		if len(slots) != len(operands) {
			continue
		}

		var found [2]string
		matched := true
		for n, slot := range slots {
			arg := [2]Arg{op.Dst, op.Src}[slot]
			expr, ok := matchArg(arg, operands[n])
			if !ok {
				matched = false
				break
			}
			found[slot] = expr
		}

		if matched {
			entry = candidate
			exprs = found
			return
		}
	}

	err = ErrInstructionInvalid
	return
}

// emit appends an opcode of the given size at the current origin.
func (asm *Assembler) emit(lineno int, words []string, size int, pend pending) (err error) {
	if asm.origin+size > MEM_SIZE {
		err = ErrImageSize
		return
	}

	opcode := Opcode{
		LineNo: lineno,
		Addr:   asm.origin,
		Words:  words,
		Bytes:  make([]byte, 0, size),
	}
	asm.Opcode = append(asm.Opcode, opcode)
	asm.pending = append(asm.pending, pend)
	asm.origin += size

	return
}

// expand substitutes macro arguments and parses the macro lines.
func (asm *Assembler) expand(name string, macro *Macro, text string, lineno int) (err error) {
	args := splitOperands(text)
	if len(args) != len(macro.Args) {
		err = ErrMacroSyntax
		return
	}

	if asm.depth >= MACRO_DEPTH {
		err = ErrMacroRecursive
		return
	}
	asm.depth++
	defer func() { asm.depth-- }()

	asm.expansions++
	unique := fmt.Sprintf("%v_%v_", name, asm.expansions)

	for n, line := range macro.Lines {
		lineno := macro.LineNo + n

		for a, arg := range macro.Args {
			re := regexp.MustCompile(`\b` + regexp.QuoteMeta(arg) + `\b`)
			line = re.ReplaceAllLiteralString(line, args[a])
		}
		line = strings.ReplaceAll(line, "@", unique)

		err = asm.parseLine(line, lineno)
		if err != nil {
			err = &ErrMacro{Macro: name, Line: lineno, Err: err}
			return
		}
	}

	return
}

// parseLine parses a single line, sizing any opcode or data it holds.
func (asm *Assembler) parseLine(line string, lineno int) (err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)
	asm.here = asm.origin

	source := strings.TrimSpace(line)
	line = strings.TrimSpace(strings.ReplaceAll(source, "\t", " "))

	for {
		word, rest, _ := strings.Cut(line, " ")
		if !strings.HasSuffix(word, ":") {
			break
		}
		label := word[:len(word)-1]
		if !reIdentifier.MatchString(label) || reserved[strings.ToLower(label)] {
			err = ErrLabelInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		asm.Label[label] = asm.origin
		line = strings.TrimSpace(rest)
	}

	if len(line) == 0 {
		return
	}

	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case ".equ":
		// .equ CONST VALUE
		key, value, _ := strings.Cut(rest, " ")
		value = strings.TrimSpace(value)
		if !reIdentifier.MatchString(key) || len(value) == 0 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[key]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[key] = value
		return
	case ".org":
		// .org ADDRESS
		if len(rest) == 0 {
			err = ErrOrgSyntax
			return
		}
		var addr int
		addr, err = asm.valueOf(rest)
		if err != nil {
			err = errors.Join(ErrOrgSyntax, err)
			return
		}
		if addr < 0 || addr >= MEM_SIZE {
			err = errors.Join(ErrOrgSyntax, ErrOperandRange)
			return
		}
		asm.origin = addr
		return
	case ".db":
		// .db ITEM, ...
		items := splitOperands(rest)
		if len(items) == 0 {
			err = ErrDataMissing
			return
		}
		size := 0
		for _, item := range items {
			if strings.HasPrefix(item, `"`) {
				var str string
				str, err = strconv.Unquote(item)
				if err != nil {
					err = errors.Join(ErrOperandInvalid, err)
					return
				}
				size += len(str)
			} else {
				size++
			}
		}
		words := append([]string{name}, items...)
		err = asm.emit(lineno, words, size, pending{line: source, data: items})
		return
	}

	macro, ok := asm.Macro[name]
	if ok {
		return asm.expand(name, macro, rest, lineno)
	}

	operands := splitOperands(rest)
	for n, operand := range operands {
		// Equates may name registers as well as values.
		for depth := 0; depth < 16; depth++ {
			equate, ok := asm.Equate[operand]
			if !ok {
				break
			}
			operand = equate
		}
		operands[n] = operand
	}

	entry, exprs, err := matchOp(name, operands)
	if err != nil {
		return
	}

	if asm.Verbose {
		log.Printf("%v: %v => %02x %02x %v", lineno, name, entry.Prefix, entry.Code, entry.Op)
	}

	words := append([]string{strings.ToLower(name)}, operands...)
	err = asm.emit(lineno, words, entry.Op.Size(entry.Prefix != 0), pending{line: source, entry: entry, exprs: exprs})
	return
}

// encodeData resolves the items of a .db line.
func (asm *Assembler) encodeData(op *Opcode, items []string) (err error) {
	for _, item := range items {
		if strings.HasPrefix(item, `"`) {
			str, _ := strconv.Unquote(item)
			op.Bytes = append(op.Bytes, str...)
			continue
		}

		var value int
		value, err = asm.valueOf(item)
		if err != nil {
			return
		}
		if value < -128 || value > 255 {
			err = ErrOperandRange
			return
		}
		op.Bytes = append(op.Bytes, byte(value))
	}

	return
}

// encode resolves the operand expressions of an opcode into its bytes.
func (asm *Assembler) encode(op *Opcode, pend pending) (err error) {
	asm.here = op.Addr

	if pend.data != nil {
		return asm.encodeData(op, pend.data)
	}

	entry := pend.entry
	if entry.Prefix != 0 {
		op.Bytes = append(op.Bytes, entry.Prefix)
	}
	op.Bytes = append(op.Bytes, entry.Code)

	next := op.Addr + entry.Op.Size(entry.Prefix != 0)

	for slot, arg := range [2]Arg{entry.Op.Dst, entry.Op.Src} {
		if arg.Size() == 0 {
			continue
		}

		var value int
		value, err = asm.valueOf(pend.exprs[slot])
		if err != nil {
			return
		}

		switch arg {
		case ARG_IDX_IX, ARG_IDX_IY:
			if value < -128 || value > 127 {
				err = ErrOperandRange
				return
			}
			op.Bytes = append(op.Bytes, byte(value))
		case ARG_IMM8:
			if value < -128 || value > 255 {
				err = ErrOperandRange
				return
			}
			op.Bytes = append(op.Bytes, byte(value))
		case ARG_IMM16, ARG_EXT:
			if value < -0x8000 || value > 0xffff {
				err = ErrOperandRange
				return
			}
			hi, lo := Split(uint16(value))
			op.Bytes = append(op.Bytes, hi, lo)
		case ARG_REL:
			disp := value - next
			if disp < -128 || disp > 127 {
				err = ErrRelativeRange
				return
			}
			op.Bytes = append(op.Bytes, byte(disp))
		}
	}

	return
}

// Parse parses an input stream into a Program containing opcodes.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = make(map[string]int)
	asm.Opcode = asm.Opcode[:0]
	asm.pending = asm.pending[:0]
	asm.origin = 0
	asm.expansions = 0
	asm.depth = 0
	asm.here = 0
	asm.Macro = make(map[string](*Macro))
	asm.Equate = maps.Clone(_cpu_defines)
	asm.Equate["LINENO"] = "0"
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		line = strings.TrimSpace(stripComment(text))
		words := strings.Fields(line)

		// .macro NAME arg, ...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 || !reIdentifier.MatchString(words[1]) {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			args := strings.TrimSpace(strings.TrimPrefix(line, ".macro"))
			macro.Args = splitOperands(strings.TrimPrefix(args, words[1]))
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Resolve operands now that every label is known.
	for n := range asm.Opcode {
		op := &asm.Opcode[n]
		pend := asm.pending[n]

		asm.Equate["LINENO"] = fmt.Sprintf("%v", op.LineNo)
		err = asm.encode(op, pend)
		if err != nil {
			lineno = op.LineNo
			line = pend.line
			return
		}
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

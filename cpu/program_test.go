package cpu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgramBinary(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{
			{LineNo: 1, Addr: 0, Words: []string{"nop"}, Bytes: []byte{0x00}},
			{LineNo: 3, Addr: 4, Words: []string{"ld", "b", "4"}, Bytes: []byte{0xdd, 0xd5, 0x04}},
		},
	}

	assert.Equal([]byte{0x00, 0, 0, 0, 0xdd, 0xd5, 0x04}, prog.Binary())

	var addrs []uint16
	for addr := range prog.Bytes() {
		addrs = append(addrs, addr)
	}
	assert.Equal([]uint16{0, 4, 5, 6}, addrs)

	dbg := prog.Debug(5)
	assert.NotNil(dbg.Opcode)
	assert.Equal(3, dbg.LineNo)
	assert.Equal(1, dbg.Index)

	dbg = prog.Debug(2)
	assert.Nil(dbg.Opcode)
}

func TestProgramFromBinary(t *testing.T) {
	assert := assert.New(t)

	prog := NewProgramBinary(demoImage)
	assert.Equal(demoImage, prog.Binary())
	assert.Len(prog.Opcodes, 1)

	prog = NewProgramBinary(nil)
	assert.Empty(prog.Binary())
}

func TestProgramListing(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join([]string{
		"start:  ld a, 5",
		"        .org 0x10",
		"        jp start",
	}, "\n")))
	assert.NoError(err)

	expected := []Opcode{
		{1, 0, []string{"ld", "a", "5"}, []byte{0xfd, 0x2e, 0x05}},
		{3, 0x10, []string{"jp", "start"}, []byte{0xc3, 0x00, 0x00}},
	}
	assert.Equal(expected, prog.Opcodes)

	dbg := prog.Debug(0x11)
	assert.Equal(3, dbg.LineNo)
	assert.Equal(0x13, len(prog.Binary()))
}

package cpu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistersWide(t *testing.T) {
	assert := assert.New(t)

	regs := &Registers{}
	for value := range 0x10000 {
		hi, lo := byte(value>>8), byte(value)

		regs.B, regs.C = hi, lo
		regs.D, regs.E = hi, lo
		regs.H, regs.L = hi, lo
		if regs.BC() != uint16(value) || regs.DE() != uint16(value) || regs.HL() != uint16(value) {
			assert.Fail("compose", "0x%04x", value)
			return
		}

		regs.SetBC(uint16(value))
		regs.SetDE(uint16(value))
		regs.SetHL(uint16(value))
		if regs.B != hi || regs.C != lo || regs.D != hi || regs.E != lo || regs.H != hi || regs.L != lo {
			assert.Fail("split", "0x%04x", value)
			return
		}
	}

	assert.Equal(uint16(0x1234), Wide(0x12, 0x34))
}

func TestRegistersExchange(t *testing.T) {
	assert := assert.New(t)

	regs := &Registers{}
	regs.Bank = Bank{A: 1, F: FLAG_Z, B: 2, C: 3, D: 4, E: 5, H: 6, L: 7}
	regs.Shadow = Bank{A: 11, F: FLAG_C, B: 12, C: 13, D: 14, E: 15, H: 16, L: 17}

	regs.ExchangeAF()
	assert.Equal(byte(11), regs.A)
	assert.Equal(FLAG_C, regs.F)
	assert.Equal(byte(1), regs.Shadow.A)
	assert.Equal(FLAG_Z, regs.Shadow.F)
	assert.Equal(byte(2), regs.B)

	regs.ExchangeAF()
	regs.Exchange()
	assert.Equal(Bank{A: 1, F: FLAG_Z, B: 12, C: 13, D: 14, E: 15, H: 16, L: 17}, regs.Bank)
	assert.Equal(Bank{A: 11, F: FLAG_C, B: 2, C: 3, D: 4, E: 5, H: 6, L: 7}, regs.Shadow)

	regs.Exchange()
	assert.Equal(Bank{A: 1, F: FLAG_Z, B: 2, C: 3, D: 4, E: 5, H: 6, L: 7}, regs.Bank)
}

func TestRegistersString(t *testing.T) {
	assert := assert.New(t)

	regs := &Registers{}
	expected := []string{
		"A: 0x00  F: 0x00  A': 0x00  F': 0x00",
		"B: 0x00  C: 0x00  B': 0x00  C': 0x00",
		"D: 0x00  E: 0x00  D': 0x00  E': 0x00",
		"H: 0x00  L: 0x00  H': 0x00  L': 0x00",
		"I: 0x00  R: 0x00",
		"IX: 0x0000",
		"IY: 0x0000",
		"SP: 0x0000",
		"PC: 0x0000",
		"S: false  Z: false  H: false  PV: false  N: false  C: false",
		"",
	}
	assert.Equal(strings.Join(expected, "\n"), regs.String())

	regs.A = 0xf3
	regs.F = FLAG_S | FLAG_PV
	regs.Shadow.L = 0x5a
	regs.IX = 0x1234
	regs.PC = 0x001c
	expected = []string{
		"A: 0xf3  F: 0x84  A': 0x00  F': 0x00",
		"B: 0x00  C: 0x00  B': 0x00  C': 0x00",
		"D: 0x00  E: 0x00  D': 0x00  E': 0x00",
		"H: 0x00  L: 0x00  H': 0x00  L': 0x5a",
		"I: 0x00  R: 0x00",
		"IX: 0x1234",
		"IY: 0x0000",
		"SP: 0x0000",
		"PC: 0x001c",
		"S: true  Z: false  H: false  PV: true  N: false  C: false",
		"",
	}
	assert.Equal(strings.Join(expected, "\n"), regs.String())
}

func TestMemory(t *testing.T) {
	assert := assert.New(t)

	mem := &Memory{}
	mem.Write(0xffff, 0x42)
	assert.Equal(byte(0x42), mem.Read(0xffff))

	err := mem.Load([]byte{1, 2, 3})
	assert.NoError(err)
	assert.Equal(byte(2), mem.Read(1))
	assert.Equal(byte(0x42), mem.Read(0xffff))

	err = mem.Load(make([]byte, MEM_SIZE))
	assert.NoError(err)

	err = mem.Load(make([]byte, MEM_SIZE+1))
	assert.ErrorIs(err, ErrImageSize)
}

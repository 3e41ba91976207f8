package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("opcode invalid", From("opcode invalid"))
	assert.Equal("line 7: bad", From("line %d: %v", 7, "bad"))
	assert.Equal("address 0x002a", From("address 0x%04x", 42))
}

package cpu

const (
	MEM_SIZE      = 0x10000 // Every 16-bit address is backed.
	HALT_SENTINEL = 0x00    // Opcode that stops the run loop.
)

// Reader is the read side of memory, as used by the decoder.
type Reader interface {
	Read(addr uint16) byte
}

// Memory is the flat, unmapped address space.
type Memory [MEM_SIZE]byte

var _ Reader = (*Memory)(nil)

// Read a byte.
func (mem *Memory) Read(addr uint16) byte {
	return mem[addr]
}

// Write a byte.
func (mem *Memory) Write(addr uint16, value byte) {
	mem[addr] = value
}

// Load an image at address 0. Memory beyond the image is untouched.
func (mem *Memory) Load(image []byte) (err error) {
	if len(image) > len(mem) {
		err = ErrImageSize
		return
	}

	copy(mem[:], image)

	return
}

package chip8

// Instruction is a decoded 16-bit opcode. All operand fields are
// extracted up front; which of them are meaningful depends on the
// instruction family. Instructions are produced by Decode and consumed
// immediately by Execute, they are never stored.
type Instruction struct {
	Op  byte   // top nibble, selects the instruction family
	X   byte   // second nibble, a register index
	Y   byte   // third nibble, a register index
	N   byte   // low nibble immediate
	NN  byte   // low byte immediate
	NNN uint16 // low 12 bits, an address
}

// Decode slices an opcode into its operand fields. It is total over
// all 16-bit values; instructions that match nothing are handled as
// no-ops by Execute.
func Decode(opcode uint16) Instruction {
	return Instruction{
		Op:  byte(opcode >> 12),
		X:   byte(opcode >> 8 & 0xF),
		Y:   byte(opcode >> 4 & 0xF),
		N:   byte(opcode & 0xF),
		NN:  byte(opcode & 0xFF),
		NNN: opcode & 0xFFF,
	}
}

package chip8

import (
	"errors"
	"fmt"
)

// Action tells the driver what an executed instruction asks of it.
type Action int

const (
	// None means the display is unchanged.
	None Action = iota

	// Redraw means the display changed and must be forwarded to the
	// rendering collaborator.
	Redraw
)

// ErrAddressRange is returned when an instruction touches memory beyond
// 0xFFF. This is a defect in the loaded program, not a recoverable
// condition: execution must stop rather than wrap or truncate the
// access.
var ErrAddressRange = errors.New("memory access out of range")

// Execute performs a single instruction transition. It mutates the
// machine state according to the opcode's semantics, reads the keyboard
// snapshot where the instruction calls for it, and reports whether the
// display changed.
//
// Unmatched opcodes are no-ops, as are stack overflow and underflow on
// call/return. Only out-of-range memory access fails.
func (vm *Chip8) Execute(inst Instruction, keys Keyboard) (Action, error) {
	switch inst.Op {
	case 0x0:
		switch inst.NN {
		case 0xE0:
			vm.Display = [DisplayHeight][DisplayWidth]byte{}
			return Redraw, nil
		case 0xEE:
			vm.ret()
		default:
			// 0NNN machine-language call, unimplemented
		}
	case 0x1:
		vm.PC = inst.NNN
	case 0x2:
		vm.call(inst.NNN)
	case 0x3:
		vm.skipIf(vm.V[inst.X] == inst.NN)
	case 0x4:
		vm.skipIf(vm.V[inst.X] != inst.NN)
	case 0x5:
		vm.skipIf(vm.V[inst.X] == vm.V[inst.Y])
	case 0x6:
		vm.V[inst.X] = inst.NN
	case 0x7:
		// wraps modulo 256, no carry flag
		vm.V[inst.X] += inst.NN
	case 0x8:
		vm.alu(inst)
	case 0x9:
		vm.skipIf(vm.V[inst.X] != vm.V[inst.Y])
	case 0xA:
		vm.I = inst.NNN
	case 0xB:
		vm.jumpOffset(inst)
	case 0xC:
		vm.V[inst.X] = byte(vm.rnd.Intn(0x100)) & inst.NN
	case 0xD:
		if err := vm.draw(inst); err != nil {
			return None, err
		}
		return Redraw, nil
	case 0xE:
		switch inst.NN {
		case 0x9E:
			vm.skipIf(keys.Held[vm.V[inst.X]&0xF])
		case 0xA1:
			vm.skipIf(!keys.Held[vm.V[inst.X]&0xF])
		}
	case 0xF:
		return None, vm.misc(inst, keys)
	}

	return None, nil
}

// skipIf advances PC over the next instruction when cond holds.
func (vm *Chip8) skipIf(cond bool) {
	if cond {
		vm.PC += 2
	}
}

// call pushes the return address and jumps. When all 16 stack entries
// are in use the push is dropped but the jump still happens.
func (vm *Chip8) call(addr uint16) {
	if int(vm.SP) < len(vm.Stack)-1 {
		vm.SP++
		vm.Stack[vm.SP] = vm.PC
	}
	vm.PC = addr
}

// ret pops the stack into PC. On an empty stack it is a no-op.
func (vm *Chip8) ret() {
	if vm.SP >= 0 {
		vm.PC = vm.Stack[vm.SP]
		vm.SP--
	}
}

// jumpOffset implements BNNN: ModeChip8 offsets the target by V0,
// ModeChip48 by Vx.
func (vm *Chip8) jumpOffset(inst Instruction) {
	switch vm.Mode {
	case ModeChip8:
		vm.PC = inst.NNN + uint16(vm.V[0])
	case ModeChip48:
		vm.PC = inst.NNN + uint16(vm.V[inst.X])
	}
}

// alu executes the 8XYN register-to-register family. Results are
// written to Vx before the flag goes to VF, so the flag wins when X is
// 0xF.
func (vm *Chip8) alu(inst Instruction) {
	x, y := inst.X, inst.Y

	switch inst.N {
	case 0x0:
		vm.V[x] = vm.V[y]
	case 0x1:
		vm.V[x] |= vm.V[y]
		if vm.Mode == ModeChip8 {
			vm.V[0xF] = 0
		}
	case 0x2:
		vm.V[x] &= vm.V[y]
		if vm.Mode == ModeChip8 {
			vm.V[0xF] = 0
		}
	case 0x3:
		vm.V[x] ^= vm.V[y]
		if vm.Mode == ModeChip8 {
			vm.V[0xF] = 0
		}
	case 0x4:
		sum := uint16(vm.V[x]) + uint16(vm.V[y])
		vm.V[x] = byte(sum)
		vm.V[0xF] = byte(sum >> 8)
	case 0x5:
		carry := byte(0)
		if vm.V[x] >= vm.V[y] {
			// no borrow
			carry = 1
		}
		vm.V[x] -= vm.V[y]
		vm.V[0xF] = carry
	case 0x6:
		if vm.Mode == ModeChip8 {
			vm.V[x] = vm.V[y]
		}
		carry := vm.V[x] & 1
		vm.V[x] >>= 1
		vm.V[0xF] = carry
	case 0x7:
		carry := byte(0)
		if vm.V[y] >= vm.V[x] {
			carry = 1
		}
		vm.V[x] = vm.V[y] - vm.V[x]
		vm.V[0xF] = carry
	case 0xE:
		if vm.Mode == ModeChip8 {
			vm.V[x] = vm.V[y]
		}
		carry := vm.V[x] >> 7
		vm.V[x] <<= 1
		vm.V[0xF] = carry
	}
}

// draw XOR-blits an N-row sprite read from memory at I to (Vx, Vy).
// The anchor wraps around the display but rows and columns running off
// the bottom or right edge are clipped, not wrapped. VF is the
// collision flag: it is reset first and set as soon as any lit pixel
// flips off, never cleared again within the same call.
func (vm *Chip8) draw(inst Instruction) error {
	end := int(vm.I) + int(inst.N)
	if end > MemorySize {
		return fmt.Errorf("%w: sprite rows at %#04x-%#04x", ErrAddressRange, vm.I, end-1)
	}

	x := int(vm.V[inst.X]) % DisplayWidth
	y := int(vm.V[inst.Y]) % DisplayHeight

	vm.V[0xF] = 0

	for j, row := range vm.Memory[vm.I:end] {
		if y+j >= DisplayHeight {
			break
		}

		for i := 0; i < 8; i++ {
			if x+i >= DisplayWidth {
				break
			}
			if row>>(7-i)&1 == 0 {
				continue
			}

			pixel := &vm.Display[y+j][x+i]
			if *pixel == 1 {
				vm.V[0xF] = 1
			}
			*pixel ^= 1
		}
	}

	return nil
}

// misc executes the FXNN family.
func (vm *Chip8) misc(inst Instruction, keys Keyboard) error {
	x := inst.X

	switch inst.NN {
	case 0x07:
		vm.V[x] = vm.DT
	case 0x0A:
		vm.waitKey(x, keys)
	case 0x15:
		vm.DT = vm.V[x]
	case 0x18:
		vm.ST = vm.V[x]
	case 0x1E:
		// 16-bit add, no overflow flag
		vm.I += uint16(vm.V[x])
	case 0x29:
		vm.I = FontBase + uint16(vm.V[x])*5
	case 0x33:
		return vm.storeBCD(x)
	case 0x55:
		return vm.storeRegs(x)
	case 0x65:
		return vm.loadRegs(x)
	}

	return nil
}

// waitKey suspends the program on FX0A. With no new press reported it
// rewinds PC so the driver issues the same instruction again next
// cycle; the press, once it arrives, lands in Vx and execution moves
// on.
func (vm *Chip8) waitKey(x byte, keys Keyboard) {
	key, ok := keys.Pressed()
	if !ok {
		vm.PC -= 2
		return
	}
	vm.V[x] = key
}

// storeBCD writes the decimal digits of Vx to I, I+1 and I+2.
func (vm *Chip8) storeBCD(x byte) error {
	if int(vm.I)+2 >= MemorySize {
		return fmt.Errorf("%w: BCD store at %#04x", ErrAddressRange, vm.I)
	}

	v := vm.V[x]
	vm.Memory[vm.I] = v / 100
	vm.Memory[vm.I+1] = v / 10 % 10
	vm.Memory[vm.I+2] = v % 10

	return nil
}

// storeRegs copies V0..Vx to memory at I. ModeChip8 leaves I pointing
// past the stored block, ModeChip48 leaves it untouched.
func (vm *Chip8) storeRegs(x byte) error {
	if int(vm.I)+int(x) >= MemorySize {
		return fmt.Errorf("%w: register store at %#04x", ErrAddressRange, vm.I)
	}

	copy(vm.Memory[vm.I:], vm.V[:x+1])
	if vm.Mode == ModeChip8 {
		vm.I += uint16(x) + 1
	}

	return nil
}

// loadRegs copies memory at I into V0..Vx, with the same I advance
// rule as storeRegs.
func (vm *Chip8) loadRegs(x byte) error {
	if int(vm.I)+int(x) >= MemorySize {
		return fmt.Errorf("%w: register load at %#04x", ErrAddressRange, vm.I)
	}

	copy(vm.V[:x+1], vm.Memory[vm.I:])
	if vm.Mode == ModeChip8 {
		vm.I += uint16(x) + 1
	}

	return nil
}

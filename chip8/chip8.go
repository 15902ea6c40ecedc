package chip8

import (
	"fmt"
	"math/rand"
	"os"
	"time"
)

const (
	// MemorySize is the addressable memory, 0x000-0xFFF.
	MemorySize = 0x1000

	// ProgramBase is where program images load and execution begins.
	ProgramBase = 0x200

	// DisplayWidth and DisplayHeight are the monochrome framebuffer
	// dimensions in pixels.
	DisplayWidth  = 64
	DisplayHeight = 32
)

// Mode selects which of the two historical instruction-set behaviors
// the machine follows. It is chosen at construction and never changes
// during a run.
type Mode int

const (
	// ModeChip8 is the original COSMAC VIP interpreter behavior: the
	// logical ops clear VF, the shifts read Vy, BNNN offsets by V0 and
	// the register block transfers advance I.
	ModeChip8 Mode = iota

	// ModeChip48 is the later HP-48 behavior: shifts operate on Vx
	// directly, BNNN offsets by Vx and I is left untouched by the
	// register block transfers.
	ModeChip48
)

func (m Mode) String() string {
	switch m {
	case ModeChip8:
		return "chip8"
	case ModeChip48:
		return "chip48"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode maps a mode name to its Mode value.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "chip8":
		return ModeChip8, nil
	case "chip48":
		return ModeChip48, nil
	}
	return 0, fmt.Errorf("unknown mode %q (valid: chip8, chip48)", s)
}

// Chip8 is the complete virtual machine state. It is owned by exactly
// one goroutine; nothing in this package locks it.
type Chip8 struct {
	// Memory holds the glyph set at FontBase and the program image at
	// ProgramBase.
	Memory [MemorySize]byte

	// V are the 16 general-purpose registers. V[0xF] doubles as the
	// carry/collision flag and is clobbered by several opcodes.
	V [16]byte

	// I is the address register used for indirect memory access.
	I uint16

	// PC is the program counter, stepped by 2 per instruction.
	PC uint16

	// Stack holds return addresses. SP is -1 when the stack is empty.
	// Calls past 16 levels and returns on an empty stack are silently
	// ignored.
	Stack [16]uint16
	SP    int8

	// DT and ST are the delay and sound timers, decremented at 60 Hz
	// by TickTimers while nonzero.
	DT byte
	ST byte

	// Display is the framebuffer, one byte per pixel with value 0 or 1.
	Display [DisplayHeight][DisplayWidth]byte

	// Mode is the instruction-set behavior variant.
	Mode Mode

	// rom is the loaded program image, kept pristine so Reset can
	// reboot without re-reading the file.
	rom []byte

	rnd *rand.Rand
}

// New returns a machine with the glyph set installed and no program
// loaded.
func New(mode Mode) *Chip8 {
	vm := &Chip8{
		Mode: mode,
		rnd:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	vm.Reset()
	return vm
}

// Load installs a program image at ProgramBase and reboots the machine.
// Images larger than the available memory are rejected.
func (vm *Chip8) Load(program []byte) error {
	if len(program) > MemorySize-ProgramBase {
		return fmt.Errorf("program is %d bytes, only %d fit in memory",
			len(program), MemorySize-ProgramBase)
	}

	vm.rom = append(vm.rom[:0], program...)
	vm.Reset()

	return nil
}

// LoadFile reads a ROM file and loads it.
func (vm *Chip8) LoadFile(path string) error {
	program, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading rom: %w", err)
	}
	return vm.Load(program)
}

// Reset reboots the machine: memory is rebuilt from the glyph set and
// the loaded program image, every register, timer and the display are
// cleared. The mode is kept.
func (vm *Chip8) Reset() {
	vm.Memory = [MemorySize]byte{}
	copy(vm.Memory[FontBase:], fontset[:])
	copy(vm.Memory[ProgramBase:], vm.rom)

	vm.V = [16]byte{}
	vm.I = 0
	vm.PC = ProgramBase
	vm.Stack = [16]uint16{}
	vm.SP = -1
	vm.DT = 0
	vm.ST = 0
	vm.Display = [DisplayHeight][DisplayWidth]byte{}
}

// Fetch reads the big-endian 16-bit opcode at PC and advances PC by 2.
func (vm *Chip8) Fetch() uint16 {
	opcode := uint16(vm.Memory[vm.PC])<<8 | uint16(vm.Memory[vm.PC+1])
	vm.PC += 2
	return opcode
}

// Step fetches, decodes and executes the instruction at PC against the
// given keyboard snapshot.
func (vm *Chip8) Step(keys Keyboard) (Action, error) {
	if vm.PC > MemorySize-2 {
		return None, fmt.Errorf("%w: program counter %#04x", ErrAddressRange, vm.PC)
	}
	return vm.Execute(Decode(vm.Fetch()), keys)
}

// TickTimers decrements the delay and sound timers. The driver calls
// it at 60 Hz wall-clock, independent of the instruction rate.
func (vm *Chip8) TickTimers() {
	if vm.DT > 0 {
		vm.DT--
	}
	if vm.ST > 0 {
		vm.ST--
	}
}

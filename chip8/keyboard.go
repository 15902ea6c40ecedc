package chip8

// Keyboard is a snapshot of the 16-key pad, taken by the input
// collaborator once per driver cycle and consumed read-only by the
// execution engine. Held reports which keys are currently down. The
// zero value is an empty snapshot with no press recorded.
type Keyboard struct {
	Held [16]bool

	// pressed holds key+1 so the zero value means "no press".
	pressed int
}

// Press records key (0x0-0xF) as freshly pressed in this snapshot.
func (k *Keyboard) Press(key int) {
	k.pressed = (key & 0xF) + 1
}

// Pressed reports the key most recently pressed since the previous
// snapshot, if any.
func (k Keyboard) Pressed() (byte, bool) {
	if k.pressed == 0 {
		return 0, false
	}
	return byte(k.pressed - 1), true
}

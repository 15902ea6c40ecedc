package chip8

import (
	"context"
	"fmt"
	"time"

	"github.com/retroenv/retrogolib/log"
)

// DefaultIPS is the default instruction rate. The original interpreter
// managed roughly this many instructions per second.
const DefaultIPS = 700

// timerHz is the fixed timer decrement rate. Unlike the instruction
// rate it is not configurable.
const timerHz = 60

// Display is the rendering collaborator. Draw receives the full
// framebuffer once per redraw-producing instruction; everything visual
// is its concern.
type Display interface {
	Draw(display *[DisplayHeight][DisplayWidth]byte) error
}

// Input is the keyboard collaborator. Poll is called once per driver
// cycle and must return a complete snapshot: the held-key set and the
// key most recently pressed since the previous call. An error from
// Poll stops the run and is returned as-is.
type Input interface {
	Poll() (Keyboard, error)
}

// Runner drives a machine. It owns the two independent cadences: the
// configurable instruction rate and the fixed 60 Hz timer rate. The
// machine is only ever touched from the goroutine calling Run, so the
// hotkey methods below must be invoked from Input.Poll.
type Runner struct {
	VM      *Chip8
	Display Display
	Input   Input

	// IPS is the instruction rate. Zero or negative selects
	// DefaultIPS.
	IPS int

	// Logger, when set, traces every executed instruction at debug
	// level.
	Logger *log.Logger

	step    *time.Ticker
	paused  bool
	stepOne bool
}

// Run executes until ctx is cancelled, a collaborator returns an error
// or the machine hits a fatal condition. Timers keep their wall-clock
// rate no matter how fast or slow instructions are stepped.
func (r *Runner) Run(ctx context.Context) error {
	if r.IPS <= 0 {
		r.IPS = DefaultIPS
	}

	r.step = time.NewTicker(time.Second / time.Duration(r.IPS))
	defer r.step.Stop()

	timers := time.NewTicker(time.Second / timerHz)
	defer timers.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timers.C:
			if !r.paused {
				r.VM.TickTimers()
			}
		case <-r.step.C:
			if err := r.cycle(); err != nil {
				return err
			}
		}
	}
}

// cycle is one driver cycle: poll the keyboard, execute one
// instruction, forward the redraw signal.
func (r *Runner) cycle() error {
	keys, err := r.Input.Poll()
	if err != nil {
		return err
	}

	if r.paused && !r.stepOne {
		return nil
	}
	r.stepOne = false

	pc := r.VM.PC
	if r.Logger != nil && int(pc) <= MemorySize-2 {
		opcode := uint16(r.VM.Memory[pc])<<8 | uint16(r.VM.Memory[pc+1])
		r.Logger.Debug("step",
			log.Hex("pc", pc),
			log.Hex("opcode", opcode),
			log.Hex("i", r.VM.I),
			log.Uint8("dt", r.VM.DT),
			log.Uint8("st", r.VM.ST))
	}

	action, err := r.VM.Step(keys)
	if err != nil {
		return fmt.Errorf("executing at %#04x: %w", pc, err)
	}

	if action == Redraw && r.Display != nil {
		if err := r.Display.Draw(&r.VM.Display); err != nil {
			return fmt.Errorf("drawing display: %w", err)
		}
	}

	return nil
}

// TogglePause freezes or resumes execution. Timers freeze with it;
// input keeps being polled so the hotkeys still work.
func (r *Runner) TogglePause() {
	r.paused = !r.paused
}

// Paused reports whether execution is frozen.
func (r *Runner) Paused() bool {
	return r.paused
}

// StepOnce lets a paused machine execute a single instruction on the
// next cycle.
func (r *Runner) StepOnce() {
	r.stepOne = true
}

// SetIPS changes the instruction rate, mid-run included. The timer
// rate is unaffected.
func (r *Runner) SetIPS(ips int) {
	if ips < 1 {
		ips = 1
	}

	r.IPS = ips
	if r.step != nil {
		r.step.Reset(time.Second / time.Duration(ips))
	}
}

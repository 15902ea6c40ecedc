package main

import (
	"errors"

	"github.com/retroenv/retrogolib/log"
	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/scaryrawr/CHIP-8/chip8"
)

// errQuit is returned from Poll when the user closes the window or
// presses ESC. It stops the driver but is not a failure.
var errQuit = errors.New("quit requested")

// keymap maps the left-hand block of a modern keyboard onto the 4x4
// CHIP-8 pad:
//
//	1 2 3 C        1 2 3 4
//	4 5 6 D   <-   Q W E R
//	7 8 9 E        A S D F
//	A 0 B F        Z X C V
var keymap = map[sdl.Scancode]int{
	sdl.SCANCODE_X: 0x0,
	sdl.SCANCODE_1: 0x1,
	sdl.SCANCODE_2: 0x2,
	sdl.SCANCODE_3: 0x3,
	sdl.SCANCODE_Q: 0x4,
	sdl.SCANCODE_W: 0x5,
	sdl.SCANCODE_E: 0x6,
	sdl.SCANCODE_A: 0x7,
	sdl.SCANCODE_S: 0x8,
	sdl.SCANCODE_D: 0x9,
	sdl.SCANCODE_Z: 0xA,
	sdl.SCANCODE_C: 0xB,
	sdl.SCANCODE_4: 0xC,
	sdl.SCANCODE_R: 0xD,
	sdl.SCANCODE_F: 0xE,
	sdl.SCANCODE_V: 0xF,
}

// Input turns SDL keyboard events into per-cycle keypad snapshots and
// handles the emulator hotkeys (quit, reset, pause, single step, speed,
// ROM dialog).
type Input struct {
	runner *chip8.Runner
	logger *log.Logger
	held   [16]bool
}

func NewInput(runner *chip8.Runner, logger *log.Logger) *Input {
	return &Input{
		runner: runner,
		logger: logger,
	}
}

// Poll drains pending SDL events and returns a complete snapshot. A
// key is reported as pressed only on the cycle its key-down event
// arrived.
func (in *Input) Poll() (chip8.Keyboard, error) {
	var keys chip8.Keyboard

	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		switch ev := e.(type) {
		case *sdl.QuitEvent:
			return keys, errQuit
		case *sdl.KeyboardEvent:
			if err := in.keyEvent(ev, &keys); err != nil {
				return keys, err
			}
		}
	}

	keys.Held = in.held
	return keys, nil
}

func (in *Input) keyEvent(ev *sdl.KeyboardEvent, keys *chip8.Keyboard) error {
	if key, ok := keymap[ev.Keysym.Scancode]; ok {
		switch ev.Type {
		case sdl.KEYDOWN:
			if !in.held[key] {
				keys.Press(key)
			}
			in.held[key] = true
		case sdl.KEYUP:
			in.held[key] = false
		}
		return nil
	}

	if ev.Type != sdl.KEYDOWN || ev.Repeat != 0 {
		return nil
	}

	switch ev.Keysym.Scancode {
	case sdl.SCANCODE_ESCAPE:
		return errQuit
	case sdl.SCANCODE_BACKSPACE:
		in.logger.Info("Reset")
		in.runner.VM.Reset()
	case sdl.SCANCODE_SPACE, sdl.SCANCODE_F5:
		in.runner.TogglePause()
		if in.runner.Paused() {
			in.logger.Info("Paused")
		} else {
			in.logger.Info("Resumed")
		}
	case sdl.SCANCODE_F6, sdl.SCANCODE_F10:
		in.runner.StepOnce()
	case sdl.SCANCODE_F3:
		in.loadDialog()
	case sdl.SCANCODE_LEFTBRACKET:
		in.runner.SetIPS(in.runner.IPS / 2)
		in.logger.Info("Speed changed", log.Int("ips", in.runner.IPS))
	case sdl.SCANCODE_RIGHTBRACKET:
		in.runner.SetIPS(in.runner.IPS * 2)
		in.logger.Info("Speed changed", log.Int("ips", in.runner.IPS))
	}

	return nil
}

// loadDialog picks a new ROM and reboots the machine with it. A
// cancelled dialog keeps the current program running.
func (in *Input) loadDialog() {
	file, err := dialog.File().Title("Open CHIP-8 ROM").Load()
	if err != nil {
		return
	}

	if err := in.runner.VM.LoadFile(file); err != nil {
		in.logger.Error("Loading ROM failed", log.Err(err))
		return
	}

	in.held = [16]bool{}
	in.logger.Info("ROM loaded", log.String("file", file))
}

package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"runtime"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/scaryrawr/CHIP-8/chip8"
)

var (
	modeFlag  = flag.String("mode", "chip8", "instruction set behavior: chip8 or chip48")
	ipsFlag   = flag.Int("ips", chip8.DefaultIPS, "instructions executed per second")
	scaleFlag = flag.Int("scale", 10, "window pixels per CHIP-8 pixel")
	debugFlag = flag.Bool("debug", false, "trace every executed instruction")
	quietFlag = flag.Bool("q", false, "only log errors")
)

func init() {
	// SDL must be driven from the main OS thread
	runtime.LockOSThread()
}

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	logger := newLogger(*debugFlag, *quietFlag)

	mode, err := chip8.ParseMode(*modeFlag)
	if err != nil {
		logger.Error("Invalid mode", log.Err(err))
		return 1
	}

	rom := flag.Arg(0)
	if rom == "" {
		// no ROM on the command line, ask for one
		if rom, err = pickROM(); err != nil {
			logger.Error("No ROM selected", log.Err(err))
			return 1
		}
	}

	vm := chip8.New(mode)
	if err := vm.LoadFile(rom); err != nil {
		logger.Error("Loading ROM failed", log.Err(err))
		return 1
	}
	logger.Info("ROM loaded",
		log.String("file", rom),
		log.String("mode", mode.String()))

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		logger.Error("SDL init failed", log.Err(err))
		return 1
	}
	defer sdl.Quit()

	screen, err := NewScreen(*scaleFlag)
	if err != nil {
		logger.Error("Opening window failed", log.Err(err))
		return 1
	}
	defer screen.Close()

	// present the cleared display before the first draw instruction
	if err := screen.Draw(&vm.Display); err != nil {
		logger.Error("Rendering failed", log.Err(err))
		return 1
	}

	runner := &chip8.Runner{
		VM:      vm,
		Display: screen,
		IPS:     *ipsFlag,
	}
	if *debugFlag {
		runner.Logger = logger
	}
	runner.Input = NewInput(runner, logger)

	err = runner.Run(app.Context())
	switch {
	case errors.Is(err, errQuit), errors.Is(err, context.Canceled):
		return 0
	case err != nil:
		logger.Error("Emulation stopped", log.Err(err))
		return 1
	}

	return 0
}

func newLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// pickROM opens a native file dialog for choosing a ROM.
func pickROM() (string, error) {
	return dialog.File().Title("Open CHIP-8 ROM").Load()
}

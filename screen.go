package main

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/scaryrawr/CHIP-8/chip8"
)

// Screen renders the machine's framebuffer into an SDL window. Pixels
// are drawn onto a 64x32 render target which is then stretched over
// the whole window.
type Screen struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	target   *sdl.Texture
}

// NewScreen opens the emulator window. scale is the number of window
// pixels per CHIP-8 pixel.
func NewScreen(scale int) (*Screen, error) {
	if scale < 1 {
		scale = 1
	}

	w := int32(chip8.DisplayWidth * scale)
	h := int32(chip8.DisplayHeight * scale)

	window, renderer, err := sdl.CreateWindowAndRenderer(w, h, sdl.WINDOW_OPENGL)
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}
	window.SetTitle("CHIP-8")

	target, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_RGB888, sdl.TEXTUREACCESS_TARGET,
		chip8.DisplayWidth, chip8.DisplayHeight)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		return nil, fmt.Errorf("creating render target: %w", err)
	}

	return &Screen{
		window:   window,
		renderer: renderer,
		target:   target,
	}, nil
}

// Draw renders the full framebuffer and presents it.
func (s *Screen) Draw(display *[chip8.DisplayHeight][chip8.DisplayWidth]byte) error {
	if err := s.renderer.SetRenderTarget(s.target); err != nil {
		return fmt.Errorf("setting render target: %w", err)
	}

	// background
	s.renderer.SetDrawColor(17, 29, 43, 255)
	s.renderer.Clear()

	// lit pixels
	s.renderer.SetDrawColor(143, 145, 133, 255)
	for y := range display {
		for x, pixel := range display[y] {
			if pixel != 0 {
				s.renderer.DrawPoint(int32(x), int32(y))
			}
		}
	}

	if err := s.renderer.SetRenderTarget(nil); err != nil {
		return fmt.Errorf("restoring render target: %w", err)
	}

	// stretch the target over the window
	s.renderer.Copy(s.target, nil, nil)
	s.renderer.Present()

	return nil
}

// Close releases the window and its renderer.
func (s *Screen) Close() {
	s.target.Destroy()
	s.renderer.Destroy()
	s.window.Destroy()
}

//go:build !headless

// display_ebiten.go - windowed video backend.
//
// Grounded on video_backend_ebiten.go's Ebiten game-loop shape (Start
// spawning ebiten.RunGame in a goroutine and blocking on a vsync channel
// for the first Draw, Update/Draw implementing ebiten.Game, keyboard
// polling via inpututil). Adapted for a fixed 320x240 RGBA source
// (FBWidth/FBHeight) instead of a reconfigurable chip resolution, and the
// clipboard-paste path is dropped along with its dependency (DESIGN.md:
// nothing in this spec's scope needs clipboard access).
package main

import (
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

func newBackend() (VideoOutput, error) {
	return &ebitenOutput{
		width:       FBWidth,
		height:      FBHeight,
		scale:       1,
		windowedW:   FBWidth,
		windowedH:   FBHeight,
		frameBuffer: make([]byte, FBWidth*FBHeight*4),
		refreshRate: 60,
		vsyncChan:   make(chan struct{}, 1),
	}, nil
}

type ebitenOutput struct {
	running     bool
	window      *ebiten.Image
	width       int
	height      int
	scale       int
	windowedW   int
	windowedH   int
	frameBuffer []byte
	mu          sync.RWMutex
	frameCount  uint64
	refreshRate int
	vsyncChan   chan struct{}
	keyHandler  func(byte)
}

func (eo *ebitenOutput) Start() error {
	if eo.running {
		return nil
	}
	eo.running = true
	ebiten.SetWindowSize(eo.windowedW, eo.windowedH)
	ebiten.SetWindowTitle("coreforge")
	ebiten.SetWindowResizable(true)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)

	go func() {
		if err := ebiten.RunGame(eo); err != nil {
			fmt.Printf("display: ebiten exited: %v\n", err)
		}
	}()

	<-eo.vsyncChan
	return nil
}

func (eo *ebitenOutput) Stop() error {
	eo.running = false
	return nil
}

func (eo *ebitenOutput) Close() error {
	return eo.Stop()
}

func (eo *ebitenOutput) IsStarted() bool {
	return eo.running
}

func (eo *ebitenOutput) UpdateFrame(data []byte) error {
	eo.mu.Lock()
	defer eo.mu.Unlock()
	if len(data) != len(eo.frameBuffer) {
		return &DisplayError{Operation: "update frame", Details: fmt.Sprintf("expected %d bytes, got %d", len(eo.frameBuffer), len(data))}
	}
	copy(eo.frameBuffer, data)
	return nil
}

func (eo *ebitenOutput) SetDisplayConfig(config DisplayConfig) error {
	eo.mu.Lock()
	defer eo.mu.Unlock()
	eo.scale = clampScale(config.Scale)
	eo.windowedW = eo.width * eo.scale
	eo.windowedH = eo.height * eo.scale
	ebiten.SetWindowSize(eo.windowedW, eo.windowedH)
	return nil
}

func (eo *ebitenOutput) GetDisplayConfig() DisplayConfig {
	eo.mu.RLock()
	defer eo.mu.RUnlock()
	return DisplayConfig{Width: eo.width, Height: eo.height, Scale: eo.scale, RefreshRate: eo.refreshRate}
}

func (eo *ebitenOutput) WaitForVSync() error {
	<-eo.vsyncChan
	return nil
}

func (eo *ebitenOutput) GetFrameCount() uint64 {
	eo.mu.RLock()
	defer eo.mu.RUnlock()
	return eo.frameCount
}

func (eo *ebitenOutput) GetRefreshRate() int {
	return eo.refreshRate
}

func (eo *ebitenOutput) SetKeyHandler(fn func(byte)) {
	eo.mu.Lock()
	eo.keyHandler = fn
	eo.mu.Unlock()
}

func (eo *ebitenOutput) emitByte(b byte) {
	eo.mu.RLock()
	handler := eo.keyHandler
	eo.mu.RUnlock()
	if handler != nil {
		handler(b)
	}
}

func (eo *ebitenOutput) emitSeq(seq []byte) {
	for _, b := range seq {
		eo.emitByte(b)
	}
}

// Update implements ebiten.Game.
func (eo *ebitenOutput) Update() error {
	if ebiten.IsWindowBeingClosed() || !eo.running {
		return ebiten.Termination
	}
	eo.handleKeyboardInput()
	return nil
}

func (eo *ebitenOutput) handleKeyboardInput() {
	eo.mu.RLock()
	hasHandler := eo.keyHandler != nil
	eo.mu.RUnlock()
	if !hasHandler {
		return
	}

	for _, r := range ebiten.AppendInputChars(nil) {
		if r > 0 && r <= 0xFF {
			eo.emitByte(byte(r))
		}
	}

	specialKeys := []ebiten.Key{
		ebiten.KeyEnter, ebiten.KeyNumpadEnter, ebiten.KeyBackspace, ebiten.KeyTab,
		ebiten.KeyEscape, ebiten.KeyArrowUp, ebiten.KeyArrowDown, ebiten.KeyArrowRight,
		ebiten.KeyArrowLeft,
	}
	for _, key := range specialKeys {
		if inpututil.IsKeyJustPressed(key) {
			if seq, ok := translateSpecialKey(key); ok {
				eo.emitSeq(seq)
			}
		}
	}
}

func translateSpecialKey(key ebiten.Key) ([]byte, bool) {
	switch key {
	case ebiten.KeyEnter, ebiten.KeyNumpadEnter:
		return []byte{'\n'}, true
	case ebiten.KeyBackspace:
		return []byte{0x08}, true
	case ebiten.KeyTab:
		return []byte{'\t'}, true
	case ebiten.KeyEscape:
		return []byte{0x1B}, true
	case ebiten.KeyArrowUp:
		return []byte{0x1B, '[', 'A'}, true
	case ebiten.KeyArrowDown:
		return []byte{0x1B, '[', 'B'}, true
	case ebiten.KeyArrowRight:
		return []byte{0x1B, '[', 'C'}, true
	case ebiten.KeyArrowLeft:
		return []byte{0x1B, '[', 'D'}, true
	default:
		return nil, false
	}
}

// Draw implements ebiten.Game.
func (eo *ebitenOutput) Draw(screen *ebiten.Image) {
	if eo.window == nil {
		eo.window = ebiten.NewImage(eo.width, eo.height)
	}

	eo.mu.RLock()
	eo.window.WritePixels(eo.frameBuffer)
	eo.mu.RUnlock()
	screen.DrawImage(eo.window, nil)

	eo.mu.Lock()
	eo.frameCount++
	eo.mu.Unlock()
	select {
	case eo.vsyncChan <- struct{}{}:
	default:
	}
}

// Layout implements ebiten.Game.
func (eo *ebitenOutput) Layout(_, _ int) (int, int) {
	return eo.width, eo.height
}

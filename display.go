// display.go - host video output contract.
//
// Pared down from video_interface.go's full capability set (VideoSource,
// ScanlineAware, CompositorManageable, HardResettable, PaletteCapable,
// TextureCapable, SpriteCapable all dropped per DESIGN.md: this system has
// one framebuffer, one fixed RGBA format, and no copper/sprite/texture
// hardware to expose). What survives is the minimal lifecycle + frame-push
// + vsync contract, which is exactly what the host event loop in
// SPEC_FULL.md §4.9 needs.
package main

import "fmt"

// DisplayError mirrors the teacher's VideoError shape: an operation name
// plus context, so callers can log a single line without type-switching.
type DisplayError struct {
	Operation string
	Details   string
	Err       error
}

func (e *DisplayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("display %s failed: %s: %v", e.Operation, e.Details, e.Err)
	}
	return fmt.Sprintf("display %s failed: %s", e.Operation, e.Details)
}

// DisplayConfig is hardware-independent window configuration.
type DisplayConfig struct {
	Width       int
	Height      int
	Scale       int
	RefreshRate int
}

func clampScale(s int) int {
	if s < 1 {
		return 1
	}
	if s > 4 {
		return 4
	}
	return s
}

// VideoOutput is the minimal contract a display backend must implement.
// UpdateFrame always receives FBWidth*FBHeight*4 raw RGBA bytes, a direct
// copy of the guest framebuffer.
type VideoOutput interface {
	Start() error
	Stop() error
	Close() error
	IsStarted() bool

	SetDisplayConfig(config DisplayConfig) error
	GetDisplayConfig() DisplayConfig
	UpdateFrame(buffer []byte) error

	WaitForVSync() error
	GetFrameCount() uint64
	GetRefreshRate() int
}

// KeyboardInput is implemented by backends that can forward host
// keystrokes into the guest's serial RX path.
type KeyboardInput interface {
	SetKeyHandler(func(byte))
}

// NewVideoOutput returns the compiled-in backend (ebiten, unless built
// with -tags headless).
func NewVideoOutput() (VideoOutput, error) {
	return newBackend()
}

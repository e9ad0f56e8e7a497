//go:build headless

// display_headless.go - no-op video backend, compiled in with -tags headless
// (e.g. for CI runs). --selftest runs never open a display at all.
//
// Grounded on video_backend_headless.go: same shape, renders nothing,
// never blocks.
package main

import "sync/atomic"

func newBackend() (VideoOutput, error) {
	return &headlessOutput{refreshRate: 60}, nil
}

type headlessOutput struct {
	started     bool
	config      DisplayConfig
	frameCount  uint64
	refreshRate int
	keyHandler  func(byte)
}

func (h *headlessOutput) Start() error {
	h.started = true
	return nil
}

func (h *headlessOutput) Stop() error {
	h.started = false
	return nil
}

func (h *headlessOutput) Close() error {
	h.started = false
	return nil
}

func (h *headlessOutput) IsStarted() bool {
	return h.started
}

func (h *headlessOutput) SetDisplayConfig(config DisplayConfig) error {
	h.config = config
	return nil
}

func (h *headlessOutput) GetDisplayConfig() DisplayConfig {
	return h.config
}

func (h *headlessOutput) UpdateFrame(buffer []byte) error {
	atomic.AddUint64(&h.frameCount, 1)
	return nil
}

func (h *headlessOutput) WaitForVSync() error {
	return nil
}

func (h *headlessOutput) GetFrameCount() uint64 {
	return atomic.LoadUint64(&h.frameCount)
}

func (h *headlessOutput) GetRefreshRate() int {
	if h.refreshRate == 0 {
		return 60
	}
	return h.refreshRate
}

func (h *headlessOutput) SetKeyHandler(fn func(byte)) {
	h.keyHandler = fn
}

// serial.go - port-indexed serial device (SCREEN/SCREEN_ATTRIBUTE/KEYBOARD).
//
// Grounded on terminal_io.go's TerminalMMIO ring-buffer device, converted
// from MMIO-address dispatch to the spec's flat three-port model
// (SPEC_FULL.md §4.7): no line-mode, no sentinel, no raw-key GET queue —
// just a single pending RX byte, a status/control byte pair, and TX
// straight to stdout. RouteHostKey's external-injection entrypoint is
// kept under the same name so terminal_host.go needs no change to call
// it.
package main

import (
	"fmt"
)

// SerialDevice implements ports PortScreen/PortScreenAttr/PortKeyboard.
// All of its state is guarded by the owning Machine's single mutex: every
// accessor below is only ever called from a path that already holds
// Machine.mu (InPort/OutPort, or Machine.RouteHostKey).
type SerialDevice struct {
	rxByte  byte
	rxReady bool
	control byte // bit 0: RX_INT_ENABLE

	out    func(b byte)
	onRXInterrupt func()
}

func NewSerialDevice(out func(b byte), onRXInterrupt func()) *SerialDevice {
	if out == nil {
		out = func(b byte) { fmt.Printf("%c", b) }
	}
	return &SerialDevice{out: out, onRXInterrupt: onRXInterrupt}
}

// writeScreenLocked handles OUT to PortScreen (TX). Called with Machine.mu
// held; it must not block, so stdout output happens synchronously but the
// device's own mutex is never taken here (Machine's lock already
// serializes all port access).
func (s *SerialDevice) writeScreenLocked(b byte) {
	s.out(b)
}

func (s *SerialDevice) readAttrLocked() uint32 {
	var status uint32
	if s.rxReady {
		status = StatusRXReady
	}
	return status | uint32(s.control)<<8
}

func (s *SerialDevice) writeAttrLocked(val uint32) {
	s.control = byte(val >> 8)
}

func (s *SerialDevice) readKeyboardLocked() uint32 {
	if !s.rxReady {
		return 0
	}
	b := s.rxByte
	s.rxByte = 0
	s.rxReady = false
	return uint32(b)
}

func (s *SerialDevice) reset() {
	s.rxByte = 0
	s.rxReady = false
	s.control = 0
}

// RouteHostKey is called by the host's serial adapter (terminal_host.go)
// or the self-test harness to inject one byte of RX input, from a
// goroutine outside the guest's instruction-execution path. It takes the
// Machine lock like any other access to serial state.
func (m *Machine) RouteHostKey(b byte) {
	m.mu.Lock()
	s := m.serial
	if s.rxReady {
		m.mu.Unlock()
		return // one pending byte only; drop until consumed
	}
	s.rxByte = b
	s.rxReady = true
	intEnabled := s.control&CtrlRXIntEnable != 0
	m.mu.Unlock()

	if intEnabled {
		m.TriggerInterrupt(0, VectorSerialRX)
	}
}

// debug.go - environment-variable-driven debugger hooks, BSP only.
//
// Grounded on debug_monitor.go/debug_cpu_ie64.go's breakpoint-matching and
// step-gating shape, pared down from a full interactive machine monitor
// (disassembly view, hex editor, backstep history, macro scripting — none
// of which this spec calls for) to exactly the headless gate
// SPEC_FULL.md §4.11 describes: single-step, pause-before-first-instruction,
// and a breakpoint address set, all read from environment variables once
// at startup.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Debugger gates the BSP only; non-BSP cores never consult it.
type Debugger struct {
	singleStep  bool
	pauseFirst  bool
	breakpoints map[uint32]bool

	firstInstruction bool
	stdin            *bufio.Reader
}

// NewDebuggerFromEnv reads VM_DEBUG_STEP/VM_STEP, VM_DEBUG_PAUSE, and
// VM_BREAKPOINTS. Returns nil if none are set, so callers can skip the
// per-instruction hook entirely in the common case.
func NewDebuggerFromEnv() *Debugger {
	step := truthyEnv("VM_DEBUG_STEP") || truthyEnv("VM_STEP")
	pause := truthyEnv("VM_DEBUG_PAUSE")
	bps := parseBreakpoints(os.Getenv("VM_BREAKPOINTS"))

	if !step && !pause && len(bps) == 0 {
		return nil
	}
	return &Debugger{
		singleStep:       step,
		pauseFirst:       pause,
		breakpoints:      bps,
		firstInstruction: true,
		stdin:            bufio.NewReader(os.Stdin),
	}
}

func truthyEnv(name string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseBreakpoints(raw string) map[uint32]bool {
	bps := make(map[uint32]bool)
	raw = strings.ReplaceAll(raw, ";", ",")
	raw = strings.ReplaceAll(raw, " ", ",")
	for _, tok := range strings.Split(raw, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		var addr uint64
		var err error
		if strings.HasPrefix(tok, "0x") || strings.HasPrefix(tok, "0X") {
			addr, err = strconv.ParseUint(tok[2:], 16, 32)
		} else {
			addr, err = strconv.ParseUint(tok, 10, 32)
		}
		if err == nil {
			bps[uint32(addr)] = true
		}
	}
	return bps
}

// beforeInstruction is called once per instruction on the BSP, before
// fetch. A paused core's interrupt-pending bits are left untouched, since
// they live in the Machine's atomic bitmap and this function never
// touches it (SPEC_FULL.md §9).
func (d *Debugger) beforeInstruction(m *Machine, v *VCPU) {
	if d.pauseFirst && d.firstInstruction {
		d.firstInstruction = false
		d.waitForLine(fmt.Sprintf("paused before first instruction at ip=0x%08X", v.ip))
		return
	}
	d.firstInstruction = false

	if d.breakpoints[v.ip] {
		d.waitForLine(fmt.Sprintf("breakpoint hit at ip=0x%08X", v.ip))
		return
	}
	if d.singleStep {
		d.waitForLine(fmt.Sprintf("step ip=0x%08X flags=0x%02X", v.ip, v.flags))
	}
}

func (d *Debugger) waitForLine(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	_, _ = d.stdin.ReadString('\n')
}

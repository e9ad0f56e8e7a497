// smp.go - SMP runtime: one goroutine per guest core, AP release, CPUID/IPI.
//
// Grounded on runtime_helpers.go's one-goroutine-per-CPU factory idea,
// generalized from "one goroutine per guest CPU architecture" (the
// teacher supports IE32/IE64/6502/M68K/Z80/X86 as alternatives) to "one
// goroutine per homogeneous SMP core" (SPEC_FULL.md §4.8). No
// thread-local storage is used anywhere: each core's VCPU is the explicit
// receiver its goroutine closes over, per the §9 design note.
package main

import (
	"runtime"
	"sync"
)

// startAP sets the target core's entry IP and releases it to run. Called
// only from the BSP's STARTAP instruction.
func (m *Machine) startAP(core uint32, entryIP uint32) {
	if int(core) >= m.numCores {
		return
	}
	m.apEntry[core] = entryIP
	m.coreReleased[core].Store(true)
}

// Boot creates one VCPU per core, wires their initial stack layout, and
// runs each on its own goroutine until the machine halts. Boot blocks
// until every core goroutine has exited.
func (m *Machine) Boot(layout []stackLayout, entryIP uint32, dbg *Debugger) {
	m.apEntry = make([]uint32, m.numCores)
	vcpus := make([]*VCPU, m.numCores)
	var wg sync.WaitGroup
	for i := 0; i < m.numCores; i++ {
		v := &VCPU{}
		v.reset(uint32(i), i == 0, entryIP, layout[i])
		vcpus[i] = v
	}
	m.vcpus = vcpus

	for i := 0; i < m.numCores; i++ {
		wg.Add(1)
		go func(v *VCPU) {
			defer wg.Done()
			if !v.isBSP {
				v.runAPEntryWait(m)
			}
			m.RunCore(v, dbg)
		}(vcpus[i])
	}
	wg.Wait()
}

// runAPEntryWait applies the entry IP the BSP set via STARTAP once the AP
// is released, before entering the normal run loop.
func (v *VCPU) runAPEntryWait(m *Machine) {
	for !m.coreReleased[v.coreID].Load() {
		if m.Halted() {
			return
		}
		runtime.Gosched()
	}
	v.ip = m.apEntry[v.coreID]
	v.lastIP = v.ip
}

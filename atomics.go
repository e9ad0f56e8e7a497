// atomics.go - lock-free atomic memory operations and the interrupt-pending
// bitmap's cell type.
//
// Grounded on cpu_ie64.go's use of typed sync/atomic values for its timer
// and interrupt state; the same idiom is applied here to RAM-resident
// 32-bit cells for the guest's CAS/XADD/XCHG/LDAR/STLR instructions
// (SPEC_FULL.md §4.2), which bypass the Machine's shared mutex entirely.
package main

import (
	"sync/atomic"
	"unsafe"
)

// boolAtomic is a zero-value-ready atomic boolean cell, used for the
// per-core/per-vector interrupt pending bitmap and the per-core release
// flags. atomic.Bool itself is usable at its zero value, so this is a thin
// alias kept for readability at call sites.
type boolAtomic struct {
	v atomic.Bool
}

func (b *boolAtomic) Load() bool        { return b.v.Load() }
func (b *boolAtomic) Store(x bool)      { b.v.Store(x) }
func (b *boolAtomic) CompareAndSwap(old, new bool) bool {
	return b.v.CompareAndSwap(old, new)
}

// cellPtr returns an *atomic.Uint32 view onto a 4-byte-aligned RAM cell.
// Callers must have already validated alignment and bounds.
func (m *Machine) cellPtr(addr uint32) *atomic.Uint32 {
	return (*atomic.Uint32)(unsafe.Pointer(&m.memory[addr]))
}

func (m *Machine) checkAtomicAddr(op string, addr uint32) {
	if addr&3 != 0 {
		m.fault(op+"-align", addr)
	}
	if addr+4 > uint32(len(m.memory)) {
		m.fault(op+"-bounds", addr)
	}
	if _, inFB := m.inFramebuffer(addr); inFB {
		m.fault(op+"-not-ram", addr)
	}
}

// AtomicLoadAcquire implements LDAR.
func (m *Machine) AtomicLoadAcquire(addr uint32) uint32 {
	m.checkAtomicAddr("ldar", addr)
	return m.cellPtr(addr).Load()
}

// AtomicStoreRelease implements STLR.
func (m *Machine) AtomicStoreRelease(addr uint32, val uint32) {
	m.checkAtomicAddr("stlr", addr)
	m.cellPtr(addr).Store(val)
}

// AtomicExchange implements XCHG: store val, return previous value.
func (m *Machine) AtomicExchange(addr uint32, val uint32) uint32 {
	m.checkAtomicAddr("xchg", addr)
	return m.cellPtr(addr).Swap(val)
}

// AtomicFetchAdd implements XADD: add delta, return the prior value.
func (m *Machine) AtomicFetchAdd(addr uint32, delta uint32) uint32 {
	m.checkAtomicAddr("xadd", addr)
	return m.cellPtr(addr).Add(delta) - delta
}

// AtomicCompareExchange implements CAS: on match, stores newVal and returns
// (oldVal, true); on mismatch returns (observed, false).
func (m *Machine) AtomicCompareExchange(addr uint32, expected, newVal uint32) (uint32, bool) {
	m.checkAtomicAddr("cas", addr)
	cell := m.cellPtr(addr)
	for {
		cur := cell.Load()
		if cur != expected {
			return cur, false
		}
		if cell.CompareAndSwap(cur, newVal) {
			return cur, true
		}
	}
}

// vcpu.go - per-core architectural state.
//
// Grounded on cpu_ie64.go's register file and execution-state layout,
// generalized from a single global CPU to one VCPU struct per SMP core with
// no thread-local state: every helper takes its VCPU explicitly.

package main

const (
	NumRegs   = 32
	IntArgReg = 31 // r31 carries the vector number on interrupt entry
)

// VCPU holds one guest core's architectural state. It is owned by exactly
// one goroutine (the core's run loop) except for diagnostic reads.
type VCPU struct {
	regs [NumRegs]uint32

	ip     uint32
	lastIP uint32
	flags  uint32

	csp uint32 // call stack pointer
	dsp uint32 // data stack pointer
	isp uint32 // ISR stack pointer

	callStackBase uint32
	dataStackBase uint32
	isrStackBase  uint32

	callStackSize uint32
	dataStackSize uint32
	isrStackSize  uint32

	inInterrupt bool

	coreID uint32
	isBSP  bool

	instrCount uint64
}

func (v *VCPU) reg(i byte) uint32      { return v.regs[i&0x1F] }
func (v *VCPU) setReg(i byte, x uint32) { v.regs[i&0x1F] = x }

func (v *VCPU) setZSFromResult(result uint32) {
	if result == 0 {
		v.flags |= FlagZF
	} else {
		v.flags &^= FlagZF
	}
	if int32(result) < 0 {
		v.flags |= FlagSF
	} else {
		v.flags &^= FlagSF
	}
}

func (v *VCPU) setCF(set bool) {
	if set {
		v.flags |= FlagCF
	} else {
		v.flags &^= FlagCF
	}
}

func (v *VCPU) setOF(set bool) {
	if set {
		v.flags |= FlagOF
	} else {
		v.flags &^= FlagOF
	}
}

func (v *VCPU) clearCFOF() {
	v.flags &^= FlagCF | FlagOF
}

// reset restores a VCPU to its power-on state for the given core and
// stack layout, grounded on component_reset.go's per-component Reset()
// convention (mutex-guarded, restores constructor defaults), adapted here
// for a single core rather than a chip.
func (v *VCPU) reset(coreID uint32, isBSP bool, entryIP uint32, layout stackLayout) {
	*v = VCPU{
		coreID:        coreID,
		isBSP:         isBSP,
		ip:            entryIP,
		lastIP:        entryIP,
		callStackBase: layout.callBase,
		dataStackBase: layout.dataBase,
		isrStackBase:  layout.isrBase,
		callStackSize: layout.callSize,
		dataStackSize: layout.dataSize,
		isrStackSize:  layout.isrSize,
		csp:           layout.callSize,
		dsp:           layout.dataSize,
		isp:           layout.isrSize,
	}
}

type stackLayout struct {
	callBase, callSize uint32
	dataBase, dataSize uint32
	isrBase, isrSize   uint32
}

package main

import "testing"

func TestEnterInterruptSavesFrameAndSetsVectorReg(t *testing.T) {
	m := NewMachine(0x10000, 1, nil)
	v := newTestVCPU()
	v.ip = 0x500
	v.flags = FlagZF
	v.setReg(0, 0x1111)
	m.RegisterISR(7, 0x9000)

	if !m.enterInterrupt(v, 7) {
		t.Fatal("enterInterrupt returned false with an installed handler")
	}
	if v.ip != 0x9000 {
		t.Fatalf("ip = 0x%X after entry, want ISR address 0x9000", v.ip)
	}
	if v.reg(IntArgReg) != 7 {
		t.Fatalf("r31 = %d, want vector number 7", v.reg(IntArgReg))
	}
	if !v.inInterrupt {
		t.Fatal("inInterrupt not set after entry")
	}

	m.iret(v)
	if v.ip != 0x500 {
		t.Fatalf("ip after iret = 0x%X, want restored 0x500", v.ip)
	}
	if v.flags != FlagZF {
		t.Fatalf("flags after iret = 0x%X, want restored FlagZF", v.flags)
	}
	if v.reg(0) != 0x1111 {
		t.Fatalf("r0 after iret = 0x%X, want restored 0x1111", v.reg(0))
	}
	if v.inInterrupt {
		t.Fatal("inInterrupt still set after iret")
	}
}

func TestEnterInterruptWithNoHandlerClearsPendingSilently(t *testing.T) {
	m := NewMachine(0x10000, 1, nil)
	v := newTestVCPU()
	// vector 9 never registered: NewMachine fills the IVT with NoHandler;
	// it is written again here so the test states the uninstalled-vector
	// path it exercises.
	m.Write64(IVTBase+9*IVTEntrySize, NoHandler)

	ok := m.enterInterrupt(v, 9)
	if !ok {
		t.Fatal("enterInterrupt should report true (acknowledged) for an uninstalled vector")
	}
	if v.inInterrupt {
		t.Fatal("inInterrupt must not be set when no handler exists")
	}

	m.TriggerInterrupt(0, 9)
	m.checkAndEnterInterrupt(v)
	if m.pending[0][9].Load() {
		t.Fatal("pending bit should be cleared for an uninstalled vector")
	}
}

func TestCheckAndEnterInterruptSkipsWhileAlreadyServicing(t *testing.T) {
	m := NewMachine(0x10000, 1, nil)
	v := newTestVCPU()
	m.RegisterISR(2, 0x9000)
	m.TriggerInterrupt(0, 2)

	v.inInterrupt = true
	m.checkAndEnterInterrupt(v)
	if v.ip == 0x9000 {
		t.Fatal("interrupt entered while already servicing another one")
	}
	if !m.pending[0][2].Load() {
		t.Fatal("pending bit cleared despite re-entrancy guard blocking entry")
	}
}

func TestIretOutsideInterruptIsNoOp(t *testing.T) {
	m := NewMachine(0x10000, 1, nil)
	v := newTestVCPU()
	v.ip = 0x1234
	v.flags = FlagCF
	v.setReg(5, 0xABCD)

	m.iret(v)

	if v.ip != 0x1234 || v.flags != FlagCF || v.reg(5) != 0xABCD {
		t.Fatal("iret outside an active interrupt must not alter VCPU state")
	}
}

func TestIretUnderflowFaults(t *testing.T) {
	m := NewMachine(0x10000, 1, nil)
	v := newTestVCPU()
	v.isp = v.isrStackSize
	v.inInterrupt = true

	defer func() {
		if recover() == nil {
			t.Fatal("expected iret to fault on an empty ISR stack")
		}
	}()
	m.iret(v)
}

func TestEnterInterruptOverflowFaults(t *testing.T) {
	m := NewMachine(0x10000, 1, nil)
	v := newTestVCPU()
	m.RegisterISR(4, 0x9000)
	v.isp = isrFrameSize - 1 // not enough room left for one frame

	defer func() {
		if recover() == nil {
			t.Fatal("expected enterInterrupt to fault when the ISR stack has no room for a frame")
		}
	}()
	m.enterInterrupt(v, 4)
}

func TestCheckAndEnterInterruptClearsPendingOnlyAfterEntry(t *testing.T) {
	m := NewMachine(0x10000, 1, nil)
	v := newTestVCPU()
	m.RegisterISR(3, 0xA000)
	m.TriggerInterrupt(0, 3)

	m.checkAndEnterInterrupt(v)
	if v.ip != 0xA000 {
		t.Fatalf("ip = 0x%X, want ISR entry 0xA000", v.ip)
	}
	if m.pending[0][3].Load() {
		t.Fatal("pending bit should be cleared once the interrupt was actually entered")
	}
}

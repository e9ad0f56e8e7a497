package main

import "testing"

func TestStartAPSetsEntryAndReleasesCore(t *testing.T) {
	m := NewMachine(0x10000, 2, nil)
	m.apEntry = make([]uint32, m.numCores)

	if m.coreReleased[1].Load() {
		t.Fatal("AP core 1 should start unreleased")
	}
	m.startAP(1, 0x3000)
	if !m.coreReleased[1].Load() {
		t.Fatal("startAP did not release the target core")
	}
	if m.apEntry[1] != 0x3000 {
		t.Fatalf("apEntry[1] = 0x%X, want 0x3000", m.apEntry[1])
	}
}

func TestStartAPIgnoresOutOfRangeCore(t *testing.T) {
	m := NewMachine(0x10000, 2, nil)
	m.apEntry = make([]uint32, m.numCores)
	m.startAP(5, 0x3000) // must not panic or grow apEntry out of bounds
}

func TestBootRunsEveryCoreToHalt(t *testing.T) {
	m := NewMachine(0x10000, 2, nil)
	m.disk = &DiskDevice{} // tick() only reads status/opComplete fields, no worker needed
	layout := []stackLayout{
		{callBase: 0x8000, callSize: 0x400, dataBase: 0x8400, dataSize: 0x400, isrBase: 0x8800, isrSize: 0x400},
		{callBase: 0x9000, callSize: 0x400, dataBase: 0x9400, dataSize: 0x400, isrBase: 0x9800, isrSize: 0x400},
	}

	a := &asmBuf{}
	a.emit(OP_HALT, 0, 0, 0, 0)
	a.write(m, selftestProgramBase)

	m.Boot(layout, selftestProgramBase, nil)

	if !m.halted {
		t.Fatal("machine should be halted after BSP executes HALT")
	}
}

func TestRunCoreRecoversFaultInsteadOfCrashing(t *testing.T) {
	m := NewMachine(0x10000, 1, nil)
	m.disk = &DiskDevice{}
	layout := []stackLayout{
		{callBase: 0x8000, callSize: 0x400, dataBase: 0x8400, dataSize: 0x400, isrBase: 0x8800, isrSize: 0x400},
	}

	// An odd entry IP trips fetch's alignment check on the very first
	// instruction boundary, exercising RunCore's recover without any
	// other scaffolding.
	m.Boot(layout, selftestProgramBase+1, nil)

	if !m.vmPanic {
		t.Fatal("expected vmPanic to be set after a guest fault")
	}
}

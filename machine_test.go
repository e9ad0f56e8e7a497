package main

import "testing"

func TestMemoryReadWrite32RoundTrip(t *testing.T) {
	m := NewMachine(0x10000, 1, nil)
	m.Write32(0x100, 0xDEADBEEF)
	if got := m.Read32(0x100); got != 0xDEADBEEF {
		t.Fatalf("Read32 = 0x%08X, want 0xDEADBEEF", got)
	}
}

func TestMemoryWrite64SplitsLittleEndian(t *testing.T) {
	m := NewMachine(0x10000, 1, nil)
	m.Write64(0x200, 0x1122334455667788)
	lo := m.Read32(0x200)
	hi := m.Read32(0x204)
	if lo != 0x55667788 {
		t.Fatalf("low half = 0x%08X, want 0x55667788", lo)
	}
	if hi != 0x11223344 {
		t.Fatalf("high half = 0x%08X, want 0x11223344", hi)
	}
}

func TestFramebufferAliasSharesBacking(t *testing.T) {
	m := NewMachine(0x10000, 1, nil)
	m.Write32(m.fbBase, 0xCAFEBABE)
	if got := m.Read32(LegacyFramebufferBase); got != 0xCAFEBABE {
		t.Fatalf("legacy alias read 0x%08X, want 0xCAFEBABE", got)
	}
	m.Write32(LegacyFramebufferBase+4, 0x01020304)
	if got := m.Read32(m.fbBase + 4); got != 0x01020304 {
		t.Fatalf("primary mapping read 0x%08X, want 0x01020304", got)
	}
}

func TestRead32MisalignedFaults(t *testing.T) {
	m := NewMachine(0x10000, 1, nil)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on misaligned read32")
		}
	}()
	m.Read32(0x101)
}

func TestMapIOFirstRangeWins(t *testing.T) {
	m := NewMachine(0x10000, 1, nil)
	var firstHit, secondHit bool
	m.MapIO(0x9000, 0x9003, func(uint32) uint32 { firstHit = true; return 1 }, nil)
	m.MapIO(0x9000, 0x9003, func(uint32) uint32 { secondHit = true; return 2 }, nil)

	if got := m.Read32(0x9000); got != 1 {
		t.Fatalf("Read32 = %d, want 1 from the first-registered region", got)
	}
	if !firstHit || secondHit {
		t.Fatalf("expected only the first region to be consulted, firstHit=%v secondHit=%v", firstHit, secondHit)
	}
}

func TestPortIODefaultsToRawIOArray(t *testing.T) {
	m := NewMachine(0x10000, 1, nil)
	m.serial = NewSerialDevice(func(byte) {}, nil)
	m.OutPort(200, 0x42)
	if got := m.InPort(200); got != 0x42 {
		t.Fatalf("InPort(200) = 0x%X, want 0x42", got)
	}
}

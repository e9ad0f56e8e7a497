// disk.go - asynchronous, sector-granular DMA disk device.
//
// Grounded on file_io.go/file_io_constants.go's MMIO-device shape
// (HandleRead/HandleWrite dispatch, a constants file, path-safety
// precedent) reworked from synchronous whole-file os.ReadFile/os.WriteFile
// calls to a background worker parked on a sync.Cond, matching
// SPEC_FULL.md §4.5. No generation counter is kept: at most one command is
// in flight, because a command written while the device is busy is ignored.
package main

import (
	"os"
	"sync"
)

// DiskDevice owns the backing image file and the worker goroutine that
// performs sector transfers to/from RAM.
type DiskDevice struct {
	mu   sync.Mutex
	cond *sync.Cond

	file *os.File
	size int64

	lba, memAddr, count uint32
	cmd                 byte
	status              byte
	opComplete          bool
	running             bool

	machine *Machine
	log     *Logger
}

// AttachMachine gives the worker goroutine a way to reach RAM for DMA
// transfers without the Machine and DiskDevice needing to be constructed
// in lockstep.
func (d *DiskDevice) AttachMachine(m *Machine) {
	d.mu.Lock()
	d.machine = m
	d.mu.Unlock()
}

// NewDiskDevice opens (creating and zero-truncating if missing) the disk
// image and starts its worker goroutine.
func NewDiskDevice(path string, defaultSizeBytes int64, log *Logger) (*DiskDevice, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	size := info.Size()
	if size == 0 {
		if err := f.Truncate(defaultSizeBytes); err != nil {
			f.Close()
			return nil, err
		}
		size = defaultSizeBytes
	}
	d := &DiskDevice{file: f, size: size, running: true, log: log}
	d.cond = sync.NewCond(&d.mu)
	go d.workerLoop()
	return d, nil
}

func (d *DiskDevice) Close() {
	d.mu.Lock()
	d.running = false
	d.cond.Signal()
	d.mu.Unlock()
	d.file.Close()
}

// readPortLocked / writePortLocked are invoked with Machine.mu held, so
// they must not block. Submission only arms the command and wakes the
// worker; it never waits for completion.
func (d *DiskDevice) readPortLocked(port byte) uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch port {
	case PortDiskLBA:
		return d.lba
	case PortDiskMem:
		return d.memAddr
	case PortDiskCount:
		return d.count
	case PortDiskStatus:
		return uint32(d.status)
	}
	return 0
}

func (d *DiskDevice) writePortLocked(port byte, val uint32) {
	d.mu.Lock()
	switch port {
	case PortDiskLBA:
		d.lba = val
	case PortDiskMem:
		d.memAddr = val
	case PortDiskCount:
		d.count = val
	case PortDiskCmd:
		if d.status == DiskFree {
			d.cmd = byte(val)
			d.status = DiskBusy
			d.cond.Signal()
		}
	}
	d.mu.Unlock()
}

func (d *DiskDevice) workerLoop() {
	for {
		d.mu.Lock()
		for d.cmd == DiskCmdNone && d.running {
			d.cond.Wait()
		}
		if !d.running {
			d.mu.Unlock()
			return
		}
		cmd, lba, memAddr, count := d.cmd, d.lba, d.memAddr, d.count
		d.mu.Unlock()

		d.perform(cmd, lba, memAddr, count)

		d.mu.Lock()
		d.cmd = DiskCmdNone
		d.opComplete = true
		d.mu.Unlock()
	}
}

// perform is called off the Machine lock; it takes Machine.mu once for the
// whole RAM side of a transfer, matching the
// DMA-holds-the-shared-lock-during-transfer rule in SPEC_FULL.md §5.
func (d *DiskDevice) perform(cmd byte, lba, memAddr, count uint32) {
	d.mu.Lock()
	m := d.machine
	d.mu.Unlock()
	if m == nil {
		return
	}
	byteCount := int64(count) * DiskSectorSize
	if int64(memAddr)+byteCount > int64(m.MemorySize()) {
		if d.log != nil {
			d.log.Warn("disk DMA bound violation", "mem", memAddr, "count", count)
		}
		return
	}
	offset := int64(lba) * DiskSectorSize
	if offset+byteCount > d.size {
		if d.log != nil {
			d.log.Warn("disk out of range", "lba", lba, "count", count)
		}
		return
	}

	buf := make([]byte, byteCount)
	switch cmd {
	case DiskCmdRead:
		if _, err := d.file.ReadAt(buf, offset); err != nil {
			if d.log != nil {
				d.log.Error("disk read failed", "err", err)
			}
			return
		}
		m.mu.Lock()
		for i, b := range buf {
			m.write8Locked(memAddr+uint32(i), b)
		}
		m.mu.Unlock()
	case DiskCmdWrite:
		m.mu.Lock()
		for i := range buf {
			buf[i] = m.read8Locked(memAddr + uint32(i))
		}
		m.mu.Unlock()
		if _, err := d.file.WriteAt(buf, offset); err != nil {
			if d.log != nil {
				d.log.Error("disk write failed", "err", err)
			}
			return
		}
		_ = d.file.Sync()
	}
}

// tick is called once per BSP instruction boundary to observe worker
// completion and raise the completion interrupt (SPEC_FULL.md §4.5).
func (d *DiskDevice) tick(m *Machine) {
	d.mu.Lock()
	if d.status == DiskBusy && d.opComplete {
		d.status = DiskFree
		d.opComplete = false
		d.mu.Unlock()
		m.TriggerInterrupt(0, VectorDiskComplete)
		return
	}
	d.mu.Unlock()
}

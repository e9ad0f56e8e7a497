// main.go - CLI entry point.
//
// Grounded on the teacher's original main.go for its flag-driven,
// construct-then-run shape, pared down from per-architecture GTK4/GUI/
// audio-mode selection (IE32/IE64/6502/M68K/Z80/X86 CPUs, Vulkan/OpenGL/
// GTK4 window backends, oto audio) to the single SMP guest ISA and the one
// windowed display backend this system's SPEC_FULL.md calls for.
package main

import (
	"flag"
	"fmt"
	"os"
)

const defaultDiskSize = 16 * 1024 * 1024
const perCoreStackSize = 0x1000 // call, data, and isr stacks each get this much

func main() {
	os.Exit(run())
}

func run() int {
	binPath := flag.String("bin", "boot.bin", "guest image to load")
	smp := flag.Int("smp", 1, "number of guest cores (1-64)")
	diskPath := flag.String("disk", "disk.img", "disk image path")
	selftest := flag.Bool("selftest", false, "run the built-in self-test scenarios and exit")
	help := flag.Bool("help", false, "show usage")
	flag.Parse()

	if *help {
		flag.Usage()
		return 0
	}

	log := NewDefaultLogger("main")

	if *selftest {
		return runSelfTests(log)
	}

	if *smp < 1 || *smp > 64 {
		log.Error("invalid --smp value", "smp", *smp)
		return 1
	}

	m, layout, entryIP, err := buildMachine(*binPath, *diskPath, *smp, log)
	if err != nil {
		log.Error("startup failed", "err", err)
		return 1
	}
	defer m.disk.Close()

	display, err := NewVideoOutput()
	if err != nil {
		log.Error("display init failed", "err", err)
		return 1
	}
	if err := display.SetDisplayConfig(DisplayConfig{Width: FBWidth, Height: FBHeight, Scale: 2, RefreshRate: 60}); err != nil {
		log.Error("display config failed", "err", err)
		return 1
	}
	if err := display.Start(); err != nil {
		log.Error("display start failed", "err", err)
		return 1
	}
	defer display.Close()

	host := NewTerminalHost(m)
	host.Start()
	defer host.Stop()

	if kb, ok := display.(KeyboardInput); ok {
		kb.SetKeyHandler(m.RouteHostKey)
	}

	dbg := NewDebuggerFromEnv()

	done := make(chan struct{})
	go func() {
		m.Boot(layout, entryIP, dbg)
		close(done)
	}()

	runDisplayLoop(m, display, done)

	if m.vmPanic {
		return 1
	}
	return 0
}

// runDisplayLoop pumps the display at the machine's reported refresh rate
// until the machine halts or the core goroutines finish (SPEC_FULL.md §4.9).
func runDisplayLoop(m *Machine, display VideoOutput, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		default:
		}
		_ = display.UpdateFrame(m.snapshotFramebuffer())
		_ = display.WaitForVSync()
		if m.Halted() {
			<-done
			return
		}
	}
}

// buildMachine wires RAM, devices, and the loader, and computes the
// per-core stack layout main.go hands to Machine.Boot.
func buildMachine(binPath, diskPath string, numCores int, log *Logger) (*Machine, []stackLayout, uint32, error) {
	m := NewMachine(DefaultMemorySize, numCores, log)

	img, err := LoadImage(m, binPath)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("main: %w", err)
	}

	timer := NewTimerDevice()
	timer.Register(m)
	m.timer = timer

	disk, err := NewDiskDevice(diskPath, defaultDiskSize, log)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("main: %w", err)
	}
	disk.AttachMachine(m)
	m.disk = disk

	m.serial = NewSerialDevice(func(b byte) { fmt.Printf("%c", b) }, nil)

	layout := computeStackLayout(m.MemorySize(), numCores)
	return m, layout, img.TextBase, nil
}

// computeStackLayout carves numCores sets of call/data/isr stacks from the
// top of RAM (SPEC_FULL.md §6's multi-core note), each perCoreStackSize
// bytes.
func computeStackLayout(memSize uint32, numCores int) []stackLayout {
	perCore := uint32(3 * perCoreStackSize)
	top := memSize - uint32(numCores)*perCore
	layouts := make([]stackLayout, numCores)
	for i := 0; i < numCores; i++ {
		base := top + uint32(i)*perCore
		layouts[i] = stackLayout{
			callBase: base, callSize: perCoreStackSize,
			dataBase: base + perCoreStackSize, dataSize: perCoreStackSize,
			isrBase: base + 2*perCoreStackSize, isrSize: perCoreStackSize,
		}
	}
	return layouts
}

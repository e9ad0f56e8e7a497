// loader.go - image header parsing and RAM layout application.
//
// Grounded on program_executor.go's load-then-launch shape (its
// generation/session counter, which guards against a stale async load
// completing after a newer one started, is not used: loading here is
// synchronous and there is no async load race). Rebuilt directly from the 24-byte header in
// SPEC_FULL.md §6 rather than the teacher's per-architecture dispatch.
package main

import (
	"encoding/binary"
	"fmt"
	"os"
)

const imageHeaderSize = 24

// ImageLayout is the parsed 24-byte header (SPEC_FULL.md §6).
type ImageLayout struct {
	TextBase, TextSize uint32
	DataBase, DataSize uint32
	BSSBase, BSSSize   uint32
}

// LoadImage parses an image file and applies its layout to RAM, zeroing
// bss. Returns the parsed layout so the caller can compute entry IP and
// stack bases.
func LoadImage(m *Machine, path string) (ImageLayout, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ImageLayout{}, fmt.Errorf("loader: %w", err)
	}
	if len(raw) < imageHeaderSize {
		return ImageLayout{}, fmt.Errorf("loader: image %q too small for header", path)
	}

	layout := ImageLayout{
		TextBase: binary.LittleEndian.Uint32(raw[0:4]),
		TextSize: binary.LittleEndian.Uint32(raw[4:8]),
		DataBase: binary.LittleEndian.Uint32(raw[8:12]),
		DataSize: binary.LittleEndian.Uint32(raw[12:16]),
		BSSBase:  binary.LittleEndian.Uint32(raw[16:20]),
		BSSSize:  binary.LittleEndian.Uint32(raw[20:24]),
	}

	if layout.TextSize%InstrSize != 0 {
		return ImageLayout{}, fmt.Errorf("loader: text_size %d is not a multiple of %d", layout.TextSize, InstrSize)
	}
	memSize := uint64(m.MemorySize())
	segments := []struct {
		name        string
		base, size uint32
	}{
		{"text", layout.TextBase, layout.TextSize},
		{"data", layout.DataBase, layout.DataSize},
		{"bss", layout.BSSBase, layout.BSSSize},
	}
	for _, seg := range segments {
		if uint64(seg.base)+uint64(seg.size) > memSize {
			return ImageLayout{}, fmt.Errorf("loader: segment %s [0x%X,0x%X) exceeds memory size 0x%X",
				seg.name, seg.base, uint64(seg.base)+uint64(seg.size), memSize)
		}
	}

	text := raw[imageHeaderSize:]
	if uint32(len(text)) < layout.TextSize {
		return ImageLayout{}, fmt.Errorf("loader: image truncated before end of text segment")
	}
	textBytes := text[:layout.TextSize]
	rest := text[layout.TextSize:]
	if uint32(len(rest)) < layout.DataSize {
		return ImageLayout{}, fmt.Errorf("loader: image truncated before end of data segment")
	}
	dataBytes := rest[:layout.DataSize]

	for i, b := range textBytes {
		m.Write8(layout.TextBase+uint32(i), b)
	}
	for i, b := range dataBytes {
		m.Write8(layout.DataBase+uint32(i), b)
	}
	for i := uint32(0); i < layout.BSSSize; i++ {
		m.Write8(layout.BSSBase+i, 0)
	}

	return layout, nil
}

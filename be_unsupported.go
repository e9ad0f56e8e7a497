//go:build !(amd64 || arm64 || 386 || arm || riscv64 || loong64 || mipsle || mips64le || ppc64le || wasm)

package main

// coreforge's atomic RAM-cell accessors assume little-endian byte order
// when reinterpreting 32-bit cells; this system has no cross-endian support
// (SPEC_FULL.md Non-goals).
var _ = "coreforge requires a little-endian architecture" + 1

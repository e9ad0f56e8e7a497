// opcodes.go - guest instruction set encoding and opcode table.

package main

// Instructions are fixed 8-byte little-endian 64-bit words:
//
//	bits 63..56: opcode (byte 7 in memory)
//	bits 55..48: rd     (byte 6)
//	bits 47..40: rs1    (byte 5)
//	bits 39..32: rs2    (byte 4)
//	bits 31..0:  imm32, signed (bytes 0-3)
const InstrSize = 8

const (
	// Integer ALU
	OP_ADD = 0x01
	OP_SUB = 0x02
	OP_MUL = 0x03
	OP_DIV = 0x04
	OP_MOD = 0x05
	OP_AND = 0x06
	OP_OR  = 0x07
	OP_XOR = 0x08
	OP_NOT = 0x09
	OP_SHL = 0x0A
	OP_SHR = 0x0B
	OP_SAR = 0x0C
	OP_INC = 0x0D

	// Immediate variants
	OP_ADDI = 0x10
	OP_SUBI = 0x11
	OP_ANDI = 0x12
	OP_ORI  = 0x13
	OP_XORI = 0x14
	OP_SHLI = 0x15
	OP_SHRI = 0x16

	// Compare
	OP_CMP  = 0x20
	OP_CMPI = 0x21

	// Move
	OP_MOV  = 0x28
	OP_MOVI = 0x29

	// Memory
	OP_LOAD    = 0x30
	OP_STORE   = 0x31
	OP_LOAD32  = 0x32
	OP_STORE32 = 0x33
	OP_LOADX32 = 0x34
	OP_STOREX32 = 0x35

	// Block memory
	OP_MEMSET = 0x38
	OP_MEMCPY = 0x39

	// Control flow
	OP_JMP  = 0x40
	OP_JZ   = 0x41
	OP_JNZ  = 0x42
	OP_JG   = 0x43
	OP_JGE  = 0x44
	OP_JL   = 0x45
	OP_JLE  = 0x46
	OP_JC   = 0x47
	OP_JNC  = 0x48
	OP_CALL  = 0x4A
	OP_CALLR = 0x4B
	OP_RET   = 0x4C
	OP_HALT  = 0x4D

	// Stack
	OP_PUSH = 0x50
	OP_POP  = 0x51

	// Port I/O
	OP_IN  = 0x58
	OP_OUT = 0x59

	// Interrupts
	OP_INT  = 0x60
	OP_IRET = 0x61

	// Floating point (FP-in-GPR, IEEE-754 single)
	OP_FADD    = 0x68
	OP_FSUB    = 0x69
	OP_FMUL    = 0x6A
	OP_FDIV    = 0x6B
	OP_FNEG    = 0x6C
	OP_FABS    = 0x6D
	OP_FSQRT   = 0x6E
	OP_FCMP    = 0x6F
	OP_ITOF    = 0x70
	OP_FTOI    = 0x71
	OP_FLOAD32  = 0x72
	OP_FSTORE32 = 0x73

	// Atomics / synchronization
	OP_CAS   = 0x78
	OP_XADD  = 0x79
	OP_XCHG  = 0x7A
	OP_LDAR  = 0x7B
	OP_STLR  = 0x7C
	OP_FENCE = 0x7D
	OP_PAUSE = 0x7E

	// SMP
	OP_STARTAP = 0x80
	OP_IPI     = 0x81
	OP_CPUID   = 0x82
)

// Flag bits within VCPU.flags.
const (
	FlagZF = 1 << 0
	FlagSF = 1 << 1
	FlagCF = 1 << 2
	FlagOF = 1 << 3
	FlagPF = 1 << 4 // reserved, never set
	FlagAF = 1 << 5 // reserved, never set
)

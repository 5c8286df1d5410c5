// Package iset implements the pluggable instruction-set model: a dense
// 256-entry opcode table plus the per-variant feature flags that let the
// shared CPU execution engine in package cpu drive MOS 6502, WDC 65C02,
// Ricoh 2A03, or a caller's own patched variant without any change to the
// engine itself. Variants differ only by table contents, never by subclass.
package iset

import (
	"github.com/mos6502fam/core/bus"
	"github.com/mos6502fam/core/nums"
)

// Flag masks for the P status register, fixed across every 65xx variant.
const (
	FlagNegative  = nums.Byte(0x80)
	FlagOverflow  = nums.Byte(0x40)
	FlagS1        = nums.Byte(0x20) // conventionally always set
	FlagBreak     = nums.Byte(0x10) // transient: set when pushed status came from BRK
	FlagDecimal   = nums.Byte(0x08)
	FlagInterrupt = nums.Byte(0x04)
	FlagZero      = nums.Byte(0x02)
	FlagCarry     = nums.Byte(0x01)
)

// Fixed vector addresses, identical across variants.
const (
	NMIVector   = nums.Word(0xFFFA)
	ResetVector = nums.Word(0xFFFC)
	IRQVector   = nums.Word(0xFFFE)
)

// CPU is the state handle an Entry's Execute function is given. It is
// implemented by cpu.Chip; the interface lives here (rather than iset
// depending on cpu) so the instruction-set model stays a standalone,
// independently testable package with the execution engine as its sole
// consumer.
type CPU interface {
	A() nums.Byte
	SetA(nums.Byte)
	X() nums.Byte
	SetX(nums.Byte)
	Y() nums.Byte
	SetY(nums.Byte)
	SP() nums.Byte
	SetSP(nums.Byte)
	PC() nums.Word
	SetPC(nums.Word)
	P() nums.Byte
	SetP(nums.Byte)
	Flag(mask nums.Byte) bool
	SetFlag(mask nums.Byte, set bool)

	// Read/Write perform a tagged bus access through the CPU's bound bus.
	Read(addr nums.Word, tag bus.AccessTag) nums.Byte
	Write(addr nums.Word, val nums.Byte, tag bus.AccessTag)

	// Push/Pull implement the page-1 stack, wrapping SP mod 256.
	Push(val nums.Byte)
	Pull() nums.Byte

	// SpendCycles adds n cycles to the running total beyond an opcode's
	// base cost, for branches taken, page crossings, and decimal-mode
	// arithmetic on variants that charge extra for it.
	SpendCycles(n nums.Byte)

	// DecimalSupported reports the active variant's SUPPORTS_DECIMAL_MODE.
	DecimalSupported() bool

	// DecimalCyclePenalty reports whether the active variant charges one
	// extra cycle for ADC/SBC executed with the decimal flag set (WDC
	// 65C02; NMOS parts do not).
	DecimalCyclePenalty() bool

	// RequestDMA passes a DMA enqueue through to the bound bus. The CPU
	// never originates DMA itself; this exists so an instruction handler
	// (e.g. a patched opcode modeling an OAM-DMA register write) can push
	// requests through the same path an external driver would.
	RequestDMA(req bus.DmaRequest) bus.DmaResult

	// Halt marks the CPU halted, ending the current run after this
	// instruction completes.
	Halt()

	// StopOnBRK reports whether the active run was configured to stop on
	// BRK; the BRK table entry (opcode 0x00) uses this to decide whether
	// to halt itself.
	StopOnBRK() bool

	// NoteBRK records that the instruction currently executing is BRK, so
	// the driver can distinguish a BRK-induced halt from an illegal-opcode
	// trap when both end in Halted.
	NoteBRK()

	// EnterInterrupt performs the shared interrupt-entry sequence: push PC
	// (high then low), push P (with the break flag set appropriately),
	// set the interrupt-disable flag, and load PC from vector. brk
	// distinguishes a software BRK (break flag set on the pushed status,
	// PC pre-incremented past the signature byte) from a hardware
	// IRQ/NMI entry (break flag clear, no pre-increment).
	EnterInterrupt(vector nums.Word, brk bool)
}

// Entry is one slot of a 256-entry instruction table.
type Entry struct {
	// Name is the opcode mnemonic plus addressing mode, for diagnostics
	// and disassembly; it has no effect on execution.
	Name string
	// BaseCycles is the minimum cycle cost of this opcode, consumed
	// unconditionally by the CPU after Execute returns.
	BaseCycles nums.Byte
	// Execute performs all reads, writes, and state updates for the
	// opcode, and advances PC past any operand bytes it consumes.
	Execute func(c CPU)
}

// Table is a dense, 256-entry instruction table indexed by opcode byte.
type Table [256]Entry

// With returns a copy of t with opcode's entry replaced by e, leaving every
// other slot unchanged. Table is an array (a Go value type), so the
// assignment below already operates on the caller's copy: With is
// idempotent and side-effect-free with respect to t's original binding.
func (t Table) With(opcode nums.Byte, e Entry) Table {
	t[opcode] = e
	return t
}

// Variant names a complete instruction-set choice: a table plus the
// feature flags that change how some of its entries behave.
type Variant struct {
	Name  string
	Table Table
	// SupportsDecimalMode, when false, means the D flag has no effect on
	// ADC/SBC: binary arithmetic is always used (Ricoh 2A03 in the NES).
	SupportsDecimalMode bool
	// DecimalCyclePenalty, when true, charges ADC/SBC one extra cycle
	// while the decimal flag is set, matching WDC 65C02 timing.
	DecimalCyclePenalty bool
}

// trapEntry builds the Entry used for opcodes a variant's table leaves
// unimplemented: halting the CPU is one of the two per-variant policies
// (the alternative NOP-fallback is built with nopEntry below). Both are
// static table choices, never a dynamic decision made at fetch time.
func trapEntry(cycles nums.Byte) Entry {
	return Entry{
		Name:       "TRAP",
		BaseCycles: cycles,
		Execute: func(c CPU) {
			c.Halt()
		},
	}
}

// nopEntry builds a fallback Entry that behaves like a NOP of the given
// operand width, for variants that choose to treat unimplemented opcodes as
// silent no-ops rather than halting.
func nopEntry(name string, cycles nums.Byte, operandBytes nums.Word) Entry {
	return Entry{
		Name:       name,
		BaseCycles: cycles,
		Execute: func(c CPU) {
			c.SetPC(c.PC() + operandBytes)
		},
	}
}

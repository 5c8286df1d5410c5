// Package cpu implements the cycle-budgeted 6502-family execution engine:
// the register file, flag register, and the Tick/Run/RunUntil drivers that
// walk an iset.Variant's opcode table against an external bus.Bus,
// including DMA interleaving and configurable stop conditions.
package cpu

import (
	"fmt"

	"github.com/mos6502fam/core/bus"
	"github.com/mos6502fam/core/iset"
	"github.com/mos6502fam/core/nums"
)

// InvalidCPUState represents a construction-time or configuration misuse of
// the engine. In-band conditions (illegal opcodes, wild branches, stack
// underflow) belong to the bus, the instruction table, or a RunConfig
// predicate to handle, so this type only ever surfaces from constructors,
// never from Tick, Run or RunUntil.
type InvalidCPUState struct {
	Reason string
}

// Error implements error.
func (e InvalidCPUState) Error() string {
	return fmt.Sprintf("invalid CPU state: %s", e.Reason)
}

// Chip is a 6502-family CPU instance bound to one iset.Variant for its
// lifetime. The variant is selected at construction and never changes.
type Chip struct {
	a, x, y, sp nums.Byte
	pc          nums.Word
	p           nums.Byte
	cycles      uint64
	halted      bool

	variant iset.Variant
	b       bus.Bus

	// extraThisTick accumulates SpendCycles calls made by the opcode
	// currently executing, on top of its table entry's BaseCycles.
	extraThisTick uint64
	// stopOnBRK mirrors the active RunConfig for the duration of a
	// RunUntil call so the BRK entry can decide whether to halt itself;
	// false for bare Tick/Run calls.
	stopOnBRK bool
	// lastWasBRK is set by NoteBRK when the instruction just executed was
	// BRK, so RunUntil can tell a BRK-induced halt apart from a halt
	// caused by an illegal-opcode trap.
	lastWasBRK bool
}

// Option customizes a newly constructed Chip's starting state. Defaults
// match the documented power-on state; options exist for tests and
// debuggers that need a different starting point.
type Option func(*Chip)

// WithStartSP overrides the default initial stack pointer (0xFD).
func WithStartSP(sp nums.Byte) Option {
	return func(c *Chip) { c.sp = sp }
}

// WithStartP overrides the default initial flag register.
func WithStartP(p nums.Byte) Option {
	return func(c *Chip) { c.p = p }
}

// WithStartRegisters overrides the default initial A/X/Y (all zero).
func WithStartRegisters(a, x, y nums.Byte) Option {
	return func(c *Chip) { c.a, c.x, c.y = a, x, y }
}

func newChip(variant iset.Variant, opts []Option) *Chip {
	c := &Chip{
		sp:      0xFD,
		p:       iset.FlagInterrupt | iset.FlagS1,
		variant: variant,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// New initializes all registers to their defined defaults (A=X=Y=0,
// SP=0xFD, P has I set, PC=initialPC, cycles=0) and binds variant's table
// for the Chip's lifetime.
func New(variant iset.Variant, initialPC nums.Word, opts ...Option) *Chip {
	c := newChip(variant, opts)
	c.pc = initialPC
	return c
}

// NewWithProgram writes bytes into b starting at loadAddr (via
// bus.DataWrite, wrapping mod 65536 exactly as addresses wrap throughout
// this core), then constructs a Chip with PC=initialPC.
func NewWithProgram(b bus.Bus, variant iset.Variant, loadAddr nums.Word, program []nums.Byte, initialPC nums.Word, opts ...Option) (*Chip, error) {
	if b == nil {
		return nil, InvalidCPUState{"NewWithProgram: bus is nil"}
	}
	addr := loadAddr
	for _, v := range program {
		b.Write(addr, v, bus.DataWrite)
		addr++
	}
	return New(variant, initialPC, opts...), nil
}

// NewWithResetVector reads the Word at 0xFFFC/0xFFFD via bus.VectorFetch
// and constructs a Chip with PC set to that value.
func NewWithResetVector(b bus.Bus, variant iset.Variant, opts ...Option) (*Chip, error) {
	if b == nil {
		return nil, InvalidCPUState{"NewWithResetVector: bus is nil"}
	}
	c := newChip(variant, opts)
	lo := b.Read(iset.ResetVector, bus.VectorFetch)
	hi := b.Read(iset.ResetVector+1, bus.VectorFetch)
	c.pc = nums.FromBytes(hi, lo)
	return c, nil
}

// --- iset.CPU implementation ---

func (c *Chip) A() nums.Byte      { return c.a }
func (c *Chip) SetA(v nums.Byte)  { c.a = v }
func (c *Chip) X() nums.Byte      { return c.x }
func (c *Chip) SetX(v nums.Byte)  { c.x = v }
func (c *Chip) Y() nums.Byte      { return c.y }
func (c *Chip) SetY(v nums.Byte)  { c.y = v }
func (c *Chip) SP() nums.Byte     { return c.sp }
func (c *Chip) SetSP(v nums.Byte) { c.sp = v }
func (c *Chip) PC() nums.Word     { return c.pc }
func (c *Chip) SetPC(v nums.Word) { c.pc = v }
func (c *Chip) P() nums.Byte      { return c.p }
func (c *Chip) SetP(v nums.Byte)  { c.p = v }

// Cycles returns the monotonically increasing count of cycles consumed by
// this Chip since construction, including DMA cycles.
func (c *Chip) Cycles() uint64 { return c.cycles }

// Halted reports whether the Chip has reached the terminal Halted state.
func (c *Chip) Halted() bool { return c.halted }

func (c *Chip) Flag(mask nums.Byte) bool { return c.p&mask != 0 }

func (c *Chip) SetFlag(mask nums.Byte, set bool) {
	if set {
		c.p |= mask
	} else {
		c.p &^= mask
	}
}

func (c *Chip) Read(addr nums.Word, tag bus.AccessTag) nums.Byte {
	return c.b.Read(addr, tag)
}

func (c *Chip) Write(addr nums.Word, val nums.Byte, tag bus.AccessTag) {
	c.b.Write(addr, val, tag)
}

// stackAddr returns the effective address for the current SP; the stack
// never leaves page 1.
func (c *Chip) stackAddr() nums.Word { return 0x0100 | nums.Word(c.sp) }

func (c *Chip) Push(val nums.Byte) {
	c.b.Write(c.stackAddr(), val, bus.StackPush)
	c.sp--
}

func (c *Chip) Pull() nums.Byte {
	c.sp++
	return c.b.Read(c.stackAddr(), bus.StackPull)
}

func (c *Chip) SpendCycles(n nums.Byte) {
	c.cycles += uint64(n)
	c.extraThisTick += uint64(n)
}

func (c *Chip) DecimalSupported() bool { return c.variant.SupportsDecimalMode }

func (c *Chip) DecimalCyclePenalty() bool { return c.variant.DecimalCyclePenalty }

// RequestDMA passes a DMA enqueue through to the bus bound by the current
// Tick/Run/RunUntil call. It exists for instruction handlers; an external
// driver holding the bus should call its RequestDMA directly.
func (c *Chip) RequestDMA(req bus.DmaRequest) bus.DmaResult {
	if c.b == nil {
		return bus.DmaResult{Reason: "no bus bound: RequestDMA is only valid inside a tick"}
	}
	return c.b.RequestDMA(req)
}

func (c *Chip) Halt() { c.halted = true }

func (c *Chip) StopOnBRK() bool { return c.stopOnBRK }

func (c *Chip) NoteBRK() { c.lastWasBRK = true }

// EnterInterrupt implements the shared interrupt-entry sequence: push PC
// high/low, push P (break flag set for brk, cleared for hardware IRQ/NMI),
// set I, fetch the vector, load PC.
func (c *Chip) EnterInterrupt(vector nums.Word, brk bool) {
	if brk {
		c.pc++ // BRK's "signature byte": the operand byte is skipped.
	}
	c.Push(c.pc.Hi())
	c.Push(c.pc.Lo())
	push := c.p | iset.FlagS1
	if brk {
		push |= iset.FlagBreak
	} else {
		push &^= iset.FlagBreak
	}
	c.Push(push)
	c.SetFlag(iset.FlagInterrupt, true)
	lo := c.b.Read(vector, bus.VectorFetch)
	hi := c.b.Read(vector+1, bus.VectorFetch)
	c.pc = nums.FromBytes(hi, lo)
}

// --- Execution API ---

// Tick executes exactly one instruction against b: fetches the opcode byte
// at PC, indexes the active table, invokes Execute, adds BaseCycles to the
// cycle counter, calls b.OnTick, then drains any pending DMA via
// b.PollDMACycle (each burst added to the counter and announced via
// OnTick too). Returns the number of cycles this call added (instruction
// plus DMA drain). A halted Chip ticks as a no-op returning 0.
func (c *Chip) Tick(b bus.Bus) uint64 {
	if c.halted {
		return 0
	}
	c.b = b

	op := c.b.Read(c.pc, bus.OpcodeFetch)
	c.pc++

	entry := c.variant.Table[op]
	c.extraThisTick = 0
	c.lastWasBRK = false
	entry.Execute(c)

	c.cycles += uint64(entry.BaseCycles)
	total := uint64(entry.BaseCycles) + c.extraThisTick
	c.b.OnTick(nums.Byte(total))

	for {
		n, ok := c.b.PollDMACycle()
		if !ok {
			break
		}
		c.cycles += uint64(n)
		total += uint64(n)
		c.b.OnTick(n)
	}
	return total
}

// RaiseIRQ performs a hardware IRQ interrupt entry if the interrupt-disable
// flag is clear; masked IRQs are silently ignored, matching real hardware.
// Never auto-triggered: an external driver calls this when it observes its
// own IRQ source asserted.
func (c *Chip) RaiseIRQ(b bus.Bus) {
	if c.halted || c.Flag(iset.FlagInterrupt) {
		return
	}
	c.b = b
	c.EnterInterrupt(iset.IRQVector, false)
	c.cycles += 7
	c.b.OnTick(7)
}

// RaiseNMI performs a hardware NMI interrupt entry. NMI is edge-triggered
// and never masked by the interrupt-disable flag.
func (c *Chip) RaiseNMI(b bus.Bus) {
	if c.halted {
		return
	}
	c.b = b
	c.EnterInterrupt(iset.NMIVector, false)
	c.cycles += 7
	c.b.OnTick(7)
}

// Reset transitions a halted or running Chip back to Running, restoring PC
// from the reset vector. A/X/Y are preserved; SP is decremented by 3 as if
// three fake pushes occurred; I is set. This takes 7 cycles, mirroring the
// interrupt-entry timing it shadows.
func (c *Chip) Reset(b bus.Bus) {
	c.b = b
	c.sp -= 3
	c.SetFlag(iset.FlagInterrupt, true)
	c.halted = false
	lo := c.b.Read(iset.ResetVector, bus.VectorFetch)
	hi := c.b.Read(iset.ResetVector+1, bus.VectorFetch)
	c.pc = nums.FromBytes(hi, lo)
	c.cycles += 7
	c.b.OnTick(7)
}

// Run repeatedly ticks until cycles consumed since entry >= maxCycles or
// the Chip halts.
func (c *Chip) Run(b bus.Bus, maxCycles uint64) RunSummary {
	return c.RunUntil(b, RunConfig{MaxCycles: &maxCycles})
}

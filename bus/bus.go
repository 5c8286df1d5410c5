// Package bus defines the synchronous memory interface the CPU execution
// engine drives every instruction through, plus two reference
// implementations (SimpleBus and TestingBus) used by tests and examples.
// A real machine (Apple I, NES, an Atari 2600 cartridge mapper) supplies its
// own Bus; this package only fixes the contract the core depends on.
package bus

import (
	"log"

	"github.com/mos6502fam/core/nums"
)

// AccessTag classifies a single bus transaction so a stateful Bus (one with
// peripherals, latches, or mirrored regions) can tell which kind of access
// is in flight and react accordingly. The CPU never interprets these tags
// itself; it only attaches the correct one to each Read/Write it issues.
type AccessTag int

const (
	OpcodeFetch AccessTag = iota
	OperandFetch
	DataRead
	DataWrite
	StackPush
	StackPull
	VectorFetch
	DmaRead
	DmaWrite
)

// String renders the access tag for diagnostics.
func (a AccessTag) String() string {
	switch a {
	case OpcodeFetch:
		return "OpcodeFetch"
	case OperandFetch:
		return "OperandFetch"
	case DataRead:
		return "DataRead"
	case DataWrite:
		return "DataWrite"
	case StackPush:
		return "StackPush"
	case StackPull:
		return "StackPull"
	case VectorFetch:
		return "VectorFetch"
	case DmaRead:
		return "DmaRead"
	case DmaWrite:
		return "DmaWrite"
	default:
		return "AccessTag(unknown)"
	}
}

// DmaRequest describes a burst of DMA cycles an instruction handler or an
// external driver wants the bus to perform on its behalf. The CPU never
// originates these itself; it only passes them through.
type DmaRequest struct {
	// Cycles is how many cycles the requested transfer will consume.
	Cycles nums.Byte
	// Reason is a short label for diagnostics (e.g. "OAM DMA").
	Reason string
}

// DmaResult is the bus's reply to a DmaRequest.
type DmaResult struct {
	Accepted bool
	Reason   string // set when Accepted is false
}

// Bus is the contract the CPU execution engine depends on for every memory
// transaction. Implementations may be stateful and non-pure; the CPU makes
// no caching assumptions and reissues a Read/Write for every access a real
// 6502 would perform.
type Bus interface {
	// Read returns the byte visible at addr. Implementations may mutate
	// internal state as a side effect (e.g. consuming an input latch).
	Read(addr nums.Word, access AccessTag) nums.Byte
	// Write delivers value to addr. Implementations may ignore, mirror, or
	// route the write to a peripheral.
	Write(addr nums.Word, value nums.Byte, access AccessTag)
	// OnTick advances the bus's internal clock by cycles. Called by the CPU
	// once per instruction and once per drained DMA burst.
	OnTick(cycles nums.Byte)
	// RequestDMA accepts or rejects a DMA enqueue.
	RequestDMA(req DmaRequest) DmaResult
	// PollDMACycle is queried by the CPU after every instruction. Each call
	// that returns (n, true) represents n cycles of DMA the CPU must add to
	// its own cycle counter and announce via OnTick. The CPU drains until
	// this returns (_, false).
	PollDMACycle() (nums.Byte, bool)
}

// SimpleBus is a flat 64 KiB RAM bus with no DMA support: RequestDMA always
// rejects and PollDMACycle always reports nothing pending. Addresses wrap
// mod 65536 so writes past the end of a load never panic; they simply alias
// back into the space.
type SimpleBus struct {
	ram    [65536]nums.Byte
	logger *log.Logger
}

// NewSimpleBus returns a zeroed 64 KiB RAM bus. logger may be nil to disable
// diagnostics.
func NewSimpleBus(logger *log.Logger) *SimpleBus {
	return &SimpleBus{logger: logger}
}

// Read implements Bus.
func (s *SimpleBus) Read(addr nums.Word, _ AccessTag) nums.Byte {
	return s.ram[addr]
}

// Write implements Bus.
func (s *SimpleBus) Write(addr nums.Word, value nums.Byte, _ AccessTag) {
	s.ram[addr] = value
}

// OnTick implements Bus. SimpleBus keeps no clock state of its own.
func (s *SimpleBus) OnTick(nums.Byte) {}

// RequestDMA implements Bus; SimpleBus has no DMA model.
func (s *SimpleBus) RequestDMA(req DmaRequest) DmaResult {
	if s.logger != nil {
		s.logger.Printf("bus: rejecting DMA request %q: SimpleBus has no DMA model", req.Reason)
	}
	return DmaResult{Accepted: false, Reason: "SimpleBus does not support DMA"}
}

// PollDMACycle implements Bus; SimpleBus never has pending DMA.
func (s *SimpleBus) PollDMACycle() (nums.Byte, bool) { return 0, false }

// WriteBlock writes bytes sequentially starting at addr, wrapping mod 65536.
// This backs cpu.NewWithProgram's bus-load step.
func (s *SimpleBus) WriteBlock(addr nums.Word, data []nums.Byte) {
	for _, b := range data {
		s.ram[addr] = b
		addr++
	}
}

// SetResetVector writes target's low/high bytes to 0xFFFC/0xFFFD.
func (s *SimpleBus) SetResetVector(target nums.Word) {
	s.ram[0xFFFC] = target.Lo()
	s.ram[0xFFFD] = target.Hi()
}

// TestingBus extends SimpleBus's RAM model with cycle accounting and a DMA
// burst queue, for exercising the CPU's DMA-interleaving behavior in tests.
type TestingBus struct {
	ram         [65536]nums.Byte
	logger      *log.Logger
	TotalCycles uint64
	DmaCycles   uint64
	dmaQueue    []nums.Byte
}

// NewTestingBus returns a zeroed 64 KiB RAM bus with cycle counters.
func NewTestingBus(logger *log.Logger) *TestingBus {
	return &TestingBus{logger: logger}
}

// Read implements Bus.
func (t *TestingBus) Read(addr nums.Word, _ AccessTag) nums.Byte {
	return t.ram[addr]
}

// Write implements Bus.
func (t *TestingBus) Write(addr nums.Word, value nums.Byte, _ AccessTag) {
	t.ram[addr] = value
}

// OnTick implements Bus, accumulating the cycles it is told about.
func (t *TestingBus) OnTick(cycles nums.Byte) {
	t.TotalCycles += uint64(cycles)
}

// RequestDMA enqueues the request's cycle count as a single burst.
func (t *TestingBus) RequestDMA(req DmaRequest) DmaResult {
	if req.Cycles == 0 {
		return DmaResult{Accepted: false, Reason: "zero-cycle DMA request"}
	}
	t.dmaQueue = append(t.dmaQueue, req.Cycles)
	return DmaResult{Accepted: true}
}

// QueueDMABurst enqueues a burst directly, for test setup that wants to
// pre-seed DMA without going through RequestDMA's Reason plumbing.
func (t *TestingBus) QueueDMABurst(cycles nums.Byte) {
	t.dmaQueue = append(t.dmaQueue, cycles)
}

// PollDMACycle drains the queue one burst at a time.
func (t *TestingBus) PollDMACycle() (nums.Byte, bool) {
	if len(t.dmaQueue) == 0 {
		return 0, false
	}
	n := t.dmaQueue[0]
	t.dmaQueue = t.dmaQueue[1:]
	t.DmaCycles += uint64(n)
	if t.logger != nil {
		t.logger.Printf("bus: draining DMA burst of %d cycles", n)
	}
	return n, true
}

// WriteBlock writes bytes sequentially starting at addr, wrapping mod 65536.
func (t *TestingBus) WriteBlock(addr nums.Word, data []nums.Byte) {
	for _, b := range data {
		t.ram[addr] = b
		addr++
	}
}

// SetResetVector writes target's low/high bytes to 0xFFFC/0xFFFD.
func (t *TestingBus) SetResetVector(target nums.Word) {
	t.ram[0xFFFC] = target.Lo()
	t.ram[0xFFFD] = target.Hi()
}

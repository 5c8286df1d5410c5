// Package cputest provides a small RAM-backed bus.Bus fixture for unit
// tests. It composes memory.Mapper over a single 64 KiB memory.Ram bank
// rather than hand-rolling an array, so the address decoder gets exercised
// by the core's own test suite.
package cputest

import (
	"github.com/mos6502fam/core/bus"
	"github.com/mos6502fam/core/memory"
	"github.com/mos6502fam/core/nums"
)

// Bus is a flat 64 KiB RAM bus plus a DMA burst queue, for tests that need
// to inject DMA interleaving without pulling in bus.TestingBus.
type Bus struct {
	mapper      *memory.Mapper
	dmaQueue    []nums.Byte
	DmaCycles   uint64
	TotalCycles uint64
}

// New returns a zeroed 64 KiB RAM bus.
func New() *Bus {
	m := memory.NewMapper()
	m.Mount(0x0000, memory.NewRam(65536))
	return &Bus{mapper: m}
}

// Read implements bus.Bus.
func (b *Bus) Read(addr nums.Word, _ bus.AccessTag) nums.Byte { return b.mapper.Read(addr) }

// Write implements bus.Bus.
func (b *Bus) Write(addr nums.Word, val nums.Byte, _ bus.AccessTag) { b.mapper.Write(addr, val) }

// OnTick implements bus.Bus.
func (b *Bus) OnTick(cycles nums.Byte) { b.TotalCycles += uint64(cycles) }

// RequestDMA implements bus.Bus, enqueuing any request with a non-zero
// cycle count and rejecting zero-cycle requests.
func (b *Bus) RequestDMA(req bus.DmaRequest) bus.DmaResult {
	if req.Cycles == 0 {
		return bus.DmaResult{Accepted: false, Reason: "zero-cycle DMA request"}
	}
	b.dmaQueue = append(b.dmaQueue, req.Cycles)
	return bus.DmaResult{Accepted: true}
}

// QueueDMA enqueues a burst of cycles directly.
func (b *Bus) QueueDMA(cycles nums.Byte) { b.dmaQueue = append(b.dmaQueue, cycles) }

// PollDMACycle implements bus.Bus.
func (b *Bus) PollDMACycle() (nums.Byte, bool) {
	if len(b.dmaQueue) == 0 {
		return 0, false
	}
	n := b.dmaQueue[0]
	b.dmaQueue = b.dmaQueue[1:]
	b.DmaCycles += uint64(n)
	return n, true
}

// WriteBlock writes bytes sequentially starting at addr, wrapping mod 65536.
func (b *Bus) WriteBlock(addr nums.Word, data []nums.Byte) {
	for _, v := range data {
		b.mapper.Write(addr, v)
		addr++
	}
}

// SetResetVector writes target's low/high bytes to 0xFFFC/0xFFFD.
func (b *Bus) SetResetVector(target nums.Word) {
	b.mapper.Write(0xFFFC, target.Lo())
	b.mapper.Write(0xFFFD, target.Hi())
}

package cpu

import (
	"github.com/mos6502fam/core/bus"
	"github.com/mos6502fam/core/nums"
)

// StopReason records which RunConfig condition ended a RunUntil call.
type StopReason int

const (
	// StopNone is the zero value and never appears in a returned RunSummary.
	StopNone StopReason = iota
	StopBrk
	StopPcReached
	StopCycleLimit
	StopPredicate
	StopHalted
)

// String renders the stop reason for diagnostics.
func (s StopReason) String() string {
	switch s {
	case StopBrk:
		return "Brk"
	case StopPcReached:
		return "PcReached"
	case StopCycleLimit:
		return "CycleLimit"
	case StopPredicate:
		return "Predicate"
	case StopHalted:
		return "Halted"
	default:
		return "None"
	}
}

// RunPredicate inspects the CPU and bus after a tick and returns true to
// end the run. It is given read-only views; mutating either through the
// view defeats the single-owner aliasing model and is the caller's own
// mistake to avoid, not something this package guards against.
type RunPredicate func(c *Chip, b bus.Bus) bool

// RunConfig names the stop policies RunUntil honors. Stop conditions are
// checked in a fixed order: halted, then StopOnBRK (set during BRK's own
// Execute), then StopAtPC, then MaxCycles, then Predicate.
type RunConfig struct {
	StopOnBRK bool
	StopAtPC  *nums.Word
	MaxCycles *uint64
	Predicate RunPredicate
}

// RunSummary reports how a Run or RunUntil call ended.
type RunSummary struct {
	CyclesConsumed       uint64
	InstructionsExecuted uint64
	StopReason           StopReason
}

// RunUntil repeatedly ticks b, honoring cfg's stop policy, and returns a
// summary of how the run ended.
func (c *Chip) RunUntil(b bus.Bus, cfg RunConfig) RunSummary {
	c.stopOnBRK = cfg.StopOnBRK
	defer func() { c.stopOnBRK = false }()

	var consumed uint64
	var instructions uint64

	if c.halted {
		return RunSummary{StopReason: StopHalted}
	}

	for {
		consumed += c.Tick(b)
		instructions++

		if c.halted {
			reason := StopHalted
			if cfg.StopOnBRK && c.lastWasBRK {
				reason = StopBrk
			}
			return RunSummary{CyclesConsumed: consumed, InstructionsExecuted: instructions, StopReason: reason}
		}
		if cfg.StopAtPC != nil && c.pc == *cfg.StopAtPC {
			return RunSummary{CyclesConsumed: consumed, InstructionsExecuted: instructions, StopReason: StopPcReached}
		}
		if cfg.MaxCycles != nil && consumed >= *cfg.MaxCycles {
			return RunSummary{CyclesConsumed: consumed, InstructionsExecuted: instructions, StopReason: StopCycleLimit}
		}
		if cfg.Predicate != nil && cfg.Predicate(c, b) {
			return RunSummary{CyclesConsumed: consumed, InstructionsExecuted: instructions, StopReason: StopPredicate}
		}
	}
}

package cpu_test

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mos6502fam/core/bus"
	"github.com/mos6502fam/core/cpu"
	"github.com/mos6502fam/core/cpu/cputest"
	"github.com/mos6502fam/core/iset"
	"github.com/mos6502fam/core/nums"
)

// A hand-assembled program loads a value, stores it to zero page, then
// BRKs; RunUntil with StopOnBRK should stop exactly there.
func TestRun_HelloToZeroPageThenBRK(t *testing.T) {
	b := cputest.New()
	prog := []nums.Byte{
		0xA9, 0x42, // LDA #$42
		0x85, 0x10, // STA $10
		0x00, // BRK
	}
	b.WriteBlock(0x0600, prog)
	b.SetResetVector(0x0600)

	c, err := cpu.NewWithResetVector(b, iset.NewMos6502())
	require.NoError(t, err)

	summary := c.RunUntil(b, cpu.RunConfig{StopOnBRK: true})

	assert.Equal(t, cpu.StopBrk, summary.StopReason)
	assert.EqualValues(t, 3, summary.InstructionsExecuted)
	assert.EqualValues(t, 0x42, b.Read(0x0010, bus.DataRead))
}

// Patching BRK's table slot with Table.With must leave every other opcode's
// behavior untouched.
func TestTableWith_PatchesOneSlotOnly(t *testing.T) {
	variant := iset.NewMos6502()
	hit := false
	patched := variant.Table.With(0x00, iset.Entry{
		Name:       "BRK (custom)",
		BaseCycles: 2,
		Execute: func(c iset.CPU) {
			hit = true
			c.Halt()
		},
	})
	variant.Table = patched

	b := cputest.New()
	b.WriteBlock(0x0600, []nums.Byte{0xA9, 0x07, 0x00})
	b.SetResetVector(0x0600)

	c, err := cpu.NewWithResetVector(b, variant)
	require.NoError(t, err)

	summary := c.Run(b, 1000)

	assert.True(t, hit, "custom BRK handler must run")
	assert.Equal(t, cpu.StopHalted, summary.StopReason)

	// LDA #$07 must still behave exactly as the base table defines it.
	unpatched := iset.NewMos6502()
	assert.Equal(t, unpatched.Table[0xA9].Name, variant.Table[0xA9].Name)
}

// DMA bursts queued mid-run are drained and counted alongside
// instruction cycles, without the CPU ever originating them itself.
func TestTick_DrainsQueuedDMA(t *testing.T) {
	b := cputest.New()
	b.WriteBlock(0x0600, []nums.Byte{0xEA}) // NOP
	b.SetResetVector(0x0600)
	b.QueueDMA(20)

	c, err := cpu.NewWithResetVector(b, iset.NewMos6502())
	require.NoError(t, err)

	consumed := c.Tick(b)

	assert.EqualValues(t, 22, consumed) // NOP's 2 base cycles + 20 DMA cycles
	assert.EqualValues(t, 20, b.DmaCycles)
}

// Construction from a reset vector loads PC correctly and
// leaves the rest of register state at documented defaults.
func TestNewWithResetVector_LoadsPC(t *testing.T) {
	b := cputest.New()
	b.SetResetVector(0x8000)

	c, err := cpu.NewWithResetVector(b, iset.NewMos6502())
	require.NoError(t, err)

	assert.EqualValues(t, 0x8000, c.PC())
	assert.EqualValues(t, 0xFD, c.SP())
	assert.True(t, c.Flag(iset.FlagInterrupt))
	assert.False(t, c.Halted())
}

// The Ricoh 2A03 variant never honors the decimal flag, even
// when SED has set it, because SupportsDecimalMode is false.
func TestRicoh2A03_DecimalSuppressed(t *testing.T) {
	b := cputest.New()
	b.WriteBlock(0x0600, []nums.Byte{
		0xF8,       // SED
		0xA9, 0x09, // LDA #$09
		0x69, 0x09, // ADC #$09 -- binary 0x12, BCD would be 0x18
		0x00, // BRK
	})
	b.SetResetVector(0x0600)

	c, err := cpu.NewWithResetVector(b, iset.NewRicoh2A03())
	require.NoError(t, err)

	c.RunUntil(b, cpu.RunConfig{StopOnBRK: true})

	assert.EqualValues(t, 0x12, c.A())
}

// The same program on a real MOS 6502 with decimal mode active must produce
// the BCD result instead.
func TestMos6502_DecimalHonored(t *testing.T) {
	b := cputest.New()
	b.WriteBlock(0x0600, []nums.Byte{
		0xF8,
		0xA9, 0x09,
		0x69, 0x09,
		0x00,
	})
	b.SetResetVector(0x0600)

	c, err := cpu.NewWithResetVector(b, iset.NewMos6502())
	require.NoError(t, err)

	c.RunUntil(b, cpu.RunConfig{StopOnBRK: true})

	assert.EqualValues(t, 0x18, c.A())
}

// The MOS JMP(ind) page-wrap bug fetches its high byte from the
// wrong page when the pointer's low byte is 0xFF; the 65C02 fixes it.
func TestJMPIndirect_PageWrapBug_MOSvs65C02(t *testing.T) {
	setup := func(b *cputest.Bus) {
		b.Write(0x02FF, 0x34, bus.DataWrite) // target low byte
		b.Write(0x0300, 0x12, bus.DataWrite) // target high byte a bug-free fetch reads
		b.Write(0x0200, 0xAB, bus.DataWrite) // what the buggy wrap-around fetch reads instead
		b.WriteBlock(0x0600, []nums.Byte{0x6C, 0xFF, 0x02}) // JMP ($02FF)
		b.SetResetVector(0x0600)
	}

	mosBus := cputest.New()
	setup(mosBus)
	mos, err := cpu.NewWithResetVector(mosBus, iset.NewMos6502())
	require.NoError(t, err)
	mos.Tick(mosBus)
	assert.EqualValues(t, 0xAB34, mos.PC(), "MOS bug re-reads the high byte from $0200, not $0300")

	cmosBus := cputest.New()
	setup(cmosBus)
	cmos, err := cpu.NewWithResetVector(cmosBus, iset.NewCmos65C02())
	require.NoError(t, err)
	cmos.Tick(cmosBus)
	assert.EqualValues(t, 0x1234, cmos.PC(), "65C02 fetches the high byte from $0300 correctly")
}

// Absolute,X addressing charges one extra cycle only when indexing crosses
// a page boundary, and only for the read-type form.
func TestTick_AbsoluteXPageCrossCharge(t *testing.T) {
	b := cputest.New()
	b.WriteBlock(0x0600, []nums.Byte{0xA2, 0x01})       // LDX #$01
	b.WriteBlock(0x0602, []nums.Byte{0xBD, 0xFF, 0x01}) // LDA $01FF,X -> crosses into $0200
	b.SetResetVector(0x0600)
	b.Write(0x0200, 0x99, bus.DataWrite)

	c, err := cpu.NewWithResetVector(b, iset.NewMos6502())
	require.NoError(t, err)
	c.Tick(b) // LDX
	consumed := c.Tick(b)

	assert.EqualValues(t, 5, consumed, "LDA abs,X base 4 cycles plus 1 for the page cross")
	assert.EqualValues(t, 0x99, c.A())
}

func TestTick_AbsoluteXNoPageCross(t *testing.T) {
	b := cputest.New()
	b.WriteBlock(0x0600, []nums.Byte{0xA2, 0x01})
	b.WriteBlock(0x0602, []nums.Byte{0xBD, 0x00, 0x02}) // LDA $0200,X -> stays in page 2
	b.SetResetVector(0x0600)

	c, err := cpu.NewWithResetVector(b, iset.NewMos6502())
	require.NoError(t, err)
	c.Tick(b)
	consumed := c.Tick(b)

	assert.EqualValues(t, 4, consumed)
}

// Stack push/pull round-trips through page 1, wrapping SP mod 256.
func TestStack_PushPullRoundTrip(t *testing.T) {
	b := cputest.New()
	b.WriteBlock(0x0600, []nums.Byte{
		0xA9, 0x55, // LDA #$55
		0x48,       // PHA
		0xA9, 0x00, // LDA #$00
		0x68, // PLA
	})
	b.SetResetVector(0x0600)

	c, err := cpu.NewWithResetVector(b, iset.NewMos6502())
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		c.Tick(b)
	}

	assert.EqualValues(t, 0x55, c.A())
	assert.EqualValues(t, 0xFD, c.SP())
}

// RunUntil honors stop_at_pc ahead of max_cycles when both would apply.
func TestRunUntil_StopAtPC(t *testing.T) {
	b := cputest.New()
	b.WriteBlock(0x0600, []nums.Byte{
		0xEA, // NOP at $0600
		0xEA, // NOP at $0601
		0xEA, // NOP at $0602
	})
	b.SetResetVector(0x0600)

	c, err := cpu.NewWithResetVector(b, iset.NewMos6502())
	require.NoError(t, err)

	target := nums.Word(0x0602)
	// Two NOPs reach $0602 after exactly 4 cycles, so both conditions fire
	// on the same tick.
	summary := c.RunUntil(b, cpu.RunConfig{StopAtPC: &target, MaxCycles: uint64Ptr(4)})

	assert.Equal(t, cpu.StopPcReached, summary.StopReason)
	assert.EqualValues(t, 0x0602, c.PC())
}

func TestRunUntil_MaxCycles(t *testing.T) {
	b := cputest.New()
	for i := 0; i < 10; i++ {
		b.Write(nums.Word(0x0600+i), 0xEA, bus.DataWrite)
	}
	b.SetResetVector(0x0600)

	c, err := cpu.NewWithResetVector(b, iset.NewMos6502())
	require.NoError(t, err)

	summary := c.RunUntil(b, cpu.RunConfig{MaxCycles: uint64Ptr(5)})

	assert.Equal(t, cpu.StopCycleLimit, summary.StopReason)
	assert.GreaterOrEqual(t, summary.CyclesConsumed, uint64(5))
}

func TestRunUntil_Predicate(t *testing.T) {
	b := cputest.New()
	b.WriteBlock(0x0600, []nums.Byte{0xE8, 0xE8, 0xE8, 0xE8}) // INX x4
	b.SetResetVector(0x0600)

	c, err := cpu.NewWithResetVector(b, iset.NewMos6502())
	require.NoError(t, err)

	summary := c.RunUntil(b, cpu.RunConfig{
		Predicate: func(c *cpu.Chip, _ bus.Bus) bool { return c.X() == 3 },
		MaxCycles: uint64Ptr(1000),
	})

	assert.Equal(t, cpu.StopPredicate, summary.StopReason)
	assert.EqualValues(t, 3, c.X())
}

// A trap-style illegal opcode halts the CPU without producing a BRK stop
// reason, even when StopOnBRK is set, distinguishing it from a real BRK.
func TestRunUntil_IllegalOpcodeTrapsNotBRK(t *testing.T) {
	b := cputest.New()
	b.WriteBlock(0x0600, []nums.Byte{0x02}) // unimplemented on MOS 6502: traps
	b.SetResetVector(0x0600)

	c, err := cpu.NewWithResetVector(b, iset.NewMos6502())
	require.NoError(t, err)

	summary := c.RunUntil(b, cpu.RunConfig{StopOnBRK: true})

	assert.Equal(t, cpu.StopHalted, summary.StopReason)
	assert.True(t, c.Halted())
}

// RaiseIRQ is masked when the interrupt-disable flag is set and taken once
// it is cleared (RaiseNMI is covered by TestRaiseNMI_NeverMasked).
func TestRaiseIRQ_MaskedByFlag(t *testing.T) {
	b := cputest.New()
	b.SetResetVector(0x0600)
	b.WriteBlock(0xFFFE, []nums.Byte{0x00, 0x90}) // IRQ vector -> $9000

	c, err := cpu.NewWithResetVector(b, iset.NewMos6502(), cpu.WithStartP(iset.FlagInterrupt|iset.FlagS1))
	require.NoError(t, err)

	before := c.PC()
	c.RaiseIRQ(b)
	assert.Equal(t, before, c.PC(), "masked IRQ must not redirect PC")

	c.SetFlag(iset.FlagInterrupt, false)
	c.RaiseIRQ(b)
	assert.EqualValues(t, 0x9000, c.PC())
}

func uint64Ptr(v uint64) *uint64 { return &v }

// A hello-to-zero-page program run on SimpleBus via NewWithProgram: two
// stores land in page zero and the trailing BRK ends the run.
func TestNewWithProgram_SimpleBusEndToEnd(t *testing.T) {
	b := bus.NewSimpleBus(nil)
	prog := []nums.Byte{
		0xA9, 0x48, // LDA #$48
		0x85, 0x00, // STA $00
		0xA9, 0x69, // LDA #$69
		0x85, 0x01, // STA $01
		0x00, // BRK
	}
	c, err := cpu.NewWithProgram(b, iset.NewMos6502(), 0x8000, prog, 0x8000)
	require.NoError(t, err)

	summary := c.RunUntil(b, cpu.RunConfig{StopOnBRK: true})

	assert.Equal(t, cpu.StopBrk, summary.StopReason)
	assert.EqualValues(t, 0x48, b.Read(0x0000, bus.DataRead))
	assert.EqualValues(t, 0x69, b.Read(0x0001, bus.DataRead))
}

// Patching BRK's slot with a 7-cycle "skip the signature byte" handler: one
// tick advances PC by 2 (fetch plus handler) and costs exactly the patched
// base, and a bounded run over the all-zero page ends on the cycle limit.
func TestRunUntil_CustomBRKPatchRunsToCycleLimit(t *testing.T) {
	variant := iset.NewMos6502()
	variant.Table = variant.Table.With(0x00, iset.Entry{
		Name:       "BRK (skip)",
		BaseCycles: 7,
		Execute:    func(c iset.CPU) { c.SetPC(c.PC() + 1) },
	})

	b := bus.NewSimpleBus(nil)
	c, err := cpu.NewWithProgram(b, variant, 0x1000, []nums.Byte{0x00}, 0x1000)
	require.NoError(t, err)

	consumed := c.Tick(b)
	assert.EqualValues(t, 0x1002, c.PC())
	assert.EqualValues(t, 7, consumed)
	assert.EqualValues(t, 7, c.Cycles())

	summary := c.RunUntil(b, cpu.RunConfig{MaxCycles: uint64Ptr(100)})
	assert.Equal(t, cpu.StopCycleLimit, summary.StopReason)
}

// DMA interleaving on TestingBus: two pre-queued bursts drain after the
// first instruction and both land in the bus's DMA counter and the CPU's
// cycle total (NOP 2 + NOP 2 + BRK 7 + 10 DMA).
func TestRunUntil_TestingBusDMAInterleaving(t *testing.T) {
	b := bus.NewTestingBus(nil)
	b.WriteBlock(0x0600, []nums.Byte{0xEA, 0xEA, 0x00})
	b.SetResetVector(0x0600)
	b.QueueDMABurst(4)
	b.QueueDMABurst(6)

	c, err := cpu.NewWithResetVector(b, iset.NewMos6502())
	require.NoError(t, err)

	summary := c.RunUntil(b, cpu.RunConfig{StopOnBRK: true})

	assert.Equal(t, cpu.StopBrk, summary.StopReason)
	assert.EqualValues(t, 21, summary.CyclesConsumed)
	assert.EqualValues(t, 10, b.DmaCycles)
	assert.Equal(t, summary.CyclesConsumed, b.TotalCycles, "every cycle must also be announced via OnTick")
}

// Reset-vector construction against SimpleBus per the documented 0xFFFC/D
// layout: PC comes from the vector, nothing has ticked yet.
func TestNewWithResetVector_SimpleBus(t *testing.T) {
	b := bus.NewSimpleBus(nil)
	b.Write(0xFFFC, 0x00, bus.DataWrite)
	b.Write(0xFFFD, 0xC0, bus.DataWrite)

	c, err := cpu.NewWithResetVector(b, iset.NewMos6502())
	require.NoError(t, err)

	assert.EqualValues(t, 0xC000, c.PC())
	assert.Zero(t, c.Cycles())
}

// Every tick advances the cycle counter by at least the executed opcode's
// base cost; the counter never moves backwards.
func TestTick_CyclesMonotone(t *testing.T) {
	b := cputest.New()
	b.WriteBlock(0x0600, []nums.Byte{0xA9, 0x01, 0x48, 0x68, 0xEA, 0xF8, 0xD8, 0x38, 0x18})
	b.SetResetVector(0x0600)

	c, err := cpu.NewWithResetVector(b, iset.NewMos6502())
	require.NoError(t, err)

	for i := 0; i < 7; i++ {
		before := c.Cycles()
		op := b.Read(c.PC(), bus.OpcodeFetch)
		base := iset.NewMos6502().Table[op].BaseCycles
		c.Tick(b)
		if c.Cycles() < before+uint64(base) {
			t.Fatalf("cycle counter regressed: before %d base %d after %d state: %s", before, base, c.Cycles(), spew.Sdump(c))
		}
	}
}

// The 65C02 charges ADC one extra cycle in decimal mode; NMOS does not.
func TestAdc_DecimalCyclePenalty65C02Only(t *testing.T) {
	prog := []nums.Byte{
		0xF8,       // SED
		0x69, 0x09, // ADC #$09
	}

	run := func(v iset.Variant) (uint64, nums.Byte) {
		b := cputest.New()
		b.WriteBlock(0x0600, prog)
		b.SetResetVector(0x0600)
		c, err := cpu.NewWithResetVector(b, v, cpu.WithStartRegisters(0x09, 0, 0))
		require.NoError(t, err)
		c.Tick(b)
		return c.Tick(b), c.A()
	}

	cmosCycles, cmosA := run(iset.NewCmos65C02())
	assert.EqualValues(t, 3, cmosCycles, "65C02 decimal ADC is base 2 plus 1 penalty")
	assert.EqualValues(t, 0x18, cmosA)

	mosCycles, mosA := run(iset.NewMos6502())
	assert.EqualValues(t, 2, mosCycles)
	assert.EqualValues(t, 0x18, mosA)
}

// An instruction handler can push DMA through the CPU's pass-through; the
// burst drains in the same tick and is charged to the same counter.
func TestRequestDMA_FromPatchedOpcode(t *testing.T) {
	variant := iset.NewMos6502()
	variant.Table = variant.Table.With(0x02, iset.Entry{
		Name:       "OAMDMA (custom)",
		BaseCycles: 2,
		Execute: func(c iset.CPU) {
			res := c.RequestDMA(bus.DmaRequest{Cycles: 5, Reason: "sprite page copy"})
			if !res.Accepted {
				c.Halt()
			}
		},
	})

	b := bus.NewTestingBus(nil)
	b.WriteBlock(0x0600, []nums.Byte{0x02})
	b.SetResetVector(0x0600)

	c, err := cpu.NewWithResetVector(b, variant)
	require.NoError(t, err)

	consumed := c.Tick(b)

	assert.False(t, c.Halted())
	assert.EqualValues(t, 7, consumed, "2 base cycles plus the 5-cycle DMA burst")
	assert.EqualValues(t, 5, b.DmaCycles)
}

// BRK pushes the address of the byte after its signature byte, then the
// status with the break flag set, and lands on the IRQ vector with I set.
func TestBRK_PushesReturnAddressAndStatus(t *testing.T) {
	b := cputest.New()
	b.WriteBlock(0x0600, []nums.Byte{0x00, 0xFF}) // BRK plus its signature byte
	b.SetResetVector(0x0600)
	b.Write(0xFFFE, 0x00, bus.DataWrite)
	b.Write(0xFFFF, 0x90, bus.DataWrite) // IRQ vector -> $9000

	c, err := cpu.NewWithResetVector(b, iset.NewMos6502(), cpu.WithStartP(iset.FlagS1))
	require.NoError(t, err)

	c.Tick(b)

	assert.EqualValues(t, 0x9000, c.PC())
	assert.True(t, c.Flag(iset.FlagInterrupt))
	assert.EqualValues(t, 0x06, b.Read(0x01FD, bus.DataRead), "pushed PC high")
	assert.EqualValues(t, 0x02, b.Read(0x01FC, bus.DataRead), "pushed PC low skips the signature byte")
	pushed := b.Read(0x01FB, bus.DataRead)
	assert.NotZero(t, pushed&nums.Byte(iset.FlagBreak), "BRK pushes status with the break flag set")
}

// RaiseNMI redirects through 0xFFFA regardless of the interrupt-disable
// flag, pushing status with the break flag clear.
func TestRaiseNMI_NeverMasked(t *testing.T) {
	b := cputest.New()
	b.SetResetVector(0x0600)
	b.Write(0xFFFA, 0x00, bus.DataWrite)
	b.Write(0xFFFB, 0xA0, bus.DataWrite)

	c, err := cpu.NewWithResetVector(b, iset.NewMos6502()) // I is set by default
	require.NoError(t, err)

	c.RaiseNMI(b)

	assert.EqualValues(t, 0xA000, c.PC())
	pushed := b.Read(0x01FB, bus.DataRead)
	assert.Zero(t, pushed&nums.Byte(iset.FlagBreak), "hardware interrupts push status with the break flag clear")
	assert.EqualValues(t, 7, c.Cycles())
}

// regState is the register snapshot compared by the reset test below.
type regState struct {
	A, X, Y, SP nums.Byte
	PC          nums.Word
	Halted      bool
}

func snapshot(c *cpu.Chip) regState {
	return regState{A: c.A(), X: c.X(), Y: c.Y(), SP: c.SP(), PC: c.PC(), Halted: c.Halted()}
}

// Reset returns a halted Chip to Running: A/X/Y are preserved, SP drops by 3
// as if three fake pushes occurred, and PC reloads from the reset vector.
func TestReset_PreservesRegistersRestoresPC(t *testing.T) {
	b := cputest.New()
	b.WriteBlock(0x0600, []nums.Byte{
		0xA9, 0x11, // LDA #$11
		0xAA, // TAX
		0xA8, // TAY
		0x02, // unimplemented: traps, halting the run
	})
	b.SetResetVector(0x0600)

	c, err := cpu.NewWithResetVector(b, iset.NewMos6502())
	require.NoError(t, err)

	summary := c.RunUntil(b, cpu.RunConfig{})
	require.Equal(t, cpu.StopHalted, summary.StopReason)

	c.Reset(b)

	want := regState{A: 0x11, X: 0x11, Y: 0x11, SP: 0xFA, PC: 0x0600, Halted: false}
	if diff := deep.Equal(snapshot(c), want); diff != nil {
		t.Fatalf("register state after reset: %v\nstate: %s", diff, spew.Sdump(c))
	}
	assert.True(t, c.Flag(iset.FlagInterrupt))
}

// SP wraps within page 1: pushes below 0x00 come back around at 0xFF.
func TestStack_SPWrapsWithinPageOne(t *testing.T) {
	b := cputest.New()
	b.WriteBlock(0x0600, []nums.Byte{
		0xA2, 0x00, // LDX #$00
		0x9A,       // TXS -> SP = 0x00
		0xA9, 0x77, // LDA #$77
		0x48, // PHA -> writes $0100, SP wraps to 0xFF
	})
	b.SetResetVector(0x0600)

	c, err := cpu.NewWithResetVector(b, iset.NewMos6502())
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		c.Tick(b)
	}

	assert.EqualValues(t, 0x77, b.Read(0x0100, bus.DataRead))
	assert.EqualValues(t, 0xFF, c.SP())
}

// RTI restores the interrupted PC and unwinds the stack pointer, round-
// tripping through a BRK entry.
func TestBRKThenRTI_RoundTrips(t *testing.T) {
	b := cputest.New()
	b.WriteBlock(0x0600, []nums.Byte{0x00, 0xFF, 0xEA}) // BRK; signature; NOP resumes here
	b.Write(0xFFFE, 0x00, bus.DataWrite)
	b.Write(0xFFFF, 0x90, bus.DataWrite)
	b.Write(0x9000, 0x40, bus.DataWrite) // RTI
	b.SetResetVector(0x0600)

	c, err := cpu.NewWithResetVector(b, iset.NewMos6502())
	require.NoError(t, err)

	c.Tick(b) // BRK
	require.EqualValues(t, 0x9000, c.PC())
	c.Tick(b) // RTI

	assert.EqualValues(t, 0x0602, c.PC())
	assert.EqualValues(t, 0xFD, c.SP())
}

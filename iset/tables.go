package iset

import "github.com/mos6502fam/core/nums"

// NewMos6502 builds the base MOS 6502 variant: the 151 documented opcodes,
// BCD-capable ADC/SBC, the JMP-indirect page-wrap bug, and every
// unimplemented slot trapping (halting the CPU) rather than silently
// running something undefined. The trap policy is a deliberate per-variant
// choice, not a claim about real silicon.
func NewMos6502() Variant {
	return Variant{
		Name:                "MOS 6502",
		Table:               baseTable(mos6502Entries()),
		SupportsDecimalMode: true,
	}
}

// NewRicoh2A03 builds the Ricoh 2A03 variant used in the NES: identical to
// the base MOS 6502 table except decimal mode is unimplemented in silicon,
// so SUPPORTS_DECIMAL_MODE is false and ADC/SBC are always binary.
func NewRicoh2A03() Variant {
	v := NewMos6502()
	v.Name = "Ricoh 2A03"
	v.SupportsDecimalMode = false
	return v
}

// NewCmos65C02 builds the WDC 65C02 variant: the MOS 6502 table with the
// JMP-indirect bug fixed, the documented CMOS additions (BRA, PHX/PHY/
// PLX/PLY, STZ, TRB/TSB, INC A/DEC A, zero-page indirect addressing for
// the accumulator group, immediate/absolute,X BIT), and every remaining
// unimplemented slot filled with an explicit NOP instead of a trap.
func NewCmos65C02() Variant {
	t := baseTable(mos6502Entries())
	for op, e := range cmos65C02Overrides() {
		t[op] = e
	}
	// Fill anything still trapping with a 1-byte, 2-cycle NOP: real WDC
	// silicon varies NOP width/cycles by slot, but the table only encodes
	// documented behavior and reserved slots stay safe no-ops.
	for op := range t {
		if t[op].Name == "TRAP" {
			t[op] = nopEntry("NOP (CMOS reserved)", 2, 0)
		}
	}
	return Variant{
		Name:                "WDC 65C02",
		Table:               t,
		SupportsDecimalMode: true,
		DecimalCyclePenalty: true,
	}
}

// baseTable starts from an all-trapping table and overlays the supplied
// entries, the same copy-then-patch shape variants use for their overrides.
func baseTable(entries map[nums.Byte]Entry) Table {
	var t Table
	for i := range t {
		t[i] = trapEntry(2)
	}
	for op, e := range entries {
		t[op] = e
	}
	return t
}

func reg(name string, cycles nums.Byte, exec func(CPU)) Entry {
	return Entry{Name: name, BaseCycles: cycles, Execute: exec}
}

func mos6502Entries() map[nums.Byte]Entry {
	m := map[nums.Byte]Entry{}

	// ADC
	m[0x69] = reg("ADC #", 2, func(c CPU) { adc(c, readImmediate(c)) })
	m[0x65] = reg("ADC zp", 3, readOp(addrZP, adc))
	m[0x75] = reg("ADC zp,X", 4, readOp(addrZPX, adc))
	m[0x6D] = reg("ADC abs", 4, readOp(addrAbsolute, adc))
	m[0x7D] = reg("ADC abs,X", 4, readOp(func(c CPU) nums.Word { return readAbsoluteIndexed(c, c.X()) }, adc))
	m[0x79] = reg("ADC abs,Y", 4, readOp(func(c CPU) nums.Word { return readAbsoluteIndexed(c, c.Y()) }, adc))
	m[0x61] = reg("ADC (zp,X)", 6, readOp(addrIndirectX, adc))
	m[0x71] = reg("ADC (zp),Y", 5, readOp(readIndirectY, adc))

	// AND
	m[0x29] = reg("AND #", 2, func(c CPU) { and(c, readImmediate(c)) })
	m[0x25] = reg("AND zp", 3, readOp(addrZP, and))
	m[0x35] = reg("AND zp,X", 4, readOp(addrZPX, and))
	m[0x2D] = reg("AND abs", 4, readOp(addrAbsolute, and))
	m[0x3D] = reg("AND abs,X", 4, readOp(func(c CPU) nums.Word { return readAbsoluteIndexed(c, c.X()) }, and))
	m[0x39] = reg("AND abs,Y", 4, readOp(func(c CPU) nums.Word { return readAbsoluteIndexed(c, c.Y()) }, and))
	m[0x21] = reg("AND (zp,X)", 6, readOp(addrIndirectX, and))
	m[0x31] = reg("AND (zp),Y", 5, readOp(readIndirectY, and))

	// ASL
	m[0x0A] = reg("ASL A", 2, func(c CPU) {
		res, carry := asl(c.A())
		c.SetFlag(FlagCarry, carry)
		loadRegister(c, c.SetA, res)
	})
	m[0x06] = reg("ASL zp", 5, shiftRMW(addrZP, asl))
	m[0x16] = reg("ASL zp,X", 6, shiftRMW(addrZPX, asl))
	m[0x0E] = reg("ASL abs", 6, shiftRMW(addrAbsolute, asl))
	m[0x1E] = reg("ASL abs,X", 7, shiftRMW(func(c CPU) nums.Word { return addrAbsoluteIndexed(c, c.X()) }, asl))

	// Branches
	m[0x90] = reg("BCC", 2, func(c CPU) { branchIf(c, !c.Flag(FlagCarry)) })
	m[0xB0] = reg("BCS", 2, func(c CPU) { branchIf(c, c.Flag(FlagCarry)) })
	m[0xF0] = reg("BEQ", 2, func(c CPU) { branchIf(c, c.Flag(FlagZero)) })
	m[0x30] = reg("BMI", 2, func(c CPU) { branchIf(c, c.Flag(FlagNegative)) })
	m[0xD0] = reg("BNE", 2, func(c CPU) { branchIf(c, !c.Flag(FlagZero)) })
	m[0x10] = reg("BPL", 2, func(c CPU) { branchIf(c, !c.Flag(FlagNegative)) })
	m[0x50] = reg("BVC", 2, func(c CPU) { branchIf(c, !c.Flag(FlagOverflow)) })
	m[0x70] = reg("BVS", 2, func(c CPU) { branchIf(c, c.Flag(FlagOverflow)) })

	// BIT
	m[0x24] = reg("BIT zp", 3, readOp(addrZP, bit))
	m[0x2C] = reg("BIT abs", 4, readOp(addrAbsolute, bit))

	// BRK
	m[0x00] = reg("BRK", 7, func(c CPU) {
		c.NoteBRK()
		c.EnterInterrupt(IRQVector, true)
		if c.StopOnBRK() {
			c.Halt()
		}
	})

	// Flag clear/set
	m[0x18] = reg("CLC", 2, func(c CPU) { c.SetFlag(FlagCarry, false) })
	m[0xD8] = reg("CLD", 2, func(c CPU) { c.SetFlag(FlagDecimal, false) })
	m[0x58] = reg("CLI", 2, func(c CPU) { c.SetFlag(FlagInterrupt, false) })
	m[0xB8] = reg("CLV", 2, func(c CPU) { c.SetFlag(FlagOverflow, false) })
	m[0x38] = reg("SEC", 2, func(c CPU) { c.SetFlag(FlagCarry, true) })
	m[0xF8] = reg("SED", 2, func(c CPU) { c.SetFlag(FlagDecimal, true) })
	m[0x78] = reg("SEI", 2, func(c CPU) { c.SetFlag(FlagInterrupt, true) })

	// Compare
	m[0xC9] = reg("CMP #", 2, func(c CPU) { compare(c, c.A(), readImmediate(c)) })
	m[0xC5] = reg("CMP zp", 3, readOp(addrZP, func(c CPU, v nums.Byte) { compare(c, c.A(), v) }))
	m[0xD5] = reg("CMP zp,X", 4, readOp(addrZPX, func(c CPU, v nums.Byte) { compare(c, c.A(), v) }))
	m[0xCD] = reg("CMP abs", 4, readOp(addrAbsolute, func(c CPU, v nums.Byte) { compare(c, c.A(), v) }))
	m[0xDD] = reg("CMP abs,X", 4, readOp(func(c CPU) nums.Word { return readAbsoluteIndexed(c, c.X()) }, func(c CPU, v nums.Byte) { compare(c, c.A(), v) }))
	m[0xD9] = reg("CMP abs,Y", 4, readOp(func(c CPU) nums.Word { return readAbsoluteIndexed(c, c.Y()) }, func(c CPU, v nums.Byte) { compare(c, c.A(), v) }))
	m[0xC1] = reg("CMP (zp,X)", 6, readOp(addrIndirectX, func(c CPU, v nums.Byte) { compare(c, c.A(), v) }))
	m[0xD1] = reg("CMP (zp),Y", 5, readOp(readIndirectY, func(c CPU, v nums.Byte) { compare(c, c.A(), v) }))

	m[0xE0] = reg("CPX #", 2, func(c CPU) { compare(c, c.X(), readImmediate(c)) })
	m[0xE4] = reg("CPX zp", 3, readOp(addrZP, func(c CPU, v nums.Byte) { compare(c, c.X(), v) }))
	m[0xEC] = reg("CPX abs", 4, readOp(addrAbsolute, func(c CPU, v nums.Byte) { compare(c, c.X(), v) }))

	m[0xC0] = reg("CPY #", 2, func(c CPU) { compare(c, c.Y(), readImmediate(c)) })
	m[0xC4] = reg("CPY zp", 3, readOp(addrZP, func(c CPU, v nums.Byte) { compare(c, c.Y(), v) }))
	m[0xCC] = reg("CPY abs", 4, readOp(addrAbsolute, func(c CPU, v nums.Byte) { compare(c, c.Y(), v) }))

	// DEC/INC memory
	m[0xC6] = reg("DEC zp", 5, incDecRMW(addrZP, ^nums.Byte(0)))
	m[0xD6] = reg("DEC zp,X", 6, incDecRMW(addrZPX, ^nums.Byte(0)))
	m[0xCE] = reg("DEC abs", 6, incDecRMW(addrAbsolute, ^nums.Byte(0)))
	m[0xDE] = reg("DEC abs,X", 7, incDecRMW(func(c CPU) nums.Word { return addrAbsoluteIndexed(c, c.X()) }, ^nums.Byte(0)))
	m[0xE6] = reg("INC zp", 5, incDecRMW(addrZP, 1))
	m[0xF6] = reg("INC zp,X", 6, incDecRMW(addrZPX, 1))
	m[0xEE] = reg("INC abs", 6, incDecRMW(addrAbsolute, 1))
	m[0xFE] = reg("INC abs,X", 7, incDecRMW(func(c CPU) nums.Word { return addrAbsoluteIndexed(c, c.X()) }, 1))

	// DEX/DEY/INX/INY
	m[0xCA] = reg("DEX", 2, func(c CPU) { loadRegister(c, c.SetX, c.X()-1) })
	m[0x88] = reg("DEY", 2, func(c CPU) { loadRegister(c, c.SetY, c.Y()-1) })
	m[0xE8] = reg("INX", 2, func(c CPU) { loadRegister(c, c.SetX, c.X()+1) })
	m[0xC8] = reg("INY", 2, func(c CPU) { loadRegister(c, c.SetY, c.Y()+1) })

	// EOR
	m[0x49] = reg("EOR #", 2, func(c CPU) { eor(c, readImmediate(c)) })
	m[0x45] = reg("EOR zp", 3, readOp(addrZP, eor))
	m[0x55] = reg("EOR zp,X", 4, readOp(addrZPX, eor))
	m[0x4D] = reg("EOR abs", 4, readOp(addrAbsolute, eor))
	m[0x5D] = reg("EOR abs,X", 4, readOp(func(c CPU) nums.Word { return readAbsoluteIndexed(c, c.X()) }, eor))
	m[0x59] = reg("EOR abs,Y", 4, readOp(func(c CPU) nums.Word { return readAbsoluteIndexed(c, c.Y()) }, eor))
	m[0x41] = reg("EOR (zp,X)", 6, readOp(addrIndirectX, eor))
	m[0x51] = reg("EOR (zp),Y", 5, readOp(readIndirectY, eor))

	// JMP/JSR
	m[0x4C] = reg("JMP abs", 3, func(c CPU) { c.SetPC(addrAbsolute(c)) })
	m[0x6C] = reg("JMP (ind)", 5, func(c CPU) { c.SetPC(addrIndirectBuggy(c)) })
	m[0x20] = reg("JSR abs", 6, func(c CPU) {
		lo := fetchOperandByte(c)
		ret := c.PC() // address of the instruction's last (high operand) byte
		hi := c.Read(ret, opFetchTag)
		pushWord(c, ret)
		c.SetPC(nums.FromBytes(hi, lo))
	})

	// Loads
	m[0xA9] = reg("LDA #", 2, func(c CPU) { loadRegister(c, c.SetA, readImmediate(c)) })
	m[0xA5] = reg("LDA zp", 3, readOp(addrZP, func(c CPU, v nums.Byte) { loadRegister(c, c.SetA, v) }))
	m[0xB5] = reg("LDA zp,X", 4, readOp(addrZPX, func(c CPU, v nums.Byte) { loadRegister(c, c.SetA, v) }))
	m[0xAD] = reg("LDA abs", 4, readOp(addrAbsolute, func(c CPU, v nums.Byte) { loadRegister(c, c.SetA, v) }))
	m[0xBD] = reg("LDA abs,X", 4, readOp(func(c CPU) nums.Word { return readAbsoluteIndexed(c, c.X()) }, func(c CPU, v nums.Byte) { loadRegister(c, c.SetA, v) }))
	m[0xB9] = reg("LDA abs,Y", 4, readOp(func(c CPU) nums.Word { return readAbsoluteIndexed(c, c.Y()) }, func(c CPU, v nums.Byte) { loadRegister(c, c.SetA, v) }))
	m[0xA1] = reg("LDA (zp,X)", 6, readOp(addrIndirectX, func(c CPU, v nums.Byte) { loadRegister(c, c.SetA, v) }))
	m[0xB1] = reg("LDA (zp),Y", 5, readOp(readIndirectY, func(c CPU, v nums.Byte) { loadRegister(c, c.SetA, v) }))

	m[0xA2] = reg("LDX #", 2, func(c CPU) { loadRegister(c, c.SetX, readImmediate(c)) })
	m[0xA6] = reg("LDX zp", 3, readOp(addrZP, func(c CPU, v nums.Byte) { loadRegister(c, c.SetX, v) }))
	m[0xB6] = reg("LDX zp,Y", 4, readOp(addrZPY, func(c CPU, v nums.Byte) { loadRegister(c, c.SetX, v) }))
	m[0xAE] = reg("LDX abs", 4, readOp(addrAbsolute, func(c CPU, v nums.Byte) { loadRegister(c, c.SetX, v) }))
	m[0xBE] = reg("LDX abs,Y", 4, readOp(func(c CPU) nums.Word { return readAbsoluteIndexed(c, c.Y()) }, func(c CPU, v nums.Byte) { loadRegister(c, c.SetX, v) }))

	m[0xA0] = reg("LDY #", 2, func(c CPU) { loadRegister(c, c.SetY, readImmediate(c)) })
	m[0xA4] = reg("LDY zp", 3, readOp(addrZP, func(c CPU, v nums.Byte) { loadRegister(c, c.SetY, v) }))
	m[0xB4] = reg("LDY zp,X", 4, readOp(addrZPX, func(c CPU, v nums.Byte) { loadRegister(c, c.SetY, v) }))
	m[0xAC] = reg("LDY abs", 4, readOp(addrAbsolute, func(c CPU, v nums.Byte) { loadRegister(c, c.SetY, v) }))
	m[0xBC] = reg("LDY abs,X", 4, readOp(func(c CPU) nums.Word { return readAbsoluteIndexed(c, c.X()) }, func(c CPU, v nums.Byte) { loadRegister(c, c.SetY, v) }))

	// LSR
	m[0x4A] = reg("LSR A", 2, func(c CPU) {
		res, carry := lsr(c.A())
		c.SetFlag(FlagCarry, carry)
		loadRegister(c, c.SetA, res)
	})
	m[0x46] = reg("LSR zp", 5, shiftRMW(addrZP, lsr))
	m[0x56] = reg("LSR zp,X", 6, shiftRMW(addrZPX, lsr))
	m[0x4E] = reg("LSR abs", 6, shiftRMW(addrAbsolute, lsr))
	m[0x5E] = reg("LSR abs,X", 7, shiftRMW(func(c CPU) nums.Word { return addrAbsoluteIndexed(c, c.X()) }, lsr))

	// NOP
	m[0xEA] = reg("NOP", 2, func(CPU) {})

	// ORA
	m[0x09] = reg("ORA #", 2, func(c CPU) { ora(c, readImmediate(c)) })
	m[0x05] = reg("ORA zp", 3, readOp(addrZP, ora))
	m[0x15] = reg("ORA zp,X", 4, readOp(addrZPX, ora))
	m[0x0D] = reg("ORA abs", 4, readOp(addrAbsolute, ora))
	m[0x1D] = reg("ORA abs,X", 4, readOp(func(c CPU) nums.Word { return readAbsoluteIndexed(c, c.X()) }, ora))
	m[0x19] = reg("ORA abs,Y", 4, readOp(func(c CPU) nums.Word { return readAbsoluteIndexed(c, c.Y()) }, ora))
	m[0x01] = reg("ORA (zp,X)", 6, readOp(addrIndirectX, ora))
	m[0x11] = reg("ORA (zp),Y", 5, readOp(readIndirectY, ora))

	// Stack
	m[0x48] = reg("PHA", 3, func(c CPU) { c.Push(c.A()) })
	m[0x08] = reg("PHP", 3, func(c CPU) { c.Push(c.P() | FlagS1 | FlagBreak) })
	m[0x68] = reg("PLA", 4, func(c CPU) { loadRegister(c, c.SetA, c.Pull()) })
	m[0x28] = reg("PLP", 4, func(c CPU) { c.SetP((c.Pull() | FlagS1) &^ FlagBreak) })

	// ROL/ROR
	m[0x2A] = reg("ROL A", 2, func(c CPU) {
		res, carry := rol(c.A(), c.Flag(FlagCarry))
		c.SetFlag(FlagCarry, carry)
		loadRegister(c, c.SetA, res)
	})
	m[0x26] = reg("ROL zp", 5, rotateRMW(addrZP, rol))
	m[0x36] = reg("ROL zp,X", 6, rotateRMW(addrZPX, rol))
	m[0x2E] = reg("ROL abs", 6, rotateRMW(addrAbsolute, rol))
	m[0x3E] = reg("ROL abs,X", 7, rotateRMW(func(c CPU) nums.Word { return addrAbsoluteIndexed(c, c.X()) }, rol))
	m[0x6A] = reg("ROR A", 2, func(c CPU) {
		res, carry := ror(c.A(), c.Flag(FlagCarry))
		c.SetFlag(FlagCarry, carry)
		loadRegister(c, c.SetA, res)
	})
	m[0x66] = reg("ROR zp", 5, rotateRMW(addrZP, ror))
	m[0x76] = reg("ROR zp,X", 6, rotateRMW(addrZPX, ror))
	m[0x6E] = reg("ROR abs", 6, rotateRMW(addrAbsolute, ror))
	m[0x7E] = reg("ROR abs,X", 7, rotateRMW(func(c CPU) nums.Word { return addrAbsoluteIndexed(c, c.X()) }, ror))

	// RTI/RTS
	m[0x40] = reg("RTI", 6, func(c CPU) {
		c.SetP((c.Pull() | FlagS1) &^ FlagBreak)
		c.SetPC(pullWord(c))
	})
	m[0x60] = reg("RTS", 6, func(c CPU) {
		c.SetPC(pullWord(c) + 1)
	})

	// SBC
	m[0xE9] = reg("SBC #", 2, func(c CPU) { sbc(c, readImmediate(c)) })
	m[0xE5] = reg("SBC zp", 3, readOp(addrZP, sbc))
	m[0xF5] = reg("SBC zp,X", 4, readOp(addrZPX, sbc))
	m[0xED] = reg("SBC abs", 4, readOp(addrAbsolute, sbc))
	m[0xFD] = reg("SBC abs,X", 4, readOp(func(c CPU) nums.Word { return readAbsoluteIndexed(c, c.X()) }, sbc))
	m[0xF9] = reg("SBC abs,Y", 4, readOp(func(c CPU) nums.Word { return readAbsoluteIndexed(c, c.Y()) }, sbc))
	m[0xE1] = reg("SBC (zp,X)", 6, readOp(addrIndirectX, sbc))
	m[0xF1] = reg("SBC (zp),Y", 5, readOp(readIndirectY, sbc))

	// Stores
	m[0x85] = reg("STA zp", 3, storeOp(addrZP, c_A))
	m[0x95] = reg("STA zp,X", 4, storeOp(addrZPX, c_A))
	m[0x8D] = reg("STA abs", 4, storeOp(addrAbsolute, c_A))
	m[0x9D] = reg("STA abs,X", 5, storeOp(func(c CPU) nums.Word { return addrAbsoluteIndexed(c, c.X()) }, c_A))
	m[0x99] = reg("STA abs,Y", 5, storeOp(func(c CPU) nums.Word { return addrAbsoluteIndexed(c, c.Y()) }, c_A))
	m[0x81] = reg("STA (zp,X)", 6, storeOp(addrIndirectX, c_A))
	m[0x91] = reg("STA (zp),Y", 6, storeOp(addrIndirectY, c_A))

	m[0x86] = reg("STX zp", 3, storeOp(addrZP, c_X))
	m[0x96] = reg("STX zp,Y", 4, storeOp(addrZPY, c_X))
	m[0x8E] = reg("STX abs", 4, storeOp(addrAbsolute, c_X))

	m[0x84] = reg("STY zp", 3, storeOp(addrZP, c_Y))
	m[0x94] = reg("STY zp,X", 4, storeOp(addrZPX, c_Y))
	m[0x8C] = reg("STY abs", 4, storeOp(addrAbsolute, c_Y))

	// Transfers
	m[0xAA] = reg("TAX", 2, func(c CPU) { loadRegister(c, c.SetX, c.A()) })
	m[0xA8] = reg("TAY", 2, func(c CPU) { loadRegister(c, c.SetY, c.A()) })
	m[0xBA] = reg("TSX", 2, func(c CPU) { loadRegister(c, c.SetX, c.SP()) })
	m[0x8A] = reg("TXA", 2, func(c CPU) { loadRegister(c, c.SetA, c.X()) })
	m[0x9A] = reg("TXS", 2, func(c CPU) { c.SetSP(c.X()) })
	m[0x98] = reg("TYA", 2, func(c CPU) { loadRegister(c, c.SetA, c.Y()) })

	return m
}

func c_A(c CPU) nums.Byte { return c.A() }
func c_X(c CPU) nums.Byte { return c.X() }
func c_Y(c CPU) nums.Byte { return c.Y() }

// shiftRMW builds a read-modify-write Execute for ASL/LSR at the given
// addressing function.
func shiftRMW(addr func(CPU) nums.Word, op func(nums.Byte) (nums.Byte, bool)) func(CPU) {
	return rmwOp(addr, func(c CPU, a nums.Word, v nums.Byte) {
		res, carry := op(v)
		c.SetFlag(FlagCarry, carry)
		setZeroNegative(c, res)
		c.Write(a, res, dataWriteTag)
	})
}

// rotateRMW builds a read-modify-write Execute for ROL/ROR, which need the
// incoming carry flag as well as the value.
func rotateRMW(addr func(CPU) nums.Word, op func(nums.Byte, bool) (nums.Byte, bool)) func(CPU) {
	return rmwOp(addr, func(c CPU, a nums.Word, v nums.Byte) {
		res, carry := op(v, c.Flag(FlagCarry))
		c.SetFlag(FlagCarry, carry)
		setZeroNegative(c, res)
		c.Write(a, res, dataWriteTag)
	})
}

// incDecRMW builds a read-modify-write Execute for INC/DEC, delta is +1/-1.
func incDecRMW(addr func(CPU) nums.Word, delta nums.Byte) func(CPU) {
	return rmwOp(addr, func(c CPU, a nums.Word, v nums.Byte) {
		res := v + delta
		setZeroNegative(c, res)
		c.Write(a, res, dataWriteTag)
	})
}

// cmos65C02Overrides returns the slots that differ from the base MOS 6502
// table on WDC 65C02: the fixed JMP-indirect addressing plus the
// documented CMOS-only opcodes.
func cmos65C02Overrides() map[nums.Byte]Entry {
	m := map[nums.Byte]Entry{}

	m[0x6C] = reg("JMP (ind)", 6, func(c CPU) { c.SetPC(addrIndirectFixed(c)) })
	m[0x7C] = reg("JMP (abs,X)", 6, func(c CPU) {
		base := addrAbsolute(c)
		ptr := base.AddByte(c.X())
		lo := c.Read(ptr, opFetchTag)
		hi := c.Read(ptr+1, opFetchTag)
		c.SetPC(nums.FromBytes(hi, lo))
	})

	m[0x80] = reg("BRA", 2, func(c CPU) { branchIf(c, true) })

	m[0xDA] = reg("PHX", 3, func(c CPU) { c.Push(c.X()) })
	m[0x5A] = reg("PHY", 3, func(c CPU) { c.Push(c.Y()) })
	m[0xFA] = reg("PLX", 4, func(c CPU) { loadRegister(c, c.SetX, c.Pull()) })
	m[0x7A] = reg("PLY", 4, func(c CPU) { loadRegister(c, c.SetY, c.Pull()) })

	m[0x1A] = reg("INC A", 2, func(c CPU) { loadRegister(c, c.SetA, c.A()+1) })
	m[0x3A] = reg("DEC A", 2, func(c CPU) { loadRegister(c, c.SetA, c.A()-1) })

	zero := nums.Byte(0)
	m[0x64] = reg("STZ zp", 3, storeOp(addrZP, func(CPU) nums.Byte { return zero }))
	m[0x74] = reg("STZ zp,X", 4, storeOp(addrZPX, func(CPU) nums.Byte { return zero }))
	m[0x9C] = reg("STZ abs", 4, storeOp(addrAbsolute, func(CPU) nums.Byte { return zero }))
	m[0x9E] = reg("STZ abs,X", 5, storeOp(func(c CPU) nums.Word { return addrAbsoluteIndexed(c, c.X()) }, func(CPU) nums.Byte { return zero }))

	m[0x14] = reg("TRB zp", 5, rmwOp(addrZP, trsb(false)))
	m[0x1C] = reg("TRB abs", 6, rmwOp(addrAbsolute, trsb(false)))
	m[0x04] = reg("TSB zp", 5, rmwOp(addrZP, trsb(true)))
	m[0x0C] = reg("TSB abs", 6, rmwOp(addrAbsolute, trsb(true)))

	m[0x89] = reg("BIT #", 2, func(c CPU) {
		v := readImmediate(c)
		c.SetFlag(FlagZero, c.A()&v == 0)
	})
	m[0x34] = reg("BIT zp,X", 4, readOp(addrZPX, bit))
	m[0x3C] = reg("BIT abs,X", 4, readOp(func(c CPU) nums.Word { return readAbsoluteIndexed(c, c.X()) }, bit))

	// Zero-page indirect, no index: (zp) for the accumulator group.
	m[0x12] = reg("ORA (zp)", 5, readOp(addrIndirectYBase, ora))
	m[0x32] = reg("AND (zp)", 5, readOp(addrIndirectYBase, and))
	m[0x52] = reg("EOR (zp)", 5, readOp(addrIndirectYBase, eor))
	m[0x72] = reg("ADC (zp)", 5, readOp(addrIndirectYBase, adc))
	m[0xB2] = reg("LDA (zp)", 5, readOp(addrIndirectYBase, func(c CPU, v nums.Byte) { loadRegister(c, c.SetA, v) }))
	m[0xD2] = reg("CMP (zp)", 5, readOp(addrIndirectYBase, func(c CPU, v nums.Byte) { compare(c, c.A(), v) }))
	m[0xF2] = reg("SBC (zp)", 5, readOp(addrIndirectYBase, sbc))
	m[0x92] = reg("STA (zp)", 5, storeOp(addrIndirectYBase, c_A))

	return m
}

// trsb implements TRB/TSB: AND the memory value with A to set Z (Z reflects
// A AND M before modification),
// then either clear (TRB) or set (TSB) the bits A has set.
func trsb(set bool) func(CPU, nums.Word, nums.Byte) {
	return func(c CPU, a nums.Word, v nums.Byte) {
		c.SetFlag(FlagZero, c.A()&v == 0)
		var res nums.Byte
		if set {
			res = v | c.A()
		} else {
			res = v &^ c.A()
		}
		c.Write(a, res, dataWriteTag)
	}
}

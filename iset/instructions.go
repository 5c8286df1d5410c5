package iset

import "github.com/mos6502fam/core/nums"

// Flag-setting helpers shared by most instructions.

func setZeroNegative(c CPU, result nums.Byte) {
	c.SetFlag(FlagZero, result == 0)
	c.SetFlag(FlagNegative, result&0x80 != 0)
}

func setCarryFromSum(c CPU, sum uint16) {
	c.SetFlag(FlagCarry, sum > 0xFF)
}

func setOverflow(c CPU, a, operand, result nums.Byte) {
	c.SetFlag(FlagOverflow, (a^result)&(operand^result)&0x80 != 0)
}

func loadRegister(c CPU, set func(nums.Byte), val nums.Byte) {
	set(val)
	setZeroNegative(c, val)
}

// adc implements ADC, and also backs SBC by having the caller pass the
// ones-complemented operand for the binary path. BCD mode is honored only
// when the active variant supports it (Ricoh 2A03 never does).
func adc(c CPU, operand nums.Byte) {
	carry := nums.Byte(0)
	if c.Flag(FlagCarry) {
		carry = 1
	}
	if c.Flag(FlagDecimal) && c.DecimalSupported() {
		if c.DecimalCyclePenalty() {
			c.SpendCycles(1)
		}
		adcDecimal(c, operand, carry)
		return
	}
	a := c.A()
	sum := uint16(a) + uint16(operand) + uint16(carry)
	res := nums.Byte(sum & 0xFF)
	setOverflow(c, a, operand, res)
	setCarryFromSum(c, sum)
	loadRegister(c, c.SetA, res)
}

// adcDecimal implements packed-BCD addition per
// http://6502.org/tutorials/decimal_mode.html.
func adcDecimal(c CPU, operand, carry nums.Byte) {
	a := c.A()
	lo := (a & 0x0F) + (operand & 0x0F) + carry
	if lo >= 0x0A {
		lo = ((lo + 0x06) & 0x0F) + 0x10
	}
	sum := uint16(a&0xF0) + uint16(operand&0xF0) + uint16(lo)
	if sum >= 0xA0 {
		sum += 0x60
	}
	res := nums.Byte(sum & 0xFF)
	seq := (a & 0xF0) + (operand & 0xF0) + lo
	bin := a + operand + carry
	setOverflow(c, a, operand, seq)
	setCarryFromSum(c, sum)
	c.SetFlag(FlagNegative, seq&0x80 != 0)
	c.SetFlag(FlagZero, bin == 0)
	c.SetA(res)
}

func sbc(c CPU, operand nums.Byte) {
	if c.Flag(FlagDecimal) && c.DecimalSupported() {
		if c.DecimalCyclePenalty() {
			c.SpendCycles(1)
		}
		sbcDecimal(c, operand)
		return
	}
	adc(c, operand.Not())
}

// sbcDecimal implements packed-BCD subtraction, the mirror image of
// adcDecimal.
func sbcDecimal(c CPU, operand nums.Byte) {
	a := c.A()
	carry := nums.Byte(0)
	if c.Flag(FlagCarry) {
		carry = 1
	}
	binCarry := carry
	bin := uint16(a) + uint16(operand.Not()) + uint16(binCarry)
	setOverflow(c, a, operand.Not(), nums.Byte(bin&0xFF))
	setCarryFromSum(c, bin)
	setZeroNegative(c, nums.Byte(bin&0xFF))

	lo := int(a&0x0F) - int(operand&0x0F) - int(1-carry)
	hi := int(a&0xF0>>4) - int(operand&0xF0>>4)
	if lo < 0 {
		lo += 10
		hi--
	}
	if hi < 0 {
		hi += 10
	}
	c.SetA(nums.Byte(hi<<4) | nums.Byte(lo&0x0F))
}

func and(c CPU, operand nums.Byte) { loadRegister(c, c.SetA, c.A().And(operand)) }
func ora(c CPU, operand nums.Byte) { loadRegister(c, c.SetA, c.A().Or(operand)) }
func eor(c CPU, operand nums.Byte) { loadRegister(c, c.SetA, c.A().Xor(operand)) }

func bit(c CPU, operand nums.Byte) {
	c.SetFlag(FlagZero, c.A()&operand == 0)
	c.SetFlag(FlagNegative, operand&FlagNegative != 0)
	c.SetFlag(FlagOverflow, operand&FlagOverflow != 0)
}

func asl(v nums.Byte) (nums.Byte, bool) {
	carry := v&0x80 != 0
	return v.Shl(), carry
}

func lsr(v nums.Byte) (nums.Byte, bool) {
	carry := v&0x01 != 0
	return v.Shr(), carry
}

func rol(v nums.Byte, carryIn bool) (nums.Byte, bool) { return v.Rol(carryIn) }
func ror(v nums.Byte, carryIn bool) (nums.Byte, bool) { return v.Ror(carryIn) }

func compare(c CPU, reg, operand nums.Byte) {
	diff := reg - operand
	setZeroNegative(c, diff)
	c.SetFlag(FlagCarry, reg >= operand)
}

func branchIf(c CPU, taken bool) {
	offset := fetchOperandByte(c)
	if !taken {
		return
	}
	c.SpendCycles(1)
	old := c.PC()
	target := old + signExtend(offset)
	// The extra page-cross cycle compares against the true (sign-extended)
	// target, so a backward branch off the top of a page charges it too.
	if old&0xFF00 != target&0xFF00 {
		c.SpendCycles(1)
	}
	c.SetPC(target)
}

// signExtend widens an 8-bit two's-complement relative offset into the
// wrapping arithmetic a Word add needs.
func signExtend(b nums.Byte) nums.Word {
	if b&0x80 != 0 {
		return nums.Word(b) | 0xFF00
	}
	return nums.Word(b)
}

func pushWord(c CPU, w nums.Word) {
	c.Push(w.Hi())
	c.Push(w.Lo())
}

func pullWord(c CPU) nums.Word {
	lo := c.Pull()
	hi := c.Pull()
	return nums.FromBytes(hi, lo)
}

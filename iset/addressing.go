package iset

import "github.com/mos6502fam/core/nums"

// Addressing-mode helpers. Each fetches whatever operand bytes the mode
// needs via an OperandFetch-tagged read, advances PC past them, and returns
// the effective address (readImmediate alone returns the operand byte
// itself). The "read" family (readAbsoluteIndexed, readIndirectY), used by
// loads and ADC/AND/CMP/..., charges the page-cross cycle; the "addr"
// family, used by STA/STX/STY, the read-modify-write group, and JMP/JSR,
// does not. This split matches the 6502's own
// asymmetry: read-type instructions pay a conditional extra cycle for a
// page crossing on indexed/indirect-indexed modes; store and RMW
// instructions already have that cycle folded into their fixed base cost.

func fetchOperandByte(c CPU) nums.Byte {
	v := c.Read(c.PC(), operandTag)
	c.SetPC(c.PC() + 1)
	return v
}

// operandTag is OperandFetch; aliased locally to avoid importing bus in
// every call site below.
const operandTag = opFetchTag

// readImmediate returns the operand byte itself.
func readImmediate(c CPU) nums.Byte {
	return fetchOperandByte(c)
}

// addrZP returns the zero-page address in the next operand byte.
func addrZP(c CPU) nums.Word {
	return nums.Word(fetchOperandByte(c))
}

// addrZPX returns the zero-page,X address, wrapping within page zero.
func addrZPX(c CPU) nums.Word {
	zp := fetchOperandByte(c)
	return nums.ZeroPageIndexed(zp, c.X())
}

// addrZPY returns the zero-page,Y address, wrapping within page zero.
func addrZPY(c CPU) nums.Word {
	zp := fetchOperandByte(c)
	return nums.ZeroPageIndexed(zp, c.Y())
}

// addrAbsolute returns the two-byte little-endian absolute address.
func addrAbsolute(c CPU) nums.Word {
	lo := fetchOperandByte(c)
	hi := fetchOperandByte(c)
	return nums.FromBytes(hi, lo)
}

// addrAbsoluteIndexed returns base+index without reporting whether a page
// was crossed; used by stores and read-modify-write opcodes whose base
// cycle cost already assumes the worst case.
func addrAbsoluteIndexed(c CPU, index nums.Byte) nums.Word {
	base := addrAbsolute(c)
	return base.AddByte(index)
}

// readAbsoluteIndexed returns base+index and charges one extra cycle if
// that addition crosses a page boundary.
func readAbsoluteIndexed(c CPU, index nums.Byte) nums.Word {
	base := addrAbsolute(c)
	eff := base.AddByte(index)
	if nums.PageCrossed(base, index) {
		c.SpendCycles(1)
	}
	return eff
}

// addrIndirectX resolves (d,x): the zero-page pointer is indexed by X
// before the 16-bit target is read, wrapping within page zero throughout.
func addrIndirectX(c CPU) nums.Word {
	zp := fetchOperandByte(c)
	ptr := zp.Add(c.X())
	lo := c.Read(nums.Word(ptr), operandTag)
	hi := c.Read(nums.Word(ptr.Add(1)), operandTag)
	return nums.FromBytes(hi, lo)
}

// addrIndirectYBase resolves the zero-page pointer for (d),y without
// applying the Y index, so callers can decide whether to charge the
// page-cross cycle.
func addrIndirectYBase(c CPU) nums.Word {
	zp := fetchOperandByte(c)
	lo := c.Read(nums.Word(zp), operandTag)
	hi := c.Read(nums.Word(zp.Add(1)), operandTag)
	return nums.FromBytes(hi, lo)
}

// addrIndirectY resolves (d),y for stores/RMW: no page-cross cycle.
func addrIndirectY(c CPU) nums.Word {
	base := addrIndirectYBase(c)
	return base.AddByte(c.Y())
}

// readIndirectY resolves (d),y for loads: charges the page-cross cycle.
func readIndirectY(c CPU) nums.Word {
	base := addrIndirectYBase(c)
	eff := base.AddByte(c.Y())
	if nums.PageCrossed(base, c.Y()) {
		c.SpendCycles(1)
	}
	return eff
}

// addrIndirectBuggy resolves JMP (ind) with the documented MOS page-wrap
// bug: when the pointer's low byte is 0xFF, the high byte of the target is
// fetched from the start of the same page instead of the next page.
func addrIndirectBuggy(c CPU) nums.Word {
	ptr := addrAbsolute(c)
	lo := c.Read(ptr, operandTag)
	hiAddr := (ptr & 0xFF00) | ((ptr + 1) & 0x00FF)
	hi := c.Read(hiAddr, operandTag)
	return nums.FromBytes(hi, lo)
}

// addrIndirectFixed resolves JMP (ind) without the page-wrap bug, as
// corrected on the 65C02.
func addrIndirectFixed(c CPU) nums.Word {
	ptr := addrAbsolute(c)
	lo := c.Read(ptr, operandTag)
	hi := c.Read(ptr+1, operandTag)
	return nums.FromBytes(hi, lo)
}

// readOp wraps a value-producing read of the given addressing function
// into an Execute func via apply, so ADC/AND/CMP/... share one shape.
func readOp(addr func(CPU) nums.Word, apply func(CPU, nums.Byte)) func(CPU) {
	return func(c CPU) {
		v := c.Read(addr(c), dataReadTag)
		apply(c, v)
	}
}

// rmwOp wraps a read-modify-write sequence: read the value at addr, pass
// it to apply which computes and writes back the new value.
func rmwOp(addr func(CPU) nums.Word, apply func(CPU, nums.Word, nums.Byte)) func(CPU) {
	return func(c CPU) {
		a := addr(c)
		v := c.Read(a, dataReadTag)
		apply(c, a, v)
	}
}

// storeOp wraps a store to addr with the byte apply computes.
func storeOp(addr func(CPU) nums.Word, value func(CPU) nums.Byte) func(CPU) {
	return func(c CPU) {
		a := addr(c)
		c.Write(a, value(c), dataWriteTag)
	}
}

package memory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mos6502fam/core/memory"
	"github.com/mos6502fam/core/nums"
)

func TestRam_ReadWriteAndAliasing(t *testing.T) {
	r := memory.NewRam(16)
	r.Write(0x00, 0xAB)
	assert.EqualValues(t, 0xAB, r.Read(0x00))
	assert.EqualValues(t, 0xAB, r.Read(0x10), "a power-of-two Ram aliases past its size")
}

func TestRom_WritesAreDropped(t *testing.T) {
	r := memory.NewRom([]nums.Byte{0x01, 0x02, 0x03, 0x04})
	r.Write(0x01, 0xFF)
	assert.EqualValues(t, 0x02, r.Read(0x01), "ROM writes must be no-ops")
}

func TestMapper_DecodesOverlappingRegionsLastMountedWins(t *testing.T) {
	m := memory.NewMapper()
	m.Mount(0x0000, memory.NewRam(0x1000))
	rom := memory.NewRom(make([]nums.Byte, 0x100))
	m.Mount(0x0F00, rom)

	m.Write(0x0010, 0x42) // lands in the RAM region
	assert.EqualValues(t, 0x42, m.Read(0x0010))

	m.Write(0x0F10, 0x99) // would hit RAM by range but ROM was mounted later and wins
	assert.EqualValues(t, 0x00, m.Read(0x0F10), "ROM write must be dropped, not fall through to RAM")
}

func TestMapper_UnmappedAddressReadsZero(t *testing.T) {
	m := memory.NewMapper()
	m.Mount(0x8000, memory.NewRam(0x100))
	assert.EqualValues(t, 0x00, m.Read(0x0000))
}

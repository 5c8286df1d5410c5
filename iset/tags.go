package iset

import "github.com/mos6502fam/core/bus"

// Local aliases for the bus.AccessTag values instruction bodies use most,
// so addressing.go and instructions.go read without a bus. qualifier on
// every line.
const (
	opFetchTag   = bus.OperandFetch
	dataReadTag  = bus.DataRead
	dataWriteTag = bus.DataWrite
)

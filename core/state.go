package core

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/crzlab/crz64i/crz"
)

// ErrOutOfBoundsMemory is returned when a LOAD or STORE touches bytes
// past the end of the data memory. It aborts the run.
var ErrOutOfBoundsMemory = errors.New("memory access out of bounds")

type coreState struct {
	PC         int
	Registers  []uint64
	VRegisters [][2]uint64
	Flags      crz.Flags
	Memory     []byte
	Status     crz.Status
	Fault      error

	// Log holds the raw text of every executed operation, in order,
	// for deterministic replay. Label lines are not logged.
	Log []string

	// Unknown counts operations that were skipped because no handler
	// recognizes their opcode.
	Unknown int
}

func newCoreState(numRegisters, memCapacity int) coreState {
	return coreState{
		Registers:  make([]uint64, numRegisters),
		VRegisters: make([][2]uint64, crz.NumVectorRegisters),
		Memory:     make([]byte, memCapacity),
		Status:     crz.Running,
	}
}

// readUint64 reads a little-endian 8-byte value at addr. The whole
// word must lie inside the memory buffer.
func (s *coreState) readUint64(addr uint64) (uint64, error) {
	if err := s.checkBounds(addr, 8); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint64(s.Memory[addr : addr+8]), nil
}

// writeUint64 writes a little-endian 8-byte value at addr.
func (s *coreState) writeUint64(addr uint64, value uint64) error {
	if err := s.checkBounds(addr, 8); err != nil {
		return err
	}

	binary.LittleEndian.PutUint64(s.Memory[addr:addr+8], value)

	return nil
}

func (s *coreState) checkBounds(addr uint64, n uint64) error {
	capacity := uint64(len(s.Memory))
	if addr > capacity || capacity-addr < n {
		return fmt.Errorf("%w: address %d, %d bytes, capacity %d",
			ErrOutOfBoundsMemory, addr, n, capacity)
	}

	return nil
}

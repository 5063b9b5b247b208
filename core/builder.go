package core

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/crzlab/crz64i/crz"
)

// Builder can create new cores.
type Builder struct {
	engine               sim.Engine
	freq                 sim.Freq
	numRegisters         int
	memCapacity          int
	legacyBranchFallback bool
}

// NewBuilder returns a Builder with the architectural defaults.
func NewBuilder() Builder {
	return Builder{
		freq:         1 * sim.GHz,
		numRegisters: crz.NumRegisters,
		memCapacity:  crz.DefaultMemoryCapacity,
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the core.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithMemoryCapacity sets the size of the data memory in bytes.
func (b Builder) WithMemoryCapacity(capacity int) Builder {
	if capacity < 8 {
		panic("memory must hold at least one 8-byte word")
	}
	b.memCapacity = capacity
	return b
}

// WithRegisterCount sets the number of general-purpose registers.
func (b Builder) WithRegisterCount(count int) Builder {
	if count < 1 || count > crz.NumRegisters {
		panic("invalid register count")
	}
	b.numRegisters = count
	return b
}

// WithLegacyBranchFallback makes branches to unknown labels land on
// index 0 instead of failing the load, matching the original
// emulator.
func (b Builder) WithLegacyBranchFallback() Builder {
	b.legacyBranchFallback = true
	return b
}

// Build creates a core.
func (b Builder) Build(name string) *Core {
	c := &Core{
		legacyBranchFallback: b.legacyBranchFallback,
	}

	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)
	c.state = newCoreState(b.numRegisters, b.memCapacity)
	c.emu = newInstEmulator(nil, b.legacyBranchFallback)

	return c
}

package core

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/crzlab/crz64i/crz"
)

// Core is a single CRZ64I execution context. It retires one
// instruction per tick and stops making progress once it reaches a
// terminal state, which ends a serial-engine run.
type Core struct {
	*sim.TickingComponent

	program Program
	state   coreState
	emu     instEmulator

	legacyBranchFallback bool
}

// LoadProgram decodes the instruction lines, resolves labels, and arms
// the core. Branch targets are validated here unless the legacy
// fallback is enabled. Registers and memory keep whatever the caller
// preloaded; PC, flags, and the execution log start fresh.
func (c *Core) LoadProgram(lines []string) error {
	program, err := ParseProgram(lines)
	if err != nil {
		return err
	}

	labels := ResolveLabels(program)
	if !c.legacyBranchFallback {
		if err := ValidateBranchTargets(program, labels); err != nil {
			return err
		}
	}

	c.program = program
	c.emu = newInstEmulator(labels, c.legacyBranchFallback)

	c.state.PC = 0
	c.state.Flags = crz.Flags{}
	c.state.Status = crz.Running
	c.state.Fault = nil
	c.state.Log = nil
	c.state.Unknown = 0

	// TickingComponent does not schedule the first tick on its own.
	if c.Engine != nil {
		c.TickNow()
	}

	return nil
}

// Tick retires one instruction.
func (c *Core) Tick() (madeProgress bool) {
	if c.state.Status != crz.Running {
		return false
	}

	if c.state.PC >= len(c.program) {
		c.state.Status = crz.TerminatedByBounds
		Trace("Core",
			"Behavior", "TerminatedByBounds",
			"PC", c.state.PC,
		)

		return false
	}

	inst := c.program[c.state.PC]

	// Label and blank lines occupy an index but do not execute.
	if inst.IsLabel() || inst.IsBlank() {
		c.state.PC++
		return true
	}

	effect, err := c.emu.RunInst(inst, &c.state)
	if err != nil {
		c.state.Fault = err
		c.state.Status = crz.Faulted
		Trace("Core",
			"Behavior", "Fault",
			"PC", c.state.PC,
			"Error", err.Error(),
		)

		return false
	}

	switch effect.kind {
	case effectContinue:
		c.state.PC++
	case effectJump:
		c.state.PC = effect.target
	case effectHalt:
		c.state.Status = crz.Halted
	}

	return true
}

// PC returns the current program counter.
func (c *Core) PC() int {
	return c.state.PC
}

// Status returns the run-loop state of the core.
func (c *Core) Status() crz.Status {
	return c.state.Status
}

// Err returns the fault that stopped the core, or nil.
func (c *Core) Err() error {
	return c.state.Fault
}

// Register returns the value of general-purpose register index.
func (c *Core) Register(index int) uint64 {
	c.mustBeValidRegister(index)
	return c.state.Registers[index]
}

// SetRegister sets general-purpose register index.
func (c *Core) SetRegister(index int, value uint64) {
	c.mustBeValidRegister(index)
	c.state.Registers[index] = value
}

func (c *Core) mustBeValidRegister(index int) {
	if index < 0 || index >= len(c.state.Registers) {
		panic(fmt.Sprintf("register index %d out of range", index))
	}
}

// Flags returns the current flag bits.
func (c *Core) Flags() crz.Flags {
	return c.state.Flags
}

// WriteMemory copies data into the data memory at addr.
func (c *Core) WriteMemory(addr uint64, data []byte) error {
	if err := c.state.checkBounds(addr, uint64(len(data))); err != nil {
		return err
	}

	copy(c.state.Memory[addr:], data)

	return nil
}

// ReadMemory copies n bytes out of the data memory at addr.
func (c *Core) ReadMemory(addr uint64, n int) ([]byte, error) {
	if err := c.state.checkBounds(addr, uint64(n)); err != nil {
		return nil, err
	}

	out := make([]byte, n)
	copy(out, c.state.Memory[addr:])

	return out, nil
}

// ExecutionLog returns the raw text of every operation executed so
// far, in order.
func (c *Core) ExecutionLog() []string {
	return append([]string(nil), c.state.Log...)
}

// UnknownOpcodes returns how many unrecognized operations were
// skipped.
func (c *Core) UnknownOpcodes() int {
	return c.state.Unknown
}

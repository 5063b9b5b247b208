package core

import (
	"fmt"
	"math/bits"

	"github.com/crzlab/crz64i/crz"
)

// controlEffect tells the run loop how the PC changes after an
// operation: advance by one, jump to an index, or stop.
type controlEffect struct {
	kind   effectKind
	target int
}

type effectKind int

const (
	effectContinue effectKind = iota
	effectJump
	effectHalt
)

func carryOn() controlEffect {
	return controlEffect{kind: effectContinue}
}

func jumpTo(target int) controlEffect {
	return controlEffect{kind: effectJump, target: target}
}

func halt() controlEffect {
	return controlEffect{kind: effectHalt}
}

type instHandler func(inst Instruction, state *coreState) (controlEffect, error)

// instEmulator applies per-opcode semantics to the machine state.
type instEmulator struct {
	labels map[string]int

	// legacyBranchFallback makes a branch to an unknown label land on
	// index 0, matching the original emulator. Off by default; loads
	// validate targets instead.
	legacyBranchFallback bool

	handlers map[crz.Opcode]instHandler
}

func newInstEmulator(labels map[string]int, legacyBranchFallback bool) instEmulator {
	i := instEmulator{
		labels:               labels,
		legacyBranchFallback: legacyBranchFallback,
	}

	i.handlers = map[crz.Opcode]instHandler{
		crz.MOVI:  i.runMovi,
		crz.MOV:   i.runMov,
		crz.LOAD:  i.runLoad,
		crz.STORE: i.runStore,
		crz.ADD:   i.runAdd,
		crz.SUB:   i.runSub,
		crz.INC:   i.runInc,
		crz.DEC:   i.runDec,
		crz.AND:   i.runLogic,
		crz.OR:    i.runLogic,
		crz.XOR:   i.runLogic,
		crz.XCHG:  i.runXchg,
		crz.CMP:   i.runCmp,
		crz.JMP:   i.runJmp,
		crz.BEQ:   i.runBeq,
		crz.BNE:   i.runBne,
		crz.NOP:   i.runNop,
		crz.HALT:  i.runHalt,
	}

	return i
}

// RunInst executes one decoded operation against the state and
// reports the resulting control effect. Label and blank lines are
// no-ops. Unrecognized opcodes are skipped, counted, and traced;
// programs may carry operations from unimplemented extensions.
func (i instEmulator) RunInst(inst Instruction, state *coreState) (controlEffect, error) {
	if inst.IsLabel() || inst.IsBlank() {
		return carryOn(), nil
	}

	state.Log = append(state.Log, inst.Raw)

	handler, ok := i.handlers[inst.Opcode]
	if !ok {
		state.Unknown++
		Trace("Emu",
			"Behavior", "UnknownOpcode",
			"Opcode", string(inst.Opcode),
			"PC", state.PC,
		)

		return carryOn(), nil
	}

	return handler(inst, state)
}

// operand returns the n-th operand, or a zero operand (register r0)
// when the slot is missing. Handlers read only the slots they expect;
// arity is not validated.
func (instEmulator) operand(inst Instruction, n int) crz.Operand {
	if n >= len(inst.Operands) {
		return crz.Operand{}
	}

	return inst.Operands[n]
}

// readOperand resolves a register or immediate operand to its value.
// Any other kind reads as r0.
func (instEmulator) readOperand(operand crz.Operand, state *coreState) uint64 {
	switch operand.Kind {
	case crz.ImmOperand:
		return operand.Imm
	default:
		return state.Registers[operand.Reg]
	}
}

func (i instEmulator) dstReg(inst Instruction, n int) int {
	return i.operand(inst, n).Reg
}

// address resolves a memory operand to registers[base] + offset. The
// sum must not wrap; a wrapped address would land back inside memory
// and touch bytes the program never named.
func (instEmulator) address(operand crz.Operand, state *coreState) (uint64, error) {
	addr, carry := bits.Add64(state.Registers[operand.Reg], operand.Offset, 0)
	if carry != 0 {
		return 0, fmt.Errorf("%w: base %d + offset %d wraps",
			ErrOutOfBoundsMemory, state.Registers[operand.Reg], operand.Offset)
	}

	return addr, nil
}

func (i instEmulator) runMovi(inst Instruction, state *coreState) (controlEffect, error) {
	rd := i.dstReg(inst, 0)
	state.Registers[rd] = i.readOperand(i.operand(inst, 1), state)

	return carryOn(), nil
}

func (i instEmulator) runMov(inst Instruction, state *coreState) (controlEffect, error) {
	rd := i.dstReg(inst, 0)
	state.Registers[rd] = i.readOperand(i.operand(inst, 1), state)

	return carryOn(), nil
}

func (i instEmulator) runLoad(inst Instruction, state *coreState) (controlEffect, error) {
	rd := i.dstReg(inst, 0)

	addr, err := i.address(i.operand(inst, 1), state)
	if err != nil {
		return carryOn(), err
	}

	value, err := state.readUint64(addr)
	if err != nil {
		return carryOn(), err
	}

	state.Registers[rd] = value

	return carryOn(), nil
}

func (i instEmulator) runStore(inst Instruction, state *coreState) (controlEffect, error) {
	value := i.readOperand(i.operand(inst, 0), state)

	addr, err := i.address(i.operand(inst, 1), state)
	if err != nil {
		return carryOn(), err
	}

	if err := state.writeUint64(addr, value); err != nil {
		return carryOn(), err
	}

	return carryOn(), nil
}

// addWithCarry adds a + b + carryIn and computes the flag set: Z for a
// zero sum, N for bit 63, C for carry out of bit 63, V for
// two's-complement signed overflow. Subtraction-family opcodes reuse
// it with the complemented operand and carryIn 1, so C reads as
// "no borrow".
func addWithCarry(a, b, carryIn uint64) (uint64, crz.Flags) {
	partial := a + b
	sum := partial + carryIn

	flags := crz.Flags{
		Z: sum == 0,
		N: sum>>63 != 0,
		C: partial < a || sum < partial,
		V: (a^sum)&(b^sum)&(1<<63) != 0,
	}

	return sum, flags
}

func (i instEmulator) runAdd(inst Instruction, state *coreState) (controlEffect, error) {
	rd := i.dstReg(inst, 0)
	a := i.readOperand(i.operand(inst, 1), state)
	b := i.readOperand(i.operand(inst, 2), state)

	state.Registers[rd], state.Flags = addWithCarry(a, b, 0)

	return carryOn(), nil
}

func (i instEmulator) runSub(inst Instruction, state *coreState) (controlEffect, error) {
	rd := i.dstReg(inst, 0)
	a := i.readOperand(i.operand(inst, 1), state)
	b := i.readOperand(i.operand(inst, 2), state)

	state.Registers[rd], state.Flags = addWithCarry(a, ^b, 1)

	return carryOn(), nil
}

func (i instEmulator) runInc(inst Instruction, state *coreState) (controlEffect, error) {
	rd := i.dstReg(inst, 0)
	state.Registers[rd], state.Flags = addWithCarry(state.Registers[rd], 1, 0)

	return carryOn(), nil
}

func (i instEmulator) runDec(inst Instruction, state *coreState) (controlEffect, error) {
	rd := i.dstReg(inst, 0)
	state.Registers[rd], state.Flags = addWithCarry(state.Registers[rd], ^uint64(1), 1)

	return carryOn(), nil
}

func (i instEmulator) runCmp(inst Instruction, state *coreState) (controlEffect, error) {
	a := i.readOperand(i.operand(inst, 0), state)
	b := i.readOperand(i.operand(inst, 1), state)

	_, state.Flags = addWithCarry(a, ^b, 1)

	return carryOn(), nil
}

func (i instEmulator) runLogic(inst Instruction, state *coreState) (controlEffect, error) {
	rd := i.dstReg(inst, 0)
	a := i.readOperand(i.operand(inst, 1), state)
	b := i.readOperand(i.operand(inst, 2), state)

	var result uint64
	switch inst.Opcode {
	case crz.AND:
		result = a & b
	case crz.OR:
		result = a | b
	case crz.XOR:
		result = a ^ b
	}

	state.Registers[rd] = result
	state.Flags = crz.Flags{Z: result == 0, N: result>>63 != 0}

	return carryOn(), nil
}

func (i instEmulator) runXchg(inst Instruction, state *coreState) (controlEffect, error) {
	ra := i.dstReg(inst, 0)
	rb := i.dstReg(inst, 1)

	state.Registers[ra], state.Registers[rb] =
		state.Registers[rb], state.Registers[ra]

	return carryOn(), nil
}

func (i instEmulator) runJmp(inst Instruction, state *coreState) (controlEffect, error) {
	return i.branch(inst, state)
}

func (i instEmulator) runBeq(inst Instruction, state *coreState) (controlEffect, error) {
	if !state.Flags.Z {
		return carryOn(), nil
	}

	return i.branch(inst, state)
}

func (i instEmulator) runBne(inst Instruction, state *coreState) (controlEffect, error) {
	if state.Flags.Z {
		return carryOn(), nil
	}

	return i.branch(inst, state)
}

func (i instEmulator) branch(inst Instruction, state *coreState) (controlEffect, error) {
	name := i.operand(inst, 0).Label

	target, ok := i.labels[name]
	if !ok {
		if !i.legacyBranchFallback {
			return carryOn(), errUnresolvedAt(name, state.PC)
		}

		Trace("Emu",
			"Behavior", "LegacyBranchFallback",
			"Label", name,
			"PC", state.PC,
		)
		target = 0
	}

	return jumpTo(target), nil
}

func (instEmulator) runNop(Instruction, *coreState) (controlEffect, error) {
	return carryOn(), nil
}

func (instEmulator) runHalt(Instruction, *coreState) (controlEffect, error) {
	return halt(), nil
}

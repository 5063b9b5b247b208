package core

import "github.com/crzlab/crz64i/crz"

// Instruction represents one decoded program line. A line is either a
// label definition (Label is non-empty, no operation) or an operation
// (Opcode plus up to three operands).
type Instruction struct {
	Opcode   crz.Opcode    // the operation to perform, uppercase
	Operands []crz.Operand // typed operands, in source order
	Label    string        // non-empty for label lines (e.g. "loop")
	Raw      string        // raw source text, kept for the execution log
}

// IsLabel reports whether the instruction is a label definition.
func (i Instruction) IsLabel() bool {
	return i.Label != ""
}

// IsBlank reports whether the line carried no tokens at all. Blank
// lines occupy an index so label targets stay stable, but they do not
// execute, log, or count as unknown opcodes.
func (i Instruction) IsBlank() bool {
	return i.Opcode == "" && i.Label == ""
}

// Program is an ordered sequence of decoded instruction lines. Label
// and blank lines occupy an index but execute as no-ops.
type Program []Instruction

// Package crz defines the commonly used data structures for the CRZ64I
// architecture.
package crz

const (
	// NumRegisters is the number of general-purpose registers.
	NumRegisters = 32

	// NumVectorRegisters is the number of 128-bit vector registers.
	// No scalar opcode touches them; they are reserved for the vector
	// extension.
	NumVectorRegisters = 8

	// DefaultMemoryCapacity is the default size of the data memory in
	// bytes.
	DefaultMemoryCapacity = 4096
)

// Opcode is the symbolic name of an operation, always uppercase.
type Opcode string

// The scalar instruction set.
const (
	MOVI  Opcode = "MOVI"
	MOV   Opcode = "MOV"
	LOAD  Opcode = "LOAD"
	STORE Opcode = "STORE"
	ADD   Opcode = "ADD"
	SUB   Opcode = "SUB"
	INC   Opcode = "INC"
	DEC   Opcode = "DEC"
	AND   Opcode = "AND"
	OR    Opcode = "OR"
	XOR   Opcode = "XOR"
	XCHG  Opcode = "XCHG"
	CMP   Opcode = "CMP"
	JMP   Opcode = "JMP"
	BEQ   Opcode = "BEQ"
	BNE   Opcode = "BNE"
	NOP   Opcode = "NOP"
	HALT  Opcode = "HALT"
)

// Flags is the architectural status bit set. Arithmetic operations
// update all four bits; moves and memory operations leave them
// untouched.
type Flags struct {
	Z bool // zero
	N bool // negative, bit 63 of the result
	C bool // carry out of bit 63, or no-borrow for subtraction
	V bool // two's-complement signed overflow
}

// Status is the run-loop state of a core.
type Status int

const (
	// Running means the core will retire more instructions.
	Running Status = iota

	// Halted means the core executed a HALT.
	Halted

	// TerminatedByBounds means the PC ran past the end of the program.
	TerminatedByBounds

	// Faulted means execution aborted, e.g. on an out-of-bounds memory
	// access. The fault is available from Device.Err.
	Faulted
)

// Name returns the name of the status.
func (s Status) Name() string {
	switch s {
	case Running:
		return "Running"
	case Halted:
		return "Halted"
	case TerminatedByBounds:
		return "TerminatedByBounds"
	case Faulted:
		return "Faulted"
	default:
		panic("invalid status")
	}
}

// A Device is a CRZ64I emulator core as seen by a driver.
type Device interface {
	// LoadProgram decodes the instruction lines, validates branch
	// targets, and arms the core for execution.
	LoadProgram(lines []string) error

	// WriteMemory copies data into the data memory at addr.
	WriteMemory(addr uint64, data []byte) error

	// ReadMemory copies n bytes out of the data memory at addr.
	ReadMemory(addr uint64, n int) ([]byte, error)

	// Register returns the value of general-purpose register index.
	Register(index int) uint64

	// SetRegister sets general-purpose register index.
	SetRegister(index int, value uint64)

	// Flags returns the current flag bits.
	Flags() Flags

	// Status returns the run-loop state.
	Status() Status

	// Err returns the fault that stopped the core, if any.
	Err() error

	// ExecutionLog returns the raw text of every operation executed so
	// far, in order.
	ExecutionLog() []string

	// UnknownOpcodes returns how many unrecognized operations were
	// skipped.
	UnknownOpcodes() int
}

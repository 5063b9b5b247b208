package crz

// OperandKind tags the variant held by an Operand.
type OperandKind int

const (
	// RegOperand names a general-purpose register, r0..r31.
	RegOperand OperandKind = iota

	// ImmOperand is an unsigned 64-bit literal, written #123.
	ImmOperand

	// MemOperand is a byte address, written [rN] or [rN+off].
	MemOperand

	// LabelOperand references a label line by name.
	LabelOperand
)

// Name returns the name of the operand kind.
func (k OperandKind) Name() string {
	switch k {
	case RegOperand:
		return "Register"
	case ImmOperand:
		return "Immediate"
	case MemOperand:
		return "Memory"
	case LabelOperand:
		return "Label"
	default:
		panic("invalid operand kind")
	}
}

// Operand is one typed argument of an operation.
type Operand struct {
	Kind OperandKind

	// Reg is the register index for RegOperand, or the base register
	// for MemOperand.
	Reg int

	// Imm is the literal value for ImmOperand.
	Imm uint64

	// Offset is the byte offset added to the base register for
	// MemOperand.
	Offset uint64

	// Label is the branch target name for LabelOperand.
	Label string
}

// NewRegOperand makes a register operand.
func NewRegOperand(index int) Operand {
	return Operand{Kind: RegOperand, Reg: index}
}

// NewImmOperand makes an immediate operand.
func NewImmOperand(value uint64) Operand {
	return Operand{Kind: ImmOperand, Imm: value}
}

// NewMemOperand makes a memory operand addressing base+offset.
func NewMemOperand(base int, offset uint64) Operand {
	return Operand{Kind: MemOperand, Reg: base, Offset: offset}
}

// NewLabelOperand makes a label-reference operand.
func NewLabelOperand(name string) Operand {
	return Operand{Kind: LabelOperand, Label: name}
}

package core

import (
	"errors"
	"fmt"

	"github.com/crzlab/crz64i/crz"
)

// ErrUnresolvedLabel is returned at load time when a branch references
// a label that no line defines.
var ErrUnresolvedLabel = errors.New("unresolved branch label")

// ResolveLabels maps every label definition to its instruction index.
// It is a pure function of the program: re-running it on an unchanged
// program yields an identical mapping.
func ResolveLabels(program Program) map[string]int {
	labels := make(map[string]int)

	for i, inst := range program {
		if inst.IsLabel() {
			labels[inst.Label] = i
		}
	}

	return labels
}

// ValidateBranchTargets checks that every label operand of a branch
// resolves. The original emulator silently branched to index 0
// instead; that behavior survives behind the builder's legacy branch
// fallback.
func ValidateBranchTargets(program Program, labels map[string]int) error {
	for i, inst := range program {
		if !isBranch(inst.Opcode) {
			continue
		}

		for _, operand := range inst.Operands {
			if operand.Kind != crz.LabelOperand {
				continue
			}

			if _, ok := labels[operand.Label]; !ok {
				return fmt.Errorf("%w: %q at index %d",
					ErrUnresolvedLabel, operand.Label, i)
			}
		}
	}

	return nil
}

func errUnresolvedAt(name string, pc int) error {
	return fmt.Errorf("%w: %q at PC %d", ErrUnresolvedLabel, name, pc)
}

func isBranch(opcode crz.Opcode) bool {
	switch opcode {
	case crz.JMP, crz.BEQ, crz.BNE:
		return true
	default:
		return false
	}
}

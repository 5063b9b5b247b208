package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/crzlab/crz64i/crz"
)

// ErrDecode is returned when an instruction line cannot be decoded,
// e.g. a non-numeric immediate.
var ErrDecode = errors.New("malformed instruction")

// ParseProgram decodes every line into an Instruction. Decoding is a
// pure transform; the same text always yields the same program.
func ParseProgram(lines []string) (Program, error) {
	program := make(Program, 0, len(lines))

	for n, line := range lines {
		inst, err := DecodeLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d %q: %w", n, line, err)
		}

		program = append(program, inst)
	}

	return program, nil
}

// DecodeLine decodes a single instruction line. The first
// whitespace-delimited token is the opcode, case-insensitive;
// subsequent tokens are operands separated by commas or whitespace. A
// single token ending in ':' is a label definition.
func DecodeLine(line string) (Instruction, error) {
	tokens := strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ','
	})

	if len(tokens) == 1 && isLabelDef(tokens[0]) {
		return Instruction{
			Label: strings.TrimSuffix(tokens[0], ":"),
			Raw:   line,
		}, nil
	}

	inst := Instruction{Raw: line}
	if len(tokens) == 0 {
		return inst, nil
	}

	inst.Opcode = crz.Opcode(strings.ToUpper(tokens[0]))

	for _, token := range tokens[1:] {
		operand, err := parseOperand(token)
		if err != nil {
			return Instruction{}, err
		}

		inst.Operands = append(inst.Operands, operand)
	}

	return inst, nil
}

func isLabelDef(token string) bool {
	return len(token) > 1 && strings.HasSuffix(token, ":")
}

// parseOperand classifies one token. r<digits> is a register, #<num>
// an immediate, [rN] or [rN+off] a memory reference; everything else
// names a label.
func parseOperand(token string) (crz.Operand, error) {
	switch {
	case strings.HasPrefix(token, "#"):
		value, err := strconv.ParseUint(token[1:], 10, 64)
		if err != nil {
			return crz.Operand{},
				fmt.Errorf("%w: immediate %q", ErrDecode, token)
		}

		return crz.NewImmOperand(value), nil

	case strings.HasPrefix(token, "[") && strings.HasSuffix(token, "]"):
		return parseMemOperand(token)

	case isRegToken(token):
		index, err := regIndex(token)
		if err != nil {
			return crz.Operand{}, err
		}

		return crz.NewRegOperand(index), nil

	default:
		return crz.NewLabelOperand(token), nil
	}
}

func parseMemOperand(token string) (crz.Operand, error) {
	inner := strings.TrimSuffix(strings.TrimPrefix(token, "["), "]")

	base := inner
	offset := uint64(0)
	if at := strings.Index(inner, "+"); at >= 0 {
		base = inner[:at]

		parsed, err := strconv.ParseUint(inner[at+1:], 10, 64)
		if err != nil {
			return crz.Operand{},
				fmt.Errorf("%w: memory offset %q", ErrDecode, token)
		}
		offset = parsed
	}

	// The base defaults to r0 when it does not parse as a register.
	// This mirrors the original decoder and is deliberate; see the
	// error handling notes.
	index := 0
	if isRegToken(base) {
		parsed, err := regIndex(base)
		if err != nil {
			return crz.Operand{}, err
		}
		index = parsed
	} else {
		Trace("Decode",
			"Behavior", "RegisterFallback",
			"Token", token,
		)
	}

	return crz.NewMemOperand(index, offset), nil
}

func isRegToken(token string) bool {
	if len(token) < 2 || (token[0] != 'r' && token[0] != 'R') {
		return false
	}

	for _, c := range token[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}

func regIndex(token string) (int, error) {
	index, err := strconv.Atoi(token[1:])
	if err != nil {
		return 0, fmt.Errorf("%w: register %q", ErrDecode, token)
	}

	if index >= crz.NumRegisters {
		return 0, fmt.Errorf("%w: register index %d out of range",
			ErrDecode, index)
	}

	return index, nil
}

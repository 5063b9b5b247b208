package core

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/crzlab/crz64i/crz"
)

var _ = Describe("InstEmulator", func() {
	var (
		ie instEmulator
		s  coreState
	)

	run := func(line string) (controlEffect, error) {
		inst, err := DecodeLine(line)
		Expect(err).ToNot(HaveOccurred())

		return ie.RunInst(inst, &s)
	}

	mustRun := func(line string) {
		_, err := run(line)
		Expect(err).ToNot(HaveOccurred())
	}

	BeforeEach(func() {
		ie = newInstEmulator(map[string]int{"loop": 3}, false)
		s = newCoreState(crz.NumRegisters, crz.DefaultMemoryCapacity)
	})

	Context("moves", func() {
		It("should load an immediate with MOVI", func() {
			mustRun("MOVI r1, #256")

			Expect(s.Registers[1]).To(Equal(uint64(256)))
			Expect(s.Flags).To(Equal(crz.Flags{}))
		})

		It("should copy a register with MOV", func() {
			s.Registers[2] = 77

			mustRun("MOV r5, r2")

			Expect(s.Registers[5]).To(Equal(uint64(77)))
		})

		It("should swap registers with XCHG", func() {
			s.Registers[1] = 1
			s.Registers[2] = 2

			mustRun("XCHG r1, r2")

			Expect(s.Registers[1]).To(Equal(uint64(2)))
			Expect(s.Registers[2]).To(Equal(uint64(1)))
		})
	})

	Context("ADD flags", func() {
		It("should add without flags set", func() {
			s.Registers[1] = 1
			s.Registers[2] = 2

			mustRun("ADD r0, r1, r2")

			Expect(s.Registers[0]).To(Equal(uint64(3)))
			Expect(s.Flags).To(Equal(crz.Flags{}))
		})

		It("should set Z and C on unsigned wraparound to zero", func() {
			s.Registers[1] = math.MaxUint64

			mustRun("ADD r0, r1, #1")

			Expect(s.Registers[0]).To(Equal(uint64(0)))
			Expect(s.Flags).To(Equal(crz.Flags{Z: true, C: true}))
		})

		It("should set N and V when positives overflow to negative", func() {
			s.Registers[1] = math.MaxInt64

			mustRun("ADD r0, r1, #1")

			Expect(s.Registers[0]).To(Equal(uint64(1) << 63))
			Expect(s.Flags).To(Equal(crz.Flags{N: true, V: true}))
		})

		It("should set Z, C, and V when negatives overflow to zero", func() {
			s.Registers[1] = uint64(1) << 63
			s.Registers[2] = uint64(1) << 63

			mustRun("ADD r0, r1, r2")

			Expect(s.Registers[0]).To(Equal(uint64(0)))
			Expect(s.Flags).To(Equal(crz.Flags{Z: true, C: true, V: true}))
		})
	})

	Context("subtraction family", func() {
		It("should set C (no borrow) when SUB does not wrap", func() {
			s.Registers[1] = 7
			s.Registers[2] = 5

			mustRun("SUB r0, r1, r2")

			Expect(s.Registers[0]).To(Equal(uint64(2)))
			Expect(s.Flags).To(Equal(crz.Flags{C: true}))
		})

		It("should clear C and set N when SUB wraps below zero", func() {
			s.Registers[1] = 5

			mustRun("SUB r0, r1, #7")

			Expect(s.Registers[0]).To(Equal(uint64(math.MaxUint64) - 1))
			Expect(s.Flags).To(Equal(crz.Flags{N: true}))
		})

		It("should set Z when DEC reaches zero", func() {
			s.Registers[2] = 1

			mustRun("DEC r2")

			Expect(s.Registers[2]).To(Equal(uint64(0)))
			Expect(s.Flags).To(Equal(crz.Flags{Z: true, C: true}))
		})

		It("should wrap and set N when DEC underflows", func() {
			mustRun("DEC r2")

			Expect(s.Registers[2]).To(Equal(uint64(math.MaxUint64)))
			Expect(s.Flags).To(Equal(crz.Flags{N: true}))
		})

		It("should set V when DEC crosses the signed minimum", func() {
			s.Registers[2] = uint64(1) << 63

			mustRun("DEC r2")

			Expect(s.Registers[2]).To(Equal(uint64(math.MaxInt64)))
			Expect(s.Flags).To(Equal(crz.Flags{C: true, V: true}))
		})

		It("should compare without writing back", func() {
			s.Registers[1] = 42

			mustRun("CMP r1, #42")

			Expect(s.Registers[1]).To(Equal(uint64(42)))
			Expect(s.Flags.Z).To(BeTrue())
		})

		It("should increment with ADD-consistent flags", func() {
			s.Registers[1] = math.MaxUint64

			mustRun("INC r1")

			Expect(s.Registers[1]).To(Equal(uint64(0)))
			Expect(s.Flags).To(Equal(crz.Flags{Z: true, C: true}))
		})
	})

	Context("bitwise", func() {
		BeforeEach(func() {
			s.Registers[1] = 0x0F0F
			s.Registers[2] = 0x00FF
		})

		It("AND", func() {
			mustRun("AND r0, r1, r2")
			Expect(s.Registers[0]).To(Equal(uint64(0x000F)))
			Expect(s.Flags).To(Equal(crz.Flags{}))
		})

		It("OR", func() {
			mustRun("OR r0, r1, r2")
			Expect(s.Registers[0]).To(Equal(uint64(0x0FFF)))
		})

		It("XOR clearing the destination sets Z", func() {
			mustRun("XOR r0, r1, r1")
			Expect(s.Registers[0]).To(Equal(uint64(0)))
			Expect(s.Flags).To(Equal(crz.Flags{Z: true}))
		})

		It("should report the sign bit through N", func() {
			s.Registers[1] = uint64(1) << 63
			mustRun("OR r0, r1, r2")
			Expect(s.Flags.N).To(BeTrue())
		})
	})

	Context("memory", func() {
		It("should round-trip an 8-byte value through STORE and LOAD", func() {
			s.Registers[1] = 256
			s.Registers[2] = 0xDEADBEEFCAFEBABE

			mustRun("STORE r2, [r1]")
			mustRun("LOAD r3, [r1]")

			Expect(s.Registers[3]).To(Equal(uint64(0xDEADBEEFCAFEBABE)))
		})

		It("should honor the byte offset", func() {
			s.Registers[1] = 256
			s.Registers[2] = 7

			mustRun("STORE r2, [r1+16]")
			mustRun("LOAD r3, [r1+16]")

			Expect(s.Registers[3]).To(Equal(uint64(7)))
		})

		It("should store little-endian bytes", func() {
			s.Registers[2] = 0x0102030405060708

			mustRun("STORE r2, [r0+64]")

			Expect(s.Memory[64:72]).To(Equal([]byte{
				0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01,
			}))
		})

		It("should fault when a load crosses the end of memory", func() {
			s.Registers[1] = crz.DefaultMemoryCapacity - 4

			_, err := run("LOAD r3, [r1]")

			Expect(err).To(MatchError(ErrOutOfBoundsMemory))
			Expect(s.Registers[3]).To(Equal(uint64(0)))
		})

		It("should fault when a store crosses the end of memory", func() {
			s.Registers[1] = crz.DefaultMemoryCapacity

			_, err := run("STORE r2, [r1]")

			Expect(err).To(MatchError(ErrOutOfBoundsMemory))
		})

		It("should fault when base plus offset wraps past 2^64", func() {
			s.Registers[1] = math.MaxUint64
			s.Memory[7] = 0xAA

			_, err := run("LOAD r2, [r1+8]")

			Expect(err).To(MatchError(ErrOutOfBoundsMemory))
			Expect(s.Registers[2]).To(Equal(uint64(0)))
		})

		It("should not write low memory when a store address wraps", func() {
			s.Registers[1] = math.MaxUint64 - 3
			s.Registers[2] = math.MaxUint64

			_, err := run("STORE r2, [r1+12]")

			Expect(err).To(MatchError(ErrOutOfBoundsMemory))
			Expect(s.Memory[:16]).To(Equal(make([]byte, 16)))
		})
	})

	Context("control flow", func() {
		It("should jump unconditionally", func() {
			effect, err := run("JMP loop")

			Expect(err).ToNot(HaveOccurred())
			Expect(effect).To(Equal(jumpTo(3)))
		})

		It("should take BNE when Z is clear", func() {
			effect, err := run("BNE loop")

			Expect(err).ToNot(HaveOccurred())
			Expect(effect).To(Equal(jumpTo(3)))
		})

		It("should fall through BNE when Z is set", func() {
			s.Flags.Z = true

			effect, err := run("BNE loop")

			Expect(err).ToNot(HaveOccurred())
			Expect(effect).To(Equal(carryOn()))
		})

		It("should take BEQ only when Z is set", func() {
			s.Flags.Z = true

			effect, err := run("BEQ loop")

			Expect(err).ToNot(HaveOccurred())
			Expect(effect).To(Equal(jumpTo(3)))
		})

		It("should error on a branch to an unknown label", func() {
			_, err := run("BNE nowhere")

			Expect(err).To(MatchError(ErrUnresolvedLabel))
		})

		It("should fall back to index 0 in legacy mode", func() {
			ie = newInstEmulator(nil, true)

			effect, err := run("BNE nowhere")

			Expect(err).ToNot(HaveOccurred())
			Expect(effect).To(Equal(jumpTo(0)))
		})

		It("should halt", func() {
			effect, err := run("HALT")

			Expect(err).ToNot(HaveOccurred())
			Expect(effect).To(Equal(halt()))
		})
	})

	Context("permissiveness", func() {
		It("should skip and count unknown opcodes", func() {
			effect, err := run("VDOT32 r1, r2, r3")

			Expect(err).ToNot(HaveOccurred())
			Expect(effect).To(Equal(carryOn()))
			Expect(s.Unknown).To(Equal(1))
		})

		It("should treat a missing operand as r0", func() {
			s.Registers[0] = 9

			mustRun("MOV r4")

			Expect(s.Registers[4]).To(Equal(uint64(9)))
		})

		It("should pass over blank lines without logging or counting", func() {
			effect, err := run("   \t  ")

			Expect(err).ToNot(HaveOccurred())
			Expect(effect).To(Equal(carryOn()))
			Expect(s.Log).To(BeEmpty())
			Expect(s.Unknown).To(Equal(0))
		})

		It("should log every executed operation", func() {
			mustRun("MOVI r1, #1")
			mustRun("NOP")

			Expect(s.Log).To(Equal([]string{"MOVI r1, #1", "NOP"}))
		})
	})
})

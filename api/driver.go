// Package api defines the driver API for the CRZ64I emulator.
package api

import (
	"encoding/binary"
	"strings"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/crzlab/crz64i/crz"
)

// Driver provides the interface to control an emulator core.
type Driver interface {
	// RegisterDevice registers the core that the driver controls.
	RegisterDevice(device crz.Device)

	// LoadProgram loads assembly text onto the device. Blank lines and
	// ';' comment lines are dropped; every remaining line is one
	// instruction.
	LoadProgram(text string) error

	// PreloadUint64 writes consecutive little-endian 8-byte values
	// into the device memory starting at addr.
	PreloadUint64(addr uint64, values ...uint64) error

	// Run drives the engine until the device stops making progress,
	// then surfaces the device fault, if any.
	Run() error

	// Result reads back a general-purpose register.
	Result(index int) uint64

	// Flags reads back the flag bits.
	Flags() crz.Flags

	// ExecutionLog returns the device's replay log.
	ExecutionLog() []string
}

type driverImpl struct {
	engine sim.Engine
	device crz.Device
}

func (d *driverImpl) RegisterDevice(device crz.Device) {
	d.device = device
}

func (d *driverImpl) LoadProgram(text string) error {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}

		lines = append(lines, line)
	}

	return d.device.LoadProgram(lines)
}

func (d *driverImpl) PreloadUint64(addr uint64, values ...uint64) error {
	buf := make([]byte, 8*len(values))
	for i, value := range values {
		binary.LittleEndian.PutUint64(buf[8*i:], value)
	}

	return d.device.WriteMemory(addr, buf)
}

func (d *driverImpl) Run() error {
	if err := d.engine.Run(); err != nil {
		return err
	}

	return d.device.Err()
}

func (d *driverImpl) Result(index int) uint64 {
	return d.device.Register(index)
}

func (d *driverImpl) Flags() crz.Flags {
	return d.device.Flags()
}

func (d *driverImpl) ExecutionLog() []string {
	return d.device.ExecutionLog()
}

package main

import (
	_ "embed"
	"fmt"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/crzlab/crz64i/api"
	"github.com/crzlab/crz64i/core"
)

//go:embed sum.crzasm
var sumKernel string

func sum(driver api.Driver, device *core.Core) {
	err := driver.PreloadUint64(256, 10, 20, 30, 40)
	if err != nil {
		panic(err)
	}

	if err := driver.LoadProgram(sumKernel); err != nil {
		panic(err)
	}

	if err := driver.Run(); err != nil {
		panic(err)
	}

	core.PrintState(device)
	fmt.Println("Sum:", driver.Result(3))
}

func main() {
	engine := sim.NewSerialEngine()

	device := core.NewBuilder().
		WithEngine(engine).
		WithFreq(1 * sim.GHz).
		Build("Core")

	driver := api.DriverBuilder{}.
		WithEngine(engine).
		Build()
	driver.RegisterDevice(device)

	sum(driver, device)

	atexit.Exit(0)
}

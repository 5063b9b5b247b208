package api

import "github.com/sarchlab/akita/v4/sim"

// DriverBuilder creates a new instance of Driver.
type DriverBuilder struct {
	engine sim.Engine
}

// WithEngine sets the engine.
func (b DriverBuilder) WithEngine(engine sim.Engine) DriverBuilder {
	b.engine = engine
	return b
}

// Build creates a driver.
func (b DriverBuilder) Build() Driver {
	return &driverImpl{
		engine: b.engine,
	}
}

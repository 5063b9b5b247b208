package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
)

// LevelTrace sits above Info so per-instruction events stay out of
// normal logs unless explicitly enabled.
const LevelTrace slog.Level = slog.LevelInfo + 1

// Trace logs an emulator event at the trace level.
func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

// PrintState renders the register file and flag bits of a core as
// tables on stdout.
func PrintState(c *Core) {
	fmt.Printf("==============%s [%s]==============\n",
		c.Name(), c.Status().Name())

	regTable := table.NewWriter()
	regTable.SetTitle("Registers")
	regTable.AppendHeader(table.Row{"", "+0", "+1", "+2", "+3",
		"+4", "+5", "+6", "+7"})

	for base := 0; base < len(c.state.Registers); base += 8 {
		row := table.Row{fmt.Sprintf("r%d", base)}
		for i := 0; i < 8 && base+i < len(c.state.Registers); i++ {
			row = append(row, c.state.Registers[base+i])
		}
		regTable.AppendRow(row)
	}

	fmt.Println(regTable.Render())

	flagTable := table.NewWriter()
	flagTable.SetTitle("Flags")
	flagTable.AppendHeader(table.Row{"Z", "N", "C", "V", "PC"})
	flagTable.AppendRow(table.Row{
		bit(c.state.Flags.Z),
		bit(c.state.Flags.N),
		bit(c.state.Flags.C),
		bit(c.state.Flags.V),
		c.state.PC,
	})

	fmt.Println(flagTable.Render())
}

func bit(b bool) int {
	if b {
		return 1
	}

	return 0
}

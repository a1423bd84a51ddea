package main

import (
	"fmt"

	"github.com/fwojciec/initbot"
)

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	initiatives, err := deps.Initiatives.FindInitiatives(deps.Ctx, initbot.InitiativeFilter{})
	if err != nil {
		return deps.fail(err)
	}

	fmt.Fprintln(deps.Stdout, initbot.ComputeStatistics(initiatives).Format())
	return nil
}

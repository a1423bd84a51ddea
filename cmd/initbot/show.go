package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/initbot"
)

// Run executes the show command.
func (c *ShowCmd) Run(deps *Dependencies) error {
	initiative, err := deps.Initiatives.FindInitiativeByID(deps.Ctx, c.ID)
	if err != nil {
		return deps.fail(err)
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(initiative)
	}

	fmt.Fprintln(deps.Stdout, initbot.FormatInitiative(initiative))
	return nil
}

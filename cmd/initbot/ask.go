package main

import (
	"fmt"
	"strings"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	if err := deps.prepare(); err != nil {
		return deps.fail(err)
	}

	reply, err := deps.chatbot().Respond(deps.Ctx, strings.Join(c.Question, " "))
	if err != nil {
		return deps.fail(err)
	}

	fmt.Fprintln(deps.Stdout, reply.Text)
	return nil
}

package main

import (
	"fmt"

	inithttp "github.com/fwojciec/initbot/http"
)

// Run executes the serve command. It blocks until the context is cancelled.
// The cache age is checked again every RefreshEvery while serving.
func (c *ServeCmd) Run(deps *Dependencies) error {
	if err := deps.prepare(); err != nil {
		return deps.fail(err)
	}

	server := inithttp.NewServer()
	server.Addr = c.Addr
	if server.Addr == "" {
		server.Addr = deps.Config.Server.Addr
	}
	server.InitiativeService = deps.Initiatives
	server.Chatbot = deps.chatbot()
	server.Logger = deps.logger()

	if err := server.Open(); err != nil {
		return deps.fail(err)
	}
	fmt.Fprintf(deps.Stdout, "Listening on %s\n", server.URL())

	if c.RefreshEvery > 0 {
		go deps.keepFresh(c.RefreshEvery)
	}

	<-deps.Ctx.Done()
	return server.Close()
}

package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/fwojciec/initbot"
	"github.com/fwojciec/initbot/chat"
)

const chatPrompt = "> "

// Run executes the chat command. Each line is answered on its own until
// "exit", "quit" or end of input.
func (c *ChatCmd) Run(deps *Dependencies) error {
	if err := deps.prepare(); err != nil {
		return deps.fail(err)
	}
	bot := deps.chatbot()

	fmt.Fprintln(deps.Stdout, chat.GreetingResponses[0])
	fmt.Fprintln(deps.Stdout, `Type "exit" to quit.`)

	scanner := bufio.NewScanner(deps.Stdin)
	for {
		fmt.Fprint(deps.Stdout, chatPrompt)
		if !scanner.Scan() {
			fmt.Fprintln(deps.Stdout)
			break
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			fmt.Fprintln(deps.Stdout, chat.FarewellResponses[0])
			return nil
		}

		reply, err := bot.Respond(deps.Ctx, line)
		if err != nil {
			if initbot.ErrorCode(err) == initbot.EINTERNAL {
				return deps.fail(err)
			}
			fmt.Fprintf(deps.Stderr, "error: %s\n", initbot.ErrorMessage(err))
			continue
		}
		fmt.Fprintln(deps.Stdout, reply.Text)
		fmt.Fprintln(deps.Stdout)
	}
	return scanner.Err()
}

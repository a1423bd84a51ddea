package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fwojciec/initbot"
)

// Run executes the opinion command.
func (c *OpinionCmd) Run(deps *Dependencies) error {
	initiative, err := deps.Initiatives.FindInitiativeByID(deps.Ctx, c.ID)
	if err != nil {
		return deps.fail(err)
	}

	reactions, err := c.readReactions(deps.Stdin)
	if err != nil {
		return deps.fail(err)
	}

	opinion, err := deps.Opinions.Analyze(deps.Ctx, initiative, reactions)
	if err != nil {
		return deps.fail(err)
	}

	fmt.Fprintf(deps.Stdout, "%s\n", initiative.Title)
	fmt.Fprintf(deps.Stdout, "Opinion: %s (score %+.2f, %d reactions)\n", opinion.Label, opinion.Score, len(reactions))
	for _, h := range opinion.Highlights {
		fmt.Fprintf(deps.Stdout, "- %s\n", h)
	}
	return nil
}

// readReactions returns the non-empty lines of the reactions file.
func (c *OpinionCmd) readReactions(stdin io.Reader) ([]string, error) {
	r := stdin
	if c.File != "-" {
		f, err := os.Open(c.File)
		if err != nil {
			return nil, initbot.Errorf(initbot.EINVALID, "cannot read reactions: %v", err)
		}
		defer f.Close()
		r = f
	}

	var reactions []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			reactions = append(reactions, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(reactions) == 0 {
		return nil, initbot.Errorf(initbot.EINVALID, "no reactions in %s", c.File)
	}
	return reactions, nil
}

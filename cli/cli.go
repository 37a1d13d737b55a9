package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// CLI runs the plain terminal loop around a session.
type CLI struct {
	Session   *Session
	In        io.Reader
	Out       io.Writer
	EchoInput bool // echo each input line after the prompt (script playback)
}

// New creates a CLI wired to the given session.
func New(session *Session) *CLI {
	return &CLI{
		Session: session,
		In:      os.Stdin,
		Out:     os.Stdout,
	}
}

// Run starts the loop: prompt → input → dispatch → output. It shows the
// scenario intro and the current marked targets first.
func (c *CLI) Run() {
	if intro := c.Session.Defs.Scenario.Intro; intro != "" {
		c.printLine(intro)
		c.printLine("")
	}
	lines, _ := c.Session.Exec("targets")
	c.printLines(lines)

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		lines, quit := c.Session.Exec(input)
		c.printLines(lines)
		if quit {
			return
		}
	}
}

func (c *CLI) printLines(lines []string) {
	for _, line := range lines {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

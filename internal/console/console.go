// Package console implements a small line-oriented command interface for
// the interactive binaries. Commands are injected by the host program;
// the console itself knows nothing about the game.
package console

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Handler executes one command with its arguments.
type Handler func(args []string) error

// Console reads lines, splits them into command and arguments, and runs
// the matching handler.
type Console struct {
	handlers map[string]Handler
	out      io.Writer
	log      *zap.Logger

	// OnExit runs when the input stream ends or the quit command fires.
	// Hosts hang shutdown on it.
	OnExit func()
}

func New(out io.Writer, log *zap.Logger) *Console {
	c := &Console{
		handlers: make(map[string]Handler),
		out:      out,
		log:      log,
	}
	c.Register("help", func([]string) error {
		fmt.Fprintf(out, "commands: %s\n", strings.Join(c.Names(), " "))
		return nil
	})
	return c
}

// Register binds a command name. Re-registering replaces the handler.
func (c *Console) Register(name string, fn Handler) {
	c.handlers[strings.ToLower(name)] = fn
}

// Names lists registered commands, sorted.
func (c *Console) Names() []string {
	names := make([]string, 0, len(c.handlers))
	for n := range c.handlers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Execute runs one input line. Blank lines are ignored; unknown commands
// and handler failures are reported, never fatal.
func (c *Console) Execute(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	name := strings.ToLower(fields[0])
	if name == "quit" || name == "exit" {
		if c.OnExit != nil {
			c.OnExit()
		}
		return
	}
	fn, ok := c.handlers[name]
	if !ok {
		fmt.Fprintf(c.out, "unknown command %q (try help)\n", name)
		return
	}
	if err := fn(fields[1:]); err != nil {
		fmt.Fprintf(c.out, "%s: %v\n", name, err)
		c.log.Debug("command failed", zap.String("command", name), zap.Error(err))
	}
}

// Run reads r line by line until EOF, then fires OnExit.
func (c *Console) Run(r io.Reader) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		c.Execute(sc.Text())
	}
	if c.OnExit != nil {
		c.OnExit()
	}
}

// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for a single local player session.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nathoo/runesim/command"
	"github.com/nathoo/runesim/engine"
	"github.com/nathoo/runesim/engine/parser"
	"github.com/nathoo/runesim/persistence"
)

// CLI handles terminal interaction with the player. The simulation is
// advanced by a background pump so movement, drain, and effect timers
// keep running while the prompt waits.
type CLI struct {
	Engine   *engine.Engine
	Store    *persistence.Store // may be nil
	PlayerID string
	In       io.Reader
	Out      io.Writer
	Tick     time.Duration
}

// New creates a CLI wired to the given engine.
func New(eng *engine.Engine, store *persistence.Store, playerID string) *CLI {
	return &CLI{
		Engine:   eng,
		Store:    store,
		PlayerID: playerID,
		In:       os.Stdin,
		Out:      os.Stdout,
		Tick:     600 * time.Millisecond,
	}
}

// Run starts the session loop: prompt → input → dispatch → output.
func (c *CLI) Run() {
	defs := c.Engine.Defs()
	c.printLine(fmt.Sprintf("%s (%s)", defs.World.Title, defs.World.Version))
	c.printLine("Type 'help' for commands, /help for meta-commands.")
	c.printLine("")

	if c.Store != nil {
		if snap, err := c.Store.Latest(c.PlayerID); err != nil {
			c.printSystem(fmt.Sprintf("Restore failed: %v", err))
		} else if snap != nil {
			c.Engine.Restore(snap)
			c.printSystem("Restored last snapshot.")
		}
	}
	c.printLine(command.FormatStatus(c.Engine.Status(c.PlayerID)))

	stop := make(chan struct{})
	go c.pump(stop)
	defer close(stop)

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

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		intent := parser.Parse(input)
		if intent.Verb == "quit" {
			c.printSystem("Goodbye.")
			return
		}

		text, err := command.Execute(c.Engine, c.PlayerID, intent)
		if err != nil {
			c.printLine(err.Error())
			continue
		}
		if text != "" {
			c.printLine(text)
		}
	}
}

// pump advances the simulation in near-real time until stopped.
func (c *CLI) pump(stop chan struct{}) {
	ticker := time.NewTicker(c.Tick)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.Engine.Advance(c.Tick.Seconds())
		}
	}
}

// handleMeta dispatches meta-commands. Returns true if the session should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.cmdSave()
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave()

	case "/load":
		c.cmdLoad()

	case "/history":
		c.cmdHistory()

	case "/wait":
		c.cmdWait(arg)

	case "/help":
		c.cmdHelp()

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdSave() {
	if c.Store == nil {
		c.printSystem("No snapshot store configured.")
		return
	}
	if err := c.Store.Put(c.Engine.Capture(c.PlayerID)); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem("Snapshot saved.")
}

func (c *CLI) cmdLoad() {
	if c.Store == nil {
		c.printSystem("No snapshot store configured.")
		return
	}
	snap, err := c.Store.Latest(c.PlayerID)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	if snap == nil {
		c.printSystem("No snapshot found.")
		return
	}
	c.Engine.Restore(snap)
	c.printSystem(fmt.Sprintf("Snapshot loaded (clock %.1fs).", snap.Clock))
	c.printLine(command.FormatStatus(c.Engine.Status(c.PlayerID)))
}

func (c *CLI) cmdHistory() {
	if c.Store == nil {
		c.printSystem("No snapshot store configured.")
		return
	}
	records, err := c.Store.History(c.PlayerID, 10)
	if err != nil {
		c.printSystem(fmt.Sprintf("History failed: %v", err))
		return
	}
	if len(records) == 0 {
		c.printSystem("No snapshots.")
		return
	}
	for _, rec := range records {
		c.printSystem(fmt.Sprintf("#%d  %s  clock %.1fs",
			rec.Seq, rec.TakenAt.Format(time.RFC3339), rec.Clock))
	}
}

// cmdWait fast-forwards the simulation, for scripted runs.
func (c *CLI) cmdWait(arg string) {
	seconds, err := strconv.ParseFloat(arg, 64)
	if err != nil || seconds <= 0 {
		c.printSystem("Usage: /wait <seconds>")
		return
	}
	// Advance in tick-sized slices so timers fire in order.
	step := c.Tick.Seconds()
	for seconds > 0 {
		dt := step
		if seconds < dt {
			dt = seconds
		}
		c.Engine.Advance(dt)
		seconds -= dt
	}
	c.printSystem("Time passes.")
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save           — Snapshot the session",
		"  /load           — Restore the latest snapshot",
		"  /history        — List stored snapshots",
		"  /wait <seconds> — Fast-forward the simulation",
		"  /quit           — Save and exit",
		"  /help           — Show this help",
		"",
		"Type 'help' for in-world commands.",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}

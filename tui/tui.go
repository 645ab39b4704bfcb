package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/runesim/command"
	"github.com/nathoo/runesim/engine"
	"github.com/nathoo/runesim/engine/parser"
	"github.com/nathoo/runesim/persistence"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool // true for echoed player input
	isSystem bool // true for system messages
}

// Model is the Bubble Tea model for the RuneSim TUI.
type Model struct {
	engine   *engine.Engine
	store    *persistence.Store // may be nil
	playerID string
	tick     time.Duration

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated output lines (unstyled, for re-wrapping)

	width    int
	height   int
	ready    bool
	quitting bool
}

// outputMsg carries command output into the Update loop.
type outputMsg struct {
	input    string   // echoed player input (empty for intro)
	lines    []string // output lines
	isSystem bool     // true for meta-command output
}

// tickMsg advances the simulation clock.
type tickMsg time.Time

// New creates a TUI model wired to the given engine.
func New(eng *engine.Engine, store *persistence.Store, playerID string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	return Model{
		engine:   eng,
		store:    store,
		playerID: playerID,
		tick:     600 * time.Millisecond,
		input:    ti,
		history:  NewHistory(100),
	}
}

// Run starts the Bubble Tea program.
func Run(eng *engine.Engine, store *persistence.Store, playerID string) error {
	m := New(eng, store, playerID)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init returns the initial commands: intro text plus the tick pump.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput(), m.tickCmd())
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		defs := m.engine.Defs()
		var lines []string
		lines = append(lines, defs.World.Title+" v"+defs.World.Version)
		lines = append(lines, "")

		if m.store != nil {
			if snap, err := m.store.Latest(m.playerID); err == nil && snap != nil {
				m.engine.Restore(snap)
				lines = append(lines, "[Restored last snapshot.]")
			}
		}

		lines = append(lines, strings.Split(command.FormatStatus(m.engine.Status(m.playerID)), "\n")...)
		return outputMsg{lines: lines}
	}
}

// Update handles messages (key presses, window resize, ticks, output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 status bar + 1 input line
		if vpHeight < 1 {
			vpHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tickMsg:
		m.engine.Advance(m.tick.Seconds())
		return m, m.tickCmd()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
				m.history.ResetCursor()
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case outputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}

	m.history.Push(input)
	m.history.ResetCursor()

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		m = m.appendOutput(outputMsg{input: input, lines: output, isSystem: true})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	intent := parser.Parse(input)
	if intent.Verb == "quit" {
		m.snapshot()
		m.quitting = true
		return m, tea.Quit
	}

	text, err := command.Execute(m.engine, m.playerID, intent)
	if err != nil {
		m = m.appendOutput(outputMsg{input: input, lines: []string{err.Error()}})
		return m, nil
	}
	m = m.appendOutput(outputMsg{input: input, lines: strings.Split(text, "\n")})
	return m, nil
}

// appendOutput adds lines to the log and refreshes the viewport.
func (m Model) appendOutput(msg outputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{
			text: "> " + msg.input, isInput: true,
		})
	}

	for _, line := range msg.lines {
		rl := rawLine{text: line, isSystem: msg.isSystem}
		if !msg.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}

	// Blank line separator between turns.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)

		switch {
		case rl.isInput:
			styled = append(styled, stylePlayerInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries. Map rows are never wrapped; truncation beats reflow there.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width || isMapRow(text) {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wLen := len(word)

		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the full TUI layout: viewport + status bar + input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]

	switch cmd {
	case "/quit", "/exit":
		m.snapshot()
		return []string{"Goodbye."}, true

	case "/save":
		return m.cmdSave(), false

	case "/load":
		return m.cmdLoad(), false

	case "/help":
		return m.cmdHelp(), false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

// snapshot persists the session if a store is configured.
func (m *Model) snapshot() {
	if m.store == nil {
		return
	}
	_ = m.store.Put(m.engine.Capture(m.playerID))
}

func (m *Model) cmdSave() []string {
	if m.store == nil {
		return []string{"No snapshot store configured."}
	}
	if err := m.store.Put(m.engine.Capture(m.playerID)); err != nil {
		return []string{fmt.Sprintf("Save failed: %v", err)}
	}
	return []string{"Snapshot saved."}
}

func (m *Model) cmdLoad() []string {
	if m.store == nil {
		return []string{"No snapshot store configured."}
	}
	snap, err := m.store.Latest(m.playerID)
	if err != nil {
		return []string{fmt.Sprintf("Load failed: %v", err)}
	}
	if snap == nil {
		return []string{"No snapshot found."}
	}
	m.engine.Restore(snap)
	output := []string{fmt.Sprintf("Snapshot loaded (clock %.1fs).", snap.Clock)}
	output = append(output, strings.Split(command.FormatStatus(m.engine.Status(m.playerID)), "\n")...)
	return output
}

func (m *Model) cmdHelp() []string {
	return []string{
		"System:",
		"  /save   — Snapshot the session",
		"  /load   — Restore the latest snapshot",
		"  /quit   — Save and exit",
		"  /help   — Show this help",
		"",
		"Type 'help' for in-world commands.",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	}
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}

// ============================================================================
// frege - Parser-Kombinatoren für Ausdrücke
// ============================================================================
//
// Package:     repl
// Description: Bubbletea model for the interactive expression REPL
// Author:      Mike Stoffels
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package repl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	mdwerror "github.com/msto63/frege/foundation/core/error"
	"github.com/msto63/frege/internal/frege/service"
	"github.com/msto63/frege/pkg/core/version"
)

// Backend answers parse and evaluate requests. Both the local service and
// the gRPC client implement it.
type Backend interface {
	Parse(ctx context.Context, req service.Request) (*service.Response, error)
	Evaluate(ctx context.Context, req service.Request) (*service.Response, error)
}

// HealthChecker is implemented by remote backends
type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

// Config holds REPL configuration
type Config struct {
	Backend         Backend
	Target          string // shown in the status bar, empty for the local engine
	Assoc           string
	RequireComplete bool
	Evaluate        bool
	Timeout         time.Duration
	MaxEntries      int
}

// DefaultConfig returns default configuration
func DefaultConfig(backend Backend) Config {
	return Config{
		Backend:    backend,
		Assoc:      "right",
		Evaluate:   true,
		Timeout:    5 * time.Second,
		MaxEntries: 200,
	}
}

// Model is the Bubbletea model of the REPL
type Model struct {
	// State
	width   int
	height  int
	ready   bool
	busy    bool
	online  bool
	entries []Entry
	recall  []string
	recallN int

	// Settings toggled at runtime
	assoc           string
	requireComplete bool
	evaluate        bool

	// Components
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	cfg Config
}

// New creates a new REPL model
func New(cfg Config) Model {
	if cfg.Assoc == "" {
		cfg.Assoc = "right"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 200
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorPrimary)

	in := textinput.New()
	in.Placeholder = "Ausdruck eingeben, z.B. 1 + 2 + 3"
	in.Prompt = "› "
	in.CharLimit = 4096
	in.Focus()

	return Model{
		input:           in,
		spinner:         sp,
		online:          cfg.Target == "",
		assoc:           cfg.Assoc,
		requireComplete: cfg.RequireComplete,
		evaluate:        cfg.Evaluate,
		cfg:             cfg,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick}
	if m.cfg.Target != "" {
		cmds = append(cmds, m.checkHealth)
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4 // Title panel
		footerHeight := 6 // Input panel + status bar + help
		viewportHeight := msg.Height - headerHeight - footerHeight
		if viewportHeight < 3 {
			viewportHeight = 3
		}

		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, viewportHeight)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = viewportHeight
		}
		m.input.Width = msg.Width - 8
		m.updateViewportContent()

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case resultMsg:
		m.busy = false
		m.addEntry(msg.entry)
		if mdwerror.HasCode(msg.entry.Err, mdwerror.CodeServiceUnavailable) {
			m.online = false
		}

	case healthMsg:
		m.online = msg.online
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyCtrlA:
		m.toggleAssoc()
		return m, nil

	case tea.KeyCtrlE:
		m.evaluate = !m.evaluate
		return m, nil

	case tea.KeyCtrlK:
		m.requireComplete = !m.requireComplete
		return m, nil

	case tea.KeyCtrlL:
		m.entries = nil
		m.updateViewportContent()
		return m, nil

	case tea.KeyUp:
		m.recallPrevious()
		return m, nil

	case tea.KeyDown:
		m.recallNext()
		return m, nil

	case tea.KeyPgUp:
		m.viewport.ViewUp()
		return m, nil

	case tea.KeyPgDown:
		m.viewport.ViewDown()
		return m, nil

	case tea.KeyEnter:
		return m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit sends the current input to the backend
func (m Model) submit() (tea.Model, tea.Cmd) {
	src := strings.TrimSpace(m.input.Value())
	if src == "" || m.busy {
		return m, nil
	}

	switch src {
	case ":q", ":quit":
		return m, tea.Quit
	case ":left", ":right":
		m.assoc = strings.TrimPrefix(src, ":")
		m.input.Reset()
		return m, nil
	}

	m.recall = append(m.recall, src)
	m.recallN = len(m.recall)
	m.input.Reset()
	m.busy = true
	return m, m.run(src)
}

// run builds the command that queries the backend
func (m Model) run(src string) tea.Cmd {
	req := service.Request{
		Source:          src,
		Assoc:           m.assoc,
		RequireComplete: m.requireComplete,
	}
	evaluate := m.evaluate
	backend := m.cfg.Backend
	timeout := m.cfg.Timeout

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var resp *service.Response
		var err error
		if evaluate {
			resp, err = backend.Evaluate(ctx, req)
		} else {
			resp, err = backend.Parse(ctx, req)
		}
		return resultMsg{entry: Entry{Source: src, Evaluate: evaluate, Response: resp, Err: err}}
	}
}

// checkHealth asks a remote backend whether it is serving
func (m Model) checkHealth() tea.Msg {
	hc, ok := m.cfg.Backend.(HealthChecker)
	if !ok {
		return healthMsg{online: true}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return healthMsg{online: hc.Healthy(ctx)}
}

func (m *Model) toggleAssoc() {
	if m.assoc == "left" {
		m.assoc = "right"
	} else {
		m.assoc = "left"
	}
}

func (m *Model) recallPrevious() {
	if m.recallN == 0 {
		return
	}
	m.recallN--
	m.input.SetValue(m.recall[m.recallN])
	m.input.CursorEnd()
}

func (m *Model) recallNext() {
	if m.recallN >= len(m.recall)-1 {
		m.recallN = len(m.recall)
		m.input.Reset()
		return
	}
	m.recallN++
	m.input.SetValue(m.recall[m.recallN])
	m.input.CursorEnd()
}

func (m *Model) addEntry(e Entry) {
	m.entries = append(m.entries, e)
	if len(m.entries) > m.cfg.MaxEntries {
		m.entries = m.entries[len(m.entries)-m.cfg.MaxEntries:]
	}
	m.updateViewportContent()
	m.viewport.GotoBottom()
}

// Entries returns the results shown so far
func (m Model) Entries() []Entry {
	return m.entries
}

// Assoc returns the associativity used for the next input
func (m Model) Assoc() string {
	return m.assoc
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Lade REPL..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(ResultPanelStyle.Width(m.width - 2).Render(m.viewport.View()))
	b.WriteString("\n")
	b.WriteString(InputPanelStyle.Width(m.width - 2).Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(m.renderHelpBar())
	return b.String()
}

func (m Model) renderHeader() string {
	mode := fmt.Sprintf("assoc=%s", m.assoc)
	if m.evaluate {
		mode += "  eval"
	} else {
		mode += "  parse"
	}
	if m.requireComplete {
		mode += "  vollständig"
	}

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		LogoStyle.Render(Logo),
		strings.Repeat(" ", 3),
		ModeStyle.Render(mode),
	)
	return TitlePanelStyle.Width(m.width - 4).Render(header)
}

func (m Model) renderStatusBar() string {
	left := HelpDescStyle.Render(fmt.Sprintf("Einträge: %d", len(m.entries)))
	center := HelpDescStyle.Render("v" + version.REPL)

	var right string
	switch {
	case m.busy:
		right = m.spinner.View() + " Werte aus..."
	case m.cfg.Target == "":
		right = ValueStyle.Render("lokal")
	case m.online:
		right = ValueStyle.Render(m.cfg.Target)
	default:
		right = ErrorStyle.Render(m.cfg.Target + " offline")
	}

	space := m.width - lipgloss.Width(left) - lipgloss.Width(center) - lipgloss.Width(right) - 4
	if space < 2 {
		space = 2
	}
	content := left + strings.Repeat(" ", space/2) + center + strings.Repeat(" ", space-space/2) + right
	return StatusBarStyle.Width(m.width - 2).Render(content)
}

func (m Model) renderHelpBar() string {
	items := []string{
		RenderKeyHint("Enter", "Auswerten"),
		RenderKeyHint("Ctrl+A", "Assoziativität"),
		RenderKeyHint("Ctrl+E", "Parse/Eval"),
		RenderKeyHint("Ctrl+K", "Vollständig"),
		RenderKeyHint("Ctrl+L", "Leeren"),
		RenderKeyHint("Ctrl+C", "Beenden"),
	}
	return HelpStyle.Render(strings.Join(items, "  "))
}

// updateViewportContent renders all entries into the viewport
func (m *Model) updateViewportContent() {
	var content strings.Builder
	for _, e := range m.entries {
		content.WriteString(RenderEntry(e))
		content.WriteString("\n")
	}
	m.viewport.SetContent(content.String())
}

// RenderEntry renders one result block
func RenderEntry(e Entry) string {
	var lines []string
	lines = append(lines, PromptStyle.Render("› ")+SourceStyle.Render(e.Source))

	if e.Err != nil {
		msg := e.Err.Error()
		if mdwErr, ok := mdwerror.As(e.Err); ok {
			msg = fmt.Sprintf("%s: %s", mdwErr.Code(), mdwErr.Message())
		}
		lines = append(lines, RenderLine("Fehler", ErrorStyle.Render(msg)))
		return strings.Join(lines, "\n") + "\n"
	}

	resp := e.Response
	lines = append(lines, RenderLine("Tokens", TokenStyle.Render(strings.Join(resp.Tokens, " "))))

	if resp.AST != nil {
		lines = append(lines,
			RenderLine("AST", ASTStyle.Render(resp.AST.String())),
			RenderLine("Infix", ASTStyle.Render(resp.Printed)),
		)
	}
	if !resp.Success {
		lines = append(lines, RenderLine("Fehlschlag", FailureStyle.Render(fmt.Sprintf("%s (%s)", resp.Message, resp.Reason))))
	}
	if resp.Value != nil {
		lines = append(lines, RenderLine("Wert", ValueStyle.Render(fmt.Sprintf("%d", *resp.Value))))
	}
	if len(resp.Remaining) > 0 {
		lines = append(lines, RenderLine("Rest", TokenStyle.Render(strings.Join(resp.Remaining, " "))))
	}
	if resp.Cached {
		lines = append(lines, CachedStyle.Render("(aus dem Cache)"))
	}
	return strings.Join(lines, "\n") + "\n"
}

// Run starts the REPL
func Run(cfg Config) error {
	p := tea.NewProgram(New(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

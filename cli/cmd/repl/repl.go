package repl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/shlex"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/akore/compiler"
	"github.com/ardnew/akore/log"
)

// editDoneMsg is sent when an edited session compiled successfully.
type editDoneMsg struct{ source, output string }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a compile
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the editor could not be run.
type editErrorMsg struct{ err error }

const (
	sourcePrompt = "➜ "
	ctrlPrompt   = " :"
)

func helpMessage() string {
	return `
: Commands (press Esc to toggle mode):

  help              Print this cruft
  list              List instructions and their status
  enable NAME...    Enable instructions by name or id
  disable NAME...   Disable instructions by name or id
  source            Print the session source
  edit              Edit the session source in external $EDITOR
  reset             Clear the session source
  clear             Clear screen
  quit              Exit REPL

Usage:
  Type source text to compile it; compiled lines are kept as session source
  Type $ to list instructions, completions appear as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to toggle between source and command modes
  Use Up/Down arrows for history navigation (mode switches automatically)
  Use Shift+Up/Shift+Down for history navigation within current mode only
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// inputMode represents the current input mode.
type inputMode int

const (
	modeSource inputMode = iota
	modeCtrl
)

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	ctrlPromptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

func formatCommand(input string) string {
	return promptStyle.Render(sourcePrompt) + inputStyle.Render(input)
}

func formatCtrlCommand(input string) string {
	return ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(input)
}

// bare leaves compiled statements unwrapped.
func bare(body string) string { return body }

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	registry     *compiler.Registry
	compiler     *compiler.Compiler
	diagnostics  *bytes.Buffer // records of the last compilation
	logger       log.Logger
	history      *History
	historyIdx   int
	session      []string      // lines compiled so far
	matches      fuzzy.Matches // current fuzzy match results
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
	mode         inputMode
	sourceText   string
	sourceCursor int
	ctrlText     string
	ctrlCursor   int
}

// Run starts an interactive session compiling source with the instructions
// in reg. The history is kept in cacheDir, and opts configure the session
// compiler.
func Run(
	ctx context.Context,
	reg *compiler.Registry,
	cacheDir string,
	logger log.Logger,
	opts ...compiler.Option,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if reg == nil {
		return ErrNoRegistry
	}

	logger.TraceContext(ctx, "repl start",
		slog.String("cache_dir", cacheDir),
		slog.Int("instruction_count", reg.Len()),
	)

	history := NewHistory(filepath.Join(cacheDir, baseHistory))
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "history not loaded", slog.Any("error", err))
	}

	logger.TraceContext(ctx, "repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	m := newModel(ctx, reg, history, logger, opts...)

	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	reg *compiler.Registry,
	history *History,
	logger log.Logger,
	opts ...compiler.Option,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(sourcePrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	// Compile failures are shown beneath the output rather than logged over
	// the terminal.
	diagnostics := new(bytes.Buffer)
	diagLogger := log.Make(diagnostics,
		log.WithFormat(log.FormatText),
		log.WithPretty(false),
		log.WithTimeLayout(""),
		log.WithLevel(log.LevelWarn),
	)

	c := compiler.New(append(slices.Clip(opts),
		compiler.WithRegistry(reg),
		compiler.WithLogger(diagLogger),
		compiler.WithHeader(""),
		compiler.WithWrapper(bare),
	)...)

	return model{
		ctxFunc:     func() context.Context { return ctx },
		input:       ti,
		registry:    reg,
		compiler:    c,
		diagnostics: diagnostics,
		logger:      logger,
		history:     history,
		historyIdx:  history.Len(),
		width:       defaultWidth,
		mode:        modeSource,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(sourcePrompt) - 2

		return m, nil

	case editDoneMsg:
		m.session = splitLines(msg.source)
		m.logger.TraceContext(m.ctxFunc(), "repl edit complete",
			slog.Int("line_count", len(m.session)),
		)

		return m, tea.Sequence(
			tea.Println(hintStyle.Render("session source updated")),
			tea.Println(resultStyle.Render(strings.TrimSpace(msg.output))),
		)

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("edit cancelled"))

	case editDeclinedMsg:
		return m, tea.Println(hintStyle.Render("edit discarded"))

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("error: " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()
	call := detectInvocation(input, m.input.Position())

	switch {
	case m.historyIdx < m.history.Len():
		fmt.Fprintf(&b, "%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len())

	case strings.TrimSpace(input) == "":
		hint := "Type source text or press Esc for commands"
		if m.mode == modeCtrl {
			hint = "Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)"
		}

		b.WriteString(hintStyle.Render(hint))

	case len(m.matches) > 0:
		b.WriteString(renderCandidateBar(
			m.matches, m.suggIdx, m.tabActive, m.width, m.disabled,
		))

	case call.inCall && m.mode == modeSource:
		if params, ok := signature(m.registry, call.name); ok {
			b.WriteString(renderSignatureHint(call.name, params, call.argIndex))
		}
	}

	b.WriteString("\n")

	return b.String()
}

// disabled reports whether the first instruction called name is disabled.
func (m model) disabled(name string) bool {
	status, ok := m.registry.Status(name)

	return ok && status == compiler.Disabled
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctxFunc(), "repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}

		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.historyMove(-1, false), nil

	case tea.KeyDown:
		return m.historyMove(1, false), nil

	case tea.KeyShiftUp:
		return m.historyMove(-1, true), nil

	case tea.KeyShiftDown:
		return m.historyMove(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		if m.mode == modeSource {
			return m.switchToMode(modeCtrl), nil
		}

		return m.switchToMode(modeSource), nil

	case tea.KeyRunes, tea.KeySpace:
		// Space ends tab-cycling and keeps the candidate.
		if m.tabActive && msg.String() == " " {
			m.tabActive = false
		}

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// Any other key edits or moves without auto-confirming a candidate.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

// cycle moves the tab selection by step, wrapping around. A single candidate
// is completed and confirmed immediately.
func (m model) cycle(step int) model {
	n := len(m.matches)
	if n == 0 {
		return m
	}

	if n == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + n) % n
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		m.suggIdx = 0
		if step < 0 {
			m.suggIdx = n - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

// replaceCurrentWord replaces the current word in the input with replacement
// and moves the cursor after it.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	cursor := m.wordStart + len(replacement)

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(cursor)

	m.wordEnd = cursor
}

// refreshMatches recomputes the matches for the current input. When
// autoConfirm is set and the typed word already equals the sole candidate,
// the completion is confirmed. Deletions and cursor movement pass false so
// that editing never completes unexpectedly.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.wordStart, m.wordEnd = m.computeMatches()

	if !m.tabActive {
		m.suggIdx = -1
	}

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	if candidate := m.matches[0].Str; m.input.Value()[m.wordStart:m.wordEnd] == candidate {
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.sourceText, m.sourceCursor = "", 0
	m.ctrlText, m.ctrlCursor = "", 0
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input, m.mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "history not saved", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		m.logger.TraceContext(m.ctxFunc(), "repl command", slog.String("input", input))

		return m.executeCommand(input)
	}

	m.logger.TraceContext(m.ctxFunc(), "repl compile", slog.String("input", input))

	cmds := []tea.Cmd{tea.Println(formatCommand(input))}

	output, diagnostics, err := m.evaluate(input)
	if err == nil {
		m.session = append(m.session, input)
	}

	if output = strings.TrimSpace(output); output != "" {
		cmds = append(cmds, tea.Println(resultStyle.Render(output)))
	}

	for _, line := range diagnostics {
		cmds = append(cmds, tea.Println(hintStyle.Render(line)))
	}

	if err != nil {
		cmds = append(cmds, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	return m, tea.Sequence(cmds...)
}

// evaluate compiles source and returns the output along with the records
// logged while compiling it.
func (m model) evaluate(source string) (string, []string, error) {
	m.diagnostics.Reset()

	output, err := m.compiler.CompileString(m.ctxFunc(), source)

	return output, splitLines(m.diagnostics.String()), err
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	echo := tea.Println(formatCtrlCommand(input))

	parts, err := shlex.Split(input)
	if err != nil {
		return m, tea.Sequence(echo, tea.Println(errorStyle.Render("error: "+err.Error())))
	}

	if len(parts) == 0 {
		return m, nil
	}

	cmd, args := parts[0], parts[1:]

	m.logger.TraceContext(m.ctxFunc(), "repl exec command",
		slog.String("command", cmd),
		slog.Any("args", args),
	)

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage()))

	case "l", "list":
		return m, tea.Sequence(echo, tea.Println(m.listInstructions()))

	case "enable", "disable":
		return m, tea.Sequence(echo, tea.Println(m.setStatus(cmd, args)))

	case "s", "source":
		return m, tea.Sequence(echo, tea.Println(m.sessionSource()))

	case "r", "reset":
		m.session = nil

		return m, tea.Sequence(echo, tea.Println(hintStyle.Render("session source cleared")))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())

	default:
		return m, tea.Sequence(echo, tea.Println(
			errorStyle.Render("Unknown command: "+cmd+" (try 'help')"),
		))
	}
}

// setStatus enables or disables the named instructions and describes the
// result.
func (m model) setStatus(cmd string, names []string) string {
	if len(names) == 0 {
		return errorStyle.Render("usage: " + cmd + " NAME...")
	}

	var n int
	if cmd == "enable" {
		n = m.registry.Enable(names...)
	} else {
		n = m.registry.Disable(names...)
	}

	msg := fmt.Sprintf("%sd %d of %d", cmd, n, len(names))
	if n < len(names) {
		return errorStyle.Render(msg)
	}

	return resultStyle.Render(msg)
}

func (m model) listInstructions() string {
	var b strings.Builder

	for _, inst := range m.registry.Instructions() {
		status, _ := m.registry.Status(inst.ID())

		desc := inst.ID()
		if mi, ok := inst.(*compiler.ManifestInstruction); ok && mi.Manifest().Description != "" {
			desc += " " + mi.Manifest().Description
		}

		fmt.Fprintf(&b, "  %-9s %-10s %s\n", status, inst.Name(), hintStyle.Render(desc))
	}

	return b.String()
}

func (m model) sessionSource() string {
	if len(m.session) == 0 {
		return hintStyle.Render("(empty)")
	}

	return strings.Join(m.session, "\n")
}

func (m model) edit() tea.Cmd {
	source := ""
	if len(m.session) > 0 {
		source = strings.Join(m.session, "\n") + "\n"
	}

	cmd := &editCommand{
		source:   source,
		compiler: m.compiler,
		ctxFunc:  m.ctxFunc,
		logger:   m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return editDeclinedMsg{}

		case err != nil:
			return editErrorMsg{err: err}

		case cmd.edited == "":
			return editCancelledMsg{}

		default:
			return editDoneMsg{source: cmd.edited, output: cmd.output}
		}
	})
}

// historyMove steps through the history by step. With inMode set only
// entries of the current mode are visited; otherwise the mode follows the
// entry. Moving past the newest entry clears the input.
func (m model) historyMove(step int, inMode bool) model {
	for i := m.historyIdx + step; i >= 0 && i < m.history.Len(); i += step {
		entry, err := m.history.Entry(i)
		if err != nil || (inMode && entry.Mode != m.mode) {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchToMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		refreshMatches(&m, false)

		return m
	}

	if step > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

// switchToMode switches to mode, keeping the input of each mode.
func (m model) switchToMode(mode inputMode) model {
	if m.mode == modeSource {
		m.sourceText, m.sourceCursor = m.input.Value(), m.input.Position()
	} else {
		m.ctrlText, m.ctrlCursor = m.input.Value(), m.input.Position()
	}

	m.mode = mode

	if mode == modeSource {
		m.input.Prompt = promptStyle.Render(sourcePrompt)
		m.input.SetValue(m.sourceText)
		m.input.SetCursor(m.sourceCursor)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
		m.input.SetValue(m.ctrlText)
		m.input.SetCursor(m.ctrlCursor)
	}

	m.tabActive = false
	refreshMatches(&m, false)

	return m
}

// splitLines returns the non-blank lines of s.
func splitLines(s string) []string {
	var lines []string

	for line := range strings.SplitSeq(s, "\n") {
		if line = strings.TrimRight(line, "\r"); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	return lines
}

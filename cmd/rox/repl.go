package main

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/roxlang/roxscript/rox"
)

type replTheme struct {
	prompt  lipgloss.Style
	result  lipgloss.Style
	failure lipgloss.Style
	dim     lipgloss.Style
	title   lipgloss.Style
	keyName lipgloss.Style
	keyDesc lipgloss.Style
	panel   lipgloss.Style
	heading lipgloss.Style
}

func newREPLTheme() replTheme {
	const (
		blue   = lipgloss.Color("#60A5FA")
		green  = lipgloss.Color("#34D399")
		red    = lipgloss.Color("#F87171")
		gray   = lipgloss.Color("#9CA3AF")
		yellow = lipgloss.Color("#FBBF24")
	)
	return replTheme{
		prompt:  lipgloss.NewStyle().Foreground(blue).Bold(true),
		result:  lipgloss.NewStyle().Foreground(green),
		failure: lipgloss.NewStyle().Foreground(red),
		dim:     lipgloss.NewStyle().Foreground(gray),
		title:   lipgloss.NewStyle().Foreground(blue).Bold(true).Padding(0, 1),
		keyName: lipgloss.NewStyle().Foreground(yellow),
		keyDesc: lipgloss.NewStyle().Foreground(gray),
		panel:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(blue).Padding(0, 1),
		heading: lipgloss.NewStyle().Foreground(blue).Bold(true),
	}
}

var theme = newREPLTheme()

// transcriptLine is one input and what it produced. Completion listings
// have no input.
type transcriptLine struct {
	input  string
	output string
	isErr  bool
}

type replModel struct {
	textInput   textinput.Model
	engine      *rox.Engine
	session     *rox.Session
	printed     *bytes.Buffer
	history     []transcriptLine
	cmdHistory  []string
	historyIdx  int
	width       int
	height      int
	showHelp    bool
	showVars    bool
	quitting    bool
	initialized bool
}

type replKeys struct {
	Quit       key.Binding
	Clear      key.Binding
	ToggleVars key.Binding
	ToggleHelp key.Binding
	Older      key.Binding
	Newer      key.Binding
	Complete   key.Binding
	Submit     key.Binding
}

var keys = replKeys{
	Quit:       key.NewBinding(key.WithKeys("ctrl+c", "ctrl+d"), key.WithHelp("ctrl+c", "quit")),
	Clear:      key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
	ToggleVars: key.NewBinding(key.WithKeys("ctrl+v"), key.WithHelp("ctrl+v", "vars")),
	ToggleHelp: key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "help")),
	Older:      key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "older input")),
	Newer:      key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "newer input")),
	Complete:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "complete")),
	Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "evaluate")),
}

// footerKeys are the bindings advertised under the prompt.
func (k replKeys) footerKeys() []key.Binding {
	return []key.Binding{k.ToggleHelp, k.ToggleVars, k.Clear, k.Quit}
}

func newREPLModel() replModel {
	input := textinput.New()
	input.Prompt = "rox> "
	input.PromptStyle = theme.prompt
	input.Placeholder = "statement or expression"
	input.CharLimit = 1000
	input.Width = 72
	input.Focus()

	engine := rox.MustNewEngine(rox.Config{})
	printed := new(bytes.Buffer)
	return replModel{
		textInput:  input,
		engine:     engine,
		session:    engine.NewSession(rox.RunOptions{Stdout: printed}),
		printed:    printed,
		historyIdx: -1,
	}
}

func (m replModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.textInput.Width = max(msg.Width-10, 10)
		m.initialized = true
		return m, nil
	case tea.KeyMsg:
		if next, cmd, handled := m.handleKey(msg); handled {
			return next, cmd
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m replModel) handleKey(msg tea.KeyMsg) (replModel, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit, true
	case key.Matches(msg, keys.Clear):
		m.history = nil
	case key.Matches(msg, keys.ToggleVars):
		m.showVars = !m.showVars
	case key.Matches(msg, keys.ToggleHelp):
		m.showHelp = !m.showHelp
	case key.Matches(msg, keys.Older):
		m = m.recall(-1)
	case key.Matches(msg, keys.Newer):
		m = m.recall(+1)
	case key.Matches(msg, keys.Complete):
		m = m.handleAutocomplete()
	case key.Matches(msg, keys.Submit):
		return m.submit()
	default:
		return m, nil, false
	}
	return m, nil, true
}

func (m replModel) submit() (replModel, tea.Cmd, bool) {
	input := strings.TrimSpace(m.textInput.Value())
	if input == "" {
		return m, nil, true
	}
	m.textInput.SetValue("")
	m.historyIdx = -1

	if strings.HasPrefix(input, ":") {
		next, cmd := m.handleCommand(input)
		return next, cmd, true
	}

	output, isErr := m.evaluate(input)
	m.history = append(m.history, transcriptLine{input: input, output: output, isErr: isErr})
	m.cmdHistory = append(m.cmdHistory, input)
	return m, nil, true
}

// recall moves through earlier inputs; dir is -1 for older and +1 for newer.
// Moving newer than the latest input empties the prompt.
func (m replModel) recall(dir int) replModel {
	if len(m.cmdHistory) == 0 {
		return m
	}
	switch {
	case dir < 0 && m.historyIdx == -1:
		m.historyIdx = len(m.cmdHistory) - 1
	case dir < 0:
		m.historyIdx = max(m.historyIdx-1, 0)
	case m.historyIdx == -1:
		return m
	case m.historyIdx == len(m.cmdHistory)-1:
		m.historyIdx = -1
		m.textInput.SetValue("")
		return m
	default:
		m.historyIdx++
	}
	m.textInput.SetValue(m.cmdHistory[m.historyIdx])
	m.textInput.CursorEnd()
	return m
}

func (m replModel) note(input, output string, isErr bool) replModel {
	m.history = append(m.history, transcriptLine{input: input, output: output, isErr: isErr})
	return m
}

func (m replModel) handleCommand(input string) (replModel, tea.Cmd) {
	fields := strings.Fields(input)
	switch name, args := fields[0], fields[1:]; name {
	case ":help", ":h":
		m.showHelp = !m.showHelp
	case ":vars", ":v":
		m.showVars = !m.showVars
	case ":clear", ":c":
		m.history = nil
	case ":reset", ":r":
		m.session.Reset()
		m = m.note(input, "Environment reset", false)
	case ":inspect", ":i":
		if len(args) != 1 {
			return m.note(input, "usage: :inspect <name>", true), nil
		}
		val, ok := m.session.Lookup(args[0])
		if !ok {
			return m.note(input, fmt.Sprintf("Undefined variable '%s'.", args[0]), true), nil
		}
		m = m.note(input, describeValue(val), false)
	case ":quit", ":q":
		m.quitting = true
		return m, tea.Quit
	default:
		m = m.note(input, "unknown command "+name+" (try :help)", true)
	}
	return m, nil
}

func (m replModel) completionCandidates() []string {
	candidates := rox.Keywords()
	candidates = append(candidates, m.engine.BuiltinNames()...)
	candidates = append(candidates, m.session.Names()...)
	slices.Sort(candidates)
	return slices.Compact(candidates)
}

// handleAutocomplete completes the identifier before the cursor. Several
// matches are listed in the transcript instead.
func (m replModel) handleAutocomplete() replModel {
	input := m.textInput.Value()
	start := len(input)
	for start > 0 && isIdentChar(rune(input[start-1])) {
		start--
	}
	fragment := input[start:]
	if fragment == "" {
		return m
	}

	var matches []string
	for _, candidate := range m.completionCandidates() {
		if strings.HasPrefix(candidate, fragment) {
			matches = append(matches, candidate)
		}
	}
	switch len(matches) {
	case 0:
	case 1:
		m.textInput.SetValue(input[:start] + matches[0])
		m.textInput.CursorEnd()
	default:
		m = m.note("", "Completions: "+strings.Join(matches, ", "), false)
	}
	return m
}

// evaluate runs one line in the session. A missing trailing semicolon is
// supplied so bare expressions can be typed directly.
func (m replModel) evaluate(input string) (string, bool) {
	source := input
	if !strings.HasSuffix(source, ";") && !strings.HasSuffix(source, "}") {
		source += ";"
	}

	m.printed.Reset()
	result, err := m.session.Eval(context.Background(), source)
	printed := strings.TrimSuffix(m.printed.String(), "\n")
	if err != nil {
		return joinOutput(printed, err.Error()), true
	}
	if printed != "" && result.IsNil() {
		return printed, false
	}
	return joinOutput(printed, result.String()), false
}

func joinOutput(printed, tail string) string {
	if printed == "" {
		return tail
	}
	return printed + "\n" + tail
}

// describeValue renders the :inspect view of a value: class chains and
// methods for classes, fields for instances.
func describeValue(v rox.Value) string {
	var b strings.Builder
	switch v.Kind() {
	case rox.KindClass:
		class := v.Class()
		fmt.Fprintf(&b, "class %s", class.Name)
		if class.Superclass != nil {
			fmt.Fprintf(&b, " < %s", class.Superclass.Name)
		}
		fmt.Fprintf(&b, "\n  arity: %d", class.Arity())
		fmt.Fprintf(&b, "\n  methods: %s", listOrNone(class.Methods()))
		if ancestors := class.Ancestors(); len(ancestors) > 0 {
			names := make([]string, len(ancestors))
			for i, ancestor := range ancestors {
				names[i] = ancestor.Name
			}
			fmt.Fprintf(&b, "\n  ancestors: %s", strings.Join(names, " < "))
		}
	case rox.KindInstance:
		inst := v.Instance()
		fmt.Fprintf(&b, "%s instance", inst.Class().Name)
		fields := inst.Fields()
		if len(fields) == 0 {
			b.WriteString("\n  fields: none")
		}
		for _, name := range fields {
			val, _ := inst.Field(name)
			fmt.Fprintf(&b, "\n  %s = %s", name, val.String())
		}
	case rox.KindFunction:
		fn := v.Function()
		fmt.Fprintf(&b, "%s arity %d", fn.String(), fn.Arity())
		if recv, ok := fn.Receiver(); ok {
			fmt.Fprintf(&b, "\n  bound to %s", recv.String())
		}
		if fn.IsInitializer {
			b.WriteString("\n  initializer")
		}
	case rox.KindBuiltin:
		fmt.Fprintf(&b, "%s arity %d", v.String(), v.Builtin().Arity())
	default:
		fmt.Fprintf(&b, "%s (%s)", v.String(), v.Kind())
	}
	return b.String()
}

func listOrNone(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

func (m replModel) View() string {
	if !m.initialized {
		return "Loading..."
	}
	if m.quitting {
		return theme.dim.Render("bye\n")
	}

	var panels []string
	names := m.session.Names()
	if m.showVars {
		panels = append(panels, renderVarsPanel(m.session, names))
	}
	if m.showHelp {
		panels = append(panels, renderHelpPanel())
	}
	panelHeight := 0
	for _, panel := range panels {
		panelHeight += lipgloss.Height(panel)
	}

	var b strings.Builder
	b.WriteString(theme.title.Render("rox") + theme.dim.Render(" interactive session") + "\n\n")

	// Oldest transcript lines scroll off first; each line takes three rows.
	room := max((m.height-panelHeight-6)/3, 1)
	shown := m.history[max(len(m.history)-room, 0):]
	for _, line := range shown {
		if line.input != "" {
			b.WriteString(theme.dim.Render("› ") + line.input + "\n")
		}
		if line.isErr {
			b.WriteString(theme.failure.Render("error: "+line.output) + "\n\n")
		} else {
			b.WriteString(theme.result.Render(line.output) + "\n\n")
		}
	}

	for _, panel := range panels {
		b.WriteString(panel + "\n")
	}
	b.WriteString(m.textInput.View() + "\n\n")

	hints := make([]string, 0, len(keys.footerKeys()))
	for _, binding := range keys.footerKeys() {
		help := binding.Help()
		hints = append(hints, theme.keyName.Render(help.Key)+" "+theme.keyDesc.Render(help.Desc))
	}
	b.WriteString(strings.Join(hints, "  "))
	return b.String()
}

func renderVarsPanel(session *rox.Session, names []string) string {
	if len(names) == 0 {
		return theme.panel.Render(theme.dim.Render("nothing defined yet"))
	}
	rows := []string{theme.heading.Render("Globals")}
	for _, name := range names {
		val, _ := session.Lookup(name)
		rows = append(rows, fmt.Sprintf("%s %s = %s", theme.keyName.Render(name), theme.dim.Render("("+val.Kind().String()+")"), val.String()))
	}
	return theme.panel.Render(strings.Join(rows, "\n"))
}

var replCommands = [][2]string{
	{":help", "toggle this panel"},
	{":vars", "toggle the globals panel"},
	{":inspect x", "describe a class, instance or function"},
	{":clear", "clear the transcript"},
	{":reset", "drop every definition"},
	{":quit", "leave"},
}

func renderHelpPanel() string {
	rows := []string{theme.heading.Render("Commands")}
	for _, cmd := range replCommands {
		rows = append(rows, fmt.Sprintf("%s %s", theme.keyName.Render(fmt.Sprintf("%-10s", cmd[0])), theme.keyDesc.Render(cmd[1])))
	}
	rows = append(rows, "", theme.dim.Render("↑/↓ walk earlier input, tab completes names"))
	return theme.panel.Render(strings.Join(rows, "\n"))
}

func runREPL() error {
	_, err := tea.NewProgram(newREPLModel(), tea.WithAltScreen()).Run()
	return err
}

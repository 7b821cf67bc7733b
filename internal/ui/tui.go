package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	scouterrors "github.com/Aman-CERP/scout/internal/errors"
	"github.com/Aman-CERP/scout/internal/orchestrator"
	"github.com/Aman-CERP/scout/internal/searchapi"
)

// Controller is the part of the orchestrator the app drives.
type Controller interface {
	SetQuery(text string)
	SetFilters(f searchapi.Filters)
	Submit()
	SubmitQuery(q string)
	ClearHistory()
	State() orchestrator.State
}

// StateMsg carries an orchestrator snapshot into the program.
type StateMsg orchestrator.State

type focusArea int

const (
	focusInput focusArea = iota
	focusHistory
	focusFilters
)

// App is the interactive search screen.
type App struct {
	ctrl   Controller
	styles Styles
	debug  bool
	keys   keyMap

	help    help.Model
	input   textinput.Model
	spinner spinner.Model
	results viewport.Model

	state       orchestrator.State
	edited      bool
	editSeq     uint64
	focus       focusArea
	showFilters bool
	filterRow   int
	historyIdx  int

	width    int
	height   int
	quitting bool
}

// NewApp creates the app over ctrl, starting from its current state.
func NewApp(ctrl Controller, cfg Config) *App {
	ti := textinput.New()
	ti.Placeholder = "Search startups by name, sector, description, or location..."
	ti.Prompt = "› "
	ti.CharLimit = 256
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(ColorLime))

	a := &App{
		ctrl:    ctrl,
		styles:  GetStyles(cfg.NoColor),
		debug:   cfg.Debug,
		keys:    defaultKeyMap(),
		help:    help.New(),
		input:   ti,
		spinner: s,
		results: viewport.New(80, 10),
		state:   ctrl.State(),
		width:   80,
		height:  24,
	}
	a.input.SetValue(a.state.Query)
	a.layout()
	return a
}

// Run shows the app on cfg.Output until the user quits or ctx ends.
// Snapshots reach the program through orch.Subscribe; filter options and a
// health check load in the background.
func Run(ctx context.Context, orch *orchestrator.Orchestrator, cfg Config) error {
	app := NewApp(orch, cfg)

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if f, ok := cfg.Output.(*os.File); ok {
		opts = append(opts, tea.WithOutput(f))
	}
	p := tea.NewProgram(app, opts...)

	unsubscribe := orch.Subscribe(func(s orchestrator.State) {
		p.Send(StateMsg(s))
	})
	defer unsubscribe()

	go func() {
		// Failures land in the state as the connection error.
		_ = orch.Start(ctx)
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.spinner.Tick)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case StateMsg:
		prevSeq := a.state.Seq
		next := orchestrator.State(msg)
		// Query and filters edited here stay until a later dispatch reflects them.
		if a.edited && next.Seq <= a.editSeq {
			next.Query = a.state.Query
			next.Filters = a.state.Filters
		} else {
			a.edited = false
		}
		a.state = next
		if a.historyIdx >= len(a.state.History) {
			a.historyIdx = max(len(a.state.History)-1, 0)
		}
		if a.focus == focusHistory && len(a.state.History) == 0 {
			a.focusOn(focusInput)
		}
		a.layout()
		if a.state.Seq != prevSeq {
			a.results.GotoTop()
		}
		return a, nil

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.layout()
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, a.keys.Quit):
			a.quitting = true
			return a, tea.Quit
		case key.Matches(msg, a.keys.NextFocus):
			a.cycleFocus()
			a.layout()
			return a, nil
		case key.Matches(msg, a.keys.ToggleFilters):
			a.toggleFilters()
			a.layout()
			return a, nil
		}

		switch a.focus {
		case focusHistory:
			a.updateHistory(msg)
		case focusFilters:
			a.updateFilters(msg)
		default:
			if quit := a.updateInput(msg, &cmds); quit {
				return a, tea.Quit
			}
		}
		a.layout()
		return a, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

func (a *App) updateInput(msg tea.KeyMsg, cmds *[]tea.Cmd) (quit bool) {
	switch {
	case key.Matches(msg, a.keys.Back):
		a.quitting = true
		return true
	case key.Matches(msg, a.keys.Submit):
		a.ctrl.Submit()
		return false
	case key.Matches(msg, a.keys.Up, a.keys.Down, a.keys.PageUp, a.keys.PageDown):
		var cmd tea.Cmd
		a.results, cmd = a.results.Update(msg)
		*cmds = append(*cmds, cmd)
		return false
	case key.Matches(msg, a.keys.Clear):
		if a.input.Value() != "" {
			a.input.SetValue("")
			a.setQuery("")
		}
		return false
	}

	before := a.input.Value()
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	*cmds = append(*cmds, cmd)
	if after := a.input.Value(); after != before {
		a.setQuery(after)
	}
	return false
}

func (a *App) setQuery(q string) {
	a.state.Query = q
	a.ctrl.SetQuery(q)
	a.markEdited()
}

// markEdited notes the latest sequence number the controller had once a
// local edit reached it; older snapshots cannot carry that edit.
func (a *App) markEdited() {
	a.edited = true
	a.editSeq = a.ctrl.State().Seq
}

func (a *App) updateHistory(msg tea.KeyMsg) {
	n := len(a.state.History)
	switch {
	case key.Matches(msg, a.keys.Back):
		a.focusOn(focusInput)
	case key.Matches(msg, a.keys.Left):
		if a.historyIdx > 0 {
			a.historyIdx--
		}
	case key.Matches(msg, a.keys.Right):
		if a.historyIdx < n-1 {
			a.historyIdx++
		}
	case key.Matches(msg, a.keys.Submit):
		if a.historyIdx < n {
			q := a.state.History[a.historyIdx]
			a.input.SetValue(q)
			a.input.CursorEnd()
			a.state.Query = q
			a.ctrl.SubmitQuery(q)
			a.markEdited()
			a.focusOn(focusInput)
		}
	case key.Matches(msg, a.keys.Clear):
		a.ctrl.ClearHistory()
		a.historyIdx = 0
		a.focusOn(focusInput)
	}
}

func (a *App) updateFilters(msg tea.KeyMsg) {
	groups := filterGroups(a.state.FilterOptions)
	switch {
	case key.Matches(msg, a.keys.Back):
		a.focusOn(focusInput)
	case key.Matches(msg, a.keys.Up):
		if a.filterRow > 0 {
			a.filterRow--
		}
	case key.Matches(msg, a.keys.Down):
		if a.filterRow < len(groups)-1 {
			a.filterRow++
		}
	case key.Matches(msg, a.keys.Left):
		a.cycleFilter(groups[a.filterRow], -1)
	case key.Matches(msg, a.keys.Right):
		a.cycleFilter(groups[a.filterRow], 1)
	case key.Matches(msg, a.keys.Clear):
		if !a.state.Filters.IsEmpty() {
			a.state.Filters = searchapi.Filters{}
			a.ctrl.SetFilters(a.state.Filters)
			a.markEdited()
		}
	}
}

// cycleFilter moves one filter through "All ..." and its values.
func (a *App) cycleFilter(g filterGroup, delta int) {
	choices := append([]string{""}, g.values...)
	current := a.state.Filters.Map()[g.param]

	idx := 0
	for i, c := range choices {
		if c == current {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(choices)) % len(choices)

	f := a.state.Filters
	switch g.param {
	case searchapi.ParamSector:
		f.Sector = choices[idx]
	case searchapi.ParamFundingStage:
		f.FundingStage = choices[idx]
	case searchapi.ParamLocation:
		f.Location = choices[idx]
	}
	if f == a.state.Filters {
		return
	}
	a.state.Filters = f
	a.ctrl.SetFilters(f)
	a.markEdited()
}

func (a *App) cycleFocus() {
	order := []focusArea{focusInput}
	if len(a.state.History) > 0 {
		order = append(order, focusHistory)
	}
	if a.showFilters {
		order = append(order, focusFilters)
	}
	for i, f := range order {
		if f == a.focus {
			a.focusOn(order[(i+1)%len(order)])
			return
		}
	}
	a.focusOn(focusInput)
}

func (a *App) toggleFilters() {
	a.showFilters = !a.showFilters
	if a.showFilters {
		a.focusOn(focusFilters)
		return
	}
	if a.focus == focusFilters {
		a.focusOn(focusInput)
	}
}

func (a *App) focusOn(f focusArea) {
	a.focus = f
	if f == focusInput {
		a.input.Focus()
		return
	}
	a.input.Blur()
}

// layout sizes the results viewport to whatever the header and footer
// leave, and refreshes its content.
func (a *App) layout() {
	a.results.Width = a.width
	used := lipgloss.Height(a.headerView()) + lipgloss.Height(a.footerView())
	a.results.Height = max(a.height-used, 3)
	a.results.SetContent(a.resultsView())
}

// View implements tea.Model.
func (a *App) View() string {
	if a.quitting {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		a.headerView(),
		a.results.View(),
		a.footerView(),
	)
}

func (a *App) headerView() string {
	sections := []string{
		a.styles.Header.Render("scout") + a.styles.Dim.Render("  startup search"),
		a.input.View(),
	}
	if chips := a.historyView(); chips != "" {
		sections = append(sections, chips)
	}
	sections = append(sections, a.filtersView())
	if a.state.Err != nil {
		sections = append(sections, a.styles.Banner.Render(
			strings.TrimRight(scouterrors.FormatForUser(a.state.Err, a.debug), "\n")))
	}
	sections = append(sections, a.statusView())
	return strings.Join(sections, "\n")
}

func (a *App) historyView() string {
	if len(a.state.History) == 0 {
		return ""
	}
	chips := []string{a.styles.Label.Render("Recent:")}
	for i, q := range a.state.History {
		style := a.styles.Chip
		if a.focus == focusHistory && i == a.historyIdx {
			style = a.styles.ChipActive
		}
		chips = append(chips, style.Render(q))
	}
	return strings.Join(chips, " ")
}

func (a *App) filtersView() string {
	count := len(a.state.Filters.Map())
	toggle := "Filters"
	if count > 0 {
		toggle = fmt.Sprintf("Filters (%d)", count)
	}
	if !a.showFilters {
		return a.styles.Label.Render(toggle) + a.styles.Dim.Render("  ctrl+f to show")
	}
	toggle = a.styles.Label.Render(toggle) + a.styles.Dim.Render("  ctrl+f to hide")

	title := a.styles.Title.Render("Filter Results")
	if count > 0 {
		title += a.styles.Dim.Render("  ctrl+x Clear all")
	}
	lines := []string{title}
	current := a.state.Filters.Map()
	for i, g := range filterGroups(a.state.FilterOptions) {
		value := current[g.param]
		if value == "" {
			value = g.allLabel
		}
		label := a.styles.Label.Render(fmt.Sprintf("%-14s", g.label))
		choice := a.styles.Chip.Render("‹ " + value + " ›")
		if a.focus == focusFilters && i == a.filterRow {
			choice = a.styles.ChipActive.Render("‹ " + value + " ›")
		}
		lines = append(lines, label+choice)
	}
	return toggle + "\n" + a.styles.Panel.Render(strings.Join(lines, "\n"))
}

func (a *App) statusView() string {
	if a.state.IsSearching {
		return a.spinner.View() + " " + a.styles.Label.Render(TextSearching)
	}
	if n := len(a.state.Results()); n > 0 {
		return a.styles.Active.Render(ResultSummary(n, a.state.Query))
	}
	return ""
}

func (a *App) resultsView() string {
	if title, hint, ok := EmptyState(a.state); ok {
		block := a.styles.Title.Render(title) + "\n" + a.styles.Label.Render(hint)
		return lipgloss.PlaceHorizontal(a.width, lipgloss.Center, block)
	}
	cards := make([]string, 0, len(a.state.Results()))
	for _, r := range a.state.Results() {
		cards = append(cards, renderCard(r, a.styles, a.width))
	}
	return strings.Join(cards, "\n")
}

func (a *App) footerView() string {
	return a.help.View(a.keys)
}

package overlay

import (
	"fmt"
	"strings"

	"taskdeck/keys"
	"taskdeck/palette"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

// StateChangedMsg tells the host the bound controller published new state
type StateChangedMsg struct{}

// PaletteSelectedMsg is emitted after the user picks a result. Err is the
// error returned by the result's action, if any.
type PaletteSelectedMsg struct {
	ID  string
	Err error
}

// PaletteClosedMsg is emitted when the user dismisses the palette
type PaletteClosedMsg struct{}

// PaletteOverlay renders a palette.Controller and feeds it keystrokes
type PaletteOverlay struct {
	input   textinput.Model
	spinner spinner.Model
	ticking bool

	controller *palette.Controller
	changes    chan struct{}

	state         palette.State
	selectedIndex int
	scrollOffset  int
	width         int
	height        int

	titleStyle    lipgloss.Style
	boxStyle      lipgloss.Style
	inputStyle    lipgloss.Style
	groupStyle    lipgloss.Style
	resultStyle   lipgloss.Style
	selectedStyle lipgloss.Style
	subtitleStyle lipgloss.Style
	loadingStyle  lipgloss.Style
	emptyStyle    lipgloss.Style
	footerStyle   lipgloss.Style
}

// NewPaletteOverlay creates an unbound overlay. Pass its OnChange to the
// controller with palette.WithOnChange, then Bind the controller.
func NewPaletteOverlay() *PaletteOverlay {
	ti := textinput.New()
	ti.Placeholder = "Type a command, issue key or place..."
	ti.Prompt = "> "
	ti.CharLimit = 200

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &PaletteOverlay{
		input:   ti,
		spinner: sp,
		changes: make(chan struct{}, 1),
		width:   60,
		height:  16,

		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4")),
		boxStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 1),
		inputStyle: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(lipgloss.Color("#3C3C3C")),
		groupStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#36CFC9")),
		resultStyle: lipgloss.NewStyle().
			Padding(0, 1),
		selectedStyle: lipgloss.NewStyle().
			Padding(0, 1).
			Background(lipgloss.Color("#3C3C3C")).
			Foreground(lipgloss.Color("#FFFFFF")),
		subtitleStyle: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"}),
		loadingStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFCC00")),
		emptyStyle: lipgloss.NewStyle().
			Padding(1, 1).
			Foreground(lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"}),
		footerStyle: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"}),
	}
}

// Bind attaches the controller the overlay drives
func (o *PaletteOverlay) Bind(c *palette.Controller) {
	o.controller = c
	o.state = c.State()
}

// OnChange wakes the overlay. It never blocks, so it is safe to call from
// any goroutine; bursts of changes collapse into one wake-up.
func (o *PaletteOverlay) OnChange(palette.State) {
	select {
	case o.changes <- struct{}{}:
	default:
	}
}

// WaitForChange returns a command that blocks until the controller changes.
// The host must issue it again after every StateChangedMsg.
func (o *PaletteOverlay) WaitForChange() tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-o.changes; !ok {
			return nil
		}
		return StateChangedMsg{}
	}
}

// Visible reports whether the palette is open
func (o *PaletteOverlay) Visible() bool {
	return o.state.IsOpen
}

// State returns the state the overlay last rendered
func (o *PaletteOverlay) State() palette.State {
	return o.state
}

// SetSize sets the outer size of the overlay box
func (o *PaletteOverlay) SetSize(width, height int) {
	o.width = max(width, 20)
	o.height = max(height, 8)
	o.input.Width = o.innerWidth() - lipgloss.Width(o.input.Prompt) - 1
}

func (o *PaletteOverlay) innerWidth() int {
	return max(o.width-o.boxStyle.GetHorizontalFrameSize(), 10)
}

// Open shows the palette with an empty query
func (o *PaletteOverlay) Open() tea.Cmd {
	if o.controller == nil {
		return nil
	}
	o.input.Reset()
	o.selectedIndex = 0
	o.scrollOffset = 0
	o.controller.Open()
	o.sync()
	return tea.Batch(o.input.Focus(), textinput.Blink, o.startSpinner())
}

// Close hides the palette
func (o *PaletteOverlay) Close() {
	if o.controller == nil {
		return
	}
	o.input.Blur()
	o.controller.Close()
	o.sync()
}

func (o *PaletteOverlay) startSpinner() tea.Cmd {
	if o.ticking || !o.state.IsLoading {
		return nil
	}
	o.ticking = true
	return o.spinner.Tick
}

// sync pulls the latest controller state and keeps the highlight in range
func (o *PaletteOverlay) sync() {
	o.state = o.controller.State()
	if o.selectedIndex >= len(o.state.Results) {
		o.selectedIndex = max(len(o.state.Results)-1, 0)
	}
	o.ensureSelectedVisible()
}

// Selected returns the highlighted result
func (o *PaletteOverlay) Selected() (palette.Result, bool) {
	if o.selectedIndex < 0 || o.selectedIndex >= len(o.state.Results) {
		return palette.Result{}, false
	}
	return o.state.Results[o.selectedIndex], true
}

// Update handles controller notifications, spinner ticks and, while open, keys.
func (o *PaletteOverlay) Update(msg tea.Msg) tea.Cmd {
	if o.controller == nil {
		return nil
	}

	switch msg := msg.(type) {
	case StateChangedMsg:
		o.sync()
		return tea.Batch(o.WaitForChange(), o.startSpinner())
	case spinner.TickMsg:
		if !o.state.IsLoading {
			o.ticking = false
			return nil
		}
		var cmd tea.Cmd
		o.spinner, cmd = o.spinner.Update(msg)
		return cmd
	case tea.KeyMsg:
		if !o.state.IsOpen {
			return nil
		}
		return o.handleKey(msg)
	}

	var cmd tea.Cmd
	o.input, cmd = o.input.Update(msg)
	return cmd
}

func (o *PaletteOverlay) handleKey(msg tea.KeyMsg) tea.Cmd {
	name, ok := keys.Lookup(msg.String())
	if !ok {
		return o.typed(msg)
	}

	switch name {
	case keys.KeyClose:
		o.Close()
		return func() tea.Msg { return PaletteClosedMsg{} }
	case keys.KeyUp:
		o.move(-1, true)
	case keys.KeyDown:
		o.move(1, true)
	case keys.KeyPageUp:
		o.move(-o.visibleRows(), false)
	case keys.KeyPageDown:
		o.move(o.visibleRows(), false)
	case keys.KeySelect:
		r, ok := o.Selected()
		if !ok {
			return nil
		}
		err := o.controller.Select(r.ID)
		o.input.Blur()
		o.sync()
		return func() tea.Msg { return PaletteSelectedMsg{ID: r.ID, Err: err} }
	case keys.KeyComplete:
		if r, ok := o.Selected(); ok {
			o.input.SetValue(r.Title)
			o.input.CursorEnd()
			o.queryChanged()
		}
	case keys.KeyClear:
		o.input.SetValue("")
		o.queryChanged()
	}
	return nil
}

func (o *PaletteOverlay) typed(msg tea.KeyMsg) tea.Cmd {
	before := o.input.Value()
	var cmd tea.Cmd
	o.input, cmd = o.input.Update(msg)
	if o.input.Value() != before {
		o.queryChanged()
	}
	return cmd
}

func (o *PaletteOverlay) queryChanged() {
	o.controller.SetQuery(o.input.Value())
	o.selectedIndex = 0
	o.scrollOffset = 0
	o.sync()
}

// move shifts the highlight by delta. wrap makes single steps cycle past either end.
func (o *PaletteOverlay) move(delta int, wrap bool) {
	n := len(o.state.Results)
	if n == 0 {
		return
	}
	next := o.selectedIndex + delta
	switch {
	case wrap && next < 0:
		next = n - 1
	case wrap && next >= n:
		next = 0
	default:
		next = min(max(next, 0), n-1)
	}
	o.selectedIndex = next
	o.ensureSelectedVisible()
}

// visibleRows is how many result rows fit below the title, input and footer
func (o *PaletteOverlay) visibleRows() int {
	// border 2, title 1, input 2, footer 2
	return max(o.height-7, 1)
}

func (o *PaletteOverlay) ensureSelectedVisible() {
	rows := o.visibleRows()
	if o.selectedIndex < o.scrollOffset {
		o.scrollOffset = o.selectedIndex
	} else if o.selectedIndex >= o.scrollOffset+rows {
		o.scrollOffset = o.selectedIndex - rows + 1
	}
	o.scrollOffset = max(o.scrollOffset, 0)
}

// View renders the overlay box
func (o *PaletteOverlay) View() string {
	width := o.innerWidth()

	title := o.titleStyle.Render("Command Palette")
	if o.state.IsLoading {
		title += " " + o.loadingStyle.Render(o.spinner.View())
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(o.inputStyle.Width(width).Render(o.input.View()))
	b.WriteString("\n")
	b.WriteString(o.renderResults(width))
	b.WriteString("\n")
	b.WriteString(o.footerStyle.Render(truncate.StringWithTail(keys.HelpLine(keys.ShortHelp(), " • "), uint(width), "…")))

	return o.boxStyle.Width(width).Render(b.String())
}

func (o *PaletteOverlay) renderResults(width int) string {
	rows := o.visibleRows()

	if o.state.Phase() == palette.PhaseLoadingInitial && len(o.state.Results) == 0 {
		return o.pad(o.loadingStyle.Render(o.spinner.View()+" Loading..."), rows)
	}
	if len(o.state.Results) == 0 {
		msg := "No results"
		if o.state.IsLoading {
			msg = "Searching..."
		}
		return o.pad(o.emptyStyle.Render(msg), rows)
	}

	var lines []string
	group := ""
	if o.scrollOffset > 0 {
		group = o.state.Results[o.scrollOffset-1].Group
	}
	for i := o.scrollOffset; i < len(o.state.Results) && len(lines) < rows; i++ {
		r := o.state.Results[i]
		if r.Group != group && r.Group != "" {
			if len(lines) == rows-1 {
				break
			}
			lines = append(lines, o.groupStyle.Render(r.Group))
		}
		group = r.Group
		lines = append(lines, o.renderResult(r, i == o.selectedIndex, width))
	}
	return o.pad(strings.Join(lines, "\n"), rows)
}

func (o *PaletteOverlay) renderResult(r palette.Result, selected bool, width int) string {
	style := o.resultStyle
	if selected {
		style = o.selectedStyle
	}
	avail := uint(max(width-style.GetHorizontalFrameSize(), 1))

	line := truncate.StringWithTail(r.Title, avail, "…")
	if r.Subtitle != "" {
		rest := int(avail) - lipgloss.Width(line) - 2
		if rest > 3 {
			line = fmt.Sprintf("%s  %s", line, o.subtitleStyle.Render(truncate.StringWithTail(r.Subtitle, uint(rest), "…")))
		}
	}
	return style.Width(width).Render(line)
}

// pad fills s with blank lines up to rows so the box keeps a fixed height
func (o *PaletteOverlay) pad(s string, rows int) string {
	if n := rows - lipgloss.Height(s); n > 0 {
		s += strings.Repeat("\n", n)
	}
	return s
}

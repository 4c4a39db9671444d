package app

import (
	"context"
	"cmp"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync/atomic"
	"time"

	"taskdeck/cmd"
	"taskdeck/cmd/commands"
	cmdstate "taskdeck/cmd/state"
	"taskdeck/config"
	"taskdeck/issues"
	"taskdeck/log"
	"taskdeck/palette"
	"taskdeck/palette/providers"
	"taskdeck/ui"
	"taskdeck/ui/overlay"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Run is the main entrypoint into the application.
func Run(ctx context.Context, cfg *config.Config) error {
	configDir, err := config.GetConfigDir()
	if err != nil {
		return err
	}

	m, err := newHome(ctx, cfg, config.LoadState(configDir), issues.NewMockTracker())
	if err != nil {
		return err
	}
	defer m.dispose()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

type state int

const (
	stateDefault state = iota
	// statePalette is the state when the command palette is open.
	statePalette
	// stateHelp is the state when a help screen is displayed.
	stateHelp
)

type hideErrMsg struct{}

// queuedMsg carries work queued by a command handler. It runs on the event
// loop once the message that triggered the command has been handled.
type queuedMsg struct {
	fn func() tea.Cmd
}

type home struct {
	ctx context.Context

	// -- Storage and Configuration --

	cfg *config.Config
	// appState stores persistent UI state like the last route
	appState *config.State
	tracker  *issues.Tracker

	// -- Commands and palette --

	registry *cmd.CommandRegistry
	manager  *cmdstate.Manager

	engine     *palette.Engine
	controller *palette.Controller
	recents    *providers.Recents
	// cache is nil when caching is disabled
	cache *providers.Cache
	// providerErrors rate limits provider failures shown in the error box
	providerErrors *log.Every
	// lastProviderErr is set from engine goroutines and read on the event loop
	lastProviderErr atomic.Pointer[palette.ProviderError]

	// -- State --

	// state is the current discrete state of the application
	state         state
	route         string
	sidebarHidden bool
	detailsHidden bool
	width, height int

	// -- UI Components --

	list    *ui.IssueList
	sidebar *ui.Sidebar
	details *ui.Details
	labels  *ui.LabelFilter
	// errBox displays error messages
	errBox         *ui.ErrBox
	paletteOverlay *overlay.PaletteOverlay
	// textOverlay displays help screens
	textOverlay *overlay.TextOverlay

	// queued holds work scheduled by command handlers during Update
	queued []func() tea.Cmd
}

func newHome(ctx context.Context, cfg *config.Config, appState *config.State, tracker *issues.Tracker) (*home, error) {
	for _, warning := range cfg.Validate() {
		log.WarningLog.Printf("config: %s", warning)
	}

	m := &home{
		ctx:            ctx,
		cfg:            cfg,
		appState:       appState,
		tracker:        tracker,
		registry:       cmd.NewCommandRegistry(),
		recents:        providers.NewRecents(cfg.Palette.RecentsSize),
		providerErrors: log.NewEvery(10 * time.Second),
		route:          commands.RouteIssues,
		list:           ui.NewIssueList(""),
		sidebar:        ui.NewSidebar(commands.RouteIssues),
		details:        ui.NewDetails(),
		labels:         ui.NewLabelFilter(),
		errBox:         ui.NewErrBox(),
		paletteOverlay: overlay.NewPaletteOverlay(),
	}

	h := m.handlers()
	if err := cmd.InitializeCommands(m.registry, h); err != nil {
		return nil, fmt.Errorf("failed to initialize commands: %w", err)
	}
	for id, ks := range cfg.Keys {
		if err := m.registry.Rebind(cmd.CommandID(id), ks...); err != nil {
			log.WarningLog.Printf("config: %v", err)
		}
	}
	m.manager = cmdstate.NewManager(m.registry, m.commandContext)
	m.manager.PushScope(cmd.ScopeList)
	for _, issue := range m.manager.ValidateCommands() {
		log.WarningLog.Printf("keymap: %s", issue)
	}

	if err := m.initPalette(h); err != nil {
		return nil, err
	}

	// Restore the last session's layout
	saved := appState.UI
	if saved.Route != "" {
		m.route = saved.Route
	}
	m.sidebarHidden = saved.SidebarHidden
	m.detailsHidden = saved.DetailsHidden
	m.labels.Update(tracker.List(issues.Filter{IncludeDone: true}))
	m.labels.SetActive(saved.Label)
	m.refreshList()

	if saved.HelpScreensSeen&(helpTypeWelcome{}).mask() == 0 {
		m.showHelpScreen(helpTypeWelcome{}, nil)
	}
	return m, nil
}

// initPalette registers the providers and binds one palette instance to the app
func (m *home) initPalette(h *commands.Handlers) error {
	registry := palette.NewRegistry()
	m.engine = palette.NewEngine(registry, append(engineOptions(m.cfg), palette.WithErrorHandler(m.providerFailed))...)

	cached := func(p palette.Provider) palette.Provider { return p }
	if ttl := m.cfg.CacheTTL(); ttl > 0 {
		m.cache = providers.NewCache(ttl)
		cached = m.cache.Wrap
	}

	for _, p := range []palette.Provider{
		m.recents.Provider(),
		m.recents.Track(providers.NewCommandProvider(m.registry)),
		m.recents.Track(providers.NewNavigationProvider(&h.Navigation)),
		m.recents.Track(cached(providers.NewIssueProvider(m.tracker, m.openIssue))),
		m.recents.Track(cached(providers.NewBranchProvider(m.repoPath(), m.copyBranch))),
	} {
		if err := registry.Register(p); err != nil {
			return fmt.Errorf("failed to register palette provider: %w", err)
		}
	}

	copts := []palette.ControllerOption{
		palette.WithDebounce(m.cfg.Debounce()),
		palette.WithOnChange(m.paletteOverlay.OnChange),
	}
	if m.cfg.Palette.Limit > 0 {
		copts = append(copts, palette.WithLimit(m.cfg.Palette.Limit))
	}
	m.controller = palette.NewController(m.engine, m.commandContext(), copts...)
	m.paletteOverlay.Bind(m.controller)
	log.InfoLog.Printf("palette %s ready with %d providers", m.controller.ID(), registry.Len())
	return nil
}

func (m *home) repoPath() string {
	if m.cfg.RepoPath != "" {
		return m.cfg.RepoPath
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// handlers wires command actions to the model. They run on the event loop.
func (m *home) handlers() *commands.Handlers {
	return &commands.Handlers{
		Navigation: commands.NavigationHandlers{
			OnNavigate: m.navigate,
			OnMove: func(delta int) error {
				m.list.Move(delta)
				m.syncSelection()
				return nil
			},
		},
		Issues: commands.IssueHandlers{
			OnAssign: func(issueID, userID string) error {
				if err := m.tracker.Assign(issueID, userID); err != nil {
					return err
				}
				m.issuesChanged()
				m.errBox.SetInfo(fmt.Sprintf("%s assigned to %s", issueID, userID))
				return nil
			},
			OnCopy: func(text string) error {
				return m.copyText(text, "issue key")
			},
			OnClose: func(issueID string) error {
				if err := m.tracker.Close(issueID); err != nil {
					return err
				}
				m.issuesChanged()
				m.errBox.SetInfo(issueID + " closed")
				return nil
			},
		},
		View: commands.ViewHandlers{
			OnTogglePanel: func(panel string) error {
				switch panel {
				case commands.PanelSidebar:
					m.sidebarHidden = !m.sidebarHidden
				case commands.PanelDetails:
					m.detailsHidden = !m.detailsHidden
				default:
					return fmt.Errorf("unknown panel %q", panel)
				}
				m.layout()
				m.saveUIState()
				return nil
			},
			OnCycleLabel: func() error {
				m.labels.Cycle()
				m.refreshList()
				m.saveUIState()
				return nil
			},
			OnOpenPalette: func() error {
				m.queue(m.openPalette)
				return nil
			},
			OnShowHelp: func() error {
				m.queue(func() tea.Cmd {
					m.showHelpScreen(helpTypeGeneral{}, nil)
					return nil
				})
				return nil
			},
			OnQuit: func() error {
				m.queue(func() tea.Cmd { return tea.Quit })
				return nil
			},
		},
	}
}

// queue defers fn until the current message is handled
func (m *home) queue(fn func() tea.Cmd) {
	m.queued = append(m.queued, fn)
}

// drainQueue turns queued work into commands that deliver it back to Update
func (m *home) drainQueue() tea.Cmd {
	if len(m.queued) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, len(m.queued))
	for i, fn := range m.queued {
		cmds[i] = func() tea.Msg { return queuedMsg{fn: fn} }
	}
	m.queued = nil
	return tea.Sequence(cmds...)
}

func (m *home) commandContext() cmd.CommandContext {
	pc := cmd.CommandContext{
		Route: m.route,
		User:  palette.User{ID: m.cfg.User.ID, Role: m.cfg.User.Role},
	}
	if issue, ok := m.list.Selected(); ok && m.route != commands.RouteSettings {
		pc = pc.WithSelection(commands.SelectionIssue, issue.Key)
	}
	return pc
}

// syncContext hands the current context to the palette. Unchanged contexts are ignored by the controller.
func (m *home) syncContext() {
	m.controller.SetContext(m.commandContext())
}

// providerFailed runs on engine goroutines, so it only records the failure
func (m *home) providerFailed(perr *palette.ProviderError) {
	m.lastProviderErr.Store(perr)
}

func (m *home) navigate(route string) error {
	if commands.RouteTitle(route) == route {
		return fmt.Errorf("unknown route %q", route)
	}
	if route == m.route {
		return nil
	}
	m.route = route
	m.refreshList()
	m.saveUIState()
	return nil
}

// openIssue selects key in the list, switching to all issues when the
// current view hides it
func (m *home) openIssue(key string) error {
	issue, ok := m.tracker.Get(key)
	if !ok {
		return fmt.Errorf("%w: %s", issues.ErrIssueNotFound, key)
	}
	if m.route == commands.RouteSettings || !m.list.Select(issue.Key) {
		m.route = commands.RouteIssues
		m.labels.Clear()
		m.refreshList()
		m.list.Select(issue.Key)
	}
	m.syncSelection()
	m.saveUIState()
	return nil
}

func (m *home) copyBranch(branch string) error {
	return m.copyText(branch, "branch name")
}

func (m *home) copyText(text, what string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return err
	}
	m.errBox.SetInfo(fmt.Sprintf("copied %s %s", what, text))
	return nil
}

func statusRank(s issues.Status) int {
	switch s {
	case issues.StatusInProgress:
		return 0
	case issues.StatusTodo:
		return 1
	default:
		return 2
	}
}

func (m *home) issuesForRoute(route string) []issues.Issue {
	switch route {
	case commands.RouteMine:
		return m.tracker.List(issues.Filter{Assignee: m.cfg.User.ID})
	case commands.RouteBoard:
		open := m.tracker.List(issues.Filter{})
		slices.SortStableFunc(open, func(a, b issues.Issue) int {
			return cmp.Compare(statusRank(a.Status), statusRank(b.Status))
		})
		return open
	case commands.RouteInbox:
		var unassigned []issues.Issue
		for _, issue := range m.tracker.List(issues.Filter{}) {
			if issue.Assignee == "" {
				unassigned = append(unassigned, issue)
			}
		}
		return unassigned
	case commands.RouteSettings:
		return nil
	default:
		return m.tracker.List(issues.Filter{IncludeDone: true})
	}
}

// refreshList reloads the list for the current route and label filter
func (m *home) refreshList() {
	title := commands.RouteTitle(m.route)
	if label := m.labels.Active(); label != "" {
		title += " · " + label
	}
	m.list.SetTitle(title)
	m.list.SetItems(m.labels.Apply(m.issuesForRoute(m.route)))

	m.sidebar.SetCurrent(m.route)
	m.sidebar.SetCount(commands.RouteMine, len(m.issuesForRoute(commands.RouteMine)))
	m.sidebar.SetCount(commands.RouteInbox, len(m.issuesForRoute(commands.RouteInbox)))
	m.syncSelection()
}

func (m *home) syncSelection() {
	if issue, ok := m.list.Selected(); ok && m.route != commands.RouteSettings {
		m.details.SetIssue(&issue)
		return
	}
	m.details.SetIssue(nil)
}

// issuesChanged refreshes everything derived from the tracker after a mutation
func (m *home) issuesChanged() {
	if m.cache != nil {
		m.cache.Invalidate()
	}
	m.labels.Update(m.tracker.List(issues.Filter{IncludeDone: true}))
	m.refreshList()
}

func (m *home) saveUIState() {
	err := m.appState.SetUI(config.UIState{
		HelpScreensSeen: m.appState.UI.HelpScreensSeen,
		Route:           m.route,
		SidebarHidden:   m.sidebarHidden,
		DetailsHidden:   m.detailsHidden,
		Label:           m.labels.Active(),
	})
	if err != nil {
		log.WarningLog.Printf("failed to save ui state: %v", err)
	}
}

const (
	sidebarWidth = 24
	detailsWidth = 40
)

// updateHandleWindowSizeEvent sets the sizes of the components.
// The components will try to render inside their bounds.
func (m *home) updateHandleWindowSizeEvent(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.layout()
}

func (m *home) layout() {
	// Header, status line and error box take one row each
	contentHeight := max(m.height-3, 0)

	listWidth := m.width
	if !m.sidebarHidden {
		m.sidebar.SetSize(sidebarWidth, contentHeight)
		listWidth -= sidebarWidth
	}
	if !m.detailsHidden {
		m.details.SetSize(detailsWidth, contentHeight)
		listWidth -= detailsWidth
	}
	m.list.SetSize(max(listWidth, 20), contentHeight)
	m.labels.SetWidth(max(m.width/2, 10))
	m.errBox.SetSize(m.width, 1)

	m.paletteOverlay.SetSize(min(max(m.width-4, 20), 80), min(max(m.height-4, 8), 20))
	if m.textOverlay != nil {
		m.textOverlay.SetWidth(min(max(m.width*6/10, 40), 90))
	}
}

func (m *home) Init() tea.Cmd {
	return tea.Batch(m.paletteOverlay.WaitForChange(), tea.WindowSize())
}

func (m *home) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := m.update(msg)
	m.syncContext()
	return model, tea.Batch(cmd, m.drainQueue())
}

func (m *home) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case hideErrMsg:
		m.errBox.Clear()
	case queuedMsg:
		return m, msg.fn()
	case tea.WindowSizeMsg:
		m.updateHandleWindowSizeEvent(msg)
	case overlay.StateChangedMsg:
		cmd := m.paletteOverlay.Update(msg)
		if perr := m.lastProviderErr.Swap(nil); perr != nil && m.state == statePalette && m.providerErrors.ShouldLog() {
			return m, tea.Batch(cmd, m.handleError(perr))
		}
		return m, cmd
	case spinner.TickMsg:
		return m, m.paletteOverlay.Update(msg)
	case overlay.PaletteSelectedMsg:
		if msg.Err != nil {
			return m, m.handleError(msg.Err)
		}
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}
	return m, nil
}

func (m *home) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case stateHelp:
		return m.handleHelpState(msg)
	case statePalette:
		cmd := m.paletteOverlay.Update(msg)
		if !m.paletteOverlay.Visible() {
			m.state = stateDefault
			m.manager.PopScope()
		}
		return m, cmd
	}

	if _, err := m.manager.HandleKey(msg.String()); err != nil {
		if errors.Is(err, cmdstate.ErrUnboundKey) {
			return m, nil
		}
		return m, m.handleError(err)
	}
	return m, nil
}

// handleHelpState handles key events when in help state
func (m *home) handleHelpState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Any key press will close the help overlay
	if m.textOverlay == nil || m.textOverlay.HandleKeyPress(msg) {
		m.state = stateDefault
		m.textOverlay = nil
		m.manager.PopScope()
	}
	return m, nil
}

func (m *home) openPalette() tea.Cmd {
	if m.state != stateDefault {
		return nil
	}
	m.syncContext()
	m.state = statePalette
	m.manager.PushScope(cmd.ScopePalette)
	return m.paletteOverlay.Open()
}

// handleError handles all errors which get bubbled up to the app. sets the error message. We return a callback tea.Cmd that returns a hideErrMsg message
// which clears the error message after 3 seconds.
func (m *home) handleError(err error) tea.Cmd {
	log.ErrorLog.Printf("%v", err)
	m.errBox.SetError(err)
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
		case <-time.After(3 * time.Second):
		}

		return hideErrMsg{}
	}
}

var (
	appTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("230"))
	statusLineStyle = lipgloss.NewStyle().Padding(0, 1)
	settingsStyle   = lipgloss.NewStyle().Padding(1, 2)
)

func (m *home) renderSettings() string {
	rows := [][2]string{
		{"User", fmt.Sprintf("%s (%s)", m.cfg.User.ID, m.cfg.User.Role)},
		{"Debounce", m.controller.Debounce().String()},
		{"Result limit", fmt.Sprint(m.cfg.Palette.Limit)},
		{"Provider timeout", m.cfg.ProviderTimeout().String()},
		{"Result cache", m.cfg.CacheTTL().String()},
		{"Repository", m.repoPath()},
		{"Log file", log.LogFilePath()},
	}

	lines := []string{headerStyle.Render("Settings"), ""}
	for _, row := range rows {
		lines = append(lines, keyStyle.Width(18).Render(row[0])+descStyle.Render(row[1]))
	}
	return settingsStyle.Width(max(m.list.Width(), 20)).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *home) View() string {
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		appTitleStyle.Render("taskdeck"),
		" ",
		m.labels.String(),
	)

	var panes []string
	if !m.sidebarHidden {
		panes = append(panes, m.sidebar.String())
	}
	if m.route == commands.RouteSettings {
		panes = append(panes, m.renderSettings())
	} else {
		panes = append(panes, m.list.String())
	}
	if !m.detailsHidden {
		panes = append(panes, m.details.String())
	}

	mainView := lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, panes...),
		statusLineStyle.Render(m.manager.StatusLine()),
		m.errBox.String(),
	)

	switch m.state {
	case statePalette:
		fg := m.paletteOverlay.View()
		x := (lipgloss.Width(mainView) - lipgloss.Width(fg)) / 2
		return overlay.PlaceOverlay(x, max(m.height/6, 1), fg, mainView, false)
	case stateHelp:
		if m.textOverlay == nil {
			log.ErrorLog.Printf("text overlay is nil")
			return mainView
		}
		return overlay.PlaceOverlay(0, 0, m.textOverlay.View(), mainView, true)
	}
	return mainView
}

// dispose stops background palette work
func (m *home) dispose() {
	m.controller.Dispose()
	if m.cache != nil {
		m.cache.Close()
	}
}

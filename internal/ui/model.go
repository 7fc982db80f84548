package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"vsxbrowse/internal/config"
	"vsxbrowse/internal/debounce"
	"vsxbrowse/internal/domain"
	"vsxbrowse/internal/eventbus"
	"vsxbrowse/internal/paging"
	"vsxbrowse/internal/ui/scroll"
	"vsxbrowse/internal/ui/views"
)

// Options wires a Model to its collaborators
type Options struct {
	Provider  paging.SearchProvider[domain.Extension]
	Bus       eventbus.EventBus // optional
	Config    *config.Config
	Logger    *zap.Logger
	Query     string
	Category  string
	Post      func(func()) // nil means deliver through the program
	Scheduler debounce.Scheduler
	Context   context.Context
	Now       func() time.Time
}

// Model is the extension list view
type Model struct {
	bus    eventbus.EventBus
	config *config.Config
	logger *zap.Logger
	now    func() time.Time

	list     *paging.Controller[domain.Extension]
	scroller *scroll.Host
	filter   paging.Filter // what the user has asked for

	input   textinput.Model
	editing bool
	spinner spinner.Model
	help    help.Model
	keys    KeyMap

	renderer     *views.Renderer
	helpRenderer *HelpRenderer
	pager        *PagerOps

	width       int
	height      int
	status      string
	statusErr   bool
	inPagerMode bool

	// Program reference for terminal management
	program *tea.Program
}

// NewModel creates a new UI model
func NewModel(opts Options) *Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	ti := textinput.New()
	ti.Placeholder = "search extensions"
	ti.Prompt = "/ "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	ti.CharLimit = 256
	ti.SetValue(opts.Query)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("99"))

	m := &Model{
		bus:          opts.Bus,
		config:       cfg,
		logger:       logger.Named("ui"),
		now:          now,
		input:        ti,
		spinner:      sp,
		help:         help.New(),
		keys:         DefaultKeyMap,
		renderer:     views.NewRenderer(),
		helpRenderer: NewHelpRenderer(DefaultKeyMap),
		pager:        NewPagerOps(),
		filter: paging.Filter{
			Category: opts.Category,
			Query:    opts.Query,
			Size:     cfg.List.PageSize,
		},
	}

	post := opts.Post
	if post == nil {
		post = m.send
	}

	m.list = paging.NewController[domain.Extension](opts.Provider, m, post, paging.Options{
		Debounce:  cfg.List.Debounce.Duration,
		Scheduler: opts.Scheduler,
		Logger:    logger,
		Context:   opts.Context,
	})
	m.scroller = scroll.New(m.list.PageSize(), cfg.List.ScrollThreshold)

	return m
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	m.pager.SetProgram(p)
}

// send delivers a controller callback to the event loop
func (m *Model) send(fn func()) {
	if m.program == nil {
		m.logger.Warn("dropping list callback: program not set")
		return
	}
	m.program.Send(loopMsg{fn: fn})
}

// Report receives failed fetches from the list controller
func (m *Model) Report(err error) {
	m.status = err.Error()
	m.statusErr = true
	m.logger.Info("search failed", zap.Error(err))

	if m.bus != nil {
		f := m.list.Filter()
		m.bus.Publish(eventbus.SearchFailedEvent{Category: f.Category, Query: f.Query, Err: err})
	}
}

// Init starts the first search
func (m *Model) Init() tea.Cmd {
	m.list.Initialize(m.filter)
	m.scroller = scroll.New(m.list.PageSize(), m.config.List.ScrollThreshold)
	m.scroller.SetHeight(m.listHeight())
	return m.spinner.Tick
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case loopMsg:
		msg.fn()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.scroller.SetHeight(m.listHeight())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		if m.inPagerMode {
			return m, nil
		}
		cmd, quit := m.handleKey(msg)
		if quit {
			m.list.Close()
			return m, tea.Quit
		}
		cmds = append(cmds, cmd)

	case pagerMsg:
		if msg.err != nil {
			m.logger.Warn("pager failed", zap.String("what", msg.what), zap.Error(msg.err))
			m.status = "Pager failed: " + msg.err.Error()
			m.statusErr = true
			cmds = append(cmds, clearStatusAfter(3*time.Second))
		}

	case pauseRenderingMsg:
		m.inPagerMode = true

	case resumeRenderingMsg:
		m.inPagerMode = false

	case clearStatusMsg:
		m.status = ""
		m.statusErr = false
	}

	m.checkScroll()
	return m, tea.Batch(cmds...)
}

// handleKey applies a key press; quit reports whether the program should end
func (m *Model) handleKey(msg tea.KeyMsg) (cmd tea.Cmd, quit bool) {
	if msg.String() == "ctrl+c" {
		return nil, true
	}

	if m.editing {
		switch {
		case key.Matches(msg, m.keys.AcceptQuery):
			m.editing = false
			m.input.Blur()
			return nil, false
		case key.Matches(msg, m.keys.ClearQuery):
			m.input.SetValue("")
			m.applyFilter(m.filter.Category, "")
			return nil, false
		}
		m.input, cmd = m.input.Update(msg)
		m.applyFilter(m.filter.Category, m.input.Value())
		return cmd, false
	}

	total := len(m.list.Snapshot().Items)
	switch {
	case key.Matches(msg, m.keys.Quit):
		return nil, true
	case key.Matches(msg, m.keys.Up):
		m.scroller.MoveBy(-1, total)
	case key.Matches(msg, m.keys.Down):
		m.scroller.MoveBy(1, total)
	case key.Matches(msg, m.keys.PageUp):
		m.scroller.MoveBy(-m.scroller.Height(), total)
	case key.Matches(msg, m.keys.PageDown):
		m.scroller.MoveBy(m.scroller.Height(), total)
	case key.Matches(msg, m.keys.Home):
		m.scroller.Home()
	case key.Matches(msg, m.keys.End):
		m.scroller.End(total)
	case key.Matches(msg, m.keys.Search):
		m.editing = true
		return m.input.Focus(), false
	case key.Matches(msg, m.keys.NextCategory):
		m.applyFilter(cycleCategory(m.filter.Category, 1), m.filter.Query)
	case key.Matches(msg, m.keys.PrevCategory):
		m.applyFilter(cycleCategory(m.filter.Category, -1), m.filter.Query)
	case key.Matches(msg, m.keys.Reload):
		m.reload()
	case key.Matches(msg, m.keys.Details):
		if ext, ok := m.Selected(); ok {
			return m.showInPager("details", m.renderer.RenderDetails(ext, m.now())), false
		}
	case key.Matches(msg, m.keys.Help):
		return m.showInPager("help", m.helpRenderer.RenderHelpContent()), false
	}
	return nil, false
}

// applyFilter hands a criteria change to the list controller
func (m *Model) applyFilter(category, query string) {
	old := m.filter
	next := old
	next.Category = category
	next.Query = query
	if old.SameCriteria(next) {
		return
	}

	m.filter = next
	m.list.OnFilterChanged(old, next)
	m.scroller.Reset()
	m.status = ""
	m.statusErr = false

	if m.bus != nil {
		m.bus.Publish(eventbus.FilterChangedEvent{Category: category, Query: query})
	}
}

// reload discards everything and searches the current filter again
func (m *Model) reload() {
	m.list.Initialize(m.filter)
	m.scroller.Reset()
	m.status = ""
	m.statusErr = false
}

// checkScroll lets the scroll host request the next page
func (m *Model) checkScroll() {
	s := m.list.Snapshot()
	m.scroller.Check(len(s.Items), s.HasMore, s.Loading, m.list)
}

// Selected returns the extension under the cursor
func (m *Model) Selected() (domain.Extension, bool) {
	items := m.list.Snapshot().Items
	c := m.scroller.Cursor()
	if c < 0 || c >= len(items) {
		return domain.Extension{}, false
	}
	return items[c], true
}

// State exposes the list state, mainly for tests and headless callers
func (m *Model) State() paging.State[domain.Extension] {
	return m.list.Snapshot()
}

// Filter returns the criteria the user has asked for
func (m *Model) Filter() paging.Filter {
	return m.filter
}

// Status returns the status line message and whether it is an error
func (m *Model) Status() (string, bool) {
	return m.status, m.statusErr
}

func (m *Model) listHeight() int {
	if m.height == 0 {
		return 20
	}
	return max(1, m.height-views.ChromeHeight)
}

// showInPager returns a command that shows content using ov pager
func (m *Model) showInPager(what, content string) tea.Cmd {
	if m.program == nil {
		return nil
	}
	return func() tea.Msg {
		m.program.Send(pauseRenderingMsg{})
		err := m.pager.Show(content)
		m.program.Send(resumeRenderingMsg{})
		return pagerMsg{what: what, err: err}
	}
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return clearStatusMsg{} })
}

// View renders the model
func (m *Model) View() string {
	if m.inPagerMode {
		return ""
	}

	s := m.list.Snapshot()
	return m.renderer.Render(views.ViewState{
		Width:      m.width,
		Height:     m.height,
		Items:      s.Items,
		TotalSize:  s.TotalSize,
		HasMore:    s.HasMore,
		Loading:    s.Loading,
		Pending:    s.Pending,
		Cursor:     m.scroller.Cursor(),
		Offset:     m.scroller.Offset(),
		ListHeight: m.scroller.Height(),
		Category:   m.filter.Category,
		Query:      m.filter.Query,
		Editing:    m.editing,
		QueryInput: m.input.View(),
		Spinner:    m.spinner.View(),
		Status:     m.status,
		StatusErr:  m.statusErr,
		HelpView:   m.help.ShortHelpView(m.keys.ShortHelp()),
		Now:        m.now(),
	})
}

// cycleCategory steps through "" (all) followed by the registry categories
func cycleCategory(current string, step int) string {
	options := append([]string{""}, domain.Categories...)
	idx := 0
	if current != "" {
		if c, ok := domain.LookupCategory(current); ok {
			for i, o := range options {
				if o == c {
					idx = i
					break
				}
			}
		}
	}
	idx = (idx + step + len(options)) % len(options)
	return options[idx]
}

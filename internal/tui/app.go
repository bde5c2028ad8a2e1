package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/dlcscan/internal/discovery"
	"github.com/mmcdole/dlcscan/internal/domain"
	"github.com/mmcdole/dlcscan/internal/search"
	"github.com/mmcdole/dlcscan/internal/selection"
	"github.com/mmcdole/dlcscan/internal/treesync"
	"github.com/mmcdole/dlcscan/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateLoading ApplicationState = iota
	StatePicker
	StateScanning
	StateTree
)

// Vertical chrome: header line, blank line, filter/status line, help line
const ChromeHeight = 4

// RequestStore remembers the last set of requested programs
type RequestStore interface {
	GetScanRequest() ([]domain.ProgramKey, bool)
	SaveScanRequest(keys []domain.ProgramKey) error
}

// Deps holds the services the UI drives
type Deps struct {
	Orchestrator *discovery.Orchestrator
	Selections   *selection.Store
	Choices      domain.ChoiceStore
	Requests     RequestStore
	Search       *search.Service
	BulkSelect   bool
	Logger       *slog.Logger

	// Requested skips the picker and scans these programs right away
	Requested []domain.ProgramKey
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	deps  Deps

	// Picker
	Catalog []discovery.CatalogEntry
	picked  map[domain.ProgramKey]bool
	visible []int // Catalog indices after filtering

	// Scan
	requested []domain.ProgramKey
	cancel    context.CancelFunc
	Progress  domain.ScanProgress
	LastRun   discovery.Result
	bar       progress.Model
	spinner   spinner.Model

	// Tree
	Syncer *treesync.Syncer
	rows   []treeRow // Every node in display order
	shown  []treeRow // rows after filtering

	// Shared list state
	cursor    int
	offset    int
	filter    textinput.Model
	filtering bool

	// Dimensions
	Width  int
	Height int

	// UI state
	StatusMsg   string
	StatusIsErr bool
}

// NewModel creates a new application model
func NewModel(deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Search == nil {
		deps.Search = search.NewService(deps.Logger)
	}

	filter := textinput.New()
	filter.Prompt = styles.FilterPromptStyle.Render("/")
	filter.Placeholder = "filter"

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	return Model{
		State:   StateLoading,
		deps:    deps,
		picked:  make(map[domain.ProgramKey]bool),
		bar:     progress.New(progress.WithDefaultGradient()),
		spinner: sp,
		filter:  filter,
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	if len(m.deps.Requested) > 0 {
		return func() tea.Msg { return startScanMsg{keys: m.deps.Requested} }
	}
	return LoadCatalogCmd(m.deps.Orchestrator)
}

// startScanMsg asks the model to begin a run from Update
type startScanMsg struct {
	keys []domain.ProgramKey
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.bar.Width = max(10, msg.Width-8)
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case CatalogLoadedMsg:
		m.Catalog = msg.Entries
		m.State = StatePicker
		if keys, ok := m.deps.Requests.GetScanRequest(); ok {
			for _, k := range keys {
				m.picked[k] = true
			}
		}
		m.applyFilter()
		return m, nil

	case startScanMsg:
		return m.startScan(msg.keys)

	case ScanProgressMsg:
		m.Progress = msg.Progress
		return m, msg.NextCmd

	case ScanDoneMsg:
		return m.finishScan(msg)

	case spinner.TickMsg:
		if m.State != StateScanning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ErrMsg:
		m.deps.Logger.Error("ui error", "context", msg.Context, "error", msg.Err)
		if m.State == StateLoading {
			m.State = StatePicker
		}
		return m.setStatus(msg.Error(), true)

	case StatusMsg:
		return m.setStatus(msg.Message, msg.IsError)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	return m, nil
}

func (m Model) setStatus(text string, isErr bool) (tea.Model, tea.Cmd) {
	m.StatusMsg = text
	m.StatusIsErr = isErr
	return m, ClearStatusCmd(4 * time.Second)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		return m.handleFilterKey(msg)
	}

	switch m.State {
	case StateScanning:
		switch {
		case key.Matches(msg, Keys.Escape):
			m.cancel()
			return m.setStatus("Cancelling scan...", false)
		case key.Matches(msg, Keys.Quit):
			m.cancel()
			return m, tea.Quit
		}
		return m, nil

	case StatePicker:
		return m.handlePickerKey(msg)

	case StateTree:
		return m.handleTreeKey(msg)
	}

	if key.Matches(msg, Keys.Quit) {
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.applyFilter()
		return m, nil
	case tea.KeyEnter:
		m.filtering = false
		m.filter.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

// handleNavKey moves the cursor; it reports false for non-navigation keys
func (m *Model) handleNavKey(msg tea.KeyMsg) bool {
	page := max(1, m.listHeight())
	switch {
	case key.Matches(msg, Keys.Up):
		m.cursor--
	case key.Matches(msg, Keys.Down):
		m.cursor++
	case key.Matches(msg, Keys.PageUp):
		m.cursor -= page
	case key.Matches(msg, Keys.PageDown):
		m.cursor += page
	case key.Matches(msg, Keys.Home):
		m.cursor = 0
	case key.Matches(msg, Keys.End):
		m.cursor = m.listLen() - 1
	default:
		return false
	}
	m.clampCursor()
	return true
}

func (m Model) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.handleNavKey(msg) {
		return m, nil
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Filter):
		m.filtering = true
		return m, m.filter.Focus()

	case key.Matches(msg, Keys.Escape):
		m.filter.SetValue("")
		m.applyFilter()

	case key.Matches(msg, Keys.Toggle):
		if entry, ok := m.currentEntry(); ok {
			m.picked[entry.Key] = !m.picked[entry.Key]
		}

	case key.Matches(msg, Keys.All):
		all := true
		for _, i := range m.visible {
			if !m.picked[m.Catalog[i].Key] {
				all = false
				break
			}
		}
		for _, i := range m.visible {
			m.picked[m.Catalog[i].Key] = !all
		}

	case key.Matches(msg, Keys.Enter):
		keys := m.pickedKeys()
		if len(keys) == 0 {
			return m.setStatus("Select at least one program", true)
		}
		return m.startScan(keys)
	}
	return m, nil
}

func (m Model) handleTreeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.handleNavKey(msg) {
		return m, nil
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Filter):
		m.filtering = true
		return m, m.filter.Focus()

	case key.Matches(msg, Keys.Escape):
		m.filter.SetValue("")
		m.applyFilter()

	case key.Matches(msg, Keys.Toggle):
		if m.cursor < len(m.shown) {
			k := m.shown[m.cursor].Key
			n, _ := m.Syncer.Tree().Get(k)
			if err := m.Syncer.Toggle(k, !n.Checked); err != nil {
				return m.setStatus(err.Error(), true)
			}
		}

	case key.Matches(msg, Keys.All):
		if _, err := m.Syncer.ToggleAll(); err != nil {
			return m.setStatus(err.Error(), true)
		}

	case key.Matches(msg, Keys.Save):
		if err := m.Syncer.Save(m.deps.Choices); err != nil {
			return m.setStatus(fmt.Sprintf("Saving choices: %v", err), true)
		}
		return m.setStatus("Choices saved", false)

	case key.Matches(msg, Keys.Load):
		ok, err := m.Syncer.Load(m.deps.Choices)
		switch {
		case err != nil:
			return m.setStatus(fmt.Sprintf("Loading choices: %v", err), true)
		case !ok:
			return m.setStatus("No saved choices", true)
		}
		return m.setStatus("Choices loaded", false)

	case key.Matches(msg, Keys.Reset):
		if err := m.Syncer.Reset(); err != nil {
			return m.setStatus(err.Error(), true)
		}
		return m.setStatus("Selection reset", false)

	case key.Matches(msg, Keys.Rescan):
		return m.startScan(m.requested)
	}
	return m, nil
}

func (m Model) startScan(keys []domain.ProgramKey) (tea.Model, tea.Cmd) {
	if err := m.deps.Requests.SaveScanRequest(keys); err != nil {
		m.deps.Logger.Warn("failed to save scan request", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.requested = keys
	m.State = StateScanning
	m.Progress = domain.ScanProgress{}
	m.filtering = false
	m.filter.SetValue("")

	m.deps.Logger.Info("starting scan", "programs", len(keys), "bulk", m.deps.BulkSelect)
	return m, tea.Batch(
		ScanCmd(ctx, m.deps.Orchestrator, keys, discovery.RunOptions{BulkSelect: m.deps.BulkSelect}),
		m.spinner.Tick,
	)
}

func (m Model) finishScan(msg ScanDoneMsg) (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}
	if msg.Final != nil {
		m.Progress = *msg.Final
	}
	m.LastRun = msg.Result

	m.Syncer = treesync.NewSyncer(treesync.Build(m.deps.Selections.All()), m.deps.Selections, m.deps.Logger)
	// Saved choices apply on top of the fresh scan
	if _, err := m.Syncer.Load(m.deps.Choices); err != nil {
		m.deps.Logger.Warn("failed to apply saved choices", "error", err)
	}
	m.rows = flattenTree(m.Syncer.Tree())
	m.State = StateTree
	m.cursor, m.offset = 0, 0
	m.applyFilter()

	text := fmt.Sprintf("Scanned %d programs", len(msg.Result.Committed))
	if msg.Result.Canceled {
		text = "Scan cancelled. " + text
	}
	if n := len(msg.Result.Abandoned); n > 0 {
		text += fmt.Sprintf(", %d unusable", n)
	}
	if n := len(msg.Result.Blocked); n > 0 {
		text += fmt.Sprintf(", %d blocked", n)
	}
	return m.setStatus(text, false)
}

func (m *Model) applyFilter() {
	switch m.State {
	case StatePicker:
		m.visible = filterCatalog(m.deps.Search, m.Catalog, m.filter.Value())
	case StateTree:
		m.shown = filterTree(m.rows, m.filter.Value())
	}
	m.cursor, m.offset = 0, 0
}

func (m Model) currentEntry() (discovery.CatalogEntry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return discovery.CatalogEntry{}, false
	}
	return m.Catalog[m.visible[m.cursor]], true
}

// pickedKeys returns the picked programs in catalog order
func (m Model) pickedKeys() []domain.ProgramKey {
	var keys []domain.ProgramKey
	for _, e := range m.Catalog {
		if m.picked[e.Key] {
			keys = append(keys, e.Key)
		}
	}
	return keys
}

func (m Model) listLen() int {
	switch m.State {
	case StatePicker:
		return len(m.visible)
	case StateTree:
		return len(m.shown)
	}
	return 0
}

func (m Model) listHeight() int {
	if m.Height == 0 {
		return 20
	}
	return max(1, m.Height-ChromeHeight)
}

func (m *Model) clampCursor() {
	n := m.listLen()
	m.cursor = max(0, min(m.cursor, n-1))
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
}

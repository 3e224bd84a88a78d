package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/rshade/profdiff/internal/engine"
	"github.com/rshade/profdiff/internal/logging"
	"github.com/rshade/profdiff/internal/tui/detail"
	listview "github.com/rshade/profdiff/internal/tui/list"
)

// Notification texts.
const (
	noticeTitleError      = "Error"
	msgProfilesLoadFailed = "Failed to load profiles"
	msgComparisonFailed   = "Comparison failed"
	msgSelectTwoProfiles  = "Select two different profiles to compare"
)

const (
	pickerTitleProfile1 = "Profile 1"
	pickerTitleProfile2 = "Profile 2"
	profileSlot1        = 1
	profileSlot2        = 2
)

// chromeHeight is the number of lines used by everything but the row list.
const chromeHeight = 12

// ProfilesLoadedMsg carries the result of the one-shot profile list call.
type ProfilesLoadedMsg struct {
	Profiles []engine.ProfileInfo
	Err      error
}

// ComparisonLoadedMsg carries the result of one compare call.
type ComparisonLoadedMsg struct {
	Session  string
	Profile1 string
	Profile2 string
	Result   *engine.Result
	Err      error
}

// ProjectedRow is one row of a category projection.
type ProjectedRow struct {
	AnnotatedRow

	Expandable bool           `json:"expandable,omitempty"`
	Expanded   bool           `json:"expanded,omitempty"`
	Loading    bool           `json:"-"`
	Details    []AnnotatedRow `json:"details,omitempty"`
}

// ComparisonModel is the Bubble Tea model for comparing two profiles. It owns
// the comparison tree and the filter mode, and one detail cache per category
// that supports drill-down.
type ComparisonModel struct {
	ctx     context.Context
	service engine.Service

	// Selection
	profiles []engine.ProfileInfo
	profile1 string
	profile2 string

	// Session
	state   SessionState
	busy    bool
	session string
	result  *engine.Result
	filter  FilterMode
	caches  map[engine.Category]*detail.Cache
	notice  *Notice

	// Interactive components
	view       ViewState
	activeTab  int
	list       *listview.VirtualListModel[rowItem]
	picker     *ProfilePicker
	pickerSlot int
	keys       KeyMap
	help       help.Model
	loading    *LoadingState

	// Display configuration
	width  int
	height int

	compareOnInit bool
}

// NewComparisonModel creates an idle model backed by svc.
func NewComparisonModel(ctx context.Context, svc engine.Service) *ComparisonModel {
	if ctx == nil {
		ctx = context.Background()
	}
	m := &ComparisonModel{
		ctx:     ctx,
		service: svc,
		state:   SessionIdle,
		caches:  make(map[engine.Category]*detail.Cache),
		view:    ViewStateMain,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		loading: NewLoadingState(),
		width:   defaultWidth,
		height:  defaultHeight,
	}
	for _, c := range engine.AllCategories() {
		if c.SupportsDetail() {
			m.caches[c] = detail.NewCache(ctx, c.String(), nil)
		}
	}
	m.list = listview.NewVirtualListModel[rowItem](nil, m.listHeight(), m.width, m.renderItem)
	return m
}

// CompareOnInit makes Init also start a comparison of the preselected
// profiles.
func (m *ComparisonModel) CompareOnInit() {
	m.compareOnInit = true
}

// Init issues the one-shot profile list call.
func (m *ComparisonModel) Init() tea.Cmd {
	ctx, svc := m.ctx, m.service
	list := func() tea.Msg {
		profiles, err := svc.ListProfiles(ctx)
		return ProfilesLoadedMsg{Profiles: profiles, Err: err}
	}
	if !m.compareOnInit {
		return list
	}
	if compare := m.StartComparison(); compare != nil {
		return tea.Batch(list, compare, m.loading.Init())
	}
	return list
}

// Update handles messages (Bubble Tea interface).
func (m *ComparisonModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.list.SetSize(m.width, m.listHeight())
		return m, nil
	case ProfilesLoadedMsg:
		m.handleProfilesLoaded(msg)
		return m, nil
	case ComparisonLoadedMsg:
		m.handleComparisonLoaded(msg)
		return m, nil
	case detail.LoadedMsg:
		m.handleDetailLoaded(msg)
		return m, nil
	case spinner.TickMsg:
		if m.busy {
			return m, m.loading.Update(msg)
		}
		return m, nil
	case tea.KeyMsg:
		if m.view == ViewStatePicker {
			return m.handlePickerKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *ComparisonModel) handleProfilesLoaded(msg ProfilesLoadedMsg) {
	if msg.Err != nil {
		logger := m.logger("ListProfiles")
		logger.Error().Ctx(m.ctx).Err(msg.Err).Msg("profile list failed")
		m.notice = &Notice{Title: noticeTitleError, Message: msgProfilesLoadFailed}
		return
	}
	m.profiles = msg.Profiles
}

func (m *ComparisonModel) handleComparisonLoaded(msg ComparisonLoadedMsg) {
	if msg.Session != m.session {
		return
	}
	logger := m.logger("Compare")

	if msg.Err != nil || msg.Result == nil {
		err := msg.Err
		if err == nil {
			err = fmt.Errorf("compare returned no result")
		}
		logger.Error().Ctx(m.ctx).Err(err).Str("session", msg.Session).Msg("comparison failed")
		m.result = nil
		m.state = SessionFailed
		m.notice = &Notice{Title: noticeTitleError, Message: engine.UserMessage(err, msgComparisonFailed)}
	} else {
		m.result = msg.Result
		m.rebindCaches(msg.Profile1, msg.Profile2)
		m.state = SessionReady
		logger.Debug().Ctx(m.ctx).
			Str("session", msg.Session).
			Int("differences", msg.Result.Summary.TotalDifferent()).
			Msg("comparison loaded")
	}

	m.refreshList()
	m.busy = false
}

func (m *ComparisonModel) handleDetailLoaded(msg detail.LoadedMsg) {
	for _, cache := range m.caches {
		if cache.Scope() == msg.Scope {
			if cache.Complete(msg) {
				m.refreshList()
			}
			return
		}
	}
}

func (m *ComparisonModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.view = ViewStateQuitting
		return m, tea.Quit
	case key.Matches(msg, m.keys.Dismiss):
		m.DismissNotice()
		return m, nil
	case key.Matches(msg, m.keys.PickProfile1):
		m.openPicker(profileSlot1)
		return m, nil
	case key.Matches(msg, m.keys.PickProfile2):
		m.openPicker(profileSlot2)
		return m, nil
	case key.Matches(msg, m.keys.Compare):
		cmd := m.StartComparison()
		if cmd == nil {
			return m, nil
		}
		return m, tea.Batch(cmd, m.loading.Init())
	case key.Matches(msg, m.keys.Filter):
		m.ToggleFilterMode()
		return m, nil
	case key.Matches(msg, m.keys.NextTab):
		m.setTab(m.activeTab + 1)
		return m, nil
	case key.Matches(msg, m.keys.PrevTab):
		m.setTab(m.activeTab - 1)
		return m, nil
	case key.Matches(msg, m.keys.Toggle):
		return m, m.toggleSelected()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	m.list.Update(msg)
	return m, nil
}

func (m *ComparisonModel) handlePickerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	result, cmd := m.picker.Update(msg)
	switch result {
	case PickerChosen:
		if p, ok := m.picker.Selected(); ok {
			if m.pickerSlot == profileSlot1 {
				m.SelectProfile1(p.ID)
			} else {
				m.SelectProfile2(p.ID)
			}
		}
		m.closePicker()
	case PickerCancelled:
		m.closePicker()
	case PickerOpen:
	}
	return m, cmd
}

func (m *ComparisonModel) openPicker(slot int) {
	title := pickerTitleProfile1
	if slot == profileSlot2 {
		title = pickerTitleProfile2
	}
	m.picker = NewProfilePicker(title, m.profiles)
	m.pickerSlot = slot
	m.view = ViewStatePicker
}

func (m *ComparisonModel) closePicker() {
	m.picker = nil
	m.pickerSlot = 0
	m.view = ViewStateMain
}

// SelectProfile1 sets the first profile ID.
func (m *ComparisonModel) SelectProfile1(id string) {
	m.profile1 = id
}

// SelectProfile2 sets the second profile ID.
func (m *ComparisonModel) SelectProfile2(id string) {
	m.profile2 = id
}

// Profile1 returns the first profile ID.
func (m *ComparisonModel) Profile1() string {
	return m.profile1
}

// Profile2 returns the second profile ID.
func (m *ComparisonModel) Profile2() string {
	return m.profile2
}

// CanCompare reports whether a comparison can be started: both profiles are
// selected, they differ, and no comparison is in flight.
func (m *ComparisonModel) CanCompare() bool {
	return m.profile1 != "" && m.profile2 != "" && m.profile1 != m.profile2 && !m.busy
}

// StartComparison clears the previous result and returns the compare command.
// It returns nil, and calls nothing, when CanCompare is false.
func (m *ComparisonModel) StartComparison() tea.Cmd {
	if !m.CanCompare() {
		return nil
	}

	m.result = nil
	m.notice = nil
	m.resetCaches()
	m.busy = true
	m.state = SessionLoading
	m.session = logging.NewID()
	m.refreshList()

	ctx, svc := m.ctx, m.service
	session, id1, id2 := m.session, m.profile1, m.profile2
	return func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				msg = ComparisonLoadedMsg{
					Session: session, Profile1: id1, Profile2: id2,
					Err: fmt.Errorf("compare panicked: %v", r),
				}
			}
		}()
		result, err := svc.Compare(ctx, id1, id2)
		return ComparisonLoadedMsg{Session: session, Profile1: id1, Profile2: id2, Result: result, Err: err}
	}
}

// resetCaches drops all detail. Completions still in flight are discarded.
func (m *ComparisonModel) resetCaches() {
	for _, cache := range m.caches {
		cache.Reset()
	}
}

// rebindCaches starts a new detail generation fetching for the given pair.
func (m *ComparisonModel) rebindCaches(id1, id2 string) {
	svc := m.service
	for _, cache := range m.caches {
		cache.Rebind(func(ctx context.Context, key string) ([]engine.DetailRow, error) {
			return svc.FetchDetail(ctx, id1, id2, key)
		})
	}
}

// State returns the session state.
func (m *ComparisonModel) State() SessionState {
	return m.state
}

// Busy reports whether a comparison is in flight.
func (m *ComparisonModel) Busy() bool {
	return m.busy
}

// Result returns the current comparison tree, nil when none is loaded.
func (m *ComparisonModel) Result() *engine.Result {
	return m.result
}

// FilterMode returns the active filter.
func (m *ComparisonModel) FilterMode() FilterMode {
	return m.filter
}

// SetFilterMode changes the filter. Projections are recomputed.
func (m *ComparisonModel) SetFilterMode(mode FilterMode) {
	m.filter = mode
	m.refreshList()
}

// ToggleFilterMode switches between FilterAll and FilterDifferencesOnly.
func (m *ComparisonModel) ToggleFilterMode() {
	if m.filter == FilterAll {
		m.SetFilterMode(FilterDifferencesOnly)
		return
	}
	m.SetFilterMode(FilterAll)
}

// Projection returns the filtered, annotated rows of category in tree order.
// Rows of categories with detail also carry expansion state and their
// filtered, annotated detail rows.
func (m *ComparisonModel) Projection(category engine.Category) []ProjectedRow {
	rows := m.result.RowsFor(category)
	cache := m.caches[category]

	out := make([]ProjectedRow, 0, len(rows))
	for _, row := range rows {
		if !m.include(row) {
			continue
		}
		p := ProjectedRow{AnnotatedRow: Annotate(row, row.IsDifferent)}
		if cache != nil {
			p.Expandable = true
			p.Expanded = cache.IsExpanded(row.Key)
			p.Loading = cache.IsLoading(row.Key)
			p.Details = m.projectDetails(cache.DetailFor(row.Key))
		}
		out = append(out, p)
	}
	return out
}

func (m *ComparisonModel) projectDetails(rows []engine.DetailRow) []AnnotatedRow {
	out := make([]AnnotatedRow, 0, len(rows))
	for _, r := range rows {
		if m.include(r) {
			out = append(out, Annotate(r, r.IsDifferent))
		}
	}
	return out
}

func (m *ComparisonModel) include(row engine.ComparisonRow) bool {
	return m.filter != FilterDifferencesOnly || row.IsDifferent
}

// Toggle expands or collapses a row. It returns the detail fetch command when
// the row's detail must be loaded, and nil for categories without detail.
func (m *ComparisonModel) Toggle(category engine.Category, key string) tea.Cmd {
	cache, ok := m.caches[category]
	if !ok || !m.hasRow(category, key) {
		return nil
	}
	cmd := cache.Toggle(key)
	m.refreshList()
	return cmd
}

// ResolveDetail expands a row and loads its detail synchronously. It is used
// by non-interactive output.
func (m *ComparisonModel) ResolveDetail(ctx context.Context, category engine.Category, key string) []engine.DetailRow {
	cache, ok := m.caches[category]
	if !ok || !m.hasRow(category, key) {
		return []engine.DetailRow{}
	}
	rows := cache.Resolve(ctx, key)
	m.refreshList()
	return rows
}

// IsExpanded reports whether a row is expanded.
func (m *ComparisonModel) IsExpanded(category engine.Category, key string) bool {
	cache, ok := m.caches[category]
	return ok && cache.IsExpanded(key)
}

// IsLoading reports whether a row's detail is being fetched.
func (m *ComparisonModel) IsLoading(category engine.Category, key string) bool {
	cache, ok := m.caches[category]
	return ok && cache.IsLoading(key)
}

// DetailFor returns the unfiltered cached detail of a row.
func (m *ComparisonModel) DetailFor(category engine.Category, key string) []engine.DetailRow {
	cache, ok := m.caches[category]
	if !ok {
		return []engine.DetailRow{}
	}
	return cache.DetailFor(key)
}

func (m *ComparisonModel) hasRow(category engine.Category, key string) bool {
	for _, r := range m.result.RowsFor(category) {
		if r.Key == key {
			return true
		}
	}
	return false
}

// Summary returns per-category counts of the unfiltered tree.
func (m *ComparisonModel) Summary() engine.Summary {
	if m.result == nil {
		return engine.Summarize(nil)
	}
	return engine.Summarize(m.result.Rows)
}

// TabLabel returns the tab title of category, with its difference count once
// a comparison is loaded.
func (m *ComparisonModel) TabLabel(category engine.Category) string {
	if m.result == nil {
		return category.Label()
	}
	return fmt.Sprintf("%s (%d)", category.Label(), m.Summary().Count(category).Different)
}

// SummaryCards returns one card per category, empty when no comparison is loaded.
func (m *ComparisonModel) SummaryCards() []SummaryCard {
	if m.result == nil {
		return nil
	}
	summary := m.Summary()
	cards := make([]SummaryCard, 0, len(summary))
	for _, c := range engine.AllCategories() {
		count := summary.Count(c)
		class := CardClassSuccess
		if count.Different > 0 {
			class = CardClassWarning
		}
		cards = append(cards, SummaryCard{
			Label:     c.ShortLabel(),
			Total:     count.Total,
			Different: count.Different,
			Class:     class,
		})
	}
	return cards
}

// ProfileOptions returns the selectable profiles.
func (m *ComparisonModel) ProfileOptions() []engine.ProfileInfo {
	return m.profiles
}

// Notice returns the current notification, nil when there is none.
func (m *ComparisonModel) Notice() *Notice {
	return m.notice
}

// DismissNotice clears the notification.
func (m *ComparisonModel) DismissNotice() {
	m.notice = nil
}

// ActiveCategory returns the category of the selected tab.
func (m *ComparisonModel) ActiveCategory() engine.Category {
	return engine.AllCategories()[m.activeTab]
}

// SetActiveCategory selects the tab of category.
func (m *ComparisonModel) SetActiveCategory(category engine.Category) {
	for i, c := range engine.AllCategories() {
		if c == category {
			m.setTab(i)
			return
		}
	}
}

func (m *ComparisonModel) setTab(i int) {
	n := len(engine.AllCategories())
	m.activeTab = ((i % n) + n) % n
	m.list.SetSelected(0)
	m.refreshList()
}

func (m *ComparisonModel) listHeight() int {
	return max(m.height-chromeHeight, minHeight)
}

func (m *ComparisonModel) logger(operation string) *zerolog.Logger {
	l := logging.FromContext(m.ctx).With().
		Str("component", "tui").
		Str("operation", operation).
		Logger()
	return &l
}

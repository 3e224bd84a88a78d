package tui

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/profdiff/internal/engine"
	"github.com/rshade/profdiff/internal/tui/detail"
)

type fakeService struct {
	mu           sync.Mutex
	profiles     []engine.ProfileInfo
	listErr      error
	result       *engine.Result
	compareErr   error
	details      map[string][]engine.DetailRow
	detailErrs   map[string]error
	compareCalls int
	detailCalls  map[string]int
}

func newFakeService() *fakeService {
	return &fakeService{
		profiles: []engine.ProfileInfo{
			{ID: "p1", Name: "System Administrator", LicenseName: "Salesforce"},
			{ID: "p2", Name: "Standard User", LicenseName: "Salesforce"},
			{ID: "p3", Name: "Read Only"},
		},
		result:      sampleResult(),
		details:     map[string][]engine.DetailRow{"Account": accountDetail()},
		detailErrs:  map[string]error{},
		detailCalls: map[string]int{},
	}
}

func (f *fakeService) ListProfiles(context.Context) ([]engine.ProfileInfo, error) {
	return f.profiles, f.listErr
}

func (f *fakeService) Compare(context.Context, string, string) (*engine.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.compareCalls++
	if f.compareErr != nil {
		return nil, f.compareErr
	}
	return f.result, nil
}

func (f *fakeService) FetchDetail(_ context.Context, _, _, key string) ([]engine.DetailRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls[key]++
	if err := f.detailErrs[key]; err != nil {
		return nil, err
	}
	return f.details[key], nil
}

func (f *fakeService) calls(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detailCalls[key]
}

func sampleResult() *engine.Result {
	rows := map[engine.Category][]engine.ComparisonRow{
		engine.CategoryApps: {
			{Key: "Sales", Label: "Sales", Left: "Visible", Right: "Visible"},
			{Key: "Service", Label: "Service", Left: "Visible (Default)", Right: "Hidden", IsDifferent: true},
		},
		engine.CategoryObjects: {
			{Key: "Account", Label: "Account", Left: "CREDVM", Right: "CRE---", IsDifferent: true},
			{Key: "Contact", Label: "Contact", Left: "-RE---", Right: "-RE---"},
			{Key: "Lead", Label: "Lead", Left: "CRE---", Right: "-R----", IsDifferent: true},
		},
		engine.CategorySystemPermissions: {
			{Key: "ApiEnabled", Left: "Enabled", Right: "Enabled"},
		},
	}
	return &engine.Result{
		Profile1: engine.ProfileInfo{ID: "p1", Name: "System Administrator", LicenseName: "Salesforce"},
		Profile2: engine.ProfileInfo{ID: "p2", Name: "Standard User", LicenseName: "Salesforce"},
		Summary:  engine.Summarize(rows),
		Rows:     rows,
	}
}

func accountDetail() []engine.DetailRow {
	return []engine.DetailRow{
		{Key: "Account.Industry", Left: "Read/Edit", Right: "Read/Edit"},
		{Key: "Account.Rating", Left: "Read/Edit", Right: "Read", IsDifferent: true},
	}
}

// loadedModel returns a model with profiles p1 and p2 compared.
func loadedModel(t *testing.T, svc *fakeService) *ComparisonModel {
	t.Helper()
	m := NewComparisonModel(context.Background(), svc)
	Drive(m, m.Init())
	m.SelectProfile1("p1")
	m.SelectProfile2("p2")
	Drive(m, m.StartComparison())
	require.Equal(t, SessionReady, m.State())
	return m
}

func runDetailCmd(t *testing.T, cmd tea.Cmd) detail.LoadedMsg {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd().(detail.LoadedMsg)
	require.True(t, ok)
	return msg
}

// TestComparisonModel_Init verifies the one-shot profile load.
func TestComparisonModel_Init(t *testing.T) {
	svc := newFakeService()
	m := NewComparisonModel(context.Background(), svc)
	assert.Equal(t, SessionIdle, m.State())

	Drive(m, m.Init())
	assert.Len(t, m.ProfileOptions(), 3)
	assert.Nil(t, m.Notice())

	failing := newFakeService()
	failing.listErr = errors.New("connection refused")
	m = NewComparisonModel(context.Background(), failing)
	Drive(m, m.Init())
	require.NotNil(t, m.Notice())
	assert.Equal(t, "Failed to load profiles", m.Notice().Message)
	assert.Empty(t, m.ProfileOptions())

	m.DismissNotice()
	assert.Nil(t, m.Notice())
}

// TestComparisonModel_CanCompare verifies the disabled compare state.
func TestComparisonModel_CanCompare(t *testing.T) {
	tests := []struct {
		name   string
		p1, p2 string
		want   bool
	}{
		{"none selected", "", "", false},
		{"only first", "p1", "", false},
		{"only second", "", "p2", false},
		{"same profile", "p1", "p1", false},
		{"two profiles", "p1", "p2", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newFakeService()
			m := NewComparisonModel(context.Background(), svc)
			m.SelectProfile1(tt.p1)
			m.SelectProfile2(tt.p2)

			assert.Equal(t, tt.want, m.CanCompare())
			cmd := m.StartComparison()
			if !tt.want {
				assert.Nil(t, cmd)
				assert.Equal(t, SessionIdle, m.State())
			}
			Drive(m, cmd)
			wantCalls := 0
			if tt.want {
				wantCalls = 1
			}
			assert.Equal(t, wantCalls, svc.compareCalls)
		})
	}
}

// TestComparisonModel_StateMachine verifies idle, loading, ready and failed transitions.
func TestComparisonModel_StateMachine(t *testing.T) {
	svc := newFakeService()
	m := NewComparisonModel(context.Background(), svc)
	m.SelectProfile1("p1")
	m.SelectProfile2("p2")

	cmd := m.StartComparison()
	require.NotNil(t, cmd)
	assert.Equal(t, SessionLoading, m.State())
	assert.True(t, m.Busy())
	assert.False(t, m.CanCompare())
	assert.Nil(t, m.StartComparison(), "no second compare while busy")

	Drive(m, cmd)
	assert.Equal(t, SessionReady, m.State())
	assert.False(t, m.Busy())
	require.NotNil(t, m.Result())

	svc.compareErr = &engine.ServiceError{Code: engine.CodeNotFound, Message: `profile "p2" not found`}
	Drive(m, m.StartComparison())
	assert.Equal(t, SessionFailed, m.State())
	assert.Nil(t, m.Result())
	assert.False(t, m.Busy())
	require.NotNil(t, m.Notice())
	assert.Equal(t, `profile "p2" not found`, m.Notice().Message)
	assert.Empty(t, m.Projection(engine.CategoryObjects))

	svc.compareErr = errors.New("socket hang up")
	Drive(m, m.StartComparison())
	assert.Equal(t, "Comparison failed", m.Notice().Message)

	svc.compareErr = nil
	Drive(m, m.StartComparison())
	assert.Equal(t, SessionReady, m.State())
	assert.Nil(t, m.Notice())
}

// TestComparisonModel_StaleComparisonIgnored verifies completions of an older session are dropped.
func TestComparisonModel_StaleComparisonIgnored(t *testing.T) {
	svc := newFakeService()
	m := NewComparisonModel(context.Background(), svc)
	m.SelectProfile1("p1")
	m.SelectProfile2("p2")
	cmd := m.StartComparison()

	m.Update(ComparisonLoadedMsg{Session: "someone-else", Result: sampleResult()})
	assert.Equal(t, SessionLoading, m.State())

	Drive(m, cmd)
	assert.Equal(t, SessionReady, m.State())
}

// TestComparisonModel_AccountScenario verifies expand, load and filter of object detail.
func TestComparisonModel_AccountScenario(t *testing.T) {
	svc := newFakeService()
	m := loadedModel(t, svc)

	cmd := m.Toggle(engine.CategoryObjects, "Account")
	require.NotNil(t, cmd)
	assert.True(t, m.IsLoading(engine.CategoryObjects, "Account"))
	assert.Empty(t, m.DetailFor(engine.CategoryObjects, "Account"))

	projected := m.Projection(engine.CategoryObjects)
	require.Len(t, projected, 3)
	assert.True(t, projected[0].Expanded)
	assert.True(t, projected[0].Loading)

	m.Update(runDetailCmd(t, cmd))
	assert.False(t, m.IsLoading(engine.CategoryObjects, "Account"))
	assert.Len(t, m.DetailFor(engine.CategoryObjects, "Account"), 2)
	assert.Len(t, m.Projection(engine.CategoryObjects)[0].Details, 2)

	m.SetFilterMode(FilterDifferencesOnly)
	projected = m.Projection(engine.CategoryObjects)
	require.Len(t, projected, 2)
	require.Len(t, projected[0].Details, 1)
	assert.Equal(t, "Account.Rating", projected[0].Details[0].Key)
	assert.Equal(t, RowClassHighlight, projected[0].Details[0].Class)
	assert.Equal(t, 1, svc.calls("Account"))
}

// TestComparisonModel_ContactScenario verifies a rejected detail fetch is absorbed.
func TestComparisonModel_ContactScenario(t *testing.T) {
	svc := newFakeService()
	svc.detailErrs["Contact"] = errors.New("INSUFFICIENT_ACCESS")
	m := loadedModel(t, svc)

	assert.NotPanics(t, func() {
		m.Update(runDetailCmd(t, m.Toggle(engine.CategoryObjects, "Contact")))
	})
	assert.Empty(t, m.DetailFor(engine.CategoryObjects, "Contact"))
	assert.False(t, m.IsLoading(engine.CategoryObjects, "Contact"))
	assert.True(t, m.IsExpanded(engine.CategoryObjects, "Contact"))
	assert.Nil(t, m.Notice())
}

// TestComparisonModel_AtMostOneFetch verifies toggle sequences fetch each key once.
func TestComparisonModel_AtMostOneFetch(t *testing.T) {
	svc := newFakeService()
	m := loadedModel(t, svc)

	var cmds []tea.Cmd
	for i := 0; i < 9; i++ {
		if cmd := m.Toggle(engine.CategoryObjects, "Account"); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	require.Len(t, cmds, 1)
	m.Update(runDetailCmd(t, cmds[0]))
	for i := 0; i < 4; i++ {
		assert.Nil(t, m.Toggle(engine.CategoryObjects, "Account"))
	}
	assert.Equal(t, 1, svc.calls("Account"))
}

// TestComparisonModel_ResetIsolatesSessions verifies detail never leaks into a new comparison.
func TestComparisonModel_ResetIsolatesSessions(t *testing.T) {
	svc := newFakeService()
	m := loadedModel(t, svc)

	m.Update(runDetailCmd(t, m.Toggle(engine.CategoryObjects, "Account")))
	pending := m.Toggle(engine.CategoryObjects, "Lead")
	require.NotNil(t, pending)

	Drive(m, m.StartComparison())
	assert.False(t, m.IsExpanded(engine.CategoryObjects, "Account"))
	assert.Empty(t, m.DetailFor(engine.CategoryObjects, "Account"))

	// The old session's Lead fetch lands after the new comparison.
	m.Update(runDetailCmd(t, pending))
	assert.False(t, m.IsExpanded(engine.CategoryObjects, "Lead"))
	assert.Empty(t, m.DetailFor(engine.CategoryObjects, "Lead"))

	// Same key in the new session fetches again.
	require.NotNil(t, m.Toggle(engine.CategoryObjects, "Account"))
	assert.Equal(t, 1, svc.calls("Account"))
}

// TestComparisonModel_FilterProperties verifies subset, idempotence and summary invariance.
func TestComparisonModel_FilterProperties(t *testing.T) {
	m := loadedModel(t, newFakeService())
	summaryBefore := m.Summary()

	for _, c := range engine.AllCategories() {
		all := m.Projection(c)

		m.SetFilterMode(FilterDifferencesOnly)
		once := m.Projection(c)
		m.SetFilterMode(FilterDifferencesOnly)
		twice := m.Projection(c)
		m.SetFilterMode(FilterAll)

		assert.Equal(t, once, twice, c.String())
		for _, row := range once {
			assert.True(t, row.IsDifferent)
			assert.Contains(t, all, row)
		}
	}

	m.SetFilterMode(FilterDifferencesOnly)
	assert.Equal(t, summaryBefore, m.Summary())
}

// TestComparisonModel_ProjectionOrderAndNoMutation verifies tree order and untouched source rows.
func TestComparisonModel_ProjectionOrderAndNoMutation(t *testing.T) {
	svc := newFakeService()
	m := loadedModel(t, svc)
	before := sampleResult().Rows[engine.CategoryObjects]

	projected := m.Projection(engine.CategoryObjects)
	require.Len(t, projected, 3)
	assert.Equal(t, "Account", projected[0].Key)
	assert.Equal(t, "Contact", projected[1].Key)
	assert.Equal(t, "Lead", projected[2].Key)
	assert.Equal(t, RowClassPlain, projected[1].Class)
	assert.True(t, projected[1].Expandable)

	apps := m.Projection(engine.CategoryApps)
	assert.False(t, apps[0].Expandable)
	assert.Nil(t, m.Toggle(engine.CategoryApps, "Sales"))
	assert.Nil(t, m.Toggle(engine.CategoryObjects, "NotAnObject"))

	assert.Equal(t, before, m.Result().Rows[engine.CategoryObjects])
}

// TestComparisonModel_Labels verifies tab labels and summary cards.
func TestComparisonModel_Labels(t *testing.T) {
	m := NewComparisonModel(context.Background(), newFakeService())
	assert.Equal(t, "Object Settings", m.TabLabel(engine.CategoryObjects))
	assert.Empty(t, m.SummaryCards())

	m = loadedModel(t, newFakeService())
	assert.Equal(t, "Object Settings (2)", m.TabLabel(engine.CategoryObjects))
	assert.Equal(t, "Apex Classes (0)", m.TabLabel(engine.CategoryApexClasses))

	cards := m.SummaryCards()
	require.Len(t, cards, 6)
	assert.Equal(t, SummaryCard{Label: "Apps", Total: 2, Different: 1, Class: CardClassWarning}, cards[0])
	assert.Equal(t, SummaryCard{Label: "System Perms", Total: 1, Different: 0, Class: CardClassSuccess}, cards[2])
}

// TestComparisonModel_ResolveDetail verifies the synchronous expand path.
func TestComparisonModel_ResolveDetail(t *testing.T) {
	svc := newFakeService()
	m := loadedModel(t, svc)

	rows := m.ResolveDetail(context.Background(), engine.CategoryObjects, "Account")
	assert.Len(t, rows, 2)
	assert.True(t, m.Projection(engine.CategoryObjects)[0].Expanded)
	assert.Empty(t, m.ResolveDetail(context.Background(), engine.CategoryApps, "Sales"))

	m.ResolveDetail(context.Background(), engine.CategoryObjects, "Account")
	assert.Equal(t, 1, svc.calls("Account"))
}

// TestComparisonModel_Keys verifies the interactive key flow.
func TestComparisonModel_Keys(t *testing.T) {
	svc := newFakeService()
	m := NewComparisonModel(context.Background(), svc)
	Drive(m, m.Init())

	press := func(s string) tea.Cmd {
		var msg tea.KeyMsg
		switch s {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
		}
		_, cmd := m.Update(msg)
		return cmd
	}

	// Pick "Standard User" for profile 2 by searching.
	press("2")
	require.Equal(t, ViewStatePicker, m.view)
	m.picker.SetQuery("standard")
	press("enter")
	assert.Equal(t, "p2", m.Profile2())
	assert.Equal(t, ViewStateMain, m.view)

	// Pick the first option for profile 1.
	press("1")
	press("enter")
	assert.Equal(t, "p1", m.Profile1())

	// Compare, ignoring the spinner tick that comes with it.
	cmd := press("c")
	require.NotNil(t, cmd)
	assert.Equal(t, SessionLoading, m.State())
	m.Update(ComparisonLoadedMsg{Session: m.session, Profile1: "p1", Profile2: "p2", Result: sampleResult()})
	assert.Equal(t, SessionReady, m.State())

	press("tab")
	assert.Equal(t, engine.CategoryObjects, m.ActiveCategory())

	detailCmd := press("enter")
	m.Update(runDetailCmd(t, detailCmd))
	assert.True(t, m.IsExpanded(engine.CategoryObjects, "Account"))
	assert.Contains(t, m.View(), "Account.Rating")

	press("f")
	assert.Equal(t, FilterDifferencesOnly, m.FilterMode())
	assert.NotContains(t, m.View(), "Account.Industry")

	assert.NotNil(t, press("q"))
	assert.Empty(t, m.View())
}

// ABOUTME: Tests for the TUI model
// ABOUTME: Exercises view transitions, section tabs, search, and the edit flow
package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/adrata/pipenav/cache"
	"github.com/adrata/pipenav/models"
	"github.com/adrata/pipenav/nav"
)

type stubFetcher struct {
	cache   *cache.LayeredCache
	records map[string]models.Record
	list    []models.Record
}

func (f *stubFetcher) FetchRecord(_ context.Context, _ models.Section, id string) (models.Record, error) {
	return f.records[id], nil
}

// FetchCollection installs the snapshot like the real client so filter and
// sort rebuilds have something to work from.
func (f *stubFetcher) FetchCollection(_ context.Context, section models.Section, _ int) ([]models.Record, int, error) {
	f.cache.SetCollection(section, f.list, len(f.list))
	return f.list, len(f.list), nil
}

func (f *stubFetcher) Forget(models.Section, string) {}

func setupModel(t *testing.T) Model {
	t.Helper()
	store, err := cache.OpenStore(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	bus := cache.NewBus()
	layered := cache.New(store, bus)

	fetcher := &stubFetcher{
		cache: layered,
		records: map[string]models.Record{
			"a": models.NewRecord("a", map[string]any{"fullName": "Maya Chen", "rank": "1A"}),
			"b": models.NewRecord("b", map[string]any{"fullName": "Tom Alvarez", "rank": "1B"}),
		},
		list: []models.Record{
			models.NewRecord("a", map[string]any{"fullName": "Maya Chen", "rank": "1A"}),
			models.NewRecord("b", map[string]any{"fullName": "Tom Alvarez", "rank": "1B"}),
		},
	}

	return NewModel(layered, fetcher, bus)
}

// drain runs a returned command and feeds its message back, like the runtime.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for cmd != nil {
		var model tea.Model
		model, cmd = m.Update(cmd())
		m = model.(Model)
	}
	return m
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInitLoadsFirstSection(t *testing.T) {
	m := setupModel(t)
	m = drain(t, m, m.Init())

	if !m.loaded[m.section()] {
		t.Fatal("first section should be loaded after Init")
	}
	if got := len(m.controller().WorkingSet().Records); got != 2 {
		t.Errorf("working set size = %d", got)
	}
}

func TestEnterOpensDetailView(t *testing.T) {
	m := setupModel(t)
	m = drain(t, m, m.Init())

	model, cmd := m.Update(key("enter"))
	m = drain(t, model.(Model), cmd)

	if m.viewMode != ViewDetail {
		t.Fatalf("viewMode = %d", m.viewMode)
	}
	rec, ok := m.controller().Current()
	if !ok || rec.ID != "a" {
		t.Errorf("current = %v ok=%v", rec, ok)
	}
	if m.controller().State() != nav.StateResolved {
		t.Errorf("state = %s", m.controller().State())
	}
}

func TestTabSwitchesSection(t *testing.T) {
	m := setupModel(t)
	m = drain(t, m, m.Init())

	model, cmd := m.Update(key("tab"))
	m = drain(t, model.(Model), cmd)

	if m.section() != models.Sections()[1] {
		t.Errorf("section = %s", m.section())
	}
	if !m.loaded[m.section()] {
		t.Error("switched section should load its collection")
	}
}

func TestSearchFiltersWorkingSet(t *testing.T) {
	m := setupModel(t)
	m = drain(t, m, m.Init())

	model, _ := m.Update(key("/"))
	m = model.(Model)
	if !m.searching {
		t.Fatal("expected search mode")
	}

	for _, r := range "maya" {
		model, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = model.(Model)
	}
	model, _ = m.Update(key("enter"))
	m = model.(Model)

	set := m.controller().WorkingSet()
	if len(set.Records) != 1 || set.Records[0].ID != "a" {
		t.Errorf("filtered set = %v", set.Records)
	}

	// Esc clears the filter.
	model, _ = m.Update(key("/"))
	m = model.(Model)
	model, _ = m.Update(key("esc"))
	m = model.(Model)
	if len(m.controller().WorkingSet().Records) != 2 {
		t.Error("filter should be cleared on esc")
	}
}

func TestDetailNextNavigates(t *testing.T) {
	m := setupModel(t)
	m = drain(t, m, m.Init())

	model, cmd := m.Update(key("enter"))
	m = drain(t, model.(Model), cmd)

	model, cmd = m.Update(key("right"))
	m = drain(t, model.(Model), cmd)

	rec, _ := m.controller().Current()
	if rec.ID != "b" {
		t.Errorf("after next, current = %s", rec.ID)
	}

	// Boundary: next from the last record stays put.
	model, cmd = m.Update(key("right"))
	m = drain(t, model.(Model), cmd)
	rec, _ = m.controller().Current()
	if rec.ID != "b" {
		t.Errorf("boundary next moved to %s", rec.ID)
	}
}

func TestEditFlowStoresOptimistically(t *testing.T) {
	m := setupModel(t)
	m = drain(t, m, m.Init())

	model, cmd := m.Update(key("enter"))
	m = drain(t, model.(Model), cmd)

	model, _ = m.Update(key("e"))
	m = model.(Model)
	if m.viewMode != ViewEdit {
		t.Fatalf("viewMode = %d", m.viewMode)
	}
	if len(m.formInputs) == 0 {
		t.Fatal("edit form not initialized")
	}

	// Overwrite the name field.
	m.formInputs[0].SetValue("Maya C.")
	model, _ = m.Update(key("enter"))
	m = model.(Model)

	if m.viewMode != ViewDetail {
		t.Errorf("viewMode after save = %d", m.viewMode)
	}
	rec, _ := m.controller().Current()
	if rec.DisplayName() != "Maya C." {
		t.Errorf("display name = %s", rec.DisplayName())
	}
	// The edit publishes a refresh signal, so other views' next lookup goes
	// back to the network rather than trusting the optimistic copy.
	if _, ok := m.cache.Lookup(m.section(), "a"); ok {
		t.Error("lookup should miss after the edit's refresh signal")
	}
}

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adrata/pipenav/models"
	"github.com/adrata/pipenav/slug"
	"github.com/adrata/pipenav/workingset"
)

// sectionLoadedMsg reports a completed collection load.
type sectionLoadedMsg struct {
	section models.Section
	err     error
}

// resolvedMsg reports a completed slug resolution.
type resolvedMsg struct {
	err error
}

func (m Model) loadSectionCmd(section models.Section) tea.Cmd {
	ctrl := m.controllers[section]
	return func() tea.Msg {
		err := ctrl.LoadCollection(context.Background(), 100)
		return sectionLoadedMsg{section: section, err: err}
	}
}

func (m Model) renderListView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("PIPENAV"))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	if m.searching {
		s.WriteString("Search: " + m.searchInput.View())
		s.WriteString("\n\n")
	}

	s.WriteString(m.renderTable())
	s.WriteString("\n\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		s.WriteString("\n")
	}

	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderTabs() string {
	var rendered []string
	for i, section := range models.Sections() {
		label := strings.ToUpper(string(section))
		if i == m.sectionIdx {
			rendered = append(rendered, tabActiveStyle.Render(label))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderTable() string {
	if !m.loaded[m.section()] {
		return "Loading..."
	}

	set := m.controller().WorkingSet()
	if len(set.Records) == 0 {
		return "No records"
	}

	columns := []table.Column{
		{Title: "Name", Width: 30},
		{Title: "Rank", Width: 6},
		{Title: "Status", Width: 14},
		{Title: "Company", Width: 24},
	}

	var rows []table.Row
	for _, rec := range set.Records {
		rows = append(rows, table.Row{
			rec.DisplayName(),
			rec.Rank(),
			rec.Status(),
			rec.Str("company"),
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(m.height-10),
	)

	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

func (m Model) renderListHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Tab: Switch section",
		"Enter: View record",
		"/: Search",
		"R: Reload",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < len(m.controller().WorkingSet().Records)-1 {
			m.selectedRow++
		}
	case "tab":
		m.sectionIdx = (m.sectionIdx + 1) % len(models.Sections())
		m.selectedRow = 0
		m.err = nil
		if !m.loaded[m.section()] {
			return m, m.loadSectionCmd(m.section())
		}
	case "enter":
		set := m.controller().WorkingSet()
		if m.selectedRow < len(set.Records) {
			rec := set.Records[m.selectedRow]
			m.viewMode = ViewDetail
			m.err = nil
			return m, m.resolveCmd(slug.Build(rec.DisplayName(), rec.ID))
		}
	case "/":
		m.searching = true
		m.searchInput.Focus()
		return m, textinput.Blink
	case "R":
		m.loaded[m.section()] = false
		return m, m.loadSectionCmd(m.section())
	}

	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
		m.searchInput.SetValue("")
		m.controller().SetFilter(workingset.Filter{})
		m.selectedRow = 0
		return m, nil
	case "enter":
		m.searching = false
		m.controller().SetFilter(workingset.Filter{Search: m.searchInput.Value()})
		m.selectedRow = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) resolveCmd(routeSlug string) tea.Cmd {
	ctrl := m.controller()
	return func() tea.Msg {
		return resolvedMsg{err: ctrl.Resolve(context.Background(), routeSlug)}
	}
}

// position renders the "record N of M" indicator for the detail view.
func (m Model) position() string {
	n, total := m.controller().Position()
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("Record %d of %d", n, total)
}

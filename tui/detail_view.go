package tui

import (
	"context"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adrata/pipenav/nav"
	"github.com/adrata/pipenav/slug"
)

var (
	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Width(20)

	fieldValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// detailFields is the display order for well-known record fields. Everything
// else renders after these, unordered.
var detailFields = []struct{ key, label string }{
	{"title", "Title"},
	{"company", "Company"},
	{"email", "Email"},
	{"phone", "Phone"},
	{"status", "Status"},
	{"rank", "Rank"},
	{"industry", "Industry"},
	{"revenue", "Revenue"},
	{"employeeCount", "Employees"},
	{"lastContactedAt", "Last Contacted"},
}

func (m Model) renderDetailView() string {
	var s strings.Builder

	ctrl := m.controller()

	s.WriteString(titleStyle.Render(strings.ToUpper(string(ctrl.Section()))))
	s.WriteString("\n\n")

	switch ctrl.State() {
	case nav.StateResolving, nav.StateFetching:
		// The previous record stays visible while a neighbor resolves; only a
		// first resolution shows a bare loading line.
		if _, ok := ctrl.Current(); !ok {
			s.WriteString("Loading record...")
			s.WriteString("\n\n")
			s.WriteString(m.renderDetailHelp(false))
			return s.String()
		}
	case nav.StateError:
		s.WriteString(errorStyle.Render("Could not load record"))
		s.WriteString("\n")
		if err := ctrl.Err(); err != nil {
			s.WriteString(errorStyle.Render(err.Error()))
			s.WriteString("\n")
		}
		s.WriteString("\n")
		s.WriteString(m.renderDetailHelp(true))
		return s.String()
	}

	rec, ok := ctrl.Current()
	if !ok {
		s.WriteString("No record selected")
		s.WriteString("\n\n")
		s.WriteString(m.renderDetailHelp(false))
		return s.String()
	}

	s.WriteString(m.renderField("Name", rec.DisplayName()))
	for _, f := range detailFields {
		v := rec.Str(f.key)
		if v == "" {
			if n, ok := rec.Num(f.key); ok {
				v = strconv.FormatFloat(n, 'f', -1, 64)
			}
		}
		if v != "" {
			s.WriteString(m.renderField(f.label, v))
		}
	}

	s.WriteString("\n")
	if pos := m.position(); pos != "" {
		s.WriteString(pos)
		s.WriteString("\n")
	}
	// The URL uses the section the record's status implies, which may differ
	// from the tab it was opened under.
	urlSection := rec.ImpliedSection(ctrl.Section())
	s.WriteString(urlStyle.Render("/" + string(urlSection) + "/" + slug.Build(rec.DisplayName(), rec.ID)))
	s.WriteString("\n\n")

	s.WriteString(m.renderDetailHelp(false))

	return s.String()
}

func (m Model) renderField(label, value string) string {
	if value == "" {
		value = "-"
	}
	return fieldLabelStyle.Render(label+":") + " " + fieldValueStyle.Render(value) + "\n"
}

func (m Model) renderDetailHelp(failed bool) string {
	if failed {
		return helpStyle.Render("r: Retry • Esc: Back to list • q: Quit")
	}
	help := []string{
		"←/→: Prev/Next record",
		"e: Edit",
		"Esc: Back",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctrl := m.controller()

	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
		m.err = nil
	case "left", "h":
		return m, func() tea.Msg {
			return resolvedMsg{err: ctrl.Prev(context.Background())}
		}
	case "right", "l":
		return m, func() tea.Msg {
			return resolvedMsg{err: ctrl.Next(context.Background())}
		}
	case "r":
		if ctrl.State() == nav.StateError {
			return m, func() tea.Msg {
				return resolvedMsg{err: ctrl.Retry(context.Background())}
			}
		}
	case "e":
		if _, ok := ctrl.Current(); ok {
			m.viewMode = ViewEdit
			m.initFormInputs()
		}
	}

	return m, nil
}

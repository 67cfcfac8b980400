package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// editableFields is the subset of record fields the TUI edit form exposes.
var editableFields = []struct{ key, placeholder string }{
	{"title", "Title"},
	{"company", "Company"},
	{"email", "Email"},
	{"phone", "Phone"},
	{"rank", "Rank (e.g. 1A)"},
	{"status", "Status (LEAD/PROSPECT/OPPORTUNITY)"},
	{"industry", "Industry"},
}

func (m Model) renderEditView() string {
	var s strings.Builder

	rec, _ := m.controller().Current()
	s.WriteString(titleStyle.Render("EDIT " + rec.DisplayName()))
	s.WriteString("\n\n")

	for i, input := range m.formInputs {
		if i == m.focusIndex {
			s.WriteString("> ")
		} else {
			s.WriteString("  ")
		}
		s.WriteString(input.View())
		s.WriteString("\n")
	}

	s.WriteString("\n")

	if m.err != nil {
		s.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		s.WriteString("\n")
	}

	s.WriteString(m.renderEditHelp())

	return s.String()
}

func (m Model) renderEditHelp() string {
	help := []string{
		"Tab: Next field",
		"Enter: Save",
		"Esc: Cancel",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewDetail
		m.err = nil
		return m, nil
	case "tab":
		m.focusIndex = (m.focusIndex + 1) % len(m.formInputs)
		m.updateFormFocus()
		return m, nil
	case "enter":
		m.saveRecord()
		m.viewMode = ViewDetail
		return m, nil
	}

	var cmd tea.Cmd
	m.formInputs[m.focusIndex], cmd = m.formInputs[m.focusIndex].Update(msg)
	return m, cmd
}

func (m *Model) initFormInputs() {
	rec, _ := m.controller().Current()

	inputs := make([]textinput.Model, 0, len(editableFields)+1)
	keys := make([]string, 0, len(editableFields)+1)

	// The display-name field edits whichever name key the record carries.
	nameKey := "fullName"
	if rec.Str("fullName") == "" && rec.Str("name") != "" {
		nameKey = "name"
	}
	name := textinput.New()
	name.Placeholder = "Name"
	name.CharLimit = 100
	name.SetValue(rec.Str(nameKey))
	inputs = append(inputs, name)
	keys = append(keys, nameKey)

	for _, f := range editableFields {
		input := textinput.New()
		input.Placeholder = f.placeholder
		input.CharLimit = 100
		input.SetValue(rec.Str(f.key))
		inputs = append(inputs, input)
		keys = append(keys, f.key)
	}

	m.formInputs = inputs
	m.formKeys = keys
	m.focusIndex = 0
	m.updateFormFocus()
}

func (m *Model) updateFormFocus() {
	for i := range m.formInputs {
		if i == m.focusIndex {
			m.formInputs[i].Focus()
		} else {
			m.formInputs[i].Blur()
		}
	}
}

// saveRecord applies the form as an optimistic local edit: the updated record
// is written through the cache and a refresh signal goes out to other views.
func (m *Model) saveRecord() {
	ctrl := m.controller()
	rec, ok := ctrl.Current()
	if !ok {
		return
	}

	updated := rec
	updated.Fields = make(map[string]any, len(rec.Fields))
	for k, v := range rec.Fields {
		updated.Fields[k] = v
	}

	for i, key := range m.formKeys {
		value := m.formInputs[i].Value()
		if value == "" {
			delete(updated.Fields, key)
			continue
		}
		// Numeric fields keep their type.
		if _, wasNum := rec.Num(key); wasNum {
			if n, err := strconv.ParseFloat(value, 64); err == nil {
				updated.Fields[key] = n
				continue
			}
		}
		updated.Fields[key] = value
	}

	ctrl.RecordEdited(updated)
}

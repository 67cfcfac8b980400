// ABOUTME: Interactive browse command
// ABOUTME: Launches the full-screen TUI over the configured backend
package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/adrata/pipenav/config"
	"github.com/adrata/pipenav/tui"
)

// BrowseCommand starts the interactive record browser.
func BrowseCommand(cfg *config.Config) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("browse requires a terminal; use 'list' or 'resolve' for scripted output")
	}

	session, err := OpenSession(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	model := tui.NewModel(session.Cache, session.Fetcher, session.Bus)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI failed: %w", err)
	}
	return nil
}

package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive session and blocks until the user quits.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Composer == nil {
		return fmt.Errorf("composer is required")
	}
	if cfg.Controller == nil {
		return fmt.Errorf("query controller is required")
	}

	program := tea.NewProgram(
		newModel(cfg),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}

package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"task-manager/internal/tui"
)

// TUICommand handles the tui command
type TUICommand struct {
	app     *App
	options []tea.ProgramOption
}

// NewTUICommand creates a new tui command handler
func NewTUICommand(app *App, options ...tea.ProgramOption) *TUICommand {
	return &TUICommand{app: app, options: options}
}

// Execute runs the interactive terminal UI until the user quits
func (c *TUICommand) Execute(ctx context.Context, args []string) error {
	if err := tui.Run(ctx, c.app.api, c.app.config, c.app.logger, c.options...); err != nil {
		return c.app.errorHandler.Handle("run terminal UI", err)
	}
	return nil
}

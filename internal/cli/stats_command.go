package cli

import (
	"context"
	"fmt"
)

// StatsCommand handles the stats command
type StatsCommand struct {
	app *App
}

// NewStatsCommand creates a new stats command handler
func NewStatsCommand(app *App) *StatsCommand {
	return &StatsCommand{app: app}
}

// Execute prints task counts
func (c *StatsCommand) Execute(ctx context.Context, args []string) error {
	stats, err := c.app.api.Stats(ctx)
	if err != nil {
		return c.app.errorHandler.Handle("summarize tasks", err)
	}

	fmt.Fprintf(c.app.out, "Total:     %d\n", stats.Total)
	fmt.Fprintf(c.app.out, "Pending:   %d\n", stats.Pending)
	fmt.Fprintf(c.app.out, "Completed: %d\n", stats.Completed)
	fmt.Fprintf(c.app.out, "Overdue:   %d\n", stats.Overdue)
	return nil
}

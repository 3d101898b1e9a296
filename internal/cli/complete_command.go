package cli

import (
	"context"
	"fmt"
	"strings"
)

// CompleteCommand handles the complete command
type CompleteCommand struct {
	app *App
}

// NewCompleteCommand creates a new complete command handler
func NewCompleteCommand(app *App) *CompleteCommand {
	return &CompleteCommand{app: app}
}

// Execute marks every task with exactly the given name as completed
func (c *CompleteCommand) Execute(ctx context.Context, args []string) error {
	name := strings.Join(args, " ")

	n, err := c.app.api.CompleteTask(ctx, name)
	if err != nil {
		return c.app.errorHandler.Handle("complete task", err)
	}

	if n == 0 {
		fmt.Fprintf(c.app.out, "No task named %q found.\n", name)
		return nil
	}
	fmt.Fprintf(c.app.out, "Marked %d task(s) named %q as completed.\n", n, name)
	return nil
}

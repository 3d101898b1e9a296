package cli

import (
	"context"
	"fmt"
	"strings"
)

// DeleteCommand handles the delete command
type DeleteCommand struct {
	app *App
}

// NewDeleteCommand creates a new delete command handler
func NewDeleteCommand(app *App) *DeleteCommand {
	return &DeleteCommand{app: app}
}

// Execute removes every task with exactly the given name
func (c *DeleteCommand) Execute(ctx context.Context, args []string) error {
	name := strings.Join(args, " ")

	n, err := c.app.api.DeleteTask(ctx, name)
	if err != nil {
		return c.app.errorHandler.Handle("delete task", err)
	}

	if n == 0 {
		fmt.Fprintf(c.app.out, "No task named %q found.\n", name)
		return nil
	}
	fmt.Fprintf(c.app.out, "Deleted %d task(s) named %q.\n", n, name)
	return nil
}

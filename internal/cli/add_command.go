package cli

import (
	"context"
	"fmt"
	"strings"

	"task-manager/internal/domain"
	"task-manager/internal/validation"
)

// AddCommand handles the add command
type AddCommand struct {
	app      *App
	Due      string
	Priority string
}

// NewAddCommand creates a new add command handler. Due defaults to today and
// priority to Low.
func NewAddCommand(app *App) *AddCommand {
	return &AddCommand{app: app, Priority: domain.PriorityLow.String()}
}

// Execute adds one task named by the joined arguments
func (c *AddCommand) Execute(ctx context.Context, args []string) error {
	name := strings.Join(args, " ")

	due := strings.TrimSpace(c.Due)
	if due == "" {
		due = validation.Today()
	}

	task, err := c.app.api.AddTask(ctx, name, due, normalizePriority(c.Priority))
	if err != nil {
		return c.app.errorHandler.Handle("add task", err)
	}

	fmt.Fprintf(c.app.out, "Added task %q (due %s, priority %s)\n",
		task.Name, c.app.formatDueDate(domain.FormatDueDate(task.DueDate)), task.Priority)
	return nil
}

// normalizePriority maps case-insensitive input such as "high" onto the
// canonical priority name. Unknown values pass through for validation to reject.
func normalizePriority(s string) string {
	s = strings.TrimSpace(s)
	for _, p := range domain.Priorities() {
		if strings.EqualFold(s, p.String()) {
			return p.String()
		}
	}
	return s
}

// normalizeStatus does the same for statuses
func normalizeStatus(s string) string {
	s = strings.TrimSpace(s)
	for _, st := range domain.Statuses() {
		if strings.EqualFold(s, st.String()) {
			return st.String()
		}
	}
	return s
}

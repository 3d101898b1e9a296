package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"task-manager/internal/domain"
	"task-manager/internal/errors"
	"task-manager/internal/report"
)

const (
	listFormatTable = "table"
	listFormatJSON  = "json"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle      = lipgloss.NewStyle().Padding(0, 1)
	completedStyle = cellStyle.Faint(true)
)

// ListCommand handles the list command
type ListCommand struct {
	app      *App
	Status   string
	Priority string
	Search   string
	Format   string
}

// NewListCommand creates a new list command handler
func NewListCommand(app *App) *ListCommand {
	return &ListCommand{app: app, Format: listFormatTable}
}

// Execute prints the task list, optionally filtered
func (c *ListCommand) Execute(ctx context.Context, args []string) error {
	opts, err := c.options(args)
	if err != nil {
		return c.app.errorHandler.Handle("list tasks", err)
	}

	records, err := c.app.api.ListTasks(ctx, opts)
	if err != nil {
		return c.app.errorHandler.Handle("list tasks", err)
	}

	switch strings.ToLower(strings.TrimSpace(c.Format)) {
	case "", listFormatTable:
		if len(records) == 0 {
			fmt.Fprintln(c.app.out, "No tasks found.")
			return nil
		}
		fmt.Fprintln(c.app.out, c.renderTable(records))
		return nil
	case listFormatJSON:
		if err := report.WriteJSON(c.app.out, records); err != nil {
			return c.app.errorHandler.Handle("list tasks", err)
		}
		return nil
	default:
		return c.app.errorHandler.Handle("list tasks",
			errors.NewInvalidInputError("format", c.Format, "must be table or json"))
	}
}

// options builds the filter. A positional argument is treated as a search term
// when --search is not given.
func (c *ListCommand) options(args []string) (domain.ListOptions, error) {
	var opts domain.ListOptions

	if c.Status != "" {
		status, err := domain.ParseStatus(normalizeStatus(c.Status))
		if err != nil {
			return opts, err
		}
		opts.Status = &status
	}

	if c.Priority != "" {
		priority, err := domain.ParsePriority(normalizePriority(c.Priority))
		if err != nil {
			return opts, err
		}
		opts.Priority = &priority
	}

	search := c.Search
	if search == "" && len(args) > 0 {
		search = strings.Join(args, " ")
	}
	if search != "" {
		opts.NameContains = &search
	}
	return opts, nil
}

func (c *ListCommand) renderTable(records []domain.Record) string {
	rows := make([][]string, 0, len(records))
	for i, r := range records {
		rows = append(rows, []string{strconv.Itoa(i + 1), r.Task, c.app.formatDueDate(r.DueDate), r.Priority, r.Status})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(append([]string{"#"}, report.Header...)...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row >= 0 && row < len(records) && records[row].Status == domain.StatusCompleted.String() {
				return completedStyle
			}
			return cellStyle
		}).
		Render()
}

package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"task-manager/internal/domain"
	"task-manager/internal/errors"
	"task-manager/internal/report"
)

// ExportCommand handles the export command
type ExportCommand struct {
	app    *App
	Format string
	Output string
}

// NewExportCommand creates a new export command handler
func NewExportCommand(app *App) *ExportCommand {
	return &ExportCommand{app: app, Format: string(report.FormatCSV)}
}

// Execute writes every task in the requested format to --output or stdout
func (c *ExportCommand) Execute(ctx context.Context, args []string) error {
	format, err := report.ParseFormat(c.Format)
	if err != nil {
		return c.app.errorHandler.Handle("export tasks", err)
	}

	records, err := c.app.api.ListTasks(ctx, domain.ListOptions{})
	if err != nil {
		return c.app.errorHandler.Handle("export tasks", err)
	}

	if c.Output == "" {
		if err := report.Write(c.app.out, format, records, time.Now()); err != nil {
			return c.app.errorHandler.Handle("export tasks", err)
		}
		return nil
	}

	if err := c.writeFile(format, records); err != nil {
		return c.app.errorHandler.Handle("export tasks", err)
	}
	fmt.Fprintf(c.app.out, "Exported %d task(s) to %s\n", len(records), c.Output)
	return nil
}

func (c *ExportCommand) writeFile(format report.Format, records []domain.Record) (err error) {
	f, err := os.Create(c.Output)
	if err != nil {
		if os.IsPermission(err) {
			return errors.NewPermissionError("write", c.Output)
		}
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return report.Write(f, format, records, time.Now())
}

package cli

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"task-manager/internal/api"
	"task-manager/internal/config"
	"task-manager/internal/logging"
)

// App carries the dependencies every command handler needs
type App struct {
	api          api.API
	config       *config.Config
	logger       *log.Logger
	out          io.Writer
	errorHandler *ErrorHandler
}

// NewAppWithConfig creates a new CLI application instance with dependency injection
func NewAppWithConfig(a api.API, cfg *config.Config, logger *log.Logger, out io.Writer) *App {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if out == nil {
		out = os.Stdout
	}
	return &App{
		api:          a,
		config:       cfg,
		logger:       logger,
		out:          out,
		errorHandler: NewErrorHandler(logger),
	}
}

// formatDueDate renders a persisted YYYY-MM-DD date with the configured display layout.
// Dates that do not parse are shown as stored.
func (a *App) formatDueDate(value string) string {
	layout := a.config.Display.DateFormat
	if layout == "" || layout == "2006-01-02" {
		return value
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return value
	}
	return t.Format(layout)
}

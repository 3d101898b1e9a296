package cli

import (
	"context"
	"fmt"

	"task-manager/internal/web"
)

// ServeCommand handles the serve command
type ServeCommand struct {
	app  *App
	Addr string
}

// NewServeCommand creates a new serve command handler
func NewServeCommand(app *App) *ServeCommand {
	return &ServeCommand{app: app}
}

// Execute runs the web front end until ctx is cancelled
func (c *ServeCommand) Execute(ctx context.Context, args []string) error {
	cfg := *c.app.config
	if c.Addr != "" {
		cfg.Server.Addr = c.Addr
	}

	server := web.NewServer(c.app.api, &cfg, c.app.logger)
	fmt.Fprintf(c.app.out, "Serving tasks on http://%s (Ctrl+C to stop)\n", server.Addr())
	if err := server.ListenAndServe(ctx); err != nil {
		return c.app.errorHandler.Handle("serve", err)
	}
	return nil
}

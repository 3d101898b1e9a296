package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"task-manager/internal/api"
	"task-manager/internal/config"
	"task-manager/internal/report"
)

// Runtime is what a bootstrap hands back once configuration is known: the API
// the commands drive and a hook to release the store.
type Runtime struct {
	API    api.API
	Logger *log.Logger
	Close  func() error
}

// Bootstrap builds the runtime from the effective configuration. cmd/tm wires the
// store factory, TaskManager and API here; tests inject fakes.
type Bootstrap func(ctx context.Context, cfg *config.Config) (*Runtime, error)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd       *cobra.Command
	bootstrap Bootstrap
	out       io.Writer
	config    *config.Config
	runtime   *Runtime
	app       *App
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(bootstrap Bootstrap, out io.Writer) *RootCommand {
	if out == nil {
		out = os.Stdout
	}
	root := &RootCommand{
		bootstrap: bootstrap,
		out:       out,
	}

	root.cmd = &cobra.Command{
		Use:   "tm",
		Short: "A single-user task manager",
		Long: `Task Manager (tm) keeps a list of tasks with a due date, a priority and a status,
saved to a JSON file between runs.

FEATURES:
  • Add tasks with a due date and a Low, Medium or High priority
  • List and filter tasks by status, priority or name
  • Complete or delete every task with a given name
  • Export to CSV, JSON or PDF
  • Browser front end (tm serve) and terminal UI (tm tui)

EXAMPLES:
  tm add "Buy milk" --due 2025-06-01 --priority High
  tm list                                  # All tasks in the order they were added
  tm list --status pending --priority high # Filtered view
  tm complete "Buy milk"                   # Marks every task named "Buy milk" as completed
  tm delete "Buy milk"                     # Removes every task named "Buy milk"
  tm export --format pdf --output tasks.pdf
  tm serve --addr 127.0.0.1:8501
  tm tui

CONFIGURATION:
  Configuration follows this priority order: command-line flags > environment variables > config file > defaults

  Config file (YAML or TOML):
    TM_CONFIG                              Path to a .yaml, .yml or .toml file (or --config)

  Storage Configuration:
    TM_STORAGE_DIR                         Directory holding the task list (default: .)
    TM_STORAGE_FILENAME                    Task list filename (default: tasks.json)
    TM_STORAGE_BACKEND                     json or sqlite (default: json)
    TM_STORAGE_FILE_PERMISSIONS            Octal file mode (default: 0644)

  Validation Configuration:
    TM_VALIDATION_TASK_NAME_MIN            Min task name length (default: 1)
    TM_VALIDATION_TASK_NAME_MAX            Max task name length (default: 255)
    TM_VALIDATION_ALLOW_PAST_DUE           Accept due dates before today (default: false)

  Display and Server Configuration:
    TM_DISPLAY_DATE_FORMAT                 Go layout for due dates in tables (default: 2006-01-02)
    TM_SERVER_ADDR                         Listen address for tm serve (default: 127.0.0.1:8501)

  Logging and Application Configuration:
    TM_LOG_LEVEL                           debug, info, warn or error (default: info)
    TM_LOG_FORMAT                          text, json or logfmt (default: text)
    TM_DEBUG                               Force debug logging when set
    TM_APP_TIMEOUT                         Timeout for one command (default: 30s)
    TM_APP_VERBOSE                         Enable verbose output (default: false)

GETTING HELP:
  tm [command] --help                      # Get help for any specific command
  tm completion bash                       # Generate bash completion script`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.setup(cmd.Context())
		},
	}
	root.cmd.SetOut(out)

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Execute runs the root command and releases the store afterwards
func (r *RootCommand) Execute(ctx context.Context) error {
	defer r.close()
	return r.cmd.ExecuteContext(ctx)
}

// SetArgs overrides the command line, for tests
func (r *RootCommand) SetArgs(args []string) {
	r.cmd.SetArgs(args)
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("config", "", "Config file, .yaml/.yml/.toml (overrides TM_CONFIG)")

	// Storage configuration
	flags.String("storage-dir", "", "Directory holding the task list (overrides TM_STORAGE_DIR)")
	flags.String("storage-file", "", "Task list filename (overrides TM_STORAGE_FILENAME)")
	flags.String("backend", "", "Storage backend, json or sqlite (overrides TM_STORAGE_BACKEND)")

	// Validation configuration
	flags.Bool("allow-past-due", false, "Accept due dates before today (overrides TM_VALIDATION_ALLOW_PAST_DUE)")

	// Logging configuration
	flags.String("log-level", "", "Log level (overrides TM_LOG_LEVEL)")
	flags.String("log-format", "", "Log format, text, json or logfmt (overrides TM_LOG_FORMAT)")

	// Application configuration
	flags.Duration("app-timeout", 0, "Timeout for one command (overrides TM_APP_TIMEOUT)")
	flags.Bool("verbose", false, "Enable verbose output (overrides TM_APP_VERBOSE)")
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	// Add command
	var addDue, addPriority string
	addCmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a task",
		Long: `Add a pending task. Words are joined with spaces to form the name.

The due date must be YYYY-MM-DD and not before today; it defaults to today.
Priority is Low, Medium or High (any case); it defaults to Low.

Examples:
  tm add Buy milk
  tm add "Write report" --due 2025-06-05 --priority high`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()

			handler := NewAddCommand(r.app)
			handler.Due = addDue
			if addPriority != "" {
				handler.Priority = addPriority
			}
			return handler.Execute(ctx, args)
		},
	}
	addCmd.Flags().StringVarP(&addDue, "due", "d", "", "Due date, YYYY-MM-DD (default: today)")
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "", "Low, Medium or High (default: Low)")

	// List command
	var listStatus, listPriority, listSearch, listFormat string
	listCmd := &cobra.Command{
		Use:     "list [text]",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Long: `List tasks in the order they were added.

Text arguments filter by name (case-insensitive partial matching), as does --search.

Examples:
  tm list
  tm list milk
  tm list --status completed
  tm list --priority high --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()

			handler := NewListCommand(r.app)
			handler.Status = listStatus
			handler.Priority = listPriority
			handler.Search = listSearch
			if listFormat != "" {
				handler.Format = listFormat
			}
			return handler.Execute(ctx, args)
		},
	}
	listCmd.Flags().StringVarP(&listStatus, "status", "s", "", "Only tasks with this status (pending or completed)")
	listCmd.Flags().StringVarP(&listPriority, "priority", "p", "", "Only tasks with this priority")
	listCmd.Flags().StringVar(&listSearch, "search", "", "Only tasks whose name contains this text")
	listCmd.Flags().StringVarP(&listFormat, "format", "f", "", "Output format, table or json (default: table)")

	// Complete command
	completeCmd := &cobra.Command{
		Use:     "complete NAME",
		Aliases: []string{"done"},
		Short:   "Mark tasks as completed",
		Long:    "Mark every task whose name is exactly NAME as completed. A name that matches nothing is not an error.",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()

			return NewCompleteCommand(r.app).Execute(ctx, args)
		},
	}

	// Delete command
	deleteCmd := &cobra.Command{
		Use:     "delete NAME",
		Aliases: []string{"rm"},
		Short:   "Delete tasks",
		Long: `Delete every task whose name is exactly NAME.

This operation cannot be undone. A name that matches nothing is not an error.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()

			return NewDeleteCommand(r.app).Execute(ctx, args)
		},
	}

	// Export command
	var exportFormat, exportOutput string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks",
		Long: fmt.Sprintf(`Export every task in the specified format.

Supported formats: %s

Examples:
  tm export > tasks.csv
  tm export --format pdf --output tasks.pdf`, formatList()),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()

			handler := NewExportCommand(r.app)
			if exportFormat != "" {
				handler.Format = exportFormat
			}
			handler.Output = exportOutput
			return handler.Execute(ctx, args)
		},
	}
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "csv, json or pdf (default: csv)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to this file instead of stdout")

	// Stats command
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show task counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := r.commandContext(cmd)
			defer cancel()

			return NewStatsCommand(r.app).Execute(ctx, args)
		},
	}

	// Serve and tui run until interrupted, so they get no timeout
	var serveAddr string
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser front end",
		Long:  "Serve the task list over HTTP. The JSON list is also available at /api/tasks.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := NewServeCommand(r.app)
			handler.Addr = serveAddr
			return handler.Execute(cmd.Context(), args)
		},
	}
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides TM_SERVER_ADDR)")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewTUICommand(r.app).Execute(cmd.Context(), args)
		},
	}

	r.cmd.AddCommand(
		addCmd,
		listCmd,
		completeCmd,
		deleteCmd,
		exportCmd,
		statsCmd,
		serveCmd,
		tuiCmd,
	)
}

// setup loads configuration, applies flag overrides and bootstraps the runtime
func (r *RootCommand) setup(ctx context.Context) error {
	cfg, err := config.NewLoader().LoadWithOverrides(r.overridesFromFlags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if r.bootstrap == nil {
		return fmt.Errorf("no bootstrap configured")
	}
	rt, err := r.bootstrap(ctx, cfg)
	if err != nil {
		return err
	}

	r.config = cfg
	r.runtime = rt
	r.app = NewAppWithConfig(rt.API, cfg, rt.Logger, r.out)
	return nil
}

func (r *RootCommand) close() {
	if r.runtime == nil || r.runtime.Close == nil {
		return
	}
	if err := r.runtime.Close(); err != nil && r.runtime.Logger != nil {
		r.runtime.Logger.Warn("close store", "err", err)
	}
	r.runtime = nil
}

// commandContext applies the configured application timeout
func (r *RootCommand) commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), r.getAppTimeout())
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.config != nil && r.config.Application.Timeout > 0 {
		return r.config.Application.Timeout
	}
	return 30 * time.Second
}

// overridesFromFlags collects the global flags the user actually set
func (r *RootCommand) overridesFromFlags() *config.ConfigOverrides {
	flags := r.cmd.PersistentFlags()

	overrides := &config.ConfigOverrides{
		ConfigFile:      changedString(flags, "config"),
		StorageDir:      changedString(flags, "storage-dir"),
		StorageFilename: changedString(flags, "storage-file"),
		StorageBackend:  changedString(flags, "backend"),
		LogLevel:        changedString(flags, "log-level"),
		LogFormat:       changedString(flags, "log-format"),
		AllowPastDue:    changedBool(flags, "allow-past-due"),
		Verbose:         changedBool(flags, "verbose"),
	}
	if flags.Changed("app-timeout") {
		if timeout, err := flags.GetDuration("app-timeout"); err == nil {
			overrides.Timeout = &timeout
		}
	}
	return overrides
}

func changedString(flags *pflag.FlagSet, name string) *string {
	if !flags.Changed(name) {
		return nil
	}
	value, err := flags.GetString(name)
	if err != nil {
		return nil
	}
	return &value
}

func changedBool(flags *pflag.FlagSet, name string) *bool {
	if !flags.Changed(name) {
		return nil
	}
	value, err := flags.GetBool(name)
	if err != nil {
		return nil
	}
	return &value
}

func formatList() string {
	names := make([]string, 0, len(report.Formats()))
	for _, f := range report.Formats() {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

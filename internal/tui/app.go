// Package tui is the interactive terminal front end. It follows the
// bubbletea model: Update turns key presses and API results into state,
// View renders that state.
package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"

	"task-manager/internal/api"
	"task-manager/internal/config"
	"task-manager/internal/domain"
	"task-manager/internal/errors"
	"task-manager/internal/logging"
	"task-manager/internal/validation"
)

// appState represents which screen we're on
type appState int

const (
	stateMainMenu appState = iota
	stateAddTask
	stateViewTasks
	stateCompleteTask
	stateDeleteTask
)

const (
	menuAdd      = "Add Task"
	menuView     = "View Tasks"
	menuComplete = "Complete Task"
	menuDelete   = "Delete Task"
	menuExit     = "Exit"
)

const (
	fieldName = iota
	fieldDueDate
	fieldPriority
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")).MarginBottom(1)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#3FA34D")).MarginTop(1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).MarginTop(1)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).MarginTop(1)
	labelStyle  = lipgloss.NewStyle().Bold(true)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	headerStyle = cellStyle.Bold(true)
)

type tasksLoadedMsg struct {
	tasks []domain.Task
	stats *api.Stats
	err   error
}

type taskAddedMsg struct {
	task *domain.Task
	err  error
}

type taskChangedMsg struct {
	state appState
	name  string
	n     int
	err   error
}

// menuItem implements list.Item for the main menu
type menuItem struct {
	title string
	desc  string
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

// taskItem implements list.Item for the complete and delete pickers
type taskItem struct {
	task domain.Task
}

func (i taskItem) Title() string { return i.task.Name }
func (i taskItem) Description() string {
	return fmt.Sprintf("%s · %s · %s", domain.FormatDueDate(i.task.DueDate), i.task.Priority, i.task.Status)
}
func (i taskItem) FilterValue() string { return i.task.Name }

// App is the bubbletea model for the task manager.
type App struct {
	state  appState
	ctx    context.Context
	api    api.API
	config *config.Config
	logger *log.Logger

	mainMenu list.Model
	picker   list.Model
	inputs   []textinput.Model
	focus    int

	tasks     []domain.Task
	stats     *api.Stats
	statusMsg string
	err       error

	width  int
	height int
}

// NewApp creates the model. ctx bounds every API call it makes.
func NewApp(ctx context.Context, a api.API, cfg *config.Config, logger *log.Logger) *App {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	mainMenu := list.New(buildMainMenu(), list.NewDefaultDelegate(), 60, 16)
	mainMenu.Title = "Task Manager"
	mainMenu.SetShowStatusBar(false)
	mainMenu.SetFilteringEnabled(false)
	mainMenu.DisableQuitKeybindings()

	picker := list.New(nil, list.NewDefaultDelegate(), 60, 16)
	picker.SetShowStatusBar(false)
	picker.DisableQuitKeybindings()

	return &App{
		state:    stateMainMenu,
		ctx:      ctx,
		api:      a,
		config:   cfg,
		logger:   logger.WithPrefix("tui"),
		mainMenu: mainMenu,
		picker:   picker,
		inputs:   newInputs(cfg),
		width:    80,
		height:   24,
	}
}

func buildMainMenu() []list.Item {
	return []list.Item{
		menuItem{title: menuAdd, desc: "Create a new task"},
		menuItem{title: menuView, desc: "Show every task with its status"},
		menuItem{title: menuComplete, desc: "Mark a pending task as completed"},
		menuItem{title: menuDelete, desc: "Remove a task"},
		menuItem{title: menuExit, desc: "Quit"},
	}
}

func newInputs(cfg *config.Config) []textinput.Model {
	inputs := make([]textinput.Model, 3)

	inputs[fieldName] = textinput.New()
	inputs[fieldName].Placeholder = "Buy milk"
	inputs[fieldName].CharLimit = cfg.Validation.TaskNameMaxLength
	inputs[fieldName].Prompt = "Task name: "

	inputs[fieldDueDate] = textinput.New()
	inputs[fieldDueDate].Placeholder = "YYYY-MM-DD"
	inputs[fieldDueDate].CharLimit = len(domain.DueDateLayout)
	inputs[fieldDueDate].Prompt = "Due date:  "

	inputs[fieldPriority] = textinput.New()
	inputs[fieldPriority].Placeholder = "Low, Medium or High"
	inputs[fieldPriority].CharLimit = 6
	inputs[fieldPriority].Prompt = "Priority:  "

	return inputs
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.mainMenu.SetSize(max(0, msg.Width-4), max(0, msg.Height-6))
		a.picker.SetSize(max(0, msg.Width-4), max(0, msg.Height-6))
		return a, nil

	case tasksLoadedMsg:
		return a.handleTasksLoaded(msg)

	case taskAddedMsg:
		return a.handleTaskAdded(msg)

	case taskChangedMsg:
		return a.handleTaskChanged(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			switch a.state {
			case stateMainMenu:
				return a, tea.Quit
			case stateViewTasks:
				return a.returnToMainMenu()
			}
		case "esc":
			if a.state != stateMainMenu && !a.picker.SettingFilter() {
				return a.returnToMainMenu()
			}
		case "enter":
			switch a.state {
			case stateMainMenu:
				return a.handleMainMenuSelection()
			case stateAddTask:
				if a.focus == len(a.inputs)-1 {
					return a.submitAddForm()
				}
				return a, a.setFocus(a.focus + 1)
			case stateCompleteTask, stateDeleteTask:
				if !a.picker.SettingFilter() {
					return a.applySelection()
				}
			case stateViewTasks:
				return a.returnToMainMenu()
			}
		case "ctrl+s":
			if a.state == stateAddTask {
				return a.submitAddForm()
			}
		case "tab", "down":
			if a.state == stateAddTask {
				return a, a.setFocus((a.focus + 1) % len(a.inputs))
			}
		case "shift+tab", "up":
			if a.state == stateAddTask {
				return a, a.setFocus((a.focus + len(a.inputs) - 1) % len(a.inputs))
			}
		}
	}

	var cmd tea.Cmd
	switch a.state {
	case stateMainMenu:
		a.mainMenu, cmd = a.mainMenu.Update(msg)
	case stateAddTask:
		a.inputs[a.focus], cmd = a.inputs[a.focus].Update(msg)
	case stateCompleteTask, stateDeleteTask:
		a.picker, cmd = a.picker.Update(msg)
	}
	return a, cmd
}

// handleMainMenuSelection processes menu item selection
func (a *App) handleMainMenuSelection() (tea.Model, tea.Cmd) {
	item, ok := a.mainMenu.SelectedItem().(menuItem)
	if !ok {
		return a, nil
	}
	a.statusMsg = ""
	a.err = nil

	switch item.title {
	case menuAdd:
		a.state = stateAddTask
		a.resetForm()
		return a, a.setFocus(fieldName)
	case menuView:
		a.state = stateViewTasks
		return a, a.loadTasks()
	case menuComplete:
		a.state = stateCompleteTask
		a.picker.Title = "Select a task to mark as completed"
		return a, a.loadTasks()
	case menuDelete:
		a.state = stateDeleteTask
		a.picker.Title = "Select a task to delete"
		return a, a.loadTasks()
	case menuExit:
		return a, tea.Quit
	}
	return a, nil
}

func (a *App) returnToMainMenu() (tea.Model, tea.Cmd) {
	a.state = stateMainMenu
	for i := range a.inputs {
		a.inputs[i].Blur()
	}
	return a, nil
}

func (a *App) resetForm() {
	for i := range a.inputs {
		a.inputs[i].Reset()
	}
	a.inputs[fieldDueDate].SetValue(validation.Today())
	a.inputs[fieldPriority].SetValue(domain.PriorityLow.String())
}

func (a *App) setFocus(index int) tea.Cmd {
	a.focus = index
	var cmd tea.Cmd
	for i := range a.inputs {
		if i == index {
			cmd = a.inputs[i].Focus()
			continue
		}
		a.inputs[i].Blur()
	}
	return cmd
}

func (a *App) submitAddForm() (tea.Model, tea.Cmd) {
	name := a.inputs[fieldName].Value()
	due := strings.TrimSpace(a.inputs[fieldDueDate].Value())
	priority := normalizePriority(a.inputs[fieldPriority].Value())

	return a, func() tea.Msg {
		task, err := a.api.AddTask(a.ctx, name, due, priority)
		return taskAddedMsg{task: task, err: err}
	}
}

func (a *App) applySelection() (tea.Model, tea.Cmd) {
	item, ok := a.picker.SelectedItem().(taskItem)
	if !ok {
		return a, nil
	}

	state := a.state
	id := item.task.ID.String()
	name := item.task.Name
	return a, func() tea.Msg {
		var (
			n   int
			err error
		)
		if state == stateCompleteTask {
			n, err = a.api.CompleteTaskByID(a.ctx, id)
		} else {
			n, err = a.api.DeleteTaskByID(a.ctx, id)
		}
		return taskChangedMsg{state: state, name: name, n: n, err: err}
	}
}

func (a *App) loadTasks() tea.Cmd {
	return func() tea.Msg {
		tasks, err := a.api.Tasks(a.ctx)
		if err != nil {
			return tasksLoadedMsg{err: err}
		}
		stats, err := a.api.Stats(a.ctx)
		return tasksLoadedMsg{tasks: tasks, stats: stats, err: err}
	}
}

func (a *App) handleTasksLoaded(msg tasksLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.fail(msg.err)
		return a, nil
	}
	a.tasks = msg.tasks
	a.stats = msg.stats

	items := make([]list.Item, 0, len(msg.tasks))
	for _, t := range msg.tasks {
		if a.state == stateCompleteTask && t.IsCompleted() {
			continue
		}
		items = append(items, taskItem{task: t})
	}
	return a, a.picker.SetItems(items)
}

func (a *App) handleTaskAdded(msg taskAddedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.fail(msg.err)
		return a, nil
	}
	a.err = nil
	a.statusMsg = fmt.Sprintf("Added task %q.", msg.task.Name)
	return a.returnToMainMenu()
}

func (a *App) handleTaskChanged(msg taskChangedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		a.fail(msg.err)
		return a, nil
	}

	a.err = nil
	switch {
	case msg.n == 0:
		a.statusMsg = fmt.Sprintf("Task %q no longer exists.", msg.name)
	case msg.state == stateCompleteTask:
		a.statusMsg = fmt.Sprintf("Marked %q as completed.", msg.name)
	default:
		a.statusMsg = fmt.Sprintf("Deleted %q.", msg.name)
	}
	return a.returnToMainMenu()
}

func (a *App) fail(err error) {
	a.err = err
	a.statusMsg = ""
	if !validation.IsValidationError(err) && errors.ShouldLogError(err) {
		a.logger.Error("operation failed", "code", errors.GetErrorCode(err), "err", err)
	}
}

// View renders the current screen.
func (a *App) View() string {
	var body string
	switch a.state {
	case stateMainMenu:
		body = a.mainMenu.View()
	case stateAddTask:
		body = a.renderForm()
	case stateViewTasks:
		body = a.renderTasks()
	case stateCompleteTask, stateDeleteTask:
		body = a.renderPicker()
	}

	sections := []string{body}
	if a.err != nil {
		sections = append(sections, errorStyle.Render(userMessage(a.err)))
	} else if a.statusMsg != "" {
		sections = append(sections, statusStyle.Render(a.statusMsg))
	}
	sections = append(sections, hintStyle.Render(a.hint()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) renderForm() string {
	lines := []string{titleStyle.Render("Add task")}
	for i := range a.inputs {
		lines = append(lines, a.inputs[i].View())
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderTasks() string {
	title := titleStyle.Render("Tasks")
	if len(a.tasks) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, "No tasks found.")
	}

	rows := make([][]string, 0, len(a.tasks))
	for i, t := range a.tasks {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			t.Name,
			formatDate(a.config, t),
			t.Priority.String(),
			t.Status.String(),
		})
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))).
		Headers("#", "Task", "Due Date", "Priority", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	summary := ""
	if a.stats != nil {
		summary = fmt.Sprintf("%s %d   %s %d   %s %d   %s %d",
			labelStyle.Render("Total:"), a.stats.Total,
			labelStyle.Render("Pending:"), a.stats.Pending,
			labelStyle.Render("Completed:"), a.stats.Completed,
			labelStyle.Render("Overdue:"), a.stats.Overdue)
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, tbl.Render(), summary)
}

func (a *App) renderPicker() string {
	if len(a.picker.Items()) == 0 {
		empty := "No tasks to delete."
		if a.state == stateCompleteTask {
			empty = "No pending tasks."
		}
		return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(a.picker.Title), empty)
	}
	return a.picker.View()
}

func (a *App) hint() string {
	switch a.state {
	case stateAddTask:
		return "Tab → next field    Enter on priority or Ctrl+S → save    Esc → back"
	case stateViewTasks:
		return "Esc, q or Enter → back"
	case stateCompleteTask, stateDeleteTask:
		return "Enter → select    / → filter    Esc → back"
	default:
		return "Enter → select    q → quit"
	}
}

func formatDate(cfg *config.Config, t domain.Task) string {
	if cfg.Display.DateFormat == "" {
		return domain.FormatDueDate(t.DueDate)
	}
	return t.DueDate.Format(cfg.Display.DateFormat)
}

func userMessage(err error) string {
	if ve, ok := validation.AsValidationError(err); ok {
		return ve.GetUserFriendlyMessage()
	}
	return errors.GetUserMessage(err)
}

func normalizePriority(s string) string {
	s = strings.TrimSpace(s)
	for _, p := range domain.Priorities() {
		if strings.EqualFold(s, p.String()) {
			return p.String()
		}
	}
	return s
}

// Run starts the full-screen program and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, a api.API, cfg *config.Config, logger *log.Logger, opts ...tea.ProgramOption) error {
	if len(opts) == 0 && !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	options := append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	program := tea.NewProgram(NewApp(ctx, a, cfg, logger), options...)
	_, err := program.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

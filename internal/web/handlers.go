package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"task-manager/internal/api"
	"task-manager/internal/domain"
	"task-manager/internal/errors"
	"task-manager/internal/report"
	"task-manager/internal/validation"
)

// timeNow is replaced in tests
var timeNow = time.Now

type taskRow struct {
	ID        string
	Name      string
	DueDate   string
	Priority  string
	Status    string
	Completed bool
	Overdue   bool
}

type pageData struct {
	Title string
	Flash string
	Error string
}

type tasksPage struct {
	pageData
	Tasks []taskRow
	Stats *api.Stats
}

type taskForm struct {
	Name     string
	DueDate  string
	Priority string
}

type newTaskPage struct {
	pageData
	Form          taskForm
	Errors        map[string]string
	Priorities    []string
	MinDate       string
	MaxNameLength int
}

type selectPage struct {
	pageData
	Action string
	Button string
	Empty  string
	Tasks  []taskRow
}

// action is one of the two operations the select pages drive
type action struct {
	path    string
	title   string
	button  string
	empty   string
	verb    string
	pending bool
	byID    func(a api.API, ctx context.Context, id string) (int, error)
	byName  func(a api.API, ctx context.Context, name string) (int, error)
}

var completeAction = action{
	path:    "/tasks/complete",
	title:   "Complete task",
	button:  "Mark as completed",
	empty:   "No pending tasks.",
	verb:    "Marked %d task(s) as completed.",
	pending: true,
	byID:    api.API.CompleteTaskByID,
	byName:  api.API.CompleteTask,
}

var deleteAction = action{
	path:   "/tasks/delete",
	title:  "Delete task",
	button: "Delete",
	empty:  "No tasks to delete.",
	verb:   "Deleted %d task(s).",
	byID:   api.API.DeleteTaskByID,
	byName: api.API.DeleteTask,
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tasks, err := s.api.Tasks(ctx)
	if err != nil {
		s.writeErr(w, http.StatusInternalServerError, err)
		return
	}
	stats, err := s.api.Stats(ctx)
	if err != nil {
		s.writeErr(w, http.StatusInternalServerError, err)
		return
	}

	s.render(w, http.StatusOK, "tasks", tasksPage{
		pageData: flashFrom(r, "Tasks"),
		Tasks:    rows(tasks, false),
		Stats:    stats,
	})
}

func (s *Server) handleNewTask(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "new", s.newTaskPage(r, taskForm{
		DueDate:  validation.Today(),
		Priority: domain.PriorityLow.String(),
	}, map[string]string{}))
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeErr(w, http.StatusBadRequest, err)
		return
	}

	form := taskForm{
		Name:     r.PostForm.Get("name"),
		DueDate:  r.PostForm.Get("due_date"),
		Priority: r.PostForm.Get("priority"),
	}

	task, err := s.api.AddTask(r.Context(), form.Name, form.DueDate, form.Priority)
	if err != nil {
		if ve, ok := validation.AsValidationError(err); ok {
			s.render(w, http.StatusUnprocessableEntity, "new", s.newTaskPage(r, form, ve.FieldMessages()))
			return
		}
		s.writeErr(w, http.StatusInternalServerError, err)
		return
	}

	redirectWithFlash(w, r, "/tasks", "msg", fmt.Sprintf("Added task %q.", task.Name))
}

func (s *Server) handleSelect(act action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderSelect(w, r, http.StatusOK, act, flashFrom(r, act.title))
	}
}

func (s *Server) renderSelect(w http.ResponseWriter, r *http.Request, status int, act action, data pageData) {
	tasks, err := s.api.Tasks(r.Context())
	if err != nil {
		s.writeErr(w, http.StatusInternalServerError, err)
		return
	}

	s.render(w, status, "select", selectPage{
		pageData: data,
		Action:   act.path,
		Button:   act.button,
		Empty:    act.empty,
		Tasks:    rows(tasks, act.pending),
	})
}

// handleApply accepts either an id (one task) or a name (every task with that name).
func (s *Server) handleApply(act action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			s.writeErr(w, http.StatusBadRequest, err)
			return
		}

		id := strings.TrimSpace(r.Form.Get("id"))
		name := r.Form.Get("name")

		var (
			n   int
			err error
		)
		switch {
		case id != "":
			n, err = act.byID(s.api, r.Context(), id)
		default:
			n, err = act.byName(s.api, r.Context(), name)
		}

		if err != nil {
			if validation.IsValidationError(err) || errors.IsErrorType(err, errors.ErrorTypeInvalidInput) {
				s.renderSelect(w, r, http.StatusUnprocessableEntity, act, pageData{
					Title: act.title,
					Error: "Select a task: " + userMessage(err),
				})
				return
			}
			s.writeErr(w, http.StatusInternalServerError, err)
			return
		}

		if n == 0 {
			redirectWithFlash(w, r, "/tasks", "err", "No matching task found.")
			return
		}
		redirectWithFlash(w, r, "/tasks", "msg", fmt.Sprintf(act.verb, n))
	}
}

func (s *Server) handleAPITasks(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r.URL.Query())
	if err != nil {
		s.writeJSONErr(w, http.StatusBadRequest, err)
		return
	}

	records, err := s.api.ListTasks(r.Context(), opts)
	if err != nil {
		s.writeJSONErr(w, http.StatusInternalServerError, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteJSON(&buf, records); err != nil {
		s.writeJSONErr(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleAPIStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.api.Stats(r.Context())
	if err != nil {
		s.writeJSONErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("format")
	if name == "" {
		name = string(report.FormatCSV)
	}
	format, err := report.ParseFormat(name)
	if err != nil {
		s.writeJSONErr(w, http.StatusBadRequest, err)
		return
	}

	records, err := s.api.ListTasks(r.Context(), domain.ListOptions{})
	if err != nil {
		s.writeJSONErr(w, http.StatusInternalServerError, err)
		return
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, format, records, timeNow()); err != nil {
		s.writeJSONErr(w, http.StatusInternalServerError, err)
		return
	}

	switch format {
	case report.FormatCSV:
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	case report.FormatPDF:
		w.Header().Set("Content-Type", "application/pdf")
	default:
		w.Header().Set("Content-Type", "application/json")
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "tasks"+format.Extension()))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) newTaskPage(r *http.Request, form taskForm, fieldErrors map[string]string) newTaskPage {
	priorities := make([]string, 0, len(domain.Priorities()))
	for _, p := range domain.Priorities() {
		priorities = append(priorities, p.String())
	}

	page := newTaskPage{
		pageData:      flashFrom(r, "Add task"),
		Form:          form,
		Errors:        fieldErrors,
		Priorities:    priorities,
		MaxNameLength: s.config.Validation.TaskNameMaxLength,
	}
	if !s.config.Validation.AllowPastDue {
		page.MinDate = validation.Today()
	}
	return page
}

func (s *Server) render(w http.ResponseWriter, status int, page string, data any) {
	var buf bytes.Buffer
	if err := pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("render template", "page", page, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) writeErr(w http.ResponseWriter, code int, err error) {
	s.logError(err)
	http.Error(w, userMessage(err), code)
}

func (s *Server) writeJSONErr(w http.ResponseWriter, code int, err error) {
	s.logError(err)
	writeJSON(w, code, map[string]string{"error": userMessage(err)})
}

func (s *Server) logError(err error) {
	if !validation.IsValidationError(err) && errors.ShouldLogError(err) {
		s.logger.Error("request failed", "code", errors.GetErrorCode(err), "err", err)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func userMessage(err error) string {
	if ve, ok := validation.AsValidationError(err); ok {
		return ve.GetUserFriendlyMessage()
	}
	return errors.GetUserMessage(err)
}

func rows(tasks []domain.Task, pendingOnly bool) []taskRow {
	today := timeNow()
	out := make([]taskRow, 0, len(tasks))
	for _, t := range tasks {
		if pendingOnly && t.IsCompleted() {
			continue
		}
		out = append(out, taskRow{
			ID:        t.ID.String(),
			Name:      t.Name,
			DueDate:   domain.FormatDueDate(t.DueDate),
			Priority:  t.Priority.String(),
			Status:    t.Status.String(),
			Completed: t.IsCompleted(),
			Overdue:   t.IsOverdue(today),
		})
	}
	return out
}

func listOptions(q url.Values) (domain.ListOptions, error) {
	var opts domain.ListOptions
	if v := q.Get("status"); v != "" {
		status, err := domain.ParseStatus(v)
		if err != nil {
			return opts, err
		}
		opts.Status = &status
	}
	if v := q.Get("priority"); v != "" {
		priority, err := domain.ParsePriority(v)
		if err != nil {
			return opts, err
		}
		opts.Priority = &priority
	}
	if v := q.Get("q"); v != "" {
		opts.NameContains = &v
	}
	return opts, nil
}

// flashFrom reads the one-shot message carried on the redirect query string.
func flashFrom(r *http.Request, title string) pageData {
	q := r.URL.Query()
	return pageData{Title: title, Flash: q.Get("msg"), Error: q.Get("err")}
}

func redirectWithFlash(w http.ResponseWriter, r *http.Request, path, key, message string) {
	http.Redirect(w, r, path+"?"+url.Values{key: {message}}.Encode(), http.StatusSeeOther)
}

// Package app holds the interactive session: selecting a template, collecting
// its values, previewing the compiled prompt and submitting it.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/chriscorrea/workbench/internal/llm/common"
	"github.com/chriscorrea/workbench/internal/prompt"
	"github.com/chriscorrea/workbench/internal/store"
)

var (
	ErrNoTemplate       = errors.New("no template selected")
	ErrTemplateDisabled = errors.New("template is disabled")
	ErrNoDispatcher     = errors.New("no dispatcher configured")
)

// InvalidError is returned by Submit when the values fail validation
type InvalidError struct {
	Result prompt.Result
}

func (e *InvalidError) Error() string {
	names := make([]string, 0, len(e.Result.Errors))
	for name := range e.Result.Errors {
		names = append(names, name)
	}
	sort.Strings(names)

	messages := make([]string, 0, len(names))
	for _, name := range names {
		messages = append(messages, e.Result.Errors[name])
	}
	return "invalid values: " + strings.Join(messages, "; ")
}

// DispatchError is returned by Submit when the compiled prompt could not be delivered
type DispatchError struct {
	Template string
	Err      error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("send %s: %v", e.Template, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// Workbench is one template-filling session
type Workbench struct {
	templates  *store.Templates
	projects   *store.Projects
	dispatcher common.Dispatcher
	logger     *slog.Logger

	selected *prompt.Template
	values   prompt.Values
}

// New creates a session; projects and dispatcher may be nil
func New(templates *store.Templates, projects *store.Projects, dispatcher common.Dispatcher, logger *slog.Logger) *Workbench {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Workbench{
		templates:  templates,
		projects:   projects,
		dispatcher: dispatcher,
		logger:     logger,
		values:     prompt.Values{},
	}
}

// Start loads the template catalog and restores the active project
// It reports whether the catalog loaded; a failed load leaves customs usable.
func (w *Workbench) Start(ctx context.Context) bool {
	loaded := w.templates.Load(ctx)
	if w.projects != nil {
		w.projects.Initialize(ctx)
	}

	w.logger.Info("Workbench started",
		"templates", len(w.templates.List()),
		"catalog_loaded", loaded)
	return loaded
}

// Templates returns the template store backing the session
func (w *Workbench) Templates() *store.Templates {
	return w.templates
}

// Projects returns the project store, or nil
func (w *Workbench) Projects() *store.Projects {
	return w.projects
}

// Select makes id the current template and seeds the value map with its defaults
func (w *Workbench) Select(id string) (prompt.Template, error) {
	entry, ok := w.templates.Get(id)
	if !ok {
		return prompt.Template{}, fmt.Errorf("template %q: %w", id, store.ErrNotFound)
	}
	if !entry.IsEnabled {
		return prompt.Template{}, fmt.Errorf("template %q: %w", id, ErrTemplateDisabled)
	}

	t := entry.Template
	w.selected = &t
	w.values = prompt.Values{}
	for _, f := range t.Fields {
		if strings.TrimSpace(f.DefaultValue) != "" {
			w.values[f.Name] = f.DefaultValue
		}
	}

	w.logger.Debug("Template selected", "id", id, "defaults", len(w.values))
	return t, nil
}

// Selected returns the current template
func (w *Workbench) Selected() (prompt.Template, bool) {
	if w.selected == nil {
		return prompt.Template{}, false
	}
	return *w.selected, true
}

// Set stores a value for one of the selected template's placeholders
func (w *Workbench) Set(name, value string) error {
	if w.selected == nil {
		return ErrNoTemplate
	}
	if _, ok := w.selected.Field(name); !ok && !hasPlaceholder(w.selected.Body, name) {
		return fmt.Errorf("template %q has no field %q", w.selected.ID, name)
	}

	w.values[name] = value
	return nil
}

// Values returns a copy of the value map
func (w *Workbench) Values() prompt.Values {
	values := make(prompt.Values, len(w.values))
	for k, v := range w.values {
		values[k] = v
	}
	return values
}

// Preview compiles the selected template with the current values
func (w *Workbench) Preview() (prompt.Preview, error) {
	if w.selected == nil {
		return prompt.Preview{}, ErrNoTemplate
	}
	return prompt.BuildPreview(w.selected.Body, w.values, w.selected.Fields), nil
}

// Validate checks the current values against the declared fields
func (w *Workbench) Validate() (prompt.Result, error) {
	if w.selected == nil {
		return prompt.Result{}, ErrNoTemplate
	}
	return prompt.ValidateValues(w.selected.Fields, w.values), nil
}

// Submit compiles the prompt and hands it to the dispatcher
// On success the template's use count goes up and the value map is cleared;
// on failure the values are kept so the user can retry.
func (w *Workbench) Submit(ctx context.Context, attachments []common.Attachment) (common.Reply, error) {
	if w.selected == nil {
		return common.Reply{}, ErrNoTemplate
	}
	if w.dispatcher == nil {
		return common.Reply{}, ErrNoDispatcher
	}

	result := prompt.ValidateValues(w.selected.Fields, w.values)
	if !result.Valid {
		return common.Reply{}, &InvalidError{Result: result}
	}

	text := prompt.Compile(w.selected.Body, w.values, w.selected.Fields)
	w.logger.Info("Submitting prompt",
		"template", w.selected.ID,
		"characters", len(text),
		"attachments", len(attachments))

	reply, err := w.dispatcher.Dispatch(ctx, text, attachments)
	if err != nil {
		return common.Reply{}, &DispatchError{Template: w.selected.ID, Err: err}
	}

	count := w.templates.IncrementUseCount(w.selected.ID)
	w.logger.Debug("Prompt dispatched", "template", w.selected.ID, "use_count", count, "provider", reply.Provider)
	w.Clear()
	return reply, nil
}

// Clear empties the value map and keeps the selection
func (w *Workbench) Clear() {
	w.values = prompt.Values{}
}

func hasPlaceholder(body, name string) bool {
	for _, token := range prompt.Extract(body) {
		if token == name {
			return true
		}
	}
	return false
}

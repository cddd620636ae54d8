package store

import (
	"context"
	"log/slog"

	"github.com/chriscorrea/workbench/internal/storage"
)

// NoProject is persisted as the last project when the user chose none
const NoProject = "none"

// Project is an entry of the external project catalog
type Project struct {
	UUID             string `json:"uuid"`
	Name             string `json:"name"`
	ConversationUUID string `json:"conversation_uuid"`
	ConversationName string `json:"conversation_name,omitempty"`
	UpdatedAt        string `json:"updated_at,omitempty"`
}

// ProjectSource lists the available projects
type ProjectSource interface {
	FetchProjects(ctx context.Context) ([]Project, error)
}

// ProjectActivator tells the chat session which project and conversation to use
type ProjectActivator interface {
	ActivateProject(ctx context.Context, projectUUID, conversationUUID string) (bool, error)
}

// Projects tracks enabled projects and the active selection
// Nothing is enabled until configured, the opposite of template defaults.
type Projects struct {
	doc       doc
	source    ProjectSource
	activator ProjectActivator

	catalog      []Project
	active       string
	conversation string
}

// NewProjects creates a project store; source and activator may be nil
func NewProjects(kv storage.KV, source ProjectSource, activator ProjectActivator, logger *slog.Logger) *Projects {
	return &Projects{
		doc:       newDoc(kv, logger),
		source:    source,
		activator: activator,
	}
}

// LoadCatalog fetches the project list, leaving an empty catalog on failure
func (s *Projects) LoadCatalog(ctx context.Context) bool {
	s.catalog = nil
	if s.source == nil {
		return true
	}

	projects, err := s.source.FetchProjects(ctx)
	if err != nil {
		s.doc.logger.Error("failed to load project catalog", "error", err)
		return false
	}

	s.catalog = projects
	s.doc.logger.Debug("loaded project catalog", "projects", len(projects))
	return true
}

// Catalog returns the projects as loaded
func (s *Projects) Catalog() []Project {
	return s.catalog
}

// Find returns the catalog project with the given uuid
func (s *Projects) Find(uuid string) (Project, bool) {
	for _, p := range s.catalog {
		if p.UUID == uuid {
			return p, true
		}
	}
	return Project{}, false
}

// SetEnabled replaces the enabled-projects map
func (s *Projects) SetEnabled(enabled map[string]bool) {
	if enabled == nil {
		enabled = map[string]bool{}
	}
	s.doc.save(KeyEnabledProjects, enabled)
}

// IsEnabled reports whether the project was explicitly enabled
func (s *Projects) IsEnabled(uuid string) bool {
	return s.enabledMap()[uuid]
}

// Enabled returns the persisted enabled-projects map
func (s *Projects) Enabled() map[string]bool {
	return s.enabledMap()
}

// ActiveProjects returns the enabled catalog projects in catalog order
func (s *Projects) ActiveProjects() []Project {
	enabled := s.enabledMap()
	active := []Project{}
	for _, p := range s.catalog {
		if enabled[p.UUID] {
			active = append(active, p)
		}
	}
	return active
}

// SetActive selects a project and notifies the chat session
//
// An empty uuid or NoProject clears the selection and records NoProject as
// the last project. Without a conversation uuid the project's catalog
// conversation is used. The result is whether the chat session accepted the
// change; the local selection is updated either way.
func (s *Projects) SetActive(ctx context.Context, uuid, conversation string) bool {
	if uuid == "" || uuid == NoProject {
		s.active, s.conversation = "", ""
		s.doc.saveString(KeyLastProject, NoProject)
		s.doc.logger.Debug("cleared active project")
		return s.notify(ctx, "", "")
	}

	if conversation == "" {
		if p, ok := s.Find(uuid); ok {
			conversation = p.ConversationUUID
		}
	}

	s.active, s.conversation = uuid, conversation
	s.doc.saveString(KeyLastProject, uuid)
	s.doc.logger.Debug("activated project", "project", uuid, "conversation", conversation)
	return s.notify(ctx, uuid, conversation)
}

func (s *Projects) notify(ctx context.Context, uuid, conversation string) bool {
	if s.activator == nil {
		return true
	}
	ok, err := s.activator.ActivateProject(ctx, uuid, conversation)
	if err != nil {
		s.doc.logger.Error("failed to activate project", "project", uuid, "error", err)
		return false
	}
	return ok
}

// Initialize loads the catalog and restores the last project when it is
// still enabled. It never picks a different project on its own.
func (s *Projects) Initialize(ctx context.Context) {
	s.LoadCatalog(ctx)
	s.active, s.conversation = "", ""

	active := s.ActiveProjects()
	if len(active) == 0 {
		return
	}

	last := s.LastProject()
	if last == "" || last == NoProject {
		return
	}

	for _, p := range active {
		if p.UUID == last {
			s.SetActive(ctx, p.UUID, "")
			return
		}
	}
}

// SaveSettings stores a new enabled-projects map and repairs the selection
//
// An active project that is no longer enabled is dropped. When nothing is
// active afterwards but some project is enabled, the last project is
// activated if enabled, otherwise the first enabled project in catalog
// order. It returns the active uuid, empty for none.
func (s *Projects) SaveSettings(ctx context.Context, enabled map[string]bool) string {
	s.SetEnabled(enabled)

	hadActive := s.active != ""
	if hadActive && !s.IsEnabled(s.active) {
		s.active, s.conversation = "", ""
	}
	if s.active != "" {
		return s.active
	}

	active := s.ActiveProjects()
	if len(active) == 0 {
		if hadActive {
			s.SetActive(ctx, NoProject, "")
		}
		return ""
	}

	pick := active[0]
	last := s.LastProject()
	for _, p := range active {
		if p.UUID == last {
			pick = p
			break
		}
	}
	s.SetActive(ctx, pick.UUID, "")
	return s.active
}

// Active returns the active project, if any
func (s *Projects) Active() (Project, bool) {
	if s.active == "" {
		return Project{}, false
	}
	if p, ok := s.Find(s.active); ok {
		return p, true
	}
	return Project{UUID: s.active, ConversationUUID: s.conversation}, true
}

// ActiveUUID returns the active project uuid, empty for none
func (s *Projects) ActiveUUID() string {
	return s.active
}

// ConversationUUID returns the conversation paired with the active project
func (s *Projects) ConversationUUID() string {
	return s.conversation
}

// LastProject returns the persisted last project, NoProject, or empty when
// never chosen
func (s *Projects) LastProject() string {
	last, _ := s.doc.loadString(KeyLastProject)
	return last
}

func (s *Projects) enabledMap() map[string]bool {
	var enabled map[string]bool
	if !s.doc.load(KeyEnabledProjects, &enabled) || enabled == nil {
		return map[string]bool{}
	}
	return enabled
}

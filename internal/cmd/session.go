package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/chriscorrea/workbench/internal/backend"
	"github.com/chriscorrea/workbench/internal/catalog"
	"github.com/chriscorrea/workbench/internal/config"
	"github.com/chriscorrea/workbench/internal/llm/common"
	"github.com/chriscorrea/workbench/internal/logger"
	"github.com/chriscorrea/workbench/internal/registry"
	"github.com/chriscorrea/workbench/internal/storage"
	"github.com/chriscorrea/workbench/internal/store"

	"github.com/fatih/color"
)

// session wires the stores of one command invocation to local state and the chat server
type session struct {
	cfg       *config.Config
	logger    *slog.Logger
	storage   storage.Backend
	server    *backend.Client
	templates *store.Templates
	projects  *store.Projects
	snippets  *store.Snippets
}

// openSession opens local state and builds the stores from the loaded config
func openSession() (*session, error) {
	if state.manager == nil {
		return nil, fmt.Errorf("config manager not initialized")
	}
	cfg := state.manager.Config()
	log := state.logger
	if log == nil {
		log = logger.New(false)
	}

	kv, err := storage.Open(storage.Config{
		Backend:   cfg.Storage.Backend,
		Path:      cfg.StoragePath(),
		RedisAddr: cfg.Storage.RedisAddr,
		RedisDB:   cfg.Storage.RedisDB,
		Namespace: cfg.Storage.Namespace,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
	}

	serverOpts := []common.ClientOption{
		common.WithLogger(log),
		common.WithMaxRetries(cfg.Server.MaxRetries),
	}
	if cfg.Server.Timeout > 0 {
		serverOpts = append(serverOpts, common.WithTimeout(time.Duration(cfg.Server.Timeout)*time.Second))
	}
	server := backend.New(cfg.Server.URL, serverOpts...)

	var source store.TemplateSource
	switch strings.ToLower(cfg.Catalog.Source) {
	case "server":
		source = server
	default:
		overlay, err := expandHomePath(cfg.Catalog.CustomPath)
		if err != nil {
			kv.Close()
			return nil, fmt.Errorf("failed to expand catalog path: %w", err)
		}
		source = catalog.NewBuiltin(overlay, log)
	}

	return &session{
		cfg:       cfg,
		logger:    log,
		storage:   kv,
		server:    server,
		templates: store.NewTemplates(kv, source, log),
		projects:  store.NewProjects(kv, server, server, log),
		snippets:  store.NewSnippets(kv, log),
	}, nil
}

// loadTemplates fetches the catalog; on failure a warning goes to w and
// the command continues with custom templates only
func (s *session) loadTemplates(ctx context.Context, w io.Writer) bool {
	if s.templates.Load(ctx) {
		return true
	}
	s.warnCatalog(w)
	return false
}

func (s *session) warnCatalog(w io.Writer) {
	fmt.Fprintf(w, "%s template catalog unavailable (%s source); showing custom templates only\n",
		color.YellowString("Warning:"), s.cfg.Catalog.Source)
}

// dispatcher resolves the configured dispatch target
func (s *session) dispatcher() (common.Dispatcher, error) {
	return registry.NewDispatcher(s.cfg, s.server, s.logger)
}

// usesServer reports whether prompts go to the chat server
func (s *session) usesServer() bool {
	provider := strings.ToLower(s.cfg.Dispatch.Provider)
	return provider == "" || provider == registry.ServerProvider
}

func (s *session) Close() error {
	return s.storage.Close()
}

// commandContext returns the command's context, or a background one when
// the command runs outside Execute
func commandContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

package commands

import (
	"log/slog"

	"github.com/thoreinstein/mcpsync/internal/backup"
	"github.com/thoreinstein/mcpsync/internal/engine"
	"github.com/thoreinstein/mcpsync/internal/errors"
	"github.com/thoreinstein/mcpsync/internal/learn"
	"github.com/thoreinstein/mcpsync/internal/paths"
	"github.com/thoreinstein/mcpsync/internal/registry"
	"github.com/thoreinstein/mcpsync/internal/target"
	"github.com/thoreinstein/mcpsync/internal/txn"
)

// app bundles the wired-up subsystems a command needs. Built fresh per
// command invocation; nothing is cached across runs.
type app struct {
	registry *registry.Registry
	catalog  *target.Catalog
	backups  *backup.System
	txns     *txn.Manager
	learner  *learn.Learner
	engine   *engine.Engine
}

// newApp loads the registry and wires the catalog, snapshot store,
// transaction manager, learner, and engine together.
func newApp() (*app, error) {
	reg, err := registry.Open(paths.RegistryFile())
	if err != nil {
		return nil, err
	}

	catalog := target.NewCatalog()
	if cfg != nil {
		for _, dir := range cfg.ProjectDirs {
			if _, err := catalog.AddProject(dir); err != nil {
				slog.Warn("skipping configured project dir", "dir", dir, "error", err)
			}
		}
	}

	retention := backup.DefaultRetentionCount
	if cfg != nil && cfg.Backup.RetentionCount > 0 {
		retention = cfg.Backup.RetentionCount
	}
	backups := backup.NewSystem(backup.WithRetentionCount(retention))
	txns := txn.NewManager(backups)

	var opts []engine.EngineOption
	var learner *learn.Learner
	if cfg == nil || cfg.Learning.Enabled {
		var learnOpts []learn.Option
		if cfg != nil {
			learnOpts = append(learnOpts,
				learn.WithAutoSuggest(cfg.Learning.AutoSuggest),
				learn.WithQuickDeploy(cfg.Learning.QuickDeploy))
		}
		learner, err = learn.Open(learnOpts...)
		if err != nil {
			// Suggestions are a convenience; a broken preferences file
			// must not block deployments.
			slog.Warn("preference store unavailable", "error", err)
		} else {
			opts = append(opts, engine.WithLearner(learner))
		}
	}

	return &app{
		registry: reg,
		catalog:  catalog,
		backups:  backups,
		txns:     txns,
		learner:  learner,
		engine:   engine.New(reg, catalog, txns, opts...),
	}, nil
}

// deployOptions builds engine options from the global flags.
func deployOptions() engine.Options {
	return engine.Options{Force: forceFlag}
}

// requireLearner returns the learner or a user error when learning is
// disabled or the store failed to open.
func (a *app) requireLearner() (*learn.Learner, error) {
	if a.learner == nil {
		return nil, errors.NewUserError(errors.New("preference learning is disabled"),
			"enable it with 'learning.enabled: true' in your config")
	}
	return a.learner, nil
}

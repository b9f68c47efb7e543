package engine

import (
	"context"
	"log/slog"
	"os/exec"

	"github.com/thoreinstein/mcpsync/internal/configstore"
	"github.com/thoreinstein/mcpsync/internal/conflict"
	"github.com/thoreinstein/mcpsync/internal/errors"
	"github.com/thoreinstein/mcpsync/internal/learn"
	"github.com/thoreinstein/mcpsync/internal/registry"
	"github.com/thoreinstein/mcpsync/internal/server"
	"github.com/thoreinstein/mcpsync/internal/target"
	"github.com/thoreinstein/mcpsync/internal/txn"
)

// Engine orchestrates deployments: it reads desired state from the
// registry, detects conflicts against live target content, and applies
// every change for a batch inside one transaction.
type Engine struct {
	registry *registry.Registry
	catalog  *target.Catalog
	txns     *txn.Manager
	learner  *learn.Learner
	detector *conflict.Detector
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLearner attaches a preference learner. Outcomes are recorded after
// every deploy; learner failures are logged and otherwise ignored.
func WithLearner(l *learn.Learner) EngineOption {
	return func(e *Engine) {
		e.learner = l
	}
}

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithCommandResolver overrides how launch commands are resolved for
// dependency checks. For tests.
func WithCommandResolver(resolve func(string) bool) EngineOption {
	return func(e *Engine) {
		e.detector.ResolveCommand = resolve
	}
}

// New creates an engine over the given registry, target catalog, and
// transaction manager.
func New(reg *registry.Registry, catalog *target.Catalog, txns *txn.Manager, opts ...EngineOption) *Engine {
	e := &Engine{
		registry: reg,
		catalog:  catalog,
		txns:     txns,
		detector: &conflict.Detector{
			ResolveCommand: func(command string) bool {
				_, err := exec.LookPath(command)
				return err == nil
			},
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Options tunes a deploy or undeploy batch.
type Options struct {
	// Force proceeds past critical conflicts. Snapshots are still taken,
	// so a forced deploy remains reversible.
	Force bool
}

// Status is a per-pair batch outcome.
type Status string

const (
	// StatusDeployed means the pair's write was committed.
	StatusDeployed Status = "deployed"

	// StatusRemoved means the pair's entry was removed and committed.
	StatusRemoved Status = "removed"

	// StatusSkipped means no write was needed or wanted; Reason says why.
	StatusSkipped Status = "skipped"

	// StatusFailed means the pair was not applied; Err says why.
	StatusFailed Status = "failed"
)

// Result is the outcome for one (server, target) pair in a batch.
type Result struct {
	Server string
	Target string
	Status Status

	// Reason explains a skip ("already in sync", "server disabled"...).
	Reason string

	// Err is set for failed pairs.
	Err error
}

// BatchResult is the outcome of one deploy or undeploy batch.
type BatchResult struct {
	// TxID identifies the committed transaction, for later rollback.
	// Empty when nothing was written.
	TxID string

	Results []Result
}

// Succeeded reports whether every pair ended deployed, removed or skipped.
func (b *BatchResult) Succeeded() bool {
	for _, r := range b.Results {
		if r.Status == StatusFailed {
			return false
		}
	}
	return true
}

// Deploy writes the named servers to the named targets. All writes for
// the batch ride one transaction: either every applicable pair lands or
// none do. A critical conflict anywhere fails the whole batch without
// writing unless opts.Force is set.
//
// Unknown server names and unknown targets fail up front, before any
// target is read or written. Known-but-unavailable targets skip their
// pairs instead; the rest of the batch proceeds.
func (e *Engine) Deploy(ctx context.Context, serverNames, targetKeys []string, opts Options) (*BatchResult, error) {
	defs, err := e.lookupServers(serverNames)
	if err != nil {
		return nil, err
	}
	stores, err := e.resolveTargets(targetKeys)
	if err != nil {
		return nil, err
	}

	live, err := e.liveServers(stores)
	if err != nil {
		return nil, err
	}

	batch := &BatchResult{}
	pairs := splitUnavailable(batch, crossProduct(serverNames, targetKeys), stores)

	conflicts := e.detector.Detect(pairs, defs, live)
	if conflict.HasCritical(conflicts) && !opts.Force {
		return e.conflictResult(batch, pairs, conflicts), nil
	}

	tx := e.txns.Begin()
	staged := map[conflict.Pair]bool{}

	for _, p := range pairs {
		def := defs[p.Server]

		// Force overrides most critical conflicts, but never a definition
		// that fails validation: there is no correct entry to write.
		if c, ok := conflict.ForPair(conflicts, p); ok && c.Kind == conflict.KindConfigurationInvalid {
			batch.Results = append(batch.Results, Result{
				Server: p.Server, Target: p.Target, Status: StatusFailed,
				Err: errors.Wrapf(errors.ErrConflictCritical, "%s", c.Description),
			})
			continue
		}

		if def.Disabled {
			batch.Results = append(batch.Results, Result{
				Server: p.Server, Target: p.Target, Status: StatusSkipped,
				Reason: "server disabled",
			})
			continue
		}

		t, err := e.catalog.Get(p.Target)
		if err != nil {
			return nil, err
		}
		store := stores[p.Target]
		entry := e.entryFor(def, t)

		// In sync means the rendered entry matches the live one exactly,
		// env included. Launch identity alone is not enough: an env-only
		// registry change must still reach the target.
		if existing, ok := live[p.Target][p.Server]; ok && entry.EntryEqual(existing) {
			batch.Results = append(batch.Results, Result{
				Server: p.Server, Target: p.Target, Status: StatusSkipped,
				Reason: "already in sync",
			})
			continue
		}

		if err := tx.Stage(p.Target, store.Path(), func() error {
			return store.Upsert(entry)
		}); err != nil {
			return nil, err
		}
		staged[p] = true
	}

	return e.commit(ctx, tx, batch, pairs, staged, StatusDeployed)
}

// Undeploy removes the named servers from the named targets. Removals for
// the batch ride one transaction, same as Deploy.
func (e *Engine) Undeploy(ctx context.Context, serverNames, targetKeys []string, opts Options) (*BatchResult, error) {
	stores, err := e.resolveTargets(targetKeys)
	if err != nil {
		return nil, err
	}

	live, err := e.liveServers(stores)
	if err != nil {
		return nil, err
	}

	batch := &BatchResult{}
	pairs := splitUnavailable(batch, crossProduct(serverNames, targetKeys), stores)
	tx := e.txns.Begin()
	staged := map[conflict.Pair]bool{}

	for _, p := range pairs {
		if _, ok := live[p.Target][p.Server]; !ok {
			batch.Results = append(batch.Results, Result{
				Server: p.Server, Target: p.Target, Status: StatusSkipped,
				Reason: "not deployed",
			})
			continue
		}

		store := stores[p.Target]
		name := p.Server
		if err := tx.Stage(p.Target, store.Path(), func() error {
			return store.Remove(name)
		}); err != nil {
			return nil, err
		}
		staged[p] = true
	}

	return e.commit(ctx, tx, batch, pairs, staged, StatusRemoved)
}

// commit runs the transaction and fills in the outcome of every staged
// pair. A transaction failure marks every staged pair failed: targets
// were restored from their snapshots, so nothing from this batch is live.
func (e *Engine) commit(ctx context.Context, tx *txn.Tx, batch *BatchResult, pairs []conflict.Pair, staged map[conflict.Pair]bool, applied Status) (*BatchResult, error) {
	commitErr := tx.Commit(ctx)

	for _, p := range pairs {
		if !staged[p] {
			continue
		}
		if commitErr != nil {
			batch.Results = append(batch.Results, Result{
				Server: p.Server, Target: p.Target, Status: StatusFailed,
				Err: commitErr,
			})
		} else {
			batch.Results = append(batch.Results, Result{
				Server: p.Server, Target: p.Target, Status: applied,
			})
		}
	}
	if commitErr == nil && len(staged) > 0 {
		batch.TxID = tx.ID
	}

	e.recordOutcomes(batch, applied)
	return batch, nil
}

// recordOutcomes feeds deploy results to the learner. Learner errors never
// affect the batch outcome.
func (e *Engine) recordOutcomes(batch *BatchResult, applied Status) {
	if e.learner == nil || applied != StatusDeployed {
		return
	}

	// One outcome per server, over the targets it was actually written to
	// (or attempted against, for failures).
	byServer := map[string][]string{}
	failed := map[string]bool{}
	for _, r := range batch.Results {
		if r.Status == StatusSkipped {
			continue
		}
		byServer[r.Server] = append(byServer[r.Server], r.Target)
		if r.Status == StatusFailed {
			failed[r.Server] = true
		}
	}

	for name, targets := range byServer {
		if err := e.learner.Record(name, targets, !failed[name]); err != nil {
			e.logger.Warn("recording deployment outcome failed", "server", name, "error", err)
		}
	}
}

// conflictResult builds the fail-closed batch outcome: every pair
// implicated in a conflict fails with ErrConflictCritical, every other
// pair is skipped, and nothing is written.
func (e *Engine) conflictResult(batch *BatchResult, pairs []conflict.Pair, conflicts []conflict.Conflict) *BatchResult {
	for _, p := range pairs {
		if c, ok := conflict.ForPair(conflicts, p); ok && c.Severity == conflict.SeverityCritical {
			batch.Results = append(batch.Results, Result{
				Server: p.Server, Target: p.Target, Status: StatusFailed,
				Err: errors.Wrapf(errors.ErrConflictCritical, "%s", c.Description),
			})
			continue
		}
		batch.Results = append(batch.Results, Result{
			Server: p.Server, Target: p.Target, Status: StatusSkipped,
			Reason: "batch blocked by critical conflicts",
		})
	}
	return batch
}

// GetConflicts runs detection for the proposed batch without writing.
// Unavailable targets contribute no pairs: nothing can be written there.
func (e *Engine) GetConflicts(serverNames, targetKeys []string) ([]conflict.Conflict, error) {
	defs, err := e.lookupServers(serverNames)
	if err != nil {
		return nil, err
	}
	stores, err := e.resolveTargets(targetKeys)
	if err != nil {
		return nil, err
	}
	live, err := e.liveServers(stores)
	if err != nil {
		return nil, err
	}
	pairs := splitUnavailable(&BatchResult{}, crossProduct(serverNames, targetKeys), stores)
	return e.detector.Detect(pairs, defs, live), nil
}

// entryFor produces the definition actually written to a target. Platform
// configs are shared files that may be synced or backed up off-machine, so
// secret env values become placeholders there; project configs keep real
// values.
func (e *Engine) entryFor(def *server.Definition, t *target.Target) *server.Definition {
	if t.Kind == target.KindPlatform {
		return def.WithPlaceholders()
	}
	return def.Clone()
}

func (e *Engine) lookupServers(names []string) (map[string]*server.Definition, error) {
	defs := make(map[string]*server.Definition, len(names))
	for _, name := range names {
		def, err := e.registry.Get(name)
		if err != nil {
			return nil, err
		}
		defs[name] = def
	}
	return defs, nil
}

// resolveTargets binds every batch target to its store. Unknown keys fail
// the batch; known-but-unavailable targets are left out of the map and
// reported per pair by the caller.
func (e *Engine) resolveTargets(keys []string) (map[string]*configstore.Store, error) {
	if len(keys) == 0 {
		return nil, errors.New("no targets given")
	}
	stores := make(map[string]*configstore.Store, len(keys))
	for _, key := range keys {
		store, err := e.catalog.Resolve(key)
		if err != nil {
			if errors.Is(err, errors.ErrTargetUnavailable) {
				continue
			}
			return nil, err
		}
		stores[key] = store
	}
	return stores, nil
}

// splitUnavailable records a skip for every pair whose target did not
// resolve and returns the pairs that can proceed.
func splitUnavailable(batch *BatchResult, pairs []conflict.Pair, stores map[string]*configstore.Store) []conflict.Pair {
	out := pairs[:0]
	for _, p := range pairs {
		if _, ok := stores[p.Target]; !ok {
			batch.Results = append(batch.Results, Result{
				Server: p.Server, Target: p.Target, Status: StatusSkipped,
				Reason: "target unavailable",
			})
			continue
		}
		out = append(out, p)
	}
	return out
}

// liveServers reads the current entries of every resolved target.
func (e *Engine) liveServers(stores map[string]*configstore.Store) (map[string]map[string]*server.Definition, error) {
	live := make(map[string]map[string]*server.Definition, len(stores))
	for key, store := range stores {
		servers, err := store.Servers()
		if err != nil {
			return nil, errors.Wrapf(err, "reading target %q", key)
		}
		live[key] = servers
	}
	return live, nil
}

func crossProduct(serverNames, targetKeys []string) []conflict.Pair {
	pairs := make([]conflict.Pair, 0, len(serverNames)*len(targetKeys))
	for _, s := range serverNames {
		for _, t := range targetKeys {
			pairs = append(pairs, conflict.Pair{Server: s, Target: t})
		}
	}
	return pairs
}

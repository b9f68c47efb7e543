package engine

import (
	"context"

	"github.com/thoreinstein/mcpsync/internal/errors"
	"github.com/thoreinstein/mcpsync/internal/txn"
)

// DeploymentState is the derived relation between a registry definition
// and one target's live entry. It is computed fresh on every query, never
// persisted: target files can change behind our back at any time.
type DeploymentState string

const (
	// StateInSync means the target holds an entry matching the registry.
	StateInSync DeploymentState = "in-sync"

	// StateDrifted means the target's entry launches differently than the
	// registry definition.
	StateDrifted DeploymentState = "drifted"

	// StateNotDeployed means the target has no entry for the server.
	StateNotDeployed DeploymentState = "not-deployed"

	// StateUnavailable means the target cannot be read on this machine.
	StateUnavailable DeploymentState = "unavailable"
)

// DeploymentRecord is one cell of the deployment matrix.
type DeploymentRecord struct {
	Server string
	Target string
	State  DeploymentState

	// Untracked flags a live entry with no registry definition.
	Untracked bool
}

// Status computes the deployment matrix: every registry server against
// every known target, plus untracked live entries the registry does not
// know about.
func (e *Engine) Status() ([]DeploymentRecord, error) {
	names := e.registry.Names()
	known := make(map[string]bool, len(names))
	for _, name := range names {
		known[name] = true
	}

	var records []DeploymentRecord
	for _, t := range e.catalog.All() {
		if !t.Available {
			for _, name := range names {
				records = append(records, DeploymentRecord{Server: name, Target: t.Key, State: StateUnavailable})
			}
			continue
		}

		store, err := e.catalog.Resolve(t.Key)
		if err != nil {
			return nil, err
		}
		live, err := store.Servers()
		if err != nil {
			return nil, errors.Wrapf(err, "reading target %q", t.Key)
		}

		for _, name := range names {
			rec := DeploymentRecord{Server: name, Target: t.Key, State: StateNotDeployed}
			if existing, ok := live[name]; ok {
				def, _ := e.registry.Get(name)
				if def.LaunchEqual(existing) {
					rec.State = StateInSync
				} else {
					rec.State = StateDrifted
				}
			}
			records = append(records, rec)
		}

		for name := range live {
			if !known[name] {
				records = append(records, DeploymentRecord{
					Server: name, Target: t.Key, State: StateInSync, Untracked: true,
				})
			}
		}
	}
	return records, nil
}

// DeployedTargets returns the available targets currently holding an entry
// for the named server.
func (e *Engine) DeployedTargets(serverName string) ([]string, error) {
	var keys []string
	for _, t := range e.catalog.Available() {
		store, err := e.catalog.Resolve(t.Key)
		if err != nil {
			return nil, err
		}
		live, err := store.Servers()
		if err != nil {
			return nil, errors.Wrapf(err, "reading target %q", t.Key)
		}
		if _, ok := live[serverName]; ok {
			keys = append(keys, t.Key)
		}
	}
	return keys, nil
}

// RemoveServer deletes a server from the registry. A server still deployed
// somewhere is protected: without force the removal fails with
// ErrServerDeployed, with force it is first undeployed everywhere.
func (e *Engine) RemoveServer(ctx context.Context, name string, force bool) error {
	if _, err := e.registry.Get(name); err != nil {
		return err
	}

	deployed, err := e.DeployedTargets(name)
	if err != nil {
		return err
	}
	if len(deployed) > 0 {
		if !force {
			return errors.Wrapf(errors.ErrServerDeployed, "server %q is deployed to %d target(s)", name, len(deployed))
		}
		batch, err := e.Undeploy(ctx, []string{name}, deployed, Options{Force: true})
		if err != nil {
			return err
		}
		if !batch.Succeeded() {
			return errors.Newf("undeploying %q before removal failed", name)
		}
	}

	return e.registry.Remove(name)
}

// Rollback restores every target a committed transaction touched to its
// pre-transaction snapshot.
func (e *Engine) Rollback(txID string) (*txn.Record, error) {
	return e.txns.Rollback(txID)
}

// History returns committed and rolled-back transactions, newest first.
func (e *Engine) History() []txn.Record {
	return e.txns.History()
}

// DeployAsync runs Deploy on its own goroutine and delivers the batch
// outcome over the returned channel. The channel is buffered; the result
// is never lost to a slow receiver.
func (e *Engine) DeployAsync(ctx context.Context, serverNames, targetKeys []string, opts Options) <-chan AsyncResult {
	ch := make(chan AsyncResult, 1)
	go func() {
		batch, err := e.Deploy(ctx, serverNames, targetKeys, opts)
		ch <- AsyncResult{Batch: batch, Err: err}
		close(ch)
	}()
	return ch
}

// AsyncResult is the outcome delivered by DeployAsync.
type AsyncResult struct {
	Batch *BatchResult
	Err   error
}

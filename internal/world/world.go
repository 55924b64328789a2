// Package world owns every live GameState. Access is serialized per
// instance: validation and commit of a transaction run as one critical
// section, and readers plus the snapshot encoder take the same lock.
package world

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/dmarve/statekeeper/internal/game/migrate"
	"github.com/dmarve/statekeeper/internal/game/tx"
	"github.com/dmarve/statekeeper/internal/gamedata"
	"github.com/dmarve/statekeeper/internal/model"
	"github.com/dmarve/statekeeper/internal/snapshot"
)

// ErrInstanceNotFound is returned for operations against unknown instances.
var ErrInstanceNotFound = fmt.Errorf("instance not found")

type instance struct {
	mu    sync.Mutex
	state *model.GameState

	// flushed/flushedVersion implement dirty tracking for the periodic
	// flusher: an instance is written when its version moved since the last
	// successful flush.
	flushed        bool
	flushedVersion uint64
}

// World wires the config, processor and snapshot store around the instance
// table.
type World struct {
	mu        sync.RWMutex
	instances map[string]*instance

	cfg        *gamedata.GameConfig
	proc       *tx.Processor
	store      *snapshot.Store
	cacheLimit int
}

// New returns an empty world. Call Restore before serving.
func New(cfg *gamedata.GameConfig, proc *tx.Processor, store *snapshot.Store, cacheLimit int) *World {
	return &World{
		instances:  make(map[string]*instance),
		cfg:        cfg,
		proc:       proc,
		store:      store,
		cacheLimit: cacheLimit,
	}
}

// Config returns the active game config.
func (w *World) Config() *gamedata.GameConfig { return w.cfg }

// InstanceIDs lists known instances, sorted.
func (w *World) InstanceIDs() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	ids := make([]string, 0, len(w.instances))
	for id := range w.instances {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Restore loads every snapshot, migrates it against the active config and
// registers the result, then ensures the default instance exists. Migration
// reports are logged so operators can see what a config change broke.
func (w *World) Restore() error {
	states, err := w.store.LoadAll()
	if err != nil {
		return fmt.Errorf("restoring snapshots: %w", err)
	}

	for _, st := range states {
		migrated, report := migrate.Run(st, w.cfg)
		migrated.TxCache.SetLimit(w.cacheLimit)
		w.register(migrated)
		for _, warn := range report.Warnings {
			slog.Warn("migration warning",
				"instance", migrated.InstanceID,
				"code", warn.Code,
				"player", warn.PlayerID,
				"character", warn.CharacterID,
				"gear", warn.GearID,
				"slot", warn.Slot,
				"detail", warn.Detail)
		}
		slog.Info("instance restored",
			"instance", migrated.InstanceID,
			"stateVersion", migrated.StateVersion,
			"warnings", len(report.Warnings))
	}

	w.ensure(model.DefaultInstanceID)
	return nil
}

func (w *World) register(st *model.GameState) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.instances[st.InstanceID] = &instance{
		state:          st,
		flushedVersion: st.StateVersion,
	}
}

func (w *World) ensure(instanceID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.instances[instanceID]; ok {
		return
	}
	st := model.NewGameState(instanceID, w.cfg.ConfigID, w.cacheLimit)
	w.instances[instanceID] = &instance{state: st}
	slog.Info("instance created", "instance", instanceID)
}

func (w *World) get(instanceID string) *instance {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.instances[instanceID]
}

// Submit runs one transaction against an instance under its lock.
func (w *World) Submit(instanceID, token string, body []byte) (tx.Result, error) {
	inst := w.get(instanceID)
	if inst == nil {
		return tx.Result{}, ErrInstanceNotFound
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return w.proc.Process(inst.state, token, body), nil
}

// View runs fn against an instance's state under its lock. fn must not
// retain the state past the call.
func (w *World) View(instanceID string, fn func(*model.GameState) error) error {
	inst := w.get(instanceID)
	if inst == nil {
		return ErrInstanceNotFound
	}
	inst.mu.Lock()
	defer inst.mu.Unlock()
	return fn(inst.state)
}

// RunFlusher writes dirty instances every interval until ctx is done. An
// interval of zero disables periodic flushing; shutdown still calls
// FlushAll.
func (w *World) RunFlusher(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			flushed, err := w.flushDirty()
			if err != nil {
				slog.Error("periodic snapshot flush failed", "err", err)
				continue
			}
			if flushed > 0 {
				slog.Debug("snapshots flushed", "instances", flushed)
			}
		}
	}
}

func (w *World) flushDirty() (int, error) {
	flushed := 0
	for _, id := range w.InstanceIDs() {
		inst := w.get(id)
		if inst == nil {
			continue
		}
		inst.mu.Lock()
		dirty := !inst.flushed || inst.state.StateVersion != inst.flushedVersion
		if !dirty {
			inst.mu.Unlock()
			continue
		}
		err := w.store.Save(inst.state)
		if err == nil {
			inst.flushed = true
			inst.flushedVersion = inst.state.StateVersion
		}
		inst.mu.Unlock()
		if err != nil {
			return flushed, err
		}
		flushed++
	}
	return flushed, nil
}

// FlushAll writes every instance, dirty or not. It respects ctx so shutdown
// can bound the flush with a deadline.
func (w *World) FlushAll(ctx context.Context) error {
	for _, id := range w.InstanceIDs() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("snapshot flush interrupted: %w", err)
		}
		inst := w.get(id)
		if inst == nil {
			continue
		}
		inst.mu.Lock()
		err := w.store.Save(inst.state)
		if err == nil {
			inst.flushed = true
			inst.flushedVersion = inst.state.StateVersion
		}
		inst.mu.Unlock()
		if err != nil {
			return err
		}
	}
	return nil
}

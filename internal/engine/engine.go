// Package engine wires the estimator, scheduler, and memory index to the
// state store. It owns the process-level concerns: restoring each
// component from its section of the persisted document, assembling
// snapshots, and the periodic persistence timer. Components never see the
// whole tree — only their own collections.
package engine

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"tempo/internal/config"
	"tempo/internal/estimate"
	"tempo/internal/memory"
	"tempo/internal/schedule"
	"tempo/internal/state"
)

// Engine is the orchestrator. All operation surfaces (HTTP, CLI) dispatch
// through its components.
type Engine struct {
	Estimator *estimate.Estimator
	Scheduler *schedule.Scheduler
	Memory    *memory.Index

	store  *state.Store
	cfg    config.Config
	logger *zap.Logger

	bootMu   sync.Mutex
	boot     state.BootMeta
	stopOnce sync.Once
	stopCh   chan struct{}
}

// New loads the persisted document and hands each component its section.
// The estimator rebuilds its baselines by replaying history; nothing
// derived is trusted from disk.
func New(cfg config.Config, store *state.Store, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	doc := store.Load()

	est := estimate.New(cfg.Estimator, logger)
	est.Restore(doc.TaskHistory, doc.ActiveTasks)

	sch := schedule.New(cfg.Scheduler, logger)
	sch.Restore(doc.ScheduledTasks)

	mem := memory.New(cfg.Memory, logger)
	mem.Restore(doc.MemoryIndex)

	e := &Engine{
		Estimator: est,
		Scheduler: sch,
		Memory:    mem,
		store:     store,
		cfg:       cfg,
		logger:    logger,
		boot: state.BootMeta{
			BootTime:  time.Now(),
			Ticks:     doc.Boot.Ticks,
			SessionID: est.SessionID(),
		},
		stopCh: make(chan struct{}),
	}

	logger.Info("engine restored",
		zap.String("state", store.Path()),
		zap.Int("history", len(doc.TaskHistory)),
		zap.Int("active", len(doc.ActiveTasks)),
		zap.Int("tasks", len(doc.ScheduledTasks)),
		zap.Int("memories", len(doc.MemoryIndex)))
	return e
}

// Snapshot assembles a persistable document from the components. Each
// export takes that component's lock, so the snapshot only ever contains
// states from between dispatched operations, never mid-mutation.
func (e *Engine) Snapshot() state.Document {
	history, active := e.Estimator.Export()

	e.bootMu.Lock()
	boot := e.boot
	e.bootMu.Unlock()

	return state.Document{
		TaskHistory:    history,
		ActiveTasks:    active,
		ScheduledTasks: e.Scheduler.Export(),
		MemoryIndex:    e.Memory.Export(),
		Boot:           boot,
	}
}

// Persist writes a snapshot to the store.
func (e *Engine) Persist() error {
	e.bootMu.Lock()
	e.boot.Ticks++
	e.bootMu.Unlock()

	if err := e.store.Save(e.Snapshot()); err != nil {
		e.logger.Error("persist failed", zap.Error(err))
		return err
	}
	return nil
}

// AddTask computes an estimate for the pair and schedules a task carrying
// it. The scheduler itself only ever accepts a precomputed estimate.
func (e *Engine) AddTask(in schedule.Input, category estimate.Category, complexity estimate.Complexity) (schedule.Task, error) {
	in.Estimate = e.Estimator.Estimate(category, complexity)
	return e.Scheduler.AddTask(in)
}

// StartPersistTimer saves once at startup and then on the configured
// interval until Stop.
func (e *Engine) StartPersistTimer() {
	if err := e.Persist(); err != nil {
		e.logger.Warn("startup persist failed", zap.Error(err))
	}

	go func() {
		ticker := time.NewTicker(e.cfg.State.PersistInterval())
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := e.Persist(); err != nil {
					e.logger.Warn("periodic persist failed", zap.Error(err))
				}
			case <-e.stopCh:
				return
			}
		}
	}()
}

// Stop halts the persistence timer and writes a final snapshot.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.stopCh)
		if err := e.Persist(); err != nil {
			e.logger.Warn("final persist failed", zap.Error(err))
		}
	})
}

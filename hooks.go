package supplymap

import (
	"sync"

	"github.com/agentstation/supplymap/pkg/catalogs"
	"github.com/agentstation/supplymap/pkg/ingest"
	pkgsync "github.com/agentstation/supplymap/pkg/sync"
)

// Compile-time interface check to ensure proper implementation.
var _ Hooks = (*client)(nil)

// Hook function types for catalog events
type (
	// RecordAddedHook is called when a sync inserted a canonical record
	RecordAddedHook func(identity string, rec catalogs.Record)

	// RecordUpdatedHook is called when a sync replaced a canonical record
	RecordUpdatedHook func(identity string, rec catalogs.Record)

	// SyncCompletedHook is called after every sync run, failed or not
	SyncCompletedHook func(result *pkgsync.Result)

	// ImportCompletedHook is called after every committed import
	ImportCompletedHook func(result *ingest.Result)
)

// Hooks registers event callbacks. Record hooks fire only after the
// transaction committed.
type Hooks interface {
	OnRecordAdded(RecordAddedHook)
	OnRecordUpdated(RecordUpdatedHook)
	OnSyncCompleted(SyncCompletedHook)
	OnImportCompleted(ImportCompletedHook)
}

// hooks manages event callbacks for catalog changes
type hooks struct {
	mu                sync.RWMutex
	onRecordAdded     []RecordAddedHook
	onRecordUpdated   []RecordUpdatedHook
	onSyncCompleted   []SyncCompletedHook
	onImportCompleted []ImportCompletedHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

func (c *client) OnRecordAdded(fn RecordAddedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onRecordAdded = append(c.hooks.onRecordAdded, fn)
}

func (c *client) OnRecordUpdated(fn RecordUpdatedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onRecordUpdated = append(c.hooks.onRecordUpdated, fn)
}

func (c *client) OnSyncCompleted(fn SyncCompletedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onSyncCompleted = append(c.hooks.onSyncCompleted, fn)
}

func (c *client) OnImportCompleted(fn ImportCompletedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onImportCompleted = append(c.hooks.onImportCompleted, fn)
}

// committed is one record written by a sync.
type committed struct {
	identity string
	record   catalogs.Record
	updated  bool
}

// triggerCommitted fires the record hooks for a committed sync.
func (h *hooks) triggerCommitted(records []committed) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range records {
		if c.updated {
			for _, hook := range h.onRecordUpdated {
				hook(c.identity, c.record.Clone())
			}
			continue
		}
		for _, hook := range h.onRecordAdded {
			hook(c.identity, c.record.Clone())
		}
	}
}

func (h *hooks) triggerSync(result *pkgsync.Result) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onSyncCompleted {
		hook(result)
	}
}

func (h *hooks) triggerImport(result *ingest.Result) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, hook := range h.onImportCompleted {
		hook(result)
	}
}

// Package engine implements the command handlers of the bill ledger. Each
// handler follows the same shape: fetch, assert state and permission, clone,
// mutate, recompute allocation state where money is involved, append exactly
// one activity entry, persist.
//
// The engine assumes the host serializes all commands into one global total
// order and runs each to completion before the next begins. There is no
// internal locking; reads and writes within one command rely on the store's
// read-your-writes ordering under that serialization. This assumption is a
// documented precondition, not something the engine enforces.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lingz450/receiptsplit/internal/models"
	"github.com/Lingz450/receiptsplit/internal/storage"
)

// Engine executes ledger commands against the host key-value store.
type Engine struct {
	kv storage.KV
}

// New returns an engine bound to the given store.
func New(kv storage.KV) *Engine {
	return &Engine{kv: kv}
}

// now reads the logical clock. Zero means the clock has not started.
func (e *Engine) now(ctx context.Context) int64 {
	var t int64
	if err := storage.GetJSON(ctx, e.kv, storage.CurrentTimeKey, &t); err != nil {
		return 0
	}
	return t
}

// AdvanceClock writes the logical clock. The host calls this from whatever
// mechanism drives time, under the same serialization as commands.
func (e *Engine) AdvanceClock(ctx context.Context, nowMillis int64) error {
	return storage.PutJSON(ctx, e.kv, storage.CurrentTimeKey, nowMillis)
}

func (e *Engine) getBill(ctx context.Context, id int64) (*models.Bill, error) {
	bill := new(models.Bill)
	err := storage.GetJSON(ctx, e.kv, storage.BillKey(id), bill)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: bill %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return bill, nil
}

func (e *Engine) putBill(ctx context.Context, bill *models.Bill) error {
	return storage.PutJSON(ctx, e.kv, storage.BillKey(bill.ID), bill)
}

func (e *Engine) getGroup(ctx context.Context, id int64) (*models.Group, error) {
	group := new(models.Group)
	err := storage.GetJSON(ctx, e.kv, storage.GroupKey(id), group)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: group %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return group, nil
}

func (e *Engine) getTemplate(ctx context.Context, id int64) (*models.Template, error) {
	tpl := new(models.Template)
	err := storage.GetJSON(ctx, e.kv, storage.TemplateKey(id), tpl)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: template %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return tpl, nil
}

// cloneBill deep-copies a bill before mutation, failing closed.
func (e *Engine) cloneBill(bill *models.Bill) (*models.Bill, error) {
	cloned, err := bill.Clone()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCloneFailure, err)
	}
	return cloned, nil
}

// nextID reads a global counter and returns its successor. The caller
// persists the new value with bumpCounter after the owning record write,
// which is safe under the host's command serialization.
func (e *Engine) nextID(ctx context.Context, counterKey string) (int64, error) {
	var counter int64
	err := storage.GetJSON(ctx, e.kv, counterKey, &counter)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return 0, err
	}
	return counter + 1, nil
}

func (e *Engine) bumpCounter(ctx context.Context, counterKey string, id int64) error {
	return storage.PutJSON(ctx, e.kv, counterKey, id)
}

// readIndex returns a recency index, most recent first. Absent means empty.
func (e *Engine) readIndex(ctx context.Context, indexKey string) ([]int64, error) {
	var ids []int64
	err := storage.GetJSON(ctx, e.kv, indexKey, &ids)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	return ids, nil
}

// pushIndex prepends id to a recency index, trimming to RecencyIndexCap.
func (e *Engine) pushIndex(ctx context.Context, indexKey string, id int64) error {
	ids, err := e.readIndex(ctx, indexKey)
	if err != nil {
		return err
	}
	next := append([]int64{id}, ids...)
	if len(next) > storage.RecencyIndexCap {
		next = next[:storage.RecencyIndexCap]
	}
	return storage.PutJSON(ctx, e.kv, indexKey, next)
}

// requireActor normalizes and asserts the actor address supplied by the host.
func requireActor(actor string) (string, error) {
	addr := models.NormalizeAddress(actor)
	if addr == "" {
		return "", fmt.Errorf("%w: address required", ErrInvalidInput)
	}
	return addr, nil
}

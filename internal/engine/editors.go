package engine

import (
	"context"
	"fmt"

	"github.com/Lingz450/receiptsplit/internal/models"
)

// EditorRequest adds or removes a delegated editor address.
type EditorRequest struct {
	ID            int64  `json:"id" validate:"required,min=1"`
	EditorAddress string `json:"editor_address" validate:"required,min=1,max=128"`
}

// EditorsResult lists the current editors.
type EditorsResult struct {
	ID      int64    `json:"id"`
	Editors []string `json:"editors"`
}

// AnchorReceiptRequest stores an external document hash on the bill.
type AnchorReceiptRequest struct {
	ID   int64  `json:"id" validate:"required,min=1"`
	Hash string `json:"hash" validate:"required,min=8,max=128"`
	Note string `json:"note,omitempty" validate:"omitempty,max=200"`
}

// ReceiptResult acknowledges the anchored hash.
type ReceiptResult struct {
	ID   int64  `json:"id"`
	Hash string `json:"hash"`
}

// AddEditor grants item-editing rights to an address. The creator is always
// implied and cannot be added. Creator only; the list caps at
// models.MaxEditors.
func (e *Engine) AddEditor(ctx context.Context, actor string, req *EditorRequest) (*EditorsResult, error) {
	bill, err := e.getBill(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if bill.Archived {
		return nil, fmt.Errorf("%w: bill is archived", ErrInvalidState)
	}

	addr, err := requireActor(actor)
	if err != nil {
		return nil, err
	}
	if !bill.IsCreator(addr) {
		return nil, fmt.Errorf("%w: only creator can add editors", ErrPermissionDenied)
	}

	editor := models.NormalizeAddress(req.EditorAddress)
	if editor == "" {
		return nil, fmt.Errorf("%w: editor address required", ErrInvalidInput)
	}
	if editor == addr {
		return nil, fmt.Errorf("%w: creator is already implied", ErrInvalidInput)
	}

	cloned, err := e.cloneBill(bill)
	if err != nil {
		return nil, err
	}
	present := false
	for _, existing := range cloned.Editors {
		if models.NormalizeAddress(existing) == editor {
			present = true
			break
		}
	}
	if !present {
		cloned.Editors = append(cloned.Editors, editor)
	}
	if len(cloned.Editors) > models.MaxEditors {
		cloned.Editors = cloned.Editors[:models.MaxEditors]
	}

	cloned.AppendActivity("bill_editor_added", addr, e.now(ctx), map[string]any{
		"id":             req.ID,
		"editor_address": editor,
	})

	if err := e.putBill(ctx, cloned); err != nil {
		return nil, err
	}
	return &EditorsResult{ID: req.ID, Editors: cloned.Editors}, nil
}

// RemoveEditor revokes item-editing rights. Creator only.
func (e *Engine) RemoveEditor(ctx context.Context, actor string, req *EditorRequest) (*EditorsResult, error) {
	bill, err := e.getBill(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	addr, err := requireActor(actor)
	if err != nil {
		return nil, err
	}
	if !bill.IsCreator(addr) {
		return nil, fmt.Errorf("%w: only creator can remove editors", ErrPermissionDenied)
	}

	editor := models.NormalizeAddress(req.EditorAddress)
	if editor == "" {
		return nil, fmt.Errorf("%w: editor address required", ErrInvalidInput)
	}

	cloned, err := e.cloneBill(bill)
	if err != nil {
		return nil, err
	}
	kept := cloned.Editors[:0]
	for _, existing := range cloned.Editors {
		if models.NormalizeAddress(existing) != editor {
			kept = append(kept, existing)
		}
	}
	cloned.Editors = kept

	cloned.AppendActivity("bill_editor_removed", addr, e.now(ctx), map[string]any{
		"id":             req.ID,
		"editor_address": editor,
	})

	if err := e.putBill(ctx, cloned); err != nil {
		return nil, err
	}
	return &EditorsResult{ID: req.ID, Editors: cloned.Editors}, nil
}

// ListEditors returns the editor list. Read-only, no activity entry.
func (e *Engine) ListEditors(ctx context.Context, req *BillIDRequest) (*EditorsResult, error) {
	bill, err := e.getBill(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &EditorsResult{ID: req.ID, Editors: bill.Editors}, nil
}

// AnchorReceipt appends a receipt hash; oldest receipts evict past the cap.
// Creator or editor only.
func (e *Engine) AnchorReceipt(ctx context.Context, actor string, req *AnchorReceiptRequest) (*ReceiptResult, error) {
	bill, err := e.getBill(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	addr, err := requireActor(actor)
	if err != nil {
		return nil, err
	}
	if !bill.IsEditorOrCreator(addr) {
		return nil, fmt.Errorf("%w: only creator/editor can anchor receipts", ErrPermissionDenied)
	}

	hash := trim(req.Hash)
	if len(hash) < 8 {
		return nil, fmt.Errorf("%w: hash required", ErrInvalidInput)
	}

	cloned, err := e.cloneBill(bill)
	if err != nil {
		return nil, err
	}
	cloned.AppendReceipt(models.Receipt{
		Hash: hash,
		Note: trim(req.Note),
		By:   addr,
		At:   e.now(ctx),
	})

	cloned.AppendActivity("bill_receipt_anchored", addr, e.now(ctx), map[string]any{
		"id":   req.ID,
		"hash": hash,
	})

	if err := e.putBill(ctx, cloned); err != nil {
		return nil, err
	}
	return &ReceiptResult{ID: req.ID, Hash: hash}, nil
}

package engine

import (
	"context"
	"fmt"

	"github.com/Lingz450/receiptsplit/internal/models"
	"github.com/Lingz450/receiptsplit/internal/money"
)

// AddItemRequest appends an expense line. SplitBetween is a comma-separated
// address list; empty targets every current participant.
type AddItemRequest struct {
	ID           int64   `json:"id" validate:"required,min=1"`
	Description  string  `json:"description" validate:"required,min=1,max=200"`
	Amount       float64 `json:"amount" validate:"min=0"`
	SplitBetween string  `json:"split_between,omitempty" validate:"omitempty,max=4096"`
}

// RemoveItemRequest deletes an expense line by index.
type RemoveItemRequest struct {
	ID        int64 `json:"id" validate:"required,min=1"`
	ItemIndex int   `json:"item_index" validate:"min=0"`
}

// EditItemRequest edits an expense line. Nil fields stay untouched; an
// explicitly empty SplitBetween clears the targeting.
type EditItemRequest struct {
	ID           int64    `json:"id" validate:"required,min=1"`
	ItemIndex    int      `json:"item_index" validate:"min=0"`
	Description  *string  `json:"description,omitempty" validate:"omitempty,min=1,max=200"`
	Amount       *float64 `json:"amount,omitempty" validate:"omitempty,min=0"`
	SplitBetween *string  `json:"split_between,omitempty" validate:"omitempty,max=4096"`
}

// TipRequest appends a tip item, either a fixed amount or a percentage of
// the current item subtotal.
type TipRequest struct {
	ID           int64    `json:"id" validate:"required,min=1"`
	Amount       *float64 `json:"amount,omitempty" validate:"omitempty,min=0"`
	Percent      *float64 `json:"percent,omitempty" validate:"omitempty,min=0,max=100"`
	SplitBetween string   `json:"split_between,omitempty" validate:"omitempty,max=4096"`
}

// ItemResult echoes the affected line.
type ItemResult struct {
	ID           int64    `json:"id"`
	ItemIndex    int      `json:"item_index"`
	Description  string   `json:"description"`
	Amount       float64  `json:"amount"`
	SplitBetween []string `json:"split_between,omitempty"`
}

// requireOpenForItems loads a bill and asserts it accepts item mutations by
// this actor.
func (e *Engine) requireOpenForItems(ctx context.Context, id int64, actor string) (*models.Bill, string, error) {
	bill, err := e.getBill(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if bill.Closed {
		return nil, "", fmt.Errorf("%w: bill is closed", ErrInvalidState)
	}
	if bill.Archived {
		return nil, "", fmt.Errorf("%w: bill is archived", ErrInvalidState)
	}
	addr, err := requireActor(actor)
	if err != nil {
		return nil, "", err
	}
	if !bill.IsEditorOrCreator(addr) {
		return nil, "", fmt.Errorf("%w: only creator/editor can modify items", ErrPermissionDenied)
	}
	return bill, addr, nil
}

// resolveSplitBetween parses a split_between CSV and asserts every entry is
// a current participant.
func resolveSplitBetween(bill *models.Bill, csv string) ([]string, error) {
	targets := parseAddressCSV(csv)
	for _, addr := range targets {
		if !bill.HasParticipant(addr) {
			return nil, fmt.Errorf("%w: split_between contains non-participant address: %s", ErrInvalidInput, addr)
		}
	}
	return targets, nil
}

// AddItem appends an expense line. Creator or editor only.
func (e *Engine) AddItem(ctx context.Context, actor string, req *AddItemRequest) (*ItemResult, error) {
	bill, addr, err := e.requireOpenForItems(ctx, req.ID, actor)
	if err != nil {
		return nil, err
	}
	if !money.IsFinite(req.Amount) || req.Amount < 0 {
		return nil, fmt.Errorf("%w: amount must be non-negative", ErrInvalidInput)
	}
	targets, err := resolveSplitBetween(bill, req.SplitBetween)
	if err != nil {
		return nil, err
	}

	cloned, err := e.cloneBill(bill)
	if err != nil {
		return nil, err
	}
	item := models.Item{
		Description:  req.Description,
		Amount:       money.Round(req.Amount),
		SplitBetween: targets,
	}
	cloned.Items = append(cloned.Items, item)

	cloned.AppendActivity("bill_item_added", addr, e.now(ctx), map[string]any{
		"id":                  req.ID,
		"description":         item.Description,
		"amount":              item.Amount,
		"split_between_count": len(targets),
	})

	if err := e.putBill(ctx, cloned); err != nil {
		return nil, err
	}
	return &ItemResult{
		ID:           req.ID,
		ItemIndex:    len(cloned.Items) - 1,
		Description:  item.Description,
		Amount:       item.Amount,
		SplitBetween: targets,
	}, nil
}

// RemoveItem deletes an expense line by index. Creator or editor only.
func (e *Engine) RemoveItem(ctx context.Context, actor string, req *RemoveItemRequest) (*ItemResult, error) {
	bill, addr, err := e.requireOpenForItems(ctx, req.ID, actor)
	if err != nil {
		return nil, err
	}
	if req.ItemIndex < 0 || req.ItemIndex >= len(bill.Items) {
		return nil, fmt.Errorf("%w: invalid item index", ErrInvalidInput)
	}

	cloned, err := e.cloneBill(bill)
	if err != nil {
		return nil, err
	}
	removed := cloned.Items[req.ItemIndex]
	cloned.Items = append(cloned.Items[:req.ItemIndex], cloned.Items[req.ItemIndex+1:]...)

	cloned.AppendActivity("bill_item_removed", addr, e.now(ctx), map[string]any{
		"id":          req.ID,
		"item_index":  req.ItemIndex,
		"description": removed.Description,
		"amount":      money.Round(removed.Amount),
	})

	if err := e.putBill(ctx, cloned); err != nil {
		return nil, err
	}
	return &ItemResult{
		ID:          req.ID,
		ItemIndex:   req.ItemIndex,
		Description: removed.Description,
		Amount:      money.Round(removed.Amount),
	}, nil
}

// EditItem updates fields of an expense line. Creator or editor only.
func (e *Engine) EditItem(ctx context.Context, actor string, req *EditItemRequest) (*ItemResult, error) {
	bill, addr, err := e.requireOpenForItems(ctx, req.ID, actor)
	if err != nil {
		return nil, err
	}
	if req.ItemIndex < 0 || req.ItemIndex >= len(bill.Items) {
		return nil, fmt.Errorf("%w: invalid item index", ErrInvalidInput)
	}
	if req.Description == nil && req.Amount == nil && req.SplitBetween == nil {
		return nil, fmt.Errorf("%w: at least one field (description, amount, split_between) required", ErrInvalidInput)
	}

	cloned, err := e.cloneBill(bill)
	if err != nil {
		return nil, err
	}
	item := cloned.Items[req.ItemIndex]

	if req.Description != nil {
		description := trim(*req.Description)
		if description == "" {
			return nil, fmt.Errorf("%w: description required", ErrInvalidInput)
		}
		item.Description = description
	}
	if req.Amount != nil {
		if !money.IsFinite(*req.Amount) || *req.Amount < 0 {
			return nil, fmt.Errorf("%w: amount must be non-negative", ErrInvalidInput)
		}
		item.Amount = money.Round(*req.Amount)
	}
	if req.SplitBetween != nil {
		targets, err := resolveSplitBetween(bill, *req.SplitBetween)
		if err != nil {
			return nil, err
		}
		item.SplitBetween = targets
	}

	cloned.Items[req.ItemIndex] = item
	cloned.AppendActivity("bill_item_edited", addr, e.now(ctx), map[string]any{
		"id":          req.ID,
		"item_index":  req.ItemIndex,
		"description": item.Description,
		"amount":      item.Amount,
	})

	if err := e.putBill(ctx, cloned); err != nil {
		return nil, err
	}
	return &ItemResult{
		ID:           req.ID,
		ItemIndex:    req.ItemIndex,
		Description:  item.Description,
		Amount:       item.Amount,
		SplitBetween: item.SplitBetween,
	}, nil
}

// Tip appends a tip item. Percent tips compute against the subtotal of the
// items currently on the bill. Creator or editor only.
func (e *Engine) Tip(ctx context.Context, actor string, req *TipRequest) (*ItemResult, error) {
	bill, addr, err := e.requireOpenForItems(ctx, req.ID, actor)
	if err != nil {
		return nil, err
	}
	if req.Amount == nil && req.Percent == nil {
		return nil, fmt.Errorf("%w: provide amount or percent", ErrInvalidInput)
	}
	targets, err := resolveSplitBetween(bill, req.SplitBetween)
	if err != nil {
		return nil, err
	}

	var tipAmount float64
	var description string
	if req.Amount != nil {
		if !money.IsFinite(*req.Amount) || *req.Amount < 0 {
			return nil, fmt.Errorf("%w: tip amount must be non-negative", ErrInvalidInput)
		}
		tipAmount = money.Round(*req.Amount)
		description = "Tip"
	} else {
		pct := *req.Percent
		if !money.IsFinite(pct) || pct < 0 || pct > 100 {
			return nil, fmt.Errorf("%w: invalid percent", ErrInvalidInput)
		}
		var subtotal float64
		for _, item := range bill.Items {
			if money.IsFinite(item.Amount) {
				subtotal += item.Amount
			}
		}
		tipAmount = money.Round(subtotal * (pct / 100))
		description = fmt.Sprintf("Tip (%g%%)", pct)
	}

	cloned, err := e.cloneBill(bill)
	if err != nil {
		return nil, err
	}
	cloned.Items = append(cloned.Items, models.Item{
		Description:  description,
		Amount:       tipAmount,
		SplitBetween: targets,
	})

	cloned.AppendActivity("bill_tip_added", addr, e.now(ctx), map[string]any{
		"id":                  req.ID,
		"description":         description,
		"amount":              tipAmount,
		"split_between_count": len(targets),
	})

	if err := e.putBill(ctx, cloned); err != nil {
		return nil, err
	}
	return &ItemResult{
		ID:           req.ID,
		ItemIndex:    len(cloned.Items) - 1,
		Description:  description,
		Amount:       tipAmount,
		SplitBetween: targets,
	}, nil
}

package engine

import (
	"context"
	"fmt"

	"github.com/Lingz450/receiptsplit/internal/models"
	"github.com/Lingz450/receiptsplit/internal/storage"
)

// GroupCreateRequest starts a named multi-bill collection owned by the actor.
type GroupCreateRequest struct {
	Name string `json:"name" validate:"required,min=1,max=128"`
}

// GroupAddBillRequest appends a bill to a group's bounded membership list.
type GroupAddBillRequest struct {
	GroupID int64 `json:"group_id" validate:"required,min=1"`
	BillID  int64 `json:"bill_id" validate:"required,min=1"`
}

// GroupAddBillResult reports membership. AlreadyMember marks the no-op.
type GroupAddBillResult struct {
	GroupID       int64 `json:"group_id"`
	BillID        int64 `json:"bill_id"`
	AlreadyMember bool  `json:"already_member"`
}

// GroupIDRequest addresses a single group.
type GroupIDRequest struct {
	ID int64 `json:"group_id" validate:"required,min=1"`
}

// GroupBillSummary is one member bill inside a group view.
type GroupBillSummary struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Currency string `json:"currency"`
	Closed   bool   `json:"closed"`
	Archived bool   `json:"archived"`
}

// GroupOutput is a group with its member bills resolved to summaries.
// Bills whose records have vanished are skipped rather than reported.
type GroupOutput struct {
	models.Group
	Bills []GroupBillSummary `json:"bills"`
}

// GroupListRequest pages the group recency index.
type GroupListRequest struct {
	Limit int `json:"limit,omitempty" validate:"omitempty,min=1,max=50"`
}

// GroupCreate starts a group. The id comes from the group counter.
func (e *Engine) GroupCreate(ctx context.Context, actor string, req *GroupCreateRequest) (*models.Group, error) {
	addr, err := requireActor(actor)
	if err != nil {
		return nil, err
	}
	name := trim(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: group name required", ErrInvalidInput)
	}

	id, err := e.nextID(ctx, storage.GroupCounterKey)
	if err != nil {
		return nil, err
	}

	group := &models.Group{
		ID:             id,
		Name:           name,
		CreatorAddress: addr,
		BillIDs:        []int64{},
		CreatedAt:      e.now(ctx),
	}

	if err := storage.PutJSON(ctx, e.kv, storage.GroupKey(id), group); err != nil {
		return nil, err
	}
	if err := e.bumpCounter(ctx, storage.GroupCounterKey, id); err != nil {
		return nil, err
	}
	if err := e.pushIndex(ctx, storage.GroupIndexKey, id); err != nil {
		return nil, err
	}
	return group, nil
}

// GroupAddBill appends a bill to a group. Creator-only; re-adding an
// existing member is an accepted no-op.
func (e *Engine) GroupAddBill(ctx context.Context, actor string, req *GroupAddBillRequest) (*GroupAddBillResult, error) {
	group, err := e.getGroup(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	if _, err := e.getBill(ctx, req.BillID); err != nil {
		return nil, err
	}

	addr, err := requireActor(actor)
	if err != nil {
		return nil, err
	}
	if models.NormalizeAddress(group.CreatorAddress) != addr {
		return nil, fmt.Errorf("%w: only the group creator can add bills", ErrPermissionDenied)
	}

	for _, id := range group.BillIDs {
		if id == req.BillID {
			return &GroupAddBillResult{GroupID: req.GroupID, BillID: req.BillID, AlreadyMember: true}, nil
		}
	}

	cloned, err := group.Clone()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCloneFailure, err)
	}
	cloned.BillIDs = append(cloned.BillIDs, req.BillID)
	if len(cloned.BillIDs) > storage.RecencyIndexCap {
		cloned.BillIDs = cloned.BillIDs[:storage.RecencyIndexCap]
	}

	if err := storage.PutJSON(ctx, e.kv, storage.GroupKey(req.GroupID), cloned); err != nil {
		return nil, err
	}
	return &GroupAddBillResult{GroupID: req.GroupID, BillID: req.BillID}, nil
}

// GroupGet resolves a group and summarizes its member bills. Read-only.
func (e *Engine) GroupGet(ctx context.Context, req *GroupIDRequest) (*GroupOutput, error) {
	group, err := e.getGroup(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	bills := make([]GroupBillSummary, 0, len(group.BillIDs))
	for _, id := range group.BillIDs {
		bill, err := e.getBill(ctx, id)
		if err != nil {
			continue
		}
		bills = append(bills, GroupBillSummary{
			ID:       bill.ID,
			Title:    bill.Title,
			Currency: bill.Currency,
			Closed:   bill.Closed,
			Archived: bill.Archived,
		})
	}
	return &GroupOutput{Group: *group, Bills: bills}, nil
}

// GroupList returns the most recent groups, newest first. Read-only.
func (e *Engine) GroupList(ctx context.Context, req *GroupListRequest) ([]models.Group, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}

	ids, err := e.readIndex(ctx, storage.GroupIndexKey)
	if err != nil {
		return nil, err
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}

	groups := make([]models.Group, 0, len(ids))
	for _, id := range ids {
		group, err := e.getGroup(ctx, id)
		if err != nil {
			continue
		}
		groups = append(groups, *group)
	}
	return groups, nil
}

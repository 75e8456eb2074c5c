package engine

import (
	"context"
	"fmt"

	"github.com/Lingz450/receiptsplit/internal/models"
	"github.com/Lingz450/receiptsplit/internal/money"
	"github.com/Lingz450/receiptsplit/internal/storage"
)

// CreateRequest starts a new bill with the actor as creator and sole
// participant.
type CreateRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Currency    string `json:"currency" validate:"required,min=1,max=10"`
	CreatorName string `json:"creator_name" validate:"required,min=1,max=128"`
	Tags        string `json:"tags,omitempty" validate:"omitempty,max=100"`
}

// CreateResult carries the id assigned from the global sequence.
type CreateResult struct {
	ID       int64    `json:"id"`
	Title    string   `json:"title"`
	Currency string   `json:"currency"`
	Tags     []string `json:"tags"`
}

// JoinRequest adds the actor to a bill's participant list.
type JoinRequest struct {
	ID   int64  `json:"id" validate:"required,min=1"`
	Name string `json:"name" validate:"required,min=1,max=128"`
}

// JoinResult reports membership. AlreadyMember marks the idempotent no-op.
type JoinResult struct {
	ID            int64  `json:"id"`
	Address       string `json:"address"`
	Name          string `json:"name"`
	AlreadyMember bool   `json:"already_member"`
}

// JoinByCodeRequest joins the most recent open bill carrying a matching,
// unexpired invite code.
type JoinByCodeRequest struct {
	Code string `json:"code" validate:"required,min=3,max=40"`
	Name string `json:"name" validate:"required,min=1,max=128"`
}

// UpdateRequest edits bill metadata. Nil fields stay untouched.
type UpdateRequest struct {
	ID       int64   `json:"id" validate:"required,min=1"`
	Title    *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Currency *string `json:"currency,omitempty" validate:"omitempty,min=1,max=10"`
	Tags     *string `json:"tags,omitempty" validate:"omitempty,max=100"`
}

// UpdateResult echoes the metadata after the edit.
type UpdateResult struct {
	ID       int64    `json:"id"`
	Title    string   `json:"title"`
	Currency string   `json:"currency"`
	Tags     []string `json:"tags"`
}

// BillIDRequest addresses a single bill; used by close, reopen, archive,
// unarchive, and leave.
type BillIDRequest struct {
	ID int64 `json:"id" validate:"required,min=1"`
}

// StatusResult acknowledges a lifecycle transition. Changed is false on the
// idempotent no-op paths (closing an already-closed bill).
type StatusResult struct {
	ID      int64 `json:"id"`
	Changed bool  `json:"changed"`
}

// NoteRequest appends a comment to the bill's bounded note list.
type NoteRequest struct {
	ID   int64  `json:"id" validate:"required,min=1"`
	Text string `json:"text" validate:"required,min=1,max=300"`
}

// RenameRequest changes the actor's own display name on the bill.
type RenameRequest struct {
	ID   int64  `json:"id" validate:"required,min=1"`
	Name string `json:"name" validate:"required,min=1,max=128"`
}

// DeadlineRequest sets or clears the bill deadline label.
type DeadlineRequest struct {
	ID       int64  `json:"id" validate:"required,min=1"`
	Deadline string `json:"deadline,omitempty" validate:"omitempty,max=100"`
}

// CopyRequest starts a fresh bill from an existing one. Items carry over
// with split_between stripped, since the new bill has different
// participants; payments, settlement marks, and notes never carry over.
type CopyRequest struct {
	ID          int64   `json:"id" validate:"required,min=1"`
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	CreatorName string  `json:"creator_name" validate:"required,min=1,max=128"`
	Currency    string  `json:"currency,omitempty" validate:"omitempty,min=1,max=10"`
	Tags        *string `json:"tags,omitempty" validate:"omitempty,max=100"`
}

// SetInviteRequest installs an invite code with an optional TTL in seconds
// against the logical clock.
type SetInviteRequest struct {
	ID     int64  `json:"id" validate:"required,min=1"`
	Code   string `json:"code" validate:"required,min=3,max=40"`
	TTLSec int64  `json:"ttl_sec,omitempty" validate:"omitempty,min=0,max=31536000"`
}

// SetInviteResult reports the installed code and absolute expiry (0 = none).
type SetInviteResult struct {
	ID        int64  `json:"id"`
	Code      string `json:"code"`
	ExpiresAt int64  `json:"expires_at"`
}

// newBill assembles a fresh bill record with the creator as the only
// participant.
func newBill(id int64, title, currency, creatorName, creatorAddress string, tags []string) *models.Bill {
	bill := &models.Bill{
		ID:           id,
		Title:        title,
		Currency:     currency,
		CreatorName:  creatorName,
		Participants: []models.Participant{},
		Items:        []models.Item{},
		Payments:     map[string]models.PaymentRecord{},
		Settled:      map[string]string{},
		Notes:        []models.Note{},
		Editors:      []string{},
		Receipts:     []models.Receipt{},
		Tags:         tags,
		Weights:      map[string]float64{},
		Activity:     []models.ActivityEntry{},
	}
	if creatorAddress != "" {
		bill.CreatorAddress = creatorAddress
		bill.Participants = append(bill.Participants, models.Participant{Address: creatorAddress, Name: creatorName})
		bill.Weights[creatorAddress] = 1
	}
	return bill
}

// persistNewBill writes the bill, advances the global counter, and prepends
// the recency index, in that order.
func (e *Engine) persistNewBill(ctx context.Context, bill *models.Bill) error {
	if err := e.putBill(ctx, bill); err != nil {
		return err
	}
	if err := e.bumpCounter(ctx, storage.BillCounterKey, bill.ID); err != nil {
		return err
	}
	return e.pushIndex(ctx, storage.BillIndexKey, bill.ID)
}

// Create starts a new bill. The id comes from the global monotonic counter.
func (e *Engine) Create(ctx context.Context, actor string, req *CreateRequest) (*CreateResult, error) {
	addr, err := requireActor(actor)
	if err != nil {
		return nil, err
	}

	id, err := e.nextID(ctx, storage.BillCounterKey)
	if err != nil {
		return nil, err
	}

	tags := parseTags(req.Tags)
	bill := newBill(id, req.Title, req.Currency, req.CreatorName, addr, tags)
	bill.AppendActivity("bill_created", addr, e.now(ctx), map[string]any{
		"id":       id,
		"title":    bill.Title,
		"currency": bill.Currency,
		"tags":     tags,
	})

	if err := e.persistNewBill(ctx, bill); err != nil {
		return nil, err
	}
	return &CreateResult{ID: id, Title: bill.Title, Currency: bill.Currency, Tags: tags}, nil
}

// join adds addr to the bill's participants with a default weight.
func (e *Engine) join(ctx context.Context, bill *models.Bill, addr, name, event string) (*JoinResult, error) {
	if bill.HasParticipant(addr) {
		return &JoinResult{ID: bill.ID, Address: addr, Name: name, AlreadyMember: true}, nil
	}

	cloned, err := e.cloneBill(bill)
	if err != nil {
		return nil, err
	}
	cloned.Participants = append(cloned.Participants, models.Participant{Address: addr, Name: name})
	if cloned.Weights == nil {
		cloned.Weights = map[string]float64{}
	}
	if !(cloned.Weights[addr] > 0) {
		cloned.Weights[addr] = 1
	}

	cloned.AppendActivity(event, addr, e.now(ctx), map[string]any{
		"id":      bill.ID,
		"name":    name,
		"address": addr,
	})

	if err := e.putBill(ctx, cloned); err != nil {
		return nil, err
	}
	return &JoinResult{ID: bill.ID, Address: addr, Name: name}, nil
}

// Join adds the actor to an open bill. Re-joining is an accepted no-op.
func (e *Engine) Join(ctx context.Context, actor string, req *JoinRequest) (*JoinResult, error) {
	bill, err := e.getBill(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if bill.Closed {
		return nil, fmt.Errorf("%w: bill is closed", ErrInvalidState)
	}
	if bill.Archived {
		return nil, fmt.Errorf("%w: bill is archived", ErrInvalidState)
	}

	addr, err := requireActor(actor)
	if err != nil {
		return nil, err
	}
	name := trim(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	return e.join(ctx, bill, addr, name, "bill_joined")
}

// JoinByCode scans the recency index for the newest open bill whose invite
// code matches and has not expired against the logical clock.
func (e *Engine) JoinByCode(ctx context.Context, actor string, req *JoinByCodeRequest) (*JoinResult, error) {
	code := trim(req.Code)
	if len(code) < 3 {
		return nil, fmt.Errorf("%w: invite code required", ErrInvalidInput)
	}
	name := trim(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	addr, err := requireActor(actor)
	if err != nil {
		return nil, err
	}

	ids, err := e.readIndex(ctx, storage.BillIndexKey)
	if err != nil {
		return nil, err
	}

	now := e.now(ctx)
	for _, id := range ids {
		bill, err := e.getBill(ctx, id)
		if err != nil {
			continue
		}
		if bill.InviteCode != code || bill.Closed || bill.Archived {
			continue
		}
		if bill.InviteExpiresAt > 0 && now > 0 && now > bill.InviteExpiresAt {
			continue
		}
		return e.join(ctx, bill, addr, name, "bill_joined_by_code")
	}
	return nil, fmt.Errorf("%w: no active bill for this invite code", ErrNotFound)
}

// Update edits title, currency, or tags. Creator only.
func (e *Engine) Update(ctx context.Context, actor string, req *UpdateRequest) (*UpdateResult, error) {
	bill, err := e.getBill(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if bill.Closed {
		return nil, fmt.Errorf("%w: bill is closed", ErrInvalidState)
	}
	if bill.Archived {
		return nil, fmt.Errorf("%w: bill is archived", ErrInvalidState)
	}

	addr, err := requireActor(actor)
	if err != nil {
		return nil, err
	}
	if !bill.IsCreator(addr) {
		return nil, fmt.Errorf("%w: only creator can update", ErrPermissionDenied)
	}
	if req.Title == nil && req.Currency == nil && req.Tags == nil {
		return nil, fmt.Errorf("%w: at least one field (title, currency, tags) required", ErrInvalidInput)
	}

	cloned, err := e.cloneBill(bill)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		title := trim(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title required", ErrInvalidInput)
		}
		cloned.Title = title
	}
	if req.Currency != nil {
		currency := trim(*req.Currency)
		if currency == "" {
			return nil, fmt.Errorf("%w: currency required", ErrInvalidInput)
		}
		cloned.Currency = currency
	}
	if req.Tags != nil {
		cloned.Tags = parseTags(*req.Tags)
	}

	cloned.AppendActivity("bill_updated", addr, e.now(ctx), map[string]any{
		"id":       req.ID,
		"title":    cloned.Title,
		"currency": cloned.Currency,
		"tags":     cloned.Tags,
	})

	if err := e.putBill(ctx, cloned); err != nil {
		return nil, err
	}
	return &UpdateResult{ID: req.ID, Title: cloned.Title, Currency: cloned.Currency, Tags: cloned.Tags}, nil
}

// Close marks the bill closed. Creator only; closing twice is a no-op.
func (e *Engine) Close(ctx context.Context, actor string, req *BillIDRequest) (*StatusResult, error) {
	bill, err := e.getBill(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	addr, err := requireActor(actor)
	if err != nil {
		return nil, err
	}
	if !bill.IsCreator(addr) {
		return nil, fmt.Errorf("%w: only creator can close", ErrPermissionDenied)
	}
	if bill.Archived {
		return nil, fmt.Errorf("%w: bill is archived", ErrInvalidState)
	}
	if bill.Closed {
		return &StatusResult{ID: req.ID}, nil
	}

	cloned, err := e.cloneBill(bill)
	if err != nil {
		return nil, err
	}
	cloned.Closed = true
	cloned.AppendActivity("bill_closed", addr, e.now(ctx), map[string]any{"id": req.ID})

	if err := e.putBill(ctx, cloned); err != nil {
		return nil, err
	}
	return &StatusResult{ID: req.ID, Changed: true}, nil
}

// Reopen clears the closed flag. Creator only.
func (e *Engine) Reopen(ctx context.Context, actor string, req *BillIDRequest) (*StatusResult, error) {
	bill, err := e.getBill(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	addr, err := requireActor(actor)
	if err != nil {
		return nil, err
	}
	if !bill.IsCreator(addr) {
		return nil, fmt.Errorf("%w: only creator can reopen", ErrPermissionDenied)
	}
	if !bill.Closed {
		return nil, fmt.Errorf("%w: bill is not closed", ErrInvalidState)
	}
	if bill.Archived {
		return nil, fmt.Errorf("%w: bill is archived", ErrInvalidState)
	}

	cloned, err := e.cloneBill(bill)
	if err != nil {
		return nil, err
	}
	cloned.Closed = false
	cloned.AppendActivity("bill_reopened", addr, e.now(ctx), map[string]any{"id": req.ID})

	if err := e.putBill(ctx, cloned); err != nil {
		return nil, err
	}
	return &StatusResult{ID: req.ID, Changed: true}, nil
}

// Archive soft-deletes the bill. Archiving implies closing; the state is
// reversible only through Unarchive. Creator only.
func (e *Engine) Archive(ctx context.Context, actor string, req *BillIDRequest) (*StatusResult, error) {
	bill, err := e.getBill(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	addr, err := requireActor(actor)
	if err != nil {
		return nil, err
	}
	if !bill.IsCreator(addr) {
		return nil, fmt.Errorf("%w: only creator can archive", ErrPermissionDenied)
	}
	if bill.Archived {
		return nil, fmt.Errorf("%w: bill is already archived", ErrInvalidState)
	}

	cloned, err := e.cloneBill(bill)
	if err != nil {
		return nil, err
	}
	cloned.Archived = true
	cloned.Closed = true
	cloned.AppendActivity("bill_archived", addr, e.now(ctx), map[string]any{"id": req.ID})

	if err := e.putBill(ctx, cloned); err != nil {
		return nil, err
	}
	return &StatusResult{ID: req.ID, Changed: true}, nil
}

// Unarchive reverses a soft delete. The bill stays closed until reopened.
// Creator only.
func (e *Engine) Unarchive(ctx context.Context, actor string, req *BillIDRequest) (*StatusResult, error) {
	bill, err := e.getBill(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	addr, err := requireActor(actor)
	if err != nil {
		return nil, err
	}
	if !bill.IsCreator(addr) {
		return nil, fmt.Errorf("%w: only creator can unarchive", ErrPermissionDenied)
	}
	if !bill.Archived {
		return nil, fmt.Errorf("%w: bill is not archived", ErrInvalidState)
	}

	cloned, err := e.cloneBill(bill)
	if err != nil {
		return nil, err
	}
	cloned.Archived = false
	cloned.AppendActivity("bill_unarchived", addr, e.now(ctx), map[string]any{"id": req.ID})

	if err := e.putBill(ctx, cloned); err != nil {
		return nil, err
	}
	return &StatusResult{ID: req.ID, Changed: true}, nil
}

// Leave removes the actor from the participant list. Not allowed for the
// creator, for anyone with a recorded payment or settlement entry, or for
// anyone named in an item's split_between; the bill must keep at least one
// participant.
func (e *Engine) Leave(ctx context.Context, actor string, req *BillIDRequest) (*StatusResult, error) {
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
	if bill.IsCreator(addr) {
		return nil, fmt.Errorf("%w: creator cannot leave", ErrInvalidState)
	}
	if bill.Settled[addr] != "" {
		return nil, fmt.Errorf("%w: cannot leave after settling", ErrInvalidState)
	}
	if bill.PaidAmount(addr) > 0 {
		return nil, fmt.Errorf("%w: cannot leave after making payment", ErrInvalidState)
	}
	for _, item := range bill.Items {
		for _, target := range item.SplitBetween {
			if models.NormalizeAddress(target) == addr {
				return nil, fmt.Errorf("%w: cannot leave while assigned in split_between item", ErrInvalidState)
			}
		}
	}

	cloned, err := e.cloneBill(bill)
	if err != nil {
		return nil, err
	}
	kept := cloned.Participants[:0]
	for _, p := range cloned.Participants {
		if models.NormalizeAddress(p.Address) != addr {
			kept = append(kept, p)
		}
	}
	cloned.Participants = kept
	if len(cloned.Participants) == 0 {
		return nil, fmt.Errorf("%w: at least one participant required", ErrInvalidState)
	}
	delete(cloned.Weights, addr)
	delete(cloned.Settled, addr)
	delete(cloned.Payments, addr)

	cloned.AppendActivity("bill_left", addr, e.now(ctx), map[string]any{
		"id":      req.ID,
		"address": addr,
	})

	if err := e.putBill(ctx, cloned); err != nil {
		return nil, err
	}
	return &StatusResult{ID: req.ID, Changed: true}, nil
}

// AddNote appends a comment; oldest notes evict past the cap. Participants
// only.
func (e *Engine) AddNote(ctx context.Context, actor string, req *NoteRequest) (*StatusResult, error) {
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
	if !bill.HasParticipant(addr) {
		return nil, fmt.Errorf("%w: not a participant", ErrPermissionDenied)
	}
	text := trim(req.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: note text required", ErrInvalidInput)
	}

	cloned, err := e.cloneBill(bill)
	if err != nil {
		return nil, err
	}
	cloned.AppendNote(models.Note{By: addr, Text: text, At: e.now(ctx)})
	cloned.AppendActivity("bill_note_added", addr, e.now(ctx), map[string]any{
		"id":   req.ID,
		"text": text,
	})

	if err := e.putBill(ctx, cloned); err != nil {
		return nil, err
	}
	return &StatusResult{ID: req.ID, Changed: true}, nil
}

// RenameSelf updates the actor's own display name.
func (e *Engine) RenameSelf(ctx context.Context, actor string, req *RenameRequest) (*StatusResult, error) {
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
	if !bill.HasParticipant(addr) {
		return nil, fmt.Errorf("%w: not a participant", ErrPermissionDenied)
	}
	name := trim(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", ErrInvalidInput)
	}

	cloned, err := e.cloneBill(bill)
	if err != nil {
		return nil, err
	}
	for i := range cloned.Participants {
		if models.NormalizeAddress(cloned.Participants[i].Address) == addr {
			cloned.Participants[i].Name = name
		}
	}
	cloned.AppendActivity("bill_participant_renamed", addr, e.now(ctx), map[string]any{
		"id":      req.ID,
		"address": addr,
		"name":    name,
	})

	if err := e.putBill(ctx, cloned); err != nil {
		return nil, err
	}
	return &StatusResult{ID: req.ID, Changed: true}, nil
}

// SetDeadline sets or clears (empty string) the deadline label. Creator
// only.
func (e *Engine) SetDeadline(ctx context.Context, actor string, req *DeadlineRequest) (*StatusResult, error) {
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
		return nil, fmt.Errorf("%w: only creator can set deadline", ErrPermissionDenied)
	}

	deadline := trim(req.Deadline)
	cloned, err := e.cloneBill(bill)
	if err != nil {
		return nil, err
	}
	cloned.Deadline = deadline
	cloned.AppendActivity("bill_deadline_set", addr, e.now(ctx), map[string]any{
		"id":       req.ID,
		"deadline": deadline,
	})

	if err := e.putBill(ctx, cloned); err != nil {
		return nil, err
	}
	return &StatusResult{ID: req.ID, Changed: true}, nil
}

// Copy starts a fresh bill from an existing one. The actor becomes creator
// of the copy regardless of their role on the source.
func (e *Engine) Copy(ctx context.Context, actor string, req *CopyRequest) (*CreateResult, error) {
	source, err := e.getBill(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: source bill %d", ErrNotFound, req.ID)
	}

	addr, err := requireActor(actor)
	if err != nil {
		return nil, err
	}

	id, err := e.nextID(ctx, storage.BillCounterKey)
	if err != nil {
		return nil, err
	}

	var tags []string
	if req.Tags != nil {
		tags = parseTags(*req.Tags)
	} else {
		tags = append([]string{}, source.Tags...)
	}
	currency := trim(req.Currency)
	if currency == "" {
		currency = source.Currency
	}

	bill := newBill(id, req.Title, currency, req.CreatorName, addr, tags)
	for _, item := range source.Items {
		bill.Items = append(bill.Items, models.Item{
			Description: item.Description,
			Amount:      money.Round(item.Amount),
		})
	}

	bill.AppendActivity("bill_copied", addr, e.now(ctx), map[string]any{
		"id":         id,
		"source_id":  req.ID,
		"title":      bill.Title,
		"item_count": len(bill.Items),
	})

	if err := e.persistNewBill(ctx, bill); err != nil {
		return nil, err
	}
	return &CreateResult{ID: id, Title: bill.Title, Currency: bill.Currency, Tags: tags}, nil
}

// SetInvite installs an invite code. A positive TTL becomes an absolute
// expiry against the logical clock; expiry is skipped while the clock has
// not started. Creator only.
func (e *Engine) SetInvite(ctx context.Context, actor string, req *SetInviteRequest) (*SetInviteResult, error) {
	bill, err := e.getBill(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	addr, err := requireActor(actor)
	if err != nil {
		return nil, err
	}
	if !bill.IsCreator(addr) {
		return nil, fmt.Errorf("%w: only creator can set invite", ErrPermissionDenied)
	}
	code := trim(req.Code)
	if len(code) < 3 {
		return nil, fmt.Errorf("%w: invite code too short", ErrInvalidInput)
	}

	var expiresAt int64
	if req.TTLSec > 0 {
		if now := e.now(ctx); now > 0 {
			expiresAt = now + req.TTLSec*1000
		}
	}

	cloned, err := e.cloneBill(bill)
	if err != nil {
		return nil, err
	}
	cloned.InviteCode = code
	cloned.InviteExpiresAt = expiresAt
	cloned.AppendActivity("bill_invite_set", addr, e.now(ctx), map[string]any{
		"id":         req.ID,
		"expires_at": expiresAt,
	})

	if err := e.putBill(ctx, cloned); err != nil {
		return nil, err
	}
	return &SetInviteResult{ID: req.ID, Code: code, ExpiresAt: expiresAt}, nil
}

package engine

import (
	"context"
	"fmt"

	"github.com/Lingz450/receiptsplit/internal/models"
	"github.com/Lingz450/receiptsplit/internal/storage"
)

// TemplateSaveRequest captures a bill's skeleton as a reusable template.
type TemplateSaveRequest struct {
	ID   int64  `json:"id" validate:"required,min=1"`
	Name string `json:"name" validate:"required,min=1,max=128"`
}

// TemplateCreateRequest instantiates a fresh bill from a saved template.
// Title overrides the template title when set.
type TemplateCreateRequest struct {
	TemplateID  int64  `json:"template_id" validate:"required,min=1"`
	CreatorName string `json:"creator_name" validate:"required,min=1,max=128"`
	Title       string `json:"title,omitempty" validate:"omitempty,max=200"`
}

// TemplateIDRequest addresses a single template.
type TemplateIDRequest struct {
	ID int64 `json:"template_id" validate:"required,min=1"`
}

// TemplateListRequest pages the template recency index.
type TemplateListRequest struct {
	Limit int `json:"limit,omitempty" validate:"omitempty,min=1,max=50"`
}

// TemplateSave stores the bill's title, currency, and tags under a new
// template id. Creator-only; nothing transactional carries over.
func (e *Engine) TemplateSave(ctx context.Context, actor string, req *TemplateSaveRequest) (*models.Template, error) {
	bill, err := e.getBill(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	addr, err := requireActor(actor)
	if err != nil {
		return nil, err
	}
	if !bill.IsCreator(addr) {
		return nil, fmt.Errorf("%w: only the creator can save a template", ErrPermissionDenied)
	}

	name := trim(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: template name required", ErrInvalidInput)
	}

	id, err := e.nextID(ctx, storage.TemplateCounterKey)
	if err != nil {
		return nil, err
	}

	tags := bill.Tags
	if tags == nil {
		tags = []string{}
	}
	tpl := &models.Template{
		ID:         id,
		Name:       name,
		FromBillID: bill.ID,
		Title:      bill.Title,
		Currency:   bill.Currency,
		Tags:       tags,
		CreatedBy:  addr,
		CreatedAt:  e.now(ctx),
	}

	if err := storage.PutJSON(ctx, e.kv, storage.TemplateKey(id), tpl); err != nil {
		return nil, err
	}
	if err := e.bumpCounter(ctx, storage.TemplateCounterKey, id); err != nil {
		return nil, err
	}
	if err := e.pushIndex(ctx, storage.TemplateIndexKey, id); err != nil {
		return nil, err
	}
	return tpl, nil
}

// TemplateCreate starts a fresh bill from a template: title (overridable),
// currency, and tags carry over, nothing else. The actor becomes creator
// and sole participant.
func (e *Engine) TemplateCreate(ctx context.Context, actor string, req *TemplateCreateRequest) (*CreateResult, error) {
	tpl, err := e.getTemplate(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}

	addr, err := requireActor(actor)
	if err != nil {
		return nil, err
	}

	title := trim(req.Title)
	if title == "" {
		title = trim(tpl.Title)
	}
	if title == "" {
		return nil, fmt.Errorf("%w: title required", ErrInvalidInput)
	}
	currency := trim(tpl.Currency)
	if currency == "" {
		currency = "USD"
	}
	tags := tpl.Tags
	if tags == nil {
		tags = []string{}
	}

	id, err := e.nextID(ctx, storage.BillCounterKey)
	if err != nil {
		return nil, err
	}

	bill := newBill(id, title, currency, req.CreatorName, addr, tags)
	bill.AppendActivity("bill_created_from_template", addr, e.now(ctx), map[string]any{
		"id":          id,
		"template_id": req.TemplateID,
		"title":       title,
	})

	if err := e.persistNewBill(ctx, bill); err != nil {
		return nil, err
	}
	return &CreateResult{ID: id, Title: title, Currency: currency, Tags: tags}, nil
}

// TemplateGet returns one template. Read-only.
func (e *Engine) TemplateGet(ctx context.Context, req *TemplateIDRequest) (*models.Template, error) {
	return e.getTemplate(ctx, req.ID)
}

// TemplateList returns the most recent templates, newest first. Read-only.
func (e *Engine) TemplateList(ctx context.Context, req *TemplateListRequest) ([]models.Template, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}

	ids, err := e.readIndex(ctx, storage.TemplateIndexKey)
	if err != nil {
		return nil, err
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}

	templates := make([]models.Template, 0, len(ids))
	for _, id := range ids {
		tpl, err := e.getTemplate(ctx, id)
		if err != nil {
			continue
		}
		templates = append(templates, *tpl)
	}
	return templates, nil
}

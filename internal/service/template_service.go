package service

import (
	"context"
	"sync"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/Lingz450/receiptsplit/internal/engine"
	"github.com/Lingz450/receiptsplit/internal/models"
)

// TemplateService exposes the recurring-bill template commands.
type TemplateService struct {
	base
}

// NewTemplateService creates a TemplateService sharing the given serialization mutex.
func NewTemplateService(eng *engine.Engine, mu *sync.Mutex, validate *validator.Validate) *TemplateService {
	return &TemplateService{base{engine: eng, mu: mu, validate: validate}}
}

// TemplateListResponse wraps the template listing rows.
type TemplateListResponse struct {
	Templates []models.Template `json:"templates"`
}

func (s *TemplateService) Save(ctx context.Context, req *connect.Request[engine.TemplateSaveRequest]) (*connect.Response[models.Template], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.TemplateSaveRequest) (*models.Template, error) {
		return s.engine.TemplateSave(ctx, actor, msg)
	})
}

func (s *TemplateService) Create(ctx context.Context, req *connect.Request[engine.TemplateCreateRequest]) (*connect.Response[engine.CreateResult], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.TemplateCreateRequest) (*engine.CreateResult, error) {
		return s.engine.TemplateCreate(ctx, actor, msg)
	})
}

func (s *TemplateService) Get(ctx context.Context, req *connect.Request[engine.TemplateIDRequest]) (*connect.Response[models.Template], error) {
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.TemplateIDRequest) (*models.Template, error) {
		return s.engine.TemplateGet(ctx, msg)
	})
}

func (s *TemplateService) List(ctx context.Context, req *connect.Request[engine.TemplateListRequest]) (*connect.Response[TemplateListResponse], error) {
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.TemplateListRequest) (*TemplateListResponse, error) {
		templates, err := s.engine.TemplateList(ctx, msg)
		if err != nil {
			return nil, err
		}
		return &TemplateListResponse{Templates: templates}, nil
	})
}

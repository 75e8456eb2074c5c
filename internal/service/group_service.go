package service

import (
	"context"
	"sync"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/Lingz450/receiptsplit/internal/engine"
	"github.com/Lingz450/receiptsplit/internal/models"
)

// GroupService exposes the multi-bill collection commands.
type GroupService struct {
	base
}

// NewGroupService creates a GroupService sharing the given serialization mutex.
func NewGroupService(eng *engine.Engine, mu *sync.Mutex, validate *validator.Validate) *GroupService {
	return &GroupService{base{engine: eng, mu: mu, validate: validate}}
}

// GroupListResponse wraps the group listing rows.
type GroupListResponse struct {
	Groups []models.Group `json:"groups"`
}

func (s *GroupService) Create(ctx context.Context, req *connect.Request[engine.GroupCreateRequest]) (*connect.Response[models.Group], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.GroupCreateRequest) (*models.Group, error) {
		return s.engine.GroupCreate(ctx, actor, msg)
	})
}

func (s *GroupService) AddBill(ctx context.Context, req *connect.Request[engine.GroupAddBillRequest]) (*connect.Response[engine.GroupAddBillResult], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.GroupAddBillRequest) (*engine.GroupAddBillResult, error) {
		return s.engine.GroupAddBill(ctx, actor, msg)
	})
}

func (s *GroupService) Get(ctx context.Context, req *connect.Request[engine.GroupIDRequest]) (*connect.Response[engine.GroupOutput], error) {
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.GroupIDRequest) (*engine.GroupOutput, error) {
		return s.engine.GroupGet(ctx, msg)
	})
}

func (s *GroupService) List(ctx context.Context, req *connect.Request[engine.GroupListRequest]) (*connect.Response[GroupListResponse], error) {
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.GroupListRequest) (*GroupListResponse, error) {
		groups, err := s.engine.GroupList(ctx, msg)
		if err != nil {
			return nil, err
		}
		return &GroupListResponse{Groups: groups}, nil
	})
}

package service

import (
	"context"
	"sync"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/Lingz450/receiptsplit/internal/engine"
)

// BillService exposes every bill-level command.
type BillService struct {
	base
}

// NewBillService creates a BillService sharing the given serialization mutex.
func NewBillService(eng *engine.Engine, mu *sync.Mutex, validate *validator.Validate) *BillService {
	return &BillService{base{engine: eng, mu: mu, validate: validate}}
}

// StatsRequest has no parameters.
type StatsRequest struct{}

// ListResponse wraps the bill listing rows.
type ListResponse struct {
	Bills []engine.ListEntry `json:"bills"`
}

func (s *BillService) Create(ctx context.Context, req *connect.Request[engine.CreateRequest]) (*connect.Response[engine.CreateResult], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.CreateRequest) (*engine.CreateResult, error) {
		return s.engine.Create(ctx, actor, msg)
	})
}

func (s *BillService) Join(ctx context.Context, req *connect.Request[engine.JoinRequest]) (*connect.Response[engine.JoinResult], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.JoinRequest) (*engine.JoinResult, error) {
		return s.engine.Join(ctx, actor, msg)
	})
}

func (s *BillService) JoinByCode(ctx context.Context, req *connect.Request[engine.JoinByCodeRequest]) (*connect.Response[engine.JoinResult], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.JoinByCodeRequest) (*engine.JoinResult, error) {
		return s.engine.JoinByCode(ctx, actor, msg)
	})
}

func (s *BillService) Update(ctx context.Context, req *connect.Request[engine.UpdateRequest]) (*connect.Response[engine.UpdateResult], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.UpdateRequest) (*engine.UpdateResult, error) {
		return s.engine.Update(ctx, actor, msg)
	})
}

func (s *BillService) Close(ctx context.Context, req *connect.Request[engine.BillIDRequest]) (*connect.Response[engine.StatusResult], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.BillIDRequest) (*engine.StatusResult, error) {
		return s.engine.Close(ctx, actor, msg)
	})
}

func (s *BillService) Reopen(ctx context.Context, req *connect.Request[engine.BillIDRequest]) (*connect.Response[engine.StatusResult], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.BillIDRequest) (*engine.StatusResult, error) {
		return s.engine.Reopen(ctx, actor, msg)
	})
}

func (s *BillService) Archive(ctx context.Context, req *connect.Request[engine.BillIDRequest]) (*connect.Response[engine.StatusResult], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.BillIDRequest) (*engine.StatusResult, error) {
		return s.engine.Archive(ctx, actor, msg)
	})
}

func (s *BillService) Unarchive(ctx context.Context, req *connect.Request[engine.BillIDRequest]) (*connect.Response[engine.StatusResult], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.BillIDRequest) (*engine.StatusResult, error) {
		return s.engine.Unarchive(ctx, actor, msg)
	})
}

func (s *BillService) Leave(ctx context.Context, req *connect.Request[engine.BillIDRequest]) (*connect.Response[engine.StatusResult], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.BillIDRequest) (*engine.StatusResult, error) {
		return s.engine.Leave(ctx, actor, msg)
	})
}

func (s *BillService) AddNote(ctx context.Context, req *connect.Request[engine.NoteRequest]) (*connect.Response[engine.StatusResult], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.NoteRequest) (*engine.StatusResult, error) {
		return s.engine.AddNote(ctx, actor, msg)
	})
}

func (s *BillService) RenameSelf(ctx context.Context, req *connect.Request[engine.RenameRequest]) (*connect.Response[engine.StatusResult], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.RenameRequest) (*engine.StatusResult, error) {
		return s.engine.RenameSelf(ctx, actor, msg)
	})
}

func (s *BillService) SetDeadline(ctx context.Context, req *connect.Request[engine.DeadlineRequest]) (*connect.Response[engine.StatusResult], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.DeadlineRequest) (*engine.StatusResult, error) {
		return s.engine.SetDeadline(ctx, actor, msg)
	})
}

func (s *BillService) Copy(ctx context.Context, req *connect.Request[engine.CopyRequest]) (*connect.Response[engine.CreateResult], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.CopyRequest) (*engine.CreateResult, error) {
		return s.engine.Copy(ctx, actor, msg)
	})
}

func (s *BillService) SetInvite(ctx context.Context, req *connect.Request[engine.SetInviteRequest]) (*connect.Response[engine.SetInviteResult], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.SetInviteRequest) (*engine.SetInviteResult, error) {
		return s.engine.SetInvite(ctx, actor, msg)
	})
}

func (s *BillService) AddItem(ctx context.Context, req *connect.Request[engine.AddItemRequest]) (*connect.Response[engine.ItemResult], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.AddItemRequest) (*engine.ItemResult, error) {
		return s.engine.AddItem(ctx, actor, msg)
	})
}

func (s *BillService) RemoveItem(ctx context.Context, req *connect.Request[engine.RemoveItemRequest]) (*connect.Response[engine.ItemResult], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.RemoveItemRequest) (*engine.ItemResult, error) {
		return s.engine.RemoveItem(ctx, actor, msg)
	})
}

func (s *BillService) EditItem(ctx context.Context, req *connect.Request[engine.EditItemRequest]) (*connect.Response[engine.ItemResult], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.EditItemRequest) (*engine.ItemResult, error) {
		return s.engine.EditItem(ctx, actor, msg)
	})
}

func (s *BillService) Tip(ctx context.Context, req *connect.Request[engine.TipRequest]) (*connect.Response[engine.ItemResult], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.TipRequest) (*engine.ItemResult, error) {
		return s.engine.Tip(ctx, actor, msg)
	})
}

func (s *BillService) SetWeights(ctx context.Context, req *connect.Request[engine.SetWeightsRequest]) (*connect.Response[engine.SetWeightsResult], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.SetWeightsRequest) (*engine.SetWeightsResult, error) {
		return s.engine.SetWeights(ctx, actor, msg)
	})
}

func (s *BillService) Pay(ctx context.Context, req *connect.Request[engine.PayRequest]) (*connect.Response[engine.PayResult], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.PayRequest) (*engine.PayResult, error) {
		return s.engine.Pay(ctx, actor, msg)
	})
}

func (s *BillService) Settle(ctx context.Context, req *connect.Request[engine.SettleRequest]) (*connect.Response[engine.SettleResult], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.SettleRequest) (*engine.SettleResult, error) {
		return s.engine.Settle(ctx, actor, msg)
	})
}

func (s *BillService) Unsettle(ctx context.Context, req *connect.Request[engine.UnsettleRequest]) (*connect.Response[engine.UnsettleResult], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.UnsettleRequest) (*engine.UnsettleResult, error) {
		return s.engine.Unsettle(ctx, actor, msg)
	})
}

func (s *BillService) AddEditor(ctx context.Context, req *connect.Request[engine.EditorRequest]) (*connect.Response[engine.EditorsResult], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.EditorRequest) (*engine.EditorsResult, error) {
		return s.engine.AddEditor(ctx, actor, msg)
	})
}

func (s *BillService) RemoveEditor(ctx context.Context, req *connect.Request[engine.EditorRequest]) (*connect.Response[engine.EditorsResult], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.EditorRequest) (*engine.EditorsResult, error) {
		return s.engine.RemoveEditor(ctx, actor, msg)
	})
}

func (s *BillService) ListEditors(ctx context.Context, req *connect.Request[engine.BillIDRequest]) (*connect.Response[engine.EditorsResult], error) {
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.BillIDRequest) (*engine.EditorsResult, error) {
		return s.engine.ListEditors(ctx, msg)
	})
}

func (s *BillService) AnchorReceipt(ctx context.Context, req *connect.Request[engine.AnchorReceiptRequest]) (*connect.Response[engine.ReceiptResult], error) {
	actor, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.AnchorReceiptRequest) (*engine.ReceiptResult, error) {
		return s.engine.AnchorReceipt(ctx, actor, msg)
	})
}

func (s *BillService) Get(ctx context.Context, req *connect.Request[engine.BillIDRequest]) (*connect.Response[engine.BillOutput], error) {
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.BillIDRequest) (*engine.BillOutput, error) {
		return s.engine.Get(ctx, msg)
	})
}

func (s *BillService) Export(ctx context.Context, req *connect.Request[engine.BillIDRequest]) (*connect.Response[engine.ExportOutput], error) {
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.BillIDRequest) (*engine.ExportOutput, error) {
		return s.engine.Export(ctx, msg)
	})
}

func (s *BillService) List(ctx context.Context, req *connect.Request[engine.ListRequest]) (*connect.Response[ListResponse], error) {
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.ListRequest) (*ListResponse, error) {
		bills, err := s.engine.List(ctx, msg)
		if err != nil {
			return nil, err
		}
		return &ListResponse{Bills: bills}, nil
	})
}

func (s *BillService) Stats(ctx context.Context, req *connect.Request[StatsRequest]) (*connect.Response[engine.Stats], error) {
	return run(&s.base, ctx, req, func(ctx context.Context, _ *StatsRequest) (*engine.Stats, error) {
		return s.engine.ComputeStats(ctx)
	})
}

func (s *BillService) Balance(ctx context.Context, req *connect.Request[engine.BillIDRequest]) (*connect.Response[engine.BalanceOutput], error) {
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.BillIDRequest) (*engine.BalanceOutput, error) {
		return s.engine.Balance(ctx, msg)
	})
}

func (s *BillService) Activity(ctx context.Context, req *connect.Request[engine.ActivityRequest]) (*connect.Response[engine.ActivityResult], error) {
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.ActivityRequest) (*engine.ActivityResult, error) {
		return s.engine.Activity(ctx, msg)
	})
}

func (s *BillService) Debt(ctx context.Context, req *connect.Request[engine.BillIDRequest]) (*connect.Response[engine.DebtOutput], error) {
	return run(&s.base, ctx, req, func(ctx context.Context, msg *engine.BillIDRequest) (*engine.DebtOutput, error) {
		return s.engine.Debt(ctx, msg)
	})
}

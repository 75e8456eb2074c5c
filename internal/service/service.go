// Package service exposes the ledger engine over Connect RPC. Every command
// runs under one shared mutex, which provides the single global total order
// the engine's read-modify-write cycles assume.
package service

import (
	"context"
	"fmt"
	"sync"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/Lingz450/receiptsplit/internal/engine"
	"github.com/Lingz450/receiptsplit/internal/middleware"
)

// base carries what every service needs: the engine, the serialization
// mutex shared across all services and the clock ticker, and the request
// validator.
type base struct {
	engine   *engine.Engine
	mu       *sync.Mutex
	validate *validator.Validate
}

// actor returns the authenticated actor address or an Unauthenticated error.
func (b *base) actor(ctx context.Context) (string, error) {
	actor := middleware.GetActor(ctx)
	if actor == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, fmt.Errorf("authentication required"))
	}
	return actor, nil
}

// run validates the message, serializes the command under the global mutex,
// and maps engine errors onto Connect codes.
func run[Req, Res any](b *base, ctx context.Context, req *connect.Request[Req], fn func(context.Context, *Req) (*Res, error)) (*connect.Response[Res], error) {
	if err := b.validate.Struct(req.Msg); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	res, err := fn(ctx, req.Msg)
	if err != nil {
		return nil, asConnectError(err)
	}
	return connect.NewResponse(res), nil
}

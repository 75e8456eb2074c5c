package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/Lingz450/receiptsplit/internal/storage/memory"
)

func newTestEngine(t *testing.T) (*Engine, context.Context) {
	t.Helper()
	eng := New(memory.New())
	ctx := context.Background()
	if err := eng.AdvanceClock(ctx, 1_000_000); err != nil {
		t.Fatalf("AdvanceClock failed: %v", err)
	}
	return eng, ctx
}

// newDinnerBill creates a USD bill owned by alice with bob joined.
func newDinnerBill(t *testing.T, eng *Engine, ctx context.Context) int64 {
	t.Helper()
	created, err := eng.Create(ctx, "alice", &CreateRequest{Title: "Dinner", Currency: "USD", CreatorName: "Alice"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := eng.Join(ctx, "bob", &JoinRequest{ID: created.ID, Name: "Bob"}); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	return created.ID
}

func addPizza(t *testing.T, eng *Engine, ctx context.Context, id int64, amount float64) {
	t.Helper()
	if _, err := eng.AddItem(ctx, "alice", &AddItemRequest{ID: id, Description: "Pizza", Amount: amount}); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
}

func wantErrKind(t *testing.T, err, kind error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %v, got nil", kind)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("error = %v, want kind %v", err, kind)
	}
}

func lastActivity(t *testing.T, eng *Engine, ctx context.Context, id int64) string {
	t.Helper()
	bill, err := eng.getBill(ctx, id)
	if err != nil {
		t.Fatalf("getBill failed: %v", err)
	}
	if len(bill.Activity) == 0 {
		t.Fatal("no activity recorded")
	}
	return bill.Activity[len(bill.Activity)-1].Event
}

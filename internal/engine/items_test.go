package engine

import (
	"testing"
)

func TestAddItemTargeted(t *testing.T) {
	eng, ctx := newTestEngine(t)
	id := newDinnerBill(t, eng, ctx)

	res, err := eng.AddItem(ctx, "alice", &AddItemRequest{
		ID:           id,
		Description:  "Wine",
		Amount:       20,
		SplitBetween: "bob, bob, alice",
	})
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if res.ItemIndex != 0 {
		t.Errorf("item index = %d, want 0", res.ItemIndex)
	}
	if len(res.SplitBetween) != 2 || res.SplitBetween[0] != "bob" || res.SplitBetween[1] != "alice" {
		t.Errorf("split_between = %v, want deduped [bob alice]", res.SplitBetween)
	}
	if got := lastActivity(t, eng, ctx, id); got != "bill_item_added" {
		t.Errorf("activity = %q, want bill_item_added", got)
	}
}

func TestAddItemGuards(t *testing.T) {
	eng, ctx := newTestEngine(t)
	id := newDinnerBill(t, eng, ctx)

	t.Run("non-participant target", func(t *testing.T) {
		_, err := eng.AddItem(ctx, "alice", &AddItemRequest{ID: id, Description: "Wine", Amount: 20, SplitBetween: "mallory"})
		wantErrKind(t, err, ErrInvalidInput)
	})

	t.Run("plain participant cannot add", func(t *testing.T) {
		_, err := eng.AddItem(ctx, "bob", &AddItemRequest{ID: id, Description: "Wine", Amount: 20})
		wantErrKind(t, err, ErrPermissionDenied)
	})

	t.Run("closed bill", func(t *testing.T) {
		if _, err := eng.Close(ctx, "alice", &BillIDRequest{ID: id}); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		_, err := eng.AddItem(ctx, "alice", &AddItemRequest{ID: id, Description: "Wine", Amount: 20})
		wantErrKind(t, err, ErrInvalidState)
	})
}

func TestEditorCanAddItems(t *testing.T) {
	eng, ctx := newTestEngine(t)
	id := newDinnerBill(t, eng, ctx)

	if _, err := eng.AddEditor(ctx, "alice", &EditorRequest{ID: id, EditorAddress: "bob"}); err != nil {
		t.Fatalf("AddEditor failed: %v", err)
	}
	if _, err := eng.AddItem(ctx, "bob", &AddItemRequest{ID: id, Description: "Dessert", Amount: 8}); err != nil {
		t.Fatalf("editor AddItem failed: %v", err)
	}

	if _, err := eng.RemoveEditor(ctx, "alice", &EditorRequest{ID: id, EditorAddress: "bob"}); err != nil {
		t.Fatalf("RemoveEditor failed: %v", err)
	}
	_, err := eng.AddItem(ctx, "bob", &AddItemRequest{ID: id, Description: "Dessert", Amount: 8})
	wantErrKind(t, err, ErrPermissionDenied)
}

func TestRemoveItem(t *testing.T) {
	eng, ctx := newTestEngine(t)
	id := newDinnerBill(t, eng, ctx)
	addPizza(t, eng, ctx, id, 30)
	if _, err := eng.AddItem(ctx, "alice", &AddItemRequest{ID: id, Description: "Wine", Amount: 20}); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	res, err := eng.RemoveItem(ctx, "alice", &RemoveItemRequest{ID: id, ItemIndex: 0})
	if err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if res.Description != "Pizza" || res.Amount != 30 {
		t.Errorf("removed item = %q %v, want Pizza 30", res.Description, res.Amount)
	}

	out, _ := eng.Get(ctx, &BillIDRequest{ID: id})
	if len(out.Items) != 1 || out.Items[0].Description != "Wine" {
		t.Errorf("items after remove = %v, want only Wine", out.Items)
	}

	t.Run("stale index", func(t *testing.T) {
		_, err := eng.RemoveItem(ctx, "alice", &RemoveItemRequest{ID: id, ItemIndex: 1})
		wantErrKind(t, err, ErrInvalidInput)
	})
}

func TestEditItemPartial(t *testing.T) {
	eng, ctx := newTestEngine(t)
	id := newDinnerBill(t, eng, ctx)
	if _, err := eng.AddItem(ctx, "alice", &AddItemRequest{ID: id, Description: "Wine", Amount: 20, SplitBetween: "bob"}); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	newAmount := 25.0
	res, err := eng.EditItem(ctx, "alice", &EditItemRequest{ID: id, ItemIndex: 0, Amount: &newAmount})
	if err != nil {
		t.Fatalf("EditItem failed: %v", err)
	}
	if res.Description != "Wine" {
		t.Errorf("description = %q, want untouched Wine", res.Description)
	}
	if res.Amount != 25 {
		t.Errorf("amount = %v, want 25", res.Amount)
	}
	if len(res.SplitBetween) != 1 || res.SplitBetween[0] != "bob" {
		t.Errorf("split_between = %v, want untouched [bob]", res.SplitBetween)
	}

	t.Run("empty split_between clears targeting", func(t *testing.T) {
		empty := ""
		res, err := eng.EditItem(ctx, "alice", &EditItemRequest{ID: id, ItemIndex: 0, SplitBetween: &empty})
		if err != nil {
			t.Fatalf("EditItem failed: %v", err)
		}
		if len(res.SplitBetween) != 0 {
			t.Errorf("split_between = %v, want cleared", res.SplitBetween)
		}
	})

	t.Run("no fields", func(t *testing.T) {
		_, err := eng.EditItem(ctx, "alice", &EditItemRequest{ID: id, ItemIndex: 0})
		wantErrKind(t, err, ErrInvalidInput)
	})

	t.Run("blank description", func(t *testing.T) {
		blank := "  "
		_, err := eng.EditItem(ctx, "alice", &EditItemRequest{ID: id, ItemIndex: 0, Description: &blank})
		wantErrKind(t, err, ErrInvalidInput)
	})
}

func TestTipFixedAmount(t *testing.T) {
	eng, ctx := newTestEngine(t)
	id := newDinnerBill(t, eng, ctx)
	addPizza(t, eng, ctx, id, 30)

	amount := 6.0
	res, err := eng.Tip(ctx, "alice", &TipRequest{ID: id, Amount: &amount})
	if err != nil {
		t.Fatalf("Tip failed: %v", err)
	}
	if res.Description != "Tip" || res.Amount != 6 {
		t.Errorf("tip = %q %v, want Tip 6", res.Description, res.Amount)
	}

	out, _ := eng.Get(ctx, &BillIDRequest{ID: id})
	if out.Total != 36 {
		t.Errorf("total with tip = %v, want 36", out.Total)
	}
}

func TestTipPercent(t *testing.T) {
	eng, ctx := newTestEngine(t)
	id := newDinnerBill(t, eng, ctx)
	addPizza(t, eng, ctx, id, 30)

	pct := 15.0
	res, err := eng.Tip(ctx, "alice", &TipRequest{ID: id, Percent: &pct})
	if err != nil {
		t.Fatalf("Tip failed: %v", err)
	}
	if res.Description != "Tip (15%)" {
		t.Errorf("description = %q, want Tip (15%%)", res.Description)
	}
	if res.Amount != 4.5 {
		t.Errorf("tip amount = %v, want 4.5 (15%% of 30)", res.Amount)
	}

	t.Run("neither amount nor percent", func(t *testing.T) {
		_, err := eng.Tip(ctx, "alice", &TipRequest{ID: id})
		wantErrKind(t, err, ErrInvalidInput)
	})
}

func TestSetWeights(t *testing.T) {
	eng, ctx := newTestEngine(t)
	id := newDinnerBill(t, eng, ctx)
	addPizza(t, eng, ctx, id, 30)

	res, err := eng.SetWeights(ctx, "alice", &SetWeightsRequest{ID: id, Weights: "alice=2,bob=1"})
	if err != nil {
		t.Fatalf("SetWeights failed: %v", err)
	}
	if res.Weights["alice"] != 2 || res.Weights["bob"] != 1 {
		t.Errorf("weights = %v, want alice=2 bob=1", res.Weights)
	}

	out, _ := eng.Get(ctx, &BillIDRequest{ID: id})
	if out.Due["alice"] != 20 || out.Due["bob"] != 10 {
		t.Errorf("due = %v, want alice=20 bob=10", out.Due)
	}

	t.Run("partial update keeps existing weight", func(t *testing.T) {
		res, err := eng.SetWeights(ctx, "alice", &SetWeightsRequest{ID: id, Weights: "bob=3"})
		if err != nil {
			t.Fatalf("SetWeights failed: %v", err)
		}
		if res.Weights["alice"] != 2 {
			t.Errorf("alice weight = %v, want prior 2 preserved", res.Weights["alice"])
		}
		if res.Weights["bob"] != 3 {
			t.Errorf("bob weight = %v, want 3", res.Weights["bob"])
		}
	})
}

func TestSetWeightsGuards(t *testing.T) {
	eng, ctx := newTestEngine(t)
	id := newDinnerBill(t, eng, ctx)

	t.Run("non-participant address", func(t *testing.T) {
		_, err := eng.SetWeights(ctx, "alice", &SetWeightsRequest{ID: id, Weights: "mallory=2"})
		wantErrKind(t, err, ErrInvalidInput)
	})

	t.Run("no valid segments", func(t *testing.T) {
		_, err := eng.SetWeights(ctx, "alice", &SetWeightsRequest{ID: id, Weights: "alice=-1, =2"})
		wantErrKind(t, err, ErrInvalidInput)
	})

	t.Run("infinite weight", func(t *testing.T) {
		_, err := eng.SetWeights(ctx, "alice", &SetWeightsRequest{ID: id, Weights: "alice=Inf"})
		wantErrKind(t, err, ErrInvalidInput)
	})

	t.Run("NaN weight", func(t *testing.T) {
		_, err := eng.SetWeights(ctx, "alice", &SetWeightsRequest{ID: id, Weights: "alice=NaN"})
		wantErrKind(t, err, ErrInvalidInput)
		bill, _ := eng.getBill(ctx, id)
		for _, entry := range bill.Activity {
			if entry.Event == "bill_weights_updated" {
				t.Fatal("rejected weight command recorded activity")
			}
		}
	})

	t.Run("non-creator", func(t *testing.T) {
		_, err := eng.SetWeights(ctx, "bob", &SetWeightsRequest{ID: id, Weights: "bob=2"})
		wantErrKind(t, err, ErrPermissionDenied)
	})
}

func TestSetWeightsResyncsSettlement(t *testing.T) {
	eng, ctx := newTestEngine(t)
	id := newDinnerBill(t, eng, ctx)
	addPizza(t, eng, ctx, id, 30)

	// Bob covers his equal share of 15 and is marked settled.
	if _, err := eng.Pay(ctx, "bob", &PayRequest{ID: id, Amount: 15, Proof: "tx1"}); err != nil {
		t.Fatalf("Pay failed: %v", err)
	}
	bill, _ := eng.getBill(ctx, id)
	if bill.Settled["bob"] == "" {
		t.Fatal("bob not settled before weight change")
	}

	// Shifting weights raises bob's due to 20, so his mark must drop.
	if _, err := eng.SetWeights(ctx, "alice", &SetWeightsRequest{ID: id, Weights: "alice=1,bob=2"}); err != nil {
		t.Fatalf("SetWeights failed: %v", err)
	}
	bill, _ = eng.getBill(ctx, id)
	if bill.Settled["bob"] != "" {
		t.Error("bob still settled after weight change raised his due")
	}
	out, _ := eng.Get(ctx, &BillIDRequest{ID: id})
	if out.Remaining["bob"] != 5 {
		t.Errorf("bob remaining = %v, want 5", out.Remaining["bob"])
	}
}

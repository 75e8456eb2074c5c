package engine

import (
	"testing"
)

func TestListOrderAndArchiveFilter(t *testing.T) {
	eng, ctx := newTestEngine(t)

	dinner, err := eng.Create(ctx, "alice", &CreateRequest{Title: "Dinner", Currency: "USD", CreatorName: "Alice", Tags: "food,night out"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	trip, err := eng.Create(ctx, "alice", &CreateRequest{Title: "Trip", Currency: "EUR", CreatorName: "Alice", Tags: "travel"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	groceries, err := eng.Create(ctx, "bob", &CreateRequest{Title: "Groceries", Currency: "USD", CreatorName: "Bob"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := eng.Close(ctx, "alice", &BillIDRequest{ID: trip.ID}); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := eng.Archive(ctx, "bob", &BillIDRequest{ID: groceries.ID}); err != nil {
		t.Fatalf("Archive failed: %v", err)
	}

	t.Run("newest first, archived hidden", func(t *testing.T) {
		entries, err := eng.List(ctx, &ListRequest{})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("entry count = %d, want 2", len(entries))
		}
		if entries[0].ID != trip.ID || entries[1].ID != dinner.ID {
			t.Errorf("order = [%d %d], want [%d %d]", entries[0].ID, entries[1].ID, trip.ID, dinner.ID)
		}
	})

	t.Run("include_archived", func(t *testing.T) {
		entries, err := eng.List(ctx, &ListRequest{IncludeArchived: "yes"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("entry count = %d, want 3", len(entries))
		}
		if entries[0].ID != groceries.ID {
			t.Errorf("first entry = %d, want newest archived bill %d", entries[0].ID, groceries.ID)
		}
	})

	t.Run("currency filter", func(t *testing.T) {
		entries, err := eng.List(ctx, &ListRequest{Currency: "EUR"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(entries) != 1 || entries[0].ID != trip.ID {
			t.Errorf("entries = %v, want only trip", entries)
		}
	})

	t.Run("tag substring is case-insensitive", func(t *testing.T) {
		entries, err := eng.List(ctx, &ListRequest{Tag: "NIGHT"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(entries) != 1 || entries[0].ID != dinner.ID {
			t.Errorf("entries = %v, want only dinner", entries)
		}
	})

	t.Run("creator filter", func(t *testing.T) {
		entries, err := eng.List(ctx, &ListRequest{CreatorAddress: " bob ", IncludeArchived: "true"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(entries) != 1 || entries[0].ID != groceries.ID {
			t.Errorf("entries = %v, want only groceries", entries)
		}
	})

	t.Run("closed filter", func(t *testing.T) {
		entries, err := eng.List(ctx, &ListRequest{Closed: "false"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(entries) != 1 || entries[0].ID != dinner.ID {
			t.Errorf("entries = %v, want only dinner", entries)
		}
	})

	t.Run("limit", func(t *testing.T) {
		entries, err := eng.List(ctx, &ListRequest{Limit: 1, IncludeArchived: "1"})
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(entries) != 1 || entries[0].ID != groceries.ID {
			t.Errorf("entries = %v, want single newest bill", entries)
		}
	})
}

func TestListSettledFilter(t *testing.T) {
	eng, ctx := newTestEngine(t)
	id := newDinnerBill(t, eng, ctx)
	addPizza(t, eng, ctx, id, 30)
	if _, err := eng.Create(ctx, "alice", &CreateRequest{Title: "Trip", Currency: "USD", CreatorName: "Alice"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := eng.Settle(ctx, "alice", &SettleRequest{ID: id}); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if _, err := eng.Settle(ctx, "bob", &SettleRequest{ID: id}); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	entries, err := eng.List(ctx, &ListRequest{Settled: "true"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, entry := range entries {
		if !entry.AllSettled {
			t.Errorf("entry %d not settled in settled=true listing", entry.ID)
		}
	}
	found := false
	for _, entry := range entries {
		if entry.ID == id {
			found = true
		}
	}
	if !found {
		t.Error("fully settled dinner bill missing from settled=true listing")
	}
}

func TestComputeStats(t *testing.T) {
	eng, ctx := newTestEngine(t)
	dinner := newDinnerBill(t, eng, ctx)
	addPizza(t, eng, ctx, dinner, 30)
	if _, err := eng.Pay(ctx, "bob", &PayRequest{ID: dinner, Amount: 10, Proof: "tx1"}); err != nil {
		t.Fatalf("Pay failed: %v", err)
	}

	trip, err := eng.Create(ctx, "alice", &CreateRequest{Title: "Trip", Currency: "EUR", CreatorName: "Alice", Tags: "Travel"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := eng.Close(ctx, "alice", &BillIDRequest{ID: trip.ID}); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	stats, err := eng.ComputeStats(ctx)
	if err != nil {
		t.Fatalf("ComputeStats failed: %v", err)
	}
	if stats.TotalBills != 2 || stats.ListedBills != 2 {
		t.Errorf("bill counts = %d/%d, want 2/2", stats.TotalBills, stats.ListedBills)
	}
	if stats.TotalParticipants != 3 {
		t.Errorf("participants = %d, want 3", stats.TotalParticipants)
	}
	if stats.TotalItems != 1 {
		t.Errorf("items = %d, want 1", stats.TotalItems)
	}
	if stats.TotalAmount != 30 || stats.TotalPaid != 10 || stats.OutstandingTotal != 20 {
		t.Errorf("money = %v/%v/%v, want 30/10/20", stats.TotalAmount, stats.TotalPaid, stats.OutstandingTotal)
	}
	if stats.ClosedBills != 1 {
		t.Errorf("closed = %d, want 1", stats.ClosedBills)
	}
	if stats.ByCurrency["USD"] != 1 || stats.ByCurrency["EUR"] != 1 {
		t.Errorf("by_currency = %v", stats.ByCurrency)
	}
	if stats.ByTag["travel"] != 1 {
		t.Errorf("by_tag = %v, want lowercased travel counted once", stats.ByTag)
	}
}

func TestBalanceRows(t *testing.T) {
	eng, ctx := newTestEngine(t)
	id := newDinnerBill(t, eng, ctx)
	addPizza(t, eng, ctx, id, 30)
	if _, err := eng.Pay(ctx, "bob", &PayRequest{ID: id, Amount: 20, Proof: "tx1"}); err != nil {
		t.Fatalf("Pay failed: %v", err)
	}

	out, err := eng.Balance(ctx, &BillIDRequest{ID: id})
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if out.Total != 30 || out.TotalPaid != 20 || out.Outstanding != 15 {
		t.Errorf("totals = %v/%v/%v, want 30/20/15", out.Total, out.TotalPaid, out.Outstanding)
	}
	if len(out.Rows) != 2 {
		t.Fatalf("row count = %d, want 2", len(out.Rows))
	}

	alice, bob := out.Rows[0], out.Rows[1]
	if alice.Address != "alice" || bob.Address != "bob" {
		t.Fatalf("row order = [%s %s], want join order [alice bob]", alice.Address, bob.Address)
	}
	if alice.Remaining != 15 || alice.Settled {
		t.Errorf("alice row = %+v, want remaining 15 unsettled", alice)
	}
	if bob.Remaining != 0 || bob.Overpaid != 5 || !bob.Settled {
		t.Errorf("bob row = %+v, want settled with overpaid 5", bob)
	}
	if alice.Name != "Alice" || bob.Name != "Bob" {
		t.Errorf("names = %q/%q, want Alice/Bob", alice.Name, bob.Name)
	}
}

func TestActivityTail(t *testing.T) {
	eng, ctx := newTestEngine(t)
	id := newDinnerBill(t, eng, ctx)
	for i := 0; i < 30; i++ {
		addPizza(t, eng, ctx, id, 1)
	}

	t.Run("default limit", func(t *testing.T) {
		res, err := eng.Activity(ctx, &ActivityRequest{ID: id})
		if err != nil {
			t.Fatalf("Activity failed: %v", err)
		}
		// bill_created + bill_joined + 30 item additions.
		if res.Total != 32 {
			t.Errorf("total = %d, want 32", res.Total)
		}
		if len(res.Entries) != 20 {
			t.Errorf("entry count = %d, want default 20", len(res.Entries))
		}
		if res.Entries[len(res.Entries)-1].Event != "bill_item_added" {
			t.Errorf("last event = %q, want bill_item_added", res.Entries[len(res.Entries)-1].Event)
		}
	})

	t.Run("explicit limit", func(t *testing.T) {
		res, err := eng.Activity(ctx, &ActivityRequest{ID: id, Limit: 5})
		if err != nil {
			t.Fatalf("Activity failed: %v", err)
		}
		if len(res.Entries) != 5 {
			t.Errorf("entry count = %d, want 5", len(res.Entries))
		}
	})

	t.Run("limit beyond length", func(t *testing.T) {
		res, err := eng.Activity(ctx, &ActivityRequest{ID: id, Limit: 100})
		if err != nil {
			t.Fatalf("Activity failed: %v", err)
		}
		if len(res.Entries) != 32 {
			t.Errorf("entry count = %d, want all 32", len(res.Entries))
		}
	})
}

func TestDebtPlan(t *testing.T) {
	eng, ctx := newTestEngine(t)
	id := newDinnerBill(t, eng, ctx)
	addPizza(t, eng, ctx, id, 30)
	if _, err := eng.Pay(ctx, "bob", &PayRequest{ID: id, Amount: 30, Proof: "tx1"}); err != nil {
		t.Fatalf("Pay failed: %v", err)
	}

	out, err := eng.Debt(ctx, &BillIDRequest{ID: id})
	if err != nil {
		t.Fatalf("Debt failed: %v", err)
	}
	if len(out.Transfers) != 1 {
		t.Fatalf("transfer count = %d, want 1", len(out.Transfers))
	}
	tr := out.Transfers[0]
	if tr.From != "alice" || tr.To != "bob" || tr.Amount != 15 {
		t.Errorf("transfer = %+v, want alice pays bob 15", tr)
	}
}

func TestGetUnknownBill(t *testing.T) {
	eng, ctx := newTestEngine(t)
	_, err := eng.Get(ctx, &BillIDRequest{ID: 99})
	wantErrKind(t, err, ErrNotFound)
}

func TestExportStampsClock(t *testing.T) {
	eng, ctx := newTestEngine(t)
	id := newDinnerBill(t, eng, ctx)
	addPizza(t, eng, ctx, id, 30)

	if err := eng.AdvanceClock(ctx, 2_000_000); err != nil {
		t.Fatalf("AdvanceClock failed: %v", err)
	}
	out, err := eng.Export(ctx, &BillIDRequest{ID: id})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if out.ExportedAt != 2_000_000 {
		t.Errorf("exported_at = %d, want 2000000", out.ExportedAt)
	}
	if out.ActivityCount != len(out.Activity) {
		t.Errorf("activity_count = %d, want %d", out.ActivityCount, len(out.Activity))
	}
	if len(out.Activity) == 0 {
		t.Error("export missing activity trail")
	}
}

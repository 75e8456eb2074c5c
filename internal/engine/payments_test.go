package engine

import (
	"testing"

	"github.com/Lingz450/receiptsplit/internal/models"
)

func TestPayAccumulates(t *testing.T) {
	eng, ctx := newTestEngine(t)
	id := newDinnerBill(t, eng, ctx)
	addPizza(t, eng, ctx, id, 30)

	first, err := eng.Pay(ctx, "bob", &PayRequest{ID: id, Amount: 5, Proof: "tx1"})
	if err != nil {
		t.Fatalf("Pay failed: %v", err)
	}
	if first.Remaining != 10 {
		t.Errorf("remaining after 5 = %v, want 10", first.Remaining)
	}

	second, err := eng.Pay(ctx, "bob", &PayRequest{ID: id, Amount: 7})
	if err != nil {
		t.Fatalf("second Pay failed: %v", err)
	}
	if second.Remaining != 3 {
		t.Errorf("remaining after 12 = %v, want 3", second.Remaining)
	}

	bill, _ := eng.getBill(ctx, id)
	record := bill.Payments["bob"]
	if record.Amount != 12 {
		t.Errorf("cumulative amount = %v, want 12", record.Amount)
	}
	if record.TxCount != 2 {
		t.Errorf("txCount = %d, want 2", record.TxCount)
	}
	if record.LastProof != "tx1" {
		t.Errorf("lastProof = %q, want tx1 kept from first payment", record.LastProof)
	}
	if record.UpdatedAt != 1_000_000 {
		t.Errorf("updatedAt = %d, want logical clock value", record.UpdatedAt)
	}
}

func TestPayCoveringDueMarksSettled(t *testing.T) {
	eng, ctx := newTestEngine(t)
	id := newDinnerBill(t, eng, ctx)
	addPizza(t, eng, ctx, id, 30)

	res, err := eng.Pay(ctx, "bob", &PayRequest{ID: id, Amount: 15, Proof: "tx1"})
	if err != nil {
		t.Fatalf("Pay failed: %v", err)
	}
	if res.Remaining != 0 {
		t.Errorf("remaining = %v, want 0", res.Remaining)
	}
	if res.AllSettled {
		t.Error("allSettled = true while alice still owes")
	}

	bill, _ := eng.getBill(ctx, id)
	if bill.Settled["bob"] != "tx1" {
		t.Errorf("settled[bob] = %q, want tx1", bill.Settled["bob"])
	}
	if _, ok := bill.Settled["alice"]; ok {
		t.Error("alice marked settled without paying")
	}
}

func TestPayValidation(t *testing.T) {
	eng, ctx := newTestEngine(t)
	id := newDinnerBill(t, eng, ctx)
	addPizza(t, eng, ctx, id, 30)

	_, err := eng.Pay(ctx, "bob", &PayRequest{ID: id, Amount: 0})
	wantErrKind(t, err, ErrInvalidInput)
	_, err = eng.Pay(ctx, "bob", &PayRequest{ID: id, Amount: -3})
	wantErrKind(t, err, ErrInvalidInput)
	_, err = eng.Pay(ctx, "carol", &PayRequest{ID: id, Amount: 5})
	wantErrKind(t, err, ErrPermissionDenied)
	_, err = eng.Pay(ctx, "bob", &PayRequest{ID: 99, Amount: 5})
	wantErrKind(t, err, ErrNotFound)
}

func TestPayAllowedOnClosedBill(t *testing.T) {
	eng, ctx := newTestEngine(t)
	id := newDinnerBill(t, eng, ctx)
	addPizza(t, eng, ctx, id, 30)
	if _, err := eng.Close(ctx, "alice", &BillIDRequest{ID: id}); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := eng.Pay(ctx, "bob", &PayRequest{ID: id, Amount: 15}); err != nil {
		t.Errorf("Pay on closed bill failed: %v", err)
	}
	if _, err := eng.Settle(ctx, "alice", &SettleRequest{ID: id}); err != nil {
		t.Errorf("Settle on closed bill failed: %v", err)
	}
}

func TestSettlePaysRemainder(t *testing.T) {
	eng, ctx := newTestEngine(t)
	id := newDinnerBill(t, eng, ctx)
	addPizza(t, eng, ctx, id, 30)

	if _, err := eng.Pay(ctx, "bob", &PayRequest{ID: id, Amount: 10}); err != nil {
		t.Fatalf("Pay failed: %v", err)
	}
	res, err := eng.Settle(ctx, "bob", &SettleRequest{ID: id, Proof: "tx9"})
	if err != nil {
		t.Fatalf("Settle failed: %v", err)
	}
	if res.PaidAmount != 5 {
		t.Errorf("settle paid = %v, want remaining 5", res.PaidAmount)
	}

	bill, _ := eng.getBill(ctx, id)
	if bill.Settled["bob"] != "tx9" {
		t.Errorf("settled[bob] = %q, want tx9", bill.Settled["bob"])
	}
	if got := lastActivity(t, eng, ctx, id); got != "bill_settled" {
		t.Errorf("last activity = %q, want bill_settled", got)
	}

	t.Run("settling again is a no-op", func(t *testing.T) {
		again, err := eng.Settle(ctx, "bob", &SettleRequest{ID: id})
		if err != nil {
			t.Fatalf("idempotent Settle failed: %v", err)
		}
		if !again.AlreadySettled {
			t.Error("AlreadySettled not reported")
		}
		if again.PaidAmount != 0 {
			t.Errorf("no-op settle paid %v", again.PaidAmount)
		}
	})

	t.Run("all settled once everyone pays", func(t *testing.T) {
		final, err := eng.Settle(ctx, "alice", &SettleRequest{ID: id})
		if err != nil {
			t.Fatalf("alice Settle failed: %v", err)
		}
		if !final.AllSettled {
			t.Error("allSettled = false after both settled")
		}
		bill, _ := eng.getBill(ctx, id)
		if bill.Settled["alice"] != models.SettledNoProof {
			t.Errorf("settled[alice] = %q, want %q sentinel", bill.Settled["alice"], models.SettledNoProof)
		}
	})
}

func TestUnsettleRemovesPayment(t *testing.T) {
	eng, ctx := newTestEngine(t)
	id := newDinnerBill(t, eng, ctx)
	addPizza(t, eng, ctx, id, 30)

	if _, err := eng.Settle(ctx, "bob", &SettleRequest{ID: id, Proof: "tx1"}); err != nil {
		t.Fatalf("Settle failed: %v", err)
	}

	res, err := eng.Unsettle(ctx, "bob", &UnsettleRequest{ID: id})
	if err != nil {
		t.Fatalf("Unsettle failed: %v", err)
	}
	if res.RemovedPayment != 15 {
		t.Errorf("removed payment = %v, want 15", res.RemovedPayment)
	}

	bill, _ := eng.getBill(ctx, id)
	if _, ok := bill.Payments["bob"]; ok {
		t.Error("payment record kept after Unsettle")
	}
	if _, ok := bill.Settled["bob"]; ok {
		t.Error("settled entry kept after Unsettle")
	}

	out, _ := eng.Get(ctx, &BillIDRequest{ID: id})
	if out.Remaining["bob"] != 15 {
		t.Errorf("remaining after unsettle = %v, want 15", out.Remaining["bob"])
	}
}

func TestUnsettleGuards(t *testing.T) {
	eng, ctx := newTestEngine(t)
	id := newDinnerBill(t, eng, ctx)
	addPizza(t, eng, ctx, id, 30)

	t.Run("nothing to unsettle", func(t *testing.T) {
		_, err := eng.Unsettle(ctx, "bob", &UnsettleRequest{ID: id})
		wantErrKind(t, err, ErrInvalidState)
	})

	t.Run("unsettle after full settlement reopens balance", func(t *testing.T) {
		if _, err := eng.Settle(ctx, "alice", &SettleRequest{ID: id}); err != nil {
			t.Fatalf("Settle failed: %v", err)
		}
		if _, err := eng.Settle(ctx, "bob", &SettleRequest{ID: id}); err != nil {
			t.Fatalf("Settle failed: %v", err)
		}

		res, err := eng.Unsettle(ctx, "bob", &UnsettleRequest{ID: id})
		if err != nil {
			t.Fatalf("Unsettle failed: %v", err)
		}
		if res.RemovedPayment != 15 {
			t.Errorf("removed payment = %v, want 15", res.RemovedPayment)
		}

		bill, _ := eng.getBill(ctx, id)
		if _, ok := bill.Payments["bob"]; ok {
			t.Error("payment record kept after Unsettle")
		}
		if _, ok := bill.Settled["bob"]; ok {
			t.Error("settled entry kept after Unsettle")
		}

		out, _ := eng.Get(ctx, &BillIDRequest{ID: id})
		if out.AllSettled {
			t.Error("bill still marked fully settled after Unsettle")
		}
		if out.Remaining["bob"] != 15 {
			t.Errorf("remaining after unsettle = %v, want 15", out.Remaining["bob"])
		}
	})
}

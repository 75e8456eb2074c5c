package engine

import (
	"context"
	"fmt"

	"github.com/Lingz450/receiptsplit/internal/calculator"
	"github.com/Lingz450/receiptsplit/internal/models"
	"github.com/Lingz450/receiptsplit/internal/money"
)

// PayRequest records a partial payment against the actor's obligation.
type PayRequest struct {
	ID     int64   `json:"id" validate:"required,min=1"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Proof  string  `json:"proof,omitempty" validate:"omitempty,max=200"`
}

// PayResult reports the applied amount and the actor's position afterwards.
type PayResult struct {
	ID         int64   `json:"id"`
	Address    string  `json:"address"`
	Amount     float64 `json:"amount"`
	Remaining  float64 `json:"remaining"`
	AllSettled bool    `json:"all_settled"`
}

// SettleRequest pays off the actor's entire remaining obligation.
type SettleRequest struct {
	ID    int64  `json:"id" validate:"required,min=1"`
	Proof string `json:"proof,omitempty" validate:"omitempty,max=200"`
}

// SettleResult reports the settlement. AlreadySettled marks the idempotent
// no-op path: nothing was owed, nothing changed.
type SettleResult struct {
	ID             int64   `json:"id"`
	Address        string  `json:"address"`
	PaidAmount     float64 `json:"paid_amount"`
	AllSettled     bool    `json:"all_settled"`
	AlreadySettled bool    `json:"already_settled"`
}

// UnsettleRequest reverses the actor's settlement by deleting the payment
// record outright. Payments are otherwise strictly additive.
type UnsettleRequest struct {
	ID int64 `json:"id" validate:"required,min=1"`
}

// UnsettleResult reports the removed cumulative payment.
type UnsettleResult struct {
	ID             int64   `json:"id"`
	Address        string  `json:"address"`
	RemovedPayment float64 `json:"removed_payment"`
}

// applyPayment adds amount to addr's cumulative payment record. Strictly
// additive: tx_count increments, updated_at takes the logical clock, and a
// non-empty trimmed proof replaces last_proof.
func (e *Engine) applyPayment(ctx context.Context, bill *models.Bill, addr string, amount float64, proof string) (float64, error) {
	addr = models.NormalizeAddress(addr)
	if addr == "" {
		return 0, fmt.Errorf("%w: address required", ErrInvalidInput)
	}
	normalized := money.Round(amount)
	if !money.IsFinite(amount) || normalized <= 0 {
		return 0, fmt.Errorf("%w: payment amount must be positive", ErrInvalidInput)
	}

	if bill.Payments == nil {
		bill.Payments = map[string]models.PaymentRecord{}
	}
	record := bill.Payments[addr]
	record.Amount = money.Round(bill.PaidAmount(addr) + normalized)
	if p := trim(proof); p != "" {
		record.LastProof = p
	}
	record.UpdatedAt = e.now(ctx)
	record.TxCount++
	bill.Payments[addr] = record

	return normalized, nil
}

// syncSettled reconciles the settled map with computed state. With
// onlyAddress set it touches a single entry (after pay/settle); otherwise it
// recomputes every participant, which structural changes like weight updates
// require because they can shift other participants' status.
func syncSettled(bill *models.Bill, state *calculator.State, onlyAddress, proof string) {
	if bill.Settled == nil {
		bill.Settled = map[string]string{}
	}

	applyOne := func(addr string) {
		if state.Remaining[addr] <= 0 {
			mark := trim(proof)
			if mark == "" {
				mark = bill.Payments[addr].LastProof
			}
			if mark == "" {
				mark = bill.Settled[addr]
			}
			if mark == "" {
				mark = models.SettledNoProof
			}
			bill.Settled[addr] = mark
		} else {
			delete(bill.Settled, addr)
		}
	}

	if only := models.NormalizeAddress(onlyAddress); only != "" {
		applyOne(only)
		return
	}
	for _, addr := range state.Participants {
		applyOne(addr)
	}
}

// Pay records a cumulative partial payment by the actor.
func (e *Engine) Pay(ctx context.Context, actor string, req *PayRequest) (*PayResult, error) {
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
	if !money.IsFinite(req.Amount) || req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	cloned, err := e.cloneBill(bill)
	if err != nil {
		return nil, err
	}
	paid, err := e.applyPayment(ctx, cloned, addr, req.Amount, req.Proof)
	if err != nil {
		return nil, err
	}

	after := calculator.ComputeState(cloned)
	syncSettled(cloned, after, addr, req.Proof)

	cloned.AppendActivity("bill_payment_added", addr, e.now(ctx), map[string]any{
		"id":        req.ID,
		"address":   addr,
		"amount":    paid,
		"remaining": after.Remaining[addr],
		"proof":     trim(req.Proof),
	})

	if err := e.putBill(ctx, cloned); err != nil {
		return nil, err
	}
	return &PayResult{
		ID:         req.ID,
		Address:    addr,
		Amount:     paid,
		Remaining:  after.Remaining[addr],
		AllSettled: after.AllSettled,
	}, nil
}

// Settle pays the actor's full remaining obligation in one step. Settling
// with nothing remaining is an accepted no-op.
func (e *Engine) Settle(ctx context.Context, actor string, req *SettleRequest) (*SettleResult, error) {
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

	before := calculator.ComputeState(bill)
	remaining := money.Round(before.Remaining[addr])
	if remaining <= 0 {
		return &SettleResult{ID: req.ID, Address: addr, AllSettled: before.AllSettled, AlreadySettled: true}, nil
	}

	cloned, err := e.cloneBill(bill)
	if err != nil {
		return nil, err
	}
	paid, err := e.applyPayment(ctx, cloned, addr, remaining, req.Proof)
	if err != nil {
		return nil, err
	}

	after := calculator.ComputeState(cloned)
	syncSettled(cloned, after, addr, req.Proof)

	cloned.AppendActivity("bill_settled", addr, e.now(ctx), map[string]any{
		"id":          req.ID,
		"address":     addr,
		"paid_amount": paid,
		"proof":       trim(req.Proof),
	})

	if err := e.putBill(ctx, cloned); err != nil {
		return nil, err
	}
	return &SettleResult{
		ID:         req.ID,
		Address:    addr,
		PaidAmount: paid,
		AllSettled: after.AllSettled,
	}, nil
}

// Unsettle removes the actor's payment record and settlement mark. It is
// the only reversal path; it deletes rather than subtracts.
func (e *Engine) Unsettle(ctx context.Context, actor string, req *UnsettleRequest) (*UnsettleResult, error) {
	bill, err := e.getBill(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	addr, err := requireActor(actor)
	if err != nil {
		return nil, err
	}
	if !bill.HasParticipant(addr) {
		return nil, fmt.Errorf("%w: not a participant", ErrPermissionDenied)
	}

	before := calculator.ComputeState(bill)
	paidAmount := before.Paid[addr]
	if paidAmount <= 0 && bill.Settled[addr] == "" {
		return nil, fmt.Errorf("%w: nothing to unsettle", ErrInvalidState)
	}

	cloned, err := e.cloneBill(bill)
	if err != nil {
		return nil, err
	}
	delete(cloned.Payments, addr)
	delete(cloned.Settled, addr)

	after := calculator.ComputeState(cloned)
	syncSettled(cloned, after, "", "")

	cloned.AppendActivity("bill_unsettled", addr, e.now(ctx), map[string]any{
		"id":              req.ID,
		"address":         addr,
		"removed_payment": paidAmount,
	})

	if err := e.putBill(ctx, cloned); err != nil {
		return nil, err
	}
	return &UnsettleResult{ID: req.ID, Address: addr, RemovedPayment: paidAmount}, nil
}

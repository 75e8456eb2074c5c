package engine

import (
	"context"
	"fmt"

	"github.com/Lingz450/receiptsplit/internal/calculator"
)

// SetWeightsRequest updates allocation weights from an "addr=weight" CSV.
// Participants absent from the string keep their current weight (or the
// default 1).
type SetWeightsRequest struct {
	ID      int64  `json:"id" validate:"required,min=1"`
	Weights string `json:"weights" validate:"required,min=1,max=4096"`
}

// SetWeightsResult echoes the effective weight map.
type SetWeightsResult struct {
	ID      int64              `json:"id"`
	Weights map[string]float64 `json:"weights"`
}

// SetWeights updates the weight map and recomputes settlement for every
// participant, since a weight change can shift anyone's remaining balance.
// Creator only.
func (e *Engine) SetWeights(ctx context.Context, actor string, req *SetWeightsRequest) (*SetWeightsResult, error) {
	bill, err := e.getBill(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if bill.Closed {
		return nil, fmt.Errorf("%w: bill is closed", ErrInvalidState)
	}
	if bill.Archived {
		return nil, fmt.Errorf("%w: bill is archived", ErrInvalidState)
	}

	addr, err := requireActor(actor)
	if err != nil {
		return nil, err
	}
	if !bill.IsCreator(addr) {
		return nil, fmt.Errorf("%w: only creator can set weights", ErrPermissionDenied)
	}

	participants := bill.ParticipantAddresses()
	if len(participants) == 0 {
		return nil, fmt.Errorf("%w: no participants", ErrInvalidState)
	}

	parsed := parseWeights(req.Weights)
	if len(parsed) == 0 {
		return nil, fmt.Errorf("%w: no valid weights provided", ErrInvalidInput)
	}
	for target := range parsed {
		if !bill.HasParticipant(target) {
			return nil, fmt.Errorf("%w: weight provided for non-participant: %s", ErrInvalidInput, target)
		}
	}

	cloned, err := e.cloneBill(bill)
	if err != nil {
		return nil, err
	}
	if cloned.Weights == nil {
		cloned.Weights = map[string]float64{}
	}
	for _, participant := range participants {
		if w, ok := parsed[participant]; ok && w > 0 {
			cloned.Weights[participant] = w
		} else if !(cloned.Weights[participant] > 0) {
			cloned.Weights[participant] = 1
		}
	}

	after := calculator.ComputeState(cloned)
	syncSettled(cloned, after, "", "")

	cloned.AppendActivity("bill_weights_updated", addr, e.now(ctx), map[string]any{
		"id":      req.ID,
		"weights": cloned.Weights,
	})

	if err := e.putBill(ctx, cloned); err != nil {
		return nil, err
	}
	return &SetWeightsResult{ID: req.ID, Weights: cloned.Weights}, nil
}

// Package calculator computes per-participant obligations and the
// minimal-transfer settlement plan for a bill snapshot. Everything here is
// pure: identical input state always produces identical output, which the
// replicated execution model depends on.
package calculator

import (
	"github.com/Lingz450/receiptsplit/internal/models"
	"github.com/Lingz450/receiptsplit/internal/money"
)

// ItemShare is the resolved allocation of one item across its targets.
type ItemShare struct {
	Description  string             `json:"description"`
	Amount       float64            `json:"amount"`
	SplitBetween []string           `json:"split_between"`
	Allocations  map[string]float64 `json:"allocations"`
}

// State is the computed view of a bill: who owes what, who paid what, and
// whether everyone is square.
type State struct {
	Participants  []string           `json:"participants"`
	Weights       map[string]float64 `json:"weights"`
	ItemBreakdown []ItemShare        `json:"item_breakdown"`
	Total         float64            `json:"total"`
	TotalDue      float64            `json:"total_due"`
	TotalPaid     float64            `json:"total_paid"`
	Outstanding   float64            `json:"outstanding"`
	Due           map[string]float64 `json:"due_by_address"`
	Paid          map[string]float64 `json:"paid_by_address"`
	Remaining     map[string]float64 `json:"remaining_by_address"`
	Overpaid      map[string]float64 `json:"overpaid_by_address"`
	AllSettled    bool               `json:"all_settled"`
}

// normalizedWeights resolves each participant's weight: positive values from
// the bill's weight map, everything else defaults to 1.
func normalizedWeights(bill *models.Bill, addrs []string) map[string]float64 {
	out := make(map[string]float64, len(addrs))
	for _, addr := range addrs {
		w := bill.Weights[addr]
		if money.IsFinite(w) && w > 0 {
			out[addr] = w
		} else {
			out[addr] = 1
		}
	}
	return out
}

// itemTargets resolves an item's target addresses. Explicit split_between
// entries are normalized, deduplicated, and filtered to current
// participants; if nothing survives the filter the item falls back to all
// current participants. Entries naming departed participants are therefore
// silently excluded rather than treated as an error.
func itemTargets(item *models.Item, addrs []string) []string {
	if len(addrs) == 0 {
		return nil
	}
	allowed := make(map[string]bool, len(addrs))
	for _, addr := range addrs {
		allowed[addr] = true
	}

	seen := make(map[string]bool, len(item.SplitBetween))
	var targets []string
	for _, raw := range item.SplitBetween {
		addr := models.NormalizeAddress(raw)
		if addr == "" || !allowed[addr] || seen[addr] {
			continue
		}
		seen[addr] = true
		targets = append(targets, addr)
	}
	if len(targets) > 0 {
		return targets
	}
	return append([]string(nil), addrs...)
}

// ComputeState derives the full allocation state of a bill snapshot.
//
// Per-address dues accumulate unrounded across items; rounding happens only
// when recording per-item allocations and the final aggregates, so rounding
// error never compounds.
func ComputeState(bill *models.Bill) *State {
	addrs := bill.ParticipantAddresses()
	weights := normalizedWeights(bill, addrs)

	dueRaw := make(map[string]float64, len(addrs))
	var total float64
	var breakdown []ItemShare

	for i := range bill.Items {
		item := &bill.Items[i]
		amount := item.Amount
		if !money.IsFinite(amount) || amount < 0 {
			continue
		}
		total += amount

		targets := itemTargets(item, addrs)
		if len(targets) == 0 {
			continue
		}

		weightSum := 0.0
		for _, addr := range targets {
			weightSum += weights[addr]
		}
		if !(weightSum > 0) {
			weightSum = float64(len(targets))
		}

		allocations := make(map[string]float64, len(targets))
		for _, addr := range targets {
			w := weights[addr]
			if !(w > 0) {
				w = 1
			}
			share := amount * (w / weightSum)
			dueRaw[addr] += share
			allocations[addr] = money.Round(share)
		}

		breakdown = append(breakdown, ItemShare{
			Description:  item.Description,
			Amount:       money.Round(amount),
			SplitBetween: targets,
			Allocations:  allocations,
		})
	}

	due := make(map[string]float64, len(addrs))
	paid := make(map[string]float64, len(addrs))
	remaining := make(map[string]float64, len(addrs))
	overpaid := make(map[string]float64, len(addrs))

	var totalDue, totalPaid float64
	allSettled := len(addrs) > 0
	for _, addr := range addrs {
		d := money.Round(dueRaw[addr])
		p := money.Round(bill.PaidAmount(addr))
		r := money.Round(max(0, d-p))

		due[addr] = d
		paid[addr] = p
		remaining[addr] = r
		overpaid[addr] = money.Round(max(0, p-d))

		totalDue += d
		totalPaid += p
		if r > 0 {
			allSettled = false
		}
	}

	totalDue = money.Round(totalDue)
	totalPaid = money.Round(totalPaid)

	return &State{
		Participants:  addrs,
		Weights:       weights,
		ItemBreakdown: breakdown,
		Total:         money.Round(total),
		TotalDue:      totalDue,
		TotalPaid:     totalPaid,
		Outstanding:   money.Round(max(0, totalDue-totalPaid)),
		Due:           due,
		Paid:          paid,
		Remaining:     remaining,
		Overpaid:      overpaid,
		AllSettled:    allSettled,
	}
}

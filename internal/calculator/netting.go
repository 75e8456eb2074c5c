package calculator

import (
	"math"
	"sort"

	"github.com/Lingz450/receiptsplit/internal/money"
)

// settleFloor is the rounding floor below which a balance counts as zero
// while pairing debtors with creditors.
const settleFloor = 0.005

// Transfer is one peer-to-peer payment in a settlement plan.
type Transfer struct {
	From     string  `json:"from"`
	FromName string  `json:"from_name,omitempty"`
	To       string  `json:"to"`
	ToName   string  `json:"to_name,omitempty"`
	Amount   float64 `json:"amount"`
}

type party struct {
	address string
	name    string
	balance float64
}

// ComputeTransfers derives a minimal-transfer-count plan that zeroes every
// participant's net balance (paid minus due). Debtors are visited most
// negative first and creditors most positive first; ties keep the bill's
// participant iteration order, which makes the plan reproducible across
// independent executions. The plan optimizes transfer count only, no other
// fairness criterion.
func ComputeTransfers(state *State, names map[string]string) []Transfer {
	var debtors, creditors []party
	for _, addr := range state.Participants {
		net := money.Round(state.Paid[addr] - state.Due[addr])
		p := party{address: addr, name: names[addr], balance: net}
		switch {
		case net < 0:
			debtors = append(debtors, p)
		case net > 0:
			creditors = append(creditors, p)
		}
	}

	sort.SliceStable(debtors, func(i, j int) bool {
		return debtors[i].balance < debtors[j].balance
	})
	sort.SliceStable(creditors, func(i, j int) bool {
		return creditors[i].balance > creditors[j].balance
	})

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]

		amount := money.Round(math.Min(math.Abs(debtor.balance), creditor.balance))
		if amount > 0 {
			transfers = append(transfers, Transfer{
				From:     debtor.address,
				FromName: debtor.name,
				To:       creditor.address,
				ToName:   creditor.name,
				Amount:   amount,
			})
		}

		debtor.balance = money.Round(debtor.balance + amount)
		creditor.balance = money.Round(creditor.balance - amount)
		if math.Abs(debtor.balance) < settleFloor {
			i++
		}
		if math.Abs(creditor.balance) < settleFloor {
			j++
		}
	}
	return transfers
}

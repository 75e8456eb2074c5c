package engine

import (
	"context"
	"strings"

	"github.com/Lingz450/receiptsplit/internal/calculator"
	"github.com/Lingz450/receiptsplit/internal/models"
	"github.com/Lingz450/receiptsplit/internal/money"
	"github.com/Lingz450/receiptsplit/internal/storage"
)

// BillOutput is the full computed view of a bill returned by get/export.
type BillOutput struct {
	ID             int64                           `json:"id"`
	Title          string                          `json:"title"`
	Currency       string                          `json:"currency"`
	CreatorName    string                          `json:"creator_name"`
	CreatorAddress string                          `json:"creator_address,omitempty"`
	Participants   []models.Participant            `json:"participants"`
	Items          []models.Item                   `json:"items"`
	Notes          []models.Note                   `json:"notes"`
	Tags           []string                        `json:"tags"`
	Weights        map[string]float64              `json:"weights"`
	Payments       map[string]models.PaymentRecord `json:"payments"`
	Closed         bool                            `json:"closed"`
	Archived       bool                            `json:"archived"`
	Deadline       string                          `json:"deadline,omitempty"`
	Total          float64                         `json:"total"`
	PerPerson      float64                         `json:"per_person"`
	Due            map[string]float64              `json:"due_by_address"`
	Paid           map[string]float64              `json:"paid_by_address"`
	Remaining      map[string]float64              `json:"remaining_by_address"`
	Overpaid       map[string]float64              `json:"overpaid_by_address"`
	Outstanding    float64                         `json:"outstanding"`
	Settled        map[string]string               `json:"settled"`
	AllSettled     bool                            `json:"all_settled"`
	ItemBreakdown  []calculator.ItemShare          `json:"item_breakdown"`
	ActivityCount  int                             `json:"activity_count"`
}

// ExportOutput is a BillOutput plus the full activity trail and an export
// stamp, suitable for serialization.
type ExportOutput struct {
	BillOutput
	Activity   []models.ActivityEntry `json:"activity"`
	ExportedAt int64                  `json:"exported_at"`
}

// ListRequest filters the recent-bill index. The boolean filters arrive as
// loose strings ("true/1/yes") because the command surface is string-typed.
type ListRequest struct {
	Limit           int    `json:"limit,omitempty" validate:"omitempty,min=1,max=50"`
	Currency        string `json:"currency,omitempty" validate:"omitempty,max=10"`
	Tag             string `json:"tag,omitempty" validate:"omitempty,max=50"`
	CreatorAddress  string `json:"creator_address,omitempty" validate:"omitempty,max=128"`
	IncludeArchived string `json:"include_archived,omitempty" validate:"omitempty,max=8"`
	Closed          string `json:"closed,omitempty" validate:"omitempty,max=8"`
	Settled         string `json:"settled,omitempty" validate:"omitempty,max=8"`
}

// ListEntry is one row of a bill listing.
type ListEntry struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Currency    string   `json:"currency"`
	Closed      bool     `json:"closed"`
	Archived    bool     `json:"archived"`
	Tags        []string `json:"tags"`
	Total       float64  `json:"total"`
	Outstanding float64  `json:"outstanding"`
	AllSettled  bool     `json:"all_settled"`
}

// Stats aggregates across every bill still in the recency index.
type Stats struct {
	TotalBills        int64            `json:"total_bills"`
	ListedBills       int              `json:"listed_bills"`
	TotalParticipants int              `json:"total_participants"`
	TotalItems        int              `json:"total_items"`
	TotalAmount       float64          `json:"total_amount"`
	TotalPaid         float64          `json:"total_paid"`
	OutstandingTotal  float64          `json:"outstanding_total"`
	ClosedBills       int              `json:"closed_bills"`
	ArchivedBills     int              `json:"archived_bills"`
	FullySettledBills int              `json:"fully_settled_bills"`
	ByCurrency        map[string]int   `json:"by_currency"`
	ByTag             map[string]int   `json:"by_tag"`
}

// BalanceRow is one participant's position in a balance report.
type BalanceRow struct {
	Address   string  `json:"address"`
	Name      string  `json:"name,omitempty"`
	Weight    float64 `json:"weight"`
	Due       float64 `json:"due"`
	Paid      float64 `json:"paid"`
	Remaining float64 `json:"remaining"`
	Overpaid  float64 `json:"overpaid"`
	Settled   bool    `json:"settled"`
}

// BalanceOutput is the per-participant balance report.
type BalanceOutput struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Currency    string       `json:"currency"`
	Closed      bool         `json:"closed"`
	Archived    bool         `json:"archived"`
	Total       float64      `json:"total"`
	TotalPaid   float64      `json:"total_paid"`
	Outstanding float64      `json:"outstanding"`
	AllSettled  bool         `json:"all_settled"`
	Rows        []BalanceRow `json:"rows"`
}

// ActivityRequest pages through the tail of the audit trail.
type ActivityRequest struct {
	ID    int64 `json:"id" validate:"required,min=1"`
	Limit int   `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
}

// ActivityResult is the most recent slice of the audit trail, oldest first.
type ActivityResult struct {
	ID      int64                  `json:"id"`
	Total   int                    `json:"total"`
	Entries []models.ActivityEntry `json:"entries"`
}

// DebtOutput is the minimal-transfer settlement plan for a bill.
type DebtOutput struct {
	ID          int64                 `json:"id"`
	Title       string                `json:"title"`
	Currency    string                `json:"currency"`
	Total       float64               `json:"total"`
	Outstanding float64               `json:"outstanding"`
	AllSettled  bool                  `json:"all_settled"`
	Transfers   []calculator.Transfer `json:"transfers"`
}

// buildBillOutput assembles the external view from a snapshot and its
// computed state.
func buildBillOutput(bill *models.Bill, state *calculator.State) BillOutput {
	participantCount := len(state.Participants)
	if participantCount == 0 {
		participantCount = 1
	}
	return BillOutput{
		ID:             bill.ID,
		Title:          bill.Title,
		Currency:       bill.Currency,
		CreatorName:    bill.CreatorName,
		CreatorAddress: bill.CreatorAddress,
		Participants:   bill.Participants,
		Items:          bill.Items,
		Notes:          bill.Notes,
		Tags:           bill.Tags,
		Weights:        state.Weights,
		Payments:       bill.Payments,
		Closed:         bill.Closed,
		Archived:       bill.Archived,
		Deadline:       bill.Deadline,
		Total:          state.Total,
		PerPerson:      money.Round(state.Total / float64(participantCount)),
		Due:            state.Due,
		Paid:           state.Paid,
		Remaining:      state.Remaining,
		Overpaid:       state.Overpaid,
		Outstanding:    state.Outstanding,
		Settled:        bill.Settled,
		AllSettled:     state.AllSettled,
		ItemBreakdown:  state.ItemBreakdown,
		ActivityCount:  len(bill.Activity),
	}
}

// Get returns the computed view of one bill. Read-only.
func (e *Engine) Get(ctx context.Context, req *BillIDRequest) (*BillOutput, error) {
	bill, err := e.getBill(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	out := buildBillOutput(bill, calculator.ComputeState(bill))
	return &out, nil
}

// Export returns the full view including the activity trail, stamped with
// the logical clock. Read-only.
func (e *Engine) Export(ctx context.Context, req *BillIDRequest) (*ExportOutput, error) {
	bill, err := e.getBill(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &ExportOutput{
		BillOutput: buildBillOutput(bill, calculator.ComputeState(bill)),
		Activity:   bill.Activity,
		ExportedAt: e.now(ctx),
	}, nil
}

// List walks the recency index newest-first, applying filters until limit
// rows are collected. Read-only.
func (e *Engine) List(ctx context.Context, req *ListRequest) ([]ListEntry, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	filterCurrency := trim(req.Currency)
	filterTag := strings.ToLower(trim(req.Tag))
	filterCreator := models.NormalizeAddress(req.CreatorAddress)
	includeArchived := parseBoolLike(req.IncludeArchived, nil)
	filterClosed := parseBoolLike(req.Closed, nil)
	filterSettled := parseBoolLike(req.Settled, nil)

	ids, err := e.readIndex(ctx, storage.BillIndexKey)
	if err != nil {
		return nil, err
	}

	entries := []ListEntry{}
	for _, id := range ids {
		if len(entries) >= limit {
			break
		}
		bill, err := e.getBill(ctx, id)
		if err != nil {
			continue
		}
		if bill.Archived && (includeArchived == nil || !*includeArchived) {
			continue
		}
		if filterCurrency != "" && bill.Currency != filterCurrency {
			continue
		}
		if filterCreator != "" && models.NormalizeAddress(bill.CreatorAddress) != filterCreator {
			continue
		}
		if filterTag != "" {
			matched := false
			for _, tag := range bill.Tags {
				if strings.Contains(strings.ToLower(tag), filterTag) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		if filterClosed != nil && bill.Closed != *filterClosed {
			continue
		}

		state := calculator.ComputeState(bill)
		if filterSettled != nil && state.AllSettled != *filterSettled {
			continue
		}

		entries = append(entries, ListEntry{
			ID:          bill.ID,
			Title:       bill.Title,
			Currency:    bill.Currency,
			Closed:      bill.Closed,
			Archived:    bill.Archived,
			Tags:        bill.Tags,
			Total:       state.Total,
			Outstanding: state.Outstanding,
			AllSettled:  state.AllSettled,
		})
	}
	return entries, nil
}

// ComputeStats aggregates every bill reachable from the recency index.
// Read-only.
func (e *Engine) ComputeStats(ctx context.Context) (*Stats, error) {
	var counter int64
	_ = storage.GetJSON(ctx, e.kv, storage.BillCounterKey, &counter)

	ids, err := e.readIndex(ctx, storage.BillIndexKey)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalBills:  counter,
		ListedBills: len(ids),
		ByCurrency:  map[string]int{},
		ByTag:       map[string]int{},
	}

	for _, id := range ids {
		bill, err := e.getBill(ctx, id)
		if err != nil {
			continue
		}
		if bill.Closed {
			stats.ClosedBills++
		}
		if bill.Archived {
			stats.ArchivedBills++
		}

		state := calculator.ComputeState(bill)
		if state.AllSettled {
			stats.FullySettledBills++
		}
		stats.TotalParticipants += len(state.Participants)
		stats.TotalItems += len(bill.Items)
		stats.TotalAmount = money.Round(stats.TotalAmount + state.Total)
		stats.TotalPaid = money.Round(stats.TotalPaid + state.TotalPaid)
		stats.OutstandingTotal = money.Round(stats.OutstandingTotal + state.Outstanding)

		currency := bill.Currency
		if currency == "" {
			currency = "?"
		}
		stats.ByCurrency[currency]++

		for _, tag := range bill.Tags {
			key := strings.ToLower(trim(tag))
			if key == "" {
				continue
			}
			stats.ByTag[key]++
		}
	}
	return stats, nil
}

// Balance reports each participant's due/paid/remaining/overpaid position.
// Read-only.
func (e *Engine) Balance(ctx context.Context, req *BillIDRequest) (*BalanceOutput, error) {
	bill, err := e.getBill(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	names := bill.ParticipantNames()
	state := calculator.ComputeState(bill)

	rows := make([]BalanceRow, 0, len(state.Participants))
	for _, addr := range state.Participants {
		rows = append(rows, BalanceRow{
			Address:   addr,
			Name:      names[addr],
			Weight:    state.Weights[addr],
			Due:       state.Due[addr],
			Paid:      state.Paid[addr],
			Remaining: state.Remaining[addr],
			Overpaid:  state.Overpaid[addr],
			Settled:   state.Remaining[addr] <= 0,
		})
	}

	return &BalanceOutput{
		ID:          bill.ID,
		Title:       bill.Title,
		Currency:    bill.Currency,
		Closed:      bill.Closed,
		Archived:    bill.Archived,
		Total:       state.Total,
		TotalPaid:   state.TotalPaid,
		Outstanding: state.Outstanding,
		AllSettled:  state.AllSettled,
		Rows:        rows,
	}, nil
}

// Activity returns the most recent limit entries of the audit trail,
// oldest first. Read-only.
func (e *Engine) Activity(ctx context.Context, req *ActivityRequest) (*ActivityResult, error) {
	bill, err := e.getBill(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	start := len(bill.Activity) - limit
	if start < 0 {
		start = 0
	}
	return &ActivityResult{
		ID:      req.ID,
		Total:   len(bill.Activity),
		Entries: bill.Activity[start:],
	}, nil
}

// Debt derives the minimal-transfer settlement plan from net balances.
// Read-only.
func (e *Engine) Debt(ctx context.Context, req *BillIDRequest) (*DebtOutput, error) {
	bill, err := e.getBill(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	state := calculator.ComputeState(bill)
	transfers := calculator.ComputeTransfers(state, bill.ParticipantNames())

	return &DebtOutput{
		ID:          bill.ID,
		Title:       bill.Title,
		Currency:    bill.Currency,
		Total:       state.Total,
		Outstanding: state.Outstanding,
		AllSettled:  state.AllSettled,
		Transfers:   transfers,
	}, nil
}

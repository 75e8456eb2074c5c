package models

// Group is a named collection of bills owned by its creator.
// BillIDs is bounded by the recency index cap and deduplicated on insert.
type Group struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	CreatorAddress string  `json:"creator_address,omitempty"`
	BillIDs        []int64 `json:"bill_ids"`
	CreatedAt      int64   `json:"created_at"`
}

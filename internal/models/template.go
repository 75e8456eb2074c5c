package models

// Template is a reusable bill skeleton saved from an existing bill.
// Instantiating a template starts a fresh bill: no items, payments, or
// participants carry over, only title, currency, and tags.
type Template struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	FromBillID int64    `json:"from_bill_id"`
	Title      string   `json:"title"`
	Currency   string   `json:"currency"`
	Tags       []string `json:"tags"`
	CreatedBy  string   `json:"created_by,omitempty"`
	CreatedAt  int64    `json:"created_at"`
}

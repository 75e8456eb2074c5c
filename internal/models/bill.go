package models

import "strings"

// Capacity limits for the bounded collections on a bill. Inserts beyond a
// limit evict the oldest entry first.
const (
	MaxNotes    = 25
	MaxEditors  = 20
	MaxReceipts = 20
	MaxActivity = 200
	MaxTags     = 8
)

// SettledNoProof marks a participant as settled when no payment proof was
// supplied. Any other value in the settled map is the proof string itself.
const SettledNoProof = "true"

// Participant is one address entitled to share allocations on a bill.
// Addresses are unique within a bill.
type Participant struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// Item is an expense line. SplitBetween targets a subset of the current
// participants; empty means the item is split across all of them.
type Item struct {
	Description  string   `json:"description"`
	Amount       float64  `json:"amount"`
	SplitBetween []string `json:"split_between,omitempty"`
}

// PaymentRecord accumulates everything one address has paid on a bill.
// Amounts only ever grow; reversal deletes the whole record (unsettle).
type PaymentRecord struct {
	Amount    float64 `json:"amount"`
	LastProof string  `json:"last_proof,omitempty"`
	UpdatedAt int64   `json:"updated_at"`
	TxCount   int     `json:"tx_count"`
}

// Note is a free-form comment left on a bill.
type Note struct {
	By   string `json:"by,omitempty"`
	Text string `json:"text"`
	At   int64  `json:"at"`
}

// Receipt anchors an external document hash to a bill.
type Receipt struct {
	Hash string `json:"hash"`
	Note string `json:"note,omitempty"`
	By   string `json:"by,omitempty"`
	At   int64  `json:"at"`
}

// ActivityEntry is one line of the bounded audit trail. Every accepted
// mutation appends exactly one entry.
type ActivityEntry struct {
	Event string         `json:"event"`
	By    string         `json:"by,omitempty"`
	At    int64          `json:"at"`
	Data  map[string]any `json:"data"`
}

// Bill is the ledger record for one shared-expense event.
//
// Timestamps are logical-clock values in milliseconds; zero means the clock
// had not started when the field was stamped.
type Bill struct {
	ID              int64                    `json:"id"`
	Title           string                   `json:"title"`
	Currency        string                   `json:"currency"`
	CreatorName     string                   `json:"creator_name"`
	CreatorAddress  string                   `json:"creator_address,omitempty"`
	Participants    []Participant            `json:"participants"`
	Items           []Item                   `json:"items"`
	Payments        map[string]PaymentRecord `json:"payments"`
	Settled         map[string]string        `json:"settled"`
	Notes           []Note                   `json:"notes"`
	Editors         []string                 `json:"editors"`
	Receipts        []Receipt                `json:"receipts"`
	InviteCode      string                   `json:"invite_code,omitempty"`
	InviteExpiresAt int64                    `json:"invite_expires_at,omitempty"`
	Closed          bool                     `json:"closed"`
	Archived        bool                     `json:"archived"`
	Deadline        string                   `json:"deadline,omitempty"`
	Tags            []string                 `json:"tags"`
	Weights         map[string]float64       `json:"weights"`
	Activity        []ActivityEntry          `json:"activity"`
}

// NormalizeAddress trims an address string. Empty after trimming means
// "no address".
func NormalizeAddress(addr string) string {
	return strings.TrimSpace(addr)
}

// ParticipantAddresses returns the bill's participant addresses in join
// order, normalized, with duplicates and empties dropped. This order is the
// canonical iteration order for allocation and debt netting.
func (b *Bill) ParticipantAddresses() []string {
	seen := make(map[string]bool, len(b.Participants))
	out := make([]string, 0, len(b.Participants))
	for _, p := range b.Participants {
		addr := NormalizeAddress(p.Address)
		if addr == "" || seen[addr] {
			continue
		}
		seen[addr] = true
		out = append(out, addr)
	}
	return out
}

// ParticipantNames maps address to display name.
func (b *Bill) ParticipantNames() map[string]string {
	out := make(map[string]string, len(b.Participants))
	for _, p := range b.Participants {
		addr := NormalizeAddress(p.Address)
		if addr == "" {
			continue
		}
		if _, ok := out[addr]; !ok {
			out[addr] = p.Name
		}
	}
	return out
}

// HasParticipant reports whether addr is a current participant.
func (b *Bill) HasParticipant(addr string) bool {
	addr = NormalizeAddress(addr)
	if addr == "" {
		return false
	}
	for _, p := range b.Participants {
		if NormalizeAddress(p.Address) == addr {
			return true
		}
	}
	return false
}

// IsCreator reports whether addr is the bill creator.
func (b *Bill) IsCreator(addr string) bool {
	addr = NormalizeAddress(addr)
	return addr != "" && NormalizeAddress(b.CreatorAddress) == addr
}

// IsEditorOrCreator reports whether addr may modify items and receipts.
func (b *Bill) IsEditorOrCreator(addr string) bool {
	addr = NormalizeAddress(addr)
	if addr == "" {
		return false
	}
	if b.IsCreator(addr) {
		return true
	}
	for _, e := range b.Editors {
		if NormalizeAddress(e) == addr {
			return true
		}
	}
	return false
}

// PaidAmount returns the cumulative payment recorded for addr, 0 if none.
func (b *Bill) PaidAmount(addr string) float64 {
	rec, ok := b.Payments[NormalizeAddress(addr)]
	if !ok || rec.Amount <= 0 {
		return 0
	}
	return rec.Amount
}

// AppendActivity appends one audit entry, evicting oldest-first past
// MaxActivity.
func (b *Bill) AppendActivity(event, by string, at int64, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	b.Activity = append(b.Activity, ActivityEntry{
		Event: event,
		By:    NormalizeAddress(by),
		At:    at,
		Data:  data,
	})
	if over := len(b.Activity) - MaxActivity; over > 0 {
		b.Activity = append([]ActivityEntry(nil), b.Activity[over:]...)
	}
}

// AppendNote appends a note, evicting oldest-first past MaxNotes.
func (b *Bill) AppendNote(n Note) {
	b.Notes = append(b.Notes, n)
	if over := len(b.Notes) - MaxNotes; over > 0 {
		b.Notes = append([]Note(nil), b.Notes[over:]...)
	}
}

// AppendReceipt appends a receipt, evicting oldest-first past MaxReceipts.
func (b *Bill) AppendReceipt(r Receipt) {
	b.Receipts = append(b.Receipts, r)
	if over := len(b.Receipts) - MaxReceipts; over > 0 {
		b.Receipts = append([]Receipt(nil), b.Receipts[over:]...)
	}
}

package storage

import "fmt"

// Key namespace shared with the host. Counters are global monotonic
// sequences; the *_ids keys are bounded most-recent-first recency indexes.
const (
	BillCounterKey     = "bill_counter"
	BillIndexKey       = "bill_ids"
	TemplateCounterKey = "template_counter"
	TemplateIndexKey   = "template_ids"
	GroupCounterKey    = "group_counter"
	GroupIndexKey      = "group_ids"
	CurrentTimeKey     = "currentTime"
)

// RecencyIndexCap bounds each *_ids list.
const RecencyIndexCap = 50

// BillKey returns the storage key for a bill record.
func BillKey(id int64) string { return fmt.Sprintf("bill:%d", id) }

// TemplateKey returns the storage key for a template record.
func TemplateKey(id int64) string { return fmt.Sprintf("template:%d", id) }

// GroupKey returns the storage key for a group record.
func GroupKey(id int64) string { return fmt.Sprintf("group:%d", id) }

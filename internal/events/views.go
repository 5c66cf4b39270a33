// Package events defines payloads published to downstream view caches.
package events

import "time"

// ViewsInvalidated is emitted after a successful write, naming the
// logical views whose cached renderings are now stale.
type ViewsInvalidated struct {
	Views      []string  `json:"views"`
	OccurredAt time.Time `json:"occurred_at"`
}

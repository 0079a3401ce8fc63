// Package rules reads business-rule configuration stored as mutable
// administrative rows. Values are re-read on every evaluation so edits take
// effect immediately; there is deliberately no caching layer.
package rules

import (
	"context"
)

// Store exposes the administrative rule rows the core consults.
type Store interface {
	// PaymentCutoffDay returns the day-of-month after which payments count
	// as extemporaneous. Falls back to the packaged default when no row is
	// configured.
	PaymentCutoffDay(ctx context.Context) (int, error)
}

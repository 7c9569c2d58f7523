package fills

import (
	"strings"
	"time"
)

// Rounding tolerances for the canonical key. Repeated or overlapping exports
// of the same account frequently differ only by formatting noise (trailing
// zeros, sub-second timestamps, re-rendered fee precision); rounding before
// comparison makes such rows compare equal.
const (
	keyPricePlaces = 6
	keyQtyPlaces   = 8
	keyFeePlaces   = 8
)

// Key returns the canonical dedupe key for a normalized fill.
func Key(f Fill) string {
	parts := []string{
		f.Exchange,
		canonSymbol(f.Symbol),
		f.Time.Truncate(time.Second).UTC().Format(time.RFC3339),
		strings.ToUpper(string(f.Action) + " " + string(f.Side)),
		f.Price.Round(keyPricePlaces).String(),
		f.Quantity.Round(keyQtyPlaces).String(),
		f.Fee.Round(keyFeePlaces).String(),
		strings.ToUpper(strings.TrimSpace(f.Status)),
	}
	return strings.Join(parts, "|")
}

// Dedupe collapses equal-key fills to the first occurrence, preserving
// first-seen order. Idempotent. Returns the surviving fills and the number
// removed.
func Dedupe(fs []Fill) ([]Fill, int) {
	seen := make(map[string]bool, len(fs))
	out := make([]Fill, 0, len(fs))
	removed := 0
	for _, f := range fs {
		k := Key(f)
		if seen[k] {
			removed++
			continue
		}
		seen[k] = true
		out = append(out, f)
	}
	return out, removed
}

package exchange

import (
	"fmt"
	"strings"
)

// FieldMap names the export column (lowercased) that carries each canonical
// fill field. Optional fields are empty when the format does not provide them.
type FieldMap struct {
	Time       string
	Symbol     string
	Side       string
	Price      string
	Quantity   string
	Status     string
	Fee        string
	PnL        string
	MarginMode string
	Leverage   string
	ReduceOnly string
}

// SideRule describes how the export's side label maps to (action, position side).
type SideRule struct {
	// InvertOnClose is set for exports that label the order direction on close
	// fills ("Close Short" closing a long). The position side is then the
	// opposite of the labelled side.
	InvertOnClose bool
}

// Profile is an immutable description of one supported export format:
// the header signature it is recognized by, the column-to-field mapping,
// and the side derivation rule.
type Profile struct {
	Exchange string
	Required []string
	Optional []string
	Fields   FieldMap
	Rule     SideRule
}

// NormalizeHeader canonicalizes a header cell for matching and lookup.
func NormalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

func headerSet(headers []string) map[string]bool {
	set := make(map[string]bool, len(headers))
	for _, h := range headers {
		set[NormalizeHeader(h)] = true
	}
	return set
}

var profiles []*Profile

// Register adds a profile to the detection registry. Required signatures must
// be pairwise disjoint: a profile whose required headers are a subset of
// another's would make detection order-dependent, which is a configuration
// defect, so Register panics rather than letting it surface at runtime.
func Register(p *Profile) {
	for _, q := range profiles {
		if subset(p.Required, q.Required) || subset(q.Required, p.Required) {
			panic(fmt.Sprintf("exchange: profile %s signature overlaps %s", p.Exchange, q.Exchange))
		}
	}
	profiles = append(profiles, p)
}

func subset(a, b []string) bool {
	set := headerSet(b)
	for _, h := range a {
		if !set[NormalizeHeader(h)] {
			return false
		}
	}
	return true
}

// Profiles returns the registered profiles in registration order.
func Profiles() []*Profile {
	return profiles
}

// MissingRequired returns the profile's required headers absent from the
// upload's header row, in signature order. Empty means the upload satisfies
// the signature. Used when the exchange is declared rather than detected, so
// a wrong-format file still fails structurally instead of degrading every
// row to a warning.
func (p *Profile) MissingRequired(headers []string) []string {
	set := headerSet(headers)
	var missing []string
	for _, h := range p.Required {
		if !set[h] {
			missing = append(missing, h)
		}
	}
	return missing
}

// ByName returns the profile for an explicitly declared exchange name.
func ByName(name string) (*Profile, bool) {
	for _, p := range profiles {
		if strings.EqualFold(p.Exchange, strings.TrimSpace(name)) {
			return p, true
		}
	}
	return nil, false
}

func init() {
	Register(&Profile{
		Exchange: "Bitunix",
		Required: []string{"date", "side", "futures", "average price", "executed", "status"},
		Optional: []string{"fee", "realized p/l"},
		Fields: FieldMap{
			Time:     "date",
			Symbol:   "futures",
			Side:     "side",
			Price:    "average price",
			Quantity: "executed",
			Status:   "status",
			Fee:      "fee",
			PnL:      "realized p/l",
		},
		// Bitunix labels the order direction, not the position direction.
		Rule: SideRule{InvertOnClose: true},
	})

	Register(&Profile{
		Exchange: "Blofin",
		Required: []string{"underlying asset", "order time", "side", "avg fill", "filled", "status"},
		Optional: []string{"reduce-only", "margin mode", "leverage", "fee", "pnl"},
		Fields: FieldMap{
			Time:       "order time",
			Symbol:     "underlying asset",
			Side:       "side",
			Price:      "avg fill",
			Quantity:   "filled",
			Status:     "status",
			Fee:        "fee",
			PnL:        "pnl",
			MarginMode: "margin mode",
			Leverage:   "leverage",
			ReduceOnly: "reduce-only",
		},
		Rule: SideRule{},
	})
}

package exchange

import (
	"fmt"
	"sort"
	"strings"
)

// UnrecognizedFormatError is returned when an upload's headers match no
// registered profile. It carries every profile's expected header set so the
// caller can show the user what a supported export looks like.
type UnrecognizedFormatError struct {
	Headers  []string
	Expected map[string][]string // exchange -> required headers
}

func (e *UnrecognizedFormatError) Error() string {
	var b strings.Builder
	b.WriteString("unrecognized export format; expected headers:")
	names := make([]string, 0, len(e.Expected))
	for name := range e.Expected {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, " %s(%s)", name, strings.Join(e.Expected[name], ", "))
	}
	return b.String()
}

// Detect matches an upload's header row against the registered profiles.
// Matching is by superset: the upload must carry at least every required
// header of exactly one profile. Signatures are disjoint (see Register), so
// the first match is the only match.
func Detect(headers []string) (*Profile, error) {
	set := headerSet(headers)
	for _, p := range profiles {
		matched := true
		for _, h := range p.Required {
			if !set[h] {
				matched = false
				break
			}
		}
		if matched {
			return p, nil
		}
	}

	expected := make(map[string][]string, len(profiles))
	for _, p := range profiles {
		req := make([]string, len(p.Required))
		copy(req, p.Required)
		sort.Strings(req)
		expected[p.Exchange] = req
	}
	return nil, &UnrecognizedFormatError{Headers: headers, Expected: expected}
}

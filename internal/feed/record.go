package feed

import "strings"

// Record is one loosely-typed row extracted from a feed: field name to raw
// value. Values are strings for XML/CSV sources and arbitrary JSON values for
// JSON sources.
type Record map[string]any

// lookupFold returns the record value whose key matches case-insensitively.
func (r Record) lookupFold(key string) (any, bool) {
	if v, ok := r[key]; ok {
		return v, true
	}
	for k, v := range r {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

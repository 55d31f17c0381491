package model

import "time"

// ContentEntry is one editable unit of site text.
type ContentEntry struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// ContentMap maps content keys to their values. It is the shape of the
// content set on the wire and in memory.
type ContentMap map[string]string

// Clone returns a shallow copy of m. A nil map clones to an empty map.
func (m ContentMap) Clone() ContentMap {
	out := make(ContentMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Merge returns base overlaid with over. Values in over win.
func Merge(base, over ContentMap) ContentMap {
	out := base.Clone()
	for k, v := range over {
		out[k] = v
	}
	return out
}

// MissingFrom returns the keys of defaults that are absent from persisted,
// in no particular order.
func MissingFrom(defaults, persisted ContentMap) []string {
	var missing []string
	for k := range defaults {
		if _, ok := persisted[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing
}

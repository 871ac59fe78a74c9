package main

import (
	"sort"

	"shipping_schedule/internal/ordering"
	"shipping_schedule/internal/storage"
)

// orderSailings sorts sailings by curated port order, then date and vessel.
// Unresolved ports are keyed by their raw text.
func orderSailings(engine *ordering.Engine, sailings []storage.Sailing) []storage.Sailing {
	items := make([]string, len(sailings))
	for i, s := range sailings {
		items[i] = s.PortDisplay
		if items[i] == "" {
			items[i] = s.PortRaw
		}
	}
	keys := engine.Keys(items)

	idx := make([]int, len(sailings))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		if c := ka.Compare(kb); c != 0 {
			return c < 0
		}
		sa, sb := sailings[idx[a]], sailings[idx[b]]
		if sa.SailingDate != sb.SailingDate {
			return sa.SailingDate < sb.SailingDate
		}
		return sa.Vessel < sb.Vessel
	})

	out := make([]storage.Sailing, len(sailings))
	for i, j := range idx {
		out[i] = sailings[j]
	}
	return out
}

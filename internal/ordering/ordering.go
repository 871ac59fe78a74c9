// Package ordering sorts ports and regions into the curated display order:
// by region, then by each port's position in the alias asset.
package ordering

import (
	"cmp"
	"sort"

	"shipping_schedule/internal/catalog"
)

// Resolver is the part of the resolver the ordering engine needs.
type Resolver interface {
	Lookup(text string) (string, bool)
	Catalog() *catalog.Catalog
}

// Engine orders ports and regions against one resolver.
type Engine struct {
	res Resolver
}

// New creates an ordering engine.
func New(res Resolver) *Engine {
	return &Engine{res: res}
}

// Key is the sort position of one port item.
type Key struct {
	RegionRank int    `json:"region_rank"`
	Index      int    `json:"index"`
	Text       string `json:"text"`
	Raw        string `json:"raw"`
	Resolved   bool   `json:"resolved"`
}

// Compare orders keys by region rank, index, text, then raw input.
func (k Key) Compare(o Key) int {
	if c := cmp.Compare(k.RegionRank, o.RegionRank); c != 0 {
		return c
	}
	if c := cmp.Compare(k.Index, o.Index); c != 0 {
		return c
	}
	if c := cmp.Compare(k.Text, o.Text); c != 0 {
		return c
	}
	return cmp.Compare(k.Raw, o.Raw)
}

// Keys computes sort keys for items. Resolved ports use their SortIndex.
// An unresolved item whose region is still known (a display string with an
// unknown code) is placed after every resolved port of that region: it gets
// the region's high-water mark plus a counter that grows once per distinct
// unresolved item of the region, in input order. Items with no known region
// rank after all regions and order by code or raw text.
func (e *Engine) Keys(items []string) []Key {
	c := e.res.Catalog()
	unknownRank := c.RegionCount()

	extra := make(map[string]map[string]int)
	keys := make([]Key, len(items))
	for i, item := range items {
		k := Key{Raw: item, RegionRank: unknownRank, Index: catalog.UnknownIndex, Text: item}

		if code, ok := e.res.Lookup(item); ok {
			if id, ok := c.Identity(code); ok {
				k.Resolved = true
				k.Text = id.Code
				if rank, ok := c.RegionRank(id.Region); ok {
					k.RegionRank = rank
					k.Index = id.SortIndex
				}
				keys[i] = k
				continue
			}
		}

		if parts, ok := catalog.ParseDisplay(item); ok {
			region := c.NormaliseRegion(parts.Region)
			if rank, ok := c.RegionRank(region); ok {
				seen, ok := extra[region]
				if !ok {
					seen = make(map[string]int)
					extra[region] = seen
				}
				n, ok := seen[item]
				if !ok {
					n = len(seen) + 1
					seen[item] = n
				}
				k.RegionRank = rank
				k.Index = c.RegionHighWaterMark(region) + n
			}
		}
		keys[i] = k
	}
	return keys
}

// SortPorts returns items in curated order. The result is a permutation of
// items and sorting it again returns it unchanged.
func (e *Engine) SortPorts(items []string) []string {
	keys := e.Keys(items)
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return keys[idx[a]].Compare(keys[idx[b]]) < 0
	})

	out := make([]string, len(items))
	for i, j := range idx {
		out[i] = items[j]
	}
	return out
}

// SortRegions returns region names in curated order. Synonyms and spacing
// variants sort with their canonical region; unknown names come after every
// known region, alphabetically.
func (e *Engine) SortRegions(names []string) []string {
	c := e.res.Catalog()
	unknownRank := c.RegionCount()

	ranks := make([]int, len(names))
	for i, name := range names {
		if rank, ok := c.RegionRank(name); ok {
			ranks[i] = rank
		} else {
			ranks[i] = unknownRank
		}
	}

	idx := make([]int, len(names))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ra, rb := ranks[idx[a]], ranks[idx[b]]
		if ra != rb {
			return ra < rb
		}
		return names[idx[a]] < names[idx[b]]
	})

	out := make([]string, len(names))
	for i, j := range idx {
		out[i] = names[j]
	}
	return out
}

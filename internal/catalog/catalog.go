// Package catalog holds the canonical port registry: every PortIdentity, the
// alias index that maps normalized spellings to codes, and the curated region
// order. A Catalog is built once and is read-only afterwards, so it can be
// shared freely between goroutines.
package catalog

import (
	"fmt"
	"strings"
)

// Alias is one normalized alias key and the code it resolves to.
type Alias struct {
	Key  string `json:"key"`
	Code string `json:"code"`
}

// BuildOptions configures catalog construction.
type BuildOptions struct {
	RegionOrder    []string          // Curated region order; DefaultRegionOrder when empty.
	RegionSynonyms map[string]string // Extra region spellings; merged over DefaultRegionSynonyms.
}

// Catalog is an immutable canonical registry.
type Catalog struct {
	identities []PortIdentity  // In SortIndex order.
	byCode     map[string]int  // Code -> position in identities.
	aliases    map[string]string
	english    []Alias // English-name-derived aliases (upper case), in registry order.
	regions    *RegionSet
	highWater  map[string]int
	warnings   []Warning
	source     string
	degraded   bool
}

// Build constructs a catalog from parsed asset records. Records are taken in
// order: SortIndex follows record order, the first identity for a code wins
// and the first code to claim an alias keeps it.
func Build(records []Record, opts BuildOptions) *Catalog {
	order := opts.RegionOrder
	if len(order) == 0 {
		order = DefaultRegionOrder
	}
	synonyms := make(map[string]string, len(DefaultRegionSynonyms)+len(opts.RegionSynonyms))
	for k, v := range DefaultRegionSynonyms {
		synonyms[k] = v
	}
	for k, v := range opts.RegionSynonyms {
		synonyms[k] = v
	}

	c := &Catalog{
		byCode:    make(map[string]int, len(records)),
		aliases:   make(map[string]string, len(records)*8),
		regions:   NewRegionSet(order, synonyms),
		highWater: make(map[string]int),
	}

	for _, rec := range records {
		c.addRecord(rec)
	}
	return c
}

func (c *Catalog) addRecord(rec Record) {
	code := strings.TrimSpace(rec.Code)
	if code == "" {
		c.warn(rec.Line, WarnMissingCode, "empty code")
		return
	}

	if _, exists := c.byCode[code]; exists {
		c.warn(rec.Line, WarnDuplicateCode, fmt.Sprintf("code %q already defined; aliases merged", code))
	} else {
		region := c.regions.Normalise(rec.Region)
		if region != "" {
			if _, known := c.regions.rank[region]; !known {
				c.regions.add(region)
				c.warn(rec.Line, WarnUnknownRegion, fmt.Sprintf("region %q appended to region order", region))
			}
		} else {
			c.warn(rec.Line, WarnUnknownRegion, fmt.Sprintf("code %q has no region", code))
		}

		idx := len(c.identities)
		c.identities = append(c.identities, PortIdentity{
			Code:        code,
			EnglishName: rec.EnglishName,
			Region:      region,
			SortIndex:   idx,
			LocalName:   rec.SourceB,
		})
		c.byCode[code] = idx
		if region != "" {
			c.highWater[region] = idx
		}

		for _, a := range deriveAliases(rec.EnglishName) {
			c.english = append(c.english, Alias{Key: strings.ToUpper(a), Code: code})
		}
	}

	c.register(rec.Line, code, code)
	for _, field := range []string{rec.EnglishName, rec.SourceA, rec.SourceB, rec.SourceC} {
		for _, a := range deriveAliases(field) {
			c.register(rec.Line, a, code)
		}
	}
}

// register binds an alias (and its upper-case form) to a code. An alias that
// already points at another code is left alone and reported once.
func (c *Catalog) register(line int, alias, code string) {
	key := NormaliseKey(alias)
	if key == "" {
		return
	}
	conflict := ""
	for _, k := range []string{key, strings.ToUpper(key)} {
		existing, ok := c.aliases[k]
		if !ok {
			c.aliases[k] = code
			continue
		}
		if existing != code && conflict == "" {
			conflict = existing
		}
	}
	if conflict != "" {
		c.warn(line, WarnAliasConflict, fmt.Sprintf("alias %q kept for %s, rejected for %s", key, conflict, code))
	}
}

func (c *Catalog) warn(line int, kind, detail string) {
	c.warnings = append(c.warnings, Warning{Line: line, Kind: kind, Detail: detail})
}

// Catalog lets a *Catalog stand in wherever a Provider is expected.
func (c *Catalog) Catalog() *Catalog {
	return c
}

// Lookup finds the code for an alias, trying the text as written and its
// upper- and lower-cased forms.
func (c *Catalog) Lookup(alias string) (string, bool) {
	key := NormaliseKey(alias)
	if key == "" {
		return "", false
	}
	for _, k := range []string{key, strings.ToUpper(key), strings.ToLower(key)} {
		if code, ok := c.aliases[k]; ok {
			return code, true
		}
	}
	return "", false
}

// Identity returns the identity for a code.
func (c *Catalog) Identity(code string) (PortIdentity, bool) {
	idx, ok := c.byCode[strings.TrimSpace(code)]
	if !ok {
		idx, ok = c.byCode[strings.ToUpper(strings.TrimSpace(code))]
	}
	if !ok {
		return PortIdentity{}, false
	}
	return c.identities[idx], true
}

// Has reports whether a code exists.
func (c *Catalog) Has(code string) bool {
	_, ok := c.Identity(code)
	return ok
}

// DisplayOf returns the canonical display string for a code.
func (c *Catalog) DisplayOf(code string) (string, bool) {
	id, ok := c.Identity(code)
	if !ok {
		return "", false
	}
	return id.Display(), true
}

// RegionHighWaterMark returns the largest SortIndex in a region, -1 for a
// known region without ports, or UnknownIndex for an unrecognised region.
func (c *Catalog) RegionHighWaterMark(region string) int {
	name := c.regions.Normalise(region)
	if hw, ok := c.highWater[name]; ok {
		return hw
	}
	if _, known := c.regions.rank[name]; known {
		return -1
	}
	return UnknownIndex
}

// RegionRank returns a region's position in the curated order.
func (c *Catalog) RegionRank(region string) (int, bool) {
	return c.regions.Rank(region)
}

// NormaliseRegion collapses synonyms and spacing variants of a region label.
func (c *Catalog) NormaliseRegion(region string) string {
	return c.regions.Normalise(region)
}

// Regions lists the regions in curated order with their high-water marks.
func (c *Catalog) Regions() []Region {
	order := c.regions.Order()
	out := make([]Region, 0, len(order))
	for i, name := range order {
		out = append(out, Region{Name: name, Rank: i, HighWaterMark: c.RegionHighWaterMark(name)})
	}
	return out
}

// RegionCount is the number of regions in the curated order.
func (c *Catalog) RegionCount() int {
	return c.regions.Len()
}

// Identities returns every identity in SortIndex order.
func (c *Catalog) Identities() []PortIdentity {
	out := make([]PortIdentity, len(c.identities))
	copy(out, c.identities)
	return out
}

// EnglishAliases returns the English-name-derived aliases in registry order.
// The returned slice must not be modified.
func (c *Catalog) EnglishAliases() []Alias {
	return c.english
}

// Len is the number of identities.
func (c *Catalog) Len() int {
	return len(c.identities)
}

// AliasCount is the number of alias keys, including upper-case forms.
func (c *Catalog) AliasCount() int {
	return len(c.aliases)
}

// Warnings returns the problems recorded while building.
func (c *Catalog) Warnings() []Warning {
	out := make([]Warning, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// Source names where the catalog came from.
func (c *Catalog) Source() string {
	return c.source
}

// Degraded reports whether the asset was unavailable and the catalog is empty.
func (c *Catalog) Degraded() bool {
	return c.degraded
}

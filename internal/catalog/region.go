package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/width"
)

// DefaultRegionOrder is the curated trade-region display order.
var DefaultRegionOrder = []string{
	"美西",
	"美东",
	"加拿大",
	"中南美",
	"欧基港",
	"地中海",
	"中东印巴红海",
	"东南亚",
	"日韩",
	"澳新",
	"非洲",
}

// DefaultRegionSynonyms maps known alternative spellings (already stripped of
// spacing and separators) onto a canonical region label.
var DefaultRegionSynonyms = map[string]string{
	"美国西岸":   "美西",
	"美西线":    "美西",
	"USWC":   "美西",
	"美国东岸":   "美东",
	"美东线":    "美东",
	"USEC":   "美东",
	"加拿大线":   "加拿大",
	"拉美":     "中南美",
	"南美":     "中南美",
	"中南美洲":   "中南美",
	"欧洲基本港":  "欧基港",
	"欧洲":     "欧基港",
	"北欧":     "欧基港",
	"地中海线":   "地中海",
	"中东印巴":   "中东印巴红海",
	"印巴中东":   "中东印巴红海",
	"中东红海印巴": "中东印巴红海",
	"印巴中东红海": "中东印巴红海",
	"中东印巴红海线": "中东印巴红海",
	"东南亚线":   "东南亚",
	"日本韩国":   "日韩",
	"韩日":     "日韩",
	"澳洲新西兰":  "澳新",
	"澳纽":     "澳新",
	"非洲线":    "非洲",
}

// regionSeparators are dropped when comparing region labels.
const regionSeparators = "/\\|,;:、，·・-_+&()（）"

// foldRegion strips cosmetic differences from a region label: full-width
// forms, whitespace, separators and Latin case.
func foldRegion(name string) string {
	name = width.Fold.String(name)
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsSpace(r) || strings.ContainsRune(regionSeparators, r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// Region is one macro-region in the curated order.
type Region struct {
	Name string `json:"name"`
	Rank int    `json:"rank"`
	// HighWaterMark is the largest SortIndex among the region's ports,
	// or -1 when the region has none.
	HighWaterMark int `json:"high_water_mark"`
}

// RegionSet is the ordered region table plus its synonym map. It is built
// once and read-only afterwards.
type RegionSet struct {
	order    []string
	rank     map[string]int
	synonyms map[string]string
}

// NewRegionSet builds a region table. Order entries and synonym targets are
// folded the same way lookups are, so cosmetic variants cannot split a region.
func NewRegionSet(order []string, synonyms map[string]string) *RegionSet {
	rs := &RegionSet{
		rank:     make(map[string]int, len(order)),
		synonyms: make(map[string]string, len(synonyms)),
	}
	for from, to := range synonyms {
		rs.synonyms[foldRegion(from)] = strings.TrimSpace(to)
	}
	for _, name := range order {
		rs.add(rs.Normalise(name))
	}
	return rs
}

func (rs *RegionSet) add(name string) bool {
	if name == "" {
		return false
	}
	if _, ok := rs.rank[name]; ok {
		return false
	}
	rs.rank[name] = len(rs.order)
	rs.order = append(rs.order, name)
	return true
}

// Normalise maps a region label onto its canonical spelling. Unknown labels
// come back trimmed but otherwise unchanged.
func (rs *RegionSet) Normalise(name string) string {
	trimmed := strings.TrimSpace(name)
	folded := foldRegion(trimmed)
	if folded == "" {
		return ""
	}
	if canon, ok := rs.synonyms[folded]; ok {
		return canon
	}
	for _, known := range rs.order {
		if foldRegion(known) == folded {
			return known
		}
	}
	return trimmed
}

// Rank returns the position of a region in the curated order.
func (rs *RegionSet) Rank(name string) (int, bool) {
	r, ok := rs.rank[rs.Normalise(name)]
	return r, ok
}

// Order returns the canonical region labels in curated order.
func (rs *RegionSet) Order() []string {
	out := make([]string, len(rs.order))
	copy(out, rs.order)
	return out
}

// Len is the number of known regions.
func (rs *RegionSet) Len() int {
	return len(rs.order)
}

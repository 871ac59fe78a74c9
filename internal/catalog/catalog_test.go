package catalog

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAsset = `# test asset
LOS ANGELES, [Los Angeles|USLAX|美西], 洛杉矶, "LOS ANGELES,CA(洛杉矶,加利福尼亚州)"
LONG BEACH, [Long Beach|USLGB|美西], 长滩, "LONG BEACH,CA(长滩,加利福尼亚州)"
ROTTERDAM, [Rotterdam|NLRTM|欧基港], 鹿特丹, "ROTTERDAM(鹿特丹)"
ST.PETERSBURG, [St Petersburg|RULED|欧基港], 圣彼得堡, "ST.PETERSBURG(圣彼得堡)"
BROKEN LINE WITHOUT BRACKETS
MISSING, [Missing||美西], 缺失, "MISSING"
TWO PARTS, [Two|XXTWO], 两段, "TWO"
JEBEL ALI, [Jebel Ali|AEJEA|中东印巴红海], 杰贝阿里, "JEBEL ALI,DUBAI(杰贝阿里,迪拜)"
LONG BEACH, [Long Beach Alt|USLBX|美西], 长滩, "LONG BEACH ALT"
MOMBASA, [Mombasa|KEMBA|东非], 蒙巴萨, "MOMBASA(蒙巴萨)"
`

func buildTest(t *testing.T) *Catalog {
	t.Helper()
	records, warnings, err := ParseAsset(strings.NewReader(testAsset))
	require.NoError(t, err)
	c := Build(records, BuildOptions{})
	c.warnings = append(warnings, c.warnings...)
	return c
}

func warningsOfKind(c *Catalog, kind string) []Warning {
	var out []Warning
	for _, w := range c.Warnings() {
		if w.Kind == kind {
			out = append(out, w)
		}
	}
	return out
}

func TestParseAsset(t *testing.T) {
	records, warnings, err := ParseAsset(strings.NewReader(testAsset))
	require.NoError(t, err)

	require.Len(t, records, 7)
	assert.Equal(t, Record{
		Line:        2,
		SourceA:     "LOS ANGELES",
		EnglishName: "Los Angeles",
		Code:        "USLAX",
		Region:      "美西",
		SourceB:     "洛杉矶",
		SourceC:     "LOS ANGELES,CA(洛杉矶,加利福尼亚州)",
	}, records[0])

	kinds := map[string]int{}
	for _, w := range warnings {
		kinds[w.Kind]++
	}
	assert.Equal(t, 2, kinds[WarnMalformed], "brackets missing and two-part bracket")
	assert.Equal(t, 1, kinds[WarnMissingCode])
}

func TestParseAsset_BOMAndComments(t *testing.T) {
	input := "\ufeffBUSAN, [Busan|KRPUS|日韩], 釜山, \"BUSAN(釜山)\"\n\n# comment\n"
	records, warnings, err := ParseAsset(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, records, 1)
	assert.Equal(t, "BUSAN", records[0].SourceA)
	assert.Equal(t, "KRPUS", records[0].Code)
}

func TestBuild_Identities(t *testing.T) {
	c := buildTest(t)

	assert.Equal(t, 7, c.Len())
	for i, id := range c.Identities() {
		assert.Equal(t, i, id.SortIndex, "sort index follows file order")
	}

	id, ok := c.Identity("USLGB")
	require.True(t, ok)
	assert.Equal(t, "[Long Beach|USLGB|美西]", id.Display())
	assert.Equal(t, "长滩", id.LocalName)

	display, ok := c.DisplayOf("NLRTM")
	assert.True(t, ok)
	assert.Equal(t, "[Rotterdam|NLRTM|欧基港]", display)

	_, ok = c.DisplayOf("NOPE")
	assert.False(t, ok)
}

func TestBuild_Aliases(t *testing.T) {
	c := buildTest(t)

	tests := []struct {
		alias string
		want  string
	}{
		{"LOS ANGELES", "USLAX"},
		{"los angeles", "USLAX"},
		{"Los Angeles", "USLAX"},
		{"洛杉矶", "USLAX"},
		{"LOS ANGELES,CA", "USLAX"},
		{"LOS ANGELES , CA", "USLAX"},
		{"LOS ANGELES，CA（洛杉矶，加利福尼亚州）", "USLAX"},
		{"洛杉矶,加利福尼亚州", "USLAX"},
		{"USLAX", "USLAX"},
		{"uslax", "USLAX"},
		{"JEBEL ALI,DUBAI", "AEJEA"},
		{"杰贝阿里", "AEJEA"},
		{"ST.PETERSBURG", "RULED"},
	}
	for _, tt := range tests {
		t.Run(tt.alias, func(t *testing.T) {
			got, ok := c.Lookup(tt.alias)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := c.Lookup("ST")
	assert.False(t, ok, "short pre-dot prefix is not registered")
	_, ok = c.Lookup("")
	assert.False(t, ok)
}

func TestBuild_AliasConflictFirstWins(t *testing.T) {
	c := buildTest(t)

	got, ok := c.Lookup("LONG BEACH")
	require.True(t, ok)
	assert.Equal(t, "USLGB", got, "first registration keeps the alias")

	got, ok = c.Lookup("LONG BEACH ALT")
	require.True(t, ok)
	assert.Equal(t, "USLBX", got, "non-conflicting aliases of the later code still register")

	conflicts := warningsOfKind(c, WarnAliasConflict)
	require.NotEmpty(t, conflicts)
	assert.Contains(t, conflicts[0].Detail, "USLGB")
}

func TestBuild_Regions(t *testing.T) {
	c := buildTest(t)

	assert.Equal(t, 5, c.RegionHighWaterMark("美西"), "USLBX is the last 美西 line")
	assert.Equal(t, 3, c.RegionHighWaterMark("欧基港"))
	assert.Equal(t, -1, c.RegionHighWaterMark("非洲"), "known region without ports")
	assert.Equal(t, UnknownIndex, c.RegionHighWaterMark("火星"))

	rank, ok := c.RegionRank("东非")
	require.True(t, ok, "unknown asset regions are appended")
	assert.Equal(t, len(DefaultRegionOrder), rank)
	assert.NotEmpty(t, warningsOfKind(c, WarnUnknownRegion))

	assert.Equal(t, "中东印巴红海", c.NormaliseRegion("中东 印巴 红海"))
	assert.Equal(t, "中东印巴红海", c.NormaliseRegion("印巴中东"))
	assert.Equal(t, "欧基港", c.NormaliseRegion("欧洲基本港"))
}

func TestBuild_DuplicateCode(t *testing.T) {
	input := `A, [Alpha|XXAAA|美西], 甲, "ALPHA"
B, [Beta|XXAAA|美东], 乙, "BETA"
`
	records, _, err := ParseAsset(strings.NewReader(input))
	require.NoError(t, err)
	c := Build(records, BuildOptions{})

	assert.Equal(t, 1, c.Len())
	id, _ := c.Identity("XXAAA")
	assert.Equal(t, "Alpha", id.EnglishName)
	assert.Equal(t, "美西", id.Region)

	code, ok := c.Lookup("BETA")
	assert.True(t, ok, "aliases of a repeated code merge into the first identity")
	assert.Equal(t, "XXAAA", code)
	assert.Len(t, warningsOfKind(c, WarnDuplicateCode), 1)
}

func TestBuild_CustomRegionOrder(t *testing.T) {
	c := Build(nil, BuildOptions{
		RegionOrder:    []string{"B", "A"},
		RegionSynonyms: map[string]string{"bee": "B"},
	})
	rank, ok := c.RegionRank("bee")
	require.True(t, ok)
	assert.Equal(t, 0, rank)
	assert.Equal(t, []Region{
		{Name: "B", Rank: 0, HighWaterMark: -1},
		{Name: "A", Rank: 1, HighWaterMark: -1},
	}, c.Regions())
}

func TestNormaliseKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  LONG   BEACH ,  CA ", "LONG BEACH,CA"},
		{"BALBOA ( 巴尔博亚 )", "BALBOA(巴尔博亚)"},
		{"ＶＡＮＣＯＵＶＥＲ．ＢＣ", "VANCOUVER.BC"},
		{"长滩，加利福尼亚州", "长滩,加利福尼亚州"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormaliseKey(tt.in), "NormaliseKey(%q)", tt.in)
	}
}

func TestDeriveAliases(t *testing.T) {
	got := deriveAliases(`"LOS ANGELES,CA(洛杉矶,加利福尼亚州)"`)
	assert.Equal(t, []string{
		"LOS ANGELES,CA(洛杉矶,加利福尼亚州)",
		"LOS ANGELES,CA",
		"洛杉矶,加利福尼亚州",
		"LOS ANGELES",
		"洛杉矶",
	}, got)

	assert.Equal(t, []string{"VANCOUVER.BC", "VANCOUVER"}, deriveAliases("VANCOUVER.BC"))
	assert.Equal(t, []string{"ST.PETERSBURG"}, deriveAliases("ST.PETERSBURG"))
	assert.Nil(t, deriveAliases(`""`))
}

func TestParseDisplay(t *testing.T) {
	parts, ok := ParseDisplay("[Long Beach|USLGB|美西]")
	require.True(t, ok)
	assert.Equal(t, DisplayParts{Name: "Long Beach", Code: "USLGB", Region: "美西"}, parts)

	for _, bad := range []string{"Long Beach", "[Long Beach|USLGB]", "[a||b]", "[a|b|c|d]", ""} {
		_, ok := ParseDisplay(bad)
		assert.False(t, ok, "ParseDisplay(%q)", bad)
	}
}

func TestLoader_Degraded(t *testing.T) {
	l := NewLoader(FileSource{Path: "/nonexistent/port_aliases.txt"})

	assert.False(t, l.Loaded())
	assert.True(t, l.Catalog().Degraded(), "pre-load catalog is empty and degraded")

	c := l.Load(context.Background())
	require.NotNil(t, c)
	assert.True(t, l.Loaded())
	assert.True(t, c.Degraded())
	assert.Equal(t, 0, c.Len())
	_, ok := c.Lookup("LONG BEACH")
	assert.False(t, ok)

	require.NotEmpty(t, c.Warnings())
	assert.Equal(t, WarnSource, c.Warnings()[0].Kind)
}

func TestLoader_NilSource(t *testing.T) {
	c := NewLoader(nil).Load(context.Background())
	assert.True(t, c.Degraded())
	assert.Equal(t, "none", c.Source())
}

func TestLoader_ConcurrentLoadBuildsOnce(t *testing.T) {
	src := &countingSource{inner: ReaderSource{Label: "test", Reader: strings.NewReader(testAsset)}}
	l := NewLoader(src)

	const callers = 16
	results := make([]*Catalog, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = l.Load(context.Background())
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, src.calls)
	for _, c := range results {
		assert.Same(t, results[0], c)
	}
	assert.Same(t, results[0], l.Catalog())
	assert.Equal(t, 7, results[0].Len())
	assert.Equal(t, "reader:test", results[0].Source())
}

func TestDefaultSource(t *testing.T) {
	c := NewLoader(DefaultSource()).Load(context.Background())
	require.False(t, c.Degraded())
	assert.Greater(t, c.Len(), 40)
	assert.Empty(t, warningsOfKind(c, WarnMalformed))
	assert.Empty(t, warningsOfKind(c, WarnAliasConflict))
	assert.Empty(t, warningsOfKind(c, WarnUnknownRegion))

	for _, r := range c.Regions() {
		assert.GreaterOrEqual(t, r.HighWaterMark, 0, "region %s has ports", r.Name)
	}
}

type countingSource struct {
	mu    sync.Mutex
	calls int
	inner Source
}

func (s *countingSource) Name() string { return s.inner.Name() }

func (s *countingSource) Records(ctx context.Context) ([]Record, []Warning, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.inner.Records(ctx)
}

package matchers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipping_schedule/internal/catalog"
	"shipping_schedule/internal/registry"
)

const testAsset = `LONG BEACH, [Long Beach|USLGB|美西], 长滩, "LONG BEACH,CA(长滩,加利福尼亚州)"
VANCOUVER, [Vancouver|CAVAN|加拿大], 温哥华, "VANCOUVER,BC(温哥华,不列颠哥伦比亚省)"
BALBOA, [Balboa|PABLB|中南美], 巴尔博亚, "BALBOA(巴尔博亚)"
PORT KELANG NORTH, [North Port Kelang|MYPKN|东南亚], 巴生北, "PORT KELANG NORTH(巴生北)"
PORT KELANG WEST, [West Port Kelang|MYPKW|东南亚], 巴生西, "PORT KELANG WEST(巴生西)"
TANJUNG PELEPAS, [Tanjung Pelepas|MYTPP|东南亚], 丹戎帕拉帕斯, "TANJUNG PELEPAS(丹戎帕拉帕斯)"
LAEM CHABANG, [Laem Chabang|THLCH|东南亚], 林查班, "LAEM CHABANG(林查班)"
ROTTERDAM, [Rotterdam|NLRTM|欧基港], 鹿特丹, "ROTTERDAM(鹿特丹)"
`

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	records, warnings, err := catalog.ParseAsset(strings.NewReader(testAsset))
	require.NoError(t, err)
	require.Empty(t, warnings)
	return catalog.Build(records, catalog.BuildOptions{})
}

type matcherCase struct {
	name   string
	input  string
	want   string
	wantOK bool
}

func runMatcher(t *testing.T, m registry.Matcher, tests []matcherCase) {
	t.Helper()
	c := testCatalog(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !m.QuickCheck(tt.input) {
				assert.False(t, tt.wantOK, "QuickCheck rejected %q", tt.input)
				return
			}
			got, ok := m.Match(c, tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDisplay(t *testing.T) {
	runMatcher(t, &Display{}, []matcherCase{
		{"canonical", "[Long Beach|USLGB|美西]", "USLGB", true},
		{"stale name, known code", "[LB|USLGB|美东]", "USLGB", true},
		{"unknown code", "[Nowhere|XXNOW|美西]", "", false},
		{"not display", "LONG BEACH", "", false},
		{"two parts", "[Long Beach|USLGB]", "", false},
	})
}

func TestExact(t *testing.T) {
	runMatcher(t, &Exact{}, []matcherCase{
		{"source a", "LONG BEACH", "USLGB", true},
		{"lower", "long beach", "USLGB", true},
		{"local name", "长滩", "USLGB", true},
		{"code", "uslgb", "USLGB", true},
		{"full width", "ＬＯＮＧ ＢＥＡＣＨ，ＣＡ", "USLGB", true},
		{"unknown", "GOTHAM", "", false},
		{"blank", "   ", "", false},
	})
}

func TestParen(t *testing.T) {
	runMatcher(t, &Paren{}, []matcherCase{
		{"before paren", "BALBOA(PANAMA)", "PABLB", true},
		{"inside paren", "BALBOA PORT(巴尔博亚)", "PABLB", true},
		{"inside first comma token", "XX(长滩,CALIFORNIA)", "USLGB", true},
		{"before first comma token", "VANCOUVER,CANADA(XX)", "CAVAN", true},
		{"full width paren", "BALBOA（巴拿马）", "PABLB", true},
		{"no paren", "BALBOA", "", false},
		{"nothing known", "GOTHAM(NOWHERE)", "", false},
	})
}

func TestComma(t *testing.T) {
	runMatcher(t, &Comma{}, []matcherCase{
		{"leading segment", "LONG BEACH, CA", "USLGB", true},
		{"lower leading segment", "long beach,usa", "USLGB", true},
		{"local leading segment", "温哥华，加拿大", "CAVAN", true},
		{"only leading segment", "GOTHAM, LONG BEACH", "", false},
		{"no comma", "LONG BEACH", "", false},
	})
}

func TestDot(t *testing.T) {
	runMatcher(t, &Dot{}, []matcherCase{
		{"pre dot", "VANCOUVER.BC", "CAVAN", true},
		{"lower pre dot", "vancouver.bc", "CAVAN", true},
		{"unknown prefix", "GOTHAM.NY", "", false},
		{"no dot", "VANCOUVER", "", false},
	})
}

func TestDirection(t *testing.T) {
	runMatcher(t, &Direction{}, []matcherCase{
		{"short english suffix", "PORT KELANG N", "MYPKN", true},
		{"west suffix", "PORT KELANG W", "MYPKW", true},
		{"lower case", "port kelang n", "MYPKN", true},
		{"cjk suffix moved", "巴生 N", "MYPKN", true},
		{"english to cjk", "巴生 WEST", "MYPKW", true},
		{"bare stem", "ROTTERDAM EAST", "NLRTM", true},
		{"bare stem decomposed", "LONG BEACH,USA SOUTH", "USLGB", true},
		{"cjk stem", "鹿特丹南", "NLRTM", true},
		{"other qualifier", "PORT KELANG S", "MYPKW", true},
		{"no qualifier", "PORT KELANG", "", false},
		{"stem too short", "X N", "", false},
		{"unknown stem", "GOTHAM NORTH", "", false},
	})
}

func TestSubstring(t *testing.T) {
	runMatcher(t, &Substring{}, []matcherCase{
		{"alias inside text", "ROTTERDAM MAASVLAKTE II", "NLRTM", true},
		{"text inside alias", "PELEPAS", "MYTPP", true},
		{"longest alias wins", "NORTH PORT KELANG TERMINAL", "MYPKN", true},
		{"longest containing alias", "PORT KELANG", "MYPKN", true},
		{"code like skipped", "NLRTM", "", false},
		{"short code skipped", "LCH", "", false},
		{"too short", "RO", "", false},
		{"nothing", "GOTHAM CITY", "", false},
	})
}

func TestSubstring_TieKeepsRegistryOrder(t *testing.T) {
	asset := `SAINT PORT B, [Saint Port B|XXSPB|美西], , ""
SAINT PORT A, [Saint Port A|XXSPA|美西], , ""
`
	records, _, err := catalog.ParseAsset(strings.NewReader(asset))
	require.NoError(t, err)
	c := catalog.Build(records, catalog.BuildOptions{})

	m := &Substring{}
	require.True(t, m.QuickCheck("SAINT PORT"))
	code, ok := m.Match(c, "SAINT PORT")
	assert.True(t, ok)
	assert.Equal(t, "XXSPB", code)
}

func TestNewRegistry_Order(t *testing.T) {
	r := NewRegistry()
	var names []string
	for _, m := range r.AllMatchers() {
		names = append(names, m.Name())
	}
	assert.Equal(t, []string{
		NameDisplay, NameExact, NameParen, NameComma, NameDot, NameDirection, NameSubstring,
	}, names)
}

func TestNewRegistry_FirstWins(t *testing.T) {
	c := testCatalog(t)
	r := NewRegistry()

	code, name, ok := r.DispatchFirst(c, "PORT KELANG N")
	require.True(t, ok)
	assert.Equal(t, "MYPKN", code)
	assert.Equal(t, NameDirection, name)

	code, name, ok = r.DispatchFirst(c, "BALBOA(巴尔博亚)")
	require.True(t, ok)
	assert.Equal(t, "PABLB", code)
	assert.Equal(t, NameExact, name)

	_, _, ok = r.DispatchFirst(c, "ZZZZZ")
	assert.False(t, ok)
}

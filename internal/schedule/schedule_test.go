package schedule

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitVesselVoyage(t *testing.T) {
	tests := []struct {
		in     string
		vessel string
		voyage string
	}{
		{"EVERGREEN 0123W", "EVERGREEN", "0123W"},
		{"EVERGREEN/0123W", "EVERGREEN", "0123W"},
		{"  EVERGREEN   /  0123W  ", "EVERGREEN", "0123W"},
		{"EVERGREEN", "EVERGREEN", ""},
		{"MSC ANNA FA412R", "MSC", "ANNA"},
		{"", "", ""},
		{" / ", "", ""},
	}
	for _, tt := range tests {
		vessel, voyage := SplitVesselVoyage(tt.in)
		if vessel != tt.vessel || voyage != tt.voyage {
			t.Errorf("SplitVesselVoyage(%q) = (%q, %q), want (%q, %q)", tt.in, vessel, voyage, tt.vessel, tt.voyage)
		}
	}
}

func TestVesselAndVoyage(t *testing.T) {
	r := SailingRecord{Vessel: "COSCO SHIPPING", Voyage: "045E", VesselVoyage: "IGNORED 1"}
	vessel, voyage := r.VesselAndVoyage()
	assert.Equal(t, "COSCO SHIPPING", vessel)
	assert.Equal(t, "045E", voyage)

	r = SailingRecord{VesselVoyage: "EVERGREEN/0123W"}
	vessel, voyage = r.VesselAndVoyage()
	assert.Equal(t, "EVERGREEN", vessel)
	assert.Equal(t, "0123W", voyage)

	r = SailingRecord{VesselVoyage: "EVERGREEN", Voyage: "0999E"}
	vessel, voyage = r.VesselAndVoyage()
	assert.Equal(t, "EVERGREEN", vessel)
	assert.Equal(t, "0999E", voyage)
}

func TestNormaliseDate(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2024-03-05", "2024-03-05"},
		{"2024/03/05", "2024-03-05"},
		{"2024/3/5", "2024-03-05"},
		{"2024.03.05", "2024-03-05"},
		{"20240305", "2024-03-05"},
		{"2024年3月5日", "2024-03-05"},
		{"05-Mar-2024", "2024-03-05"},
		{"Mar 5, 2024", "2024-03-05"},
		{"2024-03-05T08:00:00Z", "2024-03-05"},
		{"  2024-03-05  ", "2024-03-05"},
		{"next tuesday", "next tuesday"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormaliseDate(tt.in), "NormaliseDate(%q)", tt.in)
	}
}

func TestParseCapacity(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"4500", 4500},
		{"4,500 TEU", 4500},
		{" 120teu", 120},
		{"TEU 300", 0},
		{"", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseCapacity(tt.in), "ParseCapacity(%q)", tt.in)
	}
}

func TestFlexInt64_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  FlexInt64
	}{
		{"integer", `4500`, 4500},
		{"float", `4500.0`, 4500},
		{"string number", `"4500"`, 4500},
		{"string with unit", `"4,500 TEU"`, 4500},
		{"empty string", `""`, 0},
		{"invalid string", `"n/a"`, 0},
		{"null", `null`, 0},
		{"object", `{}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got FlexInt64
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromMap(t *testing.T) {
	row := map[string]any{
		"船名航次": "EVERGREEN/0123W",
		"船公司":  "EMC",
		"开航日期": "2024/3/5",
		"港口":   "LONG BEACH, CA",
		"船型":   "40HQ",
		"舱位":   "4,500 TEU",
	}
	got := FromMap(row)
	assert.Equal(t, SailingRecord{
		VesselVoyage: "EVERGREEN/0123W",
		Vessel:       "EVERGREEN",
		Voyage:       "0123W",
		ShipType:     "40HQ",
		Carrier:      "EMC",
		SailingDate:  "2024-03-05",
		Port:         "LONG BEACH, CA",
		Capacity:     4500,
	}, got)
}

func TestFromMap_EnglishAndNumbers(t *testing.T) {
	var row map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{
		"vessel": "MSC ANNA",
		"voyage": 412,
		"carrier": "MSC",
		"sailing_date": "2024-03-05",
		"port": "VANCOUVER.BC",
		"capacity": 8000,
		"meta": {"ship_type": "nested ignored"}
	}`), &row))

	got := FromMap(row)
	assert.Equal(t, "MSC ANNA", got.Vessel, "explicit vessel is not split")
	assert.Equal(t, "412", got.Voyage)
	assert.Equal(t, "", got.ShipType)
	assert.Equal(t, FlexInt64(8000), got.Capacity)
	assert.Equal(t, "VANCOUVER.BC", got.Port)
}

func TestDeepGet(t *testing.T) {
	root := map[string]any{
		"a":   map[string]any{"b": map[string]any{"c": "deep"}},
		"x.y": "dotted key",
	}
	v, ok := deepGet(root, "a.b.c")
	assert.True(t, ok)
	assert.Equal(t, "deep", v)

	v, ok = deepGet(root, "x.y")
	assert.True(t, ok)
	assert.Equal(t, "dotted key", v)

	_, ok = deepGet(root, "a.missing")
	assert.False(t, ok)
}
